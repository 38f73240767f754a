package core

import (
	"errors"
	"os"
	"strings"
	"testing"
)

// newTestWorld builds a registry with the given levels plus a placement store
// over it, all under a throwaway data directory.
func newTestWorld(t *testing.T, levels ...string) (*Registry, *PlacementStore) {
	t.Helper()
	r := newTestRegistry(t)
	for _, name := range levels {
		if _, err := r.Add(name, ""); err != nil {
			t.Fatalf("Add(%q): %v", name, err)
		}
	}
	return r, NewPlacementStore(r)
}

func openTestLevel(t *testing.T, ps *PlacementStore, name string) *LevelSession {
	t.Helper()
	s, err := ps.OpenLevel(name)
	if err != nil {
		t.Fatalf("OpenLevel(%q): %v", name, err)
	}
	return s
}

func TestPlacementCodeGeneration(t *testing.T) {
	_, ps := newTestWorld(t, "Principal")
	s := openTestLevel(t, ps, "Principal")

	p1, err := s.Create(10, 20, "Estante A", "", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p1.Code != "0000001" {
		t.Fatalf("first code = %q, want 0000001", p1.Code)
	}
	p2, err := s.Create(30, 40, "Estante B", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if p2.Code != "0000002" {
		t.Fatalf("second code = %q, want 0000002", p2.Code)
	}
	if p1.Radius != 15 {
		t.Fatalf("default radius = %v, want 15", p1.Radius)
	}
}

func TestPlacementCodesAreGlobalAcrossLevels(t *testing.T) {
	_, ps := newTestWorld(t, "Principal", "Nivel Dos")

	a := openTestLevel(t, ps, "Principal")
	if _, err := a.Create(0, 0, "A", "", "0000041"); err != nil {
		t.Fatal(err)
	}

	b := openTestLevel(t, ps, "Nivel Dos")
	p, err := b.Create(0, 0, "B", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if p.Code != "0000042" {
		t.Fatalf("code = %q, want 0000042 (max is taken over every level)", p.Code)
	}

	if _, err := b.Create(1, 1, "C", "", "0000041"); !errors.Is(err, ErrDuplicateCode) {
		t.Fatalf("cross-level duplicate code: error = %v, want ErrDuplicateCode", err)
	}
}

func TestPlacementExplicitCodeValidation(t *testing.T) {
	_, ps := newTestWorld(t, "Principal")
	s := openTestLevel(t, ps, "Principal")

	if _, err := s.Create(0, 0, "A", "", "12x"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("non-digit code: error = %v, want ErrInvalidInput", err)
	}
	if _, err := s.Create(0, 0, "  ", "", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("blank name: error = %v, want ErrInvalidInput", err)
	}
}

func TestPlacementLevelRoundTrip(t *testing.T) {
	_, ps := newTestWorld(t, "Principal")
	s := openTestLevel(t, ps, "Principal")

	p, err := s.Create(12.5, 40, "Estante A", "Marta", "")
	if err != nil {
		t.Fatal(err)
	}
	drawer := 3
	if _, err := s.Assign(p, "100", "Correa", &drawer); err != nil {
		t.Fatalf("Assign: %v", err)
	}

	again := openTestLevel(t, ps, "Principal")
	got, err := again.Find(p.Code)
	if err != nil {
		t.Fatalf("Find after reload: %v", err)
	}
	if got.X != 12.5 || got.Y != 40 || got.Name != "Estante A" || got.Manager != "Marta" {
		t.Fatalf("placement did not round-trip: %+v", got)
	}
	if len(got.Supplements) != 1 {
		t.Fatalf("assignments did not round-trip: %+v", got.Supplements)
	}
	sup := got.Supplements[0]
	if sup.Legacy || sup.ItemCode != "100" || sup.Name != "Correa" || sup.Drawer == nil || *sup.Drawer != 3 {
		t.Fatalf("unexpected assignment after reload: %+v", sup)
	}
}

func TestLegacyStringEntriesRoundTripVerbatim(t *testing.T) {
	r, ps := newTestWorld(t, "Principal")
	path, err := r.DataFilePath("Principal")
	if err != nil {
		t.Fatal(err)
	}
	raw := `[{"x":1,"y":2,"nombre":"Viejo","radio":15,"suplementos":["Correa vieja",{"nombre":"Polea","codigo":"7","gaveta":null}],"encargado":"","codigo":"0000003"}]`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	s := openTestLevel(t, ps, "Principal")
	p, err := s.Find("0000003")
	if err != nil {
		t.Fatal(err)
	}
	if !p.Supplements[0].Legacy || p.Supplements[0].Name != "Correa vieja" {
		t.Fatalf("legacy entry not recognized: %+v", p.Supplements[0])
	}
	if p.Supplements[1].Legacy || p.Supplements[1].ItemCode != "7" {
		t.Fatalf("structured entry misread: %+v", p.Supplements[1])
	}

	// A save triggered by an unrelated edit must re-emit the legacy entry as
	// a bare string, not promote it to an object.
	if err := s.Move(p, 1, 1); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"Correa vieja"`) || strings.Contains(string(data), `"nombre": "Correa vieja"`) {
		t.Fatalf("legacy entry did not round-trip as a bare string:\n%s", data)
	}
}

func TestAssignmentExclusivity(t *testing.T) {
	_, ps := newTestWorld(t, "Principal", "Nivel Dos")

	a := openTestLevel(t, ps, "Principal")
	pa, err := a.Create(0, 0, "A", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := a.Assign(pa, "100", "Correa", nil); err != nil {
		t.Fatal(err)
	}

	if _, err := a.Assign(pa, "100", "Correa", nil); !errors.Is(err, ErrAlreadyAssignedHere) {
		t.Fatalf("re-assign to same placement: error = %v, want ErrAlreadyAssignedHere", err)
	}

	b := openTestLevel(t, ps, "Nivel Dos")
	pb, err := b.Create(0, 0, "B", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.Assign(pb, "100", "Correa", nil); !errors.Is(err, ErrAlreadyAssignedElsewhere) {
		t.Fatalf("assign on another level: error = %v, want ErrAlreadyAssignedElsewhere", err)
	}

	// After unassigning, the item can be shelved again anywhere.
	if err := a.Unassign(pa, "100"); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Assign(pb, "100", "Correa", nil); err != nil {
		t.Fatalf("assign after unassign: %v", err)
	}
}

func TestUnassignUnknownItem(t *testing.T) {
	_, ps := newTestWorld(t, "Principal")
	s := openTestLevel(t, ps, "Principal")
	p, err := s.Create(0, 0, "A", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Unassign(p, "100"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unassign missing item: error = %v, want ErrNotFound", err)
	}
}

func TestMoveAssignmentIsAtomic(t *testing.T) {
	_, ps := newTestWorld(t, "Principal")
	s := openTestLevel(t, ps, "Principal")
	from, err := s.Create(0, 0, "A", "", "")
	if err != nil {
		t.Fatal(err)
	}
	to, err := s.Create(5, 5, "B", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Assign(from, "100", "Correa", nil); err != nil {
		t.Fatal(err)
	}

	if err := s.MoveAssignment(from, to, "100"); err != nil {
		t.Fatalf("MoveAssignment: %v", err)
	}
	if from.HoldsItem("100") || !to.HoldsItem("100") {
		t.Fatal("item did not move")
	}

	// Destination already holding the item: nothing changes anywhere.
	if _, err := s.Assign(from, "200", "Polea", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Assign(to, "300", "Filtro", nil); err != nil {
		t.Fatal(err)
	}
	if err := s.MoveAssignment(from, from, "200"); !errors.Is(err, ErrAlreadyPresent) {
		t.Fatalf("move onto holder: error = %v, want ErrAlreadyPresent", err)
	}
	if !from.HoldsItem("200") {
		t.Fatal("failed move must leave the source untouched")
	}
}

func TestDeletePlacementOrphansAssignments(t *testing.T) {
	_, ps := newTestWorld(t, "Principal")
	s := openTestLevel(t, ps, "Principal")
	p, err := s.Create(0, 0, "A", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Assign(p, "100", "Correa", nil); err != nil {
		t.Fatal(err)
	}

	orphaned, err := s.Delete(p)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(orphaned) != 1 || orphaned[0].ItemCode != "100" {
		t.Fatalf("orphaned = %+v, want the single assignment", orphaned)
	}
	if len(s.Placements()) != 0 {
		t.Fatal("placement not removed from the session")
	}
}

func TestPlacementGeometryEdits(t *testing.T) {
	_, ps := newTestWorld(t, "Principal")
	s := openTestLevel(t, ps, "Principal")
	p, err := s.Create(10, 10, "A", "", "")
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Move(p, -25, 4); err != nil {
		t.Fatal(err)
	}
	if p.X != -15 || p.Y != 14 {
		t.Fatalf("coordinates after move = (%v, %v), want (-15, 14) with no clamping", p.X, p.Y)
	}

	if err := s.Resize(p, 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("zero radius: error = %v, want ErrInvalidInput", err)
	}
	if err := s.Resize(p, 22); err != nil {
		t.Fatal(err)
	}
	if err := s.Rename(p, "Estante nuevo"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetManager(p, "  Lucas "); err != nil {
		t.Fatal(err)
	}

	again := openTestLevel(t, ps, "Principal")
	got, err := again.Find(p.Code)
	if err != nil {
		t.Fatal(err)
	}
	if got.Radius != 22 || got.Name != "Estante nuevo" || got.Manager != "Lucas" {
		t.Fatalf("edits did not persist: %+v", got)
	}
}

func TestCorruptLevelFileIsDegradedNotFatal(t *testing.T) {
	r, ps := newTestWorld(t, "Principal")
	path, err := r.DataFilePath("Principal")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("[broken"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := openTestLevel(t, ps, "Principal")
	if !s.Degraded() {
		t.Fatal("corrupt level file must set the degraded flag")
	}
	if len(s.Placements()) != 0 {
		t.Fatal("degraded session must start empty")
	}
}

func TestSaveLevelWritesEmptyArrayNotNull(t *testing.T) {
	r, ps := newTestWorld(t, "Principal")
	if err := ps.SaveLevel("Principal", nil); err != nil {
		t.Fatal(err)
	}
	path, err := r.DataFilePath("Principal")
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[]\n" {
		t.Fatalf("empty level serialized as %q, want []", data)
	}
}

func TestOpenLevelRequiresRegistration(t *testing.T) {
	_, ps := newTestWorld(t)
	if _, err := ps.OpenLevel("Fantasma"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unregistered level: error = %v, want ErrNotFound", err)
	}
}
