package core

import (
	"fmt"
	"strconv"
	"strings"

	"stockmap/internal/storage"
)

// PlacementStore loads and saves per-level placement files. Levels are
// resolved through the registry; a level whose file does not exist yet is an
// empty level, not an error.
//
// Operations that must hold system-wide (code generation, assignment
// exclusivity) scan every registered level's persisted file. That scan is
// O(total placements across all levels) per call — fine for a single small
// warehouse, and deliberately centralized here instead of scattered across
// callers.
type PlacementStore struct {
	registry *Registry
}

func NewPlacementStore(registry *Registry) *PlacementStore {
	return &PlacementStore{registry: registry}
}

// LoadLevel returns the persisted placements of a registered level in file
// order. Missing file yields an empty slice; corrupt file yields an empty
// slice with degraded=true.
func (ps *PlacementStore) LoadLevel(name string) (placements []*Placement, degraded bool, err error) {
	path, err := ps.registry.DataFilePath(name)
	if err != nil {
		return nil, false, err
	}
	degraded, err = storage.ReadJSON(path, &placements)
	if err != nil {
		return nil, false, err
	}
	if degraded {
		placements = nil
	}
	return placements, degraded, nil
}

// SaveLevel overwrites a level's placement file wholesale. There is no merge:
// concurrent writers racing on the same level will lose data (single active
// writer assumption; the atomic replace only rules out half-written files).
func (ps *PlacementStore) SaveLevel(name string, placements []*Placement) error {
	path, err := ps.registry.DataFilePath(name)
	if err != nil {
		return err
	}
	if placements == nil {
		placements = []*Placement{}
	}
	return storage.WriteJSON(path, placements)
}

// forEachLevel runs fn over every registered level's persisted placements,
// stopping early when fn returns stop=true. When session is non-nil, its
// level's in-memory placements are used instead of the stale file.
func (ps *PlacementStore) forEachLevel(session *LevelSession, fn func(level string, placements []*Placement) (stop bool, err error)) error {
	for _, lvl := range ps.registry.List() {
		var placements []*Placement
		if session != nil && lvl.Name == session.level {
			placements = session.placements
		} else {
			loaded, _, err := ps.LoadLevel(lvl.Name)
			if err != nil {
				return err
			}
			placements = loaded
		}
		stop, err := fn(lvl.Name, placements)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
	return nil
}

// findAssigned returns the placement currently holding itemCode, if any.
func (ps *PlacementStore) findAssigned(session *LevelSession, itemCode string) (*PlacementRef, error) {
	var found *PlacementRef
	err := ps.forEachLevel(session, func(level string, placements []*Placement) (bool, error) {
		for _, p := range placements {
			if p.HoldsItem(itemCode) {
				found = &PlacementRef{Level: level, Placement: p}
				return true, nil
			}
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// NextCode generates the next placement code: the maximum numeric code across
// every level's persisted placements — plus the given session's unsaved
// in-memory placements — incremented by one and zero-padded to 7 digits.
// Codes are unique system-wide, not per level, hence the global scan.
func (ps *PlacementStore) NextCode(session *LevelSession) (string, error) {
	maxVal := 0
	err := ps.forEachLevel(session, func(_ string, placements []*Placement) (bool, error) {
		for _, p := range placements {
			if v, ok := numericCode(p.Code); ok && v > maxVal {
				maxVal = v
			}
		}
		return false, nil
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%07d", maxVal+1), nil
}

// codeExists reports whether any placement anywhere already uses code.
func (ps *PlacementStore) codeExists(session *LevelSession, code string) (bool, error) {
	exists := false
	err := ps.forEachLevel(session, func(_ string, placements []*Placement) (bool, error) {
		for _, p := range placements {
			if p.Code == code {
				exists = true
				return true, nil
			}
		}
		return false, nil
	})
	return exists, err
}

func numericCode(code string) (int, bool) {
	trimmed := strings.TrimLeft(code, "0")
	if trimmed == "" {
		if code == "" {
			return 0, false
		}
		return 0, true
	}
	v, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, false
	}
	return v, true
}

// LevelSession is a load-modify-save working set over one level. Every
// mutation rewrites the whole level file before returning, so the file is
// never more than one call stale.
type LevelSession struct {
	store      *PlacementStore
	level      string
	placements []*Placement
	degraded   bool
}

// OpenLevel loads a registered level into a working session.
func (ps *PlacementStore) OpenLevel(name string) (*LevelSession, error) {
	placements, degraded, err := ps.LoadLevel(name)
	if err != nil {
		return nil, err
	}
	return &LevelSession{store: ps, level: name, placements: placements, degraded: degraded}, nil
}

// Level returns the session's level name.
func (s *LevelSession) Level() string { return s.level }

// Degraded reports whether the level file existed but could not be parsed.
func (s *LevelSession) Degraded() bool { return s.degraded }

// Placements returns the session's placements in file order.
func (s *LevelSession) Placements() []*Placement { return s.placements }

// Find returns the session placement with the given code.
func (s *LevelSession) Find(code string) (*Placement, error) {
	for _, p := range s.placements {
		if p.Code == code {
			return p, nil
		}
	}
	return nil, fmt.Errorf("placement %s on level %q: %w", code, s.level, ErrNotFound)
}

// FindByName returns the first session placement with the given name.
func (s *LevelSession) FindByName(name string) (*Placement, error) {
	for _, p := range s.placements {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("placement %q on level %q: %w", name, s.level, ErrNotFound)
}

func (s *LevelSession) save() error {
	return s.store.SaveLevel(s.level, s.placements)
}

// Create adds a placement at (x, y). When code is empty a fresh system-wide
// unique code is generated; an explicit code must be a digit string not used
// by any placement on any level.
func (s *LevelSession) Create(x, y float64, name, manager, code string) (*Placement, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("placement name must not be empty: %w", ErrInvalidInput)
	}
	if code == "" {
		generated, err := s.store.NextCode(s)
		if err != nil {
			return nil, err
		}
		code = generated
	} else {
		if !isDigits(code) {
			return nil, fmt.Errorf("placement code %q must be a digit string: %w", code, ErrInvalidInput)
		}
		exists, err := s.store.codeExists(s, code)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("placement code %s: %w", code, ErrDuplicateCode)
		}
	}

	p := &Placement{
		X:           x,
		Y:           y,
		Name:        strings.TrimSpace(name),
		Radius:      15,
		Supplements: []Supplement{},
		Manager:     strings.TrimSpace(manager),
		Code:        code,
	}
	s.placements = append(s.placements, p)
	if err := s.save(); err != nil {
		s.placements = s.placements[:len(s.placements)-1]
		return nil, err
	}
	return p, nil
}

// Move shifts a placement by a coordinate delta. No collision detection and
// no clamping against the image extent, same as the editor.
func (s *LevelSession) Move(p *Placement, dx, dy float64) error {
	prevX, prevY := p.X, p.Y
	p.X += dx
	p.Y += dy
	if err := s.save(); err != nil {
		p.X, p.Y = prevX, prevY
		return err
	}
	return nil
}

// Resize sets a placement's radius.
func (s *LevelSession) Resize(p *Placement, radius float64) error {
	if radius <= 0 {
		return fmt.Errorf("placement radius must be positive, got %v: %w", radius, ErrInvalidInput)
	}
	prev := p.Radius
	p.Radius = radius
	if err := s.save(); err != nil {
		p.Radius = prev
		return err
	}
	return nil
}

// Rename changes a placement's display name.
func (s *LevelSession) Rename(p *Placement, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("placement name must not be empty: %w", ErrInvalidInput)
	}
	prev := p.Name
	p.Name = name
	if err := s.save(); err != nil {
		p.Name = prev
		return err
	}
	return nil
}

// SetManager changes the placement's responsible person (may be empty).
func (s *LevelSession) SetManager(p *Placement, manager string) error {
	prev := p.Manager
	p.Manager = strings.TrimSpace(manager)
	if err := s.save(); err != nil {
		p.Manager = prev
		return err
	}
	return nil
}

// Assign attaches an item to this placement. An item lives on at most one
// placement across the whole system, so the assignment is rejected when any
// placement on any level already holds it.
func (s *LevelSession) Assign(p *Placement, itemCode, itemName string, drawer *int) (Supplement, error) {
	if p.HoldsItem(itemCode) {
		return Supplement{}, fmt.Errorf("item %s is already on placement %s: %w", itemCode, p.Code, ErrAlreadyAssignedHere)
	}
	ref, err := s.store.findAssigned(s, itemCode)
	if err != nil {
		return Supplement{}, err
	}
	if ref != nil {
		return Supplement{}, fmt.Errorf("item %s is already assigned to placement %q on level %q: %w",
			itemCode, ref.Placement.Name, ref.Level, ErrAlreadyAssignedElsewhere)
	}

	sup := NewAssignment(itemCode, itemName, drawer)
	p.Supplements = append(p.Supplements, sup)
	if err := s.save(); err != nil {
		p.Supplements = p.Supplements[:len(p.Supplements)-1]
		return Supplement{}, err
	}
	return sup, nil
}

// Unassign removes an item from this placement. The item itself stays in the
// inventory untouched.
func (s *LevelSession) Unassign(p *Placement, itemCode string) error {
	idx := -1
	for i, sup := range p.Supplements {
		if !sup.Legacy && sup.ItemCode == itemCode {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("item %s on placement %s: %w", itemCode, p.Code, ErrNotFound)
	}
	removed := p.Supplements[idx]
	p.Supplements = append(p.Supplements[:idx], p.Supplements[idx+1:]...)
	if err := s.save(); err != nil {
		p.Supplements = append(p.Supplements[:idx], append([]Supplement{removed}, p.Supplements[idx:]...)...)
		return err
	}
	return nil
}

// MoveAssignment moves an item between two placements of this level,
// atomically with respect to both lists: if the destination already holds
// the item nothing changes and ErrAlreadyPresent is reported.
func (s *LevelSession) MoveAssignment(from, to *Placement, itemCode string) error {
	if to.HoldsItem(itemCode) {
		return fmt.Errorf("item %s is already on placement %s: %w", itemCode, to.Code, ErrAlreadyPresent)
	}
	idx := -1
	for i, sup := range from.Supplements {
		if !sup.Legacy && sup.ItemCode == itemCode {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("item %s on placement %s: %w", itemCode, from.Code, ErrNotFound)
	}
	moved := from.Supplements[idx]
	from.Supplements = append(from.Supplements[:idx], from.Supplements[idx+1:]...)
	to.Supplements = append(to.Supplements, moved)
	if err := s.save(); err != nil {
		to.Supplements = to.Supplements[:len(to.Supplements)-1]
		from.Supplements = append(from.Supplements[:idx], append([]Supplement{moved}, from.Supplements[idx:]...)...)
		return err
	}
	return nil
}

// Delete removes a placement from the level. Its assignments are not
// deleted — the items stay in the inventory and simply become unassigned.
// The orphaned entries are returned so callers can report them.
func (s *LevelSession) Delete(p *Placement) ([]Supplement, error) {
	idx := -1
	for i, cand := range s.placements {
		if cand == p {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("placement %s on level %q: %w", p.Code, s.level, ErrNotFound)
	}
	orphaned := p.Supplements
	s.placements = append(s.placements[:idx], s.placements[idx+1:]...)
	if err := s.save(); err != nil {
		s.placements = append(s.placements[:idx], append([]*Placement{p}, s.placements[idx:]...)...)
		return nil, err
	}
	return orphaned, nil
}
