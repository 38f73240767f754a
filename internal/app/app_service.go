package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"stockmap/internal/core"
	"stockmap/internal/storage"
)

// appService wires the data-layer stores behind ApplicationService. A single
// mutex serializes every operation: the underlying files assume one active
// writer, and the web adapter serves requests concurrently.
type appService struct {
	mu         sync.Mutex
	items      *core.ItemStore
	registry   *core.Registry
	placements *core.PlacementStore
	query      *core.QueryFacade
	cart       *core.ScanCart
	changelog  *core.Changelog
	session    *core.LevelSession
}

// NewAppService constructs an appService that satisfies ApplicationService.
// changelog may be nil when no audit trail is wanted.
func NewAppService(
	items *core.ItemStore,
	registry *core.Registry,
	placements *core.PlacementStore,
	query *core.QueryFacade,
	cart *core.ScanCart,
	changelog *core.Changelog,
) ApplicationService {
	return &appService{
		items:      items,
		registry:   registry,
		placements: placements,
		query:      query,
		cart:       cart,
		changelog:  changelog,
	}
}

// activeSession returns the current working set or an error when no level
// has been switched to yet.
func (s *appService) activeSession() (*core.LevelSession, error) {
	if s.session == nil {
		return nil, fmt.Errorf("no active level, switch to one first: %w", core.ErrNotFound)
	}
	return s.session, nil
}

func (s *appService) ListItems(ctx context.Context) (*ItemListResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &ItemListResult{Items: s.items.List(), Degraded: s.items.Degraded()}, nil
}

func (s *appService) GetItem(ctx context.Context, code string) (*ItemResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, err := s.items.Get(code)
	if err != nil {
		return nil, err
	}
	return &ItemResult{Item: it}, nil
}

func (s *appService) CreateItem(ctx context.Context, req CreateItemRequest) (*ItemResult, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	it, err := s.items.Create(req.Code, req.Name, req.Stock)
	if err != nil {
		return nil, err
	}
	s.changelog.Log("item created: %s %q stock=%d", it.Code, it.Name, it.Stock)
	return &ItemResult{Item: it}, nil
}

func (s *appService) UpdateItem(ctx context.Context, req UpdateItemRequest) (*ItemResult, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	it, err := s.items.Update(req.Code, req.Name, req.Stock)
	if err != nil {
		return nil, err
	}
	s.changelog.Log("item updated: %s %q stock=%d", it.Code, it.Name, it.Stock)
	return &ItemResult{Item: it}, nil
}

// DeleteItem removes an item after verifying no placement on any level still
// assigns it; an assigned item fails with ErrInUse and nothing changes.
func (s *appService) DeleteItem(ctx context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.query.CheckDeletable(code); err != nil {
		return err
	}
	if err := s.items.Delete(code); err != nil {
		return err
	}
	s.changelog.Log("item deleted: %s", code)
	return nil
}

func (s *appService) AdjustStock(ctx context.Context, code string, delta int) (*ItemResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, err := s.items.AdjustStock(code, delta)
	if err != nil {
		return nil, err
	}
	s.changelog.Log("stock adjusted: %s %+d -> %d", code, delta, it.Stock)
	return &ItemResult{Item: it}, nil
}

func (s *appService) LinkBarcode(ctx context.Context, req LinkBarcodeRequest) error {
	if err := checkRequest(req); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.items.LinkBarcode(req.Barcode, req.ItemCode, req.Factor); err != nil {
		return err
	}
	s.changelog.Log("barcode linked: %s -> %s x%d", req.Barcode, req.ItemCode, req.Factor)
	return nil
}

func (s *appService) ResolveBarcode(ctx context.Context, barcode string) (*BarcodeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	link, err := s.items.ResolveBarcode(barcode)
	if err != nil {
		return nil, err
	}
	it, err := s.items.Get(link.ItemCode)
	if err != nil {
		return nil, err
	}
	return &BarcodeResult{Barcode: barcode, Link: link, Item: it}, nil
}

func (s *appService) ListBarcodes(ctx context.Context) (*BarcodeListResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &BarcodeListResult{Entries: s.items.Links()}, nil
}

func (s *appService) ScanBarcode(ctx context.Context, barcode string) (*CartResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.cart.Scan(barcode); err != nil {
		return nil, err
	}
	return &CartResult{Lines: s.cart.Lines()}, nil
}

func (s *appService) AddToCart(ctx context.Context, req AddToCartRequest) (*CartResult, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.cart.Add(req.ItemCode, req.Quantity); err != nil {
		return nil, err
	}
	return &CartResult{Lines: s.cart.Lines()}, nil
}

func (s *appService) SetCartQuantity(ctx context.Context, itemCode string, qty int) (*CartResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.cart.SetQuantity(itemCode, qty); err != nil {
		return nil, err
	}
	return &CartResult{Lines: s.cart.Lines()}, nil
}

func (s *appService) RemoveFromCart(ctx context.Context, itemCode string) (*CartResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.cart.Remove(itemCode); err != nil {
		return nil, err
	}
	return &CartResult{Lines: s.cart.Lines()}, nil
}

func (s *appService) ClearCart(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Clear()
	return nil
}

func (s *appService) Cart(ctx context.Context) (*CartResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &CartResult{Lines: s.cart.Lines()}, nil
}

func (s *appService) FinalizeCart(ctx context.Context, direction core.Direction) (*MovementResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	updated, err := s.cart.Finalize(direction)
	if err != nil {
		return nil, err
	}
	for _, it := range updated {
		s.changelog.Log("movement %s: %s %q -> stock %d", direction, it.Code, it.Name, it.Stock)
	}
	return &MovementResult{Direction: direction, Updated: updated}, nil
}

func (s *appService) ListLevels(ctx context.Context) (*LevelListResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &LevelListResult{Levels: s.registry.List(), Degraded: s.registry.Degraded()}, nil
}

func (s *appService) LevelNames(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	levels := s.registry.List()
	if len(levels) == 0 {
		return s.registry.ScanDataDir(), nil
	}
	names := make([]string, 0, len(levels))
	for _, lvl := range levels {
		names = append(names, lvl.Name)
	}
	return names, nil
}

func (s *appService) LevelPlacements(ctx context.Context, name string) ([]*core.Placement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.registry.Get(name); err == nil {
		placements, _, err := s.placements.LoadLevel(name)
		if err != nil {
			return nil, err
		}
		return placements, nil
	}
	// Unregistered name: try the derived file directly, the way the mirror
	// serves levels that only exist as yrz_*.json files.
	var placements []*core.Placement
	path := filepath.Join(s.registry.DataDir(), core.DataFileName(name))
	if _, err := storage.ReadJSON(path, &placements); err != nil {
		return nil, err
	}
	return placements, nil
}

func (s *appService) LevelImage(ctx context.Context, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.ImagePath(name)
}

func (s *appService) AddLevel(ctx context.Context, req AddLevelRequest) (*LevelResult, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	lvl, err := s.registry.Add(req.Name, req.ImageSource)
	if err != nil {
		return nil, err
	}
	s.changelog.Log("level added: %q (%s)", lvl.Name, lvl.DataFile)
	return &LevelResult{Level: lvl}, nil
}

func (s *appService) RemoveLevel(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.registry.Remove(name); err != nil {
		return err
	}
	if s.session != nil && s.session.Level() == name {
		s.session = nil
	}
	s.changelog.Log("level removed: %q", name)
	return nil
}

func (s *appService) SwitchLevel(ctx context.Context, name string) (*LevelViewResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, err := s.placements.OpenLevel(name)
	if err != nil {
		return nil, err
	}
	s.session = session
	return s.levelView(session), nil
}

func (s *appService) ActiveLevel(ctx context.Context) (*LevelViewResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, err := s.activeSession()
	if err != nil {
		return nil, err
	}
	return s.levelView(session), nil
}

func (s *appService) levelView(session *core.LevelSession) *LevelViewResult {
	return &LevelViewResult{
		Level:      session.Level(),
		Placements: session.Placements(),
		Degraded:   session.Degraded(),
	}
}

func (s *appService) ExportLevel(ctx context.Context, name, destPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	placements, _, err := s.placements.LoadLevel(name)
	if err != nil {
		return err
	}
	if placements == nil {
		placements = []*core.Placement{}
	}
	if err := storage.WriteJSON(destPath, placements); err != nil {
		return err
	}
	s.changelog.Log("level exported: %q -> %s", name, destPath)
	return nil
}

// ImportLevel replaces level data from an external JSON file. A top-level
// array replaces the named level; a top-level object maps level names to
// arrays and replaces every registered level it names.
func (s *appService) ImportLevel(ctx context.Context, name, srcPath string) (*ImportResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(srcPath)
	if err != nil {
		return nil, &storage.Error{Op: "read", Path: srcPath, Err: err}
	}

	byLevel := make(map[string][]*core.Placement)
	var single []*core.Placement
	if err := json.Unmarshal(raw, &single); err == nil {
		if _, err := s.registry.Get(name); err != nil {
			return nil, err
		}
		byLevel[name] = single
	} else if err := json.Unmarshal(raw, &byLevel); err != nil {
		return nil, fmt.Errorf("import file %s is neither a placement array nor a level map: %w", srcPath, core.ErrInvalidInput)
	}

	result := &ImportResult{}
	for _, lvl := range s.registry.List() {
		placements, ok := byLevel[lvl.Name]
		if !ok {
			continue
		}
		if err := s.placements.SaveLevel(lvl.Name, placements); err != nil {
			return nil, err
		}
		result.Levels = append(result.Levels, lvl.Name)
		result.Placements += len(placements)
		if s.session != nil && s.session.Level() == lvl.Name {
			session, err := s.placements.OpenLevel(lvl.Name)
			if err != nil {
				return nil, err
			}
			s.session = session
		}
	}
	if len(result.Levels) == 0 {
		return nil, fmt.Errorf("import file %s names no registered level: %w", srcPath, core.ErrNotFound)
	}
	s.changelog.Log("levels imported from %s: %v", srcPath, result.Levels)
	return result, nil
}

func (s *appService) CreatePlacement(ctx context.Context, req CreatePlacementRequest) (*PlacementResult, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	session, err := s.activeSession()
	if err != nil {
		return nil, err
	}
	p, err := session.Create(req.X, req.Y, req.Name, req.Manager, req.Code)
	if err != nil {
		return nil, err
	}
	s.changelog.Log("placement created: %s %q on %q", p.Code, p.Name, session.Level())
	return &PlacementResult{Level: session.Level(), Placement: p}, nil
}

// withPlacement runs an edit against a placement of the active level.
func (s *appService) withPlacement(code string, edit func(*core.LevelSession, *core.Placement) error) (*PlacementResult, error) {
	session, err := s.activeSession()
	if err != nil {
		return nil, err
	}
	p, err := session.Find(code)
	if err != nil {
		return nil, err
	}
	if err := edit(session, p); err != nil {
		return nil, err
	}
	return &PlacementResult{Level: session.Level(), Placement: p}, nil
}

func (s *appService) MovePlacement(ctx context.Context, code string, dx, dy float64) (*PlacementResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.withPlacement(code, func(session *core.LevelSession, p *core.Placement) error {
		return session.Move(p, dx, dy)
	})
}

func (s *appService) ResizePlacement(ctx context.Context, code string, radius float64) (*PlacementResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.withPlacement(code, func(session *core.LevelSession, p *core.Placement) error {
		return session.Resize(p, radius)
	})
}

func (s *appService) RenamePlacement(ctx context.Context, code, name string) (*PlacementResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.withPlacement(code, func(session *core.LevelSession, p *core.Placement) error {
		return session.Rename(p, name)
	})
	if err != nil {
		return nil, err
	}
	s.changelog.Log("placement renamed: %s -> %q", code, name)
	return res, nil
}

func (s *appService) SetPlacementManager(ctx context.Context, code, manager string) (*PlacementResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.withPlacement(code, func(session *core.LevelSession, p *core.Placement) error {
		return session.SetManager(p, manager)
	})
}

func (s *appService) DeletePlacement(ctx context.Context, code string) (*DeletePlacementResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, err := s.activeSession()
	if err != nil {
		return nil, err
	}
	p, err := session.Find(code)
	if err != nil {
		return nil, err
	}
	orphaned, err := session.Delete(p)
	if err != nil {
		return nil, err
	}
	s.changelog.Log("placement deleted: %s %q on %q (%d assignments unshelved)",
		code, p.Name, session.Level(), len(orphaned))
	return &DeletePlacementResult{Level: session.Level(), Code: code, Orphaned: orphaned}, nil
}

func (s *appService) AssignItem(ctx context.Context, req AssignItemRequest) (*PlacementResult, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	it, err := s.items.Get(req.ItemCode)
	if err != nil {
		return nil, err
	}
	res, err := s.withPlacement(req.PlacementCode, func(session *core.LevelSession, p *core.Placement) error {
		_, err := session.Assign(p, it.Code, it.Name, req.Drawer)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.changelog.Log("item assigned: %s %q -> placement %s on %q", it.Code, it.Name, req.PlacementCode, res.Level)
	return res, nil
}

func (s *appService) UnassignItem(ctx context.Context, placementCode, itemCode string) (*PlacementResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.withPlacement(placementCode, func(session *core.LevelSession, p *core.Placement) error {
		return session.Unassign(p, itemCode)
	})
	if err != nil {
		return nil, err
	}
	s.changelog.Log("item unassigned: %s from placement %s on %q", itemCode, placementCode, res.Level)
	return res, nil
}

func (s *appService) MoveAssignment(ctx context.Context, fromCode, toCode, itemCode string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, err := s.activeSession()
	if err != nil {
		return err
	}
	from, err := session.Find(fromCode)
	if err != nil {
		return err
	}
	to, err := session.Find(toCode)
	if err != nil {
		return err
	}
	if err := session.MoveAssignment(from, to, itemCode); err != nil {
		return err
	}
	s.changelog.Log("item moved: %s from placement %s to %s on %q", itemCode, fromCode, toCode, session.Level())
	return nil
}

func (s *appService) SearchByName(ctx context.Context, query string) (*core.SearchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	active := ""
	if s.session != nil {
		active = s.session.Level()
	}
	return s.query.SearchByName(query, active)
}

func (s *appService) SearchByCode(ctx context.Context, itemCode string) (*core.PlacementRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query.SearchByCode(itemCode)
}

func (s *appService) UnassignedItems(ctx context.Context) (*ItemListResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, err := s.query.UnassignedItems()
	if err != nil {
		return nil, err
	}
	return &ItemListResult{Items: items}, nil
}

func (s *appService) CheckIntegrity(ctx context.Context) (*core.IntegrityReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query.Integrity()
}
