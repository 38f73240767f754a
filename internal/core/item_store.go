package core

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"stockmap/internal/storage"
)

// barcodeMapKey is the reserved key inside the inventory file that holds the
// barcode-to-item table. Older installs sometimes kept the table in a sibling
// file instead; LoadItemStore folds that variant in (see below).
const barcodeMapKey = "_mapeo_barras"

// siblingBarcodeFile is the legacy standalone barcode table file name.
const siblingBarcodeFile = "mapeo_barras.json"

// ItemStore owns the global inventory mapping (item code -> name/stock) and
// the barcode-to-item links. Every mutating operation persists the full store
// to its backing file before returning, so the on-disk file is never more
// than one call stale. Cost is O(store size) per mutation; acceptable at the
// data sizes this system serves.
type ItemStore struct {
	path     string
	items    map[string]Item
	links    map[string]BarcodeLink
	extras   map[string]json.RawMessage // unknown reserved ("_") keys, preserved verbatim
	degraded bool
}

type itemRecord struct {
	Name  string `json:"nombre"`
	Stock int    `json:"stock"`
}

// LoadItemStore reads the global inventory file at path. A missing file
// yields an empty store; a corrupt file yields an empty store with the
// degraded flag set rather than an error.
//
// If the file carries no barcode table but a sibling mapeo_barras.json
// exists (the other GUI variant's layout), its entries are adopted and will
// be written under the reserved key on the next persist. The sibling file is
// left untouched.
func LoadItemStore(path string) (*ItemStore, error) {
	s := &ItemStore{
		path:   path,
		items:  make(map[string]Item),
		links:  make(map[string]BarcodeLink),
		extras: make(map[string]json.RawMessage),
	}

	var raw map[string]json.RawMessage
	degraded, err := storage.ReadJSON(path, &raw)
	if err != nil {
		return nil, err
	}
	s.degraded = degraded

	sawBarcodeMap := false
	for key, val := range raw {
		switch {
		case key == barcodeMapKey:
			sawBarcodeMap = true
			if err := json.Unmarshal(val, &s.links); err != nil {
				s.degraded = true
				s.links = make(map[string]BarcodeLink)
			}
		case strings.HasPrefix(key, "_"):
			s.extras[key] = val
		default:
			var rec itemRecord
			if err := json.Unmarshal(val, &rec); err != nil {
				s.degraded = true
				continue
			}
			s.items[key] = Item{Code: key, Name: rec.Name, Stock: rec.Stock}
		}
	}

	if !sawBarcodeMap {
		sibling := filepath.Join(filepath.Dir(path), siblingBarcodeFile)
		var links map[string]BarcodeLink
		if degradedSib, err := storage.ReadJSON(sibling, &links); err == nil && !degradedSib && len(links) > 0 {
			s.links = links
		}
	}

	return s, nil
}

// Degraded reports whether the backing file existed but could not be fully
// parsed, in which case the store started empty (or partially loaded).
func (s *ItemStore) Degraded() bool { return s.degraded }

// Path returns the backing file path.
func (s *ItemStore) Path() string { return s.path }

func (s *ItemStore) persist() error {
	out := make(map[string]any, len(s.items)+len(s.extras)+1)
	for code, it := range s.items {
		out[code] = itemRecord{Name: it.Name, Stock: it.Stock}
	}
	for key, val := range s.extras {
		out[key] = val
	}
	out[barcodeMapKey] = s.links
	return storage.WriteJSON(s.path, out)
}

// Get returns the item with the given code.
func (s *ItemStore) Get(code string) (Item, error) {
	it, ok := s.items[code]
	if !ok {
		return Item{}, fmt.Errorf("item %s: %w", code, ErrNotFound)
	}
	return it, nil
}

// List returns all items ordered by code.
func (s *ItemStore) List() []Item {
	codes := make([]string, 0, len(s.items))
	for code := range s.items {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	items := make([]Item, 0, len(codes))
	for _, code := range codes {
		items = append(items, s.items[code])
	}
	return items
}

// Create adds a new item. The code must be a nonempty digit string and must
// not already exist.
func (s *ItemStore) Create(code, name string, initialStock int) (Item, error) {
	if !isDigits(code) {
		return Item{}, fmt.Errorf("item code %q must be a nonempty digit string: %w", code, ErrInvalidInput)
	}
	if _, exists := s.items[code]; exists {
		return Item{}, fmt.Errorf("item code %s: %w", code, ErrDuplicateCode)
	}
	it := Item{Code: code, Name: strings.TrimSpace(name), Stock: initialStock}
	s.items[code] = it
	if err := s.persist(); err != nil {
		delete(s.items, code)
		return Item{}, err
	}
	return it, nil
}

// Update changes an item's name and/or stock. Nil fields are left as-is.
func (s *ItemStore) Update(code string, name *string, stock *int) (Item, error) {
	prev, ok := s.items[code]
	if !ok {
		return Item{}, fmt.Errorf("item %s: %w", code, ErrNotFound)
	}
	next := prev
	if name != nil {
		next.Name = strings.TrimSpace(*name)
	}
	if stock != nil {
		next.Stock = *stock
	}
	s.items[code] = next
	if err := s.persist(); err != nil {
		s.items[code] = prev
		return Item{}, err
	}
	return next, nil
}

// Delete removes an item from the inventory. The caller is responsible for
// checking that no placement still assigns the code (QueryFacade.CheckDeletable);
// the store itself only knows about items.
func (s *ItemStore) Delete(code string) error {
	prev, ok := s.items[code]
	if !ok {
		return fmt.Errorf("item %s: %w", code, ErrNotFound)
	}
	delete(s.items, code)
	if err := s.persist(); err != nil {
		s.items[code] = prev
		return err
	}
	return nil
}

// AdjustStock applies a signed delta to an item's stock. Negative deltas are
// egress, positive ingress. There is no floor: stock may go negative,
// reflecting real-world backorder.
func (s *ItemStore) AdjustStock(code string, delta int) (Item, error) {
	prev, ok := s.items[code]
	if !ok {
		return Item{}, fmt.Errorf("item %s: %w", code, ErrNotFound)
	}
	next := prev
	next.Stock += delta
	s.items[code] = next
	if err := s.persist(); err != nil {
		s.items[code] = prev
		return Item{}, err
	}
	return next, nil
}

// AdjustStockBulk applies several stock deltas as one movement with a single
// persist. Either every delta lands or none do: unknown codes abort before
// anything changes, and a persist failure rolls all deltas back. Returns the
// updated items ordered by code.
func (s *ItemStore) AdjustStockBulk(deltas map[string]int) ([]Item, error) {
	prev := make(map[string]Item, len(deltas))
	for code := range deltas {
		it, ok := s.items[code]
		if !ok {
			return nil, fmt.Errorf("item %s: %w", code, ErrNotFound)
		}
		prev[code] = it
	}
	codes := make([]string, 0, len(deltas))
	for code, delta := range deltas {
		next := s.items[code]
		next.Stock += delta
		s.items[code] = next
		codes = append(codes, code)
	}
	if err := s.persist(); err != nil {
		for code, it := range prev {
			s.items[code] = it
		}
		return nil, err
	}
	sort.Strings(codes)
	updated := make([]Item, 0, len(codes))
	for _, code := range codes {
		updated = append(updated, s.items[code])
	}
	return updated, nil
}

// LinkBarcode maps a scanned barcode to factor units of itemCode. Re-linking
// an already-known barcode overwrites the previous link.
func (s *ItemStore) LinkBarcode(barcode, itemCode string, factor int) error {
	if barcode == "" {
		return fmt.Errorf("barcode must not be empty: %w", ErrInvalidInput)
	}
	if factor <= 0 {
		return fmt.Errorf("barcode factor must be a positive integer, got %d: %w", factor, ErrInvalidInput)
	}
	if _, ok := s.items[itemCode]; !ok {
		return fmt.Errorf("item %s: %w", itemCode, ErrNotFound)
	}
	prev, hadPrev := s.links[barcode]
	s.links[barcode] = BarcodeLink{ItemCode: itemCode, Factor: factor}
	if err := s.persist(); err != nil {
		if hadPrev {
			s.links[barcode] = prev
		} else {
			delete(s.links, barcode)
		}
		return err
	}
	return nil
}

// ResolveBarcode returns the link for a scanned barcode, or ErrUnlinked.
func (s *ItemStore) ResolveBarcode(barcode string) (BarcodeLink, error) {
	link, ok := s.links[barcode]
	if !ok {
		return BarcodeLink{}, fmt.Errorf("barcode %s: %w", barcode, ErrUnlinked)
	}
	return link, nil
}

// BarcodeEntry pairs a barcode with its link, for listings.
type BarcodeEntry struct {
	Barcode string      `json:"barcode"`
	Link    BarcodeLink `json:"link"`
}

// Links returns the full barcode table ordered by barcode.
func (s *ItemStore) Links() []BarcodeEntry {
	barcodes := make([]string, 0, len(s.links))
	for b := range s.links {
		barcodes = append(barcodes, b)
	}
	sort.Strings(barcodes)
	out := make([]BarcodeEntry, 0, len(barcodes))
	for _, b := range barcodes {
		out = append(out, BarcodeEntry{Barcode: b, Link: s.links[b]})
	}
	return out
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
