package core

import (
	"encoding/json"
	"fmt"
)

// Item is a global inventory record, independent of any placement.
// The JSON field names (nombre/stock) are the wire format shared with the
// desktop tools and must not change.
type Item struct {
	Code  string `json:"-"`
	Name  string `json:"nombre"`
	Stock int    `json:"stock"`
}

// BarcodeLink says "this scanned barcode equals Factor units of ItemCode".
type BarcodeLink struct {
	ItemCode string `json:"id_interno"`
	Factor   int    `json:"factor"`
}

// Level is one warehouse floor-plan with its own placement file and image.
type Level struct {
	Name      string `json:"name"`
	DataFile  string `json:"data_file"`
	ImageFile string `json:"image_file"`
}

// Placement is a labeled point on a level's floor-plan image representing a
// physical shelf. Field order matches the on-disk object order.
type Placement struct {
	X           float64      `json:"x"`
	Y           float64      `json:"y"`
	Name        string       `json:"nombre"`
	Radius      float64      `json:"radio"`
	Supplements []Supplement `json:"suplementos"`
	Manager     string       `json:"encargado"`
	Code        string       `json:"codigo"`
}

// HoldsItem reports whether the placement's assignment list contains code.
func (p *Placement) HoldsItem(code string) bool {
	for _, s := range p.Supplements {
		if !s.Legacy && s.ItemCode == code {
			return true
		}
	}
	return false
}

// Supplement is one entry in a placement's assignment list. Two wire forms
// coexist: the structured object {nombre, codigo, gaveta} and a legacy bare
// string (item name only, no code). Legacy entries round-trip verbatim and
// are only normalized when the caller explicitly rewrites them.
type Supplement struct {
	Legacy   bool
	Name     string
	ItemCode string
	Drawer   *int
}

// NewAssignment builds a structured supplement entry.
func NewAssignment(itemCode, name string, drawer *int) Supplement {
	return Supplement{Name: name, ItemCode: itemCode, Drawer: drawer}
}

type supplementWire struct {
	Name     string `json:"nombre"`
	ItemCode string `json:"codigo"`
	Drawer   *int   `json:"gaveta"`
}

func (s Supplement) MarshalJSON() ([]byte, error) {
	if s.Legacy {
		return json.Marshal(s.Name)
	}
	return json.Marshal(supplementWire{Name: s.Name, ItemCode: s.ItemCode, Drawer: s.Drawer})
}

func (s *Supplement) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*s = Supplement{Legacy: true, Name: name}
		return nil
	}
	var w supplementWire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("supplement entry is neither a string nor an object: %w", err)
	}
	*s = Supplement{Name: w.Name, ItemCode: w.ItemCode, Drawer: w.Drawer}
	return nil
}

// PlacementRef locates a placement within a specific level.
type PlacementRef struct {
	Level     string     `json:"level"`
	Placement *Placement `json:"placement"`
}

// SearchResult is the outcome of a name search. Cross-level matches are
// advisory: the caller is told which level holds the match and is expected to
// switch there and search again, mirroring the desktop tool's behavior.
type SearchResult struct {
	Found       bool       `json:"found"`
	Level       string     `json:"level,omitempty"`
	Placement   *Placement `json:"placement,omitempty"`
	SwitchLevel bool       `json:"switch_level,omitempty"`
}
