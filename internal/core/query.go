package core

import (
	"fmt"
	"strings"
)

// QueryFacade answers the read-only cross-cutting questions every front-end
// asks: where is an item, what is not yet shelved, is the data consistent.
// All queries read the persisted files, so answers reflect the last save.
type QueryFacade struct {
	items      *ItemStore
	placements *PlacementStore
	registry   *Registry
}

func NewQueryFacade(items *ItemStore, placements *PlacementStore, registry *Registry) *QueryFacade {
	return &QueryFacade{items: items, placements: placements, registry: registry}
}

// SearchByName finds the first placement whose assignment list contains an
// entry whose item name matches query (case-insensitive substring). Levels
// are scanned in registration order.
//
// A match on activeLevel is returned directly. A match on a different level
// is returned as a switch-level advisory — Level names where the match
// lives, Placement stays nil — preserving the original "found elsewhere,
// switch maps?" interaction. With an empty activeLevel the first match is
// returned directly wherever it lives.
func (q *QueryFacade) SearchByName(query, activeLevel string) (*SearchResult, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil, fmt.Errorf("search query must not be empty: %w", ErrInvalidInput)
	}

	var result *SearchResult
	err := q.placements.forEachLevel(nil, func(level string, placements []*Placement) (bool, error) {
		for _, p := range placements {
			if !placementMatchesName(p, needle) {
				continue
			}
			if activeLevel == "" || level == activeLevel {
				result = &SearchResult{Found: true, Level: level, Placement: p}
			} else {
				result = &SearchResult{Found: true, Level: level, SwitchLevel: true}
			}
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	if result == nil {
		return &SearchResult{}, nil
	}
	return result, nil
}

func placementMatchesName(p *Placement, needle string) bool {
	for _, s := range p.Supplements {
		if strings.Contains(strings.ToLower(s.Name), needle) {
			return true
		}
	}
	return false
}

// SearchByCode finds the placement holding the exact item code, scanning
// every level's persisted assignments.
func (q *QueryFacade) SearchByCode(code string) (*PlacementRef, error) {
	ref, err := q.placements.findAssigned(nil, code)
	if err != nil {
		return nil, err
	}
	if ref == nil {
		return nil, fmt.Errorf("item code %s is not assigned anywhere: %w", code, ErrNotFound)
	}
	return ref, nil
}

// assignedCodes collects every item code assigned on any level.
func (q *QueryFacade) assignedCodes() (map[string]bool, error) {
	codes := make(map[string]bool)
	err := q.placements.forEachLevel(nil, func(_ string, placements []*Placement) (bool, error) {
		for _, p := range placements {
			for _, s := range p.Supplements {
				if !s.Legacy && s.ItemCode != "" {
					codes[s.ItemCode] = true
				}
			}
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return codes, nil
}

// UnassignedItems returns the inventory items that appear in no placement's
// assignment list on any level, ordered by code.
func (q *QueryFacade) UnassignedItems() ([]Item, error) {
	assigned, err := q.assignedCodes()
	if err != nil {
		return nil, err
	}
	var out []Item
	for _, it := range q.items.List() {
		if !assigned[it.Code] {
			out = append(out, it)
		}
	}
	return out, nil
}

// AssignmentCount returns how many placements across all levels hold the
// item code, with their locations. The exclusivity invariant means 0 or 1;
// anything higher is a data-integrity violation the caller must surface.
func (q *QueryFacade) AssignmentCount(itemCode string) (int, []PlacementRef, error) {
	var refs []PlacementRef
	err := q.placements.forEachLevel(nil, func(level string, placements []*Placement) (bool, error) {
		for _, p := range placements {
			if p.HoldsItem(itemCode) {
				refs = append(refs, PlacementRef{Level: level, Placement: p})
			}
		}
		return false, nil
	})
	if err != nil {
		return 0, nil, err
	}
	return len(refs), refs, nil
}

// CheckDeletable verifies that an item can be removed from the inventory:
// it must exist and must not be assigned to any placement on any level.
func (q *QueryFacade) CheckDeletable(itemCode string) error {
	if _, err := q.items.Get(itemCode); err != nil {
		return err
	}
	count, refs, err := q.AssignmentCount(itemCode)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("item %s is assigned to placement %q on level %q: %w",
			itemCode, refs[0].Placement.Name, refs[0].Level, ErrInUse)
	}
	return nil
}

// IntegrityIssue is one detected inconsistency in the persisted data.
type IntegrityIssue struct {
	Kind      string `json:"kind"` // multi_assignment, dangling_item, duplicate_placement_code
	Code      string `json:"code"`
	Level     string `json:"level,omitempty"`
	Placement string `json:"placement,omitempty"`
	Detail    string `json:"detail"`
}

// IntegrityReport is the result of a full scan over all persisted files.
// Violations are detected and reported, never auto-repaired.
type IntegrityReport struct {
	Issues        []IntegrityIssue `json:"issues"`
	LegacyEntries int              `json:"legacy_entries"`
}

// Clean reports whether the scan found no violations.
func (r *IntegrityReport) Clean() bool { return len(r.Issues) == 0 }

// Integrity scans every level for violated invariants: item codes assigned
// to more than one placement, assignments referencing items that no longer
// exist (tolerated for backward compatibility, but surfaced), and placement
// codes reused across levels. Legacy string-only entries are counted, not
// flagged.
func (q *QueryFacade) Integrity() (*IntegrityReport, error) {
	report := &IntegrityReport{}
	itemRefs := make(map[string][]PlacementRef)
	placementCodes := make(map[string]string) // placement code -> first level seen

	err := q.placements.forEachLevel(nil, func(level string, placements []*Placement) (bool, error) {
		for _, p := range placements {
			if p.Code != "" {
				if first, seen := placementCodes[p.Code]; seen {
					report.Issues = append(report.Issues, IntegrityIssue{
						Kind:      "duplicate_placement_code",
						Code:      p.Code,
						Level:     level,
						Placement: p.Name,
						Detail:    fmt.Sprintf("placement code %s already used on level %q", p.Code, first),
					})
				} else {
					placementCodes[p.Code] = level
				}
			}
			for _, s := range p.Supplements {
				if s.Legacy {
					report.LegacyEntries++
					continue
				}
				itemRefs[s.ItemCode] = append(itemRefs[s.ItemCode], PlacementRef{Level: level, Placement: p})
				if _, err := q.items.Get(s.ItemCode); err != nil {
					report.Issues = append(report.Issues, IntegrityIssue{
						Kind:      "dangling_item",
						Code:      s.ItemCode,
						Level:     level,
						Placement: p.Name,
						Detail:    fmt.Sprintf("assignment references item %s which is not in the inventory", s.ItemCode),
					})
				}
			}
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}

	for code, refs := range itemRefs {
		if len(refs) > 1 {
			locations := make([]string, 0, len(refs))
			for _, ref := range refs {
				locations = append(locations, fmt.Sprintf("%s/%s", ref.Level, ref.Placement.Name))
			}
			report.Issues = append(report.Issues, IntegrityIssue{
				Kind:   "multi_assignment",
				Code:   code,
				Detail: fmt.Sprintf("item %s assigned %d times: %s", code, len(refs), strings.Join(locations, ", ")),
			})
		}
	}
	return report, nil
}
