package app

import "stockmap/internal/core"

// ItemResult is returned by single-item operations.
type ItemResult struct {
	Item core.Item
}

// ItemListResult is returned by ListItems and UnassignedItems.
type ItemListResult struct {
	Items    []core.Item
	Degraded bool
}

// BarcodeResult is returned by ResolveBarcode.
type BarcodeResult struct {
	Barcode string
	Link    core.BarcodeLink
	Item    core.Item
}

// BarcodeListResult is returned by ListBarcodes.
type BarcodeListResult struct {
	Entries []core.BarcodeEntry
}

// CartResult is returned by every cart operation.
type CartResult struct {
	Lines []core.CartLine
}

// MovementResult is returned by FinalizeCart.
type MovementResult struct {
	Direction core.Direction
	Updated   []core.Item
}

// LevelResult is returned by AddLevel.
type LevelResult struct {
	Level core.Level
}

// LevelListResult is returned by ListLevels.
type LevelListResult struct {
	Levels   []core.Level
	Degraded bool
}

// LevelViewResult is the active level's working set.
type LevelViewResult struct {
	Level      string
	Placements []*core.Placement
	Degraded   bool
}

// PlacementResult is returned by placement operations on the active level.
type PlacementResult struct {
	Level     string
	Placement *core.Placement
}

// DeletePlacementResult reports what a placement deletion unshelved.
type DeletePlacementResult struct {
	Level    string
	Code     string
	Orphaned []core.Supplement
}

// ImportResult reports what an ImportLevel call replaced.
type ImportResult struct {
	Levels     []string
	Placements int
}
