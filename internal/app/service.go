package app

import (
	"context"

	"stockmap/internal/core"
)

// ApplicationService is the single interface all UI adapters (REPL, CLI, Web)
// call. It decouples presentation from the data layer. Implementations must
// contain no fmt.Println, no ANSI codes, and no display logic of any kind.
type ApplicationService interface {
	// ListItems returns the whole inventory ordered by item code.
	ListItems(ctx context.Context) (*ItemListResult, error)

	// GetItem returns a single inventory item by code.
	GetItem(ctx context.Context, code string) (*ItemResult, error)

	// CreateItem adds a new item to the global inventory.
	CreateItem(ctx context.Context, req CreateItemRequest) (*ItemResult, error)

	// UpdateItem changes an item's name and/or stock; nil fields are kept.
	UpdateItem(ctx context.Context, req UpdateItemRequest) (*ItemResult, error)

	// DeleteItem removes an item. Fails with ErrInUse while any placement on
	// any level still assigns the code.
	DeleteItem(ctx context.Context, code string) error

	// AdjustStock applies a signed delta to an item's stock (no floor).
	AdjustStock(ctx context.Context, code string, delta int) (*ItemResult, error)

	// LinkBarcode maps a scanned barcode to factor units of an item.
	LinkBarcode(ctx context.Context, req LinkBarcodeRequest) error

	// ResolveBarcode returns the item a barcode maps to, with its factor.
	ResolveBarcode(ctx context.Context, barcode string) (*BarcodeResult, error)

	// ListBarcodes returns the full barcode table ordered by barcode.
	ListBarcodes(ctx context.Context) (*BarcodeListResult, error)

	// ScanBarcode resolves a barcode and adds its factor to the scan cart.
	ScanBarcode(ctx context.Context, barcode string) (*CartResult, error)

	// AddToCart puts a quantity of an item into the scan cart directly.
	AddToCart(ctx context.Context, req AddToCartRequest) (*CartResult, error)

	// SetCartQuantity overwrites a cart line's quantity.
	SetCartQuantity(ctx context.Context, itemCode string, qty int) (*CartResult, error)

	// RemoveFromCart drops a cart line without touching the inventory.
	RemoveFromCart(ctx context.Context, itemCode string) (*CartResult, error)

	// ClearCart empties the scan cart.
	ClearCart(ctx context.Context) error

	// Cart returns the current cart contents in scan order.
	Cart(ctx context.Context) (*CartResult, error)

	// FinalizeCart commits the cart as one ingress or egress stock movement
	// and clears it on success.
	FinalizeCart(ctx context.Context, direction core.Direction) (*MovementResult, error)

	// ListLevels returns the registered levels in registration order.
	ListLevels(ctx context.Context) (*LevelListResult, error)

	// LevelNames returns the level names for the read-only mirror, falling
	// back to a data-directory scan when the registry is empty.
	LevelNames(ctx context.Context) ([]string, error)

	// LevelPlacements returns a level's persisted placements. Unregistered
	// names fall back to the derived file name; a missing file is an empty
	// level, matching the mirror's permissive lookup.
	LevelPlacements(ctx context.Context, name string) ([]*core.Placement, error)

	// LevelImage returns the path of a level's floor-plan image.
	LevelImage(ctx context.Context, name string) (string, error)

	// AddLevel registers a new level, optionally installing a floor-plan image.
	AddLevel(ctx context.Context, req AddLevelRequest) (*LevelResult, error)

	// RemoveLevel drops a level from the registry; its files are kept.
	RemoveLevel(ctx context.Context, name string) error

	// SwitchLevel makes a registered level the active working set for the
	// placement operations below.
	SwitchLevel(ctx context.Context, name string) (*LevelViewResult, error)

	// ActiveLevel returns the current working set.
	ActiveLevel(ctx context.Context) (*LevelViewResult, error)

	// ExportLevel writes a level's placements to an external JSON file.
	ExportLevel(ctx context.Context, name, destPath string) error

	// ImportLevel replaces level data from an external JSON file. The file
	// may hold one level's placement array or an object mapping level names
	// to arrays; only registered levels are imported.
	ImportLevel(ctx context.Context, name, srcPath string) (*ImportResult, error)

	// CreatePlacement adds a placement to the active level. An empty code
	// auto-generates the next system-wide unique 7-digit code.
	CreatePlacement(ctx context.Context, req CreatePlacementRequest) (*PlacementResult, error)

	// MovePlacement shifts a placement on the active level by a delta.
	MovePlacement(ctx context.Context, code string, dx, dy float64) (*PlacementResult, error)

	// ResizePlacement sets a placement's radius on the active level.
	ResizePlacement(ctx context.Context, code string, radius float64) (*PlacementResult, error)

	// RenamePlacement changes a placement's display name on the active level.
	RenamePlacement(ctx context.Context, code, name string) (*PlacementResult, error)

	// SetPlacementManager changes a placement's responsible person.
	SetPlacementManager(ctx context.Context, code, manager string) (*PlacementResult, error)

	// DeletePlacement removes a placement from the active level, returning
	// the assignments that became unshelved.
	DeletePlacement(ctx context.Context, code string) (*DeletePlacementResult, error)

	// AssignItem shelves an inventory item on a placement of the active
	// level. An item lives on at most one placement system-wide.
	AssignItem(ctx context.Context, req AssignItemRequest) (*PlacementResult, error)

	// UnassignItem removes an item from a placement; the item itself stays.
	UnassignItem(ctx context.Context, placementCode, itemCode string) (*PlacementResult, error)

	// MoveAssignment moves an item between two placements of the active level.
	MoveAssignment(ctx context.Context, fromCode, toCode, itemCode string) error

	// SearchByName finds the first placement holding an item whose name
	// matches the query, with a switch-level advisory for other levels.
	SearchByName(ctx context.Context, query string) (*core.SearchResult, error)

	// SearchByCode finds the placement holding the exact item code.
	SearchByCode(ctx context.Context, itemCode string) (*core.PlacementRef, error)

	// UnassignedItems returns the items shelved on no placement.
	UnassignedItems(ctx context.Context) (*ItemListResult, error)

	// CheckIntegrity scans every file for violated invariants.
	CheckIntegrity(ctx context.Context) (*core.IntegrityReport, error)
}
