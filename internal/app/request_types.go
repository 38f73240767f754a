package app

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"stockmap/internal/core"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// checkRequest runs struct-tag validation and folds failures into the data
// layer's ErrInvalidInput so callers handle one error kind.
func checkRequest(req any) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%v: %w", err, core.ErrInvalidInput)
	}
	return nil
}

// CreateItemRequest is the input for adding an inventory item.
type CreateItemRequest struct {
	Code  string `validate:"required,numeric"`
	Name  string `validate:"required"`
	Stock int
}

// UpdateItemRequest is the input for editing an item. Nil fields are kept.
type UpdateItemRequest struct {
	Code  string `validate:"required,numeric"`
	Name  *string
	Stock *int
}

// LinkBarcodeRequest is the input for mapping a barcode to an item.
type LinkBarcodeRequest struct {
	Barcode  string `validate:"required"`
	ItemCode string `validate:"required,numeric"`
	Factor   int    `validate:"required,gt=0"`
}

// AddToCartRequest is the input for putting an item into the scan cart
// without going through a barcode.
type AddToCartRequest struct {
	ItemCode string `validate:"required,numeric"`
	Quantity int    `validate:"required,gt=0"`
}

// AddLevelRequest is the input for registering a warehouse level.
// ImageSource optionally names a PNG to install as the floor plan.
type AddLevelRequest struct {
	Name        string `validate:"required"`
	ImageSource string
}

// CreatePlacementRequest is the input for adding a placement to the active
// level. An empty Code auto-generates the next unique one.
type CreatePlacementRequest struct {
	X       float64
	Y       float64
	Name    string `validate:"required"`
	Manager string
	Code    string `validate:"omitempty,numeric"`
}

// AssignItemRequest is the input for shelving an item on a placement.
// Drawer is the optional compartment number within the placement.
type AssignItemRequest struct {
	PlacementCode string `validate:"required"`
	ItemCode      string `validate:"required,numeric"`
	Drawer        *int
}
