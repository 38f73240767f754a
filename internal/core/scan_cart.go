package core

import "fmt"

// Direction says which way stock moves when a cart is finalized.
type Direction string

const (
	Ingress Direction = "ingress" // goods received, stock increases
	Egress  Direction = "egress"  // goods dispatched, stock decreases
)

// CartLine is one item accumulated in the scan cart.
type CartLine struct {
	ItemCode string `json:"item_code"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// ScanCart accumulates scanned quantities before they are committed to the
// inventory in one ingress or egress movement. The cart is purely in-memory;
// nothing touches the inventory file until Finalize.
type ScanCart struct {
	items *ItemStore
	order []string
	lines map[string]*CartLine
}

func NewScanCart(items *ItemStore) *ScanCart {
	return &ScanCart{items: items, lines: make(map[string]*CartLine)}
}

// Scan resolves a barcode and adds its factor worth of units to the cart.
// Unknown barcodes return ErrUnlinked; the caller decides whether to link
// the barcode or create a new item first.
func (c *ScanCart) Scan(barcode string) (CartLine, error) {
	link, err := c.items.ResolveBarcode(barcode)
	if err != nil {
		return CartLine{}, err
	}
	return c.Add(link.ItemCode, link.Factor)
}

// Add puts qty units of an item into the cart, merging with an existing line.
func (c *ScanCart) Add(itemCode string, qty int) (CartLine, error) {
	if qty <= 0 {
		return CartLine{}, fmt.Errorf("cart quantity must be positive, got %d: %w", qty, ErrInvalidInput)
	}
	it, err := c.items.Get(itemCode)
	if err != nil {
		return CartLine{}, err
	}
	line, ok := c.lines[itemCode]
	if !ok {
		line = &CartLine{ItemCode: itemCode, Name: it.Name}
		c.lines[itemCode] = line
		c.order = append(c.order, itemCode)
	}
	line.Quantity += qty
	return *line, nil
}

// SetQuantity overwrites a cart line's quantity.
func (c *ScanCart) SetQuantity(itemCode string, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("cart quantity must be positive, got %d: %w", qty, ErrInvalidInput)
	}
	line, ok := c.lines[itemCode]
	if !ok {
		return fmt.Errorf("item %s is not in the cart: %w", itemCode, ErrNotFound)
	}
	line.Quantity = qty
	return nil
}

// Remove drops a line from the cart without touching the inventory.
func (c *ScanCart) Remove(itemCode string) error {
	if _, ok := c.lines[itemCode]; !ok {
		return fmt.Errorf("item %s is not in the cart: %w", itemCode, ErrNotFound)
	}
	delete(c.lines, itemCode)
	for i, code := range c.order {
		if code == itemCode {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

// Clear empties the cart.
func (c *ScanCart) Clear() {
	c.lines = make(map[string]*CartLine)
	c.order = nil
}

// Lines returns the cart contents in scan order.
func (c *ScanCart) Lines() []CartLine {
	out := make([]CartLine, 0, len(c.order))
	for _, code := range c.order {
		out = append(out, *c.lines[code])
	}
	return out
}

// Empty reports whether the cart holds no lines.
func (c *ScanCart) Empty() bool { return len(c.lines) == 0 }

// Finalize commits the cart as one stock movement: ingress adds every line's
// quantity to its item, egress subtracts it (stock may go negative). All
// deltas land in a single persist; on success the cart is cleared.
func (c *ScanCart) Finalize(dir Direction) ([]Item, error) {
	if dir != Ingress && dir != Egress {
		return nil, fmt.Errorf("unknown movement direction %q: %w", dir, ErrInvalidInput)
	}
	if len(c.lines) == 0 {
		return nil, fmt.Errorf("cart is empty: %w", ErrInvalidInput)
	}
	deltas := make(map[string]int, len(c.lines))
	for code, line := range c.lines {
		if dir == Egress {
			deltas[code] = -line.Quantity
		} else {
			deltas[code] = line.Quantity
		}
	}
	updated, err := c.items.AdjustStockBulk(deltas)
	if err != nil {
		return nil, err
	}
	c.Clear()
	return updated, nil
}
