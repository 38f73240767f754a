package core

import (
	"errors"
	"testing"
)

func newTestCart(t *testing.T) (*ItemStore, *ScanCart) {
	t.Helper()
	items := newTestItemStore(t)
	if _, err := items.Create("100", "Correa", 10); err != nil {
		t.Fatal(err)
	}
	if _, err := items.Create("200", "Polea", 5); err != nil {
		t.Fatal(err)
	}
	if err := items.LinkBarcode("7791111111111", "100", 6); err != nil {
		t.Fatal(err)
	}
	return items, NewScanCart(items)
}

func TestScanCartScanAppliesFactor(t *testing.T) {
	_, cart := newTestCart(t)

	line, err := cart.Scan("7791111111111")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if line.ItemCode != "100" || line.Quantity != 6 {
		t.Fatalf("scan line = %+v, want item 100 qty 6", line)
	}

	// Re-scanning the same barcode merges into the existing line.
	line, err = cart.Scan("7791111111111")
	if err != nil {
		t.Fatal(err)
	}
	if line.Quantity != 12 {
		t.Fatalf("merged quantity = %d, want 12", line.Quantity)
	}
	if len(cart.Lines()) != 1 {
		t.Fatalf("expected one merged line, got %d", len(cart.Lines()))
	}
}

func TestScanCartUnknownBarcode(t *testing.T) {
	_, cart := newTestCart(t)
	if _, err := cart.Scan("000"); !errors.Is(err, ErrUnlinked) {
		t.Fatalf("unknown barcode: error = %v, want ErrUnlinked", err)
	}
}

func TestScanCartLineEdits(t *testing.T) {
	_, cart := newTestCart(t)
	if _, err := cart.Add("100", 2); err != nil {
		t.Fatal(err)
	}
	if _, err := cart.Add("200", 1); err != nil {
		t.Fatal(err)
	}

	if err := cart.SetQuantity("100", 7); err != nil {
		t.Fatal(err)
	}
	if err := cart.SetQuantity("100", 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("zero quantity: error = %v, want ErrInvalidInput", err)
	}
	if err := cart.Remove("200"); err != nil {
		t.Fatal(err)
	}
	if err := cart.Remove("200"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("double remove: error = %v, want ErrNotFound", err)
	}

	lines := cart.Lines()
	if len(lines) != 1 || lines[0].ItemCode != "100" || lines[0].Quantity != 7 {
		t.Fatalf("lines = %+v", lines)
	}
}

func TestScanCartFinalizeIngress(t *testing.T) {
	items, cart := newTestCart(t)
	if _, err := cart.Add("100", 4); err != nil {
		t.Fatal(err)
	}

	updated, err := cart.Finalize(Ingress)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if len(updated) != 1 || updated[0].Stock != 14 {
		t.Fatalf("updated = %+v, want stock 14", updated)
	}
	if !cart.Empty() {
		t.Fatal("cart must be cleared after a successful finalize")
	}
	if it, _ := items.Get("100"); it.Stock != 14 {
		t.Fatalf("store stock = %d, want 14", it.Stock)
	}
}

func TestScanCartFinalizeEgressAllowsNegativeStock(t *testing.T) {
	items, cart := newTestCart(t)
	if _, err := cart.Add("200", 8); err != nil {
		t.Fatal(err)
	}
	if _, err := cart.Finalize(Egress); err != nil {
		t.Fatal(err)
	}
	if it, _ := items.Get("200"); it.Stock != -3 {
		t.Fatalf("stock after egress = %d, want -3", it.Stock)
	}
}

func TestScanCartFinalizeValidation(t *testing.T) {
	_, cart := newTestCart(t)
	if _, err := cart.Finalize(Ingress); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty cart: error = %v, want ErrInvalidInput", err)
	}
	if _, err := cart.Add("100", 1); err != nil {
		t.Fatal(err)
	}
	if _, err := cart.Finalize(Direction("sideways")); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("bad direction: error = %v, want ErrInvalidInput", err)
	}
	if cart.Empty() {
		t.Fatal("failed finalize must keep the cart")
	}
}
