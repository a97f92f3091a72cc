package services

import (
	"sync"

	"github.com/Batussaii/BANT3D/models"
)

// CartStore is an in-memory ordered collection of line items keyed by the
// product+variant+color combination. Insertion order is preserved for
// display; it does not affect totals.
type CartStore struct {
	mu     sync.Mutex
	items  []models.LineItem
	coupon *models.Coupon
}

func NewCartStore() *CartStore {
	return &CartStore{}
}

// AddItem increments the quantity of an existing line or appends a new one
// with quantity 1. It always succeeds.
func (cs *CartStore) AddItem(item models.LineItem) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if item.Key == "" {
		item.Key = models.ItemKey(item.ProductID, item.Variant, item.Colors)
	}
	for i := range cs.items {
		if cs.items[i].Key == item.Key {
			cs.items[i].Quantity++
			return
		}
	}
	item.Quantity = 1
	cs.items = append(cs.items, item)
}

// RemoveItem decrements one unit for the given key, deleting the line when
// the last unit goes. Absent keys are a no-op.
func (cs *CartStore) RemoveItem(key string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	for i := range cs.items {
		if cs.items[i].Key != key {
			continue
		}
		if cs.items[i].Quantity > 1 {
			cs.items[i].Quantity--
			return
		}
		cs.items = append(cs.items[:i], cs.items[i+1:]...)
		return
	}
}

// Clear empties the cart. Invoked after a successful checkout handoff.
func (cs *CartStore) Clear() {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.items = nil
}

// Items returns a copy of the line items in insertion order.
func (cs *CartStore) Items() []models.LineItem {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	out := make([]models.LineItem, len(cs.items))
	copy(out, cs.items)
	return out
}

// ApplyCoupon applies a code, replacing any prior coupon. An empty or
// unknown code clears it. Returns whether a coupon is now applied.
func (cs *CartStore) ApplyCoupon(code string) bool {
	coupon, ok := LookupCoupon(code)

	cs.mu.Lock()
	defer cs.mu.Unlock()
	if !ok {
		cs.coupon = nil
		return false
	}
	cs.coupon = coupon
	return true
}

// Coupon returns the currently applied coupon, nil when none.
func (cs *CartStore) Coupon() *models.Coupon {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.coupon
}

// Totals computes the pricing breakdown for the current cart contents.
func (cs *CartStore) Totals(country string) models.Totals {
	cs.mu.Lock()
	items := make([]models.LineItem, len(cs.items))
	copy(items, cs.items)
	coupon := cs.coupon
	cs.mu.Unlock()

	return Quote(items, country, coupon)
}
