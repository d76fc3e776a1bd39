// Package aggregate holds the in-memory cart: line items, the
// max-products-per-order cap, and total computation. It is the single
// place cart mutations go through, so the cap invariant holds no matter
// which transport or store drives it.
package aggregate

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/edaexpress/fooddelivery/delivery/pkg/pricing"
	inErrors "github.com/edaexpress/fooddelivery/internal/errors"
)

type Item struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"price"`
	Quantity  int32           `json:"quantity"`
}

// Cart is an insertion-ordered collection of line items. Mutations are a
// critical section; readers observe a consistent snapshot.
type Cart struct {
	mu       sync.Mutex
	items    []Item
	maxItems *int32
	quote    *pricing.Quote
}

func New() *Cart {
	return &Cart{}
}

// Rehydrate rebuilds a cart from persisted items. Without a valid auth
// context the stored cart is dropped wholesale - the persistence layer
// never decides this on its own, callers apply the policy explicitly.
// Duplicate ids are merged and non-positive quantities discarded, so a
// rehydrated cart always satisfies the aggregate invariants.
func Rehydrate(items []Item, hasAuth bool) *Cart {
	cart := New()
	if !hasAuth {
		return cart
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		if i, ok := cart.indexOf(item.ID); ok {
			cart.items[i].Quantity += item.Quantity
			continue
		}
		cart.items = append(cart.items, item)
	}
	return cart
}

// AddItem appends a new line item with quantity 1, or increments the
// existing one. When the configured cap would be exceeded the cart is left
// unchanged and a CapExceededError is returned.
func (c *Cart) AddItem(id, name string, unitPrice decimal.Decimal) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkCap(c.itemCount() + 1); err != nil {
		return err
	}
	if i, ok := c.indexOf(id); ok {
		c.items[i].Quantity++
		return nil
	}
	c.items = append(c.items, Item{ID: id, Name: name, UnitPrice: unitPrice, Quantity: 1})
	return nil
}

// RemoveItem deletes the item if present. Removing an absent id is a
// no-op, not an error: UI state can race ahead of cart state.
func (c *Cart) RemoveItem(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(id)
}

// UpdateQuantity sets the item's quantity. A quantity of zero or below
// removes the item entirely. An absent id is a no-op. Cap violations
// reject the whole mutation.
func (c *Cart) UpdateQuantity(id string, quantity int32) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if quantity <= 0 {
		c.removeLocked(id)
		return nil
	}

	i, ok := c.indexOf(id)
	if !ok {
		return nil
	}
	prospective := c.itemCount() - c.items[i].Quantity + quantity
	if err := c.checkCap(prospective); err != nil {
		return err
	}
	c.items[i].Quantity = quantity
	return nil
}

// Clear removes all items and the cached delivery quote.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	c.quote = nil
}

// SetMaxItems sets or clears the cap. An already over-cap cart is left
// as-is; the cap is only enforced on future mutations.
func (c *Cart) SetMaxItems(limit *int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if limit == nil {
		c.maxItems = nil
		return
	}
	v := *limit
	c.maxItems = &v
}

func (c *Cart) MaxItems() *int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.maxItems == nil {
		return nil
	}
	v := *c.maxItems
	return &v
}

// Items returns a copy of the line items in insertion order.
func (c *Cart) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := make([]Item, len(c.items))
	copy(items, c.items)
	return items
}

func (c *Cart) Quantity(id string) int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i, ok := c.indexOf(id); ok {
		return c.items[i].Quantity
	}
	return 0
}

// Subtotal is the sum of unit price times quantity over all items.
func (c *Cart) Subtotal() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	subtotal := decimal.Zero
	for _, item := range c.items {
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt32(item.Quantity)))
	}
	return subtotal
}

// ItemCount is the total quantity across all items.
func (c *Cart) ItemCount() int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.itemCount()
}

func (c *Cart) SetQuote(quote *pricing.Quote) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.quote = quote
}

func (c *Cart) Quote() *pricing.Quote {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.quote
}

// GrandTotal is the subtotal plus the quoted delivery cost. A nil quote or
// a free-delivery quote adds nothing.
func (c *Cart) GrandTotal(quote *pricing.Quote) decimal.Decimal {
	subtotal := c.Subtotal()
	if quote == nil || quote.IsFree {
		return subtotal
	}
	return subtotal.Add(quote.Cost)
}

func (c *Cart) indexOf(id string) (int, bool) {
	for i, item := range c.items {
		if item.ID == id {
			return i, true
		}
	}
	return 0, false
}

func (c *Cart) removeLocked(id string) {
	if i, ok := c.indexOf(id); ok {
		c.items = append(c.items[:i], c.items[i+1:]...)
	}
}

func (c *Cart) itemCount() int32 {
	var count int32
	for _, item := range c.items {
		count += item.Quantity
	}
	return count
}

func (c *Cart) checkCap(prospective int32) error {
	if c.maxItems != nil && prospective > *c.maxItems {
		return inErrors.CapExceededError{Limit: *c.maxItems}
	}
	return nil
}
