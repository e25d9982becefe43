package basket

import (
	"fmt"
	"sync"
)

// Product describes a catalog entry at the moment it is added to the basket.
// UnitPrice is in paise; it is fixed at add-time and does not track later
// catalog price changes.
type Product struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	UnitPrice   int64  `json:"unit_price"`
	Image       string `json:"image"`
	Description string `json:"description"`
	Tag         string `json:"tag,omitempty"`
}

// LineItem is one product entry in the basket. Quantity is always >= 1 while
// the item exists; a decrement to zero removes the item instead.
type LineItem struct {
	Product
	Quantity int `json:"quantity"`
}

// Subscriber receives a snapshot of the basket after every mutation. It runs
// synchronously on the mutating goroutine, before the mutation returns, so
// readers never observe pre-mutation state afterwards. Subscribers must not
// call back into the basket.
type Subscriber func(items []LineItem)

// Basket holds the selected products and quantities for one shopping session.
// It is the exclusive owner of its line items: Items returns copies and all
// mutation goes through the methods below. Totals are derived from the items
// on every call, never stored.
type Basket struct {
	mu    sync.Mutex
	items []LineItem

	nextSubID int
	subs      map[int]Subscriber
}

func New() *Basket {
	return &Basket{
		subs: make(map[int]Subscriber),
	}
}

// Restore seeds a basket from previously persisted line items, preserving
// their order. Items with a non-positive quantity are dropped.
func Restore(items []LineItem) *Basket {
	b := New()
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		b.items = append(b.items, item)
	}
	return b
}

// AddItem adds the product to the basket. If a line item with the same ID
// already exists its quantity is incremented, otherwise a new line item is
// appended. A non-positive quantity is clamped to 1. A product without an ID
// or with a negative price is a contract violation and panics.
func (b *Basket) AddItem(p Product, quantity int) {
	if p.ID <= 0 {
		panic(fmt.Sprintf("basket: product without a valid id: %+v", p))
	}
	if p.UnitPrice < 0 {
		panic(fmt.Sprintf("basket: product %d with negative price %d", p.ID, p.UnitPrice))
	}
	if quantity <= 0 {
		quantity = 1
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.items {
		if b.items[i].ID == p.ID {
			b.items[i].Quantity += quantity
			b.notify()
			return
		}
	}

	b.items = append(b.items, LineItem{Product: p, Quantity: quantity})
	b.notify()
}

// UpdateQuantity sets the quantity of an existing line item to exactly
// quantity. A quantity <= 0 removes the item (no-op if absent). An unknown id
// with a positive quantity is a no-op; it never creates a new line item.
func (b *Basket) UpdateQuantity(id int64, quantity int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if quantity <= 0 {
		b.removeLocked(id)
		return
	}

	for i := range b.items {
		if b.items[i].ID == id {
			b.items[i].Quantity = quantity
			b.notify()
			return
		}
	}
}

// RemoveItem deletes the line item with the given id. Removing an absent id
// is a no-op, not an error.
func (b *Basket) RemoveItem(id int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.removeLocked(id)
}

func (b *Basket) removeLocked(id int64) {
	for i, item := range b.items {
		if item.ID == id {
			b.items = append(b.items[:i], b.items[i+1:]...)
			b.notify()
			return
		}
	}
}

// Clear empties the basket. The basket stays usable and behaves exactly like
// a freshly created one.
func (b *Basket) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.items) == 0 {
		return
	}
	b.items = nil
	b.notify()
}

// Items returns the line items in insertion order. The returned slice is a
// copy; mutating it does not affect the basket.
func (b *Basket) Items() []LineItem {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshot()
}

// TotalItemCount is the sum of quantities across all line items.
func (b *Basket) TotalItemCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	count := 0
	for _, item := range b.items {
		count += item.Quantity
	}
	return count
}

// TotalPrice is the sum of unit price times quantity across all line items,
// in paise. The delivery fee is not included; checkout adds it.
func (b *Basket) TotalPrice() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	var total int64
	for _, item := range b.items {
		total += item.UnitPrice * int64(item.Quantity)
	}
	return total
}

// Subscribe registers fn to be called after every mutation. The returned
// function removes the subscription.
func (b *Basket) Subscribe(fn Subscriber) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextSubID
	b.nextSubID++
	b.subs[id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

func (b *Basket) snapshot() []LineItem {
	items := make([]LineItem, len(b.items))
	copy(items, b.items)
	return items
}

// notify runs subscribers while the basket lock is held, so mutations and the
// resulting notifications are strictly ordered.
func (b *Basket) notify() {
	if len(b.subs) == 0 {
		return
	}
	items := b.snapshot()
	for _, fn := range b.subs {
		fn(items)
	}
}
