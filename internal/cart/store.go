// Package cart implements the storefront cart core: a local store of
// enriched line items, a synchronizer keeping it consistent with the remote
// cart service, and the HTTP client for that service.
package cart

import (
	"sync"
	"time"

	"gearhaus.dev/gear-web/internal/domain"
	"gearhaus.dev/gear-web/internal/watch"
)

// Snapshot is an immutable, fully-formed view of the cart published to
// subscribers. Items are never mutated after publication.
type Snapshot struct {
	Items     []domain.EnrichedCartItem
	UpdatedAt time.Time
}

// Store holds the ordered list of enriched cart lines for one session.
// Every mutation publishes a whole-list snapshot; subscribers never observe
// partial updates. Quantities are clamped into [1, stock] throughout.
type Store struct {
	mu    sync.Mutex
	items []domain.EnrichedCartItem
	value *watch.Value[Snapshot]
	now   func() time.Time
}

func NewStore() *Store {
	return &Store{
		value: watch.NewWith(Snapshot{}),
		now:   time.Now,
	}
}

// Add inserts the product as a new line, or merges into the existing line for
// the same product by increasing its quantity. The resulting quantity is
// capped at the line's stock and floored at one.
func (s *Store) Add(p domain.Product, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, it := range s.items {
		if it.ProductID == p.ID {
			s.items[i].Quantity = clamp(it.Quantity+quantity, it.Stock)
			s.publishLocked()
			return
		}
	}
	s.items = append(s.items, domain.EnrichedCartItem{
		CartLineItem: domain.CartLineItem{
			ID:        p.ID,
			ProductID: p.ID,
			Name:      p.Name,
			Brand:     p.Brand,
			UnitPrice: p.Price,
			Image:     p.Image,
			Quantity:  clamp(quantity, p.Stock),
		},
		Stock:    p.Stock,
		Category: p.Type,
	})
	s.publishLocked()
}

// UpdateQuantity clamps quantity into [1, stock] for the matching line.
// Unknown item IDs leave the store unchanged.
func (s *Store) UpdateQuantity(itemID string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, it := range s.items {
		if it.ID == itemID {
			s.items[i].Quantity = clamp(quantity, it.Stock)
			s.publishLocked()
			return
		}
	}
}

// RemoveItem drops the matching line; absent IDs are not an error.
func (s *Store) RemoveItem(itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, it := range s.items {
		if it.ID == itemID {
			s.items = append(s.items[:i:i], s.items[i+1:]...)
			s.publishLocked()
			return
		}
	}
}

// Clear empties the cart.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.publishLocked()
}

// Replace swaps in a complete enriched list, preserving its order. Used by
// the synchronizer after each remote round.
func (s *Store) Replace(items []domain.EnrichedCartItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]domain.EnrichedCartItem(nil), items...)
	s.publishLocked()
}

// Items returns a copy of the current lines.
func (s *Store) Items() []domain.EnrichedCartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.EnrichedCartItem(nil), s.items...)
}

// Item returns the line with the given ID.
func (s *Store) Item(itemID string) (domain.EnrichedCartItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.items {
		if it.ID == itemID {
			return it, true
		}
	}
	return domain.EnrichedCartItem{}, false
}

// ItemForProduct returns the line holding the given product.
func (s *Store) ItemForProduct(productID string) (domain.EnrichedCartItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.items {
		if it.ProductID == productID {
			return it, true
		}
	}
	return domain.EnrichedCartItem{}, false
}

// Subtotal recomputes price times quantity over the current lines. It is
// derived state and never cached across mutations.
func (s *Store) Subtotal() domain.Money {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.Subtotal(s.items)
}

// Subscribe registers a snapshot subscriber with last-value replay.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	return s.value.Subscribe()
}

// Snapshot returns the last published snapshot.
func (s *Store) Snapshot() Snapshot {
	snap, _ := s.value.Get()
	return snap
}

func (s *Store) publishLocked() {
	s.value.Set(Snapshot{
		Items:     append([]domain.EnrichedCartItem(nil), s.items...),
		UpdatedAt: s.now().UTC(),
	})
}

// clamp forces quantity into [1, stock]. Zero stock still floors at one so a
// line never disappears through a quantity edit; the enrichment layer is the
// one that reports zero stock to the UI.
func clamp(quantity, stock int) int {
	if stock >= 1 && quantity > stock {
		quantity = stock
	}
	if quantity < 1 {
		quantity = 1
	}
	return quantity
}
