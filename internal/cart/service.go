package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"gearhaus.dev/gear-web/internal/auth"
	"gearhaus.dev/gear-web/internal/catalog"
	"gearhaus.dev/gear-web/internal/domain"
)

var (
	errServiceStoreRequired  = errors.New("cart service: store is required")
	errServiceRemoteRequired = errors.New("cart service: remote is required")
	errServiceStockRequired  = errors.New("cart service: stock resolver is required")
)

// ServiceDeps wires the local store, the remote cart service and the stock
// resolver for the synchronizer.
type ServiceDeps struct {
	Store  *Store
	Remote Remote
	Stock  catalog.Resolver
	Logger *zap.Logger
}

// Service keeps the local Store eventually consistent with the remote cart
// service and enriches every line with live stock data.
//
// Mutations are sent remote first; only a confirmed response replaces local
// state. A failed call leaves the last known-good snapshot in place and
// returns the error for the UI to surface. Superseded rounds are not
// cancelled: the last published snapshot wins. Callers needing strict
// ordering under rapid edits must serialize their mutations.
type Service struct {
	store  *Store
	remote Remote
	stock  catalog.Resolver
	logger *zap.Logger
}

// NewService constructs a Service enforcing dependency validation.
func NewService(deps ServiceDeps) (*Service, error) {
	if deps.Store == nil {
		return nil, errServiceStoreRequired
	}
	if deps.Remote == nil {
		return nil, errServiceRemoteRequired
	}
	if deps.Stock == nil {
		return nil, errServiceStockRequired
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  deps.Store,
		remote: deps.Remote,
		stock:  deps.Stock,
		logger: logger,
	}, nil
}

// Store exposes the snapshot holder for readers and subscribers.
func (s *Service) Store() *Store { return s.store }

// LoadCart fetches the canonical cart and publishes the enriched snapshot.
func (s *Service) LoadCart(ctx context.Context) error {
	remote, err := s.remote.Get(ctx)
	if err != nil {
		return fmt.Errorf("load cart: %w", err)
	}
	s.store.Replace(s.enrich(ctx, remote.Items))
	return nil
}

// Add sends an add-to-cart mutation. When the product already has a line, the
// merge happens as a quantity update capped at that line's stock, so the same
// product never produces a duplicate line.
func (s *Service) Add(ctx context.Context, p domain.Product, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}

	var (
		remote domain.Cart
		err    error
	)
	if existing, ok := s.store.ItemForProduct(p.ID); ok {
		merged := clamp(existing.Quantity+quantity, existing.Stock)
		remote, err = s.remote.UpdateItem(ctx, existing.ID, merged)
	} else {
		remote, err = s.remote.AddItem(ctx, p.ID, clamp(quantity, p.Stock))
	}
	if err != nil {
		return fmt.Errorf("add to cart: %w", err)
	}
	s.store.Replace(s.enrich(ctx, remote.Items))
	return nil
}

// UpdateQuantity clamps the requested quantity into [1, stock] for the line
// and sends the update. An unknown item ID is a silent no-op.
func (s *Service) UpdateQuantity(ctx context.Context, itemID string, quantity int) error {
	existing, ok := s.store.Item(itemID)
	if !ok {
		return nil
	}
	remote, err := s.remote.UpdateItem(ctx, itemID, clamp(quantity, existing.Stock))
	if err != nil {
		return fmt.Errorf("update quantity: %w", err)
	}
	s.store.Replace(s.enrich(ctx, remote.Items))
	return nil
}

// Remove deletes the line; an absent item is not an error.
func (s *Service) Remove(ctx context.Context, itemID string) error {
	remote, err := s.remote.RemoveItem(ctx, itemID)
	if err != nil {
		return fmt.Errorf("remove item: %w", err)
	}
	s.store.Replace(s.enrich(ctx, remote.Items))
	return nil
}

// Clear empties the remote cart and the local view.
func (s *Service) Clear(ctx context.Context) error {
	remote, err := s.remote.Clear(ctx)
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	s.store.Replace(s.enrich(ctx, remote.Items))
	return nil
}

// Run consumes authentication transitions until ctx is done or the stream
// closes: a login triggers a full reload, a logout clears local state
// immediately without a remote call.
func (s *Service) Run(ctx context.Context, users <-chan *auth.User) {
	for {
		select {
		case <-ctx.Done():
			return
		case user, ok := <-users:
			if !ok {
				return
			}
			if user == nil {
				s.store.Replace(nil)
				continue
			}
			if err := s.LoadCart(ctx); err != nil {
				s.logger.Warn("cart reload after login failed", zap.Error(err))
			}
		}
	}
}

// enrich joins the canonical lines with live stock data. Lookups for the
// distinct products fan out concurrently and the merge waits for every one to
// settle; a failed lookup degrades that product to zero stock and an empty
// category instead of failing the round. Remote ordering is preserved.
func (s *Service) enrich(ctx context.Context, items []domain.CartLineItem) []domain.EnrichedCartItem {
	if len(items) == 0 {
		return nil
	}

	distinct := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		distinct = append(distinct, it.ProductID)
	}

	var (
		mu   sync.Mutex
		info = make(map[string]catalog.StockInfo, len(distinct))
		wg   sync.WaitGroup
	)
	for _, productID := range distinct {
		wg.Add(1)
		go func(productID string) {
			defer wg.Done()
			resolved, err := s.stock.Resolve(ctx, productID)
			if err != nil {
				s.logger.Debug("stock lookup failed, substituting zero stock",
					zap.String("product_id", productID),
					zap.Error(err))
				resolved = catalog.StockInfo{}
			}
			mu.Lock()
			info[productID] = resolved
			mu.Unlock()
		}(productID)
	}
	wg.Wait()

	enriched := make([]domain.EnrichedCartItem, len(items))
	for i, it := range items {
		resolved := info[it.ProductID]
		enriched[i] = domain.EnrichedCartItem{
			CartLineItem: it,
			Stock:        resolved.Stock,
			Category:     resolved.Category,
		}
	}
	return enriched
}
