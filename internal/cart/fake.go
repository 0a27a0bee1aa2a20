package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"

	"gearhaus.dev/gear-web/internal/catalog"
	"gearhaus.dev/gear-web/internal/domain"
)

// fakeRemote keeps an in-process canonical cart so the storefront runs
// without a backend. Mutations return the full resulting cart, matching the
// remote service contract.
type fakeRemote struct {
	mu      sync.Mutex
	items   []domain.CartLineItem
	nextID  int
	catalog *catalog.Client
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		nextID:  1,
		catalog: catalog.NewClient(""),
	}
}

func (f *fakeRemote) Get(ctx context.Context) (domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cartLocked(), nil
}

func (f *fakeRemote) AddItem(ctx context.Context, productID string, quantity int) (domain.Cart, error) {
	p, err := f.catalog.Product(ctx, productID)
	if err != nil {
		return domain.Cart{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i, it := range f.items {
		if it.ProductID == productID {
			f.items[i].Quantity += quantity
			return f.cartLocked(), nil
		}
	}
	f.items = append(f.items, domain.CartLineItem{
		ID:        fmt.Sprintf("%d", f.nextID),
		ProductID: p.ID,
		Name:      p.Name,
		Brand:     p.Brand,
		UnitPrice: p.Price,
		Image:     p.Image,
		Quantity:  quantity,
	})
	f.nextID++
	return f.cartLocked(), nil
}

func (f *fakeRemote) UpdateItem(ctx context.Context, itemID string, quantity int) (domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, it := range f.items {
		if it.ID == itemID {
			f.items[i].Quantity = quantity
			return f.cartLocked(), nil
		}
	}
	return domain.Cart{}, fmt.Errorf("cart: item %s not found", itemID)
}

func (f *fakeRemote) RemoveItem(ctx context.Context, itemID string) (domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, it := range f.items {
		if it.ID == itemID {
			f.items = append(f.items[:i:i], f.items[i+1:]...)
			break
		}
	}
	return f.cartLocked(), nil
}

func (f *fakeRemote) Clear(ctx context.Context) (domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = nil
	return f.cartLocked(), nil
}

func (f *fakeRemote) cartLocked() domain.Cart {
	items := make([]domain.CartLineItem, len(f.items))
	total := decimal.Zero
	unit := currency.USD
	for i, it := range f.items {
		line := it.UnitPrice.Mul(it.Quantity)
		it.LineTotal = line
		items[i] = it
		total = total.Add(line.Amount)
		unit = it.UnitPrice.Currency
	}
	return domain.Cart{
		Items: items,
		Total: domain.Money{Amount: total, Currency: unit},
	}
}
