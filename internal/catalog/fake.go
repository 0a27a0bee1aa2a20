package catalog

import (
	"fmt"

	"golang.org/x/text/currency"

	"gearhaus.dev/gear-web/internal/domain"
)

// Demo catalog served when no catalog base URL is configured.
func fakeProducts() []domain.Product {
	return []domain.Product{
		{ID: "1", Name: "Logitech Keyboard", Brand: "Logitech", Type: "Keyboard", Price: domain.NewMoney(99.99, currency.USD), Image: "assets/logitech-keyboard.webp", Stock: 45},
		{ID: "2", Name: "Dell Monitor", Brand: "Dell", Type: "Monitor", Price: domain.NewMoney(199.99, currency.USD), Image: "assets/dell-monitor.webp", Stock: 12},
		{ID: "3", Name: "Asus Laptop", Brand: "Asus", Type: "Laptop", Price: domain.NewMoney(899.99, currency.USD), Image: "assets/asus-laptop.webp", Stock: 8},
		{ID: "4", Name: "Asus Keyboard", Brand: "Asus", Type: "Keyboard", Price: domain.NewMoney(59.99, currency.USD), Image: "assets/asus-keyboard.webp", Stock: 30},
	}
}

func fakeProduct(productID string) (domain.Product, error) {
	for _, p := range fakeProducts() {
		if p.ID == productID {
			return p, nil
		}
	}
	return domain.Product{}, fmt.Errorf("catalog: product %s not found", productID)
}

func fakeResolve(productID string) (StockInfo, error) {
	p, err := fakeProduct(productID)
	if err != nil {
		return StockInfo{}, err
	}
	return StockInfo{Stock: p.Stock, Category: p.Type}, nil
}
