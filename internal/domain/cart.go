package domain

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// CartLineItem is one cart line as owned by the remote cart service.
type CartLineItem struct {
	ID        string
	ProductID string
	Name      string
	Brand     string
	UnitPrice Money
	Image     string
	Quantity  int
	LineTotal Money
}

// EnrichedCartItem is a CartLineItem joined with live stock and category data.
// It is a derived projection, recomputed after every mutation, and never the
// source of truth.
type EnrichedCartItem struct {
	CartLineItem
	Stock    int
	Category string
}

// Cart mirrors the remote cart service response: the full ordered line list
// plus the service-side total.
type Cart struct {
	Items []CartLineItem
	Total Money
}

// Subtotal sums unit price times quantity over the enriched items. The result
// carries the first item's currency; an empty list yields zero USD.
func Subtotal(items []EnrichedCartItem) Money {
	total := decimal.Zero
	unit := currency.USD
	for i, it := range items {
		if i == 0 {
			unit = it.UnitPrice.Currency
		}
		total = total.Add(it.UnitPrice.Amount.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return Money{Amount: total, Currency: unit}
}
