package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Money pairs a decimal amount with its currency unit.
type Money struct {
	Amount   decimal.Decimal
	Currency currency.Unit
}

// NewMoney builds a Money from a float major-unit amount, e.g. 99.99 USD.
func NewMoney(amount float64, unit currency.Unit) Money {
	return Money{Amount: decimal.NewFromFloat(amount), Currency: unit}
}

// Zero returns a zero amount in the given currency.
func Zero(unit currency.Unit) Money {
	return Money{Amount: decimal.Zero, Currency: unit}
}

// Mul scales the amount by an integer quantity.
func (m Money) Mul(qty int) Money {
	return Money{
		Amount:   m.Amount.Mul(decimal.NewFromInt(int64(qty))),
		Currency: m.Currency,
	}
}

// Add sums two amounts of the same currency.
func (m Money) Add(o Money) (Money, error) {
	if m.Currency != o.Currency {
		return Money{}, fmt.Errorf("money: currency mismatch %s vs %s", m.Currency, o.Currency)
	}
	return Money{Amount: m.Amount.Add(o.Amount), Currency: m.Currency}, nil
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool { return m.Amount.IsZero() }

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Currency, m.Amount.StringFixed(2))
}
