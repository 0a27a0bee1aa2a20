package format

import (
	"strings"
	"time"

	"golang.org/x/text/currency"

	"gearhaus.dev/gear-web/internal/domain"
)

// Money renders an amount for display.
// Example: Money(domain.NewMoney(1234.5, currency.USD)) => "$1,234.50"
func Money(m domain.Money) string {
	amount := m.Amount.StringFixed(2)
	neg := strings.HasPrefix(amount, "-")
	amount = strings.TrimPrefix(amount, "-")

	whole, frac, _ := strings.Cut(amount, ".")
	out := thousandSep(whole) + "." + frac

	switch m.Currency {
	case currency.USD:
		out = "$" + out
	case currency.EUR:
		out = "€" + out
	default:
		out = m.Currency.String() + " " + out
	}
	if neg {
		out = "-" + out
	}
	return out
}

func thousandSep(s string) string {
	var b strings.Builder
	for i, c := range s {
		if i != 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return b.String()
}

// Date renders the long order-confirmation date form.
func Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("January 2, 2006")
}
