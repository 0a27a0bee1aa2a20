package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"gearhaus.dev/gear-web/internal/domain"
)

const taxRate = 0.08

// Flat fee applied when the deliver mode is chosen; pickup ships nothing.
var shippingFee = decimal.NewFromInt(50)

var (
	errOrdersRequired  = errors.New("checkout service: orders client is required")
	errHandoffRequired = errors.New("checkout service: handoff is required")
)

// ErrInvalidForm indicates the shipping form failed validation.
var ErrInvalidForm = errors.New("checkout: invalid shipping form")

// ServiceDeps wires order creation and the cross-page handoff.
type ServiceDeps struct {
	Orders  *Client
	Handoff *Handoff
	Logger  *zap.Logger
	Clock   func() time.Time
}

// Service drives checkout submission and the order-confirmation read.
type Service struct {
	orders  *Client
	handoff *Handoff
	logger  *zap.Logger
	now     func() time.Time
}

func NewService(deps ServiceDeps) (*Service, error) {
	if deps.Orders == nil {
		return nil, errOrdersRequired
	}
	if deps.Handoff == nil {
		return nil, errHandoffRequired
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	return &Service{
		orders:  deps.Orders,
		handoff: deps.Handoff,
		logger:  logger,
		now:     now,
	}, nil
}

// Submit validates the shipping form, creates the order and stages the
// handoff record for the confirmation page. Nothing is staged on failure.
func (s *Service) Submit(ctx context.Context, form ShippingForm, mode string) (string, error) {
	if problems := form.Validate(); len(problems) > 0 {
		return "", fmt.Errorf("%w: %d field(s)", ErrInvalidForm, len(problems))
	}

	orderID, err := s.orders.PlaceOrder(ctx)
	if err != nil {
		return "", fmt.Errorf("place order: %w", err)
	}

	if err := s.handoff.Write(HandoffRecord{
		Shipping:     form,
		DeliveryMode: NormalizeMode(mode),
		OrderID:      orderID,
	}); err != nil {
		// the order exists either way; the confirmation page will render defaults
		s.logger.Warn("checkout: staging handoff failed", zap.String("order_id", orderID), zap.Error(err))
	}
	return orderID, nil
}

// Confirmation is the order page's one-time view of the handoff data.
type Confirmation struct {
	OrderNumber  string
	OrderDate    time.Time
	Shipping     ShippingForm
	DeliveryMode string
	Fresh        bool
}

// Confirmation consumes the pending handoff. After the first read, or when no
// checkout preceded it, Fresh is false and the fields hold defaults.
func (s *Service) Confirmation() Confirmation {
	rec, ok := s.handoff.Consume()
	conf := Confirmation{
		OrderDate:    s.now(),
		Shipping:     rec.Shipping,
		DeliveryMode: rec.DeliveryMode,
		Fresh:        ok,
	}
	if rec.OrderID != "" {
		conf.OrderNumber = "ORD-" + rec.OrderID
	}
	return conf
}

// Totals carries the displayed money breakdown for checkout and confirmation.
type Totals struct {
	Subtotal domain.Money
	Shipping domain.Money
	Tax      domain.Money
	Total    domain.Money
}

// ComputeTotals derives the checkout breakdown from the cart subtotal: the
// flat shipping fee applies to the deliver mode only, tax is display-only.
func ComputeTotals(subtotal domain.Money, mode string) Totals {
	fee := decimal.Zero
	if NormalizeMode(mode) == ModeDeliver {
		fee = shippingFee
	}
	return Totals{
		Subtotal: subtotal,
		Shipping: domain.Money{Amount: fee, Currency: subtotal.Currency},
		Tax:      domain.Money{Amount: subtotal.Amount.Mul(decimal.NewFromFloat(taxRate)).Round(2), Currency: subtotal.Currency},
		Total:    domain.Money{Amount: subtotal.Amount.Add(fee), Currency: subtotal.Currency},
	}
}
