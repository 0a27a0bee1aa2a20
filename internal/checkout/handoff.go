package checkout

import (
	"encoding/json"

	"gearhaus.dev/gear-web/internal/kvstore"
)

// Storage keys, shared with the original browser deployment.
const (
	shippingKey = "shippingInfo"
	modeKey     = "deliveryMode"
	orderIDKey  = "orderId"
)

// HandoffRecord is the transient data passed from the checkout page to the
// order-confirmation page: write-once, read-once, session-scoped.
type HandoffRecord struct {
	Shipping     ShippingForm
	DeliveryMode string
	OrderID      string
}

// Handoff stores the record in scoped storage and erases it on first read, so
// stale shipping data never leaks into a later, unrelated order.
type Handoff struct {
	store kvstore.Store
}

func NewHandoff(store kvstore.Store) *Handoff {
	return &Handoff{store: store}
}

// Write persists the record, replacing any pending one.
func (h *Handoff) Write(rec HandoffRecord) error {
	raw, err := json.Marshal(rec.Shipping.trimmed())
	if err != nil {
		return err
	}
	h.store.Set(shippingKey, string(raw))
	h.store.Set(modeKey, NormalizeMode(rec.DeliveryMode))
	h.store.Set(orderIDKey, rec.OrderID)
	return nil
}

// Consume reads the pending record and deletes it. When nothing is pending
// (or a prior read consumed it), ok is false and the record holds defaults;
// callers render empty values rather than erroring.
func (h *Handoff) Consume() (HandoffRecord, bool) {
	rec := HandoffRecord{DeliveryMode: ModeDeliver}
	ok := false

	if raw, present := h.store.Get(shippingKey); present {
		if err := json.Unmarshal([]byte(raw), &rec.Shipping); err == nil {
			ok = true
		}
		h.store.Delete(shippingKey)
	}
	if mode, present := h.store.Get(modeKey); present {
		rec.DeliveryMode = NormalizeMode(mode)
		ok = true
		h.store.Delete(modeKey)
	}
	if orderID, present := h.store.Get(orderIDKey); present {
		rec.OrderID = orderID
		ok = true
		h.store.Delete(orderIDKey)
	}
	return rec, ok
}
