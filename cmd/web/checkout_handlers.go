package main

import (
	"errors"
	"net/http"

	"gearhaus.dev/gear-web/internal/checkout"
	"gearhaus.dev/gear-web/internal/format"
)

type checkoutRequest struct {
	Shipping     checkout.ShippingForm `json:"shipping"`
	DeliveryMode string                `json:"deliveryMode"`
}

type totalsView struct {
	Subtotal string `json:"subtotal"`
	Shipping string `json:"shipping"`
	Tax      string `json:"tax"`
	Total    string `json:"total"`
}

func buildTotalsView(t checkout.Totals) totalsView {
	return totalsView{
		Subtotal: format.Money(t.Subtotal),
		Shipping: format.Money(t.Shipping),
		Tax:      format.Money(t.Tax),
		Total:    format.Money(t.Total),
	}
}

// CheckoutHandler validates the shipping form, creates the order and stages
// the handoff for the confirmation page.
func (a *App) CheckoutHandler(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if problems := req.Shipping.Validate(); len(problems) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  "invalid shipping form",
			"fields": problems,
		})
		return
	}

	v := a.visitor(r)
	orderID, err := v.checkout.Submit(r.Context(), req.Shipping, req.DeliveryMode)
	if err != nil {
		if errors.Is(err, checkout.ErrInvalidForm) {
			writeError(w, http.StatusUnprocessableEntity, "invalid shipping form")
			return
		}
		writeError(w, http.StatusBadGateway, "checkout failed, please try again")
		return
	}

	totals := checkout.ComputeTotals(v.cart.Store().Subtotal(), req.DeliveryMode)
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "created",
		"orderId": orderID,
		"totals":  buildTotalsView(totals),
	})
}

// PaymentConfirmHandler simulates payment completion: the backend emptied the
// cart at checkout, so a reload replaces the local view with the empty cart.
func (a *App) PaymentConfirmHandler(w http.ResponseWriter, r *http.Request) {
	v := a.visitor(r)
	if err := v.cart.LoadCart(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, "cart refresh failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "paid"})
}

// OrderConfirmationHandler performs the one-shot handoff read. After the
// first read, or without a preceding checkout, fields come back empty.
func (a *App) OrderConfirmationHandler(w http.ResponseWriter, r *http.Request) {
	v := a.visitor(r)
	conf := v.checkout.Confirmation()

	items := v.cart.Store().Items()
	totals := checkout.ComputeTotals(v.cart.Store().Subtotal(), conf.DeliveryMode)

	writeJSON(w, http.StatusOK, map[string]any{
		"fresh":        conf.Fresh,
		"orderNumber":  conf.OrderNumber,
		"orderDate":    format.Date(conf.OrderDate),
		"shipping":     conf.Shipping,
		"deliveryMode": conf.DeliveryMode,
		"items":        buildCartView(items).Items,
		"totals":       buildTotalsView(totals),
	})
}
