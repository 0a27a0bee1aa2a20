package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"gearhaus.dev/gear-web/internal/domain"
	"gearhaus.dev/gear-web/internal/format"
)

// cartItemView is a cart line as rendered to the frontend.
type cartItemView struct {
	ID        string  `json:"id"`
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Brand     string  `json:"brand"`
	Category  string  `json:"category"`
	Image     string  `json:"image"`
	Quantity  int     `json:"quantity"`
	Stock     int     `json:"stock"`
	Price     float64 `json:"price"`
	Display   string  `json:"priceDisplay"`
	Subtotal  string  `json:"subtotalDisplay"`
}

type cartView struct {
	Items    []cartItemView `json:"items"`
	Subtotal float64        `json:"subtotal"`
	Display  string         `json:"subtotalDisplay"`
}

func buildCartView(items []domain.EnrichedCartItem) cartView {
	view := cartView{Items: make([]cartItemView, 0, len(items))}
	for _, it := range items {
		line := it.UnitPrice.Mul(it.Quantity)
		view.Items = append(view.Items, cartItemView{
			ID:        it.ID,
			ProductID: it.ProductID,
			Name:      it.Name,
			Brand:     it.Brand,
			Category:  it.Category,
			Image:     it.Image,
			Quantity:  it.Quantity,
			Stock:     it.Stock,
			Price:     it.UnitPrice.Amount.InexactFloat64(),
			Display:   format.Money(it.UnitPrice),
			Subtotal:  format.Money(line),
		})
	}
	subtotal := domain.Subtotal(items)
	view.Subtotal = subtotal.Amount.InexactFloat64()
	view.Display = format.Money(subtotal)
	return view
}

// CartHandler returns the current enriched cart snapshot.
func (a *App) CartHandler(w http.ResponseWriter, r *http.Request) {
	v := a.visitor(r)
	writeJSON(w, http.StatusOK, buildCartView(v.cart.Store().Items()))
}

type cartAddRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// CartAddHandler adds a product to the cart, merging into an existing line.
func (a *App) CartAddHandler(w http.ResponseWriter, r *http.Request) {
	var req cartAddRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "productId is required")
		return
	}

	product, err := a.catalog.Product(r.Context(), req.ProductID)
	if err != nil {
		writeError(w, http.StatusBadGateway, "product lookup failed")
		return
	}

	v := a.visitor(r)
	if err := v.cart.Add(r.Context(), product, req.Quantity); err != nil {
		writeError(w, http.StatusBadGateway, "cart update failed")
		return
	}
	writeJSON(w, http.StatusOK, buildCartView(v.cart.Store().Items()))
}

type cartQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CartUpdateHandler sets a line's quantity, clamped into [1, stock].
func (a *App) CartUpdateHandler(w http.ResponseWriter, r *http.Request) {
	var req cartQuantityRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	v := a.visitor(r)
	if err := v.cart.UpdateQuantity(r.Context(), chi.URLParam(r, "itemID"), req.Quantity); err != nil {
		writeError(w, http.StatusBadGateway, "cart update failed")
		return
	}
	writeJSON(w, http.StatusOK, buildCartView(v.cart.Store().Items()))
}

// CartRemoveHandler removes one line.
func (a *App) CartRemoveHandler(w http.ResponseWriter, r *http.Request) {
	v := a.visitor(r)
	if err := v.cart.Remove(r.Context(), chi.URLParam(r, "itemID")); err != nil {
		writeError(w, http.StatusBadGateway, "cart update failed")
		return
	}
	writeJSON(w, http.StatusOK, buildCartView(v.cart.Store().Items()))
}

// CartClearHandler empties the cart.
func (a *App) CartClearHandler(w http.ResponseWriter, r *http.Request) {
	v := a.visitor(r)
	if err := v.cart.Clear(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, "cart update failed")
		return
	}
	writeJSON(w, http.StatusOK, buildCartView(v.cart.Store().Items()))
}
