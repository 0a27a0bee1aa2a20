package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"gearhaus.dev/gear-web/internal/domain"
	"gearhaus.dev/gear-web/internal/format"
)

type productView struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Brand   string  `json:"brand"`
	Type    string  `json:"type"`
	Price   float64 `json:"price"`
	Display string  `json:"priceDisplay"`
	Image   string  `json:"image"`
	Stock   int     `json:"stock"`
}

func buildProductView(p domain.Product) productView {
	return productView{
		ID:      p.ID,
		Name:    p.Name,
		Brand:   p.Brand,
		Type:    p.Type,
		Price:   p.Price.Amount.InexactFloat64(),
		Display: format.Money(p.Price),
		Image:   p.Image,
		Stock:   p.Stock,
	}
}

// ProductsHandler lists the catalog.
func (a *App) ProductsHandler(w http.ResponseWriter, r *http.Request) {
	products, err := a.catalog.ListProducts(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "catalog unavailable")
		return
	}
	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, buildProductView(p))
	}
	writeJSON(w, http.StatusOK, views)
}

// ProductHandler returns a single catalog entry.
func (a *App) ProductHandler(w http.ResponseWriter, r *http.Request) {
	product, err := a.catalog.Product(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	writeJSON(w, http.StatusOK, buildProductView(product))
}

// BrandsHandler lists distinct brands for the header menu.
func (a *App) BrandsHandler(w http.ResponseWriter, r *http.Request) {
	brands, err := a.catalog.Brands(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "catalog unavailable")
		return
	}
	writeJSON(w, http.StatusOK, brands)
}

// TypesHandler lists distinct product types.
func (a *App) TypesHandler(w http.ResponseWriter, r *http.Request) {
	types, err := a.catalog.Types(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "catalog unavailable")
		return
	}
	writeJSON(w, http.StatusOK, types)
}
