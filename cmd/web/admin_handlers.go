package main

import (
	"net/http"
)

// AdminStatsHandler reports back-office counters. Restricted to the ADMIN
// role.
func (a *App) AdminStatsHandler(w http.ResponseWriter, r *http.Request) {
	v := a.visitor(r)
	if !v.auth.IsAdmin() {
		writeError(w, http.StatusForbidden, "admin role required")
		return
	}

	products, err := a.catalog.ListProducts(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "catalog unavailable")
		return
	}

	a.mu.Lock()
	visitors := len(a.visitors)
	a.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"activeVisitors": visitors,
		"catalogSize":    len(products),
	})
}
