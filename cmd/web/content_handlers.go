package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"gearhaus.dev/gear-web/internal/format"
)

// ContentPageHandler serves a rendered static page (about, shipping policy).
func (a *App) ContentPageHandler(w http.ResponseWriter, r *http.Request) {
	page, err := a.content.Page(chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, http.StatusNotFound, "page not found")
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=600")
	writeJSON(w, http.StatusOK, map[string]string{
		"slug":    page.Slug,
		"title":   page.Title,
		"summary": page.Summary,
		"body":    page.Body,
		"updated": format.Date(page.UpdatedAt),
	})
}
