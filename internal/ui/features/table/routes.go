// Package table serves the grid page and the actions that drive a
// session's pipeline.
package table

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/leapgrid/internal/ui/session"
)

// SetupRoutes registers the grid page, its update stream and its actions.
func SetupRoutes(
	router chi.Router,
	registry *session.Registry,
	sessionStore sessions.Store,
	title string,
	isDev bool,
	logger *slog.Logger,
) error {
	handlers := NewHandlers(registry, sessionStore, title, isDev, logger)

	router.Get("/", handlers.GridPage)
	router.Get("/updates", handlers.GridPageUpdates)
	router.Get("/export", handlers.Export)

	router.Route("/api/grid", func(r chi.Router) {
		r.Post("/search", handlers.SearchSSE)
		r.Post("/sort/{column}", handlers.SortSSE)
		r.Post("/page/{page}", handlers.PageSSE)
		r.Post("/select-all", handlers.SelectAllSSE)
		r.Post("/select/{id}", handlers.SelectSSE)
		r.Post("/layout/{layout}", handlers.LayoutSSE)
	})

	return nil
}
