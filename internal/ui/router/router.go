// Package router sets up HTTP routes for the dashboard.
package router

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"

	tableFeature "github.com/leapstack-labs/leapgrid/internal/ui/features/table"
	"github.com/leapstack-labs/leapgrid/internal/ui/resources"
	"github.com/leapstack-labs/leapgrid/internal/ui/session"
)

// Options carries the page-level settings shared by features.
type Options struct {
	Title  string
	IsDev  bool
	Logger *slog.Logger
}

// SetupRoutes configures all routes for the dashboard.
func SetupRoutes(
	router chi.Router,
	registry *session.Registry,
	sessionStore sessions.Store,
	opts Options,
) error {
	if opts.IsDev {
		setupReload(router)
	}

	router.Handle("/static/*", resources.Handler())

	return tableFeature.SetupRoutes(router, registry, sessionStore, opts.Title, opts.IsDev, opts.Logger)
}

// setupReload lets a dev build reload open pages: /reload holds an SSE
// stream per page and /hotreload fires it.
func setupReload(router chi.Router) {
	reloadChan := make(chan struct{}, 1)
	var hotReloadOnce sync.Once

	router.Get("/reload", func(w http.ResponseWriter, r *http.Request) {
		sse := datastar.NewSSE(w, r)
		reload := func() { _ = sse.ExecuteScript("window.location.reload()") }
		hotReloadOnce.Do(reload)
		select {
		case <-reloadChan:
			reload()
		case <-r.Context().Done():
		}
	})

	router.Get("/hotreload", func(w http.ResponseWriter, _ *http.Request) {
		select {
		case reloadChan <- struct{}{}:
		default:
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}
