// Package ui serves the grid dashboard: one pipeline per browser session,
// driven by datastar actions and kept live over SSE.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/leapgrid/internal/ui/router"
	"github.com/leapstack-labs/leapgrid/internal/ui/session"
	"github.com/leapstack-labs/leapgrid/pkg/grid"
)

// DefaultSessionTTL is how long an idle browser session keeps its pipeline.
const DefaultSessionTTL = 2 * time.Hour

// ReloadFunc reads the rows again after the source changed.
type ReloadFunc func(ctx context.Context) ([]grid.Row, error)

// Server is the dashboard server.
type Server struct {
	registry     *session.Registry
	sessionStore *sessions.CookieStore
	reload       ReloadFunc
	port         int
	watch        bool
	watchPath    string
	sessionTTL   time.Duration
	title        string
	dev          bool
	logger       *slog.Logger
}

// Config holds configuration for the dashboard server.
type Config struct {
	Registry *session.Registry
	// Reload is called when WatchPath changes. Required when Watch is set.
	Reload    ReloadFunc
	Port      int
	Watch     bool
	WatchPath string
	// SessionSecret signs session cookies. Empty generates a key per run,
	// so sessions do not survive a restart.
	SessionSecret string
	SessionTTL    time.Duration
	Title         string
	Dev           bool
	Logger        *slog.Logger
}

// NewServer creates a new dashboard server.
func NewServer(cfg Config) *Server {
	secret := []byte(cfg.SessionSecret)
	if len(secret) == 0 {
		secret = securecookie.GenerateRandomKey(32)
	}
	sessionStore := sessions.NewCookieStore(secret)
	sessionStore.MaxAge(86400 * 30) // 30 days
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	return &Server{
		registry:     cfg.Registry,
		sessionStore: sessionStore,
		reload:       cfg.Reload,
		port:         cfg.Port,
		watch:        cfg.Watch,
		watchPath:    cfg.WatchPath,
		sessionTTL:   ttl,
		title:        cfg.Title,
		dev:          cfg.Dev,
		logger:       logger,
	}
}

// Handler returns the router with middleware and all routes mounted.
func (s *Server) Handler() (http.Handler, error) {
	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	opts := router.Options{Title: s.title, IsDev: s.dev, Logger: s.logger}
	if err := router.SetupRoutes(r, s.registry, s.sessionStore, opts); err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}
	return r, nil
}

// Serve starts the server and blocks until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting dashboard", "addr", fmt.Sprintf("http://localhost:%d", s.port))

	handler, err := s.Handler()
	if err != nil {
		return err
	}

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.watch && s.watchPath != "" && s.reload != nil {
		eg.Go(func() error {
			return s.watchSource(egctx)
		})
	}

	eg.Go(func() error {
		s.pruneSessions(egctx)
		return nil
	})

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down dashboard...")
		s.registry.Close()
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// pruneSessions drops idle sessions until ctx is done.
func (s *Server) pruneSessions(ctx context.Context) {
	ticker := time.NewTicker(max(s.sessionTTL/4, time.Second))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.registry.Prune(s.sessionTTL); n > 0 {
				s.logger.Info("pruned idle sessions", "count", n, "remaining", s.registry.Len())
			}
		}
	}
}

// watchSource reloads the rows when the source file changes. The parent
// directory is watched because editors often replace files on save.
func (s *Server) watchSource(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	target, err := filepath.Abs(s.watchPath)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		s.logger.Error("failed to watch source", "path", target, "error", err)
		// Keep serving without live reload.
		<-ctx.Done()
		return nil
	}

	var (
		mu            sync.Mutex
		debounceTimer *time.Timer
	)
	defer func() {
		mu.Lock()
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event, target) {
				continue
			}

			mu.Lock()
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(100*time.Millisecond, func() {
				s.reloadRows(ctx, event.Name)
			})
			mu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watcher error", "error", err)
		}
	}
}

// reloadRows reads the source again and pushes the rows to every session.
// A failed read keeps the previous rows.
func (s *Server) reloadRows(ctx context.Context, file string) {
	s.logger.Debug("source changed, reloading", "file", file)

	rows, err := s.reload(ctx)
	if err != nil {
		s.logger.Error("reload failed", "file", file, "error", err)
		return
	}
	s.registry.SetRows(rows)
	s.logger.Info("source reloaded", "rows", len(rows), "sessions", s.registry.Len())
}

func relevant(event fsnotify.Event, target string) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	name, err := filepath.Abs(event.Name)
	return err == nil && name == target
}
