// Package features provides shared test utilities for UI feature tests.
package features

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/leapgrid/internal/testutil"
	"github.com/leapstack-labs/leapgrid/internal/ui/session"
	"github.com/leapstack-labs/leapgrid/pkg/grid"
)

// TestFixture holds all dependencies needed for UI handler tests.
type TestFixture struct {
	Registry     *session.Registry
	SessionStore *sessions.CookieStore
}

// TestMembers returns a small members dataset with declared columns.
func TestMembers() ([]grid.Row, []grid.Column) {
	rows := []grid.Row{
		{"id": 1, "name": "Ada Lovelace", "role": "admin"},
		{"id": 2, "name": "Grace Hopper", "role": "member"},
		{"id": 3, "name": "Linus Torvalds", "role": "member"},
		{"id": 4, "name": "Barbara Liskov", "role": "viewer"},
		{"id": 5, "name": "Ken Thompson", "role": "viewer"},
	}
	cols := []grid.Column{
		{Key: "id", Header: "ID", Sortable: true},
		{Key: "name", Header: "Name", Sortable: true},
		{Key: "role", Header: "Role"},
	}
	return rows, cols
}

// SetupTestFixture creates a registry over the members dataset with a page
// size of 2. Searches settle synchronously unless opts say otherwise.
func SetupTestFixture(t *testing.T, opts ...grid.Option) *TestFixture {
	t.Helper()

	rows, cols := TestMembers()
	options := append([]grid.Option{grid.WithPageSize(2), grid.WithDebounce(0)}, opts...)

	registry := session.NewRegistry(session.Config{
		Rows:    rows,
		Columns: cols,
		Options: options,
		Logger:  testutil.NewTestLogger(t),
	})
	t.Cleanup(registry.Close)

	return &TestFixture{
		Registry:     registry,
		SessionStore: NewTestSessionStore(),
	}
}

// RequestWithPathParam wraps a request with chi URL params.
func RequestWithPathParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// WithCookies copies the cookies set on rec onto r, so the request joins
// the session rec was issued.
func WithCookies(r *http.Request, rec *httptest.ResponseRecorder) *http.Request {
	for _, c := range rec.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

// NewTestSessionStore creates a session store for testing.
func NewTestSessionStore() *sessions.CookieStore {
	return sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!"))
}
