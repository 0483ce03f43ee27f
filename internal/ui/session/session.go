// Package session keeps one grid pipeline per browser session.
//
// Each session owns its selection: the pipeline runs in controlled mode and
// every selection change is stored on the session before it is fed back to
// the table. Query, sort and page live in the table itself.
package session

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/leapstack-labs/leapgrid/internal/render"
	"github.com/leapstack-labs/leapgrid/internal/ui/notifier"
	"github.com/leapstack-labs/leapgrid/pkg/grid"
)

// Session is one browser's view of the dataset.
type Session struct {
	ID string

	table    *grid.Table
	notifier *notifier.Notifier

	mu       sync.Mutex
	selected grid.Set
	layout   render.Layout
	lastSeen time.Time
}

// Table returns the session's pipeline.
func (s *Session) Table() *grid.Table { return s.table }

// Notifier returns the notifier pinged whenever the view changes outside a
// request, such as a settled search or a reload.
func (s *Session) Notifier() *notifier.Notifier { return s.notifier }

// Layout returns the presentation chosen for this session.
func (s *Session) Layout() render.Layout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layout
}

// SetLayout switches between dense and card presentation.
func (s *Session) SetLayout(l render.Layout) {
	s.mu.Lock()
	s.layout = l
	s.mu.Unlock()
}

// Selected returns the stored selection.
func (s *Session) Selected() grid.Set {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected.Clone()
}

// commit is the owner side of the controlled selection.
func (s *Session) commit(ids []grid.RowID) {
	s.mu.Lock()
	s.selected = grid.NewSet(ids...)
	s.mu.Unlock()
	s.table.SetSelectionValue(ids)
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

func (s *Session) close() {
	s.table.Close()
	s.notifier.Close()
}

// Config configures a Registry.
type Config struct {
	Rows    []grid.Row
	Columns []grid.Column
	// Options are applied to every new table. Selection and settle hooks
	// are owned by the registry and override any given here.
	Options []grid.Option
	Layout  render.Layout
	Logger  *slog.Logger
}

// Registry maps session ids to sessions and creates them on first use.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session

	rows    []grid.Row
	columns []grid.Column
	options []grid.Option
	layout  render.Layout
	logger  *slog.Logger
	now     func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry(cfg Config) *Registry {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	layout := cfg.Layout
	if layout == "" {
		layout = render.LayoutDense
	}
	return &Registry{
		sessions: make(map[string]*Session),
		rows:     cfg.Rows,
		columns:  cfg.Columns,
		options:  slices.Clone(cfg.Options),
		layout:   layout,
		logger:   logger,
		now:      time.Now,
	}
}

// Get returns the session for id, creating it if needed.
func (r *Registry) Get(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		s = r.newSession(id)
		r.sessions[id] = s
		r.logger.Debug("session created", "session", id, "sessions", len(r.sessions))
	}
	s.touch(r.now())
	return s
}

// Lookup returns the session for id without creating it.
func (r *Registry) Lookup(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Rows returns the rows new sessions start from.
func (r *Registry) Rows() []grid.Row {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rows
}

// SetRows replaces the rows of every session and pings their streams.
// Selections survive the reload.
func (r *Registry) SetRows(rows []grid.Row) {
	r.mu.Lock()
	r.rows = rows
	live := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		live = append(live, s)
	}
	r.mu.Unlock()

	for _, s := range live {
		s.table.SetRows(rows)
		s.notifier.Broadcast()
	}
	r.logger.Debug("rows replaced", "rows", len(rows), "sessions", len(live))
}

// Prune drops sessions idle for longer than maxIdle and returns how many
// were dropped.
func (r *Registry) Prune(maxIdle time.Duration) int {
	now := r.now()

	r.mu.Lock()
	var stale []*Session
	for id, s := range r.sessions {
		if s.idleSince(now) > maxIdle {
			stale = append(stale, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range stale {
		s.close()
	}
	if len(stale) > 0 {
		r.logger.Debug("sessions pruned", "pruned", len(stale))
	}
	return len(stale)
}

// Close drops every session.
func (r *Registry) Close() {
	r.mu.Lock()
	live := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range live {
		s.close()
	}
}

// newSession must be called with r.mu held.
func (r *Registry) newSession(id string) *Session {
	s := &Session{
		ID:       id,
		notifier: notifier.New(),
		selected: grid.NewSet(),
		layout:   r.layout,
	}

	opts := append(slices.Clone(r.options),
		grid.WithSelection(grid.NewControlledSelection(s.selected, s.commit)),
		grid.WithOnSettle(func(grid.View) { s.notifier.Broadcast() }),
		grid.WithLogger(r.logger.With("session", id)),
	)
	s.table = grid.New(r.rows, r.columns, opts...)
	return s
}
