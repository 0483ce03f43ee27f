package table

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/leapgrid/internal/render"
	"github.com/leapstack-labs/leapgrid/internal/ui/session"
)

// Cookie name and key holding the browser's session id.
const (
	CookieName = "leapgrid"
	cookieKey  = "id"
)

// Handlers provides HTTP handlers for the grid feature.
type Handlers struct {
	registry     *session.Registry
	sessionStore sessions.Store
	title        string
	isDev        bool
	logger       *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(registry *session.Registry, sessionStore sessions.Store, title string, isDev bool, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if title == "" {
		title = "Grid"
	}
	return &Handlers{
		registry:     registry,
		sessionStore: sessionStore,
		title:        title,
		isDev:        isDev,
		logger:       logger,
	}
}

// session returns the caller's grid session, issuing a cookie on the first
// visit. It must run before anything is written to w.
func (h *Handlers) session(w http.ResponseWriter, r *http.Request) (*session.Session, error) {
	cookie, err := h.sessionStore.Get(r, CookieName)
	if err != nil {
		// An undecodable cookie yields a fresh session.
		h.logger.Debug("discarding session cookie", "error", err)
	}

	id, _ := cookie.Values[cookieKey].(string)
	if id == "" {
		id = uuid.NewString()
		cookie.Values[cookieKey] = id
		if err := cookie.Save(r, w); err != nil {
			return nil, fmt.Errorf("failed to save session: %w", err)
		}
	}
	return h.registry.Get(id), nil
}

// GridPage renders the page with the session's current view.
func (h *Handlers) GridPage(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	v := sess.Table().View()
	if err := GridPage(h.title, h.isDev, v, sess.Layout()).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// GridPageUpdates is the long-lived SSE stream of a page. It sends nothing
// up front; the page is already rendered. Each ping from the session's
// notifier patches the status line and the grid.
func (h *Handlers) GridPageUpdates(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	sse := datastar.NewSSE(w, r)

	updates := sess.Notifier().Subscribe()
	defer sess.Notifier().Unsubscribe(updates)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-updates:
			if !ok {
				return
			}
			if err := h.patch(sse, sess); err != nil {
				_ = sse.ConsoleError(err)
			}
		}
	}
}

// patch sends the status line and the grid content.
func (h *Handlers) patch(sse *datastar.ServerSentEventGenerator, sess *session.Session) error {
	v := sess.Table().View()
	if err := sse.PatchElementTempl(GridStatus(v)); err != nil {
		return err
	}
	return sse.PatchElementTempl(GridContent(v, sess.Layout()))
}

// SearchSSE records a keystroke. The filter settles after the debounce
// window and reaches the page through GridPageUpdates; the response only
// shows that filtering is pending.
func (h *Handlers) SearchSSE(w http.ResponseWriter, r *http.Request) {
	// Read signals BEFORE creating SSE (SSE consumes the request body)
	var signals SearchSignals
	readErr := datastar.ReadSignals(r, &signals)

	sess, err := h.session(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	sse := datastar.NewSSE(w, r)
	if readErr != nil {
		_ = sse.ConsoleError(fmt.Errorf("failed to read signals: %w", readErr))
		return
	}

	sess.Table().SetQuery(signals.Query)
	if err := h.patch(sse, sess); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// SortSSE advances the sort of one column.
func (h *Handlers) SortSSE(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(sess *session.Session) error {
		column, err := pathParam(r, "column")
		if err != nil {
			return err
		}
		state := sess.Table().ActivateSort(column)
		h.logger.Debug("sort", "column", column, "state", state.String())
		return nil
	})
}

// PageSSE moves to the previous, next or a numbered page.
func (h *Handlers) PageSSE(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(sess *session.Session) error {
		t := sess.Table()
		switch target := chi.URLParam(r, "page"); target {
		case "next":
			t.NextPage()
		case "prev", "previous":
			t.PreviousPage()
		case "first":
			t.GoToPage(1)
		case "last":
			if total := t.View().TotalPages; total > 0 {
				t.GoToPage(total)
			}
		default:
			n, err := strconv.Atoi(target)
			if err != nil {
				return fmt.Errorf("invalid page %q", target)
			}
			if total := t.View().TotalPages; n < 1 || n > total {
				return fmt.Errorf("page %d out of range 1..%d", n, total)
			}
			t.GoToPage(n)
		}
		return nil
	})
}

// SelectSSE flips the selection of one row.
func (h *Handlers) SelectSSE(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(sess *session.Session) error {
		id, err := pathParam(r, "id")
		if err != nil {
			return err
		}
		t := sess.Table()
		t.Toggle(id, !t.Selection().Has(id))
		return nil
	})
}

// SelectAllSSE selects the whole page, or clears it when it is already
// fully selected.
func (h *Handlers) SelectAllSSE(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(sess *session.Session) error {
		t := sess.Table()
		if t.View().AllSelected {
			t.DeselectAllOnPage()
		} else {
			t.SelectAllOnPage()
		}
		return nil
	})
}

// LayoutSSE switches between dense and card layouts.
func (h *Handlers) LayoutSSE(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(sess *session.Session) error {
		layout, err := render.ParseLayout(chi.URLParam(r, "layout"))
		if err != nil {
			return err
		}
		sess.SetLayout(layout)
		return nil
	})
}

// act runs a synchronous pipeline action and patches the result into the
// page.
func (h *Handlers) act(w http.ResponseWriter, r *http.Request, fn func(*session.Session) error) {
	sess, err := h.session(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	sse := datastar.NewSSE(w, r)
	if err := fn(sess); err != nil {
		_ = sse.ConsoleError(err)
		return
	}
	if err := h.patch(sse, sess); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// Export writes the session's current page as csv, json, markdown or html.
func (h *Handlers) Export(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	mode, err := render.ParseMode(r.URL.Query().Get("format"))
	if err != nil || mode == render.ModeAuto || mode == render.ModeText {
		http.Error(w, fmt.Sprintf("unsupported export format %q", r.URL.Query().Get("format")), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", contentTypes[mode])
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "grid."+extensions[mode]))

	renderer := render.NewRendererWithTTY(w, io.Discard, mode, false)
	if err := renderer.Grid(sess.Table().View(), sess.Layout()); err != nil {
		h.logger.Error("export failed", "format", mode, "error", err)
	}
}

var contentTypes = map[render.Mode]string{
	render.ModeCSV:      "text/csv; charset=utf-8",
	render.ModeJSON:     "application/json",
	render.ModeMarkdown: "text/markdown; charset=utf-8",
	render.ModeHTML:     "text/html; charset=utf-8",
}

var extensions = map[render.Mode]string{
	render.ModeCSV:      "csv",
	render.ModeJSON:     "json",
	render.ModeMarkdown: "md",
	render.ModeHTML:     "html",
}

var errMissingParam = errors.New("missing path parameter")

// pathParam returns an unescaped chi URL parameter.
func pathParam(r *http.Request, key string) (string, error) {
	raw := chi.URLParam(r, key)
	if raw == "" {
		return "", fmt.Errorf("%w: %s", errMissingParam, key)
	}
	v, err := url.PathUnescape(raw)
	if err != nil {
		return "", fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
