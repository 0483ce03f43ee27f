package grid

import (
	"log/slog"
	"slices"
	"sync"
	"time"
)

// Table runs the pipeline for one collection of rows and holds the state
// behind it: the query, the sort, the page and the selection.
//
// All methods are safe for concurrent use. The debounce timer fires on its
// own goroutine, so readers should take a fresh View after OnSettle.
type Table struct {
	mu sync.Mutex

	rows     []Row
	columns  []Column
	identity IdentityFunc

	liveQuery    string
	settledQuery string
	sort         SortState
	page         PageState

	selection *Selection
	debounce  *Debouncer
	delay     time.Duration
	scheduler Scheduler

	onSearch     func(string)
	onPageChange func(int)
	onSettle     func(View)
	logger       *slog.Logger

	filtered []Row
	sorted   []Row
	view     View
}

// Option configures a Table.
type Option func(*Table)

// WithIdentity replaces DefaultIdentity for selection and render keys.
func WithIdentity(fn IdentityFunc) Option {
	return func(t *Table) {
		if fn != nil {
			t.identity = fn
		}
	}
}

// WithPageSize enables pagination. Zero or less disables it.
func WithPageSize(size int) Option {
	return func(t *Table) { t.page.Size = max(size, 0) }
}

// WithSort sets the initial sort.
func WithSort(state SortState) Option {
	return func(t *Table) { t.sort = state }
}

// WithDebounce sets the idle window applied to search queries.
func WithDebounce(d time.Duration) Option {
	return func(t *Table) { t.delay = d }
}

// WithScheduler replaces the timer used for the debounce.
func WithScheduler(s Scheduler) Option {
	return func(t *Table) { t.scheduler = s }
}

// WithSelection supplies the selection, typically a controlled one.
func WithSelection(s *Selection) Option {
	return func(t *Table) {
		if s != nil {
			t.selection = s
		}
	}
}

// WithSearchCallback is called with the raw text on every SetQuery.
func WithSearchCallback(fn func(query string)) Option {
	return func(t *Table) { t.onSearch = fn }
}

// WithPageChangeCallback is called with the new page on navigation.
func WithPageChangeCallback(fn func(page int)) Option {
	return func(t *Table) { t.onPageChange = fn }
}

// WithOnSettle is called with the new view after a debounced query has been
// applied.
func WithOnSettle(fn func(View)) Option {
	return func(t *Table) { t.onSettle = fn }
}

// WithLogger sets the logger used for debug tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Table) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// New creates a Table over rows.
func New(rows []Row, columns []Column, opts ...Option) *Table {
	t := &Table{
		rows:      rows,
		columns:   columns,
		identity:  DefaultIdentity,
		page:      PageState{Current: 1},
		selection: NewSelection(),
		delay:     DefaultDebounce,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.debounce = NewDebouncer(t.delay, t.scheduler)

	t.mu.Lock()
	t.refilter()
	t.mu.Unlock()
	return t
}

// View returns the current snapshot.
func (t *Table) View() View {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.view
}

// Columns returns the declared columns.
func (t *Table) Columns() []Column {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.columns)
}

// SetRows replaces the input rows and recomputes every stage. The
// selection is kept as is.
func (t *Table) SetRows(rows []Row) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = rows
	t.refilter()
}

// SetColumns replaces the column declarations.
func (t *Table) SetColumns(columns []Column) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.columns = columns
	t.refilter()
}

// SetQuery records a keystroke. The live text, the search callback and the
// reset to page 1 take effect immediately; the filter is recomputed once
// the text has been idle for the debounce window.
func (t *Table) SetQuery(text string) {
	t.mu.Lock()
	t.liveQuery = text
	t.page.Current = 1
	t.repage()
	onSearch := t.onSearch
	t.mu.Unlock()

	if onSearch != nil {
		onSearch(text)
	}
	t.logger.Debug("search scheduled", "delay", t.delay)
	t.debounce.Trigger(t.settle)
}

// settle applies the latest live text, whichever SetQuery scheduled it.
func (t *Table) settle() {
	t.mu.Lock()
	t.settledQuery = t.liveQuery
	t.refilter()
	view := t.view
	onSettle := t.onSettle
	t.mu.Unlock()

	t.logger.Debug("search settled", "matched", view.MatchedRows, "rows", view.SourceRows)
	if onSettle != nil {
		onSettle(view)
	}
}

// Flush applies a pending query immediately. It reports whether one was
// pending.
func (t *Table) Flush() bool {
	return t.debounce.Flush()
}

// Close cancels a pending query.
func (t *Table) Close() {
	t.debounce.Stop()
}

// ActivateSort advances the sort machine for column. Columns not marked
// sortable are ignored. It returns the resulting state.
func (t *Table) ActivateSort(column string) SortState {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.sortable(column) {
		return t.sort
	}
	t.sort = t.sort.Activate(column)
	t.logger.Debug("sort changed", "sort", t.sort.String())
	t.resort()
	return t.sort
}

// SetSort replaces the sort state.
func (t *Table) SetSort(state SortState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sort = state
	t.resort()
}

// sortable reports whether column may be sorted. Without declared columns
// any key is.
func (t *Table) sortable(column string) bool {
	if len(t.columns) == 0 {
		return column != ""
	}
	i := columnIndex(t.columns, column)
	return i >= 0 && t.columns[i].Sortable
}

// NextPage moves forward one page. It does nothing on the last page.
func (t *Table) NextPage() bool {
	t.mu.Lock()
	if !t.page.CanNext(t.view.TotalPages) {
		t.mu.Unlock()
		return false
	}
	return t.navigate(t.page.Current + 1)
}

// PreviousPage moves back one page. It does nothing on the first page.
func (t *Table) PreviousPage() bool {
	t.mu.Lock()
	if !t.page.CanPrevious() {
		t.mu.Unlock()
		return false
	}
	return t.navigate(t.page.Current - 1)
}

// GoToPage jumps to page. The page is not clamped; callers keep it within
// [1, TotalPages].
func (t *Table) GoToPage(page int) bool {
	t.mu.Lock()
	return t.navigate(page)
}

// navigate must be called with t.mu held and releases it.
func (t *Table) navigate(page int) bool {
	t.page.Current = page
	t.repage()
	onPageChange := t.onPageChange
	t.mu.Unlock()

	t.logger.Debug("page changed", "page", page)
	if onPageChange != nil {
		onPageChange(page)
	}
	return true
}

// SetPageSize changes the page size and returns to the first page.
func (t *Table) SetPageSize(size int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.page = PageState{Size: max(size, 0), Current: 1}
	t.repage()
}

// Toggle adds or removes one row id.
func (t *Table) Toggle(id RowID, included bool) {
	t.mutateSelection(func(s *Selection) func() { return s.toggle(id, included) })
}

// SetSelected replaces the selection.
func (t *Table) SetSelected(ids []RowID) {
	t.mutateSelection(func(s *Selection) func() { return s.setSelected(ids) })
}

// SelectAllOnPage adds every row of the current page to the selection.
func (t *Table) SelectAllOnPage() {
	t.mutateSelection(func(s *Selection) func() { return s.selectAll(t.view.ids) })
}

// DeselectAllOnPage removes the current page's rows from the selection and
// leaves selections on other pages alone.
func (t *Table) DeselectAllOnPage() {
	t.mutateSelection(func(s *Selection) func() { return s.deselectAll(t.view.ids) })
}

// SetSelectionValue feeds back a controlled selection's value.
func (t *Table) SetSelectionValue(ids []RowID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.selection.Sync(ids)
	t.publish()
}

// Selection returns the visible selection.
func (t *Table) Selection() Set {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.selection.Selected()
}

func (t *Table) mutateSelection(fn func(*Selection) func()) {
	t.mu.Lock()
	notify := fn(t.selection)
	t.publish()
	count := t.view.Selected.Len()
	controlled := t.selection.Controlled()
	t.mu.Unlock()

	t.logger.Debug("selection changed", "selected", count, "controlled", controlled)
	run(notify)
}

// The stages below run with t.mu held. Each recomputes its own output and
// everything downstream of it.

func (t *Table) refilter() {
	t.filtered = Filter(t.rows, t.settledQuery, t.columns)
	t.resort()
}

func (t *Table) resort() {
	t.sorted = Sort(t.filtered, t.sort, t.columns)
	t.repage()
}

func (t *Table) repage() {
	page := Paginate(t.sorted, t.page)

	ids := make([]RowID, len(page.Rows))
	for i, row := range page.Rows {
		ids[i] = t.identity(row)
	}

	t.view.rows = page.Rows
	t.view.ids = ids
	t.view.TotalPages = page.TotalPages
	t.publish()
}

func (t *Table) publish() {
	selected := make([]bool, len(t.view.ids))
	for i, id := range t.view.ids {
		selected[i] = t.selection.IsSelected(id)
	}
	all, some := t.selection.Flags(t.view.ids)

	t.view = View{
		Columns:      t.columns,
		rows:         t.view.rows,
		ids:          t.view.ids,
		selected:     selected,
		LiveQuery:    t.liveQuery,
		Query:        t.settledQuery,
		Sort:         t.sort,
		Page:         t.page.Current,
		PageSize:     t.page.Size,
		TotalPages:   t.view.TotalPages,
		MatchedRows:  len(t.sorted),
		SourceRows:   len(t.rows),
		AllSelected:  all,
		SomeSelected: some,
		Selected:     t.selection.Selected(),
	}
}
