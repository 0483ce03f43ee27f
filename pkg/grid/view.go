package grid

// View is an immutable snapshot of the pipeline output: the rows of the
// current page in display order, decorated with identity and selection.
// Renderers and windowing collaborators read it; it never filters, sorts
// or pages on its own.
type View struct {
	Columns []Column

	rows     []Row
	ids      []RowID
	selected []bool

	// LiveQuery is the text as typed; Query is the settled text the
	// filter was computed from.
	LiveQuery string
	Query     string

	Sort SortState

	Page       int
	PageSize   int
	TotalPages int

	// MatchedRows counts rows after filtering; SourceRows counts the input.
	MatchedRows int
	SourceRows  int

	AllSelected  bool
	SomeSelected bool
	Selected     Set
}

// Len returns the number of rows on the page.
func (v View) Len() int { return len(v.rows) }

// RowAt returns the row at index on the page, its id and whether it is
// selected.
func (v View) RowAt(index int) (Row, RowID, bool) {
	return v.rows[index], v.ids[index], v.selected[index]
}

// Key returns the render key of the row at index.
func (v View) Key(index int) RowID { return v.ids[index] }

// IDs returns the ids of the page rows in display order.
func (v View) IDs() []RowID {
	out := make([]RowID, len(v.ids))
	copy(out, v.ids)
	return out
}

// CanPrevious reports whether the previous page action is enabled.
func (v View) CanPrevious() bool {
	return PageState{Current: v.Page}.CanPrevious()
}

// CanNext reports whether the next page action is enabled.
func (v View) CanNext() bool {
	return PageState{Current: v.Page}.CanNext(v.TotalPages)
}

// VisibleItem is an index within the viewport and its vertical offset.
type VisibleItem struct {
	Index  int
	Offset int
}

// Windower is the windowing collaborator: given a row count and a size
// estimate per index, it returns the indices currently in the viewport.
// Measure reports the real size of a rendered item whose size was not
// known in advance.
type Windower interface {
	Visible(count int, estimate func(index int) int) []VisibleItem
	Measure(index, size int)
}

// WindowItem is a visible row with its position.
type WindowItem struct {
	VisibleItem
	Row      Row
	ID       RowID
	Selected bool
}

// Window asks w which rows are in view and resolves them. estimate may be
// nil, in which case the windower's own default applies.
func (v View) Window(w Windower, estimate func(Row) int) []WindowItem {
	var est func(int) int
	if estimate != nil {
		est = func(i int) int { return estimate(v.rows[i]) }
	}

	visible := w.Visible(len(v.rows), est)
	items := make([]WindowItem, 0, len(visible))
	for _, vi := range visible {
		if vi.Index < 0 || vi.Index >= len(v.rows) {
			continue
		}
		row, id, sel := v.RowAt(vi.Index)
		items = append(items, WindowItem{VisibleItem: vi, Row: row, ID: id, Selected: sel})
	}
	return items
}
