package render

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/leapstack-labs/leapgrid/pkg/grid"
)

// Selection markers for rows and the select-all header.
const (
	markAll  = "[x]"
	markSome = "[-]"
	markNone = "[ ]"
)

// Grid writes the current page of v in the renderer's mode. Layout applies
// to text and markdown; data formats always emit one record per row.
func (r *Renderer) Grid(v grid.View, layout Layout) error {
	v.Columns = DisplayColumns(v)
	mode := r.EffectiveMode()
	switch mode {
	case ModeJSON:
		return writeJSON(r.out, v)
	case ModeCSV, ModeHTML:
		return r.dense(v, mode)
	case ModeText, ModeMarkdown:
		if v.Len() == 0 {
			r.Println(emptyMessage(v))
		} else if layout == LayoutCards {
			r.cards(v, mode)
		} else if err := r.dense(v, mode); err != nil {
			return err
		}
		r.Println(r.footer(v, mode))
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, mode)
}

func (r *Renderer) dense(v grid.View, mode Mode) error {
	marked := mode == ModeText || mode == ModeMarkdown

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	t.SetStyle(style)
	if r.width > 0 {
		t.SetAllowedRowLength(r.width)
	}

	header := make(table.Row, 0, len(v.Columns)+1)
	if marked {
		header = append(header, HeaderMark(v))
	}
	for _, c := range v.Columns {
		if marked {
			header = append(header, HeaderLabel(c, v.Sort))
		} else {
			header = append(header, c.Title())
		}
	}
	t.AppendHeader(header)

	for i := range v.Len() {
		row, _, selected := v.RowAt(i)
		cells := make(table.Row, 0, len(header))
		if marked {
			cells = append(cells, RowMark(selected))
		}
		for _, c := range v.Columns {
			cells = append(cells, c.Cell(row))
		}
		t.AppendRow(cells)
	}

	switch mode {
	case ModeText:
		t.Render()
	case ModeMarkdown:
		t.RenderMarkdown()
	case ModeCSV:
		t.RenderCSV()
	case ModeHTML:
		t.RenderHTML()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, mode)
	}
	return nil
}

func (r *Renderer) cards(v grid.View, mode Mode) {
	labelWidth := 0
	for _, c := range v.Columns {
		labelWidth = max(labelWidth, len(c.Title()))
	}

	for i := range v.Len() {
		row, id, selected := v.RowAt(i)

		if mode == ModeMarkdown {
			r.Printf("### %s %s\n\n", RowMark(selected), id)
			for _, c := range v.Columns {
				r.Printf("- **%s**: %s\n", c.Title(), c.Cell(row))
			}
			r.Println()
			continue
		}

		var b strings.Builder
		title := RowMark(selected) + " " + id
		if selected {
			title = r.styles.Selected.Render(title)
		}
		b.WriteString(r.styles.Bold.Render(title))
		for _, c := range v.Columns {
			label := fmt.Sprintf("%-*s", labelWidth, c.Title())
			fmt.Fprintf(&b, "\n%s  %s", r.styles.Muted.Render(label), c.Cell(row))
		}
		r.Println(r.styles.Card.Render(b.String()))
	}
}

func (r *Renderer) footer(v grid.View, mode Mode) string {
	line := Summary(v)
	if mode == ModeMarkdown {
		return "_" + line + "_"
	}
	return r.styles.Muted.Render(line)
}

// Summary describes the page position, counts, search and sort of v on
// one line.
func Summary(v grid.View) string {
	parts := []string{}
	if v.TotalPages > 0 {
		parts = append(parts, fmt.Sprintf("Page %d of %d", v.Page, v.TotalPages))
	}
	parts = append(parts, fmt.Sprintf("%d of %d rows", v.MatchedRows, v.SourceRows))
	if n := v.Selected.Len(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d selected", n))
	}
	if v.Query != "" {
		parts = append(parts, fmt.Sprintf("search %q", v.Query))
	}
	if v.Sort.IsSorted() {
		parts = append(parts, "sort "+v.Sort.String())
	}
	return strings.Join(parts, " · ")
}

// DisplayColumns returns the view's columns or, when none are declared,
// one column per key found on the page, sorted.
func DisplayColumns(v grid.View) []grid.Column {
	if len(v.Columns) > 0 {
		return v.Columns
	}
	seen := map[string]struct{}{}
	var keys []string
	for i := range v.Len() {
		row, _, _ := v.RowAt(i)
		for k := range row {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				keys = append(keys, k)
			}
		}
	}
	slices.Sort(keys)
	cols := make([]grid.Column, len(keys))
	for i, k := range keys {
		cols[i] = grid.Column{Key: k}
	}
	return cols
}

// HeaderLabel returns the column title with a sort arrow when the view is
// sorted by that column.
func HeaderLabel(c grid.Column, s grid.SortState) string {
	title := c.Title()
	if key, ok := s.Column(); ok && key == c.Key {
		switch s.Direction() {
		case grid.Ascending:
			return title + " ▲"
		case grid.Descending:
			return title + " ▼"
		}
	}
	return title
}

// HeaderMark shows the select-all checkbox state for the page.
func HeaderMark(v grid.View) string {
	switch {
	case v.AllSelected:
		return markAll
	case v.SomeSelected:
		return markSome
	}
	return markNone
}

// RowMark shows whether a row is selected.
func RowMark(selected bool) string {
	if selected {
		return markAll
	}
	return markNone
}

func emptyMessage(v grid.View) string {
	if v.Query != "" {
		return fmt.Sprintf("(no rows match %q)", v.Query)
	}
	return "(no rows)"
}

// pageJSON is the JSON shape of a rendered page.
type pageJSON struct {
	Query        string    `json:"query"`
	Sort         string    `json:"sort"`
	Page         int       `json:"page"`
	PageSize     int       `json:"page_size"`
	TotalPages   int       `json:"total_pages"`
	MatchedRows  int       `json:"matched_rows"`
	SourceRows   int       `json:"source_rows"`
	AllSelected  bool      `json:"all_selected"`
	SomeSelected bool      `json:"some_selected"`
	Selected     []string  `json:"selected"`
	Rows         []rowJSON `json:"rows"`
}

type rowJSON struct {
	ID       string         `json:"id"`
	Selected bool           `json:"selected"`
	Values   map[string]any `json:"values"`
}

func writeJSON(w io.Writer, v grid.View) error {
	out := pageJSON{
		Query:        v.Query,
		Sort:         v.Sort.String(),
		Page:         v.Page,
		PageSize:     v.PageSize,
		TotalPages:   v.TotalPages,
		MatchedRows:  v.MatchedRows,
		SourceRows:   v.SourceRows,
		AllSelected:  v.AllSelected,
		SomeSelected: v.SomeSelected,
		Selected:     v.Selected.IDs(),
		Rows:         make([]rowJSON, 0, v.Len()),
	}
	if out.Selected == nil {
		out.Selected = []string{}
	}
	for i := range v.Len() {
		row, id, selected := v.RowAt(i)
		values := make(map[string]any, len(v.Columns))
		for _, c := range v.Columns {
			values[c.Key] = row[c.Key]
		}
		out.Rows = append(out.Rows, rowJSON{ID: id, Selected: selected, Values: values})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
