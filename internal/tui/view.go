package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/leapstack-labs/leapgrid/internal/render"
	"github.com/leapstack-labs/leapgrid/pkg/grid"
)

// maxColumnWidth caps a dense column; longer cells are truncated.
const maxColumnWidth = 32

type styles struct {
	title   lipgloss.Style
	status  lipgloss.Style
	pending lipgloss.Style
	card    lipgloss.Style
	cursor  lipgloss.Style
	label   lipgloss.Style
	empty   lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true),
		status:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		pending: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1),
		cursor: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("12")).
			Padding(0, 1),
		label: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		empty: lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true),
	}
}

// View renders the screen.
func (m *Model) View() string {
	if m.quit {
		return ""
	}

	var b strings.Builder
	if m.cfg.Title != "" {
		b.WriteString(m.styles.title.Render(m.cfg.Title))
		b.WriteByte('\n')
	}
	b.WriteString(m.search.View())
	b.WriteByte('\n')

	switch {
	case m.view.Len() == 0:
		b.WriteString(m.styles.empty.Render(emptyText(m.view)))
	case m.layout == render.LayoutCards:
		b.WriteString(m.cardsView())
	default:
		b.WriteString(m.dense.View())
	}
	b.WriteByte('\n')

	b.WriteString(m.statusLine())
	b.WriteByte('\n')
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) statusLine() string {
	line := m.pager.View() + "  " + m.styles.status.Render(render.Summary(m.view))
	if m.view.LiveQuery != m.view.Query {
		line += "  " + m.styles.pending.Render("filtering…")
	}
	return line
}

func emptyText(v grid.View) string {
	if v.Query != "" {
		return fmt.Sprintf("No rows match %q.", v.Query)
	}
	return "No rows."
}

// updateDense rebuilds the bubbles table from the current page.
func (m *Model) updateDense() {
	cols := m.view.Columns
	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = lipgloss.Width(render.HeaderLabel(c, m.view.Sort))
	}

	rows := make([]table.Row, m.view.Len())
	for r := range rows {
		row, _, selected := m.view.RowAt(r)
		cells := make(table.Row, 0, len(cols)+1)
		cells = append(cells, render.RowMark(selected))
		for i, c := range cols {
			cell := c.Cell(row)
			widths[i] = max(widths[i], lipgloss.Width(cell))
			cells = append(cells, cell)
		}
		rows[r] = cells
	}

	columns := make([]table.Column, 0, len(cols)+1)
	columns = append(columns, table.Column{Title: render.HeaderMark(m.view), Width: 3})
	for i, c := range cols {
		columns = append(columns, table.Column{
			Title: render.HeaderLabel(c, m.view.Sort),
			Width: min(widths[i], maxColumnWidth),
		})
	}

	// Rows first: the table renders as soon as columns change.
	m.dense.SetRows(nil)
	m.dense.SetColumns(columns)
	m.dense.SetRows(rows)
	m.dense.SetCursor(m.cursor)
}

// cardsView renders the visible cards through the virtualizer, measuring
// each card as it is drawn.
func (m *Model) cardsView() string {
	estimate := func(grid.Row) int { return len(m.view.Columns) + 3 }
	m.cards.EnsureVisible(m.cursor, m.view.Len(), func(int) int { return len(m.view.Columns) + 3 })

	var lines []string
	items := m.view.Window(m.cards, estimate)
	for _, item := range items {
		card := m.renderCard(item)
		m.cards.Measure(item.Index, lipgloss.Height(card))
		lines = append(lines, strings.Split(card, "\n")...)
	}
	if len(items) > 0 && items[0].Offset < 0 {
		lines = lines[min(-items[0].Offset, len(lines)):]
	}
	if h := m.cards.Height(); len(lines) > h {
		lines = lines[:h]
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderCard(item grid.WindowItem) string {
	labelWidth := 0
	for _, c := range m.view.Columns {
		labelWidth = max(labelWidth, lipgloss.Width(c.Title()))
	}

	var b strings.Builder
	b.WriteString(m.styles.title.Render(render.RowMark(item.Selected) + " " + item.ID))
	for _, c := range m.view.Columns {
		label := fmt.Sprintf("%-*s", labelWidth, c.Title())
		fmt.Fprintf(&b, "\n%s  %s", m.styles.label.Render(label), c.Cell(item.Row))
	}

	style := m.styles.card
	if item.Index == m.cursor {
		style = m.styles.cursor
	}
	if m.width > 0 {
		style = style.Width(max(m.width-2, 10))
	}
	return style.Render(b.String())
}
