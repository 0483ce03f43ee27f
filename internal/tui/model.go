// Package tui is the interactive terminal grid: search box, sortable
// columns, paging and row selection over a grid.Table.
package tui

import (
	"context"
	"log/slog"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/leapstack-labs/leapgrid/internal/render"
	"github.com/leapstack-labs/leapgrid/internal/window"
	"github.com/leapstack-labs/leapgrid/pkg/grid"
)

// chromeHeight is the number of lines used by everything except the rows:
// title, search box, status line, paginator and help.
const chromeHeight = 6

// Config configures the model.
type Config struct {
	Title  string
	Layout render.Layout
	// Events delivers settled searches; it must be the one passed to the
	// table through grid.WithOnSettle.
	Events *Events
	Logger *slog.Logger
}

// Model is the Bubble Tea model.
type Model struct {
	table  *grid.Table
	view   grid.View
	cfg    Config
	logger *slog.Logger

	keys       keyMap
	searchKeys searchKeys
	search     textinput.Model
	searching  bool
	dense      table.Model
	pager      paginator.Model
	help       help.Model
	cards      *window.Virtualizer
	styles     styles

	layout render.Layout
	cursor int
	width  int
	height int
	quit   bool
}

// New creates a model over t.
func New(t *grid.Table, cfg Config) *Model {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	layout := cfg.Layout
	if layout == "" {
		layout = render.LayoutDense
	}

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search"

	pager := paginator.New()
	pager.Type = paginator.Arabic

	m := &Model{
		table:      t,
		cfg:        cfg,
		logger:     logger,
		keys:       defaultKeyMap(),
		searchKeys: defaultSearchKeys(),
		search:     search,
		dense:      table.New(table.WithFocused(true)),
		pager:      pager,
		help:       help.New(),
		cards:      window.New(0, window.WithOverscan(1)),
		styles:     newStyles(),
		layout:     layout,
		height:     24,
		width:      80,
	}
	m.search.SetValue(t.View().LiveQuery)
	m.resize()
	m.refresh()
	return m
}

// Init starts listening for settled searches.
func (m *Model) Init() tea.Cmd {
	if m.cfg.Events == nil {
		return nil
	}
	return m.cfg.Events.listen()
}

// Update handles a message.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) { //nolint:ireturn
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		m.refresh()
		return m, nil

	case settledMsg:
		m.refresh()
		return m, m.cfg.Events.listen()

	case tea.KeyMsg:
		if m.searching {
			return m, m.updateSearch(msg)
		}
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quit = true
		return tea.Quit

	case key.Matches(msg, m.keys.Search):
		m.searching = true
		return m.search.Focus()

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)

	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)

	case key.Matches(msg, m.keys.NextPage):
		if m.table.NextPage() {
			m.pageChanged()
		}

	case key.Matches(msg, m.keys.PrevPage):
		if m.table.PreviousPage() {
			m.pageChanged()
		}

	case key.Matches(msg, m.keys.Toggle):
		if _, id, selected, ok := m.current(); ok {
			m.table.Toggle(id, !selected)
		}

	case key.Matches(msg, m.keys.SelectAll):
		if m.view.AllSelected {
			m.table.DeselectAllOnPage()
		} else {
			m.table.SelectAllOnPage()
		}

	case key.Matches(msg, m.keys.Sort):
		n := int(msg.String()[0] - '0')
		if cols := render.DisplayColumns(m.view); n >= 1 && n <= len(cols) {
			state := m.table.ActivateSort(cols[n-1].Key)
			m.logger.Debug("sort", "sort", state.String())
		}

	case key.Matches(msg, m.keys.Layout):
		if m.layout == render.LayoutCards {
			m.layout = render.LayoutDense
		} else {
			m.layout = render.LayoutCards
		}
		m.cards.Reset()

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()
	}

	m.refresh()
	return nil
}

// updateSearch feeds keys to the search box. Every edit goes to the table,
// which resets to page 1 at once and filters after the debounce window.
func (m *Model) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.searchKeys.Accept):
		m.searching = false
		m.search.Blur()
		m.table.Flush()
		m.refresh()
		return nil

	case key.Matches(msg, m.searchKeys.Cancel):
		m.searching = false
		m.search.Blur()
		if m.search.Value() != "" {
			m.search.SetValue("")
			m.table.SetQuery("")
			m.table.Flush()
		}
		m.pageChanged()
		return nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if after := m.search.Value(); after != before {
		m.table.SetQuery(after)
		m.pageChanged()
	}
	return cmd
}

func (m *Model) pageChanged() {
	m.cursor = 0
	m.cards.Reset()
	m.refresh()
}

func (m *Model) moveCursor(delta int) {
	m.cursor = max(min(m.cursor+delta, m.view.Len()-1), 0)
}

// current returns the row under the cursor.
func (m *Model) current() (grid.Row, grid.RowID, bool, bool) {
	if m.cursor < 0 || m.cursor >= m.view.Len() {
		return nil, "", false, false
	}
	row, id, selected := m.view.RowAt(m.cursor)
	return row, id, selected, true
}

// refresh takes a new snapshot and rebuilds the widgets from it.
func (m *Model) refresh() {
	m.view = m.table.View()
	m.view.Columns = render.DisplayColumns(m.view)
	m.moveCursor(0)

	m.pager.PerPage = 1
	m.pager.SetTotalPages(max(m.view.TotalPages, 1))
	m.pager.Page = max(m.view.Page-1, 0)

	m.updateDense()
}

func (m *Model) resize() {
	m.help.Width = m.width
	m.search.Width = max(m.width-4, 10)
	rows := max(m.height-chromeHeight, 3)
	if m.help.ShowAll {
		rows = max(rows-3, 3)
	}
	m.dense.SetWidth(m.width)
	m.dense.SetHeight(rows)
	m.cards.SetHeight(rows)
}

// Selection returns the ids selected when the model exited.
func (m *Model) Selection() grid.Set {
	return m.table.Selection()
}

// Quit reports whether the user asked to quit.
func (m *Model) Quit() bool { return m.quit }

// Run runs the model full screen until the user quits or ctx is done and
// returns the final selection.
func Run(ctx context.Context, m *Model, opts ...tea.ProgramOption) (grid.Set, error) {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	if _, err := tea.NewProgram(m, opts...).Run(); err != nil {
		return nil, err
	}
	return m.Selection(), nil
}
