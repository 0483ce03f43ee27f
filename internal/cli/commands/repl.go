package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapgrid/internal/render"
	"github.com/leapstack-labs/leapgrid/pkg/grid"
)

const replPrompt = "leapgrid> "

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl [source]",
		Short: "Explore a source line by line",
		Long: `Start a line-mode session over a source.

Lines starting with / search; lines starting with . are commands. The
current page is printed after every change. Type .help for commands.`,
		Example: `  leapgrid repl members.csv
  leapgrid repl app.db --table members --page-size 10`,
		Args: cobra.MaximumNArgs(1),
		RunE: runREPL,
	}
}

func runREPL(cmd *cobra.Command, args []string) error {
	cc := NewCommandContext(cmd, args)

	r, err := cc.Renderer(cmd, "")
	if err != nil {
		return err
	}

	p, err := cc.LoadPipeline(cmd.Context())
	if err != nil {
		return err
	}

	t := p.NewTable()
	defer t.Close()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     replHistoryFile(),
		AutoComplete:    newREPLCompleter(t.Columns()),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	session := &replSession{
		table:    t,
		renderer: r,
		layout:   p.Layout,
		out:      cmd.OutOrStdout(),
		errOut:   cmd.ErrOrStderr(),
	}

	_, _ = fmt.Fprintf(session.out, "LeapGrid REPL (%s, %d rows)\n", cc.Title(), len(p.Rows))
	_, _ = fmt.Fprintln(session.out, "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(session.out)
	session.show()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if session.exec(line) {
			break
		}
	}
	return nil
}

// replHistoryFile returns the history path under the user cache directory,
// or "" to keep history in memory.
func replHistoryFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	dir = filepath.Join(dir, "leapgrid")
	if err := os.MkdirAll(dir, 0750); err != nil {
		return ""
	}
	return filepath.Join(dir, "repl_history")
}

// replSession applies REPL lines to a table and prints the result.
type replSession struct {
	table    *grid.Table
	renderer *render.Renderer
	layout   render.Layout
	out      io.Writer
	errOut   io.Writer
}

// exec runs one input line and reports whether the session should end.
func (s *replSession) exec(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	if query, ok := strings.CutPrefix(line, "/"); ok {
		s.table.SetQuery(query)
		s.table.Flush()
		s.show()
		return false
	}

	if !strings.HasPrefix(line, ".") {
		s.fail("Unknown input %q (start a search with /, type .help for commands)", line)
		return false
	}

	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])
	args := parts[1:]

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(s.out)

	case ".sort":
		if len(args) != 1 {
			s.fail("Usage: .sort <column>")
			return false
		}
		before := s.table.View().Sort
		if after := s.table.ActivateSort(args[0]); after == before {
			s.fail("Column %q is not sortable", args[0])
			return false
		}
		s.show()

	case ".next":
		if !s.table.NextPage() {
			s.fail("Already on the last page")
			return false
		}
		s.show()

	case ".prev", ".previous":
		if !s.table.PreviousPage() {
			s.fail("Already on the first page")
			return false
		}
		s.show()

	case ".page":
		if len(args) != 1 {
			s.fail("Usage: .page <n>")
			return false
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			s.fail("Invalid page %q", args[0])
			return false
		}
		if err := goToPage(s.table, n); err != nil {
			s.fail("%v", err)
			return false
		}
		s.show()

	case ".select", ".unselect":
		if len(args) == 0 {
			s.fail("Usage: %s <id>...", command)
			return false
		}
		for _, id := range args {
			s.table.Toggle(id, command == ".select")
		}
		s.show()

	case ".all":
		s.table.SelectAllOnPage()
		s.show()

	case ".none":
		s.table.DeselectAllOnPage()
		s.show()

	case ".selected":
		ids := s.table.Selection().IDs()
		if len(ids) == 0 {
			_, _ = fmt.Fprintln(s.out, "(none)")
			return false
		}
		for _, id := range ids {
			_, _ = fmt.Fprintln(s.out, id)
		}

	case ".view":
		if len(args) != 1 {
			s.fail("Usage: .view dense|cards")
			return false
		}
		layout, err := render.ParseLayout(args[0])
		if err != nil {
			s.fail("%v", err)
			return false
		}
		s.layout = layout
		s.show()

	default:
		s.fail("Unknown command: %s (type .help for commands)", command)
	}
	return false
}

func (s *replSession) show() {
	if err := s.renderer.Grid(s.table.View(), s.layout); err != nil {
		s.fail("Error: %v", err)
	}
}

func (s *replSession) fail(format string, a ...any) {
	_, _ = fmt.Fprintf(s.errOut, format+"\n", a...)
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  /<text>          Search; a bare / clears the search
  .sort <column>   Cycle the sort on a column (asc, desc, off)
  .next / .prev    Move one page
  .page <n>        Jump to page n
  .select <id>...  Add rows to the selection
  .unselect <id>.. Remove rows from the selection
  .all / .none     Select or deselect every row on the page
  .selected        List the selected row ids
  .view <layout>   Switch between dense and cards
  .help            Show this help message
  .quit / .exit    Exit the REPL

Tips:
  - Use arrow keys to navigate history
  - Tab completion works for commands and column keys
`
	_, _ = fmt.Fprintln(w, help)
}

// newREPLCompleter completes commands, sortable column keys and layouts.
func newREPLCompleter(columns []grid.Column) *readline.PrefixCompleter {
	var sortable []readline.PrefixCompleterInterface
	for _, c := range columns {
		if c.Sortable {
			sortable = append(sortable, readline.PcItem(c.Key))
		}
	}

	return readline.NewPrefixCompleter(
		readline.PcItem(".sort", sortable...),
		readline.PcItem(".next"),
		readline.PcItem(".prev"),
		readline.PcItem(".page"),
		readline.PcItem(".select"),
		readline.PcItem(".unselect"),
		readline.PcItem(".all"),
		readline.PcItem(".none"),
		readline.PcItem(".selected"),
		readline.PcItem(".view", readline.PcItem("dense"), readline.PcItem("cards")),
		readline.PcItem(".help"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}
