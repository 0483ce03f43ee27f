package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapgrid/internal/tui"
	"github.com/leapstack-labs/leapgrid/pkg/grid"
)

// NewViewCommand creates the view command.
func NewViewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "view [source]",
		Short: "Browse a source in the terminal",
		Long: `Open an interactive grid over a source.

Type / to search, 1-9 to sort by a column, space to select a row, a to
select the whole page and v to switch between table and cards. Selected row ids are printed on exit, one
per line, so the viewer can feed other commands.`,
		Example: `  # Browse a CSV file
  leapgrid view members.csv

  # Browse a table in a SQLite database as cards
  leapgrid view app.db --table members --view cards

  # Pipe the selection onwards
  leapgrid view members.csv --id-field email | xargs -n1 echo`,
		Args: cobra.MaximumNArgs(1),
		RunE: runView,
	}
}

func runView(cmd *cobra.Command, args []string) error {
	cc := NewCommandContext(cmd, args)

	p, err := cc.LoadPipeline(cmd.Context())
	if err != nil {
		return err
	}

	events := tui.NewEvents()
	t := p.NewTable(grid.WithOnSettle(events.Settled))
	defer t.Close()

	m := tui.New(t, tui.Config{
		Title:  cc.Title(),
		Layout: p.Layout,
		Events: events,
		Logger: cc.Logger,
	})

	selected, err := tui.Run(cmd.Context(), m)
	if err != nil {
		return fmt.Errorf("viewer failed: %w", err)
	}

	for _, id := range selected.IDs() {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), id)
	}
	return nil
}
