package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapgrid/pkg/grid"
)

// RenderOptions holds options for the render command.
type RenderOptions struct {
	Query  string
	Page   int
	Format string
}

// NewRenderCommand creates the render command.
func NewRenderCommand() *cobra.Command {
	opts := &RenderOptions{}

	cmd := &cobra.Command{
		Use:   "render [source]",
		Short: "Render one page of a source",
		Long: `Render one page of a source after search, sort and pagination.

The output format follows --format, then --output. Text and markdown
honour --view; csv, html and json always emit one record per row.`,
		Example: `  # First page as a table
  leapgrid render members.csv

  # Search, sort by name descending, third page of 10
  leapgrid render members.csv --query ada --sort name:desc --page 3 --page-size 10

  # Cards in markdown
  leapgrid render members.csv --view cards --format markdown

  # Every matching row as JSON
  leapgrid render members.csv --page-size 0 --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Query, "query", "q", "", "Search text")
	cmd.Flags().IntVar(&opts.Page, "page", 1, "Page to render (1-based)")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format (text|markdown|csv|html|json), overrides --output")

	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "markdown", "csv", "html", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runRender(cmd *cobra.Command, args []string, opts *RenderOptions) error {
	cc := NewCommandContext(cmd, args)

	r, err := cc.Renderer(cmd, opts.Format)
	if err != nil {
		return err
	}

	p, err := cc.LoadPipeline(cmd.Context())
	if err != nil {
		return err
	}

	t := p.NewTable()
	defer t.Close()

	if opts.Query != "" {
		t.SetQuery(opts.Query)
		t.Flush()
	}
	if err := goToPage(t, opts.Page); err != nil {
		return err
	}

	return r.Grid(t.View(), p.Layout)
}

// goToPage moves t to page, rejecting pages outside the current range.
// Page 1 is always accepted so an empty result renders as such.
func goToPage(t *grid.Table, page int) error {
	total := t.View().TotalPages
	if page != 1 && (page < 1 || page > total) {
		return fmt.Errorf("page %d out of range 1..%d", page, max(total, 1))
	}
	t.GoToPage(page)
	return nil
}
