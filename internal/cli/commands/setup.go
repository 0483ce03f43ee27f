package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/leapgrid/internal/cli/config"
	"github.com/leapstack-labs/leapgrid/internal/render"
	"github.com/leapstack-labs/leapgrid/internal/rowexpr"
	"github.com/leapstack-labs/leapgrid/internal/source"
	"github.com/leapstack-labs/leapgrid/pkg/grid"
)

// ErrNoSource is returned when neither an argument nor the configuration
// names a source.
var ErrNoSource = errors.New("no source given: pass a file or database URL, or set source in leapgrid.yaml")

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg    *config.Config
	Logger *slog.Logger
}

// NewCommandContext reads the config and logger stored on the command. A
// positional argument overrides the configured source.
func NewCommandContext(cmd *cobra.Command, args []string) *CommandContext {
	cfg := *config.GetConfig(cmd.Context())
	if len(args) > 0 {
		cfg.Source = args[0]
	}
	return &CommandContext{
		Cfg:    &cfg,
		Logger: config.GetLogger(cmd.Context()),
	}
}

// Renderer returns a renderer on the command's output in mode, or in the
// configured output mode when mode is empty.
func (c *CommandContext) Renderer(cmd *cobra.Command, mode string) (*render.Renderer, error) {
	if mode == "" {
		mode = c.Cfg.Output
	}
	m, err := render.ParseMode(mode)
	if err != nil {
		return nil, err
	}
	return render.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), m), nil
}

// Title names the grid in headers: the configured title, else the source
// file name.
func (c *CommandContext) Title() string {
	if c.Cfg.UI.Title != "" {
		return c.Cfg.UI.Title
	}
	if c.Cfg.Source == "" {
		return "leapgrid"
	}
	return filepath.Base(c.Cfg.Source)
}

// Pipeline is a loaded source together with everything needed to build
// grid tables over it.
type Pipeline struct {
	Rows    []grid.Row
	Columns []grid.Column
	Options []grid.Option
	Layout  render.Layout

	spec     source.Spec
	computed []rowexpr.Column
}

// LoadPipeline loads the configured source and resolves columns, computed
// columns, identity, paging, sorting and debounce from the configuration.
func (c *CommandContext) LoadPipeline(ctx context.Context) (*Pipeline, error) {
	cfg := c.Cfg
	if cfg.Source == "" {
		return nil, ErrNoSource
	}

	layout, err := render.ParseLayout(cfg.View)
	if err != nil {
		return nil, err
	}

	computed, err := computedColumns(cfg)
	if err != nil {
		return nil, err
	}

	opts, err := tableOptions(cfg, c.Logger)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		Options: opts,
		Layout:  layout,
		spec: source.Spec{
			Path:         cfg.Source,
			Format:       source.Format(cfg.SourceType),
			Table:        cfg.Table,
			Query:        cfg.SQL,
			Limit:        cfg.Limit,
			HTMLMarkdown: cfg.HTMLMarkdown,
		},
		computed: computed,
	}

	start := time.Now()
	ds, err := source.Load(ctx, p.spec)
	if err != nil {
		return nil, err
	}
	if p.Rows, err = rowexpr.Apply(ctx, ds.Rows, computed); err != nil {
		return nil, err
	}
	p.Columns = gridColumns(cfg, ds.Columns, computed)

	c.Logger.Debug("source loaded",
		slog.String("source", cfg.Source),
		slog.Int("rows", len(p.Rows)),
		slog.Int("columns", len(p.Columns)),
		slog.Duration("elapsed", time.Since(start)))
	return p, nil
}

// Reload reads the source again and applies the computed columns.
func (p *Pipeline) Reload(ctx context.Context) ([]grid.Row, error) {
	ds, err := source.Load(ctx, p.spec)
	if err != nil {
		return nil, err
	}
	return rowexpr.Apply(ctx, ds.Rows, p.computed)
}

// NewTable builds a table over the pipeline's rows. opts are applied after
// the configured options.
func (p *Pipeline) NewTable(opts ...grid.Option) *grid.Table {
	all := make([]grid.Option, 0, len(p.Options)+len(opts))
	all = append(all, p.Options...)
	all = append(all, opts...)
	return grid.New(p.Rows, p.Columns, all...)
}

// computedColumns gathers computed columns from the columns list and the
// --column flags, in that order.
func computedColumns(cfg *config.Config) ([]rowexpr.Column, error) {
	var cols []rowexpr.Column
	for _, cc := range cfg.Columns {
		if cc.Expr == "" {
			continue
		}
		expr, err := rowexpr.Compile(cc.Key, cc.Expr)
		if err != nil {
			return nil, err
		}
		cols = append(cols, rowexpr.Column{Key: cc.Key, Header: cc.Header, Expr: expr})
	}

	flagged, err := rowexpr.ParseColumns(cfg.Computed)
	if err != nil {
		return nil, err
	}
	return append(cols, flagged...), nil
}

// gridColumns returns the configured columns when there are any, otherwise
// the source's inferred columns followed by the computed ones. Computed
// columns given as flags are always shown.
func gridColumns(cfg *config.Config, inferred []grid.Column, computed []rowexpr.Column) []grid.Column {
	if len(cfg.Columns) == 0 {
		return append(append([]grid.Column{}, inferred...), rowexpr.GridColumns(computed)...)
	}

	headers := make(map[string]string, len(inferred))
	for _, c := range inferred {
		headers[c.Key] = c.Header
	}

	cols := make([]grid.Column, 0, len(cfg.Columns)+len(computed))
	seen := make(map[string]bool, len(cfg.Columns))
	for _, cc := range cfg.Columns {
		col := grid.Column{Key: cc.Key, Header: cc.Header, Sortable: cc.IsSortable()}
		if col.Header == "" {
			col.Header = headers[cc.Key]
		}
		if cc.Collate != "" {
			col.Compare = grid.CollateStrings(language.Make(cc.Collate))
		}
		cols = append(cols, col)
		seen[cc.Key] = true
	}
	for _, c := range rowexpr.GridColumns(computed) {
		if !seen[c.Key] {
			cols = append(cols, c)
		}
	}
	return cols
}

func tableOptions(cfg *config.Config, logger *slog.Logger) ([]grid.Option, error) {
	opts := []grid.Option{
		grid.WithPageSize(cfg.PageSize),
		grid.WithDebounce(time.Duration(cfg.DebounceMS) * time.Millisecond),
		grid.WithLogger(logger),
	}

	switch {
	case cfg.IDExpr != "":
		expr, err := rowexpr.Compile("id", cfg.IDExpr)
		if err != nil {
			return nil, fmt.Errorf("id_expr: %w", err)
		}
		opts = append(opts, grid.WithIdentity(rowexpr.Identity(expr)))
	case cfg.IDField != "":
		opts = append(opts, grid.WithIdentity(grid.IdentityByField(cfg.IDField)))
	}

	sort, err := grid.ParseSort(cfg.Sort)
	if err != nil {
		return nil, fmt.Errorf("sort: %w", err)
	}
	if sort.IsSorted() {
		opts = append(opts, grid.WithSort(sort))
	}
	return opts, nil
}
