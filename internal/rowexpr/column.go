package rowexpr

import (
	"context"
	"fmt"
	"maps"
	"runtime"
	"strings"

	"github.com/leapstack-labs/leapgrid/pkg/grid"
	"golang.org/x/sync/errgroup"
)

// chunkSize is the number of rows a single worker evaluates at a time.
const chunkSize = 256

// Column is a computed column: Expr is evaluated per row and stored under
// Key before rows enter the grid, so search and sort see the value.
type Column struct {
	Key    string
	Header string
	Expr   *Expr
}

// ParseColumn parses a "key=expression" definition.
func ParseColumn(def string) (Column, error) {
	key, src, ok := strings.Cut(def, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return Column{}, fmt.Errorf("invalid computed column %q: want key=expression", def)
	}
	expr, err := Compile(key, src)
	if err != nil {
		return Column{}, err
	}
	return Column{Key: key, Expr: expr}, nil
}

// ParseColumns parses every definition, stopping at the first error.
func ParseColumns(defs []string) ([]Column, error) {
	cols := make([]Column, 0, len(defs))
	for _, def := range defs {
		col, err := ParseColumn(def)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	return cols, nil
}

// GridColumns describes computed columns for the grid. They are sortable.
func GridColumns(cols []Column) []grid.Column {
	out := make([]grid.Column, len(cols))
	for i, c := range cols {
		out[i] = grid.Column{Key: c.Key, Header: c.Header, Sortable: true}
	}
	return out
}

// Apply returns copies of rows extended with every computed column. Input
// rows are not modified. Rows are evaluated concurrently; the first error
// cancels the rest.
func Apply(ctx context.Context, rows []grid.Row, cols []Column) ([]grid.Row, error) {
	if len(cols) == 0 {
		return rows, nil
	}

	out := make([]grid.Row, len(rows))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for start := 0; start < len(rows); start += chunkSize {
		end := min(start+chunkSize, len(rows))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				row := maps.Clone(rows[i])
				if row == nil {
					row = grid.Row{}
				}
				for _, c := range cols {
					v, err := c.Expr.Eval(row)
					if err != nil {
						return fmt.Errorf("row %d: %w", i, err)
					}
					row[c.Key] = v
				}
				out[i] = row
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Identity returns an identity function evaluating expr. Rows for which
// the expression fails, or yields an empty string, fall back to
// grid.DefaultIdentity.
func Identity(expr *Expr) grid.IdentityFunc {
	return func(row grid.Row) grid.RowID {
		id, err := expr.EvalString(row)
		if err != nil || id == "" {
			return grid.DefaultIdentity(row)
		}
		return id
	}
}
