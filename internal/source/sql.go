package source

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapgrid/pkg/grid"

	// database/sql drivers for the supported database sources.
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/marcboeker/go-duckdb"
	_ "modernc.org/sqlite"
)

// driverNames maps database formats to registered database/sql drivers.
var driverNames = map[Format]string{
	FormatSQLite:   "sqlite",
	FormatDuckDB:   "duckdb",
	FormatPostgres: "pgx",
}

func loadDatabase(ctx context.Context, format Format, spec Spec) (*Dataset, error) {
	query, err := buildQuery(spec)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverNames[format], spec.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", format, err)
	}
	defer func() { _ = db.Close() }()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", format, err)
	}

	return QueryRows(ctx, db, query)
}

// buildQuery returns spec.Query, or a SELECT over spec.Table.
func buildQuery(spec Spec) (string, error) {
	if q := strings.TrimSpace(spec.Query); q != "" {
		return q, nil
	}
	if spec.Table == "" {
		return "", ErrNoTable
	}
	query := "SELECT * FROM " + quoteIdent(spec.Table)
	if spec.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", spec.Limit)
	}
	return query, nil
}

// quoteIdent quotes each dot-separated part of a table name.
func quoteIdent(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = `"` + strings.ReplaceAll(p, `"`, `""`) + `"`
	}
	return strings.Join(parts, ".")
}

// QueryRows runs query on db and materializes every result row. Column
// order follows the result set.
func QueryRows(ctx context.Context, db *sql.DB, query string) (*Dataset, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	var out []grid.Row
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(grid.Row, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return &Dataset{Columns: InferColumns(columns), Rows: out}, nil
}
