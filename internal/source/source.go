// Package source loads materialized rows for the grid from files and
// databases.
package source

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapgrid/pkg/grid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Format identifies how a source is read.
type Format string

// Supported formats.
const (
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatJSONL    Format = "jsonl"
	FormatYAML     Format = "yaml"
	FormatHTML     Format = "html"
	FormatSQLite   Format = "sqlite"
	FormatDuckDB   Format = "duckdb"
	FormatPostgres Format = "postgres"
)

// Formats returns every supported format, file formats first.
func Formats() []Format {
	return []Format{FormatCSV, FormatJSON, FormatJSONL, FormatYAML, FormatHTML, FormatSQLite, FormatDuckDB, FormatPostgres}
}

var (
	// ErrUnsupportedFormat is returned when a source format cannot be
	// determined or read.
	ErrUnsupportedFormat = errors.New("unsupported source format")

	// ErrNoTable is returned for database sources without a table or query.
	ErrNoTable = errors.New("database source needs a table or a query")
)

// Spec describes where rows come from.
type Spec struct {
	// Path is a file path or, for postgres, a connection URL.
	Path string
	// Format overrides detection from the path.
	Format Format
	// Table names the database table, or the id of the HTML table.
	Table string
	// Query is a SQL query used instead of Table.
	Query string
	// Limit caps the rows read from a database table. Zero means no cap.
	Limit int
	// HTMLMarkdown keeps inline cell formatting of HTML tables as markdown.
	HTMLMarkdown bool
}

// Dataset is a loaded collection of rows and the columns describing them.
type Dataset struct {
	Columns []grid.Column
	Rows    []grid.Row
}

// Load reads the rows described by spec.
func Load(ctx context.Context, spec Spec) (*Dataset, error) {
	format := spec.Format
	if format == "" {
		var err error
		if format, err = DetectFormat(spec.Path); err != nil {
			return nil, err
		}
	}

	switch format {
	case FormatSQLite, FormatDuckDB, FormatPostgres:
		return loadDatabase(ctx, format, spec)
	}

	r, err := openFile(spec.Path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	var ds *Dataset
	switch format {
	case FormatCSV:
		ds, err = ReadCSV(r)
	case FormatJSON:
		ds, err = ReadJSON(r)
	case FormatJSONL:
		ds, err = ReadJSONLines(r)
	case FormatYAML:
		ds, err = ReadYAML(r)
	case FormatHTML:
		ds, err = ReadHTML(r, HTMLOptions{TableID: spec.Table, Markdown: spec.HTMLMarkdown})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", spec.Path, err)
	}
	return ds, nil
}

// DetectFormat infers the format from a path or connection URL. A trailing
// .gz or .zst compression suffix is ignored.
func DetectFormat(path string) (Format, error) {
	lower := strings.ToLower(path)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return FormatPostgres, nil
	}

	lower = strings.TrimSuffix(strings.TrimSuffix(lower, ".gz"), ".zst")
	switch filepath.Ext(lower) {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	case ".jsonl", ".ndjson":
		return FormatJSONL, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".html", ".htm":
		return FormatHTML, nil
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite, nil
	case ".duckdb":
		return FormatDuckDB, nil
	}
	return "", fmt.Errorf("%w: cannot detect format of %q", ErrUnsupportedFormat, path)
}

// InferColumns builds sortable columns for keys with headers derived from
// the key: "created_at" becomes "Created At".
func InferColumns(keys []string) []grid.Column {
	caser := cases.Title(language.English)
	cols := make([]grid.Column, len(keys))
	for i, k := range keys {
		words := strings.FieldsFunc(k, func(r rune) bool { return r == '_' || r == '-' || r == ' ' })
		header := k
		if len(words) > 0 {
			header = caser.String(strings.Join(words, " "))
		}
		cols[i] = grid.Column{Key: k, Header: header, Sortable: true}
	}
	return cols
}

// keysOf returns the union of row keys, sorted, with "id" first.
func keysOf(rows []grid.Row) []string {
	seen := make(map[string]struct{})
	var keys []string
	for _, row := range rows {
		for k := range row {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				keys = append(keys, k)
			}
		}
	}
	slices.SortFunc(keys, func(a, b string) int {
		switch {
		case a == b:
			return 0
		case a == "id":
			return -1
		case b == "id":
			return 1
		}
		return strings.Compare(a, b)
	})
	return keys
}

// parseScalar types a text cell: integers, floats and booleans are
// converted, blank cells become nil and everything else stays a string.
func parseScalar(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}
