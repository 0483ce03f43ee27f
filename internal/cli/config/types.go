// Package config provides configuration management for the leapgrid CLI.
package config

// Default configuration values.
const (
	DefaultDebounceMS = 300
	DefaultPageSize   = 25
	DefaultOutput     = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultView       = "dense"
	DefaultPort       = 8765
)

// ConfigFileNames are the file names searched for, in order.
var ConfigFileNames = []string{"leapgrid.yaml", "leapgrid.yml"}

// ColumnConfig declares one column. A column with an expression is
// computed from the other fields of the row.
type ColumnConfig struct {
	Key      string `koanf:"key"`
	Header   string `koanf:"header"`
	Sortable *bool  `koanf:"sortable"`
	// Collate is a BCP 47 language tag selecting locale-aware string order.
	Collate string `koanf:"collate"`
	// Expr is a starlark expression over row.
	Expr string `koanf:"expr"`
}

// IsSortable reports whether the column may be sorted. Columns are sortable
// unless switched off.
func (c ColumnConfig) IsSortable() bool {
	return c.Sortable == nil || *c.Sortable
}

// UIConfig holds configuration for the dashboard server.
type UIConfig struct {
	Port          int    `koanf:"port"`
	Watch         bool   `koanf:"watch"`
	SessionSecret string `koanf:"session_secret"`
	Title         string `koanf:"title"`
}

// Config holds all CLI configuration options.
type Config struct {
	// Source is a file path or database URL.
	Source       string `koanf:"source"`
	SourceType   string `koanf:"source_type"`
	Table        string `koanf:"table"`
	SQL          string `koanf:"sql"`
	Limit        int    `koanf:"limit"`
	HTMLMarkdown bool   `koanf:"html_markdown"`

	IDField string `koanf:"id_field"`
	IDExpr  string `koanf:"id_expr"`

	PageSize   int    `koanf:"page_size"`
	DebounceMS int    `koanf:"debounce_ms"`
	Sort       string `koanf:"sort"`
	Output     string `koanf:"output"`
	View       string `koanf:"view"`

	Columns []ColumnConfig `koanf:"columns"`
	// Computed holds "key=expression" definitions from the command line.
	Computed []string `koanf:"computed"`

	Verbose bool     `koanf:"verbose"`
	UI      UIConfig `koanf:"ui"`

	// ProjectRoot is the directory relative source paths resolve against.
	ProjectRoot string `koanf:"-"`
}
