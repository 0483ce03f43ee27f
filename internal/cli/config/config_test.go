package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "leapgrid.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultPageSize, cfg.PageSize)
	assert.Equal(t, DefaultDebounceMS, cfg.DebounceMS)
	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.Equal(t, DefaultView, cfg.View)
	assert.Equal(t, DefaultPort, cfg.UI.Port)
	assert.True(t, cfg.UI.Watch)
	assert.Empty(t, GetConfigFileUsed())
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `source: data/members.csv
id_field: email
page_size: 10
sort: name:desc
columns:
  - key: name
    header: Name
    collate: sv
  - key: role
    sortable: false
  - key: initials
    expr: row["name"][:1]
ui:
  port: 9000
  watch: false
`)

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, path, GetConfigFileUsed())
	assert.Equal(t, filepath.Join(dir, "data", "members.csv"), cfg.Source, "source should resolve relative to the config file")
	assert.Equal(t, "email", cfg.IDField)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, "name:desc", cfg.Sort)
	assert.Equal(t, 9000, cfg.UI.Port)
	assert.False(t, cfg.UI.Watch)

	require.Len(t, cfg.Columns, 3)
	assert.Equal(t, "sv", cfg.Columns[0].Collate)
	assert.True(t, cfg.Columns[0].IsSortable())
	assert.False(t, cfg.Columns[1].IsSortable())
	assert.Equal(t, `row["name"][:1]`, cfg.Columns[2].Expr)
}

func TestLoadConfig_SearchesUpward(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "page_size: 7\n")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0750))
	t.Chdir(nested)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.PageSize)
	want, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(cfg.ProjectRoot)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadConfig_URLSourceUntouched(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "source: postgres://localhost/app\ntable: members\n")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/app", cfg.Source)
}

// TestLoadConfig_Precedence tests that flags override env vars, which
// override the config file.
func TestLoadConfig_Precedence(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		flag    string
		setFlag bool
		want    int
	}{
		{name: "file only", want: 5},
		{name: "env over file", env: "6", want: 6},
		{name: "flag over env", env: "6", flag: "7", setFlag: true, want: 7},
		{name: "unset flag falls back to env", env: "6", flag: "7", want: 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), "page_size: 5\n")
			if tt.env != "" {
				t.Setenv("LEAPGRID_PAGE_SIZE", tt.env)
			}

			flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
			flags.Int("page-size", 0, "rows per page")
			if tt.setFlag {
				require.NoError(t, flags.Set("page-size", tt.flag))
			}

			cfg, err := LoadConfig(path, flags)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.PageSize)
		})
	}
}

func TestLoadConfig_FlagMapping(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LEAPGRID_UI_SESSION_SECRET", "from-env")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("source", "", "")
	flags.StringArray("column", nil, "")
	flags.Int("port", 0, "")
	require.NoError(t, flags.Set("source", "members.csv"))
	require.NoError(t, flags.Set("column", "upper=row['name'].upper()"))
	require.NoError(t, flags.Set("column", "n=1"))
	require.NoError(t, flags.Set("port", "9001"))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)

	assert.Equal(t, "members.csv", cfg.Source, "flag source stays relative to the working directory")
	assert.Equal(t, []string{"upper=row['name'].upper()", "n=1"}, cfg.Computed)
	assert.Equal(t, 9001, cfg.UI.Port)
	assert.Equal(t, "from-env", cfg.UI.SessionSecret)
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "page_size: [\n")
	_, err := LoadConfig(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{Output: "auto", View: "dense", PageSize: 10, DebounceMS: 300}
	}

	tests := []struct {
		name      string
		mutate    func(*Config)
		errSubstr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "zero page size disables paging", mutate: func(c *Config) { c.PageSize = 0 }},
		{name: "negative page size", mutate: func(c *Config) { c.PageSize = -1 }, errSubstr: "page_size"},
		{name: "negative debounce", mutate: func(c *Config) { c.DebounceMS = -5 }, errSubstr: "debounce_ms"},
		{name: "negative limit", mutate: func(c *Config) { c.Limit = -1 }, errSubstr: "limit"},
		{name: "unknown output", mutate: func(c *Config) { c.Output = "pdf" }, errSubstr: "output"},
		{name: "unknown view", mutate: func(c *Config) { c.View = "grid" }, errSubstr: "view"},
		{name: "bad sort", mutate: func(c *Config) { c.Sort = "name:sideways" }, errSubstr: "sort"},
		{name: "both identities", mutate: func(c *Config) { c.IDField = "id"; c.IDExpr = "row['id']" }, errSubstr: "mutually exclusive"},
		{name: "port out of range", mutate: func(c *Config) { c.UI.Port = 70000 }, errSubstr: "ui.port"},
		{name: "column without key", mutate: func(c *Config) { c.Columns = []ColumnConfig{{Header: "Name"}} }, errSubstr: "key is required"},
		{name: "duplicate column", mutate: func(c *Config) { c.Columns = []ColumnConfig{{Key: "a"}, {Key: "a"}} }, errSubstr: "duplicate"},
		{name: "bad collation tag", mutate: func(c *Config) { c.Columns = []ColumnConfig{{Key: "a", Collate: "not a tag!"}} }, errSubstr: "collate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errSubstr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()

	assert.NotNil(t, GetLogger(ctx), "missing logger should fall back to discard")
	assert.Equal(t, DefaultPageSize, GetConfig(ctx).PageSize, "missing config should fall back to defaults")

	cfg := &Config{PageSize: 3}
	logger := NewLogger(os.Stderr, true)
	ctx = WithLogger(WithConfig(ctx, cfg), logger)

	assert.Same(t, cfg, GetConfig(ctx))
	assert.Same(t, logger, GetLogger(ctx))
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "page_size", envKey("LEAPGRID_PAGE_SIZE"))
	assert.Equal(t, "ui.port", envKey("LEAPGRID_UI_PORT"))
	assert.Equal(t, "ui.session_secret", envKey("LEAPGRID_UI_SESSION_SECRET"))
}
