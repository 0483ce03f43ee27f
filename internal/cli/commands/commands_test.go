package commands

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapgrid/internal/cli/config"
	clitest "github.com/leapstack-labs/leapgrid/internal/cli/testutil"
	"github.com/leapstack-labs/leapgrid/internal/render"
	"github.com/leapstack-labs/leapgrid/pkg/grid"
)

func boolPtr(b bool) *bool { return &b }

// execute runs cmd with args under a context carrying cfg and returns
// stdout and stderr.
func execute(t *testing.T, cmd *cobra.Command, cfg *config.Config, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(clitest.Context(t, cfg))
	return out.String(), errOut.String(), err
}

func newContext(t *testing.T, cfg *config.Config, args ...string) *CommandContext {
	t.Helper()
	cmd := &cobra.Command{}
	cmd.SetContext(clitest.Context(t, cfg))
	return NewCommandContext(cmd, args)
}

func TestCommandMetadata(t *testing.T) {
	tests := []struct {
		cmd   *cobra.Command
		use   string
		flags []string
	}{
		{cmd: NewViewCommand(), use: "view [source]"},
		{cmd: NewRenderCommand(), use: "render [source]", flags: []string{"query", "page", "format"}},
		{cmd: NewREPLCommand(), use: "repl [source]"},
		{cmd: NewServeCommand(), use: "serve [source]", flags: []string{"port", "watch", "session-secret", "title", "dev", "open"}},
		{cmd: NewDemoCommand(), use: "demo", flags: []string{"count", "format"}},
	}

	for _, tt := range tests {
		t.Run(tt.use, func(t *testing.T) {
			assert.Equal(t, tt.use, tt.cmd.Use)
			assert.NotEmpty(t, tt.cmd.Short, "Short should not be empty")
			assert.NotEmpty(t, tt.cmd.Long, "Long should not be empty")
			assert.NotEmpty(t, tt.cmd.Example, "Example should not be empty")
			for _, flag := range tt.flags {
				assert.NotNil(t, tt.cmd.Flags().Lookup(flag), "flag %q should exist", flag)
			}
		})
	}
}

func TestNewCommandContext(t *testing.T) {
	cfg := clitest.DefaultConfig("configured.csv")

	cc := newContext(t, cfg)
	assert.Equal(t, "configured.csv", cc.Cfg.Source)
	assert.Equal(t, "configured.csv", cc.Title())

	cc = newContext(t, cfg, "/data/override.csv")
	assert.Equal(t, "/data/override.csv", cc.Cfg.Source)
	assert.Equal(t, "override.csv", cc.Title())
	assert.Equal(t, "configured.csv", cfg.Source, "the stored config is not modified")

	cfg.UI.Title = "Members"
	assert.Equal(t, "Members", newContext(t, cfg).Title())
}

func TestLoadPipeline_NoSource(t *testing.T) {
	cc := newContext(t, clitest.DefaultConfig(""))
	_, err := cc.LoadPipeline(context.Background())
	assert.ErrorIs(t, err, ErrNoSource)
}

func TestLoadPipeline_Errors(t *testing.T) {
	path := clitest.WriteMembersCSV(t)

	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{name: "missing file", mutate: func(c *config.Config) { c.Source += ".missing" }},
		{name: "bad computed column", mutate: func(c *config.Config) { c.Computed = []string{"no-equals"} }},
		{name: "bad column expression", mutate: func(c *config.Config) { c.Columns = []config.ColumnConfig{{Key: "x", Expr: "row["}} }},
		{name: "bad id expression", mutate: func(c *config.Config) { c.IDExpr = "row[" }},
		{name: "bad view", mutate: func(c *config.Config) { c.View = "mosaic" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := clitest.DefaultConfig(path)
			tt.mutate(cfg)
			_, err := newContext(t, cfg).LoadPipeline(context.Background())
			assert.Error(t, err)
		})
	}
}

func TestLoadPipeline_InferredColumns(t *testing.T) {
	cfg := clitest.DefaultConfig(clitest.WriteMembersCSV(t))
	cfg.Computed = []string{"initial=row['name'][0]"}

	p, err := newContext(t, cfg).LoadPipeline(context.Background())
	require.NoError(t, err)

	require.Len(t, p.Rows, 5)
	assert.Equal(t, "A", p.Rows[0]["initial"])

	keys := make([]string, len(p.Columns))
	for i, c := range p.Columns {
		keys[i] = c.Key
	}
	assert.Contains(t, keys, "name")
	assert.Equal(t, "initial", keys[len(keys)-1], "computed columns follow the inferred ones")
	assert.Equal(t, render.LayoutDense, p.Layout)
}

func TestLoadPipeline_ConfiguredColumns(t *testing.T) {
	cfg := clitest.DefaultConfig(clitest.WriteMembersCSV(t))
	cfg.Columns = []config.ColumnConfig{
		{Key: "name", Collate: "en"},
		{Key: "role", Header: "Access", Sortable: boolPtr(false)},
		{Key: "label", Header: "Label", Expr: "row['name'] + ' (' + row['role'] + ')'"},
	}
	cfg.Computed = []string{"initial=row['name'][0]"}

	p, err := newContext(t, cfg).LoadPipeline(context.Background())
	require.NoError(t, err)

	require.Len(t, p.Columns, 4)
	assert.Equal(t, "name", p.Columns[0].Key)
	assert.Equal(t, "Name", p.Columns[0].Header, "header falls back to the inferred one")
	assert.NotNil(t, p.Columns[0].Compare, "collate installs a comparator")
	assert.Equal(t, "Access", p.Columns[1].Header)
	assert.False(t, p.Columns[1].Sortable)
	assert.Equal(t, "label", p.Columns[2].Key)
	assert.Equal(t, "initial", p.Columns[3].Key)

	assert.Equal(t, "Ada Lovelace (admin)", p.Rows[0]["label"])
}

func TestLoadPipeline_TableOptions(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantIDs []grid.RowID
	}{
		{
			name:    "default identity and page size",
			mutate:  func(c *config.Config) { c.PageSize = 2 },
			wantIDs: []grid.RowID{"1", "2"},
		},
		{
			name:    "id field",
			mutate:  func(c *config.Config) { c.PageSize = 2; c.IDField = "name" },
			wantIDs: []grid.RowID{"Ada Lovelace", "Grace Hopper"},
		},
		{
			name:    "id expression",
			mutate:  func(c *config.Config) { c.PageSize = 1; c.IDExpr = "row['role'] + '-' + str(row['id'])" },
			wantIDs: []grid.RowID{"admin-1"},
		},
		{
			name:    "sort descending",
			mutate:  func(c *config.Config) { c.PageSize = 2; c.Sort = "score:desc" },
			wantIDs: []grid.RowID{"1", "2"},
		},
		{
			name:    "sort ascending",
			mutate:  func(c *config.Config) { c.PageSize = 2; c.Sort = "score" },
			wantIDs: []grid.RowID{"5", "3"},
		},
		{
			name:    "unpaginated",
			mutate:  func(c *config.Config) { c.PageSize = 0 },
			wantIDs: []grid.RowID{"1", "2", "3", "4", "5"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := clitest.DefaultConfig(clitest.WriteMembersCSV(t))
			tt.mutate(cfg)

			p, err := newContext(t, cfg).LoadPipeline(context.Background())
			require.NoError(t, err)

			table := p.NewTable()
			defer table.Close()
			assert.Equal(t, tt.wantIDs, table.View().IDs())
		})
	}
}

func TestPipeline_Reload(t *testing.T) {
	path := clitest.WriteSource(t, "members.csv", "id,name\n1,Ada\n")
	cfg := clitest.DefaultConfig(path)
	cfg.Computed = []string{"upper=row['name'].upper()"}

	p, err := newContext(t, cfg).LoadPipeline(context.Background())
	require.NoError(t, err)
	require.Len(t, p.Rows, 1)

	require.NoError(t, os.WriteFile(path, []byte("id,name\n1,Ada\n2,Grace\n"), 0600))

	rows, err := p.Reload(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "GRACE", rows[1]["upper"])
}

func TestRenderCommand(t *testing.T) {
	path := clitest.WriteMembersCSV(t)

	tests := []struct {
		name      string
		mutate    func(*config.Config)
		args      []string
		want      []string
		notWant   []string
		errSubstr string
	}{
		{
			name:    "first page",
			mutate:  func(c *config.Config) { c.PageSize = 2 },
			want:    []string{"Ada Lovelace", "Grace Hopper", "Page 1 of 3"},
			notWant: []string{"Linus Torvalds"},
		},
		{
			name:    "query",
			args:    []string{"--query", "ada"},
			want:    []string{"Ada Lovelace", "1 of 5 rows", `search "ada"`},
			notWant: []string{"Grace Hopper"},
		},
		{
			name:    "page",
			mutate:  func(c *config.Config) { c.PageSize = 2 },
			args:    []string{"--page", "3"},
			want:    []string{"Ken Thompson", "Page 3 of 3"},
			notWant: []string{"Ada Lovelace"},
		},
		{
			name:      "page out of range",
			mutate:    func(c *config.Config) { c.PageSize = 2 },
			args:      []string{"--page", "4"},
			errSubstr: "page 4 out of range 1..3",
		},
		{
			name:   "cards",
			mutate: func(c *config.Config) { c.View = "cards" },
			want:   []string{"### [ ] 1", "- **Name**: Ada Lovelace"},
		},
		{
			name: "csv format",
			args: []string{"--format", "csv"},
			want: []string{"Id,Name,Role,Score", "1,Ada Lovelace,admin,0.91"},
		},
		{
			name:      "unknown format",
			args:      []string{"--format", "pdf"},
			errSubstr: "unknown output format",
		},
		{
			name:    "no matches",
			args:    []string{"--query", "nobody"},
			want:    []string{"0 of 5 rows"},
			notWant: []string{"Ada Lovelace"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := clitest.DefaultConfig(path)
			if tt.mutate != nil {
				tt.mutate(cfg)
			}

			out, _, err := execute(t, NewRenderCommand(), cfg, tt.args...)
			if tt.errSubstr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errSubstr)
				return
			}
			require.NoError(t, err)
			clitest.AssertNoANSI(t, out)
			for _, want := range tt.want {
				assert.Contains(t, out, want)
			}
			for _, notWant := range tt.notWant {
				assert.NotContains(t, out, notWant)
			}
		})
	}
}

func TestRenderCommand_SourceArgument(t *testing.T) {
	path := clitest.WriteSource(t, "other.json", `[{"id": "x1", "name": "Edsger Dijkstra"}]`)

	out, _, err := execute(t, NewRenderCommand(), clitest.DefaultConfig(""), path)
	require.NoError(t, err)
	assert.Contains(t, out, "Edsger Dijkstra")
}

func TestGoToPage(t *testing.T) {
	rows := []grid.Row{{"id": 1}, {"id": 2}, {"id": 3}}

	table := grid.New(rows, nil, grid.WithPageSize(2))
	require.NoError(t, goToPage(table, 2))
	assert.Equal(t, 2, table.View().Page)
	require.NoError(t, goToPage(table, 1))
	assert.Equal(t, 1, table.View().Page)
	assert.Error(t, goToPage(table, 0))
	assert.Error(t, goToPage(table, 3))

	empty := grid.New(nil, nil, grid.WithPageSize(2))
	assert.NoError(t, goToPage(empty, 1), "page 1 of an empty result is valid")
	assert.Error(t, goToPage(empty, 2))
}

func TestTableOptions_IDFieldFallback(t *testing.T) {
	opts, err := tableOptions(&config.Config{IDField: "email"}, nil)
	require.NoError(t, err)

	rows := []grid.Row{{"email": "ada@example.com"}, {"name": "no email"}}
	table := grid.New(rows, nil, opts...)
	ids := table.View().IDs()
	require.Len(t, ids, 2)
	assert.Equal(t, "ada@example.com", ids[0])
	assert.Contains(t, ids[1], "no email", "rows without the field fall back to the canonical form")
}

func TestComputedColumns_Order(t *testing.T) {
	cols, err := computedColumns(&config.Config{
		Columns:  []config.ColumnConfig{{Key: "plain"}, {Key: "a", Expr: "1"}},
		Computed: []string{"b=2"},
	})
	require.NoError(t, err)
	require.Len(t, cols, 2)
	assert.Equal(t, "a", cols[0].Key)
	assert.Equal(t, "b", cols[1].Key)
}
