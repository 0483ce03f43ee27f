package rowexpr

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/leapstack-labs/leapgrid/pkg/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile(t *testing.T) {
	_, err := Compile("label", "   ")
	require.Error(t, err)

	_, err = Compile("label", "row[")
	var evalErr *EvalError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, "label", evalErr.Name)

	expr, err := Compile("label", " row['name'].upper() ")
	require.NoError(t, err)
	assert.Equal(t, "row['name'].upper()", expr.String())
}

func TestExpr_Eval(t *testing.T) {
	row := grid.Row{"first": "Ada", "last": "Lovelace", "docs": 3, "score": nil, "org": ""}

	tests := []struct {
		name string
		src  string
		want any
	}{
		{name: "string method", src: "row['first'].lower()", want: "ada"},
		{name: "arithmetic", src: "row['docs'] * 2", want: int64(6)},
		{name: "get default", src: "row.get('missing', 'n/a')", want: "n/a"},
		{name: "conditional", src: "'many' if row['docs'] > 2 else 'few'", want: "many"},
		{name: "coalesce", src: "coalesce(row['score'], row['org'], 'unknown')", want: "unknown"},
		{name: "coalesce empty", src: "coalesce()", want: nil},
		{name: "join", src: "join(' ', row['first'], row['score'], row['last'])", want: "Ada Lovelace"},
		{name: "join numbers", src: "join('-', row['docs'], 1)", want: "3-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, err := Compile(tt.name, tt.src)
			require.NoError(t, err)
			got, err := expr.Eval(row)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpr_EvalErrors(t *testing.T) {
	expr, err := Compile("boom", "row['missing']")
	require.NoError(t, err)

	_, err = expr.Eval(grid.Row{})
	var evalErr *EvalError
	require.ErrorAs(t, err, &evalErr)
	assert.Contains(t, err.Error(), `boom: error evaluating "row['missing']"`)

	expr, err = Compile("join", "join(1, 'a')")
	require.NoError(t, err)
	_, err = expr.Eval(grid.Row{})
	require.Error(t, err)
}

func TestExpr_EvalString(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{src: "row['name']", want: "Ada"},
		{src: "None", want: ""},
		{src: "row['n'] + 1", want: "42"},
		{src: "[1, 2]", want: "[1, 2]"},
	}
	for _, tt := range tests {
		expr, err := Compile("s", tt.src)
		require.NoError(t, err)
		got, err := expr.EvalString(grid.Row{"name": "Ada", "n": 41})
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.src)
	}
}

func TestExpr_Concurrent(t *testing.T) {
	expr, err := Compile("double", "row['n'] * 2")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := expr.Eval(grid.Row{"n": i})
			assert.NoError(t, err)
			assert.Equal(t, int64(i*2), got)
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, expr.pool.size(), 8)
}

func TestParseColumn(t *testing.T) {
	col, err := ParseColumn(" full_name = row['first'] + ' ' + row['last']")
	require.NoError(t, err)
	assert.Equal(t, "full_name", col.Key)

	for _, def := range []string{"no-equals", "=row['x']", "key=", "key=row["} {
		_, err := ParseColumn(def)
		assert.Error(t, err, def)
	}

	cols, err := ParseColumns([]string{"a=1", "b=2"})
	require.NoError(t, err)
	require.Len(t, cols, 2)

	gcols := GridColumns(cols)
	assert.Equal(t, "b", gcols[1].Key)
	assert.True(t, gcols[1].Sortable)

	_, err = ParseColumns([]string{"a=1", "bad"})
	require.Error(t, err)
}

func TestApply(t *testing.T) {
	rows := make([]grid.Row, 600)
	for i := range rows {
		rows[i] = grid.Row{"id": fmt.Sprintf("r%d", i), "n": i}
	}
	cols, err := ParseColumns([]string{
		"double=row['n'] * 2",
		"label=row['id'] + ':' + str(row['double'])",
	})
	require.NoError(t, err)

	out, err := Apply(context.Background(), rows, cols)
	require.NoError(t, err)
	require.Len(t, out, 600)

	assert.Equal(t, int64(1198), out[599]["double"])
	assert.Equal(t, "r10:20", out[10]["label"])
	assert.NotContains(t, rows[10], "double", "input rows are untouched")

	same, err := Apply(context.Background(), rows, nil)
	require.NoError(t, err)
	assert.Equal(t, rows, same)
}

func TestApply_Error(t *testing.T) {
	rows := []grid.Row{{"n": 1}, {"n": "x"}}
	cols, err := ParseColumns([]string{"inc=row['n'] + 1"})
	require.NoError(t, err)

	_, err = Apply(context.Background(), rows, cols)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 1")
}

func TestIdentity(t *testing.T) {
	expr, err := Compile("id", "coalesce(row.get('email'), row.get('handle'))")
	require.NoError(t, err)
	identity := Identity(expr)

	assert.Equal(t, "ada@example.com", identity(grid.Row{"email": "ada@example.com"}))
	assert.Equal(t, "grace", identity(grid.Row{"handle": "grace"}))
	assert.Equal(t, grid.DefaultIdentity(grid.Row{"id": 7}), identity(grid.Row{"id": 7}))
}
