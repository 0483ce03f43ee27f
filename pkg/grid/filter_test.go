package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter_EmptyQueryReturnsInput(t *testing.T) {
	rows := numberedRows(3)
	out := Filter(rows, "", nil)
	require.Len(t, out, 3)
	assert.Same(t, &rows[0], &out[0])
}

func TestFilter_CaseInsensitive(t *testing.T) {
	rows := []Row{{"name": "Alice"}, {"name": "bob"}}
	cols := []Column{{Key: "name"}}

	assert.Equal(t, []Row{{"name": "Alice"}}, Filter(rows, "A", cols))
	assert.Equal(t, []Row{{"name": "bob"}}, Filter(rows, "o", cols))
	assert.Empty(t, Filter(rows, "zed", cols))
}

func TestFilter_AnyColumn(t *testing.T) {
	rows := []Row{
		{"name": "Alice", "city": "Oslo"},
		{"name": "Bob", "city": "Lima"},
	}
	cols := []Column{{Key: "name"}, {Key: "city"}}

	out := Filter(rows, "lim", cols)
	require.Len(t, out, 1)
	assert.Equal(t, "Bob", out[0]["name"])
}

func TestFilter_OnlyDeclaredColumns(t *testing.T) {
	rows := []Row{{"name": "Alice", "secret": "needle"}}
	assert.Empty(t, Filter(rows, "needle", []Column{{Key: "name"}}))
	assert.Len(t, Filter(rows, "needle", nil), 1)
}

func TestFilter_StringifiesValues(t *testing.T) {
	rows := []Row{
		{"v": 1234},
		{"v": 3.5},
		{"v": true},
		{"v": []byte("bytes")},
		{"v": nil},
	}
	cols := []Column{{Key: "v"}}

	assert.Len(t, Filter(rows, "23", cols), 1)
	assert.Len(t, Filter(rows, ".5", cols), 1)
	assert.Len(t, Filter(rows, "TRUE", cols), 1)
	assert.Len(t, Filter(rows, "byt", cols), 1)
	assert.Empty(t, Filter(rows, "nil", cols))
	assert.Empty(t, Filter(rows, "<nil>", cols))
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	rows := []Row{{"name": "a"}, {"name": "b"}, {"name": "ab"}}
	_ = Filter(rows, "b", []Column{{Key: "name"}})
	assert.Equal(t, []Row{{"name": "a"}, {"name": "b"}, {"name": "ab"}}, rows)
}
