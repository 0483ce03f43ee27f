package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type member struct {
	ID       string  `mapstructure:"id"`
	Name     string  `mapstructure:"name"`
	Score    float64 `mapstructure:"ocr_confidence"`
	Internal string  `mapstructure:"-"`
	Docs     int
	hidden   bool
}

func TestFromStructs(t *testing.T) {
	items := []*member{
		{ID: "m1", Name: "Ada", Score: 0.98, Docs: 3, Internal: "x"},
		nil,
		{ID: "m2", Name: "Grace", Score: 0.71, hidden: true},
	}

	ds, err := FromStructs(items)
	require.NoError(t, err)

	keys := make([]string, len(ds.Columns))
	for i, c := range ds.Columns {
		keys[i] = c.Key
	}
	assert.Equal(t, []string{"id", "name", "ocr_confidence", "Docs"}, keys)
	assert.Equal(t, "Ocr Confidence", ds.Columns[2].Header)

	require.Len(t, ds.Rows, 2)
	assert.Equal(t, "m1", ds.Rows[0]["id"])
	assert.InDelta(t, 0.98, ds.Rows[0]["ocr_confidence"], 1e-9)
	assert.Equal(t, 3, ds.Rows[0]["Docs"])
	assert.NotContains(t, ds.Rows[0], "Internal")
}

func TestFromStructs_Errors(t *testing.T) {
	_, err := FromStructs("not a slice")
	require.Error(t, err)

	_, err = FromStructs([]int{1, 2})
	require.Error(t, err)
}
