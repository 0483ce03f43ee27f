package grid

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Row is a single record keyed by column key. Values may be of any type.
type Row map[string]any

// RowID is the stable identity of a row.
type RowID = string

// IdentityFunc derives the RowID of a row. It must be total and free of side
// effects: two rows with the same derived id are the same row for selection.
type IdentityFunc func(Row) RowID

// Column describes how a row field is presented. Columns hold no state.
type Column struct {
	Key      string
	Header   string
	Sortable bool

	// Render formats a cell for display. When nil, FormatValue is used.
	Render func(value any, row Row) string

	// Compare overrides DefaultCompare when sorting by this column.
	Compare Comparator
}

// Title returns the header, falling back to the key.
func (c Column) Title() string {
	if c.Header != "" {
		return c.Header
	}
	return c.Key
}

// Cell returns the display text of this column for row.
func (c Column) Cell(row Row) string {
	v := row[c.Key]
	if c.Render != nil {
		return c.Render(v, row)
	}
	return FormatValue(v)
}

// DefaultIdentity uses the row's "id" field when present, otherwise a
// canonical serialization of the whole row.
//
// Structurally identical rows without an id collide and are treated as one
// row by the selection.
func DefaultIdentity(row Row) RowID {
	return fieldIdentity("id", row)
}

// IdentityByField returns an IdentityFunc that reads key instead of "id",
// with the same canonical fallback as DefaultIdentity.
func IdentityByField(key string) IdentityFunc {
	return func(row Row) RowID {
		return fieldIdentity(key, row)
	}
}

func fieldIdentity(key string, row Row) RowID {
	if v, ok := row[key]; ok && v != nil {
		return FormatValue(v)
	}
	return canonical(row)
}

// canonical serializes a row with sorted keys. encoding/json sorts map keys,
// which gives the stable form; values json cannot encode fall back to %v.
func canonical(row Row) string {
	if b, err := json.Marshal(row); err == nil {
		return string(b)
	}

	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "%q:%v", k, row[k])
	}
	sb.WriteByte('}')
	return sb.String()
}

// FormatValue converts a cell value to display text. nil renders empty.
func FormatValue(v any) string {
	s, ok := Stringify(v)
	if !ok {
		return ""
	}
	return s
}

// Stringify is the best-effort string conversion used by the search filter.
// It reports false for nil, which never matches a query. Floats are written
// without an exponent, so 2500000 decoded from JSON reads "2500000".
func Stringify(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, true
	case []byte:
		return string(val), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32), true
	default:
		return fmt.Sprintf("%v", val), true
	}
}
