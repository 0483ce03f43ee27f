package grid

import "strings"

// Filter keeps the rows where any column's value contains query,
// case-insensitively. An empty query returns rows itself, unchanged, so
// callers can skip downstream work by comparing slices.
//
// When columns is empty every field of the row is searched.
func Filter(rows []Row, query string, columns []Column) []Row {
	if query == "" {
		return rows
	}
	needle := strings.ToLower(query)

	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		if rowMatches(row, needle, columns) {
			out = append(out, row)
		}
	}
	return out
}

func rowMatches(row Row, needle string, columns []Column) bool {
	if len(columns) == 0 {
		for _, v := range row {
			if valueMatches(v, needle) {
				return true
			}
		}
		return false
	}
	for _, col := range columns {
		if valueMatches(row[col.Key], needle) {
			return true
		}
	}
	return false
}

func valueMatches(v any, needle string) bool {
	s, ok := Stringify(v)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(s), needle)
}
