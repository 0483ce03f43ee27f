package grid

import (
	"fmt"
	"slices"
	"strings"
)

// SortDirection is the direction of the active sort.
type SortDirection int

// Sort directions.
const (
	Unsorted SortDirection = iota
	Ascending
	Descending
)

func (d SortDirection) String() string {
	switch d {
	case Ascending:
		return "asc"
	case Descending:
		return "desc"
	default:
		return "none"
	}
}

// SortState is the tri-state sort machine: unsorted, or a single column
// sorted ascending or descending. The zero value is unsorted. A direction is
// never held without a column.
type SortState struct {
	column    string
	direction SortDirection
}

// SortBy returns the state sorting column in dir. An empty column or the
// Unsorted direction yields the unsorted state.
func SortBy(column string, dir SortDirection) SortState {
	if column == "" || dir == Unsorted {
		return SortState{}
	}
	return SortState{column: column, direction: dir}
}

// Column returns the active column and whether the state is sorted at all.
func (s SortState) Column() (string, bool) {
	return s.column, s.direction != Unsorted
}

// Direction returns the active direction.
func (s SortState) Direction() SortDirection {
	return s.direction
}

// IsSorted reports whether a column is active.
func (s SortState) IsSorted() bool {
	return s.direction != Unsorted
}

// Activate is the single transition of the machine:
//
//	other column -> (column, asc)
//	(column, asc) -> (column, desc)
//	(column, desc) -> unsorted
func (s SortState) Activate(column string) SortState {
	if column == "" {
		return s
	}
	if s.column != column {
		return SortState{column: column, direction: Ascending}
	}
	switch s.direction {
	case Ascending:
		return SortState{column: column, direction: Descending}
	default:
		return SortState{}
	}
}

func (s SortState) String() string {
	if !s.IsSorted() {
		return "none"
	}
	return s.column + ":" + s.direction.String()
}

// ParseSort parses "column", "column:asc" or "column:desc". An empty string
// is the unsorted state.
func ParseSort(s string) (SortState, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return SortState{}, nil
	}

	column, dir, found := strings.Cut(s, ":")
	if column == "" {
		return SortState{}, fmt.Errorf("invalid sort %q: missing column", s)
	}
	if !found {
		return SortBy(column, Ascending), nil
	}

	switch strings.ToLower(dir) {
	case "asc", "":
		return SortBy(column, Ascending), nil
	case "desc":
		return SortBy(column, Descending), nil
	default:
		return SortState{}, fmt.Errorf("invalid sort direction %q: want asc or desc", dir)
	}
}

// Sort orders rows by the state's column. When unsorted it returns rows
// itself; otherwise it returns a new slice and leaves rows untouched.
//
// The sort is stable. Descending negates the comparator, so rows that
// compare equal keep their input order in both directions.
func Sort(rows []Row, state SortState, columns []Column) []Row {
	key, ok := state.Column()
	if !ok {
		return rows
	}

	compare := DefaultCompare
	if i := columnIndex(columns, key); i >= 0 && columns[i].Compare != nil {
		compare = columns[i].Compare
	}
	sign := 1
	if state.Direction() == Descending {
		sign = -1
	}

	out := slices.Clone(rows)
	slices.SortStableFunc(out, func(a, b Row) int {
		return sign * compare(a[key], b[key])
	})
	return out
}

func columnIndex(columns []Column, key string) int {
	return slices.IndexFunc(columns, func(c Column) bool { return c.Key == key })
}
