package grid

// PageState is the page size and the 1-based current page. A Size of zero
// or less means no pagination: the whole input is a single page.
type PageState struct {
	Size    int
	Current int
}

// Page is the output of Paginate.
type Page struct {
	Rows       []Row
	Current    int
	TotalPages int
}

// Paginate slices rows to the current page.
//
// TotalPages is ceil(len(rows)/size) and zero for empty input. A current
// page outside [1, TotalPages] yields no rows.
func Paginate(rows []Row, state PageState) Page {
	size := state.Size
	if size <= 0 {
		size = len(rows)
	}

	page := Page{Current: state.Current}
	if len(rows) == 0 || size == 0 {
		return page
	}
	page.TotalPages = (len(rows) + size - 1) / size

	if state.Current < 1 {
		return page
	}
	start := (state.Current - 1) * size
	if start >= len(rows) {
		return page
	}
	end := min(start+size, len(rows))
	page.Rows = rows[start:end]
	return page
}

// CanPrevious reports whether there is a page before the current one.
func (p PageState) CanPrevious() bool {
	return p.Current > 1
}

// CanNext reports whether there is a page after the current one.
func (p PageState) CanNext(totalPages int) bool {
	return p.Current < totalPages
}
