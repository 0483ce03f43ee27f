package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	rows := numberedRows(23)

	tests := []struct {
		name      string
		state     PageState
		wantLen   int
		wantTotal int
		wantFirst any
	}{
		{"page 1", PageState{Size: 10, Current: 1}, 10, 3, "r1"},
		{"page 2", PageState{Size: 10, Current: 2}, 10, 3, "r11"},
		{"page 3", PageState{Size: 10, Current: 3}, 3, 3, "r21"},
		{"past the end", PageState{Size: 10, Current: 4}, 0, 3, nil},
		{"before the start", PageState{Size: 10, Current: 0}, 0, 3, nil},
		{"unpaginated", PageState{Current: 1}, 23, 1, "r1"},
		{"negative size is unpaginated", PageState{Size: -5, Current: 1}, 23, 1, "r1"},
		{"exact fit", PageState{Size: 23, Current: 1}, 23, 1, "r1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := Paginate(rows, tt.state)
			assert.Len(t, page.Rows, tt.wantLen)
			assert.Equal(t, tt.wantTotal, page.TotalPages)
			if tt.wantFirst != nil {
				assert.Equal(t, tt.wantFirst, page.Rows[0]["id"])
			}
		})
	}
}

func TestPaginate_Empty(t *testing.T) {
	page := Paginate(nil, PageState{Size: 10, Current: 1})
	assert.Empty(t, page.Rows)
	assert.Zero(t, page.TotalPages)

	page = Paginate(nil, PageState{Current: 1})
	assert.Zero(t, page.TotalPages)
}

func TestPageState_Navigation(t *testing.T) {
	assert.False(t, PageState{Current: 1}.CanPrevious())
	assert.True(t, PageState{Current: 2}.CanPrevious())
	assert.True(t, PageState{Current: 2}.CanNext(3))
	assert.False(t, PageState{Current: 3}.CanNext(3))
	assert.False(t, PageState{Current: 1}.CanNext(0))
}
