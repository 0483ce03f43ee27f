// Package window tracks a scroll viewport over variable-height items and
// reports which of them are visible. It implements grid.Windower.
package window

import (
	"sync"

	"github.com/leapstack-labs/leapgrid/pkg/grid"
)

// DefaultEstimate is the height assumed for items that have neither been
// measured nor estimated by the caller.
const DefaultEstimate = 1

var _ grid.Windower = (*Virtualizer)(nil)

// Virtualizer is a vertical viewport. Heights are taken from measurements
// when available, then from the caller's estimate, then DefaultEstimate.
type Virtualizer struct {
	mu       sync.Mutex
	height   int
	offset   int
	overscan int
	estimate int
	measured map[int]int
}

// Option configures a Virtualizer.
type Option func(*Virtualizer)

// WithOverscan renders n extra items above and below the viewport.
func WithOverscan(n int) Option {
	return func(v *Virtualizer) {
		if n >= 0 {
			v.overscan = n
		}
	}
}

// WithEstimate sets the fallback item height.
func WithEstimate(h int) Option {
	return func(v *Virtualizer) {
		if h > 0 {
			v.estimate = h
		}
	}
}

// New returns a viewport height lines tall.
func New(height int, opts ...Option) *Virtualizer {
	v := &Virtualizer{
		height:   max(height, 0),
		estimate: DefaultEstimate,
		measured: make(map[int]int),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// SetHeight resizes the viewport.
func (v *Virtualizer) SetHeight(height int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.height = max(height, 0)
}

// Height returns the viewport height.
func (v *Virtualizer) Height() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.height
}

// Offset returns the scroll offset in lines.
func (v *Virtualizer) Offset() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.offset
}

// ScrollBy moves the viewport by delta lines. The offset is clamped on the
// next call to Visible.
func (v *Virtualizer) ScrollBy(delta int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.offset = max(v.offset+delta, 0)
}

// ScrollToTop resets the offset.
func (v *Virtualizer) ScrollToTop() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.offset = 0
}

// Reset forgets measurements and scrolls to the top. Call it when the items
// change, since measurements are keyed by index.
func (v *Virtualizer) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.offset = 0
	clear(v.measured)
}

// Measure records the rendered height of the item at index.
func (v *Virtualizer) Measure(index, size int) {
	if index < 0 || size < 0 {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.measured[index] = size
}

// EnsureVisible scrolls the minimum distance that brings index fully into
// view.
func (v *Virtualizer) EnsureVisible(index, count int, estimate func(int) int) {
	if index < 0 || index >= count {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	heights := v.heights(count, estimate)
	top := 0
	for i := range index {
		top += heights[i]
	}
	bottom := top + heights[index]

	switch {
	case top < v.offset:
		v.offset = top
	case bottom > v.offset+v.height:
		v.offset = bottom - v.height
	}
	v.offset = max(v.offset, 0)
}

// TotalHeight sums the heights of count items.
func (v *Virtualizer) TotalHeight(count int, estimate func(int) int) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	total := 0
	for _, h := range v.heights(count, estimate) {
		total += h
	}
	return total
}

// Visible returns the items intersecting the viewport plus overscan, in
// order. Each Offset is the item's top relative to the top of the
// viewport, so items scrolled partly out of view have a negative offset.
func (v *Virtualizer) Visible(count int, estimate func(int) int) []grid.VisibleItem {
	v.mu.Lock()
	defer v.mu.Unlock()

	if count <= 0 || v.height == 0 {
		return nil
	}

	heights := v.heights(count, estimate)
	positions := make([]int, count)
	total := 0
	for i, h := range heights {
		positions[i] = total
		total += h
	}

	v.offset = max(min(v.offset, total-v.height), 0)
	start, end := v.offset, v.offset+v.height

	first, last := -1, -1
	for i := range count {
		top, bottom := positions[i], positions[i]+heights[i]
		if bottom <= start {
			continue
		}
		if top >= end {
			break
		}
		if first < 0 {
			first = i
		}
		last = i
	}
	if first < 0 {
		return nil
	}

	first = max(first-v.overscan, 0)
	last = min(last+v.overscan, count-1)

	items := make([]grid.VisibleItem, 0, last-first+1)
	for i := first; i <= last; i++ {
		items = append(items, grid.VisibleItem{Index: i, Offset: positions[i] - v.offset})
	}
	return items
}

// heights resolves every item height. Callers hold v.mu.
func (v *Virtualizer) heights(count int, estimate func(int) int) []int {
	heights := make([]int, count)
	for i := range heights {
		switch h, ok := v.measured[i]; {
		case ok:
			heights[i] = h
		case estimate != nil:
			heights[i] = max(estimate(i), 0)
		default:
			heights[i] = v.estimate
		}
	}
	return heights
}
