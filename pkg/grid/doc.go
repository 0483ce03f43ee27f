// Package grid implements the tabular data presentation pipeline used by the
// leapgrid viewers.
//
// A Table takes a materialized collection of rows and produces the exact
// subset, order, page and selection state to render:
//
//	rows -> Filter -> Sort -> Paginate -> Selection -> View
//
// Every stage is a pure recomputation over its inputs; no stage mutates the
// rows it receives. The only asynchronous element is the search debounce:
// keystrokes update the live query immediately, while the filter only sees
// the query once it has been idle for the configured window.
//
// Selection is keyed by RowID rather than by position, so selected rows stay
// selected while they are filtered out, re-sorted or paged away.
package grid
