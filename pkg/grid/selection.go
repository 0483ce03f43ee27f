package grid

import (
	"maps"
	"slices"
)

// Set is a set of row ids.
type Set map[RowID]struct{}

// NewSet returns a set holding ids.
func NewSet(ids ...RowID) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is a member.
func (s Set) Has(id RowID) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of members.
func (s Set) Len() int { return len(s) }

// IDs returns the members in ascending order.
func (s Set) IDs() []RowID {
	return slices.Sorted(maps.Keys(s))
}

// Clone returns a copy of s. Cloning a nil set yields an empty set.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	maps.Copy(out, s)
	return out
}

// Union returns a new set with the members of s and ids.
func (s Set) Union(ids ...RowID) Set {
	out := s.Clone()
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}

// Difference returns a new set with the members of s that are not in ids.
func (s Set) Difference(ids ...RowID) Set {
	out := s.Clone()
	for _, id := range ids {
		delete(out, id)
	}
	return out
}

// selectionOwner is either owned (the set lives here) or delegated (the set
// lives with an external owner reached through a value and a callback).
type selectionOwner interface {
	value() Set
	// commit applies next and returns the external notification to run,
	// if any. Callers run it after releasing their locks.
	commit(next Set) func()
}

type ownedSelection struct {
	set Set
}

func (o *ownedSelection) value() Set { return o.set }

func (o *ownedSelection) commit(next Set) func() {
	o.set = next
	return nil
}

type delegatedSelection struct {
	set      Set
	onChange func([]RowID)
}

func (d *delegatedSelection) value() Set { return d.set }

// commit forwards next to the owner. The visible value only changes when
// the owner feeds it back through Sync.
func (d *delegatedSelection) commit(next Set) func() {
	ids := next.IDs()
	onChange := d.onChange
	return func() { onChange(ids) }
}

// Selection holds the set of selected row ids.
//
// It is controlled when created with a change callback through
// NewControlledSelection, and uncontrolled otherwise. Membership is never pruned by
// filtering, sorting or paging; only explicit mutations change it.
type Selection struct {
	owner selectionOwner
}

// NewSelection returns an uncontrolled selection holding ids.
func NewSelection(ids ...RowID) *Selection {
	return &Selection{owner: &ownedSelection{set: NewSet(ids...)}}
}

// NewControlledSelection returns a selection whose state lives with the
// caller. Every mutation is passed to onChange as the full next id list,
// and nothing visible changes until the caller calls Sync.
//
// A nil value is an empty set, so an owner's zero-valued field still
// yields a controlled selection. If onChange is nil the selection is
// uncontrolled and starts from value.
func NewControlledSelection(value Set, onChange func([]RowID)) *Selection {
	if onChange == nil {
		return &Selection{owner: &ownedSelection{set: value.Clone()}}
	}
	return &Selection{owner: &delegatedSelection{set: value.Clone(), onChange: onChange}}
}

// Controlled reports whether the selection is owned externally.
func (s *Selection) Controlled() bool {
	_, ok := s.owner.(*delegatedSelection)
	return ok
}

// Selected returns a copy of the visible selection.
func (s *Selection) Selected() Set {
	return s.owner.value().Clone()
}

// IsSelected reports whether id is in the visible selection.
func (s *Selection) IsSelected(id RowID) bool {
	return s.owner.value().Has(id)
}

// SetSelected replaces the selection with ids.
func (s *Selection) SetSelected(ids []RowID) {
	run(s.setSelected(ids))
}

// Toggle adds id when included is true and removes it otherwise.
func (s *Selection) Toggle(id RowID, included bool) {
	run(s.toggle(id, included))
}

// SelectAll adds the given page ids to the selection.
func (s *Selection) SelectAll(page []RowID) {
	run(s.selectAll(page))
}

// DeselectAll removes the given page ids, leaving other members in place.
func (s *Selection) DeselectAll(page []RowID) {
	run(s.deselectAll(page))
}

// Sync feeds back the externally owned value. It has no effect on an
// uncontrolled selection.
func (s *Selection) Sync(value []RowID) {
	if d, ok := s.owner.(*delegatedSelection); ok {
		d.set = NewSet(value...)
	}
}

// Flags reports whether every id and whether at least one id of page is
// selected. Both are false for an empty page.
func (s *Selection) Flags(page []RowID) (all, some bool) {
	set := s.owner.value()
	if len(page) == 0 {
		return false, false
	}
	all = true
	for _, id := range page {
		if set.Has(id) {
			some = true
		} else {
			all = false
		}
	}
	return all, some
}

func (s *Selection) setSelected(ids []RowID) func() {
	return s.owner.commit(NewSet(ids...))
}

func (s *Selection) toggle(id RowID, included bool) func() {
	cur := s.owner.value()
	if included {
		return s.owner.commit(cur.Union(id))
	}
	return s.owner.commit(cur.Difference(id))
}

func (s *Selection) selectAll(page []RowID) func() {
	return s.owner.commit(s.owner.value().Union(page...))
}

func (s *Selection) deselectAll(page []RowID) func() {
	return s.owner.commit(s.owner.value().Difference(page...))
}

func run(fns ...func()) {
	for _, fn := range fns {
		if fn != nil {
			fn()
		}
	}
}
