// Package actives keeps the ordered list of filters that currently take
// part in the pipeline.
package actives

import (
	"cmp"
	"slices"
)

// Member is a filter as seen by the registry.
type Member interface {
	UniqueName() string
	IsActive() bool
	Pos() (tab, slot int)
}

// Registry is the process-wide active filter list, ordered by
// (tab, slot). It holds non-owning references and never changes a
// member's state. It is not safe for concurrent use.
type Registry struct {
	members  []Member
	onChange func(active []Member)
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{}
}

// OnChange registers fn to be called whenever membership or ordering
// changes.
func (r *Registry) OnChange(fn func(active []Member)) {
	r.onChange = fn
}

// UpdateActivesList inserts m when it is active and removes it when it is
// not. Calling it redundantly is harmless.
func (r *Registry) UpdateActivesList(m Member) {
	idx := r.index(m)
	switch {
	case m.IsActive() && idx < 0:
		r.members = append(r.members, m)
		r.sort()
		r.changed()
	case !m.IsActive() && idx >= 0:
		r.members = slices.Delete(r.members, idx, idx+1)
		r.changed()
	}
}

// UpdatePositions re-sorts the list after m moved to a new tab or slot.
func (r *Registry) UpdatePositions(m Member) {
	if r.index(m) < 0 {
		return
	}
	before := slices.Clone(r.members)
	r.sort()
	if !slices.Equal(before, r.members) {
		r.changed()
	}
}

// Remove drops m regardless of its state.
func (r *Registry) Remove(m Member) {
	if idx := r.index(m); idx >= 0 {
		r.members = slices.Delete(r.members, idx, idx+1)
		r.changed()
	}
}

// Contains reports whether m is in the active list.
func (r *Registry) Contains(m Member) bool {
	return r.index(m) >= 0
}

// Find returns the active member with the given unique name.
func (r *Registry) Find(name string) (Member, bool) {
	for _, m := range r.members {
		if m.UniqueName() == name {
			return m, true
		}
	}
	return nil, false
}

// Actives returns a copy of the ordered active list.
func (r *Registry) Actives() []Member {
	return slices.Clone(r.members)
}

// Names returns the unique names of the active list, in order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.members))
	for i, m := range r.members {
		names[i] = m.UniqueName()
	}
	return names
}

// Len returns the number of active members.
func (r *Registry) Len() int {
	return len(r.members)
}

func (r *Registry) index(m Member) int {
	return slices.IndexFunc(r.members, func(x Member) bool { return x == m })
}

func (r *Registry) sort() {
	slices.SortStableFunc(r.members, compare)
}

func (r *Registry) changed() {
	if r.onChange != nil {
		r.onChange(r.Actives())
	}
}

func compare(a, b Member) int {
	at, as := a.Pos()
	bt, bs := b.Pos()
	if c := cmp.Compare(at, bt); c != 0 {
		return c
	}
	if c := cmp.Compare(as, bs); c != 0 {
		return c
	}
	return cmp.Compare(a.UniqueName(), b.UniqueName())
}
