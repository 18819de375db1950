// Package schema describes the configurable items of a filter type.
//
// A Schema is the static, per-filter-type list of item descriptors: the
// id, editing kind, default value, persistence eligibility, numeric
// precision, and whether the item takes part in the generic dispatch path.
// It is built once when a filter is constructed and is read-only afterward.
package schema

import (
	"fmt"

	"github.com/dshills/darkroom/internal/config/value"
)

// Schema is an ordered, immutable list of items with unique ids.
type Schema struct {
	name  string
	items []Item
	index map[string]int
}

// New validates items and builds a schema. name identifies the owning
// filter type in error messages.
func New(name string, items ...Item) (*Schema, error) {
	s := &Schema{
		name:  name,
		items: make([]Item, 0, len(items)),
		index: make(map[string]int, len(items)),
	}

	for _, it := range items {
		if err := s.validate(it); err != nil {
			return nil, err
		}
		s.index[it.ID] = len(s.items)
		s.items = append(s.items, it)
	}

	return s, nil
}

// MustNew is like New but panics on error.
// Useful for filter types whose items are fixed at compile time.
func MustNew(name string, items ...Item) *Schema {
	s, err := New(name, items...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema) validate(it Item) error {
	fail := func(format string, args ...any) error {
		return &SchemaError{Schema: s.name, ID: it.ID, Message: fmt.Sprintf(format, args...)}
	}

	if it.ID == "" {
		return fail("empty id")
	}
	if _, dup := s.index[it.ID]; dup {
		return fail("duplicate id")
	}
	if it.Kind > KindCollection {
		return fail("unknown kind %d", it.Kind)
	}
	if it.Kind == KindNumeric && it.Decimals < 0 {
		return fail("negative decimals %d", it.Decimals)
	}
	if want := it.ValueKind(); it.Default.Kind() != want {
		return fail("default %q is %s, kind %s stores %s", it.Default, it.Default.Kind(), it.Kind, want)
	}
	if it.Kind == KindCombo && len(it.Choices) > 0 {
		idx, _ := it.Default.AsInt()
		if idx < 0 || int(idx) >= len(it.Choices) {
			return fail("default index %d outside %d choices", idx, len(it.Choices))
		}
	}
	return nil
}

// Name returns the filter type name the schema was built for.
func (s *Schema) Name() string {
	return s.name
}

// Len returns the number of items.
func (s *Schema) Len() int {
	return len(s.items)
}

// Items returns the items in definition order.
func (s *Schema) Items() []Item {
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Lookup returns the item with the given id.
func (s *Schema) Lookup(id string) (Item, bool) {
	i, ok := s.index[id]
	if !ok {
		return Item{}, false
	}
	return s.items[i], true
}

// Has reports whether id is defined.
func (s *Schema) Has(id string) bool {
	_, ok := s.index[id]
	return ok
}

// Defaults returns the default values of all default-store items.
func (s *Schema) Defaults() map[string]value.Value {
	out := make(map[string]value.Value, len(s.items))
	for _, it := range s.items {
		if !it.Kind.IsCustom() {
			out[it.ID] = it.Default
		}
	}
	return out
}

// CustomItems returns the items backed by custom stores.
func (s *Schema) CustomItems() []Item {
	var out []Item
	for _, it := range s.items {
		if it.Kind.IsCustom() {
			out = append(out, it)
		}
	}
	return out
}
