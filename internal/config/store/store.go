// Package store holds the typed settings of one filter.
//
// A Store has two parts: the default store, a flat id -> value map seeded
// from the schema defaults, and zero or more named custom stores holding
// structured sub-data such as curve anchors. A Store is owned by exactly
// one filter and is only touched from the application's main control flow,
// so it carries no locking.
package store

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/dshills/darkroom/internal/config/schema"
	"github.com/dshills/darkroom/internal/config/value"
)

// Store is the configuration of one filter.
type Store struct {
	values      map[string]value.Value
	initialized bool

	stores     map[string]*value.Collection
	storeOrder []string
}

// New creates an empty, uninitialized store.
func New() *Store {
	return &Store{
		values: make(map[string]value.Value),
		stores: make(map[string]*value.Collection),
	}
}

// Init replaces all default-store entries with defaults.
// It fails with a schema error if called twice without an intervening Clear.
func (s *Store) Init(defaults map[string]value.Value) error {
	if s.initialized {
		return &schema.SchemaError{Message: "config store initialized twice"}
	}
	clear(s.values)
	for id, v := range defaults {
		s.values[id] = v
	}
	s.initialized = true
	return nil
}

// Initialized reports whether Init has run since the last Clear.
func (s *Store) Initialized() bool {
	return s.initialized
}

// Clear drops every default-store entry and all custom stores.
func (s *Store) Clear() {
	clear(s.values)
	s.ClearCustomStores()
	s.initialized = false
}

// Value returns the value of id.
func (s *Store) Value(id string) (value.Value, error) {
	v, ok := s.values[id]
	if !ok {
		return value.Value{}, &UnknownKeyError{Key: id}
	}
	return v, nil
}

// Has reports whether id is in the default store.
func (s *Store) Has(id string) bool {
	_, ok := s.values[id]
	return ok
}

// SetValue stores v under id. The tag of v must match the slot's current
// tag. It reports whether the stored value changed; setting an equal value
// is a no-op.
func (s *Store) SetValue(id string, v value.Value) (bool, error) {
	cur, ok := s.values[id]
	if !ok {
		return false, &UnknownKeyError{Key: id}
	}
	if cur.Kind() != v.Kind() {
		return false, &schema.TypeMismatchError{
			Key:      id,
			Expected: cur.Kind(),
			Actual:   v.Kind(),
			Value:    v.String(),
		}
	}
	if cur.Equal(v) {
		return false, nil
	}
	s.values[id] = v
	return true, nil
}

// Update applies each entry with SetValue semantics. Entries not present
// in partial are left unchanged. Failing entries do not stop the others;
// their errors are joined. It returns the ids whose value changed, sorted.
// Update never notifies anyone; that is the owning filter's job.
func (s *Store) Update(partial map[string]value.Value) ([]string, error) {
	var (
		changed []string
		errs    []error
	)
	for id, v := range partial {
		ok, err := s.SetValue(id, v)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			changed = append(changed, id)
		}
	}
	sort.Strings(changed)
	return changed, errors.Join(errs...)
}

// IDs returns the default-store ids, sorted.
func (s *Store) IDs() []string {
	ids := make([]string, 0, len(s.values))
	for id := range s.values {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Values returns a copy of the default store.
func (s *Store) Values() map[string]value.Value {
	out := make(map[string]value.Value, len(s.values))
	for id, v := range s.values {
		out[id] = v
	}
	return out
}

// NewStore creates (or replaces) the custom store name with a copy of
// initial and returns it.
func (s *Store) NewStore(name string, initial *value.Collection) *value.Collection {
	c := initial.Clone()
	if _, exists := s.stores[name]; !exists {
		s.storeOrder = append(s.storeOrder, name)
	}
	s.stores[name] = c
	return c
}

// Store returns the custom store name. The returned collection is the live
// store; callers may mutate it in place.
func (s *Store) Store(name string) (*value.Collection, bool) {
	c, ok := s.stores[name]
	return c, ok
}

// SetStore overwrites the contents of custom store name, creating it when
// missing.
func (s *Store) SetStore(name string, contents *value.Collection) *value.Collection {
	c, ok := s.stores[name]
	if !ok {
		return s.NewStore(name, contents)
	}
	c.Replace(contents)
	return c
}

// StoreIDs returns the custom store names in creation order.
func (s *Store) StoreIDs() []string {
	return slices.Clone(s.storeOrder)
}

// ClearCustomStores removes every custom store.
func (s *Store) ClearCustomStores() {
	clear(s.stores)
	s.storeOrder = s.storeOrder[:0]
}

// String summarizes the store for debug logs.
func (s *Store) String() string {
	return fmt.Sprintf("store{%d values, %d custom stores}", len(s.values), len(s.stores))
}
