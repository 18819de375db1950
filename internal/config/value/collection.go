package value

import (
	"slices"
	"strings"
)

// Collection is an ordered key/value map used for custom stores.
//
// Keys iterate in ascending order so that a collection written to a
// key-sorted file format and read back compares equal to the original.
// A Collection is mutable; Values holding one keep a private copy.
type Collection struct {
	keys  []string
	items map[string]Value
}

// NewCollection creates an empty collection.
func NewCollection() *Collection {
	return &Collection{items: make(map[string]Value)}
}

// CollectionOf builds a collection from a plain map.
func CollectionOf(m map[string]Value) *Collection {
	c := NewCollection()
	for k, v := range m {
		c.Set(k, v)
	}
	return c
}

// Len returns the number of entries.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.keys)
}

// Get returns the value stored under key.
func (c *Collection) Get(key string) (Value, bool) {
	if c == nil {
		return Value{}, false
	}
	v, ok := c.items[key]
	return v, ok
}

// Set inserts or replaces key.
func (c *Collection) Set(key string, v Value) {
	if _, exists := c.items[key]; !exists {
		i, _ := slices.BinarySearch(c.keys, key)
		c.keys = slices.Insert(c.keys, i, key)
	}
	c.items[key] = v
}

// Delete removes key if present.
func (c *Collection) Delete(key string) {
	if _, exists := c.items[key]; !exists {
		return
	}
	delete(c.items, key)
	if i, found := slices.BinarySearch(c.keys, key); found {
		c.keys = slices.Delete(c.keys, i, i+1)
	}
}

// Clear removes all entries.
func (c *Collection) Clear() {
	c.keys = c.keys[:0]
	clear(c.items)
}

// Replace overwrites the contents of c with those of other.
func (c *Collection) Replace(other *Collection) {
	c.Clear()
	other.Range(func(k string, v Value) bool {
		c.Set(k, v)
		return true
	})
}

// Keys returns the keys in iteration order.
func (c *Collection) Keys() []string {
	if c == nil {
		return nil
	}
	return slices.Clone(c.keys)
}

// Range calls fn for each entry in order until fn returns false.
func (c *Collection) Range(fn func(key string, v Value) bool) {
	if c == nil {
		return
	}
	for _, k := range c.keys {
		if !fn(k, c.items[k]) {
			return
		}
	}
}

// Clone returns a deep copy.
func (c *Collection) Clone() *Collection {
	out := NewCollection()
	if c == nil {
		return out
	}
	out.keys = slices.Clone(c.keys)
	for k, v := range c.items {
		out.items[k] = v
	}
	return out
}

// Equal reports whether both collections hold the same entries.
// A nil collection equals an empty one.
func (c *Collection) Equal(o *Collection) bool {
	if c.Len() != o.Len() {
		return false
	}
	for i, k := range c.Keys() {
		if o.keys[i] != k {
			return false
		}
		if !c.items[k].Equal(o.items[k]) {
			return false
		}
	}
	return true
}

// IsFlat reports whether no entry is itself a collection.
func (c *Collection) IsFlat() bool {
	flat := true
	c.Range(func(_ string, v Value) bool {
		flat = v.Kind() != KindCollection
		return flat
	})
	return flat
}

// String formats the collection as {k=v, ...}.
func (c *Collection) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	first := true
	c.Range(func(k string, v Value) bool {
		if !first {
			sb.WriteString(", ")
		}
		first = false
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(v.String())
		return true
	})
	sb.WriteByte('}')
	return sb.String()
}
