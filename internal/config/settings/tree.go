// Package settings implements the hierarchical key/value persistence target
// used for presets and the global policy lists.
//
// A Tree mirrors the scoping contract of the preset format: BeginGroup
// pushes a scope, EndGroup pops it, and keys are resolved relative to the
// current scope. Keys and group prefixes may contain "/" to address nested
// groups directly. Trees are loaded from and saved to TOML or YAML files.
package settings

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dshills/darkroom/internal/config/value"
)

const separator = "/"

type node struct {
	values map[string]value.Value
	groups map[string]*node
}

func newNode() *node {
	return &node{
		values: make(map[string]value.Value),
		groups: make(map[string]*node),
	}
}

func (n *node) empty() bool {
	return len(n.values) == 0 && len(n.groups) == 0
}

// Tree is an in-memory hierarchical settings document.
type Tree struct {
	root  *node
	scope []string
	// depth of each BeginGroup call, so EndGroup pops a whole prefix
	pushed []int
}

// NewTree creates an empty tree.
func NewTree() *Tree {
	return &Tree{root: newNode()}
}

// BeginGroup enters the group prefix relative to the current scope.
func (t *Tree) BeginGroup(prefix string) {
	parts := splitKey(prefix)
	t.scope = append(t.scope, parts...)
	t.pushed = append(t.pushed, len(parts))
}

// EndGroup leaves the group entered by the matching BeginGroup.
// Calling it at the root is a no-op.
func (t *Tree) EndGroup() {
	if len(t.pushed) == 0 {
		return
	}
	n := t.pushed[len(t.pushed)-1]
	t.pushed = t.pushed[:len(t.pushed)-1]
	t.scope = t.scope[:len(t.scope)-n]
}

// Group returns the current scope as a "/" separated path.
func (t *Tree) Group() string {
	return strings.Join(t.scope, separator)
}

// Value returns the value at key. A key naming a group reports false.
func (t *Tree) Value(key string) (value.Value, bool) {
	dir, leaf := t.resolve(key)
	n := t.lookup(dir)
	if n == nil {
		return value.Value{}, false
	}
	v, ok := n.values[leaf]
	return v, ok
}

// Collection returns the group at key as a flat collection of its values.
// Nested groups are ignored; custom stores never hold them.
func (t *Tree) Collection(key string) (*value.Collection, bool) {
	dir, leaf := t.resolve(key)
	n := t.lookup(dir)
	if n == nil {
		return nil, false
	}
	g, ok := n.groups[leaf]
	if !ok {
		return nil, false
	}
	c := value.NewCollection()
	for k, v := range g.values {
		c.Set(k, v)
	}
	return c, true
}

// Contains reports whether key names a value or a group.
func (t *Tree) Contains(key string) bool {
	dir, leaf := t.resolve(key)
	n := t.lookup(dir)
	if n == nil {
		return false
	}
	if _, ok := n.values[leaf]; ok {
		return true
	}
	_, ok := n.groups[leaf]
	return ok
}

// SetValue stores v at key, creating groups as needed. A collection value
// is written as a group holding one key per entry, which is how it reads
// back from a file.
func (t *Tree) SetValue(key string, v value.Value) {
	dir, leaf := t.resolve(key)
	if leaf == "" {
		return
	}
	n := t.ensure(dir)

	if c, ok := v.AsCollection(); ok {
		delete(n.values, leaf)
		g := newNode()
		n.groups[leaf] = g
		c.Range(func(k string, item value.Value) bool {
			g.values[k] = item
			return true
		})
		return
	}

	delete(n.groups, leaf)
	n.values[leaf] = v
}

// Remove deletes the value or group at key. An empty key clears the
// current group.
func (t *Tree) Remove(key string) {
	if key == "" {
		if n := t.lookup(t.scope); n != nil {
			clear(n.values)
			clear(n.groups)
		}
		return
	}
	dir, leaf := t.resolve(key)
	if n := t.lookup(dir); n != nil {
		delete(n.values, leaf)
		delete(n.groups, leaf)
	}
}

// ChildKeys returns the value keys of the current group, sorted.
func (t *Tree) ChildKeys() []string {
	n := t.lookup(t.scope)
	if n == nil {
		return nil
	}
	return sortedKeys(n.values)
}

// ChildGroups returns the subgroup names of the current group, sorted.
func (t *Tree) ChildGroups() []string {
	n := t.lookup(t.scope)
	if n == nil {
		return nil
	}
	return sortedKeys(n.groups)
}

// AllKeys returns every value key below the current group, including
// those of nested groups as "group/key", sorted.
func (t *Tree) AllKeys() []string {
	n := t.lookup(t.scope)
	if n == nil {
		return nil
	}
	var keys []string
	collectKeys(n, "", &keys)
	sort.Strings(keys)
	return keys
}

// ToMap exports the whole tree (ignoring the current scope) as nested
// maps suitable for the loader codecs.
func (t *Tree) ToMap() map[string]any {
	return nodeToMap(t.root)
}

// FromMap builds a tree from a decoded document. Nested maps become
// groups; every other value must be convertible with value.FromAny.
func FromMap(doc map[string]any) (*Tree, error) {
	t := NewTree()
	if err := fillNode(t.root, doc, ""); err != nil {
		return nil, err
	}
	return t, nil
}

// resolve splits key into the absolute group path and the leaf name.
func (t *Tree) resolve(key string) ([]string, string) {
	parts := splitKey(key)
	if len(parts) == 0 {
		return t.scope, ""
	}
	dir := make([]string, 0, len(t.scope)+len(parts)-1)
	dir = append(dir, t.scope...)
	dir = append(dir, parts[:len(parts)-1]...)
	return dir, parts[len(parts)-1]
}

func (t *Tree) lookup(path []string) *node {
	n := t.root
	for _, p := range path {
		next, ok := n.groups[p]
		if !ok {
			return nil
		}
		n = next
	}
	return n
}

func (t *Tree) ensure(path []string) *node {
	n := t.root
	for _, p := range path {
		next, ok := n.groups[p]
		if !ok {
			next = newNode()
			n.groups[p] = next
			delete(n.values, p)
		}
		n = next
	}
	return n
}

func splitKey(key string) []string {
	var parts []string
	for _, p := range strings.Split(key, separator) {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func collectKeys(n *node, prefix string, out *[]string) {
	for k := range n.values {
		*out = append(*out, prefix+k)
	}
	for name, g := range n.groups {
		collectKeys(g, prefix+name+separator, out)
	}
}

func nodeToMap(n *node) map[string]any {
	m := make(map[string]any, len(n.values)+len(n.groups))
	for k, v := range n.values {
		m[k] = v.ToAny()
	}
	for name, g := range n.groups {
		if g.empty() {
			continue
		}
		m[name] = nodeToMap(g)
	}
	return m
}

func fillNode(n *node, doc map[string]any, path string) error {
	for k, raw := range doc {
		if sub, ok := raw.(map[string]any); ok {
			g := newNode()
			n.groups[k] = g
			if err := fillNode(g, sub, path+k+separator); err != nil {
				return err
			}
			continue
		}
		v, err := value.FromAny(raw)
		if err != nil {
			return fmt.Errorf("settings key %s%s: %w", path, k, err)
		}
		n.values[k] = v
	}
	return nil
}
