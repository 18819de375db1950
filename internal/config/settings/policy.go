package settings

import (
	"slices"

	"github.com/dshills/darkroom/internal/config/value"
)

// Policy list keys at the root of the settings tree.
const (
	KeyHiddenTools    = "HiddenTools"
	KeyFavouriteTools = "FavouriteTools"
)

// Policy gives access to the user-wide tool lists stored in a settings
// tree. A tool is hidden or a favourite when its unique name appears in
// the corresponding list.
type Policy struct {
	tree     *Tree
	onChange func(key string)
}

// NewPolicy wraps t. A nil tree starts empty.
func NewPolicy(t *Tree) *Policy {
	if t == nil {
		t = NewTree()
	}
	return &Policy{tree: t}
}

// Tree returns the backing tree.
func (p *Policy) Tree() *Tree {
	return p.tree
}

// SetTree swaps the backing tree, e.g. after the settings file was
// reloaded from disk.
func (p *Policy) SetTree(t *Tree) {
	if t == nil {
		t = NewTree()
	}
	p.tree = t
}

// OnChange registers fn to be called after a list was modified.
func (p *Policy) OnChange(fn func(key string)) {
	p.onChange = fn
}

// List returns a copy of the list stored at key.
func (p *Policy) List(key string) []string {
	v, ok := p.tree.Value(key)
	if !ok {
		return nil
	}
	list, ok := v.AsStringList()
	if !ok {
		// A single string is accepted as a one-element list
		if s, isStr := v.AsString(); isStr && s != "" {
			return []string{s}
		}
		return nil
	}
	return list
}

// Contains reports whether name is in the list at key.
func (p *Policy) Contains(key, name string) bool {
	return slices.Contains(p.List(key), name)
}

// Add appends name to the list at key. It reports whether the list changed.
func (p *Policy) Add(key, name string) bool {
	list := p.List(key)
	if slices.Contains(list, name) {
		return false
	}
	p.set(key, append(list, name))
	return true
}

// Remove drops every occurrence of name from the list at key.
func (p *Policy) Remove(key, name string) bool {
	list := p.List(key)
	pruned := slices.DeleteFunc(slices.Clone(list), func(s string) bool { return s == name })
	if len(pruned) == len(list) {
		return false
	}
	p.set(key, pruned)
	return true
}

func (p *Policy) set(key string, list []string) {
	p.tree.SetValue(key, value.StringList(list))
	if p.onChange != nil {
		p.onChange(key)
	}
}

// IsHidden reports whether the tool is in HiddenTools.
func (p *Policy) IsHidden(name string) bool {
	return p.Contains(KeyHiddenTools, name)
}

// SetHidden adds or removes the tool from HiddenTools.
func (p *Policy) SetHidden(name string, hidden bool) bool {
	if hidden {
		return p.Add(KeyHiddenTools, name)
	}
	return p.Remove(KeyHiddenTools, name)
}

// IsFavourite reports whether the tool is in FavouriteTools.
func (p *Policy) IsFavourite(name string) bool {
	return p.Contains(KeyFavouriteTools, name)
}

// SetFavourite adds or removes the tool from FavouriteTools.
func (p *Policy) SetFavourite(name string, favourite bool) bool {
	if favourite {
		return p.Add(KeyFavouriteTools, name)
	}
	return p.Remove(KeyFavouriteTools, name)
}
