package settings

import (
	"fmt"

	"github.com/dshills/darkroom/internal/config/loader"
)

// LoadFile reads a settings document (TOML or YAML by extension).
// A missing file yields an empty tree.
func LoadFile(fsys loader.FileSystem, path string) (*Tree, error) {
	doc, err := loader.Load(fsys, path)
	if err != nil {
		return nil, err
	}
	t, err := FromMap(doc)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return t, nil
}

// SaveFile writes the whole tree to path.
func SaveFile(fsys loader.FileSystem, path string, t *Tree) error {
	return loader.Save(fsys, path, t.ToMap())
}
