package filter

import "strings"

// Capabilities is the set of toggles a filter type supports.
type Capabilities uint8

const (
	Blockable Capabilities = 1 << iota
	Hideable
	Favouriteable
	HasDefault
	Saveable

	AllCapabilities = Blockable | Hideable | Favouriteable | HasDefault | Saveable
)

// Has reports whether every flag in want is set.
func (c Capabilities) Has(want Capabilities) bool {
	return c&want == want
}

// Without returns c with flags cleared.
func (c Capabilities) Without(flags Capabilities) Capabilities {
	return c &^ flags
}

// String lists the set flags.
func (c Capabilities) String() string {
	names := []struct {
		flag Capabilities
		name string
	}{
		{Blockable, "blockable"},
		{Hideable, "hideable"},
		{Favouriteable, "favouriteable"},
		{HasDefault, "hasDefault"},
		{Saveable, "saveable"},
	}
	var parts []string
	for _, n := range names {
		if c.Has(n.flag) {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}
