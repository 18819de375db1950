package app

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/dshills/darkroom/internal/config/loader"
)

// Layout is the pipeline description read from the layout file:
//
//	tabs:
//	  - name: Basic
//	    filters:
//	      - type: Exposure
//	        name: Exposure1
//	      - type: ToneCurve
//	        suffix: (luma)
//
// A tab's index and a filter's index within its tab are the filter's
// pipeline position. A missing name is derived from the type.
type Layout struct {
	Tabs []Tab
}

// Tab groups filters for display and ordering.
type Tab struct {
	Name    string
	Filters []Instance
}

// Instance names one filter.
type Instance struct {
	Type   string
	Name   string
	Suffix string
}

// LoadLayout reads and validates a layout file.
func LoadLayout(fsys loader.FileSystem, path string) (*Layout, error) {
	doc, err := loader.Load(fsys, path)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrNoLayout)
	}
	l, err := ParseLayout(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return l, nil
}

// ParseLayout builds a layout from a decoded document, derives missing
// names and rejects duplicates.
func ParseLayout(doc map[string]any) (*Layout, error) {
	rawTabs, ok := doc["tabs"].([]any)
	if !ok || len(rawTabs) == 0 {
		return nil, ErrNoLayout
	}

	l := &Layout{}
	counts := make(map[string]int)
	seen := make(map[string]bool)
	total := 0

	for ti, rawTab := range rawTabs {
		tm, ok := rawTab.(map[string]any)
		if !ok {
			return nil, &LayoutError{Tab: ti, Entry: -1, Err: errors.New("tab is not a table")}
		}
		tab := Tab{Name: str(tm["name"])}
		entries, _ := tm["filters"].([]any)

		for ei, rawEntry := range entries {
			em, ok := rawEntry.(map[string]any)
			if !ok {
				return nil, &LayoutError{Tab: ti, Entry: ei, Err: errors.New("entry is not a table")}
			}
			inst := Instance{
				Type:   str(em["type"]),
				Name:   str(em["name"]),
				Suffix: str(em["suffix"]),
			}
			if inst.Type == "" {
				return nil, &LayoutError{Tab: ti, Entry: ei, Err: errors.New("missing type")}
			}
			counts[inst.Type]++
			if inst.Name == "" {
				inst.Name = inst.Type + strconv.Itoa(counts[inst.Type])
			}
			if seen[inst.Name] {
				return nil, &LayoutError{Tab: ti, Entry: ei, Err: fmt.Errorf("%w: %s", ErrDuplicateFilter, inst.Name)}
			}
			seen[inst.Name] = true
			tab.Filters = append(tab.Filters, inst)
			total++
		}
		l.Tabs = append(l.Tabs, tab)
	}

	if total == 0 {
		return nil, ErrNoLayout
	}
	return l, nil
}

func str(raw any) string {
	if raw == nil {
		return ""
	}
	if s, ok := raw.(string); ok {
		return s
	}
	return fmt.Sprint(raw)
}
