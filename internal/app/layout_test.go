package app

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/darkroom/internal/config/loader"
)

func TestParseLayout(t *testing.T) {
	doc := map[string]any{
		"tabs": []any{
			map[string]any{
				"name": "Basic",
				"filters": []any{
					map[string]any{"type": "Exposure"},
					map[string]any{"type": "Exposure", "suffix": "(fill)"},
				},
			},
			map[string]any{
				"filters": []any{
					map[string]any{"type": "Resize", "name": "Web"},
				},
			},
		},
	}

	got, err := ParseLayout(doc)
	if err != nil {
		t.Fatalf("ParseLayout failed: %v", err)
	}
	want := &Layout{Tabs: []Tab{
		{Name: "Basic", Filters: []Instance{
			{Type: "Exposure", Name: "Exposure1"},
			{Type: "Exposure", Name: "Exposure2", Suffix: "(fill)"},
		}},
		{Filters: []Instance{{Type: "Resize", Name: "Web"}}},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("layout mismatch (-want +got):\n%s", diff)
	}
}

func TestParseLayout_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  map[string]any
		want error
	}{
		{"no tabs", map[string]any{}, ErrNoLayout},
		{"empty tabs", map[string]any{"tabs": []any{map[string]any{"name": "A"}}}, ErrNoLayout},
		{"duplicate", map[string]any{"tabs": []any{map[string]any{"filters": []any{
			map[string]any{"type": "Exposure", "name": "X"},
			map[string]any{"type": "Resize", "name": "X"},
		}}}}, ErrDuplicateFilter},
		{"derived clash", map[string]any{"tabs": []any{map[string]any{"filters": []any{
			map[string]any{"type": "Exposure", "name": "Exposure2"},
			map[string]any{"type": "Exposure"},
			map[string]any{"type": "Exposure"},
		}}}}, ErrDuplicateFilter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseLayout(tt.doc); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}

	_, err := ParseLayout(map[string]any{"tabs": []any{map[string]any{"filters": []any{
		map[string]any{"name": "NoType"},
	}}}})
	var le *LayoutError
	if !errors.As(err, &le) || le.Entry != 0 {
		t.Errorf("missing type error = %v, want LayoutError", err)
	}
}

func TestLoadLayout_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.toml")
	writeFile(t, path, `
[[tabs]]
name = "Basic"

[[tabs.filters]]
type = "ToneCurve"

[[tabs.filters]]
type = "ColorBoost"
name = "Boost"
`)
	l, err := LoadLayout(loader.DefaultFS(), path)
	if err != nil {
		t.Fatalf("LoadLayout failed: %v", err)
	}
	want := []Instance{
		{Type: "ToneCurve", Name: "ToneCurve1"},
		{Type: "ColorBoost", Name: "Boost"},
	}
	if diff := cmp.Diff(want, l.Tabs[0].Filters); diff != "" {
		t.Errorf("filters mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadLayout_Missing(t *testing.T) {
	_, err := LoadLayout(loader.DefaultFS(), filepath.Join(t.TempDir(), "none.yaml"))
	if !errors.Is(err, ErrNoLayout) {
		t.Errorf("error = %v, want ErrNoLayout", err)
	}
}
