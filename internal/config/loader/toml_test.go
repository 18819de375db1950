package loader

import (
	"errors"
	"io/fs"
	"path/filepath"
	"testing"
)

// MemFS is an in-memory file system for testing.
type MemFS struct {
	files map[string][]byte
}

func NewMemFS() *MemFS {
	return &MemFS{files: make(map[string][]byte)}
}

func (m *MemFS) AddFile(path string, content string) {
	m.files[path] = []byte(content)
}

func (m *MemFS) ReadFile(path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return data, nil
}

func (m *MemFS) WriteFile(path string, data []byte) error {
	m.files[path] = append([]byte(nil), data...)
	return nil
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"preset.toml", FormatTOML, false},
		{"preset.TOML", FormatTOML, false},
		{"layout.yaml", FormatYAML, false},
		{"layout.yml", FormatYAML, false},
		{"preset.ini", 0, true},
	}

	for _, tt := range tests {
		got, err := FormatFromPath(tt.path)
		if (err != nil) != tt.wantErr {
			t.Errorf("FormatFromPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			continue
		}
		if err != nil {
			if !errors.Is(err, ErrUnknownFormat) {
				t.Errorf("error %v does not match ErrUnknownFormat", err)
			}
			continue
		}
		if got != tt.want {
			t.Errorf("FormatFromPath(%q) = %s, want %s", tt.path, got, tt.want)
		}
	}
}

func TestTOML_Load(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/preset.toml", `
[exposure.Exposure]
amount = 1.5
clip = 1
CustomStores = ["curve"]

[exposure.Exposure.curve]
x_00 = 0.0
`)

	doc, err := Load(memfs, "/preset.toml")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	group, ok := doc["exposure"].(map[string]any)["Exposure"].(map[string]any)
	if !ok {
		t.Fatalf("expected nested tables, got %#v", doc)
	}
	if group["amount"] != 1.5 {
		t.Errorf("amount = %v, want 1.5", group["amount"])
	}
	if group["clip"] != int64(1) {
		t.Errorf("clip = %#v, want int64(1)", group["clip"])
	}
	if _, ok := group["curve"].(map[string]any); !ok {
		t.Errorf("curve = %#v, want table", group["curve"])
	}
}

func TestTOML_LoadMissing(t *testing.T) {
	doc, err := Load(NewMemFS(), "/nope.toml")
	if err != nil || doc != nil {
		t.Errorf("Load(missing) = %v, %v; want nil, nil", doc, err)
	}
}

func TestTOML_ParseError(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/bad.toml", "[broken\nkey = ")

	_, err := Load(memfs, "/bad.toml")
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *ParseError", err)
	}
	if perr.Path != "/bad.toml" {
		t.Errorf("Path = %q, want /bad.toml", perr.Path)
	}
	if perr.Unwrap() == nil {
		t.Error("ParseError should wrap the decoder error")
	}
}

func TestTOML_SaveRoundTrip(t *testing.T) {
	memfs := NewMemFS()
	doc := map[string]any{
		"HiddenTools": []string{"Resize"},
		"exposure": map[string]any{
			"Exposure": map[string]any{"amount": 0.5},
		},
	}

	if err := Save(memfs, "/out.toml", doc); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	back, err := Load(memfs, "/out.toml")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	list, ok := back["HiddenTools"].([]any)
	if !ok || len(list) != 1 || list[0] != "Resize" {
		t.Errorf("HiddenTools = %#v", back["HiddenTools"])
	}
}

func TestOSFS_WriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.toml")

	if err := Save(DefaultFS(), path, map[string]any{"a": int64(1)}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	doc, err := Load(DefaultFS(), path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if doc["a"] != int64(1) {
		t.Errorf("a = %#v, want int64(1)", doc["a"])
	}
}

func TestParseError_Error(t *testing.T) {
	tests := []struct {
		err  *ParseError
		want string
	}{
		{&ParseError{Path: "a.toml", Line: 2, Column: 3, Message: "x"}, "parse error in a.toml at line 2, column 3: x"},
		{&ParseError{Path: "a.toml", Line: 2, Message: "x"}, "parse error in a.toml at line 2: x"},
		{&ParseError{Path: "a.toml", Message: "x"}, "parse error in a.toml: x"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}
