package schema

import (
	"errors"
	"testing"

	"github.com/dshills/darkroom/internal/config/value"
)

func TestNew_Valid(t *testing.T) {
	s, err := New("exposure",
		Numeric("amount", 0, 2),
		Check("clip", true),
		Combo("mode", 1, "linear", "filmic"),
		Collection("curve", value.NewCollection()),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if s.Name() != "exposure" {
		t.Errorf("Name = %q, want exposure", s.Name())
	}
	if s.Len() != 4 {
		t.Errorf("Len = %d, want 4", s.Len())
	}

	it, ok := s.Lookup("amount")
	if !ok {
		t.Fatal("expected to find amount")
	}
	if it.ValueKind() != value.KindDouble {
		t.Errorf("amount ValueKind = %s, want double", it.ValueKind())
	}

	if s.Has("missing") {
		t.Error("Has(missing) = true")
	}

	defaults := s.Defaults()
	if len(defaults) != 3 {
		t.Errorf("Defaults has %d entries, want 3 (collection excluded)", len(defaults))
	}
	if got := s.CustomItems(); len(got) != 1 || got[0].ID != "curve" {
		t.Errorf("CustomItems = %v, want [curve]", got)
	}
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name  string
		items []Item
	}{
		{"empty id", []Item{Check("", false)}},
		{"duplicate id", []Item{Check("a", false), Numeric("a", 1, 0)}},
		{"negative decimals", []Item{Numeric("a", 1, -1)}},
		{"fractional default for int", []Item{Numeric("a", 1.5, 0)}},
		{"wrong default tag", []Item{{ID: "a", Kind: KindCheck, Default: value.Int(1)}}},
		{"unknown kind", []Item{{ID: "a", Kind: Kind(42), Default: value.Int(1)}}},
		{"combo default out of range", []Item{Combo("a", 3, "x", "y")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("test", tt.items...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrSchema) {
				t.Errorf("error %v does not match ErrSchema", err)
			}
			var se *SchemaError
			if !errors.As(err, &se) {
				t.Fatalf("error %T is not *SchemaError", err)
			}
			if se.Schema != "test" {
				t.Errorf("Schema = %q, want test", se.Schema)
			}
		})
	}
}

func TestMustNew_Panics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for duplicate ids")
		}
	}()
	MustNew("test", Check("a", false), Check("a", true))
}

func TestItem_ValueKind(t *testing.T) {
	tests := []struct {
		item Item
		want value.Kind
	}{
		{Check("c", false), value.KindBool},
		{Combo("m", 0), value.KindInt},
		{Numeric("n", 3, 0), value.KindInt},
		{Numeric("n", 0.5, 2), value.KindDouble},
		{Text("t", ""), value.KindString},
		{Collection("s", nil), value.KindCollection},
	}

	for _, tt := range tests {
		if got := tt.item.ValueKind(); got != tt.want {
			t.Errorf("%s(%s).ValueKind() = %s, want %s", tt.item.Kind, tt.item.ID, got, tt.want)
		}
	}
}

func TestItem_Coerce(t *testing.T) {
	tests := []struct {
		name    string
		item    Item
		raw     value.Value
		want    value.Value
		wantErr bool
	}{
		{"exported bool as int", Check("c", false), value.Int(1), value.Bool(true), false},
		{"int into double item", Numeric("n", 0, 2), value.Int(2), value.Double(2), false},
		{"string into double item", Numeric("n", 0, 2), value.String("1.5"), value.Double(1.5), false},
		{"fraction into int item", Numeric("n", 0, 0), value.Double(1.5), value.Value{}, true},
		{"garbage into combo", Combo("m", 0), value.String("filmic"), value.Value{}, true},
		{"invalid raw", Check("c", false), value.Value{}, value.Value{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.item.Coerce(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Coerce error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var tm *TypeMismatchError
				if !errors.As(err, &tm) {
					t.Fatalf("error %T is not *TypeMismatchError", err)
				}
				if tm.Key != tt.item.ID {
					t.Errorf("Key = %q, want %q", tm.Key, tt.item.ID)
				}
				if !errors.Is(err, ErrTypeMismatch) {
					t.Error("error does not match ErrTypeMismatch")
				}
				return
			}
			if !got.Equal(tt.want) {
				t.Errorf("Coerce = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestItem_Modifiers(t *testing.T) {
	base := Numeric("n", 1, 0)
	it := base.NotStoreable().WithoutCommonDispatch().WithCaption("Size")

	if it.Storeable || it.UseCommonDispatch {
		t.Error("modifiers did not clear flags")
	}
	if it.Caption != "Size" {
		t.Errorf("Caption = %q, want Size", it.Caption)
	}
	if !base.Storeable || !base.UseCommonDispatch {
		t.Error("modifiers mutated the original item")
	}
}
