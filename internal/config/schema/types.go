package schema

import (
	"github.com/dshills/darkroom/internal/config/value"
)

// Kind identifies how an item is edited and which value type it stores.
type Kind uint8

const (
	// KindCheck is an on/off item stored as a bool.
	KindCheck Kind = iota
	// KindCombo selects one entry of a list, stored as its int index.
	KindCombo
	// KindNumeric is a spin box or slider. Decimals == 0 stores an int,
	// Decimals > 0 stores a double.
	KindNumeric
	// KindText is a free-form string.
	KindText
	// KindCollection routes the item to a named custom store.
	KindCollection
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindCheck:
		return "check"
	case KindCombo:
		return "combo"
	case KindNumeric:
		return "numeric"
	case KindText:
		return "text"
	case KindCollection:
		return "collection"
	default:
		return "unknown"
	}
}

// IsCustom reports whether items of this kind live in a custom store
// rather than the default store.
func (k Kind) IsCustom() bool {
	return k == KindCollection
}

// Item describes one configurable item of a filter.
type Item struct {
	// ID is unique within one filter's schema.
	ID string

	// Kind is the editing kind.
	Kind Kind

	// Default is the initial value. Its tag must match ValueKind().
	Default value.Value

	// Decimals is the numeric precision for KindNumeric.
	Decimals int

	// Storeable marks items written to presets.
	Storeable bool

	// UseCommonDispatch connects the item's control to Filter.Dispatch.
	UseCommonDispatch bool

	// Caption is the label shown next to the control.
	Caption string

	// Choices lists combo entries; the stored value is the index.
	Choices []string
}

// ValueKind returns the value tag this item stores.
func (it Item) ValueKind() value.Kind {
	switch it.Kind {
	case KindCheck:
		return value.KindBool
	case KindCombo:
		return value.KindInt
	case KindNumeric:
		if it.Decimals > 0 {
			return value.KindDouble
		}
		return value.KindInt
	case KindText:
		return value.KindString
	case KindCollection:
		return value.KindCollection
	default:
		return value.KindInvalid
	}
}

// Coerce converts raw to the item's value kind.
// An invalid raw value, or one that cannot be converted without loss,
// yields a *TypeMismatchError.
func (it Item) Coerce(raw value.Value) (value.Value, error) {
	want := it.ValueKind()
	v, err := raw.Convert(want)
	if err != nil || !raw.IsValid() {
		return value.Value{}, &TypeMismatchError{
			Key:      it.ID,
			Expected: want,
			Actual:   raw.Kind(),
			Value:    raw.String(),
			Err:      err,
		}
	}
	return v, nil
}

// NotStoreable returns a copy excluded from presets.
func (it Item) NotStoreable() Item {
	it.Storeable = false
	return it
}

// WithoutCommonDispatch returns a copy whose control is not connected to
// the generic dispatch path.
func (it Item) WithoutCommonDispatch() Item {
	it.UseCommonDispatch = false
	return it
}

// WithCaption returns a copy with a caption.
func (it Item) WithCaption(caption string) Item {
	it.Caption = caption
	return it
}

// Convenience constructors for common item kinds.

// Check creates a check box item.
func Check(id string, def bool) Item {
	return newItem(id, KindCheck, value.Bool(def))
}

// Combo creates a combo box item whose default is the entry at index def.
func Combo(id string, def int, choices ...string) Item {
	it := newItem(id, KindCombo, value.Int(int64(def)))
	it.Choices = choices
	return it
}

// Numeric creates a numeric item with the given precision.
// With zero decimals an integral default is stored as an int; a fractional
// one is kept as a double and rejected by New.
func Numeric(id string, def float64, decimals int) Item {
	it := newItem(id, KindNumeric, value.Double(def))
	it.Decimals = decimals
	if decimals == 0 {
		if iv, err := it.Default.Convert(value.KindInt); err == nil {
			it.Default = iv
		}
	}
	return it
}

// Text creates a string item.
func Text(id string, def string) Item {
	return newItem(id, KindText, value.String(def))
}

// Collection creates an item backed by a custom store seeded with def.
func Collection(id string, def *value.Collection) Item {
	return newItem(id, KindCollection, value.Map(def))
}

func newItem(id string, kind Kind, def value.Value) Item {
	return Item{
		ID:                id,
		Kind:              kind,
		Default:           def,
		Storeable:         true,
		UseCommonDispatch: true,
	}
}
