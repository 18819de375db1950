// Package value provides the closed tagged value used throughout the
// filter configuration engine.
//
// Every setting, custom store entry and preset field is carried as a Value.
// Untyped input (decoded preset files, script arguments, control outputs) is
// converted once at the boundary with FromAny and never travels further as
// an interface value.
package value

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Kind is the tag of a Value.
type Kind uint8

const (
	// KindInvalid marks an absent or unusable value.
	KindInvalid Kind = iota
	// KindBool is a boolean.
	KindBool
	// KindInt is a 64-bit signed integer.
	KindInt
	// KindDouble is a 64-bit float.
	KindDouble
	// KindString is a string.
	KindString
	// KindStringList is an ordered list of strings.
	KindStringList
	// KindCollection is an ordered key/value collection.
	KindCollection
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	case KindStringList:
		return "stringlist"
	case KindCollection:
		return "collection"
	default:
		return "unknown"
	}
}

// Value is an immutable tagged union. The zero Value is invalid.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	list []string
	coll *Collection
}

// Bool returns a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int returns an integer Value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Double returns a floating point Value.
func Double(f float64) Value { return Value{kind: KindDouble, f: f} }

// String returns a string Value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// StringList returns a list Value. The slice is copied.
func StringList(items []string) Value {
	return Value{kind: KindStringList, list: slices.Clone(items)}
}

// Map returns a collection Value holding a copy of c.
// A nil collection yields an empty one.
func Map(c *Collection) Value {
	if c == nil {
		return Value{kind: KindCollection, coll: NewCollection()}
	}
	return Value{kind: KindCollection, coll: c.Clone()}
}

// Kind returns the tag.
func (v Value) Kind() Kind { return v.kind }

// IsValid reports whether v carries a value.
func (v Value) IsValid() bool { return v.kind != KindInvalid }

// AsBool returns the boolean payload.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsInt returns the integer payload.
func (v Value) AsInt() (int64, bool) { return v.i, v.kind == KindInt }

// AsDouble returns the float payload.
func (v Value) AsDouble() (float64, bool) { return v.f, v.kind == KindDouble }

// AsString returns the string payload.
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

// AsStringList returns a copy of the list payload.
func (v Value) AsStringList() ([]string, bool) {
	if v.kind != KindStringList {
		return nil, false
	}
	return slices.Clone(v.list), true
}

// AsCollection returns a copy of the collection payload.
func (v Value) AsCollection() (*Collection, bool) {
	if v.kind != KindCollection {
		return nil, false
	}
	return v.coll.Clone(), true
}

// Float returns a numeric payload widened to float64.
// Booleans are 0 or 1. Other kinds yield 0.
func (v Value) Float() float64 {
	switch v.kind {
	case KindBool:
		if v.b {
			return 1
		}
		return 0
	case KindInt:
		return float64(v.i)
	case KindDouble:
		return v.f
	default:
		return 0
	}
}

// Equal reports whether two values have the same tag and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindInvalid:
		return true
	case KindBool:
		return v.b == o.b
	case KindInt:
		return v.i == o.i
	case KindDouble:
		return v.f == o.f
	case KindString:
		return v.s == o.s
	case KindStringList:
		return slices.Equal(v.list, o.list)
	case KindCollection:
		return v.coll.Equal(o.coll)
	default:
		return false
	}
}

// String formats the payload for logs and error messages.
func (v Value) String() string {
	switch v.kind {
	case KindInvalid:
		return "<invalid>"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindDouble:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString:
		return v.s
	case KindStringList:
		return "[" + strings.Join(v.list, ", ") + "]"
	case KindCollection:
		return v.coll.String()
	default:
		return "<unknown>"
	}
}

// ToAny returns the payload as a plain Go value suitable for encoders.
// Collections become map[string]any.
func (v Value) ToAny() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindDouble:
		return v.f
	case KindString:
		return v.s
	case KindStringList:
		return slices.Clone(v.list)
	case KindCollection:
		m := make(map[string]any, v.coll.Len())
		v.coll.Range(func(key string, item Value) bool {
			m[key] = item.ToAny()
			return true
		})
		return m
	default:
		return nil
	}
}

// FromAny converts a decoded Go value into a Value.
//
// Supported inputs are the shapes produced by the TOML, YAML and Lua
// decoders: booleans, all integer and float widths, strings, string slices,
// []any of strings, and map[string]any (recursively).
func FromAny(raw any) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Value{}, nil
	case Value:
		return x, nil
	case bool:
		return Bool(x), nil
	case int:
		return Int(int64(x)), nil
	case int8:
		return Int(int64(x)), nil
	case int16:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint:
		return fromUint(uint64(x))
	case uint8:
		return Int(int64(x)), nil
	case uint16:
		return Int(int64(x)), nil
	case uint32:
		return Int(int64(x)), nil
	case uint64:
		return fromUint(x)
	case float32:
		return Double(float64(x)), nil
	case float64:
		return Double(x), nil
	case string:
		return String(x), nil
	case []string:
		return StringList(x), nil
	case []any:
		list := make([]string, 0, len(x))
		for i, item := range x {
			s, ok := item.(string)
			if !ok {
				return Value{}, fmt.Errorf("list element %d: expected string, got %T", i, item)
			}
			list = append(list, s)
		}
		return StringList(list), nil
	case map[string]any:
		c := NewCollection()
		for key, item := range x {
			iv, err := FromAny(item)
			if err != nil {
				return Value{}, fmt.Errorf("%s: %w", key, err)
			}
			c.Set(key, iv)
		}
		return Value{kind: KindCollection, coll: c}, nil
	case *Collection:
		return Map(x), nil
	default:
		return Value{}, fmt.Errorf("unsupported value type %T", raw)
	}
}

func fromUint(u uint64) (Value, error) {
	if u > math.MaxInt64 {
		return Value{}, fmt.Errorf("integer %d overflows int64", u)
	}
	return Int(int64(u)), nil
}
