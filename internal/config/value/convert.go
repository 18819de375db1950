package value

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrConversion indicates a value cannot be represented as the requested kind.
var ErrConversion = errors.New("value conversion failed")

// ConversionError describes a failed Convert call.
type ConversionError struct {
	From   Kind
	To     Kind
	Value  string
	Reason string
}

// Error implements the error interface.
func (e *ConversionError) Error() string {
	msg := fmt.Sprintf("cannot convert %s %q to %s", e.From, e.Value, e.To)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// Is matches ErrConversion.
func (e *ConversionError) Is(target error) bool {
	return target == ErrConversion
}

// Convert returns v represented as kind.
//
// Conversions never truncate: a double only becomes an int when it is
// integral, and strings must parse completely.
func (v Value) Convert(to Kind) (Value, error) {
	if v.kind == to {
		return v, nil
	}

	fail := func(reason string) (Value, error) {
		return Value{}, &ConversionError{From: v.kind, To: to, Value: v.String(), Reason: reason}
	}

	switch to {
	case KindBool:
		switch v.kind {
		case KindInt:
			return Bool(v.i != 0), nil
		case KindDouble:
			if v.f != 0 && v.f != 1 {
				return fail("not 0 or 1")
			}
			return Bool(v.f == 1), nil
		case KindString:
			b, err := strconv.ParseBool(strings.TrimSpace(v.s))
			if err != nil {
				return fail("not a boolean")
			}
			return Bool(b), nil
		}

	case KindInt:
		switch v.kind {
		case KindBool:
			if v.b {
				return Int(1), nil
			}
			return Int(0), nil
		case KindDouble:
			if v.f != math.Trunc(v.f) || math.IsInf(v.f, 0) || math.IsNaN(v.f) {
				return fail("not integral")
			}
			// float64(MaxInt64) rounds up to 2^63, which does not fit
			if v.f >= math.MaxInt64 || v.f < math.MinInt64 {
				return fail("out of range")
			}
			return Int(int64(v.f)), nil
		case KindString:
			s := strings.TrimSpace(v.s)
			if i, err := strconv.ParseInt(s, 10, 64); err == nil {
				return Int(i), nil
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return Double(f).Convert(KindInt)
			}
			return fail("not an integer")
		}

	case KindDouble:
		switch v.kind {
		case KindBool:
			if v.b {
				return Double(1), nil
			}
			return Double(0), nil
		case KindInt:
			return Double(float64(v.i)), nil
		case KindString:
			f, err := strconv.ParseFloat(strings.TrimSpace(v.s), 64)
			if err != nil {
				return fail("not a number")
			}
			return Double(f), nil
		}

	case KindString:
		switch v.kind {
		case KindBool, KindInt, KindDouble:
			return String(v.String()), nil
		}

	case KindStringList:
		if v.kind == KindString {
			if v.s == "" {
				return StringList(nil), nil
			}
			return StringList([]string{v.s}), nil
		}
	}

	return fail("")
}
