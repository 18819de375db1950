package schema

import (
	"errors"
	"strings"
	"testing"

	"github.com/dshills/darkroom/internal/config/value"
)

func TestSchemaError_Error(t *testing.T) {
	tests := []struct {
		err  *SchemaError
		want string
	}{
		{&SchemaError{Schema: "curves", ID: "x", Message: "duplicate id"}, `schema curves: item "x": duplicate id`},
		{&SchemaError{ID: "x", Message: "empty"}, `schema: item "x": empty`},
		{&SchemaError{Schema: "curves", Message: "bad"}, "schema curves: bad"},
		{&SchemaError{Message: "bad"}, "schema: bad"},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestTypeMismatchError(t *testing.T) {
	cause := errors.New("boom")
	err := &TypeMismatchError{
		FilterType: "exposure",
		Filter:     "Exposure",
		Key:        "amount",
		Expected:   value.KindDouble,
		Actual:     value.KindString,
		Value:      "lots",
		Err:        cause,
	}

	msg := err.Error()
	if !strings.Contains(msg, "exposure/Exposure: amount") {
		t.Errorf("message lacks filter identity: %q", msg)
	}
	if !errors.Is(err, ErrTypeMismatch) {
		t.Error("expected errors.Is(err, ErrTypeMismatch)")
	}
	if !errors.Is(err, cause) {
		t.Error("expected Unwrap to expose the cause")
	}

	bare := &TypeMismatchError{Key: "amount", Expected: value.KindInt, Actual: value.KindString, Value: "x"}
	if strings.Contains(bare.Error(), "/") {
		t.Errorf("bare message should not carry a filter scope: %q", bare.Error())
	}
}
