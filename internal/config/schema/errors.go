package schema

import (
	"errors"
	"fmt"

	"github.com/dshills/darkroom/internal/config/value"
)

// Errors reported by schema construction and coercion.
var (
	// ErrSchema indicates a malformed or duplicate item descriptor.
	ErrSchema = errors.New("schema error")

	// ErrTypeMismatch indicates a value cannot be coerced to an item's type.
	ErrTypeMismatch = errors.New("type mismatch")
)

// SchemaError describes a malformed descriptor. It is raised at startup
// when a filter type defines its items.
type SchemaError struct {
	// Schema names the filter type the descriptor belongs to (may be empty).
	Schema string
	// ID is the offending item id (may be empty).
	ID string
	// Message describes what's wrong.
	Message string
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	switch {
	case e.Schema != "" && e.ID != "":
		return fmt.Sprintf("schema %s: item %q: %s", e.Schema, e.ID, e.Message)
	case e.ID != "":
		return fmt.Sprintf("schema: item %q: %s", e.ID, e.Message)
	case e.Schema != "":
		return fmt.Sprintf("schema %s: %s", e.Schema, e.Message)
	default:
		return "schema: " + e.Message
	}
}

// Is matches ErrSchema.
func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}

// TypeMismatchError is returned when a raw value cannot be coerced to the
// type an item expects. Filter and FilterType are filled in by callers that
// know the filter identity so that corrupt presets can be diagnosed.
type TypeMismatchError struct {
	FilterType string
	Filter     string
	Key        string
	Expected   value.Kind
	Actual     value.Kind
	Value      string
	Err        error
}

// Error implements the error interface.
func (e *TypeMismatchError) Error() string {
	where := e.Key
	if e.Filter != "" {
		where = fmt.Sprintf("%s/%s: %s", e.FilterType, e.Filter, e.Key)
	}
	return fmt.Sprintf("type mismatch for %s: expected %s, got %s %q", where, e.Expected, e.Actual, e.Value)
}

// Is matches ErrTypeMismatch.
func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}

// Unwrap returns the underlying conversion error.
func (e *TypeMismatchError) Unwrap() error {
	return e.Err
}
