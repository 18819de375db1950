package app

import (
	"errors"
	"fmt"
)

// Application errors.
var (
	// ErrNoLayout indicates the layout file is missing or names no filters.
	ErrNoLayout = errors.New("layout defines no filters")

	// ErrDuplicateFilter indicates two layout entries share a unique name.
	ErrDuplicateFilter = errors.New("duplicate filter name")

	// ErrEmptyPreset indicates a preset file that holds nothing.
	ErrEmptyPreset = errors.New("preset file is empty or missing")

	// ErrNoInput indicates a render without an input image.
	ErrNoInput = errors.New("no input image")

	// ErrInvalidOption indicates an option value that cannot be used.
	ErrInvalidOption = errors.New("invalid option")
)

// OperationError represents an error that occurred during a specific operation.
type OperationError struct {
	Op     string // Operation name (e.g., "import preset", "render")
	Target string // File or filter the operation was applied to
	Err    error
}

func (e *OperationError) Error() string {
	msg := e.Op
	if e.Target != "" {
		msg = fmt.Sprintf("%s %s", e.Op, e.Target)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// InitError reports a component that failed during startup.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("initializing %s: %v", e.Component, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// LayoutError points at a bad layout entry.
type LayoutError struct {
	Tab   int
	Entry int
	Err   error
}

func (e *LayoutError) Error() string {
	return fmt.Sprintf("layout tab %d entry %d: %v", e.Tab, e.Entry, e.Err)
}

func (e *LayoutError) Unwrap() error {
	return e.Err
}
