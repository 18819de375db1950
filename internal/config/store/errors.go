package store

import (
	"errors"
	"fmt"
)

// ErrUnknownKey indicates an id that is not in the default store.
var ErrUnknownKey = errors.New("unknown config key")

// UnknownKeyError is returned when accessing an id the store does not hold.
// It signals a programming error, not bad data.
type UnknownKeyError struct {
	Key string
}

// Error implements the error interface.
func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("unknown config key %q", e.Key)
}

// Is matches ErrUnknownKey.
func (e *UnknownKeyError) Is(target error) bool {
	return target == ErrUnknownKey
}
