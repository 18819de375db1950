// Package factory maps filter type names to constructors so filters can be
// instantiated from layouts and presets by name.
//
// The factory is populated once at startup and only read afterwards. It
// keeps no reference to the filters it creates.
package factory

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dshills/darkroom/internal/filter"
)

// Errors returned by the factory.
var (
	ErrDuplicateRegistration = errors.New("duplicate filter registration")
	ErrUnknownType           = errors.New("unknown filter type")
)

// DuplicateRegistrationError is returned when a type name is registered
// twice.
type DuplicateRegistrationError struct {
	TypeName string
}

func (e *DuplicateRegistrationError) Error() string {
	return fmt.Sprintf("filter type %q already registered", e.TypeName)
}

// Is matches ErrDuplicateRegistration.
func (e *DuplicateRegistrationError) Is(target error) bool {
	return target == ErrDuplicateRegistration
}

// UnknownTypeError is returned by Create for an unregistered type name.
type UnknownTypeError struct {
	TypeName string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown filter type %q", e.TypeName)
}

// Is matches ErrUnknownType.
func (e *UnknownTypeError) Is(target error) bool {
	return target == ErrUnknownType
}

// Constructor builds a fresh filter implementation.
type Constructor func() filter.Impl

// Factory creates filters by type name.
type Factory struct {
	ctors map[string]Constructor
	env   filter.Env
}

// New creates an empty factory. Every filter it creates shares env.
func New(env filter.Env) *Factory {
	return &Factory{
		ctors: make(map[string]Constructor),
		env:   env,
	}
}

// Register binds typeName to ctor. The name must match the schema name of
// the implementations ctor builds.
func (f *Factory) Register(typeName string, ctor Constructor) error {
	if ctor == nil {
		return fmt.Errorf("register %s: nil constructor", typeName)
	}
	if _, exists := f.ctors[typeName]; exists {
		return &DuplicateRegistrationError{TypeName: typeName}
	}
	if got := ctor().Schema().Name(); got != typeName {
		return fmt.Errorf("register %s: constructor builds type %q", typeName, got)
	}
	f.ctors[typeName] = ctor
	return nil
}

// MustRegister is like Register but panics on error.
func (f *Factory) MustRegister(typeName string, ctor Constructor) {
	if err := f.Register(typeName, ctor); err != nil {
		panic(err)
	}
}

// Create returns a new, uninitialized filter of the given type.
func (f *Factory) Create(typeName string) (*filter.Filter, error) {
	ctor, ok := f.ctors[typeName]
	if !ok {
		return nil, &UnknownTypeError{TypeName: typeName}
	}
	return filter.New(ctor(), f.env), nil
}

// New creates a filter and initializes it with uniqueName.
func (f *Factory) New(typeName, uniqueName, captionSuffix string) (*filter.Filter, error) {
	flt, err := f.Create(typeName)
	if err != nil {
		return nil, err
	}
	if err := flt.Init(uniqueName, captionSuffix); err != nil {
		return nil, err
	}
	return flt, nil
}

// Has reports whether typeName is registered.
func (f *Factory) Has(typeName string) bool {
	_, ok := f.ctors[typeName]
	return ok
}

// Types returns the registered type names, sorted.
func (f *Factory) Types() []string {
	names := make([]string, 0, len(f.ctors))
	for name := range f.ctors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
