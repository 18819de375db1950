package factory

import (
	"errors"
	"image"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/dshills/darkroom/internal/config/schema"
	"github.com/dshills/darkroom/internal/config/store"
	"github.com/dshills/darkroom/internal/filter"
	"github.com/dshills/darkroom/internal/filter/actives"
)

type stubImpl struct{ s *schema.Schema }

func (s stubImpl) Schema() *schema.Schema          { return s.s }
func (stubImpl) HasActiveConfig(*store.Store) bool { return true }
func (stubImpl) Run(img *image.RGBA, _ *store.Store) (*image.RGBA, error) {
	return img, nil
}

func stub(name string) Constructor {
	s := schema.MustNew(name, schema.Numeric("amount", 0, 2))
	return func() filter.Impl { return stubImpl{s: s} }
}

func TestFactory_Register(t *testing.T) {
	f := New(filter.Env{Logger: zerolog.Nop()})

	if err := f.Register("Exposure", stub("Exposure")); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	err := f.Register("Exposure", stub("Exposure"))
	if !errors.Is(err, ErrDuplicateRegistration) {
		t.Errorf("duplicate Register error = %v, want ErrDuplicateRegistration", err)
	}
	var dup *DuplicateRegistrationError
	if !errors.As(err, &dup) || dup.TypeName != "Exposure" {
		t.Errorf("error does not name the type: %v", err)
	}

	if err := f.Register("Curve", stub("Other")); err == nil {
		t.Error("name mismatch should fail")
	}
	if err := f.Register("Nil", nil); err == nil {
		t.Error("nil constructor should fail")
	}

	if diff := cmp.Diff([]string{"Exposure"}, f.Types()); diff != "" {
		t.Errorf("Types (-want +got):\n%s", diff)
	}
}

func TestFactory_MustRegisterPanics(t *testing.T) {
	f := New(filter.Env{})
	f.MustRegister("A", stub("A"))

	defer func() {
		if recover() == nil {
			t.Error("MustRegister should panic on duplicates")
		}
	}()
	f.MustRegister("A", stub("A"))
}

func TestFactory_Create(t *testing.T) {
	reg := actives.New()
	f := New(filter.Env{Actives: reg, Logger: zerolog.Nop()})
	f.MustRegister("Exposure", stub("Exposure"))

	flt, err := f.Create("Exposure")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if flt.TypeName() != "Exposure" || flt.UniqueName() != "" {
		t.Errorf("created %s/%s, want uninitialized Exposure", flt.TypeName(), flt.UniqueName())
	}
	if reg.Len() != 0 {
		t.Error("Create must not register anything before Init")
	}

	a, err := f.New("Exposure", "Exposure1", "")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	b, _ := f.New("Exposure", "Exposure2", "")
	if a.Config() == b.Config() {
		t.Error("filters share a config store")
	}
	if !reg.Contains(a) || !reg.Contains(b) {
		t.Error("always-active stub filters not registered")
	}
}

func TestFactory_CreateUnknown(t *testing.T) {
	reg := actives.New()
	f := New(filter.Env{Actives: reg})

	flt, err := f.Create("nonexistent")
	if !errors.Is(err, ErrUnknownType) {
		t.Fatalf("error = %v, want ErrUnknownType", err)
	}
	if flt != nil {
		t.Error("Create returned a partial filter")
	}
	if reg.Len() != 0 {
		t.Error("failed Create left something registered")
	}

	if _, err := f.New("nonexistent", "x", ""); !errors.Is(err, ErrUnknownType) {
		t.Errorf("New error = %v, want ErrUnknownType", err)
	}
	if _, err := (New(filter.Env{})).New("nonexistent", "", ""); err == nil {
		t.Error("expected error")
	}
}

func TestFactory_NewEmptyName(t *testing.T) {
	f := New(filter.Env{Logger: zerolog.Nop()})
	f.MustRegister("A", stub("A"))

	if _, err := f.New("A", "", ""); !errors.Is(err, filter.ErrEmptyName) {
		t.Errorf("error = %v, want ErrEmptyName", err)
	}
}
