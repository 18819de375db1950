package filter

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/dshills/darkroom/internal/config/schema"
	"github.com/dshills/darkroom/internal/config/value"
)

type fakeControl struct {
	value    value.Value
	onChange func(value.Value)
}

func (c *fakeControl) SetValue(v value.Value)          { c.value = v }
func (c *fakeControl) OnChange(fn func(v value.Value)) { c.onChange = fn }

// emit simulates the user editing the control.
func (c *fakeControl) emit(v value.Value) {
	c.value = v
	if c.onChange != nil {
		c.onChange(v)
	}
}

type fakeView struct {
	controls  map[string]*fakeControl
	refreshes int
}

func newFakeView(ids ...string) *fakeView {
	v := &fakeView{controls: make(map[string]*fakeControl)}
	for _, id := range ids {
		v.controls[id] = &fakeControl{}
	}
	return v
}

func (v *fakeView) Control(id string) (Control, bool) {
	c, ok := v.controls[id]
	if !ok {
		return nil, false
	}
	return c, true
}

func (v *fakeView) Refresh() { v.refreshes++ }

func TestConnectView(t *testing.T) {
	h := newHarness(t, nil)
	// "label" has no control: logged, not fatal
	view := newFakeView("amount", "clip", "mode", "radius", "curve")

	h.filter.ConnectView(view)

	if got := view.controls["radius"].value; !got.Equal(value.Int(3)) {
		t.Errorf("radius control = %v, want pushed default 3", got)
	}
	if _, ok := view.controls["curve"].value.AsCollection(); !ok {
		t.Error("curve control did not receive its store")
	}

	view.controls["amount"].emit(value.Double(0.5))
	if v, _ := h.filter.Value("amount"); !v.Equal(value.Double(0.5)) {
		t.Errorf("amount = %v, want 0.5 after control edit", v)
	}
	if len(h.pipe.updates) != 1 {
		t.Errorf("updates = %v, want 1", h.pipe.updates)
	}
}

func TestUpdateGui(t *testing.T) {
	h := newHarness(t, nil)
	view := newFakeView("amount", "clip", "mode", "radius", "label", "curve")
	h.filter.ConnectView(view)

	// Changing the store behind the filter's back, then refreshing
	_, _ = h.filter.Config().SetValue("amount", value.Double(2))
	h.filter.UpdateGui(false)

	if got := view.controls["amount"].value; !got.Equal(value.Double(2)) {
		t.Errorf("amount control = %v, want 2", got)
	}
	if !h.filter.IsActive() {
		t.Error("UpdateGui(false) should still re-check activation")
	}
	if len(h.pipe.updates) != 0 {
		t.Errorf("UpdateGui(false) requested a run: %v", h.pipe.updates)
	}
	if view.refreshes == 0 {
		t.Error("view not refreshed")
	}

	h.filter.SetBlocked(true)
	if view.refreshes < 2 {
		t.Error("blocking did not refresh the view")
	}
}

type manualImpl struct{ testImpl }

var manualSchema = schema.MustNew("Manual",
	schema.Numeric("amount", 0, 2).WithoutCommonDispatch(),
)

func (m *manualImpl) Schema() *schema.Schema { return manualSchema }

func TestWithoutCommonDispatch(t *testing.T) {
	f := New(&manualImpl{}, Env{Logger: zerolog.Nop()})
	if err := f.Init("Manual1", ""); err != nil {
		t.Fatal(err)
	}
	view := newFakeView("amount")
	f.ConnectView(view)

	if view.controls["amount"].onChange != nil {
		t.Error("item without common dispatch was connected")
	}
	if got := view.controls["amount"].value; !got.Equal(value.Double(0)) {
		t.Errorf("amount control = %v, want pushed 0", got)
	}
}
