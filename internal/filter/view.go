package filter

import (
	"github.com/dshills/darkroom/internal/config/value"
)

// Control is one live input widget bound to an item id.
type Control interface {
	SetValue(v value.Value)
	OnChange(fn func(v value.Value))
}

// View is the GUI container of a filter. The filter never knows concrete
// control types, only whether a control for an id currently exists.
type View interface {
	Control(id string) (Control, bool)
	// Refresh redraws the container after blocked or hidden changed.
	Refresh()
}

// ConnectView attaches v and wires every control whose item uses the
// common dispatch path to Dispatch. Current values are pushed into the
// controls.
func (f *Filter) ConnectView(v View) {
	f.mustHaveName()
	f.view = v
	if v == nil {
		return
	}

	for _, it := range f.schema.Items() {
		if !it.UseCommonDispatch {
			continue
		}
		ctrl, ok := v.Control(it.ID)
		if !ok {
			continue
		}
		id := it.ID
		ctrl.OnChange(func(nv value.Value) {
			f.Dispatch(id, nv)
		})
	}
	f.pushValues()
}

// View returns the attached view, or nil.
func (f *Filter) View() View {
	return f.view
}

// UpdateGui pushes the current configuration into the view, then either
// requests a pipeline run or only re-checks activation.
func (f *Filter) UpdateGui(requestPipeRun bool) {
	if f.view != nil {
		if u, ok := f.impl.(GuiUpdater); ok {
			u.UpdateGui(f.view, f.cfg)
		}
		f.pushValues()
		f.view.Refresh()
	}

	if requestPipeRun {
		f.RequestPipeRun(false)
	} else {
		f.CheckActiveChanged(false)
	}
}

func (f *Filter) pushValues() {
	for _, it := range f.schema.Items() {
		ctrl, ok := f.view.Control(it.ID)
		if !ok {
			f.log.Warn().Str("item", it.ID).Msg("control not found in view")
			continue
		}
		if it.Kind.IsCustom() {
			c, _ := f.cfg.Store(it.ID)
			ctrl.SetValue(value.Map(c))
			continue
		}
		v, err := f.cfg.Value(it.ID)
		if err != nil {
			continue
		}
		ctrl.SetValue(v)
	}
}
