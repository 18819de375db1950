package filter

import (
	"github.com/dshills/darkroom/internal/config/notify"
	"github.com/dshills/darkroom/internal/config/value"
)

// Dispatch is the entry point for a configuration change from a control
// or a script. Unknown ids, invalid values and values that cannot be
// coerced to the item's type are ignored: they come from stale controls
// or timing mismatches, not corrupt data. Custom stores are flat, so a
// collection holding collections is ignored too.
func (f *Filter) Dispatch(id string, nv value.Value) {
	f.mustHaveName()
	if !nv.IsValid() {
		return
	}
	it, ok := f.schema.Lookup(id)
	if !ok {
		f.log.Debug().Str("item", id).Msg("dispatch to unknown item ignored")
		return
	}

	if it.Kind.IsCustom() {
		c, ok := nv.AsCollection()
		if !ok {
			return
		}
		if !c.IsFlat() {
			f.log.Debug().Str("item", id).Msg("nested store value ignored")
			return
		}
		old, _ := f.cfg.Store(id)
		if old.Equal(c) {
			return
		}
		oldValue := value.Map(old)
		f.cfg.SetStore(id, c)
		f.notifier.Notify(storeChange(f.uniqueName, id, oldValue, value.Map(c)))
		f.RequestPipeRun(false)
		return
	}

	coerced, err := it.Coerce(nv)
	if err != nil {
		f.log.Debug().Err(err).Str("item", id).Msg("dispatch value ignored")
		return
	}
	old, err := f.cfg.Value(id)
	if err != nil {
		return
	}
	changed, err := f.cfg.SetValue(id, coerced)
	if err != nil || !changed {
		return
	}
	f.notifier.NotifyValue(f.uniqueName, id, old, coerced)
	f.RequestPipeRun(false)
}

// Reset restores the schema defaults, drops custom stores and refreshes
// the view.
func (f *Filter) Reset(requestPipeRun bool) {
	f.mustHaveName()

	if r, ok := f.impl.(Resetter); ok {
		r.Reset(f.cfg)
	}
	f.cfg.Clear()
	if err := f.createConfig(); err != nil {
		// The schema validated at construction, so this only fires on a
		// broken CustomConfigAdder.
		f.log.Error().Err(err).Msg("recreating config failed")
	}
	f.notifier.NotifyReload(f.uniqueName)
	f.UpdateGui(requestPipeRun)
}

func storeChange(filter, id string, oldValue, newValue value.Value) notify.Change {
	return notify.Change{
		Filter:   filter,
		ID:       id,
		Type:     notify.ChangeStore,
		OldValue: oldValue,
		NewValue: newValue,
	}
}
