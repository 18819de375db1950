package filter

import (
	"errors"
	"fmt"

	"github.com/dshills/darkroom/internal/config/schema"
	"github.com/dshills/darkroom/internal/config/settings"
	"github.com/dshills/darkroom/internal/config/value"
)

// Preset keys written next to the item values.
const (
	KeyCustomStores = "CustomStores"
	KeyIsBlocked    = "isBlocked"
)

// PresetGroup returns the group a filter's preset lives in.
func PresetGroup(typeName, uniqueName string) string {
	return typeName + "/" + uniqueName
}

// ExportPreset writes the filter's configuration to t under
// "<type>/<uniqueName>", replacing whatever the group held. Booleans are
// written as integers. The blocked flag is written only with includeFlags.
func (f *Filter) ExportPreset(t *settings.Tree, includeFlags bool) {
	f.mustHaveName()

	t.BeginGroup(PresetGroup(f.typeName, f.uniqueName))
	defer t.EndGroup()

	t.Remove("")

	for _, it := range f.schema.Items() {
		if !it.Storeable || it.Kind.IsCustom() {
			continue
		}
		v, err := f.cfg.Value(it.ID)
		if err != nil {
			continue
		}
		if b, ok := v.AsBool(); ok {
			v = boolToInt(b)
		}
		t.SetValue(it.ID, v)
	}

	if ids := f.cfg.StoreIDs(); len(ids) > 0 {
		t.SetValue(KeyCustomStores, value.StringList(ids))
		for _, id := range ids {
			c, _ := f.cfg.Store(id)
			t.SetValue(id, value.Map(c))
		}
	}

	if includeFlags {
		t.SetValue(KeyIsBlocked, boolToInt(f.blocked))
	}

	if ext, ok := f.impl.(PresetExtender); ok {
		ext.ExportPreset(t, includeFlags)
	}
}

// ImportPreset reads the group written by ExportPreset. Values are coerced
// to the schema types and applied in one batch, followed by one activation
// check and a GUI refresh. Custom stores named in the CustomStores list are
// overwritten; without the list existing stores are left alone. A field
// that cannot be coerced is skipped and reported, the rest still apply.
// When the type's own preset fields are rejected the custom stores are
// not imported, since their layout is then unknown.
func (f *Filter) ImportPreset(t *settings.Tree, requestPipeRun bool) error {
	f.mustHaveName()

	var errs []error

	t.BeginGroup(PresetGroup(f.typeName, f.uniqueName))
	extOK := true
	if ext, ok := f.impl.(PresetExtender); ok {
		if err := ext.ImportPreset(t); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f, err))
			extOK = false
		}
	}
	staged := f.stageValues(t, &errs)
	if extOK {
		f.importStores(t, &errs)
	}

	if f.caps.Has(Blockable) {
		blocked := f.blocked
		if raw, ok := t.Value(KeyIsBlocked); ok {
			b, err := raw.Convert(value.KindBool)
			if err != nil {
				errs = append(errs, f.mismatch(KeyIsBlocked, value.KindBool, raw, err))
			} else {
				blocked, _ = b.AsBool()
			}
		}
		f.blocked = blocked || f.IsHidden()
	}

	t.EndGroup()

	before := f.cfg.Values()
	changed, err := f.cfg.Update(staged)
	if err != nil {
		errs = append(errs, err)
	}
	for _, id := range changed {
		f.notifier.NotifyValue(f.uniqueName, id, before[id], staged[id])
	}
	f.notifier.NotifyReload(f.uniqueName)

	f.UpdateGui(requestPipeRun)

	f.env.Metrics.RecordPresetImport(f.uniqueName, len(errs))
	if len(errs) > 0 {
		f.log.Warn().Int("errors", len(errs)).Msg("preset imported with errors")
	}
	return errors.Join(errs...)
}

func (f *Filter) stageValues(t *settings.Tree, errs *[]error) map[string]value.Value {
	staged := make(map[string]value.Value)
	for _, it := range f.schema.Items() {
		if it.Kind.IsCustom() {
			continue
		}
		raw, ok := t.Value(it.ID)
		if !ok {
			continue
		}
		v, err := it.Coerce(raw)
		if err != nil {
			*errs = append(*errs, f.annotate(err))
			continue
		}
		staged[it.ID] = v
	}
	return staged
}

func (f *Filter) importStores(t *settings.Tree, errs *[]error) {
	raw, ok := t.Value(KeyCustomStores)
	if !ok {
		return
	}
	list, err := raw.Convert(value.KindStringList)
	if err != nil {
		*errs = append(*errs, f.mismatch(KeyCustomStores, value.KindStringList, raw, err))
		return
	}
	names, _ := list.AsStringList()
	for _, name := range names {
		contents, ok := t.Collection(name)
		if !ok {
			contents = value.NewCollection()
		}
		old, _ := f.cfg.Store(name)
		oldValue := value.Map(old)
		f.cfg.SetStore(name, contents)
		f.notifier.Notify(storeChange(f.uniqueName, name, oldValue, value.Map(contents)))
	}
}

// annotate adds the filter identity to a coercion error.
func (f *Filter) annotate(err error) error {
	var tm *schema.TypeMismatchError
	if errors.As(err, &tm) {
		tm.FilterType = f.typeName
		tm.Filter = f.uniqueName
		return tm
	}
	return fmt.Errorf("%s: %w", f, err)
}

func (f *Filter) mismatch(key string, want value.Kind, raw value.Value, err error) error {
	return &schema.TypeMismatchError{
		FilterType: f.typeName,
		Filter:     f.uniqueName,
		Key:        key,
		Expected:   want,
		Actual:     raw.Kind(),
		Value:      raw.String(),
		Err:        err,
	}
}

func boolToInt(b bool) value.Value {
	if b {
		return value.Int(1)
	}
	return value.Int(0)
}
