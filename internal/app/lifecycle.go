package app

import (
	"context"
	"errors"

	"github.com/dshills/darkroom/internal/config/settings"
	"github.com/dshills/darkroom/internal/filter"
)

// ImportPresets applies a preset file to every saveable filter that has
// a group in it. Field errors of one filter do not stop the others; all
// of them are returned joined.
func (app *Application) ImportPresets(path string) error {
	t, err := settings.LoadFile(app.fsys, path)
	if err != nil {
		return &OperationError{Op: "import preset", Target: path, Err: err}
	}
	if len(t.AllKeys()) == 0 {
		return &OperationError{Op: "import preset", Target: path, Err: ErrEmptyPreset}
	}

	var errs []error
	imported := 0
	for _, f := range app.filters {
		if !f.Capabilities().Has(filter.Saveable) {
			continue
		}
		if !t.Contains(filter.PresetGroup(f.TypeName(), f.UniqueName())) {
			app.log.Debug().Str("filter", f.UniqueName()).Msg("no preset group")
			continue
		}
		if err := f.ImportPreset(t, true); err != nil {
			errs = append(errs, err)
		}
		imported++
	}

	app.log.Info().
		Str("path", path).
		Int("filters", imported).
		Int("errors", len(errs)).
		Msg("preset imported")
	if len(errs) > 0 {
		return &OperationError{Op: "import preset", Target: path, Err: errors.Join(errs...)}
	}
	return nil
}

// ExportPresets writes every saveable filter's preset to a new file.
func (app *Application) ExportPresets(path string, includeFlags bool) error {
	t := settings.NewTree()
	exported := 0
	for _, f := range app.filters {
		if !f.Capabilities().Has(filter.Saveable) {
			continue
		}
		f.ExportPreset(t, includeFlags)
		exported++
	}
	if err := settings.SaveFile(app.fsys, path, t); err != nil {
		return &OperationError{Op: "export preset", Target: path, Err: err}
	}
	app.log.Info().Str("path", path).Int("filters", exported).Msg("preset exported")
	return nil
}

// ResetAll restores the defaults of every filter that has them.
func (app *Application) ResetAll() {
	for _, f := range app.filters {
		if f.Capabilities().Has(filter.HasDefault) {
			f.Reset(true)
		}
	}
}

// RunScript executes a Lua script against the filters.
func (app *Application) RunScript(ctx context.Context, path string) error {
	if err := app.scripts.RunFile(ctx, path); err != nil {
		return &OperationError{Op: "run script", Target: path, Err: err}
	}
	return nil
}
