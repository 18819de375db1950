package app

import (
	"github.com/dshills/darkroom/internal/config/notify"
	"github.com/dshills/darkroom/internal/config/settings"
	"github.com/dshills/darkroom/internal/config/watcher"
)

// policyChanged persists the settings tree after a list changed.
func (app *Application) policyChanged(key string) {
	if app.opts.SettingsPath == "" {
		return
	}
	if err := settings.SaveFile(app.fsys, app.opts.SettingsPath, app.policy.Tree()); err != nil {
		app.log.Error().Err(err).Str("key", key).Msg("saving settings failed")
		return
	}
	app.log.Debug().Str("key", key).Msg("settings saved")
}

// reloadSettings re-reads the settings file and re-evaluates every
// filter against the new lists. A filter whose activation flipped asks
// for a pipeline run from its position.
func (app *Application) reloadSettings() error {
	t, err := settings.LoadFile(app.fsys, app.opts.SettingsPath)
	if err != nil {
		return &OperationError{Op: "reload settings", Target: app.opts.SettingsPath, Err: err}
	}
	app.policy.SetTree(t)
	app.metrics.RecordSettingsReload()

	flipped := 0
	for _, f := range app.filters {
		if f.CheckActiveChanged(false) {
			f.RequestPipeRun(true)
			flipped++
		}
	}
	app.log.Info().
		Int("flipped", flipped).
		Int("active", app.actives.Len()).
		Msg("settings reloaded")
	return nil
}

// handleSettingsEvent reacts to a change of the settings file on disk.
func (app *Application) handleSettingsEvent(ev watcher.Event) {
	switch ev.Op {
	case watcher.OpWrite, watcher.OpCreate:
		if err := app.reloadSettings(); err != nil {
			app.log.Warn().Err(err).Msg("keeping previous settings")
		}
	case watcher.OpRemove, watcher.OpRename:
		// An editor replacing the file is followed by a create
		app.log.Debug().Str("path", ev.Path).Stringer("op", ev.Op).Msg("settings file moved")
	}
}

// logChange traces every filter notification at debug level.
func (app *Application) logChange(c notify.Change) {
	e := app.log.Debug().
		Str("filter", c.Filter).
		Stringer("change", c.Type)
	if c.ID != "" {
		e = e.Str("item", c.ID)
	}
	if c.NewValue.IsValid() {
		e = e.Stringer("value", c.NewValue)
	}
	e.Msg("filter changed")
}
