// Package app wires the filter engine into a runnable application: it
// builds the pipeline from a layout file, keeps the global policy lists
// in sync with the settings file, imports and exports presets, runs
// scripts and renders images.
package app

import (
	"image"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/dshills/darkroom/internal/config/loader"
	"github.com/dshills/darkroom/internal/config/settings"
	"github.com/dshills/darkroom/internal/config/watcher"
	"github.com/dshills/darkroom/internal/filter"
	"github.com/dshills/darkroom/internal/filter/actives"
	"github.com/dshills/darkroom/internal/filter/factory"
	"github.com/dshills/darkroom/internal/metrics"
	"github.com/dshills/darkroom/internal/pipeline"
	"github.com/dshills/darkroom/internal/script"
)

// Application is the central coordinator. It is driven from one
// goroutine; only the watcher and the pipeline queue cross goroutines.
type Application struct {
	opts Options
	log  zerolog.Logger
	fsys loader.FileSystem

	registry prometheus.Registerer
	metrics  *metrics.Metrics

	policy  *settings.Policy
	watcher *watcher.Watcher

	actives *actives.Registry
	factory *factory.Factory
	layout  *Layout
	filters []*filter.Filter
	byName  map[string]*filter.Filter

	queue   *pipeline.Queue
	runner  *pipeline.Runner
	scripts *script.Engine

	written *image.RGBA
	closed  bool
}

// New creates an Application with the given options.
func New(opts Options) (*Application, error) {
	app := &Application{
		opts:   opts,
		fsys:   opts.FS,
		byName: make(map[string]*filter.Filter),
	}
	if app.fsys == nil {
		app.fsys = loader.DefaultFS()
	}

	if err := newBootstrapper(app).bootstrap(); err != nil {
		return nil, err
	}
	return app, nil
}

// Logger returns the root logger.
func (app *Application) Logger() zerolog.Logger {
	return app.log
}

// Filter looks a filter up by unique name.
func (app *Application) Filter(uniqueName string) (*filter.Filter, bool) {
	f, ok := app.byName[uniqueName]
	return f, ok
}

// Filters returns every filter in layout order.
func (app *Application) Filters() []*filter.Filter {
	out := make([]*filter.Filter, len(app.filters))
	copy(out, app.filters)
	return out
}

// FilterNames returns every unique name in layout order.
func (app *Application) FilterNames() []string {
	names := make([]string, len(app.filters))
	for i, f := range app.filters {
		names[i] = f.UniqueName()
	}
	return names
}

// ActiveNames returns the active filters in pipeline order.
func (app *Application) ActiveNames() []string {
	return app.actives.Names()
}

// Stages returns the active filters as pipeline stages.
func (app *Application) Stages() []pipeline.Stage {
	members := app.actives.Actives()
	stages := make([]pipeline.Stage, 0, len(members))
	for _, m := range members {
		if st, ok := m.(pipeline.Stage); ok {
			stages = append(stages, st)
		}
	}
	return stages
}

// Position locates a filter in the pipeline whether or not it is active.
func (app *Application) Position(uniqueName string) (pipeline.Position, bool) {
	f, ok := app.byName[uniqueName]
	if !ok {
		return pipeline.Position{}, false
	}
	tab, slot := f.Pos()
	return pipeline.Position{Tab: tab, Slot: slot}, true
}

// Policy returns the global hidden and favourite lists.
func (app *Application) Policy() *settings.Policy {
	return app.policy
}

// Metrics returns the metrics sink.
func (app *Application) Metrics() *metrics.Metrics {
	return app.metrics
}

// Close stops the watcher and releases every filter. It is safe to call
// more than once.
func (app *Application) Close() error {
	if app.closed {
		return nil
	}
	app.closed = true

	var err error
	if app.watcher != nil {
		err = app.watcher.Stop()
	}
	for _, f := range app.filters {
		f.Close()
	}
	app.log.Debug().Msg("application closed")
	return err
}
