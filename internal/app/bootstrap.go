package app

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dshills/darkroom/internal/config/settings"
	"github.com/dshills/darkroom/internal/config/watcher"
	"github.com/dshills/darkroom/internal/filter"
	"github.com/dshills/darkroom/internal/filter/actives"
	"github.com/dshills/darkroom/internal/filter/factory"
	"github.com/dshills/darkroom/internal/filter/filters"
	"github.com/dshills/darkroom/internal/imageio"
	"github.com/dshills/darkroom/internal/metrics"
	"github.com/dshills/darkroom/internal/pipeline"
	"github.com/dshills/darkroom/internal/script"
)

// bootstrapper handles component initialization with proper cleanup on failure.
type bootstrapper struct {
	app       *Application
	opts      Options
	initOrder []string
}

func newBootstrapper(app *Application) *bootstrapper {
	return &bootstrapper{
		app:       app,
		opts:      app.opts,
		initOrder: make([]string, 0, 8),
	}
}

// bootstrap initializes all components in dependency order.
// On failure, it cleans up already-initialized components.
func (b *bootstrapper) bootstrap() error {
	steps := []func() error{
		b.initLogger,
		b.initMetrics,
		b.initSettings,
		b.initPipeline,
		b.initFilters,
		b.initScripts,
		b.initInput,
		b.initWatcher,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			b.cleanup()
			return err
		}
	}
	b.app.log.Info().
		Int("filters", len(b.app.filters)).
		Int("active", b.app.actives.Len()).
		Msg("pipeline ready")
	return nil
}

func (b *bootstrapper) initLogger() error {
	if b.opts.Logger != nil {
		b.app.log = *b.opts.Logger
	} else {
		l, err := NewLogger(b.opts.LogOutput, b.opts.LogLevel, b.opts.LogFormat)
		if err != nil {
			return &InitError{Component: "logger", Err: err}
		}
		b.app.log = l
	}
	b.initOrder = append(b.initOrder, "logger")
	return nil
}

func (b *bootstrapper) initMetrics() error {
	reg := b.opts.Registerer
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	b.app.registry = reg
	b.app.metrics = metrics.New(reg)
	b.initOrder = append(b.initOrder, "metrics")
	return nil
}

// initSettings loads the policy lists. Every later change to them is
// written back to the settings file.
func (b *bootstrapper) initSettings() error {
	tree := settings.NewTree()
	if b.opts.SettingsPath != "" {
		t, err := settings.LoadFile(b.app.fsys, b.opts.SettingsPath)
		if err != nil {
			return &InitError{Component: "settings", Err: err}
		}
		tree = t
	}
	b.app.policy = settings.NewPolicy(tree)
	b.app.policy.OnChange(b.app.policyChanged)
	b.initOrder = append(b.initOrder, "settings")
	return nil
}

func (b *bootstrapper) initPipeline() error {
	b.app.queue = pipeline.NewQueue()
	b.app.runner = pipeline.NewRunner(b.app.queue, b.app,
		pipeline.WithLogger(b.app.component("pipeline")),
		pipeline.WithMetrics(b.app.metrics),
	)
	b.initOrder = append(b.initOrder, "pipeline")
	return nil
}

// initFilters builds one filter per layout entry and places it at its
// tab and slot.
func (b *bootstrapper) initFilters() error {
	layout, err := LoadLayout(b.app.fsys, b.opts.LayoutPath)
	if err != nil {
		return &InitError{Component: "layout", Err: err}
	}
	b.app.layout = layout

	b.app.actives = actives.New()
	b.app.factory = factory.New(filter.Env{
		Actives:  b.app.actives,
		Policy:   b.app.policy,
		Pipeline: b.app.queue,
		Metrics:  b.app.metrics,
		Logger:   b.app.component("filter"),
	})
	if err := filters.RegisterAll(b.app.factory); err != nil {
		return &InitError{Component: "factory", Err: err}
	}
	b.initOrder = append(b.initOrder, "filters")

	for ti, tab := range layout.Tabs {
		for si, inst := range tab.Filters {
			f, err := b.app.factory.New(inst.Type, inst.Name, inst.Suffix)
			if err != nil {
				return &InitError{Component: "filters", Err: &LayoutError{Tab: ti, Entry: si, Err: err}}
			}
			f.SetPos(ti, si)
			f.Subscribe(b.app.logChange)
			b.app.filters = append(b.app.filters, f)
			b.app.byName[f.UniqueName()] = f
		}
	}
	return nil
}

func (b *bootstrapper) initScripts() error {
	b.app.scripts = script.New(b.app,
		script.WithLogger(b.app.component("script")),
		script.WithMetrics(b.app.metrics),
		script.WithTimeout(b.opts.ScriptTimeout),
	)
	b.initOrder = append(b.initOrder, "scripts")
	return nil
}

func (b *bootstrapper) initInput() error {
	if b.opts.InputPath == "" {
		return nil
	}
	img, err := imageio.ReadFile(b.opts.InputPath)
	if err != nil {
		return &InitError{Component: "input", Err: err}
	}
	b.app.runner.SetInput(img)
	b.app.log.Debug().
		Str("path", b.opts.InputPath).
		Stringer("bounds", img.Bounds()).
		Msg("input loaded")
	return nil
}

func (b *bootstrapper) initWatcher() error {
	if !b.opts.Watch {
		return nil
	}
	w := watcher.New(watcher.WithDebounce(b.opts.Debounce))
	if err := w.Watch(b.opts.SettingsPath); err != nil {
		return &InitError{Component: "watcher", Err: fmt.Errorf("%s: %w", b.opts.SettingsPath, err)}
	}
	if err := w.Start(); err != nil {
		return &InitError{Component: "watcher", Err: err}
	}
	b.app.watcher = w
	b.initOrder = append(b.initOrder, "watcher")
	return nil
}

// cleanup performs cleanup in reverse initialization order.
func (b *bootstrapper) cleanup() {
	for i := len(b.initOrder) - 1; i >= 0; i-- {
		b.cleanupComponent(b.initOrder[i])
	}
}

func (b *bootstrapper) cleanupComponent(component string) {
	switch component {
	case "watcher":
		if b.app.watcher != nil {
			_ = b.app.watcher.Stop()
			b.app.watcher = nil
		}
	case "filters":
		for _, f := range b.app.filters {
			f.Close()
		}
		b.app.filters = nil
		clear(b.app.byName)
	case "settings":
		b.app.policy.OnChange(nil)
	}
}
