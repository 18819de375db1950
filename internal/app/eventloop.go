package app

import (
	"context"

	"github.com/dshills/darkroom/internal/imageio"
	"github.com/dshills/darkroom/internal/pipeline"
)

// Render runs the pipeline and writes the output image when one is
// configured. The file is rewritten whenever the output image differs
// from the one last written, even when no stage ran.
func (app *Application) Render(ctx context.Context) (pipeline.Result, error) {
	if app.opts.InputPath == "" {
		return pipeline.Result{}, &OperationError{Op: "render", Err: ErrNoInput}
	}

	res, err := app.runner.Run(ctx)
	if err != nil {
		return res, &OperationError{Op: "render", Err: err}
	}
	if app.opts.OutputPath == "" || res.Output == app.written {
		return res, nil
	}

	opts := imageio.Options{JPEGQuality: app.opts.JPEGQuality, TIFFCompress: true}
	if err := imageio.WriteFile(app.opts.OutputPath, res.Output, opts); err != nil {
		return res, &OperationError{Op: "render", Target: app.opts.OutputPath, Err: err}
	}
	app.written = res.Output
	app.log.Info().
		Str("run", res.RunID.String()).
		Str("path", app.opts.OutputPath).
		Int("stages", res.StagesRun).
		Dur("elapsed", res.Duration).
		Msg("output written")
	return res, nil
}

// Run performs the configured batch: preset import, script, render and
// preset export. With Watch set it then keeps re-rendering until ctx is
// done.
func (app *Application) Run(ctx context.Context) error {
	if app.opts.PresetPath != "" {
		if err := app.ImportPresets(app.opts.PresetPath); err != nil {
			return err
		}
	}
	if app.opts.ScriptPath != "" {
		if err := app.RunScript(ctx, app.opts.ScriptPath); err != nil {
			return err
		}
	}
	if app.opts.InputPath != "" {
		if _, err := app.Render(ctx); err != nil {
			return err
		}
	}
	if app.opts.ExportPath != "" {
		if err := app.ExportPresets(app.opts.ExportPath, app.opts.ExportFlags); err != nil {
			return err
		}
	}

	if app.watcher == nil {
		return nil
	}
	return app.loop(ctx)
}

// loop is the main event loop of watch mode.
func (app *Application) loop(ctx context.Context) error {
	events := app.watcher.Events()
	errs := app.watcher.Errors()
	app.log.Info().Str("path", app.opts.SettingsPath).Msg("watching settings")

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			app.handleSettingsEvent(ev)

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			app.log.Warn().Err(err).Msg("settings watcher error")

		case <-app.queue.Ready():
			if app.opts.InputPath == "" {
				app.queue.Drain()
				continue
			}
			if _, err := app.Render(ctx); err != nil {
				app.log.Error().Err(err).Msg("render failed")
			}
		}
	}
}
