// Package main is the entry point for the darkroom pipeline runner.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/dshills/darkroom/internal/app"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opts, done, err := parseFlags(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	if done {
		return 0
	}

	application, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return 0
		}
		log := application.Logger()
		log.Error().Err(err).Msg("run failed")
		return 1
	}
	return 0
}

// parseFlags builds the options from defaults, DARKROOM_* variables and
// flags, in increasing precedence. done is set when the invocation only
// asked for help or the version.
func parseFlags(args []string) (opts app.Options, done bool, err error) {
	opts = app.DefaultOptions()
	if err := opts.ApplyEnv(app.NewEnvLoader()); err != nil {
		return opts, false, err
	}

	fs := pflag.NewFlagSet("darkroom", pflag.ContinueOnError)
	fs.StringVarP(&opts.LayoutPath, "layout", "l", opts.LayoutPath, "pipeline layout file (YAML or TOML)")
	fs.StringVarP(&opts.SettingsPath, "settings", "s", opts.SettingsPath, "settings file with the hidden and favourite lists")
	fs.StringVarP(&opts.PresetPath, "preset", "p", opts.PresetPath, "preset file to import")
	fs.StringVar(&opts.ScriptPath, "script", opts.ScriptPath, "Lua script to run after the preset import")
	fs.StringVarP(&opts.InputPath, "in", "i", opts.InputPath, "input image")
	fs.StringVarP(&opts.OutputPath, "out", "o", opts.OutputPath, "output image (png, jpeg, tiff, bmp)")
	fs.StringVar(&opts.ExportPath, "export", opts.ExportPath, "write every filter's preset to this file")
	fs.BoolVar(&opts.ExportFlags, "export-flags", opts.ExportFlags, "include the blocked flag in exported presets")
	fs.BoolVarP(&opts.Watch, "watch", "w", opts.Watch, "re-render whenever the settings file changes")
	fs.StringVar(&opts.LogLevel, "log-level", opts.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&opts.LogFormat, "log-format", opts.LogFormat, "log format (auto, console, json)")
	fs.IntVar(&opts.JPEGQuality, "jpeg-quality", opts.JPEGQuality, "JPEG output quality (1-100)")
	fs.DurationVar(&opts.ScriptTimeout, "script-timeout", opts.ScriptTimeout, "maximum script run time")
	showVersion := fs.BoolP("version", "v", false, "show version information")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "darkroom - filter pipeline runner\n\n")
		fmt.Fprintf(os.Stderr, "Usage: darkroom --layout FILE [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  darkroom -l layout.yaml -p look.toml -i in.jpg -o out.jpg\n")
		fmt.Fprintf(os.Stderr, "  darkroom -l layout.yaml -s settings.yaml -i in.png -o out.png --watch\n")
		fmt.Fprintf(os.Stderr, "  darkroom -l layout.yaml --script batch.lua --export look.yaml\n")
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return opts, true, nil
		}
		return opts, false, err
	}

	if *showVersion {
		fmt.Printf("darkroom %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		return opts, true, nil
	}

	if err := opts.Validate(); err != nil {
		return opts, false, err
	}
	return opts, false, nil
}
