package app

import (
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/dshills/darkroom/internal/config/loader"
	"github.com/dshills/darkroom/internal/script"
)

// EnvPrefix is the prefix of environment variables that override option
// defaults (DARKROOM_SETTINGS, DARKROOM_LOG_LEVEL, ...).
const EnvPrefix = "DARKROOM_"

// Options configures the application.
type Options struct {
	// LayoutPath names the YAML or TOML file listing tabs and filters.
	LayoutPath string

	// SettingsPath holds the hidden and favourite lists. Optional.
	SettingsPath string

	// PresetPath is imported after the pipeline is built. Optional.
	PresetPath string

	// ScriptPath is a Lua script run after the preset import. Optional.
	ScriptPath string

	// InputPath and OutputPath are the source and rendered images.
	InputPath  string
	OutputPath string

	// ExportPath receives every saveable filter's preset after the run.
	ExportPath string

	// ExportFlags includes the blocked flag in exported presets.
	ExportFlags bool

	// Watch keeps running and re-renders on settings changes.
	Watch bool

	// LogLevel is a zerolog level name.
	LogLevel string

	// LogFormat is auto, console or json.
	LogFormat string

	// JPEGQuality for JPEG output (1..100).
	JPEGQuality int

	// ScriptTimeout bounds the script run.
	ScriptTimeout time.Duration

	// Debounce coalesces bursts of settings file writes.
	Debounce time.Duration

	// LogOutput defaults to stderr. Logger, when set, replaces the
	// logger built from LogOutput, LogLevel and LogFormat.
	LogOutput io.Writer
	Logger    *zerolog.Logger

	// Registerer receives the metrics. A private registry is used when nil.
	Registerer prometheus.Registerer

	// FS is the file system for layout, settings and preset files.
	FS loader.FileSystem
}

// DefaultOptions returns the defaults used before flags and environment
// are applied.
func DefaultOptions() Options {
	return Options{
		LogLevel:      "info",
		LogFormat:     LogFormatAuto,
		JPEGQuality:   92,
		ScriptTimeout: script.DefaultTimeout,
		Debounce:      100 * time.Millisecond,
	}
}

// ApplyEnv overrides fields from DARKROOM_* variables. Unknown variables
// are ignored.
func (o *Options) ApplyEnv(env *loader.EnvLoader) error {
	for key, raw := range env.Load() {
		var err error
		switch key {
		case "layout":
			o.LayoutPath = fmt.Sprint(raw)
		case "settings":
			o.SettingsPath = fmt.Sprint(raw)
		case "preset":
			o.PresetPath = fmt.Sprint(raw)
		case "script":
			o.ScriptPath = fmt.Sprint(raw)
		case "log-level":
			o.LogLevel = fmt.Sprint(raw)
		case "log-format":
			o.LogFormat = fmt.Sprint(raw)
		case "watch":
			o.Watch, err = envBool(raw)
		case "jpeg-quality":
			o.JPEGQuality, err = envInt(raw)
		case "script-timeout":
			o.ScriptTimeout, err = time.ParseDuration(fmt.Sprint(raw))
		}
		if err != nil {
			return fmt.Errorf("%w: %s%s: %v", ErrInvalidOption, EnvPrefix, key, err)
		}
	}
	return nil
}

// NewEnvLoader returns the loader for the application's variables.
func NewEnvLoader() *loader.EnvLoader {
	return loader.NewEnvLoader(EnvPrefix)
}

// Validate reports options that cannot work together.
func (o *Options) Validate() error {
	if o.LayoutPath == "" {
		return fmt.Errorf("%w: a layout file is required", ErrInvalidOption)
	}
	if o.OutputPath != "" && o.InputPath == "" {
		return fmt.Errorf("%w: an output image needs an input image", ErrInvalidOption)
	}
	if o.Watch && o.SettingsPath == "" {
		return fmt.Errorf("%w: watch needs a settings file", ErrInvalidOption)
	}
	if o.JPEGQuality < 1 || o.JPEGQuality > 100 {
		return fmt.Errorf("%w: jpeg quality %d", ErrInvalidOption, o.JPEGQuality)
	}
	return nil
}

func envBool(raw any) (bool, error) {
	b, ok := raw.(bool)
	if !ok {
		return false, fmt.Errorf("want a boolean, got %q", fmt.Sprint(raw))
	}
	return b, nil
}

func envInt(raw any) (int, error) {
	i, ok := raw.(int64)
	if !ok {
		return 0, fmt.Errorf("want an integer, got %q", fmt.Sprint(raw))
	}
	return int(i), nil
}
