package app

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestOptions_ApplyEnv(t *testing.T) {
	t.Setenv("DARKROOM_SETTINGS", "/tmp/settings.yaml")
	t.Setenv("DARKROOM_LOG_LEVEL", "debug")
	t.Setenv("DARKROOM_WATCH", "on")
	t.Setenv("DARKROOM_JPEG_QUALITY", "80")
	t.Setenv("DARKROOM_SCRIPT_TIMEOUT", "2s")

	opts := DefaultOptions()
	if err := opts.ApplyEnv(NewEnvLoader()); err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}
	if opts.SettingsPath != "/tmp/settings.yaml" || opts.LogLevel != "debug" {
		t.Errorf("paths not applied: %+v", opts)
	}
	if !opts.Watch || opts.JPEGQuality != 80 || opts.ScriptTimeout != 2*time.Second {
		t.Errorf("typed values not applied: watch=%v quality=%d timeout=%v",
			opts.Watch, opts.JPEGQuality, opts.ScriptTimeout)
	}
}

func TestOptions_ApplyEnvInvalid(t *testing.T) {
	t.Setenv("DARKROOM_JPEG_QUALITY", "high")
	opts := DefaultOptions()
	if err := opts.ApplyEnv(NewEnvLoader()); !errors.Is(err, ErrInvalidOption) {
		t.Errorf("error = %v, want ErrInvalidOption", err)
	}
}

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Options)
		ok     bool
	}{
		{"valid", func(o *Options) {}, true},
		{"no layout", func(o *Options) { o.LayoutPath = "" }, false},
		{"output without input", func(o *Options) { o.OutputPath = "out.png" }, false},
		{"watch without settings", func(o *Options) { o.Watch = true }, false},
		{"watch with settings", func(o *Options) { o.Watch = true; o.SettingsPath = "s.toml" }, true},
		{"quality", func(o *Options) { o.JPEGQuality = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := DefaultOptions()
			o.LayoutPath = "layout.yaml"
			tt.modify(&o)
			err := o.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate = %v, want nil", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidOption) {
				t.Errorf("Validate = %v, want ErrInvalidOption", err)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger(&buf, "warn", LogFormatAuto)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	log.Info().Msg("hidden")
	log.Warn().Str("filter", "Exposure1").Msg("shown")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("non-terminal output is not JSON: %v", err)
	}
	if entry["filter"] != "Exposure1" || entry["level"] != "warn" {
		t.Errorf("entry = %v", entry)
	}

	if _, err := NewLogger(&buf, "loud", LogFormatJSON); !errors.Is(err, ErrInvalidOption) {
		t.Errorf("bad level error = %v, want ErrInvalidOption", err)
	}
	if _, err := NewLogger(&buf, "info", "xml"); !errors.Is(err, ErrInvalidOption) {
		t.Errorf("bad format error = %v, want ErrInvalidOption", err)
	}
}
