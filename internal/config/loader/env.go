package loader

import (
	"os"
	"strconv"
	"strings"
)

// EnvLoader loads option overrides from environment variables.
type EnvLoader struct {
	prefix  string            // Environment variable prefix (e.g., "DARKROOM_")
	mapping map[string]string // Env var -> option name
}

// NewEnvLoader creates a new environment variable loader.
// The prefix should include the trailing underscore (e.g., "DARKROOM_").
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: make(map[string]string),
	}
}

// AddMapping maps an environment variable to an option name.
func (l *EnvLoader) AddMapping(envVar, option string) {
	l.mapping[envVar] = option
}

// Load returns the values of every mapped variable that is set, plus any
// other prefixed variable under its derived name (DARKROOM_LOG_LEVEL ->
// log-level). Empty values count as set.
func (l *EnvLoader) Load() map[string]any {
	out := make(map[string]any)

	for env, option := range l.mapping {
		if val, ok := os.LookupEnv(env); ok {
			out[option] = parseValue(val)
		}
	}

	for _, kv := range os.Environ() {
		name, val, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, l.prefix) {
			continue
		}
		if _, mapped := l.mapping[name]; mapped {
			continue
		}
		out[l.envToOption(name)] = parseValue(val)
	}

	return out
}

// envToOption converts DARKROOM_LOG_LEVEL to log-level.
func (l *EnvLoader) envToOption(env string) string {
	name := strings.TrimPrefix(env, l.prefix)
	return strings.ReplaceAll(strings.ToLower(name), "_", "-")
}

// parseValue attempts to parse the string value into an appropriate type.
func parseValue(s string) any {
	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return s
}
