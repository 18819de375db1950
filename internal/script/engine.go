package script

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/darkroom/internal/filter"
	"github.com/dshills/darkroom/internal/metrics"
)

// DefaultTimeout bounds a single script run.
const DefaultTimeout = 30 * time.Second

// ErrUnknownFilter is raised into Lua for a name the host does not know.
var ErrUnknownFilter = errors.New("unknown filter")

// Host exposes the filters a script may drive.
type Host interface {
	Filter(uniqueName string) (*filter.Filter, bool)
	FilterNames() []string
	ActiveNames() []string
}

// Error reports a failed script.
type Error struct {
	Script string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("script %s: %v", e.Script, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Engine executes scripts.
type Engine struct {
	host    Host
	log     zerolog.Logger
	metrics *metrics.Metrics
	timeout time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger receiving darkroom.log and print output.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithTimeout bounds each run. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// New creates an engine driving host.
func New(host Host, opts ...Option) *Engine {
	e := &Engine{
		host:    host,
		log:     zerolog.Nop(),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RunFile executes the script at path.
func (e *Engine) RunFile(ctx context.Context, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return &Error{Script: path, Err: err}
	}
	return e.RunString(ctx, path, string(src))
}

// RunString executes src. name only labels errors and log lines.
func (e *Engine) RunString(ctx context.Context, name, src string) (err error) {
	defer func() { e.metrics.RecordScriptRun(err) }()

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	L := newState()
	defer L.Close()
	L.SetContext(ctx)

	m := &module{host: e.host, log: e.log.With().Str("script", name).Logger()}
	m.register(L)

	started := time.Now()
	runErr := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("lua panic: %v", r)
			}
		}()
		return L.DoString(src)
	}()
	if runErr != nil {
		if cerr := ctx.Err(); cerr != nil {
			runErr = fmt.Errorf("%w: %v", cerr, runErr)
		}
		return &Error{Script: name, Err: runErr}
	}

	m.log.Debug().Dur("elapsed", time.Since(started)).Msg("script finished")
	return nil
}

// newState opens a state with only the libraries that cannot reach the
// host system.
func newState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}
