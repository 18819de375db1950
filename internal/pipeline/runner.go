package pipeline

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dshills/darkroom/internal/metrics"
)

// ErrNoInput is returned by Run before SetInput was called.
var ErrNoInput = errors.New("pipeline has no input image")

// Position is a filter's place in the pipeline.
type Position struct {
	Tab  int
	Slot int
}

// Compare orders positions by tab, then slot.
func (p Position) Compare(o Position) int {
	if c := cmp.Compare(p.Tab, o.Tab); c != 0 {
		return c
	}
	return cmp.Compare(p.Slot, o.Slot)
}

// Stage is one executable filter. Run must not modify its input.
type Stage interface {
	UniqueName() string
	Pos() (tab, slot int)
	Run(img *image.RGBA) (*image.RGBA, error)
}

// Source supplies the pipeline layout.
type Source interface {
	// Stages returns the active stages in pipeline order.
	Stages() []Stage
	// Position locates any known filter, active or not.
	Position(uniqueName string) (Position, bool)
}

// Result describes one finished run.
type Result struct {
	RunID     uuid.UUID
	Output    *image.RGBA
	From      int
	StagesRun int
	Requests  []string
	Duration  time.Duration
}

type cacheEntry struct {
	name string
	out  *image.RGBA
}

// Runner executes the active stages. It is driven from one goroutine.
type Runner struct {
	queue   *Queue
	src     Source
	log     zerolog.Logger
	metrics *metrics.Metrics

	input  *image.RGBA
	dirty  bool
	cache  []cacheEntry
	output *image.RGBA
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the runner's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Runner) { r.log = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// NewRunner creates a runner draining q.
func NewRunner(q *Queue, src Source, opts ...Option) *Runner {
	r := &Runner{
		queue: q,
		src:   src,
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetInput replaces the source image and invalidates every cached stage.
func (r *Runner) SetInput(img *image.RGBA) {
	r.input = img
	r.cache = nil
	r.output = nil
	r.dirty = true
}

// Output returns the result of the last successful run.
func (r *Runner) Output() *image.RGBA {
	return r.output
}

// Pending reports whether a run would do any work.
func (r *Runner) Pending() bool {
	if r.input == nil {
		return false
	}
	return r.dirty || r.output == nil || r.queue.Len() > 0
}

// Run drains the queue and re-executes the stages from the earliest
// requested position, or from the first stage whose cached output no
// longer matches the layout. The context is checked between stages.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	if r.input == nil {
		return Result{}, ErrNoInput
	}

	res := Result{
		RunID:    uuid.New(),
		Requests: r.queue.Drain(),
	}
	started := time.Now()

	stages := r.src.Stages()
	start := r.startIndex(stages, res.Requests)
	res.From = start

	img := r.input
	if start > 0 {
		img = r.cache[start-1].out
	}
	cache := append([]cacheEntry(nil), r.cache[:start]...)

	var runErr error
	for _, st := range stages[start:] {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		out, err := st.Run(img)
		if err != nil {
			runErr = fmt.Errorf("stage %s: %w", st.UniqueName(), err)
			break
		}
		res.StagesRun++
		cache = append(cache, cacheEntry{name: st.UniqueName(), out: out})
		img = out
	}

	res.Duration = time.Since(started)
	r.metrics.RecordPipelineRun(res.StagesRun, res.Duration, runErr)

	// Stages that completed stay cached even when a later one failed
	r.cache = cache
	r.dirty = false
	if runErr != nil {
		r.log.Error().Err(runErr).Str("run", res.RunID.String()).Msg("pipeline run failed")
		return res, fmt.Errorf("pipeline run %s: %w", res.RunID, runErr)
	}

	r.output = img
	res.Output = img

	r.log.Debug().
		Str("run", res.RunID.String()).
		Strs("requests", res.Requests).
		Int("from", res.From).
		Int("stages", res.StagesRun).
		Dur("elapsed", res.Duration).
		Msg("pipeline run")
	return res, nil
}

// startIndex returns the first stage that must execute.
func (r *Runner) startIndex(stages []Stage, requests []string) int {
	if r.dirty {
		return 0
	}

	// First stage whose cached output does not belong to it
	start := len(stages)
	for i, st := range stages {
		if i >= len(r.cache) || r.cache[i].name != st.UniqueName() {
			start = i
			break
		}
	}

	earliest, ok := r.earliestRequest(requests)
	if !ok {
		return start
	}
	for i, st := range stages[:start] {
		tab, slot := st.Pos()
		if (Position{tab, slot}).Compare(earliest) >= 0 {
			return i
		}
	}
	return start
}

func (r *Runner) earliestRequest(requests []string) (Position, bool) {
	var (
		earliest Position
		found    bool
	)
	for _, name := range requests {
		pos, ok := r.src.Position(name)
		if !ok {
			r.log.Debug().Str("filter", name).Msg("run request for unknown filter")
			continue
		}
		if !found || pos.Compare(earliest) < 0 {
			earliest, found = pos, true
		}
	}
	return earliest, found
}
