// Package metrics provides Prometheus instrumentation for the filter engine
// and the pipeline.
//
// All collectors are registered on an injected registerer so tests and
// embedders can use a private registry. A nil *Metrics is valid and
// records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "darkroom"

// Metrics holds every collector the application records to.
type Metrics struct {
	pipeRunRequests   *prometheus.CounterVec
	activationChanges *prometheus.CounterVec
	presetImports     prometheus.Counter
	presetFieldErrors *prometheus.CounterVec
	pipelineRuns      *prometheus.CounterVec
	pipelineDuration  prometheus.Histogram
	stagesRun         prometheus.Counter
	activeFilters     prometheus.Gauge
	scriptRuns        *prometheus.CounterVec
	settingsReloads   prometheus.Counter
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		pipeRunRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "filter",
				Name:      "pipe_run_requests_total",
				Help:      "Pipeline run requests issued by filters.",
			},
			[]string{"filter"},
		),
		activationChanges: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "filter",
				Name:      "activation_changes_total",
				Help:      "Filter activation flips, labelled by the new state.",
			},
			[]string{"filter", "state"},
		),
		presetImports: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "preset",
				Name:      "imports_total",
				Help:      "Filter presets imported.",
			},
		),
		presetFieldErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "preset",
				Name:      "field_errors_total",
				Help:      "Preset fields rejected during import.",
			},
			[]string{"filter"},
		),
		pipelineRuns: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "runs_total",
				Help:      "Pipeline runs, labelled by result.",
			},
			[]string{"result"},
		),
		pipelineDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "run_duration_seconds",
				Help:      "Wall time of pipeline runs.",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
			},
		),
		stagesRun: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "stages_run_total",
				Help:      "Filter stages executed by the pipeline runner.",
			},
		),
		activeFilters: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "filter",
				Name:      "active",
				Help:      "Number of filters currently in the active list.",
			},
		),
		scriptRuns: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "script",
				Name:      "runs_total",
				Help:      "Lua script executions, labelled by result.",
			},
			[]string{"result"},
		),
		settingsReloads: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "settings",
				Name:      "reloads_total",
				Help:      "Settings file reloads triggered by the watcher.",
			},
		),
	}
}

// RecordPipeRunRequest counts a pipeline run request from filter.
func (m *Metrics) RecordPipeRunRequest(filter string) {
	if m == nil {
		return
	}
	m.pipeRunRequests.WithLabelValues(filter).Inc()
}

// RecordActivationChange counts an activation flip.
func (m *Metrics) RecordActivationChange(filter string, active bool) {
	if m == nil {
		return
	}
	state := "inactive"
	if active {
		state = "active"
	}
	m.activationChanges.WithLabelValues(filter, state).Inc()
}

// SetActiveFilters sets the active list length.
func (m *Metrics) SetActiveFilters(n int) {
	if m == nil {
		return
	}
	m.activeFilters.Set(float64(n))
}

// RecordPresetImport counts one import and the fields it rejected.
func (m *Metrics) RecordPresetImport(filter string, fieldErrors int) {
	if m == nil {
		return
	}
	m.presetImports.Inc()
	if fieldErrors > 0 {
		m.presetFieldErrors.WithLabelValues(filter).Add(float64(fieldErrors))
	}
}

// RecordPipelineRun records a finished pipeline run.
func (m *Metrics) RecordPipelineRun(stages int, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.pipelineRuns.WithLabelValues(result).Inc()
	m.pipelineDuration.Observe(elapsed.Seconds())
	m.stagesRun.Add(float64(stages))
}

// RecordScriptRun records a script execution.
func (m *Metrics) RecordScriptRun(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.scriptRuns.WithLabelValues(result).Inc()
}

// RecordSettingsReload counts a settings file reload.
func (m *Metrics) RecordSettingsReload() {
	if m == nil {
		return
	}
	m.settingsReloads.Inc()
}
