package metrics

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_FilterCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordPipeRunRequest("Exposure")
	m.RecordPipeRunRequest("Exposure")
	m.RecordActivationChange("Exposure", true)
	m.RecordActivationChange("Exposure", false)
	m.SetActiveFilters(3)

	if got := testutil.ToFloat64(m.pipeRunRequests.WithLabelValues("Exposure")); got != 2 {
		t.Errorf("pipe run requests = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.activationChanges.WithLabelValues("Exposure", "active")); got != 1 {
		t.Errorf("activations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.activeFilters); got != 3 {
		t.Errorf("active filters = %v, want 3", got)
	}

	want := `
# HELP darkroom_filter_activation_changes_total Filter activation flips, labelled by the new state.
# TYPE darkroom_filter_activation_changes_total counter
darkroom_filter_activation_changes_total{filter="Exposure",state="active"} 1
darkroom_filter_activation_changes_total{filter="Exposure",state="inactive"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(want), "darkroom_filter_activation_changes_total"); err != nil {
		t.Error(err)
	}
}

func TestMetrics_PresetAndPipeline(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordPresetImport("Curve", 0)
	m.RecordPresetImport("Curve", 2)
	m.RecordPipelineRun(4, 10*time.Millisecond, nil)
	m.RecordPipelineRun(1, time.Millisecond, errors.New("boom"))
	m.RecordScriptRun(nil)
	m.RecordSettingsReload()

	if got := testutil.ToFloat64(m.presetImports); got != 2 {
		t.Errorf("imports = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.presetFieldErrors.WithLabelValues("Curve")); got != 2 {
		t.Errorf("field errors = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.pipelineRuns.WithLabelValues("error")); got != 1 {
		t.Errorf("failed runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.stagesRun); got != 5 {
		t.Errorf("stages = %v, want 5", got)
	}
	if got := testutil.CollectAndCount(m.pipelineDuration); got != 1 {
		t.Errorf("duration series = %d, want 1", got)
	}
	if got := testutil.ToFloat64(m.settingsReloads); got != 1 {
		t.Errorf("reloads = %v, want 1", got)
	}
}

func TestMetrics_Nil(t *testing.T) {
	var m *Metrics

	// None of these may panic
	m.RecordPipeRunRequest("x")
	m.RecordActivationChange("x", true)
	m.SetActiveFilters(1)
	m.RecordPresetImport("x", 1)
	m.RecordPipelineRun(1, time.Second, nil)
	m.RecordScriptRun(nil)
	m.RecordSettingsReload()
}
