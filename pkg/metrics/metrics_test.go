package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(WithRegistry(reg), WithNamespace("test"))

	m.RecordWrite(true)
	m.RecordWrite(true)
	m.RecordWrite(false)
	m.RecordFrame("write")
	m.RecordFrameError()
	m.BackendConnected(1)

	if got := testutil.ToFloat64(m.WritesTotal.WithLabelValues(OutcomeApplied)); got != 2 {
		t.Errorf("expected 2 applied writes, got %v", got)
	}
	if got := testutil.ToFloat64(m.WritesTotal.WithLabelValues(OutcomeUnknown)); got != 1 {
		t.Errorf("expected 1 unknown write, got %v", got)
	}
	if got := testutil.ToFloat64(m.ConnectedBackends); got != 1 {
		t.Errorf("expected 1 connected backend, got %v", got)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.RecordWrite(true)
	m.RecordFrame("ping")
	m.RecordFrameError()
	m.RecordWriteDuration(0.1)
	m.BackendConnected(-1)
}

func TestIsolatedRegistries(t *testing.T) {
	a := New(WithRegistry(prometheus.NewRegistry()))
	b := New(WithRegistry(prometheus.NewRegistry()))

	a.RecordWrite(true)
	if got := testutil.ToFloat64(b.WritesTotal.WithLabelValues(OutcomeApplied)); got != 0 {
		t.Errorf("registries must be isolated, got %v", got)
	}
}
