package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheusMetricsWithRegistry(reg)

	m.Observe("ProbeBw", 65536, 12_000_000, 12_500_000, 30*time.Millisecond, 131072, 65536, 0.01, 3)
	m.RecordRTT(30 * time.Millisecond)
	m.RecordDeliveryRate(12_500_000)

	if got := testutil.ToFloat64(m.Cwnd); got != 65536 {
		t.Errorf("Cwnd = %v, want 65536", got)
	}
	if got := testutil.ToFloat64(m.RoundCount); got != 3 {
		t.Errorf("RoundCount = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.State.WithLabelValues("ProbeBw")); got != 1 {
		t.Errorf("State[ProbeBw] = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.State.WithLabelValues("Drain")); got != 0 {
		t.Errorf("State[Drain] = %v, want 0", got)
	}
}

func TestPrometheusMetricsInfiniteSentinel(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheusMetricsWithRegistry(reg)

	m.Observe("Startup", 4096, 0, 0, 0, ^uint64(0), ^uint64(0), 0, 0)

	if got := testutil.ToFloat64(m.InflightHi); got != 0 {
		t.Errorf("InflightHi with sentinel = %v, want 0", got)
	}
}
