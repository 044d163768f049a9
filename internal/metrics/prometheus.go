// Package metrics exposes the controller's path model as Prometheus and
// HDR-histogram instruments, in the teacher repository's direct-gauges
// idiom (client_golang, no OTel indirection for the always-on exporter).
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics holds the direct gauges and histograms the CLI exports
// on /metrics when -prometheus-addr is passed. Unlike the OTel meter in
// internal/telemetry (which is wired only when an OTLP/Prometheus bridge is
// configured), these are always registered once the flag is on.
type PrometheusMetrics struct {
	Cwnd              prometheus.Gauge
	PacingRateBps     prometheus.Gauge
	BandwidthBps      prometheus.Gauge
	MinRTTMs          prometheus.Gauge
	InflightHi        prometheus.Gauge
	InflightLo        prometheus.Gauge
	LossRateSmoothed  prometheus.Gauge
	RoundCount        prometheus.Counter
	State             *prometheus.GaugeVec
	RTTHistogram      prometheus.Histogram
	BandwidthHistogram prometheus.Histogram
}

// NewPrometheusMetrics builds and registers a fresh set of instruments
// against the default registry.
func NewPrometheusMetrics() *PrometheusMetrics {
	return NewPrometheusMetricsWithRegistry(prometheus.DefaultRegisterer)
}

// NewPrometheusMetricsWithRegistry is the same, against an explicit
// registerer — used by tests so each case gets an isolated registry.
func NewPrometheusMetricsWithRegistry(reg prometheus.Registerer) *PrometheusMetrics {
	m := &PrometheusMetrics{
		Cwnd: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bbr_cwnd_bytes",
			Help: "Current congestion window in bytes.",
		}),
		PacingRateBps: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bbr_pacing_rate_bytes_per_second",
			Help: "Current pacing rate in bytes per second.",
		}),
		BandwidthBps: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bbr_bandwidth_bytes_per_second",
			Help: "Current bandwidth estimate (bw) in bytes per second.",
		}),
		MinRTTMs: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bbr_min_rtt_milliseconds",
			Help: "Windowed minimum RTT in milliseconds.",
		}),
		InflightHi: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bbr_inflight_hi_bytes",
			Help: "Upper bound on in-flight bytes from bandwidth probing.",
		}),
		InflightLo: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bbr_inflight_lo_bytes",
			Help: "Lower bound on in-flight bytes from congestion signals.",
		}),
		LossRateSmoothed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bbr_loss_rate_smoothed",
			Help: "EWMA-smoothed loss rate (lost/delivered).",
		}),
		RoundCount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bbr_round_count_total",
			Help: "Number of RTT-sized rounds observed.",
		}),
		State: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "bbr_state",
			Help: "1 for the currently active top-level state, 0 otherwise.",
		}, []string{"state"}),
		RTTHistogram: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bbr_rtt_sample_seconds",
			Help:    "Distribution of per-ACK RTT samples.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		}),
		BandwidthHistogram: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bbr_delivery_rate_bytes_per_second",
			Help:    "Distribution of per-ACK delivery-rate samples.",
			Buckets: prometheus.ExponentialBuckets(1<<13, 2, 16),
		}),
	}
	reg.MustRegister(m.Cwnd, m.PacingRateBps, m.BandwidthBps, m.MinRTTMs,
		m.InflightHi, m.InflightLo, m.LossRateSmoothed, m.RoundCount,
		m.State, m.RTTHistogram, m.BandwidthHistogram)
	return m
}

// states lists every top-level mode name the State gauge-vec tracks; kept
// in one place so Observe and tests agree on the label set.
var states = []string{"Startup", "StartupLongRtt", "Drain", "ProbeBw", "ProbeRtt"}

// Observe records one ACK's worth of path-model values. bandwidth and
// pacingRate are bytes/second, cwnd/inflightHi/inflightLo are bytes,
// minRTT is a duration, lossRateSmoothed is a fraction in [0,1].
func (m *PrometheusMetrics) Observe(state string, cwnd, pacingRate, bandwidth float64, minRTT time.Duration, inflightHi, inflightLo uint64, lossRateSmoothed float64, roundDelta uint64) {
	m.Cwnd.Set(cwnd)
	m.PacingRateBps.Set(pacingRate)
	m.BandwidthBps.Set(bandwidth)
	m.MinRTTMs.Set(float64(minRTT.Microseconds()) / 1000.0)
	m.InflightHi.Set(boundedFloat(inflightHi))
	m.InflightLo.Set(boundedFloat(inflightLo))
	m.LossRateSmoothed.Set(lossRateSmoothed)
	if roundDelta > 0 {
		m.RoundCount.Add(float64(roundDelta))
	}
	for _, s := range states {
		if s == state {
			m.State.WithLabelValues(s).Set(1)
		} else {
			m.State.WithLabelValues(s).Set(0)
		}
	}
}

// RecordRTT feeds the RTT histogram; call once per ACK alongside Observe.
func (m *PrometheusMetrics) RecordRTT(rtt time.Duration) {
	if rtt > 0 {
		m.RTTHistogram.Observe(rtt.Seconds())
	}
}

// RecordDeliveryRate feeds the delivery-rate histogram.
func (m *PrometheusMetrics) RecordDeliveryRate(bps float64) {
	if bps > 0 {
		m.BandwidthHistogram.Observe(bps)
	}
}

// boundedFloat converts a byte count that may carry the package's "infinite"
// sentinel (^uint64(0)) into a value Prometheus can store without
// overflowing; the sentinel collapses to 0 rather than a huge spike.
func boundedFloat(v uint64) float64 {
	if v == ^uint64(0) {
		return 0
	}
	return float64(v)
}
