package metrics

import (
	"fmt"
	"sync"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// HDRMetrics accumulates high-resolution percentile distributions across a
// scenario run: RTT samples, delivery-rate samples and the pacing rate the
// controller asked for. The CLI records into them; their percentiles are
// read through the *Stats methods, separate from the live Prometheus
// gauges in prometheus.go which only hold the latest value.
type HDRMetrics struct {
	mu sync.RWMutex

	rttHist       *hdrhistogram.Histogram
	bandwidthHist *hdrhistogram.Histogram
	pacingHist    *hdrhistogram.Histogram
	cwndHist      *hdrhistogram.Histogram
}

// NewHDRMetrics builds the four histograms used during a scenario run.
// Ranges are picked for satellite-to-datacenter RTTs (1us-10s) and
// dial-up-to-80Gbps rates (1B/s-10GB/s).
func NewHDRMetrics() *HDRMetrics {
	return &HDRMetrics{
		rttHist:       hdrhistogram.New(1, 10_000_000, 3),
		bandwidthHist: hdrhistogram.New(1, 10_000_000_000, 3),
		pacingHist:    hdrhistogram.New(1, 10_000_000_000, 3),
		cwndHist:      hdrhistogram.New(1, 1_000_000_000, 3),
	}
}

// RecordRTT records an RTT sample in microseconds.
func (h *HDRMetrics) RecordRTT(rttMicros int64) {
	if rttMicros <= 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rttHist.RecordValue(rttMicros)
}

// RecordBandwidth records a delivery-rate sample in bytes/second.
func (h *HDRMetrics) RecordBandwidth(bps float64) {
	if bps <= 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.bandwidthHist.RecordValue(int64(bps))
}

// RecordPacingRate records the controller's pacing-rate output in
// bytes/second.
func (h *HDRMetrics) RecordPacingRate(bps float64) {
	if bps <= 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pacingHist.RecordValue(int64(bps))
}

// RecordCwnd records the controller's cwin output in bytes.
func (h *HDRMetrics) RecordCwnd(bytes uint64) {
	if bytes == 0 || bytes == ^uint64(0) {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cwndHist.RecordValue(int64(bytes))
}

// PercentileStats is the common shape returned for each tracked quantity.
type PercentileStats struct {
	P50, P90, P95, P99   float64
	Min, Max, Mean        float64
	Count                int64
}

func snapshot(h *hdrhistogram.Histogram, scale float64) PercentileStats {
	if h.TotalCount() == 0 {
		return PercentileStats{}
	}
	return PercentileStats{
		P50:   float64(h.ValueAtQuantile(50)) * scale,
		P90:   float64(h.ValueAtQuantile(90)) * scale,
		P95:   float64(h.ValueAtQuantile(95)) * scale,
		P99:   float64(h.ValueAtQuantile(99)) * scale,
		Min:   float64(h.Min()) * scale,
		Max:   float64(h.Max()) * scale,
		Mean:  h.Mean() * scale,
		Count: h.TotalCount(),
	}
}

// RTTStats returns RTT percentiles in milliseconds.
func (h *HDRMetrics) RTTStats() PercentileStats {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return snapshot(h.rttHist, 1.0/1000.0)
}

// BandwidthStats returns delivery-rate percentiles in Mbps.
func (h *HDRMetrics) BandwidthStats() PercentileStats {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return snapshot(h.bandwidthHist, 8.0/1_000_000.0)
}

// PacingRateStats returns pacing-rate percentiles in Mbps.
func (h *HDRMetrics) PacingRateStats() PercentileStats {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return snapshot(h.pacingHist, 8.0/1_000_000.0)
}

// CwndStats returns cwin percentiles in KiB.
func (h *HDRMetrics) CwndStats() PercentileStats {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return snapshot(h.cwndHist, 1.0/1024.0)
}

// String renders a one-line summary of the percentiles.
func (s PercentileStats) String() string {
	return fmt.Sprintf("p50=%.2f p90=%.2f p95=%.2f p99=%.2f min=%.2f max=%.2f mean=%.2f n=%d",
		s.P50, s.P90, s.P95, s.P99, s.Min, s.Max, s.Mean, s.Count)
}
