// Package telemetry wires the controller's per-ACK model into OpenTelemetry:
// a tracer provider (OTLP/HTTP export when Config.OTLPEndpoint is set) and a
// meter with instruments for cwnd, pacing rate, bandwidth and min-RTT
// (Prometheus bridge when Config.PrometheusAddr is set). Spans are created
// only through StartSpan; the controller itself opens none. cmd/bbrtrace
// sets OTLPEndpoint from -otlp-endpoint and never sets PrometheusAddr.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	otelmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// Manager owns the tracer/meter providers for one process lifetime.
type Manager struct {
	tracer   trace.Tracer
	meter    metric.Meter
	shutdown func(context.Context) error
}

// Config selects how telemetry is exported.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	OTLPEndpoint   string // non-empty enables OTLP/HTTP trace export
	PrometheusAddr string // non-empty enables the OTel->Prometheus bridge
	SampleRate     float64
}

// NewManager builds tracer and meter providers per cfg and installs them as
// the global providers, matching the teacher's single-process-wide setup.
func NewManager(ctx context.Context, cfg Config) (*Manager, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("build telemetry resource: %w", err)
	}

	var tp *sdktrace.TracerProvider
	if cfg.OTLPEndpoint != "" {
		exporter, err := otlptracehttp.New(ctx,
			otlptracehttp.WithEndpoint(cfg.OTLPEndpoint),
			otlptracehttp.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("create OTLP exporter: %w", err)
		}
		tp = sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRate)),
		)
	} else {
		tp = sdktrace.NewTracerProvider(
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRate)),
		)
	}

	var mp *otelmetric.MeterProvider
	if cfg.PrometheusAddr != "" {
		exporter, err := otelprom.New()
		if err != nil {
			return nil, fmt.Errorf("create Prometheus bridge: %w", err)
		}
		mp = otelmetric.NewMeterProvider(
			otelmetric.WithReader(exporter),
			otelmetric.WithResource(res),
		)
	} else {
		mp = otelmetric.NewMeterProvider(otelmetric.WithResource(res))
	}

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)

	shutdown := func(ctx context.Context) error {
		if err := tp.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown tracer provider: %w", err)
		}
		if err := mp.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown meter provider: %w", err)
		}
		return nil
	}

	return &Manager{
		tracer:   tp.Tracer(cfg.ServiceName),
		meter:    mp.Meter(cfg.ServiceName),
		shutdown: shutdown,
	}, nil
}

// StartSpan starts a span around one unit of work (typically one ACK
// pipeline run, or one full scenario).
func (m *Manager) StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return m.tracer.Start(ctx, name, opts...)
}

// Shutdown flushes and closes both providers.
func (m *Manager) Shutdown(ctx context.Context) error {
	return m.shutdown(ctx)
}

// CCMetrics is the controller-facing OTel meter instrument set: one gauge
// per path-model output plus histograms for per-ACK samples.
type CCMetrics struct {
	cwnd       metric.Float64Gauge
	pacingRate metric.Float64Gauge
	bandwidth  metric.Float64Gauge
	minRTT     metric.Float64Gauge
	rttSample  metric.Float64Histogram
	deliveryRate metric.Float64Histogram
}

// NewCCMetrics creates the controller's gauge and histogram instruments
// against the manager's meter.
func NewCCMetrics(m *Manager) (*CCMetrics, error) {
	cwnd, err := m.meter.Float64Gauge("bbr.cwnd_bytes", metric.WithDescription("Current congestion window in bytes"))
	if err != nil {
		return nil, fmt.Errorf("create cwnd gauge: %w", err)
	}
	pacingRate, err := m.meter.Float64Gauge("bbr.pacing_rate_bps", metric.WithDescription("Current pacing rate in bytes/second"))
	if err != nil {
		return nil, fmt.Errorf("create pacing rate gauge: %w", err)
	}
	bandwidth, err := m.meter.Float64Gauge("bbr.bandwidth_bps", metric.WithDescription("Current bandwidth estimate in bytes/second"))
	if err != nil {
		return nil, fmt.Errorf("create bandwidth gauge: %w", err)
	}
	minRTT, err := m.meter.Float64Gauge("bbr.min_rtt_ms", metric.WithDescription("Windowed minimum RTT in milliseconds"))
	if err != nil {
		return nil, fmt.Errorf("create min rtt gauge: %w", err)
	}
	rttSample, err := m.meter.Float64Histogram("bbr.rtt_sample_seconds", metric.WithDescription("Per-ACK RTT sample distribution"))
	if err != nil {
		return nil, fmt.Errorf("create rtt histogram: %w", err)
	}
	deliveryRate, err := m.meter.Float64Histogram("bbr.delivery_rate_bps", metric.WithDescription("Per-ACK delivery rate sample distribution"))
	if err != nil {
		return nil, fmt.Errorf("create delivery rate histogram: %w", err)
	}

	return &CCMetrics{
		cwnd:         cwnd,
		pacingRate:   pacingRate,
		bandwidth:    bandwidth,
		minRTT:       minRTT,
		rttSample:    rttSample,
		deliveryRate: deliveryRate,
	}, nil
}

// Record updates every gauge for the path identified by pathID, and feeds
// the two histograms with this ACK's raw samples.
func (c *CCMetrics) Record(ctx context.Context, pathID string, cwnd, pacingRate, bandwidth float64, minRTT, rttSample time.Duration, deliveryRate float64) {
	attrs := metric.WithAttributes(attribute.String("path_id", pathID))
	c.cwnd.Record(ctx, cwnd, attrs)
	c.pacingRate.Record(ctx, pacingRate, attrs)
	c.bandwidth.Record(ctx, bandwidth, attrs)
	c.minRTT.Record(ctx, float64(minRTT.Microseconds())/1000.0, attrs)
	if rttSample > 0 {
		c.rttSample.Record(ctx, rttSample.Seconds(), attrs)
	}
	if deliveryRate > 0 {
		c.deliveryRate.Record(ctx, deliveryRate, attrs)
	}
}
