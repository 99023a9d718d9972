package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records access-gate decisions.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordDecision records a single gate evaluation. Status is the
	// HTTP status the gate decided on (http.StatusOK when the request
	// was forwarded).
	RecordDecision(ctx context.Context, gate string, status int, duration time.Duration)
}

// metricsImpl is the OpenTelemetry-backed Metrics implementation.
type metricsImpl struct {
	decisions    metric.Int64Counter
	denials      metric.Int64Counter
	durationHist metric.Float64Histogram
}

// NewMetrics creates a Metrics instance recording to the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	decisions, err := meter.Int64Counter(
		"auth.gate.decisions",
		metric.WithDescription("Total number of gate evaluations"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	denials, err := meter.Int64Counter(
		"auth.gate.denials",
		metric.WithDescription("Gate evaluations that ended in a 4xx/5xx response"),
		metric.WithUnit("{denial}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"auth.gate.duration_ms",
		metric.WithDescription("Gate evaluation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		decisions:    decisions,
		denials:      denials,
		durationHist: durationHist,
	}, nil
}

// RecordDecision records one gate evaluation.
func (m *metricsImpl) RecordDecision(ctx context.Context, gate string, status int, duration time.Duration) {
	opt := metric.WithAttributes(
		attribute.String("gate", gate),
		attribute.Int("http.status_code", status),
	)

	m.decisions.Add(ctx, 1, opt)
	if status >= 400 {
		m.denials.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Microseconds())/1000.0, opt)
}

// nopMetrics discards all recordings.
type nopMetrics struct{}

// NewNopMetrics returns a Metrics implementation that does nothing.
func NewNopMetrics() Metrics { return nopMetrics{} }

func (nopMetrics) RecordDecision(context.Context, string, int, time.Duration) {}

var (
	_ Metrics = (*metricsImpl)(nil)
	_ Metrics = nopMetrics{}
)
