package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/janreigtorra/castellerq"

// Metrics counts requests per route and records end-to-end latency. It
// reads from the global MeterProvider, which is the noop implementation
// unless a real one is registered, so recording is always safe to call.
type Metrics struct {
	requestTotal    metric.Int64Counter
	requestDuration metric.Float64Histogram
	errorTotal      metric.Int64Counter
}

// NewMetrics builds a Metrics instrument set against the global meter.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(instrumentationName)

	requestTotal, err := meter.Int64Counter("castellerq.question.total",
		metric.WithDescription("Total number of processed questions"),
		metric.WithUnit("{request}"))
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram("castellerq.question.duration",
		metric.WithDescription("End-to-end question processing latency"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}

	errorTotal, err := meter.Int64Counter("castellerq.question.errors",
		metric.WithDescription("Total number of failed questions"),
		metric.WithUnit("{request}"))
	if err != nil {
		return nil, err
	}

	return &Metrics{requestTotal: requestTotal, requestDuration: requestDuration, errorTotal: errorTotal}, nil
}

// RecordRequest records one completed question: its route and latency.
func (m *Metrics) RecordRequest(ctx context.Context, route string, durationMS int64) {
	attrs := metric.WithAttributes(attribute.String("route", route))
	m.requestTotal.Add(ctx, 1, attrs)
	m.requestDuration.Record(ctx, float64(durationMS), attrs)
}

// RecordError records one failed question for route (empty if routing
// itself failed).
func (m *Metrics) RecordError(ctx context.Context, route string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("route", route)))
}
