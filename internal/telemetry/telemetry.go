// Package telemetry wraps OTel SDK setup for request tracing. When
// telemetry is disabled, the global tracer provider remains the noop
// default and Span calls cost nothing.
package telemetry

import (
	"context"
	"errors"
	"runtime/debug"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Config controls whether tracing is enabled and at what rate spans sample.
type Config struct {
	Enabled     bool    `yaml:"enabled" env:"TELEMETRY_ENABLED"`
	ServiceName string  `yaml:"service_name" env:"TELEMETRY_SERVICE_NAME"`
	SampleRate  float64 `yaml:"sample_rate" env:"TELEMETRY_SAMPLE_RATE"`
}

// Providers holds the OTel TracerProvider. No OTLP exporter is wired: this
// service has no collector endpoint to ship spans to, so the provider
// samples and drops them. The SDK wiring stays in place so a real exporter
// can be registered with WithSpanProcessor later without touching callers.
type Providers struct {
	tp *sdktrace.TracerProvider
}

// Init configures the global tracer. When cfg.Enabled is false it leaves
// the default noop provider in place.
func Init(cfg Config, logger *zap.Logger) *Providers {
	if !cfg.Enabled {
		logger.Info("tracing disabled, using noop tracer provider")
		return &Providers{}
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRate)),
	)
	otel.SetTracerProvider(tp)

	logger.Info("tracing initialized",
		zap.String("service_name", cfg.ServiceName),
		zap.Float64("sample_rate", cfg.SampleRate),
		zap.String("version", buildVersion()),
	)
	return &Providers{tp: tp}
}

// Shutdown flushes the tracer provider. Safe to call on a noop Providers.
func (p *Providers) Shutdown(ctx context.Context) error {
	if p == nil || p.tp == nil {
		return nil
	}
	if err := p.tp.Shutdown(ctx); err != nil {
		return errors.New("shutdown tracer provider: " + err.Error())
	}
	return nil
}

var tracer = otel.Tracer("castellerq")

// StartSpan starts a span named name with the given attributes, using the
// global tracer. Callers defer the returned end func.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, func()) {
	ctx, span := tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, func() { span.End() }
}

func buildVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "dev"
	}
	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev"
}
