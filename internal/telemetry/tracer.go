// Package telemetry wires OpenTelemetry tracing for the daemon.
package telemetry

import (
	"context"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

type config struct {
	writer  io.Writer
	sampler sdktrace.Sampler
}

// Option configures tracer initialization.
type Option func(*config)

// WithWriter redirects exported spans away from stdout.
func WithWriter(w io.Writer) Option {
	return func(c *config) { c.writer = w }
}

// WithSampleRatio traces the given fraction of requests instead of all of
// them.
func WithSampleRatio(ratio float64) Option {
	return func(c *config) { c.sampler = sdktrace.TraceIDRatioBased(ratio) }
}

// InitTracer installs the global tracer provider and returns its shutdown
// function. Spans are exported as pretty-printed JSON; the default samples
// everything, which suits a single-user resolver daemon.
func InitTracer(serviceName string, logger *slog.Logger, opts ...Option) (func(context.Context) error, error) {
	cfg := config{
		writer:  os.Stdout,
		sampler: sdktrace.AlwaysSample(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(cfg.writer),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return nil, err
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes("", semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(cfg.sampler),
	)
	otel.SetTracerProvider(tp)

	logger.Info("tracing initialized", slog.String("service", serviceName))
	return tp.Shutdown, nil
}
