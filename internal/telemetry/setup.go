package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Shutdown flushes and stops whatever Setup installed.
type Shutdown func(context.Context) error

// Setup installs a tracer provider exporting over OTLP/HTTP to endpoint,
// a full URL such as http://localhost:4318. An empty endpoint leaves the
// global no-op providers in place and returns a no-op Shutdown.
func Setup(ctx context.Context, endpoint, serviceVersion string) (Shutdown, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	exp, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint))
	if err != nil {
		return nil, fmt.Errorf("otlp exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", "hubtools"),
			attribute.String("service.version", serviceVersion),
		)),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}
