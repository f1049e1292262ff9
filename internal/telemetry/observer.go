// Package telemetry records tool invocations into OpenTelemetry.
//
// The dispatcher reports one Invocation per request after it completes.
// Without Setup the global providers are the OpenTelemetry no-ops, so
// observing costs nothing until an exporter is configured.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// ScopeName is the instrumentation scope for meters and tracers.
const ScopeName = "github.com/jpl-au/hubtools"

// Invocation describes one completed dispatch.
type Invocation struct {
	Tool      string
	Transport string
	RequestID string
	// Kind is the failure kind, empty on success.
	Kind     string
	Start    time.Time
	Duration time.Duration
}

// Observer records invocation counters, latency and spans. A nil Observer
// records nothing.
type Observer struct {
	tracer trace.Tracer

	invocations metric.Int64Counter
	busy        metric.Int64Counter
	latency     metric.Float64Histogram
}

// NewObserver creates an observer bound to the provided meter and tracer.
func NewObserver(meter metric.Meter, tracer trace.Tracer) (*Observer, error) {
	invocations, err := meter.Int64Counter(
		"hubtools.tool.invocations",
		metric.WithDescription("Number of tool invocations"),
	)
	if err != nil {
		return nil, err
	}
	busy, err := meter.Int64Counter(
		"hubtools.tool.busy",
		metric.WithDescription("Number of invocations rejected because their category was in use"),
	)
	if err != nil {
		return nil, err
	}
	latency, err := meter.Float64Histogram(
		"hubtools.tool.latency",
		metric.WithDescription("Tool latency in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &Observer{
		tracer:      tracer,
		invocations: invocations,
		busy:        busy,
		latency:     latency,
	}, nil
}

// Global returns an observer using the global meter and tracer providers.
func Global() (*Observer, error) {
	return NewObserver(otel.Meter(ScopeName), otel.Tracer(ScopeName))
}

// ObserveInvoke records one invocation. The span is parented to ctx and
// back-dated to the invocation's start.
func (o *Observer) ObserveInvoke(ctx context.Context, inv Invocation) {
	if o == nil {
		return
	}

	success := inv.Kind == ""
	attrs := []attribute.KeyValue{
		attribute.String("tool_name", inv.Tool),
		attribute.String("transport", inv.Transport),
		attribute.Bool("success", success),
	}
	if !success {
		attrs = append(attrs, attribute.String("error_kind", inv.Kind))
	}

	options := metric.WithAttributes(attrs...)
	o.invocations.Add(ctx, 1, options)
	o.latency.Record(ctx, inv.Duration.Seconds(), options)
	if inv.Kind == "Busy" {
		o.busy.Add(ctx, 1, metric.WithAttributes(attribute.String("tool_name", inv.Tool)))
	}

	if o.tracer == nil {
		return
	}
	spanAttrs := append(attrs, attribute.String("request_id", inv.RequestID))
	_, span := o.tracer.Start(ctx, "tool.invoke",
		trace.WithTimestamp(inv.Start),
		trace.WithAttributes(spanAttrs...),
	)
	if success {
		span.SetStatus(codes.Ok, "")
	} else {
		span.SetStatus(codes.Error, inv.Kind)
	}
	span.End(trace.WithTimestamp(inv.Start.Add(inv.Duration)))
}
