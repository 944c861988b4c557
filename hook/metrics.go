package hook

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/skillsenselab/rpckit/proxy"
)

// MetricsHook records invocation counts and durations on an
// OpenTelemetry meter.
type MetricsHook struct {
	callTotal    metric.Int64Counter
	callDuration metric.Float64Histogram
	callActive   metric.Int64UpDownCounter
}

// Metrics creates a hook that records rpc.client.* instruments on the
// global meter provider. The name identifies the instrumentation scope.
func Metrics(name string) (*MetricsHook, error) {
	meter := otel.Meter(name)

	callTotal, err := meter.Int64Counter("rpc.client.calls",
		metric.WithDescription("Total number of client invocations"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rpc.client.calls counter: %w", err)
	}

	callDuration, err := meter.Float64Histogram("rpc.client.duration",
		metric.WithDescription("Duration of client invocations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rpc.client.duration histogram: %w", err)
	}

	callActive, err := meter.Int64UpDownCounter("rpc.client.active",
		metric.WithDescription("Number of in-flight client invocations"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rpc.client.active gauge: %w", err)
	}

	return &MetricsHook{
		callTotal:    callTotal,
		callDuration: callDuration,
		callActive:   callActive,
	}, nil
}

// BeforeInvoke increments the in-flight gauge.
func (h *MetricsHook) BeforeInvoke(ctx context.Context, call *proxy.Call) context.Context {
	h.callActive.Add(ctx, 1)
	return ctx
}

// AfterInvoke records the completed call with its status and duration.
func (h *MetricsHook) AfterInvoke(ctx context.Context, call *proxy.Call, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	h.callActive.Add(ctx, -1)
	h.callTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("service", call.Service),
		attribute.String("method", call.Method),
		attribute.String("status", status),
	))
	h.callDuration.Record(ctx, time.Since(call.Start).Seconds(), metric.WithAttributes(
		attribute.String("service", call.Service),
		attribute.String("method", call.Method),
	))
}
