package hook

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/skillsenselab/rpckit/proxy"
)

type spanKey struct{}

// TracingHook wraps each invocation in an OpenTelemetry client span.
type TracingHook struct {
	tracer trace.Tracer
}

// Tracing creates a hook that starts a client span per call using the
// global tracer provider. The name identifies the instrumentation scope.
func Tracing(name string) *TracingHook {
	return &TracingHook{tracer: otel.Tracer(name)}
}

// BeforeInvoke starts a client span named service/method and stores it
// in the returned context for AfterInvoke to close.
func (h *TracingHook) BeforeInvoke(ctx context.Context, call *proxy.Call) context.Context {
	ctx, span := h.tracer.Start(ctx,
		fmt.Sprintf("%s/%s", call.Service, call.Method),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("rpc.service", call.Service),
			attribute.String("rpc.method", call.Method),
			attribute.String("net.peer.address", call.Provider.String()),
		),
	)
	return context.WithValue(ctx, spanKey{}, span)
}

// AfterInvoke records the outcome and ends the span.
func (h *TracingHook) AfterInvoke(ctx context.Context, call *proxy.Call, err error) {
	span, ok := ctx.Value(spanKey{}).(trace.Span)
	if !ok {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
