// Package observability initializes OpenTelemetry tracing and metrics.
//
// InitTracer and InitMeter install global providers that export over
// OTLP HTTP. The hook package picks them up automatically, so an
// application that wants traced and metered RPC calls initializes the
// providers once at startup and attaches hook.Tracing and hook.Metrics
// to its consumers.
package observability
