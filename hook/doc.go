// Package hook provides ready-made consumer hooks that observe and
// decorate RPC invocations.
//
// Hooks implement the proxy.Hook interface and are attached to a proxy
// at bootstrap time. This package ships hooks for structured logging,
// OpenTelemetry tracing and metrics, and bearer-token authentication.
//
// Usage:
//
//	p := proxy.NewBuilder(desc).
//	    AddHooks(hook.Logging(log), hook.Tracing("my-client")).
//	    Build()
package hook
