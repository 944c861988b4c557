// Package proxy provides the client stub layer for rpckit consumers.
//
// A Builder accumulates invocation policy (invoke type, dispatch type,
// timeouts, listener, hooks) plus provider addresses and the connector, and
// produces an immutable Proxy. The Proxy routes calls by method name through
// an explicit service descriptor rather than runtime code generation: callers
// invoke remote methods as
//
//	err := p.Invoke(ctx, "Echo", req, &resp)
//
// and the proxy resolves the per-method timeout, runs the configured hooks
// around the call, and dispatches to one provider (unicast) or all registered
// providers (broadcast) via the attached connector.
package proxy
