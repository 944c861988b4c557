package proxy

import (
	"context"
	"time"

	"github.com/skillsenselab/rpckit/transport"
)

// InvokeType selects the call semantics of a proxy.
type InvokeType int

const (
	// InvokeUnset leaves the proxy on its default (synchronous) semantics.
	InvokeUnset InvokeType = iota
	// InvokeSync blocks the caller until the call completes.
	InvokeSync
	// InvokePromise dispatches asynchronously and hands back a Future.
	InvokePromise
	// InvokeCallback dispatches asynchronously and completes through the
	// configured Listener.
	InvokeCallback
)

// String returns the invoke type name.
func (t InvokeType) String() string {
	switch t {
	case InvokeSync:
		return "sync"
	case InvokePromise:
		return "promise"
	case InvokeCallback:
		return "callback"
	default:
		return "unset"
	}
}

// DispatchType selects how a call is routed across providers.
type DispatchType int

const (
	// DispatchUnset leaves the proxy on its default (unicast) routing.
	DispatchUnset DispatchType = iota
	// DispatchUnicast routes each call to a single provider (round-robin).
	DispatchUnicast
	// DispatchBroadcast routes each call to every registered provider.
	DispatchBroadcast
)

// String returns the dispatch type name.
func (t DispatchType) String() string {
	switch t {
	case DispatchUnicast:
		return "unicast"
	case DispatchBroadcast:
		return "broadcast"
	default:
		return "unset"
	}
}

// ServiceDescriptor identifies a remote interface by name and method table.
// An empty method table accepts any method name.
type ServiceDescriptor struct {
	Name    string
	Methods []string
}

// HasMethod reports whether the descriptor declares the named method.
func (d ServiceDescriptor) HasMethod(name string) bool {
	if len(d.Methods) == 0 {
		return true
	}
	for _, m := range d.Methods {
		if m == name {
			return true
		}
	}
	return false
}

// Call carries per-invocation details through hooks.
type Call struct {
	Service  string
	Method   string
	Provider transport.UnresolvedAddress
	Args     any
	Reply    any
	Start    time.Time
}

// Hook observes the lifecycle of each remote call. BeforeInvoke may derive a
// new context (e.g. to attach metadata or a span); AfterInvoke receives the
// call outcome.
type Hook interface {
	BeforeInvoke(ctx context.Context, call *Call) context.Context
	AfterInvoke(ctx context.Context, call *Call, err error)
}

// Listener receives call completions for callback-style consumers.
type Listener interface {
	OnComplete(method string, reply any, err error)
}

// ListenerFunc adapts an ordinary function to the Listener interface.
type ListenerFunc func(method string, reply any, err error)

// OnComplete implements Listener.
func (f ListenerFunc) OnComplete(method string, reply any, err error) {
	f(method, reply, err)
}
