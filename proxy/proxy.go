package proxy

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/skillsenselab/rpckit/errors"
	"github.com/skillsenselab/rpckit/logger"
	"github.com/skillsenselab/rpckit/transport"
)

// Proxy is the configured client stub for one remote service. It is created
// once by Builder.Build, is immutable afterwards, and is safe for concurrent
// use.
type Proxy struct {
	service        ServiceDescriptor
	addrs          []transport.UnresolvedAddress
	invokeType     InvokeType
	dispatchType   DispatchType
	timeout        time.Duration
	methodTimeouts map[string]time.Duration
	listener       Listener
	hooks          []Hook
	invoker        transport.Invoker
	manager        transport.ConnectionManager
	log            *logger.Logger

	rr atomic.Uint64
}

// Service returns the service descriptor the proxy was built for.
func (p *Proxy) Service() ServiceDescriptor {
	return p.service
}

// InvokeType returns the configured call semantics.
func (p *Proxy) InvokeType() InvokeType {
	if p.invokeType == InvokeUnset {
		return InvokeSync
	}
	return p.invokeType
}

// DispatchType returns the configured routing policy.
func (p *Proxy) DispatchType() DispatchType {
	if p.dispatchType == DispatchUnset {
		return DispatchUnicast
	}
	return p.dispatchType
}

// Timeout returns the global call timeout (zero when unset).
func (p *Proxy) Timeout() time.Duration {
	return p.timeout
}

/// MethodTimeout returns the effective timeout for the named method: the
// per-method override when present, otherwise the global timeout.
func (p *Proxy) MethodTimeout(method string) time.Duration {
	if d, ok := p.methodTimeouts[method]; ok {
		return d
	}
	return p.timeout
}

/// Addresses returns the provider addresses the proxy routes over: the
// manager's live set in registry mode, otherwise a copy of the
// statically registered addresses.
func (p *Proxy) Addresses() []transport.UnresolvedAddress {
	return p.providers()
}

// providers resolves the current routing set.
func (p *Proxy) providers() []transport.UnresolvedAddress {
	if p.manager != nil {
		return p.manager.Providers()
	}
	out := make([]transport.UnresolvedAddress, len(p.addrs))
	copy(out, p.addrs)
	return out
}

// Invoke performs a call to the named method using the configured
// invocation style. Sync and promise styles block until the call
// completes and return its error (promise-style callers that want the
// pending result use InvokeAsync instead). Callback style dispatches in
// the background, returns immediately, and delivers the outcome through
// the listener. The per-method timeout (or the global one) bounds the
// call when set; the configured hooks run around it; the listener, when
// set, observes every completion.
func (p *Proxy) Invoke(ctx context.Context, method string, args, reply any) error {
	if p.InvokeType() == InvokeCallback {
		go p.invokeComplete(ctx, method, args, reply)
		return nil
	}
	return p.invokeComplete(ctx, method, args, reply)
}

// InvokeAsync dispatches the call on a new goroutine and returns a Future
// that resolves with the call's outcome. The listener, when set, is
// notified before the future resolves.
func (p *Proxy) InvokeAsync(ctx context.Context, method string, args, reply any) *Future {
	f := newFuture()
	go func() {
		f.complete(p.invokeComplete(ctx, method, args, reply))
	}()
	return f
}

// invokeComplete runs the call and reports the outcome to the listener.
func (p *Proxy) invokeComplete(ctx context.Context, method string, args, reply any) error {
	err := p.invoke(ctx, method, args, reply)
	if p.listener != nil {
		p.listener.OnComplete(method, reply, err)
	}
	return err
}

func (p *Proxy) invoke(ctx context.Context, method string, args, reply any) error {
	if !p.service.HasMethod(method) {
		return errors.UnknownMethod(p.service.Name, method)
	}

	if d := p.MethodTimeout(method); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	switch p.DispatchType() {
	case DispatchBroadcast:
		return p.broadcast(ctx, method, args, reply)
	default:
		return p.unicast(ctx, method, args, reply)
	}
}

// unicast routes the call to a single provider, rotating through the
// current routing set.
func (p *Proxy) unicast(ctx context.Context, method string, args, reply any) error {
	addrs := p.providers()
	if len(addrs) == 0 {
		return errors.NoProviders(p.service.Name)
	}
	idx := p.rr.Add(1) - 1
	addr := addrs[idx%uint64(len(addrs))]
	return p.call(ctx, addr, method, args, reply)
}

// broadcast routes the call to every provider in the current routing set,
// in order. The shared reply holds the last successful result; the call
// fails if any provider fails.
func (p *Proxy) broadcast(ctx context.Context, method string, args, reply any) error {
	addrs := p.providers()
	if len(addrs) == 0 {
		return errors.NoProviders(p.service.Name)
	}
	var firstErr error
	for _, addr := range addrs {
		if err := p.call(ctx, addr, method, args, reply); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// call performs one provider invocation with hooks around it.
func (p *Proxy) call(ctx context.Context, addr transport.UnresolvedAddress, method string, args, reply any) error {
	call := &Call{
		Service:  p.service.Name,
		Method:   method,
		Provider: addr,
		Args:     args,
		Reply:    reply,
		Start:    time.Now(),
	}

	for _, h := range p.hooks {
		ctx = h.BeforeInvoke(ctx, call)
	}

	var err error
	if p.invoker == nil {
		err = errors.Internal("proxy has no connector attached")
	} else {
		err = p.invoker.Invoke(ctx, addr, p.service.Name, method, args, reply)
	}

	for i := len(p.hooks) - 1; i >= 0; i-- {
		p.hooks[i].AfterInvoke(ctx, call, err)
	}
	return err
}
