package proxy

import (
	"time"

	"github.com/skillsenselab/rpckit/logger"
	"github.com/skillsenselab/rpckit/transport"
)

// Builder accumulates provider addresses and invocation policy and produces
// the final Proxy. All setters are idempotent under repeated identical calls
// and return the receiver for chaining.
type Builder struct {
	service        ServiceDescriptor
	addrs          []transport.UnresolvedAddress
	addrSeen       map[string]struct{}
	invokeType     InvokeType
	dispatchType   DispatchType
	timeout        time.Duration
	methodTimeouts map[string]time.Duration
	listener       Listener
	hooks          []Hook
	invoker        transport.Invoker
	manager        transport.ConnectionManager
	log            *logger.Logger
}

// NewBuilder creates a Builder for the given service descriptor.
func NewBuilder(service ServiceDescriptor) *Builder {
	return &Builder{
		service:  service,
		addrSeen: make(map[string]struct{}),
	}
}

// AddProviderAddresses registers provider addresses for routing. Addresses
// already registered are skipped, preserving first-seen order.
func (b *Builder) AddProviderAddresses(addrs []transport.UnresolvedAddress) *Builder {
	for _, a := range addrs {
		key := a.String()
		if _, ok := b.addrSeen[key]; ok {
			continue
		}
		b.addrSeen[key] = struct{}{}
		b.addrs = append(b.addrs, a)
	}
	return b
}

// InvokeType sets the call semantics.
func (b *Builder) InvokeType(t InvokeType) *Builder {
	b.invokeType = t
	return b
}

// DispatchType sets the routing policy.
func (b *Builder) DispatchType(t DispatchType) *Builder {
	b.dispatchType = t
	return b
}

// Timeout sets the global call timeout.
func (b *Builder) Timeout(d time.Duration) *Builder {
	b.timeout = d
	return b
}

// MethodTimeout sets a per-method timeout override. The key is the bare
// method name; overloaded methods are not distinguished.
func (b *Builder) MethodTimeout(method string, d time.Duration) *Builder {
	if b.methodTimeouts == nil {
		b.methodTimeouts = make(map[string]time.Duration)
	}
	b.methodTimeouts[method] = d
	return b
}

// Listener sets the completion listener.
func (b *Builder) Listener(l Listener) *Builder {
	b.listener = l
	return b
}

// AddHooks appends hooks as one ordered batch. A hook instance already
// registered is skipped.
func (b *Builder) AddHooks(hooks ...Hook) *Builder {
	for _, h := range hooks {
		if b.hasHook(h) {
			continue
		}
		b.hooks = append(b.hooks, h)
	}
	return b
}

func (b *Builder) hasHook(h Hook) bool {
	for _, existing := range b.hooks {
		if existing == h {
			return true
		}
	}
	return false
}

// Connector attaches the network layer used to perform calls.
func (b *Builder) Connector(inv transport.Invoker) *Builder {
	b.invoker = inv
	return b
}

// Manager attaches a registry-mode connection manager. When set, the
// proxy routes calls over the manager's live provider set instead of
// statically registered addresses.
func (b *Builder) Manager(m transport.ConnectionManager) *Builder {
	b.manager = m
	return b
}

// WithLogger sets the proxy logger. If not set, the global logger is used.
func (b *Builder) WithLogger(log *logger.Logger) *Builder {
	b.log = log
	return b
}

// Build produces the configured Proxy. It is intended to be called once per
// builder; the returned proxy is immutable.
func (b *Builder) Build() *Proxy {
	log := b.log
	if log == nil {
		log = logger.GetGlobalLogger().WithComponent("proxy")
	}

	addrs := make([]transport.UnresolvedAddress, len(b.addrs))
	copy(addrs, b.addrs)

	var timeouts map[string]time.Duration
	if b.methodTimeouts != nil {
		timeouts = make(map[string]time.Duration, len(b.methodTimeouts))
		for k, v := range b.methodTimeouts {
			timeouts[k] = v
		}
	}

	hooks := make([]Hook, len(b.hooks))
	copy(hooks, b.hooks)

	return &Proxy{
		service:        b.service,
		addrs:          addrs,
		invokeType:     b.invokeType,
		dispatchType:   b.dispatchType,
		timeout:        b.timeout,
		methodTimeouts: timeouts,
		listener:       b.listener,
		hooks:          hooks,
		invoker:        b.invoker,
		manager:        b.manager,
		log:            log,
	}
}
