package consumer

import (
	"time"

	"github.com/skillsenselab/rpckit/errors"
	"github.com/skillsenselab/rpckit/proxy"
)

// Config holds the validated, immutable settings of a single consumer.
// Build one with NewConfig; the zero value is not usable.
type Config struct {
	descriptor       proxy.ServiceDescriptor
	waitForAvailable time.Duration
	invokeType       proxy.InvokeType
	dispatchType     proxy.DispatchType
	timeout          time.Duration
	methodTimeouts   map[string]time.Duration
	listener         proxy.Listener
	hooks            []proxy.Hook
}

// Option mutates a Config under construction.
type Option func(*Config)

// WithWaitForAvailable sets how long the bootstrap blocks for the first
// available registry connection. A non-positive value disables the wait.
func WithWaitForAvailable(d time.Duration) Option {
	return func(c *Config) { c.waitForAvailable = d }
}

// WithInvokeType sets the invocation style applied to the proxy.
func WithInvokeType(t proxy.InvokeType) Option {
	return func(c *Config) { c.invokeType = t }
}

// WithDispatchType sets the dispatch style applied to the proxy.
func WithDispatchType(t proxy.DispatchType) Option {
	return func(c *Config) { c.dispatchType = t }
}

// WithTimeout sets the global per-call timeout. Only positive values are
// applied to the proxy.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) { c.timeout = d }
}

// WithMethodTimeout sets a per-method timeout override. The key is the
// bare method name.
func WithMethodTimeout(method string, d time.Duration) Option {
	return func(c *Config) {
		if c.methodTimeouts == nil {
			c.methodTimeouts = make(map[string]time.Duration)
		}
		c.methodTimeouts[method] = d
	}
}

// WithMethodTimeouts sets per-method timeout overrides from a map.
func WithMethodTimeouts(timeouts map[string]time.Duration) Option {
	return func(c *Config) {
		for method, d := range timeouts {
			if c.methodTimeouts == nil {
				c.methodTimeouts = make(map[string]time.Duration)
			}
			c.methodTimeouts[method] = d
		}
	}
}

// WithListener sets the completion listener applied to the proxy.
func WithListener(l proxy.Listener) Option {
	return func(c *Config) { c.listener = l }
}

// WithHooks appends invocation hooks applied to the proxy.
func WithHooks(hooks ...proxy.Hook) Option {
	return func(c *Config) { c.hooks = append(c.hooks, hooks...) }
}

// NewConfig builds an immutable consumer config for the given service
// descriptor. The descriptor must carry a non-empty service name.
func NewConfig(descriptor proxy.ServiceDescriptor, opts ...Option) (*Config, error) {
	if descriptor.Name == "" {
		return nil, errors.InvalidConfig("service name is required")
	}

	cfg := &Config{descriptor: descriptor}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg, nil
}

// Service returns the service name.
func (c *Config) Service() string { return c.descriptor.Name }

// Descriptor returns the service descriptor.
func (c *Config) Descriptor() proxy.ServiceDescriptor { return c.descriptor }

// WaitForAvailable returns the bootstrap availability wait. Non-positive
// means the bootstrap does not wait.
func (c *Config) WaitForAvailable() time.Duration { return c.waitForAvailable }

// InvokeType returns the configured invocation style, InvokeUnset when
// the default applies.
func (c *Config) InvokeType() proxy.InvokeType { return c.invokeType }

// DispatchType returns the configured dispatch style, DispatchUnset when
// the default applies.
func (c *Config) DispatchType() proxy.DispatchType { return c.dispatchType }

// Timeout returns the global per-call timeout, zero when unset.
func (c *Config) Timeout() time.Duration { return c.timeout }

// MethodTimeouts returns a copy of the per-method timeout overrides,
// nil when none were configured.
func (c *Config) MethodTimeouts() map[string]time.Duration {
	if c.methodTimeouts == nil {
		return nil
	}
	out := make(map[string]time.Duration, len(c.methodTimeouts))
	for method, d := range c.methodTimeouts {
		out[method] = d
	}
	return out
}

// Listener returns the completion listener, nil when unset.
func (c *Config) Listener() proxy.Listener { return c.listener }

// Hooks returns a copy of the configured hooks.
func (c *Config) Hooks() []proxy.Hook {
	if len(c.hooks) == 0 {
		return nil
	}
	out := make([]proxy.Hook, len(c.hooks))
	copy(out, c.hooks)
	return out
}
