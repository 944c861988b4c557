package consumer

import (
	"context"
	"fmt"
	"sync"

	"github.com/skillsenselab/rpckit/component"
	"github.com/skillsenselab/rpckit/logger"
	"github.com/skillsenselab/rpckit/proxy"
	"github.com/skillsenselab/rpckit/transport"
)

// Consumer lazily bootstraps and memoizes a proxy for one service.
// It is safe for concurrent use: the bootstrap runs at most once per
// successful attempt, and every Get after a success returns the same
// proxy instance. A failed bootstrap is not cached, so the next Get
// retries.
//
// Consumer implements component.Component for lifecycle management.
type Consumer struct {
	cfg    *Config
	conn   transport.Connector
	source AddressSource
	log    *logger.Logger

	mu    sync.RWMutex
	proxy *proxy.Proxy
}

// New creates a lazy consumer. The proxy is not built until the first
// Get or Start call.
func New(cfg *Config, conn transport.Connector, source AddressSource, log ...*logger.Logger) *Consumer {
	return &Consumer{
		cfg:    cfg,
		conn:   conn,
		source: source,
		log:    resolveLogger(log),
	}
}

// Get returns the bootstrapped proxy, running the bootstrap on first
// use. Concurrent callers during initialization block until one of them
// completes it.
func (c *Consumer) Get() (*proxy.Proxy, error) {
	c.mu.RLock()
	if p := c.proxy; p != nil {
		c.mu.RUnlock()
		return p, nil
	}
	c.mu.RUnlock()

	return c.initialize()
}

func (c *Consumer) initialize() (*proxy.Proxy, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Another goroutine may have bootstrapped while we waited.
	if c.proxy != nil {
		return c.proxy, nil
	}

	p, err := Bootstrap(c.cfg, c.conn, c.source, c.log)
	if err != nil {
		return nil, err
	}

	c.proxy = p
	return p, nil
}

// Name returns the component name, derived from the service name.
func (c *Consumer) Name() string {
	return fmt.Sprintf("consumer-%s", c.cfg.Service())
}

// Start eagerly runs the bootstrap so failures surface during startup
// rather than on the first call.
func (c *Consumer) Start(ctx context.Context) error {
	_, err := c.Get()
	return err
}

// Stop discards the memoized proxy so a later Get bootstraps again.
// The connector is shared and stays open; closing it is its owner's job.
func (c *Consumer) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.proxy = nil
	return nil
}

// Health reports healthy once the proxy has been bootstrapped.
func (c *Consumer) Health(ctx context.Context) component.Health {
	c.mu.RLock()
	defer c.mu.RUnlock()

	h := component.Health{Name: c.Name()}
	if c.proxy != nil {
		h.Status = component.StatusHealthy
		return h
	}
	h.Status = component.StatusUnhealthy
	h.Message = "proxy not initialized"
	return h
}
