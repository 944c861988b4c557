// Package static implements discovery over a fixed list of endpoints.
// Useful for local development and testing.
package static

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/skillsenselab/rpckit/discovery"
	"github.com/skillsenselab/rpckit/logger"
)

// Provider implements discovery.Discovery using an in-memory list of
// endpoints keyed by service name.
type Provider struct {
	mu        sync.RWMutex
	instances map[string][]discovery.ServiceInstance
}

func init() {
	discovery.RegisterProviderFactory("static", func(cfg discovery.Config, _ *logger.Logger) (discovery.Discovery, error) {
		return NewProvider(cfg.StaticEndpoints), nil
	})
}

// NewProvider creates a Provider pre-populated from static config.
func NewProvider(endpoints []discovery.StaticEndpoint) *Provider {
	sp := &Provider{
		instances: make(map[string][]discovery.ServiceInstance),
	}
	now := time.Now()
	for _, ep := range endpoints {
		inst := discovery.ServiceInstance{
			ID:       fmt.Sprintf("%s-%s-%d", ep.Name, ep.Address, ep.Port),
			Name:     ep.Name,
			Address:  ep.Address,
			Port:     ep.Port,
			Health:   discovery.HealthHealthy,
			LastSeen: now,
		}
		sp.instances[ep.Name] = append(sp.instances[ep.Name], inst)
	}
	return sp
}

// Add registers an instance after construction. Intended for tests.
func (s *Provider) Add(inst discovery.ServiceInstance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instances[inst.Name] = append(s.instances[inst.Name], inst)
}

// Discover returns the configured instances for the named service.
func (s *Provider) Discover(_ context.Context, serviceName string) ([]discovery.ServiceInstance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	instances, ok := s.instances[serviceName]
	if !ok || len(instances) == 0 {
		return nil, fmt.Errorf("%w: %s", discovery.ErrServiceNotFound, serviceName)
	}

	out := make([]discovery.ServiceInstance, len(instances))
	now := time.Now()
	for i, inst := range instances {
		inst.LastSeen = now
		out[i] = inst
	}
	return out, nil
}

// Watch emits the initial instance set once, then stays silent (the static
// membership never changes). The channel closes when the context is cancelled.
func (s *Provider) Watch(ctx context.Context, serviceName string) (<-chan []discovery.ServiceInstance, error) {
	ch := make(chan []discovery.ServiceInstance, 1)

	if instances, err := s.Discover(ctx, serviceName); err == nil {
		ch <- instances
	}

	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}

// Close is a no-op for the static provider.
func (s *Provider) Close() error {
	return nil
}

// Compile-time check.
var _ discovery.Discovery = (*Provider)(nil)
