// Package consul implements discovery backed by HashiCorp Consul.
package consul

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/consul/api"

	"github.com/skillsenselab/rpckit/discovery"
	"github.com/skillsenselab/rpckit/logger"
)

// Provider implements discovery.Discovery using Consul's health API.
type Provider struct {
	client *api.Client
	cfg    discovery.Config
	log    *logger.Logger
}

func init() {
	discovery.RegisterProviderFactory("consul", func(cfg discovery.Config, log *logger.Logger) (discovery.Discovery, error) {
		return NewProvider(cfg, log)
	})
}

// NewProvider creates a Provider from the given Config.
func NewProvider(cfg discovery.Config, log *logger.Logger) (*Provider, error) {
	apiCfg := api.DefaultConfig()
	apiCfg.Address = cfg.ConsulAddr
	apiCfg.Scheme = cfg.ConsulScheme
	apiCfg.Token = cfg.ConsulToken
	if cfg.ConsulDatacenter != "" {
		apiCfg.Datacenter = cfg.ConsulDatacenter
	}

	client, err := api.NewClient(apiCfg)
	if err != nil {
		return nil, fmt.Errorf("consul client: %w", err)
	}

	return &Provider{
		client: client,
		cfg:    cfg,
		log:    log.WithComponent("discovery.consul"),
	}, nil
}

// Discover queries Consul for healthy instances of the named service.
func (c *Provider) Discover(ctx context.Context, serviceName string) ([]discovery.ServiceInstance, error) {
	opts := (&api.QueryOptions{}).WithContext(ctx)
	entries, _, err := c.client.Health().Service(serviceName, "", true, opts)
	if err != nil {
		return nil, fmt.Errorf("consul discover %q: %w", serviceName, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: %s", discovery.ErrNoHealthyEndpoints, serviceName)
	}

	now := time.Now()
	instances := make([]discovery.ServiceInstance, 0, len(entries))
	for _, e := range entries {
		instances = append(instances, serviceEntryToInstance(e, now))
	}
	return instances, nil
}

// Watch returns a channel that emits updated instances whenever membership
// changes, using Consul blocking queries.
func (c *Provider) Watch(ctx context.Context, serviceName string) (<-chan []discovery.ServiceInstance, error) {
	ch := make(chan []discovery.ServiceInstance, 1)

	go func() {
		defer close(ch)
		var lastIndex uint64
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			opts := &api.QueryOptions{
				WaitIndex: lastIndex,
				WaitTime:  30 * time.Second,
			}
			opts = opts.WithContext(ctx)

			entries, meta, err := c.client.Health().Service(serviceName, "", true, opts)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				c.log.Warn("consul watch error", map[string]interface{}{
					logger.FieldService: serviceName,
					logger.FieldError:   err.Error(),
				})
				time.Sleep(time.Second)
				continue
			}

			if meta.LastIndex == lastIndex {
				continue
			}
			lastIndex = meta.LastIndex

			now := time.Now()
			instances := make([]discovery.ServiceInstance, 0, len(entries))
			for _, e := range entries {
				instances = append(instances, serviceEntryToInstance(e, now))
			}

			select {
			case ch <- instances:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch, nil
}

// Close is a no-op; the HTTP client does not require explicit closing.
func (c *Provider) Close() error {
	return nil
}

func serviceEntryToInstance(e *api.ServiceEntry, now time.Time) discovery.ServiceInstance {
	health := discovery.HealthHealthy
	for _, chk := range e.Checks {
		if chk.Status != api.HealthPassing {
			health = discovery.HealthUnhealthy
			break
		}
	}

	return discovery.ServiceInstance{
		ID:       e.Service.ID,
		Name:     e.Service.Service,
		Address:  e.Service.Address,
		Port:     e.Service.Port,
		Tags:     e.Service.Tags,
		Metadata: e.Service.Meta,
		Health:   health,
		LastSeen: now,
	}
}

// Compile-time check.
var _ discovery.Discovery = (*Provider)(nil)
