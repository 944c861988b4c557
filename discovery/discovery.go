package discovery

import (
	"context"
	"errors"
	"time"

	"github.com/skillsenselab/rpckit/logger"
)

// Common discovery errors.
var (
	ErrServiceNotFound    = errors.New("service not found")
	ErrNoHealthyEndpoints = errors.New("no healthy endpoints found")
)

// HealthStatus represents endpoint health.
type HealthStatus string

const (
	HealthUnknown   HealthStatus = "unknown"
	HealthHealthy   HealthStatus = "healthy"
	HealthUnhealthy HealthStatus = "unhealthy"
)

// ServiceInstance represents a discovered provider endpoint.
type ServiceInstance struct {
	ID       string
	Name     string
	Address  string
	Port     int
	Tags     []string
	Metadata map[string]string
	Health   HealthStatus
	LastSeen time.Time
}

// Discovery defines the contract for discovering provider instances.
type Discovery interface {
	// Discover returns all healthy instances of the named service.
	Discover(ctx context.Context, serviceName string) ([]ServiceInstance, error)

	// Watch returns a channel that emits the current set of instances
	// whenever the service membership changes. Cancel the context to stop.
	Watch(ctx context.Context, serviceName string) (<-chan []ServiceInstance, error)

	// Close releases any resources held by the discovery client.
	Close() error
}

// ProviderFactory creates a Discovery backend from a Config.
type ProviderFactory func(cfg Config, log *logger.Logger) (Discovery, error)

var providerFactories = make(map[string]ProviderFactory)

// RegisterProviderFactory registers a discovery backend factory for the given
// provider name. Implementation packages call this (typically in an init
// function) to make themselves available to New.
func RegisterProviderFactory(name string, f ProviderFactory) {
	providerFactories[name] = f
}

// New creates the Discovery backend selected by cfg.Provider.
// The backend package must be imported for its factory to be registered.
func New(cfg Config, log *logger.Logger) (Discovery, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	f, ok := providerFactories[cfg.Provider]
	if !ok {
		return nil, errors.New("discovery provider not registered: " + cfg.Provider)
	}
	return f(cfg, log)
}
