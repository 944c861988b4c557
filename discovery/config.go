package discovery

import "fmt"

// Config holds provider discovery configuration.
type Config struct {
	// Provider selects the discovery backend: "consul" or "static".
	Provider string `mapstructure:"provider"`

	// ConsulAddr is the Consul agent address (host:port).
	ConsulAddr string `mapstructure:"consul_addr"`

	// ConsulToken is the Consul ACL token for authentication.
	ConsulToken string `mapstructure:"consul_token"`

	// ConsulScheme is the URI scheme for Consul ("http" or "https").
	ConsulScheme string `mapstructure:"consul_scheme"`

	// ConsulDatacenter is the Consul datacenter name.
	ConsulDatacenter string `mapstructure:"consul_datacenter"`

	// StaticEndpoints provides endpoints for the static provider.
	StaticEndpoints []StaticEndpoint `mapstructure:"static_endpoints"`
}

// StaticEndpoint describes a statically configured provider endpoint.
type StaticEndpoint struct {
	Name    string `mapstructure:"name"`
	Address string `mapstructure:"address"`
	Port    int    `mapstructure:"port"`
}

// ApplyDefaults fills zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = "static"
	}
	if c.ConsulAddr == "" {
		c.ConsulAddr = "localhost:8500"
	}
	if c.ConsulScheme == "" {
		c.ConsulScheme = "http"
	}
}

// Validate checks that required fields are present and consistent.
func (c *Config) Validate() error {
	switch c.Provider {
	case "consul", "static":
	default:
		return fmt.Errorf("unsupported discovery provider %q", c.Provider)
	}
	if c.Provider == "consul" && c.ConsulAddr == "" {
		return fmt.Errorf("consul_addr is required when provider is consul")
	}
	for _, ep := range c.StaticEndpoints {
		if ep.Name == "" || ep.Address == "" || ep.Port <= 0 {
			return fmt.Errorf("static endpoint requires name, address and port (got %+v)", ep)
		}
	}
	return nil
}
