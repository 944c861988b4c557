package config

import (
	"fmt"
	"time"

	"github.com/skillsenselab/rpckit/consumer"
	"github.com/skillsenselab/rpckit/discovery"
	"github.com/skillsenselab/rpckit/proxy"
	"github.com/skillsenselab/rpckit/transport"
	"github.com/skillsenselab/rpckit/validation"
)

// File is the top-level configuration schema. One file carries the
// shared transport and discovery settings plus a block per consumed
// service.
type File struct {
	Transport transport.Config `mapstructure:"transport"`
	Discovery discovery.Config `mapstructure:"discovery"`
	Consumers []ConsumerSpec   `mapstructure:"consumers" validate:"required,min=1,dive"`
}

// ConsumerSpec declares one consumed service.
type ConsumerSpec struct {
	// Service is the fully qualified service name.
	Service string `mapstructure:"service" validate:"required"`

	// Methods lists the callable methods. Empty means any method.
	Methods []string `mapstructure:"methods"`

	// Registry selects discovery-managed provider membership. When
	// false the Providers list is used instead.
	Registry bool `mapstructure:"registry"`

	// WaitForAvailable bounds the bootstrap wait for the first
	// available connection in registry mode. Zero or negative skips
	// the wait.
	WaitForAvailable time.Duration `mapstructure:"wait_for_available"`

	// Invoke is the invocation style: "sync", "promise" or "callback".
	Invoke string `mapstructure:"invoke" validate:"omitempty,oneof=sync promise callback"`

	// Dispatch is the dispatch style: "unicast" or "broadcast".
	Dispatch string `mapstructure:"dispatch" validate:"omitempty,oneof=unicast broadcast"`

	// Timeout is the global per-call timeout. Zero means no timeout.
	Timeout time.Duration `mapstructure:"timeout"`

	// MethodTimeouts overrides the timeout per method name.
	MethodTimeouts map[string]time.Duration `mapstructure:"method_timeouts"`

	// Providers lists static provider addresses as host:port. Required
	// when Registry is false.
	Providers []string `mapstructure:"providers" validate:"omitempty,dive,hostname_port"`
}

// Validate checks the file schema and the nested transport and
// discovery settings.
func (f *File) Validate() error {
	if err := validation.Validate(f); err != nil {
		return err
	}
	f.Transport.ApplyDefaults()
	if err := f.Transport.Validate(); err != nil {
		return err
	}
	f.Discovery.ApplyDefaults()
	if err := f.Discovery.Validate(); err != nil {
		return err
	}
	for _, spec := range f.Consumers {
		if !spec.Registry && len(spec.Providers) == 0 {
			return fmt.Errorf("consumer %s: providers are required without a registry", spec.Service)
		}
	}
	return nil
}

// Build turns the declaration into a validated consumer config and its
// address source.
func (s *ConsumerSpec) Build() (*consumer.Config, consumer.AddressSource, error) {
	opts := []consumer.Option{
		consumer.WithWaitForAvailable(s.WaitForAvailable),
	}

	switch s.Invoke {
	case "", "sync":
		// builder default
	case "promise":
		opts = append(opts, consumer.WithInvokeType(proxy.InvokePromise))
	case "callback":
		opts = append(opts, consumer.WithInvokeType(proxy.InvokeCallback))
	default:
		return nil, nil, fmt.Errorf("consumer %s: unknown invoke type %q", s.Service, s.Invoke)
	}

	switch s.Dispatch {
	case "", "unicast":
		// builder default
	case "broadcast":
		opts = append(opts, consumer.WithDispatchType(proxy.DispatchBroadcast))
	default:
		return nil, nil, fmt.Errorf("consumer %s: unknown dispatch type %q", s.Service, s.Dispatch)
	}

	if s.Timeout > 0 {
		opts = append(opts, consumer.WithTimeout(s.Timeout))
	}
	if s.MethodTimeouts != nil {
		opts = append(opts, consumer.WithMethodTimeouts(s.MethodTimeouts))
	}

	cfg, err := consumer.NewConfig(proxy.ServiceDescriptor{Name: s.Service, Methods: s.Methods}, opts...)
	if err != nil {
		return nil, nil, err
	}

	if s.Registry {
		return cfg, consumer.RegistrySource{}, nil
	}

	addrs := make(consumer.StaticAddresses, 0, len(s.Providers))
	for _, raw := range s.Providers {
		addr, err := transport.ParseAddress(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("consumer %s: provider %q: %w", s.Service, raw, err)
		}
		addrs = append(addrs, addr)
	}
	return cfg, addrs, nil
}
