package consumer

import "github.com/skillsenselab/rpckit/transport"

// AddressSource tells the bootstrap where providers come from.
type AddressSource interface {
	// HasRegistry reports whether provider membership is managed by a
	// registry. When true the connector tracks providers in the
	// background and ProviderAddresses is ignored.
	HasRegistry() bool

	// ProviderAddresses returns the static provider list, in
	// registration order. Only consulted when HasRegistry is false.
	ProviderAddresses() []transport.UnresolvedAddress
}

// RegistrySource is an AddressSource backed by service discovery.
type RegistrySource struct{}

// HasRegistry always reports true.
func (RegistrySource) HasRegistry() bool { return true }

// ProviderAddresses returns nil; the registry supplies providers.
func (RegistrySource) ProviderAddresses() []transport.UnresolvedAddress { return nil }

// StaticAddresses is an AddressSource with a fixed provider list.
type StaticAddresses []transport.UnresolvedAddress

// HasRegistry always reports false.
func (StaticAddresses) HasRegistry() bool { return false }

// ProviderAddresses returns the configured addresses in order.
func (s StaticAddresses) ProviderAddresses() []transport.UnresolvedAddress {
	out := make([]transport.UnresolvedAddress, len(s))
	copy(out, s)
	return out
}
