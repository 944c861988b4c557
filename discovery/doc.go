// Package discovery provides provider discovery for rpckit consumers.
//
// It defines interfaces and types for resolving live provider instances of a
// service, either from a registry such as Consul or from static
// configuration. The registry-backed connection manager in the transport
// package consumes Watch to track provider membership over time.
//
// # Backends
//
//   - discovery/consul: HashiCorp Consul service discovery
//   - discovery/static: fixed list of endpoints for development/testing
package discovery
