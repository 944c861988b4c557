package transport

import (
	"context"
	"time"
)

// ConnectionManager tracks the managed connections of a single service when
// the connector runs in registry mode.
type ConnectionManager interface {
	// WaitForAvailable blocks the calling goroutine until at least one
	// managed connection is available or the timeout elapses, and reports
	// which happened. A non-positive timeout reports the current state
	// without waiting. The wait is not cancellable mid-flight.
	WaitForAvailable(timeout time.Duration) bool

	// Available returns the number of currently available connections.
	Available() int

	// Providers returns the addresses of the currently available
	// connections in a stable order. The proxy routes registry-mode
	// calls over this set.
	Providers() []UnresolvedAddress
}

// Invoker performs the wire-level call for the proxy layer.
type Invoker interface {
	// Invoke issues a unary call to the provider at addr.
	// method is the bare method name; the connector derives the full
	// wire-level target from the service name.
	Invoke(ctx context.Context, addr UnresolvedAddress, service, method string, args, reply any) error
}

// Connector is the consumer-side network layer.
type Connector interface {
	Invoker

	// Connect establishes a connection to the given address. When async is
	// true the call is fire-and-forget: it returns immediately and the
	// connection is established in the background. When async is false it
	// blocks until the connection is ready or the configured connect
	// timeout elapses.
	Connect(addr UnresolvedAddress, async bool) error

	// ManageConnections returns the connection manager for the named
	// service, creating it on first use. In registry mode the manager
	// tracks provider membership and keeps connections established in the
	// background.
	ManageConnections(service string) ConnectionManager

	// Close tears down all connections and background tracking.
	Close() error
}
