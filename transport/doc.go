// Package transport provides the consumer-side network layer for rpckit.
//
// A Connector owns the physical connections to provider processes. It
// supports two modes of address resolution:
//
//   - static: the consumer connects to a fixed list of UnresolvedAddress
//     values handed over at bootstrap; connects are asynchronous and
//     connection health is observed at invocation time.
//   - registry: the connector tracks provider membership through a
//     discovery backend and maintains connections automatically. A
//     ConnectionManager exposes WaitForAvailable so bootstrap can block
//     until at least one provider is reachable.
//
// The bundled implementation, GRPCConnector, multiplexes gRPC client
// connections keyed by provider address and performs the actual unary
// calls on behalf of the proxy layer.
package transport
