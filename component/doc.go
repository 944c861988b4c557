// Package component defines the lifecycle contract for rpckit components.
//
// An application hosting several RPC consumers registers each one with a
// Registry; consumers are started (bootstrapped) in registration order and
// stopped in reverse order during shutdown.
//
//   - Component: core lifecycle interface (Name/Start/Stop/Health)
//   - Registry: deterministic start/stop ordering for a set of components
package component
