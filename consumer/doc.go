// Package consumer implements the consumer-side bootstrap routine.
//
// A consumer is configured once, bound to a connector and an address
// source, and yields a ready-to-use RPC proxy. The bootstrap branches on
// the address source: with a registry the connector manages provider
// membership in the background and the bootstrap can wait for the first
// available connection; with static addresses it fires asynchronous
// connects and hands the address list to the proxy directly.
//
// The Consumer type memoizes the bootstrapped proxy so repeated Get
// calls return the same instance, and plugs into the component registry
// for lifecycle management.
package consumer
