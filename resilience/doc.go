// Package resilience provides retry with exponential backoff for rpckit.
//
// The registry-backed connection manager uses it when dialing discovered
// providers, so a provider that is slow to come up is retried instead of
// dropped:
//
//	err := resilience.RetryFunc(ctx, resilience.DefaultRetryConfig(), func() error {
//	    return connector.Connect(addr, false)
//	})
package resilience
