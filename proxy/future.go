package proxy

import "context"

// Future represents the pending outcome of an asynchronous invocation.
type Future struct {
	done chan struct{}
	err  error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (f *Future) complete(err error) {
	f.err = err
	close(f.done)
}

// Done returns a channel that is closed when the call completes.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the call completes or ctx ends, and returns the call's
// error (or the context's).
func (f *Future) Wait(ctx context.Context) error {
	select {
	case <-f.done:
		return f.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err returns the call outcome. It must only be consulted after Done is
// closed.
func (f *Future) Err() error {
	return f.err
}
