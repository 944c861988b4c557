package proxy

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/skillsenselab/rpckit/errors"
	"github.com/skillsenselab/rpckit/transport"
)

// fakeInvoker records every call it receives.
type fakeInvoker struct {
	mu    sync.Mutex
	calls []recordedCall
	err   error
}

type recordedCall struct {
	addr        transport.UnresolvedAddress
	service     string
	method      string
	hadDeadline bool
}

func (f *fakeInvoker) Invoke(ctx context.Context, addr transport.UnresolvedAddress, service, method string, args, reply any) error {
	_, hadDeadline := ctx.Deadline()
	f.mu.Lock()
	f.calls = append(f.calls, recordedCall{addr: addr, service: service, method: method, hadDeadline: hadDeadline})
	f.mu.Unlock()
	return f.err
}

func (f *fakeInvoker) recorded() []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]recordedCall, len(f.calls))
	copy(out, f.calls)
	return out
}

// orderHook records hook invocation order.
type orderHook struct {
	name   string
	before *[]string
	after  *[]string
}

func (h *orderHook) BeforeInvoke(ctx context.Context, call *Call) context.Context {
	*h.before = append(*h.before, h.name)
	return ctx
}

func (h *orderHook) AfterInvoke(ctx context.Context, call *Call, err error) {
	*h.after = append(*h.after, h.name)
}

// fakeManager serves a mutable provider set, standing in for
// registry-driven membership.
type fakeManager struct {
	mu        sync.Mutex
	providers []transport.UnresolvedAddress
}

func (m *fakeManager) WaitForAvailable(timeout time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.providers) > 0
}

func (m *fakeManager) Available() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.providers)
}

func (m *fakeManager) Providers() []transport.UnresolvedAddress {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]transport.UnresolvedAddress, len(m.providers))
	copy(out, m.providers)
	return out
}

func (m *fakeManager) set(providers []transport.UnresolvedAddress) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.providers = providers
}

var echoService = ServiceDescriptor{Name: "test.Echo", Methods: []string{"Echo", "Reverse"}}

func addrs(hosts ...string) []transport.UnresolvedAddress {
	out := make([]transport.UnresolvedAddress, len(hosts))
	for i, h := range hosts {
		out[i] = transport.NewAddress(h, 50051)
	}
	return out
}

func TestUnicastRoundRobin(t *testing.T) {
	inv := &fakeInvoker{}
	p := NewBuilder(echoService).
		AddProviderAddresses(addrs("a", "b")).
		Connector(inv).
		Build()

	for i := 0; i < 4; i++ {
		if err := p.Invoke(context.Background(), "Echo", "ping", nil); err != nil {
			t.Fatalf("Invoke: %v", err)
		}
	}

	calls := inv.recorded()
	if len(calls) != 4 {
		t.Fatalf("expected 4 calls, got %d", len(calls))
	}
	want := []string{"a", "b", "a", "b"}
	for i, c := range calls {
		if c.addr.Host != want[i] {
			t.Errorf("call %d went to %s, want %s", i, c.addr.Host, want[i])
		}
		if c.service != "test.Echo" || c.method != "Echo" {
			t.Errorf("call %d target %s/%s", i, c.service, c.method)
		}
	}
}

func TestBroadcastHitsAllProviders(t *testing.T) {
	inv := &fakeInvoker{}
	p := NewBuilder(echoService).
		AddProviderAddresses(addrs("a", "b", "c")).
		DispatchType(DispatchBroadcast).
		Connector(inv).
		Build()

	if err := p.Invoke(context.Background(), "Echo", "ping", nil); err != nil {
		t.Fatalf("Invoke: %v", err)
	}

	calls := inv.recorded()
	if len(calls) != 3 {
		t.Fatalf("expected 3 calls, got %d", len(calls))
	}
	for i, host := range []string{"a", "b", "c"} {
		if calls[i].addr.Host != host {
			t.Errorf("broadcast order: call %d went to %s, want %s", i, calls[i].addr.Host, host)
		}
	}
}

func TestManagerDrivesRouting(t *testing.T) {
	inv := &fakeInvoker{}
	mgr := &fakeManager{}
	mgr.set(addrs("x", "y"))

	p := NewBuilder(echoService).
		Manager(mgr).
		Connector(inv).
		Build()

	for i := 0; i < 4; i++ {
		if err := p.Invoke(context.Background(), "Echo", "ping", nil); err != nil {
			t.Fatalf("Invoke: %v", err)
		}
	}

	calls := inv.recorded()
	if len(calls) != 4 {
		t.Fatalf("expected 4 calls, got %d", len(calls))
	}
	want := []string{"x", "y", "x", "y"}
	for i, c := range calls {
		if c.addr.Host != want[i] {
			t.Errorf("call %d went to %s, want %s", i, c.addr.Host, want[i])
		}
	}

	// Membership changes take effect on the next call.
	mgr.set(addrs("z"))
	if err := p.Invoke(context.Background(), "Echo", "ping", nil); err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	calls = inv.recorded()
	if got := calls[len(calls)-1].addr.Host; got != "z" {
		t.Errorf("call after membership change went to %s, want z", got)
	}
}

func TestManagerBroadcast(t *testing.T) {
	inv := &fakeInvoker{}
	mgr := &fakeManager{}
	mgr.set(addrs("a", "b"))

	p := NewBuilder(echoService).
		Manager(mgr).
		DispatchType(DispatchBroadcast).
		Connector(inv).
		Build()

	if err := p.Invoke(context.Background(), "Echo", "ping", nil); err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if got := len(inv.recorded()); got != 2 {
		t.Fatalf("broadcast reached %d providers, want 2", got)
	}
}

func TestManagerEmptyMeansNoProviders(t *testing.T) {
	p := NewBuilder(echoService).
		Manager(&fakeManager{}).
		Connector(&fakeInvoker{}).
		Build()

	err := p.Invoke(context.Background(), "Echo", "ping", nil)
	if !errors.IsCode(err, errors.ErrCodeNoProviders) {
		t.Fatalf("expected NO_PROVIDERS, got %v", err)
	}
}

func TestNoProviders(t *testing.T) {
	p := NewBuilder(echoService).Connector(&fakeInvoker{}).Build()
	err := p.Invoke(context.Background(), "Echo", "ping", nil)
	if !errors.IsCode(err, errors.ErrCodeNoProviders) {
		t.Fatalf("expected NO_PROVIDERS, got %v", err)
	}
}

func TestUnknownMethod(t *testing.T) {
	inv := &fakeInvoker{}
	p := NewBuilder(echoService).
		AddProviderAddresses(addrs("a")).
		Connector(inv).
		Build()

	err := p.Invoke(context.Background(), "Vanish", nil, nil)
	if !errors.IsCode(err, errors.ErrCodeUnknownMethod) {
		t.Fatalf("expected UNKNOWN_METHOD, got %v", err)
	}
	if len(inv.recorded()) != 0 {
		t.Error("unknown method must not reach the connector")
	}
}

func TestEmptyMethodTableAcceptsAnyMethod(t *testing.T) {
	inv := &fakeInvoker{}
	p := NewBuilder(ServiceDescriptor{Name: "open.Service"}).
		AddProviderAddresses(addrs("a")).
		Connector(inv).
		Build()

	if err := p.Invoke(context.Background(), "Anything", nil, nil); err != nil {
		t.Fatalf("Invoke: %v", err)
	}
}

func TestTimeouts(t *testing.T) {
	inv := &fakeInvoker{}
	p := NewBuilder(echoService).
		AddProviderAddresses(addrs("a")).
		Timeout(time.Second).
		MethodTimeout("Reverse", 500*time.Millisecond).
		Connector(inv).
		Build()

	if got := p.MethodTimeout("Echo"); got != time.Second {
		t.Errorf("Echo timeout = %s, want global 1s", got)
	}
	if got := p.MethodTimeout("Reverse"); got != 500*time.Millisecond {
		t.Errorf("Reverse timeout = %s, want override 500ms", got)
	}

	if err := p.Invoke(context.Background(), "Echo", nil, nil); err != nil {
		t.Fatal(err)
	}
	if !inv.recorded()[0].hadDeadline {
		t.Error("call with configured timeout should carry a deadline")
	}
}

func TestNoTimeoutMeansNoDeadline(t *testing.T) {
	inv := &fakeInvoker{}
	p := NewBuilder(echoService).
		AddProviderAddresses(addrs("a")).
		Connector(inv).
		Build()

	if err := p.Invoke(context.Background(), "Echo", nil, nil); err != nil {
		t.Fatal(err)
	}
	if inv.recorded()[0].hadDeadline {
		t.Error("unset timeout must not impose a deadline")
	}
}

func TestHookOrdering(t *testing.T) {
	var before, after []string
	h1 := &orderHook{name: "h1", before: &before, after: &after}
	h2 := &orderHook{name: "h2", before: &before, after: &after}

	p := NewBuilder(echoService).
		AddProviderAddresses(addrs("a")).
		AddHooks(h1, h2).
		Connector(&fakeInvoker{}).
		Build()

	if err := p.Invoke(context.Background(), "Echo", nil, nil); err != nil {
		t.Fatal(err)
	}

	if len(before) != 2 || before[0] != "h1" || before[1] != "h2" {
		t.Errorf("before order: %v", before)
	}
	if len(after) != 2 || after[0] != "h2" || after[1] != "h1" {
		t.Errorf("after order (reverse expected): %v", after)
	}
}

func TestListenerObservesCompletion(t *testing.T) {
	boom := stderrors.New("boom")
	var gotMethod string
	var gotErr error

	p := NewBuilder(echoService).
		AddProviderAddresses(addrs("a")).
		Listener(ListenerFunc(func(method string, reply any, err error) {
			gotMethod = method
			gotErr = err
		})).
		Connector(&fakeInvoker{err: boom}).
		Build()

	if err := p.Invoke(context.Background(), "Echo", nil, nil); !stderrors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if gotMethod != "Echo" || !stderrors.Is(gotErr, boom) {
		t.Errorf("listener saw %s/%v", gotMethod, gotErr)
	}
}

func TestCallbackInvokeReturnsImmediately(t *testing.T) {
	type completion struct {
		method string
		err    error
	}
	done := make(chan completion, 1)

	p := NewBuilder(echoService).
		AddProviderAddresses(addrs("a")).
		InvokeType(InvokeCallback).
		Listener(ListenerFunc(func(method string, reply any, err error) {
			done <- completion{method: method, err: err}
		})).
		Connector(&fakeInvoker{}).
		Build()

	if err := p.Invoke(context.Background(), "Echo", "ping", nil); err != nil {
		t.Fatalf("callback Invoke returned %v, want nil", err)
	}

	select {
	case c := <-done:
		if c.method != "Echo" || c.err != nil {
			t.Errorf("listener saw %s/%v", c.method, c.err)
		}
	case <-time.After(time.Second):
		t.Fatal("listener never observed the completion")
	}
}

func TestCallbackInvokeDeliversErrorThroughListener(t *testing.T) {
	boom := stderrors.New("boom")
	done := make(chan error, 1)

	p := NewBuilder(echoService).
		AddProviderAddresses(addrs("a")).
		InvokeType(InvokeCallback).
		Listener(ListenerFunc(func(method string, reply any, err error) {
			done <- err
		})).
		Connector(&fakeInvoker{err: boom}).
		Build()

	if err := p.Invoke(context.Background(), "Echo", "ping", nil); err != nil {
		t.Fatalf("callback Invoke returned %v, want nil", err)
	}

	select {
	case err := <-done:
		if !stderrors.Is(err, boom) {
			t.Errorf("listener saw %v, want boom", err)
		}
	case <-time.After(time.Second):
		t.Fatal("listener never observed the failure")
	}
}

func TestInvokeAsync(t *testing.T) {
	p := NewBuilder(echoService).
		AddProviderAddresses(addrs("a")).
		InvokeType(InvokePromise).
		Connector(&fakeInvoker{}).
		Build()

	f := p.InvokeAsync(context.Background(), "Echo", nil, nil)
	if err := f.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	select {
	case <-f.Done():
	default:
		t.Error("Done should be closed after Wait returns")
	}
	if f.Err() != nil {
		t.Errorf("Err = %v", f.Err())
	}
}

func TestDefaults(t *testing.T) {
	p := NewBuilder(echoService).Build()
	if p.InvokeType() != InvokeSync {
		t.Errorf("default invoke type = %s", p.InvokeType())
	}
	if p.DispatchType() != DispatchUnicast {
		t.Errorf("default dispatch type = %s", p.DispatchType())
	}
}
