package transport

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/skillsenselab/rpckit/discovery"
	"github.com/skillsenselab/rpckit/logger"
	"github.com/skillsenselab/rpckit/resilience"
)

// serviceManager implements ConnectionManager for one service. It keeps the
// set of available provider addresses and wakes waiters when the set becomes
// non-empty.
type serviceManager struct {
	service string
	log     *logger.Logger

	// connect dials a provider and blocks until the connection is ready.
	connect func(ctx context.Context, addr UnresolvedAddress) error

	mu      sync.Mutex
	ready   map[string]UnresolvedAddress
	tracked map[string]context.CancelFunc
	readyCh chan struct{}
}

func newServiceManager(service string, log *logger.Logger, connect func(context.Context, UnresolvedAddress) error) *serviceManager {
	return &serviceManager{
		service: service,
		log:     log,
		connect: connect,
		ready:   make(map[string]UnresolvedAddress),
		tracked: make(map[string]context.CancelFunc),
		readyCh: make(chan struct{}),
	}
}

// WaitForAvailable blocks until at least one connection is available or the
// timeout elapses. A non-positive timeout reports current availability.
func (m *serviceManager) WaitForAvailable(timeout time.Duration) bool {
	m.mu.Lock()
	n := len(m.ready)
	ch := m.readyCh
	m.mu.Unlock()

	if n > 0 {
		return true
	}
	if timeout <= 0 {
		return false
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ch:
		return true
	case <-timer.C:
		return false
	}
}

// Available returns the number of currently available connections.
func (m *serviceManager) Available() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ready)
}

// Providers returns a snapshot of the available provider addresses,
// sorted so round-robin rotation sees a stable order between membership
// changes.
func (m *serviceManager) Providers() []UnresolvedAddress {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]UnresolvedAddress, 0, len(m.ready))
	for _, addr := range m.ready {
		out = append(out, addr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// markAvailable records an established connection and wakes waiters if this
// is the first one.
func (m *serviceManager) markAvailable(addr UnresolvedAddress) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := addr.String()
	if _, ok := m.ready[key]; ok {
		return
	}
	m.ready[key] = addr
	if len(m.ready) == 1 {
		close(m.readyCh)
	}
}

// markUnavailable removes a connection. If none remain the wake channel is
// re-armed so future waiters block again.
func (m *serviceManager) markUnavailable(addr UnresolvedAddress) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := addr.String()
	if _, ok := m.ready[key]; !ok {
		return
	}
	delete(m.ready, key)
	if len(m.ready) == 0 {
		m.readyCh = make(chan struct{})
	}
}

// run consumes membership updates and reconciles tracked providers: new
// instances are dialed in the background (with retry), departed instances are
// dropped. It returns when ctx is cancelled or updates closes.
func (m *serviceManager) run(ctx context.Context, updates <-chan []discovery.ServiceInstance) {
	for {
		select {
		case <-ctx.Done():
			return
		case instances, ok := <-updates:
			if !ok {
				return
			}
			m.reconcile(ctx, instances)
		}
	}
}

func (m *serviceManager) reconcile(ctx context.Context, instances []discovery.ServiceInstance) {
	current := make(map[string]UnresolvedAddress, len(instances))
	for _, inst := range instances {
		if inst.Health == discovery.HealthUnhealthy {
			continue
		}
		addr := UnresolvedAddress{Host: inst.Address, Port: inst.Port}
		current[addr.String()] = addr
	}

	m.mu.Lock()
	var added []UnresolvedAddress
	for key, addr := range current {
		if _, ok := m.tracked[key]; !ok {
			added = append(added, addr)
		}
	}
	var removed []UnresolvedAddress
	for key := range m.tracked {
		if _, ok := current[key]; !ok {
			removed = append(removed, m.ready[key])
			m.tracked[key]()
			delete(m.tracked, key)
		}
	}
	m.mu.Unlock()

	for _, addr := range removed {
		if !addr.IsZero() {
			m.markUnavailable(addr)
		}
	}

	for _, addr := range added {
		dialCtx, cancel := context.WithCancel(ctx)
		m.mu.Lock()
		m.tracked[addr.String()] = cancel
		m.mu.Unlock()

		go m.track(dialCtx, addr)
	}
}

// track dials one provider until it is ready, retrying with backoff.
func (m *serviceManager) track(ctx context.Context, addr UnresolvedAddress) {
	cfg := resilience.DefaultRetryConfig()
	cfg.MaxAttempts = 10
	cfg.OnRetry = func(attempt int, err error, backoff time.Duration) {
		if m.log != nil {
			m.log.Debug("provider dial retry", map[string]interface{}{
				logger.FieldService:  m.service,
				logger.FieldProvider: addr.String(),
				"attempt":            attempt,
				logger.FieldError:    err.Error(),
			})
		}
	}

	err := resilience.RetryFunc(ctx, cfg, func() error {
		return m.connect(ctx, addr)
	})
	if err != nil {
		if m.log != nil && ctx.Err() == nil {
			m.log.Warn("provider unreachable", map[string]interface{}{
				logger.FieldService:  m.service,
				logger.FieldProvider: addr.String(),
				logger.FieldError:    err.Error(),
			})
		}
		return
	}

	m.markAvailable(addr)
	if m.log != nil {
		m.log.Info("provider available", map[string]interface{}{
			logger.FieldService:  m.service,
			logger.FieldProvider: addr.String(),
		})
	}
}

// Compile-time check.
var _ ConnectionManager = (*serviceManager)(nil)
