package transport

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"

	"github.com/skillsenselab/rpckit/discovery"
	"github.com/skillsenselab/rpckit/logger"
)

// GRPCConnector implements Connector over gRPC client connections.
// Connections are created lazily per provider address and shared by all
// proxies attached to the connector.
type GRPCConnector struct {
	cfg  Config
	disc discovery.Discovery
	log  *logger.Logger

	mu       sync.RWMutex
	conns    map[string]*providerConn
	managers map[string]*serviceManager

	ctx    context.Context
	cancel context.CancelFunc
}

type providerConn struct {
	id   string
	addr UnresolvedAddress
	conn *grpc.ClientConn
}

// ConnectorOption configures a GRPCConnector.
type ConnectorOption func(*GRPCConnector)

// WithDiscovery attaches a discovery backend, enabling registry mode.
func WithDiscovery(d discovery.Discovery) ConnectorOption {
	return func(c *GRPCConnector) { c.disc = d }
}

// WithLogger sets a custom logger. If not set, the global logger is used.
func WithLogger(log *logger.Logger) ConnectorOption {
	return func(c *GRPCConnector) { c.log = log }
}

// NewGRPCConnector creates a connector from config.
func NewGRPCConnector(cfg Config, opts ...ConnectorOption) (*GRPCConnector, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("transport config: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &GRPCConnector{
		cfg:      cfg,
		conns:    make(map[string]*providerConn),
		managers: make(map[string]*serviceManager),
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.GetGlobalLogger().WithComponent("transport")
	}
	return c, nil
}

// HasRegistry reports whether a discovery backend is attached.
func (c *GRPCConnector) HasRegistry() bool {
	return c.disc != nil
}

// Connect establishes a connection to addr. Async connects return
// immediately; the connection proceeds in the background and failures
// surface later at invocation time. Synchronous connects block until the
// connection is ready or the configured connect timeout elapses.
func (c *GRPCConnector) Connect(addr UnresolvedAddress, async bool) error {
	pc, err := c.grab(addr)
	if err != nil {
		return err
	}

	pc.conn.Connect()
	if async {
		return nil
	}

	ctx, cancel := context.WithTimeout(c.ctx, c.cfg.ConnectTimeout)
	defer cancel()
	return c.awaitReady(ctx, pc)
}

// ManageConnections returns the connection manager for the named service,
// creating it and its background membership tracking on first use.
func (c *GRPCConnector) ManageConnections(service string) ConnectionManager {
	c.mu.Lock()
	defer c.mu.Unlock()

	if mgr, ok := c.managers[service]; ok {
		return mgr
	}

	mgr := newServiceManager(service, c.log, c.connectReady)
	c.managers[service] = mgr

	if c.disc != nil {
		go func() {
			updates, err := c.disc.Watch(c.ctx, service)
			if err != nil {
				c.log.Error("discovery watch failed", map[string]interface{}{
					logger.FieldService: service,
					logger.FieldError:   err.Error(),
				})
				return
			}
			mgr.run(c.ctx, updates)
		}()
	}

	return mgr
}

// Invoke issues a unary call to the provider at addr.
func (c *GRPCConnector) Invoke(ctx context.Context, addr UnresolvedAddress, service, method string, args, reply any) error {
	pc, err := c.grab(addr)
	if err != nil {
		return err
	}
	fullMethod := fmt.Sprintf("/%s/%s", service, method)
	return pc.conn.Invoke(ctx, fullMethod, args, reply)
}

// Close tears down background tracking and all connections.
func (c *GRPCConnector) Close() error {
	c.cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	var firstErr error
	for key, pc := range c.conns {
		if err := pc.conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(c.conns, key)
	}
	return firstErr
}

// grab returns the connection for addr, creating it if absent.
func (c *GRPCConnector) grab(addr UnresolvedAddress) (*providerConn, error) {
	key := addr.String()

	c.mu.RLock()
	pc, ok := c.conns[key]
	c.mu.RUnlock()
	if ok {
		return pc, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if pc, ok := c.conns[key]; ok {
		return pc, nil
	}

	opts, err := c.dialOptions()
	if err != nil {
		return nil, err
	}

	conn, err := grpc.NewClient(key, opts...)
	if err != nil {
		return nil, fmt.Errorf("transport: create client for %s: %w", key, err)
	}

	pc = &providerConn{
		id:   uuid.NewString(),
		addr: addr,
		conn: conn,
	}
	c.conns[key] = pc

	c.log.Debug("connection created", map[string]interface{}{
		logger.FieldProvider: key,
		logger.FieldConnID:   pc.id,
	})
	return pc, nil
}

// connectReady dials addr and blocks until the connection is ready, bounded
// by the connect timeout. Used by the registry-mode manager.
func (c *GRPCConnector) connectReady(ctx context.Context, addr UnresolvedAddress) error {
	pc, err := c.grab(addr)
	if err != nil {
		return err
	}
	pc.conn.Connect()

	waitCtx, cancel := context.WithTimeout(ctx, c.cfg.ConnectTimeout)
	defer cancel()
	return c.awaitReady(waitCtx, pc)
}

// awaitReady blocks until pc reaches the READY state or ctx ends.
func (c *GRPCConnector) awaitReady(ctx context.Context, pc *providerConn) error {
	for {
		state := pc.conn.GetState()
		if state == connectivity.Ready {
			return nil
		}
		if state == connectivity.Shutdown {
			return fmt.Errorf("transport: connection to %s is shut down", pc.addr)
		}
		if !pc.conn.WaitForStateChange(ctx, state) {
			return fmt.Errorf("transport: connect to %s: %w", pc.addr, ctx.Err())
		}
	}
}

// dialOptions assembles gRPC dial options from config.
func (c *GRPCConnector) dialOptions() ([]grpc.DialOption, error) {
	creds, err := c.transportCredentials()
	if err != nil {
		return nil, err
	}

	return []grpc.DialOption{
		grpc.WithTransportCredentials(creds),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                c.cfg.Keepalive.Time,
			Timeout:             c.cfg.Keepalive.Timeout,
			PermitWithoutStream: c.cfg.Keepalive.PermitWithoutStream,
		}),
		grpc.WithDefaultCallOptions(
			grpc.MaxCallRecvMsgSize(c.cfg.MaxRecvMsgSize),
			grpc.MaxCallSendMsgSize(c.cfg.MaxSendMsgSize),
		),
	}, nil
}

// transportCredentials returns the appropriate transport credentials.
func (c *GRPCConnector) transportCredentials() (credentials.TransportCredentials, error) {
	tlsCfg, err := c.cfg.TLS.Build()
	if err != nil {
		return nil, fmt.Errorf("transport: %w", err)
	}
	if tlsCfg == nil {
		return insecure.NewCredentials(), nil
	}
	return credentials.NewTLS(tlsCfg), nil
}

// Compile-time check.
var _ Connector = (*GRPCConnector)(nil)
