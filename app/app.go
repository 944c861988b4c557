package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/skillsenselab/rpckit/component"
	"github.com/skillsenselab/rpckit/config"
	"github.com/skillsenselab/rpckit/consumer"
	"github.com/skillsenselab/rpckit/discovery"
	"github.com/skillsenselab/rpckit/logger"
	"github.com/skillsenselab/rpckit/proxy"
	"github.com/skillsenselab/rpckit/transport"
	"github.com/skillsenselab/rpckit/version"

	// Discovery backends register themselves on import.
	_ "github.com/skillsenselab/rpckit/discovery/consul"
	_ "github.com/skillsenselab/rpckit/discovery/static"
)

// App holds the wired consumer-side infrastructure of one application.
type App struct {
	Name       string
	Logger     *logger.Logger
	Components *component.Registry

	connector       *transport.GRPCConnector
	consumers       map[string]*consumer.Consumer
	gracefulTimeout time.Duration

	onStart []Hook
	onReady []Hook
	onStop  []Hook
}

// New validates the config file and builds the application: discovery
// backend (when any consumer uses a registry), connector, and a lazy
// consumer per declared service. Nothing connects until Run or the
// first proxy use.
func New(name string, file *config.File, opts ...Option) (*App, error) {
	if err := file.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	o := resolveOptions(opts)
	log := o.logger
	if log == nil {
		log = logger.NewFromEnv(name)
	}

	needRegistry := false
	for _, spec := range file.Consumers {
		if spec.Registry {
			needRegistry = true
			break
		}
	}

	connOpts := []transport.ConnectorOption{transport.WithLogger(log)}
	if needRegistry {
		disc, err := discovery.New(file.Discovery, log)
		if err != nil {
			return nil, fmt.Errorf("discovery: %w", err)
		}
		connOpts = append(connOpts, transport.WithDiscovery(disc))
	}

	conn, err := transport.NewGRPCConnector(file.Transport, connOpts...)
	if err != nil {
		return nil, fmt.Errorf("connector: %w", err)
	}

	a := &App{
		Name:            name,
		Logger:          log,
		Components:      component.NewRegistry(),
		connector:       conn,
		consumers:       make(map[string]*consumer.Consumer, len(file.Consumers)),
		gracefulTimeout: 15 * time.Second,
	}
	if o.gracefulTimeout != nil {
		a.gracefulTimeout = *o.gracefulTimeout
	}

	if err := a.Components.Register(&connectorComponent{conn: conn}); err != nil {
		return nil, err
	}

	for i := range file.Consumers {
		spec := &file.Consumers[i]
		cfg, source, err := spec.Build()
		if err != nil {
			return nil, err
		}
		c := consumer.New(cfg, conn, source, log)
		if err := a.Components.Register(c); err != nil {
			return nil, err
		}
		a.consumers[spec.Service] = c
	}

	log.Info("application built", map[string]interface{}{
		"name":      name,
		"version":   version.Short(),
		"consumers": len(a.consumers),
	})
	return a, nil
}

// Consumer returns the lazy consumer for the named service, or nil.
func (a *App) Consumer(service string) *consumer.Consumer {
	return a.consumers[service]
}

// Proxy bootstraps (on first use) and returns the proxy for the named
// service.
func (a *App) Proxy(service string) (*proxy.Proxy, error) {
	c := a.consumers[service]
	if c == nil {
		return nil, fmt.Errorf("no consumer configured for service %s", service)
	}
	return c.Get()
}

// Run starts all components, blocks until a shutdown signal or context
// cancellation, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	if err := a.startup(ctx); err != nil {
		return err
	}

	a.Logger.Info("application ready")
	a.waitForSignal(ctx)

	return a.Shutdown()
}

// ReadyCheck verifies that all registered components are healthy.
func (a *App) ReadyCheck(ctx context.Context) error {
	var unhealthy []string
	for _, h := range a.Components.HealthAll(ctx) {
		if h.Status != component.StatusHealthy {
			detail := h.Name + "=" + string(h.Status)
			if h.Message != "" {
				detail += "(" + h.Message + ")"
			}
			unhealthy = append(unhealthy, detail)
		}
	}
	if len(unhealthy) > 0 {
		return fmt.Errorf("unhealthy components: %v", unhealthy)
	}
	return nil
}

// Shutdown stops all components in reverse order within the graceful
// timeout.
func (a *App) Shutdown() error {
	a.Logger.Info("shutting down", map[string]interface{}{
		"timeout": a.gracefulTimeout.String(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var shutdownErr error
	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("onStop hook error", map[string]interface{}{
			logger.FieldError: err.Error(),
		})
		shutdownErr = err
	}

	if err := a.Components.StopAll(ctx); err != nil {
		a.Logger.Error("shutdown completed with errors", map[string]interface{}{
			logger.FieldError: err.Error(),
		})
		shutdownErr = err
	}

	a.Logger.Info("shutdown complete")
	return shutdownErr
}

func (a *App) startup(ctx context.Context) error {
	a.Logger.Info("starting application", map[string]interface{}{
		"name":    a.Name,
		"version": version.Short(),
	})

	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("starting components: %w", err)
	}
	if err := runHooks(ctx, a.onStart); err != nil {
		return fmt.Errorf("onStart hook: %w", err)
	}

	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("ready check reported issues", map[string]interface{}{
			logger.FieldError: err.Error(),
		})
	}
	if err := runHooks(ctx, a.onReady); err != nil {
		return fmt.Errorf("onReady hook: %w", err)
	}
	return nil
}

func (a *App) waitForSignal(ctx context.Context) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("received shutdown signal", map[string]interface{}{
			"signal": sig.String(),
		})
	case <-ctx.Done():
		a.Logger.Info("context canceled")
	}
}

// connectorComponent adapts the connector to the component lifecycle.
// Connections are established lazily, so Start is a no-op and Stop
// tears everything down.
type connectorComponent struct {
	conn *transport.GRPCConnector
}

func (c *connectorComponent) Name() string { return "connector" }

func (c *connectorComponent) Start(ctx context.Context) error { return nil }

func (c *connectorComponent) Stop(ctx context.Context) error { return c.conn.Close() }

func (c *connectorComponent) Health(ctx context.Context) component.Health {
	return component.Health{Name: "connector", Status: component.StatusHealthy}
}
