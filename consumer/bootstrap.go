package consumer

import (
	"github.com/skillsenselab/rpckit/errors"
	"github.com/skillsenselab/rpckit/logger"
	"github.com/skillsenselab/rpckit/proxy"
	"github.com/skillsenselab/rpckit/transport"
)

// Bootstrap wires a consumer config to a connector and address source
// and yields the resulting proxy.
//
// With a registry source the connector starts managing provider
// membership for the service and the proxy routes calls over the
// manager's live provider set; when the config carries a positive
// availability wait, Bootstrap blocks until a connection is available
// or fails with a CONNECT_FAILED error once the wait elapses. With a
// static source it fires one asynchronous connect per address and
// registers the address list with the proxy; connect failures surface
// through later invocations, not here.
func Bootstrap(cfg *Config, conn transport.Connector, source AddressSource, log ...*logger.Logger) (*proxy.Proxy, error) {
	l := resolveLogger(log)

	builder := proxy.NewBuilder(cfg.Descriptor()).WithLogger(l)

	if source.HasRegistry() {
		manager := conn.ManageConnections(cfg.Service())
		if wait := cfg.WaitForAvailable(); wait > 0 {
			if !manager.WaitForAvailable(wait) {
				l.Error("no provider became available", map[string]interface{}{
					logger.FieldService: cfg.Service(),
					"wait":              wait.String(),
				})
				return nil, errors.ConnectFailed(cfg.Service())
			}
		}
		builder.Manager(manager)
	} else {
		addrs := source.ProviderAddresses()
		for _, addr := range addrs {
			if err := conn.Connect(addr, true); err != nil {
				l.Warn("async connect failed", map[string]interface{}{
					logger.FieldService:  cfg.Service(),
					logger.FieldProvider: addr.String(),
					logger.FieldError:    err.Error(),
				})
			}
		}
		builder.AddProviderAddresses(addrs)
	}

	applyPolicy(builder, cfg)
	builder.Connector(conn)

	p := builder.Build()
	l.Info("consumer ready", map[string]interface{}{
		logger.FieldService:  cfg.Service(),
		logger.FieldInvoke:   p.InvokeType().String(),
		logger.FieldDispatch: p.DispatchType().String(),
	})
	return p, nil
}

// applyPolicy transfers the configured call policy onto the builder in a
// fixed order: invoke type, dispatch type, global timeout, per-method
// timeouts, listener, hooks. Unset values are skipped so builder
// defaults survive.
func applyPolicy(builder *proxy.Builder, cfg *Config) {
	if t := cfg.InvokeType(); t != proxy.InvokeUnset {
		builder.InvokeType(t)
	}
	if t := cfg.DispatchType(); t != proxy.DispatchUnset {
		builder.DispatchType(t)
	}
	if d := cfg.Timeout(); d > 0 {
		builder.Timeout(d)
	}
	if timeouts := cfg.MethodTimeouts(); timeouts != nil {
		for method, d := range timeouts {
			builder.MethodTimeout(method, d)
		}
	}
	if l := cfg.Listener(); l != nil {
		builder.Listener(l)
	}
	if hooks := cfg.Hooks(); len(hooks) > 0 {
		builder.AddHooks(hooks...)
	}
}

func resolveLogger(log []*logger.Logger) *logger.Logger {
	if len(log) > 0 && log[0] != nil {
		return log[0].WithComponent("consumer")
	}
	return logger.NewDefault("consumer").WithComponent("consumer")
}
