package hook

import (
	"context"
	"time"

	"github.com/skillsenselab/rpckit/logger"
	"github.com/skillsenselab/rpckit/proxy"
)

// LoggingHook logs every invocation with its outcome and duration.
type LoggingHook struct {
	log *logger.Logger
}

// Logging creates a hook that writes one debug line before each call
// and one info or error line after it completes.
func Logging(log *logger.Logger) *LoggingHook {
	if log == nil {
		log = logger.NewDefault("rpc-client")
	}
	return &LoggingHook{log: log.WithComponent("rpc-client")}
}

// BeforeInvoke logs the outgoing call.
func (h *LoggingHook) BeforeInvoke(ctx context.Context, call *proxy.Call) context.Context {
	h.log.Debug("invoking", map[string]interface{}{
		logger.FieldService:  call.Service,
		logger.FieldMethod:   call.Method,
		logger.FieldProvider: call.Provider.String(),
	})
	return ctx
}

// AfterInvoke logs the result with the elapsed duration.
func (h *LoggingHook) AfterInvoke(ctx context.Context, call *proxy.Call, err error) {
	fields := map[string]interface{}{
		logger.FieldService:  call.Service,
		logger.FieldMethod:   call.Method,
		logger.FieldProvider: call.Provider.String(),
		logger.FieldDuration: time.Since(call.Start).String(),
	}
	if err != nil {
		fields[logger.FieldError] = err.Error()
		h.log.Error("invocation failed", fields)
		return
	}
	h.log.Debug("invocation complete", fields)
}
