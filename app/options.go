package app

import (
	"time"

	"github.com/skillsenselab/rpckit/logger"
)

type options struct {
	logger          *logger.Logger
	gracefulTimeout *time.Duration
}

// Option customizes application construction.
type Option func(*options)

// WithLogger sets a custom logger instead of the environment-derived
// default.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithGracefulTimeout bounds the shutdown phase.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *options) { o.gracefulTimeout = &d }
}

func resolveOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
