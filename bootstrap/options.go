package bootstrap

import (
	"time"

	"github.com/juniofirstpay/httpsessions/logger"
)

const defaultGracefulTimeout = 15 * time.Second

// Option configures the App during creation.
type Option func(*appOptions)

type appOptions struct {
	logger          *logger.Logger
	gracefulTimeout time.Duration
}

func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{gracefulTimeout: defaultGracefulTimeout}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets the application logger. Without it the global logger is
// initialized from the config's logging section.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) { o.logger = l }
}

// WithGracefulTimeout bounds the shutdown phase.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) { o.gracefulTimeout = d }
}
