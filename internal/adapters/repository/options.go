package repository

import (
	"time"

	"github.com/okian/roadreport/pkg/logger"
)

// Option applies a configuration option to a store.
type Option func(*storeOptions)

type storeOptions struct {
	metricsUpdateInterval time.Duration
	logger                logger.Logger
}

func newStoreOptions(opts []Option) storeOptions {
	o := storeOptions{metricsUpdateInterval: 5 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.Named("repository")
	}
	return o
}

// WithMetricsUpdateInterval sets the interval for background ticket gauges.
func WithMetricsUpdateInterval(interval time.Duration) Option {
	return func(o *storeOptions) {
		if interval > 0 {
			o.metricsUpdateInterval = interval
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(o *storeOptions) { o.logger = l }
}
