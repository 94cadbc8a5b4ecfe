package api

import "github.com/okian/roadreport/pkg/logger"

const (
	defaultListLimit = 50
	maxBodyBytes     = 1 << 20
)

// Option applies a configuration option to the Server.
type Option func(*options)

type options struct {
	defaultLimit int
	logger       logger.Logger
}

func newOptions(opts []Option) options {
	o := options{defaultLimit: defaultListLimit}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.Named("api")
	}
	return o
}

// WithDefaultLimit sets the page size used when a listing has no limit.
func WithDefaultLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.defaultLimit = n
		}
	}
}

// WithLogger sets a custom logger for the handlers.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
