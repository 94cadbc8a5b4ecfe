package worker

import (
	"github.com/okian/roadreport/pkg/logger"
)

// Option applies a configuration option to the Notifier.
type Option func(*Notifier)

// WithName sets the notifier name for identification and logging.
func WithName(name string) Option {
	return func(n *Notifier) {
		if name != "" {
			n.name = name
		}
	}
}

// WithLogger sets a custom logger for the notifier.
func WithLogger(logger logger.Logger) Option {
	return func(n *Notifier) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// WithHandler attaches h at construction.
func WithHandler(h Handler) Option {
	return func(n *Notifier) { n.handler = h }
}
