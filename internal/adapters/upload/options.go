package upload

import "github.com/okian/roadreport/pkg/logger"

// DefaultMaxImageBytes rejects photos larger than 10 MiB.
const DefaultMaxImageBytes = 10 << 20

// Option applies a configuration option to the Adapter.
type Option func(*Adapter)

// WithMaxImageBytes sets the per-photo size cap.
func WithMaxImageBytes(n int64) Option {
	return func(a *Adapter) {
		if n > 0 {
			a.maxBytes = n
		}
	}
}

// WithConcurrency bounds concurrent encoders. Zero means one per photo.
func WithConcurrency(n int) Option {
	return func(a *Adapter) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(a *Adapter) { a.logger = l }
}
