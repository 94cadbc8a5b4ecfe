package staging

import "github.com/okian/roadreport/pkg/logger"

// DefaultCapacity is the number of photos a report may carry.
const DefaultCapacity = 10

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithCapacity lowers the maximum number of staged photos. Values outside
// [1, DefaultCapacity] are ignored.
func WithCapacity(n int) Option {
	return func(s *Store) {
		if n > 0 && n <= DefaultCapacity {
			s.capacity = n
		}
	}
}

// WithAcceptPrefix stages the part of an oversized batch that still fits
// instead of rejecting the whole batch. The capacity error is still returned.
func WithAcceptPrefix() Option {
	return func(s *Store) { s.acceptPrefix = true }
}

// WithPreviewer sets the preview factory. Without one, previews are no-ops.
func WithPreviewer(p Previewer) Option {
	return func(s *Store) {
		if p != nil {
			s.previewer = p
		}
	}
}

// WithIDGenerator overrides photo id generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) { s.logger = l }
}
