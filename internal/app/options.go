package service

import (
	"github.com/okian/roadreport/internal/adapters/mq/worker"
	"github.com/okian/roadreport/internal/domain/model"
	"github.com/okian/roadreport/internal/domain/staging"
	"github.com/okian/roadreport/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithQueueSize sets the maximum number of undelivered outcomes.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithPageSizes sets the recent and history page sizes.
func WithPageSizes(recent, history int) Option {
	return func(s *Service) {
		if recent > 0 {
			s.recentLimit = recent
		}
		if history > 0 {
			s.historyLimit = history
		}
	}
}

// WithStagingOptions configures the staging store of every new session.
func WithStagingOptions(opts ...staging.Option) Option {
	return func(s *Service) {
		s.stagingOpts = append(s.stagingOpts, opts...)
	}
}

// WithLocator sets the position fallback used when Analyze gets no position.
func WithLocator(fn func([]staging.Source) (model.Position, bool)) Option {
	return func(s *Service) {
		if fn != nil {
			s.locate = fn
		}
	}
}

// WithHandler attaches an outcome handler at start.
func WithHandler(h worker.Handler) Option {
	return func(s *Service) { s.handler = h }
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}
