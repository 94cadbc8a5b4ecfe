// Package service wires the report submission pipeline: staging, upload,
// aggregation and the ticket lifecycle on the client side, and the report
// store operations on the server side.
package service

import (
	"context"
	"sync"
	"time"

	eventqueue "github.com/okian/roadreport/internal/adapters/mq/queue"
	"github.com/okian/roadreport/internal/adapters/mq/worker"
	"github.com/okian/roadreport/internal/adapters/upload"
	"github.com/okian/roadreport/internal/domain/inflight"
	"github.com/okian/roadreport/internal/domain/model"
	"github.com/okian/roadreport/internal/domain/staging"
	"github.com/okian/roadreport/internal/domain/types"
	"github.com/okian/roadreport/pkg/errkind"
	"github.com/okian/roadreport/pkg/logger"
	"github.com/okian/roadreport/pkg/metrics"
)

const (
	defaultQueueSize    = 64
	defaultRecentLimit  = 5
	defaultHistoryLimit = 50
	stopTimeout         = 5 * time.Second
)

// ReportStore is the remote report store.
type ReportStore interface {
	CreateDraft(ctx context.Context, req types.DraftRequest) (types.DraftResponse, error)
	Submit(ctx context.Context, uuid string) (types.Ticket, error)
	Get(ctx context.Context, uuid string) (types.Ticket, error)
	List(ctx context.Context, owner string, skip, limit int) (types.TicketList, error)
}

// Uploader encodes staged photos and returns their detection results.
type Uploader interface {
	Upload(ctx context.Context, photos []staging.Photo, pos model.Position, owner string) (upload.Result, error)
}

// Service runs report sessions against a report store.
type Service struct {
	mu sync.RWMutex

	store    ReportStore
	uploader Uploader
	locate   func([]staging.Source) (model.Position, bool)
	locker   inflight.Locker
	cache    *cache

	outcomes eventqueue.Queue
	notifier *worker.Notifier
	handler  worker.Handler

	queueSize    int
	recentLimit  int
	historyLimit int
	stagingOpts  []staging.Option

	started bool
	now     func() time.Time
	logger  logger.Logger
}

// New constructs a Service over a report store and an uploader.
func New(store ReportStore, uploader Uploader, opts ...Option) *Service {
	s := &Service{
		store:        store,
		uploader:     uploader,
		locate:       func([]staging.Source) (model.Position, bool) { return model.Position{}, false },
		locker:       inflight.New(),
		cache:        newCache(),
		queueSize:    defaultQueueSize,
		recentLimit:  defaultRecentLimit,
		historyLimit: defaultHistoryLimit,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Named("service")
	}
	return s
}

// Start creates the outcome queue and runs the notifier until ctx is done
// or Stop is called.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.outcomes = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.notifier = worker.NewNotifier(s.outcomes,
		worker.WithHandler(s.handler),
		worker.WithLogger(s.logger.Named("notifier")))
	go s.notifier.Run(ctx)

	s.started = true
	s.logger.Info(ctx, "report service started",
		logger.Int("queueSize", s.queueSize),
		logger.Int("recentLimit", s.recentLimit),
		logger.Int("historyLimit", s.historyLimit))
	return nil
}

// Stop closes the outcome queue and waits for the notifier.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	_ = s.outcomes.Close()
	if err := s.notifier.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "notifier shutdown", logger.Error(err))
	}
	s.started = false
	s.logger.Info(ctx, "report service stopped")
}

// Attach routes outcomes to h.
func (s *Service) Attach(h worker.Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = h
	if s.notifier != nil {
		s.notifier.Attach(h)
	}
}

// Detach stops delivering outcomes; later outcomes are discarded.
func (s *Service) Detach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = nil
	if s.notifier != nil {
		s.notifier.Detach()
	}
}

// publish records err metrics and queues the outcome of an operation.
func (s *Service) publish(ctx context.Context, o model.Outcome) { //nolint:gocritic // hugeParam: outcome is copied into the queue
	o.At = s.now()
	if o.Err != nil {
		o.Kind = errkind.Name(o.Err)
		metrics.RecordPipelineError(string(o.Op), o.Kind)
		s.logger.Warn(ctx, "operation failed",
			logger.String("op", string(o.Op)),
			logger.String("session", o.SessionID),
			logger.String("uuid", o.UUID),
			logger.String("kind", o.Kind),
			logger.Error(o.Err))
	}

	s.mu.RLock()
	q := s.outcomes
	started := s.started
	s.mu.RUnlock()
	if !started {
		return
	}
	if !q.Enqueue(ctx, o) {
		s.logger.Warn(ctx, "outcome dropped", logger.String("op", string(o.Op)))
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":      s.started,
		"queueSize":    s.queueSize,
		"recentLimit":  s.recentLimit,
		"historyLimit": s.historyLimit,
		"inFlight":     s.locker.Size(),
		"cached":       s.cache.size(),
	}
	if s.started {
		stats["queueLength"] = s.outcomes.Len(context.Background())
	}
	return stats
}
