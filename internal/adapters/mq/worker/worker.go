// Package worker delivers pipeline outcomes from the queue to whatever
// presentation handler is currently attached.
package worker

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/roadreport/internal/domain/model"
	"github.com/okian/roadreport/pkg/logger"
	"github.com/okian/roadreport/pkg/metrics"
)

// Outcome is what the notifier reads off the queue.
type Outcome = model.Outcome

// Queue defines how the notifier receives outcomes.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Outcome
	IsClosed() bool
}

// Handler consumes delivered outcomes.
type Handler interface {
	Handle(ctx context.Context, o Outcome)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, o Outcome)

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, o Outcome) { f(ctx, o) } //nolint:gocritic // hugeParam: by value for channel semantics

// Notifier is a single worker that forwards outcomes to the attached
// handler. With no handler attached, delivery is a no-op.
type Notifier struct {
	queue   Queue
	name    string
	mu      sync.RWMutex
	handler Handler

	shutdown chan struct{}
	once     sync.Once
	done     chan struct{}

	logger logger.Logger
}

// NewNotifier creates a notifier reading from q.
func NewNotifier(q Queue, opts ...Option) *Notifier {
	n := &Notifier{
		queue:    q,
		name:     "notifier",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.logger == nil {
		n.logger = logger.Named(n.name)
	}
	return n
}

// Attach installs h as the delivery target, replacing any previous handler.
func (n *Notifier) Attach(h Handler) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.handler = h
}

// Detach removes the handler. Outcomes read afterwards are discarded.
func (n *Notifier) Detach() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.handler = nil
}

// Run forwards outcomes until ctx is canceled, Shutdown is called or the
// queue is closed and drained. On Shutdown of a closed queue, the outcomes
// still queued are delivered before Run returns.
func (n *Notifier) Run(ctx context.Context) {
	defer close(n.done)

	outcomes := n.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-n.shutdown:
			if n.queue.IsClosed() {
				n.drain(ctx, outcomes)
			}
			return
		case o, ok := <-outcomes:
			if !ok {
				return
			}
			n.deliver(ctx, o)
		}
	}
}

// drain delivers outcomes until the closed queue runs dry.
func (n *Notifier) drain(ctx context.Context, outcomes <-chan Outcome) {
	for {
		select {
		case <-ctx.Done():
			return
		case o, ok := <-outcomes:
			if !ok {
				return
			}
			n.deliver(ctx, o)
		}
	}
}

// Shutdown stops the notifier and waits for Run to return. Close the queue
// first to have the pending outcomes delivered.
func (n *Notifier) Shutdown(ctx context.Context) error {
	n.once.Do(func() { close(n.shutdown) })
	select {
	case <-n.done:
		return nil
	case <-ctx.Done():
		n.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (n *Notifier) deliver(ctx context.Context, o Outcome) { //nolint:gocritic // hugeParam: by value for channel semantics
	n.mu.RLock()
	h := n.handler
	n.mu.RUnlock()
	if h == nil {
		n.logger.Debug(ctx, "no handler attached, outcome discarded",
			logger.String("op", string(o.Op)),
			logger.String("session", o.SessionID))
		return
	}

	defer func() {
		if r := recover(); r != nil {
			n.logger.Error(ctx, "handler panicked",
				logger.String("op", string(o.Op)),
				logger.Any("panic", r))
		}
	}()
	h.Handle(ctx, o)
	metrics.RecordOutcomeDelivered()
}
