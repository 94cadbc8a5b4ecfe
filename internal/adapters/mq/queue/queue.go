// Package queue carries pipeline outcomes from the operations that produce
// them to the single notifier that delivers them.
//
// The queue is bounded and never blocks a producer: a full queue drops the
// outcome and counts it.
package queue

import (
	"context"
	"sync"

	"github.com/okian/roadreport/internal/domain/model"
	"github.com/okian/roadreport/pkg/metrics"
)

const defaultCapacity = 64

// Outcome is the payload type flowing through the queue.
type Outcome = model.Outcome

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds an outcome to the queue.
	// Returns false if the queue is full or closed and the outcome was dropped.
	Enqueue(ctx context.Context, o Outcome) bool

	// Dequeue returns a channel that receives outcomes as they become available.
	// The channel is closed when the queue is closed and drained.
	Dequeue(ctx context.Context) <-chan Outcome

	// Len returns the current number of queued outcomes.
	Len(ctx context.Context) int

	// Close stops accepting outcomes. Queued outcomes remain readable.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	outcomes chan Outcome
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.outcomes = make(chan Outcome, q.capacity)
	metrics.UpdateOutcomeQueueSize(0)
	return q
}

// Enqueue adds an outcome to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, o Outcome) bool { //nolint:gocritic // hugeParam: passed by value for channel semantics
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordOutcomeDropped()
		return false
	}

	select {
	case q.outcomes <- o:
		metrics.UpdateOutcomeQueueSize(len(q.outcomes))
		return true
	case <-ctx.Done():
		metrics.RecordOutcomeDropped()
		return false
	default:
		metrics.RecordOutcomeDropped()
		return false
	}
}

// Dequeue returns a channel that receives outcomes as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Outcome {
	out := make(chan Outcome)
	go func() {
		defer close(out)
		for o := range q.outcomes {
			select {
			case out <- o:
				metrics.UpdateOutcomeQueueSize(len(q.outcomes))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued outcomes.
func (q *InMemoryQueue) Len(_ context.Context) int {
	return len(q.outcomes)
}

// Close stops accepting outcomes.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.outcomes)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
