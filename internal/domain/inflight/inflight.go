// Package inflight provides a non-blocking mutual-exclusion lock keyed by
// string, used to reject a second concurrent operation on the same ticket.
package inflight

import (
	"context"
	"sync"
	"sync/atomic"
)

// Locker guards keyed critical sections.
type Locker interface {
	// TryAcquire takes the lock for key. It returns false without blocking
	// when key is already held or the locker is full.
	TryAcquire(ctx context.Context, key string) bool

	// Release frees key. Releasing a key that is not held is a no-op.
	Release(ctx context.Context, key string)

	Size() int64
}

type locker struct {
	mu      sync.Mutex
	held    map[string]struct{}
	maxKeys int
	size    atomic.Int64
}

// New creates an empty Locker.
func New(opts ...Option) Locker {
	l := &locker{}
	for _, opt := range opts {
		opt(l)
	}
	l.held = make(map[string]struct{})
	return l
}

func (l *locker) TryAcquire(_ context.Context, key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, busy := l.held[key]; busy {
		return false
	}
	if l.maxKeys > 0 && len(l.held) >= l.maxKeys {
		return false
	}
	l.held[key] = struct{}{}
	l.size.Add(1)
	return true
}

func (l *locker) Release(_ context.Context, key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.held[key]; ok {
		delete(l.held, key)
		l.size.Add(-1)
	}
}

// Size returns the number of keys currently held.
func (l *locker) Size() int64 {
	return l.size.Load()
}
