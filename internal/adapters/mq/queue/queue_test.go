package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/roadreport/internal/domain/model"
)

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	o1 := model.Outcome{Op: model.OpDraft, SessionID: "s1", UUID: "t1"}
	if !q.Enqueue(ctx, o1) {
		t.Error("expected enqueue to succeed")
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	got := <-q.Dequeue(ctx)
	if got.UUID != "t1" || got.Op != model.OpDraft {
		t.Errorf("expected draft outcome for t1, got %+v", got)
	}
	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if !q.Enqueue(ctx, model.Outcome{Op: model.OpSubmit, UUID: fmt.Sprintf("t%d", i)}) {
			t.Errorf("expected enqueue %d to succeed", i)
		}
	}
	if q.Enqueue(ctx, model.Outcome{Op: model.OpSubmit, UUID: "t3"}) {
		t.Error("expected enqueue to fail when full")
	}
	if l := q.Len(ctx); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	const producers, perProducer = 10, 10
	q := NewInMemoryQueue(WithCapacity(producers * perProducer))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				q.Enqueue(ctx, model.Outcome{Op: model.OpList, SessionID: fmt.Sprintf("s%d-%d", id, j)})
			}
		}(i)
	}
	wg.Wait()

	if l := q.Len(ctx); l != producers*perProducer {
		t.Fatalf("expected %d queued outcomes, got %d", producers*perProducer, l)
	}

	_ = q.Close()
	seen := 0
	for range q.Dequeue(ctx) {
		seen++
	}
	if seen != producers*perProducer {
		t.Errorf("expected to drain %d outcomes, got %d", producers*perProducer, seen)
	}
}

func TestInMemoryQueue_Close(t *testing.T) {
	q := NewInMemoryQueue()
	ctx := context.Background()

	if !q.Enqueue(ctx, model.Outcome{Op: model.OpGet}) {
		t.Fatal("expected enqueue to succeed")
	}
	if err := q.Close(); err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}
	if err := q.Close(); err != nil {
		t.Fatalf("second close should be a no-op, got %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to report closed")
	}
	if q.Enqueue(ctx, model.Outcome{Op: model.OpGet}) {
		t.Error("expected enqueue after close to fail")
	}

	ch := q.Dequeue(ctx)
	if _, ok := <-ch; !ok {
		t.Error("expected the queued outcome to survive close")
	}
	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected channel to be closed after drain")
		}
	case <-time.After(time.Second):
		t.Error("timed out waiting for dequeue channel to close")
	}
}

func TestInMemoryQueue_DequeueCancel(t *testing.T) {
	q := NewInMemoryQueue()
	ctx, cancel := context.WithCancel(context.Background())
	ch := q.Dequeue(ctx)
	cancel()

	q.Enqueue(context.Background(), model.Outcome{Op: model.OpGet})
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Error("expected dequeue channel to close or deliver after cancel")
	}
}
