package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/okian/roadreport/internal/domain/model"
	"github.com/okian/roadreport/pkg/errkind"
)

// MemoryStore keeps tickets in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	tickets map[string]model.Ticket
	gauges  *gauges
}

// NewMemoryStore creates an empty MemoryStore. Background gauges stop when
// ctx is done or Close is called.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{tickets: make(map[string]model.Ticket)}
	s.gauges = startGauges(ctx, s, newStoreOptions(opts))
	return s
}

// Close stops the background gauges.
func (s *MemoryStore) Close() error {
	s.gauges.close()
	return nil
}

// Create stores a new ticket.
func (s *MemoryStore) Create(_ context.Context, t model.Ticket) error {
	const op = "repository.MemoryStore.Create"
	defer observe("create", time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tickets[t.UUID]; ok {
		return errkind.NewKind(op, ErrExists)
	}
	s.tickets[t.UUID] = clone(t)
	return nil
}

// Get returns one ticket.
func (s *MemoryStore) Get(_ context.Context, uuid string) (model.Ticket, error) {
	const op = "repository.MemoryStore.Get"
	defer observe("get", time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tickets[uuid]
	if !ok {
		return model.Ticket{}, errkind.WrapKind(op, model.ErrNotFound, fmt.Errorf("ticket %s", uuid))
	}
	return clone(t), nil
}

// MarkSubmitted moves a draft to submitted.
func (s *MemoryStore) MarkSubmitted(_ context.Context, uuid string, at time.Time) (model.Ticket, bool, error) {
	const op = "repository.MemoryStore.MarkSubmitted"
	defer observe("submit", time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[uuid]
	if !ok {
		return model.Ticket{}, false, errkind.WrapKind(op, model.ErrNotFound, fmt.Errorf("ticket %s", uuid))
	}
	if t.Submitted() {
		return clone(t), false, nil
	}
	t.Status = model.StatusSubmitted
	t.SubmittedAt = &at
	s.tickets[uuid] = t
	return clone(t), true, nil
}

// List returns the filtered page, newest first.
func (s *MemoryStore) List(_ context.Context, f Filter) ([]model.Ticket, int, error) {
	const op = "repository.MemoryStore.List"
	defer observe("list", time.Now())
	if !validateFilter(f) {
		return nil, 0, errkind.NewKind(op, ErrInvalidFilter)
	}
	s.mu.RLock()
	matched := make([]model.Ticket, 0, len(s.tickets))
	for _, t := range s.tickets {
		if f.Owner != "" && t.OwnerID != f.Owner {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		matched = append(matched, t)
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].UUID > matched[j].UUID
	})

	total := len(matched)
	if f.Skip >= total {
		return []model.Ticket{}, total, nil
	}
	end := f.Skip + f.Limit
	if end > total {
		end = total
	}
	page := make([]model.Ticket, 0, end-f.Skip)
	for _, t := range matched[f.Skip:end] {
		page = append(page, clone(t))
	}
	return page, total, nil
}

// CountByStatus returns the number of tickets per status.
func (s *MemoryStore) CountByStatus(_ context.Context) (map[model.Status]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[model.Status]int)
	for _, t := range s.tickets {
		out[t.Status]++
	}
	return out, nil
}

// clone detaches slices and pointers so callers cannot mutate stored state.
func clone(t model.Ticket) model.Ticket {
	if t.ImageURLs != nil {
		t.ImageURLs = append([]string(nil), t.ImageURLs...)
	}
	if t.SubmittedAt != nil {
		at := *t.SubmittedAt
		t.SubmittedAt = &at
	}
	return t
}
