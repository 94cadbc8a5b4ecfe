package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/roadreport/internal/adapters/upload"
	"github.com/okian/roadreport/internal/domain/model"
	"github.com/okian/roadreport/internal/domain/staging"
	"github.com/okian/roadreport/internal/domain/types"
	"github.com/okian/roadreport/pkg/logger"
)

func init() {
	_ = logger.Init(logger.WithWriter(io.Discard))
}

var errRemote = errors.New("remote unavailable")

// fakeUploader returns one detection result per photo.
type fakeUploader struct {
	calls   atomic.Int32
	fail    error
	address string
	results []model.DetectionResult
}

func (u *fakeUploader) Upload(_ context.Context, photos []staging.Photo, _ model.Position, _ string) (upload.Result, error) {
	u.calls.Add(1)
	if u.fail != nil {
		return upload.Result{}, u.fail
	}
	if u.results != nil {
		return upload.Result{Address: u.address, Results: u.results}, nil
	}
	out := make([]model.DetectionResult, len(photos))
	for i, p := range photos {
		out[i] = model.DetectionResult{
			Filename:      p.Filename(),
			ImageURL:      "https://img.example/" + p.Filename(),
			AverageRisk:   40,
			MaxRisk:       60,
			TotalPotholes: 1,
			Detections:    model.SeverityCounts{High: 1},
		}
	}
	return upload.Result{Address: u.address, Results: out}, nil
}

// fakeStore is an in-memory report store.
type fakeStore struct {
	mu          sync.Mutex
	tickets     map[string]types.Ticket
	seq         int
	submitCalls atomic.Int32
	getCalls    atomic.Int32
	listCalls   atomic.Int32
	failDraft   error
	failSubmit  error
	block       chan struct{}
	now         time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tickets: make(map[string]types.Ticket),
		now:     time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (f *fakeStore) CreateDraft(_ context.Context, req types.DraftRequest) (types.DraftResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDraft != nil {
		return types.DraftResponse{}, f.failDraft
	}
	f.seq++
	id := fmt.Sprintf("ticket-%d", f.seq)
	f.tickets[id] = types.Ticket{
		UUID:          id,
		UserID:        req.UserID,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		Address:       req.Address,
		ImageURLs:     req.ImageURLs,
		TotalPotholes: req.TotalPotholes,
		AverageRisk:   req.AverageRisk,
		MaxRisk:       req.MaxRisk,
		Status:        string(model.StatusDraft),
		Priority:      string(model.PriorityHigh),
		CreatedAt:     f.now,
	}
	return types.DraftResponse{UUID: id, Status: "draft", Priority: "high", CanBeSubmitted: true}, nil
}

func (f *fakeStore) Submit(_ context.Context, uuid string) (types.Ticket, error) {
	f.submitCalls.Add(1)
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSubmit != nil {
		return types.Ticket{}, f.failSubmit
	}
	t, ok := f.tickets[uuid]
	if !ok {
		return types.Ticket{}, fmt.Errorf("ticket %s: %w", uuid, model.ErrNotFound)
	}
	if t.SubmittedAt == nil {
		at := time.Now().UTC()
		t.Status = string(model.StatusSubmitted)
		t.SubmittedAt = &at
		f.tickets[uuid] = t
	}
	return t, nil
}

func (f *fakeStore) Get(_ context.Context, uuid string) (types.Ticket, error) {
	f.getCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tickets[uuid]
	if !ok {
		return types.Ticket{}, fmt.Errorf("ticket %s: %w", uuid, model.ErrNotFound)
	}
	return t, nil
}

func (f *fakeStore) List(_ context.Context, owner string, skip, limit int) (types.TicketList, error) {
	f.listCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	var items []types.Ticket
	for i := f.seq; i >= 1; i-- {
		t, ok := f.tickets[fmt.Sprintf("ticket-%d", i)]
		if ok && (owner == "" || t.UserID == owner) {
			items = append(items, t)
		}
	}
	total := len(items)
	if skip > len(items) {
		skip = len(items)
	}
	items = items[skip:]
	if len(items) > limit {
		items = items[:limit]
	}
	return types.TicketList{Total: total, Items: items}, nil
}

// recorder collects delivered outcomes.
type recorder struct {
	mu  sync.Mutex
	got []model.Outcome
	ch  chan struct{}
}

func newRecorder() *recorder { return &recorder{ch: make(chan struct{}, 64)} }

func (r *recorder) Handle(_ context.Context, o model.Outcome) { //nolint:gocritic // hugeParam: handler signature
	r.mu.Lock()
	r.got = append(r.got, o)
	r.mu.Unlock()
	r.ch <- struct{}{}
}

func (r *recorder) next(d time.Duration) (model.Outcome, bool) {
	select {
	case <-r.ch:
		r.mu.Lock()
		defer r.mu.Unlock()
		return r.got[len(r.got)-1], true
	case <-time.After(d):
		return model.Outcome{}, false
	}
}

func photoSources(n int) []staging.Source {
	out := make([]staging.Source, n)
	for i := range out {
		out[i] = staging.BytesSource{Filename: fmt.Sprintf("p%d.jpg", i), Data: []byte{0xff, 0xd8, byte(i)}}
	}
	return out
}

var kyiv = model.Position{Longitude: 30.5234, Latitude: 50.4501}
