package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/okian/roadreport/internal/adapters/repository"
	"github.com/okian/roadreport/internal/domain/aggregate"
	"github.com/okian/roadreport/internal/domain/model"
	"github.com/okian/roadreport/internal/domain/types"
	"github.com/okian/roadreport/pkg/errkind"
	"github.com/okian/roadreport/pkg/logger"
	"github.com/okian/roadreport/pkg/metrics"
)

const defaultMaxListLimit = 100

// ReportsOption applies a configuration option to Reports.
type ReportsOption func(*Reports)

// WithPrioritizer sets the priority rules used at draft creation.
func WithPrioritizer(p *aggregate.Prioritizer) ReportsOption {
	return func(r *Reports) {
		if p != nil {
			r.prioritizer = p
		}
	}
}

// WithClock sets the time source for created_at and submitted_at.
func WithClock(now func() time.Time) ReportsOption {
	return func(r *Reports) {
		if now != nil {
			r.now = now
		}
	}
}

// WithUUIDGenerator sets the ticket uuid generator.
func WithUUIDGenerator(fn func() string) ReportsOption {
	return func(r *Reports) {
		if fn != nil {
			r.newID = fn
		}
	}
}

// WithMaxListLimit caps the page size of List.
func WithMaxListLimit(n int) ReportsOption {
	return func(r *Reports) {
		if n > 0 {
			r.maxLimit = n
		}
	}
}

// WithReportsLogger sets a custom logger.
func WithReportsLogger(l logger.Logger) ReportsOption {
	return func(r *Reports) {
		if l != nil {
			r.logger = l
		}
	}
}

// Reports implements the report store served by the report server.
type Reports struct {
	store       repository.Store
	prioritizer *aggregate.Prioritizer
	now         func() time.Time
	newID       func() string
	maxLimit    int
	logger      logger.Logger
}

// NewReports creates the report store operations over store.
func NewReports(store repository.Store, opts ...ReportsOption) *Reports {
	r := &Reports{
		store:       store,
		prioritizer: aggregate.NewPrioritizer(),
		now:         time.Now,
		newID:       uuid.NewString,
		maxLimit:    defaultMaxListLimit,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logger.Named("reports")
	}
	return r
}

// CreateDraft validates req and stores it as a new draft.
func (r *Reports) CreateDraft(ctx context.Context, req types.DraftRequest) (types.DraftResponse, error) {
	const op = "service.Reports.CreateDraft"
	t, err := r.draft(req)
	if err != nil {
		return types.DraftResponse{}, errkind.WrapKind(op, ErrInvalidDraft, err)
	}
	if err := r.store.Create(ctx, t); err != nil {
		return types.DraftResponse{}, errkind.Wrap(op, err)
	}
	metrics.RecordDraftCreated()
	r.logger.Info(ctx, "draft stored",
		logger.String("uuid", t.UUID),
		logger.String("owner", t.OwnerID),
		logger.String("priority", string(t.Priority)))

	return types.DraftResponse{
		UUID:           t.UUID,
		Status:         string(t.Status),
		Priority:       string(t.Priority),
		CanBeSubmitted: t.CanBeSubmitted(),
		Message:        "Draft report created successfully",
	}, nil
}

func (r *Reports) draft(req types.DraftRequest) (model.Ticket, error) { //nolint:gocritic // hugeParam: request is read once
	if req.UserID == "" {
		return model.Ticket{}, errors.New("user_id is required")
	}
	pos, err := model.ParsePosition(req.Latitude, req.Longitude)
	if err != nil {
		return model.Ticket{}, err
	}
	sum, err := aggregate.Aggregate([]model.DetectionResult{{
		AverageRisk:   req.AverageRisk,
		MaxRisk:       req.MaxRisk,
		TotalPotholes: req.TotalPotholes,
		Detections:    req.Detections,
	}})
	if err != nil {
		return model.Ticket{}, err
	}
	return model.Ticket{
		UUID:      r.newID(),
		OwnerID:   req.UserID,
		Address:   req.Address,
		Position:  pos,
		ImageURLs: append([]string(nil), req.ImageURLs...),
		Aggregate: sum.Risk,
		Status:    model.StatusDraft,
		Priority:  r.prioritizer.Priority(sum.Risk),
		CreatedAt: r.now().UTC(),
	}, nil
}

// Submit moves the draft uuid to submitted. Submitting a submitted ticket
// returns it unchanged with changed=false.
func (r *Reports) Submit(ctx context.Context, id string) (types.Ticket, bool, error) {
	const op = "service.Reports.Submit"
	cur, err := r.store.Get(ctx, id)
	if err != nil {
		return types.Ticket{}, false, errkind.Wrap(op, err)
	}
	if cur.Submitted() {
		metrics.RecordSubmission("duplicate")
		return types.FromTicket(cur), false, nil
	}
	if !cur.CanBeSubmitted() {
		return types.Ticket{}, false, errkind.WrapKind(op, ErrNotSubmittable,
			fmt.Errorf("ticket %s lacks an address, a position or images", id))
	}

	at := r.now().UTC()
	if at.Before(cur.CreatedAt) {
		at = cur.CreatedAt
	}
	t, changed, err := r.store.MarkSubmitted(ctx, id, at)
	if err != nil {
		metrics.RecordSubmission("error")
		return types.Ticket{}, false, errkind.Wrap(op, err)
	}
	if changed {
		metrics.RecordSubmission("ok")
		r.logger.Info(ctx, "ticket submitted", logger.String("uuid", id))
	} else {
		metrics.RecordSubmission("duplicate")
	}
	return types.FromTicket(t), changed, nil
}

// Get returns one stored ticket.
func (r *Reports) Get(ctx context.Context, id string) (types.Ticket, error) {
	const op = "service.Reports.Get"
	t, err := r.store.Get(ctx, id)
	if err != nil {
		return types.Ticket{}, errkind.Wrap(op, err)
	}
	return types.FromTicket(t), nil
}

// List returns one newest-first page of tickets matching f.
func (r *Reports) List(ctx context.Context, f repository.Filter) (types.TicketList, error) {
	const op = "service.Reports.List"
	switch {
	case f.Skip < 0:
		return types.TicketList{}, errkind.WrapKind(op, ErrInvalidQuery, errors.New("skip must be >= 0"))
	case f.Limit < 1 || f.Limit > r.maxLimit:
		return types.TicketList{}, errkind.WrapKind(op, ErrInvalidQuery,
			fmt.Errorf("limit must be between 1 and %d", r.maxLimit))
	}
	switch f.Status {
	case "", model.StatusDraft, model.StatusSubmitted:
	default:
		return types.TicketList{}, errkind.WrapKind(op, ErrInvalidQuery, fmt.Errorf("unknown status %q", f.Status))
	}

	items, total, err := r.store.List(ctx, f)
	if err != nil {
		return types.TicketList{}, errkind.Wrap(op, err)
	}
	out := types.TicketList{Total: total, Items: make([]types.Ticket, 0, len(items))}
	for _, t := range items {
		out.Items = append(out.Items, types.FromTicket(t))
	}
	return out, nil
}

// Stats returns ticket counts per status.
func (r *Reports) Stats(ctx context.Context) (map[string]int, error) {
	const op = "service.Reports.Stats"
	counts, err := r.store.CountByStatus(ctx)
	if err != nil {
		return nil, errkind.Wrap(op, err)
	}
	out := map[string]int{
		string(model.StatusDraft):     counts[model.StatusDraft],
		string(model.StatusSubmitted): counts[model.StatusSubmitted],
	}
	out["total"] = out[string(model.StatusDraft)] + out[string(model.StatusSubmitted)]
	return out, nil
}
