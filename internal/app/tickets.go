package service

import (
	"context"
	"errors"

	"github.com/okian/roadreport/internal/domain/model"
	"github.com/okian/roadreport/internal/domain/types"
	"github.com/okian/roadreport/pkg/errkind"
	"github.com/okian/roadreport/pkg/logger"
	"github.com/okian/roadreport/pkg/metrics"
)

// CreateDraft stores req as a new draft while holding the lock for key.
// key is the ticket uuid or, before one exists, the session id.
func (s *Service) CreateDraft(ctx context.Context, key string, req types.DraftRequest) (model.Ticket, error) {
	const op = "service.CreateDraft"
	if !s.locker.TryAcquire(ctx, key) {
		err := errkind.NewKind(op, model.ErrBusy)
		s.publish(ctx, model.Outcome{Op: model.OpDraft, SessionID: key, Err: err})
		return model.Ticket{}, err
	}
	defer s.locker.Release(ctx, key)

	t, err := s.createDraft(ctx, req)
	if err != nil {
		err = errkind.Wrap(op, err)
		s.publish(ctx, model.Outcome{Op: model.OpDraft, SessionID: key, Err: err})
		return model.Ticket{}, err
	}
	s.cache.put(t)
	s.publish(ctx, model.Outcome{Op: model.OpDraft, SessionID: key, UUID: t.UUID, Ticket: &t})
	return t, nil
}

func (s *Service) createDraft(ctx context.Context, req types.DraftRequest) (model.Ticket, error) {
	const op = "service.createDraft"
	resp, err := s.store.CreateDraft(ctx, req)
	if err != nil {
		return model.Ticket{}, errkind.WrapKind(op, model.ErrDraftCreation, err)
	}
	pos, err := model.ParsePosition(req.Latitude, req.Longitude)
	if err != nil {
		return model.Ticket{}, errkind.WrapKind(op, model.ErrDraftCreation, err)
	}

	status := model.Status(resp.Status)
	if status == "" {
		status = model.StatusDraft
	}
	t := model.Ticket{
		UUID:      resp.UUID,
		OwnerID:   req.UserID,
		Address:   req.Address,
		Position:  pos,
		ImageURLs: append([]string(nil), req.ImageURLs...),
		Aggregate: model.AggregateRisk{
			AverageRisk:   req.AverageRisk,
			MaxRisk:       req.MaxRisk,
			TotalPotholes: req.TotalPotholes,
			Detections:    req.Detections,
		},
		Status:    status,
		Priority:  model.Priority(resp.Priority),
		CreatedAt: s.now(),
	}
	metrics.RecordDraftCreated()
	s.logger.Info(ctx, "draft created",
		logger.String("uuid", t.UUID),
		logger.String("priority", string(t.Priority)),
		logger.Bool("canBeSubmitted", resp.CanBeSubmitted))
	return t, nil
}

// SubmitTicket submits the draft uuid while holding its lock. A ticket
// already known to be submitted is returned as is, without a remote call.
func (s *Service) SubmitTicket(ctx context.Context, uuid string) (model.Ticket, error) {
	const op = "service.SubmitTicket"
	if !s.locker.TryAcquire(ctx, uuid) {
		err := errkind.NewKind(op, model.ErrBusy)
		s.publish(ctx, model.Outcome{Op: model.OpSubmit, UUID: uuid, Err: err})
		return model.Ticket{}, err
	}
	defer s.locker.Release(ctx, uuid)

	t, err := s.submit(ctx, uuid)
	if err != nil {
		err = errkind.Wrap(op, err)
		s.publish(ctx, model.Outcome{Op: model.OpSubmit, UUID: uuid, Err: err})
		return model.Ticket{}, err
	}
	s.publish(ctx, model.Outcome{Op: model.OpSubmit, UUID: uuid, Ticket: &t})
	return t, nil
}

// submit performs the remote submission; callers hold the lock for uuid.
func (s *Service) submit(ctx context.Context, uuid string) (model.Ticket, error) {
	const op = "service.submit"
	if uuid == "" {
		return model.Ticket{}, errkind.WrapKind(op, model.ErrSubmission, errors.New("empty uuid"))
	}
	if t, ok := s.cache.ticket(uuid); ok && t.Submitted() {
		metrics.RecordSubmission("duplicate")
		return t, nil
	}
	wire, err := s.store.Submit(ctx, uuid)
	if err != nil {
		metrics.RecordSubmission("error")
		return model.Ticket{}, errkind.WrapKind(op, model.ErrSubmission, err)
	}
	t := wire.Model()
	if !t.Submitted() || t.SubmittedAt == nil {
		metrics.RecordSubmission("error")
		return model.Ticket{}, errkind.WrapKind(op, model.ErrSubmission,
			errors.New("store answered with status "+string(t.Status)))
	}
	s.cache.put(t)
	metrics.RecordSubmission("ok")
	s.logger.Info(ctx, "ticket submitted",
		logger.String("uuid", uuid),
		logger.String("submittedAt", t.SubmittedAt.String()))
	return t, nil
}

// ListRecent returns one newest-first page of the owner's tickets.
func (s *Service) ListRecent(ctx context.Context, owner string, skip, limit int) (model.Page, error) {
	const op = "service.ListRecent"
	page, err := s.list(ctx, owner, skip, limit, false)
	if err != nil {
		err = errkind.Wrap(op, err)
		s.publish(ctx, model.Outcome{Op: model.OpList, Err: err})
		return model.Page{}, err
	}
	return page, nil
}
