package service

import (
	"context"
	"errors"

	"github.com/okian/roadreport/internal/domain/aggregate"
	"github.com/okian/roadreport/internal/domain/model"
	"github.com/okian/roadreport/internal/domain/staging"
	"github.com/okian/roadreport/internal/domain/ticket"
	"github.com/okian/roadreport/internal/domain/types"
	"github.com/okian/roadreport/pkg/errkind"
	"github.com/okian/roadreport/pkg/logger"
	"github.com/okian/roadreport/pkg/metrics"
)

func sessionKey(ss *Session) string { return "session:" + ss.id }

// Stage adds photos to the session while it is collecting.
func (s *Service) Stage(ctx context.Context, ss *Session, srcs ...staging.Source) ([]staging.Photo, error) {
	const op = "service.Stage"
	var err error
	defer func() {
		if err != nil {
			s.publish(ctx, model.Outcome{Op: model.OpStage, SessionID: ss.id, Err: err})
		}
	}()

	if err = collecting(op, ss); err != nil {
		return nil, err
	}
	var added []staging.Photo
	added, err = ss.photos.Add(ctx, srcs...)
	if err != nil {
		err = errkind.Wrap(op, err)
	}
	return added, err
}

// Unstage removes one photo from the session while it is collecting.
func (s *Service) Unstage(ctx context.Context, ss *Session, id string) error {
	const op = "service.Unstage"
	err := collecting(op, ss)
	if err == nil {
		if err = ss.photos.Remove(ctx, id); err != nil {
			err = errkind.Wrap(op, err)
		}
	}
	if err != nil {
		s.publish(ctx, model.Outcome{Op: model.OpStage, SessionID: ss.id, Err: err})
	}
	return err
}

func collecting(op string, ss *Session) error {
	if ph := ss.machine.Phase(); ph != ticket.PhaseCollecting {
		return errkind.WrapKind(op, model.ErrInvalidTransition,
			errors.New("staged photos can only change while collecting (current phase: "+string(ph)+")"))
	}
	return nil
}

// Analyze uploads the staged photos, aggregates the detections and creates
// the draft ticket. A nil pos falls back to the first staged photo that
// carries GPS data. On failure the session returns to collecting with its
// photos intact.
func (s *Service) Analyze(ctx context.Context, ss *Session, pos *model.Position) (model.Ticket, error) {
	const op = "service.Analyze"
	t, err := s.analyze(ctx, ss, pos)
	if err != nil {
		err = errkind.Wrap(op, err)
		s.publish(ctx, model.Outcome{Op: model.OpAnalyze, SessionID: ss.id, Err: err})
		return model.Ticket{}, err
	}
	s.publish(ctx, model.Outcome{Op: model.OpAnalyze, SessionID: ss.id, UUID: t.UUID, Ticket: &t})
	return t, nil
}

func (s *Service) analyze(ctx context.Context, ss *Session, pos *model.Position) (model.Ticket, error) {
	const op = "service.analyze"
	key := sessionKey(ss)
	if !s.locker.TryAcquire(ctx, key) {
		return model.Ticket{}, errkind.NewKind(op, model.ErrBusy)
	}
	defer s.locker.Release(ctx, key)

	photos := ss.photos.Photos()
	if len(photos) == 0 {
		return model.Ticket{}, errkind.NewKind(op, model.ErrNoPhotos)
	}

	where, known, err := s.resolvePosition(photos, pos)
	if err != nil {
		return model.Ticket{}, err
	}
	if !known {
		return model.Ticket{}, errkind.WrapKind(op, model.ErrInvalidPosition,
			errors.New("no position selected and no photo carries GPS data"))
	}
	if err := ss.machine.Guard(op, func(ph ticket.Phase, _ string) ticket.GuardResult {
		return ticket.CanAnalyze(ticket.AnalyzeContext{Phase: ph, StagedCount: len(photos), HasPosition: known})
	}); err != nil {
		return model.Ticket{}, err
	}
	if err := ss.machine.Transition(ctx, ticket.PhaseAnalyzing); err != nil {
		return model.Ticket{}, err
	}

	t, err := s.draftFromPhotos(ctx, ss, photos, where)
	if err != nil {
		if rerr := ss.machine.Transition(ctx, ticket.PhaseCollecting); rerr != nil {
			s.logger.Error(ctx, "rollback to collecting failed", logger.Error(rerr))
		}
		return model.Ticket{}, err
	}
	if err := ss.machine.Drafted(ctx, t.UUID); err != nil {
		return model.Ticket{}, err
	}
	ss.setTicket(t)
	s.cache.put(t)
	return t, nil
}

func (s *Service) resolvePosition(photos []staging.Photo, pos *model.Position) (model.Position, bool, error) {
	const op = "service.resolvePosition"
	if pos != nil {
		if err := pos.Validate(); err != nil {
			return model.Position{}, false, errkind.WrapKind(op, model.ErrInvalidPosition, err)
		}
		return *pos, true, nil
	}
	srcs := make([]staging.Source, 0, len(photos))
	for _, p := range photos {
		srcs = append(srcs, p.Source)
	}
	where, ok := s.locate(srcs)
	return where, ok, nil
}

func (s *Service) draftFromPhotos(ctx context.Context, ss *Session, photos []staging.Photo, pos model.Position) (model.Ticket, error) {
	const op = "service.draftFromPhotos"
	res, err := s.uploader.Upload(ctx, photos, pos, ss.owner)
	if err != nil {
		return model.Ticket{}, err
	}
	sum, err := aggregate.Aggregate(res.Results)
	if err != nil {
		return model.Ticket{}, errkind.Wrap(op, err)
	}
	req := types.NewDraftRequest(ss.owner, res.Address, pos, sum.ImageURLs, sum.Risk)
	return s.createDraft(ctx, req)
}

// Review moves a drafted session into review.
func (s *Service) Review(ctx context.Context, ss *Session) error {
	const op = "service.Review"
	return errkind.Wrap(op, ss.machine.Transition(ctx, ticket.PhaseReviewing))
}

// Submit submits the session's draft. Submitting an already submitted
// session returns the cached ticket without a remote call.
func (s *Service) Submit(ctx context.Context, ss *Session) (model.Ticket, error) {
	const op = "service.Submit"
	t, err := s.submitSession(ctx, ss)
	if err != nil {
		err = errkind.Wrap(op, err)
		s.publish(ctx, model.Outcome{Op: model.OpSubmit, SessionID: ss.id, UUID: ss.machine.UUID(), Err: err})
		return model.Ticket{}, err
	}
	s.publish(ctx, model.Outcome{Op: model.OpSubmit, SessionID: ss.id, UUID: t.UUID, Ticket: &t})
	return t, nil
}

func (s *Service) submitSession(ctx context.Context, ss *Session) (model.Ticket, error) {
	const op = "service.submitSession"
	if ss.machine.Phase() == ticket.PhaseSubmitted {
		if t, ok := ss.Ticket(); ok {
			metrics.RecordSubmission("duplicate")
			return t, nil
		}
	}
	id := ss.machine.UUID()
	key := id
	if key == "" {
		key = sessionKey(ss)
	}
	if !s.locker.TryAcquire(ctx, key) {
		return model.Ticket{}, errkind.NewKind(op, model.ErrBusy)
	}
	defer s.locker.Release(ctx, key)

	if err := ss.machine.Guard(op, func(ph ticket.Phase, uuid string) ticket.GuardResult {
		return ticket.CanSubmit(ticket.SubmitContext{Phase: ph, UUID: uuid})
	}); err != nil {
		return model.Ticket{}, err
	}
	if err := ss.machine.Transition(ctx, ticket.PhaseSubmitting); err != nil {
		return model.Ticket{}, err
	}
	t, err := s.submit(ctx, id)
	if err != nil {
		if rerr := ss.machine.Transition(ctx, ticket.PhaseReviewing); rerr != nil {
			s.logger.Error(ctx, "rollback to reviewing failed", logger.Error(rerr))
		}
		return model.Ticket{}, err
	}
	if err := ss.machine.Transition(ctx, ticket.PhaseSubmitted); err != nil {
		return model.Ticket{}, err
	}
	ss.setTicket(t)
	return t, nil
}

// Discard releases every preview the session holds and disables staging.
func (s *Service) Discard(ctx context.Context, ss *Session) {
	ss.photos.Close(ctx)
	s.logger.Debug(ctx, "session discarded", logger.String("session", ss.id))
}
