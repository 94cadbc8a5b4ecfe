package service

import (
	"context"
	"errors"

	"github.com/okian/roadreport/internal/domain/model"
	"github.com/okian/roadreport/pkg/errkind"
)

// Recent returns the owner's newest tickets, one recent-view page.
func (s *Service) Recent(ctx context.Context, owner string) (model.Page, error) {
	const op = "service.Recent"
	return s.query(ctx, op, owner, 0, s.recentLimit)
}

// History returns one history-view page of the owner's tickets.
func (s *Service) History(ctx context.Context, owner string, skip int) (model.Page, error) {
	const op = "service.History"
	return s.query(ctx, op, owner, skip, s.historyLimit)
}

func (s *Service) query(ctx context.Context, op, owner string, skip, limit int) (model.Page, error) {
	page, err := s.list(ctx, owner, skip, limit, true)
	if err != nil {
		err = errkind.Wrap(op, err)
		s.publish(ctx, model.Outcome{Op: model.OpList, Err: err})
		return model.Page{}, err
	}
	return page, nil
}

func (s *Service) list(ctx context.Context, owner string, skip, limit int, cached bool) (model.Page, error) {
	const op = "service.list"
	if skip < 0 || limit <= 0 {
		return model.Page{}, errkind.WrapKind(op, model.ErrQuery, errors.New("skip must be >= 0 and limit > 0"))
	}
	key := pageKey(owner, skip, limit)
	if cached {
		if p, ok := s.cache.page(key); ok {
			return p, nil
		}
	}
	wire, err := s.store.List(ctx, owner, skip, limit)
	if err != nil {
		if errkind.KindOf(err) != nil {
			return model.Page{}, errkind.Wrap(op, err)
		}
		return model.Page{}, errkind.WrapKind(op, model.ErrQuery, err)
	}
	page := wire.Page()
	s.cache.putPage(key, page)
	return page, nil
}

// Get returns the ticket uuid, served from the cache when present.
func (s *Service) Get(ctx context.Context, uuid string) (model.Ticket, error) {
	const op = "service.Get"
	if t, ok := s.cache.ticket(uuid); ok {
		return t, nil
	}
	t, err := s.fetch(ctx, uuid)
	if err != nil {
		err = errkind.Wrap(op, err)
		s.publish(ctx, model.Outcome{Op: model.OpGet, UUID: uuid, Err: err})
		return model.Ticket{}, err
	}
	return t, nil
}

// Refresh drops the cache and fetches uuid from the store.
func (s *Service) Refresh(ctx context.Context, uuid string) (model.Ticket, error) {
	const op = "service.Refresh"
	s.cache.reset()
	t, err := s.fetch(ctx, uuid)
	if err != nil {
		err = errkind.Wrap(op, err)
		s.publish(ctx, model.Outcome{Op: model.OpGet, UUID: uuid, Err: err})
		return model.Ticket{}, err
	}
	return t, nil
}

func (s *Service) fetch(ctx context.Context, uuid string) (model.Ticket, error) {
	const op = "service.fetch"
	wire, err := s.store.Get(ctx, uuid)
	if err != nil {
		if errkind.KindOf(err) != nil {
			return model.Ticket{}, errkind.Wrap(op, err)
		}
		return model.Ticket{}, errkind.WrapKind(op, model.ErrQuery, err)
	}
	t := wire.Model()
	s.cache.put(t)
	return t, nil
}
