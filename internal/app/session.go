package service

import (
	"sync"

	"github.com/google/uuid"
	"github.com/okian/roadreport/internal/domain/model"
	"github.com/okian/roadreport/internal/domain/staging"
	"github.com/okian/roadreport/internal/domain/ticket"
)

// Session is one report in progress: its staged photos, its lifecycle
// phase and, once drafted, its ticket.
type Session struct {
	id      string
	owner   string
	photos  *staging.Store
	machine *ticket.Machine

	mu     sync.Mutex
	ticket *model.Ticket
}

// NewSession starts a report session for owner.
func (s *Service) NewSession(owner string) *Session {
	return &Session{
		id:      uuid.NewString(),
		owner:   owner,
		photos:  staging.New(s.stagingOpts...),
		machine: ticket.NewMachine(ticket.WithLogger(s.logger.Named("ticket"))),
	}
}

// ID returns the session id.
func (ss *Session) ID() string { return ss.id }

// Owner returns the owner id the session was started for.
func (ss *Session) Owner() string { return ss.owner }

// Photos returns a read-only view of the staged photos. Mutations go
// through Service.Stage and Service.Unstage, which check the phase.
func (ss *Session) Photos() StagedPhotos { return StagedPhotos{store: ss.photos} }

// Phase returns the lifecycle phase.
func (ss *Session) Phase() ticket.Phase { return ss.machine.Phase() }

// Ticket returns the drafted ticket, if any.
func (ss *Session) Ticket() (model.Ticket, bool) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if ss.ticket == nil {
		return model.Ticket{}, false
	}
	return *ss.ticket, true
}

func (ss *Session) setTicket(t model.Ticket) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.ticket = &t
}

// StagedPhotos is a read-only view of a session's staging store.
type StagedPhotos struct {
	store *staging.Store
}

// List returns the staged photos in order.
func (v StagedPhotos) List() []staging.Photo { return v.store.Photos() }

// Len returns the number of staged photos.
func (v StagedPhotos) Len() int { return v.store.Len() }

// CanAdd reports whether another photo fits.
func (v StagedPhotos) CanAdd() bool { return v.store.CanAdd() }

// Closed reports whether the session was discarded.
func (v StagedPhotos) Closed() bool { return v.store.Closed() }
