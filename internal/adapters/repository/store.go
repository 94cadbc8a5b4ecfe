// Package repository defines the ticket store interface and its memory and
// SQL implementations used by the report server.
package repository

import (
	"context"
	"time"

	"github.com/okian/roadreport/internal/domain/model"
)

// Filter selects one page of tickets. Results are newest first.
type Filter struct {
	Owner  string
	Status model.Status
	Skip   int
	Limit  int
}

// Store provides read/write access to stored tickets.
type Store interface {
	// Create stores a new ticket. Returns ErrExists if the uuid is taken.
	Create(ctx context.Context, t model.Ticket) error

	// Get returns one ticket. Returns model.ErrNotFound if unknown.
	Get(ctx context.Context, uuid string) (model.Ticket, error)

	// MarkSubmitted moves a draft to submitted with the given time. A ticket
	// that is already submitted is returned unchanged with changed=false.
	MarkSubmitted(ctx context.Context, uuid string, at time.Time) (t model.Ticket, changed bool, err error)

	// List returns the filtered page and the total number of matches.
	List(ctx context.Context, f Filter) ([]model.Ticket, int, error)

	// CountByStatus returns the number of tickets per status.
	CountByStatus(ctx context.Context) (map[model.Status]int, error)

	Close() error
}
