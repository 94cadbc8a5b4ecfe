// Package staging holds the photos a user has picked for a report and owns
// their preview lifecycle: every preview created here is released exactly
// once, when its photo is removed, the store is cleared or closed.
package staging

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/okian/roadreport/internal/domain/model"
	"github.com/okian/roadreport/pkg/errkind"
	"github.com/okian/roadreport/pkg/logger"
	"github.com/okian/roadreport/pkg/metrics"
)

// Photo is a staged candidate image.
type Photo struct {
	ID     string
	Source Source
	h      *handle
}

// Filename returns the source name or the image_<id>.jpg fallback.
func (p Photo) Filename() string {
	if p.Source != nil {
		if n := p.Source.Name(); n != "" && n != "." {
			return n
		}
	}
	return fmt.Sprintf("image_%s.jpg", p.ID)
}

// Preview returns the preview location, or "" once released.
func (p Photo) Preview() string {
	if p.h == nil {
		return ""
	}
	return p.h.location()
}

// Store is the in-progress set of staged photos.
type Store struct {
	mu           sync.Mutex
	photos       []Photo
	capacity     int
	acceptPrefix bool
	closed       bool
	previewer    Previewer
	newID        func() string
	logger       logger.Logger
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		capacity:  DefaultCapacity,
		previewer: nopPreviewer{},
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Named("staging")
	}
	return s
}

// Add stages srcs in order and returns the newly staged photos. A batch
// larger than the remaining capacity fails with model.ErrCapacity; by
// default nothing is staged, with WithAcceptPrefix the fitting prefix is.
// A preview failure releases the previews already created for the batch and
// leaves the store unchanged.
func (s *Store) Add(ctx context.Context, srcs ...Source) ([]Photo, error) {
	const op = "staging.Add"
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, errkind.Wrap(op, ErrClosed)
	}
	for _, src := range srcs {
		if src == nil {
			return nil, errkind.Wrap(op, ErrEmptySource)
		}
	}

	remaining := s.capacity - len(s.photos)
	accept := srcs
	var capErr error
	if len(srcs) > remaining {
		metrics.RecordStagingRejected()
		capErr = errkind.WrapKind(op, model.ErrCapacity,
			fmt.Errorf("batch of %d exceeds remaining %d of %d", len(srcs), remaining, s.capacity))
		if !s.acceptPrefix {
			s.logger.Warn(ctx, "staging batch rejected",
				logger.Int("batch", len(srcs)),
				logger.Int("remaining", remaining))
			return nil, capErr
		}
		accept = srcs[:remaining]
	}

	added := make([]Photo, 0, len(accept))
	for _, src := range accept {
		id := s.newID()
		h, err := acquire(s.previewer, id, src)
		if err != nil {
			for _, p := range added {
				_ = p.h.release()
			}
			s.logger.Error(ctx, "preview creation failed, batch rolled back",
				logger.String("photo", id),
				logger.Error(err))
			return nil, errkind.WrapKind(op, ErrPreview, err)
		}
		added = append(added, Photo{ID: id, Source: src, h: h})
	}

	s.photos = append(s.photos, added...)
	metrics.UpdateStagedPhotos(len(added))
	s.logger.Debug(ctx, "photos staged",
		logger.Int("added", len(added)),
		logger.Int("count", len(s.photos)))
	return added, capErr
}

// Remove drops one photo and releases its preview.
func (s *Store) Remove(ctx context.Context, id string) error {
	const op = "staging.Remove"
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.photos {
		if p.ID != id {
			continue
		}
		s.photos = append(s.photos[:i], s.photos[i+1:]...)
		metrics.UpdateStagedPhotos(-1)
		if err := p.h.release(); err != nil {
			s.logger.Warn(ctx, "preview release failed", logger.String("photo", id), logger.Error(err))
		}
		return nil
	}
	return errkind.WrapKind(op, model.ErrNotFound, fmt.Errorf("photo %s", id))
}

// Clear drops every photo and releases all previews.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releaseAll(ctx)
}

// Close releases all previews and disables the store. Further calls are no-ops.
func (s *Store) Close(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.releaseAll(ctx)
	s.closed = true
}

func (s *Store) releaseAll(ctx context.Context) {
	for _, p := range s.photos {
		if err := p.h.release(); err != nil {
			s.logger.Warn(ctx, "preview release failed", logger.String("photo", p.ID), logger.Error(err))
		}
	}
	metrics.UpdateStagedPhotos(-len(s.photos))
	s.photos = nil
}

// Photos returns a snapshot of the staged photos in staging order.
func (s *Store) Photos() []Photo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Photo, len(s.photos))
	copy(out, s.photos)
	return out
}

// Len returns the number of staged photos.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.photos)
}

// Remaining returns how many more photos fit.
func (s *Store) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0
	}
	return s.capacity - len(s.photos)
}

// CanAdd reports whether at least one more photo fits.
func (s *Store) CanAdd() bool {
	return s.Remaining() > 0
}

// Closed reports whether Close was called.
func (s *Store) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
