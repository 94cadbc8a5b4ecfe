package staging

import (
	"sync"
	"sync/atomic"

	"github.com/okian/roadreport/pkg/metrics"
)

// Preview is a displayable rendition of a staged photo.
type Preview interface {
	// Location identifies the rendition for a presentation layer.
	Location() string
	// Release frees the rendition.
	Release() error
}

// Previewer creates previews for newly staged photos.
type Previewer interface {
	Preview(id string, src Source) (Preview, error)
}

// nopPreviewer hands out previews that hold nothing.
type nopPreviewer struct{}

func (nopPreviewer) Preview(id string, _ Source) (Preview, error) { return nopPreview(id), nil }

type nopPreview string

func (p nopPreview) Location() string { return string(p) }
func (nopPreview) Release() error     { return nil }

// handle guarantees a preview is released at most once and keeps the
// outstanding-previews gauge in step.
type handle struct {
	preview  Preview
	once     sync.Once
	released atomic.Bool
	err      error
}

func acquire(p Previewer, id string, src Source) (*handle, error) {
	pv, err := p.Preview(id, src)
	if err != nil {
		return nil, err
	}
	metrics.UpdatePreviewsOutstanding(1)
	return &handle{preview: pv}, nil
}

func (h *handle) release() error {
	h.once.Do(func() {
		h.released.Store(true)
		h.err = h.preview.Release()
		metrics.UpdatePreviewsOutstanding(-1)
		metrics.RecordPreviewReleased()
	})
	return h.err
}

func (h *handle) location() string {
	if h.released.Load() {
		return ""
	}
	return h.preview.Location()
}
