// Package photo turns staged photo content into preview thumbnails and reads
// the capture position from EXIF metadata.
package photo

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/okian/roadreport/internal/domain/staging"
)

const defaultThumbnailSize = 256

// Option applies a configuration option to the ThumbnailPreviewer.
type Option func(*ThumbnailPreviewer)

// WithDir sets the directory thumbnails are written to.
func WithDir(dir string) Option {
	return func(p *ThumbnailPreviewer) {
		if dir != "" {
			p.dir = dir
		}
	}
}

// WithSize sets the thumbnail edge in pixels.
func WithSize(size int) Option {
	return func(p *ThumbnailPreviewer) {
		if size > 0 {
			p.size = size
		}
	}
}

// ThumbnailPreviewer writes one JPEG thumbnail per staged photo and deletes
// it when the preview is released.
type ThumbnailPreviewer struct {
	dir  string
	size int
}

// NewThumbnailPreviewer creates a previewer writing to the OS temp dir by default.
func NewThumbnailPreviewer(opts ...Option) *ThumbnailPreviewer {
	p := &ThumbnailPreviewer{
		dir:  os.TempDir(),
		size: defaultThumbnailSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Preview decodes src, honoring EXIF orientation, and saves a square thumbnail.
func (p *ThumbnailPreviewer) Preview(id string, src staging.Source) (staging.Preview, error) {
	rc, err := src.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", id, err)
	}
	defer func() { _ = rc.Close() }()

	img, err := imaging.Decode(rc, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, id, err)
	}

	thumb := imaging.Thumbnail(img, p.size, p.size, imaging.Lanczos)
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create preview dir: %w", err)
	}
	path := filepath.Join(p.dir, fmt.Sprintf("%s_thumb_%d.jpg", id, p.size))
	if err := imaging.Save(thumb, path); err != nil {
		return nil, fmt.Errorf("save thumbnail: %w", err)
	}
	return filePreview(path), nil
}

// filePreview is a thumbnail on disk.
type filePreview string

func (f filePreview) Location() string { return string(f) }

func (f filePreview) Release() error {
	if err := os.Remove(string(f)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
