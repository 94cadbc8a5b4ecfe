package staging

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
)

// Source is the content handle of a staged photo.
type Source interface {
	// Name returns the original filename, or "" when unknown.
	Name() string
	// Open returns a fresh reader over the photo bytes.
	Open() (io.ReadCloser, error)
}

// FileSource reads a photo from disk.
type FileSource struct {
	Path string
}

// Name returns the base name of the file.
func (f FileSource) Name() string { return filepath.Base(f.Path) }

// Open opens the file for reading.
func (f FileSource) Open() (io.ReadCloser, error) {
	return os.Open(f.Path)
}

// BytesSource serves a photo held in memory.
type BytesSource struct {
	Filename string
	Data     []byte
}

// Name returns the configured filename.
func (b BytesSource) Name() string { return b.Filename }

// Open returns a reader over the bytes.
func (b BytesSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b.Data)), nil
}
