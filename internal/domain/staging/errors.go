package staging

import "errors"

// Sentinel errors for the staging store.
var (
	ErrClosed      = errors.New("staging store closed")
	ErrPreview     = errors.New("preview creation failed")
	ErrEmptySource = errors.New("empty photo source")
)
