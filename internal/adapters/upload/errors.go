package upload

import "errors"

// Sentinel errors for the upload adapter.
var (
	ErrTooLarge      = errors.New("photo too large")
	ErrCountMismatch = errors.New("result count mismatch")
)
