package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrExists        = errors.New("ticket already exists")
	ErrInvalidFilter = errors.New("invalid ticket filter")
)
