package service

import "errors"

// Sentinel kinds for the report server.
var (
	ErrInvalidDraft   = errors.New("invalid draft")
	ErrInvalidQuery   = errors.New("invalid query")
	ErrNotSubmittable = errors.New("draft cannot be submitted")
)
