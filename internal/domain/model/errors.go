package model

import "errors"

// Error kinds shared by every pipeline stage. Callers match them with errors.Is.
var (
	ErrEncoding          = errors.New("encoding failed")
	ErrUpload            = errors.New("upload failed")
	ErrAggregation       = errors.New("aggregation failed")
	ErrDraftCreation     = errors.New("draft creation failed")
	ErrSubmission        = errors.New("submission failed")
	ErrCapacity          = errors.New("staging capacity exceeded")
	ErrNoPhotos          = errors.New("no photos staged")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrBusy              = errors.New("operation already in progress")
	ErrNotFound          = errors.New("not found")
	ErrQuery             = errors.New("query failed")
	ErrInvalidPosition   = errors.New("invalid position")
)
