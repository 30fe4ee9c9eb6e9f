package queue

import "errors"

var (
	// ErrNotFound reports an unknown job identifier.
	ErrNotFound = errors.New("job not found")
	// ErrInvalidTransition reports an attempt to move a job backward or skip downloading.
	ErrInvalidTransition = errors.New("invalid job status transition")
	// ErrInvalidRequest reports a submission without a source reference.
	ErrInvalidRequest = errors.New("invalid job request")
)
