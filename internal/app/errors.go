package service

import "errors"

// Sentinel kinds for service errors.
var (
	// ErrNotStarted reports an operation against a service that was never
	// started or has been stopped.
	ErrNotStarted = errors.New("service not started")

	// ErrInFlight reports that another evaluation currently holds the
	// claim for the same content item.
	ErrInFlight = errors.New("evaluation already in flight")

	// ErrQueueFull reports a rejected asynchronous submission.
	ErrQueueFull = errors.New("evaluation queue full")

	// ErrInvalidInput reports a submission missing required fields.
	ErrInvalidInput = errors.New("invalid input")
)
