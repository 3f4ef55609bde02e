package oracle

import "errors"

// Sentinel kinds for oracle errors.
var (
	// ErrUnavailable covers transport failures and timeouts.
	ErrUnavailable = errors.New("oracle unavailable")
	// ErrMalformedOutput marks oracle output that failed strict parsing.
	ErrMalformedOutput = errors.New("oracle output malformed")
)
