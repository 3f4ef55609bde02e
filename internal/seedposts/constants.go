package seedposts

import "time"

// HTTP status code constants.
const (
	StatusOK       = 200
	StatusCreated  = 201
	StatusAccepted = 202
	StatusConflict = 409
)

// Runner configuration constants.
const (
	// AsyncDrainDelay is how long the runner waits for queued posts to be
	// scored before reading leaderboards.
	AsyncDrainDelay = 10 * time.Second
)
