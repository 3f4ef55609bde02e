package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound        = errors.New("not found")
	ErrDuplicate       = errors.New("duplicate key")
	ErrAlreadyJudged   = errors.New("content already judged")
	ErrInvalidIdentity = errors.New("identity requires wallet or handle")
)
