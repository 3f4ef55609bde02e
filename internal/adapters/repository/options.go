package repository

import "time"

// Option configures a MemStore.
type Option func(*MemStore)

// WithNow overrides the clock used for assigned timestamps.
func WithNow(now func() time.Time) Option {
	return func(s *MemStore) {
		if now != nil {
			s.now = now
		}
	}
}
