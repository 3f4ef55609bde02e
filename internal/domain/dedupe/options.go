// Package dedupe guards the at-most-once evaluation contract.
package dedupe

// Option applies a configuration option to the inMemoryClaimer.
type Option func(*inMemoryClaimer)

// WithMaxClaims caps the number of concurrent claims. Zero or negative
// means unbounded.
func WithMaxClaims(n int) Option {
	return func(c *inMemoryClaimer) {
		c.maxSize = n
	}
}
