// Package dedupe guards the at-most-once evaluation contract.
//
// The store's unique judgment constraint is the durable guarantee; this
// guard closes the race in front of it, where two concurrent batch runs
// both observe "no judgment yet" for the same item and would both pay for
// an oracle call before either writes.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Claimer tracks content items that are currently being evaluated.
type Claimer interface {
	// TryClaim atomically claims a content id for evaluation.
	// Returns false if the id is already claimed by another evaluation.
	TryClaim(ctx context.Context, id string) bool

	// Release frees a claim. Callers must release after the judgment is
	// persisted (or the evaluation failed) so retries stay possible.
	Release(ctx context.Context, id string)

	// Size returns the number of in-flight claims.
	Size() int64
}

// inMemoryClaimer implements Claimer with a mutex-protected set.
type inMemoryClaimer struct {
	mu      sync.Mutex
	claimed map[string]struct{}
	maxSize int
	size    atomic.Int64
}

// NewInMemoryClaimer creates a claim guard with configuration options.
func NewInMemoryClaimer(opts ...Option) Claimer {
	c := &inMemoryClaimer{
		maxSize: 50000, // default cap on concurrent claims
	}

	for _, opt := range opts {
		opt(c)
	}

	c.claimed = make(map[string]struct{})

	return c
}

// TryClaim atomically claims an id for evaluation.
func (c *inMemoryClaimer) TryClaim(ctx context.Context, id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.claimed[id]; exists {
		return false
	}
	if c.maxSize > 0 && len(c.claimed) >= c.maxSize {
		// Refusing the claim is safe: the caller simply skips the item
		// and a later run picks it up.
		return false
	}

	c.claimed[id] = struct{}{}
	c.size.Add(1)
	return true
}

// Release frees a claim.
func (c *inMemoryClaimer) Release(ctx context.Context, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.claimed[id]; exists {
		delete(c.claimed, id)
		c.size.Add(-1)
	}
}

// Size returns the number of in-flight claims.
func (c *inMemoryClaimer) Size() int64 {
	return c.size.Load()
}
