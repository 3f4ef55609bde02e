package service

import (
	"time"

	"github.com/Base-InfoFi/Backend/internal/adapters/repository"
	"github.com/Base-InfoFi/Backend/internal/domain/oracle"
	"github.com/Base-InfoFi/Backend/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the backing store. Defaults to the in-memory store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithOracleClient sets the oracle client used for scoring and narratives.
func WithOracleClient(client oracle.Client) Option {
	return func(s *Service) {
		if client != nil {
			s.client = client
		}
	}
}

// WithModelName records the oracle model name on stored judgments.
func WithModelName(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.modelName = name
		}
	}
}

// WithWorkerCount sets the number of evaluation workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the evaluation queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithClaimCacheSize sets the capacity of the in-flight claim guard.
func WithClaimCacheSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.claimCacheSize = size
		}
	}
}

// WithBatchLimits sets the per-run item cap, the inter-item delay, and the
// wall-clock budget of the batch pipeline.
func WithBatchLimits(maxItems int, delay, budget time.Duration) Option {
	return func(s *Service) {
		if maxItems > 0 {
			s.batchMaxItems = maxItems
		}
		if delay >= 0 {
			s.batchDelay = delay
		}
		if budget > 0 {
			s.batchBudget = budget
		}
	}
}

// WithMaxLeaderboardLimit caps how many rows a leaderboard read returns.
func WithMaxLeaderboardLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.maxLeaderboardLimit = limit
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}
