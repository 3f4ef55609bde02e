// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New(...Option) initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
)

// Store backend names.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Store selects the persistence backend: "memory" or "postgres".
	Store string `koanf:"store"`

	// DatabaseURL is the Postgres DSN used when Store is "postgres".
	DatabaseURL string `koanf:"database_url"`

	// OracleBaseURL points at an OpenAI-compatible chat completions API.
	OracleBaseURL string `koanf:"oracle_base_url"`

	// OracleAPIKey authenticates against the oracle service.
	OracleAPIKey string `koanf:"oracle_api_key"`

	// OracleModel names the classifier model.
	OracleModel string `koanf:"oracle_model"`

	// OracleTimeoutMS bounds a single oracle call.
	OracleTimeoutMS int `koanf:"oracle_timeout_ms"`

	// QueueSize bounds the in-memory evaluation queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of evaluation workers.
	WorkerCount int `koanf:"worker_count"`

	// ClaimCacheSize bounds the in-flight evaluation claim cache.
	ClaimCacheSize int `koanf:"claim_cache_size"`

	// BatchMaxItems caps how many unjudged items one batch run scores.
	BatchMaxItems int `koanf:"batch_max_items"`

	// BatchDelayMS is the fixed inter-item delay inside a batch run.
	BatchDelayMS int `koanf:"batch_delay_ms"`

	// BatchBudgetMS is the wall-clock budget for one batch run.
	BatchBudgetMS int `koanf:"batch_budget_ms"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`
}

// New creates a Config populated with defaults. Loaders layer file and
// environment values on top of this.
func New() *Config {
	c := &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		Store:               StoreMemory,
		DatabaseURL:         "",
		OracleBaseURL:       "https://api.flock.io/v1",
		OracleAPIKey:        "",
		OracleModel:         "qwen3-30b-a3b-instruct-2507",
		OracleTimeoutMS:     30_000,
		QueueSize:           10_000,
		WorkerCount:         runtime.NumCPU() * 2,
		ClaimCacheSize:      50_000,
		BatchMaxItems:       10,
		BatchDelayMS:        500,
		BatchBudgetMS:       300_000,
		MaxLeaderboardLimit: 100,
	}
	return c
}
