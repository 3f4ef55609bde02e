package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Base-InfoFi/Backend/pkg/logger"
)

const (
	connectTimeout = 10 * time.Second
	healthTimeout  = 5 * time.Second
)

// Postgres wraps the database connection pool.
type Postgres struct {
	pool *pgxpool.Pool
	log  logger.Logger
}

// NewPostgres opens a connection pool against the given DSN and verifies it
// with a ping.
func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	cfg.MaxConns = 25
	cfg.MinConns = 2
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 30 * time.Minute
	cfg.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	log := logger.Named("db")
	log.Info(ctx, "connection pool initialized",
		logger.Int("max_conns", int(cfg.MaxConns)),
		logger.Int("min_conns", int(cfg.MinConns)),
	)

	return &Postgres{pool: pool, log: log}, nil
}

// Pool returns the underlying connection pool.
func (p *Postgres) Pool() *pgxpool.Pool {
	return p.pool
}

// Health pings the database with a short timeout.
func (p *Postgres) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	if err := p.pool.Ping(ctx); err != nil {
		return fmt.Errorf("database health check: %w", err)
	}

	return nil
}

// Close drains and closes the connection pool.
func (p *Postgres) Close() {
	p.log.Info(context.Background(), "closing connection pool")
	p.pool.Close()
}
