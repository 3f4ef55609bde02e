package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Base-InfoFi/Backend/internal/adapters/http/api"
	"github.com/Base-InfoFi/Backend/internal/adapters/http/swagger"
	"github.com/Base-InfoFi/Backend/internal/adapters/repository"
	app "github.com/Base-InfoFi/Backend/internal/app"
	"github.com/Base-InfoFi/Backend/internal/config"
	"github.com/Base-InfoFi/Backend/internal/db"
	"github.com/Base-InfoFi/Backend/internal/domain/oracle"
	"github.com/Base-InfoFi/Backend/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 120 * time.Second // synchronous scoring waits on the oracle
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// Local development convenience; missing .env is not an error.
	_ = godotenv.Load()

	// Disable default Go metrics collection to keep the scrape surface to
	// our own registry.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env).
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store, cleanup, err := buildStore(ctx, cfg)
	if err != nil {
		log.Error(ctx, "failed to initialize store", logger.Error(err))
		return
	}
	defer cleanup()

	oracleClient := oracle.NewHTTPClient(oracle.Config{
		BaseURL: cfg.OracleBaseURL,
		APIKey:  cfg.OracleAPIKey,
		Model:   cfg.OracleModel,
		Timeout: time.Duration(cfg.OracleTimeoutMS) * time.Millisecond,
	})

	svc := app.New(
		app.WithLogger(log),
		app.WithStore(store),
		app.WithOracleClient(oracleClient),
		app.WithModelName(cfg.OracleModel),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithClaimCacheSize(cfg.ClaimCacheSize),
		app.WithBatchLimits(
			cfg.BatchMaxItems,
			time.Duration(cfg.BatchDelayMS)*time.Millisecond,
			time.Duration(cfg.BatchBudgetMS)*time.Millisecond,
		),
		app.WithMaxLeaderboardLimit(cfg.MaxLeaderboardLimit),
	)
	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "failed to start service", logger.Error(err))
		return
	}
	defer svc.Stop()

	// HTTP mux and routes.
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc).Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// buildStore selects the configured store backend. The returned cleanup is
// safe to call once, after the service stops.
func buildStore(ctx context.Context, cfg *config.Config) (repository.Store, func(), error) {
	switch cfg.Store {
	case config.StorePostgres:
		pg, err := db.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := db.RunMigrations(ctx, pg.Pool()); err != nil {
			pg.Close()
			return nil, nil, err
		}
		return repository.NewPostgresStore(pg.Pool()), pg.Close, nil
	default:
		return repository.NewMemStore(), func() {}, nil
	}
}
