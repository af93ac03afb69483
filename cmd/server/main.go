/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the attendance engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (defaults, optional YAML file, ATTEND_ env vars)
  2. Initialize SQLite store and seed the rounding config
  3. Create batch runner and API handler
  4. Configure HTTP router
  5. Start server with graceful shutdown

CONFIGURATION:
  ATTEND_CONFIG               path to a YAML config file (optional)
  ATTEND_ADDR                 listen address (default :8080)
  ATTEND_DB_PATH              SQLite path, ":memory:" for in-memory
  ATTEND_WORKER_COUNT         batch worker count (default NumCPU)
  ATTEND_ROUNDING_GRANULARITY payroll rounding step: 1, 5, 10 or 15
  ATTEND_LOG_LEVEL            debug, info, warn, error
  ATTEND_METRICS_ENABLED      expose /metrics when true

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/warp/attendance-engine/api"
	"github.com/warp/attendance-engine/batch"
	"github.com/warp/attendance-engine/config"
	"github.com/warp/attendance-engine/pkg/logger"
	"github.com/warp/attendance-engine/store/sqlite"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		logger.New("error").Error(ctx, "configuration failed", logger.Error(err))
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	// Initialize store
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		log.Error(ctx, "database init failed", logger.Error(err))
		os.Exit(1)
	}
	defer store.Close()

	// Seed the payroll rounding step from configuration so the first batch
	// run does not depend on a settings call having happened.
	if err := store.SaveRoundingConfig(ctx, cfg.Rounding()); err != nil {
		log.Error(ctx, "rounding config seed failed", logger.Error(err))
		os.Exit(1)
	}

	// Metrics
	var registry *prometheus.Registry
	runnerOpts := []batch.Option{
		batch.WithWorkerCount(cfg.WorkerCount),
		batch.WithLogger(log.Named("batch")),
	}
	if cfg.MetricsEnabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector())
		runnerOpts = append(runnerOpts, batch.WithMetrics(batch.NewMetrics(registry)))
	}

	runner := batch.NewRunner(store, runnerOpts...)
	handler := api.NewHandler(store, runner, log.Named("api"))
	router := api.NewRouter(handler, api.RouterOptions{MetricsRegistry: registry})

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info(ctx, "server starting",
			logger.String("addr", cfg.Addr),
			logger.Int("workers", cfg.WorkerCount),
			logger.Int("rounding_granularity", cfg.RoundingGranularity))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "server failed", logger.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "forced shutdown", logger.Error(err))
		os.Exit(1)
	}
	log.Info(ctx, "server stopped")
}
