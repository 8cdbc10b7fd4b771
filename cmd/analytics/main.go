// Command analytics starts the query-analytics aggregation service.
//
// It consumes query events from Kafka, aggregates them in memory (totals,
// latency percentiles, cache hit rate, top queries), serves the aggregates
// at GET /api/v1/analytics, and periodically snapshots them to PostgreSQL.
//
// Usage:
//
//	go run ./cmd/analytics [-config configs/development.yaml]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/internal/analytics"
	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/pkg/config"
	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/pkg/health"
	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/pkg/kafka"
	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/pkg/logger"
	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/pkg/middleware"
	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/pkg/postgres"
)

const snapshotInterval = time.Minute

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting analytics service", "port", cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	aggregator := analytics.NewAggregator(nil)
	consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents, analytics.HandleEvent(aggregator))

	go func() {
		if err := consumer.Start(ctx); err != nil {
			slog.Error("consumer error", "error", err)
		}
	}()
	slog.Info("analytics consumer started", "topic", cfg.Kafka.Topics.AnalyticsEvents)

	var db *postgres.Client
	db, err = postgres.New(cfg.Postgres)
	if err != nil {
		slog.Warn("postgres unavailable, snapshot persistence disabled", "error", err)
	} else {
		defer db.Close()
		store := analytics.NewStore(db)
		store.StartSnapshotLoop(ctx, aggregator, snapshotInterval)
		slog.Info("snapshot persistence enabled", "interval", snapshotInterval)
	}

	checker := health.NewChecker()
	var dbPing func(ctx context.Context) error
	if db != nil {
		dbPing = db.Ping
	}
	checker.Register("postgres", health.PingCheck(dbPing))

	h := analytics.NewHandler(aggregator)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/analytics", h.Stats)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		slog.Info("analytics service listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down analytics service")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}
