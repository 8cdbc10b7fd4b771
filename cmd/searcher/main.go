// Command searcher serves keyword queries over a built index.
//
// In server mode it loads the index snapshots (or builds them in memory when
// no snapshot directory exists), then exposes GET /api/v1/search together
// with cache controls, health probes, and Prometheus metrics.
//
// In one-shot mode (-query) it executes a single query and writes the result
// envelope to a JSON file, for batch use.
//
// Usage:
//
//	go run ./cmd/searcher [-config configs/development.yaml]
//	go run ./cmd/searcher -query "white beanie" [-limit 10] [-output results.json]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/internal/analytics"
	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/internal/corpus"
	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/internal/index"
	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/internal/search"
	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/internal/searcher/cache"
	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/internal/searcher/handler"
	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/pkg/config"
	pkgerrors "github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/pkg/errors"
	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/pkg/health"
	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/pkg/kafka"
	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/pkg/logger"
	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/pkg/metrics"
	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/pkg/middleware"
	pkgredis "github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/pkg/redis"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	query := flag.String("query", "", "run one query and exit")
	limit := flag.Int("limit", 0, "result limit for one-shot mode (0 = all)")
	resultPath := flag.String("output", "results.json", "output path for one-shot mode")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	engine, err := loadEngine(cfg)
	if err != nil {
		slog.Error("failed to load search engine", "error", err)
		os.Exit(1)
	}

	if *query != "" {
		runOnce(engine, *query, *limit, *resultPath)
		return
	}
	serve(cfg, engine)
}

// loadEngine assembles the frozen corpus and the synonym table. Snapshots
// are preferred; when the snapshot directory is absent the indexes are built
// in memory from the corpus file.
func loadEngine(cfg *config.Config) (*search.Engine, error) {
	docs, skipped, err := corpus.LoadJSONL(cfg.Search.CorpusPath)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		slog.Warn("skipped malformed corpus records", "skipped", skipped)
	}

	var c *index.Corpus
	if _, statErr := os.Stat(cfg.Search.SnapshotDir); statErr == nil {
		c, err = index.Load(cfg.Search.SnapshotDir, docs)
		if err != nil {
			return nil, err
		}
		slog.Info("index snapshots loaded",
			"snapshot_dir", cfg.Search.SnapshotDir,
			"documents", c.DocCount,
		)
	} else {
		c = index.NewBuilder().Build(docs, skipped)
		slog.Info("index built in memory", "documents", c.DocCount)
	}

	if c.DocCount == 0 {
		return nil, fmt.Errorf("%w: nothing loaded from %s", pkgerrors.ErrEmptyIndex, cfg.Search.CorpusPath)
	}

	var synonyms search.SynonymTable
	if cfg.Search.SynonymsPath != "" {
		synonyms, err = search.LoadSynonyms(cfg.Search.SynonymsPath)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				slog.Warn("synonym table missing, expansion disabled", "path", cfg.Search.SynonymsPath)
			} else {
				return nil, err
			}
		}
	}

	return search.New(c, synonyms, search.WithScoreWorkers(cfg.Search.ScoreWorkers)), nil
}

// runOnce executes a single query and writes the result envelope as
// indented JSON.
func runOnce(engine *search.Engine, query string, limit int, path string) {
	resp, err := engine.Search(context.Background(), query, limit)
	if err != nil {
		slog.Error("query failed", "query", query, "error", err)
		os.Exit(1)
	}
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		slog.Error("encoding results", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		slog.Error("writing results", "path", path, "error", err)
		os.Exit(1)
	}
	slog.Info("query complete",
		"query", query,
		"candidates", resp.FilteredDocuments,
		"results", len(resp.Results),
		"output", path,
	)
}

func serve(cfg *config.Config, engine *search.Engine) {
	slog.Info("starting search service", "port", cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		shutdown := metrics.StartServer(cfg.Metrics.Port)
		defer shutdown(context.Background())
		engine.Corpus().ObserveBuild(m)
	}

	var queryCache *cache.QueryCache
	redisClient, err := pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, query caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		queryCache = cache.New(redisClient, cfg.Redis)
		slog.Info("query cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
	}

	var collector *analytics.Collector
	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents)
		collector = analytics.NewCollector(producer, 10000)
		collector.Start(ctx)
		defer collector.Close()
		slog.Info("analytics collector started", "topic", cfg.Kafka.Topics.AnalyticsEvents)
	}

	checker := health.NewChecker()
	checker.Register("index", func(ctx context.Context) health.ComponentHealth {
		c := engine.Corpus()
		if c.DocCount > 0 {
			return health.ComponentHealth{
				Status:  health.StatusUp,
				Message: fmt.Sprintf("%d documents indexed", c.DocCount),
			}
		}
		return health.ComponentHealth{Status: health.StatusDown, Message: "empty index"}
	})
	var redisPing func(ctx context.Context) error
	if redisClient != nil {
		redisPing = redisClient.Ping
	}
	checker.Register("redis", health.PingCheck(redisPing))

	h := handler.New(engine, queryCache, collector, m, cfg.Search.DefaultLimit, cfg.Search.MaxResults)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	if m != nil {
		chain = middleware.Metrics(m)(chain)
	}
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		slog.Info("search service listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down search service")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
	slog.Info("search service stopped")
}
