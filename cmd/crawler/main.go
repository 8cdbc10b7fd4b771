// Command crawler fetches a product corpus from a website and writes it as
// line-delimited JSON for the indexer.
//
// Usage:
//
//	go run ./cmd/crawler [-config configs/development.yaml] [-start URL] [-max N] [-output products.jsonl]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/internal/corpus"
	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/internal/crawler"
	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/pkg/config"
	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/pkg/logger"
	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/pkg/metrics"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	startURL := flag.String("start", "", "start URL (overrides config)")
	maxPages := flag.Int("max", 0, "maximum pages to crawl (overrides config)")
	output := flag.String("output", "", "output JSONL path (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *startURL != "" {
		cfg.Crawler.StartURL = *startURL
	}
	if *maxPages > 0 {
		cfg.Crawler.MaxPages = *maxPages
	}
	if *output != "" {
		cfg.Crawler.OutputPath = *output
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting crawler",
		"start_url", cfg.Crawler.StartURL,
		"max_pages", cfg.Crawler.MaxPages,
		"delay", cfg.Crawler.Delay,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		shutdown := metrics.StartServer(cfg.Metrics.Port)
		defer shutdown(context.Background())
	}

	c, err := crawler.New(cfg.Crawler, crawler.WithMetrics(m))
	if err != nil {
		slog.Error("failed to create crawler", "error", err)
		os.Exit(1)
	}

	pages, err := c.Run(ctx)
	if err != nil && len(pages) == 0 {
		slog.Error("crawl failed", "error", err)
		os.Exit(1)
	}
	if err != nil {
		slog.Warn("crawl interrupted, writing partial corpus", "error", err, "pages", len(pages))
	}

	if err := corpus.WriteJSONL(cfg.Crawler.OutputPath, pages); err != nil {
		slog.Error("failed to write corpus", "error", err)
		os.Exit(1)
	}
	slog.Info("crawl complete", "pages", len(pages), "output", cfg.Crawler.OutputPath)
}
