// Command indexer runs the batch index build: it loads the JSONL corpus,
// builds the positional, feature, and review-statistics indexes, and writes
// them as JSON snapshots for the search service.
//
// Usage:
//
//	go run ./cmd/indexer [-config configs/development.yaml] [-corpus products.jsonl] [-out data/indexes]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/internal/analytics"
	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/internal/corpus"
	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/internal/index"
	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/pkg/config"
	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/pkg/kafka"
	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/pkg/logger"
	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/pkg/metrics"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	corpusPath := flag.String("corpus", "", "corpus JSONL path (overrides config)")
	outDir := flag.String("out", "", "snapshot output directory (overrides config)")
	announce := flag.Bool("announce", false, "publish a build event to kafka")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *corpusPath != "" {
		cfg.Indexer.CorpusPath = *corpusPath
	}
	if *outDir != "" {
		cfg.Indexer.SnapshotDir = *outDir
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting index build",
		"corpus", cfg.Indexer.CorpusPath,
		"snapshot_dir", cfg.Indexer.SnapshotDir,
	)

	start := time.Now()
	docs, skipped, err := corpus.LoadJSONL(cfg.Indexer.CorpusPath)
	if err != nil {
		slog.Error("failed to load corpus", "error", err)
		os.Exit(1)
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		shutdown := metrics.StartServer(cfg.Metrics.Port)
		defer shutdown(context.Background())
	}

	c := index.NewBuilder().Build(docs, skipped)
	c.ObserveBuild(m)
	if err := c.Save(cfg.Indexer.SnapshotDir); err != nil {
		slog.Error("failed to write snapshots", "error", err)
		os.Exit(1)
	}
	elapsed := time.Since(start)

	slog.Info("index build complete",
		"documents", c.DocCount,
		"skipped_records", c.SkippedRecords,
		"feature_indexes", len(c.Features),
		"duration_ms", elapsed.Milliseconds(),
	)

	if *announce {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents)
		defer producer.Close()
		event := analytics.BuildEvent{
			Type:           analytics.EventIndexBuild,
			Documents:      c.DocCount,
			SkippedRecords: c.SkippedRecords,
			FeatureIndexes: len(c.Features),
			DurationMs:     elapsed.Milliseconds(),
			Timestamp:      time.Now().UTC(),
		}
		if err := producer.Publish(context.Background(), kafka.Event{Key: "build", Value: event}); err != nil {
			slog.Warn("failed to announce build", "error", err)
		}
	}
}
