package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/pkg/logger"
	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/pkg/postgres"
	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/pkg/resilience"
)

// Store persists aggregated analytics snapshots in PostgreSQL.
//
// It requires an `analytics_snapshots` table:
//
//	CREATE TABLE analytics_snapshots (
//	    id          BIGSERIAL PRIMARY KEY,
//	    data        JSONB NOT NULL,
//	    captured_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
type Store struct {
	db     *postgres.Client
	logger *slog.Logger
}

// NewStore creates an analytics persistence store.
func NewStore(db *postgres.Client) *Store {
	return &Store{
		db:     db,
		logger: logger.WithComponent("analytics-store"),
	}
}

// snapshotRetention bounds how far back snapshots are kept; older rows are
// pruned in the same transaction as each insert.
const snapshotRetention = 30 * 24 * time.Hour

// SaveSnapshot persists one stats snapshot and prunes expired ones,
// retrying transient database failures.
func (s *Store) SaveSnapshot(ctx context.Context, stats AggregatedStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshaling stats: %w", err)
	}

	err = resilience.Retry(ctx, "analytics-snapshot", resilience.RetryConfig{MaxAttempts: 3}, func() error {
		return s.db.InTx(ctx, func(tx *sql.Tx) error {
			now := time.Now().UTC()
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO analytics_snapshots (data, captured_at) VALUES ($1, $2)`,
				data, now,
			); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx,
				`DELETE FROM analytics_snapshots WHERE captured_at < $1`,
				now.Add(-snapshotRetention),
			)
			return err
		})
	})
	if err != nil {
		return fmt.Errorf("saving analytics snapshot: %w", err)
	}

	s.logger.Info("analytics snapshot saved", "total_queries", stats.TotalQueries)
	return nil
}

// StartSnapshotLoop persists the aggregator's stats on the given interval
// until ctx is cancelled.
func (s *Store) StartSnapshotLoop(ctx context.Context, agg *Aggregator, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := s.SaveSnapshot(ctx, agg.Stats()); err != nil {
					s.logger.Error("snapshot persistence failed", "error", err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
