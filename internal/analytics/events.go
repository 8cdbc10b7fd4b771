// Package analytics defines the query-analytics event schema, the collector
// that publishes events to Kafka, and the aggregator that turns the event
// stream into serving-side statistics.
package analytics

import "time"

type EventType string

const (
	EventQuery      EventType = "query"
	EventZeroResult EventType = "zero_result"
	EventIndexBuild EventType = "index_build"
)

// QueryEvent records one executed search query.
type QueryEvent struct {
	Type       EventType `json:"type"`
	Query      string    `json:"query"`
	Candidates int       `json:"candidates"`
	Returned   int       `json:"returned"`
	LatencyMs  int64     `json:"latency_ms"`
	CacheHit   bool      `json:"cache_hit"`
	Timestamp  time.Time `json:"timestamp"`
	RequestID  string    `json:"request_id"`
}

// BuildEvent records one completed index build.
type BuildEvent struct {
	Type           EventType `json:"type"`
	Documents      int       `json:"documents"`
	SkippedRecords int       `json:"skipped_records"`
	FeatureIndexes int       `json:"feature_indexes"`
	DurationMs     int64     `json:"duration_ms"`
	Timestamp      time.Time `json:"timestamp"`
}
