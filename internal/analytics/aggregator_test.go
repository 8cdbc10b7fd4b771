package analytics

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func queryEvent(query string, returned int, latencyMs int64, cacheHit bool) QueryEvent {
	eventType := EventQuery
	if returned == 0 {
		eventType = EventZeroResult
	}
	return QueryEvent{
		Type:      eventType,
		Query:     query,
		Returned:  returned,
		LatencyMs: latencyMs,
		CacheHit:  cacheHit,
		Timestamp: time.Now().UTC(),
	}
}

func TestAggregatorCounts(t *testing.T) {
	agg := NewAggregator(nil)
	agg.RecordQueryEvent(queryEvent("chocolate", 3, 12, false))
	agg.RecordQueryEvent(queryEvent("chocolate", 3, 4, true))
	agg.RecordQueryEvent(queryEvent("submarine", 0, 8, false))
	agg.RecordBuildEvent(BuildEvent{Type: EventIndexBuild, Documents: 100})

	stats := agg.Stats()
	if stats.TotalQueries != 3 {
		t.Errorf("TotalQueries = %d, want 3", stats.TotalQueries)
	}
	if stats.TotalBuilds != 1 {
		t.Errorf("TotalBuilds = %d, want 1", stats.TotalBuilds)
	}
	if stats.CacheHits != 1 || stats.CacheMisses != 2 {
		t.Errorf("cache hits/misses = %d/%d, want 1/2", stats.CacheHits, stats.CacheMisses)
	}
	if stats.ZeroResultCount != 1 {
		t.Errorf("ZeroResultCount = %d, want 1", stats.ZeroResultCount)
	}
	if len(stats.ZeroResultQueries) != 1 || stats.ZeroResultQueries[0].Query != "submarine" {
		t.Errorf("ZeroResultQueries = %+v", stats.ZeroResultQueries)
	}
}

func TestAggregatorTopQueries(t *testing.T) {
	agg := NewAggregator(nil)
	for i := 0; i < 3; i++ {
		agg.RecordQueryEvent(queryEvent("chocolate", 1, 5, false))
	}
	agg.RecordQueryEvent(queryEvent("beanie", 1, 5, false))
	agg.RecordQueryEvent(queryEvent("socks", 1, 5, false))

	top := agg.Stats().TopQueries
	if len(top) != 3 {
		t.Fatalf("len(TopQueries) = %d, want 3", len(top))
	}
	if top[0].Query != "chocolate" || top[0].Count != 3 {
		t.Errorf("top[0] = %+v", top[0])
	}
	// Equal counts break ties alphabetically.
	if top[1].Query != "beanie" || top[2].Query != "socks" {
		t.Errorf("tie order = %q, %q", top[1].Query, top[2].Query)
	}
}

func TestAggregatorLatencyPercentiles(t *testing.T) {
	agg := NewAggregator(nil)
	for latency := int64(1); latency <= 100; latency++ {
		agg.RecordQueryEvent(queryEvent("q", 1, latency, false))
	}

	stats := agg.Stats()
	if stats.AvgLatencyMs != 50.5 {
		t.Errorf("AvgLatencyMs = %v, want 50.5", stats.AvgLatencyMs)
	}
	if stats.P50LatencyMs != 51 {
		t.Errorf("P50LatencyMs = %v, want 51", stats.P50LatencyMs)
	}
	if stats.P99LatencyMs != 100 {
		t.Errorf("P99LatencyMs = %v, want 100", stats.P99LatencyMs)
	}
}

func TestHandleEventDispatch(t *testing.T) {
	agg := NewAggregator(nil)
	handle := HandleEvent(agg)

	queryJSON, _ := json.Marshal(queryEvent("chocolate", 2, 7, false))
	if err := handle(context.Background(), nil, queryJSON); err != nil {
		t.Fatalf("handling query event: %v", err)
	}

	buildJSON, _ := json.Marshal(BuildEvent{Type: EventIndexBuild, Documents: 10, DurationMs: 40})
	if err := handle(context.Background(), nil, buildJSON); err != nil {
		t.Fatalf("handling build event: %v", err)
	}

	// Garbage never fails the stream.
	if err := handle(context.Background(), nil, []byte("{broken")); err != nil {
		t.Fatalf("handling garbage: %v", err)
	}

	stats := agg.Stats()
	if stats.TotalQueries != 1 || stats.TotalBuilds != 1 {
		t.Errorf("TotalQueries/TotalBuilds = %d/%d, want 1/1", stats.TotalQueries, stats.TotalBuilds)
	}
}
