// Package handler exposes the search engine over HTTP.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/internal/analytics"
	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/internal/search"
	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/internal/searcher/cache"
	pkgerrors "github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/pkg/errors"
	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/pkg/logger"
	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/pkg/metrics"
	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/pkg/tracing"
)

// Handler serves search queries. Cache, collector, and metrics are
// optional; a nil value disables that integration.
type Handler struct {
	engine       *search.Engine
	cache        *cache.QueryCache
	collector    *analytics.Collector
	metrics      *metrics.Metrics
	defaultLimit int
	maxResults   int
	logger       *slog.Logger
}

// New creates a search Handler.
func New(engine *search.Engine, queryCache *cache.QueryCache, collector *analytics.Collector, m *metrics.Metrics, defaultLimit, maxResults int) *Handler {
	return &Handler{
		engine:       engine,
		cache:        queryCache,
		collector:    collector,
		metrics:      m,
		defaultLimit: defaultLimit,
		maxResults:   maxResults,
		logger:       logger.WithComponent("search-handler"),
	}
}

// Search handles GET /api/v1/search?q=<query>&limit=<n>.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := r.URL.Query().Get("q")
	if query == "" {
		h.writeError(w, pkgerrors.New(pkgerrors.ErrInvalidInput, http.StatusBadRequest, "query parameter 'q' is required"))
		return
	}

	limit := h.defaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			h.writeError(w, pkgerrors.New(pkgerrors.ErrInvalidInput, http.StatusBadRequest, "limit must be a positive integer"))
			return
		}
		if parsed > h.maxResults {
			parsed = h.maxResults
		}
		limit = parsed
	}

	requestID := logger.RequestIDFromContext(ctx)
	ctx, span := tracing.StartSpan(ctx, "search", requestID)

	var resp *search.Response
	var err error
	cacheHit := false
	if h.cache != nil {
		resp, cacheHit, err = h.cache.GetOrCompute(ctx, query, limit, func() (*search.Response, error) {
			return h.engine.Search(ctx, query, limit)
		})
	} else {
		resp, err = h.engine.Search(ctx, query, limit)
	}
	span.End()
	span.Log()

	elapsed := time.Since(start)
	if err != nil {
		log.Error("search failed", "query", query, "error", err)
		h.observe("error", cacheHit, elapsed, 0)
		// HTTPStatusCode distinguishes deadline misses from real failures.
		h.writeError(w, pkgerrors.New(pkgerrors.ErrInternal, pkgerrors.HTTPStatusCode(err), "search failed"))
		return
	}

	resultType := "hit"
	if len(resp.Results) == 0 {
		resultType = "zero_result"
	}
	h.observe(resultType, cacheHit, elapsed, len(resp.Results))
	h.track(resp, elapsed, cacheHit, requestID)

	log.Info("search served",
		"query", query,
		"candidates", resp.FilteredDocuments,
		"results", len(resp.Results),
		"cache_hit", cacheHit,
		"latency_ms", elapsed.Milliseconds(),
	)
	h.writeJSON(w, http.StatusOK, resp)
}

// CacheStats handles GET /api/v1/cache/stats.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]any{"enabled": false})
		return
	}
	hits, misses := h.cache.Stats()
	h.writeJSON(w, http.StatusOK, map[string]any{
		"enabled": true,
		"hits":    hits,
		"misses":  misses,
	})
}

// CacheInvalidate handles POST /api/v1/cache/invalidate.
func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]any{"invalidated": 0})
		return
	}
	n, err := h.cache.Invalidate(r.Context())
	if err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, pkgerrors.New(pkgerrors.ErrInternal, http.StatusInternalServerError, "cache invalidation failed"))
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"invalidated": n})
}

func (h *Handler) observe(resultType string, cacheHit bool, elapsed time.Duration, results int) {
	if h.metrics == nil {
		return
	}
	cacheStatus := "miss"
	if cacheHit {
		cacheStatus = "hit"
		h.metrics.CacheHitsTotal.Inc()
	} else {
		h.metrics.CacheMissesTotal.Inc()
	}
	h.metrics.SearchQueriesTotal.WithLabelValues(resultType).Inc()
	h.metrics.SearchLatency.WithLabelValues(cacheStatus).Observe(elapsed.Seconds())
	h.metrics.SearchResultsCount.Observe(float64(results))
}

func (h *Handler) track(resp *search.Response, elapsed time.Duration, cacheHit bool, requestID string) {
	if h.collector == nil {
		return
	}
	eventType := analytics.EventQuery
	if len(resp.Results) == 0 {
		eventType = analytics.EventZeroResult
	}
	h.collector.Track(analytics.QueryEvent{
		Type:       eventType,
		Query:      resp.Query,
		Candidates: resp.FilteredDocuments,
		Returned:   len(resp.Results),
		LatencyMs:  elapsed.Milliseconds(),
		CacheHit:   cacheHit,
		Timestamp:  time.Now().UTC(),
		RequestID:  requestID,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encoding response", "error", err)
	}
}

// writeError maps err to its HTTP status. AppErrors expose their message;
// anything else is written verbatim.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	message := err.Error()
	var appErr *pkgerrors.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	h.writeJSON(w, pkgerrors.HTTPStatusCode(err), map[string]string{"error": message})
}
