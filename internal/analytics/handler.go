package analytics

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/pkg/logger"
)

// Handler serves the aggregated analytics over HTTP.
type Handler struct {
	aggregator *Aggregator
	logger     *slog.Logger
}

// NewHandler creates an analytics HTTP handler.
func NewHandler(aggregator *Aggregator) *Handler {
	return &Handler{
		aggregator: aggregator,
		logger:     logger.WithComponent("analytics-handler"),
	}
}

// Stats responds with the current aggregated statistics.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.aggregator.Stats()); err != nil {
		h.logger.Error("encoding analytics stats", "error", err)
	}
}
