package api

import (
	"context"
	"net/http"

	"github.com/okian/roadreport/pkg/logger"
)

// StatsProvider defines the interface for getting ticket statistics.
type StatsProvider interface {
	Stats(ctx context.Context) (map[string]int, error)
}

// StatsHandler handles stats requests.
type StatsHandler struct {
	statsProvider StatsProvider
	logger        logger.Logger
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider, logger: logger.Named("api")}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsProvider.Stats(r.Context())
	if err != nil {
		writeKindError(r.Context(), w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
