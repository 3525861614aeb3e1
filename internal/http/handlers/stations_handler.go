package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"tarcart/internal/service"
)

// StationsHandlers serves the public station views.
type StationsHandlers struct {
	directory *service.DirectoryService
	analytics *service.AnalyticsService
	logger    *zap.Logger
}

// NewStationsHandlers builds the handler set.
func NewStationsHandlers(directory *service.DirectoryService, analytics *service.AnalyticsService, logger *zap.Logger) *StationsHandlers {
	return &StationsHandlers{
		directory: directory,
		analytics: analytics,
		logger:    logger,
	}
}

// List handles GET /api/stations: the active-station directory with
// geocode backfill for stations missing coordinates.
func (h *StationsHandlers) List(w http.ResponseWriter, r *http.Request) {
	stations, err := h.directory.List(r.Context(), true)
	if err != nil {
		h.logger.Error("failed to list stations", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load stations")
		return
	}
	writeJSON(w, http.StatusOK, stations)
}

// Snapshot handles GET /api/stations/snapshot: every active station with
// its current price per grade derived from the ledger.
func (h *StationsHandlers) Snapshot(w http.ResponseWriter, r *http.Request) {
	snapshots, err := h.analytics.CurrentSnapshot(r.Context())
	if err != nil {
		h.logger.Error("failed to build snapshot", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load station prices")
		return
	}
	writeJSON(w, http.StatusOK, snapshots)
}
