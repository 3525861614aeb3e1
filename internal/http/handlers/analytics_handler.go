package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"tarcart/internal/service"
)

const defaultHistoryGrade = "87"

// AnalyticsHandlers serves the derived reports.
type AnalyticsHandlers struct {
	analytics *service.AnalyticsService
	logger    *zap.Logger
}

// NewAnalyticsHandlers builds the handler set.
func NewAnalyticsHandlers(analytics *service.AnalyticsService, logger *zap.Logger) *AnalyticsHandlers {
	return &AnalyticsHandlers{analytics: analytics, logger: logger}
}

// PriceHistory handles GET /api/analytics/price-history?grade=87&periodDays=14.
// Non-numeric or non-positive periods fall back to the 14-day default.
func (h *AnalyticsHandlers) PriceHistory(w http.ResponseWriter, r *http.Request) {
	grade := r.URL.Query().Get("grade")
	if grade == "" {
		grade = defaultHistoryGrade
	}
	periodDays, _ := strconv.Atoi(r.URL.Query().Get("periodDays"))

	points, err := h.analytics.PriceHistory(r.Context(), grade, periodDays)
	if err != nil {
		h.logger.Error("failed to build price history", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load price history analytics")
		return
	}
	writeJSON(w, http.StatusOK, points)
}

// CurrentSpread handles GET /api/analytics/current-spread.
func (h *AnalyticsHandlers) CurrentSpread(w http.ResponseWriter, r *http.Request) {
	spreads, err := h.analytics.CurrentSpread(r.Context())
	if err != nil {
		h.logger.Error("failed to build spread report", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load current spread analytics")
		return
	}
	writeJSON(w, http.StatusOK, spreads)
}
