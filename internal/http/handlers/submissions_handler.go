package handlers

import (
	"encoding/json"
	"math"
	"net"
	"net/http"

	"go.uber.org/zap"

	"tarcart/internal/service"
)

// SubmissionsHandlers serves the public submission endpoint.
type SubmissionsHandlers struct {
	queue  *service.QueueService
	logger *zap.Logger
}

// NewSubmissionsHandlers builds the handler set.
func NewSubmissionsHandlers(queue *service.QueueService, logger *zap.Logger) *SubmissionsHandlers {
	return &SubmissionsHandlers{queue: queue, logger: logger}
}

type submitRequest struct {
	StationID      *int64   `json:"stationId"`
	StationName    *string  `json:"stationName"`
	StationAddress *string  `json:"stationAddress"`
	Grade          *string  `json:"grade"`
	Price          *float64 `json:"price"`
	Notes          *string  `json:"notes"`
	SubmitterName  *string  `json:"submitterName"`
}

// Submit handles POST /api/submissions: community price updates and
// new-station suggestions.
func (h *SubmissionsHandlers) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	input := service.SubmitInput{
		StationID:      req.StationID,
		StationName:    req.StationName,
		StationAddress: req.StationAddress,
		Grade:          req.Grade,
		Notes:          req.Notes,
		SubmitterName:  req.SubmitterName,
		SubmitterIP:    clientIP(r),
	}
	// Prices arrive in dollars (e.g. 3.259) and are stored as
	// tenth-of-cent integers (3259).
	if req.Price != nil {
		cents := int64(math.Round(*req.Price * 1000))
		input.PriceCents = &cents
	}

	id, err := h.queue.Submit(r.Context(), input)
	if err != nil {
		h.logger.Error("failed to enqueue submission", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to submit price")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
