package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"tarcart/internal/service"
)

// AdminHandlers serves the moderation surface. Authorization happens in
// middleware; these handlers assume the caller is already an admin.
type AdminHandlers struct {
	queue      *service.QueueService
	moderation *service.ModerationService
	directory  *service.DirectoryService
	logger     *zap.Logger
}

// NewAdminHandlers builds the handler set.
func NewAdminHandlers(queue *service.QueueService, moderation *service.ModerationService, directory *service.DirectoryService, logger *zap.Logger) *AdminHandlers {
	return &AdminHandlers{
		queue:      queue,
		moderation: moderation,
		directory:  directory,
		logger:     logger,
	}
}

// ListSubmissions handles GET /api/admin/submissions?status=pending&limit=50.
func (h *AdminHandlers) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	views, err := h.queue.List(r.Context(), status, limit)
	if err != nil {
		h.logger.Error("failed to list submissions", zap.Error(err))
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// Decide handles POST /api/admin/submissions/{id}/{action}.
func (h *AdminHandlers) Decide(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid submission id")
		return
	}

	decision, err := h.moderation.Decide(r.Context(), id, r.PathValue("action"))
	if err != nil {
		h.logger.Warn("decision failed",
			zap.Int64("submission_id", id),
			zap.Error(err))
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, decision)
}

// DeleteStation handles DELETE /api/admin/stations/{id}.
func (h *AdminHandlers) DeleteStation(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid station id")
		return
	}

	if err := h.directory.Delete(r.Context(), id); err != nil {
		h.logger.Warn("station delete failed",
			zap.Int64("station_id", id),
			zap.Error(err))
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted_station_id": id})
}
