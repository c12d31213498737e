package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/linklens/linklens/internal/handler/dto"
	"github.com/linklens/linklens/internal/service"
)

// AnalyticsHandler handles dashboard analytics requests.
type AnalyticsHandler struct {
	svc    *service.AnalyticsService
	logger *slog.Logger
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(svc *service.AnalyticsService, logger *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		svc:    svc,
		logger: logger.With("component", "handler.analytics"),
	}
}

// Global handles GET /api/analytics.
// Rollups are computed fresh on every request.
func (h *AnalyticsHandler) Global(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.Global(r.Context())
	if err != nil {
		h.logger.Error("failed to aggregate global analytics", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch analytics")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// ForLink handles GET /api/links/{id}/analytics.
func (h *AnalyticsHandler) ForLink(w http.ResponseWriter, r *http.Request) {
	linkID := chi.URLParam(r, "id")
	if linkID == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_ID", "Link ID is required")
		return
	}

	summary, err := h.svc.ForLink(r.Context(), linkID)
	if err != nil {
		if errors.Is(err, service.ErrLinkNotFound) {
			h.writeError(w, http.StatusNotFound, "LINK_NOT_FOUND", "Link not found")
			return
		}
		h.logger.Error("failed to aggregate link analytics", "link_id", linkID, "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch analytics")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// writeError writes a JSON error response.
func (h *AnalyticsHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
