package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/linklens/linklens/internal/handler/dto"
	"github.com/linklens/linklens/internal/middleware"
	"github.com/linklens/linklens/internal/service"
)

// LinkHandler handles HTTP requests for link operations.
type LinkHandler struct {
	svc    *service.LinkService
	logger *slog.Logger
}

// NewLinkHandler creates a new LinkHandler.
func NewLinkHandler(svc *service.LinkService, logger *slog.Logger) *LinkHandler {
	return &LinkHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /api/links.
func (h *LinkHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if err := middleware.ValidateShortCode(req.Alias); err != nil {
		if errors.Is(err, middleware.ErrShortCodeReserved) {
			h.writeError(w, http.StatusBadRequest, "ALIAS_RESERVED", "Alias is reserved")
			return
		}
		h.writeError(w, http.StatusBadRequest, "INVALID_ALIAS", "Alias must be 3-50 alphanumeric characters")
		return
	}
	if err := middleware.ValidateAlias(req.Alias); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_ALIAS", "Alias contains confusable characters")
		return
	}

	input := service.CreateLinkInput{
		Destination: req.URL,
		Alias:       req.Alias,
		Title:       req.Title,
	}

	link, err := h.svc.CreateLink(r.Context(), input)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("link_created",
		"link_id", link.ID,
		"short_code", link.ShortCode,
		"has_custom_alias", req.Alias != "",
	)

	writeJSON(w, http.StatusCreated, dto.ToLinkResponse(link, h.svc.BaseURL()))
}

// Get handles GET /api/links/{id}.
func (h *LinkHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_ID", "Link ID is required")
		return
	}

	link, err := h.svc.GetLink(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToLinkResponse(link, h.svc.BaseURL()))
}

// List handles GET /api/links.
func (h *LinkHandler) List(w http.ResponseWriter, r *http.Request) {
	links, err := h.svc.ListLinks(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToLinkListResponse(links, h.svc.BaseURL()))
}

// Delete handles DELETE /api/links/{id}.
// Click events for the link are removed with it.
func (h *LinkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_ID", "Link ID is required")
		return
	}

	if err := h.svc.DeleteLink(r.Context(), id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("link_deleted", "link_id", id)

	w.WriteHeader(http.StatusNoContent)
}

// handleServiceError maps service errors to HTTP responses.
func (h *LinkHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrLinkNotFound):
		h.writeError(w, http.StatusNotFound, "LINK_NOT_FOUND", "Link not found")
	case errors.Is(err, service.ErrInvalidDestination):
		h.writeError(w, http.StatusBadRequest, "INVALID_URL", "Destination URL is invalid")
	case errors.Is(err, service.ErrURLTooLong):
		h.writeError(w, http.StatusBadRequest, "URL_TOO_LONG", "Destination URL is too long")
	case errors.Is(err, service.ErrInvalidAlias):
		h.writeError(w, http.StatusBadRequest, "INVALID_ALIAS", "Alias must be 3-50 alphanumeric characters")
	case errors.Is(err, service.ErrAliasExists):
		h.writeError(w, http.StatusConflict, "ALIAS_EXISTS", "Alias is already taken")
	default:
		h.logger.Error("link_handler_error", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

// writeError writes a JSON error response.
func (h *LinkHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
