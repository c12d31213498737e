package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/linklens/linklens/internal/handler/dto"
	"github.com/linklens/linklens/internal/service"
)

// RedirectHandler handles redirect requests.
type RedirectHandler struct {
	links  *service.LinkService
	clicks *service.ClickService
	logger *slog.Logger
}

// NewRedirectHandler creates a new RedirectHandler.
func NewRedirectHandler(links *service.LinkService, clicks *service.ClickService, logger *slog.Logger) *RedirectHandler {
	return &RedirectHandler{
		links:  links,
		clicks: clicks,
		logger: logger,
	}
}

// Redirect handles GET /{shortCode} for URL redirection.
//
// The redirect response is written first; click recording happens after and
// its failure is logged, never surfaced - the redirect is not reversible.
func (h *RedirectHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	shortCode := chi.URLParam(r, "shortCode")
	if shortCode == "" {
		h.writeError(w, http.StatusNotFound, "LINK_NOT_FOUND", "Link not found")
		return
	}

	start := time.Now()

	link, cacheHit, err := h.links.ResolveRedirect(r.Context(), shortCode)
	duration := time.Since(start)

	if err != nil {
		h.handleRedirectError(w, shortCode, err, duration)
		return
	}

	// Set security headers
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
	w.Header().Set("Cache-Control", "private, max-age=0")

	http.Redirect(w, r, link.Destination, http.StatusFound)

	h.logger.Info("redirect_success",
		"short_code", shortCode,
		"cache_hit", cacheHit,
		"duration_ms", float64(duration.Microseconds())/1000,
	)

	// Record the click for the response already dispatched.
	info := service.RequestInfo{
		UserAgent: r.Header.Get("User-Agent"),
		IPAddress: getClientIP(r),
		Referrer:  getReferrer(r),
	}
	if err := h.clicks.Record(r.Context(), link.ID, info); err != nil {
		h.logger.Error("click_record_failed",
			"short_code", shortCode,
			"link_id", link.ID,
			"error", err,
		)
	}
}

// handleRedirectError handles errors during redirect resolution.
func (h *RedirectHandler) handleRedirectError(w http.ResponseWriter, shortCode string, err error, duration time.Duration) {
	switch {
	case errors.Is(err, service.ErrLinkNotFound):
		h.logger.Info("redirect_not_found",
			"short_code", shortCode,
			"duration_ms", float64(duration.Microseconds())/1000,
		)
		h.writeError(w, http.StatusNotFound, "LINK_NOT_FOUND", "Link not found")

	default:
		h.logger.Error("redirect_error",
			"short_code", shortCode,
			"error", err,
			"duration_ms", float64(duration.Microseconds())/1000,
		)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to redirect")
	}
}

// writeError writes a JSON error response for redirect failures.
func (h *RedirectHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	// Set security headers even on errors
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "private, max-age=0")

	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// getClientIP extracts the client IP address from the request.
func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For: take the first IP in the chain
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		if idx := strings.IndexByte(ip, ','); idx >= 0 {
			return strings.TrimSpace(ip[:idx])
		}
		return strings.TrimSpace(ip)
	}
	// Check X-Real-IP
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	// Fall back to RemoteAddr without the port
	addr := r.RemoteAddr
	if idx := strings.LastIndexByte(addr, ':'); idx >= 0 {
		return strings.Trim(addr[:idx], "[]")
	}
	return addr
}

// getReferrer reads the referrer, accepting both header spellings.
func getReferrer(r *http.Request) string {
	if ref := r.Header.Get("Referer"); ref != "" {
		return ref
	}
	return r.Header.Get("Referrer")
}
