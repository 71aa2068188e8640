package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/numberwatch/gateway/internal/services"
	"go.uber.org/zap"
)

// BaseHandler provides common handler functionality
type BaseHandler struct {
	Logger *zap.Logger
}

// RespondJSON sends a JSON response
func (h *BaseHandler) RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// RespondError sends an error JSON response
func (h *BaseHandler) RespondError(w http.ResponseWriter, status int, message string) {
	h.RespondJSON(w, status, map[string]string{"error": message})
}

// RespondServiceError maps a service error to its status and message
// Errors that carry no status are reported as 500 without leaking details
func (h *BaseHandler) RespondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var statusErr *services.StatusError
	if !errors.As(err, &statusErr) {
		h.Logger.Error("unexpected service error", zap.String("path", r.URL.Path), zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if statusErr.Status >= http.StatusInternalServerError {
		h.Logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Int("status", statusErr.Status),
			zap.Error(err),
		)
	}
	h.RespondError(w, statusErr.Status, statusErr.Message)
}

// DecodeJSON decodes the request body into dst and responds 400 on failure
func (h *BaseHandler) DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.RespondError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		h.Logger.Warn("failed to decode request body", zap.Error(err))
		h.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
