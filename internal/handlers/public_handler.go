package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// PublicService is the interface that wraps methods for unauthenticated home page data
type PublicService interface {
	// Method Stats retrieve public statistics, served from cache when possible.
	Stats(ctx context.Context) (json.RawMessage, error)
	// Method Recent retrieve recently approved reports, served from cache when possible.
	Recent(ctx context.Context) (json.RawMessage, error)
}

// PublicHandler handles public data requests
type PublicHandler struct {
	BaseHandler
	service PublicService
}

// NewPublicHandler creates a new public handler
func NewPublicHandler(svc PublicService, logger *zap.Logger) *PublicHandler {
	return &PublicHandler{
		BaseHandler: BaseHandler{Logger: logger},
		service:     svc,
	}
}

// RegisterRoutes registers all public handler routes
func (h *PublicHandler) RegisterRoutes(r chi.Router) {
	r.Get("/stats", h.Stats)
	r.Get("/reports/recent", h.Recent)
}

// Stats handles GET /api/stats
// @Summary Public statistics
// @Tags public
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 502 {object} map[string]string
// @Router /api/stats [get]
func (h *PublicHandler) Stats(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.Stats(r.Context())
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, data)
}

// Recent handles GET /api/reports/recent
// @Summary Recently approved reports
// @Tags public
// @Produce json
// @Success 200 {array} map[string]interface{}
// @Failure 502 {object} map[string]string
// @Router /api/reports/recent [get]
func (h *PublicHandler) Recent(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.Recent(r.Context())
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, data)
}
