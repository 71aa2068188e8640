package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/numberwatch/gateway/internal/models"
	"go.uber.org/zap"
)

// ContactService is the interface that wraps the contact form submission
type ContactService interface {
	// Method Submit validate and forward a contact message.
	//
	// Fields are checked in order: presence, email format, message length, subject length.
	// The backend answer is returned unchanged.
	Submit(ctx context.Context, msg *models.ContactMessage) (json.RawMessage, error)
}

// ContactHandler handles contact form requests
type ContactHandler struct {
	BaseHandler
	service ContactService
}

// NewContactHandler creates a new contact handler
func NewContactHandler(svc ContactService, logger *zap.Logger) *ContactHandler {
	return &ContactHandler{
		BaseHandler: BaseHandler{Logger: logger},
		service:     svc,
	}
}

// RegisterRoutes registers all contact handler routes
// limiter throttles submissions per client and may be nil
func (h *ContactHandler) RegisterRoutes(r chi.Router, limiter func(http.Handler) http.Handler) {
	if limiter != nil {
		r = r.With(limiter)
	}
	r.Post("/contact", h.Submit)
}

// Submit handles POST /api/contact
// @Summary Send a contact message
// @Tags contact
// @Accept json
// @Produce json
// @Param message body models.ContactMessage true "Contact message"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 429 {string} string "Too Many Requests"
// @Router /api/contact [post]
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var msg models.ContactMessage
	if !h.DecodeJSON(w, r, &msg) {
		return
	}

	resp, err := h.service.Submit(r.Context(), &msg)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, resp)
}
