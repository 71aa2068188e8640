package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/numberwatch/gateway/internal/auth/middleware"
	"github.com/numberwatch/gateway/internal/models"
	"go.uber.org/zap"
)

// SearchService is the interface that wraps methods for phone number lookups
type SearchService interface {
	// Method ValidatePhoneNumber reject an empty search term with status 400.
	ValidatePhoneNumber(phoneNumber string) error
	// Method Search retrieve reports about "phoneNumber" in caller facing form.
	Search(ctx context.Context, token, phoneNumber string) ([]models.SubmissionResponse, error)
}

// SearchHandler handles phone number search requests
type SearchHandler struct {
	BaseHandler
	service SearchService
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(svc SearchService, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{
		BaseHandler: BaseHandler{Logger: logger},
		service:     svc,
	}
}

// RegisterRoutes registers all search handler routes
// The phone number is checked before the bearer token
func (h *SearchHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.With(h.requirePhoneNumber, authMiddleware).Get("/search", h.Search)
}

func (h *SearchHandler) requirePhoneNumber(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := h.service.ValidatePhoneNumber(r.URL.Query().Get("phoneNumber")); err != nil {
			h.RespondServiceError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Search handles GET /api/search
// @Summary Search reports by phone number
// @Tags search
// @Produce json
// @Security ApiKeyAuth
// @Param phoneNumber query string true "Phone number"
// @Success 200 {array} models.SubmissionResponse
// @Failure 400 {object} map[string]string "Phone number is required"
// @Failure 401 {object} map[string]string
// @Router /api/search [get]
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	token, _ := middleware.GetToken(r.Context())

	results, err := h.service.Search(r.Context(), token, r.URL.Query().Get("phoneNumber"))
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, results)
}
