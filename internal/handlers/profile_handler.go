package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/numberwatch/gateway/internal/auth/middleware"
	"github.com/numberwatch/gateway/internal/models"
	"go.uber.org/zap"
)

// ProfileService is the interface that wraps methods for self service account management
type ProfileService interface {
	// Method Update change name and email of the caller.
	//
	// "userID" must be the caller's own ID, otherwise an error with status 403 is returned.
	Update(ctx context.Context, token, userID string, req *models.UpdateProfileRequest) (*models.User, error)
	// Method Delete delete the caller's account.
	//
	// Please reference Update method for the ID check.
	Delete(ctx context.Context, token, userID string) (*models.MessageResponse, error)
}

// ProfileHandler handles account self service requests
type ProfileHandler struct {
	BaseHandler
	service ProfileService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(svc ProfileService, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		BaseHandler: BaseHandler{Logger: logger},
		service:     svc,
	}
}

// RegisterRoutes registers all profile handler routes
func (h *ProfileHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.With(authMiddleware).Patch("/users/{id}", h.Update)
	r.With(authMiddleware).Delete("/users/{id}", h.Delete)
}

// Update handles PATCH /api/users/{id}
// @Summary Update own profile
// @Tags users
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "User ID"
// @Param profile body models.UpdateProfileRequest true "Name and email"
// @Success 200 {object} models.User
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string "Unauthorized to modify this user"
// @Router /api/users/{id} [patch]
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	token, _ := middleware.GetToken(r.Context())

	var req models.UpdateProfileRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	user, err := h.service.Update(r.Context(), token, chi.URLParam(r, "id"), &req)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, user)
}

// Delete handles DELETE /api/users/{id}
// @Summary Delete own account
// @Tags users
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "User ID"
// @Success 200 {object} models.MessageResponse
// @Failure 403 {object} map[string]string "Unauthorized to modify this user"
// @Router /api/users/{id} [delete]
func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	token, _ := middleware.GetToken(r.Context())

	resp, err := h.service.Delete(r.Context(), token, chi.URLParam(r, "id"))
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, resp)
}
