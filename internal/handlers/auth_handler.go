package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/numberwatch/gateway/internal/auth/middleware"
	"github.com/numberwatch/gateway/internal/models"
	"go.uber.org/zap"
)

// AuthService is the interface that wraps methods for sign in and token verification
type AuthService interface {
	// Method Login exchange email and password for a session token.
	//
	// The returned user carries a lower-cased role.
	// If the backend rejects the credentials, its status and message are returned in the error.
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
	// Method Signup register a new account and sign it in.
	//
	// If registration succeeds but the following login fails, an error with status 500 is returned.
	Signup(ctx context.Context, req *models.SignupRequest) (*models.AuthResponse, error)
	// Method Verify return the identity behind "token".
	//
	// Any backend rejection is reported as 401 "Invalid token".
	Verify(ctx context.Context, token string) (*models.VerifyResponse, error)
	// Method ChangePassword change the password of the "token" owner.
	//
	// New passwords shorter than 6 characters are rejected without calling the backend.
	ChangePassword(ctx context.Context, token string, req *models.ChangePasswordRequest) (*models.MessageResponse, error)
}

// AuthHandler handles authentication HTTP requests
type AuthHandler struct {
	BaseHandler
	service AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(svc AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: BaseHandler{Logger: logger},
		service:     svc,
	}
}

// RegisterRoutes registers all auth handler routes
func (h *AuthHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/signup", h.Signup)
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Get("/verify", h.Verify)
			r.Post("/change-password", h.ChangePassword)
		})
	})
}

// Login handles POST /api/auth/login
// @Summary Sign in
// @Description Exchange email and password for a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body models.LoginRequest true "Credentials"
// @Success 200 {object} models.AuthResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string "Invalid email or password"
// @Failure 502 {object} map[string]string
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, resp)
}

// Signup handles POST /api/auth/signup
// @Summary Register and sign in
// @Description Create an account and return a bearer token for it
// @Tags auth
// @Accept json
// @Produce json
// @Param account body models.SignupRequest true "Account"
// @Success 200 {object} models.AuthResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 500 {object} map[string]string "Registration successful but login failed"
// @Router /api/auth/signup [post]
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Signup(r.Context(), &req)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, resp)
}

// Verify handles GET /api/auth/verify
// @Summary Verify token
// @Description Return the identity behind the bearer token
// @Tags auth
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.VerifyResponse
// @Failure 401 {object} map[string]string "Invalid token"
// @Router /api/auth/verify [get]
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	token, ok := middleware.GetToken(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	resp, err := h.service.Verify(r.Context(), token)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, resp)
}

// ChangePassword handles POST /api/auth/change-password
// @Summary Change password
// @Description Change the password of the signed in user
// @Tags auth
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param passwords body models.ChangePasswordRequest true "Current and new password"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} map[string]string "Password must be at least 6 characters long"
// @Failure 401 {object} map[string]string
// @Router /api/auth/change-password [post]
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	token, ok := middleware.GetToken(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req models.ChangePasswordRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.ChangePassword(r.Context(), token, &req)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, resp)
}
