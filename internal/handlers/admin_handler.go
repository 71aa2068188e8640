package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/numberwatch/gateway/internal/auth/middleware"
	"github.com/numberwatch/gateway/internal/models"
	"go.uber.org/zap"
)

// AdminService is the interface that wraps methods for moderation and account management
type AdminService interface {
	// Method ListSubmissions retrieve every report in backend form.
	//
	// Status and category keep their upper-case wire values.
	ListSubmissions(ctx context.Context, token string) ([]models.Report, error)
	// Method UpdateSubmissionStatus approve or reject a report.
	//
	// "status" is upper-cased; only APPROVED and REJECTED are accepted.
	// The change is recorded in the audit log on behalf of "admin".
	UpdateSubmissionStatus(ctx context.Context, token string, admin *models.User, id, status string) (*models.Report, error)
	// Method ListUsers retrieve every account with a lower-cased role.
	ListUsers(ctx context.Context, token string) ([]models.User, error)
	// Method SetUserBlocked block or unblock an account.
	SetUserBlocked(ctx context.Context, token string, admin *models.User, id string, blocked bool) (*models.User, error)
	// Method DeleteUser delete an account regardless of its blocked flag.
	DeleteUser(ctx context.Context, token string, admin *models.User, id string) (*models.MessageResponse, error)
	// Method ListAudit retrieve a page of the audit log, newest first.
	//
	// If the audit log is not configured, an error with status 503 is returned.
	ListAudit(ctx context.Context, filter models.AuditFilter) (*models.AuditListResponse, error)
}

// AdminHandler handles HTTP requests of the moderation panel
type AdminHandler struct {
	BaseHandler
	service AdminService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(svc AdminService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		BaseHandler: BaseHandler{Logger: logger},
		service:     svc,
	}
}

// RegisterRoutes registers all admin handler routes
// adminMiddleware must authenticate the caller and require the admin role
func (h *AdminHandler) RegisterRoutes(r chi.Router, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(adminMiddleware)
		r.Get("/submissions", h.ListSubmissions)
		r.Patch("/submissions/{id}", h.UpdateSubmissionStatus)
		r.Get("/users", h.ListUsers)
		r.Patch("/users/{id}", h.UpdateUser)
		r.Delete("/users/{id}", h.DeleteUser)
		r.Get("/audit", h.ListAudit)
	})
}

// ListSubmissions handles GET /api/admin/submissions
// @Summary List all reports
// @Description List every report in backend form (admin only)
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.Report
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string "Admin access required"
// @Router /api/admin/submissions [get]
func (h *AdminHandler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	token, _ := middleware.GetToken(r.Context())

	reports, err := h.service.ListSubmissions(r.Context(), token)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, reports)
}

// UpdateSubmissionStatus handles PATCH /api/admin/submissions/{id}
// @Summary Moderate a report
// @Description Approve or reject a report (admin only)
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Report ID"
// @Param status body models.UpdateStatusRequest true "New status"
// @Success 200 {object} models.Report
// @Failure 400 {object} map[string]string "Invalid status"
// @Failure 403 {object} map[string]string
// @Router /api/admin/submissions/{id} [patch]
func (h *AdminHandler) UpdateSubmissionStatus(w http.ResponseWriter, r *http.Request) {
	token, _ := middleware.GetToken(r.Context())
	admin, _ := middleware.GetUser(r.Context())

	var req models.UpdateStatusRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	report, err := h.service.UpdateSubmissionStatus(r.Context(), token, admin, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, report)
}

// ListUsers handles GET /api/admin/users
// @Summary List all users
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.User
// @Failure 403 {object} map[string]string
// @Router /api/admin/users [get]
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	token, _ := middleware.GetToken(r.Context())

	users, err := h.service.ListUsers(r.Context(), token)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, users)
}

// UpdateUser handles PATCH /api/admin/users/{id}
// @Summary Block or unblock a user
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "User ID"
// @Param blocked body models.BlockUserRequest true "Blocked flag"
// @Success 200 {object} models.User
// @Failure 400 {object} map[string]string "Blocked flag is required"
// @Failure 403 {object} map[string]string
// @Router /api/admin/users/{id} [patch]
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	token, _ := middleware.GetToken(r.Context())
	admin, _ := middleware.GetUser(r.Context())

	var req models.BlockUserRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}
	if req.Blocked == nil {
		h.RespondError(w, http.StatusBadRequest, "Blocked flag is required")
		return
	}

	user, err := h.service.SetUserBlocked(r.Context(), token, admin, chi.URLParam(r, "id"), *req.Blocked)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, user)
}

// DeleteUser handles DELETE /api/admin/users/{id}
// @Summary Delete a user
// @Description Delete an account, blocked or not (admin only)
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "User ID"
// @Success 200 {object} models.MessageResponse
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	token, _ := middleware.GetToken(r.Context())
	admin, _ := middleware.GetUser(r.Context())

	resp, err := h.service.DeleteUser(r.Context(), token, admin, chi.URLParam(r, "id"))
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, resp)
}

// ListAudit handles GET /api/admin/audit
// @Summary List audit log
// @Description Page through moderation actions, newest first (admin only)
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "Page number, starting at 1"
// @Param count query int false "Entries per page (max 100)"
// @Param action query string false "Filter by action, e.g. user.delete"
// @Success 200 {object} models.AuditListResponse
// @Failure 400 {object} map[string]string
// @Failure 503 {object} map[string]string "Audit log is not configured"
// @Router /api/admin/audit [get]
func (h *AdminHandler) ListAudit(w http.ResponseWriter, r *http.Request) {
	filter := models.AuditFilter{
		Action: r.URL.Query().Get("action"),
	}

	var ok bool
	if filter.Page, ok = h.queryInt(w, r, "page"); !ok {
		return
	}
	if filter.Count, ok = h.queryInt(w, r, "count"); !ok {
		return
	}

	resp, err := h.service.ListAudit(r.Context(), filter)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, resp)
}

// queryInt parses an optional integer query parameter; absent values are 0
func (h *AdminHandler) queryInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "Invalid "+name+" parameter")
		return 0, false
	}
	return value, true
}
