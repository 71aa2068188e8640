package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/numberwatch/gateway/internal/auth/middleware"
	"github.com/numberwatch/gateway/internal/models"
	"go.uber.org/zap"
)

// SubmissionService is the interface that wraps methods for managing the caller's own reports
type SubmissionService interface {
	// Method List retrieve the reports authored by the "token" owner in caller facing form.
	//
	// Status is lower-cased and the author name defaults to "Unknown".
	List(ctx context.Context, token string) ([]models.SubmissionResponse, error)
	// Method Create create a report authored by the "token" owner.
	//
	// Category is upper-cased; unknown categories are rejected with 400.
	Create(ctx context.Context, token string, req *models.SubmissionRequest) (*models.SubmissionResponse, error)
	// Method Get retrieve one report if the "token" owner authored it.
	//
	// Missing reports give 404, reports of other users give 403.
	Get(ctx context.Context, token, id string) (*models.SubmissionResponse, error)
	// Method Update change phone number, message or category of an own report.
	//
	// Please reference Get method for ownership errors.
	Update(ctx context.Context, token, id string, req *models.SubmissionRequest) (*models.SubmissionResponse, error)
	// Method Delete delete an own report.
	//
	// Please reference Get method for ownership errors.
	Delete(ctx context.Context, token, id string) (*models.MessageResponse, error)
}

// SubmissionHandler handles HTTP requests for the caller's reports
type SubmissionHandler struct {
	BaseHandler
	service SubmissionService
}

// NewSubmissionHandler creates a new submission handler
func NewSubmissionHandler(svc SubmissionService, logger *zap.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		BaseHandler: BaseHandler{Logger: logger},
		service:     svc,
	}
}

// RegisterRoutes registers all submission handler routes
func (h *SubmissionHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/submissions", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Patch("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

// List handles GET /api/submissions
// @Summary List own reports
// @Description List reports submitted by the signed in user
// @Tags submissions
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.SubmissionResponse
// @Failure 401 {object} map[string]string
// @Router /api/submissions [get]
func (h *SubmissionHandler) List(w http.ResponseWriter, r *http.Request) {
	token, _ := middleware.GetToken(r.Context())

	submissions, err := h.service.List(r.Context(), token)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, submissions)
}

// Create handles POST /api/submissions
// @Summary Report a phone number
// @Description Create a report; it starts in pending status
// @Tags submissions
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param report body models.SubmissionRequest true "Report"
// @Success 200 {object} models.SubmissionResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/submissions [post]
func (h *SubmissionHandler) Create(w http.ResponseWriter, r *http.Request) {
	token, _ := middleware.GetToken(r.Context())

	var req models.SubmissionRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	submission, err := h.service.Create(r.Context(), token, &req)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, submission)
}

// Get handles GET /api/submissions/{id}
// @Summary Get own report
// @Tags submissions
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Report ID"
// @Success 200 {object} models.SubmissionResponse
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string "Report not found"
// @Router /api/submissions/{id} [get]
func (h *SubmissionHandler) Get(w http.ResponseWriter, r *http.Request) {
	token, _ := middleware.GetToken(r.Context())

	submission, err := h.service.Get(r.Context(), token, chi.URLParam(r, "id"))
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, submission)
}

// Update handles PATCH /api/submissions/{id}
// @Summary Update own report
// @Tags submissions
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Report ID"
// @Param report body models.SubmissionRequest true "Changed fields"
// @Success 200 {object} models.SubmissionResponse
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string "Unauthorized to modify this report"
// @Failure 404 {object} map[string]string "Report not found"
// @Router /api/submissions/{id} [patch]
func (h *SubmissionHandler) Update(w http.ResponseWriter, r *http.Request) {
	token, _ := middleware.GetToken(r.Context())

	var req models.SubmissionRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	submission, err := h.service.Update(r.Context(), token, chi.URLParam(r, "id"), &req)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, submission)
}

// Delete handles DELETE /api/submissions/{id}
// @Summary Delete own report
// @Tags submissions
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Report ID"
// @Success 200 {object} models.MessageResponse
// @Failure 403 {object} map[string]string "Unauthorized to modify this report"
// @Failure 404 {object} map[string]string "Report not found"
// @Router /api/submissions/{id} [delete]
func (h *SubmissionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	token, _ := middleware.GetToken(r.Context())

	resp, err := h.service.Delete(r.Context(), token, chi.URLParam(r, "id"))
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, resp)
}
