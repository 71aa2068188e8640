package services

import (
	"context"

	"github.com/numberwatch/gateway/internal/models"
	"go.uber.org/zap"
)

// SubmissionBackend is the interface that wraps backend calls for the caller's own reports
type SubmissionBackend interface {
	// Method Profile retrieve the user the "token" belongs to.
	Profile(ctx context.Context, token string) (*models.User, error)
	// Method ListReports retrieve every report visible to the "token" owner.
	//
	// The backend does not filter by author; filtering is done by the caller.
	ListReports(ctx context.Context, token string) ([]models.Report, error)
	// Method CreateReport create a new report in PENDING status.
	CreateReport(ctx context.Context, token string, req models.CreateReportRequest) (*models.Report, error)
	// Method UpdateReport update phone number, message and category of a report.
	//
	// Empty fields are left unchanged.
	UpdateReport(ctx context.Context, token, id string, req models.UpdateReportRequest) (*models.Report, error)
	// Method DeleteReport delete a report.
	DeleteReport(ctx context.Context, token, id string) error
}

// ReportAuthorizer is the interface that wraps the report ownership check
type ReportAuthorizer interface {
	// Method Authorize return the caller and the report identified by "reportID" if the caller is its author.
	//
	// If the caller is not the author, an error with status 403 is returned.
	// If the report does not exist, an error with status 404 is returned.
	Authorize(ctx context.Context, token, reportID string) (*models.User, *models.Report, error)
}

type submissionService struct {
	backend    SubmissionBackend
	authorizer ReportAuthorizer
	logger     *zap.Logger
}

// NewSubmissionService creates a new submission service
func NewSubmissionService(backend SubmissionBackend, authorizer ReportAuthorizer, logger *zap.Logger) *submissionService {
	return &submissionService{
		backend:    backend,
		authorizer: authorizer,
		logger:     logger,
	}
}

// List returns the caller's reports
func (s *submissionService) List(ctx context.Context, token string) ([]models.SubmissionResponse, error) {
	user, err := s.backend.Profile(ctx, token)
	if err != nil {
		s.logger.Warn("failed to get user profile", zap.Error(err))
		return nil, profileFailure(err)
	}

	reports, err := s.backend.ListReports(ctx, token)
	if err != nil {
		s.logger.Error("failed to list reports", zap.Error(err))
		return nil, relay(err, "Failed to fetch reports")
	}

	own := make([]models.Report, 0, len(reports))
	for _, report := range reports {
		if report.UserID == user.ID {
			own = append(own, report)
		}
	}

	return models.NewSubmissionResponses(own), nil
}

// Create creates a report authored by the caller
func (s *submissionService) Create(ctx context.Context, token string, req *models.SubmissionRequest) (*models.SubmissionResponse, error) {
	if req.PhoneNumber == "" || req.Message == "" || req.Category == "" {
		return nil, badRequest("Phone number, message and category are required")
	}
	category, err := models.ParseCategory(req.Category)
	if err != nil {
		return nil, badRequest("Invalid category")
	}

	user, err := s.backend.Profile(ctx, token)
	if err != nil {
		s.logger.Warn("failed to get user profile", zap.Error(err))
		return nil, profileFailure(err)
	}

	report, err := s.backend.CreateReport(ctx, token, models.CreateReportRequest{
		PhoneNumber: req.PhoneNumber,
		Message:     req.Message,
		Category:    category,
		UserID:      user.ID,
	})
	if err != nil {
		s.logger.Error("failed to create report", zap.String("user_id", user.ID), zap.Error(err))
		return nil, relay(err, "Failed to create submission")
	}

	resp := models.NewSubmissionResponse(report)
	return &resp, nil
}

// Get returns one of the caller's reports
func (s *submissionService) Get(ctx context.Context, token, id string) (*models.SubmissionResponse, error) {
	_, report, err := s.authorizer.Authorize(ctx, token, id)
	if err != nil {
		return nil, err
	}

	resp := models.NewSubmissionResponse(report)
	return &resp, nil
}

// Update changes one of the caller's reports
func (s *submissionService) Update(ctx context.Context, token, id string, req *models.SubmissionRequest) (*models.SubmissionResponse, error) {
	if req.PhoneNumber == "" && req.Message == "" && req.Category == "" {
		return nil, badRequest("At least one field is required")
	}

	update := models.UpdateReportRequest{
		PhoneNumber: req.PhoneNumber,
		Message:     req.Message,
	}
	if req.Category != "" {
		category, err := models.ParseCategory(req.Category)
		if err != nil {
			return nil, badRequest("Invalid category")
		}
		update.Category = category
	}

	_, current, err := s.authorizer.Authorize(ctx, token, id)
	if err != nil {
		return nil, err
	}

	report, err := s.backend.UpdateReport(ctx, token, id, update)
	if err != nil {
		s.logger.Error("failed to update report", zap.String("report_id", id), zap.Error(err))
		return nil, relay(err, "Failed to update report")
	}

	// The update answer may omit the author
	if report.User == nil {
		report.User = current.User
	}

	resp := models.NewSubmissionResponse(report)
	return &resp, nil
}

// Delete removes one of the caller's reports
func (s *submissionService) Delete(ctx context.Context, token, id string) (*models.MessageResponse, error) {
	if _, _, err := s.authorizer.Authorize(ctx, token, id); err != nil {
		return nil, err
	}

	if err := s.backend.DeleteReport(ctx, token, id); err != nil {
		s.logger.Error("failed to delete report", zap.String("report_id", id), zap.Error(err))
		return nil, relay(err, "Failed to delete report")
	}

	return &models.MessageResponse{Message: "Report deleted successfully"}, nil
}
