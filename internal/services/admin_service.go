package services

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/numberwatch/gateway/internal/middleware"
	"github.com/numberwatch/gateway/internal/models"
	"go.uber.org/zap"
)

// AdminBackend is the interface that wraps backend calls available to administrators
type AdminBackend interface {
	// Method ListReports retrieve every report with upper-case status and category.
	ListReports(ctx context.Context, token string) ([]models.Report, error)
	// Method UpdateReportStatus set the moderation "status" of any report.
	UpdateReportStatus(ctx context.Context, token, id string, status models.Status) (*models.Report, error)
	// Method ListUsers retrieve every account.
	ListUsers(ctx context.Context, token string) ([]models.User, error)
	// Method SetUserBlocked block or unblock an account.
	SetUserBlocked(ctx context.Context, token, id string, blocked bool) (*models.User, error)
	// Method DeleteUser delete any account, blocked or not.
	DeleteUser(ctx context.Context, token, id string) error
}

// AuditRepository is the interface that wraps methods for audit log data access
type AuditRepository interface {
	// Method Create insert a new audit entry. ID and CreatedAt are filled by the database.
	Create(ctx context.Context, entry *models.AuditEntry) error
	// Method List retrieve a page of audit entries, newest first, and the total count matching "filter".
	List(ctx context.Context, filter models.AuditFilter) ([]models.AuditEntry, int, error)
}

const (
	defaultAuditCount = 20
	maxAuditCount     = 100
)

type adminService struct {
	backend AdminBackend
	audit   AuditRepository
	logger  *zap.Logger
}

// NewAdminService creates a new admin service
// audit may be nil when the audit log is not configured
func NewAdminService(backend AdminBackend, audit AuditRepository, logger *zap.Logger) *adminService {
	return &adminService{
		backend: backend,
		audit:   audit,
		logger:  logger,
	}
}

// ListSubmissions returns every report in backend form
func (s *adminService) ListSubmissions(ctx context.Context, token string) ([]models.Report, error) {
	reports, err := s.backend.ListReports(ctx, token)
	if err != nil {
		s.logger.Error("failed to list submissions", zap.Error(err))
		return nil, relay(err, "Failed to fetch submissions")
	}
	return reports, nil
}

// UpdateSubmissionStatus approves or rejects a report
func (s *adminService) UpdateSubmissionStatus(ctx context.Context, token string, admin *models.User, id, status string) (*models.Report, error) {
	if id == "" {
		return nil, badRequest("Report ID is required")
	}
	target, err := models.ParseStatus(status)
	if err != nil || !target.IsModerationTarget() {
		return nil, badRequest("Invalid status")
	}

	report, err := s.backend.UpdateReportStatus(ctx, token, id, target)
	if err != nil {
		s.logger.Error("failed to update submission status", zap.String("report_id", id), zap.Error(err))
		return nil, relay(err, "Failed to update submission")
	}

	s.record(ctx, admin, models.AuditActionReportStatus, models.AuditTargetReport, id, string(target))
	return report, nil
}

// ListUsers returns every account
func (s *adminService) ListUsers(ctx context.Context, token string) ([]models.User, error) {
	users, err := s.backend.ListUsers(ctx, token)
	if err != nil {
		s.logger.Error("failed to list users", zap.Error(err))
		return nil, relay(err, "Failed to fetch users")
	}
	return users, nil
}

// SetUserBlocked blocks or unblocks an account
func (s *adminService) SetUserBlocked(ctx context.Context, token string, admin *models.User, id string, blocked bool) (*models.User, error) {
	if id == "" {
		return nil, badRequest("User ID is required")
	}

	user, err := s.backend.SetUserBlocked(ctx, token, id, blocked)
	if err != nil {
		s.logger.Error("failed to update user", zap.String("user_id", id), zap.Bool("blocked", blocked), zap.Error(err))
		return nil, relay(err, "Failed to update user")
	}

	action := models.AuditActionUserUnblock
	if blocked {
		action = models.AuditActionUserBlock
	}
	s.record(ctx, admin, action, models.AuditTargetUser, id, strconv.FormatBool(blocked))

	return user, nil
}

// DeleteUser removes an account regardless of its blocked flag
func (s *adminService) DeleteUser(ctx context.Context, token string, admin *models.User, id string) (*models.MessageResponse, error) {
	if id == "" {
		return nil, badRequest("User ID is required")
	}

	if err := s.backend.DeleteUser(ctx, token, id); err != nil {
		s.logger.Error("failed to delete user", zap.String("user_id", id), zap.Error(err))
		return nil, relay(err, "Failed to delete user")
	}

	s.record(ctx, admin, models.AuditActionUserDelete, models.AuditTargetUser, id, "")
	return &models.MessageResponse{Message: "User deleted successfully"}, nil
}

// ListAudit returns a page of the audit log
func (s *adminService) ListAudit(ctx context.Context, filter models.AuditFilter) (*models.AuditListResponse, error) {
	if s.audit == nil {
		return nil, &StatusError{Status: http.StatusServiceUnavailable, Message: "Audit log is not configured", Err: ErrUnavailable}
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Count < 1 {
		filter.Count = defaultAuditCount
	}
	if filter.Count > maxAuditCount {
		filter.Count = maxAuditCount
	}

	entries, total, err := s.audit.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list audit entries", zap.Error(err))
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}

	return &models.AuditListResponse{
		Items: entries,
		Page:  filter.Page,
		Count: filter.Count,
		Total: total,
	}, nil
}

// record stores an audit entry; failures are logged and never fail the action
func (s *adminService) record(ctx context.Context, admin *models.User, action, targetType, targetID, detail string) {
	if s.audit == nil {
		return
	}

	entry := &models.AuditEntry{
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Detail:     detail,
		RequestID:  middleware.GetRequestID(ctx),
	}
	if admin != nil {
		entry.ActorID = admin.ID
	}

	if err := s.audit.Create(ctx, entry); err != nil {
		s.logger.Error("failed to record audit entry",
			zap.String("action", action),
			zap.String("target_id", targetID),
			zap.Error(err),
		)
	}
}
