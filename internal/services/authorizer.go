package services

import (
	"context"
	"net/http"

	"github.com/numberwatch/gateway/internal/backend"
	"github.com/numberwatch/gateway/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// OwnershipBackend is the interface that wraps backend calls needed for the report ownership check
type OwnershipBackend interface {
	// Method Profile retrieve the user the "token" belongs to.
	Profile(ctx context.Context, token string) (*models.User, error)
	// Method GetReport retrieve a single report by its "id".
	//
	// A missing report is reported as a backend error with status 404.
	GetReport(ctx context.Context, token, id string) (*models.Report, error)
}

type authorizer struct {
	backend OwnershipBackend
	logger  *zap.Logger
}

// NewAuthorizer creates a new report ownership checker
func NewAuthorizer(backend OwnershipBackend, logger *zap.Logger) *authorizer {
	return &authorizer{
		backend: backend,
		logger:  logger,
	}
}

// Authorize returns the caller and the report when the caller owns the report
//
// The profile and report lookups run concurrently and both run to completion.
// A profile failure wins over a report failure.
func (a *authorizer) Authorize(ctx context.Context, token, reportID string) (*models.User, *models.Report, error) {
	if reportID == "" {
		return nil, nil, badRequest("Report ID is required")
	}

	var (
		user       *models.User
		report     *models.Report
		profileErr error
		reportErr  error
	)

	// Plain group: one lookup failing must not cancel the other
	var g errgroup.Group
	g.Go(func() error {
		user, profileErr = a.backend.Profile(ctx, token)
		return profileErr
	})
	g.Go(func() error {
		report, reportErr = a.backend.GetReport(ctx, token, reportID)
		return reportErr
	})
	_ = g.Wait()

	if profileErr != nil {
		a.logger.Warn("failed to get user profile", zap.Error(profileErr))
		return nil, nil, profileFailure(profileErr)
	}
	if reportErr != nil {
		return nil, nil, a.reportError(reportID, reportErr)
	}

	if report.UserID != user.ID {
		a.logger.Warn("report ownership mismatch",
			zap.String("report_id", reportID),
			zap.String("user_id", user.ID),
		)
		return nil, nil, forbidden("Unauthorized to modify this report")
	}

	return user, report, nil
}

func (a *authorizer) reportError(reportID string, err error) error {
	if backend.IsStatus(err, http.StatusNotFound) {
		return notFound("Report not found", err)
	}
	a.logger.Error("failed to get report", zap.String("report_id", reportID), zap.Error(err))
	return relay(err, "Failed to fetch report")
}
