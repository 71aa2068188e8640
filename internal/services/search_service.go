package services

import (
	"context"
	"strings"

	"github.com/numberwatch/gateway/internal/models"
	"go.uber.org/zap"
)

// SearchBackend is the interface that wraps the backend phone number search
type SearchBackend interface {
	// Method SearchReports retrieve reports about "phoneNumber".
	SearchReports(ctx context.Context, token, phoneNumber string) ([]models.Report, error)
}

type searchService struct {
	backend SearchBackend
	logger  *zap.Logger
}

// NewSearchService creates a new search service
func NewSearchService(backend SearchBackend, logger *zap.Logger) *searchService {
	return &searchService{
		backend: backend,
		logger:  logger,
	}
}

// ValidatePhoneNumber rejects an empty search term
func (s *searchService) ValidatePhoneNumber(phoneNumber string) error {
	if strings.TrimSpace(phoneNumber) == "" {
		return badRequest("Phone number is required")
	}
	return nil
}

// Search returns reports about a phone number
func (s *searchService) Search(ctx context.Context, token, phoneNumber string) ([]models.SubmissionResponse, error) {
	if err := s.ValidatePhoneNumber(phoneNumber); err != nil {
		return nil, err
	}

	reports, err := s.backend.SearchReports(ctx, token, phoneNumber)
	if err != nil {
		s.logger.Error("failed to search reports", zap.Error(err))
		return nil, relay(err, "Failed to search reports")
	}

	return models.NewSubmissionResponses(reports), nil
}
