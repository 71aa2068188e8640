package services

import (
	"context"

	"github.com/numberwatch/gateway/internal/models"
	"go.uber.org/zap"
)

// ProfileBackend is the interface that wraps backend calls for self service account management
type ProfileBackend interface {
	// Method Profile retrieve the user the "token" belongs to.
	Profile(ctx context.Context, token string) (*models.User, error)
	// Method UpdateProfile update name and email of the "token" owner.
	UpdateProfile(ctx context.Context, token string, req models.UpdateProfileRequest) (*models.User, error)
	// Method DeleteProfile delete the account of the "token" owner.
	DeleteProfile(ctx context.Context, token string) error
}

type profileService struct {
	backend ProfileBackend
	logger  *zap.Logger
}

// NewProfileService creates a new profile service
func NewProfileService(backend ProfileBackend, logger *zap.Logger) *profileService {
	return &profileService{
		backend: backend,
		logger:  logger,
	}
}

// Update changes the caller's name and email; userID must be the caller's own ID
func (s *profileService) Update(ctx context.Context, token, userID string, req *models.UpdateProfileRequest) (*models.User, error) {
	if req.Name == "" && req.Email == "" {
		return nil, badRequest("Name or email is required")
	}

	if err := s.checkSelf(ctx, token, userID); err != nil {
		return nil, err
	}

	user, err := s.backend.UpdateProfile(ctx, token, *req)
	if err != nil {
		s.logger.Error("failed to update profile", zap.String("user_id", userID), zap.Error(err))
		return nil, relay(err, "Failed to update user")
	}

	return user, nil
}

// Delete removes the caller's account; userID must be the caller's own ID
func (s *profileService) Delete(ctx context.Context, token, userID string) (*models.MessageResponse, error) {
	if err := s.checkSelf(ctx, token, userID); err != nil {
		return nil, err
	}

	if err := s.backend.DeleteProfile(ctx, token); err != nil {
		s.logger.Error("failed to delete profile", zap.String("user_id", userID), zap.Error(err))
		return nil, relay(err, "Failed to delete user")
	}

	return &models.MessageResponse{Message: "User deleted successfully"}, nil
}

func (s *profileService) checkSelf(ctx context.Context, token, userID string) error {
	if userID == "" {
		return badRequest("User ID is required")
	}

	user, err := s.backend.Profile(ctx, token)
	if err != nil {
		s.logger.Warn("failed to get user profile", zap.Error(err))
		return profileFailure(err)
	}

	if user.ID != userID {
		s.logger.Warn("profile id mismatch", zap.String("user_id", user.ID), zap.String("path_id", userID))
		return forbidden("Unauthorized to modify this user")
	}

	return nil
}
