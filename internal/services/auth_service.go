package services

import (
	"context"
	"errors"
	"net/http"
	"unicode/utf8"

	"github.com/numberwatch/gateway/internal/backend"
	"github.com/numberwatch/gateway/internal/models"
	"go.uber.org/zap"
)

// AuthBackend is the interface that wraps backend calls for authentication
type AuthBackend interface {
	// Method Login exchange "email" and "password" for an access token and the user it belongs to.
	Login(ctx context.Context, email, password string) (*backend.LoginResult, error)
	// Method Register create a new account. It does not sign the user in.
	Register(ctx context.Context, name, email, password string) error
	// Method Profile retrieve the user the "token" belongs to.
	Profile(ctx context.Context, token string) (*models.User, error)
	// Method ChangePassword change the password of the "token" owner.
	ChangePassword(ctx context.Context, token, currentPassword, newPassword string) error
}

type authService struct {
	backend AuthBackend
	logger  *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(backend AuthBackend, logger *zap.Logger) *authService {
	return &authService{
		backend: backend,
		logger:  logger,
	}
}

// Login signs a user in and returns the token with the lower-cased user
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, badRequest("Email and password are required")
	}

	result, err := s.backend.Login(ctx, req.Email, req.Password)
	if err != nil {
		s.logger.Warn("login failed", zap.String("email", req.Email), zap.Error(err))
		return nil, relay(err, "Invalid email or password")
	}

	return newAuthResponse(result), nil
}

// Signup registers a user and signs them in
//
// A registration that succeeds followed by a failed login is reported as 500,
// the account exists at that point.
func (s *authService) Signup(ctx context.Context, req *models.SignupRequest) (*models.AuthResponse, error) {
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return nil, badRequest("Name, email and password are required")
	}

	if err := s.backend.Register(ctx, req.Name, req.Email, req.Password); err != nil {
		s.logger.Warn("registration failed", zap.String("email", req.Email), zap.Error(err))
		return nil, relay(err, "Registration failed")
	}

	result, err := s.backend.Login(ctx, req.Email, req.Password)
	if err != nil {
		s.logger.Error("login after registration failed", zap.String("email", req.Email), zap.Error(err))
		return nil, &StatusError{
			Status:  http.StatusInternalServerError,
			Message: "Registration successful but login failed",
			Err:     err,
		}
	}

	return newAuthResponse(result), nil
}

// Verify returns the identity behind a token
func (s *authService) Verify(ctx context.Context, token string) (*models.VerifyResponse, error) {
	user, err := s.backend.Profile(ctx, token)
	if err != nil {
		if errors.Is(err, backend.ErrUnavailable) {
			return nil, relay(err, "")
		}
		return nil, unauthorized("Invalid token", err)
	}

	return &models.VerifyResponse{User: models.NewVerifiedUser(user)}, nil
}

// ChangePassword changes the password of the token owner
func (s *authService) ChangePassword(ctx context.Context, token string, req *models.ChangePasswordRequest) (*models.MessageResponse, error) {
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return nil, badRequest("Current password and new password are required")
	}
	if utf8.RuneCountInString(req.NewPassword) < models.MinPasswordLength {
		return nil, badRequest("Password must be at least 6 characters long")
	}

	if err := s.backend.ChangePassword(ctx, token, req.CurrentPassword, req.NewPassword); err != nil {
		s.logger.Warn("failed to change password", zap.Error(err))
		return nil, relay(err, "Failed to change password")
	}

	return &models.MessageResponse{Message: "Password changed successfully"}, nil
}

func newAuthResponse(result *backend.LoginResult) *models.AuthResponse {
	user := *result.User
	user.Role = models.NormalizeRole(user.Role)
	return &models.AuthResponse{
		Token: result.AccessToken,
		User:  user,
	}
}
