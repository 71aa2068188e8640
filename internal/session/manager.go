package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/numberwatch/gateway/internal/models"
	"go.uber.org/zap"
)

// AuthClient is the interface that wraps the gateway auth calls the manager needs
type AuthClient interface {
	// Method Login exchange credentials for a token and user.
	Login(ctx context.Context, email, password string) (*models.AuthResponse, error)
	// Method Signup register an account and return its token and user.
	Signup(ctx context.Context, name, email, password string) (*models.AuthResponse, error)
	// Method Verify return the identity behind "token".
	//
	// A rejected token gives an error for which IsUnauthorized reports true.
	Verify(ctx context.Context, token string) (*models.VerifyResponse, error)
}

// Manager drives the session lifecycle: absent, valid, cleared
type Manager struct {
	client  AuthClient
	store   *Store
	storage TokenStorage
	logger  *zap.Logger
}

// NewManager creates a new session manager
func NewManager(client AuthClient, store *Store, storage TokenStorage, logger *zap.Logger) *Manager {
	return &Manager{
		client:  client,
		store:   store,
		storage: storage,
		logger:  logger,
	}
}

// Store returns the session store the manager writes to
func (m *Manager) Store() *Store {
	return m.store
}

// Restore loads the persisted token and verifies it
// A missing or rejected token leaves the manager signed out without an error.
// Any other verification failure also signs out and is returned.
func (m *Manager) Restore(ctx context.Context) error {
	token, err := m.storage.Load()
	if errors.Is(err, ErrNoToken) {
		m.store.Clear()
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}

	return m.verify(ctx, token)
}

// Login signs in and persists the new token
func (m *Manager) Login(ctx context.Context, email, password string) (*Session, error) {
	resp, err := m.client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return m.establish(resp)
}

// Signup registers, signs in and persists the new token
func (m *Manager) Signup(ctx context.Context, name, email, password string) (*Session, error) {
	resp, err := m.client.Signup(ctx, name, email, password)
	if err != nil {
		return nil, err
	}
	return m.establish(resp)
}

// Logout clears the session and the persisted token
func (m *Manager) Logout() error {
	m.store.Clear()
	if err := m.storage.Delete(); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	return nil
}

// Refresh re-verifies the current token and replaces the cached user
// A failed verification signs the manager out
func (m *Manager) Refresh(ctx context.Context) error {
	token := m.store.Token()
	if token == "" {
		return nil
	}
	return m.verify(ctx, token)
}

func (m *Manager) verify(ctx context.Context, token string) error {
	resp, err := m.client.Verify(ctx, token)
	if err != nil {
		if IsUnauthorized(err) {
			m.logger.Info("stored token rejected, signing out")
			return m.Logout()
		}
		m.logger.Warn("token verification failed, signing out", zap.Error(err))
		if logoutErr := m.Logout(); logoutErr != nil {
			return errors.Join(fmt.Errorf("failed to verify token: %w", err), logoutErr)
		}
		return fmt.Errorf("failed to verify token: %w", err)
	}

	m.store.Replace(Session{
		Token: token,
		User: models.User{
			ID:    resp.User.ID,
			Email: resp.User.Email,
			Name:  resp.User.Name,
			Role:  resp.User.Role,
		},
	})
	return nil
}

func (m *Manager) establish(resp *models.AuthResponse) (*Session, error) {
	if err := m.storage.Save(resp.Token); err != nil {
		return nil, fmt.Errorf("failed to persist token: %w", err)
	}

	m.store.Replace(Session{Token: resp.Token, User: resp.User})
	return m.store.Current(), nil
}
