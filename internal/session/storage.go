package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// TokenKey is the fixed name the token is persisted under
const TokenKey = "auth-token"

// ErrNoToken is returned by Load when no token is stored
var ErrNoToken = errors.New("no stored token")

// TokenStorage is the interface that wraps persistence of the bearer token
type TokenStorage interface {
	// Method Load return the stored token.
	//
	// If nothing is stored, ErrNoToken is returned.
	Load() (string, error)
	// Method Save store "token", replacing any previous value.
	Save(token string) error
	// Method Delete remove the stored token. Deleting a missing token is not an error.
	Delete() error
}

type fileTokenStorage struct {
	path string
}

// NewFileTokenStorage creates a storage keeping the token in dir under TokenKey
func NewFileTokenStorage(dir string) *fileTokenStorage {
	return &fileTokenStorage{path: filepath.Join(dir, TokenKey)}
}

// Load reads the token file
func (s *fileTokenStorage) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// Save writes the token file readable by the owner only
func (s *fileTokenStorage) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(token), 0o600); err != nil {
		return fmt.Errorf("failed to write token: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write token: %w", err)
	}
	return nil
}

// Delete removes the token file
func (s *fileTokenStorage) Delete() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

type memoryTokenStorage struct {
	mu    sync.Mutex
	token string
}

// NewMemoryTokenStorage creates a storage that lives as long as the process
func NewMemoryTokenStorage() *memoryTokenStorage {
	return &memoryTokenStorage{}
}

func (s *memoryTokenStorage) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		return "", ErrNoToken
	}
	return s.token, nil
}

func (s *memoryTokenStorage) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *memoryTokenStorage) Delete() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}
