// Package session keeps the signed in state of a gateway client.
//
// A Session is an immutable value. Login, logout and refresh each replace it
// as a whole through Store, so readers never observe a token paired with a
// different user.
package session

import (
	"sync/atomic"

	"github.com/numberwatch/gateway/internal/models"
)

// Session is the bearer token and the user it belongs to
type Session struct {
	Token string
	User  models.User
}

// IsAdmin reports whether the session user holds the admin role
func (s *Session) IsAdmin() bool {
	return s != nil && s.User.IsAdmin()
}

// Store holds the current session
// The zero value is an empty store ready to use
type Store struct {
	current atomic.Pointer[Session]
}

// NewStore creates an empty session store
func NewStore() *Store {
	return &Store{}
}

// Current returns the current session, or nil when signed out
func (s *Store) Current() *Session {
	return s.current.Load()
}

// Token returns the current bearer token, or "" when signed out
func (s *Store) Token() string {
	if current := s.current.Load(); current != nil {
		return current.Token
	}
	return ""
}

// Replace installs a new session
func (s *Store) Replace(session Session) {
	s.current.Store(&session)
}

// Clear removes the current session
func (s *Store) Clear() {
	s.current.Store(nil)
}
