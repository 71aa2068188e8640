package models

import "strings"

// Role values as returned to callers; the backend may send them in any case
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User represents an account as returned by the gateway
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	Blocked   bool   `json:"blocked"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return HasRole(u.Role, RoleAdmin)
}

// HasRole compares roles case-insensitively
func HasRole(role, required string) bool {
	return strings.EqualFold(strings.TrimSpace(role), required)
}

// NormalizeRole lower-cases a backend role
func NormalizeRole(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}

// VerifiedUser is the identity returned by token verification
type VerifiedUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// NewVerifiedUser creates a VerifiedUser from User
func NewVerifiedUser(u *User) VerifiedUser {
	return VerifiedUser{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Role:  NormalizeRole(u.Role),
	}
}

// UpdateProfileRequest represents a request body for profile update
type UpdateProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// BlockUserRequest represents a request body for admin block/unblock
type BlockUserRequest struct {
	Blocked *bool `json:"blocked"`
}
