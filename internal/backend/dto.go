package backend

import "github.com/numberwatch/gateway/internal/models"

// userDTO is a backend user; isBlocked is the backend name of the blocked flag
type userDTO struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	IsBlocked bool   `json:"isBlocked"`
	Blocked   bool   `json:"blocked"`
	CreatedAt string `json:"createdAt"`
}

func (u *userDTO) toModel() *models.User {
	return &models.User{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      models.NormalizeRole(u.Role),
		Blocked:   u.IsBlocked || u.Blocked,
		CreatedAt: u.CreatedAt,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string  `json:"access_token"`
	User        userDTO `json:"user"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type statusRequest struct {
	Status models.Status `json:"status"`
}

// LoginResult is a successful backend login
type LoginResult struct {
	AccessToken string
	User        *models.User
}
