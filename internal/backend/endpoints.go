package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/numberwatch/gateway/internal/models"
)

// Login exchanges credentials for an access token
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", loginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	return &LoginResult{
		AccessToken: resp.AccessToken,
		User:        resp.User.toModel(),
	}, nil
}

// Register creates a new account
func (c *Client) Register(ctx context.Context, name, email, password string) error {
	return c.do(ctx, http.MethodPost, "/auth/register", "", registerRequest{Name: name, Email: email, Password: password}, nil)
}

// Profile returns the user the token belongs to
func (c *Client) Profile(ctx context.Context, token string) (*models.User, error) {
	var user userDTO
	if err := c.do(ctx, http.MethodGet, "/auth/profile", token, nil, &user); err != nil {
		return nil, err
	}
	return user.toModel(), nil
}

// ChangePassword changes the password of the token owner
func (c *Client) ChangePassword(ctx context.Context, token, currentPassword, newPassword string) error {
	return c.do(ctx, http.MethodPost, "/auth/change-password", token, changePasswordRequest{
		CurrentPassword: currentPassword,
		NewPassword:     newPassword,
	}, nil)
}

// ListReports returns every report visible to the token owner
func (c *Client) ListReports(ctx context.Context, token string) ([]models.Report, error) {
	reports := []models.Report{}
	if err := c.do(ctx, http.MethodGet, "/reports", token, nil, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// CreateReport creates a report
func (c *Client) CreateReport(ctx context.Context, token string, req models.CreateReportRequest) (*models.Report, error) {
	var report models.Report
	if err := c.do(ctx, http.MethodPost, "/reports", token, req, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// GetReport returns a report by ID
func (c *Client) GetReport(ctx context.Context, token, id string) (*models.Report, error) {
	var report models.Report
	if err := c.do(ctx, http.MethodGet, reportPath(id), token, nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// UpdateReport updates the editable fields of a report
func (c *Client) UpdateReport(ctx context.Context, token, id string, req models.UpdateReportRequest) (*models.Report, error) {
	var report models.Report
	if err := c.do(ctx, http.MethodPatch, reportPath(id), token, req, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// DeleteReport deletes a report
func (c *Client) DeleteReport(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, reportPath(id), token, nil, nil)
}

// UpdateReportStatus sets the moderation status of a report
func (c *Client) UpdateReportStatus(ctx context.Context, token, id string, status models.Status) (*models.Report, error) {
	var report models.Report
	if err := c.do(ctx, http.MethodPatch, reportPath(id)+"/admin", token, statusRequest{Status: status}, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// SearchReports returns reports about a phone number
func (c *Client) SearchReports(ctx context.Context, token, phoneNumber string) ([]models.Report, error) {
	reports := []models.Report{}
	path := "/reports/search?phoneNumber=" + url.QueryEscape(phoneNumber)
	if err := c.do(ctx, http.MethodGet, path, token, nil, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// PublicStats returns the public report statistics unchanged
func (c *Client) PublicStats(ctx context.Context) (json.RawMessage, error) {
	return c.doRaw(ctx, http.MethodGet, "/reports/public/stats", "", nil)
}

// RecentReports returns the public list of recent reports unchanged
func (c *Client) RecentReports(ctx context.Context) (json.RawMessage, error) {
	return c.doRaw(ctx, http.MethodGet, "/reports/public/recent", "", nil)
}

// ListUsers returns all accounts
func (c *Client) ListUsers(ctx context.Context, token string) ([]models.User, error) {
	var dtos []userDTO
	if err := c.do(ctx, http.MethodGet, "/users", token, nil, &dtos); err != nil {
		return nil, err
	}

	users := make([]models.User, 0, len(dtos))
	for i := range dtos {
		users = append(users, *dtos[i].toModel())
	}
	return users, nil
}

// SetUserBlocked blocks or unblocks an account
func (c *Client) SetUserBlocked(ctx context.Context, token, id string, blocked bool) (*models.User, error) {
	action := "unblock"
	if blocked {
		action = "block"
	}

	var user userDTO
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("%s/%s", userPath(id), action), token, nil, &user); err != nil {
		return nil, err
	}

	// Some backends answer with an empty body
	if user.ID == "" {
		return &models.User{ID: id, Blocked: blocked}, nil
	}
	return user.toModel(), nil
}

// DeleteUser deletes an account by ID
func (c *Client) DeleteUser(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, userPath(id), token, nil, nil)
}

// UpdateProfile updates the token owner's name and email
func (c *Client) UpdateProfile(ctx context.Context, token string, req models.UpdateProfileRequest) (*models.User, error) {
	var user userDTO
	if err := c.do(ctx, http.MethodPatch, "/users/profile", token, req, &user); err != nil {
		return nil, err
	}
	return user.toModel(), nil
}

// DeleteProfile deletes the token owner's account
func (c *Client) DeleteProfile(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodDelete, "/users/profile", token, nil, nil)
}

// SubmitContact forwards a contact form and returns the backend answer unchanged
func (c *Client) SubmitContact(ctx context.Context, msg models.ContactMessage) (json.RawMessage, error) {
	return c.doRaw(ctx, http.MethodPost, "/contact", "", msg)
}

func reportPath(id string) string {
	return "/reports/" + url.PathEscape(id)
}

func userPath(id string) string {
	return "/users/" + url.PathEscape(id)
}
