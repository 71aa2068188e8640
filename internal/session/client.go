package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/numberwatch/gateway/internal/httpjson"
	"github.com/numberwatch/gateway/internal/models"
	"go.uber.org/zap"
)

// APIError is a non-2xx gateway response
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gateway returned status %d: %s", e.StatusCode, e.Message)
}

// IsUnauthorized reports whether err is a 401 answer
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// Client calls the gateway API
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new gateway client
// baseURL points at the gateway root, e.g. http://localhost:8080
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Login exchanges credentials for a token
func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", "", models.LoginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Signup registers an account and returns its token
func (c *Client) Signup(ctx context.Context, name, email, password string) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/signup", "", models.SignupRequest{Name: name, Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Verify returns the identity behind token
func (c *Client) Verify(ctx context.Context, token string) (*models.VerifyResponse, error) {
	var resp models.VerifyResponse
	if err := c.do(ctx, http.MethodGet, "/api/auth/verify", token, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ChangePassword changes the password of the token owner
func (c *Client) ChangePassword(ctx context.Context, token, current, next string) error {
	req := models.ChangePasswordRequest{CurrentPassword: current, NewPassword: next}
	return c.do(ctx, http.MethodPost, "/api/auth/change-password", token, req, nil)
}

// Submissions lists the caller's reports
func (c *Client) Submissions(ctx context.Context, token string) ([]models.SubmissionResponse, error) {
	var resp []models.SubmissionResponse
	if err := c.do(ctx, http.MethodGet, "/api/submissions", token, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// CreateSubmission files a new report
func (c *Client) CreateSubmission(ctx context.Context, token string, req models.SubmissionRequest) (*models.SubmissionResponse, error) {
	var resp models.SubmissionResponse
	if err := c.do(ctx, http.MethodPost, "/api/submissions", token, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateSubmission changes an own report
func (c *Client) UpdateSubmission(ctx context.Context, token, id string, req models.SubmissionRequest) (*models.SubmissionResponse, error) {
	var resp models.SubmissionResponse
	if err := c.do(ctx, http.MethodPatch, "/api/submissions/"+url.PathEscape(id), token, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteSubmission removes an own report
func (c *Client) DeleteSubmission(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/submissions/"+url.PathEscape(id), token, nil, nil)
}

// Search looks up reports about a phone number
func (c *Client) Search(ctx context.Context, token, phoneNumber string) ([]models.SubmissionResponse, error) {
	var resp []models.SubmissionResponse
	path := "/api/search?phoneNumber=" + url.QueryEscape(phoneNumber)
	if err := c.do(ctx, http.MethodGet, path, token, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Stats returns public statistics as sent by the gateway
func (c *Client) Stats(ctx context.Context) (json.RawMessage, error) {
	var resp json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/stats", "", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Contact sends a contact form message
func (c *Client) Contact(ctx context.Context, msg models.ContactMessage) error {
	return c.do(ctx, http.MethodPost, "/api/contact", "", msg, nil)
}

// AdminSubmissions lists every report (admin only)
func (c *Client) AdminSubmissions(ctx context.Context, token string) ([]models.Report, error) {
	var resp []models.Report
	if err := c.do(ctx, http.MethodGet, "/api/admin/submissions", token, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// AdminUpdateStatus approves or rejects a report (admin only)
func (c *Client) AdminUpdateStatus(ctx context.Context, token, id, status string) (*models.Report, error) {
	var resp models.Report
	path := "/api/admin/submissions/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodPatch, path, token, models.UpdateStatusRequest{Status: status}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AdminUsers lists every account (admin only)
func (c *Client) AdminUsers(ctx context.Context, token string) ([]models.User, error) {
	var resp []models.User
	if err := c.do(ctx, http.MethodGet, "/api/admin/users", token, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// AdminSetBlocked blocks or unblocks an account (admin only)
func (c *Client) AdminSetBlocked(ctx context.Context, token, id string, blocked bool) (*models.User, error) {
	var resp models.User
	path := "/api/admin/users/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodPatch, path, token, models.BlockUserRequest{Blocked: &blocked}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AdminDeleteUser deletes an account (admin only)
func (c *Client) AdminDeleteUser(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/admin/users/"+url.PathEscape(id), token, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	req, err := httpjson.NewRequest(ctx, method, c.baseURL+path, token, body)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("gateway request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("failed to call gateway: %w", err)
	}
	defer resp.Body.Close()

	if !httpjson.IsSuccess(resp.StatusCode) {
		return &APIError{StatusCode: resp.StatusCode, Message: parseErrorMessage(httpjson.ReadErrorBody(resp), resp.StatusCode)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// parseErrorMessage extracts "error" from a gateway error body, falling back to the status text
func parseErrorMessage(payload []byte, status int) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(payload, &body); err != nil || body.Error == "" {
		return http.StatusText(status)
	}
	return body.Error
}
