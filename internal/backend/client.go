// Package backend is a typed HTTP client for the reports backend.
//
// Every call forwards the caller's bearer token and request ID. Non-2xx answers
// surface as *APIError carrying the backend status and message; transport failures
// and undecodable bodies wrap ErrUnavailable.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/numberwatch/gateway/internal/httpjson"
	"github.com/numberwatch/gateway/internal/middleware"
	"go.uber.org/zap"
)

// ErrUnavailable is returned when the backend cannot be reached or answers garbage
var ErrUnavailable = errors.New("backend unavailable")

// APIError is a non-2xx backend response
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Message)
}

// IsStatus reports whether err is an APIError with the given status code
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// Client calls the reports backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new backend client
// baseURL must not end with a slash
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// BaseURL returns the backend base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do sends a request and decodes a successful JSON answer into out
// out may be nil when the body is irrelevant
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	raw, err := c.send(ctx, method, path, token, body)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		c.logger.Error("failed to decode backend response",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return fmt.Errorf("%w: failed to decode response: %w", ErrUnavailable, err)
	}
	return nil
}

// doRaw sends a request and returns the successful body unchanged
func (c *Client) doRaw(ctx context.Context, method, path, token string, body any) (json.RawMessage, error) {
	raw, err := c.send(ctx, method, path, token, body)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return json.RawMessage("{}"), nil
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("%w: response is not valid JSON", ErrUnavailable)
	}
	return json.RawMessage(raw), nil
}

func (c *Client) send(ctx context.Context, method, path, token string, body any) ([]byte, error) {
	req, err := httpjson.NewRequest(ctx, method, c.baseURL+path, token, body)
	if err != nil {
		return nil, err
	}
	if requestID := middleware.GetRequestID(ctx); requestID != "" {
		req.Header.Set(middleware.RequestIDHeader, requestID)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("backend request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("backend request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if !httpjson.IsSuccess(resp.StatusCode) {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    parseErrorMessage(httpjson.ReadErrorBody(resp)),
		}
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", ErrUnavailable, err)
	}
	return payload, nil
}

// parseErrorMessage extracts "message" from an error body
// The backend sends either a string or a list of validation messages
func parseErrorMessage(payload []byte) string {
	var body struct {
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(payload, &body); err != nil || len(body.Message) == 0 {
		return ""
	}

	var message string
	if err := json.Unmarshal(body.Message, &message); err == nil {
		return message
	}

	var messages []string
	if err := json.Unmarshal(body.Message, &messages); err == nil && len(messages) > 0 {
		return messages[0]
	}

	return ""
}
