// Package httpjson holds the request and response plumbing shared by the outbound JSON clients
package httpjson

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// MaxErrorBody bounds how much of a failed response is read for its message
const MaxErrorBody = 64 * 1024

// NewRequest creates a JSON request for url
// A nil body sends no payload; a non-empty token is sent as a bearer
func NewRequest(ctx context.Context, method, url, token string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// IsSuccess reports whether status is 2xx
func IsSuccess(status int) bool {
	return status >= 200 && status <= 299
}

// ReadErrorBody reads at most MaxErrorBody bytes of a failed response
func ReadErrorBody(resp *http.Response) []byte {
	payload, _ := io.ReadAll(io.LimitReader(resp.Body, MaxErrorBody))
	return payload
}
