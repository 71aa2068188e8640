package httpjson

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequest(t *testing.T) {
	t.Run("with body and token", func(t *testing.T) {
		req, err := NewRequest(context.Background(), http.MethodPost, "http://backend/reports", "tok", map[string]string{"category": "SCAM"})
		require.NoError(t, err)

		assert.Equal(t, http.MethodPost, req.Method)
		assert.Equal(t, "application/json", req.Header.Get("Accept"))
		assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))

		payload, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"category":"SCAM"}`, string(payload))
	})

	t.Run("without body and token", func(t *testing.T) {
		req, err := NewRequest(context.Background(), http.MethodGet, "http://backend/reports", "", nil)
		require.NoError(t, err)

		assert.Nil(t, req.Body)
		assert.Empty(t, req.Header.Get("Content-Type"))
		assert.Empty(t, req.Header.Get("Authorization"))
	})

	t.Run("unencodable body", func(t *testing.T) {
		_, err := NewRequest(context.Background(), http.MethodPost, "http://backend", "", make(chan int))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to encode request")
	})

	t.Run("invalid url", func(t *testing.T) {
		_, err := NewRequest(context.Background(), http.MethodGet, "://bad", "", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create request")
	})
}

func TestIsSuccess(t *testing.T) {
	tests := []struct {
		status   int
		expected bool
	}{
		{status: http.StatusOK, expected: true},
		{status: http.StatusNoContent, expected: true},
		{status: http.StatusMultipleChoices, expected: false},
		{status: http.StatusNotFound, expected: false},
		{status: http.StatusContinue, expected: false},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.expected, IsSuccess(tt.status))
		})
	}
}

func TestReadErrorBody(t *testing.T) {
	resp := &http.Response{Body: io.NopCloser(strings.NewReader(strings.Repeat("x", MaxErrorBody+10)))}

	assert.Len(t, ReadErrorBody(resp), MaxErrorBody)
}
