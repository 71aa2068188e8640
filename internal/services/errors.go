package services

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/numberwatch/gateway/internal/backend"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrUnavailable  = errors.New("unavailable")
)

// StatusError is an error that carries the HTTP status and message shown to the caller
type StatusError struct {
	Status  int
	Message string
	Err     error
}

func (e *StatusError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

func badRequest(message string) error {
	return &StatusError{Status: http.StatusBadRequest, Message: message, Err: ErrInvalidInput}
}

func forbidden(message string) error {
	return &StatusError{Status: http.StatusForbidden, Message: message, Err: ErrForbidden}
}

func notFound(message string, err error) error {
	return &StatusError{Status: http.StatusNotFound, Message: message, Err: errors.Join(ErrNotFound, err)}
}

func unauthorized(message string, err error) error {
	return &StatusError{Status: http.StatusUnauthorized, Message: message, Err: errors.Join(ErrUnauthorized, err)}
}

// relay converts a backend error into a StatusError
//
// Backend answers keep their status and message, falling back to fallback when the
// backend sent no message. Transport failures become 502, anything else 500.
func relay(err error, fallback string) error {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		message := apiErr.Message
		if message == "" {
			message = fallback
		}
		return &StatusError{Status: apiErr.StatusCode, Message: message, Err: err}
	}

	if errors.Is(err, backend.ErrUnavailable) {
		return &StatusError{Status: http.StatusBadGateway, Message: "Backend unavailable", Err: errors.Join(ErrUnavailable, err)}
	}

	return &StatusError{Status: http.StatusInternalServerError, Message: "Internal server error", Err: err}
}

// profileFailure converts a failed caller profile lookup into a StatusError
//
// Backend answers keep their status with a fixed message. Other failures follow relay.
func profileFailure(err error) error {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		return &StatusError{Status: apiErr.StatusCode, Message: "Failed to get user profile", Err: err}
	}
	return relay(err, "Failed to get user profile")
}
