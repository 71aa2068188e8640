package middleware

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const (
	tokenKey contextKey = "token"
	userKey  contextKey = "user"
)

// TokenInspector is the interface that wraps the local token expiry check
type TokenInspector interface {
	// Method Expired report whether "token" is known to be expired without asking the backend.
	Expired(token string) bool
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header
func BearerToken(r *http.Request) (string, bool) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// AuthMiddleware requires a bearer token and stores it in the request context
// inspector may be nil, in which case expired tokens are left for the backend to reject
func AuthMiddleware(inspector TokenInspector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := authenticate(w, r, inspector)
			if !ok {
				return
			}

			ctx := context.WithValue(r.Context(), tokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// authenticate writes a 401 and returns false when the request carries no usable token
func authenticate(w http.ResponseWriter, r *http.Request, inspector TokenInspector) (string, bool) {
	token, ok := BearerToken(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return "", false
	}

	if inspector != nil && inspector.Expired(token) {
		writeError(w, http.StatusUnauthorized, "Invalid or expired token")
		return "", false
	}

	return token, true
}

// GetToken retrieves the bearer token from context
func GetToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey).(string)
	return token, ok && token != ""
}

// WithToken stores the bearer token in context
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":"` + message + `"}`))
}
