package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/numberwatch/gateway/internal/backend"
	"github.com/numberwatch/gateway/internal/models"
	"go.uber.org/zap"
)

// ProfileFetcher is the interface that wraps the backend profile lookup
type ProfileFetcher interface {
	// Method Profile retrieve the user the "token" belongs to.
	Profile(ctx context.Context, token string) (*models.User, error)
}

// RoleMiddleware requires a bearer token whose owner holds requiredRole
//
// The role is read from the backend profile of the token owner, never from the client.
// The verified user and the token are stored in the request context.
func RoleMiddleware(inspector TokenInspector, profiles ProfileFetcher, requiredRole string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := authenticate(w, r, inspector)
			if !ok {
				return
			}

			user, err := profiles.Profile(r.Context(), token)
			if err != nil {
				if errors.Is(err, backend.ErrUnavailable) {
					logger.Error("failed to verify role", zap.Error(err))
					writeError(w, http.StatusBadGateway, "Backend unavailable")
					return
				}
				logger.Warn("role check rejected token", zap.Error(err))
				writeError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			if !models.HasRole(user.Role, requiredRole) {
				logger.Warn("insufficient role",
					zap.String("user_id", user.ID),
					zap.String("role", user.Role),
					zap.String("required_role", requiredRole),
				)
				writeError(w, http.StatusForbidden, forbiddenMessage(requiredRole))
				return
			}

			ctx := context.WithValue(r.Context(), tokenKey, token)
			ctx = context.WithValue(ctx, userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUser retrieves the verified user from context
func GetUser(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok && user != nil
}

func forbiddenMessage(role string) string {
	if role == models.RoleAdmin {
		return "Admin access required"
	}
	return "Insufficient permissions"
}
