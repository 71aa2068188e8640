// Package routes wires services and handlers into the gateway router
package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/numberwatch/gateway/internal/auth/middleware"
	"github.com/numberwatch/gateway/internal/backend"
	"github.com/numberwatch/gateway/internal/cache"
	"github.com/numberwatch/gateway/internal/handlers"
	"github.com/numberwatch/gateway/internal/models"
	"github.com/numberwatch/gateway/internal/services"
	"go.uber.org/zap"
)

// PublicService serves and refreshes the cached public data
type PublicService interface {
	Stats(ctx context.Context) (json.RawMessage, error)
	Recent(ctx context.Context) (json.RawMessage, error)
	Refresh(ctx context.Context) error
}

// Dependencies holds everything the gateway routes need
type Dependencies struct {
	Backend   *backend.Client
	Inspector middleware.TokenInspector
	// Cache may be nil, in which case public data is always fetched from the backend
	Cache    cache.Store
	CacheTTL time.Duration
	// Audit may be nil, in which case admin actions are not recorded
	Audit services.AuditRepository
	// ContactPerMinute limits contact form submissions per IP; 0 disables the limit
	ContactPerMinute int
	HealthChecks     map[string]handlers.HealthCheck
	Logger           *zap.Logger
}

// Services exposes the services built by Register that run outside of requests
type Services struct {
	Public PublicService
}

// Register builds services and handlers and mounts them on r
// API routes live under /api, /health at the root
func Register(r chi.Router, deps Dependencies) *Services {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// Initialize services
	authorizer := services.NewAuthorizer(deps.Backend, logger)
	authService := services.NewAuthService(deps.Backend, logger)
	submissionService := services.NewSubmissionService(deps.Backend, authorizer, logger)
	adminService := services.NewAdminService(deps.Backend, deps.Audit, logger)
	searchService := services.NewSearchService(deps.Backend, logger)
	contactService := services.NewContactService(deps.Backend, logger)
	publicService := services.NewPublicService(deps.Backend, deps.Cache, deps.CacheTTL, logger)
	profileService := services.NewProfileService(deps.Backend, logger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, logger)
	submissionHandler := handlers.NewSubmissionHandler(submissionService, logger)
	adminHandler := handlers.NewAdminHandler(adminService, logger)
	searchHandler := handlers.NewSearchHandler(searchService, logger)
	contactHandler := handlers.NewContactHandler(contactService, logger)
	publicHandler := handlers.NewPublicHandler(publicService, logger)
	profileHandler := handlers.NewProfileHandler(profileService, logger)
	healthHandler := handlers.NewHealthHandler(deps.HealthChecks, logger)

	// Initialize auth middleware
	authMiddleware := middleware.AuthMiddleware(deps.Inspector)
	adminMiddleware := middleware.RoleMiddleware(deps.Inspector, deps.Backend, models.RoleAdmin, logger)

	var contactLimiter func(http.Handler) http.Handler
	if deps.ContactPerMinute > 0 {
		contactLimiter = httprate.LimitByIP(deps.ContactPerMinute, time.Minute)
	}

	healthHandler.RegisterRoutes(r)

	r.Route("/api", func(r chi.Router) {
		authHandler.RegisterRoutes(r, authMiddleware)
		submissionHandler.RegisterRoutes(r, authMiddleware)
		searchHandler.RegisterRoutes(r, authMiddleware)
		profileHandler.RegisterRoutes(r, authMiddleware)
		adminHandler.RegisterRoutes(r, adminMiddleware)
		contactHandler.RegisterRoutes(r, contactLimiter)
		publicHandler.RegisterRoutes(r)
	})

	return &Services{Public: publicService}
}
