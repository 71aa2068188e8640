package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/numberwatch/gateway/docs"
	"github.com/numberwatch/gateway/internal/auth/service"
	"github.com/numberwatch/gateway/internal/backend"
	"github.com/numberwatch/gateway/internal/cache"
	"github.com/numberwatch/gateway/internal/config"
	"github.com/numberwatch/gateway/internal/handlers"
	"github.com/numberwatch/gateway/internal/jobs"
	"github.com/numberwatch/gateway/internal/logger"
	loggerMiddleware "github.com/numberwatch/gateway/internal/logger/middleware"
	sharedMiddleware "github.com/numberwatch/gateway/internal/middleware"
	"github.com/numberwatch/gateway/internal/repositories"
	"github.com/numberwatch/gateway/internal/routes"
	"github.com/numberwatch/gateway/internal/services"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// @title NumberWatch Gateway API
// @version 1.0
// @description Gateway in front of the NumberWatch reports backend: authentication, phone number reports, moderation and public statistics

// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the token returned by login.
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting NumberWatch Gateway", zap.String("backend_url", cfg.Backend.URL))

	// Error reporting (optional)
	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.Sentry.Environment,
		}); err != nil {
			logger.Logger.Error("Failed to initialize sentry", zap.Error(err))
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelStart()

	// Initialize cache
	store, err := cache.New(startCtx, cfg, logger.Logger)
	if err != nil {
		logger.Logger.Fatal("Failed to initialize cache", zap.Error(err))
	}
	defer store.Close()

	healthChecks := map[string]handlers.HealthCheck{}

	// Connect to audit database (optional)
	var auditRepo services.AuditRepository
	if cfg.Database.Host != "" {
		db, err := connectDB(cfg.DSN())
		if err != nil {
			logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		if err := runMigrations(db); err != nil {
			logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
		}

		auditRepo = repositories.NewAuditRepository(db, logger.Logger)
		healthChecks["database"] = db.PingContext
	} else {
		logger.Logger.Info("Audit log disabled, DB_HOST is not set")
	}

	// Initialize backend client and token inspector
	backendClient := backend.NewClient(cfg.Backend.URL, cfg.Backend.Timeout, logger.Logger)
	tokenInspector := service.NewTokenInspector(5 * time.Second)

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(sharedMiddleware.RequestIDMiddleware)
	r.Use(loggerMiddleware.LoggerMiddleware(logger.Logger))
	r.Use(sharedMiddleware.RecoveryMiddleware(logger.Logger))
	if cfg.Sentry.DSN != "" {
		r.Use(sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle)
	}
	r.Use(sharedMiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(httprate.LimitByIP(cfg.RateLimit.RequestsPerMinute, time.Minute))
	r.Use(sharedMiddleware.RequestSizeLimitMiddleware(cfg.Server.MaxRequestSize))

	// Swagger documentation
	docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", cfg.Server.Port)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Server.Port)),
	))

	// Register gateway routes
	svcs := routes.Register(r, routes.Dependencies{
		Backend:          backendClient,
		Inspector:        tokenInspector,
		Cache:            store,
		CacheTTL:         cfg.Cache.TTL,
		Audit:            auditRepo,
		ContactPerMinute: cfg.RateLimit.ContactPerMinute,
		HealthChecks:     healthChecks,
		Logger:           logger.Logger,
	})

	// Keep public data warm in the cache
	scheduler := jobs.NewScheduler(logger.Logger)
	if cfg.Cache.WarmSchedule != "" {
		if err := scheduler.Add(cfg.Cache.WarmSchedule, jobs.NewCacheWarmJob(svcs.Public, logger.Logger)); err != nil {
			logger.Logger.Fatal("Failed to schedule cache warming", zap.Error(err))
		}
	}
	scheduler.Start()

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second + cfg.Backend.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := scheduler.Stop(ctx); err != nil {
		logger.Logger.Error("Scheduler forced to stop", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}

// connectDB connects to the database
func connectDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// runMigrations runs database migrations
func runMigrations(db *sql.DB) error {
	// Use a gateway specific migration table name to avoid conflicts with other services
	driver, err := mysql.WithInstance(db, &mysql.Config{
		MigrationsTable: "gateway_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	// Get the working directory or use migrations folder relative to the binary
	migrationPath := "file://migrations"
	if _, err := os.Stat("migrations"); os.IsNotExist(err) {
		// Try parent directory if running from cmd
		if _, err := os.Stat("../migrations"); err == nil {
			migrationPath = "file://../migrations"
		}
	}

	m, err := migrate.NewWithDatabaseInstance(
		migrationPath,
		"mysql",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
