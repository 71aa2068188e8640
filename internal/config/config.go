// Package config provides configuration for the application
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Backend   BackendConfig
	Server    ServerConfig
	Logging   LoggingConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Redis     RedisConfig
	Cache     CacheConfig
	Database  DatabaseConfig
	Sentry    SentryConfig
}

// BackendConfig holds settings of the external reports backend
type BackendConfig struct {
	URL     string
	Timeout time.Duration
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port           int
	MaxRequestSize int64
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// RateLimitConfig holds per-IP request limits
type RateLimitConfig struct {
	RequestsPerMinute int
	ContactPerMinute  int
}

// RedisConfig holds Redis connection settings
// Empty Host means the in-memory cache is used instead
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// CacheConfig holds settings of the public data cache
type CacheConfig struct {
	TTL          time.Duration
	WarmSchedule string
}

// DatabaseConfig holds audit log database connection settings
// Empty Host disables the audit log
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// SentryConfig holds error reporting settings
type SentryConfig struct {
	DSN         string
	Environment string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	godotenv.Load()

	cfg := &Config{}

	// Backend configuration
	backendURL := strings.TrimRight(os.Getenv("BACKEND_URL"), "/")
	if backendURL == "" {
		return nil, fmt.Errorf("BACKEND_URL is required")
	}
	if _, err := url.ParseRequestURI(backendURL); err != nil {
		return nil, fmt.Errorf("invalid BACKEND_URL: %w", err)
	}
	cfg.Backend.URL = backendURL

	backendTimeout, err := getDuration("BACKEND_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	cfg.Backend.Timeout = backendTimeout

	// Server configuration
	serverPort, err := getInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	cfg.Server.Port = serverPort

	maxRequestSize, err := getInt("MAX_REQUEST_SIZE", 1024*1024) // 1MB
	if err != nil {
		return nil, err
	}
	cfg.Server.MaxRequestSize = int64(maxRequestSize)

	// Logging configuration
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info" // default level
	}
	cfg.Logging.Level = logLevel

	// CORS configuration
	cfg.CORS.AllowedOrigins = parseOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"))

	// Rate limit configuration
	requestsPerMinute, err := getInt("RATE_LIMIT_PER_MINUTE", 100)
	if err != nil {
		return nil, err
	}
	cfg.RateLimit.RequestsPerMinute = requestsPerMinute

	contactPerMinute, err := getInt("CONTACT_RATE_LIMIT_PER_MINUTE", 5)
	if err != nil {
		return nil, err
	}
	cfg.RateLimit.ContactPerMinute = contactPerMinute

	// Redis configuration (optional, in-memory cache is used when host is empty)
	cfg.Redis.Host = os.Getenv("REDIS_HOST")

	redisPort, err := getInt("REDIS_PORT", 6379)
	if err != nil {
		return nil, err
	}
	cfg.Redis.Port = redisPort

	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD") // optional

	redisDB, err := getInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	cfg.Redis.DB = redisDB

	// Cache configuration
	cacheTTL, err := getDuration("CACHE_TTL", "1m")
	if err != nil {
		return nil, err
	}
	cfg.Cache.TTL = cacheTTL

	// Empty value disables cache warming, so the default only applies when the variable is unset
	warmSchedule, ok := os.LookupEnv("CACHE_WARM_SCHEDULE")
	if !ok {
		warmSchedule = "@every 1m"
	}
	cfg.Cache.WarmSchedule = strings.TrimSpace(warmSchedule)

	// Audit log database configuration (optional)
	cfg.Database.Host = os.Getenv("DB_HOST")
	if cfg.Database.Host != "" {
		dbPort, err := getInt("DB_PORT", 3306)
		if err != nil {
			return nil, err
		}
		cfg.Database.Port = dbPort

		dbUser := os.Getenv("DB_USER")
		if dbUser == "" {
			return nil, fmt.Errorf("DB_USER is required when DB_HOST is set")
		}
		cfg.Database.User = dbUser
		cfg.Database.Password = os.Getenv("DB_PASSWORD")

		dbName := os.Getenv("DB_NAME")
		if dbName == "" {
			return nil, fmt.Errorf("DB_NAME is required when DB_HOST is set")
		}
		cfg.Database.DBName = dbName
	}

	// Sentry configuration (optional)
	cfg.Sentry.DSN = os.Getenv("SENTRY_DSN")
	cfg.Sentry.Environment = os.Getenv("APP_ENV")

	return cfg, nil
}

// DSN returns the audit database connection string
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
	)
}

// RedisAddr returns the Redis address in host:port form
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func getInt(key string, def int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return def, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

func getDuration(key, def string) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

// parseOrigins parses comma-separated origins, defaulting to allow all
func parseOrigins(raw string) []string {
	if raw == "" {
		// Default to allow all origins if not specified (for development)
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, origin := range parts {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	// If no valid origins found, default to allow all
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
