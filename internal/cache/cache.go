// Package cache stores public backend answers for a short time.
// Redis is used when configured, otherwise entries live in process memory.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/numberwatch/gateway/internal/config"
	"go.uber.org/zap"
)

// ErrMiss is returned by Get when the key is absent or expired
var ErrMiss = errors.New("cache miss")

// Store is a byte cache with per entry expiration
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// New creates a Redis store when a Redis host is configured and a memory store otherwise
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Store, error) {
	if cfg.Redis.Host == "" {
		logger.Info("using in-memory cache")
		return NewMemoryStore(cfg.Cache.TTL), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.RedisAddr(), err)
	}

	logger.Info("connected to Redis", zap.String("addr", cfg.RedisAddr()))
	return NewRedisStore(client, DefaultKeyPrefix), nil
}
