package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/numberwatch/gateway/internal/cache"
	"go.uber.org/zap"
)

// PublicBackend is the interface that wraps the unauthenticated backend endpoints
type PublicBackend interface {
	// Method PublicStats retrieve report and user totals as sent by the backend.
	PublicStats(ctx context.Context) (json.RawMessage, error)
	// Method RecentReports retrieve the latest approved reports as sent by the backend.
	RecentReports(ctx context.Context) (json.RawMessage, error)
}

// Cache keys of public data
const (
	StatsCacheKey  = "public:stats"
	RecentCacheKey = "public:recent"
)

type publicService struct {
	backend PublicBackend
	cache   cache.Store
	ttl     time.Duration
	logger  *zap.Logger
}

// NewPublicService creates a new public data service
// store may be nil, in which case every call goes to the backend
func NewPublicService(backend PublicBackend, store cache.Store, ttl time.Duration, logger *zap.Logger) *publicService {
	return &publicService{
		backend: backend,
		cache:   store,
		ttl:     ttl,
		logger:  logger,
	}
}

// Stats returns public statistics
func (s *publicService) Stats(ctx context.Context) (json.RawMessage, error) {
	return s.cached(ctx, StatsCacheKey, s.backend.PublicStats, "Failed to fetch stats")
}

// Recent returns recently approved reports
func (s *publicService) Recent(ctx context.Context) (json.RawMessage, error) {
	return s.cached(ctx, RecentCacheKey, s.backend.RecentReports, "Failed to fetch recent reports")
}

// Refresh reloads every cached entry from the backend
func (s *publicService) Refresh(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}

	var errs []error
	if err := s.refresh(ctx, StatsCacheKey, s.backend.PublicStats); err != nil {
		errs = append(errs, err)
	}
	if err := s.refresh(ctx, RecentCacheKey, s.backend.RecentReports); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (s *publicService) cached(ctx context.Context, key string, fetch func(context.Context) (json.RawMessage, error), fallback string) (json.RawMessage, error) {
	if s.cache != nil {
		data, err := s.cache.Get(ctx, key)
		if err == nil {
			return json.RawMessage(data), nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			s.logger.Warn("cache read failed, falling back to backend", zap.String("key", key), zap.Error(err))
		}
	}

	data, err := fetch(ctx)
	if err != nil {
		s.logger.Error("failed to fetch public data", zap.String("key", key), zap.Error(err))
		return nil, relay(err, fallback)
	}

	s.store(ctx, key, data)
	return data, nil
}

func (s *publicService) refresh(ctx context.Context, key string, fetch func(context.Context) (json.RawMessage, error)) error {
	data, err := fetch(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh %s: %w", key, err)
	}
	s.store(ctx, key, data)
	return nil
}

func (s *publicService) store(ctx context.Context, key string, data json.RawMessage) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}
