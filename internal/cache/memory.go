package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps entries in process memory
type MemoryStore struct {
	cache *gocache.Cache
}

// NewMemoryStore creates a memory store; defaultTTL also drives the cleanup interval
func NewMemoryStore(defaultTTL time.Duration) *MemoryStore {
	cleanup := 2 * defaultTTL
	if cleanup <= 0 {
		cleanup = 10 * time.Minute
	}
	return &MemoryStore{
		cache: gocache.New(defaultTTL, cleanup),
	}
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, ok := s.cache.Get(key)
	if !ok {
		return nil, ErrMiss
	}
	data, ok := value.([]byte)
	if !ok {
		return nil, ErrMiss
	}
	return data, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	// Copy so later changes by the caller don't leak into the cache
	data := make([]byte, len(value))
	copy(data, value)

	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	s.cache.Set(key, data, ttl)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.cache.Delete(key)
	return nil
}

func (s *MemoryStore) Close() error {
	s.cache.Flush()
	return nil
}
