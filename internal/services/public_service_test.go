package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/numberwatch/gateway/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// failingCache is a cache.Store whose every operation fails
type failingCache struct{}

func (failingCache) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, errors.New("redis down")
}

func (failingCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return errors.New("redis down")
}

func (failingCache) Delete(ctx context.Context, key string) error {
	return errors.New("redis down")
}

func (failingCache) Close() error {
	return nil
}

func TestPublicService_Stats(t *testing.T) {
	t.Run("second call is served from cache", func(t *testing.T) {
		mock := &mockBackend{stats: json.RawMessage(`{"totalReports":10,"totalUsers":2}`)}
		svc := NewPublicService(mock, cache.NewMemoryStore(time.Minute), time.Minute, zap.NewNop())

		first, err := svc.Stats(context.Background())
		require.NoError(t, err)
		second, err := svc.Stats(context.Background())
		require.NoError(t, err)

		assert.JSONEq(t, string(first), string(second))
		assert.Equal(t, 1, mock.countCalls("PublicStats"))
	})

	t.Run("cache failure degrades to backend", func(t *testing.T) {
		mock := &mockBackend{stats: json.RawMessage(`{"totalReports":10}`)}
		svc := NewPublicService(mock, failingCache{}, time.Minute, zap.NewNop())

		for i := 0; i < 2; i++ {
			data, err := svc.Stats(context.Background())
			require.NoError(t, err)
			assert.JSONEq(t, `{"totalReports":10}`, string(data))
		}
		assert.Equal(t, 2, mock.countCalls("PublicStats"))
	})

	t.Run("no cache", func(t *testing.T) {
		mock := &mockBackend{stats: json.RawMessage(`{}`)}
		svc := NewPublicService(mock, nil, time.Minute, zap.NewNop())

		_, err := svc.Stats(context.Background())

		require.NoError(t, err)
		assert.NoError(t, svc.Refresh(context.Background()))
	})

	t.Run("backend failure", func(t *testing.T) {
		svc := NewPublicService(&mockBackend{statsErr: apiError(http.StatusServiceUnavailable, "")}, cache.NewMemoryStore(time.Minute), time.Minute, zap.NewNop())

		_, err := svc.Stats(context.Background())

		assertStatusError(t, err, http.StatusServiceUnavailable, "Failed to fetch stats")
	})
}

func TestPublicService_Recent(t *testing.T) {
	mock := &mockBackend{recent: json.RawMessage(`[{"id":"r1"}]`)}
	svc := NewPublicService(mock, cache.NewMemoryStore(time.Minute), time.Minute, zap.NewNop())

	data, err := svc.Recent(context.Background())

	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"r1"}]`, string(data))

	svc = NewPublicService(&mockBackend{recentErr: unavailable()}, nil, time.Minute, zap.NewNop())
	_, err = svc.Recent(context.Background())
	assertStatusError(t, err, http.StatusBadGateway, "Backend unavailable")
}

func TestPublicService_Refresh(t *testing.T) {
	t.Run("fills the cache", func(t *testing.T) {
		store := cache.NewMemoryStore(time.Minute)
		mock := &mockBackend{stats: json.RawMessage(`{"totalReports":1}`), recent: json.RawMessage(`[]`)}
		svc := NewPublicService(mock, store, time.Minute, zap.NewNop())

		require.NoError(t, svc.Refresh(context.Background()))

		stats, err := store.Get(context.Background(), StatsCacheKey)
		require.NoError(t, err)
		assert.JSONEq(t, `{"totalReports":1}`, string(stats))
		recent, err := store.Get(context.Background(), RecentCacheKey)
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, string(recent))

		_, err = svc.Stats(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, mock.countCalls("PublicStats"))
	})

	t.Run("reports every failure", func(t *testing.T) {
		mock := &mockBackend{statsErr: unavailable(), recentErr: unavailable()}
		svc := NewPublicService(mock, cache.NewMemoryStore(time.Minute), time.Minute, zap.NewNop())

		err := svc.Refresh(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), StatsCacheKey)
		assert.Contains(t, err.Error(), RecentCacheKey)
	})
}
