package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// mockRefresher is a mock implementation of Refresher
type mockRefresher struct {
	calls       atomic.Int32
	err         error
	hasDeadline atomic.Bool
}

func (m *mockRefresher) Refresh(ctx context.Context) error {
	m.calls.Add(1)
	_, ok := ctx.Deadline()
	m.hasDeadline.Store(ok)
	return m.err
}

func TestCacheWarmJob_Run(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedWarn int
	}{
		{name: "success"},
		{name: "refresh error is logged", err: errors.New("backend down"), expectedWarn: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			refresher := &mockRefresher{err: tt.err}
			job := NewCacheWarmJob(refresher, zap.New(core))

			job.Run()

			assert.Equal(t, int32(1), refresher.calls.Load())
			assert.True(t, refresher.hasDeadline.Load())
			assert.Equal(t, tt.expectedWarn, logs.FilterMessage("cache warm failed").Len())
		})
	}
}

func TestScheduler(t *testing.T) {
	t.Run("invalid schedule", func(t *testing.T) {
		s := NewScheduler(zap.NewNop())

		err := s.Add("every minute", NewCacheWarmJob(&mockRefresher{}, zap.NewNop()))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to schedule job")
	})

	t.Run("runs scheduled job", func(t *testing.T) {
		s := NewScheduler(zap.NewNop())
		refresher := &mockRefresher{}
		require.NoError(t, s.Add("@every 1s", NewCacheWarmJob(refresher, zap.NewNop())))

		s.Start()
		assert.Eventually(t, func() bool {
			return refresher.calls.Load() > 0
		}, 3*time.Second, 50*time.Millisecond)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		assert.NoError(t, s.Stop(ctx))
	})

	t.Run("job panics are logged through zap", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		s := NewScheduler(zap.New(core))
		require.NoError(t, s.Add("@every 1s", cron.FuncJob(func() {
			panic("boom")
		})))

		s.Start()
		assert.Eventually(t, func() bool {
			return logs.FilterMessage("panic").FilterLevelExact(zapcore.ErrorLevel).Len() > 0
		}, 3*time.Second, 50*time.Millisecond)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		assert.NoError(t, s.Stop(ctx))

		entry := logs.FilterMessage("panic").All()[0]
		assert.Contains(t, entry.ContextMap()["error"], "boom")
	})
}

func TestCronLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewCronLogger(zap.New(core))

	l.Info("wake", "now", "noon")
	l.Error(errors.New("bad spec"), "failed", "entry", 3)

	require.Equal(t, 2, logs.Len())
	entries := logs.All()
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "noon", entries[0].ContextMap()["now"])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "bad spec", entries[1].ContextMap()["error"])
	assert.Equal(t, int64(3), entries[1].ContextMap()["entry"])
}
