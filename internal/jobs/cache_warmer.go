// Package jobs holds background jobs run on a cron schedule
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Refresher is the interface that wraps reloading of cached public data
type Refresher interface {
	// Method Refresh reload every cached entry from the backend.
	Refresh(ctx context.Context) error
}

const defaultWarmTimeout = 30 * time.Second

// CacheWarmJob refreshes the public data cache so visitors rarely hit the backend
type CacheWarmJob struct {
	refresher Refresher
	timeout   time.Duration
	logger    *zap.Logger
}

// NewCacheWarmJob creates a new cache warm job
func NewCacheWarmJob(refresher Refresher, logger *zap.Logger) *CacheWarmJob {
	return &CacheWarmJob{
		refresher: refresher,
		timeout:   defaultWarmTimeout,
		logger:    logger,
	}
}

// Run refreshes the cache once
func (j *CacheWarmJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	if err := j.refresher.Refresh(ctx); err != nil {
		j.logger.Warn("cache warm failed", zap.Error(err))
		return
	}
	j.logger.Debug("cache warmed", zap.Duration("duration", time.Since(start)))
}

// Scheduler runs jobs on cron schedules
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
}

// NewScheduler creates a scheduler; overlapping runs of the same job are skipped
func NewScheduler(logger *zap.Logger) *Scheduler {
	cronLogger := NewCronLogger(logger)
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cronLogger),
			cron.WithChain(
				cron.Recover(cronLogger),
				cron.SkipIfStillRunning(cronLogger),
			),
		),
		logger: logger,
	}
}

// Add registers job under spec, e.g. "@every 1m" or a standard 5-field expression
func (s *Scheduler) Add(spec string, job cron.Job) error {
	if _, err := s.cron.AddJob(spec, job); err != nil {
		return fmt.Errorf("failed to schedule job %q: %w", spec, err)
	}
	s.logger.Info("job scheduled", zap.String("schedule", spec))
	return nil
}

// Start runs the scheduler in its own goroutine
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler and waits for running jobs until ctx is done
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("failed to wait for running jobs: %w", ctx.Err())
	}
}

// CronLogger adapts zap to cron.Logger
type CronLogger struct {
	sugar *zap.SugaredLogger
}

// NewCronLogger creates a cron logger writing to logger
func NewCronLogger(logger *zap.Logger) *CronLogger {
	return &CronLogger{sugar: logger.Sugar()}
}

// Info logs cron bookkeeping (schedule, wake, run) at debug level
func (l *CronLogger) Info(msg string, keysAndValues ...any) {
	l.sugar.Debugw(msg, keysAndValues...)
}

// Error logs job panics and scheduler errors
func (l *CronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.sugar.Errorw(msg, append(keysAndValues, "error", err)...)
}
