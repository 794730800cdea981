// Package scheduler runs the periodic background jobs: retrying failed
// integration syncs and sweeping overdue incident reports.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/domain"
	"github.com/robfig/cron/v3"
)

// SyncRetrier re-dispatches failed integration syncs.
type SyncRetrier interface {
	Retry(ctx context.Context, maxAttempts int) (int, error)
}

// OverdueSweeper alerts on incidents past their reporting deadline.
type OverdueSweeper interface {
	SweepOverdue(ctx context.Context) (int, error)
}

// Scheduler wraps robfig/cron and owns the background jobs.
type Scheduler struct {
	cron    *cron.Cron
	cfg     domain.SchedulerConfig
	retrier SyncRetrier
	sweeper OverdueSweeper
}

// New creates a Scheduler. Either job may be nil to disable it.
func New(cfg domain.SchedulerConfig, retrier SyncRetrier, sweeper OverdueSweeper) *Scheduler {
	logger := slogLogger{}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		cfg:     cfg,
		retrier: retrier,
		sweeper: sweeper,
	}
}

// Start registers the jobs and starts the scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.retrier != nil {
		if _, err := s.cron.AddFunc(s.cfg.SyncRetrySpec, func() { s.RunSyncRetry(ctx) }); err != nil {
			return fmt.Errorf("schedule sync retry %q: %w", s.cfg.SyncRetrySpec, err)
		}
	}
	if s.sweeper != nil {
		if _, err := s.cron.AddFunc(s.cfg.IncidentSweepSpec, func() { s.RunIncidentSweep(ctx) }); err != nil {
			return fmt.Errorf("schedule incident sweep %q: %w", s.cfg.IncidentSweepSpec, err)
		}
	}

	s.cron.Start()
	slog.Info("scheduler started",
		"sync_retry_spec", s.cfg.SyncRetrySpec,
		"incident_sweep_spec", s.cfg.IncidentSweepSpec,
		"jobs", len(s.cron.Entries()),
	)
	return nil
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	slog.Info("scheduler stopped")
}

// RunSyncRetry retries due integration syncs once.
func (s *Scheduler) RunSyncRetry(ctx context.Context) {
	maxAttempts := s.cfg.MaxSyncAttempts
	if maxAttempts <= 0 {
		maxAttempts = 5
	}

	synced, err := s.retrier.Retry(ctx, maxAttempts)
	if err != nil {
		slog.Error("sync retry failed", "error", err)
		return
	}
	slog.Debug("sync retry complete", "synced", synced)
}

// RunIncidentSweep alerts on overdue incidents once.
func (s *Scheduler) RunIncidentSweep(ctx context.Context) {
	alerted, err := s.sweeper.SweepOverdue(ctx)
	if err != nil {
		slog.Error("incident sweep failed", "error", err)
		return
	}
	if alerted > 0 {
		slog.Warn("overdue incidents alerted", "count", alerted)
	}
}

// slogLogger adapts cron's logger to slog.
type slogLogger struct{}

func (slogLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (slogLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
