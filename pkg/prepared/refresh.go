package prepared

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// RefreshScheduler periodically recompiles the cached parameters of a
// Preparer on a cron schedule.
type RefreshScheduler struct {
	preparer *Preparer
	schedule string
	cron     *cron.Cron
	mu       sync.Mutex
	logger   *slog.Logger
	running  bool
}

// NewRefreshScheduler creates a scheduler. A nil logger uses slog.Default().
func NewRefreshScheduler(preparer *Preparer, schedule string, logger *slog.Logger) *RefreshScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RefreshScheduler{
		preparer: preparer,
		schedule: schedule,
		cron:     cron.New(),
		logger:   logger.With("component", "prepared.refresh"),
	}
}

// Start schedules refreshes using a standard cron expression, for example
// "*/5 * * * *" for every five minutes. An empty schedule does nothing.
// The scheduler stops when ctx is cancelled.
func (s *RefreshScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("refresh scheduler already running")
	}

	if s.schedule == "" {
		s.logger.Info("refresh schedule not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.schedule, func() { s.runRefresh(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule refresh: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("refresh scheduler started", "schedule", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

func (s *RefreshScheduler) runRefresh(ctx context.Context) {
	start := time.Now()
	if err := s.preparer.Refresh(ctx); err != nil {
		s.logger.Error("scheduled refresh failed", "error", err)
		return
	}
	s.logger.Debug("scheduled refresh completed",
		"parameters", len(s.preparer.Cached()),
		"duration", time.Since(start),
	)
}

// Stop stops the scheduler and waits for a running refresh to finish.
func (s *RefreshScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		<-s.cron.Stop().Done()
		s.running = false
		s.logger.Info("refresh scheduler stopped")
	}
}

// IsRunning reports whether the scheduler is running.
func (s *RefreshScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled refresh, or nil when none is scheduled.
func (s *RefreshScheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
