package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Purger deletes execution records older than a duration.
type Purger interface {
	PurgeExecutions(ctx context.Context, olderThan time.Duration) (int64, error)
}

// RetentionSweeper deletes old execution records on a cron schedule.
type RetentionSweeper struct {
	cron      *cron.Cron
	purger    Purger
	retention time.Duration
	logger    *slog.Logger
}

func NewRetentionSweeper(schedule string, retention time.Duration, purger Purger, logger *slog.Logger) (*RetentionSweeper, error) {
	if retention <= 0 {
		return nil, fmt.Errorf("retention must be positive, got %s", retention)
	}

	sweeper := &RetentionSweeper{
		cron: cron.New(cron.WithChain(
			cron.SkipIfStillRunning(cron.DefaultLogger),
			cron.Recover(cron.DefaultLogger),
		)),
		purger:    purger,
		retention: retention,
		logger:    logger.With("module", "retention"),
	}

	_, err := sweeper.cron.AddFunc(schedule, sweeper.Sweep)
	if err != nil {
		return nil, fmt.Errorf("invalid retention schedule %q: %w", schedule, err)
	}

	return sweeper, nil
}

func (s *RetentionSweeper) Start() {
	s.cron.Start()
}

// Stop waits for a running sweep to finish.
func (s *RetentionSweeper) Stop() {
	<-s.cron.Stop().Done()
}

func (s *RetentionSweeper) Sweep() {
	ctx := context.Background()

	deleted, err := s.purger.PurgeExecutions(ctx, s.retention)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to purge execution records", "error", err)

		return
	}

	s.logger.InfoContext(ctx, "Purged execution records",
		"deleted", deleted,
		"older_than", s.retention.String())
}
