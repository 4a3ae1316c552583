package syncer

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

// errTotalOutage marks an aggregate run where no domain produced data,
// fresh or cached; only that state is worth retrying early.
var errTotalOutage = errors.New("all domains unavailable")

// SchedulerConfig carries the background refresher's parameters.
type SchedulerConfig struct {
	Repository *Repository
	Interval   time.Duration // delay between successful refreshes
	MaxRetry   time.Duration // cap on the backoff window after an outage
	Logger     *zap.Logger
}

// Scheduler refreshes all domains in the background on a fixed interval.
// A total outage switches to exponential backoff until one domain comes
// back or the retry window is exhausted, then the regular cadence resumes.
type Scheduler struct {
	repo     *Repository
	interval time.Duration
	maxRetry time.Duration
	logger   *zap.Logger
}

// NewScheduler builds a scheduler around an existing repository.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxRetry := cfg.MaxRetry
	if maxRetry <= 0 {
		maxRetry = 5 * time.Minute
	}
	return &Scheduler{
		repo:     cfg.Repository,
		interval: cfg.Interval,
		maxRetry: maxRetry,
		logger:   logger.Named("scheduler"),
	}
}

// Run blocks until ctx is cancelled, refreshing on every tick.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

func (s *Scheduler) refresh(ctx context.Context) {
	op := func() (AggregateResult, error) {
		agg := s.repo.SyncAll(ctx, false)
		if !agg.AnySuccessful() {
			return agg, errTotalOutage
		}
		return agg, nil
	}

	agg, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(s.maxRetry),
	)
	if err != nil {
		s.logger.Warn("background refresh exhausted retries", zap.Error(err))
		return
	}
	s.logger.Debug("background refresh complete",
		zap.Float64("availability", agg.Status.AvailabilityPercentage()))
}
