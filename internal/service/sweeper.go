package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dtroode/auth-service/internal/logger"
	"github.com/dtroode/auth-service/internal/model"
)

// SweepRecorder receives the number of purged records per sweep.
type SweepRecorder interface {
	RecordsSwept(n int64)
}

// Sweeper periodically deletes expired refresh token records. Expired
// records are already rejected at lookup; sweeping only bounds table growth.
type Sweeper struct {
	store    model.RefreshTokenStore
	interval time.Duration
	logger   *logger.Logger
	recorder SweepRecorder
	now      func() time.Time
}

func NewSweeper(store model.RefreshTokenStore, interval time.Duration, recorder SweepRecorder, logger *logger.Logger) *Sweeper {
	return &Sweeper{
		store:    store,
		interval: interval,
		logger:   logger,
		recorder: recorder,
		now:      time.Now,
	}
}

// Run sweeps every interval until ctx is done. A non-positive interval
// disables sweeping.
func (s *Sweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Info("Sweeper: disabled")
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil {
				s.logger.Error("Sweeper: sweep failed", "error", err.Error())
			}
		}
	}
}

// SweepOnce deletes all records expired at the current time.
func (s *Sweeper) SweepOnce(ctx context.Context) (int64, error) {
	n, err := s.store.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired refresh tokens: %w", err)
	}

	if s.recorder != nil {
		s.recorder.RecordsSwept(n)
	}
	if n > 0 {
		s.logger.Info("Sweeper: expired refresh tokens deleted", "count", n)
	}

	return n, nil
}
