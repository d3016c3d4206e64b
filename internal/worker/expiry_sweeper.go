package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/polkiloo/cryptopay/internal/pkg/lock"
)

// SweepFacade expires pending orders past their payment window.
type SweepFacade interface {
	ExpireStale(ctx context.Context, now time.Time) ([]string, error)
}

// ExpirySweeper periodically closes orders that were never paid.
type ExpirySweeper struct {
	periodic
	facade SweepFacade
	now    func() time.Time
}

// NewExpirySweeper constructs the sweeper.
func NewExpirySweeper(facade SweepFacade, locker lock.Locker, interval, lockTTL time.Duration, logger *slog.Logger) *ExpirySweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	s := &ExpirySweeper{facade: facade, now: time.Now}
	s.periodic = periodic{
		name:     "expiry-sweep",
		interval: interval,
		locker:   locker,
		lockTTL:  lockTTL,
		logger:   logger,
		tick: func(ctx context.Context) error {
			_, err := s.sweep(ctx)
			return err
		},
	}
	return s
}

// Start launches the sweep loop.
func (s *ExpirySweeper) Start(ctx context.Context) { s.start(ctx) }

// Stop stops the loop and waits for a running sweep.
func (s *ExpirySweeper) Stop() { s.stop() }

// RunOnce performs one sweep under the job lock.
func (s *ExpirySweeper) RunOnce(ctx context.Context) (int, error) {
	var expired int
	_, err := lock.Run(ctx, s.locker, s.name, s.lockTTL, func(ctx context.Context) error {
		n, err := s.sweep(ctx)
		expired = n
		return err
	})
	return expired, err
}

func (s *ExpirySweeper) sweep(ctx context.Context) (int, error) {
	ids, err := s.facade.ExpireStale(ctx, s.now())
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		s.logger.Debug("order expired", slog.String("order_id", id))
	}
	return len(ids), nil
}
