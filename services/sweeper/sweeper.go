package sweeper

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type expiredCanceller interface {
	CancelExpired(ctx context.Context, ttl time.Duration) (int, error)
}

// Sweeper periodically cancels Pending bookings older than ttl.
type Sweeper struct {
	bookings expiredCanceller
	interval time.Duration
	ttl      time.Duration
	logger   *zap.Logger
}

func New(bookings expiredCanceller, interval, ttl time.Duration, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		bookings: bookings,
		interval: interval,
		ttl:      ttl,
		logger:   logger.With(zap.String("component", "sweeper")),
	}
}

// Start blocks until ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("sweeper started",
		zap.Duration("interval", s.interval),
		zap.Duration("ttl", s.ttl),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sweeper stopped")
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick runs one sweep and returns how many bookings it cancelled.
func (s *Sweeper) Tick(ctx context.Context) int {
	cancelled, err := s.bookings.CancelExpired(ctx, s.ttl)
	if err != nil {
		s.logger.Error("failed to cancel expired bookings", zap.Error(err))
	}
	if cancelled > 0 {
		s.logger.Info("expired pending bookings cancelled", zap.Int("count", cancelled))
	}
	return cancelled
}
