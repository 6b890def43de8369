package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"staybook/services/booking"
	"staybook/services/tasks"
	"staybook/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// NewExpiryServeMux routes booking:expire tasks to the booking service.
func NewExpiryServeMux(bookingSvc booking.BookingService, ttl time.Duration, logger *zap.Logger) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeBookingExpire, HandleExpiryTask(bookingSvc, ttl, logger))
	return mux
}

// HandleExpiryTask cancels the task's booking if it is still Pending past ttl.
func HandleExpiryTask(bookingSvc booking.BookingService, ttl time.Duration, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.ParseExpiryPayload(task)
		if err != nil {
			logger.Error("invalid expiry task", zap.Error(err))
			return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
		}

		expired, err := bookingSvc.ExpireBooking(ctx, p.BookingID, ttl)
		if err != nil {
			if errors.Is(err, utils.ErrNotFound) {
				logger.Warn("expiry task for unknown booking", zap.String("bookingId", p.BookingID))
				return nil
			}
			logger.Error("failed to expire booking", zap.String("bookingId", p.BookingID), zap.Error(err))
			return err
		}

		if expired {
			logger.Info("pending booking expired", zap.String("bookingId", p.BookingID))
		} else {
			logger.Debug("booking no longer pending, expiry skipped", zap.String("bookingId", p.BookingID))
		}
		return nil
	}
}

// InitExpiryWorker starts the asynq worker in background and returns the
// server so the caller can shut it down.
func InitExpiryWorker(bookingSvc booking.BookingService, ttl time.Duration, logger *zap.Logger) (*asynq.Server, error) {
	logger = logger.With(zap.String("component", "expiry_worker"))

	srv := asynq.NewServer(
		tasks.RedisClientOpt(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Warn("expiry task failed", zap.String("type", task.Type()), zap.Error(err))
			}),
		},
	)

	logger.Info("starting expiry worker")
	if err := srv.Start(NewExpiryServeMux(bookingSvc, ttl, logger)); err != nil {
		return nil, fmt.Errorf("failed to start expiry worker: %w", err)
	}
	return srv, nil
}
