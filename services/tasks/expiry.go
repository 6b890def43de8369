package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"staybook/config"

	"github.com/hibiken/asynq"
)

const TypeBookingExpire = "booking:expire"

// ExpiryPayload identifies the Pending booking to expire.
type ExpiryPayload struct {
	BookingID string `json:"bookingId"`
}

func NewBookingExpiryTask(bookingID string, at time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(ExpiryPayload{BookingID: bookingID})
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeBookingExpire, b)
	opts := []asynq.Option{
		asynq.ProcessAt(at),
		asynq.TaskID("expire:" + bookingID),
		asynq.MaxRetry(5),
	}
	return task, opts, nil
}

// ParseExpiryPayload decodes a booking:expire task payload.
func ParseExpiryPayload(task *asynq.Task) (ExpiryPayload, error) {
	var p ExpiryPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return p, fmt.Errorf("invalid expiry payload: %w", err)
	}
	if p.BookingID == "" {
		return p, fmt.Errorf("invalid expiry payload: missing bookingId")
	}
	return p, nil
}

// ExpiryScheduler arranges for a Pending booking to be expired at a given time.
type ExpiryScheduler interface {
	ScheduleExpiry(ctx context.Context, bookingID string, at time.Time) error
}

// AsynqExpiryScheduler enqueues booking:expire tasks.
type AsynqExpiryScheduler struct {
	client *asynq.Client
}

func NewAsynqExpiryScheduler(client *asynq.Client) *AsynqExpiryScheduler {
	return &AsynqExpiryScheduler{client: client}
}

func (s *AsynqExpiryScheduler) ScheduleExpiry(ctx context.Context, bookingID string, at time.Time) error {
	task, opts, err := NewBookingExpiryTask(bookingID, at)
	if err != nil {
		return err
	}
	if _, err := s.client.EnqueueContext(ctx, task, opts...); err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return nil
		}
		return fmt.Errorf("enqueue expiry task: %w", err)
	}
	return nil
}

func (s *AsynqExpiryScheduler) Close() error {
	return s.client.Close()
}

// RedisClientOpt is the asynq connection for the queue database.
func RedisClientOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}
