package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"staybook/utils"
)

// ErrLockTimeout is returned when a lock could not be acquired before the context ended.
var ErrLockTimeout = errors.New("timed out waiting for lock")

// AcquireError classifies a failed Acquire on key. A lock that stayed busy
// until the caller's deadline is a retryable ServiceUnavailableError.
func AcquireError(key string, err error) error {
	if errors.Is(err, ErrLockTimeout) {
		return utils.NewUnavailableError(fmt.Sprintf("%s is busy, retry later", key), err)
	}
	return fmt.Errorf("failed to acquire lock %s: %w", key, err)
}

// Locker serializes work on a key across callers.
type Locker interface {
	// Acquire blocks until the lock for key is held or ctx ends. The ttl bounds
	// how long a crashed holder can keep a distributed lock. The returned
	// release func is safe to call more than once.
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

// RoomKey is the lock key guarding check-and-insert for a room.
func RoomKey(roomID string) string {
	return "room:" + roomID
}

// BookingKey is the lock key guarding status transitions of a booking.
func BookingKey(bookingID string) string {
	return "booking:" + bookingID
}

// CheckoutKey is the lock key guarding checkout session creation for a booking.
func CheckoutKey(bookingID string) string {
	return "checkout:" + bookingID
}
