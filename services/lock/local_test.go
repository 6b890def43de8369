package lock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/utils"
)

func TestLocalLockerMutualExclusion(t *testing.T) {
	l := NewLocalLocker()
	var (
		inside  int32
		maxSeen int32
		wg      sync.WaitGroup
	)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Acquire(context.Background(), RoomKey("r-1"), time.Second)
			require.NoError(t, err)
			defer release()

			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxSeen)
				if n <= m || atomic.CompareAndSwapInt32(&maxSeen, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxSeen)
	assert.Zero(t, l.Held())
}

func TestLocalLockerTimeout(t *testing.T) {
	l := NewLocalLocker()
	release, err := l.Acquire(context.Background(), BookingKey("b-1"), time.Second)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Acquire(ctx, BookingKey("b-1"), time.Second)
	assert.ErrorIs(t, err, ErrLockTimeout)

	// Other keys are independent.
	other, err := l.Acquire(context.Background(), BookingKey("b-2"), time.Second)
	require.NoError(t, err)
	other()

	release()
	release()
	assert.Zero(t, l.Held())
}

func TestLocalLockerCancelledContextNeverAcquires(t *testing.T) {
	l := NewLocalLocker()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for i := 0; i < 200; i++ {
		release, err := l.Acquire(ctx, RoomKey("r-1"), time.Second)
		require.ErrorIs(t, err, ErrLockTimeout)
		require.Nil(t, release)
	}
	assert.Zero(t, l.Held())

	release, err := l.Acquire(context.Background(), RoomKey("r-1"), time.Second)
	require.NoError(t, err)
	release()
}

func TestAcquireError(t *testing.T) {
	err := AcquireError(RoomKey("r-1"), ErrLockTimeout)
	assert.ErrorIs(t, err, utils.ErrUnavailable)
	assert.ErrorIs(t, err, ErrLockTimeout)
	assert.Contains(t, err.Error(), "room:r-1")

	err = AcquireError(RoomKey("r-1"), errors.New("connection refused"))
	assert.NotErrorIs(t, err, utils.ErrUnavailable)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "room:r-1", RoomKey("r-1"))
	assert.Equal(t, "booking:b-1", BookingKey("b-1"))
	assert.Equal(t, "checkout:b-1", CheckoutKey("b-1"))
}
