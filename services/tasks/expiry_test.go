package tasks

import (
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingExpiryTask(t *testing.T) {
	task, opts, err := NewBookingExpiryTask("b-1", time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, TypeBookingExpire, task.Type())
	assert.Len(t, opts, 3)

	p, err := ParseExpiryPayload(task)
	require.NoError(t, err)
	assert.Equal(t, "b-1", p.BookingID)

	_, err = ParseExpiryPayload(asynq.NewTask(TypeBookingExpire, []byte("nope")))
	assert.Error(t, err)
	_, err = ParseExpiryPayload(asynq.NewTask(TypeBookingExpire, []byte(`{"bookingId":""}`)))
	assert.Error(t, err)
}
