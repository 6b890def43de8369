package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestParseDate(t *testing.T) {
	d := mustDate(t, "2024-01-10")
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), d)
	assert.Equal(t, "2024-01-10", FormatDate(d))

	_, err := ParseDate("10/01/2024")
	assert.Error(t, err)
	_, err = ParseDate("2024-02-30")
	assert.Error(t, err)
}

func TestNights(t *testing.T) {
	assert.Equal(t, 2, Nights(mustDate(t, "2024-01-10"), mustDate(t, "2024-01-12")))
	assert.Equal(t, 1, Nights(mustDate(t, "2024-02-29"), mustDate(t, "2024-03-01")))
	assert.Equal(t, 31, Nights(mustDate(t, "2024-12-01"), mustDate(t, "2025-01-01")))
}

func TestOverlaps(t *testing.T) {
	d := func(s string) time.Time { return mustDate(t, s) }

	tests := []struct {
		name       string
		aIn, aOut  string
		bIn, bOut  string
		overlapped bool
	}{
		{"identical", "2024-02-01", "2024-02-03", "2024-02-01", "2024-02-03", true},
		{"contained", "2024-02-01", "2024-02-10", "2024-02-03", "2024-02-04", true},
		{"partial", "2024-02-01", "2024-02-05", "2024-02-04", "2024-02-08", true},
		{"same day turnover", "2024-02-01", "2024-02-03", "2024-02-03", "2024-02-05", false},
		{"turnover reversed", "2024-02-03", "2024-02-05", "2024-02-01", "2024-02-03", false},
		{"disjoint", "2024-02-01", "2024-02-02", "2024-03-01", "2024-03-02", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.overlapped, Overlaps(d(tt.aIn), d(tt.aOut), d(tt.bIn), d(tt.bOut)))
		})
	}
}

func TestBookingView(t *testing.T) {
	b := &Booking{
		ID:           "b-1",
		CheckInDate:  mustDate(t, "2024-01-10"),
		CheckOutDate: mustDate(t, "2024-01-12"),
		TotalAmount:  NewMoney(200, 0),
		Status:       BookingPending,
	}
	v := b.ToView()
	assert.Equal(t, 2, v.Nights)
	assert.True(t, v.PaymentPending)
	assert.Equal(t, "2024-01-12", v.CheckOutDate)

	b.Status = BookingConfirmed
	assert.False(t, b.ToView().PaymentPending)
	assert.True(t, BookingConfirmed.IsTerminal())
	assert.False(t, BookingPending.IsTerminal())
	assert.False(t, BookingCancelled.HoldsRoom())
}
