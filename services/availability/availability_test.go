package availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookingRepo "staybook/database/repository/booking"
	roomRepo "staybook/database/repository/room"
	"staybook/models"
	"staybook/utils"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := models.ParseDate(s)
	require.NoError(t, err)
	return d
}

func roomIDs(rooms []models.Room) []string {
	ids := make([]string, 0, len(rooms))
	for _, r := range rooms {
		ids = append(ids, r.ID)
	}
	return ids
}

func TestFindAvailable(t *testing.T) {
	ctx := context.Background()
	rooms := roomRepo.NewMemoryRoomCatalog(
		models.Room{ID: "r-101", Capacity: 2, NightlyRate: models.NewMoney(100, 0)},
		models.Room{ID: "r-102", Capacity: 2, NightlyRate: models.NewMoney(110, 0)},
		models.Room{ID: "r-301", Capacity: 4, NightlyRate: models.NewMoney(240, 0)},
	)
	bookings := bookingRepo.NewMemoryBookingRepo()
	now := time.Now().UTC()
	require.NoError(t, bookings.InsertIfAvailable(ctx, &models.Booking{
		ID: "b-1", RoomID: "r-101", UserID: "u-1",
		CheckInDate: date(t, "2024-02-01"), CheckOutDate: date(t, "2024-02-03"),
		Status: models.BookingPending, CreatedAt: now,
	}))
	require.NoError(t, bookings.InsertIfAvailable(ctx, &models.Booking{
		ID: "b-2", RoomID: "r-102", UserID: "u-1",
		CheckInDate: date(t, "2024-02-01"), CheckOutDate: date(t, "2024-02-03"),
		Status: models.BookingPending, CreatedAt: now,
	}))
	_, err := bookings.CompareAndSetStatus(ctx, "b-2", models.BookingPending, models.BookingFailed, "", now)
	require.NoError(t, err)

	svc := NewAvailabilityService(rooms, bookings)

	got, err := svc.FindAvailable(ctx, date(t, "2024-02-02"), date(t, "2024-02-04"), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"r-102", "r-301"}, roomIDs(got))

	got, err = svc.FindAvailable(ctx, date(t, "2024-02-03"), date(t, "2024-02-04"), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"r-101", "r-102", "r-301"}, roomIDs(got))

	four := 4
	got, err = svc.FindAvailable(ctx, date(t, "2024-02-02"), date(t, "2024-02-04"), &four)
	require.NoError(t, err)
	assert.Equal(t, []string{"r-301"}, roomIDs(got))
}

func TestFindAvailableValidation(t *testing.T) {
	svc := NewAvailabilityService(roomRepo.NewMemoryRoomCatalog(), bookingRepo.NewMemoryBookingRepo())
	ctx := context.Background()

	_, err := svc.FindAvailable(ctx, date(t, "2024-02-04"), date(t, "2024-02-02"), nil)
	assert.ErrorIs(t, err, utils.ErrValidation)

	zero := 0
	_, err = svc.FindAvailable(ctx, date(t, "2024-02-02"), date(t, "2024-02-04"), &zero)
	assert.ErrorIs(t, err, utils.ErrValidation)

	got, err := svc.FindAvailable(ctx, date(t, "2024-02-02"), date(t, "2024-02-04"), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
