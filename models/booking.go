package models

import "time"

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "Pending"
	BookingConfirmed BookingStatus = "Confirmed"
	BookingCancelled BookingStatus = "Cancelled"
	BookingFailed    BookingStatus = "Failed"
)

// IsTerminal reports whether no further transition may leave this status.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingConfirmed || s == BookingCancelled || s == BookingFailed
}

// HoldsRoom reports whether a booking in this status occupies its room.
func (s BookingStatus) HoldsRoom() bool {
	return s == BookingPending || s == BookingConfirmed
}

// ActiveStatuses are the statuses that block a room's date range.
var ActiveStatuses = []BookingStatus{BookingPending, BookingConfirmed}

const (
	CancelReasonUser    = "user"
	CancelReasonExpired = "expired"
)

// Booking is a reservation of one room for a half-open date range.
type Booking struct {
	ID           string        `bson:"id" json:"bookingId" gorm:"primaryKey;type:varchar(64)"`
	RoomID       string        `bson:"room_id" json:"roomId" gorm:"type:varchar(64);not null;index:idx_bookings_room_dates"`
	UserID       string        `bson:"user_id" json:"userId" gorm:"type:varchar(64);not null;index"`
	CheckInDate  time.Time     `bson:"check_in_date" json:"checkInDate" gorm:"type:date;not null;index:idx_bookings_room_dates"`
	CheckOutDate time.Time     `bson:"check_out_date" json:"checkOutDate" gorm:"type:date;not null;index:idx_bookings_room_dates"`
	NightlyRate  Money         `bson:"nightly_rate" json:"nightlyRate" gorm:"not null"` // rate snapshot used for TotalAmount
	TotalAmount  Money         `bson:"total_amount" json:"totalAmount" gorm:"not null"` // nights x NightlyRate, fixed at creation
	Status       BookingStatus `bson:"status" json:"status" gorm:"type:varchar(16);not null;index"`
	CancelReason string        `bson:"cancel_reason,omitempty" json:"cancelReason,omitempty" gorm:"type:varchar(16)"`
	CreatedAt    time.Time     `bson:"created_at" json:"createdAt" gorm:"not null;index"`
	UpdatedAt    time.Time     `bson:"updated_at" json:"updatedAt"`
}

func (Booking) TableName() string {
	return "bookings"
}

// Nights returns the number of nights covered by the booking.
func (b *Booking) Nights() int {
	return Nights(b.CheckInDate, b.CheckOutDate)
}

// PaymentPending is true while the booking waits for a payment outcome.
func (b *Booking) PaymentPending() bool {
	return b.Status == BookingPending
}
