package models

import "time"

// CreateBookingRequest is the body of POST /api/booking.
type CreateBookingRequest struct {
	RoomID       string `json:"roomId" binding:"required"`
	UserID       string `json:"userId" binding:"required"`
	CheckInDate  string `json:"checkInDate" binding:"required"`
	CheckOutDate string `json:"checkOutDate" binding:"required"`
}

// CreateBookingResponse is returned with 201 after a booking is reserved.
type CreateBookingResponse struct {
	BookingID   string        `json:"bookingId"`
	Status      BookingStatus `json:"status"`
	TotalAmount Money         `json:"totalAmount"`
}

// BookingView is the client-facing snapshot of a booking. PaymentPending is
// a displayed state, not an error.
type BookingView struct {
	BookingID      string        `json:"bookingId"`
	RoomID         string        `json:"roomId"`
	UserID         string        `json:"userId"`
	CheckInDate    string        `json:"checkInDate"`
	CheckOutDate   string        `json:"checkOutDate"`
	Nights         int           `json:"nights"`
	TotalAmount    Money         `json:"totalAmount"`
	Status         BookingStatus `json:"status"`
	PaymentPending bool          `json:"paymentPending"`
	CancelReason   string        `json:"cancelReason,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// ToView converts a stored booking to its client representation.
func (b *Booking) ToView() BookingView {
	return BookingView{
		BookingID:      b.ID,
		RoomID:         b.RoomID,
		UserID:         b.UserID,
		CheckInDate:    FormatDate(b.CheckInDate),
		CheckOutDate:   FormatDate(b.CheckOutDate),
		Nights:         b.Nights(),
		TotalAmount:    b.TotalAmount,
		Status:         b.Status,
		PaymentPending: b.PaymentPending(),
		CancelReason:   b.CancelReason,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
}

// CheckoutSessionRequest is the body of POST /api/checkout-session.
type CheckoutSessionRequest struct {
	BookingID string `json:"bookingId" binding:"required"`
	Amount    Money  `json:"amount" binding:"required"`
}

// CheckoutSessionResponse carries the provider redirect.
type CheckoutSessionResponse struct {
	RedirectURL string    `json:"redirectUrl"`
	SessionID   string    `json:"sessionId"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// AvailabilityResponse lists the rooms free for a date range.
type AvailabilityResponse struct {
	CheckInDate  string `json:"checkInDate"`
	CheckOutDate string `json:"checkOutDate"`
	Nights       int    `json:"nights"`
	Rooms        []Room `json:"rooms"`
}

// WebhookResponse acknowledges a provider notification.
type WebhookResponse struct {
	Received bool   `json:"received"`
	Result   string `json:"result"`
}
