package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// JWTSecret enables bearer authentication on booking routes when set.
	JWTSecret string

	// Availability endpoints
	GetAvailabilityHandler gin.HandlerFunc

	// Booking endpoints
	CreateBookingHandler    gin.HandlerFunc
	GetBookingHandler       gin.HandlerFunc
	CancelBookingHandler    gin.HandlerFunc
	ListUserBookingsHandler gin.HandlerFunc

	// Payment endpoints
	CreateCheckoutSessionHandler gin.HandlerFunc
	PaymentWebhookHandler        gin.HandlerFunc

	HealthCheckHandler gin.HandlerFunc
}

// NewHandlerBundle collects the handler methods of each handler struct.
func NewHandlerBundle(
	jwtSecret string,
	availabilityHandler *AvailabilityHandler,
	bookingHandler *BookingHandler,
	checkoutHandler *CheckoutHandler,
	webhookHandler *WebhookHandler,
	healthHandler *HealthHandler,
) *HandlerBundle {
	return &HandlerBundle{
		JWTSecret:                    jwtSecret,
		GetAvailabilityHandler:       availabilityHandler.GetAvailabilityHandler,
		CreateBookingHandler:         bookingHandler.CreateBookingHandler,
		GetBookingHandler:            bookingHandler.GetBookingHandler,
		CancelBookingHandler:         bookingHandler.CancelBookingHandler,
		ListUserBookingsHandler:      bookingHandler.ListUserBookingsHandler,
		CreateCheckoutSessionHandler: checkoutHandler.CreateCheckoutSessionHandler,
		PaymentWebhookHandler:        webhookHandler.PaymentWebhookHandler,
		HealthCheckHandler:           healthHandler.HealthCheckHandler,
	}
}
