package handlers

import (
	"net/http"

	"staybook/middleware"
	"staybook/models"
	"staybook/services/booking"
	"staybook/services/checkout"
	"staybook/utils"

	"github.com/gin-gonic/gin"
)

type CheckoutHandler struct {
	Checkout checkout.CheckoutService
	Bookings booking.BookingService
}

func NewCheckoutHandler(checkoutSvc checkout.CheckoutService, bookingSvc booking.BookingService) *CheckoutHandler {
	return &CheckoutHandler{Checkout: checkoutSvc, Bookings: bookingSvc}
}

// CreateCheckoutSessionHandler serves POST /api/checkout-session.
func (h *CheckoutHandler) CreateCheckoutSessionHandler(c *gin.Context) {
	var req models.CheckoutSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, utils.NewValidationError("invalid checkout request: %v", err))
		return
	}

	if _, authEnabled := c.Get(middleware.UserIDKey); authEnabled {
		b, err := h.Bookings.GetBooking(c.Request.Context(), req.BookingID)
		if err != nil {
			respondError(c, err)
			return
		}
		if !middleware.AuthorizeUser(c, b.UserID) {
			return
		}
	}

	s, err := h.Checkout.Initiate(c.Request.Context(), req.BookingID, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.CheckoutSessionResponse{
		RedirectURL: s.RedirectURL,
		SessionID:   s.SessionID,
		ExpiresAt:   s.ExpiresAt,
	})
}
