package handlers

import (
	"net/http"
	"time"

	"staybook/middleware"
	"staybook/models"
	"staybook/services/booking"
	"staybook/utils"

	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	Service booking.BookingService
}

func NewBookingHandler(svc booking.BookingService) *BookingHandler {
	return &BookingHandler{Service: svc}
}

func parseDateParam(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, utils.NewValidationError("%s is required", name)
	}
	t, err := models.ParseDate(value)
	if err != nil {
		return time.Time{}, utils.NewValidationError("%s must be a YYYY-MM-DD date", name)
	}
	return t, nil
}

// CreateBookingHandler serves POST /api/booking.
func (h *BookingHandler) CreateBookingHandler(c *gin.Context) {
	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, utils.NewValidationError("invalid booking request: %v", err))
		return
	}
	if !middleware.AuthorizeUser(c, req.UserID) {
		return
	}

	checkIn, err := parseDateParam("checkInDate", req.CheckInDate)
	if err != nil {
		respondError(c, err)
		return
	}
	checkOut, err := parseDateParam("checkOutDate", req.CheckOutDate)
	if err != nil {
		respondError(c, err)
		return
	}

	b, err := h.Service.CreateBooking(c.Request.Context(), req.RoomID, req.UserID, checkIn, checkOut)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.CreateBookingResponse{
		BookingID:   b.ID,
		Status:      b.Status,
		TotalAmount: b.TotalAmount,
	})
}

// loadOwnedBooking fetches the :id booking and checks the caller may see it.
func (h *BookingHandler) loadOwnedBooking(c *gin.Context) (*models.Booking, bool) {
	b, err := h.Service.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if !middleware.AuthorizeUser(c, b.UserID) {
		return nil, false
	}
	return b, true
}

// GetBookingHandler serves GET /api/booking/:id.
func (h *BookingHandler) GetBookingHandler(c *gin.Context) {
	b, ok := h.loadOwnedBooking(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, b.ToView())
}

// CancelBookingHandler serves POST /api/booking/:id/cancel.
func (h *BookingHandler) CancelBookingHandler(c *gin.Context) {
	if _, ok := h.loadOwnedBooking(c); !ok {
		return
	}
	b, err := h.Service.CancelBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b.ToView())
}

// ListUserBookingsHandler serves GET /api/users/:userId/bookings.
func (h *BookingHandler) ListUserBookingsHandler(c *gin.Context) {
	userID := c.Param("userId")
	if !middleware.AuthorizeUser(c, userID) {
		return
	}
	bookings, err := h.Service.ListUserBookings(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]models.BookingView, 0, len(bookings))
	for i := range bookings {
		views = append(views, bookings[i].ToView())
	}
	c.JSON(http.StatusOK, gin.H{"bookings": views})
}
