package handlers

import (
	"net/http"
	"strconv"

	"staybook/models"
	"staybook/services/availability"
	"staybook/utils"

	"github.com/gin-gonic/gin"
)

type AvailabilityHandler struct {
	Service availability.AvailabilityService
}

func NewAvailabilityHandler(svc availability.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{Service: svc}
}

// GetAvailabilityHandler serves GET /api/availability?checkInDate&checkOutDate&capacity.
func (h *AvailabilityHandler) GetAvailabilityHandler(c *gin.Context) {
	checkIn, err := parseDateParam("checkInDate", c.Query("checkInDate"))
	if err != nil {
		respondError(c, err)
		return
	}
	checkOut, err := parseDateParam("checkOutDate", c.Query("checkOutDate"))
	if err != nil {
		respondError(c, err)
		return
	}

	var capacity *int
	if raw := c.Query("capacity"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, utils.NewValidationError("capacity must be an integer"))
			return
		}
		capacity = &n
	}

	rooms, err := h.Service.FindAvailable(c.Request.Context(), checkIn, checkOut, capacity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.AvailabilityResponse{
		CheckInDate:  models.FormatDate(checkIn),
		CheckOutDate: models.FormatDate(checkOut),
		Nights:       models.Nights(checkIn, checkOut),
		Rooms:        rooms,
	})
}
