package handlers

import (
	"context"
	"errors"
	"net/http"

	"staybook/models"
	"staybook/services/reconciliation"
	"staybook/utils"

	"github.com/gin-gonic/gin"
)

const maxWebhookBody = 64 << 10

// EventProcessor handles a raw provider notification.
type EventProcessor interface {
	HandleEvent(ctx context.Context, payload []byte, signature string) (reconciliation.Result, error)
}

type WebhookHandler struct {
	Listener EventProcessor
}

func NewWebhookHandler(listener EventProcessor) *WebhookHandler {
	return &WebhookHandler{Listener: listener}
}

func webhookSignature(c *gin.Context) string {
	if sig := c.GetHeader("Stripe-Signature"); sig != "" {
		return sig
	}
	return c.GetHeader("X-Webhook-Signature")
}

// PaymentWebhookHandler serves POST /api/webhook. Verified events are always
// acknowledged with 200, including an outcome that contradicts the booking
// state: that case is alerted on and redelivery cannot fix it.
func (h *WebhookHandler) PaymentWebhookHandler(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody)
	payload, err := c.GetRawData()
	if err != nil {
		respondError(c, utils.NewValidationError("unreadable webhook body"))
		return
	}

	result, err := h.Listener.HandleEvent(c.Request.Context(), payload, webhookSignature(c))
	if err != nil && !errors.Is(err, utils.ErrInvalidState) {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.WebhookResponse{Received: true, Result: string(result)})
}
