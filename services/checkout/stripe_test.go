package checkout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"

	"staybook/models"
)

func newStripeTestProvider(t *testing.T, handler http.HandlerFunc) *StripeProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})
	return NewStripeProviderWithBackend("sk_test_123", backend)
}

func TestStripeProviderCreateSession(t *testing.T) {
	var (
		form           map[string]string
		idempotencyKey string
		path           string
	)
	p := newStripeTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		idempotencyKey = r.Header.Get("Idempotency-Key")
		require.NoError(t, r.ParseForm())
		form = map[string]string{}
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":         "cs_test_123",
			"object":     "checkout.session",
			"url":        "https://checkout.stripe.com/c/pay/cs_test_123",
			"expires_at": 1704153600,
		})
	})

	s, err := p.CreateSession(context.Background(), SessionRequest{
		BookingID:      "b-1",
		UserID:         "u-1",
		Amount:         models.NewMoney(200, 0),
		Currency:       "usd",
		Description:    "Room r-101",
		SuccessURL:     "https://app.example.test/ok",
		CancelURL:      "https://app.example.test/cancel",
		ExpiresAt:      time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		IdempotencyKey: "b-1:0",
	})
	require.NoError(t, err)

	assert.Equal(t, "cs_test_123", s.SessionID)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_123", s.RedirectURL)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), s.ExpiresAt)

	assert.Equal(t, "/v1/checkout/sessions", path)
	assert.Equal(t, "b-1:0", idempotencyKey)
	assert.Equal(t, "payment", form["mode"])
	assert.Equal(t, "b-1", form["client_reference_id"])
	assert.Equal(t, "20000", form["line_items[0][price_data][unit_amount]"])
	assert.Equal(t, "usd", form["line_items[0][price_data][currency]"])
	assert.Equal(t, "b-1", form["metadata[booking_id]"])
	assert.Equal(t, "u-1", form["metadata[user_id]"])
	assert.Equal(t, "1704153600", form["expires_at"])
	assert.Greater(t, p.MinSessionTTL(), 30*time.Minute)
}

func TestStripeProviderError(t *testing.T) {
	p := newStripeTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"bad currency"}}`))
	})

	_, err := p.CreateSession(context.Background(), SessionRequest{
		BookingID:  "b-1",
		Amount:     models.NewMoney(200, 0),
		Currency:   "zzz",
		SuccessURL: "https://app.example.test/ok",
		CancelURL:  "https://app.example.test/cancel",
	})
	assert.Error(t, err)
}
