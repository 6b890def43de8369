package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
)

// Stripe rejects checkout sessions that close sooner than this.
const stripeMinSessionTTL = 30 * time.Minute

// StripeProvider creates Stripe Checkout sessions in payment mode.
type StripeProvider struct {
	client session.Client
}

func NewStripeProvider(key string) *StripeProvider {
	return NewStripeProviderWithBackend(key, stripe.GetBackend(stripe.APIBackend))
}

// NewStripeProviderWithBackend lets callers point the provider at another API host.
func NewStripeProviderWithBackend(key string, backend stripe.Backend) *StripeProvider {
	return &StripeProvider{client: session.Client{B: backend, Key: key}}
}

func (p *StripeProvider) Name() string { return "stripe" }

// MinSessionTTL includes a minute of slack for the request's own latency.
func (p *StripeProvider) MinSessionTTL() time.Duration { return stripeMinSessionTTL + time.Minute }

func (p *StripeProvider) CreateSession(ctx context.Context, req SessionRequest) (*ProviderSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		ClientReferenceID: stripe.String(req.BookingID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(req.Currency),
					UnitAmount: stripe.Int64(req.Amount.Cents()),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.Description),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: map[string]string{"booking_id": req.BookingID},
		},
	}
	if !req.ExpiresAt.IsZero() {
		params.ExpiresAt = stripe.Int64(req.ExpiresAt.Unix())
	}
	params.Context = ctx
	params.AddMetadata("booking_id", req.BookingID)
	if req.UserID != "" {
		params.AddMetadata("user_id", req.UserID)
	}
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	s, err := p.client.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout session: %w", err)
	}
	if s.URL == "" {
		return nil, fmt.Errorf("stripe checkout session %s has no redirect url", s.ID)
	}

	return &ProviderSession{
		SessionID:   s.ID,
		RedirectURL: s.URL,
		ExpiresAt:   time.Unix(s.ExpiresAt, 0).UTC(),
	}, nil
}
