package reconciliation

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"staybook/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

// Verifier authenticates a raw provider notification and extracts the payment
// event. A nil event with a nil error means the notification is authentic but
// carries nothing to reconcile.
type Verifier interface {
	Verify(payload []byte, signature string) (*models.PaymentEvent, error)
}

var errMissingSignature = errors.New("missing signature")

// HMACVerifier accepts `{eventId, sessionId, outcome}` bodies signed with a
// hex HMAC-SHA256 of the raw body under a shared secret.
type HMACVerifier struct {
	secret []byte
}

func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret)}
}

// Sign returns the signature the verifier expects for payload.
func (v *HMACVerifier) Sign(payload []byte) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func (v *HMACVerifier) Verify(payload []byte, signature string) (*models.PaymentEvent, error) {
	signature = strings.TrimPrefix(strings.TrimSpace(signature), "sha256=")
	if signature == "" {
		return nil, errMissingSignature
	}
	given, err := hex.DecodeString(signature)
	if err != nil {
		return nil, fmt.Errorf("malformed signature: %w", err)
	}
	mac := hmac.New(sha256.New, v.secret)
	mac.Write(payload)
	if !hmac.Equal(given, mac.Sum(nil)) {
		return nil, errors.New("signature mismatch")
	}

	var evt models.PaymentEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return nil, fmt.Errorf("malformed event body: %w", err)
	}
	if evt.EventID == "" || evt.SessionID == "" {
		return nil, errors.New("eventId and sessionId are required")
	}
	if !evt.Outcome.Valid() {
		return nil, fmt.Errorf("unknown outcome %q", evt.Outcome)
	}
	return &evt, nil
}

// StripeVerifier checks the Stripe-Signature header and maps checkout
// session events to payment outcomes.
type StripeVerifier struct {
	secret string
}

func NewStripeVerifier(secret string) *StripeVerifier {
	return &StripeVerifier{secret: secret}
}

func (v *StripeVerifier) Verify(payload []byte, signature string) (*models.PaymentEvent, error) {
	if signature == "" {
		return nil, errMissingSignature
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, v.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, err
	}

	var outcome models.PaymentOutcome
	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted, stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded:
		outcome = models.OutcomeSucceeded
	case stripe.EventTypeCheckoutSessionAsyncPaymentFailed, stripe.EventTypeCheckoutSessionExpired:
		outcome = models.OutcomeFailed
	default:
		return nil, nil
	}

	var cs stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
		return nil, fmt.Errorf("malformed checkout session payload: %w", err)
	}

	// A completed session paid by a delayed method settles later through
	// async_payment_succeeded or async_payment_failed.
	if event.Type == stripe.EventTypeCheckoutSessionCompleted && cs.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		return nil, nil
	}

	return &models.PaymentEvent{
		EventID:   event.ID,
		SessionID: cs.ID,
		Outcome:   outcome,
	}, nil
}
