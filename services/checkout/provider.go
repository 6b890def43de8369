package checkout

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"staybook/models"

	"github.com/google/uuid"
)

// SessionRequest is what the initiator asks a payment provider for.
type SessionRequest struct {
	BookingID   string
	UserID      string
	Amount      models.Money
	Currency    string
	Description string
	SuccessURL  string
	CancelURL   string
	// ExpiresAt closes the hosted page; zero leaves the provider default.
	ExpiresAt time.Time
	// IdempotencyKey is stable across retries of the same attempt so a retry
	// after a timeout gets back the session the provider already created.
	IdempotencyKey string
}

// ProviderSession is the provider's answer.
type ProviderSession struct {
	SessionID   string
	RedirectURL string
	ExpiresAt   time.Time
}

// Provider creates hosted checkout sessions.
type Provider interface {
	Name() string
	CreateSession(ctx context.Context, req SessionRequest) (*ProviderSession, error)
}

// bookingURL fills the {BOOKING_ID} placeholder of a configured redirect URL.
func bookingURL(template, bookingID string) string {
	return strings.ReplaceAll(template, "{BOOKING_ID}", url.PathEscape(bookingID))
}

// LocalProvider issues sessions without an external service. Payment outcomes
// are delivered through the HMAC-signed webhook.
type LocalProvider struct {
	ttl time.Duration
	now func() time.Time
}

func NewLocalProvider(ttl time.Duration) *LocalProvider {
	return &LocalProvider{ttl: ttl, now: func() time.Time { return time.Now().UTC() }}
}

func (p *LocalProvider) Name() string { return "local" }

func (p *LocalProvider) CreateSession(ctx context.Context, req SessionRequest) (*ProviderSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sessionID := "cs_local_" + uuid.New().String()

	redirect, err := url.Parse(req.SuccessURL)
	if err != nil {
		return nil, fmt.Errorf("invalid success url: %w", err)
	}
	q := redirect.Query()
	q.Set("session_id", sessionID)
	redirect.RawQuery = q.Encode()

	expiresAt := req.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = p.now().Add(p.ttl)
	}
	return &ProviderSession{
		SessionID:   sessionID,
		RedirectURL: redirect.String(),
		ExpiresAt:   expiresAt,
	}, nil
}
