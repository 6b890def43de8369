package models

import "time"

// PaymentOutcome is the result reported by the payment provider.
type PaymentOutcome string

const (
	OutcomeSucceeded PaymentOutcome = "succeeded"
	OutcomeFailed    PaymentOutcome = "failed"
)

func (o PaymentOutcome) Valid() bool {
	return o == OutcomeSucceeded || o == OutcomeFailed
}

// PaymentEvent is a verified, provider-issued notification. It is never
// persisted; only its id lands in the idempotency ledger.
type PaymentEvent struct {
	EventID   string         `json:"eventId"`
	SessionID string         `json:"sessionId"`
	Outcome   PaymentOutcome `json:"outcome"`
}

// Ledger results recorded against a processed event.
const (
	EventResultApplied      = "applied"
	EventResultInvalidState = "invalid_state"
	EventResultIgnored      = "ignored"
)

// ProcessedEvent is one row of the idempotency ledger.
type ProcessedEvent struct {
	EventID     string    `bson:"event_id" json:"eventId" gorm:"primaryKey;type:varchar(255)"`
	BookingID   string    `bson:"booking_id" json:"bookingId" gorm:"type:varchar(64);index"`
	Outcome     string    `bson:"outcome" json:"outcome" gorm:"type:varchar(16)"`
	Result      string    `bson:"result" json:"result" gorm:"type:varchar(16)"`
	ProcessedAt time.Time `bson:"processed_at" json:"processedAt"`
}

func (ProcessedEvent) TableName() string {
	return "processed_events"
}
