package models

import "time"

// CheckoutSession is a provider-issued handle for one booking's payment flow.
type CheckoutSession struct {
	SessionID   string    `bson:"session_id" json:"sessionId" gorm:"primaryKey;type:varchar(255)"`
	BookingID   string    `bson:"booking_id" json:"bookingId" gorm:"type:varchar(64);not null;index"`
	Amount      Money     `bson:"amount" json:"amount" gorm:"not null"`
	Currency    string    `bson:"currency" json:"currency" gorm:"type:varchar(8)"`
	RedirectURL string    `bson:"redirect_url" json:"redirectUrl" gorm:"type:text;not null"`
	Provider    string    `bson:"provider" json:"provider" gorm:"type:varchar(16)"`
	ExpiresAt   time.Time `bson:"expires_at" json:"expiresAt"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt" gorm:"index"`
}

func (CheckoutSession) TableName() string {
	return "checkout_sessions"
}

// ActiveAt reports whether the session can still be used at t.
func (s *CheckoutSession) ActiveAt(t time.Time) bool {
	return s.ExpiresAt.After(t)
}
