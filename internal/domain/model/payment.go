package model

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus mirrors the PaymentIntent outcome.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Payment records one PaymentIntent for a booking. Amount always equals
// PlatformFee + ArtistPayout, all in cents.
type Payment struct {
	ID                    uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	BookingID             uuid.UUID     `gorm:"type:uuid;not null;index" json:"booking_id"`
	StripePaymentIntentID string        `gorm:"column:stripe_payment_intent_id;size:255;not null;uniqueIndex" json:"stripe_payment_intent_id"`
	Amount                int64         `gorm:"not null" json:"amount"`
	PlatformFee           int64         `gorm:"not null" json:"platform_fee"`
	ArtistPayout          int64         `gorm:"not null" json:"artist_payout"`
	Currency              string        `gorm:"size:3;not null;default:'eur'" json:"currency"`
	Status                PaymentStatus `gorm:"size:20;not null;index" json:"status"`
	FailureReason         *string       `json:"failure_reason,omitempty"`
	PaidAt                *time.Time    `json:"paid_at,omitempty"`
	CreatedAt             time.Time     `json:"created_at"`
	UpdatedAt             time.Time     `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Payment) TableName() string {
	return "payments"
}
