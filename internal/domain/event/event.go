// Package event defines the domain events emitted after payment state
// changes. Consumers must treat them as at-least-once.
package event

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Type names a domain event
type Type string

const (
	BookingPaid          Type = "booking.paid"
	BookingPaymentFailed Type = "booking.payment_failed"
	CoinsCredited        Type = "coins.credited"
	ArtistAccountUpdated Type = "artist.account_updated"
)

// Event is the envelope published to subscribers
type Event struct {
	ID         string      `json:"id"`
	Type       Type        `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       interface{} `json:"data"`
}

// New wraps data into an envelope with a fresh id
func New(t Type, data interface{}) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

// Publisher delivers domain events. Implementations must not block the
// caller for long; delivery failures are reported but never retried.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// BookingPaymentData is the payload of booking.paid and booking.payment_failed
type BookingPaymentData struct {
	BookingID       string `json:"booking_id"`
	PaymentIntentID string `json:"payment_intent_id"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	FailureReason   string `json:"failure_reason,omitempty"`
}

// CoinsCreditedData is the payload of coins.credited
type CoinsCreditedData struct {
	UserID    string `json:"user_id"`
	PackageID string `json:"package_id"`
	Coins     int64  `json:"coins"`
	Balance   int64  `json:"balance"`
	SessionID string `json:"session_id"`
}

// ArtistAccountData is the payload of artist.account_updated
type ArtistAccountData struct {
	ArtistID        string `json:"artist_id"`
	StripeAccountID string `json:"stripe_account_id"`
	Status          string `json:"status"`
	ChargesEnabled  bool   `json:"charges_enabled"`
	PayoutsEnabled  bool   `json:"payouts_enabled"`
}
