package model

import (
	"time"

	"github.com/google/uuid"
)

// CoinTransactionType is the ledger entry type. Only purchases are written
// by this service.
type CoinTransactionType string

const (
	CoinTransactionPurchase CoinTransactionType = "purchase"
)

// CoinTransactionStatus moves pending -> completed.
type CoinTransactionStatus string

const (
	CoinTransactionPending   CoinTransactionStatus = "pending"
	CoinTransactionCompleted CoinTransactionStatus = "completed"
)

// CoinTransaction is one coin purchase tied to a Checkout Session.
type CoinTransaction struct {
	ID                      uuid.UUID             `gorm:"type:uuid;primaryKey" json:"id"`
	UserID                  uuid.UUID             `gorm:"type:uuid;not null;index" json:"user_id"`
	Type                    CoinTransactionType   `gorm:"size:20;not null" json:"type"`
	PackageID               string                `gorm:"size:50;not null" json:"package_id"`
	AmountCoins             int64                 `gorm:"not null" json:"amount_coins"`
	AmountCents             int64                 `gorm:"not null" json:"amount_cents"`
	StripeCheckoutSessionID string                `gorm:"column:stripe_checkout_session_id;size:255;not null;uniqueIndex" json:"stripe_checkout_session_id"`
	Status                  CoinTransactionStatus `gorm:"size:20;not null;index" json:"status"`
	CompletedAt             *time.Time            `json:"completed_at,omitempty"`
	CreatedAt               time.Time             `json:"created_at"`
	UpdatedAt               time.Time             `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (CoinTransaction) TableName() string {
	return "coin_transactions"
}

// UserCoins is the coin balance of a user, one row per user.
type UserCoins struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	Balance   int64     `gorm:"not null;default:0" json:"balance"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (UserCoins) TableName() string {
	return "user_coins"
}
