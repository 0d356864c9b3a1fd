package model

import (
	"time"

	"github.com/google/uuid"
)

// ConnectAccountStatus is derived from what Stripe reports for the account.
type ConnectAccountStatus string

const (
	ConnectAccountPending    ConnectAccountStatus = "pending"
	ConnectAccountIncomplete ConnectAccountStatus = "incomplete"
	ConnectAccountActive     ConnectAccountStatus = "active"
)

// DeriveConnectStatus computes the account status from Stripe's flags.
func DeriveConnectStatus(detailsSubmitted, chargesEnabled bool, currentlyDue []string) ConnectAccountStatus {
	if !detailsSubmitted {
		return ConnectAccountPending
	}
	if chargesEnabled && len(currentlyDue) == 0 {
		return ConnectAccountActive
	}
	return ConnectAccountIncomplete
}

// ArtistStripeAccount is the Connect Express account an artist is paid out
// through. Rows are never deleted.
type ArtistStripeAccount struct {
	ID                  uuid.UUID            `gorm:"type:uuid;primaryKey" json:"id"`
	ArtistID            uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex" json:"artist_id"`
	StripeAccountID     string               `gorm:"column:stripe_account_id;size:100;not null;uniqueIndex" json:"stripe_account_id"`
	Status              ConnectAccountStatus `gorm:"size:20;not null;default:'pending'" json:"status"`
	ChargesEnabled      bool                 `gorm:"not null;default:false" json:"charges_enabled"`
	PayoutsEnabled      bool                 `gorm:"not null;default:false" json:"payouts_enabled"`
	DetailsSubmitted    bool                 `gorm:"not null;default:false" json:"details_submitted"`
	OnboardingURL       *string              `json:"onboarding_url,omitempty"`
	OnboardingExpiresAt *time.Time           `json:"onboarding_expires_at,omitempty"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (ArtistStripeAccount) TableName() string {
	return "artist_stripe_accounts"
}
