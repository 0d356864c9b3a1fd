package model

import (
	"time"

	"github.com/google/uuid"
)

// StripeCustomer maps a platform user to its Stripe customer. At most one
// row per user.
type StripeCustomer struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	StripeCustomerID string    `gorm:"column:stripe_customer_id;size:100;not null;uniqueIndex" json:"stripe_customer_id"`
	CreatedAt        time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (StripeCustomer) TableName() string {
	return "stripe_customers"
}
