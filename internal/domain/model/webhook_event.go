package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// WebhookStatus represents the processing status of a webhook
type WebhookStatus string

const (
	WebhookStatusPending    WebhookStatus = "pending"
	WebhookStatusProcessing WebhookStatus = "processing"
	WebhookStatusCompleted  WebhookStatus = "completed"
	WebhookStatusFailed     WebhookStatus = "failed"
)

// StripeWebhookEvent is the audit record of one verified webhook delivery.
type StripeWebhookEvent struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	StripeEventID      string         `gorm:"size:255;not null;uniqueIndex" json:"stripe_event_id"`
	EventType          string         `gorm:"size:100;not null;index" json:"event_type"`
	Status             WebhookStatus  `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Payload            datatypes.JSON `json:"payload"`
	ProcessingAttempts int            `gorm:"not null;default:0" json:"processing_attempts"`
	LastError          *string        `json:"last_error,omitempty"`
	ProcessedAt        *time.Time     `json:"processed_at,omitempty"`
	StripeCreatedAt    *time.Time     `json:"stripe_created_at,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (StripeWebhookEvent) TableName() string {
	return "stripe_webhook_events"
}
