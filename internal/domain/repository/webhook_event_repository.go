package repository

import (
	"context"

	"github.com/bloghead/payments/internal/domain/model"
)

// WebhookEventRepository handles webhook event storage and processing
type WebhookEventRepository interface {
	// SaveEvent records a verified delivery; duplicates are ignored.
	SaveEvent(ctx context.Context, event *model.StripeWebhookEvent) error
	GetEvent(ctx context.Context, eventID string) (*model.StripeWebhookEvent, error)
	MarkProcessed(ctx context.Context, eventID string) error
	MarkFailed(ctx context.Context, eventID string, cause error) error
	ListFailed(ctx context.Context, limit int) ([]*model.StripeWebhookEvent, error)
}
