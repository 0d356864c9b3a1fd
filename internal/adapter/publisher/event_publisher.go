package publisher

import (
	"context"
	"fmt"

	"github.com/bloghead/payments/internal/domain/event"
	"github.com/bloghead/payments/pkg/messaging"
	"go.uber.org/zap"
)

// DefaultChannel is the pub/sub channel payment events are sent to.
const DefaultChannel = "bloghead:payments"

type eventPublisher struct {
	pub     messaging.Publisher
	channel string
	logger  *zap.Logger
}

// NewEventPublisher publishes domain events as JSON on channel.
func NewEventPublisher(pub messaging.Publisher, channel string, logger *zap.Logger) event.Publisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &eventPublisher{
		pub:     pub,
		channel: channel,
		logger:  logger,
	}
}

func (p *eventPublisher) Publish(ctx context.Context, e event.Event) error {
	if err := p.pub.Publish(ctx, p.channel, e); err != nil {
		return fmt.Errorf("failed to publish %s: %w", e.Type, err)
	}

	p.logger.Debug("Published domain event",
		zap.String("event_id", e.ID),
		zap.String("event_type", string(e.Type)),
		zap.String("channel", p.channel))
	return nil
}
