package usecase

import (
	"context"
	"time"

	"github.com/bloghead/payments/internal/domain/model"
	"github.com/bloghead/payments/internal/domain/provider"
	domainRepo "github.com/bloghead/payments/internal/domain/repository"
	"go.uber.org/zap"
)

// ReconcileReport summarizes one reconciliation run
type ReconcileReport struct {
	PaymentsChecked int
	PaymentsApplied int
	SessionsChecked int
	SessionsApplied int
	Errors          int
	FailedWebhooks  []*model.StripeWebhookEvent
}

// ReconcileService settles rows stuck in pending by asking the processor
// for the current state and applying it through the webhook transitions
type ReconcileService struct {
	payments  domainRepo.PaymentRepository
	coins     domainRepo.CoinRepository
	events    domainRepo.WebhookEventRepository
	gateway   provider.Gateway
	processor *WebhookProcessor
	logger    *zap.Logger
}

// NewReconcileService creates a new reconcile service instance
func NewReconcileService(
	payments domainRepo.PaymentRepository,
	coins domainRepo.CoinRepository,
	events domainRepo.WebhookEventRepository,
	gateway provider.Gateway,
	processor *WebhookProcessor,
	logger *zap.Logger,
) *ReconcileService {
	return &ReconcileService{
		payments:  payments,
		coins:     coins,
		events:    events,
		gateway:   gateway,
		processor: processor,
		logger:    logger,
	}
}

// Run reconciles rows pending for longer than olderThan, at most limit of
// each kind. Per-row failures are counted and logged, not returned.
func (s *ReconcileService) Run(ctx context.Context, olderThan time.Duration, limit int) (*ReconcileReport, error) {
	cutoff := time.Now().Add(-olderThan)
	report := &ReconcileReport{}

	payments, err := s.payments.ListPending(ctx, cutoff, limit)
	if err != nil {
		return nil, err
	}
	for _, payment := range payments {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		report.PaymentsChecked++

		log := s.logger.With(
			zap.String("booking_id", payment.BookingID.String()),
			zap.String("payment_intent_id", payment.StripePaymentIntentID))

		pi, err := s.gateway.GetPaymentIntent(ctx, payment.StripePaymentIntentID)
		if err != nil {
			report.Errors++
			log.Error("Failed to fetch payment intent", zap.Error(err))
			continue
		}
		if pi.Metadata == nil || pi.Metadata["booking_id"] == "" {
			pi.Metadata = map[string]string{"booking_id": payment.BookingID.String()}
		}

		outcome, err := s.processor.ApplyPaymentIntent(ctx, pi)
		if err != nil {
			report.Errors++
			log.Error("Failed to apply payment intent", zap.Error(err))
			continue
		}
		if outcome == OutcomeProcessed {
			report.PaymentsApplied++
		}
		log.Info("Reconciled payment", zap.String("intent_status", pi.Status), zap.String("outcome", string(outcome)))
	}

	txns, err := s.coins.ListPending(ctx, cutoff, limit)
	if err != nil {
		return nil, err
	}
	for _, txn := range txns {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		report.SessionsChecked++

		log := s.logger.With(
			zap.String("session_id", txn.StripeCheckoutSessionID),
			zap.String("user_id", txn.UserID.String()))

		sess, err := s.gateway.GetCheckoutSession(ctx, txn.StripeCheckoutSessionID)
		if err != nil {
			report.Errors++
			log.Error("Failed to fetch checkout session", zap.Error(err))
			continue
		}

		outcome, err := s.processor.ApplyCheckoutSession(ctx, sess)
		if err != nil {
			report.Errors++
			log.Error("Failed to apply checkout session", zap.Error(err))
			continue
		}
		if outcome == OutcomeProcessed {
			report.SessionsApplied++
		}
		log.Info("Reconciled coin purchase", zap.String("payment_status", sess.PaymentStatus), zap.String("outcome", string(outcome)))
	}

	failed, err := s.events.ListFailed(ctx, limit)
	if err != nil {
		return nil, err
	}
	report.FailedWebhooks = failed

	return report, nil
}
