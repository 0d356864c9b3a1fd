package usecase

import (
	"context"
	"errors"
	"strconv"

	"github.com/bloghead/payments/internal/domain/catalog"
	domainErrors "github.com/bloghead/payments/internal/domain/errors"
	"github.com/bloghead/payments/internal/domain/event"
	"github.com/bloghead/payments/internal/domain/model"
	"github.com/bloghead/payments/internal/domain/provider"
	domainRepo "github.com/bloghead/payments/internal/domain/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Outcome describes what happened to an acknowledged delivery
type Outcome string

const (
	OutcomeProcessed Outcome = "processed"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeIgnored   Outcome = "ignored"
)

// WebhookProcessor verifies processor webhooks and applies them to local
// state. Every transition is idempotent, so redeliveries are harmless.
type WebhookProcessor struct {
	gateway   provider.Gateway
	events    domainRepo.WebhookEventRepository
	payments  domainRepo.PaymentRepository
	coins     domainRepo.CoinRepository
	accounts  domainRepo.ConnectAccountRepository
	catalog   *catalog.Catalog
	publisher event.Publisher
	logger    *zap.Logger
}

// NewWebhookProcessor creates a new webhook processor
func NewWebhookProcessor(
	gateway provider.Gateway,
	events domainRepo.WebhookEventRepository,
	payments domainRepo.PaymentRepository,
	coins domainRepo.CoinRepository,
	accounts domainRepo.ConnectAccountRepository,
	cat *catalog.Catalog,
	publisher event.Publisher,
	logger *zap.Logger,
) *WebhookProcessor {
	if cat == nil {
		cat = catalog.Default()
	}
	return &WebhookProcessor{
		gateway:   gateway,
		events:    events,
		payments:  payments,
		coins:     coins,
		accounts:  accounts,
		catalog:   cat,
		publisher: publisher,
		logger:    logger,
	}
}

// Process handles one delivery. A verification failure returns an
// InvalidSignature error before any database access. Any other error means
// the delivery should be retried by the sender.
func (p *WebhookProcessor) Process(ctx context.Context, payload []byte, signature string) (Outcome, error) {
	ev, err := p.gateway.ConstructEvent(payload, signature)
	if err != nil {
		p.logger.Warn("Rejected webhook", zap.Error(err))
		return "", err
	}

	log := p.logger.With(
		zap.String("event_id", ev.ID),
		zap.String("event_type", ev.Type))

	stored, err := p.events.GetEvent(ctx, ev.ID)
	if err != nil {
		return "", domainErrors.Wrap(domainErrors.KindInternal, err, "load webhook event")
	}
	if stored != nil && stored.Status == model.WebhookStatusCompleted {
		log.Info("Webhook event already processed")
		return OutcomeDuplicate, nil
	}
	if stored == nil {
		created := ev.Created
		if err := p.events.SaveEvent(ctx, &model.StripeWebhookEvent{
			StripeEventID:   ev.ID,
			EventType:       ev.Type,
			Status:          model.WebhookStatusPending,
			Payload:         ev.Payload,
			StripeCreatedAt: &created,
		}); err != nil {
			return "", domainErrors.Wrap(domainErrors.KindInternal, err, "save webhook event")
		}
	}

	outcome, err := p.dispatch(ctx, ev)
	if err != nil {
		log.Error("Webhook processing failed", zap.Error(err))
		if markErr := p.events.MarkFailed(ctx, ev.ID, err); markErr != nil {
			log.Error("Failed to mark webhook as failed", zap.Error(markErr))
		}
		var de *domainErrors.Error
		if !errors.As(err, &de) {
			err = domainErrors.Wrap(domainErrors.KindInternal, err, "process "+ev.Type)
		}
		return "", err
	}

	if err := p.events.MarkProcessed(ctx, ev.ID); err != nil {
		log.Error("Failed to mark webhook as processed", zap.Error(err))
	}

	log.Info("Webhook handled", zap.String("outcome", string(outcome)))
	return outcome, nil
}

func (p *WebhookProcessor) dispatch(ctx context.Context, ev *provider.Event) (Outcome, error) {
	switch ev.Kind {
	case provider.EventPaymentIntentSucceeded:
		return p.paymentSucceeded(ctx, ev.PaymentIntent)
	case provider.EventPaymentIntentFailed:
		return p.paymentFailed(ctx, ev.PaymentIntent)
	case provider.EventCheckoutSessionCompleted, provider.EventCheckoutSessionAsyncPaymentSucceeded:
		return p.ApplyCheckoutSession(ctx, ev.CheckoutSession)
	case provider.EventAccountUpdated:
		return p.accountUpdated(ctx, ev.Account)
	default:
		p.logger.Info("Ignoring unhandled webhook event type",
			zap.String("event_id", ev.ID),
			zap.String("event_type", ev.Type))
		return OutcomeIgnored, nil
	}
}

// ApplyPaymentIntent applies a fetched intent through the same transitions
// as its webhook. Intents that are still in flight are left alone.
func (p *WebhookProcessor) ApplyPaymentIntent(ctx context.Context, pi *provider.PaymentIntent) (Outcome, error) {
	switch {
	case pi.Status == provider.IntentSucceeded:
		return p.paymentSucceeded(ctx, pi)
	case pi.Status == provider.IntentCanceled,
		pi.Status == provider.IntentRequiresPaymentMethod && pi.LastErrorCode+pi.LastErrorMessage != "":
		return p.paymentFailed(ctx, pi)
	default:
		return OutcomeIgnored, nil
	}
}

func (p *WebhookProcessor) paymentFromIntent(pi *provider.PaymentIntent) (*model.Payment, bool) {
	if pi == nil {
		return nil, false
	}
	bookingID, err := uuid.Parse(pi.Metadata["booking_id"])
	if err != nil {
		p.logger.Warn("Payment intent without booking reference",
			zap.String("payment_intent_id", pi.ID),
			zap.String("booking_id", pi.Metadata["booking_id"]))
		return nil, false
	}

	currency := pi.Currency
	if currency == "" {
		currency = Currency
	}
	return &model.Payment{
		BookingID:             bookingID,
		StripePaymentIntentID: pi.ID,
		Amount:                pi.Amount,
		PlatformFee:           pi.ApplicationFeeAmount,
		ArtistPayout:          pi.Amount - pi.ApplicationFeeAmount,
		Currency:              currency,
	}, true
}

func (p *WebhookProcessor) paymentSucceeded(ctx context.Context, pi *provider.PaymentIntent) (Outcome, error) {
	payment, ok := p.paymentFromIntent(pi)
	if !ok {
		return OutcomeIgnored, nil
	}

	changed, err := p.payments.RecordSucceeded(ctx, payment)
	if err != nil {
		return "", err
	}

	p.logger.Info("Booking payment succeeded",
		zap.String("booking_id", payment.BookingID.String()),
		zap.String("payment_intent_id", pi.ID),
		zap.Bool("booking_changed", changed))

	if changed {
		p.publish(ctx, event.New(event.BookingPaid, event.BookingPaymentData{
			BookingID:       payment.BookingID.String(),
			PaymentIntentID: pi.ID,
			Amount:          payment.Amount,
			Currency:        payment.Currency,
		}))
	}
	return OutcomeProcessed, nil
}

func (p *WebhookProcessor) paymentFailed(ctx context.Context, pi *provider.PaymentIntent) (Outcome, error) {
	payment, ok := p.paymentFromIntent(pi)
	if !ok {
		return OutcomeIgnored, nil
	}
	reason := pi.FailureReason()
	payment.FailureReason = &reason

	changed, err := p.payments.RecordFailed(ctx, payment)
	if err != nil {
		return "", err
	}

	p.logger.Info("Booking payment failed",
		zap.String("booking_id", payment.BookingID.String()),
		zap.String("payment_intent_id", pi.ID),
		zap.String("failure_reason", reason),
		zap.Bool("booking_changed", changed))

	if changed {
		p.publish(ctx, event.New(event.BookingPaymentFailed, event.BookingPaymentData{
			BookingID:       payment.BookingID.String(),
			PaymentIntentID: pi.ID,
			Amount:          payment.Amount,
			Currency:        payment.Currency,
			FailureReason:   reason,
		}))
	}
	return OutcomeProcessed, nil
}

// ApplyCheckoutSession credits the coins bought through a paid coin
// checkout session. Delayed payment methods complete unpaid and are credited
// on the later async_payment_succeeded delivery. Sessions of other types are
// ignored.
func (p *WebhookProcessor) ApplyCheckoutSession(ctx context.Context, s *provider.CheckoutSession) (Outcome, error) {
	if s == nil || s.Metadata["type"] != CoinPurchaseType {
		return OutcomeIgnored, nil
	}
	log := p.logger.With(zap.String("session_id", s.ID))

	if !s.Paid() {
		log.Info("Checkout session completed without payment yet",
			zap.String("payment_status", s.PaymentStatus))
		return OutcomeIgnored, nil
	}

	purchase, ok := p.purchaseFromSession(s)
	if !ok {
		log.Warn("Coin checkout session with unusable metadata",
			zap.Any("metadata", s.Metadata))
		return OutcomeIgnored, nil
	}

	credit, err := p.coins.CompletePurchase(ctx, purchase)
	if err != nil {
		return "", err
	}

	log.Info("Coin purchase completed",
		zap.String("user_id", purchase.UserID.String()),
		zap.Int64("coins", purchase.AmountCoins),
		zap.Bool("credited", credit.Credited),
		zap.Int64("balance", credit.Balance))

	if credit.Credited {
		p.publish(ctx, event.New(event.CoinsCredited, event.CoinsCreditedData{
			UserID:    purchase.UserID.String(),
			PackageID: purchase.PackageID,
			Coins:     purchase.AmountCoins,
			Balance:   credit.Balance,
			SessionID: s.ID,
		}))
	}
	return OutcomeProcessed, nil
}

// purchaseFromSession rebuilds the coin transaction from session metadata,
// used when no pending row exists for the session.
func (p *WebhookProcessor) purchaseFromSession(s *provider.CheckoutSession) (*model.CoinTransaction, bool) {
	userID, err := uuid.Parse(s.Metadata["user_id"])
	if err != nil {
		return nil, false
	}

	packageID := s.Metadata["package_id"]
	coins, err := strconv.ParseInt(s.Metadata["coins"], 10, 64)
	if err != nil || coins <= 0 {
		pkg, ok := p.catalog.Lookup(packageID)
		if !ok {
			return nil, false
		}
		coins = pkg.Coins
	}

	return &model.CoinTransaction{
		UserID:                  userID,
		Type:                    model.CoinTransactionPurchase,
		PackageID:               packageID,
		AmountCoins:             coins,
		AmountCents:             s.AmountTotal,
		StripeCheckoutSessionID: s.ID,
	}, true
}

func (p *WebhookProcessor) accountUpdated(ctx context.Context, acct *provider.ConnectAccount) (Outcome, error) {
	if acct == nil {
		return OutcomeIgnored, nil
	}

	state := accountState(acct)
	changed, err := p.accounts.ApplyState(ctx, state)
	if err != nil {
		return "", err
	}

	p.logger.Info("Connect account updated",
		zap.String("stripe_account_id", acct.ID),
		zap.String("status", string(state.Status)),
		zap.Bool("changed", changed))

	if changed {
		p.publish(ctx, accountUpdatedEvent(state))
	}
	return OutcomeProcessed, nil
}

// accountState derives the local row from the processor's account. The
// artist id comes from metadata and is only needed to create a missing row.
func accountState(acct *provider.ConnectAccount) *model.ArtistStripeAccount {
	state := &model.ArtistStripeAccount{
		StripeAccountID:  acct.ID,
		Status:           model.DeriveConnectStatus(acct.DetailsSubmitted, acct.ChargesEnabled, acct.CurrentlyDue),
		ChargesEnabled:   acct.ChargesEnabled,
		PayoutsEnabled:   acct.PayoutsEnabled,
		DetailsSubmitted: acct.DetailsSubmitted,
	}
	if artistID, err := uuid.Parse(acct.Metadata["artist_id"]); err == nil {
		state.ArtistID = artistID
	}
	return state
}

func accountUpdatedEvent(state *model.ArtistStripeAccount) event.Event {
	return event.New(event.ArtistAccountUpdated, event.ArtistAccountData{
		ArtistID:        state.ArtistID.String(),
		StripeAccountID: state.StripeAccountID,
		Status:          string(state.Status),
		ChargesEnabled:  state.ChargesEnabled,
		PayoutsEnabled:  state.PayoutsEnabled,
	})
}

func (p *WebhookProcessor) publish(ctx context.Context, e event.Event) {
	publishEvent(ctx, p.publisher, p.logger, e)
}

// publishEvent delivers e and only logs failures; state is already committed.
func publishEvent(ctx context.Context, pub event.Publisher, logger *zap.Logger, e event.Event) {
	if err := pub.Publish(ctx, e); err != nil {
		logger.Warn("Failed to publish domain event",
			zap.String("event_type", string(e.Type)),
			zap.String("event_id", e.ID),
			zap.Error(err))
	}
}
