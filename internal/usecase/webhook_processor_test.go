package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	domainErrors "github.com/bloghead/payments/internal/domain/errors"
	"github.com/bloghead/payments/internal/domain/event"
	"github.com/bloghead/payments/internal/domain/model"
	"github.com/bloghead/payments/internal/domain/provider"
	domainRepo "github.com/bloghead/payments/internal/domain/repository"
	"github.com/bloghead/payments/internal/usecase"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type webhookFixture struct {
	gateway   *MockGateway
	events    *MockWebhookEventRepository
	payments  *MockPaymentRepository
	coins     *MockCoinRepository
	accounts  *MockConnectAccountRepository
	publisher *MockPublisher
	processor *usecase.WebhookProcessor
}

func newWebhookFixture() *webhookFixture {
	f := &webhookFixture{
		gateway:   new(MockGateway),
		events:    new(MockWebhookEventRepository),
		payments:  new(MockPaymentRepository),
		coins:     new(MockCoinRepository),
		accounts:  new(MockConnectAccountRepository),
		publisher: new(MockPublisher),
	}
	f.processor = usecase.NewWebhookProcessor(f.gateway, f.events, f.payments, f.coins, f.accounts, nil, f.publisher, zap.NewNop())
	return f
}

// deliver wires a verified event with a fresh audit row.
func (f *webhookFixture) deliver(ev *provider.Event) ([]byte, string) {
	payload := []byte(`{"id":"` + ev.ID + `"}`)
	ev.Payload = payload
	f.gateway.On("ConstructEvent", payload, "sig").Return(ev, nil)
	f.events.On("GetEvent", mock.Anything, ev.ID).Return(nil, nil)
	f.events.On("SaveEvent", mock.Anything, mock.MatchedBy(func(e *model.StripeWebhookEvent) bool {
		return e.StripeEventID == ev.ID && e.EventType == ev.Type && e.Status == model.WebhookStatusPending
	})).Return(nil)
	return payload, "sig"
}

func TestWebhookProcessor_InvalidSignature(t *testing.T) {
	f := newWebhookFixture()
	payload := []byte(`{"id":"evt_forged"}`)
	f.gateway.On("ConstructEvent", payload, "t=1,v1=bad").
		Return(nil, domainErrors.New(domainErrors.KindInvalidSignature, "signature mismatch"))

	_, err := f.processor.Process(context.Background(), payload, "t=1,v1=bad")

	assert.ErrorIs(t, err, domainErrors.ErrInvalidSignature)
	assert.Empty(t, f.events.Calls)
	assert.Empty(t, f.payments.Calls)
	assert.Empty(t, f.coins.Calls)
	assert.Empty(t, f.accounts.Calls)
}

func TestWebhookProcessor_AlreadyCompleted(t *testing.T) {
	f := newWebhookFixture()
	ev := &provider.Event{ID: "evt_done", Type: "payment_intent.succeeded", Kind: provider.EventPaymentIntentSucceeded}
	payload := []byte(`{}`)
	f.gateway.On("ConstructEvent", payload, "sig").Return(ev, nil)
	f.events.On("GetEvent", mock.Anything, "evt_done").Return(&model.StripeWebhookEvent{StripeEventID: "evt_done", Status: model.WebhookStatusCompleted}, nil)

	outcome, err := f.processor.Process(context.Background(), payload, "sig")

	require.NoError(t, err)
	assert.Equal(t, usecase.OutcomeDuplicate, outcome)
	f.payments.AssertNotCalled(t, "RecordSucceeded", mock.Anything, mock.Anything)
	f.events.AssertNotCalled(t, "SaveEvent", mock.Anything, mock.Anything)
}

func TestWebhookProcessor_PaymentIntentSucceeded(t *testing.T) {
	ctx := context.Background()
	bookingID := uuid.New()
	intent := &provider.PaymentIntent{
		ID:                   "pi_1",
		Status:               provider.IntentSucceeded,
		Amount:               10000,
		ApplicationFeeAmount: 1000,
		Currency:             "eur",
		Metadata:             map[string]string{"booking_id": bookingID.String()},
	}
	isPayment := mock.MatchedBy(func(p *model.Payment) bool {
		return p.BookingID == bookingID && p.StripePaymentIntentID == "pi_1" &&
			p.Amount == 10000 && p.PlatformFee == 1000 && p.ArtistPayout == 9000
	})

	t.Run("first delivery marks booking paid and publishes", func(t *testing.T) {
		f := newWebhookFixture()
		payload, sig := f.deliver(&provider.Event{ID: "evt_1", Type: "payment_intent.succeeded", Kind: provider.EventPaymentIntentSucceeded, Created: time.Now(), PaymentIntent: intent})
		f.payments.On("RecordSucceeded", mock.Anything, isPayment).Return(true, nil)
		f.publisher.On("Publish", mock.Anything, mock.MatchedBy(func(e event.Event) bool {
			data, ok := e.Data.(event.BookingPaymentData)
			return e.Type == event.BookingPaid && ok && data.BookingID == bookingID.String() && data.Amount == 10000
		})).Return(nil)
		f.events.On("MarkProcessed", mock.Anything, "evt_1").Return(nil)

		outcome, err := f.processor.Process(ctx, payload, sig)

		require.NoError(t, err)
		assert.Equal(t, usecase.OutcomeProcessed, outcome)
		f.payments.AssertExpectations(t)
		f.publisher.AssertExpectations(t)
		f.events.AssertExpectations(t)
	})

	t.Run("redelivery under a new event id is a no-op", func(t *testing.T) {
		f := newWebhookFixture()
		payload, sig := f.deliver(&provider.Event{ID: "evt_2", Type: "payment_intent.succeeded", Kind: provider.EventPaymentIntentSucceeded, PaymentIntent: intent})
		f.payments.On("RecordSucceeded", mock.Anything, isPayment).Return(false, nil)
		f.events.On("MarkProcessed", mock.Anything, "evt_2").Return(nil)

		outcome, err := f.processor.Process(ctx, payload, sig)

		require.NoError(t, err)
		assert.Equal(t, usecase.OutcomeProcessed, outcome)
		f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("publish failure does not fail the webhook", func(t *testing.T) {
		f := newWebhookFixture()
		payload, sig := f.deliver(&provider.Event{ID: "evt_3", Type: "payment_intent.succeeded", Kind: provider.EventPaymentIntentSucceeded, PaymentIntent: intent})
		f.payments.On("RecordSucceeded", mock.Anything, isPayment).Return(true, nil)
		f.publisher.On("Publish", mock.Anything, mock.Anything).Return(errors.New("redis down"))
		f.events.On("MarkProcessed", mock.Anything, "evt_3").Return(nil)

		_, err := f.processor.Process(ctx, payload, sig)
		assert.NoError(t, err)
	})

	t.Run("database failure marks event failed and asks for retry", func(t *testing.T) {
		f := newWebhookFixture()
		payload, sig := f.deliver(&provider.Event{ID: "evt_4", Type: "payment_intent.succeeded", Kind: provider.EventPaymentIntentSucceeded, PaymentIntent: intent})
		dbErr := errors.New("connection refused")
		f.payments.On("RecordSucceeded", mock.Anything, isPayment).Return(false, dbErr)
		f.events.On("MarkFailed", mock.Anything, "evt_4", dbErr).Return(nil)

		_, err := f.processor.Process(ctx, payload, sig)

		require.Error(t, err)
		assert.Equal(t, domainErrors.KindInternal, domainErrors.KindOf(err))
		assert.ErrorIs(t, err, dbErr)
		f.events.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything)
	})

	t.Run("missing booking reference is acknowledged", func(t *testing.T) {
		f := newWebhookFixture()
		orphan := &provider.PaymentIntent{ID: "pi_other", Status: provider.IntentSucceeded, Amount: 500}
		payload, sig := f.deliver(&provider.Event{ID: "evt_5", Type: "payment_intent.succeeded", Kind: provider.EventPaymentIntentSucceeded, PaymentIntent: orphan})
		f.events.On("MarkProcessed", mock.Anything, "evt_5").Return(nil)

		outcome, err := f.processor.Process(ctx, payload, sig)

		require.NoError(t, err)
		assert.Equal(t, usecase.OutcomeIgnored, outcome)
		f.payments.AssertNotCalled(t, "RecordSucceeded", mock.Anything, mock.Anything)
	})
}

func TestWebhookProcessor_PaymentIntentFailed(t *testing.T) {
	f := newWebhookFixture()
	bookingID := uuid.New()
	intent := &provider.PaymentIntent{
		ID:               "pi_f",
		Status:           provider.IntentRequiresPaymentMethod,
		Amount:           10000,
		Currency:         "eur",
		LastErrorCode:    "card_declined",
		LastErrorMessage: "Your card was declined.",
		Metadata:         map[string]string{"booking_id": bookingID.String()},
	}
	payload, sig := f.deliver(&provider.Event{ID: "evt_f", Type: "payment_intent.payment_failed", Kind: provider.EventPaymentIntentFailed, PaymentIntent: intent})
	f.payments.On("RecordFailed", mock.Anything, mock.MatchedBy(func(p *model.Payment) bool {
		return p.BookingID == bookingID && p.FailureReason != nil && *p.FailureReason == "Your card was declined."
	})).Return(true, nil)
	f.publisher.On("Publish", mock.Anything, mock.MatchedBy(func(e event.Event) bool {
		return e.Type == event.BookingPaymentFailed
	})).Return(nil)
	f.events.On("MarkProcessed", mock.Anything, "evt_f").Return(nil)

	outcome, err := f.processor.Process(context.Background(), payload, sig)

	require.NoError(t, err)
	assert.Equal(t, usecase.OutcomeProcessed, outcome)
	f.payments.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
}

func TestWebhookProcessor_CheckoutSessionCompleted(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	session := &provider.CheckoutSession{
		ID:            "cs_1",
		PaymentStatus: "paid",
		AmountTotal:   3999,
		Metadata: map[string]string{
			"type":       "coin_purchase",
			"package_id": "popular",
			"coins":      "500",
			"user_id":    userID.String(),
		},
	}
	isPurchase := mock.MatchedBy(func(p *model.CoinTransaction) bool {
		return p.UserID == userID && p.StripeCheckoutSessionID == "cs_1" &&
			p.AmountCoins == 500 && p.PackageID == "popular" && p.AmountCents == 3999
	})

	t.Run("credits coins once", func(t *testing.T) {
		f := newWebhookFixture()
		payload, sig := f.deliver(&provider.Event{ID: "evt_c1", Type: "checkout.session.completed", Kind: provider.EventCheckoutSessionCompleted, CheckoutSession: session})
		f.coins.On("CompletePurchase", mock.Anything, isPurchase).Return(&domainRepo.CoinCredit{Credited: true, Balance: 500}, nil)
		f.publisher.On("Publish", mock.Anything, mock.MatchedBy(func(e event.Event) bool {
			data, ok := e.Data.(event.CoinsCreditedData)
			return e.Type == event.CoinsCredited && ok && data.Coins == 500 && data.Balance == 500
		})).Return(nil)
		f.events.On("MarkProcessed", mock.Anything, "evt_c1").Return(nil)

		outcome, err := f.processor.Process(ctx, payload, sig)
		require.NoError(t, err)
		assert.Equal(t, usecase.OutcomeProcessed, outcome)
		f.publisher.AssertExpectations(t)
	})

	t.Run("duplicate completion does not publish", func(t *testing.T) {
		f := newWebhookFixture()
		payload, sig := f.deliver(&provider.Event{ID: "evt_c2", Type: "checkout.session.completed", Kind: provider.EventCheckoutSessionCompleted, CheckoutSession: session})
		f.coins.On("CompletePurchase", mock.Anything, isPurchase).Return(&domainRepo.CoinCredit{Credited: false, Balance: 500}, nil)
		f.events.On("MarkProcessed", mock.Anything, "evt_c2").Return(nil)

		_, err := f.processor.Process(ctx, payload, sig)
		require.NoError(t, err)
		f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("other checkout types are ignored", func(t *testing.T) {
		f := newWebhookFixture()
		other := &provider.CheckoutSession{ID: "cs_other", PaymentStatus: "paid", Metadata: map[string]string{"type": "merch"}}
		payload, sig := f.deliver(&provider.Event{ID: "evt_c3", Type: "checkout.session.completed", Kind: provider.EventCheckoutSessionCompleted, CheckoutSession: other})
		f.events.On("MarkProcessed", mock.Anything, "evt_c3").Return(nil)

		outcome, err := f.processor.Process(ctx, payload, sig)
		require.NoError(t, err)
		assert.Equal(t, usecase.OutcomeIgnored, outcome)
		f.coins.AssertNotCalled(t, "CompletePurchase", mock.Anything, mock.Anything)
	})

	t.Run("delayed payment is credited on async success", func(t *testing.T) {
		f := newWebhookFixture()
		payload, sig := f.deliver(&provider.Event{
			ID:              "evt_c5",
			Type:            "checkout.session.async_payment_succeeded",
			Kind:            provider.EventCheckoutSessionAsyncPaymentSucceeded,
			CheckoutSession: session,
		})
		f.coins.On("CompletePurchase", mock.Anything, isPurchase).Return(&domainRepo.CoinCredit{Credited: true, Balance: 500}, nil)
		f.publisher.On("Publish", mock.Anything, mock.MatchedBy(func(e event.Event) bool {
			return e.Type == event.CoinsCredited
		})).Return(nil)
		f.events.On("MarkProcessed", mock.Anything, "evt_c5").Return(nil)

		outcome, err := f.processor.Process(ctx, payload, sig)
		require.NoError(t, err)
		assert.Equal(t, usecase.OutcomeProcessed, outcome)
		f.coins.AssertNumberOfCalls(t, "CompletePurchase", 1)
		f.publisher.AssertExpectations(t)
	})

	t.Run("unpaid session is not credited", func(t *testing.T) {
		f := newWebhookFixture()
		unpaid := *session
		unpaid.PaymentStatus = "unpaid"
		payload, sig := f.deliver(&provider.Event{ID: "evt_c4", Type: "checkout.session.completed", Kind: provider.EventCheckoutSessionCompleted, CheckoutSession: &unpaid})
		f.events.On("MarkProcessed", mock.Anything, "evt_c4").Return(nil)

		outcome, err := f.processor.Process(ctx, payload, sig)
		require.NoError(t, err)
		assert.Equal(t, usecase.OutcomeIgnored, outcome)
		f.coins.AssertNotCalled(t, "CompletePurchase", mock.Anything, mock.Anything)
	})
}

func TestWebhookProcessor_AccountUpdated(t *testing.T) {
	f := newWebhookFixture()
	artistID := uuid.New()
	account := &provider.ConnectAccount{
		ID:               "acct_1",
		ChargesEnabled:   true,
		PayoutsEnabled:   true,
		DetailsSubmitted: true,
		Metadata:         map[string]string{"artist_id": artistID.String()},
	}
	payload, sig := f.deliver(&provider.Event{ID: "evt_a", Type: "account.updated", Kind: provider.EventAccountUpdated, Account: account})
	f.accounts.On("ApplyState", mock.Anything, mock.MatchedBy(func(s *model.ArtistStripeAccount) bool {
		return s.StripeAccountID == "acct_1" && s.ArtistID == artistID &&
			s.Status == model.ConnectAccountActive && s.ChargesEnabled && s.PayoutsEnabled
	})).Return(true, nil)
	f.publisher.On("Publish", mock.Anything, mock.MatchedBy(func(e event.Event) bool {
		return e.Type == event.ArtistAccountUpdated
	})).Return(nil)
	f.events.On("MarkProcessed", mock.Anything, "evt_a").Return(nil)

	outcome, err := f.processor.Process(context.Background(), payload, sig)

	require.NoError(t, err)
	assert.Equal(t, usecase.OutcomeProcessed, outcome)
	f.accounts.AssertExpectations(t)
}

func TestWebhookProcessor_UnknownEvent(t *testing.T) {
	f := newWebhookFixture()
	payload, sig := f.deliver(&provider.Event{ID: "evt_u", Type: "charge.refunded", Kind: provider.EventUnknown})
	f.events.On("MarkProcessed", mock.Anything, "evt_u").Return(nil)

	outcome, err := f.processor.Process(context.Background(), payload, sig)

	require.NoError(t, err)
	assert.Equal(t, usecase.OutcomeIgnored, outcome)
	f.events.AssertExpectations(t)
}

func TestWebhookProcessor_RetriesFailedEvent(t *testing.T) {
	f := newWebhookFixture()
	ev := &provider.Event{ID: "evt_r", Type: "charge.refunded", Kind: provider.EventUnknown}
	payload := []byte(`{}`)
	f.gateway.On("ConstructEvent", payload, "sig").Return(ev, nil)
	f.events.On("GetEvent", mock.Anything, "evt_r").Return(&model.StripeWebhookEvent{StripeEventID: "evt_r", Status: model.WebhookStatusFailed}, nil)
	f.events.On("MarkProcessed", mock.Anything, "evt_r").Return(nil)

	_, err := f.processor.Process(context.Background(), payload, "sig")

	require.NoError(t, err)
	f.events.AssertNotCalled(t, "SaveEvent", mock.Anything, mock.Anything)
	f.events.AssertExpectations(t)
}
