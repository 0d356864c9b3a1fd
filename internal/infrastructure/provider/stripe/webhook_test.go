package stripe

import (
	"testing"
	"time"

	domainErrors "github.com/bloghead/payments/internal/domain/errors"
	"github.com/bloghead/payments/internal/domain/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79/webhook"
	"go.uber.org/zap"
)

const testSecret = "whsec_test_secret"

func sign(t *testing.T, payload string) string {
	t.Helper()
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    testSecret,
		Timestamp: time.Now(),
	})
	return signed.Header
}

func TestConstructEvent_PaymentIntentSucceeded(t *testing.T) {
	payload := `{
		"id": "evt_1",
		"object": "event",
		"type": "payment_intent.succeeded",
		"created": 1700000000,
		"data": {"object": {
			"id": "pi_1",
			"object": "payment_intent",
			"amount": 10000,
			"application_fee_amount": 1000,
			"currency": "eur",
			"status": "succeeded",
			"customer": "cus_1",
			"metadata": {"booking_id": "b-1", "user_id": "u-1"}
		}}
	}`

	g := NewGateway("sk_test", testSecret, zap.NewNop())
	ev, err := g.ConstructEvent([]byte(payload), sign(t, payload))
	require.NoError(t, err)

	assert.Equal(t, "evt_1", ev.ID)
	assert.Equal(t, provider.EventPaymentIntentSucceeded, ev.Kind)
	assert.Equal(t, int64(1700000000), ev.Created.Unix())
	require.NotNil(t, ev.PaymentIntent)
	assert.Equal(t, "pi_1", ev.PaymentIntent.ID)
	assert.Equal(t, int64(10000), ev.PaymentIntent.Amount)
	assert.Equal(t, int64(1000), ev.PaymentIntent.ApplicationFeeAmount)
	assert.Equal(t, "cus_1", ev.PaymentIntent.CustomerID)
	assert.Equal(t, "b-1", ev.PaymentIntent.Metadata["booking_id"])
}

func TestConstructEvent_PaymentIntentFailed(t *testing.T) {
	payload := `{
		"id": "evt_2",
		"object": "event",
		"type": "payment_intent.payment_failed",
		"created": 1700000000,
		"data": {"object": {
			"id": "pi_2",
			"object": "payment_intent",
			"status": "requires_payment_method",
			"last_payment_error": {"code": "card_declined", "message": "Your card was declined."},
			"metadata": {"booking_id": "b-2"}
		}}
	}`

	ev, err := constructEvent([]byte(payload), sign(t, payload), testSecret)
	require.NoError(t, err)
	assert.Equal(t, provider.EventPaymentIntentFailed, ev.Kind)
	assert.Equal(t, "card_declined", ev.PaymentIntent.LastErrorCode)
	assert.Equal(t, "Your card was declined.", ev.PaymentIntent.FailureReason())
}

func TestConstructEvent_CheckoutSessionCompleted(t *testing.T) {
	payload := `{
		"id": "evt_3",
		"object": "event",
		"type": "checkout.session.completed",
		"created": 1700000000,
		"data": {"object": {
			"id": "cs_1",
			"object": "checkout.session",
			"payment_status": "paid",
			"status": "complete",
			"amount_total": 3999,
			"metadata": {"type": "coin_purchase", "package_id": "popular", "coins": "500", "user_id": "u-1"}
		}}
	}`

	ev, err := constructEvent([]byte(payload), sign(t, payload), testSecret)
	require.NoError(t, err)
	assert.Equal(t, provider.EventCheckoutSessionCompleted, ev.Kind)
	require.NotNil(t, ev.CheckoutSession)
	assert.True(t, ev.CheckoutSession.Paid())
	assert.Equal(t, "500", ev.CheckoutSession.Metadata["coins"])
}

func TestConstructEvent_CheckoutSessionAsyncPaymentSucceeded(t *testing.T) {
	payload := `{
		"id": "evt_3b",
		"object": "event",
		"type": "checkout.session.async_payment_succeeded",
		"created": 1700000000,
		"data": {"object": {
			"id": "cs_sepa",
			"object": "checkout.session",
			"payment_status": "paid",
			"status": "complete",
			"amount_total": 999,
			"metadata": {"type": "coin_purchase", "package_id": "starter", "coins": "100", "user_id": "u-1"}
		}}
	}`

	ev, err := constructEvent([]byte(payload), sign(t, payload), testSecret)
	require.NoError(t, err)
	assert.Equal(t, provider.EventCheckoutSessionAsyncPaymentSucceeded, ev.Kind)
	require.NotNil(t, ev.CheckoutSession)
	assert.Equal(t, "cs_sepa", ev.CheckoutSession.ID)
	assert.True(t, ev.CheckoutSession.Paid())
}

func TestConstructEvent_UndecodableObjectIsInternal(t *testing.T) {
	payload := `{
		"id": "evt_bad",
		"object": "event",
		"type": "payment_intent.succeeded",
		"created": 1700000000,
		"data": {"object": {"id": "pi_bad", "object": "payment_intent", "amount": "not-a-number"}}
	}`

	_, err := constructEvent([]byte(payload), sign(t, payload), testSecret)
	require.Error(t, err)
	var de *domainErrors.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domainErrors.KindInternal, de.Kind)
	assert.NotErrorIs(t, err, domainErrors.ErrInvalidSignature)
}

func TestConstructEvent_AccountUpdated(t *testing.T) {
	payload := `{
		"id": "evt_4",
		"object": "event",
		"type": "account.updated",
		"created": 1700000000,
		"data": {"object": {
			"id": "acct_1",
			"object": "account",
			"charges_enabled": true,
			"payouts_enabled": false,
			"details_submitted": true,
			"requirements": {"currently_due": ["external_account"]},
			"metadata": {"artist_id": "a-1"}
		}}
	}`

	ev, err := constructEvent([]byte(payload), sign(t, payload), testSecret)
	require.NoError(t, err)
	assert.Equal(t, provider.EventAccountUpdated, ev.Kind)
	require.NotNil(t, ev.Account)
	assert.True(t, ev.Account.ChargesEnabled)
	assert.Equal(t, []string{"external_account"}, ev.Account.CurrentlyDue)
	assert.Equal(t, "a-1", ev.Account.Metadata["artist_id"])
}

func TestConstructEvent_UnknownType(t *testing.T) {
	payload := `{"id": "evt_5", "object": "event", "type": "charge.refunded", "created": 1700000000, "data": {"object": {"id": "ch_1", "object": "charge"}}}`

	ev, err := constructEvent([]byte(payload), sign(t, payload), testSecret)
	require.NoError(t, err)
	assert.Equal(t, provider.EventUnknown, ev.Kind)
	assert.Equal(t, "charge.refunded", ev.Type)
	assert.Nil(t, ev.PaymentIntent)
}

func TestConstructEvent_InvalidSignature(t *testing.T) {
	payload := `{"id": "evt_6", "object": "event", "type": "payment_intent.succeeded", "data": {"object": {}}}`

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"garbage header", "t=1,v1=deadbeef"},
		{"signed with another secret", webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
			Payload:   []byte(payload),
			Secret:    "whsec_other",
			Timestamp: time.Now(),
		}).Header},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := constructEvent([]byte(payload), tt.header, testSecret)
			require.Error(t, err)
			assert.ErrorIs(t, err, domainErrors.ErrInvalidSignature)
		})
	}
}

func TestConstructEvent_TamperedPayload(t *testing.T) {
	payload := `{"id": "evt_7", "object": "event", "type": "charge.refunded", "data": {"object": {}}}`
	header := sign(t, payload)

	_, err := constructEvent([]byte(payload+" "), header, testSecret)
	assert.ErrorIs(t, err, domainErrors.ErrInvalidSignature)
}
