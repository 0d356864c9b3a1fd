package stripe

import (
	"encoding/json"
	"fmt"
	"time"

	domainErrors "github.com/bloghead/payments/internal/domain/errors"
	"github.com/bloghead/payments/internal/domain/provider"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
)

// ConstructEvent verifies the Stripe-Signature header and decodes the event
// object for the kinds the service handles.
func (g *Gateway) ConstructEvent(payload []byte, signatureHeader string) (*provider.Event, error) {
	return constructEvent(payload, signatureHeader, g.webhookSecret)
}

func constructEvent(payload []byte, signatureHeader, secret string) (*provider.Event, error) {
	if signatureHeader == "" {
		return nil, domainErrors.New(domainErrors.KindInvalidSignature, "missing Stripe-Signature header")
	}

	// Events are decoded by hand below, so a dashboard API version that
	// differs from the SDK's is accepted.
	ev, err := webhook.ConstructEventWithOptions(payload, signatureHeader, secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, domainErrors.Wrap(domainErrors.KindInvalidSignature, err, "webhook verification failed")
	}

	out := &provider.Event{
		ID:      ev.ID,
		Type:    string(ev.Type),
		Kind:    provider.KindOf(string(ev.Type)),
		Created: time.Unix(ev.Created, 0),
		Payload: payload,
	}
	if ev.Data == nil {
		if out.Kind != provider.EventUnknown {
			return nil, domainErrors.New(domainErrors.KindInternal, "event without data object")
		}
		return out, nil
	}

	switch out.Kind {
	case provider.EventPaymentIntentSucceeded, provider.EventPaymentIntentFailed:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(ev.Data.Raw, &pi); err != nil {
			return nil, decodeError(out.Type, err)
		}
		out.PaymentIntent = toPaymentIntent(&pi)
	case provider.EventCheckoutSessionCompleted, provider.EventCheckoutSessionAsyncPaymentSucceeded:
		var s stripe.CheckoutSession
		if err := json.Unmarshal(ev.Data.Raw, &s); err != nil {
			return nil, decodeError(out.Type, err)
		}
		out.CheckoutSession = toCheckoutSession(&s)
	case provider.EventAccountUpdated:
		var a stripe.Account
		if err := json.Unmarshal(ev.Data.Raw, &a); err != nil {
			return nil, decodeError(out.Type, err)
		}
		out.Account = toConnectAccount(&a)
	}

	return out, nil
}

func decodeError(eventType string, err error) error {
	return domainErrors.Wrap(domainErrors.KindInternal, err, fmt.Sprintf("failed to decode %s object", eventType))
}
