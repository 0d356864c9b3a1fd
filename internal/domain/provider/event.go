package provider

import "time"

// EventKind is the closed set of webhook events the service reacts to.
type EventKind int

const (
	EventUnknown EventKind = iota
	EventPaymentIntentSucceeded
	EventPaymentIntentFailed
	EventCheckoutSessionCompleted
	EventCheckoutSessionAsyncPaymentSucceeded
	EventAccountUpdated
)

var eventKindByType = map[string]EventKind{
	"payment_intent.succeeded":                 EventPaymentIntentSucceeded,
	"payment_intent.payment_failed":            EventPaymentIntentFailed,
	"checkout.session.completed":               EventCheckoutSessionCompleted,
	"checkout.session.async_payment_succeeded": EventCheckoutSessionAsyncPaymentSucceeded,
	"account.updated":                          EventAccountUpdated,
}

// KindOf maps a processor event type string to its kind.
func KindOf(eventType string) EventKind {
	return eventKindByType[eventType]
}

func (k EventKind) String() string {
	switch k {
	case EventPaymentIntentSucceeded:
		return "payment_intent.succeeded"
	case EventPaymentIntentFailed:
		return "payment_intent.payment_failed"
	case EventCheckoutSessionCompleted:
		return "checkout.session.completed"
	case EventCheckoutSessionAsyncPaymentSucceeded:
		return "checkout.session.async_payment_succeeded"
	case EventAccountUpdated:
		return "account.updated"
	default:
		return "unknown"
	}
}

// Event is a verified webhook delivery. Exactly one of the typed objects is
// set, matching Kind; none for EventUnknown.
type Event struct {
	ID      string
	Type    string
	Kind    EventKind
	Created time.Time
	Payload []byte

	PaymentIntent   *PaymentIntent
	CheckoutSession *CheckoutSession
	Account         *ConnectAccount
}
