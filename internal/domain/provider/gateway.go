package provider

import (
	"context"
	"time"
)

// Gateway is the payment processor as seen by the use cases. Every call is
// made against one pinned API version.
type Gateway interface {
	CreateCustomer(ctx context.Context, req *CreateCustomerRequest) (*Customer, error)

	// CreatePaymentIntent creates a destination charge: the platform keeps
	// ApplicationFeeAmount and the rest is transferred to DestinationAccountID.
	CreatePaymentIntent(ctx context.Context, req *CreatePaymentIntentRequest) (*PaymentIntent, error)
	GetPaymentIntent(ctx context.Context, id string) (*PaymentIntent, error)

	CreateCheckoutSession(ctx context.Context, req *CreateCheckoutSessionRequest) (*CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, id string) (*CheckoutSession, error)

	CreateConnectAccount(ctx context.Context, req *CreateConnectAccountRequest) (*ConnectAccount, error)
	GetConnectAccount(ctx context.Context, id string) (*ConnectAccount, error)
	CreateAccountLink(ctx context.Context, accountID, refreshURL, returnURL string) (*AccountLink, error)

	// ConstructEvent verifies the signature header against the raw payload
	// and decodes the event. It never touches the network.
	ConstructEvent(payload []byte, signatureHeader string) (*Event, error)
}

// CreateCustomerRequest holds the data for a new processor customer
type CreateCustomerRequest struct {
	Email    string
	Name     string
	Metadata map[string]string
}

// Customer is a processor-side customer record
type Customer struct {
	ID    string
	Email string
}

// CreatePaymentIntentRequest describes a destination charge
type CreatePaymentIntentRequest struct {
	Amount               int64
	Currency             string
	CustomerID           string
	ApplicationFeeAmount int64
	DestinationAccountID string
	Description          string
	Metadata             map[string]string

	// PaymentMethodID confirms the intent immediately when set.
	PaymentMethodID string
	ReturnURL       string

	IdempotencyKey string
}

// PaymentIntent status values
const (
	IntentSucceeded             = "succeeded"
	IntentProcessing            = "processing"
	IntentRequiresAction        = "requires_action"
	IntentRequiresConfirmation  = "requires_confirmation"
	IntentRequiresPaymentMethod = "requires_payment_method"
	IntentCanceled              = "canceled"
)

// PaymentIntent is the processor's view of a charge
type PaymentIntent struct {
	ID                   string
	ClientSecret         string
	Status               string
	Amount               int64
	ApplicationFeeAmount int64
	Currency             string
	CustomerID           string
	Metadata             map[string]string
	LastErrorCode        string
	LastErrorMessage     string
}

// RequiresAction reports whether the customer must complete an extra step
// such as 3-D Secure.
func (p *PaymentIntent) RequiresAction() bool {
	return p.Status == IntentRequiresAction
}

// FailureReason returns the best available description of the last error.
func (p *PaymentIntent) FailureReason() string {
	switch {
	case p.LastErrorMessage != "":
		return p.LastErrorMessage
	case p.LastErrorCode != "":
		return p.LastErrorCode
	case p.Status == IntentCanceled:
		return "payment canceled"
	default:
		return "payment failed"
	}
}

// CreateCheckoutSessionRequest describes a one-item hosted checkout
type CreateCheckoutSessionRequest struct {
	CustomerID  string
	Currency    string
	ProductName string
	UnitAmount  int64
	SuccessURL  string
	CancelURL   string
	Metadata    map[string]string
}

// CheckoutSession is a hosted payment page
type CheckoutSession struct {
	ID            string
	URL           string
	Status        string
	PaymentStatus string
	AmountTotal   int64
	CustomerID    string
	Metadata      map[string]string
}

// Paid reports whether the session has collected the money.
func (s *CheckoutSession) Paid() bool {
	return s.PaymentStatus == "paid"
}

// CreateConnectAccountRequest describes a new Express account
type CreateConnectAccountRequest struct {
	Email    string
	Country  string
	Metadata map[string]string
}

// ConnectAccount is the processor's view of a connected account
type ConnectAccount struct {
	ID               string
	ChargesEnabled   bool
	PayoutsEnabled   bool
	DetailsSubmitted bool
	CurrentlyDue     []string
	Metadata         map[string]string
}

// AccountLink is a short-lived onboarding URL
type AccountLink struct {
	URL       string
	ExpiresAt time.Time
}

// ProviderError carries the processor's own error code and message.
type ProviderError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *ProviderError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}
