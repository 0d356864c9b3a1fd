package stripe

import (
	"context"
	"errors"
	"time"

	domainErrors "github.com/bloghead/payments/internal/domain/errors"
	"github.com/bloghead/payments/internal/domain/provider"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/account"
	"github.com/stripe/stripe-go/v79/accountlink"
	"github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/customer"
	"github.com/stripe/stripe-go/v79/paymentintent"
	"go.uber.org/zap"
)

// Gateway implements provider.Gateway on the Stripe API
type Gateway struct {
	webhookSecret string
	logger        *zap.Logger
}

var _ provider.Gateway = (*Gateway)(nil)

// NewGateway creates a Stripe gateway. The secret key is installed globally
// on the SDK, so every call uses the API version pinned by the SDK.
func NewGateway(secretKey, webhookSecret string, logger *zap.Logger) *Gateway {
	stripe.Key = secretKey
	return &Gateway{
		webhookSecret: webhookSecret,
		logger:        logger,
	}
}

// CreateCustomer creates a customer tagged with the platform user id
func (g *Gateway) CreateCustomer(ctx context.Context, req *provider.CreateCustomerRequest) (*provider.Customer, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(req.Email),
	}
	if req.Name != "" {
		params.Name = stripe.String(req.Name)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx

	c, err := customer.New(params)
	if err != nil {
		return nil, g.upstream("create customer", err)
	}
	return &provider.Customer{ID: c.ID, Email: c.Email}, nil
}

// CreatePaymentIntent creates a destination charge
func (g *Gateway) CreatePaymentIntent(ctx context.Context, req *provider.CreatePaymentIntentRequest) (*provider.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount),
		Currency: stripe.String(req.Currency),
		Customer: stripe.String(req.CustomerID),
		TransferData: &stripe.PaymentIntentTransferDataParams{
			Destination: stripe.String(req.DestinationAccountID),
		},
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if req.ApplicationFeeAmount > 0 {
		params.ApplicationFeeAmount = stripe.Int64(req.ApplicationFeeAmount)
	}
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	if req.PaymentMethodID != "" {
		params.PaymentMethod = stripe.String(req.PaymentMethodID)
		params.Confirm = stripe.Bool(true)
		if req.ReturnURL != "" {
			params.ReturnURL = stripe.String(req.ReturnURL)
		}
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	if req.IdempotencyKey != "" {
		params.IdempotencyKey = stripe.String(req.IdempotencyKey)
	}
	params.Context = ctx

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, g.upstream("create payment intent", err)
	}

	g.logger.Info("Created payment intent",
		zap.String("payment_intent_id", pi.ID),
		zap.String("status", string(pi.Status)),
		zap.Int64("amount", pi.Amount))

	return toPaymentIntent(pi), nil
}

// GetPaymentIntent fetches a payment intent
func (g *Gateway) GetPaymentIntent(ctx context.Context, id string) (*provider.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := paymentintent.Get(id, params)
	if err != nil {
		return nil, g.upstream("get payment intent", err)
	}
	return toPaymentIntent(pi), nil
}

// CreateCheckoutSession creates a hosted payment-mode checkout with one
// inline-priced line item
func (g *Gateway) CreateCheckoutSession(ctx context.Context, req *provider.CreateCheckoutSessionRequest) (*provider.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(req.Currency),
					UnitAmount: stripe.Int64(req.UnitAmount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.ProductName),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
	}
	if req.CustomerID != "" {
		params.Customer = stripe.String(req.CustomerID)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx

	s, err := session.New(params)
	if err != nil {
		return nil, g.upstream("create checkout session", err)
	}

	g.logger.Info("Created checkout session",
		zap.String("session_id", s.ID),
		zap.Int64("amount_total", s.AmountTotal))

	return toCheckoutSession(s), nil
}

// GetCheckoutSession fetches a checkout session
func (g *Gateway) GetCheckoutSession(ctx context.Context, id string) (*provider.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := session.Get(id, params)
	if err != nil {
		return nil, g.upstream("get checkout session", err)
	}
	return toCheckoutSession(s), nil
}

// CreateConnectAccount creates an Express account able to take card
// payments and receive transfers
func (g *Gateway) CreateConnectAccount(ctx context.Context, req *provider.CreateConnectAccountRequest) (*provider.ConnectAccount, error) {
	params := &stripe.AccountParams{
		Type:    stripe.String(string(stripe.AccountTypeExpress)),
		Country: stripe.String(req.Country),
		Capabilities: &stripe.AccountCapabilitiesParams{
			CardPayments: &stripe.AccountCapabilitiesCardPaymentsParams{
				Requested: stripe.Bool(true),
			},
			Transfers: &stripe.AccountCapabilitiesTransfersParams{
				Requested: stripe.Bool(true),
			},
		},
	}
	if req.Email != "" {
		params.Email = stripe.String(req.Email)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx

	a, err := account.New(params)
	if err != nil {
		return nil, g.upstream("create connect account", err)
	}

	g.logger.Info("Created connect account", zap.String("stripe_account_id", a.ID))
	return toConnectAccount(a), nil
}

// GetConnectAccount fetches a connected account
func (g *Gateway) GetConnectAccount(ctx context.Context, id string) (*provider.ConnectAccount, error) {
	params := &stripe.AccountParams{}
	params.Context = ctx

	a, err := account.GetByID(id, params)
	if err != nil {
		return nil, g.upstream("get connect account", err)
	}
	return toConnectAccount(a), nil
}

// CreateAccountLink creates an onboarding link for a connected account
func (g *Gateway) CreateAccountLink(ctx context.Context, accountID, refreshURL, returnURL string) (*provider.AccountLink, error) {
	params := &stripe.AccountLinkParams{
		Account:    stripe.String(accountID),
		RefreshURL: stripe.String(refreshURL),
		ReturnURL:  stripe.String(returnURL),
		Type:       stripe.String(string(stripe.AccountLinkTypeAccountOnboarding)),
	}
	params.Context = ctx

	link, err := accountlink.New(params)
	if err != nil {
		return nil, g.upstream("create account link", err)
	}
	return &provider.AccountLink{
		URL:       link.URL,
		ExpiresAt: time.Unix(link.ExpiresAt, 0),
	}, nil
}

// upstream wraps an SDK error into the Upstream kind, keeping Stripe's code
// and message.
func (g *Gateway) upstream(op string, err error) error {
	perr := &provider.ProviderError{Code: "api_error", Message: err.Error()}

	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		perr.Code = string(stripeErr.Code)
		if perr.Code == "" {
			perr.Code = string(stripeErr.Type)
		}
		perr.Message = stripeErr.Msg
	}

	g.logger.Error("Stripe request failed",
		zap.String("operation", op),
		zap.String("stripe_code", perr.Code),
		zap.String("stripe_message", perr.Message))

	return domainErrors.Wrap(domainErrors.KindUpstream, perr, op)
}

func toPaymentIntent(pi *stripe.PaymentIntent) *provider.PaymentIntent {
	out := &provider.PaymentIntent{
		ID:                   pi.ID,
		ClientSecret:         pi.ClientSecret,
		Status:               string(pi.Status),
		Amount:               pi.Amount,
		ApplicationFeeAmount: pi.ApplicationFeeAmount,
		Currency:             string(pi.Currency),
		Metadata:             pi.Metadata,
	}
	if pi.Customer != nil {
		out.CustomerID = pi.Customer.ID
	}
	if pi.LastPaymentError != nil {
		out.LastErrorCode = string(pi.LastPaymentError.Code)
		out.LastErrorMessage = pi.LastPaymentError.Msg
	}
	return out
}

func toCheckoutSession(s *stripe.CheckoutSession) *provider.CheckoutSession {
	out := &provider.CheckoutSession{
		ID:            s.ID,
		URL:           s.URL,
		Status:        string(s.Status),
		PaymentStatus: string(s.PaymentStatus),
		AmountTotal:   s.AmountTotal,
		Metadata:      s.Metadata,
	}
	if s.Customer != nil {
		out.CustomerID = s.Customer.ID
	}
	return out
}

func toConnectAccount(a *stripe.Account) *provider.ConnectAccount {
	out := &provider.ConnectAccount{
		ID:               a.ID,
		ChargesEnabled:   a.ChargesEnabled,
		PayoutsEnabled:   a.PayoutsEnabled,
		DetailsSubmitted: a.DetailsSubmitted,
		Metadata:         a.Metadata,
	}
	if a.Requirements != nil {
		out.CurrentlyDue = a.Requirements.CurrentlyDue
	}
	return out
}
