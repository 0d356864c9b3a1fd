package usecase

import (
	"context"
	"fmt"
	"strconv"

	domainErrors "github.com/bloghead/payments/internal/domain/errors"
	"github.com/bloghead/payments/internal/domain/model"
	"github.com/bloghead/payments/internal/domain/pricing"
	"github.com/bloghead/payments/internal/domain/provider"
	domainRepo "github.com/bloghead/payments/internal/domain/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Currency is the only currency the marketplace charges in.
const Currency = "eur"

// BookingPaymentResult is returned to the payer to finish the payment client side
type BookingPaymentResult struct {
	PaymentIntentID string `json:"payment_intent_id"`
	ClientSecret    string `json:"client_secret"`
	Status          string `json:"status"`
	Amount          int64  `json:"amount"`
	PlatformFee     int64  `json:"platform_fee"`
	ArtistPayout    int64  `json:"artist_payout"`
	Currency        string `json:"currency"`
	RequiresAction  bool   `json:"requires_action"`
}

// BookingPaymentView is the payment state of a booking as seen by its owner
type BookingPaymentView struct {
	BookingID     uuid.UUID                  `json:"booking_id"`
	PaymentStatus model.BookingPaymentStatus `json:"payment_status"`
	Payment       *model.Payment             `json:"payment,omitempty"`
}

// BookingPaymentService charges bookings through destination charges
type BookingPaymentService struct {
	bookings   domainRepo.BookingRepository
	payments   domainRepo.PaymentRepository
	accounts   domainRepo.ConnectAccountRepository
	customers  *CustomerService
	gateway    provider.Gateway
	feePercent decimal.Decimal
	links      Links
	logger     *zap.Logger
}

// NewBookingPaymentService creates a new booking payment service instance
func NewBookingPaymentService(
	bookings domainRepo.BookingRepository,
	payments domainRepo.PaymentRepository,
	accounts domainRepo.ConnectAccountRepository,
	customers *CustomerService,
	gateway provider.Gateway,
	feePercent decimal.Decimal,
	links Links,
	logger *zap.Logger,
) *BookingPaymentService {
	return &BookingPaymentService{
		bookings:   bookings,
		payments:   payments,
		accounts:   accounts,
		customers:  customers,
		gateway:    gateway,
		feePercent: feePercent,
		links:      links,
		logger:     logger,
	}
}

// CreateBookingPayment creates a PaymentIntent for the booking. The booking
// only becomes paid once the processor confirms it through a webhook.
func (s *BookingPaymentService) CreateBookingPayment(ctx context.Context, bookingID, payerID uuid.UUID, paymentMethodID string) (*BookingPaymentResult, error) {
	booking, err := s.loadOwnedBooking(ctx, bookingID, payerID)
	if err != nil {
		return nil, err
	}
	if booking.PaymentStatus == model.BookingPaymentPaid {
		return nil, domainErrors.New(domainErrors.KindBookingAlreadyPaid, booking.ID.String())
	}

	account, err := s.accounts.GetByArtistID(ctx, booking.ArtistID)
	if err != nil {
		return nil, domainErrors.Wrap(domainErrors.KindInternal, err, "load artist account")
	}
	if account == nil || !account.ChargesEnabled {
		s.logger.Info("Artist cannot receive payments yet",
			zap.String("booking_id", booking.ID.String()),
			zap.String("artist_id", booking.ArtistID.String()))
		return nil, domainErrors.New(domainErrors.KindArtistNotPayable, booking.ArtistID.String())
	}

	split, err := pricing.SplitBookingTotal(booking.TotalPrice, s.feePercent)
	if err != nil {
		return nil, domainErrors.Wrap(domainErrors.KindValidation, err, "booking total")
	}

	customerID, err := s.customers.EnsureCustomer(ctx, payerID)
	if err != nil {
		return nil, err
	}

	req := &provider.CreatePaymentIntentRequest{
		Amount:               split.TotalAmount,
		Currency:             Currency,
		CustomerID:           customerID,
		ApplicationFeeAmount: split.PlatformFee,
		DestinationAccountID: account.StripeAccountID,
		Description:          fmt.Sprintf("Booking %s", booking.ID),
		Metadata: map[string]string{
			"booking_id":    booking.ID.String(),
			"user_id":       payerID.String(),
			"artist_id":     booking.ArtistID.String(),
			"platform_fee":  strconv.FormatInt(split.PlatformFee, 10),
			"artist_payout": strconv.FormatInt(split.ArtistPayout, 10),
		},
		PaymentMethodID: paymentMethodID,
		IdempotencyKey:  fmt.Sprintf("booking-%s-%s", booking.ID, uuid.NewString()),
	}
	if paymentMethodID != "" {
		req.ReturnURL = s.links.BookingReturn(booking.ID)
	}

	intent, err := s.gateway.CreatePaymentIntent(ctx, req)
	if err != nil {
		return nil, err
	}

	payment := &model.Payment{
		BookingID:             booking.ID,
		StripePaymentIntentID: intent.ID,
		Amount:                split.TotalAmount,
		PlatformFee:           split.PlatformFee,
		ArtistPayout:          split.ArtistPayout,
		Currency:              Currency,
	}
	if err := s.payments.RecordCreated(ctx, payment); err != nil {
		s.logger.Error("Payment intent created but not recorded, left for webhook reconciliation",
			zap.String("booking_id", booking.ID.String()),
			zap.String("payment_intent_id", intent.ID),
			zap.Error(err))
		return nil, domainErrors.Wrap(domainErrors.KindInternal, err, "record payment")
	}

	s.logger.Info("Booking payment created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("payment_intent_id", intent.ID),
		zap.Int64("amount", split.TotalAmount),
		zap.Int64("platform_fee", split.PlatformFee),
		zap.String("status", intent.Status))

	return &BookingPaymentResult{
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		Status:          intent.Status,
		Amount:          split.TotalAmount,
		PlatformFee:     split.PlatformFee,
		ArtistPayout:    split.ArtistPayout,
		Currency:        Currency,
		RequiresAction:  intent.RequiresAction(),
	}, nil
}

// GetBookingPayment returns the latest payment of a booking owned by userID
func (s *BookingPaymentService) GetBookingPayment(ctx context.Context, bookingID, userID uuid.UUID) (*BookingPaymentView, error) {
	booking, err := s.loadOwnedBooking(ctx, bookingID, userID)
	if err != nil {
		return nil, err
	}

	payment, err := s.payments.GetLatestByBookingID(ctx, booking.ID)
	if err != nil {
		return nil, domainErrors.Wrap(domainErrors.KindInternal, err, "load payment")
	}

	return &BookingPaymentView{
		BookingID:     booking.ID,
		PaymentStatus: booking.PaymentStatus,
		Payment:       payment,
	}, nil
}

func (s *BookingPaymentService) loadOwnedBooking(ctx context.Context, bookingID, userID uuid.UUID) (*model.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, domainErrors.Wrap(domainErrors.KindInternal, err, "load booking")
	}
	if booking == nil {
		return nil, domainErrors.New(domainErrors.KindBookingNotFound, bookingID.String())
	}
	if booking.UserID != userID {
		return nil, domainErrors.New(domainErrors.KindBookingForbidden, bookingID.String())
	}
	return booking, nil
}
