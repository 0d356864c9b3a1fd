package usecase_test

import (
	"context"
	"time"

	"github.com/bloghead/payments/internal/domain/event"
	"github.com/bloghead/payments/internal/domain/model"
	"github.com/bloghead/payments/internal/domain/provider"
	domainRepo "github.com/bloghead/payments/internal/domain/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockGateway is a mock implementation of provider.Gateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateCustomer(ctx context.Context, req *provider.CreateCustomerRequest) (*provider.Customer, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.Customer), args.Error(1)
}

func (m *MockGateway) CreatePaymentIntent(ctx context.Context, req *provider.CreatePaymentIntentRequest) (*provider.PaymentIntent, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.PaymentIntent), args.Error(1)
}

func (m *MockGateway) GetPaymentIntent(ctx context.Context, id string) (*provider.PaymentIntent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.PaymentIntent), args.Error(1)
}

func (m *MockGateway) CreateCheckoutSession(ctx context.Context, req *provider.CreateCheckoutSessionRequest) (*provider.CheckoutSession, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.CheckoutSession), args.Error(1)
}

func (m *MockGateway) GetCheckoutSession(ctx context.Context, id string) (*provider.CheckoutSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.CheckoutSession), args.Error(1)
}

func (m *MockGateway) CreateConnectAccount(ctx context.Context, req *provider.CreateConnectAccountRequest) (*provider.ConnectAccount, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.ConnectAccount), args.Error(1)
}

func (m *MockGateway) GetConnectAccount(ctx context.Context, id string) (*provider.ConnectAccount, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.ConnectAccount), args.Error(1)
}

func (m *MockGateway) CreateAccountLink(ctx context.Context, accountID, refreshURL, returnURL string) (*provider.AccountLink, error) {
	args := m.Called(ctx, accountID, refreshURL, returnURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.AccountLink), args.Error(1)
}

func (m *MockGateway) ConstructEvent(payload []byte, signatureHeader string) (*provider.Event, error) {
	args := m.Called(payload, signatureHeader)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.Event), args.Error(1)
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// MockArtistProfileRepository is a mock implementation of ArtistProfileRepository
type MockArtistProfileRepository struct {
	mock.Mock
}

func (m *MockArtistProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ArtistProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ArtistProfile), args.Error(1)
}

func (m *MockArtistProfileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.ArtistProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ArtistProfile), args.Error(1)
}

// MockCustomerRepository is a mock implementation of CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.StripeCustomer, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StripeCustomer), args.Error(1)
}

func (m *MockCustomerRepository) CreateIfAbsent(ctx context.Context, customer *model.StripeCustomer) (bool, error) {
	args := m.Called(ctx, customer)
	return args.Bool(0), args.Error(1)
}

// MockBookingRepository is a mock implementation of BookingRepository
type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Booking), args.Error(1)
}

// MockPaymentRepository is a mock implementation of PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) GetByIntentID(ctx context.Context, intentID string) (*model.Payment, error) {
	args := m.Called(ctx, intentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *MockPaymentRepository) GetLatestByBookingID(ctx context.Context, bookingID uuid.UUID) (*model.Payment, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *MockPaymentRepository) ListPending(ctx context.Context, createdBefore time.Time, limit int) ([]*model.Payment, error) {
	args := m.Called(ctx, createdBefore, limit)
	return args.Get(0).([]*model.Payment), args.Error(1)
}

func (m *MockPaymentRepository) RecordCreated(ctx context.Context, payment *model.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) RecordSucceeded(ctx context.Context, payment *model.Payment) (bool, error) {
	args := m.Called(ctx, payment)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaymentRepository) RecordFailed(ctx context.Context, payment *model.Payment) (bool, error) {
	args := m.Called(ctx, payment)
	return args.Bool(0), args.Error(1)
}

// MockCoinRepository is a mock implementation of CoinRepository
type MockCoinRepository struct {
	mock.Mock
}

func (m *MockCoinRepository) CreateTransaction(ctx context.Context, tx *model.CoinTransaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockCoinRepository) GetBySessionID(ctx context.Context, sessionID string) (*model.CoinTransaction, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CoinTransaction), args.Error(1)
}

func (m *MockCoinRepository) ListPending(ctx context.Context, createdBefore time.Time, limit int) ([]*model.CoinTransaction, error) {
	args := m.Called(ctx, createdBefore, limit)
	return args.Get(0).([]*model.CoinTransaction), args.Error(1)
}

func (m *MockCoinRepository) CompletePurchase(ctx context.Context, purchase *model.CoinTransaction) (*domainRepo.CoinCredit, error) {
	args := m.Called(ctx, purchase)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainRepo.CoinCredit), args.Error(1)
}

func (m *MockCoinRepository) GetBalance(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// MockConnectAccountRepository is a mock implementation of ConnectAccountRepository
type MockConnectAccountRepository struct {
	mock.Mock
}

func (m *MockConnectAccountRepository) GetByArtistID(ctx context.Context, artistID uuid.UUID) (*model.ArtistStripeAccount, error) {
	args := m.Called(ctx, artistID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ArtistStripeAccount), args.Error(1)
}

func (m *MockConnectAccountRepository) GetByStripeAccountID(ctx context.Context, stripeAccountID string) (*model.ArtistStripeAccount, error) {
	args := m.Called(ctx, stripeAccountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ArtistStripeAccount), args.Error(1)
}

func (m *MockConnectAccountRepository) CreateIfAbsent(ctx context.Context, account *model.ArtistStripeAccount) (bool, error) {
	args := m.Called(ctx, account)
	return args.Bool(0), args.Error(1)
}

func (m *MockConnectAccountRepository) SaveOnboardingLink(ctx context.Context, id uuid.UUID, url string, expiresAt time.Time) error {
	args := m.Called(ctx, id, url, expiresAt)
	return args.Error(0)
}

func (m *MockConnectAccountRepository) ApplyState(ctx context.Context, state *model.ArtistStripeAccount) (bool, error) {
	args := m.Called(ctx, state)
	return args.Bool(0), args.Error(1)
}

// MockWebhookEventRepository is a mock implementation of WebhookEventRepository
type MockWebhookEventRepository struct {
	mock.Mock
}

func (m *MockWebhookEventRepository) SaveEvent(ctx context.Context, e *model.StripeWebhookEvent) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockWebhookEventRepository) GetEvent(ctx context.Context, eventID string) (*model.StripeWebhookEvent, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StripeWebhookEvent), args.Error(1)
}

func (m *MockWebhookEventRepository) MarkProcessed(ctx context.Context, eventID string) error {
	args := m.Called(ctx, eventID)
	return args.Error(0)
}

func (m *MockWebhookEventRepository) MarkFailed(ctx context.Context, eventID string, cause error) error {
	args := m.Called(ctx, eventID, cause)
	return args.Error(0)
}

func (m *MockWebhookEventRepository) ListFailed(ctx context.Context, limit int) ([]*model.StripeWebhookEvent, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]*model.StripeWebhookEvent), args.Error(1)
}

// MockPublisher is a mock implementation of event.Publisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, e event.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}
