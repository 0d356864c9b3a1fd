package usecase

import (
	"context"

	domainErrors "github.com/bloghead/payments/internal/domain/errors"
	"github.com/bloghead/payments/internal/domain/model"
	"github.com/bloghead/payments/internal/domain/provider"
	domainRepo "github.com/bloghead/payments/internal/domain/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CustomerService maps platform users to processor customers
type CustomerService struct {
	customers domainRepo.CustomerRepository
	users     domainRepo.UserRepository
	gateway   provider.Gateway
	logger    *zap.Logger
}

// NewCustomerService creates a new customer service instance
func NewCustomerService(
	customers domainRepo.CustomerRepository,
	users domainRepo.UserRepository,
	gateway provider.Gateway,
	logger *zap.Logger,
) *CustomerService {
	return &CustomerService{
		customers: customers,
		users:     users,
		gateway:   gateway,
		logger:    logger,
	}
}

// EnsureCustomer returns the user's processor customer id, creating the
// customer on first use. Two concurrent first calls may both create a
// processor customer; only one mapping row survives.
func (s *CustomerService) EnsureCustomer(ctx context.Context, userID uuid.UUID) (string, error) {
	existing, err := s.customers.GetByUserID(ctx, userID)
	if err != nil {
		return "", domainErrors.Wrap(domainErrors.KindInternal, err, "load stripe customer")
	}
	if existing != nil {
		return existing.StripeCustomerID, nil
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", domainErrors.Wrap(domainErrors.KindInternal, err, "load user")
	}
	if user == nil {
		return "", domainErrors.New(domainErrors.KindUnauthenticated, "user not found")
	}

	created, err := s.gateway.CreateCustomer(ctx, &provider.CreateCustomerRequest{
		Email:    user.Email,
		Name:     user.Name,
		Metadata: map[string]string{"user_id": userID.String()},
	})
	if err != nil {
		return "", err
	}

	inserted, err := s.customers.CreateIfAbsent(ctx, &model.StripeCustomer{
		UserID:           userID,
		StripeCustomerID: created.ID,
	})
	if err != nil {
		return "", domainErrors.Wrap(domainErrors.KindInternal, err, "save stripe customer")
	}
	if inserted {
		s.logger.Info("Created stripe customer",
			zap.String("user_id", userID.String()),
			zap.String("stripe_customer_id", created.ID))
		return created.ID, nil
	}

	winner, err := s.customers.GetByUserID(ctx, userID)
	if err != nil {
		return "", domainErrors.Wrap(domainErrors.KindInternal, err, "reload stripe customer")
	}
	if winner == nil {
		return "", domainErrors.New(domainErrors.KindInternal, "stripe customer vanished after conflict")
	}

	s.logger.Warn("Concurrent customer creation, stripe customer orphaned",
		zap.String("user_id", userID.String()),
		zap.String("orphaned_customer_id", created.ID),
		zap.String("stripe_customer_id", winner.StripeCustomerID))
	return winner.StripeCustomerID, nil
}
