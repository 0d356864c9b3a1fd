package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/bloghead/payments/internal/domain/model"
	domainRepo "github.com/bloghead/payments/internal/domain/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a read-only user repository
func NewUserRepository(db *gorm.DB) domainRepo.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

type artistProfileRepository struct {
	db *gorm.DB
}

// NewArtistProfileRepository creates a read-only artist profile repository
func NewArtistProfileRepository(db *gorm.DB) domainRepo.ArtistProfileRepository {
	return &artistProfileRepository{db: db}
}

func (r *artistProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ArtistProfile, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *artistProfileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.ArtistProfile, error) {
	return r.first(ctx, "user_id = ?", userID)
}

func (r *artistProfileRepository) first(ctx context.Context, query string, arg interface{}) (*model.ArtistProfile, error) {
	var profile model.ArtistProfile
	err := r.db.WithContext(ctx).Where(query, arg).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get artist profile: %w", err)
	}
	return &profile, nil
}

type customerRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewCustomerRepository creates a repository for stripe_customers
func NewCustomerRepository(db *gorm.DB, logger *zap.Logger) domainRepo.CustomerRepository {
	return &customerRepository{
		db:     db,
		logger: logger,
	}
}

func (r *customerRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.StripeCustomer, error) {
	var customer model.StripeCustomer
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get stripe customer: %w", err)
	}
	return &customer, nil
}

func (r *customerRepository) CreateIfAbsent(ctx context.Context, customer *model.StripeCustomer) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(customer)
	if result.Error != nil {
		r.logger.Error("Failed to save stripe customer",
			zap.String("user_id", customer.UserID.String()),
			zap.String("stripe_customer_id", customer.StripeCustomerID),
			zap.Error(result.Error))
		return false, fmt.Errorf("failed to save stripe customer: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}
