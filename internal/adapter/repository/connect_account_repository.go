package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bloghead/payments/internal/domain/model"
	domainRepo "github.com/bloghead/payments/internal/domain/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type connectAccountRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewConnectAccountRepository creates a repository for artist_stripe_accounts
func NewConnectAccountRepository(db *gorm.DB, logger *zap.Logger) domainRepo.ConnectAccountRepository {
	return &connectAccountRepository{
		db:     db,
		logger: logger,
	}
}

func (r *connectAccountRepository) GetByArtistID(ctx context.Context, artistID uuid.UUID) (*model.ArtistStripeAccount, error) {
	return firstConnectAccount(r.db.WithContext(ctx), "artist_id = ?", artistID)
}

func (r *connectAccountRepository) GetByStripeAccountID(ctx context.Context, stripeAccountID string) (*model.ArtistStripeAccount, error) {
	return firstConnectAccount(r.db.WithContext(ctx), "stripe_account_id = ?", stripeAccountID)
}

func firstConnectAccount(db *gorm.DB, query string, arg interface{}) (*model.ArtistStripeAccount, error) {
	var account model.ArtistStripeAccount
	err := db.Where(query, arg).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get connect account: %w", err)
	}
	return &account, nil
}

func (r *connectAccountRepository) CreateIfAbsent(ctx context.Context, account *model.ArtistStripeAccount) (bool, error) {
	if account.Status == "" {
		account.Status = model.ConnectAccountPending
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "artist_id"}},
			DoNothing: true,
		}).
		Create(account)
	if result.Error != nil {
		r.logger.Error("Failed to create connect account",
			zap.String("artist_id", account.ArtistID.String()),
			zap.String("stripe_account_id", account.StripeAccountID),
			zap.Error(result.Error))
		return false, fmt.Errorf("failed to create connect account: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *connectAccountRepository) SaveOnboardingLink(ctx context.Context, id uuid.UUID, url string, expiresAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&model.ArtistStripeAccount{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"onboarding_url":        url,
			"onboarding_expires_at": expiresAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to save onboarding link: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("connect account not found: %s", id)
	}
	return nil
}

func (r *connectAccountRepository) ApplyState(ctx context.Context, state *model.ArtistStripeAccount) (bool, error) {
	var changed bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := firstConnectAccount(tx, "stripe_account_id = ?", state.StripeAccountID)
		if err != nil {
			return err
		}

		if existing == nil {
			if state.ArtistID == uuid.Nil {
				return nil
			}
			row := *state
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to create connect account: %w", err)
			}
			changed = true
			return nil
		}

		if existing.Status == state.Status &&
			existing.ChargesEnabled == state.ChargesEnabled &&
			existing.PayoutsEnabled == state.PayoutsEnabled &&
			existing.DetailsSubmitted == state.DetailsSubmitted {
			return nil
		}

		if err := tx.Model(existing).Updates(map[string]interface{}{
			"status":            state.Status,
			"charges_enabled":   state.ChargesEnabled,
			"payouts_enabled":   state.PayoutsEnabled,
			"details_submitted": state.DetailsSubmitted,
		}).Error; err != nil {
			return fmt.Errorf("failed to update connect account: %w", err)
		}
		state.ArtistID = existing.ArtistID
		changed = true
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to apply connect account state",
			zap.String("stripe_account_id", state.StripeAccountID),
			zap.Error(err))
		return false, err
	}
	return changed, nil
}
