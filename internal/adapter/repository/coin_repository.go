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

// coinRepository implements the CoinRepository interface
type coinRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewCoinRepository creates a new coin repository instance
func NewCoinRepository(db *gorm.DB, logger *zap.Logger) domainRepo.CoinRepository {
	return &coinRepository{
		db:     db,
		logger: logger,
	}
}

func (r *coinRepository) CreateTransaction(ctx context.Context, txn *model.CoinTransaction) error {
	if err := r.db.WithContext(ctx).Create(txn).Error; err != nil {
		r.logger.Error("Failed to create coin transaction",
			zap.String("user_id", txn.UserID.String()),
			zap.String("session_id", txn.StripeCheckoutSessionID),
			zap.Error(err))
		return fmt.Errorf("failed to create coin transaction: %w", err)
	}
	return nil
}

func (r *coinRepository) GetBySessionID(ctx context.Context, sessionID string) (*model.CoinTransaction, error) {
	var txn model.CoinTransaction
	err := r.db.WithContext(ctx).Where("stripe_checkout_session_id = ?", sessionID).First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get coin transaction: %w", err)
	}
	return &txn, nil
}

func (r *coinRepository) ListPending(ctx context.Context, createdBefore time.Time, limit int) ([]*model.CoinTransaction, error) {
	var txns []*model.CoinTransaction
	query := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", model.CoinTransactionPending, createdBefore).
		Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&txns).Error; err != nil {
		return nil, fmt.Errorf("failed to list pending coin transactions: %w", err)
	}
	return txns, nil
}

// CompletePurchase completes the purchase and credits the balance atomically
func (r *coinRepository) CompletePurchase(ctx context.Context, purchase *model.CoinTransaction) (*domainRepo.CoinCredit, error) {
	sessionID := purchase.StripeCheckoutSessionID
	credit := &domainRepo.CoinCredit{}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		// Only the caller that flips pending -> completed may credit.
		result := tx.Model(&model.CoinTransaction{}).
			Where("stripe_checkout_session_id = ? AND status = ?", sessionID, model.CoinTransactionPending).
			Updates(map[string]interface{}{
				"status":       model.CoinTransactionCompleted,
				"completed_at": now,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to complete coin transaction: %w", result.Error)
		}

		var txn model.CoinTransaction
		err := tx.Where("stripe_checkout_session_id = ?", sessionID).First(&txn).Error
		switch {
		case err == nil && result.RowsAffected == 1:
		case err == nil:
			r.logger.Info("Coin purchase already completed (idempotency)",
				zap.String("session_id", sessionID),
				zap.String("user_id", txn.UserID.String()))
			credit.Balance, err = balanceOf(tx, txn.UserID)
			return err
		case errors.Is(err, gorm.ErrRecordNotFound):
			txn = *purchase
			txn.Type = model.CoinTransactionPurchase
			txn.Status = model.CoinTransactionCompleted
			txn.CompletedAt = &now
			inserted := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&txn)
			if inserted.Error != nil {
				return fmt.Errorf("failed to create coin transaction: %w", inserted.Error)
			}
			if inserted.RowsAffected == 0 {
				credit.Balance, err = balanceOf(tx, txn.UserID)
				return err
			}
			r.logger.Warn("Coin transaction missing for completed session, created from metadata",
				zap.String("session_id", sessionID),
				zap.String("user_id", txn.UserID.String()))
		default:
			return fmt.Errorf("failed to get coin transaction: %w", err)
		}

		row := model.UserCoins{UserID: txn.UserID, Balance: txn.AmountCoins, UpdatedAt: now}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"balance":    gorm.Expr("user_coins.balance + excluded.balance"),
				"updated_at": now,
			}),
		}).Create(&row).Error; err != nil {
			return fmt.Errorf("failed to credit coins: %w", err)
		}

		credit.Credited = true
		credit.Balance, err = balanceOf(tx, txn.UserID)
		return err
	})
	if err != nil {
		r.logger.Error("Failed to complete coin purchase",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return nil, err
	}
	return credit, nil
}

func (r *coinRepository) GetBalance(ctx context.Context, userID uuid.UUID) (int64, error) {
	balance, err := balanceOf(r.db.WithContext(ctx), userID)
	if err != nil {
		r.logger.Error("Failed to get coin balance",
			zap.String("user_id", userID.String()),
			zap.Error(err))
	}
	return balance, err
}

func balanceOf(db *gorm.DB, userID uuid.UUID) (int64, error) {
	var coins model.UserCoins
	err := db.Where("user_id = ?", userID).First(&coins).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get coin balance: %w", err)
	}
	return coins.Balance, nil
}
