package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bloghead/payments/internal/domain/model"
)

// Migrate creates or updates every table the payments service touches.
// users, artist_profiles and bookings belong to the wider platform; they are
// migrated here so a local database is usable on its own.
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	logger.Info("Running database migrations...")

	if db.Dialector.Name() == "postgres" {
		if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`).Error; err != nil {
			logger.Error("Failed to create extensions", zap.Error(err))
			return err
		}
	}

	err := db.AutoMigrate(
		&model.User{},
		&model.ArtistProfile{},
		&model.Booking{},
		&model.Payment{},
		&model.StripeCustomer{},
		&model.ArtistStripeAccount{},
		&model.CoinTransaction{},
		&model.UserCoins{},
		&model.StripeWebhookEvent{},
	)
	if err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return err
	}

	if err := createCustomIndexes(db); err != nil {
		logger.Error("Failed to create custom indexes", zap.Error(err))
		return err
	}

	logger.Info("Database migrations completed successfully")
	return nil
}

// createCustomIndexes adds the partial indexes the reconcile scans rely on.
func createCustomIndexes(db *gorm.DB) error {
	statements := []string{
		`CREATE INDEX IF NOT EXISTS idx_payments_pending ON payments (created_at) WHERE status = 'pending'`,
		`CREATE INDEX IF NOT EXISTS idx_coin_transactions_pending ON coin_transactions (created_at) WHERE status = 'pending'`,
		`CREATE INDEX IF NOT EXISTS idx_webhook_events_unprocessed ON stripe_webhook_events (created_at) WHERE status IN ('pending', 'failed')`,
	}
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
