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

type bookingRepository struct {
	db *gorm.DB
}

// NewBookingRepository creates a booking repository
func NewBookingRepository(db *gorm.DB) domainRepo.BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	var booking model.Booking
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

type paymentRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewPaymentRepository creates a payment repository
func NewPaymentRepository(db *gorm.DB, logger *zap.Logger) domainRepo.PaymentRepository {
	return &paymentRepository{
		db:     db,
		logger: logger,
	}
}

var intentConflict = []clause.Column{{Name: "stripe_payment_intent_id"}}

func (r *paymentRepository) GetByIntentID(ctx context.Context, intentID string) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).Where("stripe_payment_intent_id = ?", intentID).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &payment, nil
}

func (r *paymentRepository) GetLatestByBookingID(ctx context.Context, bookingID uuid.UUID) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at DESC").
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &payment, nil
}

func (r *paymentRepository) ListPending(ctx context.Context, createdBefore time.Time, limit int) ([]*model.Payment, error) {
	var payments []*model.Payment
	query := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", model.PaymentStatusPending, createdBefore).
		Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("failed to list pending payments: %w", err)
	}
	return payments, nil
}

func (r *paymentRepository) RecordCreated(ctx context.Context, payment *model.Payment) error {
	payment.Status = model.PaymentStatusPending

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   intentConflict,
			DoUpdates: clause.AssignmentColumns([]string{"amount", "platform_fee", "artist_payout", "currency", "updated_at"}),
		}).Create(payment).Error; err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}

		if err := tx.Model(&model.Booking{}).
			Where("id = ? AND payment_status <> ?", payment.BookingID, model.BookingPaymentPaid).
			Update("payment_status", model.BookingPaymentPending).Error; err != nil {
			return fmt.Errorf("failed to update booking payment status: %w", err)
		}
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to record created payment",
			zap.String("booking_id", payment.BookingID.String()),
			zap.String("payment_intent_id", payment.StripePaymentIntentID),
			zap.Error(err))
	}
	return err
}

func (r *paymentRepository) RecordSucceeded(ctx context.Context, payment *model.Payment) (bool, error) {
	now := time.Now()
	payment.Status = model.PaymentStatusSucceeded
	payment.FailureReason = nil
	if payment.PaidAt == nil {
		payment.PaidAt = &now
	}

	var changed bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   intentConflict,
			DoUpdates: clause.AssignmentColumns([]string{"status", "paid_at", "failure_reason", "updated_at"}),
		}).Create(payment).Error; err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}

		result := tx.Model(&model.Booking{}).
			Where("id = ? AND payment_status <> ?", payment.BookingID, model.BookingPaymentPaid).
			Updates(map[string]interface{}{
				"payment_status": model.BookingPaymentPaid,
				"status":         model.BookingStatusConfirmed,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to mark booking paid: %w", result.Error)
		}
		changed = result.RowsAffected > 0
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to record payment success",
			zap.String("booking_id", payment.BookingID.String()),
			zap.String("payment_intent_id", payment.StripePaymentIntentID),
			zap.Error(err))
		return false, err
	}
	return changed, nil
}

func (r *paymentRepository) RecordFailed(ctx context.Context, payment *model.Payment) (bool, error) {
	payment.Status = model.PaymentStatusFailed
	payment.PaidAt = nil

	var changed bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// A succeeded payment is terminal.
		if err := tx.Clauses(clause.OnConflict{
			Columns:   intentConflict,
			DoUpdates: clause.AssignmentColumns([]string{"status", "failure_reason", "updated_at"}),
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Expr{SQL: "payments.status <> ?", Vars: []interface{}{model.PaymentStatusSucceeded}},
			}},
		}).Create(payment).Error; err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}

		result := tx.Model(&model.Booking{}).
			Where("id = ? AND payment_status NOT IN ?", payment.BookingID,
				[]model.BookingPaymentStatus{model.BookingPaymentPaid, model.BookingPaymentFailed}).
			Update("payment_status", model.BookingPaymentFailed)
		if result.Error != nil {
			return fmt.Errorf("failed to mark booking payment failed: %w", result.Error)
		}
		changed = result.RowsAffected > 0
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to record payment failure",
			zap.String("booking_id", payment.BookingID.String()),
			zap.String("payment_intent_id", payment.StripePaymentIntentID),
			zap.Error(err))
		return false, err
	}
	return changed, nil
}
