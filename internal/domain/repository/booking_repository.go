package repository

import (
	"context"
	"time"

	"github.com/bloghead/payments/internal/domain/model"
	"github.com/google/uuid"
)

// BookingRepository reads bookings and moves their payment status
type BookingRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error)
}

// PaymentRepository persists payments together with the booking state they
// drive. Every method that changes state runs in one database transaction.
type PaymentRepository interface {
	GetByIntentID(ctx context.Context, intentID string) (*model.Payment, error)
	GetLatestByBookingID(ctx context.Context, bookingID uuid.UUID) (*model.Payment, error)

	// ListPending returns payments still pending that were created before
	// the given time, oldest first.
	ListPending(ctx context.Context, createdBefore time.Time, limit int) ([]*model.Payment, error)

	// RecordCreated upserts the payment by intent id and sets the booking's
	// payment status to pending unless it is already paid.
	RecordCreated(ctx context.Context, payment *model.Payment) error

	// RecordSucceeded upserts the payment as succeeded and marks the booking
	// paid and confirmed. It reports whether the booking changed.
	RecordSucceeded(ctx context.Context, payment *model.Payment) (bool, error)

	// RecordFailed upserts the payment as failed unless it already
	// succeeded, and marks the booking failed unless it is paid. It reports
	// whether the booking changed.
	RecordFailed(ctx context.Context, payment *model.Payment) (bool, error)
}
