package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BookingPaymentStatus moves unpaid -> pending -> paid | failed.
type BookingPaymentStatus string

const (
	BookingPaymentUnpaid  BookingPaymentStatus = "unpaid"
	BookingPaymentPending BookingPaymentStatus = "pending"
	BookingPaymentPaid    BookingPaymentStatus = "paid"
	BookingPaymentFailed  BookingPaymentStatus = "failed"
)

// BookingStatus is the organizer/artist side of the booking lifecycle.
type BookingStatus string

const (
	BookingStatusRequested BookingStatus = "requested"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

// Booking is a request by a user to book an artist.
type Booking struct {
	ID            uuid.UUID            `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID            `gorm:"type:uuid;not null;index" json:"user_id"`
	ArtistID      uuid.UUID            `gorm:"type:uuid;not null;index" json:"artist_id"`
	EventDate     *time.Time           `json:"event_date,omitempty"`
	TotalPrice    decimal.Decimal      `gorm:"type:numeric(10,2);not null" json:"total_price"`
	PaymentStatus BookingPaymentStatus `gorm:"size:20;not null;default:'unpaid'" json:"payment_status"`
	Status        BookingStatus        `gorm:"size:20;not null;default:'requested'" json:"status"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Booking) TableName() string {
	return "bookings"
}
