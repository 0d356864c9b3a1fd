package http

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/bloghead/payments/internal/middleware/auth"
	"github.com/bloghead/payments/internal/usecase"
)

// BookingPayments starts and reports booking payments.
type BookingPayments interface {
	CreateBookingPayment(ctx context.Context, bookingID, payerID uuid.UUID, paymentMethodID string) (*usecase.BookingPaymentResult, error)
	GetBookingPayment(ctx context.Context, bookingID, userID uuid.UUID) (*usecase.BookingPaymentView, error)
}

// CreateBookingPaymentRequest is the body of POST /api/v1/bookings/:id/payment.
// The payment method is optional; without it the client confirms with
// Stripe Elements.
type CreateBookingPaymentRequest struct {
	PaymentMethodID string `json:"payment_method_id" validate:"omitempty,startswith=pm_,max=255"`
}

// BookingPaymentHandler serves the booking payment endpoints.
type BookingPaymentHandler struct {
	payments BookingPayments
	logger   *zap.Logger
}

func NewBookingPaymentHandler(payments BookingPayments, logger *zap.Logger) *BookingPaymentHandler {
	return &BookingPaymentHandler{payments: payments, logger: logger}
}

// CreatePayment handles POST /api/v1/bookings/:id/payment
func (h *BookingPaymentHandler) CreatePayment(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	bookingID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	var req CreateBookingPaymentRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	result, err := h.payments.CreateBookingPayment(c.Request().Context(), bookingID, userID, req.PaymentMethodID)
	if err != nil {
		h.logger.Warn("Booking payment failed",
			zap.String("booking_id", bookingID.String()),
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return err
	}

	return c.JSON(http.StatusOK, result)
}

// GetPayment handles GET /api/v1/bookings/:id/payment
func (h *BookingPaymentHandler) GetPayment(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	bookingID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	view, err := h.payments.GetBookingPayment(c.Request().Context(), bookingID, userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, view)
}
