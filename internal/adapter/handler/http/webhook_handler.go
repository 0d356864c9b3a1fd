package http

import (
	"context"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	domainErrors "github.com/bloghead/payments/internal/domain/errors"
	"github.com/bloghead/payments/internal/usecase"
)

// WebhookProcessor applies verified Stripe deliveries.
type WebhookProcessor interface {
	Process(ctx context.Context, payload []byte, signature string) (usecase.Outcome, error)
}

// WebhookHandler receives Stripe webhook deliveries.
type WebhookHandler struct {
	processor WebhookProcessor
	logger    *zap.Logger
}

func NewWebhookHandler(processor WebhookProcessor, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{processor: processor, logger: logger}
}

// HandleStripeWebhook handles POST /webhook/stripe. The raw body must reach
// signature verification untouched. Errors other than a bad signature answer
// 500 so Stripe redelivers.
func (h *WebhookHandler) HandleStripeWebhook(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		h.logger.Error("Error reading webhook body", zap.Error(err))
		return domainErrors.Wrap(domainErrors.KindValidation, err, "unreadable body")
	}

	sig := c.Request().Header.Get("Stripe-Signature")

	outcome, err := h.processor.Process(c.Request().Context(), body, sig)
	if err != nil {
		if domainErrors.KindOf(err) == domainErrors.KindInvalidSignature {
			h.logger.Warn("Webhook signature verification failed", zap.Error(err))
		}
		return err
	}

	h.logger.Debug("Webhook acknowledged", zap.String("outcome", string(outcome)))
	return c.JSON(http.StatusOK, echo.Map{"received": true})
}
