package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	domainErrors "github.com/bloghead/payments/internal/domain/errors"
	"github.com/bloghead/payments/internal/middleware/auth"
	"github.com/bloghead/payments/internal/usecase"
)

// ConnectOnboarding manages artists' Express accounts.
type ConnectOnboarding interface {
	StartOnboarding(ctx context.Context, userID uuid.UUID) (*usecase.OnboardingLink, error)
	GetStatus(ctx context.Context, userID uuid.UUID, refresh bool) (*usecase.ConnectStatus, error)
}

// ConnectHandler serves the artist payout onboarding endpoints.
type ConnectHandler struct {
	connect ConnectOnboarding
	logger  *zap.Logger
}

func NewConnectHandler(connect ConnectOnboarding, logger *zap.Logger) *ConnectHandler {
	return &ConnectHandler{connect: connect, logger: logger}
}

// StartOnboarding handles POST /api/v1/connect/onboarding
func (h *ConnectHandler) StartOnboarding(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}

	link, err := h.connect.StartOnboarding(c.Request().Context(), userID)
	if err != nil {
		h.logger.Warn("Connect onboarding failed",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return err
	}

	return c.JSON(http.StatusOK, link)
}

// GetStatus handles GET /api/v1/connect/status?refresh=true
func (h *ConnectHandler) GetStatus(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}

	refresh := false
	if raw := c.QueryParam("refresh"); raw != "" {
		refresh, err = strconv.ParseBool(raw)
		if err != nil {
			return domainErrors.Wrap(domainErrors.KindValidation, err, "invalid refresh parameter")
		}
	}

	status, err := h.connect.GetStatus(c.Request().Context(), userID, refresh)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, status)
}
