package http

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/bloghead/payments/internal/domain/catalog"
	"github.com/bloghead/payments/internal/middleware/auth"
	"github.com/bloghead/payments/internal/usecase"
)

// CoinService sells coin packages and reports balances.
type CoinService interface {
	ListPackages() []catalog.CoinPackage
	CreateCoinCheckout(ctx context.Context, packageID string, userID uuid.UUID) (*usecase.CoinCheckoutResult, error)
	GetBalance(ctx context.Context, userID uuid.UUID) (int64, error)
}

// CoinCheckoutRequest is the body of POST /api/v1/coins/checkout.
type CoinCheckoutRequest struct {
	PackageID string `json:"package_id" validate:"required,max=64"`
}

// CoinHandler serves the coin endpoints.
type CoinHandler struct {
	coins  CoinService
	logger *zap.Logger
}

func NewCoinHandler(coins CoinService, logger *zap.Logger) *CoinHandler {
	return &CoinHandler{coins: coins, logger: logger}
}

// ListPackages handles GET /api/v1/coins/packages
func (h *CoinHandler) ListPackages(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"currency": usecase.Currency,
		"packages": h.coins.ListPackages(),
	})
}

// CreateCheckout handles POST /api/v1/coins/checkout
func (h *CoinHandler) CreateCheckout(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}

	var req CoinCheckoutRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	result, err := h.coins.CreateCoinCheckout(c.Request().Context(), req.PackageID, userID)
	if err != nil {
		h.logger.Warn("Coin checkout failed",
			zap.String("user_id", userID.String()),
			zap.String("package_id", req.PackageID),
			zap.Error(err))
		return err
	}

	return c.JSON(http.StatusOK, result)
}

// GetBalance handles GET /api/v1/coins/balance
func (h *CoinHandler) GetBalance(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}

	balance, err := h.coins.GetBalance(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"balance": balance})
}
