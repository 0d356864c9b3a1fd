package usecase

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bloghead/payments/internal/domain/catalog"
	domainErrors "github.com/bloghead/payments/internal/domain/errors"
	"github.com/bloghead/payments/internal/domain/model"
	"github.com/bloghead/payments/internal/domain/provider"
	domainRepo "github.com/bloghead/payments/internal/domain/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CoinPurchaseType marks checkout sessions that buy coins.
const CoinPurchaseType = "coin_purchase"

// CoinCheckoutResult points the buyer at the hosted checkout page
type CoinCheckoutResult struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// CoinCheckoutService sells coin packages through hosted checkout
type CoinCheckoutService struct {
	coins     domainRepo.CoinRepository
	customers *CustomerService
	gateway   provider.Gateway
	catalog   *catalog.Catalog
	links     Links
	logger    *zap.Logger
}

// NewCoinCheckoutService creates a new coin checkout service instance
func NewCoinCheckoutService(
	coins domainRepo.CoinRepository,
	customers *CustomerService,
	gateway provider.Gateway,
	cat *catalog.Catalog,
	links Links,
	logger *zap.Logger,
) *CoinCheckoutService {
	if cat == nil {
		cat = catalog.Default()
	}
	return &CoinCheckoutService{
		coins:     coins,
		customers: customers,
		gateway:   gateway,
		catalog:   cat,
		links:     links,
		logger:    logger,
	}
}

// ListPackages returns the purchasable coin packages
func (s *CoinCheckoutService) ListPackages() []catalog.CoinPackage {
	return s.catalog.List()
}

// CreateCoinCheckout opens a checkout session for packageID and records a
// pending coin transaction
func (s *CoinCheckoutService) CreateCoinCheckout(ctx context.Context, packageID string, userID uuid.UUID) (*CoinCheckoutResult, error) {
	pkg, ok := s.catalog.Lookup(packageID)
	if !ok {
		return nil, domainErrors.New(domainErrors.KindInvalidPackage, packageID)
	}

	customerID, err := s.customers.EnsureCustomer(ctx, userID)
	if err != nil {
		return nil, err
	}

	sess, err := s.gateway.CreateCheckoutSession(ctx, &provider.CreateCheckoutSessionRequest{
		CustomerID:  customerID,
		Currency:    s.catalog.Currency,
		ProductName: fmt.Sprintf("%d Coins (%s)", pkg.Coins, pkg.Name),
		UnitAmount:  pkg.PriceCents,
		SuccessURL:  s.links.CoinSuccess(),
		CancelURL:   s.links.CoinCancel(),
		Metadata: map[string]string{
			"type":       CoinPurchaseType,
			"package_id": pkg.ID,
			"coins":      strconv.FormatInt(pkg.Coins, 10),
			"user_id":    userID.String(),
		},
	})
	if err != nil {
		return nil, err
	}

	if err := s.coins.CreateTransaction(ctx, &model.CoinTransaction{
		UserID:                  userID,
		Type:                    model.CoinTransactionPurchase,
		PackageID:               pkg.ID,
		AmountCoins:             pkg.Coins,
		AmountCents:             pkg.PriceCents,
		StripeCheckoutSessionID: sess.ID,
		Status:                  model.CoinTransactionPending,
	}); err != nil {
		s.logger.Error("Checkout session created but not recorded, completion will rebuild it from metadata",
			zap.String("session_id", sess.ID),
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return nil, domainErrors.Wrap(domainErrors.KindInternal, err, "record coin transaction")
	}

	s.logger.Info("Coin checkout created",
		zap.String("session_id", sess.ID),
		zap.String("user_id", userID.String()),
		zap.String("package_id", pkg.ID))

	return &CoinCheckoutResult{SessionID: sess.ID, URL: sess.URL}, nil
}

// GetBalance returns the user's coin balance
func (s *CoinCheckoutService) GetBalance(ctx context.Context, userID uuid.UUID) (int64, error) {
	balance, err := s.coins.GetBalance(ctx, userID)
	if err != nil {
		return 0, domainErrors.Wrap(domainErrors.KindInternal, err, "load coin balance")
	}
	return balance, nil
}
