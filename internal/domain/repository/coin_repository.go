package repository

import (
	"context"
	"time"

	"github.com/bloghead/payments/internal/domain/model"
	"github.com/google/uuid"
)

// CoinCredit is the result of completing a coin purchase
type CoinCredit struct {
	// Credited is false when the purchase had already been completed.
	Credited bool
	Balance  int64
}

// CoinRepository stores coin purchases and balances
type CoinRepository interface {
	CreateTransaction(ctx context.Context, tx *model.CoinTransaction) error
	GetBySessionID(ctx context.Context, sessionID string) (*model.CoinTransaction, error)
	ListPending(ctx context.Context, createdBefore time.Time, limit int) ([]*model.CoinTransaction, error)

	// CompletePurchase moves the transaction for purchase.StripeCheckoutSessionID
	// from pending to completed and credits the coins in the same database
	// transaction. A missing transaction is created from purchase. Repeated
	// calls credit at most once.
	CompletePurchase(ctx context.Context, purchase *model.CoinTransaction) (*CoinCredit, error)

	// GetBalance returns zero for users without a balance row.
	GetBalance(ctx context.Context, userID uuid.UUID) (int64, error)
}
