package repository

import (
	"context"
	"time"

	"github.com/bloghead/payments/internal/domain/model"
	"github.com/google/uuid"
)

// ConnectAccountRepository stores artists' connected accounts. Rows are
// never deleted.
type ConnectAccountRepository interface {
	GetByArtistID(ctx context.Context, artistID uuid.UUID) (*model.ArtistStripeAccount, error)
	GetByStripeAccountID(ctx context.Context, stripeAccountID string) (*model.ArtistStripeAccount, error)
	// CreateIfAbsent inserts the account unless the artist already has one.
	// It reports whether the row was inserted.
	CreateIfAbsent(ctx context.Context, account *model.ArtistStripeAccount) (bool, error)
	SaveOnboardingLink(ctx context.Context, id uuid.UUID, url string, expiresAt time.Time) error

	// ApplyState writes status and capability flags keyed by stripe account
	// id, creating the row when state.ArtistID is set and no row exists. It
	// reports whether anything changed.
	ApplyState(ctx context.Context, state *model.ArtistStripeAccount) (bool, error)
}
