package repository

import (
	"context"

	"github.com/bloghead/payments/internal/domain/model"
	"github.com/google/uuid"
)

// UserRepository reads platform users. Lookups return nil, nil when the
// row does not exist.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// ArtistProfileRepository reads artist profiles
type ArtistProfileRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.ArtistProfile, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*model.ArtistProfile, error)
}

// CustomerRepository maps platform users to processor customers
type CustomerRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*model.StripeCustomer, error)

	// CreateIfAbsent inserts the mapping unless the user already has one.
	// It reports whether this call inserted the row.
	CreateIfAbsent(ctx context.Context, customer *model.StripeCustomer) (bool, error)
}
