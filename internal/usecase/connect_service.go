package usecase

import (
	"context"
	"time"

	domainErrors "github.com/bloghead/payments/internal/domain/errors"
	"github.com/bloghead/payments/internal/domain/event"
	"github.com/bloghead/payments/internal/domain/model"
	"github.com/bloghead/payments/internal/domain/provider"
	domainRepo "github.com/bloghead/payments/internal/domain/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ConnectCountry is where artist accounts are opened.
const ConnectCountry = "DE"

// OnboardingLink sends the artist to hosted onboarding
type OnboardingLink struct {
	StripeAccountID string    `json:"stripe_account_id"`
	URL             string    `json:"url"`
	ExpiresAt       time.Time `json:"expires_at"`
}

// ConnectStatus is the payout readiness of an artist
type ConnectStatus struct {
	Connected        bool                       `json:"connected"`
	StripeAccountID  string                     `json:"stripe_account_id,omitempty"`
	Status           model.ConnectAccountStatus `json:"status,omitempty"`
	ChargesEnabled   bool                       `json:"charges_enabled"`
	PayoutsEnabled   bool                       `json:"payouts_enabled"`
	DetailsSubmitted bool                       `json:"details_submitted"`
}

// ConnectService onboards artists onto connected accounts
type ConnectService struct {
	artists   domainRepo.ArtistProfileRepository
	users     domainRepo.UserRepository
	accounts  domainRepo.ConnectAccountRepository
	gateway   provider.Gateway
	publisher event.Publisher
	links     Links
	logger    *zap.Logger
}

// NewConnectService creates a new connect service instance
func NewConnectService(
	artists domainRepo.ArtistProfileRepository,
	users domainRepo.UserRepository,
	accounts domainRepo.ConnectAccountRepository,
	gateway provider.Gateway,
	publisher event.Publisher,
	links Links,
	logger *zap.Logger,
) *ConnectService {
	return &ConnectService{
		artists:   artists,
		users:     users,
		accounts:  accounts,
		gateway:   gateway,
		publisher: publisher,
		links:     links,
		logger:    logger,
	}
}

// StartOnboarding creates the artist's account on first use and always
// returns a fresh onboarding link
func (s *ConnectService) StartOnboarding(ctx context.Context, userID uuid.UUID) (*OnboardingLink, error) {
	profile, err := s.artistProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	account, err := s.accounts.GetByArtistID(ctx, profile.ID)
	if err != nil {
		return nil, domainErrors.Wrap(domainErrors.KindInternal, err, "load connect account")
	}

	if account == nil {
		account, err = s.createAccount(ctx, userID, profile)
		if err != nil {
			return nil, err
		}
	}

	link, err := s.gateway.CreateAccountLink(ctx, account.StripeAccountID, s.links.OnboardingRefresh(), s.links.OnboardingReturn())
	if err != nil {
		return nil, err
	}

	if err := s.accounts.SaveOnboardingLink(ctx, account.ID, link.URL, link.ExpiresAt); err != nil {
		return nil, domainErrors.Wrap(domainErrors.KindInternal, err, "save onboarding link")
	}

	s.logger.Info("Onboarding link created",
		zap.String("artist_id", profile.ID.String()),
		zap.String("stripe_account_id", account.StripeAccountID),
		zap.Time("expires_at", link.ExpiresAt))

	return &OnboardingLink{
		StripeAccountID: account.StripeAccountID,
		URL:             link.URL,
		ExpiresAt:       link.ExpiresAt,
	}, nil
}

func (s *ConnectService) createAccount(ctx context.Context, userID uuid.UUID, profile *model.ArtistProfile) (*model.ArtistStripeAccount, error) {
	var email string
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, domainErrors.Wrap(domainErrors.KindInternal, err, "load user")
	}
	if user != nil {
		email = user.Email
	}

	created, err := s.gateway.CreateConnectAccount(ctx, &provider.CreateConnectAccountRequest{
		Email:    email,
		Country:  ConnectCountry,
		Metadata: map[string]string{"artist_id": profile.ID.String()},
	})
	if err != nil {
		return nil, err
	}

	account := &model.ArtistStripeAccount{
		ArtistID:        profile.ID,
		StripeAccountID: created.ID,
		Status:          model.ConnectAccountPending,
	}
	inserted, err := s.accounts.CreateIfAbsent(ctx, account)
	if err != nil {
		return nil, domainErrors.Wrap(domainErrors.KindInternal, err, "save connect account")
	}
	if inserted {
		s.logger.Info("Created connect account",
			zap.String("artist_id", profile.ID.String()),
			zap.String("stripe_account_id", created.ID))
		return account, nil
	}

	winner, err := s.accounts.GetByArtistID(ctx, profile.ID)
	if err != nil {
		return nil, domainErrors.Wrap(domainErrors.KindInternal, err, "reload connect account")
	}
	if winner == nil {
		return nil, domainErrors.New(domainErrors.KindInternal, "connect account vanished after conflict")
	}

	s.logger.Warn("Concurrent onboarding, connect account orphaned",
		zap.String("artist_id", profile.ID.String()),
		zap.String("orphaned_account_id", created.ID),
		zap.String("stripe_account_id", winner.StripeAccountID))
	return winner, nil
}

// GetStatus returns the stored account state. With refresh it is first
// re-read from the processor and written back.
func (s *ConnectService) GetStatus(ctx context.Context, userID uuid.UUID, refresh bool) (*ConnectStatus, error) {
	profile, err := s.artistProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	account, err := s.accounts.GetByArtistID(ctx, profile.ID)
	if err != nil {
		return nil, domainErrors.Wrap(domainErrors.KindInternal, err, "load connect account")
	}
	if account == nil {
		return &ConnectStatus{Connected: false}, nil
	}

	if refresh {
		remote, err := s.gateway.GetConnectAccount(ctx, account.StripeAccountID)
		if err != nil {
			return nil, err
		}
		state := accountState(remote)
		state.ArtistID = account.ArtistID
		changed, err := s.accounts.ApplyState(ctx, state)
		if err != nil {
			return nil, domainErrors.Wrap(domainErrors.KindInternal, err, "update connect account")
		}
		if changed {
			publishEvent(ctx, s.publisher, s.logger, accountUpdatedEvent(state))
		}
		account.Status = state.Status
		account.ChargesEnabled = state.ChargesEnabled
		account.PayoutsEnabled = state.PayoutsEnabled
		account.DetailsSubmitted = state.DetailsSubmitted
	}

	return &ConnectStatus{
		Connected:        true,
		StripeAccountID:  account.StripeAccountID,
		Status:           account.Status,
		ChargesEnabled:   account.ChargesEnabled,
		PayoutsEnabled:   account.PayoutsEnabled,
		DetailsSubmitted: account.DetailsSubmitted,
	}, nil
}

func (s *ConnectService) artistProfile(ctx context.Context, userID uuid.UUID) (*model.ArtistProfile, error) {
	profile, err := s.artists.GetByUserID(ctx, userID)
	if err != nil {
		return nil, domainErrors.Wrap(domainErrors.KindInternal, err, "load artist profile")
	}
	if profile == nil {
		return nil, domainErrors.New(domainErrors.KindArtistProfileNotFound, userID.String())
	}
	return profile, nil
}
