package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bloghead/payments/internal/adapter/repository"
	domainRepo "github.com/bloghead/payments/internal/domain/repository"
)

// Repositories holds all repository instances
type Repositories struct {
	Users          domainRepo.UserRepository
	ArtistProfiles domainRepo.ArtistProfileRepository
	Customers      domainRepo.CustomerRepository
	Bookings       domainRepo.BookingRepository
	Payments       domainRepo.PaymentRepository
	Coins          domainRepo.CoinRepository
	Accounts       domainRepo.ConnectAccountRepository
	WebhookEvents  domainRepo.WebhookEventRepository
}

// NewRepositories creates new repository instances with database connection
func NewRepositories(db *gorm.DB, logger *zap.Logger) *Repositories {
	return &Repositories{
		Users:          repository.NewUserRepository(db),
		ArtistProfiles: repository.NewArtistProfileRepository(db),
		Customers:      repository.NewCustomerRepository(db, logger),
		Bookings:       repository.NewBookingRepository(db),
		Payments:       repository.NewPaymentRepository(db, logger),
		Coins:          repository.NewCoinRepository(db, logger),
		Accounts:       repository.NewConnectAccountRepository(db, logger),
		WebhookEvents:  repository.NewWebhookEventRepository(db, logger),
	}
}
