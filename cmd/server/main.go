package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	handlers "github.com/bloghead/payments/internal/adapter/handler/http"
	"github.com/bloghead/payments/internal/adapter/publisher"
	"github.com/bloghead/payments/internal/config"
	"github.com/bloghead/payments/internal/domain/catalog"
	"github.com/bloghead/payments/internal/infrastructure/database"
	grpcServer "github.com/bloghead/payments/internal/infrastructure/grpc"
	httpServer "github.com/bloghead/payments/internal/infrastructure/http"
	stripeGateway "github.com/bloghead/payments/internal/infrastructure/provider/stripe"
	"github.com/bloghead/payments/internal/usecase"
	"github.com/bloghead/payments/pkg/logger"
	"github.com/bloghead/payments/pkg/messaging"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to load .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := logger.NewZapLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	feePercent, err := cfg.Service.FeePercent()
	if err != nil {
		zapLogger.Fatal("Invalid platform fee", zap.Error(err))
	}

	db, err := database.NewConnection(&cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, zapLogger); err != nil {
			zapLogger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db, zapLogger); err != nil {
			zapLogger.Fatal("Failed to run database migrations", zap.Error(err))
		}
	}

	repos := database.NewRepositories(db, zapLogger)

	var bus messaging.Publisher = messaging.NopPublisher{}
	if cfg.Redis.Enabled {
		bus, err = messaging.NewRedisPublisher(cfg.Redis)
		if err != nil {
			zapLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
	}
	defer bus.Close()
	events := publisher.NewEventPublisher(bus, publisher.DefaultChannel, zapLogger)

	gateway := stripeGateway.NewGateway(cfg.Service.StripeSecretKey, cfg.Service.StripeWebhookSecret, zapLogger)
	links := usecase.Links{ClientURL: cfg.Service.ClientURL}
	coinCatalog := catalog.Default()

	customers := usecase.NewCustomerService(repos.Customers, repos.Users, gateway, zapLogger)
	bookingPayments := usecase.NewBookingPaymentService(
		repos.Bookings, repos.Payments, repos.Accounts, customers, gateway, feePercent, links, zapLogger)
	coins := usecase.NewCoinCheckoutService(repos.Coins, customers, gateway, coinCatalog, links, zapLogger)
	connect := usecase.NewConnectService(repos.ArtistProfiles, repos.Users, repos.Accounts, gateway, events, links, zapLogger)
	processor := usecase.NewWebhookProcessor(
		gateway, repos.WebhookEvents, repos.Payments, repos.Coins, repos.Accounts, coinCatalog, events, zapLogger)

	grpcSrv := grpcServer.NewServer(cfg, zapLogger)
	httpSrv := httpServer.NewServer(cfg, zapLogger, httpServer.Handlers{
		Webhook:         handlers.NewWebhookHandler(processor, zapLogger),
		Coins:           handlers.NewCoinHandler(coins, zapLogger),
		BookingPayments: handlers.NewBookingPaymentHandler(bookingPayments, zapLogger),
		Connect:         handlers.NewConnectHandler(connect, zapLogger),
	})

	go func() {
		if err := grpcSrv.Start(); err != nil {
			zapLogger.Fatal("Failed to start gRPC server", zap.Error(err))
		}
	}()

	go func() {
		if err := httpSrv.Start(); err != nil {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	zapLogger.Info("Shutting down servers...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		zapLogger.Error("Failed to shutdown HTTP server", zap.Error(err))
	}

	if err := grpcSrv.Shutdown(ctx); err != nil {
		zapLogger.Error("Failed to shutdown gRPC server", zap.Error(err))
	}

	zapLogger.Info("Servers shut down successfully")
}
