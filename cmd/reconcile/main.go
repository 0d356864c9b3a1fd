// Command reconcile applies Stripe state to payments and coin purchases left
// pending, for example when a webhook delivery never arrived.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/bloghead/payments/internal/adapter/publisher"
	"github.com/bloghead/payments/internal/config"
	"github.com/bloghead/payments/internal/domain/catalog"
	"github.com/bloghead/payments/internal/infrastructure/database"
	stripeGateway "github.com/bloghead/payments/internal/infrastructure/provider/stripe"
	"github.com/bloghead/payments/internal/usecase"
	"github.com/bloghead/payments/pkg/logger"
	"github.com/bloghead/payments/pkg/messaging"
)

func main() {
	os.Exit(run())
}

func run() int {
	olderThan := flag.Duration("older-than", 15*time.Minute, "only rows pending for longer than this")
	limit := flag.Int("limit", 100, "maximum rows of each kind per run")
	flag.Parse()

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

	db, err := database.NewConnection(&cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, zapLogger); err != nil {
			zapLogger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

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
	processor := usecase.NewWebhookProcessor(
		gateway, repos.WebhookEvents, repos.Payments, repos.Coins, repos.Accounts, catalog.Default(), events, zapLogger)
	reconciler := usecase.NewReconcileService(repos.Payments, repos.Coins, repos.WebhookEvents, gateway, processor, zapLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := reconciler.Run(ctx, *olderThan, *limit)
	if report != nil {
		printReport(report)
	}
	if err != nil {
		zapLogger.Error("Reconciliation aborted", zap.Error(err))
		return 1
	}
	if report.Errors > 0 {
		return 2
	}
	return 0
}

func printReport(r *usecase.ReconcileReport) {
	fmt.Printf("payments: checked=%d applied=%d\n", r.PaymentsChecked, r.PaymentsApplied)
	fmt.Printf("coin purchases: checked=%d applied=%d\n", r.SessionsChecked, r.SessionsApplied)
	fmt.Printf("errors: %d\n", r.Errors)
	if len(r.FailedWebhooks) == 0 {
		return
	}
	fmt.Printf("failed webhook events: %d\n", len(r.FailedWebhooks))
	for _, ev := range r.FailedWebhooks {
		lastError := ""
		if ev.LastError != nil {
			lastError = *ev.LastError
		}
		fmt.Printf("  %s %s attempts=%d last_error=%q\n", ev.StripeEventID, ev.EventType, ev.ProcessingAttempts, lastError)
	}
}
