package cmd

import (
	"context"
	"fmt"
	"time"

	"staybook/config"
	"staybook/database"
	"staybook/database/repository"
	"staybook/handlers"
	"staybook/services/availability"
	"staybook/services/booking"
	"staybook/services/checkout"
	"staybook/services/events"
	"staybook/services/lock"
	"staybook/services/reconciliation"
	"staybook/services/tasks"
	"staybook/utils"

	"github.com/hibiken/asynq"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

// application holds the wired services shared by the commands.
type application struct {
	logger       *zap.Logger
	stores       *repository.Stores
	publisher    events.Publisher
	expiry       *tasks.AsynqExpiryScheduler
	bookings     *booking.DefaultBookingService
	availability *availability.DefaultAvailabilityService
	checkout     *checkout.Initiator
	listener     *reconciliation.Listener
}

func newLocker(logger *zap.Logger) (lock.Locker, error) {
	switch config.AppConfig.LockDriver {
	case "", "local":
		return lock.NewLocalLocker(), nil
	case "redis":
		return lock.NewRedisLocker(utils.GetLockClient(), logger), nil
	default:
		return nil, fmt.Errorf("unknown LOCK_DRIVER %q", config.AppConfig.LockDriver)
	}
}

func newPaymentProvider() (checkout.Provider, reconciliation.Verifier, error) {
	cfg := config.AppConfig
	switch cfg.PaymentProvider {
	case "", "local":
		if cfg.WebhookSecret == "" {
			return nil, nil, fmt.Errorf("WEBHOOK_SECRET is required for the local payment provider")
		}
		return checkout.NewLocalProvider(cfg.CheckoutSessionTTL), reconciliation.NewHMACVerifier(cfg.WebhookSecret), nil
	case "stripe":
		if cfg.StripeKey == "" || cfg.StripeWebhookSecret == "" {
			return nil, nil, fmt.Errorf("STRIPE_KEY and STRIPE_WEBHOOK_SECRET are required for the stripe payment provider")
		}
		stripe.Key = cfg.StripeKey
		return checkout.NewStripeProvider(cfg.StripeKey), reconciliation.NewStripeVerifier(cfg.StripeWebhookSecret), nil
	default:
		return nil, nil, fmt.Errorf("unknown PAYMENT_PROVIDER %q", cfg.PaymentProvider)
	}
}

func newApplication(logger *zap.Logger) (*application, error) {
	cfg := config.AppConfig

	stores, err := repository.OpenStores(logger)
	if err != nil {
		return nil, err
	}

	locker, err := newLocker(logger)
	if err != nil {
		return nil, err
	}

	publisher, err := events.NewPublisherFromConfig(logger)
	if err != nil {
		return nil, err
	}

	provider, verifier, err := newPaymentProvider()
	if err != nil {
		return nil, err
	}

	app := &application{logger: logger, stores: stores, publisher: publisher}

	app.bookings = booking.NewBookingService(stores.Bookings, stores.Rooms, locker, publisher, logger)
	app.bookings.PendingTTL = cfg.PendingBookingTTL
	if cfg.ExpiryTasksEnabled {
		app.expiry = tasks.NewAsynqExpiryScheduler(asynq.NewClient(tasks.RedisClientOpt()))
		app.bookings.Expiry = app.expiry
	}

	app.availability = availability.NewAvailabilityService(stores.Rooms, stores.Bookings)
	app.checkout = checkout.NewInitiator(stores.Bookings, stores.Checkouts, provider, locker, checkout.Options{
		Currency:   cfg.Currency,
		SuccessURL: cfg.CheckoutSuccessURL,
		CancelURL:  cfg.CheckoutCancelURL,
		Timeout:    cfg.PaymentTimeout,
		PendingTTL: cfg.PendingBookingTTL,
	}, logger)
	app.listener = reconciliation.NewListener(verifier, stores.Checkouts, stores.Ledger, app.bookings, locker, publisher, logger)

	return app, nil
}

func (a *application) handlerBundle() *handlers.HandlerBundle {
	return handlers.NewHandlerBundle(
		config.AppConfig.JWTSecret,
		handlers.NewAvailabilityHandler(a.availability),
		handlers.NewBookingHandler(a.bookings),
		handlers.NewCheckoutHandler(a.checkout, a.bookings),
		handlers.NewWebhookHandler(a.listener),
		&handlers.HealthHandler{RedisClients: utils.RedisClients(), PingStore: database.Ping},
	)
}

func (a *application) close() {
	if a.expiry != nil {
		if err := a.expiry.Close(); err != nil {
			a.logger.Warn("failed to close task client", zap.Error(err))
		}
	}
	if err := a.publisher.Close(); err != nil {
		a.logger.Warn("failed to close event publisher", zap.Error(err))
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	database.Close(ctx)
}
