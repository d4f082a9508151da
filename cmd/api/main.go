package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/bookhavenph/bookhaven-backend/api/routes"
	"github.com/bookhavenph/bookhaven-backend/internal/books"
	"github.com/bookhavenph/bookhaven-backend/internal/cart"
	checkoutsvc "github.com/bookhavenph/bookhaven-backend/internal/checkout"
	"github.com/bookhavenph/bookhaven-backend/internal/orders"
	paymongowebhook "github.com/bookhavenph/bookhaven-backend/internal/webhooks/paymongo"
	"github.com/bookhavenph/bookhaven-backend/pkg/config"
	"github.com/bookhavenph/bookhaven-backend/pkg/db"
	"github.com/bookhavenph/bookhaven-backend/pkg/logger"
	"github.com/bookhavenph/bookhaven-backend/pkg/metrics"
	"github.com/bookhavenph/bookhaven-backend/pkg/migrate"
	"github.com/bookhavenph/bookhaven-backend/pkg/paymongo"
	"github.com/bookhavenph/bookhaven-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	paymentMetrics := metrics.NewPaymentMetrics(registry)

	paymongoClient, err := paymongo.NewClient(
		cfg.PayMongo.SecretKey,
		paymongo.WithBaseURL(cfg.PayMongo.BaseURL),
		paymongo.WithTimeout(cfg.PayMongo.Timeout),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create paymongo client", err)
		os.Exit(1)
	}

	booksRepo := books.NewRepository(dbClient.DB())
	cartRepo := cart.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())

	booksService, err := books.NewService(booksRepo)
	exitOnError(logg, "books service", err)

	booksAdminService, err := books.NewAdminService(booksRepo)
	exitOnError(logg, "books admin service", err)

	cartService, err := cart.NewService(cartRepo, booksRepo)
	exitOnError(logg, "cart service", err)

	checkoutService, err := checkoutsvc.NewService(checkoutsvc.ServiceParams{
		OrdersRepo: ordersRepo,
		CartRepo:   cartRepo,
		BooksRepo:  booksRepo,
		TxRunner:   dbClient,
		Sessions:   paymongoClient,
		Config:     cfg.Checkout,
		Metrics:    paymentMetrics,
		Logger:     logg,
	})
	exitOnError(logg, "checkout service", err)

	ordersService, err := orders.NewService(ordersRepo, dbClient, paymongoClient, logg)
	exitOnError(logg, "orders service", err)

	webhookGuard, err := paymongowebhook.NewIdempotencyGuard(redisClient, cfg.Checkout.WebhookEventTTL, "paymongo-webhook")
	exitOnError(logg, "webhook idempotency guard", err)

	webhookService, err := paymongowebhook.NewService(paymongowebhook.ServiceParams{
		OrdersRepo:        ordersRepo,
		TransactionRunner: dbClient,
		Guard:             webhookGuard,
		Metrics:           paymentMetrics,
		Logger:            logg,
	})
	exitOnError(logg, "webhook service", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:            cfg,
			Logger:            logg,
			DBPinger:          dbClient,
			RedisPinger:       redisClient,
			Registry:          registry,
			BooksService:      booksService,
			BooksAdminService: booksAdminService,
			CartService:       cartService,
			CheckoutService:   checkoutService,
			OrdersService:     ordersService,
			WebhookService:    webhookService,
		}),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}

func exitOnError(logg *logger.Logger, what string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+what, err)
	os.Exit(1)
}
