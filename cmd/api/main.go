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
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hysabee/hysabee-backend/api/routes"
	"github.com/hysabee/hysabee-backend/internal/auth"
	"github.com/hysabee/hysabee-backend/internal/branches"
	"github.com/hysabee/hysabee-backend/internal/customers"
	"github.com/hysabee/hysabee-backend/internal/dashboard"
	"github.com/hysabee/hysabee-backend/internal/stores"
	subscriptionsvc "github.com/hysabee/hysabee-backend/internal/subscriptions"
	"github.com/hysabee/hysabee-backend/internal/transactions"
	"github.com/hysabee/hysabee-backend/internal/users"
	"github.com/hysabee/hysabee-backend/internal/webhooks"
	"github.com/hysabee/hysabee-backend/pkg/auth/session"
	"github.com/hysabee/hysabee-backend/pkg/config"
	"github.com/hysabee/hysabee-backend/pkg/db"
	"github.com/hysabee/hysabee-backend/pkg/dodo"
	"github.com/hysabee/hysabee-backend/pkg/logger"
	"github.com/hysabee/hysabee-backend/pkg/metrics"
	"github.com/hysabee/hysabee-backend/pkg/migrate"
	"github.com/hysabee/hysabee-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

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

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	userRepo := users.NewRepository(dbClient.DB())
	storeRepo := stores.NewRepository(dbClient.DB())
	branchRepo := branches.NewRepository(dbClient.DB())
	customerRepo := customers.NewRepository(dbClient.DB())
	transactionRepo := transactions.NewRepository(dbClient.DB())
	subscriptionRepo := subscriptionsvc.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		StoreRepo:      storeRepo,
		BranchRepo:     branchRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		TxRunner:       dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	switchBranchService, err := auth.NewSwitchBranchService(auth.SwitchBranchServiceParams{
		BranchRepo:     branchRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create branch switch service", err)
		os.Exit(1)
	}

	storeService, err := stores.NewService(storeRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create store service", err)
		os.Exit(1)
	}

	branchService, err := branches.NewService(branchRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create branch service", err)
		os.Exit(1)
	}

	customerService, err := customers.NewService(customerRepo, branchRepo, transactionRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create customer service", err)
		os.Exit(1)
	}

	transactionService, err := transactions.NewService(transactionRepo, customerRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create transaction service", err)
		os.Exit(1)
	}

	dashboardService, err := dashboard.NewService(transactionRepo, customerRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create dashboard service", err)
		os.Exit(1)
	}

	dodoClient, err := dodo.NewClient(
		cfg.Dodo.APIKey,
		cfg.Dodo.Environment(),
		dodo.WithTimeout(cfg.Dodo.RequestTimeout),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create dodo client", err)
		os.Exit(1)
	}

	subscriptionService, err := subscriptionsvc.NewService(subscriptionsvc.ServiceParams{
		Repo:     subscriptionRepo,
		Billing:  dodoClient,
		Cache:    redisClient,
		Catalog:  subscriptionsvc.NewCatalog(cfg.Billing),
		CacheTTL: cfg.Subscriptions.TTL,
		DodoCfg:  cfg.Dodo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create subscription service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	reconciler, err := webhooks.NewReconciler(webhooks.ReconcilerParams{
		Repo:    subscriptionRepo,
		Tx:      dbClient,
		Cache:   subscriptionService,
		Metrics: metrics.NewWebhookMetrics(registry),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook reconciler", err)
		os.Exit(1)
	}

	webhookVerifier, err := dodo.NewWebhookVerifier(cfg.Dodo.WebhookSecret)
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook verifier", err)
		os.Exit(1)
	}

	webhookGuard, err := webhooks.NewDeliveryGuard(redisClient, cfg.Dodo.WebhookEventTTL, "webhook:dodo")
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook delivery guard", err)
		os.Exit(1)
	}

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
			Config:              cfg,
			Logger:              logg,
			DB:                  dbClient,
			Redis:               redisClient,
			SessionChecker:      sessionManager,
			AuthService:         authService,
			RegisterService:     registerService,
			SwitchBranchService: switchBranchService,
			StoreService:        storeService,
			BranchService:       branchService,
			CustomerService:     customerService,
			TransactionService:  transactionService,
			DashboardService:    dashboardService,
			SubscriptionService: subscriptionService,
			UserRepo:            userRepo,
			Reconciler:          reconciler,
			WebhookVerifier:     webhookVerifier,
			WebhookGuard:        webhookGuard,
			MetricsHandler:      promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		}),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(ctx, "shutting down on signal "+sig.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}
