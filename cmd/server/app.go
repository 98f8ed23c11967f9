package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/ethicbank/portal-api/internal/config"
	"github.com/ethicbank/portal-api/internal/events"
	"github.com/ethicbank/portal-api/internal/integration/chat"
	"github.com/ethicbank/portal-api/internal/integration/dynamic"
	"github.com/ethicbank/portal-api/internal/integration/infra"
	"github.com/ethicbank/portal-api/internal/integration/jupiter"
	"github.com/ethicbank/portal-api/internal/integration/moonpay"
	"github.com/ethicbank/portal-api/internal/integration/privy"
	"github.com/ethicbank/portal-api/internal/integration/stripe"
	"github.com/ethicbank/portal-api/internal/integration/sumsub"
	"github.com/ethicbank/portal-api/internal/monitor"
	"github.com/ethicbank/portal-api/internal/platform/postgres"
	"github.com/ethicbank/portal-api/internal/platform/redis"
	"github.com/ethicbank/portal-api/internal/registry"
	"github.com/ethicbank/portal-api/internal/service"
	"github.com/ethicbank/portal-api/internal/service/auth"
	"github.com/ethicbank/portal-api/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB
	cache  *redis.Client

	// metrics is the Prometheus registry served on /metrics.
	metrics  *prometheus.Registry
	registry *registry.Registry

	// Stores
	userStore         store.UserStore
	walletStore       store.WalletStore
	investmentStore   store.InvestmentStore
	notificationStore store.NotificationStore

	// Services
	jwtService     auth.JWTService
	sessions       *auth.Service
	userService    service.UserService
	ledgerService  service.LedgerService
	savingsService service.SavingsService
	rewardService  service.RewardService
	chatService    service.ChatService

	eventEmitter *events.InMemoryEventEmitter
	monitor      *monitor.Poller
}

// newApplication wires every dependency on top of an open database and an
// optional cache client. Vendor services are registered but not initialized;
// Run does that.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB, cache *redis.Client) (*application, error) {
	app := &application{
		config:  cfg,
		logger:  logger,
		db:      db,
		cache:   cache,
		metrics: prometheus.NewRegistry(),
	}
	app.metrics.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	app.registry = buildRegistry(cfg, logger, db, cache, app.metrics)

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	// Stores
	app.userStore = postgres.NewPostgresUserStore(db, cfg.Auth.BCryptCost, logger)
	app.walletStore = postgres.NewPostgresWalletStore(db, logger)
	app.investmentStore = postgres.NewPostgresInvestmentStore(db, logger)
	app.notificationStore = postgres.NewPostgresNotificationStore(db, logger)
	transactionStore := postgres.NewPostgresTransactionStore(db, logger)
	savingsStore := postgres.NewPostgresSavingsGoalStore(db, logger)
	rewardStore := postgres.NewPostgresRewardStore(db, logger)
	chatStore := postgres.NewPostgresChatStore(db, logger)

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	notifier, err := service.NewNotifier(app.notificationStore, rewardStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create notifier: %w", err)
	}
	app.eventEmitter.RegisterHandler(notifier)

	app.sessions, err = auth.NewService(
		app.userStore,
		app.walletStore,
		app.jwtService,
		auth.NewBcryptVerifier(),
		app.registry,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session service: %w", err)
	}

	if app.userService, err = service.NewUserService(app.userStore, db, logger); err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}
	if app.ledgerService, err = service.NewLedgerService(transactionStore, app.walletStore, app.eventEmitter, logger); err != nil {
		return nil, fmt.Errorf("failed to create ledger service: %w", err)
	}
	if app.savingsService, err = service.NewSavingsService(savingsStore, db, app.eventEmitter, logger); err != nil {
		return nil, fmt.Errorf("failed to create savings service: %w", err)
	}
	if app.rewardService, err = service.NewRewardService(rewardStore, logger); err != nil {
		return nil, fmt.Errorf("failed to create reward service: %w", err)
	}
	if app.chatService, err = service.NewChatService(chatStore, app.registry, cfg.LLM.MaxHistory, logger); err != nil {
		return nil, fmt.Errorf("failed to create chat service: %w", err)
	}

	app.monitor = monitor.NewPoller(app.registry, cfg.Registry.MonitorInterval, logger)

	logger.Info("Application initialized successfully",
		"services", app.registry.ServiceNames())
	return app, nil
}

// buildRegistry constructs the service registry and registers every
// integration. A nil db or cache leaves the matching infra service
// unconfigured.
func buildRegistry(
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
	cache *redis.Client,
	metrics prometheus.Registerer,
) *registry.Registry {
	reg := registry.New(
		registry.WithLogger(logger),
		registry.WithMetrics(registry.NewMetrics(metrics)),
		registry.WithHealthTimeout(cfg.Registry.HealthTimeout),
		registry.WithMaxConcurrentChecks(cfg.Registry.MaxConcurrentChecks),
		registry.WithTracerProvider(otel.GetTracerProvider()),
	)

	httpCfg := cfg.Integrations.HTTP
	var jupiterOpts []jupiter.Option
	if cache != nil {
		jupiterOpts = append(jupiterOpts, jupiter.WithQuoteCache(cache, cfg.Redis.QuoteTTL))
	}
	var pinger infra.Pinger
	if db != nil {
		pinger = db
	}

	reg.Register(infra.DatabaseName, infra.NewDatabase(pinger))
	reg.Register(infra.CacheName, infra.NewCache(cache))
	reg.Register(privy.Name, privy.New(cfg.Integrations.Privy, httpCfg, logger))
	reg.Register(dynamic.Name, dynamic.New(cfg.Integrations.Dynamic, httpCfg, logger))
	reg.Register(jupiter.Name, jupiter.New(cfg.Integrations.Jupiter, httpCfg, logger, jupiterOpts...))
	reg.Register(stripe.Name, stripe.New(cfg.Integrations.Stripe, httpCfg, logger))
	reg.Register(moonpay.Name, moonpay.New(cfg.Integrations.Moonpay, httpCfg, logger))
	reg.Register(sumsub.Name, sumsub.New(cfg.Integrations.Sumsub, httpCfg, logger))
	reg.Register(chat.Name, chat.New(cfg.LLM, logger))
	return reg
}

// Run initializes the registered services, starts the status monitor and
// serves HTTP until ctx is canceled or a signal arrives.
func (app *application) Run(ctx context.Context) error {
	app.registry.Initialize(ctx)
	app.monitor.Start()

	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.monitor != nil {
		app.monitor.Stop()
	}

	if app.cache != nil {
		if err := app.cache.Close(); err != nil {
			app.logger.Error("Error closing redis connection", "error", err)
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
