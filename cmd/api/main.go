package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/nivobank/backoffice/internal/api/rest"
	"github.com/nivobank/backoffice/internal/api/rest/handlers"
	"github.com/nivobank/backoffice/internal/lifecycle"
	"github.com/nivobank/backoffice/internal/registry"
	"github.com/nivobank/backoffice/internal/repository/postgres"
	"github.com/nivobank/backoffice/internal/services"
	"github.com/nivobank/backoffice/internal/validation"
	"github.com/nivobank/backoffice/internal/websocket"
	"github.com/nivobank/backoffice/internal/workers"
	"github.com/nivobank/backoffice/pkg/auth"
	"github.com/nivobank/backoffice/pkg/config"
	"github.com/nivobank/backoffice/pkg/database"
	"github.com/nivobank/backoffice/pkg/logger"
	"github.com/nivobank/backoffice/pkg/metrics"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.New(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	logger.SetDefault(log)
	log.Info("Starting Back Office API",
		logger.String("version", cfg.App.Version),
		logger.String("environment", cfg.App.Environment),
	)

	// Initialize PostgreSQL
	db, err := database.NewPostgresDB(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	// Initialize Redis
	redis, err := database.NewRedisClient(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	defer redis.Close()

	// Initialize metrics
	m := metrics.New()

	// Initialize repositories
	requestRepo := postgres.NewRequestRepository(db.DB)
	historyRepo := postgres.NewHistoryRepository(db.DB)
	feedbackRepo := postgres.NewFeedbackRepository(db.DB)
	statusRepo := postgres.NewStatusRepository(db.DB)
	tenantRepo := postgres.NewTenantRepository(db.DB)
	// Stats aggregates go through the circuit-breaker-guarded connection
	statsRepo := postgres.NewStatsRepository(db)
	userRepo := postgres.NewUserRepository(db.DB)
	roleRepo := postgres.NewRoleRepository(db.DB)
	apiKeyRepo := postgres.NewAPIKeyRepository(db.DB)
	refreshTokenRepo := postgres.NewRefreshTokenRepository(db.DB)

	// Load the status catalog. The lifecycle cannot run without it, so a
	// missing or unseeded catalog fails the boot.
	catalog := registry.New(statusRepo, redis.Client, log)
	if err := catalog.Load(context.Background()); err != nil {
		return fmt.Errorf("failed to load status catalog: %w", err)
	}

	// Initialize notification service
	notificationService, err := services.NewNotificationService(&cfg.Notification, log)
	if err != nil {
		return fmt.Errorf("failed to initialize notification service: %w", err)
	}

	// Initialize WebSocket hub for the live transition feed
	hub := websocket.NewHub(redis.Client, log.Logger)
	if err := hub.Start(); err != nil {
		return fmt.Errorf("failed to start websocket hub: %w", err)
	}
	defer hub.Stop()
	wsHandler := websocket.NewHandler(hub, log.Logger)

	// Initialize JWT manager
	jwtSecret := cfg.Auth.JWTSecret
	if jwtSecret == "" {
		// Fail in production if the secret is not set
		if cfg.App.Environment == "production" {
			return fmt.Errorf("AUTH_JWT_SECRET environment variable must be set in production")
		}
		// Allow default in development, but warn
		jwtSecret = "default-secret-change-this-in-production"
		log.Warn("AUTH_JWT_SECRET not set, using default (INSECURE - only for development)")
	}
	jwtManager := auth.NewJWTManagerWithTTL(jwtSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)

	// Initialize services
	authService := services.NewAuthService(userRepo, roleRepo, apiKeyRepo, refreshTokenRepo, jwtManager, log)

	// Initialize the lifecycle controller
	controller := lifecycle.NewController(
		requestRepo,
		historyRepo,
		feedbackRepo,
		catalog,
		validation.NewEngine(),
		notificationService,
		hub,
		log,
		cfg.Onboarding.InitialStatusCode,
		cfg.Onboarding.SubmittedStatusCode,
	).WithMetrics(m)

	// Initialize and start the correction reminder worker
	reminderWorker := workers.NewCorrectionReminderWorker(
		requestRepo, userRepo, catalog, notificationService, log,
		cfg.Onboarding.CorrectionStatusCode, cfg.Onboarding.CorrectionReminder, 0,
	)
	workerCtx, cancelWorker := context.WithCancel(context.Background())
	defer cancelWorker()
	reminderWorker.Start(workerCtx)

	// Initialize handlers
	h := handlers.NewHandlers(
		log,
		controller,
		catalog,
		statusRepo,
		tenantRepo,
		statsRepo,
		authService,
		&handlers.HealthCheckers{
			DB:    db,
			Redis: redis,
		},
		cfg.App.Version,
	)

	// Initialize router
	router := rest.NewRouter(log, h, authService, wsHandler, m)
	router.SetupRoutes()

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("API server listening", logger.String("address", addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", logger.String("signal", sig.String()))

		// Stop background workers first
		reminderWorker.Stop()

		// Give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Gracefully shutdown the server
		if err := server.Shutdown(ctx); err != nil {
			server.Close()
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
