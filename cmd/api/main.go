package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handler"
	"storefront/internal/media"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"
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
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting storefront API server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, pool, logger); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	// Uploaded media lives on S3 when enabled, otherwise in a local directory
	mediaStore, err := media.NewStore(ctx, cfg.S3, cfg.Media, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize media store: %w", err)
	}

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	categoryRepo := repository.NewCategoryRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	customerRepo := repository.NewCustomerRepository(pool, logger)
	promoRepo := repository.NewPromoRepository(pool, logger)
	settingsRepo := repository.NewSettingsRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)
	uow := repository.NewUnitOfWork(pool, logger)

	// Initialize services
	productService := service.NewProductService(productRepo, mediaStore, logger)
	categoryService := service.NewCategoryService(categoryRepo, logger)
	orderService := service.NewOrderService(uow, orderRepo, settingsRepo, logger)
	customerService := service.NewCustomerService(customerRepo, orderRepo, logger)
	promoService := service.NewPromoService(promoRepo, logger)
	settingsService := service.NewSettingsService(settingsRepo, mediaStore, logger)
	authService := service.NewAuthService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.SessionTTL, logger)

	// Initialize HTTP handlers
	handlers := router.Handlers{
		Product:  handler.NewProductHandler(productService, logger),
		Category: handler.NewCategoryHandler(categoryService, logger),
		Order:    handler.NewOrderHandler(orderService, logger),
		Customer: handler.NewCustomerHandler(customerService, logger),
		Promo:    handler.NewPromoHandler(promoService, logger),
		Settings: handler.NewSettingsHandler(settingsService, logger),
		Auth:     handler.NewAuthHandler(authService, cfg.Auth.CookieSecure, logger),
	}

	opts := router.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		MediaBaseURL:   cfg.Media.BaseURL,
	}
	if !cfg.S3.Enabled {
		opts.MediaDir = cfg.Media.Dir
	}

	// Initialize router
	mux := router.New(handlers, authService, opts, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
