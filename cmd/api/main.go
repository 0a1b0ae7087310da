package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/auth"
	"storefront/internal/config"
	"storefront/internal/coupon"
	"storefront/internal/database"
	"storefront/internal/handler"
	"storefront/internal/middleware"
	"storefront/internal/payment"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"
	"storefront/internal/storage"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)
	logger.Info().Str("env", cfg.AppEnv).Msg("starting storefront API server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	images, err := storage.New(ctx, cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize image storage: %w", err)
	}

	gateway, err := payment.New(cfg.Payment, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize payment gateway: %w", err)
	}

	coupons, err := newCouponRegistry(ctx, cfg.Coupon, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize coupon registry: %w", err)
	}
	defer coupons.Close()

	// Repositories
	userRepo := repository.NewUserRepository(pool, logger)
	categoryRepo := repository.NewCategoryRepository(pool, logger)
	subCategoryRepo := repository.NewSubCategoryRepository(pool, logger)
	productRepo := repository.NewProductRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	checkoutRepo := repository.NewCheckoutRepository(pool, logger)

	// Services. The cart and checkout services share one lock table so a
	// cart mutation never interleaves with its checkout.
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	cartLocks := service.NewKeyedMutex()

	userService := service.NewUserService(userRepo, tokens, logger)
	categoryService := service.NewCategoryService(categoryRepo, subCategoryRepo, images, logger)
	catalogService := service.NewCatalogService(productRepo, categoryRepo, subCategoryRepo, images, logger)
	cartService := service.NewCartService(cartRepo, pool, catalogService, coupons, cartLocks, logger)
	checkoutService := service.NewCheckoutService(checkoutRepo, cartRepo, pool, gateway, cartLocks, logger)

	// HTTP handlers
	opts := handler.Options{
		ExposeInternalErrors: cfg.IsDevelopment(),
		MaxUploadBytes:       cfg.Server.MaxUploadBytes,
	}
	handlers := router.Handlers{
		Health:   handler.NewHealthHandler(pool, logger),
		User:     handler.NewUserHandler(userService, opts, logger),
		Category: handler.NewCategoryHandler(categoryService, opts, logger),
		Product:  handler.NewProductHandler(catalogService, opts, logger),
		Cart:     handler.NewCartHandler(cartService, opts, logger),
		Checkout: handler.NewCheckoutHandler(checkoutService, opts, logger),
	}

	routerOpts := router.Options{
		CORSAllowedOrigin: cfg.Server.CORSAllowedOrigin,
		Resolver:          tokens,
		Users:             userRepo,
	}
	if cfg.RateLimit.Enabled {
		routerOpts.RateLimiter = middleware.NewRateLimiter(cfg.RateLimit)
	}

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router.New(handlers, routerOpts, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
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

// newCouponRegistry builds the file-backed registry when enabled. Otherwise
// any code is accepted as an opaque string.
func newCouponRegistry(ctx context.Context, cfg config.CouponConfig, logger zerolog.Logger) (coupon.Registry, error) {
	if !cfg.Enabled {
		logger.Info().Msg("coupon registry disabled, codes are accepted as given")
		return coupon.NewOpenRegistry(), nil
	}

	fileLoader := coupon.NewFileLoader(logger)

	var s3Loader coupon.Loader
	if cfg.S3Enabled {
		l, err := coupon.NewS3Loader(ctx, cfg.S3Bucket, cfg.S3Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
		} else {
			s3Loader = l
		}
	}

	loader := coupon.NewFallbackLoader(s3Loader, fileLoader, cfg.S3Prefix, cfg.S3Enabled, logger)

	return coupon.NewRegistry(ctx, coupon.RegistryConfig{
		Files:         cfg.Files,
		MinMatchCount: cfg.MinMatchCount,
		MinLength:     cfg.MinLength,
		MaxLength:     cfg.MaxLength,
	}, loader, logger)
}
