package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"studio-storefront/internal/cart"
	"studio-storefront/internal/catalog"
	"studio-storefront/internal/client"
	"studio-storefront/internal/codec"
	"studio-storefront/internal/config"
	"studio-storefront/internal/logger"
	"studio-storefront/internal/notifier"
	"studio-storefront/internal/repository"
	"studio-storefront/internal/server"
	"studio-storefront/internal/service"
	"studio-storefront/internal/storage"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log, cfg.Environment.Name)

	if err := run(cfg, log); err != nil {
		log.Error("storefront stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := client.InitDB(&cfg.Database, log)
	if err != nil {
		return err
	}

	cartRepo := repository.NewCartRepository(db)
	eventRepo := repository.NewEventRepository(db)

	var persistence cart.Persistence = cartRepo
	if cfg.Cart.Backend == "redis" {
		rdb, err := client.InitRedisClient(ctx, &cfg.Redis)
		if err != nil {
			return err
		}
		defer rdb.Close()
		persistence = repository.NewRedisCartRepository(rdb)
	}

	uploadBaseURL := cfg.Upload.PublicBaseURL
	if uploadBaseURL == "" {
		uploadBaseURL = strings.TrimRight(cfg.BaseURL, "/") + "/uploads"
	}
	fileStore, err := storage.NewLocalStore(cfg.Upload.Dir, uploadBaseURL)
	if err != nil {
		return err
	}

	mailer, err := notifier.New(client.NewMailClient(&cfg.Mail), notifier.Options{
		BusinessAddress: cfg.Mail.BusinessAddress,
		BaseURL:         cfg.BaseURL,
		Timeout:         cfg.Mail.Timeout,
	}, log.With("component", "notifier"))
	if err != nil {
		return err
	}

	services := catalog.Default()
	checkoutClient := client.NewStripeClient(&cfg.Stripe, log.With("component", "stripe"))

	cartService := service.NewCartService(services, persistence, cfg.Cart.TTL, log.With("component", "cart"))
	uploadService := service.NewUploadService(fileStore, cfg.Upload.MaxFileSize, cfg.Upload.MaxFiles, log.With("component", "upload"))
	checkoutService := service.NewCheckoutService(
		checkoutClient,
		cartService,
		codec.New(services, log.With("component", "codec")),
		eventRepo,
		mailer,
		cfg.BaseURL,
		log.With("component", "checkout"),
	)

	go sweep(ctx, cfg.Cart, cartRepo, cartService, log)

	srv := server.NewServer(cfg, log, services, cartService, checkoutService, uploadService)
	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting HTTP server", "addr", serverAddr, "cart_backend", cfg.Cart.Backend)
		if err := srv.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}
	log.Info("signal received, starting graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	// claimed notifications are never retried, so let them finish
	if err := checkoutService.Wait(shutdownCtx); err != nil {
		log.Warn("notifications still in flight at exit", "error", err)
	}
	log.Info("server exited")
	return nil
}

// sweep drops idle sessions from memory and expired carts from the database.
func sweep(ctx context.Context, cfg config.Cart, carts repository.CartRepository, sessions service.CartService, log *slog.Logger) {
	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			evicted := sessions.EvictIdle(cfg.IdleTimeout)
			removed, err := carts.DeleteExpired(ctx, now)
			if err != nil {
				log.Warn("delete expired carts", "error", err)
			}
			if evicted > 0 || removed > 0 {
				log.Info("cart sweep", "evicted_sessions", evicted, "expired_records", removed)
			}
		}
	}
}
