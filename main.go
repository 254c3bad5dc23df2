package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/tripnosis/tripnosis/internal/config"
	"github.com/tripnosis/tripnosis/internal/domain"
	"github.com/tripnosis/tripnosis/internal/handler"
	"github.com/tripnosis/tripnosis/internal/repository/jsonfile"
	"github.com/tripnosis/tripnosis/internal/repository/sqlite"
	"github.com/tripnosis/tripnosis/internal/service"
)

func main() {
	// A missing .env file is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(2)
	}

	level, _ := cfg.SlogLevel()
	logOpts := &slog.HandlerOptions{Level: level}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, logOpts),
		slog.NewJSONHandler(os.Stderr, logOpts),
	))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	db, err := openStore(cfg.Store)
	if err != nil {
		slog.Error("failed to open user store", "driver", cfg.Store.Driver, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		slog.Error("failed to prepare user store", "error", err)
		os.Exit(1)
	}
	slog.Info("user store ready", "driver", cfg.Store.Driver, "path", cfg.Store.Path)

	creds := service.NewCredentialStore(db.Users(), cfg.BcryptCost)
	if cfg.SeedDemoUser {
		if err := creds.SeedDemoUser(context.Background()); err != nil {
			slog.Error("failed to seed demo user", "error", err)
			os.Exit(1)
		}
		slog.Warn("demo account enabled; do not use in production", "email", service.DemoUserEmail)
	}

	authService := service.NewAuthService(creds, cfg.JWTSecret, cfg.TokenTTL)
	limiter := service.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	defer limiter.Stop()

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, authService, limiter, handler.NewMetrics(), cfg.CookieSecure)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.SecurityHeaders(mux),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func openStore(cfg config.StoreConfig) (domain.Database, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return sqlite.New(cfg.Path)
	default:
		return jsonfile.New(cfg.Path)
	}
}
