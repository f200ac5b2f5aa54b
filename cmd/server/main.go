package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prperemyshlev/wellness-portal/internal/app"
	"github.com/prperemyshlev/wellness-portal/internal/config"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "wellness-portal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; real environment variables take precedence
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read .env: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	infra, err := app.NewInfrastructure(ctx, *cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize infrastructure: %w", err)
	}
	logger := infra.Logger()
	defer func() { _ = logger.Sync() }()

	logger.Info("Wellness portal configured",
		zap.String("env", cfg.Env),
		zap.String("store", cfg.Store.Backend),
		zap.Bool("rate_limit", cfg.Redis.Enabled),
		zap.String("password_algorithm", cfg.Password.Algorithm),
		zap.Duration("access_ttl", cfg.JWT.AccessTokenExpiry.Duration),
		zap.Duration("refresh_ttl", cfg.JWT.RefreshTokenExpiry.Duration),
	)

	if err := app.NewApp(infra, cfg).Run(ctx); err != nil {
		logger.Error("Application failed", zap.Error(err))
		return err
	}

	logger.Info("Shutdown complete")
	return nil
}
