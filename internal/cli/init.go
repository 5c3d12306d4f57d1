// Package cli provides common CLI initialization utilities shared by
// cmd/planner, cmd/planner-worker and cmd/plannerctl.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"planner/internal/backend"
	"planner/internal/config"
	"planner/internal/keys"
	"planner/internal/log"
	"planner/internal/planner"
)

// SetupLogger initializes structured logging at the configured level and
// makes it the process default.
func SetupLogger(level string) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Level = log.ParseLevel(level)
	logger := log.New(cfg)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and runs validate on it,
// exiting the process on failure.
func LoadAndValidateConfig(logger *log.Logger, validate func(*config.Config) error) *config.Config {
	cfg := config.Load()
	if err := validate(cfg); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// OpenBackend creates the configured store and its companions.
func OpenBackend(ctx context.Context, logger *log.Logger, cfg *config.Config) (*backend.Result, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger.WithComponent(log.ComponentBackend)).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("create %s backend: %w", bcfg.Type, err)
	}
	return res, nil
}

// OpenPlanner opens the planner over an initialized backend.
func OpenPlanner(ctx context.Context, logger *log.Logger, cfg *config.Config, res *backend.Result) (*planner.Planner, error) {
	ref, err := planner.ParseHabitReference(cfg.HabitReference)
	if err != nil {
		return nil, err
	}
	return planner.Open(ctx, res.Store, planner.Options{
		Scheme:    keys.New(cfg.KeyPrefix),
		Notifier:  res.Notifier(),
		Reference: ref,
		Logger:    logger.WithComponent(log.ComponentPlanner),
	})
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		logger.Info("Shutdown signal received")
	}()
	return ctx, cancel
}
