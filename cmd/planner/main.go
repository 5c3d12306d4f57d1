package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"planner/internal/archive"
	"planner/internal/cli"
	"planner/internal/config"
	"planner/internal/credential"
	apphttp "planner/internal/http"
	"planner/internal/keys"
	"planner/internal/log"
	"planner/internal/playback"
)

func main() {
	cli.LoadEnvFile()

	cfg := config.Load()
	logger := cli.SetupLogger(cfg.LogLevel)
	cfg = cli.LoadAndValidateConfig(logger, (*config.Config).Validate)

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	if err := run(ctx, logger, cfg); err != nil {
		logger.Error("Planner server stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func run(ctx context.Context, logger *log.Logger, cfg *config.Config) error {
	res, err := cli.OpenBackend(ctx, logger, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err)
		}
	}()

	p, err := cli.OpenPlanner(ctx, logger, cfg, res)
	if err != nil {
		return err
	}
	defer p.Close()

	var player apphttp.Player
	if cfg.PlaybackAPIURL != "" {
		player = newPlayer(logger, cfg)
	}

	srv := apphttp.NewServer(apphttp.Options{
		Addr:               ":" + cfg.Port,
		Planner:            p,
		Archive:            archive.NewBuilder(res.Store, keys.New(cfg.KeyPrefix), logger.WithComponent(log.ComponentArchive)),
		Player:             player,
		Ready:              res.Ready,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger.WithComponent(log.ComponentHTTP),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting planner server",
			"port", cfg.Port,
			log.FieldBackend, cfg.DataBackend,
			"events_enabled", res.Events != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return res.Caches.Run(gctx, time.Minute)
	})
	g.Go(func() error {
		return srv.RunMaintenance(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// newPlayer wires the playback client to the system keyring. Without a
// keyring the client still works but forgets its token on restart.
func newPlayer(logger *log.Logger, cfg *config.Config) *playback.Client {
	playbackLogger := logger.WithComponent(log.ComponentPlayback)
	home, _ := os.UserHomeDir()
	tokens, err := credential.Open(cfg.KeyringService, filepath.Join(home, ".config", cfg.KeyringService))
	if err != nil {
		playbackLogger.Warn("Keyring unavailable, playback token will not persist", log.FieldError, err)
		return playback.NewClient(cfg.PlaybackAPIURL, nil, playbackLogger)
	}
	client := playback.NewClient(cfg.PlaybackAPIURL, tokens, playbackLogger)
	client.Subscribe(func(e playback.Event) {
		playbackLogger.Info("Playback event", "type", string(e.Type), "message", e.Message)
	})
	return client
}
