package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"planner/internal/archive"
	"planner/internal/cli"
	"planner/internal/config"
	"planner/internal/core"
	"planner/internal/keys"
	"planner/internal/log"
	gsheet "planner/internal/sheets/google"
	"planner/internal/signup"
	"planner/internal/worker"
)

var errNoBroker = errors.New("AMQP broker unreachable at startup")

func main() {
	cli.LoadEnvFile()

	cfg := config.Load()
	logger := cli.SetupLogger(cfg.LogLevel).WithComponent(log.ComponentWorker)
	logger.Info("Starting planner-worker")
	cfg = cli.LoadAndValidateConfig(logger, (*config.Config).ValidateWorker)

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	if err := run(ctx, logger, cfg); err != nil {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}

func run(ctx context.Context, logger *log.Logger, cfg *config.Config) error {
	// The server writes the store from another process, so cached months
	// would go stale between events.
	cfg.CacheSize = 0
	res, err := cli.OpenBackend(ctx, logger, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err)
		}
	}()

	sheetsClient, err := gsheet.New(ctx, gsheet.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
		Logger:          logger.WithComponent(log.ComponentSheets),
	})
	if err != nil {
		return err
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	scheme := keys.New(cfg.KeyPrefix)
	reader := archive.NewBuilder(res.Store, scheme, logger.WithComponent(log.ComponentArchive))
	exportWorker := worker.NewExportWorker(reader, sheetsClient, logger)

	// Months changed while the worker was down have no pending event.
	anchor, err := signup.Init(ctx, res.Store, scheme, time.Now())
	if err != nil {
		return err
	}
	logger.Info("Performing startup backfill", "from", anchor.Scope().String())
	if err := exportWorker.Backfill(ctx, anchor.Scope(), core.ScopeOf(time.Now())); err != nil {
		logger.Error("Startup backfill incomplete", log.FieldError, err)
	}

	if res.Events == nil {
		return errNoBroker
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := res.Events.Run(gctx, exportWorker.HandleBucketChanged)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		return res.Caches.Run(gctx, time.Minute)
	})
	return g.Wait()
}
