package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"planner/internal/core"
	"planner/internal/log"
	"planner/internal/sheets"
	gsheet "planner/internal/sheets/google"
	"planner/internal/signup"
	"planner/internal/worker"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a month's expenses to the spreadsheet",
	Long: "Write the selected month's expenses to its tab in the configured Google spreadsheet.\n" +
		"With --since-signup every month from signup through the selected month is exported.",
	Args: cobra.NoArgs,
	RunE: runExport,
}

var flagSinceSignup bool

func init() {
	exportCmd.Flags().BoolVar(&flagSinceSignup, "since-signup", false, "Export every month since signup")
	rootCmd.AddCommand(exportCmd)
}

// newExporter is replaced in tests.
var newExporter = func(ctx context.Context, s *session) (sheets.ExpenseExporter, error) {
	if s.cfg.GoogleSpreadsheetID == "" {
		return nil, errors.New("GOOGLE_SPREADSHEET_ID is not set")
	}
	return gsheet.New(ctx, gsheet.Options{
		SpreadsheetID:   s.cfg.GoogleSpreadsheetID,
		CredentialsJSON: s.cfg.GoogleServiceAccountJSON,
		CredentialsFile: s.cfg.GoogleServiceAccountFile,
		Logger:          s.logger.WithComponent(log.ComponentSheets),
	})
}

func runExport(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		last, err := selectedScope(s.now())
		if err != nil {
			return err
		}
		exporter, err := newExporter(ctx, s)
		if err != nil {
			return err
		}
		w := worker.NewExportWorker(s.archive, exporter, s.logger.WithComponent(log.ComponentWorker))
		out := cmd.OutOrStdout()

		if flagSinceSignup {
			anchor, err := signup.Init(ctx, s.store, s.scheme, s.now())
			if err != nil {
				return err
			}
			if err := w.Backfill(ctx, anchor.Scope(), last); err != nil {
				return err
			}
			fmt.Fprintf(out, "Exported %s through %s\n", anchor.Scope().Label(), last.Label())
			return nil
		}

		written, err := w.SyncMonth(ctx, last)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, exportMessage(last, written))
		return nil
	})
}

func exportMessage(scope core.Scope, written bool) string {
	if written {
		return fmt.Sprintf("Exported %s", scope.Label())
	}
	return fmt.Sprintf("%s already up to date", scope.Label())
}
