// Package worker mirrors month expenses to the spreadsheet in response to
// change events.
package worker

import (
	"context"
	"errors"
	"fmt"

	"planner/internal/amqp"
	"planner/internal/core"
	"planner/internal/keys"
	"planner/internal/log"
	"planner/internal/sheets"
)

// ExpenseReader returns the stored expenses of a month.
type ExpenseReader interface {
	Expenses(ctx context.Context, scope core.Scope) ([]core.Expense, error)
}

// invalidator is implemented by readers that cache what they read.
type invalidator interface {
	Invalidate(key string)
}

// ExportWorker re-exports a month whenever its expenses change.
type ExportWorker struct {
	reader   ExpenseReader
	exporter sheets.ExpenseExporter
	lister   sheets.ExpenseLister // optional
	logger   *log.Logger
}

// NewExportWorker builds a worker. When exporter can also list a month, an
// export is skipped if the tab already holds the same rows.
func NewExportWorker(reader ExpenseReader, exporter sheets.ExpenseExporter, logger *log.Logger) *ExportWorker {
	if logger == nil {
		logger = log.New(log.Config{Component: log.ComponentWorker})
	}
	w := &ExportWorker{reader: reader, exporter: exporter, logger: logger}
	if l, ok := exporter.(sheets.ExpenseLister); ok {
		w.lister = l
	}
	return w
}

// HandleBucketChanged processes one change event. Events for other kinds
// are acknowledged without work.
func (w *ExportWorker) HandleBucketChanged(ctx context.Context, msg *amqp.BucketChangedMessage) error {
	if msg.Kind != keys.KindExpenses {
		w.logger.DebugContext(ctx, "Ignoring bucket change", log.FieldKind, msg.Kind, log.FieldKey, msg.Key)
		return nil
	}
	// The event comes from another process, so a cached copy is stale.
	if inv, ok := w.reader.(invalidator); ok && msg.Key != "" {
		inv.Invalidate(msg.Key)
	}
	if _, err := w.SyncMonth(ctx, msg.Scope()); err != nil {
		return fmt.Errorf("sync %s: %w", msg.Scope(), err)
	}
	return nil
}

// SyncMonth exports one month and reports whether a write happened.
func (w *ExportWorker) SyncMonth(ctx context.Context, scope core.Scope) (bool, error) {
	expenses, err := w.reader.Expenses(ctx, scope)
	if err != nil {
		return false, fmt.Errorf("read expenses: %w", err)
	}

	if w.lister != nil {
		current, err := w.lister.ListExpenses(ctx, scope)
		if err != nil {
			w.logger.WarnContext(ctx, "Could not read exported month, exporting anyway",
				log.FieldYear, scope.Year,
				log.FieldMonth, int(scope.Month),
				log.FieldError, err)
		} else if sameRows(current, expenses) {
			w.logger.DebugContext(ctx, "Exported month already up to date",
				log.FieldYear, scope.Year,
				log.FieldMonth, int(scope.Month))
			return false, nil
		}
	}

	ref, err := w.exporter.Export(ctx, scope, expenses)
	if err != nil {
		return false, fmt.Errorf("export expenses: %w", err)
	}
	w.logger.InfoContext(ctx, "Successfully exported month",
		log.FieldYear, scope.Year,
		log.FieldMonth, int(scope.Month),
		log.FieldCount, len(expenses),
		log.FieldSheetsRef, ref)
	return true, nil
}

// Backfill exports every month from first through last, for events lost
// while the worker was down. Failures are logged and the walk goes on.
func (w *ExportWorker) Backfill(ctx context.Context, first, last core.Scope) error {
	var errs []error
	written := 0
	for s := first; !last.Before(s); s = s.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		ok, err := w.SyncMonth(ctx, s)
		if err != nil {
			w.logger.ErrorContext(ctx, "Failed to export month during backfill",
				log.FieldYear, s.Year,
				log.FieldMonth, int(s.Month),
				log.FieldError, err)
			errs = append(errs, fmt.Errorf("%s: %w", s, err))
			continue
		}
		if ok {
			written++
		}
	}
	w.logger.InfoContext(ctx, "Backfill completed",
		"from", first.String(),
		"to", last.String(),
		log.FieldCount, written,
		"failed", len(errs))
	return errors.Join(errs...)
}

// sameRows compares what a tab shows. IDs are not exported.
func sameRows(a, b []core.Expense) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Category != b[i].Category || a[i].Description != b[i].Description || a[i].Amount != b[i].Amount {
			return false
		}
	}
	return true
}
