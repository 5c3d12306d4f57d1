// Package archive builds the cross-month views: the yearly notes and journal
// archives and the history since signup. Everything here is read-only and
// derived from the store on demand.
package archive

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"planner/internal/core"
	"planner/internal/keys"
	"planner/internal/kv"
	"planner/internal/log"
	"planner/internal/planner"
)

// Builder scans the store through the key scheme.
type Builder struct {
	store  kv.Store
	scheme keys.Scheme
	logger *log.Logger
}

func NewBuilder(store kv.Store, scheme keys.Scheme, logger *log.Logger) *Builder {
	if logger == nil {
		logger = log.New(log.Config{Component: log.ComponentArchive})
	}
	return &Builder{store: store, scheme: scheme, logger: logger}
}

// NotesArchive returns the twelve months of year with their notes.
func (b *Builder) NotesArchive(ctx context.Context, year int) ([]core.NotesArchiveMonth, error) {
	out := make([]core.NotesArchiveMonth, 0, 12)
	for m := time.January; m <= time.December; m++ {
		scope := core.Scope{Year: year, Month: m}
		notes, err := b.notes(ctx, scope)
		if err != nil {
			return nil, err
		}
		out = append(out, core.NotesArchiveMonth{
			Year:       year,
			Month:      m,
			MonthName:  m.String(),
			Notes:      notes,
			HasContent: strings.TrimSpace(notes) != "",
		})
	}
	return out, nil
}

// WithContent keeps the months that have notes.
func WithContent(months []core.NotesArchiveMonth) []core.NotesArchiveMonth {
	out := make([]core.NotesArchiveMonth, 0, len(months))
	for _, m := range months {
		if m.HasContent {
			out = append(out, m)
		}
	}
	return out
}

// JournalArchive returns every month of year with its journal days grouped
// into weeks of seven. The last week of a month may be shorter.
func (b *Builder) JournalArchive(ctx context.Context, year int) ([]core.JournalArchiveMonth, error) {
	out := make([]core.JournalArchiveMonth, 0, 12)
	for m := time.January; m <= time.December; m++ {
		scope := core.Scope{Year: year, Month: m}
		month := core.JournalArchiveMonth{Year: year, Month: m, MonthName: m.String()}
		days := scope.Days()
		week := make([]core.JournalDay, 0, 7)
		for day := 1; day <= days; day++ {
			jd, err := b.journalDay(ctx, scope, day)
			if err != nil {
				return nil, err
			}
			month.HasContent = month.HasContent || jd.HasContent
			week = append(week, jd)
			if len(week) == 7 || day == days {
				month.Weeks = append(month.Weeks, week)
				week = make([]core.JournalDay, 0, 7)
			}
		}
		out = append(out, month)
	}
	return out, nil
}

// History lists every month from the signup month through current, most
// recent first. Months without stored data still appear. A signup later
// than current yields no months.
func (b *Builder) History(ctx context.Context, signup, current core.Scope) ([]core.HistoricalMonth, error) {
	if err := current.Validate(); err != nil {
		return nil, err
	}
	var months []core.HistoricalMonth
	for s := signup; !current.Before(s); s = s.Next() {
		notes, err := b.notes(ctx, s)
		if err != nil {
			return nil, err
		}
		expenses, err := b.expenses(ctx, s)
		if err != nil {
			return nil, err
		}
		months = append(months, core.HistoricalMonth{
			Year:          s.Year,
			Month:         s.Month,
			Notes:         notes,
			Expenses:      expenses,
			TotalExpenses: core.Total(expenses),
		})
	}
	for i, j := 0, len(months)-1; i < j; i, j = i+1, j-1 {
		months[i], months[j] = months[j], months[i]
	}
	if months == nil {
		months = []core.HistoricalMonth{}
	}
	return months, nil
}

// Expenses returns the stored expenses of one month.
func (b *Builder) Expenses(ctx context.Context, scope core.Scope) ([]core.Expense, error) {
	return b.expenses(ctx, scope)
}

// Invalidate forgets any cached copy of key. It is a no-op on stores
// without a read cache.
func (b *Builder) Invalidate(key string) {
	if c, ok := b.store.(*kv.Cached); ok {
		c.Invalidate(key)
	}
}

func (b *Builder) notes(ctx context.Context, scope core.Scope) (string, error) {
	key, err := b.scheme.Month(keys.KindNotes, scope)
	if err != nil {
		return "", err
	}
	notes, _, err := b.store.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("read notes %s: %w", scope, err)
	}
	return notes, nil
}

func (b *Builder) expenses(ctx context.Context, scope core.Scope) ([]core.Expense, error) {
	key, err := b.scheme.Month(keys.KindExpenses, scope)
	if err != nil {
		return nil, err
	}
	expenses, _, err := kv.GetJSON[[]core.Expense](ctx, b.store, key)
	if errors.Is(err, kv.ErrMalformed) {
		b.logger.WarnContext(ctx, "Malformed expenses skipped", log.FieldKey, key, log.FieldError, err)
		err = nil
	}
	if err != nil {
		return nil, fmt.Errorf("read expenses %s: %w", scope, err)
	}
	if expenses == nil {
		expenses = []core.Expense{}
	}
	return expenses, nil
}

func (b *Builder) journalDay(ctx context.Context, scope core.Scope, day int) (core.JournalDay, error) {
	key, err := b.scheme.Journal(scope, day)
	if err != nil {
		return core.JournalDay{}, err
	}
	e, _, err := kv.GetJSON[core.JournalEntry](ctx, b.store, key)
	if errors.Is(err, kv.ErrMalformed) {
		b.logger.WarnContext(ctx, "Malformed journal entry skipped", log.FieldKey, key, log.FieldError, err)
		err = nil
	}
	if err != nil {
		return core.JournalDay{}, fmt.Errorf("read journal %s day %d: %w", scope, day, err)
	}
	e = planner.NormalizeJournal(e)
	return core.JournalDay{
		Day:        day,
		Date:       scope.Date(day),
		Content:    e.Content,
		Mood:       e.Mood,
		Energy:     e.Energy,
		Weather:    e.Weather,
		HasContent: e.HasContent(),
	}, nil
}
