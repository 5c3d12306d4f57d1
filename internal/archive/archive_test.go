package archive

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"planner/internal/core"
	"planner/internal/keys"
	"planner/internal/kv"
	"planner/internal/log"
)

func newTestBuilder(store kv.Store) *Builder {
	return NewBuilder(store, keys.New(""), log.New(log.Config{Level: slog.LevelError, Output: io.Discard}))
}

func TestNotesArchive(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	require.NoError(t, store.Set(ctx, "digitalPlanner_notes_2025_0", "january plans"))
	require.NoError(t, store.Set(ctx, "digitalPlanner_notes_2025_1", "   \n\t"))
	require.NoError(t, store.Set(ctx, "digitalPlanner_notes_2024_0", "last year"))

	months, err := newTestBuilder(store).NotesArchive(ctx, 2025)
	require.NoError(t, err)
	require.Len(t, months, 12)
	require.True(t, months[0].HasContent)
	require.Equal(t, "January", months[0].MonthName)
	require.False(t, months[1].HasContent, "whitespace-only notes have no content")
	require.False(t, months[11].HasContent)

	filtered := WithContent(months)
	require.Len(t, filtered, 1)
	require.Equal(t, time.January, filtered[0].Month)
}

func TestJournalArchive(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	require.NoError(t, kv.SetJSON(ctx, store, "digitalPlanner_journal_2025_1_9",
		core.JournalEntry{Content: "skated", Mood: "happy", Energy: 8, Weather: "sun"}))
	require.NoError(t, store.Set(ctx, "digitalPlanner_journal_2025_1_10", "{broken"))
	require.NoError(t, kv.SetJSON(ctx, store, "digitalPlanner_journal_2025_2_1",
		core.JournalEntry{Mood: "tired"}))

	months, err := newTestBuilder(store).JournalArchive(ctx, 2025)
	require.NoError(t, err)
	require.Len(t, months, 12)

	feb := months[1]
	require.Len(t, feb.Weeks, 4)
	for _, w := range feb.Weeks {
		require.Len(t, w, 7)
	}
	require.True(t, feb.HasContent)
	day9 := feb.Weeks[1][1]
	require.Equal(t, 9, day9.Day)
	require.Equal(t, "skated", day9.Content)
	require.Equal(t, 8, day9.Energy)
	require.Equal(t, time.Date(2025, time.February, 9, 0, 0, 0, 0, time.UTC), day9.Date)
	day10 := feb.Weeks[1][2]
	require.False(t, day10.HasContent)
	require.Equal(t, core.DefaultEnergy, day10.Energy, "malformed entries read as empty")

	mar := months[2]
	require.Len(t, mar.Weeks, 5)
	require.Len(t, mar.Weeks[4], 3)
	require.False(t, mar.HasContent, "mood without text is not content")
}

func TestHistory(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	require.NoError(t, store.Set(ctx, "digitalPlanner_notes_2025_1", "feb notes"))
	require.NoError(t, kv.SetJSON(ctx, store, "digitalPlanner_expenses_2025_2", []core.Expense{
		{ID: 1, Category: "Food", Amount: 12.5, Description: "Lunch"},
		{ID: 2, Category: "Rent", Amount: 800, Description: "Flat"},
	}))
	require.NoError(t, store.Set(ctx, "digitalPlanner_expenses_2025_0", "not json"))

	b := newTestBuilder(store)
	got, err := b.History(ctx, core.Scope{Year: 2025, Month: time.January}, core.Scope{Year: 2025, Month: time.March})
	require.NoError(t, err)

	want := []core.HistoricalMonth{
		{Year: 2025, Month: time.March, Notes: "", Expenses: []core.Expense{
			{ID: 1, Category: "Food", Amount: 12.5, Description: "Lunch"},
			{ID: 2, Category: "Rent", Amount: 800, Description: "Flat"},
		}, TotalExpenses: 812.5},
		{Year: 2025, Month: time.February, Notes: "feb notes", Expenses: []core.Expense{}},
		{Year: 2025, Month: time.January, Expenses: []core.Expense{}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("history mismatch (-want +got):\n%s", diff)
	}
}

func TestHistoryAcrossYears(t *testing.T) {
	b := newTestBuilder(kv.NewMemory())
	got, err := b.History(context.Background(), core.Scope{Year: 2024, Month: time.November}, core.Scope{Year: 2025, Month: time.February})
	require.NoError(t, err)
	require.Len(t, got, 4)
	require.Equal(t, core.Scope{Year: 2025, Month: time.February}, core.Scope{Year: got[0].Year, Month: got[0].Month})
	require.Equal(t, core.Scope{Year: 2024, Month: time.November}, core.Scope{Year: got[3].Year, Month: got[3].Month})
}

func TestHistorySignupAfterCurrent(t *testing.T) {
	b := newTestBuilder(kv.NewMemory())
	got, err := b.History(context.Background(), core.Scope{Year: 2025, Month: time.May}, core.Scope{Year: 2025, Month: time.March})
	require.NoError(t, err)
	require.Empty(t, got)
}
