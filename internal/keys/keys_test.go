package keys

import (
	"errors"
	"testing"
	"time"

	"planner/internal/core"
)

func TestMonthKeys(t *testing.T) {
	s := New("")
	cases := []struct {
		kind  Kind
		scope core.Scope
		want  string
	}{
		{KindDailyData, core.Scope{Year: 2025, Month: time.January}, "digitalPlanner_dailyData_2025_0"},
		{KindNotes, core.Scope{Year: 2025, Month: time.December}, "digitalPlanner_notes_2025_11"},
		{KindChecklist, core.Scope{Year: 2024, Month: time.February}, "digitalPlanner_checklist_2024_1"},
		{KindExpenses, core.Scope{Year: 2025, Month: time.March}, "digitalPlanner_expenses_2025_2"},
	}
	for _, tc := range cases {
		got, err := s.Month(tc.kind, tc.scope)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tc.kind, err)
		}
		if got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.kind, tc.want, got)
		}
	}
}

func TestMonthKeyErrors(t *testing.T) {
	s := New("")
	if _, err := s.Month("weather", core.Scope{Year: 2025, Month: time.March}); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
	if _, err := s.Month(KindNotes, core.Scope{Year: 2025, Month: 0}); !errors.Is(err, core.ErrInvalidMonth) {
		t.Fatalf("expected ErrInvalidMonth, got %v", err)
	}
	if _, err := s.Journal(core.Scope{Year: 2025, Month: time.February}, 29); !errors.Is(err, core.ErrInvalidDay) {
		t.Fatalf("expected ErrInvalidDay, got %v", err)
	}
}

func TestGlobalAndJournalKeys(t *testing.T) {
	s := New("p_")
	if got := s.Global(Projects); got != "p_projects" {
		t.Fatalf("unexpected projects key %q", got)
	}
	got, err := s.Journal(core.Scope{Year: 2025, Month: time.July}, 4)
	if err != nil {
		t.Fatal(err)
	}
	if got != "p_journal_2025_6_4" {
		t.Fatalf("unexpected journal key %q", got)
	}
}

func TestKeysAreDistinct(t *testing.T) {
	s := New("")
	seen := map[string]string{}
	add := func(k, desc string) {
		if prev, ok := seen[k]; ok {
			t.Fatalf("key %q produced by %s and %s", k, prev, desc)
		}
		seen[k] = desc
	}
	for _, g := range []string{Projects, Trackers, SignupDate} {
		add(s.Global(g), g)
	}
	for year := 2023; year <= 2026; year++ {
		for m := time.January; m <= time.December; m++ {
			scope := core.Scope{Year: year, Month: m}
			for _, kind := range MonthKinds() {
				k, err := s.Month(kind, scope)
				if err != nil {
					t.Fatal(err)
				}
				add(k, string(kind)+" "+scope.String())
			}
			for d := 1; d <= scope.Days(); d++ {
				k, err := s.Journal(scope, d)
				if err != nil {
					t.Fatal(err)
				}
				add(k, "journal "+scope.String())
			}
		}
	}
}

func TestParse(t *testing.T) {
	s := New("")
	scope := core.Scope{Year: 2025, Month: time.October}
	k, _ := s.Month(KindExpenses, scope)
	loc, ok := s.Parse(k)
	if !ok || loc.Kind != KindExpenses || loc.Scope != scope {
		t.Fatalf("unexpected location %+v (ok=%v)", loc, ok)
	}
	k, _ = s.Journal(scope, 17)
	loc, ok = s.Parse(k)
	if !ok || loc.Kind != KindJournal || loc.Day != 17 {
		t.Fatalf("unexpected journal location %+v (ok=%v)", loc, ok)
	}
	loc, ok = s.Parse(s.Global(SignupDate))
	if !ok || loc.Global != SignupDate {
		t.Fatalf("unexpected global location %+v", loc)
	}
	for _, bad := range []string{"other_notes_2025_1", "digitalPlanner_notes_2025_12", "digitalPlanner_foo_2025_1", "digitalPlanner_notes_x_1"} {
		if _, ok := s.Parse(bad); ok {
			t.Fatalf("%q should not parse", bad)
		}
	}
}

func TestDayKey(t *testing.T) {
	if got := Day(time.March, 7); got != "2-7" {
		t.Fatalf("unexpected day key %q", got)
	}
	m, d, ok := ParseDay("11-31")
	if !ok || m != time.December || d != 31 {
		t.Fatalf("unexpected parse %v %d %v", m, d, ok)
	}
	for _, bad := range []string{"12-1", "3", "a-1", "3-0"} {
		if _, _, ok := ParseDay(bad); ok {
			t.Fatalf("%q should not parse", bad)
		}
	}
}
