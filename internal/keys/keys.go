// Package keys builds the storage keys used by the planner.
//
// Every key is "<prefix><body>". Month-scoped bodies carry the year and a
// zero-based month index (January = 0) so stored data stays compatible with
// the browser planner that first wrote it.
package keys

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"planner/internal/core"
)

// DefaultPrefix is prepended to every key unless configured otherwise.
const DefaultPrefix = "digitalPlanner_"

// Kind names a month-scoped entity.
type Kind string

const (
	KindDailyData Kind = "dailyData"
	KindNotes     Kind = "notes"
	KindChecklist Kind = "checklist"
	KindExpenses  Kind = "expenses"
	KindJournal   Kind = "journal"
)

// Global entity names.
const (
	Projects   = "projects"
	Trackers   = "processTrackers"
	SignupDate = "signupDate"
)

var ErrUnknownKind = errors.New("unknown key kind")

// MonthKinds lists the kinds stored once per (year, month).
func MonthKinds() []Kind {
	return []Kind{KindDailyData, KindNotes, KindChecklist, KindExpenses}
}

// Scheme maps entities to keys.
type Scheme struct {
	Prefix string
}

// New returns a scheme with the given prefix, falling back to DefaultPrefix.
func New(prefix string) Scheme {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return Scheme{Prefix: prefix}
}

// Global returns the key of a global entity.
func (s Scheme) Global(name string) string {
	return s.Prefix + name
}

// Month returns the key of a month-scoped kind.
func (s Scheme) Month(kind Kind, scope core.Scope) (string, error) {
	switch kind {
	case KindDailyData, KindNotes, KindChecklist, KindExpenses:
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if err := scope.Validate(); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%s_%d_%d", s.Prefix, kind, scope.Year, int(scope.Month)-1), nil
}

// Journal returns the key of one day's journal entry.
func (s Scheme) Journal(scope core.Scope, day int) (string, error) {
	if err := scope.Validate(); err != nil {
		return "", err
	}
	if err := scope.ValidDay(day); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%s_%d_%d_%d", s.Prefix, KindJournal, scope.Year, int(scope.Month)-1, day), nil
}

// Day returns the DailyData map key for a day: "<month0>-<day>".
func Day(month time.Month, day int) string {
	return fmt.Sprintf("%d-%d", int(month)-1, day)
}

// ParseDay splits a DailyData map key into its month and day.
func ParseDay(k string) (time.Month, int, bool) {
	m, d, ok := strings.Cut(k, "-")
	if !ok {
		return 0, 0, false
	}
	m0, err := strconv.Atoi(m)
	if err != nil || m0 < 0 || m0 > 11 {
		return 0, 0, false
	}
	day, err := strconv.Atoi(d)
	if err != nil || day < 1 || day > 31 {
		return 0, 0, false
	}
	return time.Month(m0 + 1), day, true
}

// Location describes what a key addresses.
type Location struct {
	Global string
	Kind   Kind
	Scope  core.Scope
	Day    int
}

// Parse reverses the scheme. Keys outside the prefix or with an unknown body
// report false.
func (s Scheme) Parse(key string) (Location, bool) {
	body, ok := strings.CutPrefix(key, s.Prefix)
	if !ok {
		return Location{}, false
	}
	switch body {
	case Projects, Trackers, SignupDate:
		return Location{Global: body}, true
	}
	parts := strings.Split(body, "_")
	if len(parts) < 3 {
		return Location{}, false
	}
	kind := Kind(parts[0])
	nums := make([]int, 0, len(parts)-1)
	for _, p := range parts[1:] {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Location{}, false
		}
		nums = append(nums, n)
	}
	if nums[1] < 0 || nums[1] > 11 {
		return Location{}, false
	}
	loc := Location{Kind: kind, Scope: core.Scope{Year: nums[0], Month: time.Month(nums[1] + 1)}}
	switch kind {
	case KindDailyData, KindNotes, KindChecklist, KindExpenses:
		if len(nums) != 2 {
			return Location{}, false
		}
	case KindJournal:
		if len(nums) != 3 || loc.Scope.ValidDay(nums[2]) != nil {
			return Location{}, false
		}
		loc.Day = nums[2]
	default:
		return Location{}, false
	}
	return loc, true
}
