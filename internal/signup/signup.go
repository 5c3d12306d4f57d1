// Package signup keeps the first-use date that bounds the history view.
package signup

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"planner/internal/core"
	"planner/internal/keys"
	"planner/internal/kv"
	"planner/internal/log"
)

// Layout is the stored timestamp format: RFC 3339 in UTC with milliseconds.
const Layout = "2006-01-02T15:04:05.000Z07:00"

// Anchor is the loaded signup date.
type Anchor struct {
	Date time.Time
}

// Scope returns the signup month.
func (a Anchor) Scope() core.Scope {
	return core.ScopeOf(a.Date)
}

// Init returns the stored signup date, writing now when none exists yet or
// the stored value cannot be parsed. An existing valid date is never
// overwritten.
func Init(ctx context.Context, store kv.Store, scheme keys.Scheme, now time.Time) (Anchor, error) {
	key := scheme.Global(keys.SignupDate)
	raw, ok, err := store.Get(ctx, key)
	if err != nil {
		return Anchor{}, fmt.Errorf("read signup date: %w", err)
	}
	if ok {
		if t, err := Parse(raw); err == nil {
			return Anchor{Date: t}, nil
		}
		slog.WarnContext(ctx, "Malformed signup date, resetting",
			log.FieldKey, key, "value", raw)
	}

	date := now.UTC().Truncate(time.Millisecond)
	if err := store.Set(ctx, key, Format(date)); err != nil {
		return Anchor{}, fmt.Errorf("write signup date: %w", err)
	}
	slog.InfoContext(ctx, "Signup date recorded", "date", Format(date))
	return Anchor{Date: date}, nil
}

// Format renders t the way it is stored.
func Format(t time.Time) string {
	return t.UTC().Format(Layout)
}

// Parse accepts a full ISO-8601 timestamp or a bare date.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse signup date %q: %w", s, err)
	}
	return t, nil
}
