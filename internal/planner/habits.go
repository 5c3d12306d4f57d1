package planner

import (
	"context"
	"maps"
	"math"
	"slices"

	"planner/internal/core"
	"planner/internal/keys"
	"planner/internal/log"
)

// HabitPercentage is the share of elapsed days on which the habit was done:
// round(100 * completedDays / referenceDay). Only daily keys belonging to
// scope's month are counted.
func HabitPercentage(daily core.DailyData, scope core.Scope, trackerID int64, referenceDay int) int {
	if referenceDay <= 0 {
		return 0
	}
	completed := 0
	for k, d := range daily {
		m, _, ok := keys.ParseDay(k)
		if !ok || m != scope.Month {
			continue
		}
		if d.Habits[trackerID] {
			completed++
		}
	}
	return int(math.Round(100 * float64(completed) / float64(referenceDay)))
}

// ReferenceDay returns the denominator for habit percentages in scope,
// given the current time.
func ReferenceDay(scope core.Scope, today core.Scope, todayDay int, ref HabitReference) int {
	days := scope.Days()
	if ref == ReferenceViewed && scope.Before(today) {
		return days
	}
	return min(todayDay, days)
}

func (p *Planner) referenceDay() int {
	now := p.now()
	return ReferenceDay(p.scope, core.ScopeOf(now), now.Day(), p.reference)
}

// ToggleHabit flips the habit flag for day in the active month, persists the
// daily data and stores the recomputed percentage on the tracker. It returns
// the tracker's new percentage.
func (p *Planner) ToggleHabit(ctx context.Context, day int, trackerID int64) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.scope.ValidDay(day); err != nil {
		return 0, err
	}
	ti, err := p.trackerIndex(trackerID)
	if err != nil {
		return 0, err
	}

	dayKey := keys.Day(p.scope.Month, day)
	daily := cloneDaily(p.daily)
	d := daily[dayKey]
	if d.Habits == nil {
		d.Habits = make(map[int64]bool)
	}
	d.Habits[trackerID] = !d.Habits[trackerID]
	daily[dayKey] = d

	if err := p.saveMonth(ctx, keys.KindDailyData, daily); err != nil {
		return 0, err
	}
	p.daily = daily

	process := HabitPercentage(daily, p.scope, trackerID, p.referenceDay())
	trackers := slices.Clone(p.trackers)
	trackers[ti].Process = process
	if err := p.saveTrackers(ctx, trackers); err != nil {
		return 0, err
	}
	p.logger.DebugContext(ctx, "Habit toggled",
		log.FieldDay, day,
		log.FieldTracker, trackerID,
		log.FieldProcess, process)
	return process, nil
}

func cloneDaily(in core.DailyData) core.DailyData {
	out := make(core.DailyData, len(in))
	for k, d := range in {
		out[k] = core.DayData{Todos: slices.Clone(d.Todos), Habits: maps.Clone(d.Habits)}
	}
	return out
}
