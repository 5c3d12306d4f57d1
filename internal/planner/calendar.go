package planner

import (
	"planner/internal/core"
	"planner/internal/keys"
)

// Summarize derives the calendar cell for one day. Habit counts only cover
// trackers that still exist; orphaned flags contribute nothing.
func Summarize(daily core.DailyData, scope core.Scope, day int, trackers []core.Tracker) core.DaySummary {
	d := daily[keys.Day(scope.Month, day)]
	s := core.DaySummary{
		Day:         day,
		HasTodos:    len(d.Todos) > 0,
		TotalTodos:  len(d.Todos),
		TotalHabits: len(trackers),
	}
	for _, t := range d.Todos {
		if t.Completed {
			s.CompletedTodos++
		}
	}
	for _, t := range trackers {
		if d.Habits[t.ID] {
			s.CompletedHabits++
		}
	}
	allTodos := s.CompletedTodos == s.TotalTodos
	allHabits := s.CompletedHabits == s.TotalHabits
	s.FullyCompleted = allTodos && allHabits && (s.TotalTodos > 0 || s.TotalHabits > 0)
	return s
}

// Calendar returns one summary per day of the active month.
func (p *Planner) Calendar() []core.DaySummary {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calendarLocked()
}

func (p *Planner) calendarLocked() []core.DaySummary {
	days := p.scope.Days()
	out := make([]core.DaySummary, 0, days)
	for day := 1; day <= days; day++ {
		out = append(out, Summarize(p.daily, p.scope, day, p.trackers))
	}
	return out
}
