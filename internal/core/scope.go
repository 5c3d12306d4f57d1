package core

import (
	"fmt"
	"time"
)

// Scope identifies a (year, month) bucket. Month is 1-12.
type Scope struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// ScopeOf returns the scope containing t.
func ScopeOf(t time.Time) Scope {
	return Scope{Year: t.Year(), Month: t.Month()}
}

func (s Scope) Validate() error {
	if s.Month < time.January || s.Month > time.December {
		return fmt.Errorf("%w: %d", ErrInvalidMonth, int(s.Month))
	}
	return nil
}

// Days returns the number of days in the scope's month.
func (s Scope) Days() int {
	return DaysInMonth(s.Year, s.Month)
}

// Date returns midnight UTC of the given day inside the scope.
func (s Scope) Date(day int) time.Time {
	return time.Date(s.Year, s.Month, day, 0, 0, 0, 0, time.UTC)
}

// ValidDay reports an error if day falls outside the scope's month.
func (s Scope) ValidDay(day int) error {
	if day < 1 || day > s.Days() {
		return fmt.Errorf("%w: %d", ErrInvalidDay, day)
	}
	return nil
}

// Before reports whether s is strictly earlier than o.
func (s Scope) Before(o Scope) bool {
	if s.Year != o.Year {
		return s.Year < o.Year
	}
	return s.Month < o.Month
}

// Next returns the following month.
func (s Scope) Next() Scope {
	if s.Month == time.December {
		return Scope{Year: s.Year + 1, Month: time.January}
	}
	return Scope{Year: s.Year, Month: s.Month + 1}
}

// Label returns the short tab-style label, e.g. "2025 Mar".
func (s Scope) Label() string {
	return fmt.Sprintf("%d %s", s.Year, s.Month.String()[:3])
}

func (s Scope) String() string {
	return fmt.Sprintf("%04d-%02d", s.Year, int(s.Month))
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
