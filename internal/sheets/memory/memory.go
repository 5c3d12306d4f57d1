// Package memory is an in-process spreadsheet used when no Google account is
// configured and by tests.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"planner/internal/core"
	ports "planner/internal/sheets"
)

type Store struct {
	mu      sync.Mutex
	tabs    map[string][]core.Expense
	exports int
}

var (
	_ ports.ExpenseExporter = (*Store)(nil)
	_ ports.ExpenseLister   = (*Store)(nil)
)

func New() *Store {
	return &Store{tabs: map[string][]core.Expense{}}
}

// Export replaces the month's tab and returns a synthetic reference.
func (s *Store) Export(_ context.Context, scope core.Scope, expenses []core.Expense) (string, error) {
	if err := scope.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	title := ports.Title(scope)
	s.tabs[title] = slices.Clone(expenses)
	s.exports++
	return fmt.Sprintf("mem:%s!A1:C%d", title, len(expenses)+2), nil
}

func (s *Store) ListExpenses(_ context.Context, scope core.Scope) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := slices.Clone(s.tabs[ports.Title(scope)])
	if out == nil {
		out = []core.Expense{}
	}
	return out, nil
}

// Exports counts successful Export calls.
func (s *Store) Exports() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exports
}
