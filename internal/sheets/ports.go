// Package sheets defines the spreadsheet export ports and the layout shared
// by every exporter.
package sheets

import (
	"context"

	"planner/internal/core"
)

// Ports for outbound adapters.
type (
	// ExpenseExporter replaces the month's tab with the given expenses.
	ExpenseExporter interface {
		Export(ctx context.Context, scope core.Scope, expenses []core.Expense) (ref string, err error)
	}

	// ExpenseLister reads back what was last exported for a month.
	ExpenseLister interface {
		ListExpenses(ctx context.Context, scope core.Scope) ([]core.Expense, error)
	}
)

// Header is the first row of every month tab.
var Header = []any{"Category", "Description", "Amount"}

// TotalLabel marks the closing row of a month tab.
const TotalLabel = "Total"

// Title names the tab that holds scope, e.g. "2025 Mar".
func Title(scope core.Scope) string {
	return scope.Label()
}

// Rows lays out a month tab: the header, one row per expense in stored
// order, then the total.
func Rows(expenses []core.Expense) [][]any {
	rows := make([][]any, 0, len(expenses)+2)
	rows = append(rows, append([]any(nil), Header...))
	for _, e := range expenses {
		rows = append(rows, []any{e.Category, e.Description, e.Amount})
	}
	rows = append(rows, []any{TotalLabel, "", core.Total(expenses)})
	return rows
}
