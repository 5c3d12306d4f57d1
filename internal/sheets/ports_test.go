package sheets

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"planner/internal/core"
)

func TestTitle(t *testing.T) {
	if got := Title(core.Scope{Year: 2025, Month: time.March}); got != "2025 Mar" {
		t.Errorf("Title() = %q, want %q", got, "2025 Mar")
	}
}

func TestRows(t *testing.T) {
	tests := []struct {
		name     string
		expenses []core.Expense
		want     [][]any
	}{
		{
			name:     "empty month",
			expenses: nil,
			want: [][]any{
				{"Category", "Description", "Amount"},
				{"Total", "", 0.0},
			},
		},
		{
			name: "keeps stored order",
			expenses: []core.Expense{
				{ID: 2, Category: "Rent", Amount: 800, Description: "Flat"},
				{ID: 1, Category: "Food", Amount: 12.5, Description: "Lunch"},
			},
			want: [][]any{
				{"Category", "Description", "Amount"},
				{"Rent", "Flat", 800.0},
				{"Food", "Lunch", 12.5},
				{"Total", "", 812.5},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Rows(tt.expenses)); diff != "" {
				t.Errorf("Rows() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
