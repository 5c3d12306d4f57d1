package google

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"planner/internal/core"
)

func TestParseRows(t *testing.T) {
	tests := []struct {
		name   string
		values [][]any
		want   []core.Expense
	}{
		{
			name:   "empty tab",
			values: nil,
			want:   []core.Expense{},
		},
		{
			name: "exported layout",
			values: [][]any{
				{"Category", "Description", "Amount"},
				{"Food", "Lunch", 12.5},
				{"Rent", "Flat", 800.0},
				{"Total", "", 812.5},
			},
			want: []core.Expense{
				{ID: 1, Category: "Food", Description: "Lunch", Amount: 12.5},
				{ID: 2, Category: "Rent", Description: "Flat", Amount: 800},
			},
		},
		{
			name: "user edits",
			values: [][]any{
				{"Category", "Description", "Amount"},
				{"Food", "Coffee", "2,40"},
				{},
				{"Misc", "no amount"},
				{"Misc", "bad", "a lot"},
				{"Books", "", "15"},
				{"total", "", "17.4"},
				{"After", "total", "1"},
			},
			want: []core.Expense{
				{ID: 1, Category: "Food", Description: "Coffee", Amount: 2.4},
				{ID: 2, Category: "Books", Amount: 15},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, parseRows(tt.values)); diff != "" {
				t.Errorf("parseRows() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"12.5", 12.5, true},
		{"12,5", 12.5, true},
		{" 3 ", 3, true},
		{"", 0, false},
		{"abc", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseAmount(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("parseAmount(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
