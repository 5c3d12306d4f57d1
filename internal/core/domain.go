package core

import (
	"errors"
	"strings"
)

// Project categories offered by the planner.
const (
	CategoryPersonal = "Personal"
	CategoryWork     = "Work"
	CategoryTravel   = "Travel"
	CategoryContent  = "Content"
	CategoryWorkout  = "Workout"
	CategoryMeal     = "Meal"
)

// Checklist names inside a MonthlyChecklist.
const (
	ChecklistReading    = "reading"
	ChecklistJournaling = "journaling"
)

// DefaultEnergy is the journal energy level used when none was recorded.
const DefaultEnergy = 5

type (
	Checkpoint struct {
		ID        int64  `json:"id"`
		Text      string `json:"text"`
		Completed bool   `json:"completed"`
	}

	Project struct {
		ID          int64        `json:"id"`
		Name        string       `json:"name"`
		Objective   string       `json:"objective"`
		Checkpoints []Checkpoint `json:"checkpoints"`
		Category    string       `json:"category"`
	}

	// Tracker is a habit definition. Process is a cached projection of the
	// habit's completion percentage for the active month.
	Tracker struct {
		ID      int64  `json:"id"`
		Name    string `json:"name"`
		Process int    `json:"process"`
		Color   string `json:"color"`
	}

	Todo struct {
		ID        int64  `json:"id"`
		Text      string `json:"text"`
		Completed bool   `json:"completed"`
	}

	// DayData is one day's record inside a month's DailyData. Absent todos
	// or habit flags mean "nothing planned" and "not completed".
	DayData struct {
		Todos  []Todo         `json:"todos,omitempty"`
		Habits map[int64]bool `json:"habits,omitempty"`
	}

	// DailyData maps a daily key ("<month0>-<day>") to that day's record.
	DailyData map[string]DayData

	Expense struct {
		ID          int64   `json:"id"`
		Category    string  `json:"category"`
		Amount      float64 `json:"amount"`
		Description string  `json:"description"`
	}

	// NewExpense is the draft typed by the user before it becomes an Expense.
	NewExpense struct {
		Category    string `json:"category"`
		Amount      string `json:"amount"`
		Description string `json:"description"`
	}

	MonthlyChecklist struct {
		Reading    []bool `json:"reading"`
		Journaling []bool `json:"journaling"`
	}

	JournalEntry struct {
		Content string `json:"journalContent"`
		Mood    string `json:"mood"`
		Energy  int    `json:"energy"`
		Weather string `json:"weather"`
	}
)

var (
	ErrInvalidDay       = errors.New("invalid day")
	ErrInvalidMonth     = errors.New("invalid month")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidExpense   = errors.New("invalid expense")
	ErrUnknownCategory  = errors.New("unknown project category")
	ErrUnknownChecklist = errors.New("unknown checklist")
)

// Categories returns the fixed project categories in display order.
func Categories() []string {
	return []string{CategoryPersonal, CategoryWork, CategoryTravel, CategoryContent, CategoryWorkout, CategoryMeal}
}

// ValidCategory reports whether c is one of the fixed project categories.
func ValidCategory(c string) bool {
	for _, v := range Categories() {
		if v == c {
			return true
		}
	}
	return false
}

// Parse validates the draft and converts it into an Expense without an id.
// Every field is required and the amount must be a non-negative decimal.
func (n NewExpense) Parse() (Expense, error) {
	category := strings.TrimSpace(n.Category)
	description := strings.TrimSpace(n.Description)
	if category == "" || description == "" || strings.TrimSpace(n.Amount) == "" {
		return Expense{}, ErrInvalidExpense
	}
	amount, err := ParseAmount(n.Amount)
	if err != nil {
		return Expense{}, errors.Join(ErrInvalidExpense, err)
	}
	return Expense{Category: category, Amount: amount, Description: description}, nil
}

// IsZero reports whether the draft is empty.
func (n NewExpense) IsZero() bool {
	return n == NewExpense{}
}

// NewChecklist returns an all-false checklist sized to days.
func NewChecklist(days int) MonthlyChecklist {
	return MonthlyChecklist{
		Reading:    make([]bool, days),
		Journaling: make([]bool, days),
	}
}

// Resize returns a copy of c sized to days, preserving flags by index.
func (c MonthlyChecklist) Resize(days int) MonthlyChecklist {
	out := NewChecklist(days)
	copy(out.Reading, c.Reading)
	copy(out.Journaling, c.Journaling)
	return out
}

// List returns the named boolean sequence.
func (c MonthlyChecklist) List(name string) ([]bool, error) {
	switch name {
	case ChecklistReading:
		return c.Reading, nil
	case ChecklistJournaling:
		return c.Journaling, nil
	default:
		return nil, ErrUnknownChecklist
	}
}

// Total sums the expense amounts.
func Total(expenses []Expense) float64 {
	var sum float64
	for _, e := range expenses {
		sum += e.Amount
	}
	return sum
}

// HasContent reports whether the entry carries any journal text.
func (j JournalEntry) HasContent() bool {
	return strings.TrimSpace(j.Content) != ""
}
