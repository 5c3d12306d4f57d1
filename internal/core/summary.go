package core

import "time"

// NotesArchiveMonth is one month of the notes archive.
type NotesArchiveMonth struct {
	Year       int        `json:"year"`
	Month      time.Month `json:"month"`
	MonthName  string     `json:"monthName"`
	Notes      string     `json:"notes"`
	HasContent bool       `json:"hasContent"`
}

// JournalDay is one day inside the journal archive.
type JournalDay struct {
	Day        int       `json:"day"`
	Date       time.Time `json:"date"`
	Content    string    `json:"content"`
	Mood       string    `json:"mood"`
	Energy     int       `json:"energy"`
	Weather    string    `json:"weather"`
	HasContent bool      `json:"hasContent"`
}

// JournalArchiveMonth groups a month's journal days into weeks of seven.
type JournalArchiveMonth struct {
	Year       int            `json:"year"`
	Month      time.Month     `json:"month"`
	MonthName  string         `json:"monthName"`
	Weeks      [][]JournalDay `json:"weeks"`
	HasContent bool           `json:"hasContent"`
}

// HistoricalMonth aggregates a month's notes and expenses. Never persisted.
type HistoricalMonth struct {
	Year          int        `json:"year"`
	Month         time.Month `json:"month"`
	Notes         string     `json:"notes"`
	Expenses      []Expense  `json:"expenses"`
	TotalExpenses float64    `json:"totalExpenses"`
}

// DaySummary is the calendar cell state derived for one day.
type DaySummary struct {
	Day             int  `json:"day"`
	HasTodos        bool `json:"hasTodos"`
	CompletedTodos  int  `json:"completedTodos"`
	TotalTodos      int  `json:"totalTodos"`
	CompletedHabits int  `json:"completedHabits"`
	TotalHabits     int  `json:"totalHabits"`
	FullyCompleted  bool `json:"fullyCompleted"`
}
