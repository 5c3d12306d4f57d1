package planner

import (
	"context"
	"fmt"
	"slices"

	"planner/internal/core"
	"planner/internal/keys"
	"planner/internal/log"
)

// ExpensePatch carries the editable expense fields. Amount is typed text as
// in NewExpense.
type ExpensePatch struct {
	Category    *string `json:"category,omitempty"`
	Amount      *string `json:"amount,omitempty"`
	Description *string `json:"description,omitempty"`
}

// MonthView is a consistent snapshot of the active month.
type MonthView struct {
	Scope         core.Scope            `json:"scope"`
	Notes         string                `json:"notes"`
	Checklist     core.MonthlyChecklist `json:"checklist"`
	Expenses      []core.Expense        `json:"expenses"`
	TotalExpenses float64               `json:"totalExpenses"`
	DailyData     core.DailyData        `json:"dailyData"`
	Projects      []core.Project        `json:"projects"`
	Trackers      []core.Tracker        `json:"trackers"`
	ActiveProject *core.Project         `json:"activeProject"`
	Calendar      []core.DaySummary     `json:"calendar"`
	Draft         core.NewExpense       `json:"newExpense"`
}

// View returns a deep copy of the active month.
func (p *Planner) View() MonthView {
	p.mu.Lock()
	defer p.mu.Unlock()

	v := MonthView{
		Scope: p.scope,
		Notes: p.notes,
		Checklist: core.MonthlyChecklist{
			Reading:    slices.Clone(p.checklist.Reading),
			Journaling: slices.Clone(p.checklist.Journaling),
		},
		Expenses:      slices.Clone(p.expenses),
		TotalExpenses: core.Total(p.expenses),
		DailyData:     cloneDaily(p.daily),
		Projects:      cloneProjects(p.projects),
		Trackers:      p.trackersView(),
		Calendar:      p.calendarLocked(),
		Draft:         p.draft,
	}
	if pr, ok := p.activeProjectLocked(); ok {
		v.ActiveProject = &pr
	}
	return v
}

// Notes returns the active month's free text.
func (p *Planner) Notes() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.notes
}

// SetNotes stores text as the active month's notes.
func (p *Planner) SetNotes(ctx context.Context, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.saveMonth(ctx, keys.KindNotes, text); err != nil {
		return err
	}
	p.notes = text
	return nil
}

// ToggleChecklist flips flag index (zero-based) of the named checklist.
func (p *Planner) ToggleChecklist(ctx context.Context, list string, index int) (core.MonthlyChecklist, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	next := p.checklist.Resize(p.scope.Days())
	flags, err := next.List(list)
	if err != nil {
		return core.MonthlyChecklist{}, err
	}
	if index < 0 || index >= len(flags) {
		return core.MonthlyChecklist{}, fmt.Errorf("%w: %d", core.ErrInvalidDay, index+1)
	}
	flags[index] = !flags[index]
	if err := p.saveMonth(ctx, keys.KindChecklist, next); err != nil {
		return core.MonthlyChecklist{}, err
	}
	p.checklist = next
	return next.Resize(len(next.Reading)), nil
}

// Expenses returns the active month's expenses.
func (p *Planner) Expenses() []core.Expense {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.expenses)
}

// Draft returns the expense draft being typed.
func (p *Planner) Draft() core.NewExpense {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.draft
}

// SetDraft replaces the expense draft. Drafts are not persisted.
func (p *Planner) SetDraft(n core.NewExpense) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.draft = n
}

// AddExpense appends the expense described by n. An incomplete or malformed
// draft changes nothing and returns core.ErrInvalidExpense; on success the
// draft is cleared.
func (p *Planner) AddExpense(ctx context.Context, n core.NewExpense) (core.Expense, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, err := n.Parse()
	if err != nil {
		return core.Expense{}, err
	}
	e.ID = p.nextID()
	expenses := append(slices.Clone(p.expenses), e)
	if err := p.saveMonth(ctx, keys.KindExpenses, expenses); err != nil {
		return core.Expense{}, err
	}
	p.expenses = expenses
	p.draft = core.NewExpense{}
	p.logger.InfoContext(ctx, "Expense added",
		log.FieldID, e.ID,
		log.FieldYear, p.scope.Year,
		log.FieldMonth, int(p.scope.Month),
		"amount", e.Amount,
		"category", e.Category)
	return e, nil
}

func expenseIndex(expenses []core.Expense, id int64) (int, error) {
	i := slices.IndexFunc(expenses, func(e core.Expense) bool { return e.ID == id })
	if i < 0 {
		return -1, fmt.Errorf("expense %d: %w", id, ErrNotFound)
	}
	return i, nil
}

// UpdateExpense applies patch to an expense of the active month. The result
// must still be a complete, well-formed expense.
func (p *Planner) UpdateExpense(ctx context.Context, id int64, patch ExpensePatch) (core.Expense, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	i, err := expenseIndex(p.expenses, id)
	if err != nil {
		return core.Expense{}, err
	}
	cur := p.expenses[i]
	// Only a new amount is validated. The stored one is carried over as is.
	draft := core.NewExpense{
		Category:    cur.Category,
		Amount:      "0",
		Description: cur.Description,
	}
	if patch.Category != nil {
		draft.Category = *patch.Category
	}
	if patch.Amount != nil {
		draft.Amount = *patch.Amount
	}
	if patch.Description != nil {
		draft.Description = *patch.Description
	}
	e, err := draft.Parse()
	if err != nil {
		return core.Expense{}, err
	}
	e.ID = id
	if patch.Amount == nil {
		e.Amount = cur.Amount
	}

	expenses := slices.Clone(p.expenses)
	expenses[i] = e
	if err := p.saveMonth(ctx, keys.KindExpenses, expenses); err != nil {
		return core.Expense{}, err
	}
	p.expenses = expenses
	return e, nil
}

// DeleteExpense removes an expense of the active month.
func (p *Planner) DeleteExpense(ctx context.Context, id int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	i, err := expenseIndex(p.expenses, id)
	if err != nil {
		return err
	}
	expenses := slices.Delete(slices.Clone(p.expenses), i, i+1)
	if err := p.saveMonth(ctx, keys.KindExpenses, expenses); err != nil {
		return err
	}
	p.expenses = expenses
	return nil
}
