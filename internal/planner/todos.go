package planner

import (
	"context"
	"fmt"
	"slices"

	"planner/internal/core"
	"planner/internal/keys"
)

// TodoPatch carries the editable todo fields; nil fields are left alone.
type TodoPatch struct {
	Text      *string `json:"text,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// Todos returns the todos planned for day in the active month.
func (p *Planner) Todos(day int) ([]core.Todo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.scope.ValidDay(day); err != nil {
		return nil, err
	}
	return slices.Clone(p.daily[keys.Day(p.scope.Month, day)].Todos), nil
}

// editTodos runs fn on a copy of day's todos and persists the daily data.
func (p *Planner) editTodos(ctx context.Context, day int, fn func([]core.Todo) ([]core.Todo, error)) ([]core.Todo, error) {
	if err := p.scope.ValidDay(day); err != nil {
		return nil, err
	}
	dayKey := keys.Day(p.scope.Month, day)
	daily := cloneDaily(p.daily)
	d := daily[dayKey]
	todos, err := fn(d.Todos)
	if err != nil {
		return nil, err
	}
	d.Todos = todos
	daily[dayKey] = d
	if err := p.saveMonth(ctx, keys.KindDailyData, daily); err != nil {
		return nil, err
	}
	p.daily = daily
	return slices.Clone(todos), nil
}

func todoIndex(todos []core.Todo, id int64) (int, error) {
	i := slices.IndexFunc(todos, func(t core.Todo) bool { return t.ID == id })
	if i < 0 {
		return -1, fmt.Errorf("todo %d: %w", id, ErrNotFound)
	}
	return i, nil
}

// AddTodo appends a "New task" todo to day.
func (p *Planner) AddTodo(ctx context.Context, day int) (core.Todo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	todo := core.Todo{ID: p.nextID(), Text: "New task"}
	if _, err := p.editTodos(ctx, day, func(todos []core.Todo) ([]core.Todo, error) {
		return append(todos, todo), nil
	}); err != nil {
		return core.Todo{}, err
	}
	return todo, nil
}

// UpdateTodo applies patch to a todo of day.
func (p *Planner) UpdateTodo(ctx context.Context, day int, id int64, patch TodoPatch) (core.Todo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var updated core.Todo
	_, err := p.editTodos(ctx, day, func(todos []core.Todo) ([]core.Todo, error) {
		i, err := todoIndex(todos, id)
		if err != nil {
			return nil, err
		}
		if patch.Text != nil {
			todos[i].Text = *patch.Text
		}
		if patch.Completed != nil {
			todos[i].Completed = *patch.Completed
		}
		updated = todos[i]
		return todos, nil
	})
	return updated, err
}

// DeleteTodo removes a todo from day.
func (p *Planner) DeleteTodo(ctx context.Context, day int, id int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, err := p.editTodos(ctx, day, func(todos []core.Todo) ([]core.Todo, error) {
		i, err := todoIndex(todos, id)
		if err != nil {
			return nil, err
		}
		return slices.Delete(todos, i, i+1), nil
	})
	return err
}
