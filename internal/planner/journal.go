package planner

import (
	"context"
	"fmt"

	"planner/internal/core"
	"planner/internal/keys"
	"planner/internal/kv"
)

// NormalizeJournal fills the defaults of an entry read from storage.
func NormalizeJournal(e core.JournalEntry) core.JournalEntry {
	if e.Energy == 0 {
		e.Energy = core.DefaultEnergy
	}
	return e
}

// Journal returns the journal entry for day in the active month. A missing
// or malformed entry reads as an empty one.
func (p *Planner) Journal(ctx context.Context, day int) (core.JournalEntry, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	key, err := p.scheme.Journal(p.scope, day)
	if err != nil {
		return core.JournalEntry{}, err
	}
	e, err := readJSON[core.JournalEntry](ctx, p, key)
	if err != nil {
		return core.JournalEntry{}, fmt.Errorf("load journal: %w", err)
	}
	return NormalizeJournal(e), nil
}

// SaveJournal replaces the journal entry for day in the active month.
func (p *Planner) SaveJournal(ctx context.Context, day int, e core.JournalEntry) (core.JournalEntry, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	key, err := p.scheme.Journal(p.scope, day)
	if err != nil {
		return core.JournalEntry{}, err
	}
	e = NormalizeJournal(e)
	if err := kv.SetJSON(ctx, p.store, key, e); err != nil {
		return core.JournalEntry{}, fmt.Errorf("save journal: %w", err)
	}
	p.notify(ctx, keys.KindJournal, key)
	return e, nil
}
