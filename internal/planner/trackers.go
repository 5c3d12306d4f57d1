package planner

import (
	"context"
	"fmt"
	"slices"

	"planner/internal/core"
)

// TrackerPatch carries the editable tracker fields. Process is derived and
// cannot be patched.
type TrackerPatch struct {
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
}

func (p *Planner) trackerIndex(id int64) (int, error) {
	i := slices.IndexFunc(p.trackers, func(t core.Tracker) bool { return t.ID == id })
	if i < 0 {
		return -1, fmt.Errorf("tracker %d: %w", id, ErrNotFound)
	}
	return i, nil
}

// Trackers returns every tracker with Process recomputed for the active month.
func (p *Planner) Trackers() []core.Tracker {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.trackersView()
}

func (p *Planner) trackersView() []core.Tracker {
	ref := p.referenceDay()
	out := slices.Clone(p.trackers)
	for i := range out {
		out[i].Process = HabitPercentage(p.daily, p.scope, out[i].ID, ref)
	}
	return out
}

// AddTracker appends a "New Habit" tracker.
func (p *Planner) AddTracker(ctx context.Context) (core.Tracker, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	t := core.Tracker{ID: p.nextID(), Name: "New Habit", Color: "bg-gray-400"}
	if err := p.saveTrackers(ctx, append(slices.Clone(p.trackers), t)); err != nil {
		return core.Tracker{}, err
	}
	return t, nil
}

// UpdateTracker applies patch to the tracker with the given id.
func (p *Planner) UpdateTracker(ctx context.Context, id int64, patch TrackerPatch) (core.Tracker, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	i, err := p.trackerIndex(id)
	if err != nil {
		return core.Tracker{}, err
	}
	trackers := slices.Clone(p.trackers)
	if patch.Name != nil {
		trackers[i].Name = *patch.Name
	}
	if patch.Color != nil {
		trackers[i].Color = *patch.Color
	}
	if err := p.saveTrackers(ctx, trackers); err != nil {
		return core.Tracker{}, err
	}
	return trackers[i], nil
}

// DeleteTracker removes the tracker. Its flags in daily records are kept.
func (p *Planner) DeleteTracker(ctx context.Context, id int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	i, err := p.trackerIndex(id)
	if err != nil {
		return err
	}
	return p.saveTrackers(ctx, slices.Delete(slices.Clone(p.trackers), i, i+1))
}
