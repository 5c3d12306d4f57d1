// Package planner is the month-scoped core of the digital planner.
//
// A Planner owns one active (year, month) and the in-memory view of every
// entity stored for it. Navigation reloads the view from the store; every
// mutation writes the whole affected entity back before the in-memory copy
// is replaced. Projects and trackers are global and always live under their
// fixed keys.
package planner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"planner/internal/core"
	"planner/internal/keys"
	"planner/internal/kv"
	"planner/internal/log"
	"planner/internal/signup"
)

var ErrNotFound = errors.New("not found")

// Notifier is told about every month-scoped write.
type Notifier interface {
	BucketChanged(ctx context.Context, kind keys.Kind, scope core.Scope, key string) error
}

// HabitReference selects the denominator used for habit percentages.
type HabitReference int

const (
	// ReferenceWallClock uses today's day number for every month, so a
	// finished month viewed later can exceed 100.
	ReferenceWallClock HabitReference = iota
	// ReferenceViewed judges past months against their full length and the
	// current month against the days elapsed so far.
	ReferenceViewed
)

// ParseHabitReference maps the HABIT_REFERENCE setting.
func ParseHabitReference(s string) (HabitReference, error) {
	switch s {
	case "", "wallclock":
		return ReferenceWallClock, nil
	case "viewed":
		return ReferenceViewed, nil
	default:
		return 0, fmt.Errorf("unknown habit reference %q", s)
	}
}

type Options struct {
	Scheme    keys.Scheme
	Now       func() time.Time
	Scope     core.Scope // zero means the clock's current month
	Notifier  Notifier
	Reference HabitReference
	Logger    *log.Logger
}

type Planner struct {
	mu        sync.Mutex
	store     kv.Store
	scheme    keys.Scheme
	now       func() time.Time
	publisher *publisher // nil without a Notifier
	closed    bool
	reference HabitReference
	logger    *log.Logger
	signup    signup.Anchor
	lastID    int64

	projects      []core.Project
	trackers      []core.Tracker
	activeProject int64 // 0 means none

	scope     core.Scope
	daily     core.DailyData
	notes     string
	checklist core.MonthlyChecklist
	expenses  []core.Expense
	draft     core.NewExpense
}

// Open loads the global entities, initializes the signup anchor and loads
// the starting month.
func Open(ctx context.Context, store kv.Store, opts Options) (*Planner, error) {
	if opts.Scheme.Prefix == "" {
		opts.Scheme = keys.New("")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = log.New(log.Config{Component: log.ComponentPlanner})
	}
	p := &Planner{
		store:     store,
		scheme:    opts.Scheme,
		now:       opts.Now,
		reference: opts.Reference,
		logger:    opts.Logger,
	}

	projects, err := readJSON[[]core.Project](ctx, p, p.scheme.Global(keys.Projects))
	if err != nil {
		return nil, fmt.Errorf("load projects: %w", err)
	}
	trackers, err := readJSON[[]core.Tracker](ctx, p, p.scheme.Global(keys.Trackers))
	if err != nil {
		return nil, fmt.Errorf("load trackers: %w", err)
	}
	p.projects = projects
	p.trackers = trackers
	for _, pr := range p.projects {
		p.lastID = max(p.lastID, pr.ID)
	}
	for _, t := range p.trackers {
		p.lastID = max(p.lastID, t.ID)
	}

	anchor, err := signup.Init(ctx, store, p.scheme, p.now())
	if err != nil {
		return nil, err
	}
	p.signup = anchor
	if opts.Notifier != nil {
		p.publisher = newPublisher(opts.Notifier, p.logger)
	}

	scope := opts.Scope
	if scope == (core.Scope{}) {
		scope = core.ScopeOf(p.now())
	}
	if err := p.load(ctx, scope); err != nil {
		return nil, err
	}
	p.logger.InfoContext(ctx, "Planner opened",
		log.FieldYear, scope.Year,
		log.FieldMonth, int(scope.Month),
		"projects", len(p.projects),
		"trackers", len(p.trackers))
	return p, nil
}

// Signup returns the first-use anchor.
func (p *Planner) Signup() signup.Anchor {
	return p.signup
}

// Scheme returns the key scheme in use.
func (p *Planner) Scheme() keys.Scheme {
	return p.scheme
}

// Scope returns the active month.
func (p *Planner) Scope() core.Scope {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scope
}

// SetMonth switches the active month, reloading every month-scoped entity.
func (p *Planner) SetMonth(ctx context.Context, scope core.Scope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.load(ctx, scope)
}

// load rebuilds the month view. Nothing from the previous month survives.
func (p *Planner) load(ctx context.Context, scope core.Scope) error {
	if err := scope.Validate(); err != nil {
		return err
	}

	dailyKey, err := p.scheme.Month(keys.KindDailyData, scope)
	if err != nil {
		return err
	}
	daily, err := readJSON[core.DailyData](ctx, p, dailyKey)
	if err != nil {
		return fmt.Errorf("load daily data: %w", err)
	}
	if daily == nil {
		daily = core.DailyData{}
	}

	notesKey, err := p.scheme.Month(keys.KindNotes, scope)
	if err != nil {
		return err
	}
	notes, _, err := p.store.Get(ctx, notesKey)
	if err != nil {
		return fmt.Errorf("load notes: %w", err)
	}

	checklistKey, err := p.scheme.Month(keys.KindChecklist, scope)
	if err != nil {
		return err
	}
	checklist, err := readJSON[core.MonthlyChecklist](ctx, p, checklistKey)
	if err != nil {
		return fmt.Errorf("load checklist: %w", err)
	}

	expensesKey, err := p.scheme.Month(keys.KindExpenses, scope)
	if err != nil {
		return err
	}
	expenses, err := readJSON[[]core.Expense](ctx, p, expensesKey)
	if err != nil {
		return fmt.Errorf("load expenses: %w", err)
	}
	if expenses == nil {
		expenses = []core.Expense{}
	}

	p.scope = scope
	p.daily = daily
	p.notes = notes
	p.checklist = checklist.Resize(scope.Days())
	p.expenses = expenses
	p.logger.DebugContext(ctx, "Month loaded",
		log.FieldYear, scope.Year,
		log.FieldMonth, int(scope.Month),
		"days_with_data", len(daily),
		"expenses", len(expenses))
	return nil
}

// nextID returns a creation-time id, bumped past the previous one so two
// entities created in the same millisecond never share an id.
func (p *Planner) nextID() int64 {
	id := p.now().UnixMilli()
	if id <= p.lastID {
		id = p.lastID + 1
	}
	p.lastID = id
	return id
}

// saveMonth writes a month-scoped entity for the active scope and notifies.
func (p *Planner) saveMonth(ctx context.Context, kind keys.Kind, value any) error {
	key, err := p.scheme.Month(kind, p.scope)
	if err != nil {
		return err
	}
	if s, ok := value.(string); ok {
		err = p.store.Set(ctx, key, s)
	} else {
		err = kv.SetJSON(ctx, p.store, key, value)
	}
	if err != nil {
		return fmt.Errorf("save %s: %w", kind, err)
	}
	p.notify(ctx, kind, key)
	return nil
}

// notify queues a change notification. The request context keeps its values
// but not its cancellation, since delivery happens after the call returns.
func (p *Planner) notify(ctx context.Context, kind keys.Kind, key string) {
	if p.publisher == nil || p.closed {
		return
	}
	p.publisher.enqueue(change{ctx: context.WithoutCancel(ctx), kind: kind, scope: p.scope, key: key})
}

// Close delivers pending change notifications. Writes after Close are not
// announced.
func (p *Planner) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	if p.publisher != nil {
		p.publisher.close()
	}
}

func (p *Planner) saveProjects(ctx context.Context, projects []core.Project) error {
	if err := kv.SetJSON(ctx, p.store, p.scheme.Global(keys.Projects), projects); err != nil {
		return fmt.Errorf("save projects: %w", err)
	}
	p.projects = projects
	return nil
}

func (p *Planner) saveTrackers(ctx context.Context, trackers []core.Tracker) error {
	if err := kv.SetJSON(ctx, p.store, p.scheme.Global(keys.Trackers), trackers); err != nil {
		return fmt.Errorf("save trackers: %w", err)
	}
	p.trackers = trackers
	return nil
}
