// Package backend assembles the key-value store and its companions from the
// application configuration.
package backend

import (
	"context"

	"planner/internal/amqp"
	"planner/internal/cache"
	"planner/internal/kv"
	"planner/internal/planner"
)

// CleanupFunc releases the resources a backend holds.
type CleanupFunc func() error

// Result is everything a command needs to run against the configured store.
type Result struct {
	Store kv.Store
	// Caches holds the cleaners of every cache layered over Store.
	Caches *cache.Manager
	// Events is nil when change events are disabled or the broker was
	// unreachable at startup.
	Events  *amqp.Client
	Cleanup CleanupFunc
}

// Notifier returns the change notifier for the planner, or nil.
func (r *Result) Notifier() planner.Notifier {
	if r.Events == nil {
		return nil
	}
	return r.Events
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Ready reports whether the underlying store answers.
func (r *Result) Ready(ctx context.Context) error {
	s := r.Store
	if c, ok := s.(*kv.Cached); ok {
		s = c.Unwrap()
	}
	if p, ok := s.(pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Factory creates backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}
