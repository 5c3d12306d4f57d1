package kv

import (
	"context"
	"time"

	"planner/internal/cache"
)

type cachedValue struct {
	value string
	ok    bool
}

// Cached is a write-through read cache in front of another Store. Misses
// are cached too, so repeated loads of empty months stay off the backend.
type Cached struct {
	inner Store
	lru   *cache.LRUCache[cachedValue]
}

// NewCached wraps inner with an LRU of size entries that expire after ttl.
func NewCached(inner Store, size int, ttl time.Duration) *Cached {
	return &Cached{inner: inner, lru: cache.NewLRUCache[cachedValue](size, ttl)}
}

// Cleaner exposes the cache so a cache.Manager can sweep it.
func (c *Cached) Cleaner() cache.Cleaner { return c.lru }

// Len reports the number of cached keys.
func (c *Cached) Len() int { return c.lru.Size() }

func (c *Cached) Get(ctx context.Context, key string) (string, bool, error) {
	if v, hit := c.lru.Get(key); hit {
		return v.value, v.ok, nil
	}
	value, ok, err := c.inner.Get(ctx, key)
	if err != nil {
		return "", false, err
	}
	c.lru.Set(key, cachedValue{value: value, ok: ok})
	return value, ok, nil
}

func (c *Cached) Set(ctx context.Context, key, value string) error {
	if err := c.inner.Set(ctx, key, value); err != nil {
		c.lru.Delete(key)
		return err
	}
	c.lru.Set(key, cachedValue{value: value, ok: true})
	return nil
}

func (c *Cached) Remove(ctx context.Context, key string) error {
	if err := c.inner.Remove(ctx, key); err != nil {
		c.lru.Delete(key)
		return err
	}
	c.lru.Set(key, cachedValue{})
	return nil
}

func (c *Cached) Keys(ctx context.Context, prefix string) ([]string, error) {
	if l, ok := c.inner.(Lister); ok {
		return l.Keys(ctx, prefix)
	}
	return nil, nil
}

// Invalidate drops key so the next Get reads the decorated store.
func (c *Cached) Invalidate(key string) { c.lru.Delete(key) }

// Unwrap returns the decorated store.
func (c *Cached) Unwrap() Store { return c.inner }
