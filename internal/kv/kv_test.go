package kv

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type storeFactory func(t *testing.T) Store

func factories() map[string]storeFactory {
	return map[string]storeFactory{
		"memory": func(t *testing.T) Store { return NewMemory() },
		"sqlite": func(t *testing.T) Store {
			s, err := OpenSQLite(filepath.Join(t.TempDir(), "planner.db"))
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })
			return s
		},
		"dir": func(t *testing.T) Store {
			s, err := OpenDir(filepath.Join(t.TempDir(), "kv"))
			require.NoError(t, err)
			return s
		},
		"cached": func(t *testing.T) Store {
			return NewCached(NewMemory(), 16, time.Minute)
		},
	}
}

func TestStoreContract(t *testing.T) {
	ctx := context.Background()
	for name, newStore := range factories() {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)

			_, ok, err := s.Get(ctx, "digitalPlanner_notes_2025_0")
			require.NoError(t, err)
			require.False(t, ok, "missing key must report absent")

			require.NoError(t, s.Set(ctx, "digitalPlanner_notes_2025_0", "hello"))
			v, ok, err := s.Get(ctx, "digitalPlanner_notes_2025_0")
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, "hello", v)

			require.NoError(t, s.Set(ctx, "digitalPlanner_notes_2025_0", ""))
			v, ok, err = s.Get(ctx, "digitalPlanner_notes_2025_0")
			require.NoError(t, err)
			require.True(t, ok, "empty value is still present")
			require.Equal(t, "", v)

			require.NoError(t, s.Set(ctx, "digitalPlanner_projects", `[{"id":1}]`))
			require.NoError(t, s.Remove(ctx, "digitalPlanner_notes_2025_0"))
			_, ok, err = s.Get(ctx, "digitalPlanner_notes_2025_0")
			require.NoError(t, err)
			require.False(t, ok)

			require.NoError(t, s.Remove(ctx, "never-written"), "removing a missing key is not an error")

			if l, ok := s.(Lister); ok {
				require.NoError(t, s.Set(ctx, "other_key", "x"))
				keys, err := l.Keys(ctx, "digitalPlanner_")
				require.NoError(t, err)
				require.Equal(t, []string{"digitalPlanner_projects"}, keys)
			}
		})
	}
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "planner.db")

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "k", "v1"))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()
	v, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v1", v)
}

type failingStore struct {
	Store
	fail bool
}

func (f *failingStore) Set(ctx context.Context, key, value string) error {
	if f.fail {
		return errors.New("disk full")
	}
	return f.Store.Set(ctx, key, value)
}

func TestCachedReadAfterWrite(t *testing.T) {
	ctx := context.Background()
	inner := &failingStore{Store: NewMemory()}
	c := NewCached(inner, 8, time.Minute)

	require.NoError(t, c.Set(ctx, "k", "v1"))
	// Writes that bypass the cache are not observed until expiry.
	require.NoError(t, inner.Store.Set(ctx, "k", "external"))
	v, _, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "v1", v)

	inner.fail = true
	require.Error(t, c.Set(ctx, "k", "v2"))
	v, _, err = c.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "external", v, "failed write must drop the cached value")
}

func TestCachedInvalidate(t *testing.T) {
	ctx := context.Background()
	inner := NewMemory()
	c := NewCached(inner, 8, time.Minute)

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, inner.Set(ctx, "k", "external"))

	c.Invalidate("k")
	v, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "external", v)
}

func TestDirKeepsDotKeysInsideRoot(t *testing.T) {
	ctx := context.Background()
	parent := t.TempDir()
	d, err := OpenDir(filepath.Join(parent, "kv"))
	require.NoError(t, err)

	for _, key := range []string{".", "..", ".hidden"} {
		require.NoError(t, d.Set(ctx, key, "v"+key))
		v, ok, err := d.Get(ctx, key)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "v"+key, v)
	}
	got, err := d.Keys(ctx, ".")
	require.NoError(t, err)
	require.Equal(t, []string{".", "..", ".hidden"}, got)

	entries, err := os.ReadDir(parent)
	require.NoError(t, err)
	require.Len(t, entries, 1, "nothing may be written beside the data directory")

	require.NoError(t, d.Remove(ctx, ".."))
	_, ok, err := d.Get(ctx, "..")
	require.NoError(t, err)
	require.False(t, ok)

	require.ErrorIs(t, d.Set(ctx, "", "v"), ErrEmptyKey)
}
