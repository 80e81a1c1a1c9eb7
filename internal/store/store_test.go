package store

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	sqlite, err := NewSQLite(context.Background(), filepath.Join(t.TempDir(), "nested", "exposure.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := s.Get(ctx, "user:a:level")
			require.NoError(t, err)
			require.False(t, ok)

			require.NoError(t, s.Set(ctx, "user:a:level", "2"))
			require.NoError(t, s.Set(ctx, "user:a:level", "3"))

			value, ok, err := s.Get(ctx, "user:a:level")
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, "3", value)

			require.NoError(t, s.Remove(ctx, "user:a:level"))
			require.NoError(t, s.Remove(ctx, "user:a:level"))
			_, ok, err = s.Get(ctx, "user:a:level")
			require.NoError(t, err)
			require.False(t, ok)
		})
	}
}

func TestStoreRemoveManyLeavesOtherKeys(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Set(ctx, UserKey("a", "daily"), "{}"))
			require.NoError(t, s.Set(ctx, UserKey("a", "badges"), "[]"))
			require.NoError(t, s.Set(ctx, UserKey("b", "daily"), "{}"))

			require.NoError(t, s.RemoveMany(ctx, []string{UserKey("a", "daily"), UserKey("a", "badges"), UserKey("a", "missing")}))

			_, ok, err := s.Get(ctx, UserKey("a", "daily"))
			require.NoError(t, err)
			require.False(t, ok)
			_, ok, err = s.Get(ctx, UserKey("b", "daily"))
			require.NoError(t, err)
			require.True(t, ok)
		})
	}
}

func TestStoreRejectsEmptyKey(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.ErrorIs(t, s.Set(ctx, " ", "x"), ErrEmptyKey)
			_, _, err := s.Get(ctx, "")
			require.ErrorIs(t, err, ErrEmptyKey)
			require.ErrorIs(t, s.RemoveMany(ctx, []string{"ok", ""}), ErrEmptyKey)
		})
	}
}

func TestStoreConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			var wg sync.WaitGroup
			for i := 0; i < 16; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					require.NoError(t, s.Set(ctx, fmt.Sprintf("k%d", i), "v"))
				}(i)
			}
			wg.Wait()
			for i := 0; i < 16; i++ {
				_, ok, err := s.Get(ctx, fmt.Sprintf("k%d", i))
				require.NoError(t, err)
				require.True(t, ok)
			}
		})
	}
}

func TestSQLiteReopenKeepsValues(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "exposure.db")

	first, err := NewSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, RegistryKey, `["a"]`))
	require.NoError(t, first.Close())

	second, err := NewSQLite(ctx, path)
	require.NoError(t, err)
	defer second.Close()
	value, ok, err := second.Get(ctx, RegistryKey)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `["a"]`, value)
}

func TestSQLiteWrapsDriverErrors(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLite(ctx, filepath.Join(t.TempDir(), "exposure.db"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, _, err = s.Get(ctx, RegistryKey)
	require.ErrorContains(t, err, "kv get")
	require.ErrorContains(t, s.Set(ctx, RegistryKey, "[]"), "kv set")
	require.ErrorContains(t, s.Remove(ctx, RegistryKey), "kv remove")
	require.ErrorContains(t, s.RemoveMany(ctx, []string{RegistryKey}), "kv remove many")
}

func TestUserKey(t *testing.T) {
	require.Equal(t, "user:abc:daily", UserKey(" abc ", "daily"))
}
