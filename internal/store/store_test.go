package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/01moynul/finmanager-golang/internal/database"
)

func newSQLiteStore(t *testing.T) *SQLStore {
	t.Helper()
	db, err := database.Open(context.Background(), database.DriverSQLite, ":memory:", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s, err := NewSQLStore(db, database.DriverSQLite)
	require.NoError(t, err)
	return s
}

// stores runs fn against every Store implementation.
func stores(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("sqlite", func(t *testing.T) { fn(t, newSQLiteStore(t)) })
	t.Run("memory", func(t *testing.T) { fn(t, NewMemoryStore()) })
}

func TestStore_GetSetDelete(t *testing.T) {
	stores(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		_, err := s.Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)

		require.NoError(t, s.Set(ctx, KeyAIConfig, []byte(`{"provider":"ollama"}`)))
		require.NoError(t, s.Set(ctx, KeyAIConfig, []byte(`{"provider":"gemini"}`)))

		got, err := s.Get(ctx, KeyAIConfig)
		require.NoError(t, err)
		assert.JSONEq(t, `{"provider":"gemini"}`, string(got))

		require.NoError(t, s.Delete(ctx, KeyAIConfig))
		_, err = s.Get(ctx, KeyAIConfig)
		assert.ErrorIs(t, err, ErrNotFound)

		// Deleting twice is fine.
		require.NoError(t, s.Delete(ctx, KeyAIConfig))
	})
}

func TestStore_Update(t *testing.T) {
	stores(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		err := s.Update(ctx, "counter", func(cur []byte, found bool) ([]byte, error) {
			assert.False(t, found)
			return []byte("1"), nil
		})
		require.NoError(t, err)

		err = s.Update(ctx, "counter", func(cur []byte, found bool) ([]byte, error) {
			assert.True(t, found)
			assert.Equal(t, "1", string(cur))
			return nil, nil
		})
		require.NoError(t, err)

		got, err := s.Get(ctx, "counter")
		require.NoError(t, err)
		assert.Equal(t, "1", string(got), "nil result must leave the value untouched")

		boom := errors.New("boom")
		err = s.Update(ctx, "counter", func([]byte, bool) ([]byte, error) { return []byte("2"), boom })
		assert.ErrorIs(t, err, boom)

		got, err = s.Get(ctx, "counter")
		require.NoError(t, err)
		assert.Equal(t, "1", string(got), "failed update must not write")
	})
}

func TestStore_UpdateIsAtomic(t *testing.T) {
	stores(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		const workers = 20

		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := s.Update(ctx, "n", func(cur []byte, _ bool) ([]byte, error) {
					return append(cur, 'x'), nil
				})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		got, err := s.Get(ctx, "n")
		require.NoError(t, err)
		assert.Len(t, got, workers)
	})
}

func TestStore_KeysAndSubscribe(t *testing.T) {
	stores(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		var seen [][]byte
		unsubscribe := s.Subscribe(SubscriptionKey("a"), func(v []byte) { seen = append(seen, v) })

		require.NoError(t, s.Set(ctx, SubscriptionKey("b"), []byte("{}")))
		require.NoError(t, s.Set(ctx, SubscriptionKey("a"), []byte("{}")))
		require.NoError(t, s.Set(ctx, "finmanagerXsubscription:c", []byte("{}")))
		require.NoError(t, s.Set(ctx, UsageKey("a"), []byte("{}")))

		keys, err := s.Keys(ctx, SubscriptionPrefix())
		require.NoError(t, err)
		assert.Equal(t, []string{SubscriptionKey("a"), SubscriptionKey("b")}, keys)

		require.NoError(t, s.Delete(ctx, SubscriptionKey("a")))
		unsubscribe()
		require.NoError(t, s.Set(ctx, SubscriptionKey("a"), []byte("{}")))

		require.Len(t, seen, 2)
		assert.Equal(t, "{}", string(seen[0]))
		assert.Nil(t, seen[1])
	})
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	type record struct {
		Count int `json:"count"`
	}
	require.NoError(t, SetJSON(ctx, s, "r", record{Count: 2}))

	var got record
	require.NoError(t, GetJSON(ctx, s, "r", &got))
	assert.Equal(t, 2, got.Count)

	require.NoError(t, s.Set(ctx, "bad", []byte("{")))
	assert.Error(t, GetJSON(ctx, s, "bad", &got))
	assert.ErrorIs(t, GetJSON(ctx, s, "none", &got), ErrNotFound)
}
