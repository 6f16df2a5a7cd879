// Package storagetest runs a storage.Queue over an in-memory store for tests.
package storagetest

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/althash-leandro/altmask/internal/storage"
)

// Start returns a running queue over store, or over a fresh memory store when store is nil.
func Start(t testing.TB, store storage.Store) (*storage.Queue, storage.Store) {
	t.Helper()

	if store == nil {
		store = storage.NewMemory()
	}
	ctx, cancel := context.WithCancel(context.Background())
	q := storage.NewQueue(store)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = q.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return q, store
}

// Seed writes v as JSON under key.
func Seed(t testing.TB, store storage.Store, key string, v any) {
	t.Helper()

	b, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, store.Set(context.Background(), map[string][]byte{key: b}))
}

// Read flushes q and decodes key from store.
func Read[T any](t testing.TB, q *storage.Queue, store storage.Store, key string) (T, bool) {
	t.Helper()

	require.NoError(t, q.Flush(context.Background()))
	values, err := store.Get(context.Background(), key)
	require.NoError(t, err)
	v, ok, err := storage.Decode[T](values, key)
	require.NoError(t, err)
	return v, ok
}
