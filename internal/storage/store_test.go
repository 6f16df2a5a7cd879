package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/althash-leandro/altmask/internal/constants"
	"github.com/althash-leandro/altmask/internal/storage"
)

func openAll(t *testing.T) map[string]storage.Store {
	t.Helper()

	out := map[string]storage.Store{}
	for _, driver := range []string{storage.DriverMemory, storage.DriverFile, storage.DriverLevelDB, storage.DriverSQLite} {
		s, err := storage.Open(storage.Config{Driver: driver, Dir: t.TempDir()})
		require.NoError(t, err, driver)
		t.Cleanup(func() { _ = s.Close() })
		out[driver] = s
	}
	return out
}

func TestStores_GetSet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	for driver, s := range openAll(t) {
		t.Run(driver, func(t *testing.T) {
			got, err := s.Get(ctx, "networkIndex")
			require.NoError(t, err)
			assert.Empty(t, got)

			require.NoError(t, s.Set(ctx, map[string][]byte{
				"networkIndex": []byte(`0`),
				"accounts":     []byte(`[{"name":"a","address":"b"}]`),
			}))
			require.NoError(t, s.Set(ctx, map[string][]byte{"networkIndex": []byte(`2`)}))

			got, err = s.Get(ctx, "networkIndex", "accounts", "missing")
			require.NoError(t, err)
			assert.Equal(t, `2`, string(got["networkIndex"]))
			assert.JSONEq(t, `[{"name":"a","address":"b"}]`, string(got["accounts"]))
			_, ok := got["missing"]
			assert.False(t, ok)
		})
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	t.Parallel()

	_, err := storage.Open(storage.Config{Driver: "etcd", Dir: t.TempDir()})
	assert.Error(t, err)

	_, err = storage.Open(storage.Config{Driver: storage.DriverSQLite})
	assert.Error(t, err)
}

func TestFile_PersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, constants.StoreFile)

	f, err := storage.OpenFile(path, nil)
	require.NoError(t, err)
	require.NoError(t, f.Set(ctx, map[string][]byte{"networkIndex": []byte(`0`)}))

	reopened, err := storage.OpenFile(path, nil)
	require.NoError(t, err)
	got, err := reopened.Get(ctx, "networkIndex")
	require.NoError(t, err)
	assert.Equal(t, `0`, string(got["networkIndex"]))

	assert.Error(t, f.Set(ctx, map[string][]byte{"bad": []byte(`{`)}))
}

func TestFile_Encrypted(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), constants.StoreFile)

	f, err := storage.OpenFile(path, []byte("correct horse"))
	require.NoError(t, err)
	require.NoError(t, f.Set(ctx, map[string][]byte{"accounts": []byte(`["secret-name"]`)}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret-name")

	reopened, err := storage.OpenFile(path, []byte("correct horse"))
	require.NoError(t, err)
	got, err := reopened.Get(ctx, "accounts")
	require.NoError(t, err)
	assert.JSONEq(t, `["secret-name"]`, string(got["accounts"]))

	_, err = storage.OpenFile(path, []byte("wrong"))
	assert.Error(t, err)
}

func TestDecode(t *testing.T) {
	t.Parallel()

	values := map[string][]byte{"n": []byte(`3`), "bad": []byte(`"x"`)}

	n, ok, err := storage.Decode[int](values, "n")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3, n)

	_, ok, err = storage.Decode[int](values, "absent")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = storage.Decode[int](values, "bad")
	assert.Error(t, err)
}
