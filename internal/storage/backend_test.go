package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// backendTest runs the shared KV and blob contract against one backend.
func backendTest(t *testing.T, open func(t *testing.T) interface {
	KVStore
	BlobStore
}) {
	ctx := context.Background()

	t.Run("kv", func(t *testing.T) {
		store := open(t)
		defer store.Close()

		_, found, err := store.Get("missing")
		require.NoError(t, err)
		require.False(t, found)

		require.NoError(t, store.Set("k", "v1"))
		require.NoError(t, store.Set("k", "v2"))
		got, found, err := store.Get("k")
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, "v2", got)

		require.NoError(t, store.Delete("k"))
		_, found, err = store.Get("k")
		require.NoError(t, err)
		require.False(t, found)

		// Deleting a missing key is not an error.
		require.NoError(t, store.Delete("k"))
	})

	t.Run("blobs", func(t *testing.T) {
		store := open(t)
		defer store.Close()

		blob := Blob{ID: "img-1", MIME: "image/png", Data: []byte{0x89, 0x50, 0x4e, 0x47}}
		require.NoError(t, store.PutBlob(ctx, blob))

		got, err := store.GetBlob(ctx, "img-1")
		require.NoError(t, err)
		require.Equal(t, blob.MIME, got.MIME)
		require.Equal(t, blob.Data, got.Data)

		_, err = store.GetBlob(ctx, "nope")
		require.ErrorIs(t, err, ErrNotFound)

		require.NoError(t, store.DeleteBlob(ctx, "img-1"))
		_, err = store.GetBlob(ctx, "img-1")
		require.ErrorIs(t, err, ErrNotFound)

		err = store.DeleteBlob(ctx, "img-1")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("persists across reopen", func(t *testing.T) {
		store := open(t)
		require.NoError(t, store.Set(StateKey, `{"tasks":[]}`))
		require.NoError(t, store.Close())
	})
}

func TestSQLiteBackend(t *testing.T) {
	dir := t.TempDir()
	n := 0
	backendTest(t, func(t *testing.T) interface {
		KVStore
		BlobStore
	} {
		n++
		store, err := OpenSQLite(context.Background(), filepath.Join(dir, "db"+string(rune('a'+n))+".sqlite"))
		require.NoError(t, err)
		return store
	})
}

func TestSQLiteReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tp.sqlite")
	ctx := context.Background()

	store, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, store.Set("k", "v"))
	require.NoError(t, store.Close())

	store, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer store.Close()
	got, found, err := store.Get("k")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "v", got)
}

func TestBoltBackend(t *testing.T) {
	dir := t.TempDir()
	n := 0
	backendTest(t, func(t *testing.T) interface {
		KVStore
		BlobStore
	} {
		n++
		store, err := OpenBolt(filepath.Join(dir, "db"+string(rune('a'+n))+".bolt"))
		require.NoError(t, err)
		return store
	})
}

func TestBoltReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tp.bolt")

	store, err := OpenBolt(path)
	require.NoError(t, err)
	require.NoError(t, store.Set("k", "v"))
	require.NoError(t, store.Close())

	store, err = OpenBolt(path)
	require.NoError(t, err)
	defer store.Close()
	got, found, err := store.Get("k")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "v", got)

	_, err = store.GetBlob(context.Background(), "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestServiceOverSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tp.sqlite")
	ctx := context.Background()

	store, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer store.Close()

	svc := NewService(store, store, nil, 0)
	defer svc.Close()

	state, err := svc.LoadState()
	require.NoError(t, err)
	state.Completions = append(state.Completions, datedCompletion("c1", 1, 5))
	require.NoError(t, svc.SaveStateSnapshot(state, SaveOptions{Immediate: true}))

	reloaded, err := svc.LoadState()
	require.NoError(t, err)
	require.Len(t, reloaded.Completions, 1)
	require.Equal(t, "c1", reloaded.Completions[0].ID)
}
