package photostore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/realty/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "photos.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_PutGetDelete(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	photo := &domain.Photo{Name: "kitchen.jpg", Type: "image/jpeg", Size: 3, Ref: "data:image/jpeg;base64,AAAA"}
	require.NoError(t, store.Put(ctx, photo))
	assert.NotEmpty(t, photo.ID)
	assert.False(t, photo.CreatedAt.IsZero())

	got, err := store.GetByRef(ctx, photo.Ref)
	require.NoError(t, err)
	assert.Equal(t, "kitchen.jpg", got.Name)
	assert.Equal(t, photo.ID, got.ID)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, store.DeleteByRef(ctx, photo.Ref))
	require.NoError(t, store.DeleteByRef(ctx, photo.Ref))
	_, err = store.GetByRef(ctx, photo.Ref)
	assert.ErrorIs(t, err, domain.ErrPhotoNotFound)
	require.NoError(t, store.Ping(ctx))
}

func TestStore_PutSameRefReplaces(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	ref := "data:image/png;base64,iVBORw0KGgo="
	require.NoError(t, store.Put(ctx, &domain.Photo{Name: "a.png", Size: 10, Ref: ref}))
	require.NoError(t, store.Put(ctx, &domain.Photo{Name: "b.png", Size: 20, Ref: ref}))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	size, err := store.SizeBytes(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 20, size)
}

func TestStore_DeleteOlderThan(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	for i, age := range []time.Duration{40, 35, 31, 29, 1} {
		require.NoError(t, store.Put(ctx, &domain.Photo{
			Name:      "p",
			Size:      int64(i + 1),
			Ref:       "data:image/jpeg;base64," + string(rune('A'+i)),
			CreatedAt: now.Add(-age * 24 * time.Hour),
		}))
	}

	removed, err := store.DeleteOlderThan(ctx, now.Add(-30*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	_, err = store.GetByRef(ctx, "data:image/jpeg;base64,A")
	assert.ErrorIs(t, err, domain.ErrPhotoNotFound)
	fresh, err := store.GetByRef(ctx, "data:image/jpeg;base64,D")
	require.NoError(t, err)
	assert.EqualValues(t, 4, fresh.Size)
}

func TestStore_ClosedIsNotOpen(t *testing.T) {
	var store *Store
	_, err := store.Count(context.Background())
	assert.Error(t, err)
	assert.NoError(t, store.Close())
}

func TestStore_DeleteReleasesOneHolder(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	ref := "data:image/jpeg;base64,/9j/4AAQ"

	require.NoError(t, store.Put(ctx, &domain.Photo{Name: "a.jpg", Size: 3, Ref: ref}))
	require.NoError(t, store.Put(ctx, &domain.Photo{Name: "b.jpg", Size: 3, Ref: ref}))

	require.NoError(t, store.DeleteByRef(ctx, ref))
	got, err := store.GetByRef(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, "b.jpg", got.Name)

	require.NoError(t, store.DeleteByRef(ctx, ref))
	_, err = store.GetByRef(ctx, ref)
	assert.ErrorIs(t, err, domain.ErrPhotoNotFound)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}
