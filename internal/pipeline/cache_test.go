package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageatlas/pageatlas/internal/models"
	"github.com/pageatlas/pageatlas/internal/storage"
)

func testManifest(fileID string) *models.ResultManifest {
	return &models.ResultManifest{
		FileID:    fileID,
		ImageURLs: []string{"https://b/pages/a.jpeg", "https://b/pages/b.jpeg"},
		PageCount: 2,
	}
}

func TestBlobManifestCacheRoundTrip(t *testing.T) {
	store := storage.NewMemoryStore()
	cache := NewBlobManifestCache(store)

	_, err := cache.Lookup(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrCacheMiss)

	want := testManifest("doc-1")
	require.NoError(t, cache.Save(context.Background(), want))

	got, err := cache.Lookup(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Stored under the documented key.
	_, err = store.Get(context.Background(), "results/doc-1.json")
	assert.NoError(t, err)
}

func TestTieredCacheBackfillsHotTier(t *testing.T) {
	hotStore := storage.NewMemoryStore()
	durableStore := storage.NewMemoryStore()
	hot := NewBlobManifestCache(hotStore)
	durable := NewBlobManifestCache(durableStore)
	tiered := NewTieredCache(hot, durable)

	want := testManifest("doc-2")
	require.NoError(t, durable.Save(context.Background(), want))

	got, err := tiered.Lookup(context.Background(), "doc-2")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// The durable hit was copied into the hot tier.
	fromHot, err := hot.Lookup(context.Background(), "doc-2")
	require.NoError(t, err)
	assert.Equal(t, want, fromHot)
}

func TestTieredCacheHotHitSkipsDurable(t *testing.T) {
	hotStore := storage.NewMemoryStore()
	durableStore := storage.NewMemoryStore()
	tiered := NewTieredCache(NewBlobManifestCache(hotStore), NewBlobManifestCache(durableStore))

	want := testManifest("doc-3")
	require.NoError(t, tiered.Save(context.Background(), want))

	durableStore.ResetCounts()
	got, err := tiered.Lookup(context.Background(), "doc-3")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, _, gets := durableStore.Counts()
	assert.Zero(t, gets, "hot hit must not touch the durable tier")
}

func TestTieredCacheSaveRequiresDurable(t *testing.T) {
	hotStore := storage.NewMemoryStore()
	durable := &failingSaveCache{ManifestCache: NewBlobManifestCache(storage.NewMemoryStore())}
	tiered := NewTieredCache(NewBlobManifestCache(hotStore), durable)

	err := tiered.Save(context.Background(), testManifest("doc-4"))
	require.Error(t, err)
	assert.Zero(t, hotStore.Len(), "hot tier is not written when the durable write fails")
}
