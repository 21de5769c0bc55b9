package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageatlas/pageatlas/internal/fingerprint"
	"github.com/pageatlas/pageatlas/internal/storage"
)

func TestUploaderKeyShape(t *testing.T) {
	store := storage.NewMemoryStore()
	u := NewUploader(store)
	data := []byte("encoded image bytes")
	fp := fingerprint.Fingerprint(data)

	fullKey, err := u.Store(context.Background(), data, VariantFull, "")
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("pages/%s.jpeg", fp), fullKey)

	previewKey, err := u.Store(context.Background(), data, VariantPreview, "")
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("pages/%s-preview.jpeg", fp), previewKey)
}

func TestUploaderSkipsExistingContent(t *testing.T) {
	store := storage.NewMemoryStore()
	u := NewUploader(store)
	data := []byte("boilerplate cover sheet")

	first, err := u.Store(context.Background(), data, VariantFull, "")
	require.NoError(t, err)

	store.ResetCounts()
	second, err := u.Store(context.Background(), data, VariantFull, "")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	puts, exists, _ := store.Counts()
	assert.Zero(t, puts, "second attempt must perform zero writes")
	assert.Equal(t, 1, exists)
	assert.Equal(t, 1, store.Len())
}

func TestUploaderProvenanceDoesNotAffectKey(t *testing.T) {
	store := storage.NewMemoryStore()
	u := NewUploader(store)
	data := []byte("same content, different callers")

	tagged, err := u.Store(context.Background(), data, VariantFull, "198.51.100.1")
	require.NoError(t, err)
	untagged, err := u.Store(context.Background(), data, VariantFull, "")
	require.NoError(t, err)

	assert.Equal(t, tagged, untagged)
	assert.Equal(t, map[string]string{"source-ip": "198.51.100.1"}, store.Metadata(tagged))
}

func TestUploaderSurfacesStoreFailures(t *testing.T) {
	store := storage.NewMemoryStore()
	failing := &failingPutStore{BlobStore: store, failPrefix: "pages/"}
	u := NewUploader(failing)

	_, err := u.Store(context.Background(), []byte("unlucky"), VariantFull, "")
	require.Error(t, err)
	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "put", storeErr.Op)
}
