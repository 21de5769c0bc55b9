package render

import (
	"bytes"
	"context"
	"image"
	"path/filepath"
	"testing"

	"github.com/pageatlas/pageatlas/internal/fingerprint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitzRendererPageOrderAndSize(t *testing.T) {
	r := NewFitzRenderer()
	pages, err := r.Render(context.Background(), filepath.Join("testdata", "three-pages.pdf"), 800)
	require.NoError(t, err)
	require.Len(t, pages, 3)

	seen := make(map[string]bool)
	for i, pg := range pages {
		assert.Equal(t, i, pg.Index)

		cfg, format, err := image.DecodeConfig(bytes.NewReader(pg.Data))
		require.NoError(t, err, "page %d must decode", i)
		assert.Equal(t, "jpeg", format)

		longEdge := cfg.Width
		if cfg.Height > longEdge {
			longEdge = cfg.Height
		}
		assert.InDelta(t, 800, longEdge, 8, "page %d long edge should approximate the target", i)

		// Each page draws different content, so fingerprints must differ.
		fp := fingerprint.Fingerprint(pg.Data)
		assert.False(t, seen[fp], "page %d duplicates another page's fingerprint", i)
		seen[fp] = true
	}
}

func TestFitzRendererRejectsInvalidPDF(t *testing.T) {
	dir := t.TempDir()
	bogus := filepath.Join(dir, "bogus.pdf")
	require.NoError(t, writeFile(bogus, []byte("this is not a pdf")))

	r := NewFitzRenderer()
	_, err := r.Render(context.Background(), bogus, 800)
	assert.Error(t, err)
}

func TestFitzRendererMissingFile(t *testing.T) {
	r := NewFitzRenderer()
	_, err := r.Render(context.Background(), filepath.Join(t.TempDir(), "absent.pdf"), 800)
	assert.Error(t, err)
}
