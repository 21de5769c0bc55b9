package render

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeTestImage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 64, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}))
	return buf.Bytes()
}

func TestDerivePreviewBoundsAndAspect(t *testing.T) {
	tests := []struct {
		name         string
		width        int
		height       int
		maxEdge      int
		wantW, wantH int
	}{
		{name: "landscape scales to max edge", width: 800, height: 400, maxEdge: 300, wantW: 300, wantH: 150},
		{name: "portrait scales to max edge", width: 400, height: 800, maxEdge: 300, wantW: 150, wantH: 300},
		{name: "square", width: 600, height: 600, maxEdge: 300, wantW: 300, wantH: 300},
		{name: "already small is not upscaled", width: 100, height: 50, maxEdge: 300, wantW: 100, wantH: 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded := encodeTestImage(t, tt.width, tt.height)
			preview, err := DerivePreview(encoded, tt.maxEdge)
			require.NoError(t, err)

			cfg, _, err := image.DecodeConfig(bytes.NewReader(preview))
			require.NoError(t, err)
			assert.Equal(t, tt.wantW, cfg.Width)
			assert.Equal(t, tt.wantH, cfg.Height)
		})
	}
}

func TestDerivePreviewDeterministic(t *testing.T) {
	encoded := encodeTestImage(t, 640, 480)
	first, err := DerivePreview(encoded, 300)
	require.NoError(t, err)
	second, err := DerivePreview(encoded, 300)
	require.NoError(t, err)
	assert.Equal(t, first, second, "identical input bytes must produce identical preview bytes")
}

func TestDerivePreviewRejectsGarbage(t *testing.T) {
	_, err := DerivePreview([]byte("not an image"), 300)
	assert.Error(t, err)
}
