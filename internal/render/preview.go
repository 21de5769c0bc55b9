package render

import (
	"bytes"
	"fmt"
	"image/jpeg"

	"github.com/disintegration/imaging"
)

// DerivePreview produces a proportionally scaled preview of an encoded page
// image whose longer edge does not exceed maxEdge. The Lanczos filter and a
// fixed JPEG quality keep the output deterministic for identical input
// bytes, so preview fingerprints dedup exactly like full images do.
func DerivePreview(encoded []byte, maxEdge int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("failed to decode page image: %w", err)
	}

	thumb := imaging.Fit(img, maxEdge, maxEdge, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}
	return buf.Bytes(), nil
}
