package render

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"

	"github.com/gen2brain/go-fitz"
)

const (
	// baseDPI is the resolution at which MuPDF reports page bounds.
	baseDPI = 72.0

	// jpegQuality matches the quality used for stored page images and
	// previews. Changing it changes every fingerprint, so it is fixed.
	jpegQuality = 85
)

// FitzRenderer rasterizes PDFs with MuPDF via go-fitz.
type FitzRenderer struct{}

// NewFitzRenderer returns a MuPDF-backed renderer.
func NewFitzRenderer() *FitzRenderer {
	return &FitzRenderer{}
}

// Render converts every page of the PDF at pdfPath into a JPEG whose longer
// edge approximates targetEdge pixels, preserving document page order.
func (r *FitzRenderer) Render(ctx context.Context, pdfPath string, targetEdge int) ([]Page, error) {
	doc, err := fitz.New(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF %s: %w", pdfPath, err)
	}
	defer doc.Close()

	pageCount := doc.NumPage()
	if pageCount == 0 {
		return nil, fmt.Errorf("document produced zero pages")
	}

	pages := make([]Page, 0, pageCount)
	for i := 0; i < pageCount; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		bound, err := doc.Bound(i)
		if err != nil {
			return nil, fmt.Errorf("failed to measure page %d: %w", i, err)
		}
		longEdge := bound.Dx()
		if bound.Dy() > longEdge {
			longEdge = bound.Dy()
		}
		if longEdge <= 0 {
			return nil, fmt.Errorf("page %d has degenerate bounds %v", i, bound)
		}

		dpi := baseDPI * float64(targetEdge) / float64(longEdge)
		img, err := doc.ImageDPI(i, dpi)
		if err != nil {
			return nil, fmt.Errorf("failed to rasterize page %d: %w", i, err)
		}

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return nil, fmt.Errorf("failed to encode page %d: %w", i, err)
		}
		pages = append(pages, Page{Index: i, Data: buf.Bytes()})
	}
	return pages, nil
}
