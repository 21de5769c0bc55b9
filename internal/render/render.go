// Package render turns a PDF into ordered JPEG page images and derives
// downscaled preview variants.
package render

import "context"

// Page is one rendered page of a document. Data holds the encoded JPEG
// bytes; Index is the 0-based position in document order. Pages are
// transient: only their content-addressed storage form is durable.
type Page struct {
	Index int
	Data  []byte
}

// Renderer converts a PDF file into an ordered sequence of raster pages
// whose longer edge approximates targetEdge pixels. Index 0 is the first
// page of the document. A document that yields zero pages is an error,
// never an empty success.
type Renderer interface {
	Render(ctx context.Context, pdfPath string, targetEdge int) ([]Page, error)
}
