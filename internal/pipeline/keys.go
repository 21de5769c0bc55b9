package pipeline

import "fmt"

// Blob store key namespace. Page images are content-addressed; everything
// else is keyed by fileID.

// SourceKey is where a document's uploaded PDF lives.
func SourceKey(fileID string) string {
	return fmt.Sprintf("uploads/%s.pdf", fileID)
}

// resultKey is where a document's cached manifest lives.
func resultKey(fileID string) string {
	return fmt.Sprintf("results/%s.json", fileID)
}

// pageKey is the content-addressed location of one stored page image.
func pageKey(fp string, variant Variant) string {
	return fmt.Sprintf("pages/%s%s.jpeg", fp, variant.suffix())
}
