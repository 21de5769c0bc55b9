package pipeline

import (
	"errors"
	"fmt"
)

// ErrSourceNotFound means the source PDF was never uploaded (or was removed).
// It is the one pipeline failure that is client-correctable, so the HTTP
// layer maps it to a 404.
var ErrSourceNotFound = errors.New("source document not found")

// RenderError wraps a failure to turn the source PDF into page images:
// malformed input, an unsupported document, or a zero-page result. The whole
// invocation is aborted; no partial manifest is ever produced.
type RenderError struct {
	FileID string
	Err    error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("failed to render document %s: %v", e.FileID, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// StoreError wraps a blob-store failure other than "not found". A missing
// page image would be a correctness violation of the eventual manifest, so
// these are never swallowed.
type StoreError struct {
	Key string
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("storage %s failed for %s: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
