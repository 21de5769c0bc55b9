package models

// These structs define the JSON payloads exchanged with API callers and the
// shape of the cached per-document processing result.

// ResultManifest is the summary of one fully processed document. It is
// written to the result cache exactly once and returned unchanged on every
// subsequent request for the same file, so it must never be mutated after
// creation. ImageURLs is ordered by page: entry k is page k's full-resolution
// image. Preview variants are stored alongside but intentionally excluded.
type ResultManifest struct {
	FileID    string   `json:"fileId"`
	ImageURLs []string `json:"imageUrls"`
	PageCount int      `json:"pageCount"`
}

// UploadGrant is the response to an upload-URL request: a time-limited
// destination for a new PDF and the identifier to process it with later.
type UploadGrant struct {
	UploadURL string `json:"uploadUrl"`
	FileID    string `json:"fileId"`
}

// ErrorResponse is the body returned on every failure path.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Details map[string]any `json:"details,omitempty"`
}
