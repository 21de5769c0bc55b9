package pipeline

import (
	"context"
	"log/slog"

	"github.com/pageatlas/pageatlas/internal/fingerprint"
	"github.com/pageatlas/pageatlas/internal/storage"
)

// Variant distinguishes the full-resolution page image from its preview.
type Variant int

const (
	VariantFull Variant = iota
	VariantPreview
)

func (v Variant) suffix() string {
	if v == VariantPreview {
		return "-preview"
	}
	return ""
}

func (v Variant) String() string {
	if v == VariantPreview {
		return "preview"
	}
	return "full"
}

// Uploader is the dedup-aware upload stage: it fingerprints encoded image
// bytes, derives the content-addressed key, and writes only when the key is
// absent. Repeated pages across documents (boilerplate cover sheets and the
// like) hit the existence check and skip the write entirely.
//
// The check-then-write window is not protected by any lock. Two concurrent
// runs computing the same fingerprint may both observe "absent" and both
// write; that is safe because key and bytes are identical, and
// last-writer-wins is the accepted outcome.
type Uploader struct {
	store storage.BlobStore
}

// NewUploader wraps a blob store.
func NewUploader(store storage.BlobStore) *Uploader {
	return &Uploader{store: store}
}

// Store uploads encoded image bytes under their content-addressed key and
// returns that key. sourceIP, when present, is recorded as provenance
// metadata on the write; it never influences the key or the dedup decision.
func (u *Uploader) Store(ctx context.Context, encoded []byte, variant Variant, sourceIP string) (string, error) {
	fp := fingerprint.Fingerprint(encoded)
	key := pageKey(fp, variant)

	exists, err := u.store.Exists(ctx, key)
	if err != nil {
		return "", &StoreError{Key: key, Op: "exists", Err: err}
	}
	if exists {
		slog.Debug("Image already stored, skipping upload.", "key", key, "variant", variant.String())
		return key, nil
	}

	opts := storage.PutOptions{ContentType: "image/jpeg"}
	if sourceIP != "" {
		opts.Metadata = map[string]string{"source-ip": sourceIP}
	}
	if err := u.store.Put(ctx, key, encoded, opts); err != nil {
		return "", &StoreError{Key: key, Op: "put", Err: err}
	}
	return key, nil
}
