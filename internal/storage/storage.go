// Package storage abstracts the durable blob store behind a small capability
// interface so the pipeline can run against GCS, an S3-compatible endpoint,
// or an in-process fake in tests.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get and Delete when no object exists at the key.
var ErrNotFound = errors.New("object not found")

// PutOptions carries per-object write attributes. Metadata is provenance
// tagging only; it must never influence the object key or a dedup decision.
type PutOptions struct {
	ContentType string
	Metadata    map[string]string
}

// BlobStore is the capability object handed to the pipeline at construction
// time. Writes are expected to be idempotent for content-addressed keys:
// writing identical bytes to an existing key is always safe, and
// implementations may treat "already exists" as success.
type BlobStore interface {
	// Exists reports whether an object is present at key.
	Exists(ctx context.Context, key string) (bool, error)

	// Put writes data to key. Implementations backing content-addressed
	// namespaces must not fail when the key already holds identical content.
	Put(ctx context.Context, key string, data []byte, opts PutOptions) error

	// Get returns the full object at key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes the object at key, or returns ErrNotFound.
	Delete(ctx context.Context, key string) error

	// SignedUploadURL issues a time-limited URL that grants a single PUT of
	// the given content type to key.
	SignedUploadURL(ctx context.Context, key, contentType string, ttl time.Duration) (string, error)
}
