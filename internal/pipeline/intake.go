package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pageatlas/pageatlas/internal/models"
	"github.com/pageatlas/pageatlas/internal/storage"
)

// Intake issues upload destinations for new documents: a fresh fileID and a
// time-limited signed PUT URL for its source key.
type Intake struct {
	store storage.BlobStore
	ttl   time.Duration
}

// NewIntake wraps a blob store. A non-positive ttl defaults to one hour.
func NewIntake(store storage.BlobStore, ttl time.Duration) *Intake {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Intake{store: store, ttl: ttl}
}

// IssueUploadURL mints a new document identifier and a signed upload URL for
// its source PDF.
func (i *Intake) IssueUploadURL(ctx context.Context) (*models.UploadGrant, error) {
	fileID := uuid.NewString()
	url, err := i.store.SignedUploadURL(ctx, SourceKey(fileID), "application/pdf", i.ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to generate upload URL: %w", err)
	}
	return &models.UploadGrant{UploadURL: url, FileID: fileID}, nil
}
