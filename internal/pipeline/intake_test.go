package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageatlas/pageatlas/internal/storage"
)

func TestIssueUploadURL(t *testing.T) {
	intake := NewIntake(storage.NewMemoryStore(), 0)

	grant, err := intake.IssueUploadURL(context.Background())
	require.NoError(t, err)

	_, err = uuid.Parse(grant.FileID)
	assert.NoError(t, err, "fileId should be a UUID")
	assert.Contains(t, grant.UploadURL, fmt.Sprintf("uploads/%s.pdf", grant.FileID))
}

func TestIssueUploadURLUniqueIDs(t *testing.T) {
	intake := NewIntake(storage.NewMemoryStore(), 0)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		grant, err := intake.IssueUploadURL(context.Background())
		require.NoError(t, err)
		assert.False(t, seen[grant.FileID], "duplicate fileId issued")
		seen[grant.FileID] = true
	}
}
