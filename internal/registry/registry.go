// Package registry keeps a best-effort audit record per processing job in
// Firestore. Registry failures are reported to the caller for logging but
// must never abort a pipeline run; the manifest cache, not the registry, is
// the authoritative processing result.
package registry

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/pageatlas/pageatlas/internal/models"
)

// Registry records the lifecycle of a document-processing invocation.
type Registry interface {
	Begin(ctx context.Context, fileID, sourceIP string) error
	Complete(ctx context.Context, fileID string, pageCount int) error
	Fail(ctx context.Context, fileID, details string) error
}

// FirestoreRegistry implements Registry on a Firestore collection, one
// document per fileID.
type FirestoreRegistry struct {
	client     *firestore.Client
	collection string
}

// NewFirestoreRegistry creates a Firestore client for the given project and
// returns a registry writing to the named collection.
func NewFirestoreRegistry(ctx context.Context, projectID, collection string) (*FirestoreRegistry, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID must be provided to create a firestore registry")
	}
	if collection == "" {
		collection = "documents"
	}
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}
	return &FirestoreRegistry{client: client, collection: collection}, nil
}

func (r *FirestoreRegistry) Begin(ctx context.Context, fileID, sourceIP string) error {
	doc := models.Document{
		FileID:    fileID,
		Status:    models.StatusProcessing,
		SourceIP:  sourceIP,
		CreatedAt: time.Now(),
	}
	if _, err := r.client.Collection(r.collection).Doc(fileID).Set(ctx, doc); err != nil {
		return fmt.Errorf("failed to create registry document for %s: %w", fileID, err)
	}
	return nil
}

func (r *FirestoreRegistry) Complete(ctx context.Context, fileID string, pageCount int) error {
	updates := []firestore.Update{
		{Path: "status", Value: models.StatusComplete},
		{Path: "pageCount", Value: pageCount},
		{Path: "completedAt", Value: time.Now()},
	}
	if _, err := r.client.Collection(r.collection).Doc(fileID).Update(ctx, updates); err != nil {
		return fmt.Errorf("failed to mark %s complete: %w", fileID, err)
	}
	return nil
}

func (r *FirestoreRegistry) Fail(ctx context.Context, fileID, details string) error {
	updates := []firestore.Update{
		{Path: "status", Value: models.StatusFailed},
		{Path: "errorDetails", Value: details},
	}
	if _, err := r.client.Collection(r.collection).Doc(fileID).Update(ctx, updates); err != nil {
		return fmt.Errorf("failed to mark %s failed: %w", fileID, err)
	}
	return nil
}
