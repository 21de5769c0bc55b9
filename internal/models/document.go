package models

import "time"

// Document is the audit record kept in Firestore for each processing job.
// It tracks status and provenance only; the authoritative processing result
// lives in the manifest cache.
type Document struct {
	FileID       string    `firestore:"fileId,omitempty"`
	Status       string    `firestore:"status,omitempty"`
	PageCount    int       `firestore:"pageCount,omitempty"`
	SourceIP     string    `firestore:"sourceIp,omitempty"`
	ErrorDetails string    `firestore:"errorDetails,omitempty"`
	CreatedAt    time.Time `firestore:"createdAt,omitempty"`
	CompletedAt  time.Time `firestore:"completedAt,omitempty"`
}

// Document status values.
const (
	StatusProcessing = "PROCESSING"
	StatusComplete   = "COMPLETE"
	StatusFailed     = "FAILED"
)
