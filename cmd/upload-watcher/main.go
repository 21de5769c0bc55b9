package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevents "github.com/cloudevents/sdk-go/v2"

	"github.com/pageatlas/pageatlas/internal/app"
	"github.com/pageatlas/pageatlas/internal/pipeline"
)

var (
	svc     *app.Service
	once    sync.Once
	initErr error
)

// GCSEvent defines the structure for the GCS event data.
type GCSEvent struct {
	Bucket string `json:"bucket"`
	Name   string `json:"name"`
}

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Register the CloudEvent function: object-finalize events on the upload
	// prefix trigger processing eagerly, so the manifest is already cached by
	// the time the first /process request arrives.
	functions.CloudEvent("ProcessOnUpload", processOnUpload)
}

// main is required by the Go Functions Framework.
func main() {}

func processOnUpload(ctx context.Context, e cloudevents.Event) error {
	// Use sync.Once for robust, one-time initialization of clients.
	once.Do(func() {
		svc, initErr = app.NewService(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		return initErr
	}

	var gcsEvent GCSEvent
	if err := json.Unmarshal(e.Data(), &gcsEvent); err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "data", string(e.Data()))
		return fmt.Errorf("json.Unmarshal: %w", err)
	}

	logCtx := slog.With("gcsBucket", gcsEvent.Bucket, "gcsObject", gcsEvent.Name)

	fileID, ok := fileIDFromObject(gcsEvent.Name)
	if !ok {
		logCtx.Info("Object is not a document upload. Skipping.")
		return nil
	}
	logCtx = logCtx.With("fileId", fileID)
	logCtx.Info("Pre-processing uploaded document.")

	if _, err := svc.Processor.Process(ctx, fileID, ""); err != nil {
		if errors.Is(err, pipeline.ErrSourceNotFound) {
			// The object was deleted between the event and the fetch; a retry
			// would never succeed, so consume the event.
			logCtx.Warn("Source vanished before processing. Skipping.", "error", err)
			return nil
		}
		logCtx.Error("Failed to pre-process document.", "error", err)
		return err
	}

	logCtx.Info("Document pre-processed and cached.")
	return nil
}

// fileIDFromObject extracts the fileID from an upload object name of the
// form uploads/{fileId}.pdf. Anything else is not ours to process.
func fileIDFromObject(name string) (string, bool) {
	rest, ok := strings.CutPrefix(name, "uploads/")
	if !ok || strings.Contains(rest, "/") {
		return "", false
	}
	fileID, ok := strings.CutSuffix(rest, ".pdf")
	if !ok || fileID == "" {
		return "", false
	}
	return fileID, true
}
