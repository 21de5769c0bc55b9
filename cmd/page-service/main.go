package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	"github.com/pageatlas/pageatlas/internal/app"
	"github.com/pageatlas/pageatlas/internal/httpapi"
)

var (
	handler *httpapi.Handler
	once    sync.Once
	initErr error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Register the HTTP function. The framework routes every request here;
	// path dispatch happens inside the handler.
	functions.HTTP("PageService", servePageService)
}

// main is required by the Go Functions Framework.
func main() {}

func servePageService(w http.ResponseWriter, r *http.Request) {
	// Use sync.Once for robust, one-time initialization of clients.
	once.Do(func() {
		var svc *app.Service
		svc, initErr = app.NewService(context.Background())
		if initErr == nil {
			handler = httpapi.NewHandler(svc.Processor, svc.Intake)
		}
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}

	handler.ServeHTTP(w, r)
}
