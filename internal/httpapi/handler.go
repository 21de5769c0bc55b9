// Package httpapi maps the request surface onto the pipeline: path parsing,
// fileID validation, provenance extraction, and error-to-status translation.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"regexp"
	"strings"

	"github.com/pageatlas/pageatlas/internal/models"
	"github.com/pageatlas/pageatlas/internal/pipeline"
)

// Processor runs the document pipeline.
type Processor interface {
	Process(ctx context.Context, fileID, sourceIP string) (*models.ResultManifest, error)
}

// URLIssuer mints upload destinations.
type URLIssuer interface {
	IssueUploadURL(ctx context.Context) (*models.UploadGrant, error)
}

// ValidationError describes a malformed request the caller can correct.
type ValidationError struct {
	Msg      string
	Received string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s (received %q)", e.Msg, e.Received)
}

var validEndpoints = []string{"/upload_url", "/process/<file_id>"}

// fileIDPattern keeps identifiers key-safe; anything else is rejected before
// it can reach the blob store namespace.
var fileIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Handler serves the two public operations.
type Handler struct {
	processor Processor
	issuer    URLIssuer
}

// NewHandler wires the request surface to its collaborators.
func NewHandler(processor Processor, issuer URLIssuer) *Handler {
	return &Handler{processor: processor, issuer: issuer}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resource, fileID := parsePath(r.URL.Path)

	switch resource {
	case "upload_url":
		h.handleUploadURL(w, r)
	case "process":
		h.handleProcess(w, r, fileID)
	default:
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{
			Error: "Invalid request path",
			Details: map[string]any{
				"received_path":   r.URL.Path,
				"valid_endpoints": validEndpoints,
				"help":            "Use one of the valid endpoints without query parameters",
			},
		})
	}
}

func (h *Handler) handleUploadURL(w http.ResponseWriter, r *http.Request) {
	grant, err := h.issuer.IssueUploadURL(r.Context())
	if err != nil {
		slog.Error("Failed to issue upload URL.", "error", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to generate upload URL"})
		return
	}
	writeJSON(w, http.StatusOK, grant)
}

func (h *Handler) handleProcess(w http.ResponseWriter, r *http.Request, fileID string) {
	if !fileIDPattern.MatchString(fileID) {
		vErr := &ValidationError{Msg: "file id must contain only letters, digits, '-' and '_'", Received: fileID}
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{
			Error:   vErr.Error(),
			Details: map[string]any{"valid_endpoints": validEndpoints},
		})
		return
	}

	sourceIP := clientIP(r)
	manifest, err := h.processor.Process(r.Context(), fileID, sourceIP)
	if err != nil {
		h.writeProcessError(w, fileID, err)
		return
	}
	writeJSON(w, http.StatusOK, manifest)
}

func (h *Handler) writeProcessError(w http.ResponseWriter, fileID string, err error) {
	var renderErr *pipeline.RenderError
	var storeErr *pipeline.StoreError

	switch {
	case errors.Is(err, pipeline.ErrSourceNotFound):
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "PDF file not found"})
	case errors.As(err, &renderErr):
		slog.Error("Render failed.", "fileId", fileID, "error", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to convert PDF to images"})
	case errors.As(err, &storeErr):
		slog.Error("Storage operation failed.", "fileId", fileID, "error", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Storage backend failure"})
	default:
		slog.Error("Unexpected processing error.", "fileId", fileID, "error", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal error while processing document"})
	}
}

// parsePath splits the request path into a resource and an optional fileID.
func parsePath(path string) (resource, fileID string) {
	var parts []string
	for _, p := range strings.Split(path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	switch {
	case len(parts) == 1 && parts[0] == "upload_url":
		return "upload_url", ""
	case len(parts) == 2 && parts[0] == "process":
		return "process", parts[1]
	}
	return "", ""
}

// clientIP extracts the caller's network address for provenance tagging.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first, _, ok := strings.Cut(fwd, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(fwd)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to write response.", "error", err)
	}
}
