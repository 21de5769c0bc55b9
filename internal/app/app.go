// Package app loads configuration from the environment and wires the
// pipeline's collaborators for the function entry points.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	gcs "cloud.google.com/go/storage"

	"github.com/pageatlas/pageatlas/internal/pipeline"
	"github.com/pageatlas/pageatlas/internal/registry"
	"github.com/pageatlas/pageatlas/internal/render"
	"github.com/pageatlas/pageatlas/internal/storage"
)

// GetEnv is a helper to read an environment variable or return a default value.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("Ignoring non-integer environment value.", "key", key, "value", raw)
		return fallback
	}
	return v
}

// Config holds all settings shared by the service entry points.
type Config struct {
	Backend       string // "gcs" or "minio"
	Bucket        string
	PublicBaseURL string

	ProjectID  string // enables the Firestore audit registry when set
	Collection string

	RedisAddr string // enables the hot manifest cache tier when set
	RedisTTL  time.Duration

	MinIO storage.MinIOConfig

	WorkerCount    int
	PageEdge       int
	PreviewEdge    int
	ProcessTimeout time.Duration
	UploadTTL      time.Duration
}

// LoadConfig reads and validates the environment.
func LoadConfig() (*Config, error) {
	bucket := GetEnv("BUCKET_NAME", "")
	if bucket == "" {
		return nil, fmt.Errorf("BUCKET_NAME environment variable must be set")
	}
	backend := GetEnv("BLOB_BACKEND", "gcs")

	publicBaseURL := GetEnv("PUBLIC_BASE_URL", "")
	if publicBaseURL == "" {
		switch backend {
		case "gcs":
			publicBaseURL = "https://storage.googleapis.com/" + bucket
		default:
			publicBaseURL = "https://" + bucket
		}
	}

	cfg := &Config{
		Backend:       backend,
		Bucket:        bucket,
		PublicBaseURL: publicBaseURL,
		ProjectID:     GetEnv("PROJECT_ID", ""),
		Collection:    GetEnv("FIRESTORE_COLLECTION", "documents"),
		RedisAddr:     GetEnv("REDIS_ADDR", ""),
		RedisTTL:      time.Duration(getEnvInt("REDIS_TTL_SECONDS", 86400)) * time.Second,
		MinIO: storage.MinIOConfig{
			Endpoint:  GetEnv("MINIO_ENDPOINT", ""),
			AccessKey: GetEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: GetEnv("MINIO_SECRET_KEY", ""),
			UseSSL:    GetEnv("MINIO_USE_SSL", "false") == "true",
			Bucket:    bucket,
		},
		WorkerCount:    getEnvInt("WORKER_COUNT", 12),
		PageEdge:       getEnvInt("MAIN_IMAGE_SIZE", 2000),
		PreviewEdge:    getEnvInt("PREVIEW_IMAGE_SIZE", 300),
		ProcessTimeout: time.Duration(getEnvInt("PROCESS_TIMEOUT_SECONDS", 120)) * time.Second,
		UploadTTL:      time.Duration(getEnvInt("UPLOAD_URL_TTL_SECONDS", 3600)) * time.Second,
	}
	return cfg, nil
}

// Service bundles the wired pipeline for one function instance.
type Service struct {
	Processor *pipeline.Processor
	Intake    *pipeline.Intake
	Config    *Config
}

// NewService loads configuration and constructs every collaborator: blob
// store, renderer, manifest cache tiers, and the optional audit registry.
func NewService(ctx context.Context) (*Service, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	store, err := newBlobStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var cache pipeline.ManifestCache = pipeline.NewBlobManifestCache(store)
	if cfg.RedisAddr != "" {
		hot, err := pipeline.NewRedisManifestCache(ctx, cfg.RedisAddr, cfg.RedisTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect hot cache: %w", err)
		}
		cache = pipeline.NewTieredCache(hot, cache)
	}

	var reg registry.Registry
	if cfg.ProjectID != "" {
		reg, err = registry.NewFirestoreRegistry(ctx, cfg.ProjectID, cfg.Collection)
		if err != nil {
			return nil, fmt.Errorf("failed to create audit registry: %w", err)
		}
	} else {
		slog.Info("PROJECT_ID not set, audit registry disabled.")
	}

	processor := pipeline.NewProcessor(store, render.NewFitzRenderer(), cache, reg, pipeline.ProcessorConfig{
		PublicBaseURL:  cfg.PublicBaseURL,
		WorkerCount:    cfg.WorkerCount,
		PageEdge:       cfg.PageEdge,
		PreviewEdge:    cfg.PreviewEdge,
		ProcessTimeout: cfg.ProcessTimeout,
	})

	slog.Info("Service initialized.", "backend", cfg.Backend, "bucket", cfg.Bucket)
	return &Service{
		Processor: processor,
		Intake:    pipeline.NewIntake(store, cfg.UploadTTL),
		Config:    cfg,
	}, nil
}

func newBlobStore(ctx context.Context, cfg *Config) (storage.BlobStore, error) {
	switch cfg.Backend {
	case "gcs":
		client, err := gcs.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		store, err := storage.NewGCSStore(client, cfg.Bucket)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "minio":
		store, err := storage.NewMinIOStore(ctx, cfg.MinIO)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown blob backend %q", cfg.Backend)
	}
}
