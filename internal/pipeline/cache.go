package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pageatlas/pageatlas/internal/models"
	"github.com/pageatlas/pageatlas/internal/storage"
)

// ErrCacheMiss indicates no manifest is cached for the fileID.
var ErrCacheMiss = errors.New("manifest cache miss")

// ManifestCache stores each document's ResultManifest after successful
// processing. Manifests are immutable: a cached entry is returned as-is on
// every later request for the same fileID, short-circuiting reprocessing.
type ManifestCache interface {
	Lookup(ctx context.Context, fileID string) (*models.ResultManifest, error)
	Save(ctx context.Context, manifest *models.ResultManifest) error
}

// BlobManifestCache is the durable cache tier: results/{fileId}.json in the
// blob store.
type BlobManifestCache struct {
	store storage.BlobStore
}

// NewBlobManifestCache wraps a blob store.
func NewBlobManifestCache(store storage.BlobStore) *BlobManifestCache {
	return &BlobManifestCache{store: store}
}

func (c *BlobManifestCache) Lookup(ctx context.Context, fileID string) (*models.ResultManifest, error) {
	data, err := c.store.Get(ctx, resultKey(fileID))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached result for %s: %w", fileID, err)
	}
	var manifest models.ResultManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to decode cached result for %s: %w", fileID, err)
	}
	return &manifest, nil
}

func (c *BlobManifestCache) Save(ctx context.Context, manifest *models.ResultManifest) error {
	data, err := json.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("failed to encode result for %s: %w", manifest.FileID, err)
	}
	opts := storage.PutOptions{ContentType: "application/json"}
	if err := c.store.Put(ctx, resultKey(manifest.FileID), data, opts); err != nil {
		return fmt.Errorf("failed to write cached result for %s: %w", manifest.FileID, err)
	}
	return nil
}

// RedisManifestCache is a TTL'd hot tier in front of the durable cache.
type RedisManifestCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisManifestCache connects to Redis and verifies the connection.
func NewRedisManifestCache(ctx context.Context, addr string, ttl time.Duration) (*RedisManifestCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisManifestCache{client: client, ttl: ttl}, nil
}

func redisManifestKey(fileID string) string {
	return "pageatlas:manifest:" + fileID
}

func (c *RedisManifestCache) Lookup(ctx context.Context, fileID string) (*models.ResultManifest, error) {
	data, err := c.client.Get(ctx, redisManifestKey(fileID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get for %s: %w", fileID, err)
	}
	var manifest models.ResultManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to decode hot cache entry for %s: %w", fileID, err)
	}
	return &manifest, nil
}

func (c *RedisManifestCache) Save(ctx context.Context, manifest *models.ResultManifest) error {
	data, err := json.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("failed to encode result for %s: %w", manifest.FileID, err)
	}
	if err := c.client.Set(ctx, redisManifestKey(manifest.FileID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set for %s: %w", manifest.FileID, err)
	}
	return nil
}

// TieredCache reads through a hot tier into a durable tier, backfilling the
// hot tier on a durable hit. Saves go to the durable tier first; hot-tier
// write failures only cost future lookups a round trip.
type TieredCache struct {
	hot     ManifestCache
	durable ManifestCache
}

// NewTieredCache layers hot in front of durable.
func NewTieredCache(hot, durable ManifestCache) *TieredCache {
	return &TieredCache{hot: hot, durable: durable}
}

func (c *TieredCache) Lookup(ctx context.Context, fileID string) (*models.ResultManifest, error) {
	manifest, err := c.hot.Lookup(ctx, fileID)
	if err == nil {
		return manifest, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		slog.Warn("Hot cache lookup failed, falling through.", "fileId", fileID, "error", err)
	}

	manifest, err = c.durable.Lookup(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if backfillErr := c.hot.Save(ctx, manifest); backfillErr != nil {
		slog.Warn("Failed to backfill hot cache.", "fileId", fileID, "error", backfillErr)
	}
	return manifest, nil
}

func (c *TieredCache) Save(ctx context.Context, manifest *models.ResultManifest) error {
	if err := c.durable.Save(ctx, manifest); err != nil {
		return err
	}
	if err := c.hot.Save(ctx, manifest); err != nil {
		slog.Warn("Failed to write hot cache.", "fileId", manifest.FileID, "error", err)
	}
	return nil
}
