package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pageatlas/pageatlas/internal/models"
	"github.com/pageatlas/pageatlas/internal/registry"
	"github.com/pageatlas/pageatlas/internal/render"
	"github.com/pageatlas/pageatlas/internal/storage"
)

// ProcessorConfig bounds one document-processing invocation.
type ProcessorConfig struct {
	// PublicBaseURL prefixes every stored page key to form the manifest URLs.
	PublicBaseURL string
	// WorkerCount caps concurrent per-page upload units.
	WorkerCount int
	// PageEdge is the long-edge pixel target for full-resolution pages.
	PageEdge int
	// PreviewEdge is the long-edge pixel cap for preview variants.
	PreviewEdge int
	// ProcessTimeout bounds total wall clock per document.
	ProcessTimeout time.Duration
}

func (c *ProcessorConfig) applyDefaults() {
	if c.WorkerCount <= 0 {
		c.WorkerCount = 12
	}
	if c.PageEdge <= 0 {
		c.PageEdge = 2000
	}
	if c.PreviewEdge <= 0 {
		c.PreviewEdge = 300
	}
	if c.ProcessTimeout <= 0 {
		c.ProcessTimeout = 2 * time.Minute
	}
}

// Processor coordinates the full pipeline for one document: fetch the source
// PDF, render every page, fan out dedup-aware uploads of full images and
// previews, assemble the ordered manifest, and cache it.
type Processor struct {
	store    storage.BlobStore
	renderer render.Renderer
	cache    ManifestCache
	registry registry.Registry // may be nil; audit records are optional
	uploader *Uploader
	cfg      ProcessorConfig
}

// NewProcessor wires the pipeline's collaborators. reg may be nil when no
// audit registry is configured.
func NewProcessor(store storage.BlobStore, renderer render.Renderer, cache ManifestCache, reg registry.Registry, cfg ProcessorConfig) *Processor {
	cfg.applyDefaults()
	return &Processor{
		store:    store,
		renderer: renderer,
		cache:    cache,
		registry: reg,
		uploader: NewUploader(store),
		cfg:      cfg,
	}
}

// Process runs the pipeline for fileID and returns its manifest. A cached
// manifest is returned unchanged without re-rendering; that is an invariant,
// not an optimization, since re-deriving would be byte-identical. sourceIP is
// provenance for audit tagging only.
func (p *Processor) Process(ctx context.Context, fileID, sourceIP string) (*models.ResultManifest, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.ProcessTimeout)
	defer cancel()

	logCtx := slog.With("fileId", fileID)

	if manifest, err := p.cache.Lookup(ctx, fileID); err == nil {
		logCtx.Info("Returning cached result.")
		return manifest, nil
	} else if !errors.Is(err, ErrCacheMiss) {
		logCtx.Warn("Cache lookup failed, reprocessing.", "error", err)
	}

	p.auditBegin(ctx, logCtx, fileID, sourceIP)

	tempDir, err := os.MkdirTemp("", "pageatlas-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(tempDir); err != nil {
			logCtx.Warn("Failed to clean scratch directory.", "path", tempDir, "error", err)
		}
	}()

	sourcePath := filepath.Join(tempDir, "source.pdf")
	if err := p.fetchSource(ctx, fileID, sourcePath); err != nil {
		p.auditFail(ctx, logCtx, fileID, err)
		return nil, err
	}

	pages, err := p.renderPages(ctx, logCtx, fileID, sourcePath)
	if err != nil {
		p.auditFail(ctx, logCtx, fileID, err)
		return nil, err
	}

	fullKeys, err := p.fanOut(ctx, pages, sourceIP)
	if err != nil {
		p.auditFail(ctx, logCtx, fileID, err)
		return nil, err
	}

	manifest := p.assemble(fileID, fullKeys)
	if err := p.cache.Save(ctx, manifest); err != nil {
		// Best-effort cache: a future request simply reprocesses, and every
		// storage write along the way is dedup-safe.
		logCtx.Warn("Failed to cache result, continuing.", "error", err)
	}

	p.auditComplete(ctx, logCtx, fileID, manifest.PageCount)
	logCtx.Info("Document processed.", "pageCount", manifest.PageCount)
	return manifest, nil
}

func (p *Processor) fetchSource(ctx context.Context, fileID, destPath string) error {
	data, err := p.store.Get(ctx, SourceKey(fileID))
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("no upload at %s: %w", SourceKey(fileID), ErrSourceNotFound)
	}
	if err != nil {
		return &StoreError{Key: SourceKey(fileID), Op: "get", Err: err}
	}
	if err := os.WriteFile(destPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write source PDF to scratch: %w", err)
	}
	return nil
}

func (p *Processor) renderPages(ctx context.Context, logCtx *slog.Logger, fileID, sourcePath string) ([]render.Page, error) {
	optimizedPath, pageCount, err := render.Preflight(sourcePath)
	if err != nil {
		return nil, &RenderError{FileID: fileID, Err: err}
	}

	pages, err := p.renderer.Render(ctx, optimizedPath, p.cfg.PageEdge)
	if err != nil {
		return nil, &RenderError{FileID: fileID, Err: err}
	}
	if len(pages) == 0 {
		return nil, &RenderError{FileID: fileID, Err: fmt.Errorf("renderer produced zero pages")}
	}
	if len(pages) != pageCount {
		logCtx.Warn("Renderer page count differs from preflight.", "rendered", len(pages), "preflight", pageCount)
	}
	logCtx.Info("Rendered document.", "pageCount", len(pages))
	return pages, nil
}

// fanOut uploads every (page, variant) pair through the dedup-aware stage on
// a bounded worker pool. Results are indexed by page, never appended in
// completion order, so the manifest stays in render order no matter how the
// workers interleave. The first failure cancels the remaining units.
func (p *Processor) fanOut(ctx context.Context, pages []render.Page, sourceIP string) ([]string, error) {
	fullKeys := make([]string, len(pages))

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(p.cfg.WorkerCount)

	for _, pg := range pages {
		eg.Go(func() error {
			key, err := p.uploader.Store(gctx, pg.Data, VariantFull, sourceIP)
			if err != nil {
				return fmt.Errorf("page %d: %w", pg.Index, err)
			}
			fullKeys[pg.Index] = key
			return nil
		})
		eg.Go(func() error {
			preview, err := render.DerivePreview(pg.Data, p.cfg.PreviewEdge)
			if err != nil {
				return fmt.Errorf("page %d preview: %w", pg.Index, err)
			}
			if _, err := p.uploader.Store(gctx, preview, VariantPreview, sourceIP); err != nil {
				return fmt.Errorf("page %d preview: %w", pg.Index, err)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return fullKeys, nil
}

func (p *Processor) assemble(fileID string, fullKeys []string) *models.ResultManifest {
	base := strings.TrimRight(p.cfg.PublicBaseURL, "/")
	urls := make([]string, len(fullKeys))
	for i, key := range fullKeys {
		urls[i] = base + "/" + key
	}
	return &models.ResultManifest{
		FileID:    fileID,
		ImageURLs: urls,
		PageCount: len(urls),
	}
}

func (p *Processor) auditBegin(ctx context.Context, logCtx *slog.Logger, fileID, sourceIP string) {
	if p.registry == nil {
		return
	}
	if err := p.registry.Begin(ctx, fileID, sourceIP); err != nil {
		logCtx.Warn("Failed to record processing start.", "error", err)
	}
}

func (p *Processor) auditComplete(ctx context.Context, logCtx *slog.Logger, fileID string, pageCount int) {
	if p.registry == nil {
		return
	}
	if err := p.registry.Complete(ctx, fileID, pageCount); err != nil {
		logCtx.Warn("Failed to record completion.", "error", err)
	}
}

func (p *Processor) auditFail(ctx context.Context, logCtx *slog.Logger, fileID string, cause error) {
	if p.registry == nil {
		return
	}
	if err := p.registry.Fail(ctx, fileID, cause.Error()); err != nil {
		logCtx.Warn("Failed to record failure.", "error", err)
	}
}
