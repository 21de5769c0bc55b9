package render

import (
	"fmt"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Preflight validates and optimizes the downloaded PDF before rasterization,
// writing the optimized copy next to the source. It returns the optimized
// path and the page count. A PDF that fails relaxed validation is malformed
// as far as this pipeline is concerned.
func Preflight(sourcePath string) (string, int, error) {
	optimizedPath := filepath.Join(filepath.Dir(sourcePath), "optimized.pdf")

	cfg := model.NewDefaultConfiguration()
	cfg.ValidationMode = model.ValidationRelaxed
	if err := api.OptimizeFile(sourcePath, optimizedPath, cfg); err != nil {
		return "", 0, fmt.Errorf("failed to validate/optimize PDF: %w", err)
	}

	pageCount, err := api.PageCountFile(optimizedPath)
	if err != nil {
		return "", 0, fmt.Errorf("failed to get page count: %w", err)
	}
	if pageCount == 0 {
		return "", 0, fmt.Errorf("document has zero pages")
	}
	return optimizedPath, pageCount, nil
}
