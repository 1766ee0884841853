package analysis

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"lowlight-enhancer/internal/enhance"
	"lowlight-enhancer/internal/logger"
	"lowlight-enhancer/internal/pipeline"
)

// Analyzer renders histogram/CDF charts for a chosen subset of images:
// one chart for the original and one per enhancement method output.
type Analyzer struct {
	loader    pipeline.ImageLoader
	processor pipeline.ImageProcessor
	manager   *enhance.Manager
	methods   []pipeline.MethodRun
	logger    logger.Logger
}

func NewAnalyzer(loader pipeline.ImageLoader, processor pipeline.ImageProcessor,
	manager *enhance.Manager, methods []pipeline.MethodRun, log logger.Logger) *Analyzer {
	return &Analyzer{
		loader:    loader,
		processor: processor,
		manager:   manager,
		methods:   methods,
		logger:    log,
	}
}

// AnalyzeImage writes `<stem>_original.png` plus one chart per method
// under outputDir.
func (a *Analyzer) AnalyzeImage(ctx context.Context, path, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create analysis directory: %w", err)
	}

	original, err := a.loader.LoadFromPath(path)
	if err != nil {
		return err
	}
	defer original.Close()

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	if err := a.renderFor(original, fmt.Sprintf("%s (original)", stem),
		filepath.Join(outputDir, fmt.Sprintf("%s_original.png", stem))); err != nil {
		return err
	}

	for _, run := range a.methods {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		method, err := a.manager.GetMethod(run.Name)
		if err != nil {
			return err
		}

		result, err := a.processor.ProcessImageWithContext(ctx, original, method, run.Params)
		if err != nil {
			return err
		}

		chartPath := filepath.Join(outputDir, fmt.Sprintf("%s_%s.png", stem, run.Subdir))
		renderErr := a.renderFor(result, fmt.Sprintf("%s (%s)", stem, run.Label), chartPath)
		result.Close()
		if renderErr != nil {
			return renderErr
		}
	}

	a.logger.Info("Analyzer", "analysis charts written", map[string]interface{}{
		"image":  filepath.Base(path),
		"output": outputDir,
	})

	return nil
}

func (a *Analyzer) renderFor(data *pipeline.ImageData, title, path string) error {
	hist, err := Histogram(data.Mat)
	if err != nil {
		return fmt.Errorf("%s: %w", title, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	if err := RenderChart(title, hist, CDF(hist), f); err != nil {
		return fmt.Errorf("failed to render chart %s: %w", path, err)
	}

	return nil
}
