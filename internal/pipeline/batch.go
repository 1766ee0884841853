package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"lowlight-enhancer/internal/enhance"
	"lowlight-enhancer/internal/logger"
	"lowlight-enhancer/internal/opencv/memory"
)

// MethodRun binds a registered method to its batch parameters, output
// subdirectory, and the label shown on comparison panels.
type MethodRun struct {
	Name   string
	Subdir string
	Label  string
	Params map[string]interface{}
}

// Summary reports the outcome of one batch run.
type Summary struct {
	Discovered int
	Processed  int
	Skipped    int
}

// Batch walks a flat dataset directory, applies every configured
// method to each image, and writes per-method outputs plus a composed
// comparison panel. One bad image never aborts the rest of the run.
type Batch struct {
	datasetDir    string
	outputDir     string
	methods       []MethodRun
	manager       *enhance.Manager
	loader        ImageLoader
	processor     ImageProcessor
	saver         ImageSaver
	memoryManager *memory.Manager
	logger        logger.Logger
}

var supportedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
}

const comparisonsSubdir = "comparisons"

// DefaultMethodRuns returns the fixed batch configuration: gamma 0.5
// power-law, clip 3.0 / tile 8 CLAHE, and adaptive thresholding.
func DefaultMethodRuns(manager *enhance.Manager) []MethodRun {
	return []MethodRun{
		{
			Name:   "power_law",
			Subdir: "power_law",
			Label:  "Power-Law (gamma=0.5)",
			Params: manager.GetParameters("power_law"),
		},
		{
			Name:   "clahe",
			Subdir: "clahe",
			Label:  "CLAHE",
			Params: manager.GetParameters("clahe"),
		},
		{
			Name:   "thresholding",
			Subdir: "thresholding",
			Label:  "Thresholding (Adaptive)",
			Params: manager.GetParameters("thresholding"),
		},
	}
}

func NewBatch(datasetDir, outputDir string, methods []MethodRun, manager *enhance.Manager,
	memMgr *memory.Manager, log logger.Logger) *Batch {
	return &Batch{
		datasetDir:    datasetDir,
		outputDir:     outputDir,
		methods:       methods,
		manager:       manager,
		loader:        NewLoader(memMgr, log),
		processor:     NewProcessor(log),
		saver:         NewSaver(log),
		memoryManager: memMgr,
		logger:        log,
	}
}

// Run processes every supported image in the dataset directory.
// Parameter validation failures abort immediately; per-image data
// errors are logged and skipped.
func (b *Batch) Run(ctx context.Context) (Summary, error) {
	var summary Summary

	if err := b.validateMethodParameters(); err != nil {
		return summary, err
	}

	files, err := b.discoverImages()
	if err != nil {
		return summary, err
	}
	summary.Discovered = len(files)

	if len(files) == 0 {
		b.logger.Warning("Batch", "no images found in dataset directory", map[string]interface{}{
			"dataset": b.datasetDir,
		})
		return summary, nil
	}

	if err := b.createOutputLayout(); err != nil {
		return summary, err
	}

	b.logger.Info("Batch", "batch processing started", map[string]interface{}{
		"dataset": b.datasetDir,
		"output":  b.outputDir,
		"images":  len(files),
	})

	start := time.Now()
	for idx, path := range files {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		b.logger.Info("Batch", "processing image", map[string]interface{}{
			"index": fmt.Sprintf("%d/%d", idx+1, len(files)),
			"image": filepath.Base(path),
		})

		if err := b.processOne(ctx, path); err != nil {
			if errors.Is(err, enhance.ErrInvalidParameter) ||
				errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return summary, err
			}
			summary.Skipped++
			b.logger.Warning("Batch", "skipping image", map[string]interface{}{
				"image": filepath.Base(path),
				"error": err.Error(),
			})
			continue
		}

		summary.Processed++
	}

	b.logger.Info("Batch", "batch processing completed", map[string]interface{}{
		"processed": summary.Processed,
		"skipped":   summary.Skipped,
		"elapsed":   time.Since(start),
	})

	stats := b.memoryManager.GetStats()
	b.logger.Debug("Batch", "memory statistics", map[string]interface{}{
		"allocations":   stats.Allocations,
		"deallocations": stats.Deallocations,
		"peak_bytes":    stats.PeakBytes,
		"active_mats":   stats.ActiveMats,
	})

	return summary, nil
}

func (b *Batch) validateMethodParameters() error {
	for _, run := range b.methods {
		method, err := b.manager.GetMethod(run.Name)
		if err != nil {
			return err
		}
		if err := method.ValidateParameters(run.Params); err != nil {
			return fmt.Errorf("method %s: %w", run.Name, err)
		}
	}
	return nil
}

func (b *Batch) discoverImages() ([]string, error) {
	entries, err := os.ReadDir(b.datasetDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: dataset directory %s", ErrFileNotFound, b.datasetDir)
		}
		return nil, fmt.Errorf("failed to read dataset directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if supportedExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			files = append(files, filepath.Join(b.datasetDir, entry.Name()))
		}
	}
	sort.Strings(files)

	return files, nil
}

// outputLayout lists one subdirectory per configured method plus the
// comparisons directory.
func outputLayout(outputDir string, methods []MethodRun) []string {
	dirs := []string{filepath.Join(outputDir, comparisonsSubdir)}
	for _, run := range methods {
		dirs = append(dirs, filepath.Join(outputDir, run.Subdir))
	}
	return dirs
}

// createOutputLayout is idempotent: existing directories are fine.
func (b *Batch) createOutputLayout() error {
	for _, dir := range outputLayout(b.outputDir, b.methods) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}

	return nil
}

func (b *Batch) processOne(ctx context.Context, path string) error {
	original, err := b.loader.LoadFromPath(path)
	if err != nil {
		return err
	}
	defer original.Close()

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	panels := []Panel{{Mat: original.Mat, Label: "Original"}}

	results := make([]*ImageData, 0, len(b.methods))
	defer func() {
		for _, result := range results {
			result.Close()
		}
	}()

	for _, run := range b.methods {
		method, err := b.manager.GetMethod(run.Name)
		if err != nil {
			return err
		}

		result, err := b.processor.ProcessImageWithContext(ctx, original, method, run.Params)
		if err != nil {
			return err
		}
		results = append(results, result)

		outPath := filepath.Join(b.outputDir, run.Subdir, fmt.Sprintf("%s_%s.jpg", stem, run.Subdir))
		if err := b.saver.SaveToPath(outPath, result); err != nil {
			return err
		}

		panels = append(panels, Panel{Mat: result.Mat, Label: run.Label})
	}

	return b.writeComparison(stem, panels)
}

func (b *Batch) writeComparison(stem string, panels []Panel) error {
	composed, err := ComposeComparison(panels)
	if err != nil {
		return fmt.Errorf("failed to compose comparison: %w", err)
	}
	defer composed.Close()

	outPath := filepath.Join(b.outputDir, comparisonsSubdir, fmt.Sprintf("%s_comparison.png", stem))
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", outPath, err)
	}

	if err := b.saver.SaveToWriter(f, &ImageData{Mat: composed}, "png"); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

// CreateLayout pre-creates the dataset directory and the expected
// output structure so users can drop images in before the first run.
// The output subdirectories come from the method runs, so the layout
// always matches what a batch run would create.
func CreateLayout(datasetDir, outputDir string, methods []MethodRun) error {
	dirs := append([]string{datasetDir}, outputLayout(outputDir, methods)...)

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	return nil
}
