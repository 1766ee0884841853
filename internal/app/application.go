package app

import (
	"context"
	"fmt"
	"path/filepath"

	"lowlight-enhancer/internal/analysis"
	"lowlight-enhancer/internal/enhance"
	"lowlight-enhancer/internal/logger"
	"lowlight-enhancer/internal/opencv/memory"
	"lowlight-enhancer/internal/pipeline"
)

const (
	AppName    = "lowlight-enhancer"
	AppVersion = "1.0.0"
)

// Config holds the run configuration. Defaults mirror the expected
// project layout: a flat dataset directory and a results tree next to
// it.
type Config struct {
	DatasetDir string
	OutputDir  string
	CreateOnly bool
	Analyze    []string
	Verbose    bool
}

func DefaultConfig() Config {
	return Config{
		DatasetDir: "dataset",
		OutputDir:  filepath.Join("results", "dataset_results"),
	}
}

type Application struct {
	config        Config
	logger        logger.Logger
	memoryManager *memory.Manager
	methodManager *enhance.Manager
	methods       []pipeline.MethodRun
}

func NewApplication(config Config) *Application {
	log := logger.NewConsoleLogger(logger.LevelFor(config.Verbose))

	log.Info("Application", "starting", map[string]interface{}{
		"version": AppVersion,
		"dataset": config.DatasetDir,
		"output":  config.OutputDir,
	})

	methodManager := enhance.NewManager()

	return &Application{
		config:        config,
		logger:        log,
		memoryManager: memory.NewManager(log),
		methodManager: methodManager,
		methods:       pipeline.DefaultMethodRuns(methodManager),
	}
}

// Run executes the requested mode: layout creation, batch processing,
// and optionally histogram/CDF analysis for a subset of images.
func (a *Application) Run(ctx context.Context) error {
	defer a.memoryManager.LogSummary()

	if a.config.CreateOnly {
		if err := pipeline.CreateLayout(a.config.DatasetDir, a.config.OutputDir, a.methods); err != nil {
			return err
		}
		a.logger.Info("Application", "directory layout created", map[string]interface{}{
			"dataset": a.config.DatasetDir,
			"output":  a.config.OutputDir,
		})
		return nil
	}

	batch := pipeline.NewBatch(a.config.DatasetDir, a.config.OutputDir,
		a.methods, a.methodManager, a.memoryManager, a.logger)

	summary, err := batch.Run(ctx)
	if err != nil {
		return fmt.Errorf("batch processing failed: %w", err)
	}

	a.logger.Info("Application", "run summary", map[string]interface{}{
		"discovered": summary.Discovered,
		"processed":  summary.Processed,
		"skipped":    summary.Skipped,
	})

	if len(a.config.Analyze) > 0 {
		if err := a.runAnalysis(ctx); err != nil {
			return fmt.Errorf("analysis failed: %w", err)
		}
	}

	return nil
}

func (a *Application) runAnalysis(ctx context.Context) error {
	analyzer := analysis.NewAnalyzer(
		pipeline.NewLoader(a.memoryManager, a.logger),
		pipeline.NewProcessor(a.logger),
		a.methodManager,
		a.methods,
		a.logger,
	)

	outputDir := filepath.Join(a.config.OutputDir, "analysis")
	for _, name := range a.config.Analyze {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		path := filepath.Join(a.config.DatasetDir, name)
		if err := analyzer.AnalyzeImage(ctx, path, outputDir); err != nil {
			a.logger.Warning("Application", "analysis skipped for image", map[string]interface{}{
				"image": name,
				"error": err.Error(),
			})
		}
	}

	return nil
}
