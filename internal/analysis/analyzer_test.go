package analysis

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"lowlight-enhancer/internal/enhance"
	"lowlight-enhancer/internal/opencv/memory"
	"lowlight-enhancer/internal/pipeline"
)

type nopLogger struct{}

func (nopLogger) Info(string, string, map[string]interface{})    {}
func (nopLogger) Error(string, error, map[string]interface{})    {}
func (nopLogger) Warning(string, string, map[string]interface{}) {}
func (nopLogger) Debug(string, string, map[string]interface{})   {}

func TestAnalyzeImageWritesChartPerMethod(t *testing.T) {
	log := nopLogger{}
	dir := t.TempDir()

	img := image.NewRGBA(image.Rect(0, 0, 40, 30))
	for y := 0; y < 30; y++ {
		for x := 0; x < 40; x++ {
			v := uint8((x * 255) / 39)
			img.SetRGBA(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}

	imgPath := filepath.Join(dir, "night.png")
	f, err := os.Create(imgPath)
	if err != nil {
		t.Fatalf("failed to create image: %v", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		t.Fatalf("failed to encode image: %v", err)
	}
	f.Close()

	manager := enhance.NewManager()
	memMgr := memory.NewManager(log)
	analyzer := NewAnalyzer(
		pipeline.NewLoader(memMgr, log),
		pipeline.NewProcessor(log),
		manager,
		pipeline.DefaultMethodRuns(manager),
		log,
	)

	outputDir := filepath.Join(dir, "analysis")
	if err := analyzer.AnalyzeImage(context.Background(), imgPath, outputDir); err != nil {
		t.Fatalf("AnalyzeImage failed: %v", err)
	}

	for _, name := range []string{
		"night_original.png",
		"night_power_law.png",
		"night_clahe.png",
		"night_thresholding.png",
	} {
		if _, err := os.Stat(filepath.Join(outputDir, name)); err != nil {
			t.Errorf("expected chart %s: %v", name, err)
		}
	}
}

func TestAnalyzeMissingImage(t *testing.T) {
	log := nopLogger{}
	manager := enhance.NewManager()
	memMgr := memory.NewManager(log)
	analyzer := NewAnalyzer(
		pipeline.NewLoader(memMgr, log),
		pipeline.NewProcessor(log),
		manager,
		pipeline.DefaultMethodRuns(manager),
		log,
	)

	err := analyzer.AnalyzeImage(context.Background(), filepath.Join(t.TempDir(), "missing.png"), t.TempDir())
	if !errors.Is(err, pipeline.ErrFileNotFound) {
		t.Errorf("expected ErrFileNotFound, got %v", err)
	}
}
