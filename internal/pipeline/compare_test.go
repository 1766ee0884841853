package pipeline

import (
	"testing"

	"lowlight-enhancer/internal/opencv/safe"

	"gocv.io/x/gocv"
)

func newBlankMat(t *testing.T, rows, cols int, matType gocv.MatType) *safe.Mat {
	t.Helper()

	mat, err := safe.NewMat(rows, cols, matType)
	if err != nil {
		t.Fatalf("failed to create Mat: %v", err)
	}

	return mat
}

func TestComposeComparisonLayout(t *testing.T) {
	const rows, cols = 20, 30

	panels := []Panel{
		{Mat: newBlankMat(t, rows, cols, gocv.MatTypeCV8UC3), Label: "Original"},
		{Mat: newBlankMat(t, rows, cols, gocv.MatTypeCV8UC3), Label: "Power-Law"},
		{Mat: newBlankMat(t, rows, cols, gocv.MatTypeCV8UC3), Label: "CLAHE"},
		{Mat: newBlankMat(t, rows, cols, gocv.MatTypeCV8UC3), Label: "Thresholding"},
	}
	defer func() {
		for _, panel := range panels {
			panel.Mat.Close()
		}
	}()

	composed, err := ComposeComparison(panels)
	if err != nil {
		t.Fatalf("ComposeComparison failed: %v", err)
	}
	defer composed.Close()

	wantHeight := rows + bannerHeight
	wantWidth := len(panels) * (cols + panelGap)

	if composed.Rows() != wantHeight {
		t.Errorf("height = %d, want %d", composed.Rows(), wantHeight)
	}

	if composed.Cols() != wantWidth {
		t.Errorf("width = %d, want %d", composed.Cols(), wantWidth)
	}

	if composed.Channels() != 3 {
		t.Errorf("channels = %d, want 3", composed.Channels())
	}
}

func TestComposeComparisonMixedHeights(t *testing.T) {
	panels := []Panel{
		{Mat: newBlankMat(t, 40, 30, gocv.MatTypeCV8UC3), Label: "Original"},
		{Mat: newBlankMat(t, 20, 30, gocv.MatTypeCV8UC3), Label: "Half"},
	}
	defer func() {
		for _, panel := range panels {
			panel.Mat.Close()
		}
	}()

	composed, err := ComposeComparison(panels)
	if err != nil {
		t.Fatalf("ComposeComparison failed: %v", err)
	}
	defer composed.Close()

	// Second panel scales up to 40 tall, 60 wide.
	if composed.Rows() != 40+bannerHeight {
		t.Errorf("height = %d, want %d", composed.Rows(), 40+bannerHeight)
	}

	if composed.Cols() != (30+panelGap)+(60+panelGap) {
		t.Errorf("width = %d, want %d", composed.Cols(), (30+panelGap)+(60+panelGap))
	}
}

func TestComposeComparisonAcceptsGrayscalePanels(t *testing.T) {
	panels := []Panel{
		{Mat: newBlankMat(t, 20, 20, gocv.MatTypeCV8UC3), Label: "Original"},
		{Mat: newBlankMat(t, 20, 20, gocv.MatTypeCV8UC1), Label: "Gray"},
	}
	defer func() {
		for _, panel := range panels {
			panel.Mat.Close()
		}
	}()

	composed, err := ComposeComparison(panels)
	if err != nil {
		t.Fatalf("ComposeComparison failed: %v", err)
	}
	defer composed.Close()

	if composed.Channels() != 3 {
		t.Errorf("channels = %d, want 3", composed.Channels())
	}
}

func TestComposeComparisonRejectsEmptyInput(t *testing.T) {
	if _, err := ComposeComparison(nil); err == nil {
		t.Error("expected error for empty panel list")
	}
}
