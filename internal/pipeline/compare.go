package pipeline

import (
	"fmt"
	"image"
	"image/color"

	"lowlight-enhancer/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// Panel is one labeled column of a comparison image.
type Panel struct {
	Mat   *safe.Mat
	Label string
}

const (
	bannerHeight = 36
	panelGap     = 4
)

// ComposeComparison lays the panels out horizontally with a label
// banner above each, producing a single BGR Mat. Panels are resized to
// the height of the first panel, keeping their aspect ratio.
func ComposeComparison(panels []Panel) (*safe.Mat, error) {
	if len(panels) == 0 {
		return nil, fmt.Errorf("no panels to compose")
	}

	for i, panel := range panels {
		if err := safe.ValidateMatForOperation(panel.Mat, "ComposeComparison"); err != nil {
			return nil, fmt.Errorf("panel %d: %w", i, err)
		}
	}

	targetHeight := panels[0].Mat.Rows()

	result := gocv.NewMat()
	defer result.Close()

	for i, panel := range panels {
		labeled, err := labeledPanel(panel, targetHeight)
		if err != nil {
			return nil, fmt.Errorf("panel %d (%s): %w", i, panel.Label, err)
		}

		if i == 0 {
			labeled.CopyTo(&result)
			labeled.Close()
			continue
		}

		joined := gocv.NewMat()
		gocv.Hconcat(result, labeled, &joined)
		labeled.Close()
		joined.CopyTo(&result)
		joined.Close()
	}

	return safe.NewMatFromMat(result)
}

func labeledPanel(panel Panel, targetHeight int) (gocv.Mat, error) {
	src := panel.Mat.GetMat()

	resized := gocv.NewMat()
	if panel.Mat.Rows() != targetHeight {
		scale := float64(targetHeight) / float64(panel.Mat.Rows())
		width := int(float64(panel.Mat.Cols()) * scale)
		if width < 1 {
			width = 1
		}
		gocv.Resize(src, &resized, image.Point{X: width, Y: targetHeight}, 0, 0, gocv.InterpolationLinear)
	} else {
		src.CopyTo(&resized)
	}

	bgr := gocv.NewMat()
	if resized.Channels() == 1 {
		gocv.CvtColor(resized, &bgr, gocv.ColorGrayToBGR)
		resized.Close()
	} else {
		bgr = resized
	}

	// Banner strip on top for the label, gap column on the right.
	bordered := gocv.NewMat()
	gocv.CopyMakeBorder(bgr, &bordered, bannerHeight, 0, 0, panelGap,
		gocv.BorderConstant, color.RGBA{R: 0, G: 0, B: 0, A: 255})
	bgr.Close()

	gocv.PutText(&bordered, panel.Label, image.Point{X: 8, Y: bannerHeight - 10},
		gocv.FontHersheySimplex, 0.8, color.RGBA{R: 255, G: 255, B: 255, A: 255}, 2)

	return bordered, nil
}
