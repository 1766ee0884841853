// Package analysis computes intensity histograms and cumulative
// distribution functions for original and enhanced images and renders
// them as diagnostic charts. Nothing here feeds back into the
// enhancement outputs.
package analysis

import (
	"fmt"

	"lowlight-enhancer/internal/opencv/conversion"
	"lowlight-enhancer/internal/opencv/safe"

	"gocv.io/x/gocv"
)

const histogramBins = 256

// Histogram counts grayscale intensities over 256 bins. Color input is
// converted to grayscale first, matching a single-channel density view
// of the image.
func Histogram(src *safe.Mat) ([]float64, error) {
	if err := safe.ValidateMatForOperation(src, "Histogram"); err != nil {
		return nil, err
	}

	gray, err := conversion.ConvertToGrayscale(src)
	if err != nil {
		return nil, fmt.Errorf("failed to convert to grayscale: %w", err)
	}
	defer gray.Close()

	hist := gocv.NewMat()
	defer hist.Close()

	mask := gocv.NewMat()
	defer mask.Close()

	grayMat := gray.GetMat()
	if err := gocv.CalcHist([]gocv.Mat{grayMat}, []int{0}, mask, &hist,
		[]int{histogramBins}, []float64{0, 256}, false); err != nil {
		return nil, fmt.Errorf("histogram calculation failed: %w", err)
	}

	counts := make([]float64, histogramBins)
	for i := 0; i < histogramBins; i++ {
		counts[i] = float64(hist.GetFloatAt(i, 0))
	}

	return counts, nil
}

// CDF is the running sum of the histogram counts.
func CDF(hist []float64) []float64 {
	cdf := make([]float64, len(hist))
	sum := 0.0
	for i, count := range hist {
		sum += count
		cdf[i] = sum
	}
	return cdf
}

// NormalizeCDF rescales the CDF to the histogram peak so both curves
// share one y axis.
func NormalizeCDF(cdf, hist []float64) []float64 {
	peak := 0.0
	for _, count := range hist {
		if count > peak {
			peak = count
		}
	}

	total := 0.0
	if len(cdf) > 0 {
		total = cdf[len(cdf)-1]
	}

	normalized := make([]float64, len(cdf))
	if total == 0 {
		return normalized
	}

	for i, value := range cdf {
		normalized[i] = value * peak / total
	}
	return normalized
}
