package conversion

import (
	"fmt"

	"lowlight-enhancer/internal/opencv/safe"

	"gocv.io/x/gocv"
)

func CvtColorSafe(src *safe.Mat, dst *safe.Mat, code gocv.ColorConversionCode) error {
	if err := safe.ValidateColorConversion(src, code); err != nil {
		return fmt.Errorf("color conversion validation failed: %w", err)
	}

	if err := safe.ValidateMatForOperation(dst, "CvtColor destination"); err != nil {
		return fmt.Errorf("destination mat validation failed: %w", err)
	}

	srcMat := src.GetMat()
	dstMat := dst.GetMat()

	gocv.CvtColor(srcMat, &dstMat, code)

	return nil
}

func ConvertToGrayscale(src *safe.Mat) (*safe.Mat, error) {
	if err := safe.ValidateMatForOperation(src, "ConvertToGrayscale"); err != nil {
		return nil, err
	}

	channels := src.Channels()

	if channels == 1 {
		return src.Clone()
	}

	if channels != 3 {
		return nil, fmt.Errorf("unsupported channel count for grayscale conversion: %d", channels)
	}

	dst, err := safe.NewMat(src.Rows(), src.Cols(), gocv.MatTypeCV8UC1)
	if err != nil {
		return nil, fmt.Errorf("failed to create destination Mat: %w", err)
	}

	if err := CvtColorSafe(src, dst, gocv.ColorBGRToGray); err != nil {
		dst.Close()
		return nil, fmt.Errorf("color conversion failed: %w", err)
	}

	return dst, nil
}

// BGRToLab separates lightness from chrominance so that contrast
// operations can touch L alone.
func BGRToLab(src *safe.Mat) (*safe.Mat, error) {
	return convertThreeChannel(src, gocv.ColorBGRToLab, "BGRToLab")
}

func LabToBGR(src *safe.Mat) (*safe.Mat, error) {
	return convertThreeChannel(src, gocv.ColorLabToBGR, "LabToBGR")
}

func convertThreeChannel(src *safe.Mat, code gocv.ColorConversionCode, operation string) (*safe.Mat, error) {
	if err := safe.ValidateMatForOperation(src, operation); err != nil {
		return nil, err
	}

	dst, err := safe.NewMat(src.Rows(), src.Cols(), gocv.MatTypeCV8UC3)
	if err != nil {
		return nil, fmt.Errorf("failed to create destination Mat: %w", err)
	}

	if err := CvtColorSafe(src, dst, code); err != nil {
		dst.Close()
		return nil, fmt.Errorf("%s conversion failed: %w", operation, err)
	}

	return dst, nil
}

// SplitChannels returns the per-channel planes of src. The caller owns
// the returned Mats and must Close every one of them.
func SplitChannels(src *safe.Mat) ([]gocv.Mat, error) {
	if err := safe.ValidateMatForOperation(src, "SplitChannels"); err != nil {
		return nil, err
	}

	srcMat := src.GetMat()
	return gocv.Split(srcMat), nil
}

// MergeChannels combines single-channel planes into one Mat.
func MergeChannels(planes []gocv.Mat) (*safe.Mat, error) {
	if len(planes) == 0 {
		return nil, fmt.Errorf("no channel planes to merge")
	}

	merged := gocv.NewMat()
	gocv.Merge(planes, &merged)

	dst, err := safe.WrapMat(merged, nil, "merged_channels")
	if err != nil {
		merged.Close()
		return nil, fmt.Errorf("merge produced invalid Mat: %w", err)
	}

	return dst, nil
}

func CloseChannels(planes []gocv.Mat) {
	for i := range planes {
		planes[i].Close()
	}
}
