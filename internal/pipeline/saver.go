package pipeline

import (
	"fmt"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	"lowlight-enhancer/internal/logger"
	"lowlight-enhancer/internal/opencv/bridge"

	"gocv.io/x/gocv"
)

type imageSaver struct {
	logger logger.Logger
}

func NewSaver(log logger.Logger) ImageSaver {
	return &imageSaver{logger: log}
}

// SaveToPath encodes via OpenCV; the output format follows the path
// extension, matching cv2.imwrite semantics.
func (s *imageSaver) SaveToPath(path string, imageData *ImageData) error {
	if imageData == nil || imageData.Mat == nil {
		return fmt.Errorf("no image data to save")
	}

	if ok := gocv.IMWrite(path, imageData.Mat.GetMat()); !ok {
		err := fmt.Errorf("failed to write image to %s", path)
		s.logger.Error("ImageSaver", err, map[string]interface{}{
			"path": path,
		})
		return err
	}

	s.logger.Debug("ImageSaver", "image saved", map[string]interface{}{
		"path": path,
	})

	return nil
}

func (s *imageSaver) SaveToWriter(writer io.Writer, imageData *ImageData, format string) error {
	if imageData == nil {
		return fmt.Errorf("no image data to save")
	}

	img := imageData.Image
	if img == nil {
		converted, err := bridge.MatToImage(imageData.Mat)
		if err != nil {
			return fmt.Errorf("failed to convert Mat for encoding: %w", err)
		}
		img = converted
	}

	switch strings.ToLower(format) {
	case "jpeg", "jpg":
		return jpeg.Encode(writer, img, &jpeg.Options{Quality: 95})
	case "png", "":
		return png.Encode(writer, img)
	default:
		s.logger.Warning("ImageSaver", "format not supported, using PNG", map[string]interface{}{
			"requested_format": strings.ToUpper(format),
		})
		return png.Encode(writer, img)
	}
}
