// Package pipeline loads dataset images, runs the enhancement methods
// over them, and materializes per-method outputs plus side-by-side
// comparison panels.
package pipeline

import (
	"context"
	"errors"
	"image"
	"io"

	"lowlight-enhancer/internal/enhance"
	"lowlight-enhancer/internal/opencv/safe"
)

var (
	// ErrFileNotFound marks a missing dataset path or image file.
	ErrFileNotFound = errors.New("file not found")
	// ErrDecode marks a file that exists but is not a readable image.
	ErrDecode = errors.New("image decode failed")
)

// ImageData pairs the OpenCV Mat with its standard library view and the
// source metadata needed for naming outputs.
type ImageData struct {
	Image      image.Image
	Mat        *safe.Mat
	Width      int
	Height     int
	Channels   int
	Format     string
	SourcePath string
}

// Close releases the native Mat. The stdlib view stays usable.
func (d *ImageData) Close() {
	if d != nil && d.Mat != nil {
		d.Mat.Close()
		d.Mat = nil
	}
}

type ImageLoader interface {
	LoadFromPath(path string) (*ImageData, error)
	LoadFromBytes(data []byte, format string) (*ImageData, error)
}

type ImageSaver interface {
	SaveToPath(path string, imageData *ImageData) error
	SaveToWriter(writer io.Writer, imageData *ImageData, format string) error
}

type ImageProcessor interface {
	ProcessImageWithContext(ctx context.Context, inputData *ImageData, method enhance.Method, params map[string]interface{}) (*ImageData, error)
}
