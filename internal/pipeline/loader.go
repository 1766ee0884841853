package pipeline

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"lowlight-enhancer/internal/logger"
	"lowlight-enhancer/internal/opencv/bridge"
	"lowlight-enhancer/internal/opencv/memory"
	"lowlight-enhancer/internal/opencv/safe"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"gocv.io/x/gocv"
)

type imageLoader struct {
	memoryManager *memory.Manager
	logger        logger.Logger
}

func NewLoader(memMgr *memory.Manager, log logger.Logger) ImageLoader {
	return &imageLoader{
		memoryManager: memMgr,
		logger:        log,
	}
}

func (l *imageLoader) LoadFromPath(path string) (*ImageData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	imageData, err := l.LoadFromBytes(data, strings.ToLower(filepath.Ext(path)))
	if err != nil {
		return nil, err
	}

	imageData.SourcePath = path
	return imageData, nil
}

func (l *imageLoader) LoadFromBytes(data []byte, format string) (*ImageData, error) {
	img, standardLibFormat, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	safeMat, err := l.decodeMat(data, img)
	if err != nil {
		return nil, err
	}

	actualFormat := determineActualFormat(format, standardLibFormat)
	bounds := img.Bounds()

	imageData := &ImageData{
		Image:    img,
		Mat:      safeMat,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		Channels: safeMat.Channels(),
		Format:   actualFormat,
	}

	l.logger.Debug("ImageLoader", "image loaded", map[string]interface{}{
		"width":    imageData.Width,
		"height":   imageData.Height,
		"channels": imageData.Channels,
		"format":   actualFormat,
	})

	return imageData, nil
}

// decodeMat builds the tracked Mat for an image. OpenCV decodes the
// raw bytes directly; when it cannot read the container (a TIFF
// compression or PNG bit depth the build lacks) the Mat is rebuilt
// from the standard library decode instead.
func (l *imageLoader) decodeMat(data []byte, decoded image.Image) (*safe.Mat, error) {
	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err == nil && !mat.Empty() {
		defer mat.Close()
		return safe.NewMatFromMatWithTracker(mat, l.memoryManager, "loaded_image")
	}
	if err == nil {
		mat.Close()
	}

	l.logger.Debug("ImageLoader", "OpenCV decode failed, converting standard library image", nil)

	converted, err := bridge.ImageToMat(decoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	defer converted.Close()

	return safe.NewMatFromMatWithTracker(converted.GetMat(), l.memoryManager, "loaded_image")
}

func determineActualFormat(extension, stdLibFormat string) string {
	switch extension {
	case ".tiff", ".tif":
		return "tiff"
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".png":
		return "png"
	case ".bmp":
		return "bmp"
	default:
		if stdLibFormat != "" {
			return stdLibFormat
		}
		return "unknown"
	}
}
