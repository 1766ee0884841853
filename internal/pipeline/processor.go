package pipeline

import (
	"context"
	"fmt"

	"lowlight-enhancer/internal/enhance"
	"lowlight-enhancer/internal/logger"
	"lowlight-enhancer/internal/opencv/bridge"
	"lowlight-enhancer/internal/opencv/safe"
)

type imageProcessor struct {
	logger logger.Logger
}

func NewProcessor(log logger.Logger) ImageProcessor {
	return &imageProcessor{logger: log}
}

func (p *imageProcessor) ProcessImageWithContext(ctx context.Context, inputData *ImageData, method enhance.Method, params map[string]interface{}) (*ImageData, error) {
	if inputData == nil || inputData.Mat == nil {
		return nil, fmt.Errorf("no input image data")
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var resultMat *safe.Mat
	var err error
	if contextual, ok := method.(enhance.ContextualMethod); ok {
		resultMat, err = contextual.ProcessWithContext(ctx, inputData.Mat, params)
	} else {
		resultMat, err = method.Process(inputData.Mat, params)
	}
	if err != nil {
		return nil, fmt.Errorf("method %s failed: %w", method.GetName(), err)
	}

	resultImage, err := bridge.MatToImage(resultMat)
	if err != nil {
		resultMat.Close()
		return nil, fmt.Errorf("Mat to image conversion failed: %w", err)
	}

	bounds := resultImage.Bounds()
	processedData := &ImageData{
		Image:      resultImage,
		Mat:        resultMat,
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
		Channels:   resultMat.Channels(),
		Format:     inputData.Format,
		SourcePath: inputData.SourcePath,
	}

	p.logger.Debug("ImageProcessor", "processing completed", map[string]interface{}{
		"method":      method.GetName(),
		"input_size":  fmt.Sprintf("%dx%d", inputData.Width, inputData.Height),
		"output_size": fmt.Sprintf("%dx%d", processedData.Width, processedData.Height),
	})

	return processedData, nil
}
