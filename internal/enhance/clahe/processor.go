// Package clahe implements contrast-limited adaptive histogram
// equalization on the lightness channel. The image is converted to Lab,
// the L plane is equalized within tiled windows under a clip limit, and
// the result is converted back to BGR so chrominance is untouched.
package clahe

import (
	"context"
	"fmt"
	"image"

	"lowlight-enhancer/internal/enhance/params"
	"lowlight-enhancer/internal/opencv/conversion"
	"lowlight-enhancer/internal/opencv/safe"

	"gocv.io/x/gocv"
)

type Processor struct {
	name string
}

func NewProcessor() *Processor {
	return &Processor{
		name: "clahe",
	}
}

func (p *Processor) GetName() string {
	return p.name
}

func (p *Processor) GetDefaultParameters() map[string]interface{} {
	return map[string]interface{}{
		"clip_limit": 3.0,
		"tile_size":  8,
	}
}

func (p *Processor) ValidateParameters(parameters map[string]interface{}) error {
	clipLimit := params.Float(parameters, "clip_limit", 3.0)
	if clipLimit <= 0 {
		return fmt.Errorf("%w: clip_limit must be positive, got %v", params.ErrInvalid, clipLimit)
	}

	tileSize := params.Int(parameters, "tile_size", 8)
	if tileSize < 1 || tileSize > 64 {
		return fmt.Errorf("%w: tile_size must be between 1 and 64, got %d", params.ErrInvalid, tileSize)
	}

	return nil
}

func (p *Processor) Process(input *safe.Mat, parameters map[string]interface{}) (*safe.Mat, error) {
	return p.ProcessWithContext(context.Background(), input, parameters)
}

func (p *Processor) ProcessWithContext(ctx context.Context, input *safe.Mat, parameters map[string]interface{}) (*safe.Mat, error) {
	if err := safe.ValidateMatForOperation(input, "CLAHE enhancement"); err != nil {
		return nil, err
	}

	if input.Channels() != 3 {
		return nil, fmt.Errorf("CLAHE enhancement requires a 3-channel BGR image, got %d channels", input.Channels())
	}

	if err := p.ValidateParameters(parameters); err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	clipLimit := params.Float(parameters, "clip_limit", 3.0)
	tileSize := params.Int(parameters, "tile_size", 8)

	lab, err := conversion.BGRToLab(input)
	if err != nil {
		return nil, fmt.Errorf("failed to convert to Lab: %w", err)
	}
	defer lab.Close()

	planes, err := conversion.SplitChannels(lab)
	if err != nil {
		return nil, fmt.Errorf("failed to split Lab channels: %w", err)
	}
	defer conversion.CloseChannels(planes)

	clahe := gocv.NewCLAHEWithParams(clipLimit, image.Point{X: tileSize, Y: tileSize})
	defer clahe.Close()

	equalized := gocv.NewMat()
	defer equalized.Close()

	clahe.Apply(planes[0], &equalized)
	equalized.CopyTo(&planes[0])

	merged, err := conversion.MergeChannels(planes)
	if err != nil {
		return nil, fmt.Errorf("failed to merge Lab channels: %w", err)
	}
	defer merged.Close()

	result, err := conversion.LabToBGR(merged)
	if err != nil {
		return nil, fmt.Errorf("failed to convert back to BGR: %w", err)
	}

	return result, nil
}
