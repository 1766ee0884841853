// Package threshold binarizes each BGR channel independently and
// recombines the planes into a pseudo-colored image. Three modes are
// supported: adaptive (Gaussian-weighted neighborhood mean minus a
// constant), otsu (per-channel global threshold minimizing intra-class
// variance), and binary (fixed global cutoff).
package threshold

import (
	"context"
	"fmt"

	"lowlight-enhancer/internal/enhance/params"
	"lowlight-enhancer/internal/opencv/conversion"
	"lowlight-enhancer/internal/opencv/safe"

	"gocv.io/x/gocv"
)

const (
	ModeAdaptive = "adaptive"
	ModeOtsu     = "otsu"
	ModeBinary   = "binary"
)

type Processor struct {
	name string
}

func NewProcessor() *Processor {
	return &Processor{
		name: "thresholding",
	}
}

func (p *Processor) GetName() string {
	return p.name
}

func (p *Processor) GetDefaultParameters() map[string]interface{} {
	return map[string]interface{}{
		"mode":       ModeAdaptive,
		"max_value":  255,
		"block_size": 11,
		"constant":   2.0,
		"cutoff":     127.0,
	}
}

func (p *Processor) ValidateParameters(parameters map[string]interface{}) error {
	mode := params.String(parameters, "mode", ModeAdaptive)
	switch mode {
	case ModeAdaptive, ModeOtsu, ModeBinary:
	default:
		return fmt.Errorf("%w: unknown threshold mode %q", params.ErrInvalid, mode)
	}

	maxValue := params.Int(parameters, "max_value", 255)
	if maxValue < 1 || maxValue > 255 {
		return fmt.Errorf("%w: max_value must be between 1 and 255, got %d", params.ErrInvalid, maxValue)
	}

	if mode == ModeAdaptive {
		blockSize := params.Int(parameters, "block_size", 11)
		if blockSize < 3 || blockSize%2 == 0 {
			return fmt.Errorf("%w: block_size must be an odd number >= 3, got %d", params.ErrInvalid, blockSize)
		}
	}

	if mode == ModeBinary {
		cutoff := params.Float(parameters, "cutoff", 127.0)
		if cutoff < 0 || cutoff > 255 {
			return fmt.Errorf("%w: cutoff must be between 0 and 255, got %v", params.ErrInvalid, cutoff)
		}
	}

	return nil
}

func (p *Processor) Process(input *safe.Mat, parameters map[string]interface{}) (*safe.Mat, error) {
	return p.ProcessWithContext(context.Background(), input, parameters)
}

func (p *Processor) ProcessWithContext(ctx context.Context, input *safe.Mat, parameters map[string]interface{}) (*safe.Mat, error) {
	if err := safe.ValidateMatForOperation(input, "thresholding enhancement"); err != nil {
		return nil, err
	}

	if input.Channels() != 3 {
		return nil, fmt.Errorf("thresholding enhancement requires a 3-channel BGR image, got %d channels", input.Channels())
	}

	if err := p.ValidateParameters(parameters); err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	planes, err := conversion.SplitChannels(input)
	if err != nil {
		return nil, fmt.Errorf("failed to split channels: %w", err)
	}
	defer conversion.CloseChannels(planes)

	binarized := make([]gocv.Mat, 0, len(planes))
	defer func() {
		for i := range binarized {
			binarized[i].Close()
		}
	}()

	for i := range planes {
		plane := gocv.NewMat()
		if err := p.binarizePlane(planes[i], &plane, parameters); err != nil {
			plane.Close()
			return nil, err
		}
		binarized = append(binarized, plane)
	}

	return conversion.MergeChannels(binarized)
}

func (p *Processor) binarizePlane(src gocv.Mat, dst *gocv.Mat, parameters map[string]interface{}) error {
	mode := params.String(parameters, "mode", ModeAdaptive)
	maxValue := float32(params.Int(parameters, "max_value", 255))

	switch mode {
	case ModeAdaptive:
		blockSize := params.Int(parameters, "block_size", 11)
		constant := float32(params.Float(parameters, "constant", 2.0))
		gocv.AdaptiveThreshold(src, dst, maxValue, gocv.AdaptiveThresholdGaussian,
			gocv.ThresholdBinary, blockSize, constant)
	case ModeOtsu:
		gocv.Threshold(src, dst, 0, maxValue, gocv.ThresholdBinary+gocv.ThresholdOtsu)
	case ModeBinary:
		cutoff := float32(params.Float(parameters, "cutoff", 127.0))
		gocv.Threshold(src, dst, cutoff, maxValue, gocv.ThresholdBinary)
	default:
		return fmt.Errorf("%w: unknown threshold mode %q", params.ErrInvalid, mode)
	}

	return nil
}
