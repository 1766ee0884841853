// Package powerlaw implements gamma correction: every channel value is
// remapped through out = C * (in/255)^gamma * 255. Gamma below 1
// brightens, gamma above 1 darkens, gamma 1 with C 1 is the identity.
package powerlaw

import (
	"context"
	"fmt"
	"math"

	"lowlight-enhancer/internal/enhance/params"
	"lowlight-enhancer/internal/opencv/safe"

	"gocv.io/x/gocv"
)

type Processor struct {
	name string
}

func NewProcessor() *Processor {
	return &Processor{
		name: "power_law",
	}
}

func (p *Processor) GetName() string {
	return p.name
}

func (p *Processor) GetDefaultParameters() map[string]interface{} {
	return map[string]interface{}{
		"gamma":    0.5,
		"constant": 1.0,
	}
}

func (p *Processor) ValidateParameters(parameters map[string]interface{}) error {
	gamma := params.Float(parameters, "gamma", 0.5)
	if gamma <= 0 || math.IsNaN(gamma) || math.IsInf(gamma, 0) {
		return fmt.Errorf("%w: gamma must be positive, got %v", params.ErrInvalid, gamma)
	}

	constant := params.Float(parameters, "constant", 1.0)
	if constant <= 0 || math.IsNaN(constant) || math.IsInf(constant, 0) {
		return fmt.Errorf("%w: constant must be positive, got %v", params.ErrInvalid, constant)
	}

	return nil
}

func (p *Processor) Process(input *safe.Mat, parameters map[string]interface{}) (*safe.Mat, error) {
	return p.ProcessWithContext(context.Background(), input, parameters)
}

func (p *Processor) ProcessWithContext(ctx context.Context, input *safe.Mat, parameters map[string]interface{}) (*safe.Mat, error) {
	if err := safe.ValidateMatForOperation(input, "power-law transformation"); err != nil {
		return nil, err
	}

	if err := p.ValidateParameters(parameters); err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	gamma := params.Float(parameters, "gamma", 0.5)
	constant := params.Float(parameters, "constant", 1.0)

	lut, err := buildLookupTable(gamma, constant)
	if err != nil {
		return nil, err
	}
	defer lut.Close()

	dst, err := safe.NewMat(input.Rows(), input.Cols(), input.Type())
	if err != nil {
		return nil, fmt.Errorf("failed to create destination Mat: %w", err)
	}

	srcMat := input.GetMat()
	dstMat := dst.GetMat()
	lutMat := lut.GetMat()

	gocv.LUT(srcMat, lutMat, &dstMat)

	return dst, nil
}

// buildLookupTable precomputes the power-law curve for all 256 input
// values; a single-channel LUT applies to every plane of a BGR Mat.
func buildLookupTable(gamma, constant float64) (*safe.Mat, error) {
	lut, err := safe.NewMat(1, 256, gocv.MatTypeCV8UC1)
	if err != nil {
		return nil, fmt.Errorf("failed to create lookup table: %w", err)
	}

	for i := 0; i < 256; i++ {
		value := math.Round(constant * math.Pow(float64(i)/255.0, gamma) * 255.0)
		if value > 255.0 {
			value = 255.0
		}
		if err := lut.SetUCharAt(0, i, uint8(value)); err != nil {
			lut.Close()
			return nil, fmt.Errorf("failed to fill lookup table: %w", err)
		}
	}

	return lut, nil
}
