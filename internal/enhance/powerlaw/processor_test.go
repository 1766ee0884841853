package powerlaw

import (
	"errors"
	"testing"

	"lowlight-enhancer/internal/enhance/params"
	"lowlight-enhancer/internal/opencv/safe"

	"gocv.io/x/gocv"
)

func newUniformMat(t *testing.T, rows, cols int, value uint8) *safe.Mat {
	t.Helper()

	mat, err := safe.NewMat(rows, cols, gocv.MatTypeCV8UC3)
	if err != nil {
		t.Fatalf("failed to create Mat: %v", err)
	}

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			for c := 0; c < 3; c++ {
				if err := mat.SetUCharAt3(y, x, c, value); err != nil {
					t.Fatalf("failed to set pixel: %v", err)
				}
			}
		}
	}

	return mat
}

func newGradientMat(t *testing.T, rows, cols int) *safe.Mat {
	t.Helper()

	mat, err := safe.NewMat(rows, cols, gocv.MatTypeCV8UC3)
	if err != nil {
		t.Fatalf("failed to create Mat: %v", err)
	}

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			value := uint8((x * 255) / (cols - 1))
			for c := 0; c < 3; c++ {
				if err := mat.SetUCharAt3(y, x, c, value); err != nil {
					t.Fatalf("failed to set pixel: %v", err)
				}
			}
		}
	}

	return mat
}

func meanIntensity(t *testing.T, mat *safe.Mat) float64 {
	t.Helper()

	sum := 0.0
	count := 0
	for y := 0; y < mat.Rows(); y++ {
		for x := 0; x < mat.Cols(); x++ {
			for c := 0; c < mat.Channels(); c++ {
				value, err := mat.GetUCharAt3(y, x, c)
				if err != nil {
					t.Fatalf("failed to read pixel: %v", err)
				}
				sum += float64(value)
				count++
			}
		}
	}

	return sum / float64(count)
}

func TestIdentityAtGammaOne(t *testing.T) {
	input := newGradientMat(t, 12, 64)
	defer input.Close()

	p := NewProcessor()
	result, err := p.Process(input, map[string]interface{}{"gamma": 1.0, "constant": 1.0})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	defer result.Close()

	for y := 0; y < input.Rows(); y++ {
		for x := 0; x < input.Cols(); x++ {
			for c := 0; c < 3; c++ {
				want, _ := input.GetUCharAt3(y, x, c)
				got, _ := result.GetUCharAt3(y, x, c)
				if got != want {
					t.Fatalf("pixel (%d,%d,%d) changed at gamma 1: got %d, want %d", x, y, c, got, want)
				}
			}
		}
	}
}

func TestMidGrayBrightensAndDarkens(t *testing.T) {
	cases := []struct {
		name     string
		gamma    float64
		brighter bool
	}{
		{"gamma 0.5 brightens", 0.5, true},
		{"gamma 2.0 darkens", 2.0, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			input := newUniformMat(t, 100, 100, 128)
			defer input.Close()

			p := NewProcessor()
			result, err := p.Process(input, map[string]interface{}{"gamma": c.gamma})
			if err != nil {
				t.Fatalf("Process failed: %v", err)
			}
			defer result.Close()

			for y := 0; y < result.Rows(); y++ {
				for x := 0; x < result.Cols(); x++ {
					for ch := 0; ch < 3; ch++ {
						value, _ := result.GetUCharAt3(y, x, ch)
						if c.brighter && value <= 128 {
							t.Fatalf("pixel (%d,%d,%d) = %d, expected > 128", x, y, ch, value)
						}
						if !c.brighter && value >= 128 {
							t.Fatalf("pixel (%d,%d,%d) = %d, expected < 128", x, y, ch, value)
						}
					}
				}
			}
		})
	}
}

func TestSmallerGammaBrightensAtLeastAsMuch(t *testing.T) {
	input := newGradientMat(t, 16, 128)
	defer input.Close()

	p := NewProcessor()

	low, err := p.Process(input, map[string]interface{}{"gamma": 0.3})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	defer low.Close()

	high, err := p.Process(input, map[string]interface{}{"gamma": 0.7})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	defer high.Close()

	if meanIntensity(t, low) < meanIntensity(t, high) {
		t.Errorf("mean at gamma 0.3 (%f) should be >= mean at gamma 0.7 (%f)",
			meanIntensity(t, low), meanIntensity(t, high))
	}
}

func TestInvalidParameters(t *testing.T) {
	input := newUniformMat(t, 4, 4, 100)
	defer input.Close()

	p := NewProcessor()

	cases := []struct {
		name   string
		params map[string]interface{}
	}{
		{"zero gamma", map[string]interface{}{"gamma": 0.0}},
		{"negative gamma", map[string]interface{}{"gamma": -1.5}},
		{"zero constant", map[string]interface{}{"gamma": 0.5, "constant": 0.0}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := p.Process(input, c.params)
			if !errors.Is(err, params.ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestDefaultParametersValidate(t *testing.T) {
	p := NewProcessor()
	if err := p.ValidateParameters(p.GetDefaultParameters()); err != nil {
		t.Errorf("default parameters should validate: %v", err)
	}
}
