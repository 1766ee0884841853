package enhance

import (
	"context"

	"lowlight-enhancer/internal/enhance/params"
	"lowlight-enhancer/internal/opencv/safe"
)

// ErrInvalidParameter marks out-of-range or unknown method parameters.
// These are caller errors and are surfaced immediately rather than
// skipped like per-image data errors.
var ErrInvalidParameter = params.ErrInvalid

// Method is an enhancement technique applied to a BGR image. Process
// returns a new Mat and never mutates its input.
type Method interface {
	Process(input *safe.Mat, params map[string]interface{}) (*safe.Mat, error)
	ValidateParameters(params map[string]interface{}) error
	GetDefaultParameters() map[string]interface{}
	GetName() string
}

// ContextualMethod extends Method with cancellation support.
type ContextualMethod interface {
	Method
	ProcessWithContext(ctx context.Context, input *safe.Mat, params map[string]interface{}) (*safe.Mat, error)
}
