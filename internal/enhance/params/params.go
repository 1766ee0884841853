// Package params holds the shared parameter error and the typed getters
// used by every enhancement processor.
package params

import "errors"

// ErrInvalid marks out-of-range or unknown method parameters.
var ErrInvalid = errors.New("invalid parameter")

func Int(params map[string]interface{}, name string, fallback int) int {
	if value, ok := params[name].(int); ok {
		return value
	}
	return fallback
}

func Float(params map[string]interface{}, name string, fallback float64) float64 {
	switch value := params[name].(type) {
	case float64:
		return value
	case int:
		return float64(value)
	}
	return fallback
}

func String(params map[string]interface{}, name string, fallback string) string {
	if value, ok := params[name].(string); ok {
		return value
	}
	return fallback
}
