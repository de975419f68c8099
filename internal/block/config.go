package block

import (
	"github.com/flowquant-lab/flowquant/pkg/errors"
)

// intParam reads an integer parameter from a node config map, falling back
// to the block's default. JSON-decoded configs carry numbers as float64.
func intParam(config map[string]any, key string, def int) (int, error) {
	raw, exists := config[key]
	if !exists {
		return def, nil
	}

	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	default:
		return 0, errors.Newf(errors.ErrCodeInvalidType, "parameter %q: expected integer, got %T", key, raw)
	}
}

// positiveIntParam reads an integer parameter and requires it to be > 0.
func positiveIntParam(config map[string]any, key string, def int) (int, error) {
	v, err := intParam(config, key, def)
	if err != nil {
		return 0, err
	}

	if v <= 0 {
		return 0, errors.Newf(errors.ErrCodeInvalidPeriod, "parameter %q must be a positive integer, got %d", key, v)
	}

	return v, nil
}

// floatParam reads a float parameter from a node config map, falling back
// to the block's default.
func floatParam(config map[string]any, key string, def float64) (float64, error) {
	raw, exists := config[key]
	if !exists {
		return def, nil
	}

	switch v := raw.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return 0, errors.Newf(errors.ErrCodeInvalidType, "parameter %q: expected number, got %T", key, raw)
	}
}

// stringParam reads a string parameter from a node config map, falling
// back to the block's default.
func stringParam(config map[string]any, key string, def string) (string, error) {
	raw, exists := config[key]
	if !exists {
		return def, nil
	}

	v, ok := raw.(string)
	if !ok {
		return "", errors.Newf(errors.ErrCodeInvalidType, "parameter %q: expected string, got %T", key, raw)
	}

	return v, nil
}

// missingInput builds the error for a required input port with no value.
func missingInput(port string) error {
	return errors.Newf(errors.ErrCodeMissingInput, "required input %q is absent", port)
}
