// Package schema exports JSON Schemas for the engine's public payload
// types, so UI layers can validate strategy definitions and execution
// parameters before submitting them.
package schema

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// FromType reflects a JSON Schema from any payload type.
func FromType(payload any) (string, error) {
	reflected := jsonschema.Reflect(payload)

	encoded, err := json.Marshal(reflected)
	if err != nil {
		return "", err
	}

	return string(encoded), nil
}
