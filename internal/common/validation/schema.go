// Package validation checks inbound payloads against JSON schemas before any
// typed decoding happens. The chat boundary deliberately rejects unknown
// fields instead of silently dropping them.
package validation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ChatRequestSchema describes the only payload the chat endpoint accepts.
var ChatRequestSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"message": map[string]interface{}{
			"type":      "string",
			"minLength": 1,
			"maxLength": 2000,
		},
		"sessionId": map[string]interface{}{
			"type":      "string",
			"maxLength": 128,
		},
		"userEmail": map[string]interface{}{
			"type":      "string",
			"maxLength": 254,
		},
	},
	"required":             []interface{}{"message"},
	"additionalProperties": false,
}

// ProfilePayloadSchema guards what we hand to the personalization provider.
var ProfilePayloadSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"name":         map[string]interface{}{"type": "string"},
		"gender":       map[string]interface{}{"type": "string"},
		"ageGroup":     map[string]interface{}{"type": "string"},
		"region":       map[string]interface{}{"type": "string"},
		"prefCategory": map[string]interface{}{"type": "string"},
		"favCategories": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
	},
	"required":             []interface{}{"name"},
	"additionalProperties": false,
}

// Validate checks a decoded JSON document against a schema map.
func Validate(document interface{}, schema map[string]interface{}) (*ValidationResult, error) {
	schemaLoader := gojsonschema.NewGoLoader(schema)
	documentLoader := gojsonschema.NewGoLoader(document)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
		})
	}
	return out, nil
}

// ValidateBytes checks a raw JSON payload against a schema map.
func ValidateBytes(payload []byte, schema map[string]interface{}) (*ValidationResult, error) {
	schemaLoader := gojsonschema.NewGoLoader(schema)
	documentLoader := gojsonschema.NewBytesLoader(payload)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
		})
	}
	return out, nil
}
