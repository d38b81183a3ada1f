package oracle

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildAnalysisJSONSchema returns a JSON-Schema (draft 2020-12 subset)
// for the analysis response as a generic map. The model is prompted with
// the same shape, and we validate its output locally before trusting it.
func BuildAnalysisJSONSchema() map[string]any {
	finding := map[string]any{
		"type":                 "object",
		"additionalProperties": true,
		"properties": map[string]any{
			"type":       map[string]any{"type": "string", "minLength": 1},
			"text":       map[string]any{"type": "string", "minLength": 1},
			"confidence": map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
			"start_pos":  map[string]any{"type": "integer"},
			"end_pos":    map[string]any{"type": "integer"},
		},
		"required": []string{"type", "text", "confidence"},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": true,
		"properties": map[string]any{
			"found_pii":      map[string]any{"type": "boolean"},
			"categories":     map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"details":        map[string]any{"type": "array", "items": finding},
			"recommendation": map[string]any{"type": "string"},
		},
		"required": []string{"found_pii", "details"},
	}
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
