package config

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/c360/accessmon/errors"
)

// Schema is the JSON schema every configuration file layer must satisfy.
// Layers are partial, so no property is required.
const Schema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "accessmon configuration",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "stats_window":        {"type": "integer", "minimum": 1, "description": "seconds per stats chunk"},
    "alert_window":        {"type": "integer", "minimum": 1, "description": "seconds in the rolling alert window"},
    "alert_rate":          {"type": "integer", "minimum": 1, "description": "requests per second alert threshold"},
    "max_timestamp_error": {"type": "integer", "minimum": 0, "description": "seconds of tolerated timestamp disorder"},
    "chronology_policy":   {"type": "string", "enum": ["abort", "skip"]}
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(Schema)

// validateSchema checks a raw configuration layer against Schema.
func validateSchema(raw map[string]any) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(raw))
	if err != nil {
		return errors.WrapInvalid(fmt.Errorf("%w: %v", errors.ErrInvalidConfig, err),
			"Loader", "validateSchema", "run schema validation")
	}

	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
	}
	return errors.WrapInvalid(
		fmt.Errorf("%w: %s", errors.ErrInvalidConfig, strings.Join(msgs, "; ")),
		"Loader", "validateSchema", "validate against schema")
}
