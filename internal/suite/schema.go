package suite

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// manifestSchema describes suites.yaml
var manifestSchema = map[string]any{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"title":   "Suite manifest",
	"type":    "object",
	"properties": map[string]any{
		"suites": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name": map[string]any{
						"type":    "string",
						"pattern": "^[a-z0-9][a-z0-9_-]*$",
					},
					"description": map[string]any{"type": "string"},
					"scenario":    map[string]any{"type": "string", "minLength": 1},
					"fixture": map[string]any{
						"type":    "string",
						"pattern": "(?i)\\.(xlsx|xlsm|csv)$",
					},
					"sheet": map[string]any{"type": "string"},
					"required": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "string", "minLength": 1},
					},
					"screenshots_on_pass": map[string]any{"type": "boolean"},
					"vars": map[string]any{
						"type":                 "object",
						"additionalProperties": map[string]any{"type": "string"},
					},
				},
				"required":             []string{"name", "scenario", "fixture"},
				"additionalProperties": false,
			},
		},
	},
	"required": []string{"suites"},
}

var schemaLoader = gojsonschema.NewGoLoader(manifestSchema)

// validate checks a decoded YAML document against the manifest schema and
// joins every violation into one error
func validate(doc any) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidManifest, strings.Join(msgs, "; "))
}
