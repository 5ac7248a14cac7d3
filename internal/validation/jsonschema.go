package validation

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/webtrials/flowcanvas/pkg/schema"
)

// graphSchemaJSON is the JSON Schema for GraphDocument validation.
// Embedded as a constant to avoid filesystem dependencies.
const graphSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://webtrials.dev/schemas/flow.json",
  "type": "object",
  "required": ["nodes"],
  "properties": {
    "nodes": {
      "type": "array",
      "items": { "$ref": "#/$defs/node" }
    },
    "connections": {
      "type": "array",
      "items": { "$ref": "#/$defs/connection" }
    },
    "metadata": {
      "type": "object"
    }
  },
  "additionalProperties": false,
  "$defs": {
    "node": {
      "type": "object",
      "required": ["kind"],
      "properties": {
        "id": { "type": "string" },
        "kind": {
          "type": "string",
          "enum": ["navigation", "action", "assertion", "wait", "data"]
        },
        "position": { "$ref": "#/$defs/position" },
        "label": { "type": "string" },
        "description": { "type": "string" },
        "action_verb": { "type": "string" },
        "config": { "type": "object" },
        "status": {
          "type": "string",
          "enum": ["pending", "running", "passed", "failed", "skipped"]
        }
      },
      "additionalProperties": false
    },
    "position": {
      "type": "object",
      "required": ["x", "y"],
      "properties": {
        "x": { "type": "number" },
        "y": { "type": "number" }
      },
      "additionalProperties": false
    },
    "connection": {
      "type": "object",
      "required": ["source_id", "target_id"],
      "properties": {
        "id": { "type": "string" },
        "source_id": { "type": "string", "minLength": 1 },
        "target_id": { "type": "string", "minLength": 1 },
        "condition": { "type": "string" }
      },
      "additionalProperties": false
    }
  }
}`

// DocumentValidator validates raw flow documents against the embedded
// JSON Schema (Draft 2020-12). Safe for concurrent use.
type DocumentValidator struct {
	graphSchema *jsonschema.Schema
}

// NewDocumentValidator compiles the embedded flow schema.
func NewDocumentValidator() (*DocumentValidator, error) {
	c := jsonschema.NewCompiler()
	c.AssertFormat()

	schemaDoc, err := jsonschema.UnmarshalJSON(strings.NewReader(graphSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("unmarshal flow schema: %w", err)
	}
	if err := c.AddResource("https://webtrials.dev/schemas/flow.json", schemaDoc); err != nil {
		return nil, fmt.Errorf("add flow schema resource: %w", err)
	}

	compiled, err := c.Compile("https://webtrials.dev/schemas/flow.json")
	if err != nil {
		return nil, fmt.Errorf("compile flow schema: %w", err)
	}

	return &DocumentValidator{graphSchema: compiled}, nil
}

// Validate checks a GraphDocument against the flow schema.
func (v *DocumentValidator) Validate(doc *schema.GraphDocument) error {
	if doc == nil {
		return schema.NewError(schema.ErrCodeValidation, "graph document is nil")
	}
	if doc.Nodes == nil {
		// A nil slice marshals to null; an absent node list is an empty flow.
		normalized := *doc
		normalized.Nodes = []schema.StepNode{}
		doc = &normalized
	}

	value, err := toJSONValue(doc)
	if err != nil {
		return schema.NewError(schema.ErrCodeValidation, "failed to serialize graph document").WithCause(err)
	}

	if err := v.graphSchema.Validate(value); err != nil {
		return toCanvasError(err)
	}
	return nil
}

// toJSONValue round-trips a Go value through JSON encoding/decoding so
// that numbers become json.Number (required by the jsonschema library).
func toJSONValue(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return jsonschema.UnmarshalJSON(strings.NewReader(string(b)))
}

// toCanvasError converts a jsonschema.ValidationError into a CanvasError
// with per-location violation messages.
func toCanvasError(err error) *schema.CanvasError {
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return schema.NewError(schema.ErrCodeValidation, err.Error())
	}

	violations := collectViolations(verr)
	if len(violations) == 0 {
		return schema.NewError(schema.ErrCodeValidation, verr.Error())
	}

	if len(violations) == 1 {
		return schema.NewError(schema.ErrCodeValidation, violations[0]).
			WithDetails(map[string]any{"violations": violations})
	}

	msg := fmt.Sprintf("document validation failed with %d errors", len(violations))
	return schema.NewError(schema.ErrCodeValidation, msg).
		WithDetails(map[string]any{"violations": violations})
}

// collectViolations walks a ValidationError tree and collects leaf error
// messages with their instance locations.
func collectViolations(verr *jsonschema.ValidationError) []string {
	if len(verr.Causes) == 0 {
		loc := "/"
		if len(verr.InstanceLocation) > 0 {
			loc = "/" + strings.Join(verr.InstanceLocation, "/")
		}
		return []string{fmt.Sprintf("%s: %s", loc, verr.Error())}
	}

	var violations []string
	for _, cause := range verr.Causes {
		violations = append(violations, collectViolations(cause)...)
	}
	return violations
}
