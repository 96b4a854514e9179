package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	dErrors "nyaya/pkg/domain-errors"
)

const submitSchemaURL = "nyaya://schemas/efir-submit.json"

// submitSchema rejects structurally malformed intake before it reaches the
// lifecycle service. Business rules such as contact verification stay in the
// domain model.
const submitSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": false,
  "required": ["informant", "incident"],
  "properties": {
    "informant": {
      "type": "object",
      "additionalProperties": false,
      "required": ["name"],
      "properties": {
        "name": {"type": "string", "minLength": 1, "maxLength": 200},
        "mobile": {"type": "string", "pattern": "^(\\+?[0-9]{10,15})?$"},
        "email": {"type": "string", "format": "email"},
        "address": {"type": "string", "maxLength": 500},
        "is_vulnerable": {"type": "boolean"},
        "vulnerable_category": {"enum": ["", "WOMAN", "CHILD", "DISABLED", "SENIOR_CITIZEN"]},
        "contact_verified": {"type": "boolean"}
      }
    },
    "incident": {
      "type": "object",
      "additionalProperties": false,
      "required": ["location", "description", "station_code"],
      "properties": {
        "location": {"type": "string", "minLength": 1},
        "district": {"type": "string"},
        "state": {"type": "string"},
        "description": {"type": "string", "minLength": 1, "maxLength": 20000},
        "occurred_at": {"type": "string", "format": "date-time"},
        "reported_at": {"type": "string", "format": "date-time"},
        "station_code": {"type": "string", "pattern": "^[A-Z0-9-]{3,32}$"}
      }
    },
    "sections": {
      "type": "array",
      "maxItems": 50,
      "items": {
        "type": "object",
        "additionalProperties": false,
        "required": ["code", "section"],
        "properties": {
          "code": {"type": "string", "minLength": 1},
          "section": {"type": "string", "minLength": 1},
          "description": {"type": "string"},
          "cognizable": {"type": "boolean"},
          "bailable": {"type": "boolean"}
        }
      }
    }
  }
}`

// compileSubmitSchema is called once per handler.
func compileSubmitSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource(submitSchemaURL, bytes.NewReader([]byte(submitSchema))); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	schema, err := compiler.Compile(submitSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// validateSubmit checks raw against the intake schema and reports the first
// failing location.
func validateSubmit(schema *jsonschema.Schema, raw []byte) error {
	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request body")
	}
	if err := schema.Validate(instance); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			leaf := ve
			for len(leaf.Causes) > 0 {
				leaf = leaf.Causes[0]
			}
			return dErrors.Wrap(err, dErrors.CodeValidation,
				fmt.Sprintf("%s: %s", leaf.InstanceLocation, leaf.Message))
		}
		return dErrors.Wrap(err, dErrors.CodeValidation, "request does not match schema")
	}
	return nil
}
