// Package validation rejects malformed orchestration requests before any work starts.
package validation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	apperrors "search-orchestrator/internal/common/errors"
)

const requestSchema = `{
  "type": "object",
  "properties": {
    "requestId": {"type": "string", "minLength": 1},
    "query": {"type": "string", "minLength": 1, "maxLength": 2048},
    "limits": {
      "type": "object",
      "properties": {
        "web": {"type": "integer", "minimum": 0, "maximum": 100},
        "image": {"type": "integer", "minimum": 0, "maximum": 100},
        "news": {"type": "integer", "minimum": 0, "maximum": 100}
      },
      "additionalProperties": false
    },
    "scrape": {
      "type": "object",
      "properties": {
        "mode": {"type": "string", "enum": ["sync", "async"]},
        "timeoutMs": {"type": "integer", "minimum": 1000, "maximum": 120000},
        "enrichment": {"type": "boolean"}
      },
      "additionalProperties": false
    },
    "teamFlags": {
      "type": "object",
      "properties": {
        "teamId": {"type": "string"},
        "blocklistEnabled": {"type": "boolean"}
      },
      "additionalProperties": true
    }
  },
  "required": ["query"],
  "additionalProperties": true
}`

var compiledSchema *gojsonschema.Schema

func init() {
	var err error
	compiledSchema, err = gojsonschema.NewSchema(gojsonschema.NewStringLoader(requestSchema))
	if err != nil {
		panic(fmt.Sprintf("invalid request schema: %v", err))
	}
}

// ValidateRequest validates a raw request document against the orchestration
// request schema. Returns a ValidationError carrying field-level detail.
func ValidateRequest(raw []byte) error {
	result, err := compiledSchema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return &apperrors.ValidationError{Fields: []apperrors.FieldError{
			{Field: "(root)", Message: "request is not a valid JSON document"},
		}}
	}

	if result.Valid() {
		return nil
	}

	fields := make([]apperrors.FieldError, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		fields = append(fields, apperrors.FieldError{
			Field:   desc.Field(),
			Message: desc.Description(),
		})
	}
	return &apperrors.ValidationError{Fields: fields}
}
