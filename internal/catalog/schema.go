package catalog

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const courseSchemaURL = "schema://course.json"

const courseSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["code", "name", "passing_score", "topics"],
  "properties": {
    "code": {"type": "string", "pattern": "^[A-Za-z0-9_-]+$"},
    "name": {"type": "string", "minLength": 1},
    "version": {"type": "string"},
    "description": {"type": "string"},
    "passing_score": {"type": "number", "exclusiveMinimum": 0, "maximum": 1},
    "exam": {
      "type": "object",
      "properties": {
        "total_questions": {"type": "integer", "minimum": 0},
        "duration_minutes": {"type": "integer", "minimum": 0},
        "notes": {"type": "string"}
      },
      "additionalProperties": false
    },
    "topics": {"type": "array", "minItems": 1, "items": {"$ref": "#/$defs/topic"}}
  },
  "additionalProperties": false,
  "$defs": {
    "topic": {
      "type": "object",
      "required": ["id", "name", "weight_pct"],
      "properties": {
        "id": {"type": "string", "minLength": 1},
        "name": {"type": "string", "minLength": 1},
        "weight_pct": {"type": "number", "exclusiveMinimum": 0, "maximum": 100},
        "keywords": {"type": "array", "items": {"type": "string"}},
        "children": {"type": "array", "items": {"$ref": "#/$defs/topic"}}
      },
      "additionalProperties": false
    }
  }
}`

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func courseValidator() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		var def any
		if err := json.Unmarshal([]byte(courseSchema), &def); err != nil {
			compileErr = fmt.Errorf("parse course schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(courseSchemaURL, def); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile(courseSchemaURL)
	})
	return compiledSchema, compileErr
}

// validateDocument checks a decoded course document against the schema.
// The document is round-tripped through JSON so YAML scalars take their
// JSON types.
func validateDocument(doc any) error {
	schema, err := courseValidator()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCourse, err)
	}
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCourse, err)
	}
	if err := schema.Validate(parsed); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCourse, err)
	}
	return nil
}
