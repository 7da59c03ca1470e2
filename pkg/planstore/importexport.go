package planstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// planSchemaDoc describes the external wire shape of a Plan, independent of
// Go struct tags, so a document that does not conform to it is rejected
// before it is decoded into a Plan.
const planSchemaDoc = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["id", "title", "goal", "version", "steps"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "title": {"type": "string"},
    "goal": {"type": "string"},
    "mode": {"type": "string", "enum": ["minimal", "full", ""]},
    "version": {"type": "integer", "minimum": 0},
    "steps": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "title", "status"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "title": {"type": "string"},
          "status": {"type": "string", "enum": ["pending", "running", "done", "blocked"]},
          "dependencies": {"type": "array", "items": {"type": "string"}}
        }
      }
    }
  }
}`

var (
	planSchemaOnce sync.Once
	planSchema     *jsonschema.Schema
	planSchemaErr  error
)

func compiledPlanSchema() (*jsonschema.Schema, error) {
	planSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		const resourceURL = "mem://plan.schema.json"
		if err := compiler.AddResource(resourceURL, bytes.NewReader([]byte(planSchemaDoc))); err != nil {
			planSchemaErr = fmt.Errorf("planstore: add plan schema resource: %w", err)
			return
		}
		schema, err := compiler.Compile(resourceURL)
		if err != nil {
			planSchemaErr = fmt.Errorf("planstore: compile plan schema: %w", err)
			return
		}
		planSchema = schema
	})
	return planSchema, planSchemaErr
}

// ImportJSON validates an externally supplied plan document against the
// plan schema before admitting it, rather than trusting encoding/json's
// field-shape tolerance alone. The returned plan is not registered with any
// Store; the caller decides whether to seed a new plan id from it.
func ImportJSON(data []byte) (Plan, error) {
	schema, err := compiledPlanSchema()
	if err != nil {
		return Plan{}, err
	}

	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return Plan{}, newError("invalid_json", map[string]any{"cause": err.Error()})
	}
	if err := schema.Validate(generic); err != nil {
		return Plan{}, newError("schema_violation", map[string]any{"cause": err.Error()})
	}

	var p Plan
	if err := json.Unmarshal(data, &p); err != nil {
		return Plan{}, newError("invalid_json", map[string]any{"cause": err.Error()})
	}
	return p, nil
}

// ExportJSON marshals a plan back to its external wire form.
func ExportJSON(p Plan) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("planstore: export: %w", err)
	}
	return data, nil
}
