/*
PURPOSE:
  Validates raw config documents against the embedded schema.json.

REQUIREMENTS:
  Implementation-discovered:
  - Typos in key names must fail loudly instead of being silently ignored.
  - YAML and TOML go through the same schema.

ARCHITECTURE INTEGRATION:
  - Called by: internal/config (Decode)
  - Uses: github.com/santhosh-tekuri/jsonschema/v5

ERROR HANDLING:
  - Returns the schema validation error as-is; Decode adds the file name.

IMPLEMENTATION RULES:
  - Compile once.

USAGE:
  err := validateSchema(doc)

SELF-HEALING INSTRUCTIONS:
  - None.

RELATED FILES:
  - internal/config/schema.json

MAINTENANCE:
  - Keep schema.json in step with the Config struct tags.
*/

package config

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema.json
var schemaJSON string

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("loadtest.schema.json", schemaJSON)
	})
	return schema, schemaErr
}

// validateSchema checks a decoded YAML/TOML document against schema.json.
func validateSchema(doc any) error {
	s, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("failed to compile embedded schema: %w", err)
	}
	return s.Validate(doc)
}
