package externals

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var schemaJSON []byte

var compiledSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
})

// ValidateDocument checks a decoded configuration document (as produced by
// a JSON, TOML or YAML decoder) against the configuration schema. All
// schema errors are reported together in a *ValidationError.
func ValidateDocument(doc any) error {
	sch, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("failed to load config schema: %w", err)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode config to JSON: %w", err)
	}

	result, err := sch.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if result.Valid() {
		return nil
	}

	violations := make([]Violation, 0, len(result.Errors()))
	for _, verr := range result.Errors() {
		field := verr.Field()
		if field == "" || field == "(root)" {
			field = "config"
		}
		violations = append(violations, Violation{Field: field, Message: verr.Description()})
	}

	return &ValidationError{Violations: violations}
}

// DecodeConfig validates doc against the schema and decodes it into a
// Config. Defaults are not applied.
func DecodeConfig(doc any) (Config, error) {
	if err := ValidateDocument(doc); err != nil {
		return Config{}, err
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return Config{}, fmt.Errorf("encode config to JSON: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}
