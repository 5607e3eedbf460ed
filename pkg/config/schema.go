package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// SchemaVersion is the version of the embedded configuration schema
const SchemaVersion = "1.0.0"

//go:embed schemas/catmigrate-config-v1.0.0.json
var schemaV1 []byte

// ValidateSchema validates the effective configuration against the embedded schema
func ValidateSchema(cfg *Config) error {
	doc, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config for validation: %w", err)
	}
	return ValidateConfig(doc)
}

// ValidateConfig validates raw JSON configuration data
func ValidateConfig(configData []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaV1),
		gojsonschema.NewBytesLoader(configData),
	)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		var errs []string
		for _, desc := range result.Errors() {
			errs = append(errs, desc.String())
		}
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errs, "\n"))
	}
	return nil
}
