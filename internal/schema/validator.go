package schema

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed schemas/*.schema.yaml
var schemaFS embed.FS

// Validator handles JSON schema validation of the documents liteprov reads
type Validator struct {
	registrySchema *jsonschema.Schema
	templateSchema *jsonschema.Schema
	configSchema   *jsonschema.Schema
}

// NewValidator compiles the embedded schemas
func NewValidator() (*Validator, error) {
	v := &Validator{}

	registrySchema, err := loadSchema("environment-registry")
	if err != nil {
		return nil, fmt.Errorf("failed to load environment registry schema: %w", err)
	}
	v.registrySchema = registrySchema

	templateSchema, err := loadSchema("platform-template")
	if err != nil {
		return nil, fmt.Errorf("failed to load platform template schema: %w", err)
	}
	v.templateSchema = templateSchema

	configSchema, err := loadSchema("config")
	if err != nil {
		return nil, fmt.Errorf("failed to load config schema: %w", err)
	}
	v.configSchema = configSchema

	return v, nil
}

// ValidateRegistry validates a decoded .azure/config.json document
func (v *Validator) ValidateRegistry(data interface{}) error {
	if v.registrySchema == nil {
		return fmt.Errorf("environment registry schema not loaded")
	}
	return v.registrySchema.Validate(data)
}

// ValidateTemplate validates a decoded platform environment template
func (v *Validator) ValidateTemplate(data interface{}) error {
	if v.templateSchema == nil {
		return fmt.Errorf("platform template schema not loaded")
	}
	return v.templateSchema.Validate(data)
}

// ValidateConfig validates a decoded liteprov.yaml document
func (v *Validator) ValidateConfig(data interface{}) error {
	if v.configSchema == nil {
		return fmt.Errorf("config schema not loaded")
	}
	normalized, err := toJSONValue(data)
	if err != nil {
		return err
	}
	return v.configSchema.Validate(normalized)
}

// loadSchema reads an embedded YAML schema and compiles it
func loadSchema(name string) (*jsonschema.Schema, error) {
	data, err := schemaFS.ReadFile("schemas/" + name + ".schema.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}

	var schemaData interface{}
	if err := yaml.Unmarshal(data, &schemaData); err != nil {
		return nil, fmt.Errorf("failed to parse schema file: %w", err)
	}

	jsonData, err := json.Marshal(schemaData)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	url := fmt.Sprintf("liteprov://schemas/%s.json", name)
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, bytes.NewReader(jsonData)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	schema, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	return schema, nil
}

// toJSONValue round-trips YAML decoded values so numbers and maps have JSON types
func toJSONValue(data interface{}) (interface{}, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	var out interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return out, nil
}
