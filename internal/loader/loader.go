package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/sourceplane/liteprov/internal/model"
	"github.com/sourceplane/liteprov/internal/schema"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Loader reads and validates the declarative documents liteprov consumes
type Loader struct {
	validator *schema.Validator
}

// NewLoader creates a loader backed by the embedded schemas
func NewLoader() (*Loader, error) {
	v, err := schema.NewValidator()
	if err != nil {
		return nil, err
	}
	return &Loader{validator: v}, nil
}

// LoadRegistry loads the environment registry file (.azure/config.json)
func (l *Loader) LoadRegistry(path string) (*model.EnvironmentRegistry, error) {
	doc, data, err := readJSONDocument(path)
	if err != nil {
		return nil, err
	}

	if err := l.validator.ValidateRegistry(doc); err != nil {
		return nil, fmt.Errorf("invalid environment registry %s: %w", path, err)
	}

	var registry model.EnvironmentRegistry
	if err := json.Unmarshal(data, &registry); err != nil {
		return nil, fmt.Errorf("failed to parse environment registry %s: %w", path, err)
	}

	return &registry, nil
}

// LoadTemplate loads a platform environment template (JSON, comments allowed)
func (l *Loader) LoadTemplate(path string) (*model.PlatformTemplate, error) {
	doc, _, err := readJSONDocument(path)
	if err != nil {
		return nil, err
	}

	if err := l.validator.ValidateTemplate(doc); err != nil {
		return nil, fmt.Errorf("invalid platform template %s: %w", path, err)
	}

	fields := doc.(map[string]interface{})
	return &model.PlatformTemplate{
		NamePrefix:   stringField(fields, "namePrefix"),
		DomainPrefix: stringField(fields, "domainPrefix"),
		Type:         stringField(fields, "type"),
		Region:       stringField(fields, "region"),
		Language:     stringField(fields, "language"),
		Currency:     stringField(fields, "currency"),
	}, nil
}

// LoadConfig loads liteprov.yaml. A missing file yields an empty config.
func (l *Loader) LoadConfig(path string) (*model.Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &model.Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	if doc == nil {
		return &model.Config{}, nil
	}

	if err := l.validator.ValidateConfig(doc); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	var cfg model.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	return &cfg, nil
}

// readJSONDocument reads a JSON file, stripping comments and trailing commas
func readJSONDocument(path string) (interface{}, []byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	data := jsonc.ToJSON(raw)
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return doc, data, nil
}

func stringField(fields map[string]interface{}, key string) string {
	switch v := fields[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}
