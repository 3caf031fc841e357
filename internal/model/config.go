package model

// ConfigFileName is looked up in the project root
const ConfigFileName = "liteprov.yaml"

// DefaultTemplatePath is relative to the project root
const DefaultTemplatePath = ".azure/dataverse.json"

// Config holds the optional liteprov.yaml settings
type Config struct {
	Roles      []string `yaml:"roles" json:"roles,omitempty"`
	Template   string   `yaml:"template" json:"template,omitempty"`
	AzCommand  string   `yaml:"azCommand" json:"azCommand,omitempty"`
	PacCommand string   `yaml:"pacCommand" json:"pacCommand,omitempty"`
}

// WithDefaults fills unset fields
func (c Config) WithDefaults() Config {
	if len(c.Roles) == 0 {
		c.Roles = append([]string(nil), DefaultAssignedRoles...)
	}
	if c.Template == "" {
		c.Template = DefaultTemplatePath
	}
	if c.AzCommand == "" {
		c.AzCommand = "az"
	}
	if c.PacCommand == "" {
		c.PacCommand = "pac"
	}
	return c
}
