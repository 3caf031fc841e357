package model

// Variables persisted into an environment's store
const (
	VarSubscriptionID            = "AZURE_SUBSCRIPTION_ID"
	VarAzureServicePrincipal     = "AZURE_SERVICE_PRINCIPAL_NAME"
	VarDataverseServicePrincipal = "DATAVERSE_SERVICE_PRINCIPAL_NAME"
	VarDataverseClientID         = "DATAVERSE_CLIENT_ID"
	VarDataverseClientSecret     = "DATAVERSE_CLIENT_SECRET"
	VarDataverseEnvURL           = "DATAVERSE_ENV_URL"
)

// SecretVariables are masked whenever variables are printed
var SecretVariables = map[string]bool{
	VarDataverseClientSecret: true,
}

// EnvironmentRegistry mirrors .azure/config.json
type EnvironmentRegistry struct {
	Version            int    `json:"version,omitempty"`
	DefaultEnvironment string `json:"defaultEnvironment"`
}

// Subscription is the subscription an environment is bound to
type Subscription struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	TenantID string `json:"tenantId"`
	User     struct {
		Name string `json:"name"`
		Type string `json:"type"`
	} `json:"user"`
}

// PlatformTemplate is the declarative definition of a platform environment
type PlatformTemplate struct {
	NamePrefix   string `json:"namePrefix" yaml:"namePrefix"`
	DomainPrefix string `json:"domainPrefix" yaml:"domainPrefix"`
	Type         string `json:"type" yaml:"type"`
	Region       string `json:"region" yaml:"region"`
	Language     string `json:"language" yaml:"language"`
	Currency     string `json:"currency" yaml:"currency"`
}

// PlatformEnvironmentSpec is a template resolved against an environment name
type PlatformEnvironmentSpec struct {
	Name     string
	Domain   string
	Type     string
	Region   string
	Language string
	Currency string
}

// PlatformSource records how the platform environment URL was obtained
type PlatformSource string

const (
	PlatformPersisted PlatformSource = "persisted"
	PlatformSupplied  PlatformSource = "supplied"
	PlatformFound     PlatformSource = "found"
	PlatformCreated   PlatformSource = "created"
)

// PlatformEnvironment is the resolved target platform environment
type PlatformEnvironment struct {
	URL    string         `json:"url"`
	Name   string         `json:"name,omitempty"`
	Domain string         `json:"domain,omitempty"`
	Source PlatformSource `json:"source"`
}
