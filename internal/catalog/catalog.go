// Package catalog holds the read-only credential and model records the
// resolver consumes. They are produced elsewhere (admin services, config
// files); this package only defines the records and lookup contracts.
package catalog

import "context"

// CredentialType identifies which vendor a secret belongs to.
type CredentialType string

const (
	CredentialOpenAI      CredentialType = "openai"
	CredentialAnthropic   CredentialType = "anthropic"
	CredentialAzureOpenAI CredentialType = "azure_openai"
	CredentialBedrock     CredentialType = "aws_bedrock"
)

// Credential is a vendor secret plus the connection details that go with it.
// Endpoint/APIVersion apply to Azure, Region to Bedrock; BaseURL overrides
// the public endpoint for OpenAI-compatible servers.
type Credential struct {
	ID         string         `yaml:"id" json:"id"`
	Name       string         `yaml:"name" json:"name"`
	Type       CredentialType `yaml:"type" json:"type"`
	Secret     string         `yaml:"secret" json:"-"`
	BaseURL    string         `yaml:"base_url,omitempty" json:"base_url,omitempty"`
	Endpoint   string         `yaml:"endpoint,omitempty" json:"endpoint,omitempty"`
	APIVersion string         `yaml:"api_version,omitempty" json:"api_version,omitempty"`
	Region     string         `yaml:"region,omitempty" json:"region,omitempty"`
	Enabled    bool           `yaml:"enabled" json:"enabled"`
}

// Model maps a gateway model id to the credential and vendor-specific model
// (or deployment) name used to serve it.
type Model struct {
	ID            string `yaml:"id" json:"id"`
	CredentialID  string `yaml:"credential_id" json:"credential_id"`
	ProviderModel string `yaml:"provider_model" json:"provider_model"`
}

// CredentialStore looks up credentials by id.
type CredentialStore interface {
	Credential(ctx context.Context, id string) (*Credential, bool)
}

// ModelStore looks up model routes by gateway model id.
type ModelStore interface {
	Model(ctx context.Context, id string) (*Model, bool)
	List(ctx context.Context) []Model
}
