// Package providers constructs and resolves vendor adapters. The factory
// turns catalog credentials into core.Provider values; the resolver maps
// gateway model ids onto constructed providers with fallback semantics.
package providers

import (
	"context"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"modelgate/internal/catalog"
	"modelgate/internal/core"
	"modelgate/internal/providers/anthropic"
	"modelgate/internal/providers/azure"
	"modelgate/internal/providers/bedrock"
	"modelgate/internal/providers/openai"
)

// Kind names a supported provider implementation.
type Kind string

const (
	KindOpenAI    Kind = "openai"
	KindAnthropic Kind = "anthropic"
	KindAzure     Kind = "azure"
	KindBedrock   Kind = "bedrock"
)

// expectedCredentialType pairs each provider kind with the credential type it
// accepts. A mismatch is a configuration error, never a silent coercion.
func expectedCredentialType(kind Kind) (catalog.CredentialType, bool) {
	switch kind {
	case KindOpenAI:
		return catalog.CredentialOpenAI, true
	case KindAnthropic:
		return catalog.CredentialAnthropic, true
	case KindAzure:
		return catalog.CredentialAzureOpenAI, true
	case KindBedrock:
		return catalog.CredentialBedrock, true
	default:
		return "", false
	}
}

// KindForCredential maps a credential type onto the provider kind that serves
// it.
func KindForCredential(t catalog.CredentialType) (Kind, bool) {
	switch t {
	case catalog.CredentialOpenAI:
		return KindOpenAI, true
	case catalog.CredentialAnthropic:
		return KindAnthropic, true
	case catalog.CredentialAzureOpenAI:
		return KindAzure, true
	case catalog.CredentialBedrock:
		return KindBedrock, true
	default:
		return "", false
	}
}

// Factory builds providers from credentials.
type Factory struct{}

// NewFactory creates a Factory.
func NewFactory() *Factory { return &Factory{} }

// Create builds a provider of the given kind from the credential,
// validating that the credential actually belongs to that kind. Bedrock is
// rejected here: its construction loads AWS configuration and belongs on the
// context-taking CreateBedrock path.
func (f *Factory) Create(kind Kind, cred *catalog.Credential) (core.Provider, error) {
	want, ok := expectedCredentialType(kind)
	if !ok {
		return nil, core.NewConfigError(string(kind), "unknown provider kind")
	}
	if cred.Type != want {
		return nil, core.NewConfigError(string(kind),
			"credential type "+string(cred.Type)+" does not match provider kind")
	}

	switch kind {
	case KindOpenAI:
		return openai.New(openai.Config{APIKey: cred.Secret, BaseURL: cred.BaseURL}), nil
	case KindAnthropic:
		return anthropic.New(anthropic.Config{APIKey: cred.Secret, BaseURL: cred.BaseURL}), nil
	case KindAzure:
		return azure.New(azure.Config{
			APIKey:     cred.Secret,
			Endpoint:   cred.Endpoint,
			APIVersion: cred.APIVersion,
		})
	case KindBedrock:
		return nil, core.NewConfigError(string(kind), "bedrock requires CreateBedrock")
	default:
		return nil, core.NewConfigError(string(kind), "unknown provider kind")
	}
}

// CreateBedrock builds a Bedrock provider, loading the AWS SDK configuration
// chain (env, shared config, instance role) for the credential's region.
func (f *Factory) CreateBedrock(ctx context.Context, cred *catalog.Credential) (core.Provider, error) {
	if cred.Type != catalog.CredentialBedrock {
		return nil, core.NewConfigError(string(KindBedrock),
			"credential type "+string(cred.Type)+" does not match provider kind")
	}
	if cred.Region == "" {
		return nil, core.NewConfigError(string(KindBedrock), "region is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cred.Region))
	if err != nil {
		return nil, core.NewConfigError(string(KindBedrock), "failed to load AWS config: "+err.Error())
	}
	return bedrock.New(bedrockruntime.NewFromConfig(awsCfg), cred.Region), nil
}

// CreateForCredential builds the provider implied by the credential's own
// type. Bedrock credentials use the async path.
func (f *Factory) CreateForCredential(ctx context.Context, cred *catalog.Credential) (core.Provider, error) {
	kind, ok := KindForCredential(cred.Type)
	if !ok {
		return nil, core.NewConfigError(string(cred.Type), "unknown credential type")
	}
	if kind == KindBedrock {
		return f.CreateBedrock(ctx, cred)
	}
	return f.Create(kind, cred)
}
