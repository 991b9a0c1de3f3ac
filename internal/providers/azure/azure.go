// Package azure implements the provider contract over Azure OpenAI. The wire
// format is identical to OpenAI chat completions; what differs is the URL
// scheme (resource endpoint + deployment path + api-version query) and the
// api-key authentication header.
package azure

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"modelgate/internal/core"
	"modelgate/internal/providers/openai"
	"modelgate/internal/transport"
)

const (
	providerName      = "azure"
	defaultAPIVersion = "2024-02-15-preview"
)

// Config holds construction-time settings.
type Config struct {
	APIKey string

	// Endpoint is the Azure resource endpoint, e.g.
	// https://my-resource.openai.azure.com. Required.
	Endpoint string

	// APIVersion selects the REST API version. Empty means a current stable
	// default.
	APIVersion string

	// Transport substitutes the HTTP transport, for tests.
	Transport transport.Transport
}

// Provider implements core.Provider for Azure OpenAI.
type Provider struct {
	transport  transport.Transport
	apiKey     string
	endpoint   string
	apiVersion string
}

// New creates an Azure OpenAI provider. The endpoint must be set; there is no
// public default to fall back to.
func New(cfg Config) (*Provider, error) {
	if cfg.Endpoint == "" {
		return nil, core.NewConfigError(providerName, "endpoint is required")
	}
	version := cfg.APIVersion
	if version == "" {
		version = defaultAPIVersion
	}
	tr := cfg.Transport
	if tr == nil {
		tr = transport.New(providerName)
	}
	return &Provider{
		transport:  tr,
		apiKey:     cfg.APIKey,
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		apiVersion: version,
	}, nil
}

// Name implements core.Provider.
func (p *Provider) Name() string { return providerName }

// SupportsStreaming implements core.Provider.
func (p *Provider) SupportsStreaming() bool { return true }

// Models implements core.Provider. Deployments are named per Azure resource,
// so there is no static catalog to report.
func (p *Provider) Models() []string { return nil }

func (p *Provider) headers() map[string]string {
	return map[string]string{"api-key": p.apiKey}
}

// chatURL builds the deployment-scoped completions URL. The model argument is
// the Azure deployment name, not an OpenAI model id.
func (p *Provider) chatURL(deployment string) string {
	return fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		p.endpoint, url.PathEscape(deployment), url.QueryEscape(p.apiVersion))
}

// Chat implements core.Provider.
func (p *Provider) Chat(ctx context.Context, deployment string, req *core.Request) (*core.Response, error) {
	body := openai.BuildChatBody(deployment, req.WithStream(false))

	raw, err := p.transport.PostJSON(ctx, p.chatURL(deployment), p.headers(), body)
	if err != nil {
		return nil, err
	}
	return openai.ParseChatResponse(providerName, raw)
}

// ChatStream implements core.Provider. Azure emits the same SSE framing as
// OpenAI, including the terminal [DONE] event.
func (p *Provider) ChatStream(ctx context.Context, deployment string, req *core.Request) (core.ChunkStream, error) {
	body := openai.BuildChatBody(deployment, req.WithStream(true))

	stream, err := p.transport.PostJSONStream(ctx, p.chatURL(deployment), p.headers(), body)
	if err != nil {
		return nil, err
	}
	return openai.NewChunkReader(providerName, deployment, stream), nil
}
