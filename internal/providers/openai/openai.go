// Package openai implements the provider contract over the OpenAI
// chat-completions API. Azure OpenAI shares this wire format, so the body
// construction and response parsing are exported for reuse.
package openai

import (
	"context"
	"encoding/json"

	"modelgate/internal/core"
	"modelgate/internal/transport"
)

const (
	providerName   = "openai"
	defaultBaseURL = "https://api.openai.com"
	chatPath       = "/v1/chat/completions"
)

// Config holds construction-time settings. All fields are fixed once the
// provider is built.
type Config struct {
	APIKey string

	// BaseURL overrides the public API endpoint, enabling OpenAI-compatible
	// self-hosted servers. Empty means the public API.
	BaseURL string

	// Transport substitutes the HTTP transport, for tests.
	Transport transport.Transport
}

// Provider implements core.Provider for OpenAI.
type Provider struct {
	transport transport.Transport
	apiKey    string
	baseURL   string
}

// New creates an OpenAI provider.
func New(cfg Config) *Provider {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	tr := cfg.Transport
	if tr == nil {
		tr = transport.New(providerName)
	}
	return &Provider{transport: tr, apiKey: cfg.APIKey, baseURL: base}
}

// Name implements core.Provider.
func (p *Provider) Name() string { return providerName }

// SupportsStreaming implements core.Provider.
func (p *Provider) SupportsStreaming() bool { return true }

// Models returns a static best-effort catalog of commonly available models.
func (p *Provider) Models() []string {
	return []string{
		"gpt-4o",
		"gpt-4o-mini",
		"gpt-4-turbo",
		"gpt-4",
		"gpt-3.5-turbo",
	}
}

func (p *Provider) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + p.apiKey}
}

// Chat implements core.Provider.
func (p *Provider) Chat(ctx context.Context, model string, req *core.Request) (*core.Response, error) {
	body := BuildChatBody(model, req.WithStream(false))

	raw, err := p.transport.PostJSON(ctx, p.baseURL+chatPath, p.headers(), body)
	if err != nil {
		return nil, err
	}
	return ParseChatResponse(providerName, raw)
}

// ChatStream implements core.Provider.
func (p *Provider) ChatStream(ctx context.Context, model string, req *core.Request) (core.ChunkStream, error) {
	body := BuildChatBody(model, req.WithStream(true))

	stream, err := p.transport.PostJSONStream(ctx, p.baseURL+chatPath, p.headers(), body)
	if err != nil {
		return nil, err
	}
	return NewChunkReader(providerName, model, stream), nil
}

// ChatBody is the OpenAI chat-completions request payload. This shape is an
// external contract and must match the published schema exactly.
type ChatBody struct {
	Model            string               `json:"model"`
	Messages         []wireMessage        `json:"messages"`
	Stream           bool                 `json:"stream"`
	Temperature      *float64             `json:"temperature,omitempty"`
	MaxTokens        *int                 `json:"max_tokens,omitempty"`
	TopP             *float64             `json:"top_p,omitempty"`
	Stop             []string             `json:"stop,omitempty"`
	PresencePenalty  *float64             `json:"presence_penalty,omitempty"`
	FrequencyPenalty *float64             `json:"frequency_penalty,omitempty"`
	ResponseFormat   *core.ResponseFormat `json:"response_format,omitempty"`
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// BuildChatBody translates a domain request into the chat-completions
// payload. Sampling values pass through unchecked.
func BuildChatBody(model string, req *core.Request) ChatBody {
	messages := make([]wireMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		text, _ := m.ContentText()
		messages = append(messages, wireMessage{Role: string(m.Role), Content: text})
	}

	return ChatBody{
		Model:            model,
		Messages:         messages,
		Stream:           req.Stream,
		Temperature:      req.Temperature,
		MaxTokens:        req.MaxTokens,
		TopP:             req.TopP,
		Stop:             req.Stop,
		PresencePenalty:  req.PresencePenalty,
		FrequencyPenalty: req.FrequencyPenalty,
		ResponseFormat:   req.ResponseFormat,
	}
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage *wireUsage `json:"usage"`
}

type wireUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// ParseChatResponse translates a chat-completions response body into the
// domain response. A response with zero choices is a protocol error, not an
// empty-content success.
func ParseChatResponse(provider string, raw []byte) (*core.Response, error) {
	var resp chatResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, core.NewProviderError(provider, "failed to parse response: "+err.Error(), err)
	}

	if len(resp.Choices) == 0 {
		return nil, core.NewProviderError(provider, "response contained no choices", nil)
	}

	choice := resp.Choices[0]
	if choice.Message.Content == "" {
		return nil, core.NewProviderError(provider, "response contained an empty assistant message", nil)
	}

	out := &core.Response{
		ID:           resp.ID,
		Model:        resp.Model,
		Message:      core.NewMessage(core.RoleAssistant, choice.Message.Content),
		FinishReason: MapFinishReason(choice.FinishReason),
	}
	if resp.Usage != nil {
		out.Usage = core.NewUsage(resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	}
	return out, nil
}

// MapFinishReason collapses the OpenAI finish-reason vocabulary into the
// normalized enum. Unrecognized values map to stop; this is a documented
// lossy default.
func MapFinishReason(reason string) core.FinishReason {
	switch reason {
	case "stop":
		return core.FinishStop
	case "length":
		return core.FinishLength
	case "content_filter":
		return core.FinishContentFilter
	case "tool_calls", "function_call":
		return core.FinishToolCalls
	default:
		return core.FinishStop
	}
}
