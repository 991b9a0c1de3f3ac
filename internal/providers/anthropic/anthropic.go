// Package anthropic implements the provider contract over the Anthropic
// Messages API. The API differs structurally from chat completions: system
// text travels in a dedicated field, max_tokens is mandatory, and content
// arrives as a list of typed blocks.
package anthropic

import (
	"context"
	"encoding/json"
	"strings"

	"modelgate/internal/core"
	"modelgate/internal/transport"
)

const (
	providerName     = "anthropic"
	defaultBaseURL   = "https://api.anthropic.com"
	messagesPath     = "/v1/messages"
	apiVersion       = "2023-06-01"
	defaultMaxTokens = 4096
)

// Config holds construction-time settings.
type Config struct {
	APIKey string

	// BaseURL overrides the public API endpoint. Empty means the public API.
	BaseURL string

	// Transport substitutes the HTTP transport, for tests.
	Transport transport.Transport
}

// Provider implements core.Provider for Anthropic.
type Provider struct {
	transport transport.Transport
	apiKey    string
	baseURL   string
}

// New creates an Anthropic provider.
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
		"claude-3-5-sonnet-20241022",
		"claude-3-5-haiku-20241022",
		"claude-3-opus-20240229",
		"claude-3-haiku-20240307",
	}
}

func (p *Provider) headers() map[string]string {
	return map[string]string{
		"x-api-key":         p.apiKey,
		"anthropic-version": apiVersion,
	}
}

// Chat implements core.Provider.
func (p *Provider) Chat(ctx context.Context, model string, req *core.Request) (*core.Response, error) {
	body := buildMessagesBody(model, req.WithStream(false))

	raw, err := p.transport.PostJSON(ctx, p.baseURL+messagesPath, p.headers(), body)
	if err != nil {
		return nil, err
	}
	return parseMessagesResponse(raw)
}

// ChatStream implements core.Provider.
func (p *Provider) ChatStream(ctx context.Context, model string, req *core.Request) (core.ChunkStream, error) {
	body := buildMessagesBody(model, req.WithStream(true))

	stream, err := p.transport.PostJSONStream(ctx, p.baseURL+messagesPath, p.headers(), body)
	if err != nil {
		return nil, err
	}
	return newEventReader(model, stream), nil
}

type messagesBody struct {
	Model         string        `json:"model"`
	System        string        `json:"system,omitempty"`
	Messages      []wireMessage `json:"messages"`
	MaxTokens     int           `json:"max_tokens"`
	Stream        bool          `json:"stream,omitempty"`
	Temperature   *float64      `json:"temperature,omitempty"`
	TopP          *float64      `json:"top_p,omitempty"`
	StopSequences []string      `json:"stop_sequences,omitempty"`
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// buildMessagesBody translates a domain request. System messages anywhere in
// the transcript are lifted into the top-level system field (joined with
// newlines); everything else keeps order with roles collapsed to user or
// assistant. Presence/frequency penalties and response_format have no
// Messages API equivalent and are dropped.
func buildMessagesBody(model string, req *core.Request) messagesBody {
	var system []string
	messages := make([]wireMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		text, _ := m.ContentText()
		if m.Role == core.RoleSystem {
			system = append(system, text)
			continue
		}
		role := "user"
		if m.Role == core.RoleAssistant {
			role = "assistant"
		}
		messages = append(messages, wireMessage{Role: role, Content: text})
	}

	maxTokens := defaultMaxTokens
	if req.MaxTokens != nil {
		maxTokens = *req.MaxTokens
	}

	return messagesBody{
		Model:         model,
		System:        strings.Join(system, "\n"),
		Messages:      messages,
		MaxTokens:     maxTokens,
		Stream:        req.Stream,
		Temperature:   req.Temperature,
		TopP:          req.TopP,
		StopSequences: req.Stop,
	}
}

type messagesResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// parseMessagesResponse translates a Messages API response. Text blocks are
// concatenated in order; non-text blocks are skipped.
func parseMessagesResponse(raw []byte) (*core.Response, error) {
	var resp messagesResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, core.NewProviderError(providerName, "failed to parse response: "+err.Error(), err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, core.NewProviderError(providerName, "response contained no text content", nil)
	}

	return &core.Response{
		ID:           resp.ID,
		Model:        resp.Model,
		Message:      core.NewMessage(core.RoleAssistant, text.String()),
		FinishReason: mapStopReason(resp.StopReason),
		Usage:        core.NewUsage(resp.Usage.InputTokens, resp.Usage.OutputTokens),
	}, nil
}

// mapStopReason collapses the Anthropic stop-reason vocabulary into the
// normalized enum.
func mapStopReason(reason string) core.FinishReason {
	switch reason {
	case "end_turn", "stop_sequence":
		return core.FinishStop
	case "max_tokens":
		return core.FinishLength
	case "tool_use":
		return core.FinishToolCalls
	default:
		return core.FinishStop
	}
}
