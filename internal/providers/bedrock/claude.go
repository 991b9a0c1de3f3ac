package bedrock

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/google/uuid"

	"modelgate/internal/core"
)

// anthropicVersion is the schema version Bedrock requires inside the invoke
// body for Anthropic models. It is a body field, not an HTTP header.
const anthropicVersion = "bedrock-2023-05-31"

const claudeDefaultMaxTokens = 4096

type claudeBody struct {
	AnthropicVersion string          `json:"anthropic_version"`
	System           string          `json:"system,omitempty"`
	Messages         []claudeMessage `json:"messages"`
	MaxTokens        int             `json:"max_tokens"`
	Temperature      *float64        `json:"temperature,omitempty"`
	TopP             *float64        `json:"top_p,omitempty"`
	StopSequences    []string        `json:"stop_sequences,omitempty"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
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

func buildClaudeBody(req *core.Request) claudeBody {
	var system []string
	messages := make([]claudeMessage, 0, len(req.Messages))
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
		messages = append(messages, claudeMessage{Role: role, Content: text})
	}

	maxTokens := claudeDefaultMaxTokens
	if req.MaxTokens != nil {
		maxTokens = *req.MaxTokens
	}

	return claudeBody{
		AnthropicVersion: anthropicVersion,
		System:           strings.Join(system, "\n"),
		Messages:         messages,
		MaxTokens:        maxTokens,
		Temperature:      req.Temperature,
		TopP:             req.TopP,
		StopSequences:    req.Stop,
	}
}

func (p *Provider) invokeClaude(ctx context.Context, model string, req *core.Request) (*core.Response, error) {
	payload, err := json.Marshal(buildClaudeBody(req))
	if err != nil {
		return nil, core.NewProviderError(providerName, "failed to marshal request: "+err.Error(), err)
	}

	out, err := p.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(model),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        payload,
	})
	if err != nil {
		return nil, core.NewProviderError(providerName, "invoke failed: "+err.Error(), err)
	}

	var resp claudeResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
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
		ID:           "bedrock-" + uuid.NewString(),
		Model:        model,
		Message:      core.NewMessage(core.RoleAssistant, text.String()),
		FinishReason: mapClaudeStopReason(resp.StopReason),
		Usage:        core.NewUsage(resp.Usage.InputTokens, resp.Usage.OutputTokens),
	}, nil
}

func mapClaudeStopReason(reason string) core.FinishReason {
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
