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

const titanDefaultMaxTokens = 4096

type titanBody struct {
	InputText            string      `json:"inputText"`
	TextGenerationConfig titanConfig `json:"textGenerationConfig"`
}

type titanConfig struct {
	MaxTokenCount int      `json:"maxTokenCount"`
	Temperature   *float64 `json:"temperature,omitempty"`
	TopP          *float64 `json:"topP,omitempty"`
	StopSequences []string `json:"stopSequences,omitempty"`
}

type titanResponse struct {
	Results []struct {
		OutputText string `json:"outputText"`
	} `json:"results"`
	Usage struct {
		InputTokenCount  int `json:"inputTokenCount"`
		OutputTokenCount int `json:"outputTokenCount"`
	} `json:"usage"`
}

// buildTitanPrompt flattens the chat transcript into Titan's single prompt
// string, one "{Role}: {text}" line per message.
func buildTitanPrompt(messages []core.Message) string {
	var prompt strings.Builder
	for _, m := range messages {
		text, _ := m.ContentText()
		label := "User"
		switch m.Role {
		case core.RoleSystem:
			label = "System"
		case core.RoleAssistant:
			label = "Bot"
		}
		prompt.WriteString(label)
		prompt.WriteString(": ")
		prompt.WriteString(text)
		prompt.WriteString("\n")
	}
	return prompt.String()
}

func buildTitanBody(req *core.Request) titanBody {
	maxTokens := titanDefaultMaxTokens
	if req.MaxTokens != nil {
		maxTokens = *req.MaxTokens
	}
	return titanBody{
		InputText: buildTitanPrompt(req.Messages),
		TextGenerationConfig: titanConfig{
			MaxTokenCount: maxTokens,
			Temperature:   req.Temperature,
			TopP:          req.TopP,
			StopSequences: req.Stop,
		},
	}
}

func (p *Provider) invokeTitan(ctx context.Context, model string, req *core.Request) (*core.Response, error) {
	payload, err := json.Marshal(buildTitanBody(req))
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

	var resp titanResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return nil, core.NewProviderError(providerName, "failed to parse response: "+err.Error(), err)
	}
	if len(resp.Results) == 0 || resp.Results[0].OutputText == "" {
		return nil, core.NewProviderError(providerName, "response contained no output text", nil)
	}

	return &core.Response{
		ID:      "bedrock-" + uuid.NewString(),
		Model:   model,
		Message: core.NewMessage(core.RoleAssistant, resp.Results[0].OutputText),
		// Titan reports no stop reason.
		FinishReason: core.FinishStop,
		Usage:        core.NewUsage(resp.Usage.InputTokenCount, resp.Usage.OutputTokenCount),
	}, nil
}
