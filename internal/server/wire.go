package server

import (
	"net/http"

	"modelgate/internal/core"
)

// The wire types mirror the OpenAI chat-completions schema so existing SDKs
// can point at the gateway unchanged.

type chatCompletionRequest struct {
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

// toDomain translates the wire request into the vendor-neutral form.
func (r *chatCompletionRequest) toDomain() *core.Request {
	req := &core.Request{
		Temperature:      r.Temperature,
		MaxTokens:        r.MaxTokens,
		TopP:             r.TopP,
		Stop:             r.Stop,
		PresencePenalty:  r.PresencePenalty,
		FrequencyPenalty: r.FrequencyPenalty,
		Stream:           r.Stream,
		ResponseFormat:   r.ResponseFormat,
	}
	for _, m := range r.Messages {
		req.Messages = append(req.Messages, core.NewMessage(core.Role(m.Role), m.Content))
	}
	return req
}

type chatCompletionResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []wireChoice `json:"choices"`
	Usage   *wireUsage   `json:"usage,omitempty"`
}

type wireChoice struct {
	Index        int         `json:"index"`
	Message      wireMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type wireUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

func toWireResponse(model string, resp *core.Response, created int64) chatCompletionResponse {
	out := chatCompletionResponse{
		ID:      resp.ID,
		Object:  "chat.completion",
		Created: created,
		Model:   model,
		Choices: []wireChoice{{
			Message:      wireMessage{Role: "assistant", Content: resp.Content()},
			FinishReason: string(resp.FinishReason),
		}},
	}
	if resp.Usage != nil {
		out.Usage = &wireUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}
	return out
}

type chatCompletionChunk struct {
	ID      string            `json:"id"`
	Object  string            `json:"object"`
	Created int64             `json:"created"`
	Model   string            `json:"model"`
	Choices []wireChunkChoice `json:"choices"`
	Usage   *wireUsage        `json:"usage,omitempty"`
}

type wireChunkChoice struct {
	Index        int       `json:"index"`
	Delta        wireDelta `json:"delta"`
	FinishReason *string   `json:"finish_reason"`
}

type wireDelta struct {
	Content string `json:"content,omitempty"`
}

func toWireChunk(model string, chunk core.StreamChunk, created int64) chatCompletionChunk {
	choice := wireChunkChoice{Delta: wireDelta{Content: chunk.Delta}}
	if chunk.FinishReason != "" {
		reason := string(chunk.FinishReason)
		choice.FinishReason = &reason
	}
	out := chatCompletionChunk{
		ID:      chunk.ID,
		Object:  "chat.completion.chunk",
		Created: created,
		Model:   model,
		Choices: []wireChunkChoice{choice},
	}
	if chunk.Usage != nil {
		out.Usage = &wireUsage{
			PromptTokens:     chunk.Usage.PromptTokens,
			CompletionTokens: chunk.Usage.CompletionTokens,
			TotalTokens:      chunk.Usage.TotalTokens,
		}
	}
	return out
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func newErrorBody(errType, message string) errorBody {
	return errorBody{Error: errorDetail{Type: errType, Message: message}}
}

// statusForProviderError maps a provider failure onto the gateway's response
// status. Vendor statuses pass through; failures without an HTTP exchange
// are reported as a bad upstream.
func statusForProviderError(perr *core.ProviderError) int {
	if perr.StatusCode != 0 {
		return perr.StatusCode
	}
	return http.StatusBadGateway
}
