package core

// FinishReason is the normalized vocabulary for why generation stopped.
// Each adapter owns the mapping from its vendor's stop-reason strings;
// unrecognized vendor values map to FinishStop.
type FinishReason string

const (
	FinishStop          FinishReason = "stop"
	FinishLength        FinishReason = "length"
	FinishContentFilter FinishReason = "content_filter"
	FinishToolCalls     FinishReason = "tool_calls"
	FinishError         FinishReason = "error"
)

// Usage reports token consumption for one completed request.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// NewUsage builds a Usage whose total is always the sum of the parts.
// Adapters receiving a vendor-reported total must go through this constructor
// so the invariant holds regardless of what the vendor sent.
func NewUsage(promptTokens, completionTokens int) *Usage {
	return &Usage{
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		TotalTokens:      promptTokens + completionTokens,
	}
}

// Response is the vendor-neutral result of a non-streaming chat call.
// ID is vendor-supplied where available; Bedrock synthesizes one, so callers
// must not assume ids are stable across vendors or retries.
type Response struct {
	ID           string       `json:"id"`
	Model        string       `json:"model"`
	Message      Message      `json:"message"`
	FinishReason FinishReason `json:"finish_reason,omitempty"`
	Usage        *Usage       `json:"usage,omitempty"`
}

// Content returns the assistant message text.
func (r *Response) Content() string {
	text, _ := r.Message.ContentText()
	return text
}

// StreamChunk is one unit of a streamed response. The final content-carrying
// chunk need not be the one carrying FinishReason; some vendors emit a
// separate terminal event.
type StreamChunk struct {
	ID           string       `json:"id"`
	Model        string       `json:"model"`
	Delta        string       `json:"delta,omitempty"`
	FinishReason FinishReason `json:"finish_reason,omitempty"`
	Usage        *Usage       `json:"usage,omitempty"`
}
