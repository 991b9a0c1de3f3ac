package core

import "encoding/json"

// ResponseFormat selects the output shape the vendor is asked for.
// Exactly one of the three OpenAI-style variants applies: plain text,
// free-form JSON, or JSON constrained by a named schema.
type ResponseFormat struct {
	Type       string      `json:"type"` // "text", "json_object" or "json_schema"
	JSONSchema *JSONSchema `json:"json_schema,omitempty"`
}

// JSONSchema describes the json_schema response format variant.
type JSONSchema struct {
	Name   string          `json:"name"`
	Strict bool            `json:"strict,omitempty"`
	Schema json.RawMessage `json:"schema"`
}

// TextFormat requests plain text output.
func TextFormat() *ResponseFormat { return &ResponseFormat{Type: "text"} }

// JSONObjectFormat requests free-form JSON output.
func JSONObjectFormat() *ResponseFormat { return &ResponseFormat{Type: "json_object"} }

// JSONSchemaFormat requests JSON output constrained by the given schema.
func JSONSchemaFormat(name string, strict bool, schema json.RawMessage) *ResponseFormat {
	return &ResponseFormat{
		Type:       "json_schema",
		JSONSchema: &JSONSchema{Name: name, Strict: strict, Schema: schema},
	}
}

// Request is the vendor-neutral chat request. Numeric sampling fields carry
// OpenAI-style ranges (temperature 0-2, top_p 0-1, penalties -2..2) which are
// enforced by the caller; adapters pass values through unchecked.
type Request struct {
	Messages         []Message         `json:"messages"`
	SystemPromptID   string            `json:"system_prompt_id,omitempty"`
	PromptVariables  map[string]string `json:"prompt_variables,omitempty"`
	Temperature      *float64          `json:"temperature,omitempty"`
	MaxTokens        *int              `json:"max_tokens,omitempty"`
	TopP             *float64          `json:"top_p,omitempty"`
	Stop             []string          `json:"stop,omitempty"`
	PresencePenalty  *float64          `json:"presence_penalty,omitempty"`
	FrequencyPenalty *float64          `json:"frequency_penalty,omitempty"`
	Stream           bool              `json:"stream,omitempty"`
	ResponseFormat   *ResponseFormat   `json:"response_format,omitempty"`
}

// HasPromptReference reports whether the request names a server-side prompt
// template instead of carrying the full system prompt inline.
func (r *Request) HasPromptReference() bool {
	return r.SystemPromptID != ""
}

// WithStream returns a shallow copy of the request with Stream forced to the
// given value. Adapters use this so the caller's request is never mutated.
func (r *Request) WithStream(stream bool) *Request {
	cp := *r
	cp.Stream = stream
	return &cp
}

// RequestBuilder accumulates messages and options for a Request.
type RequestBuilder struct {
	req Request
}

// NewRequest starts an empty request builder.
func NewRequest() *RequestBuilder {
	return &RequestBuilder{}
}

// System appends a system message.
func (b *RequestBuilder) System(content string) *RequestBuilder {
	return b.Message(NewMessage(RoleSystem, content))
}

// User appends a user message.
func (b *RequestBuilder) User(content string) *RequestBuilder {
	return b.Message(NewMessage(RoleUser, content))
}

// Assistant appends an assistant message.
func (b *RequestBuilder) Assistant(content string) *RequestBuilder {
	return b.Message(NewMessage(RoleAssistant, content))
}

// Message appends an already-built message.
func (b *RequestBuilder) Message(msg Message) *RequestBuilder {
	b.req.Messages = append(b.req.Messages, msg)
	return b
}

// SystemPrompt references a server-side prompt template by id.
func (b *RequestBuilder) SystemPrompt(id string) *RequestBuilder {
	b.req.SystemPromptID = id
	return b
}

// PromptVariable sets one substitution variable for the prompt template.
func (b *RequestBuilder) PromptVariable(key, value string) *RequestBuilder {
	if b.req.PromptVariables == nil {
		b.req.PromptVariables = make(map[string]string)
	}
	b.req.PromptVariables[key] = value
	return b
}

// Temperature sets the sampling temperature.
func (b *RequestBuilder) Temperature(v float64) *RequestBuilder {
	b.req.Temperature = &v
	return b
}

// MaxTokens caps the completion length.
func (b *RequestBuilder) MaxTokens(v int) *RequestBuilder {
	b.req.MaxTokens = &v
	return b
}

// TopP sets nucleus-sampling probability mass.
func (b *RequestBuilder) TopP(v float64) *RequestBuilder {
	b.req.TopP = &v
	return b
}

// Stop sets the stop sequences.
func (b *RequestBuilder) Stop(sequences ...string) *RequestBuilder {
	b.req.Stop = sequences
	return b
}

// PresencePenalty sets the presence penalty.
func (b *RequestBuilder) PresencePenalty(v float64) *RequestBuilder {
	b.req.PresencePenalty = &v
	return b
}

// FrequencyPenalty sets the frequency penalty.
func (b *RequestBuilder) FrequencyPenalty(v float64) *RequestBuilder {
	b.req.FrequencyPenalty = &v
	return b
}

// Stream marks the request as streaming. Adapters override this flag per
// operation regardless of what the caller set.
func (b *RequestBuilder) Stream(v bool) *RequestBuilder {
	b.req.Stream = v
	return b
}

// ResponseFormat sets the requested output shape.
func (b *RequestBuilder) ResponseFormat(f *ResponseFormat) *RequestBuilder {
	b.req.ResponseFormat = f
	return b
}

// Build returns the accumulated request.
func (b *RequestBuilder) Build() *Request {
	return &b.req
}
