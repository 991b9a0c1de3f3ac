package openai

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"

	"modelgate/internal/core"
)

// maxEventSize bounds a single SSE line. Vendor deltas are small, but a
// json_schema response can put a whole object in one event.
const maxEventSize = 1024 * 1024

// ChunkReader converts the chat-completions SSE byte stream into domain
// chunks. One reader consumes one response body; it is not safe for
// concurrent use, matching the single-consumer stream contract.
type ChunkReader struct {
	provider string
	model    string
	body     io.ReadCloser
	scanner  *bufio.Scanner
	lastID   string
	done     bool
	closed   bool
}

// NewChunkReader wraps a raw SSE body. Azure OpenAI uses the same framing
// and reuses this reader.
func NewChunkReader(provider, model string, body io.ReadCloser) *ChunkReader {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxEventSize)
	return &ChunkReader{
		provider: provider,
		model:    model,
		body:     body,
		scanner:  scanner,
	}
}

type chunkEnvelope struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage *wireUsage `json:"usage"`
}

// Recv returns the next chunk. A literal "data: [DONE]" line is translated
// into a terminal chunk carrying FinishStop, never passed through as content.
func (r *ChunkReader) Recv() (core.StreamChunk, error) {
	if r.done || r.closed {
		return core.StreamChunk{}, io.EOF
	}

	for r.scanner.Scan() {
		line := strings.TrimSpace(r.scanner.Text())
		if line == "" || !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))

		if data == "[DONE]" {
			r.finish()
			return core.StreamChunk{ID: r.lastID, Model: r.model, FinishReason: core.FinishStop}, nil
		}

		var event chunkEnvelope
		if err := json.Unmarshal([]byte(data), &event); err != nil {
			// Malformed event; the stream itself stays consumable.
			return core.StreamChunk{}, core.NewProviderError(r.provider, "malformed stream event: "+err.Error(), err)
		}

		if event.ID != "" {
			r.lastID = event.ID
		}
		if len(event.Choices) == 0 {
			continue
		}

		choice := event.Choices[0]
		if choice.Delta.Content == "" && choice.FinishReason == "" {
			continue // role announcements and keep-alives
		}

		chunk := core.StreamChunk{
			ID:    event.ID,
			Model: r.model,
			Delta: choice.Delta.Content,
		}
		if event.Model != "" {
			chunk.Model = event.Model
		}
		if choice.FinishReason != "" {
			chunk.FinishReason = MapFinishReason(choice.FinishReason)
		}
		if event.Usage != nil {
			chunk.Usage = core.NewUsage(event.Usage.PromptTokens, event.Usage.CompletionTokens)
		}
		return chunk, nil
	}

	if err := r.scanner.Err(); err != nil {
		r.finish()
		return core.StreamChunk{}, core.NewProviderError(r.provider, "stream read failed: "+err.Error(), err)
	}

	// Body ended without [DONE]; treat as normal exhaustion.
	r.finish()
	return core.StreamChunk{}, io.EOF
}

func (r *ChunkReader) finish() {
	if !r.done {
		r.done = true
		_ = r.body.Close()
	}
}

// Close stops consumption and releases the underlying connection. Safe to
// call before exhaustion and more than once.
func (r *ChunkReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if r.done {
		return nil
	}
	r.done = true
	return r.body.Close()
}
