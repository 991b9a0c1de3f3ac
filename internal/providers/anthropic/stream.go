package anthropic

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"

	"modelgate/internal/core"
)

const maxEventSize = 1024 * 1024

// eventReader converts Anthropic typed SSE events into domain chunks. Unlike
// the chat-completions stream, every data line carries a "type" field and the
// stream ends with an explicit message_stop event.
type eventReader struct {
	model   string
	body    io.ReadCloser
	scanner *bufio.Scanner

	messageID string
	usage     *core.Usage

	done   bool
	closed bool
}

func newEventReader(model string, body io.ReadCloser) *eventReader {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxEventSize)
	return &eventReader{model: model, body: body, scanner: scanner}
}

type streamEvent struct {
	Type    string `json:"type"`
	Message struct {
		ID    string `json:"id"`
		Usage struct {
			InputTokens int `json:"input_tokens"`
		} `json:"usage"`
	} `json:"message"`
	Delta struct {
		Type       string `json:"type"`
		Text       string `json:"text"`
		StopReason string `json:"stop_reason"`
	} `json:"delta"`
	Usage struct {
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Recv returns the next chunk. Event types other than content_block_delta,
// message_delta, message_stop and error are skipped; new event types the API
// grows must not break consumers.
func (r *eventReader) Recv() (core.StreamChunk, error) {
	if r.done || r.closed {
		return core.StreamChunk{}, io.EOF
	}

	for r.scanner.Scan() {
		line := strings.TrimSpace(r.scanner.Text())
		if line == "" || !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))

		var event streamEvent
		if err := json.Unmarshal([]byte(data), &event); err != nil {
			return core.StreamChunk{}, core.NewProviderError(providerName, "malformed stream event: "+err.Error(), err)
		}

		switch event.Type {
		case "message_start":
			r.messageID = event.Message.ID
			r.usage = core.NewUsage(event.Message.Usage.InputTokens, 0)

		case "content_block_delta":
			if event.Delta.Type != "text_delta" || event.Delta.Text == "" {
				continue
			}
			return core.StreamChunk{ID: r.messageID, Model: r.model, Delta: event.Delta.Text}, nil

		case "message_delta":
			// Carries the stop reason and output token count. A stop reason
			// yields its own finish chunk; the terminal chunk comes from
			// message_stop.
			if r.usage != nil {
				r.usage = core.NewUsage(r.usage.PromptTokens, event.Usage.OutputTokens)
			} else {
				r.usage = core.NewUsage(0, event.Usage.OutputTokens)
			}
			if event.Delta.StopReason == "" {
				continue
			}
			return core.StreamChunk{
				ID:           r.messageID,
				Model:        r.model,
				FinishReason: mapStopReason(event.Delta.StopReason),
				Usage:        r.usage,
			}, nil

		case "message_stop":
			r.finish()
			return core.StreamChunk{ID: r.messageID, Model: r.model, FinishReason: core.FinishStop}, nil

		case "error":
			r.finish()
			return core.StreamChunk{}, core.NewProviderError(providerName, event.Error.Message, nil)
		}
	}

	if err := r.scanner.Err(); err != nil {
		r.finish()
		return core.StreamChunk{}, core.NewProviderError(providerName, "stream read failed: "+err.Error(), err)
	}

	r.finish()
	return core.StreamChunk{}, io.EOF
}

func (r *eventReader) finish() {
	if !r.done {
		r.done = true
		_ = r.body.Close()
	}
}

// Close stops consumption and releases the underlying connection.
func (r *eventReader) Close() error {
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
