package anthropic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"modelgate/internal/core"
)

func TestBuildMessagesBody(t *testing.T) {
	req := core.NewRequest().
		System("You are terse.").
		User("hi").
		Assistant("hello").
		System("Answer in French.").
		User("how are you?").
		Temperature(0.5).
		Stop("END").
		Build()

	body := buildMessagesBody("claude-3-5-sonnet-20241022", req)

	if body.System != "You are terse.\nAnswer in French." {
		t.Errorf("System = %q", body.System)
	}
	if len(body.Messages) != 3 {
		t.Fatalf("len(Messages) = %d, want 3", len(body.Messages))
	}
	wantRoles := []string{"user", "assistant", "user"}
	for i, want := range wantRoles {
		if body.Messages[i].Role != want {
			t.Errorf("Messages[%d].Role = %q, want %q", i, body.Messages[i].Role, want)
		}
	}
	if body.MaxTokens != defaultMaxTokens {
		t.Errorf("MaxTokens = %d, want default %d", body.MaxTokens, defaultMaxTokens)
	}
	if len(body.StopSequences) != 1 || body.StopSequences[0] != "END" {
		t.Errorf("StopSequences = %v", body.StopSequences)
	}
}

func TestBuildMessagesBody_ExplicitMaxTokens(t *testing.T) {
	req := core.NewRequest().User("hi").MaxTokens(128).Build()
	if body := buildMessagesBody("m", req); body.MaxTokens != 128 {
		t.Errorf("MaxTokens = %d", body.MaxTokens)
	}
}

func TestChat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if key := r.Header.Get("x-api-key"); key != "test-key" {
			t.Errorf("x-api-key = %q", key)
		}
		if v := r.Header.Get("anthropic-version"); v != "2023-06-01" {
			t.Errorf("anthropic-version = %q", v)
		}

		var sent messagesBody
		if err := json.NewDecoder(r.Body).Decode(&sent); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if sent.MaxTokens == 0 {
			t.Error("max_tokens must always be sent")
		}

		_, _ = w.Write([]byte(`{
			"id": "msg_01",
			"model": "claude-3-5-sonnet-20241022",
			"content": [{"type": "text", "text": "Bon"}, {"type": "text", "text": "jour"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 12, "output_tokens": 3}
		}`))
	}))
	defer server.Close()

	p := New(Config{APIKey: "test-key", BaseURL: server.URL})
	resp, err := p.Chat(context.Background(), "claude-3-5-sonnet-20241022", core.NewRequest().User("salut").Build())
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if resp.Content() != "Bonjour" {
		t.Errorf("Content() = %q, want concatenated blocks", resp.Content())
	}
	if resp.FinishReason != core.FinishStop {
		t.Errorf("FinishReason = %q", resp.FinishReason)
	}
	if resp.Usage == nil || resp.Usage.TotalTokens != 15 {
		t.Errorf("Usage = %+v, want total 15", resp.Usage)
	}
}

func TestChat_NoTextContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":"msg_01","content":[],"stop_reason":"end_turn"}`))
	}))
	defer server.Close()

	p := New(Config{APIKey: "k", BaseURL: server.URL})
	_, err := p.Chat(context.Background(), "m", core.NewRequest().User("hi").Build())
	if err == nil || !strings.Contains(err.Error(), "no text content") {
		t.Errorf("error = %v", err)
	}
}

func TestMapStopReason(t *testing.T) {
	tests := []struct {
		vendor string
		want   core.FinishReason
	}{
		{"end_turn", core.FinishStop},
		{"stop_sequence", core.FinishStop},
		{"max_tokens", core.FinishLength},
		{"tool_use", core.FinishToolCalls},
		{"unknown_future_reason", core.FinishStop},
	}
	for _, tt := range tests {
		if got := mapStopReason(tt.vendor); got != tt.want {
			t.Errorf("mapStopReason(%q) = %q, want %q", tt.vendor, got, tt.want)
		}
	}
}

func streamFromBody(body string) *eventReader {
	return newEventReader("claude-3-5-sonnet-20241022", io.NopCloser(strings.NewReader(body)))
}

func TestEventReader_FullMessage(t *testing.T) {
	stream := streamFromBody(
		"event: message_start\n" +
			"data: {\"type\":\"message_start\",\"message\":{\"id\":\"msg_01\",\"usage\":{\"input_tokens\":10}}}\n\n" +
			"event: content_block_start\n" +
			"data: {\"type\":\"content_block_start\",\"content_block\":{\"type\":\"text\"}}\n\n" +
			"data: {\"type\":\"content_block_delta\",\"delta\":{\"type\":\"text_delta\",\"text\":\"Hel\"}}\n\n" +
			"data: {\"type\":\"content_block_delta\",\"delta\":{\"type\":\"text_delta\",\"text\":\"lo\"}}\n\n" +
			"data: {\"type\":\"message_delta\",\"delta\":{\"stop_reason\":\"max_tokens\"},\"usage\":{\"output_tokens\":4}}\n\n" +
			"data: {\"type\":\"message_stop\"}\n\n")
	defer func() {
		_ = stream.Close()
	}()

	var chunks []core.StreamChunk
	for {
		chunk, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Recv: %v", err)
		}
		chunks = append(chunks, chunk)
	}

	// Two content chunks, the stop-reason chunk from message_delta, then the
	// terminal stop chunk from message_stop.
	if len(chunks) != 4 {
		t.Fatalf("len(chunks) = %d, want 4: %+v", len(chunks), chunks)
	}
	if text := chunks[0].Delta + chunks[1].Delta; text != "Hello" {
		t.Errorf("assembled text = %q", text)
	}

	finish := chunks[2]
	if finish.FinishReason != core.FinishLength {
		t.Errorf("finish chunk reason = %q, want length", finish.FinishReason)
	}
	if finish.Usage == nil || finish.Usage.TotalTokens != 14 {
		t.Errorf("finish chunk usage = %+v, want total 14", finish.Usage)
	}
	if finish.ID != "msg_01" {
		t.Errorf("finish chunk ID = %q", finish.ID)
	}

	terminal := chunks[3]
	if terminal.FinishReason != core.FinishStop {
		t.Errorf("terminal chunk reason = %q, want stop", terminal.FinishReason)
	}
	if terminal.Delta != "" {
		t.Errorf("terminal chunk delta = %q, want empty", terminal.Delta)
	}
}

func TestEventReader_UnknownEventsSkipped(t *testing.T) {
	stream := streamFromBody(
		"data: {\"type\":\"ping\"}\n\n" +
			"data: {\"type\":\"some_future_event\",\"payload\":true}\n\n" +
			"data: {\"type\":\"content_block_delta\",\"delta\":{\"type\":\"text_delta\",\"text\":\"ok\"}}\n\n" +
			"data: {\"type\":\"message_stop\"}\n\n")

	chunk, err := stream.Recv()
	if err != nil || chunk.Delta != "ok" {
		t.Fatalf("Recv = (%+v, %v), want ok delta", chunk, err)
	}
}

func TestEventReader_StopWithoutContent(t *testing.T) {
	stream := streamFromBody("data: {\"type\":\"message_stop\"}\n\n")

	chunk, err := stream.Recv()
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}
	if chunk.Delta != "" {
		t.Errorf("Delta = %q, want empty", chunk.Delta)
	}
	if chunk.FinishReason != core.FinishStop {
		t.Errorf("FinishReason = %q, want stop", chunk.FinishReason)
	}
	if _, err := stream.Recv(); err != io.EOF {
		t.Errorf("second Recv = %v, want io.EOF", err)
	}
}

func TestEventReader_ErrorEvent(t *testing.T) {
	stream := streamFromBody(
		"data: {\"type\":\"error\",\"error\":{\"type\":\"overloaded_error\",\"message\":\"Overloaded\"}}\n\n")

	_, err := stream.Recv()
	if err == nil || !strings.Contains(err.Error(), "Overloaded") {
		t.Errorf("error = %v, want vendor message", err)
	}
	if _, err := stream.Recv(); err != io.EOF {
		t.Errorf("Recv after error = %v, want io.EOF", err)
	}
}
