package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"modelgate/internal/catalog"
	"modelgate/internal/core"
	"modelgate/internal/providers"
)

type stubProvider struct {
	chatErr error
}

func (s *stubProvider) Name() string            { return "stub" }
func (s *stubProvider) Models() []string        { return nil }
func (s *stubProvider) SupportsStreaming() bool { return true }

func (s *stubProvider) Chat(_ context.Context, model string, _ *core.Request) (*core.Response, error) {
	if s.chatErr != nil {
		return nil, s.chatErr
	}
	return &core.Response{
		ID:           "resp-1",
		Model:        model,
		Message:      core.NewMessage(core.RoleAssistant, "Hello!"),
		FinishReason: core.FinishStop,
		Usage:        core.NewUsage(7, 2),
	}, nil
}

func (s *stubProvider) ChatStream(_ context.Context, _ string, _ *core.Request) (core.ChunkStream, error) {
	return core.NewSliceStream([]core.StreamChunk{
		{ID: "resp-1", Delta: "Hel"},
		{ID: "resp-1", Delta: "lo!"},
		{ID: "resp-1", FinishReason: core.FinishStop},
	}), nil
}

// newTestServer routes every model to the stub via the resolver's fallback.
func newTestServer(cfg *Config, stub core.Provider) (*Server, *catalog.MemoryStore) {
	store := catalog.NewMemoryStore()
	resolver := providers.NewResolver(providers.NewFactory(), store, store, stub, nil)
	return New(resolver, store, cfg), store
}

func TestChatCompletion(t *testing.T) {
	srv, _ := newTestServer(nil, &stubProvider{})

	body := `{"model": "gpt-4o", "messages": [{"role": "user", "content": "hi"}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp chatCompletionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Object != "chat.completion" {
		t.Errorf("object = %q", resp.Object)
	}
	if len(resp.Choices) != 1 || resp.Choices[0].Message.Content != "Hello!" {
		t.Errorf("choices = %+v", resp.Choices)
	}
	if resp.Choices[0].FinishReason != "stop" {
		t.Errorf("finish_reason = %q", resp.Choices[0].FinishReason)
	}
	if resp.Usage == nil || resp.Usage.TotalTokens != 9 {
		t.Errorf("usage = %+v", resp.Usage)
	}
}

func TestChatCompletion_Validation(t *testing.T) {
	srv, _ := newTestServer(nil, &stubProvider{})

	tests := []struct {
		name string
		body string
	}{
		{"missing model", `{"messages": [{"role": "user", "content": "hi"}]}`},
		{"empty messages", `{"model": "gpt-4o", "messages": []}`},
		{"malformed json", `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestChatCompletion_Streaming(t *testing.T) {
	srv, _ := newTestServer(nil, &stubProvider{})

	body := `{"model": "gpt-4o", "stream": true, "messages": [{"role": "user", "content": "hi"}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}

	var text strings.Builder
	sawDone := false
	for _, line := range strings.Split(rec.Body.String(), "\n") {
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")
		if data == "[DONE]" {
			sawDone = true
			continue
		}
		var chunk chatCompletionChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			t.Fatalf("unmarshal chunk %q: %v", data, err)
		}
		if chunk.Object != "chat.completion.chunk" {
			t.Errorf("object = %q", chunk.Object)
		}
		if len(chunk.Choices) == 1 {
			text.WriteString(chunk.Choices[0].Delta.Content)
		}
	}
	if text.String() != "Hello!" {
		t.Errorf("assembled text = %q", text.String())
	}
	if !sawDone {
		t.Error("stream missing terminal [DONE]")
	}
}

func TestChatCompletion_ProviderErrorStatus(t *testing.T) {
	stub := &stubProvider{chatErr: &core.ProviderError{Provider: "stub", StatusCode: 429, Message: "rate limited"}}
	srv, _ := newTestServer(nil, stub)

	body := `{"model": "gpt-4o", "messages": [{"role": "user", "content": "hi"}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "rate limited") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestListModels(t *testing.T) {
	srv, store := newTestServer(nil, &stubProvider{})
	store.PutModel(catalog.Model{ID: "gpt-4o", CredentialID: "c1", ProviderModel: "gpt-4o"})
	store.PutModel(catalog.Model{ID: "claude", CredentialID: "c2", ProviderModel: "claude-3-5-sonnet-20241022"})

	req := httptest.NewRequest(http.MethodGet, "/v1/models", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Object string `json:"object"`
		Data   []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Object != "list" || len(resp.Data) != 2 {
		t.Errorf("resp = %+v", resp)
	}
	// MemoryStore lists sorted by id.
	if resp.Data[0].ID != "claude" || resp.Data[1].ID != "gpt-4o" {
		t.Errorf("ids = %+v", resp.Data)
	}
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(&Config{MasterKey: "secret"}, &stubProvider{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("health must stay public, status = %d", rec.Code)
	}
}

func TestAuth(t *testing.T) {
	srv, _ := newTestServer(&Config{MasterKey: "secret"}, &stubProvider{})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic secret", http.StatusUnauthorized},
		{"wrong key", "Bearer nope", http.StatusUnauthorized},
		{"correct key", "Bearer secret", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/models", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestBodyLimit(t *testing.T) {
	srv, _ := newTestServer(&Config{BodySizeLimit: 64}, &stubProvider{})

	big := `{"model": "gpt-4o", "messages": [{"role": "user", "content": "` +
		strings.Repeat("x", 256) + `"}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", strings.NewReader(big))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}
