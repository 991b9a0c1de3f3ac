// Package transport provides the narrow JSON-over-HTTP abstraction every
// REST adapter depends on. It owns request marshaling and non-2xx error
// surfacing; SSE framing is deliberately left to the adapters so the
// transport stays vendor-agnostic.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"modelgate/internal/core"
	"modelgate/internal/httpclient"
)

// Transport executes JSON POST requests against a vendor endpoint.
// Implementations are safe for concurrent use; tests substitute their own.
type Transport interface {
	// PostJSON sends body as JSON and returns the raw response body.
	// Any non-2xx status is returned as a *core.ProviderError carrying the
	// status code and the response body text verbatim.
	PostJSON(ctx context.Context, url string, headers map[string]string, body any) ([]byte, error)

	// PostJSONStream sends body as JSON and returns the raw byte stream of
	// the response body. The caller owns the ReadCloser; closing it releases
	// the connection.
	PostJSONStream(ctx context.Context, url string, headers map[string]string, body any) (io.ReadCloser, error)
}

// HTTPTransport is the production Transport over a pooled http.Client.
// Immutable after construction.
type HTTPTransport struct {
	client   *http.Client
	provider string
}

// New builds a transport that tags errors with the given provider name.
func New(provider string) *HTTPTransport {
	return &HTTPTransport{client: httpclient.NewDefault(), provider: provider}
}

// NewWithClient builds a transport over a caller-supplied client. Timeout
// policy is the client's configuration; the transport adds none of its own.
func NewWithClient(provider string, client *http.Client) *HTTPTransport {
	if client == nil {
		client = httpclient.NewDefault()
	}
	return &HTTPTransport{client: client, provider: provider}
}

func (t *HTTPTransport) build(ctx context.Context, url string, headers map[string]string, body any) (*http.Request, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, core.NewProviderError(t.provider, "failed to marshal request: "+err.Error(), err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, core.NewProviderError(t.provider, "failed to create request: "+err.Error(), err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

// PostJSON implements Transport.
func (t *HTTPTransport) PostJSON(ctx context.Context, url string, headers map[string]string, body any) ([]byte, error) {
	req, err := t.build(ctx, url, headers, body)
	if err != nil {
		return nil, err
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, core.NewProviderError(t.provider, "request failed: "+err.Error(), err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.NewProviderError(t.provider, "failed to read response: "+err.Error(), err)
	}

	if resp.StatusCode/100 != 2 {
		return nil, core.ParseVendorError(t.provider, resp.StatusCode, respBody)
	}
	return respBody, nil
}

// PostJSONStream implements Transport.
func (t *HTTPTransport) PostJSONStream(ctx context.Context, url string, headers map[string]string, body any) (io.ReadCloser, error) {
	req, err := t.build(ctx, url, headers, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, core.NewProviderError(t.provider, "request failed: "+err.Error(), err)
	}

	if resp.StatusCode/100 != 2 {
		respBody, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			respBody = []byte("failed to read error response")
		}
		_ = resp.Body.Close()
		return nil, core.ParseVendorError(t.provider, resp.StatusCode, respBody)
	}
	return resp.Body, nil
}
