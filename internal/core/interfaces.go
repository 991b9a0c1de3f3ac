// Package core defines the vendor-neutral domain model and the provider
// contract for the LLM gateway.
package core

import "context"

// Provider is the capability contract every vendor adapter implements.
// Callers hold a Provider and never branch on vendor identity. Adapter
// instances are immutable after construction and safe for concurrent use.
type Provider interface {
	// Name returns the provider identifier used in errors, logs and metrics.
	Name() string

	// Models returns a static, best-effort catalog of model identifiers.
	// Empty for vendors whose identifiers are deployment-specific and not
	// enumerable (Azure, Bedrock).
	Models() []string

	// SupportsStreaming reports whether ChatStream is implemented.
	SupportsStreaming() bool

	// Chat executes a blocking chat completion. The request's Stream flag is
	// forced to false regardless of caller intent.
	Chat(ctx context.Context, model string, req *Request) (*Response, error)

	// ChatStream starts a streaming chat completion; Stream is forced to
	// true. The returned error reports failure to start the stream; failures
	// after that surface from ChunkStream.Recv.
	ChatStream(ctx context.Context, model string, req *Request) (ChunkStream, error)
}
