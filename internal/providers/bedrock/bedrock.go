// Package bedrock implements the provider contract over AWS Bedrock's
// InvokeModel API. Bedrock is not an HTTP+JSON vendor like the others: calls
// go through the AWS SDK with SigV4 signing, and each model family defines
// its own request envelope inside the invoke body.
package bedrock

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"modelgate/internal/core"
)

const providerName = "bedrock"

// Invoker is the slice of the Bedrock runtime client this adapter needs.
// *bedrockruntime.Client satisfies it; tests inject a fake.
type Invoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// Provider implements core.Provider for AWS Bedrock.
type Provider struct {
	client Invoker
	region string
}

// New creates a Bedrock provider around an already-configured runtime client.
func New(client Invoker, region string) *Provider {
	return &Provider{client: client, region: region}
}

// Name implements core.Provider.
func (p *Provider) Name() string { return providerName }

// SupportsStreaming implements core.Provider. InvokeModel is a unary call;
// streaming requires InvokeModelWithResponseStream, which this adapter does
// not implement.
func (p *Provider) SupportsStreaming() bool { return false }

// Models implements core.Provider. Bedrock model access is account and
// region specific, so there is no static catalog to report.
func (p *Provider) Models() []string { return nil }

// Chat implements core.Provider. The model id selects the envelope family:
// Anthropic models use the Bedrock messages schema, everything else the Titan
// text schema.
func (p *Provider) Chat(ctx context.Context, model string, req *core.Request) (*core.Response, error) {
	if isClaudeFamily(model) {
		return p.invokeClaude(ctx, model, req)
	}
	return p.invokeTitan(ctx, model, req)
}

// ChatStream implements core.Provider.
func (p *Provider) ChatStream(_ context.Context, _ string, _ *core.Request) (core.ChunkStream, error) {
	return nil, core.NewUnsupportedError(providerName, "streaming")
}

func isClaudeFamily(model string) bool {
	lower := strings.ToLower(model)
	return strings.Contains(lower, "anthropic") || strings.Contains(lower, "claude")
}
