// Package observability wraps providers with Prometheus instrumentation.
package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"modelgate/internal/core"
)

// Metrics holds the provider-level collectors. One Metrics value is shared by
// every instrumented provider so label cardinality stays per-provider, not
// per-instance.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates and registers the collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "modelgate_provider_requests_total",
			Help: "Provider requests by outcome.",
		}, []string{"provider", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "modelgate_provider_request_seconds",
			Help:    "Provider request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

// Instrument wraps a provider so every Chat and ChatStream call is counted
// and timed. The wrapped value satisfies core.Provider unchanged.
func (m *Metrics) Instrument(p core.Provider) core.Provider {
	return &instrumented{inner: p, metrics: m}
}

type instrumented struct {
	inner   core.Provider
	metrics *Metrics
}

func (i *instrumented) Name() string            { return i.inner.Name() }
func (i *instrumented) Models() []string        { return i.inner.Models() }
func (i *instrumented) SupportsStreaming() bool { return i.inner.SupportsStreaming() }

func (i *instrumented) Chat(ctx context.Context, model string, req *core.Request) (*core.Response, error) {
	start := time.Now()
	resp, err := i.inner.Chat(ctx, model, req)
	i.observe(start, err)
	return resp, err
}

// ChatStream counts stream establishment, not chunk delivery; a stream that
// fails mid-flight is still counted as success here.
func (i *instrumented) ChatStream(ctx context.Context, model string, req *core.Request) (core.ChunkStream, error) {
	start := time.Now()
	stream, err := i.inner.ChatStream(ctx, model, req)
	i.observe(start, err)
	return stream, err
}

func (i *instrumented) observe(start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	name := i.inner.Name()
	i.metrics.requests.WithLabelValues(name, outcome).Inc()
	i.metrics.duration.WithLabelValues(name).Observe(time.Since(start).Seconds())
}
