// Package httpclient builds pooled *http.Client instances with unified
// timeout and keep-alive settings for all REST adapters.
package httpclient

import (
	"net"
	"net/http"
	"time"
)

// Config holds the connection-pool and timeout settings for an HTTP client.
type Config struct {
	// Timeout bounds the whole request, streaming reads included.
	// Zero means no overall deadline (streaming responses can be long-lived).
	Timeout time.Duration

	// DialTimeout bounds connection establishment.
	DialTimeout time.Duration

	// KeepAlive is the interval between TCP keep-alive probes.
	KeepAlive time.Duration

	// MaxIdleConnsPerHost keeps warm connections to each vendor endpoint.
	MaxIdleConnsPerHost int

	// IdleConnTimeout closes idle pooled connections after this duration.
	IdleConnTimeout time.Duration

	// TLSHandshakeTimeout bounds the TLS handshake.
	TLSHandshakeTimeout time.Duration
}

// DefaultConfig matches the generous deadlines vendor SDKs ship with:
// completions can legitimately run for minutes.
func DefaultConfig() Config {
	return Config{
		Timeout:             10 * time.Minute,
		DialTimeout:         30 * time.Second,
		KeepAlive:           30 * time.Second,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
}

// New builds an *http.Client from the given config.
func New(cfg Config) *http.Client {
	return &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   cfg.DialTimeout,
				KeepAlive: cfg.KeepAlive,
			}).DialContext,
			MaxIdleConns:          cfg.MaxIdleConnsPerHost,
			MaxIdleConnsPerHost:   cfg.MaxIdleConnsPerHost,
			IdleConnTimeout:       cfg.IdleConnTimeout,
			TLSHandshakeTimeout:   cfg.TLSHandshakeTimeout,
			ForceAttemptHTTP2:     true,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

// NewDefault builds an *http.Client with DefaultConfig.
func NewDefault() *http.Client {
	return New(DefaultConfig())
}

// NewWithTimeout builds a client with the default pool settings and a fixed
// overall timeout. Timeout policy lives here, not in the adapters.
func NewWithTimeout(timeout time.Duration) *http.Client {
	cfg := DefaultConfig()
	cfg.Timeout = timeout
	return New(cfg)
}
