package core

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// ProviderError is the single error kind surfaced to callers of the provider
// layer. Every failure cause (non-2xx response, serialization failure,
// missing fields, unsupported operation, misconfiguration) maps into this
// type rather than leaking transport-specific errors.
type ProviderError struct {
	Provider   string
	StatusCode int // 0 when no HTTP exchange took place
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("[%s] status %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError builds a ProviderError without an HTTP status.
func NewProviderError(provider, message string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Message: message, Err: err}
}

// NewConfigError reports a configuration problem detected before any network
// call (credential/kind mismatch, unsupported construction path).
func NewConfigError(provider, message string) *ProviderError {
	return &ProviderError{Provider: provider, Message: "configuration error: " + message}
}

// NewUnsupportedError reports an operation the provider deliberately does not
// implement, as opposed to a transient failure.
func NewUnsupportedError(provider, operation string) *ProviderError {
	return &ProviderError{Provider: provider, Message: operation + " is not supported"}
}

// ParseVendorError lifts a human-readable message out of a vendor error body
// and wraps it with the HTTP status. When a structured error.message field is
// extracted, the raw body is retained as the wrapped cause; with no
// structured field the raw body is the message itself. Vendor detail is never
// swallowed either way.
func ParseVendorError(provider string, statusCode int, body []byte) *ProviderError {
	message := string(body)
	var cause error
	if m := gjson.GetBytes(body, "error.message"); m.Exists() && m.String() != "" {
		message = m.String()
		cause = errors.New(string(body))
	} else if m := gjson.GetBytes(body, "message"); m.Exists() && m.String() != "" {
		message = m.String()
		cause = errors.New(string(body))
	}
	return &ProviderError{Provider: provider, StatusCode: statusCode, Message: message, Err: cause}
}
