package llm

import (
	"errors"
	"fmt"
)

// ErrUnsupportedProvider indicates the requested provider is not registered.
var ErrUnsupportedProvider = errors.New("unsupported provider")

// ErrMissingCredential indicates the provider has no API key configured.
var ErrMissingCredential = errors.New("provider api key not configured")

// errEndOfStream is returned by an adapter when a stream payload is the
// provider's end sentinel.
var errEndOfStream = errors.New("end of stream")

// UpstreamError is a non-200 answer from a provider, or a transport failure
// reaching it. Status and body are passed through verbatim.
type UpstreamError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream error status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("upstream error status %d: %s", e.StatusCode, e.Body)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// DecodeError wraps a malformed provider payload.
type DecodeError struct {
	Provider string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s payload: %v", e.Provider, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
