// Package llm defines the text-completion boundary and its Gemini implementation.
//
// The generative-text backend is treated as an opaque prompt-to-text
// function. All structure is recovered downstream by the annotation parser,
// so nothing in here knows about points or badges.
package llm

import (
	"context"
	"errors"
)

// Message is one prior exchange passed back as conversation history.
type Message struct {
	Role string // "user" or "persona"
	Text string
}

// Request is a composed prompt: persona instructions, prior history, and the
// latest user turn.
type Request struct {
	System   string
	History  []Message
	UserText string
}

// Provider produces one text completion for a request.
type Provider interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// UpstreamError wraps a backend failure and records whether a retry could
// plausibly succeed (timeouts, rate limits, 5xx).
type UpstreamError struct {
	Err       error
	Retryable bool
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	return "generative-text backend: " + e.Err.Error()
}

// Unwrap returns the wrapped error.
func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err is an upstream failure worth retrying.
func IsRetryable(err error) bool {
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return upstream.Retryable
	}
	return false
}
