package llm

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed generation call.
type ErrorKind int

const (
	// UpstreamError covers any other non-2xx status, transport failures, timeouts
	// and replies without content. Retriable with backoff.
	UpstreamError ErrorKind = iota
	// RateLimited is HTTP 429. The caller should retry later, not immediately.
	RateLimited
	// QuotaExhausted is HTTP 402. Not retriable without operator action.
	QuotaExhausted
	// ConfigurationError means the client cannot be used at all, e.g. no credential.
	ConfigurationError
)

func (k ErrorKind) String() string {
	switch k {
	case RateLimited:
		return "rate_limited"
	case QuotaExhausted:
		return "quota_exhausted"
	case ConfigurationError:
		return "configuration_error"
	default:
		return "upstream_error"
	}
}

// GenerationError is the only error type returned by Client.Generate.
type GenerationError struct {
	Kind       ErrorKind
	StatusCode int // 0 when no HTTP response was received
	Message    string
	Err        error
}

func (e *GenerationError) Error() string {
	msg := fmt.Sprintf("generation failed (%s", e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(", status %d", e.StatusCode)
	}
	msg += "): " + e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the same request may succeed when retried with backoff.
// RateLimited is retriable by the caller later but is never retried automatically.
func (e *GenerationError) Retryable() bool {
	return e.Kind == UpstreamError
}

// UserMessage is the text shown to an end user for this failure.
func (e *GenerationError) UserMessage() string {
	switch e.Kind {
	case RateLimited:
		return "Rate limit exceeded. Please try again in a moment."
	case QuotaExhausted:
		return "AI credits exhausted. Please add credits to your workspace to continue."
	case ConfigurationError:
		return "The notes generator is not configured. Set an API key for the AI gateway."
	default:
		return "Failed to generate notes. Please try again."
	}
}

// KindOf returns the kind of err if it is (or wraps) a GenerationError.
func KindOf(err error) (ErrorKind, bool) {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr.Kind, true
	}
	return 0, false
}

func newError(kind ErrorKind, status int, message string, err error) *GenerationError {
	return &GenerationError{Kind: kind, StatusCode: status, Message: message, Err: err}
}

func kindForStatus(status int) ErrorKind {
	switch status {
	case 429:
		return RateLimited
	case 402:
		return QuotaExhausted
	default:
		return UpstreamError
	}
}
