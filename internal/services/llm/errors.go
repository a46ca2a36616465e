// File: internal/services/llm/errors.go
package llm

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies generation failures. All kinds are recoverable from
// the orchestrator's point of view.
type ErrorKind string

const (
	ErrKindTimeout            ErrorKind = "TIMEOUT"
	ErrKindAuthFailure        ErrorKind = "AUTH_FAILURE"
	ErrKindRateLimited        ErrorKind = "RATE_LIMITED"
	ErrKindMalformedResponse  ErrorKind = "MALFORMED_RESPONSE"
	ErrKindBackendUnavailable ErrorKind = "BACKEND_UNAVAILABLE"
)

// GenerationError is the error type every backend variant returns.
type GenerationError struct {
	Kind    ErrorKind
	Backend string
	Message string
	Cause   error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("generation %s error from %s backend: %s (caused by: %v)",
			e.Kind, e.Backend, e.Message, e.Cause)
	}
	return fmt.Sprintf("generation %s error from %s backend: %s", e.Kind, e.Backend, e.Message)
}

func (e *GenerationError) Unwrap() error { return e.Cause }

func NewGenerationError(kind ErrorKind, backend, msg string, cause error) *GenerationError {
	return &GenerationError{Kind: kind, Backend: backend, Message: msg, Cause: cause}
}

// wrapContextError converts context cancellation/expiry into a timeout error.
func wrapContextError(backend string, err error) *GenerationError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewGenerationError(ErrKindTimeout, backend, "generation timed out", err)
	}
	return nil
}
