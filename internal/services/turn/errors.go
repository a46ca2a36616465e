// File: internal/services/turn/errors.go
package turn

import (
	"errors"
	"fmt"
)

type ErrorType string

const (
	// ErrTypeValidation marks malformed requests; surfaced to the caller as a
	// 4xx-equivalent before any side effect.
	ErrTypeValidation ErrorType = "VALIDATION"
	// ErrTypeStore marks persistence failures; fatal to the turn since no
	// fallback is possible when the store itself is down.
	ErrTypeStore ErrorType = "STORE"
)

type TurnError struct {
	Type           ErrorType
	Operation      string
	Message        string
	ConversationID uint
	UserID         uint
	Cause          error
}

func (e *TurnError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("turn %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("turn %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *TurnError) Unwrap() error { return e.Cause }

func NewValidationError(operation, msg string) *TurnError {
	return &TurnError{Type: ErrTypeValidation, Operation: operation, Message: msg}
}

func NewUnauthorizedError(userID, conversationID uint) *TurnError {
	return &TurnError{
		Type:           ErrTypeValidation,
		Operation:      "authorization",
		Message:        "conversation not found or unauthorized",
		UserID:         userID,
		ConversationID: conversationID,
	}
}

func NewStoreError(operation, msg string, cause error) *TurnError {
	return &TurnError{Type: ErrTypeStore, Operation: operation, Message: msg, Cause: cause}
}

// IsValidationError reports whether err is a caller-visible validation error.
func IsValidationError(err error) bool {
	var turnErr *TurnError
	return errors.As(err, &turnErr) && turnErr.Type == ErrTypeValidation
}
