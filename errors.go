package chatcore

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput indicates invalid input was provided.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConversationNotFound indicates the conversation was not found.
	ErrConversationNotFound = errors.New("conversation not found")

	// ErrPipelineExhausted indicates every stage abstained and no fallback
	// template exists for the request language.
	ErrPipelineExhausted = errors.New("pipeline exhausted")
)

// Error codes surfaced to HTTP clients.
const (
	ErrCodeValidation    = "validation_error"
	ErrCodeNotFound      = "not_found"
	ErrCodeTimeout       = "timeout"
	ErrCodeConfiguration = "configuration_error"
	ErrCodeInternal      = "internal_error"
)

// CoreError carries a stable machine-readable code alongside the message.
type CoreError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

func (e *CoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CoreError) Unwrap() error {
	return e.Err
}

// NewCoreError creates a CoreError with the given code.
func NewCoreError(code, message string, err error) *CoreError {
	return &CoreError{Code: code, Message: message, Err: err}
}

// NewConfigurationError creates a configuration error.
func NewConfigurationError(message string, err error) *CoreError {
	return NewCoreError(ErrCodeConfiguration, message, err)
}
