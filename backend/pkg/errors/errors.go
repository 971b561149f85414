package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeGeneration represents failures of the text-generation capability
	ErrorTypeGeneration ErrorType = "generation"
	// ErrorTypeExtraction represents unparseable extraction output
	ErrorTypeExtraction ErrorType = "extraction"
	// ErrorTypeStore represents relational store errors
	ErrorTypeStore ErrorType = "store"
	// ErrorTypeNotFound represents missing rows
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeValidation represents rejected input
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeContext represents context cancellation/timeout errors
	ErrorTypeContext ErrorType = "context"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// Kind returns the error category
func (e *BaseError) Kind() ErrorType {
	return e.Type
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Generation Errors

// ErrGenerationFailed is returned when the generation capability fails after retries
type ErrGenerationFailed struct {
	*BaseError
	Model     string
	Attempts  int
	Retryable bool
}

func NewGenerationFailed(model string, attempts int, retryable bool, err error) *ErrGenerationFailed {
	return &ErrGenerationFailed{
		BaseError: NewBaseError(ErrorTypeGeneration, fmt.Sprintf("generation request failed after %d attempts", attempts), err),
		Model:     model,
		Attempts:  attempts,
		Retryable: retryable,
	}
}

// ErrGenerationUnavailable is returned when the capability refuses the call outright
// (missing credentials, circuit open, stub without a script).
type ErrGenerationUnavailable struct {
	*BaseError
	Reason string
}

func NewGenerationUnavailable(reason string, err error) *ErrGenerationUnavailable {
	return &ErrGenerationUnavailable{
		BaseError: NewBaseError(ErrorTypeGeneration, fmt.Sprintf("generation unavailable: %s", reason), err),
		Reason:    reason,
	}
}

// ErrGenerationNoResponse is returned when the capability answers without any choice
var ErrGenerationNoResponse = NewBaseError(ErrorTypeGeneration, "no response from generation capability", nil)

// Extraction Errors

// ErrExtractionParseFailed is returned when the text between the outer braces is not valid JSON
type ErrExtractionParseFailed struct {
	*BaseError
	Raw string
}

func NewExtractionParseFailed(raw string, err error) *ErrExtractionParseFailed {
	return &ErrExtractionParseFailed{
		BaseError: NewBaseError(ErrorTypeExtraction, "failed to parse extraction response", err),
		Raw:       raw,
	}
}

// Store Errors

// ErrStoreOperationFailed wraps a failed store query or statement
type ErrStoreOperationFailed struct {
	*BaseError
	Operation string
}

func NewStoreOperationFailed(operation string, err error) *ErrStoreOperationFailed {
	return &ErrStoreOperationFailed{
		BaseError: NewBaseError(ErrorTypeStore, fmt.Sprintf("store operation failed: %s", operation), err),
		Operation: operation,
	}
}

// ErrEventNotFound is returned when an event does not exist for the user
type ErrEventNotFound struct {
	*BaseError
	UserID  string
	EventID uint
}

func NewEventNotFound(userID string, eventID uint) *ErrEventNotFound {
	return &ErrEventNotFound{
		BaseError: NewBaseError(ErrorTypeNotFound, fmt.Sprintf("event %d not found for user %s", eventID, userID), nil),
		UserID:    userID,
		EventID:   eventID,
	}
}

// Validation Errors

// ErrValidationFailed is returned when input is rejected
type ErrValidationFailed struct {
	*BaseError
	Field  string
	Reason string
}

func NewValidationFailed(field, reason string) *ErrValidationFailed {
	return &ErrValidationFailed{
		BaseError: NewBaseError(ErrorTypeValidation, fmt.Sprintf("invalid %s: %s", field, reason), nil),
		Field:     field,
		Reason:    reason,
	}
}

// Context Errors

// ErrContextTimeout is returned when context times out
type ErrContextTimeout struct {
	*BaseError
	Operation string
	Timeout   time.Duration
}

func NewContextTimeout(operation string, timeout time.Duration, err error) *ErrContextTimeout {
	return &ErrContextTimeout{
		BaseError: NewBaseError(ErrorTypeContext, fmt.Sprintf("context timeout: %s (timeout: %v)", operation, timeout), err),
		Operation: operation,
		Timeout:   timeout,
	}
}

// Config Errors

// ErrConfigMissingRequired is returned when a required config value is missing
type ErrConfigMissingRequired struct {
	*BaseError
	Field string
}

func NewConfigMissingRequired(field string) *ErrConfigMissingRequired {
	return &ErrConfigMissingRequired{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("missing required config: %s", field), nil),
		Field:     field,
	}
}

// Helper functions

type kinded interface {
	Kind() ErrorType
}

// IsErrorType checks if an error, or anything it wraps, is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	for err != nil {
		if k, ok := err.(kinded); ok && k.Kind() == errType {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	// Context errors are not retryable
	if IsErrorType(err, ErrorTypeContext) {
		return false
	}
	var genErr *ErrGenerationFailed
	if stderrors.As(err, &genErr) {
		return genErr.Retryable
	}
	// Store connection hiccups might be retryable
	if IsErrorType(err, ErrorTypeStore) {
		return true
	}
	return false
}
