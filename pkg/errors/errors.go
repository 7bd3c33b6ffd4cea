package errors

import (
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeConnection represents graph store connectivity errors
	ErrorTypeConnection ErrorType = "connection"
	// ErrorTypeSchema represents index/constraint creation errors
	ErrorTypeSchema ErrorType = "schema"
	// ErrorTypeValidation represents malformed caller input
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeIngest represents episode write failures
	ErrorTypeIngest ErrorType = "ingest"
	// ErrorTypeQuery represents store-side query failures
	ErrorTypeQuery ErrorType = "query"
	// ErrorTypeLLM represents completion-provider errors
	ErrorTypeLLM ErrorType = "llm"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
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

// Kind returns the error category. Wrapper types embedding BaseError
// inherit it, which keeps IsErrorType working across the whole family.
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

// Connection errors

// ErrConnectionFailed is returned when the graph store is unreachable
type ErrConnectionFailed struct {
	*BaseError
	Addr string
}

func NewConnectionFailed(addr string, err error) *ErrConnectionFailed {
	return &ErrConnectionFailed{
		BaseError: NewBaseError(ErrorTypeConnection, fmt.Sprintf("graph store unreachable: %s", addr), err),
		Addr:      addr,
	}
}

// Schema errors

// ErrSchemaSetupFailed is returned when index or constraint creation fails
// against an existing incompatible schema
type ErrSchemaSetupFailed struct {
	*BaseError
	Index string
}

func NewSchemaSetupFailed(index string, err error) *ErrSchemaSetupFailed {
	return &ErrSchemaSetupFailed{
		BaseError: NewBaseError(ErrorTypeSchema, fmt.Sprintf("schema setup failed: %s", index), err),
		Index:     index,
	}
}

// Validation errors

// ErrInvalidInput is returned when caller input is malformed
type ErrInvalidInput struct {
	*BaseError
	Field string
}

func NewInvalidInput(field, reason string) *ErrInvalidInput {
	return &ErrInvalidInput{
		BaseError: NewBaseError(ErrorTypeValidation, fmt.Sprintf("invalid %s: %s", field, reason), nil),
		Field:     field,
	}
}

// ErrUnsupportedFormat is returned for file types the processor cannot handle
type ErrUnsupportedFormat struct {
	*BaseError
	Path string
}

func NewUnsupportedFormat(path string) *ErrUnsupportedFormat {
	return &ErrUnsupportedFormat{
		BaseError: NewBaseError(ErrorTypeValidation, fmt.Sprintf("unsupported file type: %s", path), nil),
		Path:      path,
	}
}

// Ingest errors

// ErrIngestFailed is returned when an episode write fails
type ErrIngestFailed struct {
	*BaseError
	EpisodeName string
}

func NewIngestFailed(episodeName string, err error) *ErrIngestFailed {
	return &ErrIngestFailed{
		BaseError:   NewBaseError(ErrorTypeIngest, fmt.Sprintf("failed to ingest episode: %s", episodeName), err),
		EpisodeName: episodeName,
	}
}

// Query errors

// ErrQueryFailed is returned when a store-side search or read fails
type ErrQueryFailed struct {
	*BaseError
	Query string
}

func NewQueryFailed(query string, err error) *ErrQueryFailed {
	return &ErrQueryFailed{
		BaseError: NewBaseError(ErrorTypeQuery, fmt.Sprintf("query failed: %s", query), err),
		Query:     query,
	}
}

// LLM errors

// ErrLLMFailed is returned when the completion provider fails after retries.
// Callers degrade to the summarization path rather than surfacing this.
type ErrLLMFailed struct {
	*BaseError
	Model    string
	Attempts int
}

func NewLLMFailed(model string, attempts int, err error) *ErrLLMFailed {
	return &ErrLLMFailed{
		BaseError: NewBaseError(ErrorTypeLLM, fmt.Sprintf("LLM request failed after %d attempts", attempts), err),
		Model:     model,
		Attempts:  attempts,
	}
}

// Config errors

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

// IsErrorType checks if an error, or anything it wraps, is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	for err != nil {
		if kinded, ok := err.(interface{ Kind() ErrorType }); ok && kinded.Kind() == errType {
			return true
		}
		wrapped, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = wrapped.Unwrap()
	}
	return false
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	// Validation and schema problems never resolve on retry
	if IsErrorType(err, ErrorTypeValidation) || IsErrorType(err, ErrorTypeSchema) {
		return false
	}
	// Connectivity may recover
	return IsErrorType(err, ErrorTypeConnection)
}
