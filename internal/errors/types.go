// Package errors provides the structured error type shared by the catalog
// loader, configuration and command layers.
//
// Query operations on the catalog and the placeholder engine never return
// errors; absence is represented structurally. Errors only surface where I/O
// or decoding happens.
package errors

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeParse      ErrorType = "parse"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeInternal   ErrorType = "internal"
)

// Common error codes.
const (
	ErrCodeFileNotFound     = "ERR_FILE_NOT_FOUND"
	ErrCodeReadFailed       = "ERR_READ_FAILED"
	ErrCodeWriteFailed      = "ERR_WRITE_FAILED"
	ErrCodeInvalidDocument  = "ERR_INVALID_DOCUMENT"
	ErrCodeUnsupported      = "ERR_UNSUPPORTED_FORMAT"
	ErrCodeConfigInvalid    = "ERR_CONFIG_INVALID"
	ErrCodeSnippetNotFound  = "ERR_SNIPPET_NOT_FOUND"
	ErrCodeCategoryNotFound = "ERR_CATEGORY_NOT_FOUND"
	ErrCodeValidationFailed = "ERR_VALIDATION_FAILED"
	ErrCodeMissingValues    = "ERR_MISSING_VALUES"
	ErrCodeInternalError    = "ERR_INTERNAL"
)

// Sentinel errors for catalog document structure problems.
var (
	ErrEmptyDocument     = errors.New("catalog document is empty")
	ErrMissingSnippets   = errors.New("catalog document has no snippets array")
	ErrUnsupportedFormat = errors.New("unsupported catalog format")
)

// Error is a structured error type with context.
type Error struct {
	Type    ErrorType
	Code    string
	Message string
	Cause   error
	Path    string
	Snippet string
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Snippet != "" {
		parts = append(parts, "snippet:"+e.Snippet)
	}

	if e.Path != "" {
		parts = append(parts, e.Path)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error with the same type and code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithPath records the file the error relates to.
func (e *Error) WithPath(path string) *Error {
	e.Path = path

	return e
}

// WithSnippet records the snippet id the error relates to.
func (e *Error) WithSnippet(id string) *Error {
	e.Snippet = id

	return e
}

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *Error {
	return &Error{
		Type:    ErrorTypeValidation,
		Code:    code,
		Message: message,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *Error {
	return &Error{
		Type:    ErrorTypeIO,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewParseError creates a document decoding error.
func NewParseError(code, message string, cause error) *Error {
	return &Error{
		Type:    ErrorTypeParse,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *Error {
	return &Error{
		Type:    ErrorTypeConfig,
		Code:    code,
		Message: message,
	}
}

// NewNotFoundError creates a not-found error. Only the command layer uses it;
// catalog lookups report absence with a boolean.
func NewNotFoundError(code, message string) *Error {
	return &Error{
		Type:    ErrorTypeNotFound,
		Code:    code,
		Message: message,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *Error {
	return &Error{
		Type:    ErrorTypeInternal,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// IsType reports whether err is an *Error of the given type.
func IsType(err error, errType ErrorType) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Type == errType
	}

	return false
}

// IsNotFound checks if an error is a not-found error.
func IsNotFound(err error) bool {
	return IsType(err, ErrorTypeNotFound)
}

// Logger is the subset of the logging interface the handler needs.
type Logger interface {
	Error(ctx context.Context, err error, msg string, fields ...interface{})
	Warn(ctx context.Context, err error, msg string, fields ...interface{})
}

// Handler logs errors according to their type.
type Handler struct {
	logger Logger
}

// NewHandler creates a new error handler.
func NewHandler(logger Logger) *Handler {
	return &Handler{logger: logger}
}

// Handle logs err. Validation and not-found errors are warnings; the rest are
// errors.
func (h *Handler) Handle(ctx context.Context, err error) {
	if err == nil || h.logger == nil {
		return
	}

	var e *Error
	if !errors.As(err, &e) {
		h.logger.Error(ctx, err, "Unhandled error occurred", contextFields(err)...)
		return
	}

	fields := contextFields(e)
	switch e.Type {
	case ErrorTypeValidation, ErrorTypeNotFound:
		h.logger.Warn(ctx, e, "Request could not be satisfied", fields...)
	default:
		h.logger.Error(ctx, e, "Error occurred", fields...)
	}
}

// contextFields flattens GetErrorContext into sorted key/value pairs.
func contextFields(err error) []interface{} {
	values := GetErrorContext(err)
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]interface{}, 0, 2*len(keys))
	for _, k := range keys {
		fields = append(fields, k, values[k])
	}
	return fields
}

// ErrSnippetNotFound creates a snippet not found error.
func ErrSnippetNotFound(id string) *Error {
	return NewNotFoundError(ErrCodeSnippetNotFound, "snippet not found: "+id).WithSnippet(id)
}

// ErrCategoryNotFound creates a category not found error.
func ErrCategoryNotFound(id string) *Error {
	return NewNotFoundError(ErrCodeCategoryNotFound, "category not found: "+id)
}

// ErrMissingValues reports required placeholders without a value.
func ErrMissingValues(id string, missing []string) *Error {
	return NewValidationError(
		ErrCodeMissingValues,
		"missing placeholder values: "+strings.Join(missing, ", "),
	).WithSnippet(id).WithContext("missing", missing)
}
