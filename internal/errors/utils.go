package errors

import (
	"errors"
	"fmt"
)

// Wrap wraps an error with additional context, creating an *Error if the input
// is not already one.
func Wrap(err error, errType ErrorType, code, message string) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return &Error{
			Type:    errType,
			Code:    code,
			Message: message,
			Cause:   e,
			Path:    e.Path,
			Snippet: e.Snippet,
			Context: e.Context,
		}
	}

	return &Error{
		Type:    errType,
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// WrapIO wraps an error as an I/O error.
func WrapIO(err error, code, message string) *Error {
	return Wrap(err, ErrorTypeIO, code, message)
}

// WrapParse wraps an error as a decoding error.
func WrapParse(err error, code, message string) *Error {
	return Wrap(err, ErrorTypeParse, code, message)
}

// WrapConfig wraps an error as a configuration error.
func WrapConfig(err error, code, message string) *Error {
	return Wrap(err, ErrorTypeConfig, code, message)
}

// GetErrorContext extracts context information from an *Error.
func GetErrorContext(err error) map[string]interface{} {
	var e *Error
	if errors.As(err, &e) {
		context := make(map[string]interface{})
		for k, v := range e.Context {
			context[k] = v
		}
		if e.Path != "" {
			context["file"] = e.Path
		}
		if e.Snippet != "" {
			context["snippet"] = e.Snippet
		}
		context["type"] = string(e.Type)
		context["code"] = e.Code

		return context
	}

	return map[string]interface{}{
		"message": err.Error(),
		"type":    "unknown",
	}
}

// CombineErrors combines multiple errors into a single error with context.
func CombineErrors(errs ...error) error {
	var nonNil []error
	for _, err := range errs {
		if err != nil {
			nonNil = append(nonNil, err)
		}
	}

	switch len(nonNil) {
	case 0:
		return nil
	case 1:
		return nonNil[0]
	}

	messages := make([]string, 0, len(nonNil))
	for _, err := range nonNil {
		messages = append(messages, err.Error())
	}

	return &Error{
		Type:    ErrorTypeInternal,
		Code:    "ERR_MULTIPLE_ERRORS",
		Message: fmt.Sprintf("multiple errors occurred: %d errors", len(nonNil)),
		Context: map[string]interface{}{
			"error_count": len(nonNil),
			"errors":      messages,
		},
	}
}
