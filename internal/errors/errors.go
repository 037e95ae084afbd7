// Package errors provides unified error handling across pocket-notes.
//
// SYSTEM ARCHITECTURE ROLE:
// This module is the foundation for error handling across both interfaces (CLI, TUI).
// It standardizes error representation and categorization so the lifecycle,
// storage and extraction layers report failures the same way.
//
// KEY RESPONSIBILITIES:
// - Define error codes for the failure kinds of the system (validation, index,
//   lookup, extraction, storage, clipboard)
// - Provide the structured AppError type with severity, category and context
// - Let interface handlers format errors without knowing where they came from
//
// USAGE PATTERNS:
// - Create errors: ValidationError(), IndexError(), ExtractionError(), StorageError()
// - Wrap errors: Wrap() adds a code and message to an existing error
// - Check codes: HasCode() walks the wrap chain
// - Display: CLIErrorHandler / TUIErrorHandler in handlers.go
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized error codes
type ErrorCode string

const (
	// Validation errors
	ErrCodeValidation   ErrorCode = "VALIDATION_ERROR"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
	ErrCodeUnknownTag   ErrorCode = "UNKNOWN_TAG"

	// Lookup errors
	ErrCodeIndexOutOfRange ErrorCode = "INDEX_OUT_OF_RANGE"
	ErrCodeNotFound        ErrorCode = "NOT_FOUND"
	ErrCodeAmbiguous       ErrorCode = "AMBIGUOUS_REFERENCE"

	// Extraction errors
	ErrCodeExtractionFailed  ErrorCode = "EXTRACTION_FAILED"
	ErrCodeUnsupportedFormat ErrorCode = "UNSUPPORTED_FORMAT"

	// Storage errors
	ErrCodeStorageFailure ErrorCode = "STORAGE_FAILURE"
	ErrCodeStorageRead    ErrorCode = "STORAGE_READ_FAILURE"
	ErrCodeFileCorrupted  ErrorCode = "FILE_CORRUPTED"

	// Clipboard errors
	ErrCodeClipboardUnavailable ErrorCode = "CLIPBOARD_UNAVAILABLE"
	ErrCodeClipboardFailed      ErrorCode = "CLIPBOARD_FAILED"

	// System errors
	ErrCodeInternalError ErrorCode = "INTERNAL_ERROR"
	ErrCodeConfig        ErrorCode = "CONFIG_ERROR"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity string

const (
	SeverityInfo     ErrorSeverity = "info"
	SeverityWarning  ErrorSeverity = "warning"
	SeverityError    ErrorSeverity = "error"
	SeverityCritical ErrorSeverity = "critical"
)

// ErrorCategory represents the category of an error
type ErrorCategory string

const (
	CategoryValidation ErrorCategory = "validation"
	CategoryLookup     ErrorCategory = "lookup"
	CategoryExtraction ErrorCategory = "extraction"
	CategoryStorage    ErrorCategory = "storage"
	CategoryClipboard  ErrorCategory = "clipboard"
	CategorySystem     ErrorCategory = "system"
)

// AppError represents a standardized application error
type AppError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Severity  ErrorSeverity          `json:"severity"`
	Category  ErrorCategory          `json:"category"`
	Cause     error                  `json:"-"`
	Context   map[string]interface{} `json:"context,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Details != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Details)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// Field returns the offending field of a validation error, or ""
func (e *AppError) Field() string {
	if f, ok := e.Context["field"].(string); ok {
		return f
	}
	return ""
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message string) *AppError {
	category, severity := categorizeError(code)
	return &AppError{
		Code:      code,
		Message:   message,
		Severity:  severity,
		Category:  category,
		Timestamp: time.Now(),
	}
}

// Wrap wraps an existing error with application error context
func Wrap(err error, code ErrorCode, message string) *AppError {
	appErr := NewAppError(code, message)
	appErr.Cause = err
	return appErr
}

// categorizeError determines the category and severity based on error code
func categorizeError(code ErrorCode) (ErrorCategory, ErrorSeverity) {
	switch code {
	case ErrCodeValidation, ErrCodeInvalidInput, ErrCodeMissingField, ErrCodeUnknownTag:
		return CategoryValidation, SeverityWarning

	case ErrCodeIndexOutOfRange:
		return CategoryLookup, SeverityError
	case ErrCodeNotFound, ErrCodeAmbiguous:
		return CategoryLookup, SeverityInfo

	case ErrCodeExtractionFailed, ErrCodeUnsupportedFormat:
		return CategoryExtraction, SeverityWarning

	case ErrCodeStorageFailure:
		return CategoryStorage, SeverityError
	case ErrCodeStorageRead, ErrCodeFileCorrupted:
		return CategoryStorage, SeverityWarning

	case ErrCodeClipboardUnavailable, ErrCodeClipboardFailed:
		return CategoryClipboard, SeverityWarning

	case ErrCodeInternalError:
		return CategorySystem, SeverityCritical

	default:
		return CategorySystem, SeverityError
	}
}

// IsAppError checks if an error is, or wraps, an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetAppError extracts an AppError from an error, or converts it to one
func GetAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, ErrCodeInternalError, "Internal error occurred")
}

// HasCode reports whether any AppError in err's chain carries code
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		var appErr *AppError
		if !stderrors.As(err, &appErr) {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Cause
	}
	return false
}

// ValidationError reports a missing or invalid draft field. field names the
// first offending field, e.g. "title" or "subtopics[1].description".
func ValidationError(field, message string) *AppError {
	code := ErrCodeValidation
	if field != "" {
		code = ErrCodeMissingField
	}
	return NewAppError(code, message).WithContext("field", field)
}

// UnknownTagError reports a tag outside the configured vocabulary
func UnknownTagError(field, tag string) *AppError {
	return NewAppError(ErrCodeUnknownTag, fmt.Sprintf("tag %q is not in the vocabulary", tag)).
		WithContext("field", field).
		WithContext("tag", tag)
}

// IndexError reports a position outside the collection
func IndexError(index, length int) *AppError {
	return NewAppError(ErrCodeIndexOutOfRange,
		fmt.Sprintf("index %d out of range for collection of %d", index, length)).
		WithContext("index", index).
		WithContext("length", length)
}

// NotFoundError reports a missing resource
func NotFoundError(resource string) *AppError {
	return NewAppError(ErrCodeNotFound, fmt.Sprintf("%s not found", resource))
}

// AmbiguousError reports a reference matching more than one record
func AmbiguousError(ref string, matches int) *AppError {
	return NewAppError(ErrCodeAmbiguous, fmt.Sprintf("%q matches %d templates", ref, matches))
}

// ExtractionError reports a document that could not be turned into text
func ExtractionError(format string, cause error) *AppError {
	return Wrap(cause, ErrCodeExtractionFailed, fmt.Sprintf("Error parsing %s", format)).
		WithContext("format", format)
}

// StorageError reports a failed storage operation
func StorageError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeStorageFailure, fmt.Sprintf("Storage operation failed: %s", operation))
}

// ClipboardError reports that no clipboard is available. message should tell
// the user how to get one.
func ClipboardError(message string) *AppError {
	return NewAppError(ErrCodeClipboardUnavailable, message)
}

// InternalError reports an unexpected condition
func InternalError(message string) *AppError {
	return NewAppError(ErrCodeInternalError, message)
}
