// Package errors provides a structured error taxonomy for the statement
// import pipeline.
//
// Every failure surfaced out of the pipeline carries a category (which stage
// failed), a code (what kind of failure), an optional suggestion for the
// user, and context key-value pairs for diagnostics. Stage-internal misses
// (no bank detected, grammar matched nothing) are control-flow signals and
// never become errors of this package.
package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorCategory represents different categories of errors
type ErrorCategory string

const (
	CategoryFile       ErrorCategory = "file"
	CategoryExtract    ErrorCategory = "extract"
	CategoryConfig     ErrorCategory = "config"
	CategoryParse      ErrorCategory = "parse"
	CategoryAI         ErrorCategory = "ai"
	CategoryStore      ErrorCategory = "store"
	CategoryValidation ErrorCategory = "validation"
	CategoryInternal   ErrorCategory = "internal"
)

// ErrorCode represents specific error codes within categories
type ErrorCode string

const (
	// File errors
	CodeFileNotFound  ErrorCode = "file_not_found"
	CodeFileCorrupted ErrorCode = "file_corrupted"
	CodeFileEmpty     ErrorCode = "file_empty"

	// Extraction errors
	CodeNoText ErrorCode = "no_text"

	// Config errors
	CodeInvalidPattern ErrorCode = "invalid_pattern"
	CodeFetchFailed    ErrorCode = "fetch_failed"
	CodeDecodeFailed   ErrorCode = "decode_failed"
	CodeMissingConfig  ErrorCode = "missing_config"

	// Parse errors
	CodeInvalidDate   ErrorCode = "invalid_date"
	CodeInvalidAmount ErrorCode = "invalid_amount"
	CodeInvalidType   ErrorCode = "invalid_type"

	// AI errors
	CodeGenerationFailed ErrorCode = "generation_failed"
	CodeNoJSONPayload    ErrorCode = "no_json_payload"
	CodeBadPayload       ErrorCode = "bad_payload"

	// Store errors
	CodeInsertFailed ErrorCode = "insert_failed"
	CodeLookupFailed ErrorCode = "lookup_failed"

	// Validation errors
	CodeMissingField ErrorCode = "missing_field"
	CodeOutOfRange   ErrorCode = "out_of_range"

	// Internal errors
	CodeUnexpectedError ErrorCode = "unexpected_error"
)

// ImportError is the base error type for all application errors
type ImportError struct {
	Category   ErrorCategory     `json:"category"`
	Code       ErrorCode         `json:"code"`
	Message    string            `json:"message"`
	Suggestion string            `json:"suggestion,omitempty"`
	Context    Context           `json:"context,omitempty"`
	Cause      error             `json:"-"`
	StackTrace errors.StackTrace `json:"-"`
}

// Context provides additional information about the error
type Context map[string]interface{}

// Error implements the error interface
func (e *ImportError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", e.Message, e.Suggestion)
	}
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *ImportError) Unwrap() error {
	return e.Cause
}

// GetExitCode returns an appropriate exit code for the error
func (e *ImportError) GetExitCode() int {
	switch e.Category {
	case CategoryFile, CategoryExtract:
		return 2
	case CategoryParse, CategoryValidation:
		return 3
	case CategoryConfig:
		return 4
	case CategoryStore, CategoryInternal:
		return 5
	case CategoryAI:
		return 6
	default:
		return 1
	}
}

// WithContext adds context information to the error
func (e *ImportError) WithContext(key string, value interface{}) *ImportError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion for fixing the error
func (e *ImportError) WithSuggestion(suggestion string) *ImportError {
	e.Suggestion = suggestion
	return e
}

// New creates a new ImportError
func New(category ErrorCategory, code ErrorCode, message string) *ImportError {
	return &ImportError{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Wrap wraps an existing error with ImportError context
func Wrap(err error, category ErrorCategory, code ErrorCode, message string) *ImportError {
	if err == nil {
		return nil
	}

	return &ImportError{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

// stackTracer interface for extracting stack traces
type stackTracer interface {
	StackTrace() errors.StackTrace
}

// AsImportError extracts an ImportError from an error chain, if present
func AsImportError(err error) (*ImportError, bool) {
	var importErr *ImportError
	if errors.As(err, &importErr) {
		return importErr, true
	}
	return nil, false
}

// Specific error constructors

// FileError creates a file-related error
func FileError(code ErrorCode, path string, err error) *ImportError {
	var message, suggestion string

	switch code {
	case CodeFileNotFound:
		message = fmt.Sprintf("file not found: %s", path)
		suggestion = "check if the file path is correct and the file exists"
	case CodeFileCorrupted:
		message = fmt.Sprintf("file appears to be corrupted: %s", path)
		suggestion = "verify the file opens in a PDF viewer and try again"
	case CodeFileEmpty:
		message = fmt.Sprintf("file is empty: %s", path)
		suggestion = "select a non-empty statement document"
	default:
		message = fmt.Sprintf("file error: %s", path)
		suggestion = "check the file and try again"
	}

	var result *ImportError
	if err != nil {
		result = Wrap(err, CategoryFile, code, message)
	} else {
		result = New(CategoryFile, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("file_path", path)
}

// ConfigError creates a parser-config related error
func ConfigError(code ErrorCode, bankID string, err error) *ImportError {
	var message, suggestion string

	switch code {
	case CodeInvalidPattern:
		message = fmt.Sprintf("invalid transaction pattern for bank %q", bankID)
		suggestion = "the pattern must compile and expose exactly 5 capture groups (date, sign, amount, operation, details)"
	case CodeFetchFailed:
		message = "failed to fetch remote parser config registry"
		suggestion = "check network connectivity; the bundled default registry will be used"
	case CodeDecodeFailed:
		message = "failed to decode parser config registry document"
		suggestion = "verify the registry document matches the {\"banks\": [...]} shape"
	case CodeMissingConfig:
		message = fmt.Sprintf("no parser config found for bank %q", bankID)
		suggestion = "add a config for this bank or rely on the AI fallback"
	default:
		message = fmt.Sprintf("parser config error for bank %q", bankID)
	}

	var result *ImportError
	if err != nil {
		result = Wrap(err, CategoryConfig, code, message)
	} else {
		result = New(CategoryConfig, code, message)
	}

	if bankID != "" {
		result = result.WithContext("bank_id", bankID)
	}
	return result.WithSuggestion(suggestion)
}

// LineError creates a per-line parse error. These are accumulated into the
// import result's error list, never used to abort a batch.
func LineError(code ErrorCode, line int, value string, err error) *ImportError {
	var message string

	switch code {
	case CodeInvalidDate:
		message = fmt.Sprintf("invalid date %q at line %d", value, line)
	case CodeInvalidAmount:
		message = fmt.Sprintf("invalid amount %q at line %d", value, line)
	case CodeInvalidType:
		message = fmt.Sprintf("invalid transaction type %q at line %d", value, line)
	default:
		message = fmt.Sprintf("parse error at line %d: %q", line, value)
	}

	var result *ImportError
	if err != nil {
		result = Wrap(err, CategoryParse, code, message)
	} else {
		result = New(CategoryParse, code, message)
	}

	return result.
		WithContext("line", line).
		WithContext("value", value)
}

// AIError creates an error for the generative fallback path
func AIError(code ErrorCode, err error) *ImportError {
	var message, suggestion string

	switch code {
	case CodeGenerationFailed:
		message = "generative content request failed"
		suggestion = "check API credentials and connectivity, then retry the import"
	case CodeNoJSONPayload:
		message = "no JSON payload found in model response"
		suggestion = "retry the import; the model response did not contain a recognizable JSON object"
	case CodeBadPayload:
		message = "failed to decode transactions from model response"
		suggestion = "retry the import with a clearer photo or a PDF statement"
	default:
		message = "generative fallback error"
	}

	var result *ImportError
	if err != nil {
		result = Wrap(err, CategoryAI, code, message)
	} else {
		result = New(CategoryAI, code, message)
	}

	return result.WithSuggestion(suggestion)
}

// StoreError creates a persistence-related error
func StoreError(code ErrorCode, operation string, err error) *ImportError {
	message := fmt.Sprintf("store operation %q failed", operation)

	var result *ImportError
	if err != nil {
		result = Wrap(err, CategoryStore, code, message)
	} else {
		result = New(CategoryStore, code, message)
	}

	return result.WithContext("operation", operation)
}

// ValidationError creates a validation error for a specific field
func ValidationError(code ErrorCode, field string, value interface{}, err error) *ImportError {
	var message string

	switch code {
	case CodeMissingField:
		message = fmt.Sprintf("required field missing: %s", field)
	case CodeOutOfRange:
		message = fmt.Sprintf("field %s out of range: %v", field, value)
	default:
		message = fmt.Sprintf("invalid field %s: %v", field, value)
	}

	var result *ImportError
	if err != nil {
		result = Wrap(err, CategoryValidation, code, message)
	} else {
		result = New(CategoryValidation, code, message)
	}

	result = result.WithContext("field", field)
	if value != nil {
		result = result.WithContext("value", value)
	}
	return result
}
