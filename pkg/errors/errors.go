// Package errors defines the engine's error taxonomy: categorized,
// code-tagged errors with optional context and remediation suggestions,
// built on github.com/pkg/errors for stack capture.
package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Category groups errors by the concern that raised them.
type Category string

const (
	CategoryFile           Category = "file"
	CategoryParse          Category = "parse"
	CategoryValidation     Category = "validation"
	CategoryConfiguration  Category = "configuration"
	CategoryReconciliation Category = "reconciliation"
)

// Code identifies a specific failure within a category.
type Code string

const (
	// File errors.
	CodeFileNotFound Code = "file_not_found"
	CodeFileRead     Code = "file_read"

	// Parse errors.
	CodeInvalidFormat Code = "invalid_format"
	CodeMissingColumn Code = "missing_column"
	CodeInvalidData   Code = "invalid_data"

	// Validation errors.
	CodeInvalidAmount Code = "invalid_amount"
	CodeMissingField  Code = "missing_field"
	CodeEmptyTable    Code = "empty_table"

	// Configuration errors.
	CodeInvalidConfig    Code = "invalid_config"
	CodeUncoveredRule    Code = "uncovered_rule_item"
	CodeUnknownUnit      Code = "unknown_currency_unit"
	CodeInvalidTolerance Code = "invalid_tolerance"

	// Reconciliation errors.
	CodeProcessingError Code = "processing_error"
)

// EngineError is the base error type for all engine errors.
type EngineError struct {
	Category   Category               `json:"category"`
	Code       Code                   `json:"code"`
	Message    string                 `json:"message"`
	Suggestion string                 `json:"suggestion,omitempty"`
	Context    map[string]interface{} `json:"context,omitempty"`
	Cause      error                  `json:"-"`
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", e.Message, e.Suggestion)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *EngineError) Unwrap() error {
	return e.Cause
}

// ExitCode maps the error category to a process exit code.
func (e *EngineError) ExitCode() int {
	switch e.Category {
	case CategoryFile:
		return 2
	case CategoryParse, CategoryValidation:
		return 3
	case CategoryConfiguration:
		return 4
	case CategoryReconciliation:
		return 5
	default:
		return 1
	}
}

// WithContext attaches a key-value pair to the error.
func (e *EngineError) WithContext(key string, value interface{}) *EngineError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithSuggestion attaches a remediation hint shown to the operator.
func (e *EngineError) WithSuggestion(suggestion string) *EngineError {
	e.Suggestion = suggestion
	return e
}

// New creates an EngineError with the given category, code and message.
func New(category Category, code Code, format string, args ...interface{}) *EngineError {
	return &EngineError{
		Category: category,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Cause:    errors.New(fmt.Sprintf(format, args...)),
	}
}

// Wrap creates an EngineError around a cause, preserving its stack.
func Wrap(cause error, category Category, code Code, format string, args ...interface{}) *EngineError {
	return &EngineError{
		Category: category,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Cause:    errors.WithStack(cause),
	}
}

// NewFileError reports a problem reading an input file.
func NewFileError(cause error, path string) *EngineError {
	return Wrap(cause, CategoryFile, CodeFileRead, "failed to read %s", path).
		WithContext("path", path).
		WithSuggestion("check that the file exists and is readable")
}

// NewParseError reports malformed input data.
func NewParseError(cause error, detail string) *EngineError {
	return Wrap(cause, CategoryParse, CodeInvalidFormat, "parse failed: %s", detail)
}

// NewConfigError reports an invalid engine configuration.
func NewConfigError(code Code, format string, args ...interface{}) *EngineError {
	return New(CategoryConfiguration, code, format, args...)
}

// IsCategory reports whether err is an EngineError of the given category.
func IsCategory(err error, category Category) bool {
	var engineErr *EngineError
	if errors.As(err, &engineErr) {
		return engineErr.Category == category
	}
	return false
}

// AsEngineError extracts an EngineError from err, or wraps err as an
// uncategorized reconciliation error so callers always get exit-code
// mapping.
func AsEngineError(err error) *EngineError {
	var engineErr *EngineError
	if errors.As(err, &engineErr) {
		return engineErr
	}
	return Wrap(err, CategoryReconciliation, CodeProcessingError, "%s", err.Error())
}
