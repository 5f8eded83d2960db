// Package errors provides the error taxonomy of the intent compiler
package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"runtime"
	"strings"
)

// ErrorCode represents specific error classifications
type ErrorCode string

const (
	// ErrCodeValidation covers malformed JSON, missing fields and invalid enum values
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"
	// ErrCodeResourceGeneration covers violated internal invariants
	ErrCodeResourceGeneration ErrorCode = "RESOURCE_GENERATION_ERROR"
	// ErrCodeFileSystem covers I/O failures on input or output
	ErrCodeFileSystem ErrorCode = "FILESYSTEM_ERROR"
)

// ErrorSeverity indicates the severity level of an error
type ErrorSeverity string

const (
	SeverityLow      ErrorSeverity = "low"
	SeverityMedium   ErrorSeverity = "medium"
	SeverityHigh     ErrorSeverity = "high"
	SeverityCritical ErrorSeverity = "critical"
)

// BaseError provides the foundation for all compiler errors
type BaseError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	Severity   ErrorSeverity          `json:"severity"`
	StackTrace []string               `json:"stack_trace,omitempty"`
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e *BaseError) Unwrap() error {
	return e.Cause
}

// MarshalJSON customizes JSON serialization
func (e *BaseError) MarshalJSON() ([]byte, error) {
	type Alias BaseError
	return json.Marshal(&struct {
		*Alias
		Cause string `json:"cause,omitempty"`
	}{
		Alias: (*Alias)(e),
		Cause: e.getCauseString(),
	})
}

func (e *BaseError) getCauseString() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return ""
}

// ValidationError represents a rejected intent. Fields names every offending
// field, so a document missing several required fields yields one error.
type ValidationError struct {
	*BaseError
	Fields []string    `json:"fields,omitempty"`
	Value  interface{} `json:"value,omitempty"`
}

// NewValidationError creates a new validation error for the given fields
func NewValidationError(message string, fields ...string) *ValidationError {
	return &ValidationError{
		BaseError: &BaseError{
			Code:     ErrCodeValidation,
			Message:  message,
			Severity: SeverityMedium,
			Details:  make(map[string]interface{}),
		},
		Fields: fields,
	}
}

// NewMissingFieldsError reports every missing required field at once
func NewMissingFieldsError(fields []string) *ValidationError {
	return NewValidationError(
		fmt.Sprintf("missing required fields: [%s]", strings.Join(fields, ", ")),
		fields...,
	)
}

// NewMalformedJSONError reports an intent document that is not valid JSON
func NewMalformedJSONError(cause error) *ValidationError {
	err := NewValidationError("invalid JSON in intent document")
	err.Cause = cause
	return err
}

// NewInvalidValueError reports a field whose value is outside the allowed set
func NewInvalidValueError(field string, value interface{}, allowed []string) *ValidationError {
	err := NewValidationError(
		fmt.Sprintf("invalid %s '%v', must be one of: [%s]", field, value, strings.Join(allowed, ", ")),
		field,
	)
	err.Value = value
	err.Details["allowed"] = allowed
	return err
}

// ResourceGenerationError represents a violated internal invariant such as a
// validated site missing from the registry. It is a configuration or
// programming defect and is never retried.
type ResourceGenerationError struct {
	*BaseError
	Component string `json:"component"`
}

// NewResourceGenerationError creates a new resource generation error with stack trace
func NewResourceGenerationError(component, message string, cause error) *ResourceGenerationError {
	return &ResourceGenerationError{
		BaseError: &BaseError{
			Code:       ErrCodeResourceGeneration,
			Message:    message,
			Cause:      cause,
			Severity:   SeverityCritical,
			Details:    make(map[string]interface{}),
			StackTrace: captureStackTrace(),
		},
		Component: component,
	}
}

// FileSystemError wraps an OS error raised while reading input or writing output
type FileSystemError struct {
	*BaseError
	Op   string `json:"op"`
	Path string `json:"path"`
}

// NewFileSystemError creates a new filesystem error
func NewFileSystemError(op, path string, cause error) *FileSystemError {
	return &FileSystemError{
		BaseError: &BaseError{
			Code:     ErrCodeFileSystem,
			Message:  fmt.Sprintf("failed to %s %s", op, path),
			Cause:    cause,
			Severity: SeverityHigh,
			Details:  make(map[string]interface{}),
		},
		Op:   op,
		Path: path,
	}
}

// Helper functions

// captureStackTrace captures the current stack trace
func captureStackTrace() []string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var trace []string
	for {
		frame, more := frames.Next()
		trace = append(trace, fmt.Sprintf("%s:%d %s", frame.File, frame.Line, frame.Function))
		if !more {
			break
		}
	}
	return trace
}

// Type checking helper functions

// IsValidation checks if err or anything it wraps is a validation error
func IsValidation(err error) bool {
	var target *ValidationError
	return stderrors.As(err, &target)
}

// IsResourceGeneration checks if err or anything it wraps is a resource generation error
func IsResourceGeneration(err error) bool {
	var target *ResourceGenerationError
	return stderrors.As(err, &target)
}

// IsFileSystem checks if err or anything it wraps is a filesystem error
func IsFileSystem(err error) bool {
	var target *FileSystemError
	return stderrors.As(err, &target)
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	var v *ValidationError
	var r *ResourceGenerationError
	var f *FileSystemError
	var b *BaseError
	switch {
	case stderrors.As(err, &v):
		return v.Code
	case stderrors.As(err, &r):
		return r.Code
	case stderrors.As(err, &f):
		return f.Code
	case stderrors.As(err, &b):
		return b.Code
	}
	return ""
}
