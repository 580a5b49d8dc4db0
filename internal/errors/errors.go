// Package errors provides structured error handling for nmapconv operations.
// It defines error codes and a typed conversion error that carries the path
// involved and the underlying cause.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents different types of errors that can occur.
type ErrorCode string

const (
	// General errors.
	CodeUnknown       ErrorCode = "UNKNOWN"
	CodeValidation    ErrorCode = "VALIDATION"
	CodeConfiguration ErrorCode = "CONFIGURATION"

	// Conversion errors.
	CodeFileNotFound ErrorCode = "FILE_NOT_FOUND"
	CodeParse        ErrorCode = "PARSE_ERROR"
	CodeWrite        ErrorCode = "WRITE_ERROR"
)

// ConvertError represents an error that occurred while loading, converting or
// writing a report.
type ConvertError struct {
	Code    ErrorCode
	Message string
	Path    string
	Cause   error
}

// Error implements the error interface.
func (e *ConvertError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Path != "" {
		msg += fmt.Sprintf(" (path: %s)", e.Path)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ConvertError) Unwrap() error {
	return e.Cause
}

// NewConvertError creates a new conversion error with the specified code and message.
func NewConvertError(code ErrorCode, message string) *ConvertError {
	return &ConvertError{
		Code:    code,
		Message: message,
	}
}

// WrapConvertError wraps an existing error as a conversion error for a path.
func WrapConvertError(code ErrorCode, message, path string, err error) *ConvertError {
	return &ConvertError{
		Code:    code,
		Message: message,
		Path:    path,
		Cause:   err,
	}
}

// ConfigError represents configuration-related errors.
type ConfigError struct {
	Code    ErrorCode
	Message string
	Field   string
	Value   any
	Cause   error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Field != "" {
		msg += fmt.Sprintf(" (field: %s, value: %v)", e.Field, e.Value)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// NewConfigFieldError creates a configuration error for a specific field.
func NewConfigFieldError(code ErrorCode, message, field string, value any) *ConfigError {
	return &ConfigError{
		Code:    code,
		Message: message,
		Field:   field,
		Value:   value,
	}
}

// WrapConfigError wraps an existing error as a configuration error.
func WrapConfigError(code ErrorCode, message string, err error) *ConfigError {
	return &ConfigError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Utility functions for common error operations

// IsCode checks if an error, or any error it wraps, has a specific error code.
func IsCode(err error, code ErrorCode) bool {
	return err != nil && GetCode(err) == code
}

// GetCode extracts the error code from the first typed error in the chain.
func GetCode(err error) ErrorCode {
	var convErr *ConvertError
	if errors.As(err, &convErr) {
		return convErr.Code
	}
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return cfgErr.Code
	}
	return CodeUnknown
}

// Common error creation functions

// ErrFileNotFound creates an error for an input document that cannot be read.
func ErrFileNotFound(path string, err error) *ConvertError {
	return WrapConvertError(CodeFileNotFound, "File not found", path, err)
}

// ErrParse creates an error for an input document that is not well-formed.
func ErrParse(path string, err error) *ConvertError {
	return WrapConvertError(CodeParse, "Error parsing XML", path, err)
}

// ErrWrite creates an error for an output document that cannot be written.
func ErrWrite(path string, err error) *ConvertError {
	return WrapConvertError(CodeWrite, "Error writing JSON file", path, err)
}

// ErrConfigInvalid creates an error for invalid configuration.
func ErrConfigInvalid(field string, value any) *ConfigError {
	return NewConfigFieldError(CodeValidation, "Invalid configuration value", field, value)
}

// Diagnostic returns the one-line message shown to the operator for err.
// Conversion errors name the missing path or the underlying cause; any other
// error is reported as is.
func Diagnostic(err error) string {
	var convErr *ConvertError
	if !errors.As(err, &convErr) {
		return err.Error()
	}

	switch {
	case convErr.Code == CodeFileNotFound:
		return convErr.Message + ": " + convErr.Path
	case convErr.Cause != nil:
		return convErr.Message + ": " + convErr.Cause.Error()
	default:
		return convErr.Message
	}
}
