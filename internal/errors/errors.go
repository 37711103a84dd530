// Package errors provides standardized error types for the sitesettings tool.
//
// The errors package defines the render error taxonomy so that callers can
// tell a missing context variable from a broken template or a failed write,
// and so that CLI output and JSON results carry a stable error code.
//
// # Error Types
//
// SettingsError is the primary error type, containing:
//   - Code: Categorizes the error (MISSING_VARIABLE, MALFORMED_TEMPLATE, etc.)
//   - Message: Human-readable error description
//   - Site: The site id involved (if applicable)
//   - Template: The template name involved (if applicable)
//   - Variable: The dotted variable path that could not be resolved
//   - Line: The template line the error was raised at
//   - Err: The underlying wrapped error (if any)
//
// # Sentinel Errors
//
// Each category has a sentinel usable with errors.Is:
//
//	errors.ErrMissingVariable   // context key absent
//	errors.ErrMalformedTemplate // template syntax error
//	errors.ErrWriteFailure      // destination not writable
//
// # Usage
//
//	return errors.MissingVariable("settings.php", 12, "sid")
//	return errors.MalformedTemplate("settings.php", 40, "unclosed if block")
//	return errors.WriteFailure("/var/www/p1abc/settings.php", err)
//
// Comparison is by code, so a constructed error matches its sentinel:
//
//	if errors.Is(err, errors.ErrMissingVariable) {
//	    // Handle missing variable
//	}
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode categorizes errors for programmatic handling.
type ErrorCode string

// Error codes for different error categories.
const (
	ErrCodeMissingVariable   ErrorCode = "MISSING_VARIABLE"   // Referenced context key absent
	ErrCodeMalformedTemplate ErrorCode = "MALFORMED_TEMPLATE" // Template syntax error
	ErrCodeWriteFailure      ErrorCode = "WRITE_FAILURE"      // Destination not writable
	ErrCodeValidation        ErrorCode = "VALIDATION"         // Input validation failed
	ErrCodeConfig            ErrorCode = "CONFIG"             // Configuration error
	ErrCodeNotFound          ErrorCode = "NOT_FOUND"          // Resource not found
	ErrCodeInternal          ErrorCode = "INTERNAL"           // Internal/unexpected error
)

// SettingsError represents a structured error with context about the render.
type SettingsError struct {
	Code     ErrorCode // Error category
	Message  string    // Human-readable message
	Site     string    // Site id (if applicable)
	Template string    // Template name (if applicable)
	Variable string    // Unresolved variable path (if applicable)
	Line     int       // Template line (if known)
	Err      error     // Underlying error (if any)
}

// Error implements the error interface.
func (e *SettingsError) Error() string {
	var b strings.Builder
	if e.Site != "" {
		fmt.Fprintf(&b, "site %s: ", e.Site)
	}
	if e.Template != "" {
		b.WriteString(e.Template)
		if e.Line > 0 {
			fmt.Fprintf(&b, ":%d", e.Line)
		}
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Variable != "" {
		fmt.Fprintf(&b, " %q", e.Variable)
	}
	if e.Err != nil {
		if e.Message != "" || e.Variable != "" {
			b.WriteString(": ")
		}
		b.WriteString(e.Err.Error())
	}
	return strings.TrimSuffix(b.String(), ": ")
}

// Unwrap returns the underlying error for error chain traversal.
func (e *SettingsError) Unwrap() error {
	return e.Err
}

// Is reports whether target matches this error.
// Comparison is based on error code.
func (e *SettingsError) Is(target error) bool {
	t, ok := target.(*SettingsError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Sentinel errors for each category.
var (
	// ErrMissingVariable indicates a template referenced an undefined variable.
	ErrMissingVariable = &SettingsError{Code: ErrCodeMissingVariable, Message: "missing variable"}

	// ErrMalformedTemplate indicates a template could not be parsed.
	ErrMalformedTemplate = &SettingsError{Code: ErrCodeMalformedTemplate, Message: "malformed template"}

	// ErrWriteFailure indicates a rendered file could not be published.
	ErrWriteFailure = &SettingsError{Code: ErrCodeWriteFailure, Message: "write failure"}

	// ErrInvalidSite indicates a site record failed validation.
	ErrInvalidSite = &SettingsError{Code: ErrCodeValidation, Message: "invalid site"}

	// ErrConfigInvalid indicates the configuration is invalid or corrupt.
	ErrConfigInvalid = &SettingsError{Code: ErrCodeConfig, Message: "invalid configuration"}

	// ErrNotFound indicates a site or template does not exist.
	ErrNotFound = &SettingsError{Code: ErrCodeNotFound, Message: "not found"}
)

// MissingVariable creates an error for an undefined variable reference.
func MissingVariable(template string, line int, variable string) error {
	return &SettingsError{
		Code:     ErrCodeMissingVariable,
		Message:  "missing variable",
		Template: template,
		Line:     line,
		Variable: variable,
	}
}

// MalformedTemplate creates a template syntax error.
func MalformedTemplate(template string, line int, reason string) error {
	return &SettingsError{
		Code:     ErrCodeMalformedTemplate,
		Message:  reason,
		Template: template,
		Line:     line,
	}
}

// WriteFailure creates an error for a destination that could not be written.
func WriteFailure(path string, err error) error {
	return &SettingsError{
		Code:    ErrCodeWriteFailure,
		Message: "cannot write " + path,
		Err:     err,
	}
}

// NotFound creates an error for a missing resource.
func NotFound(kind, name string) error {
	return &SettingsError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s %s not found", kind, name),
	}
}

// Validation creates a validation error with a custom message.
func Validation(msg string) error {
	return &SettingsError{
		Code:    ErrCodeValidation,
		Message: msg,
	}
}

// Wrap creates an error with the specified code, message, and underlying error.
func Wrap(code ErrorCode, msg string, err error) error {
	return &SettingsError{
		Code:    code,
		Message: msg,
		Err:     err,
	}
}

// WrapSite attaches a site id to err. A SettingsError keeps its code and
// location; any other error is wrapped with code.
func WrapSite(code ErrorCode, site string, err error) error {
	var se *SettingsError
	if errors.As(err, &se) {
		cp := *se
		cp.Site = site
		return &cp
	}
	return &SettingsError{
		Code: code,
		Site: site,
		Err:  err,
	}
}

// CodeOf returns the code of the first SettingsError in err's chain, or
// ErrCodeInternal.
func CodeOf(err error) ErrorCode {
	var se *SettingsError
	if errors.As(err, &se) {
		return se.Code
	}
	return ErrCodeInternal
}

// Is reports whether any error in err's chain matches target.
// This is a re-export of errors.Is for convenience.
var Is = errors.Is

// As finds the first error in err's chain that matches target.
// This is a re-export of errors.As for convenience.
var As = errors.As
