// Package errors provides the error taxonomy for the discord-send CLI.
//
// Every failure that should end an invocation with a non-zero exit status is
// a *SenderError. The Code field groups failures into the categories the CLI
// cares about:
//
//   - BAD_CONFIG: a required setting is missing (e.g. no webhook URL)
//   - BAD_RESPONSE: the webhook answered with a non-2xx status or a non-JSON body
//   - STORAGE: the context file could not be read, parsed or written
//   - VALIDATION: user input was rejected before any work was done
//   - INTERNAL: anything else
//
// # Sentinel Errors
//
// Use errors.Is with the sentinels to test the category of an error:
//
//	if errors.Is(err, errors.ErrBadResponse) {
//	    // the webhook rejected the message
//	}
//
// Use errors.As to reach the structured fields:
//
//	var sendErr *errors.SenderError
//	if errors.As(err, &sendErr) {
//	    fmt.Printf("code=%s context=%s\n", sendErr.Code, sendErr.Context)
//	}
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes errors for programmatic handling.
type ErrorCode string

// Error codes for different error categories.
const (
	ErrCodeBadConfig   ErrorCode = "BAD_CONFIG"   // Required setting missing
	ErrCodeBadResponse ErrorCode = "BAD_RESPONSE" // Webhook response rejected
	ErrCodeStorage     ErrorCode = "STORAGE"      // Context file unreadable or unwritable
	ErrCodeValidation  ErrorCode = "VALIDATION"   // Input validation failed
	ErrCodeInternal    ErrorCode = "INTERNAL"     // Internal/unexpected error
)

// SenderError is a structured error carrying the context it relates to.
type SenderError struct {
	Code    ErrorCode // Error category
	Message string    // Human-readable message
	Context string    // Context name (if applicable)
	Status  int       // HTTP status code (BAD_RESPONSE only)
	Err     error     // Underlying error (if any)
}

// Error implements the error interface.
func (e *SenderError) Error() string {
	msg := e.Message
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg = fmt.Sprintf("%s: %v", msg, e.Err)
		}
	}
	if e.Context != "" {
		return fmt.Sprintf("context %q: %s", e.Context, msg)
	}
	return msg
}

// Unwrap returns the underlying error for error chain traversal.
func (e *SenderError) Unwrap() error {
	return e.Err
}

// Is reports whether target matches this error.
// Comparison is based on error code.
func (e *SenderError) Is(target error) bool {
	t, ok := target.(*SenderError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Sentinel errors, for use with errors.Is.
var (
	// ErrBadConfig indicates a context is missing a required setting.
	ErrBadConfig = &SenderError{Code: ErrCodeBadConfig, Message: "bad configuration"}

	// ErrBadResponse indicates the webhook response was rejected.
	ErrBadResponse = &SenderError{Code: ErrCodeBadResponse, Message: "bad response"}

	// ErrStorage indicates the context file could not be used.
	ErrStorage = &SenderError{Code: ErrCodeStorage, Message: "storage error"}

	// ErrEmptyMessage indicates there was nothing to send.
	ErrEmptyMessage = &SenderError{Code: ErrCodeValidation, Message: "message cannot be empty"}
)

// BadConfig reports a context without a webhook URL.
// An empty name is reported as "Unknown".
func BadConfig(contextName string) error {
	if contextName == "" {
		contextName = "Unknown"
	}
	return &SenderError{
		Code:    ErrCodeBadConfig,
		Message: "no webhook_url configured, use --webhook-url to set one",
		Context: contextName,
	}
}

// BadResponse creates an error for a rejected webhook response.
func BadResponse(status int, msg string) error {
	return &SenderError{
		Code:    ErrCodeBadResponse,
		Message: msg,
		Status:  status,
	}
}

// Storage wraps a failure to read, parse or write the context file.
func Storage(msg string, err error) error {
	return &SenderError{
		Code:    ErrCodeStorage,
		Message: msg,
		Err:     err,
	}
}

// Validation creates a validation error with a custom message.
func Validation(msg string) error {
	return &SenderError{
		Code:    ErrCodeValidation,
		Message: msg,
	}
}

// Wrap creates an error with the specified code, message, and underlying error.
func Wrap(code ErrorCode, msg string, err error) error {
	return &SenderError{
		Code:    code,
		Message: msg,
		Err:     err,
	}
}

// WithContext returns a copy of err tagged with a context name.
// Errors that are not *SenderError are wrapped as INTERNAL.
func WithContext(err error, contextName string) error {
	if err == nil {
		return nil
	}
	var se *SenderError
	if errors.As(err, &se) {
		cp := *se
		cp.Context = contextName
		return &cp
	}
	return &SenderError{Code: ErrCodeInternal, Context: contextName, Err: err}
}

// Is reports whether any error in err's chain matches target.
// This is a re-export of errors.Is for convenience.
var Is = errors.Is

// As finds the first error in err's chain that matches target.
// This is a re-export of errors.As for convenience.
var As = errors.As
