package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	// Transport errors: fatal to the worker that owns the connection.
	ErrCodeNiriSocket  ErrorCode = "NIRI_SOCKET"
	ErrCodeDBusConnect ErrorCode = "DBUS_CONNECT"
	ErrCodeDBusMonitor ErrorCode = "DBUS_MONITOR"

	// Protocol errors: surfaced to the immediate caller, never fatal.
	ErrCodeNiriReply          ErrorCode = "NIRI_REPLY"
	ErrCodeUnexpectedResponse ErrorCode = "UNEXPECTED_RESPONSE"

	// Lookup errors: degrade correlation gracefully.
	ErrCodeProcUnreadable ErrorCode = "PROC_UNREADABLE"
	ErrCodeProcMalformed  ErrorCode = "PROC_MALFORMED"
	ErrCodeProcBadPPID    ErrorCode = "PROC_BAD_PPID"

	// Delivery errors: a channel receiver has gone away.
	ErrCodeStreamClosed ErrorCode = "STREAM_CLOSED"

	// General errors
	ErrCodeConfigNotFound ErrorCode = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  ErrorCode = "CONFIG_INVALID"
	ErrCodeInternal       ErrorCode = "INTERNAL_ERROR"
)

// TaskbarError represents a structured error with context
type TaskbarError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *TaskbarError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *TaskbarError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *TaskbarError) WithDetail(key string, value interface{}) *TaskbarError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ToJSON converts the error to JSON
func (e *TaskbarError) ToJSON() string {
	data, _ := json.MarshalIndent(e, "", "  ")
	return string(data)
}

// New creates a new TaskbarError
func New(code ErrorCode, message string) *TaskbarError {
	return &TaskbarError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a TaskbarError
func Wrap(err error, code ErrorCode, message string) *TaskbarError {
	return &TaskbarError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Is checks if an error is a specific TaskbarError code
func Is(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}
	if te, ok := err.(*TaskbarError); ok {
		return te.Code == code
	}
	return false
}

// AsTaskbarError extracts a TaskbarError from an error chain, if present.
func AsTaskbarError(err error) (*TaskbarError, bool) {
	for err != nil {
		if te, ok := err.(*TaskbarError); ok {
			return te, true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = unwrapper.Unwrap()
	}
	return nil, false
}
