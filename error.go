package pagedoc

import (
	"errors"
	"fmt"
	"time"
)

// Application error codes.
//
// These are propagated with errors through the pipeline and determine how a
// failure is handled: EUNAUTHORIZED aborts a run immediately and is never
// retried, EUNAVAILABLE is retryable, ECANCELED is a cooperative stop rather
// than a failure.
const (
	ECANCELED     = "canceled"     // run canceled cooperatively
	ECONFLICT     = "conflict"     // action conflicts with current state
	EEMPTY        = "empty"        // extraction produced no content
	EINTERNAL     = "internal"     // internal error
	EINVALID      = "invalid"      // validation failed
	ENOTFOUND     = "not_found"    // entity does not exist
	EUNAUTHORIZED = "unauthorized" // provider rejected the credential
	EUNAVAILABLE  = "unavailable"  // transient provider/network failure
)

// Error represents an application-specific error. Application errors can be
// unwrapped by the caller to extract out the code and message.
type Error struct {
	// Machine-readable error code.
	Code string

	// Human-readable message.
	Message string
}

// Error implements the error interface. Not used by the application otherwise.
func (e *Error) Error() string {
	return fmt.Sprintf("pagedoc error: code=%s message=%s", e.Code, e.Message)
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error"
}

// Errorf is a helper function to return an Error with a given code and formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// StatusError represents a failed provider HTTP call. It preserves the
// status code for retry classification and an optional Retry-After hint.
type StatusError struct {
	// HTTP status code returned by the provider.
	Status int

	// Server-requested backoff parsed from a Retry-After header.
	// Zero when the header was absent.
	RetryAfter time.Duration

	// Human-readable message from the provider response.
	Message string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("provider returned HTTP %d: %s", e.Status, e.Message)
}

// HTTPStatus unwraps a StatusError and returns its status code.
// Returns 0 for nil and non-status errors.
func HTTPStatus(err error) int {
	var e *StatusError
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}

// RetryAfter unwraps a StatusError and returns the server-requested backoff.
// Returns 0 when no hint is available.
func RetryAfter(err error) time.Duration {
	var e *StatusError
	if errors.As(err, &e) {
		return e.RetryAfter
	}
	return 0
}

// IsAuthError reports whether err represents a rejected credential.
// A bad credential cannot be fixed by waiting, so these are never retried.
func IsAuthError(err error) bool {
	if ErrorCode(err) == EUNAUTHORIZED {
		return true
	}
	status := HTTPStatus(err)
	return status == 401 || status == 403
}
