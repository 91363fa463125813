// Package errors provides the application error taxonomy. Every failure that
// reaches the edge of a handler is mapped to one of these kinds, which carry
// the HTTP status and the message shown to the user; raw internal error text
// never leaves the server.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a tagged application error with a stable code, a user-facing
// message, and the HTTP status it maps to.
type Error struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// WithMessage returns a copy of the error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	return &Error{
		Code:       e.Code,
		Message:    message,
		StatusCode: e.StatusCode,
	}
}

// Standard error definitions
var (
	// ErrBadRequest is returned when the request is malformed, for example a
	// non-numeric id in a bulk operation.
	ErrBadRequest = &Error{
		Code:       "bad_request",
		Message:    "Invalid request",
		StatusCode: http.StatusBadRequest,
	}

	// ErrAuthFailed is the generic credential-mismatch failure. It never
	// distinguishes an unknown ID from a wrong password.
	ErrAuthFailed = &Error{
		Code:       "auth_failed",
		Message:    "ID and password do not match",
		StatusCode: http.StatusUnauthorized,
	}

	// ErrUnauthorized is returned when authentication is required but missing.
	ErrUnauthorized = &Error{
		Code:       "unauthorized",
		Message:    "Authentication required",
		StatusCode: http.StatusUnauthorized,
	}

	// ErrForbidden is returned when the user does not own the referenced
	// resource, or on a CSRF token mismatch.
	ErrForbidden = &Error{
		Code:       "forbidden",
		Message:    "You don't have permission to perform this action",
		StatusCode: http.StatusForbidden,
	}

	// ErrNotFound is returned when a user or task does not exist.
	ErrNotFound = &Error{
		Code:       "not_found",
		Message:    "The requested resource was not found",
		StatusCode: http.StatusNotFound,
	}

	// ErrConflict is returned when a resource already exists.
	ErrConflict = &Error{
		Code:       "conflict",
		Message:    "Resource already exists",
		StatusCode: http.StatusConflict,
	}

	// ErrRateLimited is returned when rate limits are exceeded.
	ErrRateLimited = &Error{
		Code:       "rate_limited",
		Message:    "Too many requests. Please try again later.",
		StatusCode: http.StatusTooManyRequests,
	}

	// ErrUploadTooLarge is returned for avatar files over the size ceiling.
	ErrUploadTooLarge = &Error{
		Code:       "upload_too_large",
		Message:    "The file is too large. The maximum size is 2MB.",
		StatusCode: http.StatusRequestEntityTooLarge,
	}

	// ErrUploadBadType is returned for avatar files outside the allowed
	// image types.
	ErrUploadBadType = &Error{
		Code:       "upload_bad_type",
		Message:    "Invalid file type. Please upload a JPEG, PNG or GIF image.",
		StatusCode: http.StatusUnsupportedMediaType,
	}

	// ErrInternal is returned for unexpected server errors.
	ErrInternal = &Error{
		Code:       "internal_error",
		Message:    "An internal error occurred",
		StatusCode: http.StatusInternalServerError,
	}
)

// NewNotFoundError creates a not found error for a specific resource type.
func NewNotFoundError(resource string) *Error {
	return &Error{
		Code:       "not_found",
		Message:    fmt.Sprintf("%s not found", resource),
		StatusCode: http.StatusNotFound,
	}
}

// IsCode reports whether err is an application Error with the given code.
func IsCode(err error, code string) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Code == code
}

// AsError converts an error to an application Error. Unknown errors map to
// ErrInternal so that internal detail is never shown to the client.
func AsError(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return ErrInternal
}
