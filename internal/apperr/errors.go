// Package apperr defines the error kinds shared by the store, gateways and
// authoring workflows.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrValidation     = errors.New("validation failed")
	ErrConflict       = errors.New("conflict")
	ErrNotFound       = errors.New("not found")
	ErrUpstream       = errors.New("upstream service failed")
	ErrPartialFailure = errors.New("partially applied")
)

// Error carries a kind sentinel, an optional field name and a user-facing message.
type Error struct {
	Kind    error
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.Error()
	}
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Validation reports a missing or malformed field.
func Validation(field, message string) error {
	return &Error{Kind: ErrValidation, Field: field, Message: message}
}

// Conflict reports a uniqueness violation.
func Conflict(message string) error {
	return &Error{Kind: ErrConflict, Message: message}
}

// NotFound reports an unknown id, slug or an empty geocoding result.
func NotFound(message string) error {
	return &Error{Kind: ErrNotFound, Message: message}
}

// Upstream wraps a failure of a third-party service.
func Upstream(message string, cause error) error {
	return &Error{Kind: ErrUpstream, Message: message, Err: cause}
}

// PartialFailureError is returned when a multi-step save stopped midway.
// Completed and Failed name the steps so the caller can tell what was applied.
type PartialFailureError struct {
	Op        string
	Completed []string
	Failed    []string
	Err       error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("%s partially applied (done: %s; failed: %s): %v",
		e.Op, strings.Join(e.Completed, ", "), strings.Join(e.Failed, ", "), e.Err)
}

func (e *PartialFailureError) Unwrap() []error {
	return []error{ErrPartialFailure, e.Err}
}

// Field returns the offending field of a validation error, if any.
func Field(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Field
	}
	return ""
}

// Message returns the text shown to the user for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var partial *PartialFailureError
	if errors.As(err, &partial) {
		return fmt.Sprintf("Saved %s, but %s failed: %s",
			strings.Join(partial.Completed, ", "), strings.Join(partial.Failed, ", "), Message(partial.Err))
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		if appErr.Message != "" {
			return appErr.Message
		}
		return appErr.Kind.Error()
	}
	return "Something went wrong, please try again"
}

// HTTPStatus maps an error kind to a response status.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrPartialFailure):
		return http.StatusInternalServerError
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
