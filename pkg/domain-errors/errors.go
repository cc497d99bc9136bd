// Package domainerrors carries the coded errors that services return and the
// HTTP layer translates. Services map store sentinels onto these codes; the
// handler maps codes onto status lines without inspecting messages.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain failure for transport mapping.
type Code string

const (
	CodeBadRequest   Code = "bad_request"
	CodeUnauthorized Code = "unauthorized"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	CodeInternal     Code = "internal"
)

// Error is a coded domain error. Message is safe to return to callers; the
// wrapped cause is for logs only.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds a coded error with a caller-facing message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Message extracts the caller-facing message, falling back to a generic one
// for uncoded errors so internals never leak.
func Message(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "internal error"
}

// ToHTTPStatus maps a code onto an HTTP status.
// The original service answered 400 for duplicate registration and invalid
// credentials alike, so Conflict and Unauthorized both map to 400 here.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest, CodeConflict, CodeUnauthorized:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// StatusFor resolves the HTTP status for any error.
func StatusFor(err error) int {
	var de *Error
	if errors.As(err, &de) {
		return ToHTTPStatus(de.Code)
	}
	return http.StatusInternalServerError
}
