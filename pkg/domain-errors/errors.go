// Package dErrors provides code-tagged domain errors.
//
// Services wrap infrastructure failures and invariant violations into coded
// errors; transport layers translate codes to HTTP statuses without inspecting
// error text. Use sentinel errors (pkg/platform/sentinel) for infrastructure
// facts and this package for domain outcomes.
package dErrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a class of domain error.
type Code string

const (
	// CodeInvalidInput marks locally detectable bad input: malformed income
	// arrays, family size below one, non-decimal amounts.
	CodeInvalidInput Code = "invalid_input"

	// CodeBadRequest marks request-shape problems (unparseable body, bad IDs).
	CodeBadRequest Code = "bad_request"

	// CodeValidation marks payloads that parse but violate domain rules.
	CodeValidation Code = "validation_failed"

	// CodeMissingReferenceData marks absent prerequisite data: no median
	// income threshold for a district, or no calculated result where one is
	// required. User-actionable, not a system fault.
	CodeMissingReferenceData Code = "missing_reference_data"

	// CodeNotFound marks entities that do not exist.
	CodeNotFound Code = "not_found"

	// CodeConflict marks uniqueness or state conflicts.
	CodeConflict Code = "conflict"

	// CodeInvariantViolation marks broken model invariants detected at
	// construction time. Services usually re-wrap these as CodeValidation.
	CodeInvariantViolation Code = "invariant_violation"

	// CodeInternal marks unexpected infrastructure failures.
	CodeInternal Code = "internal_error"
)

// Error is a domain error carrying a Code, a human-readable message, and an
// optional wrapped cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// New constructs a domain error with the given code and message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf constructs a domain error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error. The cause stays
// reachable through errors.Is/As for sentinel checks.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
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

// Is is an alias for HasCode kept for call-site readability.
func Is(err error, code Code) bool { return HasCode(err, code) }

// CodeOf extracts the code from err, defaulting to CodeInternal for untagged
// errors so transport never leaks raw failure text.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf extracts the domain message from err, empty for untagged errors.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return ""
}

// ToHTTPStatus maps a code to its HTTP status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidInput, CodeBadRequest, CodeValidation, CodeInvariantViolation:
		return http.StatusBadRequest
	case CodeMissingReferenceData:
		return http.StatusUnprocessableEntity
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
