package httperr

import (
	"errors"
	"net/http"
)

// Kind classifies a failure for HTTP mapping.
type Kind int

const (
	KindValidation Kind = iota
	KindConflict
	KindForbidden
	KindNotFound
	KindInternal
)

// Error is a structured failure carrying a kind and a human-readable reason.
type Error struct {
	Kind   Kind
	Reason string
}

func (e *Error) Error() string {
	return e.Reason
}

// Validation reports malformed or unacceptable input.
func Validation(reason string) error {
	return &Error{Kind: KindValidation, Reason: reason}
}

// Conflict reports a duplicate where uniqueness is required.
func Conflict(reason string) error {
	return &Error{Kind: KindConflict, Reason: reason}
}

// Forbidden reports an authorization denial with the specific rule violated.
func Forbidden(reason string) error {
	return &Error{Kind: KindForbidden, Reason: reason}
}

// NotFound reports a missing referenced object.
func NotFound(reason string) error {
	return &Error{Kind: KindNotFound, Reason: reason}
}

// Internal wraps an unexpected failure behind a generic reason.
func Internal(reason string) error {
	return &Error{Kind: KindInternal, Reason: reason}
}

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Status maps an error to its HTTP status code.
func Status(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// IsForbidden reports whether err is an authorization denial.
func IsForbidden(err error) bool {
	return KindOf(err) == KindForbidden
}
