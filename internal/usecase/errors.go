package usecase

import (
	"errors"
	"fmt"
)

// ErrorKind classifies business-rule failures so handlers can pick a status code.
type ErrorKind string

const (
	KindNotFound     ErrorKind = "not_found"
	KindForbidden    ErrorKind = "forbidden"
	KindConflict     ErrorKind = "conflict"
	KindInvalidState ErrorKind = "invalid_state"
	KindValidation   ErrorKind = "validation"
)

// ServiceError is a rule violation with a message safe to show to the caller.
// Any other error returned by a service is an infrastructure failure.
type ServiceError struct {
	Kind    ErrorKind
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

func newError(kind ErrorKind, format string, args ...any) *ServiceError {
	return &ServiceError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func errNotFound(format string, args ...any) error {
	return newError(KindNotFound, format, args...)
}

func errForbidden(format string, args ...any) error {
	return newError(KindForbidden, format, args...)
}

func errConflict(format string, args ...any) error {
	return newError(KindConflict, format, args...)
}

func errInvalidState(format string, args ...any) error {
	return newError(KindInvalidState, format, args...)
}

func errValidation(format string, args ...any) error {
	return newError(KindValidation, format, args...)
}

// KindOf returns the kind of err, or "" when err is not a rule violation.
func KindOf(err error) ErrorKind {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}
