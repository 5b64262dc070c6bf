package domain

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindValidation             ErrorKind = "VALIDATION"
	KindNotFound               ErrorKind = "NOT_FOUND"
	KindCapacityExceeded       ErrorKind = "CAPACITY_EXCEEDED"
	KindDuplicateBooking       ErrorKind = "DUPLICATE_BOOKING"
	KindInvalidStateTransition ErrorKind = "INVALID_STATE_TRANSITION"
	KindConflict               ErrorKind = "CONCURRENCY_CONFLICT"
)

// Error is the structured error carried from the engine to the API boundary.
// Kind drives the HTTP status mapping; Message is safe to return to clients.
type Error struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of a domain error, or "" for any other error.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
