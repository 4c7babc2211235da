package errs

import (
	"errors"
	"fmt"

	"room_chat_service/pkg/logger"
)

// Kind classifies a failure the way callers recover from it, not where it
// happened. Every error crossing a use-case boundary carries one.
type Kind int

const (
	// KindValidation malformed input; recovered locally, never a system failure
	KindValidation Kind = iota
	// KindAccessDenied wrong private-room key; transient user-facing notice
	KindAccessDenied
	// KindNotFound document vanished between read and write; abandoned, not retried
	KindNotFound
	// KindCollaboratorUnavailable network/auth/store failure; logged and surfaced
	KindCollaboratorUnavailable
)

// Error is the single error type of the service taxonomy.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

// Unwrap expose the wrapped cause
func (e *Error) Unwrap() error { return e.Err }

// Validation create a validation error
func Validation(msg string) error {
	return &Error{Kind: KindValidation, Msg: msg}
}

// AccessDenied create an access-denied error
func AccessDenied(msg string) error {
	return &Error{Kind: KindAccessDenied, Msg: msg}
}

// NotFound create a not-found error
func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Msg: msg}
}

// Collaborator wraps a failure of an external collaborator (store, auth,
// network). Logged at the call site per the error design: never silently
// swallowed, never fatal to the process.
func Collaborator(msg string, err error) error {
	e := &Error{Kind: KindCollaboratorUnavailable, Msg: msg, Err: err}
	logger.Log.Error(e.Error())
	return e
}

// IsKind report whether err carries the given kind
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// IsValidation shorthand for IsKind(err, KindValidation)
func IsValidation(err error) bool { return IsKind(err, KindValidation) }

// IsAccessDenied shorthand for IsKind(err, KindAccessDenied)
func IsAccessDenied(err error) bool { return IsKind(err, KindAccessDenied) }

// IsNotFound shorthand for IsKind(err, KindNotFound)
func IsNotFound(err error) bool { return IsKind(err, KindNotFound) }
