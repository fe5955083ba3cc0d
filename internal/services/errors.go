package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed lifecycle operation.
type ErrorKind string

const (
	KindForbidden         ErrorKind = "forbidden"
	KindNotFound          ErrorKind = "not_found"
	KindInvalidActor      ErrorKind = "invalid_actor"
	KindInvalidInput      ErrorKind = "invalid_input"
	KindNoCapacity        ErrorKind = "no_capacity"
	KindAlreadyActive     ErrorKind = "already_active"
	KindAlreadyProcessed  ErrorKind = "already_processed"
	KindPermanentlyBarred ErrorKind = "permanently_barred"
	KindWindowExpired     ErrorKind = "window_expired"
	KindStoreFailure      ErrorKind = "store_failure"
)

// Error is returned by every service operation that fails. Two Errors match
// under errors.Is when their kinds match, so callers compare with the
// sentinels below.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrForbidden         = &Error{Kind: KindForbidden, Message: "forbidden"}
	ErrNotFound          = &Error{Kind: KindNotFound, Message: "not found"}
	ErrInvalidActor      = &Error{Kind: KindInvalidActor, Message: "invalid actor"}
	ErrInvalidInput      = &Error{Kind: KindInvalidInput, Message: "invalid input"}
	ErrNoCapacity        = &Error{Kind: KindNoCapacity, Message: "no capacity"}
	ErrAlreadyActive     = &Error{Kind: KindAlreadyActive, Message: "already active"}
	ErrAlreadyProcessed  = &Error{Kind: KindAlreadyProcessed, Message: "already processed"}
	ErrPermanentlyBarred = &Error{Kind: KindPermanentlyBarred, Message: "permanently barred"}
	ErrWindowExpired     = &Error{Kind: KindWindowExpired, Message: "window expired"}
	ErrStoreFailure      = &Error{Kind: KindStoreFailure, Message: "store failure"}
)

func newError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// storeError wraps an unexpected repository failure. Errors that are
// already classified pass through unchanged.
func storeError(message string, err error) error {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr
	}
	return &Error{Kind: KindStoreFailure, Message: message, Err: err}
}

// KindOf returns the kind carried by err, or "" when err is not a service error.
func KindOf(err error) ErrorKind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return ""
}
