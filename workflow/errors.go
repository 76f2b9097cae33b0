package workflow

import (
	"errors"
	"fmt"
)

// Error kinds. Every *Error unwraps to exactly one of these so callers can branch with errors.Is.
var (
	ErrNotFound            = errors.New("not found")
	ErrNotAuthorized       = errors.New("not authorized")
	ErrForbiddenTransition = errors.New("forbidden transition")
	ErrValidation          = errors.New("validation failed")
	ErrInvalidStage        = errors.New("invalid stage")
	ErrInvalidAssignee     = errors.New("invalid assignee")
)

// Error is a caller-facing workflow failure. None of them are retryable.
type Error struct {
	Code    string
	Message string
	kind    error
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the error kind
func (e *Error) Unwrap() error {
	return e.kind
}

func newError(kind error, code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		kind:    kind,
	}
}

// NotFound reports that an entity id does not resolve
func NotFound(format string, args ...any) *Error {
	return newError(ErrNotFound, "NOT_FOUND", format, args...)
}

// NotAuthorized reports a failed role or ownership check
func NotAuthorized(format string, args ...any) *Error {
	return newError(ErrNotAuthorized, "NOT_AUTHORIZED", format, args...)
}

// ForbiddenTransition reports an allowed role acting on a field or status it may not touch
func ForbiddenTransition(format string, args ...any) *Error {
	return newError(ErrForbiddenTransition, "FORBIDDEN_TRANSITION", format, args...)
}

// Validation reports missing or malformed input
func Validation(format string, args ...any) *Error {
	return newError(ErrValidation, "VALIDATION_ERROR", format, args...)
}

// InvalidStage reports a stage name outside review, prepress, production, delivery
func InvalidStage(format string, args ...any) *Error {
	return newError(ErrInvalidStage, "INVALID_STAGE", format, args...)
}

// InvalidAssignee reports an assignment target that is missing or not an employee
func InvalidAssignee(format string, args ...any) *Error {
	return newError(ErrInvalidAssignee, "INVALID_ASSIGNEE", format, args...)
}
