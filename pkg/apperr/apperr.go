package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a business error so the HTTP boundary can pick a status
// code without string matching.
type Kind int

const (
	KindValidation Kind = iota + 1 // malformed or out-of-range input
	KindConflict                   // competing writer / duplicate resource
	KindPrecondition               // state does not allow the operation
	KindNotFound
)

type Error struct {
	Kind  Kind
	Msg   string
	Field string // set for validation errors when a single field is at fault
}

func (e *Error) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Msg
	}
	return e.Msg
}

func Validation(field, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Field: field, Msg: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

func Precondition(format string, args ...any) *Error {
	return &Error{Kind: KindPrecondition, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(what string) *Error {
	return &Error{Kind: KindNotFound, Msg: what + " not found"}
}

// KindOf returns the Kind of err, or 0 for unexpected errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func IsKind(err error, k Kind) bool { return KindOf(err) == k }
