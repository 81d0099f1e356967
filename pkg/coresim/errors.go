package coresim

import (
	"errors"
	"fmt"
)

// Kind is the category of a CoreSimulator failure.
type Kind int

const (
	KindLoad Kind = iota + 1
	KindService
	KindInternal
	KindParameter
)

func (k Kind) String() string {
	switch k {
	case KindLoad:
		return "load error"
	case KindService:
		return "service error"
	case KindInternal:
		return "internal error"
	case KindParameter:
		return "parameter error"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error codes
const (
	CodeFrameworkNotFound = 1
	CodeClassNotFound     = 2
	CodeSelectorNotFound  = 3
	CodeServiceContext    = 4
	CodeDeviceSet         = 5
	CodeMissingUDID       = 6
	CodeInvalidUDID       = 7
	CodeDeviceNotFound    = 8
	CodeDeviceNotBooted   = 9
	CodeSetState          = 10
	CodePostNotification  = 11
)

// Kind sentinels for use with errors.Is
var (
	ErrLoad      = &Error{Kind: KindLoad}
	ErrService   = &Error{Kind: KindService}
	ErrInternal  = &Error{Kind: KindInternal}
	ErrParameter = &Error{Kind: KindParameter}
)

// Error is returned by every CoreSimulator operation.
type Error struct {
	Kind Kind
	Code int
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (code %d): %s: %v", e.Kind, e.Code, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s (code %d): %s", e.Kind, e.Code, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on Kind, and on Code as well when the target sets one.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Code == 0 || t.Code == e.Code
}

func newError(kind Kind, code int, err error, format string, args ...any) *Error {
	return &Error{
		Kind: kind,
		Code: code,
		Msg:  fmt.Sprintf(format, args...),
		Err:  err,
	}
}

func loadError(code int, err error, format string, args ...any) *Error {
	return newError(KindLoad, code, err, format, args...)
}

func serviceError(code int, err error, format string, args ...any) *Error {
	return newError(KindService, code, err, format, args...)
}

func internalError(code int, err error, format string, args ...any) *Error {
	return newError(KindInternal, code, err, format, args...)
}

func parameterError(code int, format string, args ...any) *Error {
	return newError(KindParameter, code, nil, format, args...)
}

// CodeOf returns the code carried by err, or 0 if err is not an *Error.
func CodeOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return 0
}
