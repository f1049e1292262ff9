// errors.go defines the failure taxonomy seen by callers.
//
// Every failure that reaches a caller is an *Error whose message starts with
// its Kind, so clients that only see text can still tell failures apart.

package tool

import (
	"errors"
	"fmt"
)

// Kind classifies a failed invocation.
type Kind string

const (
	KindUnknownTool     Kind = "UnknownTool"
	KindMissingArgument Kind = "MissingArgument"
	KindHandlerFailure  Kind = "HandlerFailure"
	KindRemoteDetail    Kind = "RemoteDetail"
	KindBusy            Kind = "Busy"
)

// Sentinels for errors.Is checks against an *Error.
var (
	ErrUnknownTool     = errors.New("unknown tool")
	ErrMissingArgument = errors.New("missing argument")
	ErrHandlerFailure  = errors.New("handler failure")
	ErrRemoteDetail    = errors.New("remote error")
	ErrBusy            = errors.New("busy")
)

// Error is a classified invocation failure.
type Error struct {
	Kind  Kind
	Tool  string
	Field string // MissingArgument only
	Err   error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindUnknownTool:
		return fmt.Sprintf("%s: %q is not a registered tool", e.Kind, e.Tool)
	case KindMissingArgument:
		return fmt.Sprintf("%s(%s): %s requires %q", e.Kind, e.Field, e.Tool, e.Field)
	case KindBusy:
		return fmt.Sprintf("%s: %s", e.Kind, e.Err)
	}
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnknownTool:
		return e.Kind == KindUnknownTool
	case ErrMissingArgument:
		return e.Kind == KindMissingArgument
	case ErrHandlerFailure:
		return e.Kind == KindHandlerFailure
	case ErrRemoteDetail:
		return e.Kind == KindRemoteDetail
	case ErrBusy:
		return e.Kind == KindBusy
	}
	return false
}

// UnknownTool reports a request for a tool that is not registered.
func UnknownTool(name string) *Error {
	return &Error{Kind: KindUnknownTool, Tool: name}
}

// MissingArgument reports a required field absent from a request.
func MissingArgument(name, field string) *Error {
	return &Error{Kind: KindMissingArgument, Tool: name, Field: field}
}

// Busy reports an exclusive category that already has an invocation in flight.
func Busy(name, category string) *Error {
	return &Error{
		Kind: KindBusy,
		Tool: name,
		Err:  fmt.Errorf("%s is already running an operation in category %q", name, category),
	}
}

// HandlerFailure wraps an error raised by a handler.
func HandlerFailure(name string, err error) *Error {
	return &Error{Kind: KindHandlerFailure, Tool: name, Err: err}
}

// RemoteDetail wraps a handler error that carries detail from the remote hub.
func RemoteDetail(name string, err error) *Error {
	return &Error{Kind: KindRemoteDetail, Tool: name, Err: err}
}
