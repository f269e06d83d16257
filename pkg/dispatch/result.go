package dispatch

import (
	"errors"
	"strings"

	"github.com/joeydtaylor/vblocks/pkg/tensor"
)

var (
	ErrFunctionNotFound  = errors.New("function not found")
	ErrInvalidReturnType = errors.New("invalid return type")
	ErrBadRequest        = errors.New("bad request")
)

// Code classifies a failed invocation for logs and metrics.
type Code string

const (
	CodeBadRequest    Code = "bad_request"
	CodeNotFound      Code = "function_not_found"
	CodeInvalidReturn Code = "invalid_return_type"
	CodeFailed        Code = "function_failed"
	CodePanic         Code = "panic"
)

// Error is the structured failure carried by a Result.
type Error struct {
	Code     Code
	Function string
	Err      error
	Stack    string // set for recovered panics
}

func (e *Error) Error() string { return string(e.Code) + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// Detail is the full trace text returned to the client: the message, the
// wrapped error chain one cause per line, then the stack when there is one.
func (e *Error) Detail() string {
	var b strings.Builder
	b.WriteString(e.Error())
	for cause := errors.Unwrap(e.Err); cause != nil; cause = errors.Unwrap(cause) {
		b.WriteString("\n  caused by: ")
		b.WriteString(cause.Error())
	}
	if e.Stack != "" {
		b.WriteString("\n\n")
		b.WriteString(e.Stack)
	}
	return b.String()
}

// Result is either a success payload or an Error, never both.
type Result struct {
	Tensors []tensor.Wire // generic, text_to_tensors
	Text    string        // text_to_text
	Err     *Error
}

func (r Result) OK() bool { return r.Err == nil }

func fail(code Code, fn string, err error) Result {
	return Result{Err: &Error{Code: code, Function: fn, Err: err}}
}
