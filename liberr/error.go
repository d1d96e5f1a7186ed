package liberr

import (
	"fmt"
	"runtime"
)

// Error extends the standard error with a CodeError classification, an
// optional parent (the host error or exception that triggered it) and a
// captured call-site trace.
type Error interface {
	error

	Code() CodeError
	Is(code CodeError) bool
	Parent() error
	Trace() string

	Unwrap() error
}

type ers struct {
	code   CodeError
	msg    string
	parent error
	frame  runtime.Frame
}

// New creates an Error of the given code, capturing the caller's location.
func New(code CodeError, msg string, parent error) Error {
	e := &ers{code: code, msg: msg, parent: parent}
	e.frame = callerFrame(2)
	return e
}

// Wrap is a convenience for New(code, err.Error(), err); it returns nil if
// err is nil, so call sites can unconditionally wrap a returned error.
func Wrap(code CodeError, err error) Error {
	if err == nil {
		return nil
	}
	e := &ers{code: code, msg: err.Error(), parent: err}
	e.frame = callerFrame(2)
	return e
}

func callerFrame(skip int) runtime.Frame {
	pc := make([]uintptr, 1)
	n := runtime.Callers(skip+1, pc)
	if n == 0 {
		return runtime.Frame{}
	}
	frame, _ := runtime.CallersFrames(pc[:n]).Next()
	return frame
}

func (e *ers) Error() string {
	if e.msg != "" {
		return e.msg
	}
	return e.code.String()
}

func (e *ers) Code() CodeError {
	return e.code
}

func (e *ers) Is(code CodeError) bool {
	return e.code == code
}

func (e *ers) Parent() error {
	return e.parent
}

func (e *ers) Unwrap() error {
	return e.parent
}

func (e *ers) Trace() string {
	if e.frame.Function == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d (%s)", e.frame.File, e.frame.Line, e.frame.Function)
}

// IsCode reports whether err is, or wraps, a liberr.Error of the given code.
func IsCode(err error, code CodeError) bool {
	for err != nil {
		if e, ok := err.(Error); ok {
			if e.Is(code) {
				return true
			}
			err = e.Unwrap()
			continue
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// CodeOf returns the CodeError of err if it is a liberr.Error, else UnknownError.
func CodeOf(err error) CodeError {
	if e, ok := err.(Error); ok {
		return e.Code()
	}
	return UnknownError
}
