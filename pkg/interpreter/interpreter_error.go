package interpreter

import (
	"errors"
	"fmt"

	"javelin/interpreter-go/pkg/runtime"
	"javelin/interpreter-go/pkg/scope"
)

type RuntimeErrorKind int

const (
	UninitializedVariable RuntimeErrorKind = iota
	UnhandledSignal
	StackOverflow
	Internal
)

func (k RuntimeErrorKind) String() string {
	switch k {
	case UninitializedVariable:
		return "UninitializedVariable"
	case UnhandledSignal:
		return "UnhandledSignal"
	case StackOverflow:
		return "StackOverflow"
	default:
		return "Internal"
	}
}

// RuntimeError is an evaluation failure that is not a guest exception.
type RuntimeError struct {
	Kind    RuntimeErrorKind
	Message string
	Err     error
}

func (e *RuntimeError) Error() string {
	msg := "runtime: " + e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RuntimeError) Unwrap() error { return e.Err }

// Fatal reports errors that indicate a broken interpreter state rather than
// a program fault: stack exhaustion and control transfers nothing caught.
func (e *RuntimeError) Fatal() bool {
	return e.Kind == StackOverflow || e.Kind == UnhandledSignal || e.Kind == Internal
}

// IsFatal reports whether err carries a fatal RuntimeError.
func IsFatal(err error) bool {
	var rerr *RuntimeError
	return errors.As(err, &rerr) && rerr.Fatal()
}

// raise converts a primitive fault into a guest exception object so that
// catch clauses can observe it. Other errors pass through.
func (i *Interpreter) raise(err error) error {
	if err == nil {
		return nil
	}
	var fault *runtime.Fault
	if !errors.As(err, &fault) {
		return err
	}
	obj, nerr := i.resolver.NewThrowable(fault.ClassName, fault.Message)
	if nerr != nil {
		return &RuntimeError{Kind: Internal, Message: "cannot raise " + fault.ClassName, Err: nerr}
	}
	return &runtime.Thrown{Value: obj}
}

// throwf raises a new guest exception of className.
func (i *Interpreter) throwf(className, format string, args ...any) error {
	return i.raise(runtime.NewFault(className, format, args...))
}

// scopeFailure maps a failed scope read or write of a checked program.
func scopeFailure(err error) error {
	var serr *scope.Error
	if !errors.As(err, &serr) {
		return err
	}
	switch serr.Kind {
	case scope.Uninitialized:
		return &RuntimeError{Kind: UninitializedVariable, Message: fmt.Sprintf("variable %s has not been initialized", serr.Name)}
	default:
		return &RuntimeError{Kind: Internal, Message: "scope", Err: serr}
	}
}

// AsThrown extracts a guest exception from err.
func AsThrown(err error) (*runtime.Thrown, bool) {
	var thrown *runtime.Thrown
	if errors.As(err, &thrown) {
		return thrown, true
	}
	return nil, false
}
