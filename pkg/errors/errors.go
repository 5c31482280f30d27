// Package errors defines the coded errors of the dynalayout engine.
//
// Every failure the engine reports carries a [Code]. Codes fall into a few
// classes that decide how callers react: input errors are reported back to
// whoever supplied the graph, definition conflicts are never resolved
// automatically, and fatal errors (missing provenance, solver failures)
// abort the whole run.
//
//	err := errors.New(errors.ErrCodeDefinitionConflict, "interval %s overlaps %s", a, b)
//	if errors.Is(err, errors.ErrCodeDefinitionConflict) {
//	    // report the conflicting definitions
//	}
//
//	err = errors.Wrap(errors.ErrCodeSolverFailure, cause, "solve level %d", k)
//	if errors.IsFatal(err) {
//	    // abort the layout
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error code. It appears verbatim in API
// responses.
type Code string

const (
	ErrCodeDefinitionConflict Code = "DEFINITION_CONFLICT"
	ErrCodeOutOfInterval      Code = "OUT_OF_INTERVAL"
	ErrCodeMissingMapping     Code = "MISSING_MAPPING"
	ErrCodeSolverFailure      Code = "SOLVER_FAILURE"
	ErrCodeInvalidInput       Code = "INVALID_INPUT"
	ErrCodeInvalidInterval    Code = "INVALID_INTERVAL"
	ErrCodeInvalidNodeID      Code = "INVALID_NODE_ID"
	ErrCodeInvalidFormat      Code = "INVALID_FORMAT"
	ErrCodeNotFound           Code = "NOT_FOUND"
	ErrCodeInternal           Code = "INTERNAL_ERROR"
)

// Class groups codes by how a caller should react to them.
type Class uint8

const (
	// ClassUnknown covers uncoded errors and unknown codes.
	ClassUnknown Class = iota
	// ClassInput: the graph, interval or option supplied was malformed.
	ClassInput
	// ClassConflict: two temporal definitions claim the same instant.
	ClassConflict
	// ClassNotFound: a referenced node, edge or level does not exist.
	ClassNotFound
	// ClassFatal: the run cannot continue and its partial result is unusable.
	ClassFatal
)

var classes = map[Code]Class{
	ErrCodeInvalidInput:       ClassInput,
	ErrCodeInvalidInterval:    ClassInput,
	ErrCodeInvalidNodeID:      ClassInput,
	ErrCodeInvalidFormat:      ClassInput,
	ErrCodeOutOfInterval:      ClassInput,
	ErrCodeDefinitionConflict: ClassConflict,
	ErrCodeNotFound:           ClassNotFound,
	ErrCodeMissingMapping:     ClassFatal,
	ErrCodeSolverFailure:      ClassFatal,
	ErrCodeInternal:           ClassFatal,
}

// Class returns the class of c.
func (c Code) Class() Class { return classes[c] }

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an error with code and a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap is New with a cause. Wrapping an uncoded error with
// GetCode(cause) yields an uncoded wrapper, which keeps it internal.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// outermost returns the first *Error in err's chain.
func outermost(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// Is reports whether the outermost coded error in err's chain has code.
func Is(err error, code Code) bool {
	e, ok := outermost(err)
	return ok && e.Code == code
}

// GetCode returns the outermost code in err's chain, or "".
func GetCode(err error) Code {
	if e, ok := outermost(err); ok {
		return e.Code
	}
	return ""
}

// ClassOf returns the class of err's outermost code.
func ClassOf(err error) Class { return GetCode(err).Class() }

// UserMessage returns the message of a coded error without the code
// prefix, or err.Error() for anything else.
func UserMessage(err error) string {
	if e, ok := outermost(err); ok {
		return e.Message
	}
	return err.Error()
}

// IsFatal reports whether err must abort a layout run.
func IsFatal(err error) bool { return ClassOf(err) == ClassFatal }

// Process exit statuses used by the command line.
const (
	ExitFailure  = 1
	ExitInput    = 2
	ExitConflict = 3
	ExitFatal    = 4
)

// ExitCode maps err to a process exit status.
func ExitCode(err error) int {
	switch ClassOf(err) {
	case ClassInput, ClassNotFound:
		return ExitInput
	case ClassConflict:
		return ExitConflict
	case ClassFatal:
		return ExitFatal
	}
	return ExitFailure
}
