package codegen

import (
	"fmt"

	"sinc/internal/diag"
)

// Error wraps a diag.Diagnostic so codegen failures satisfy the error
// interface while still exposing which of spec.md §4.1's named error
// conditions occurred, for callers (and tests) that want to switch on it.
type Error struct {
	Kind string
	Line int
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: line %d: %s", e.Kind, e.Line, e.Msg)
}

func (e *Error) Diagnostic() diag.Diagnostic {
	return diag.Error(diag.CompilerError, e.Line, "%s: %s", e.Kind, e.Msg)
}

func newError(kind string, line int, format string, args ...any) *Error {
	return &Error{Kind: kind, Line: line, Msg: fmt.Sprintf(format, args...)}
}

// The fixed vocabulary of fatal code generation errors named in
// spec.md §4.1's "Errors" list.
const (
	DuplicateDefinition      = "DuplicateDefinition"
	UnknownSymbol            = "UnknownSymbol"
	TypeMismatch             = "TypeMismatch"
	WrongArity               = "WrongArity"
	MissingDefault           = "MissingDefault"
	NonGlobalDefinition      = "NonGlobalDefinition"
	EmptyFunctionBody        = "EmptyFunctionBody"
	ConstMutation            = "ConstMutation"
	UnreachableReturn        = "UnreachableReturn"
	ReferencedBeforeAssign   = "ReferencedBeforeAssignment"
	StructArgsUnsupported    = "StructArgsUnsupported"
)
