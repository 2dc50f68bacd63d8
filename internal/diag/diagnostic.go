// Package diag is the toolchain-wide diagnostic model: a Diagnostic
// carries the stage that raised it, a severity, a source line, and a
// message. It is grounded on vovakirdan-surge's internal/diag package
// (Severity/Diagnostic/Bag shape), simplified from that package's
// span-based model to a plain line number since this toolchain has no
// lexer/parser producing byte spans of its own (spec.md's driver
// consumes a hand-built AST or an already-tokenized assembly line).
package diag

import (
	"fmt"

	"fortio.org/safecast"
)

// Diagnostic is one reported error, warning, or informational note.
type Diagnostic struct {
	Category Category
	Severity Severity
	Line     uint32
	File     string
	Message  string
}

func (d Diagnostic) String() string {
	loc := d.File
	if d.Line > 0 {
		if loc != "" {
			loc = fmt.Sprintf("%s:%d", loc, d.Line)
		} else {
			loc = fmt.Sprintf("line %d", d.Line)
		}
	}
	if loc == "" {
		return fmt.Sprintf("%s %s: %s", d.Severity, d.Category, d.Message)
	}
	return fmt.Sprintf("%s %s: %s: %s", d.Severity, d.Category, loc, d.Message)
}

// New builds a Diagnostic. Use the Error/Warning/Info helpers for the
// common cases. Callers pass a source line as a plain int (every AST
// and assembler token in this toolchain tracks lines that way); New
// narrows it to the uint32 Diagnostic.Line stores, panicking with a
// wrapped error on overflow rather than silently truncating, the same
// safecast.Conv convention the teacher's internal/symbols.NewTable uses
// for its capacity hints.
func New(cat Category, sev Severity, line int, msg string) Diagnostic {
	l, err := safecast.Conv[uint32](line)
	if err != nil {
		panic(fmt.Errorf("diag: line number overflow: %w", err))
	}
	return Diagnostic{Category: cat, Severity: sev, Line: l, Message: msg}
}

func Error(cat Category, line int, format string, args ...any) Diagnostic {
	return New(cat, SevError, line, fmt.Sprintf(format, args...))
}

func Warning(cat Category, line int, format string, args ...any) Diagnostic {
	return New(cat, SevWarning, line, fmt.Sprintf(format, args...))
}

// AsError adapts a Diagnostic to the error interface so it can be
// returned directly from a compile/assemble/link/run step.
func (d Diagnostic) AsError() error {
	return diagError{d}
}

type diagError struct{ d Diagnostic }

func (e diagError) Error() string { return e.d.String() }

// Diagnostic recovers the underlying Diagnostic from an error produced
// by AsError, for callers that want to inspect Category/Severity/Line.
func (e diagError) Diagnostic() Diagnostic { return e.d }
