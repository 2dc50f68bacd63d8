// Package symbols implements the compiler's symbol table: name/scope
// bindings for variables and functions, following spec.md §3 and §9 and
// grounded, algorithm for algorithm, on original_source/compile/SymbolTable.cpp.
package symbols

import (
	"sinc/internal/ast"
	"sinc/internal/types"
)

// Kind distinguishes a variable binding from a function binding.
type Kind uint8

const (
	Variable Kind = iota
	FunctionDefinition
)

// Symbol is one entry in the symbol table.
type Symbol struct {
	Kind        Kind
	Name        string
	Type        types.Type
	ScopeName   string
	ScopeLevel  int
	Defined     bool
	Allocated   bool
	Freed       bool
	StackOffset int
	StructName  string

	// FormalParameters is set only for Kind == FunctionDefinition.
	FormalParameters []ast.Param
}

// GlobalScope is the reserved name of the outermost scope.
const GlobalScope = "global"
