// Package codegen lowers a StatementBlock into textual sinasm assembly,
// threading a scope name, a scope level, and a stack-offset counter the
// way original_source/compile/Functions.cpp and the rest of the
// Compiler class do. It never touches the VM or the assembler directly;
// its only output is an assembly-text string plus the symbol table
// mutations recording where every local variable lives.
package codegen

import (
	"fmt"
	"strings"

	"sinc/internal/ast"
	"sinc/internal/symbols"
	"sinc/internal/types"
)

// Generator lowers AST to sinasm text against a shared symbol table.
type Generator struct {
	Symbols *symbols.Table

	// Dialect is compared against InlineAssembly.Dialect; blocks tagged
	// for a different dialect are skipped rather than emitted, so a
	// generator targeting a different backend can coexist in the same
	// source tree (spec.md §3's InlineAssembly node, restored per
	// SPEC_FULL.md's supplemented-features section).
	Dialect string

	labelCounter int
}

// NewGenerator returns a Generator bound to an existing symbol table.
// Passing in the table (rather than owning one) lets a driver share it
// across translation units compiled via Include.
func NewGenerator(table *symbols.Table) *Generator {
	return &Generator{Symbols: table, Dialect: "sinasm"}
}

// state is the mutable compilation context threaded through one
// function body (or the top-level global block): the current scope
// name/level, the running stack-offset counter, and the offset the
// enclosing frame began at, which Return needs to unwind back to.
type state struct {
	scopeName   string
	scopeLevel  int
	stackOffset int
	frameBase   int
	returnType  types.Type // valid only while compiling inside a function
	inFunction  bool
}

func (g *Generator) nextLabel(prefix string) string {
	g.labelCounter++
	return fmt.Sprintf("%s%d", prefix, g.labelCounter)
}

// CompileGlobalBlock lowers the top-level StatementBlock of a
// translation unit, starting in the global scope at level 0 with an
// empty stack.
func (g *Generator) CompileGlobalBlock(block ast.Block) (string, error) {
	st := &state{scopeName: symbols.GlobalScope, scopeLevel: 0}
	var out strings.Builder
	if err := g.compileBlock(&out, st, block); err != nil {
		return "", err
	}
	return out.String(), nil
}

// compileBlock lowers every statement in order, sharing st's stack
// offset and scope across statements the way a single StatementBlock
// pass does in the original compiler.
func (g *Generator) compileBlock(out *strings.Builder, st *state, block ast.Block) error {
	for _, stmt := range block.Statements {
		if err := g.compileStmt(out, st, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) compileStmt(out *strings.Builder, st *state, stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case ast.Include:
		// The driver resolves includes; the generator emits nothing.
		return nil
	case ast.Allocation:
		return g.compileAllocation(out, st, s)
	case ast.Assignment:
		return g.compileAssignment(out, st, s)
	case ast.IfThenElse:
		return g.compileIfThenElse(out, st, s)
	case ast.WhileLoop:
		return g.compileWhileLoop(out, st, s)
	case ast.Definition:
		return g.compileDefinition(out, st, s)
	case ast.Call:
		asmText, resultType, err := g.compileCall(st, s.Name, s.Args, s.LineNumber)
		if err != nil {
			return err
		}
		_ = resultType
		out.WriteString(asmText)
		return nil
	case ast.Return:
		return g.compileReturn(out, st, s)
	case ast.InlineAssembly:
		if s.Dialect == g.Dialect {
			out.WriteString(s.Text)
			if !strings.HasSuffix(s.Text, "\n") {
				out.WriteByte('\n')
			}
		}
		return nil
	case ast.FreeMemory:
		return g.compileFreeMemory(out, st, s)
	default:
		return newError(UnknownSymbol, stmt.Line(), "unsupported statement type %T", stmt)
	}
}

func emitf(out *strings.Builder, format string, args ...any) {
	fmt.Fprintf(out, "\t%s\n", fmt.Sprintf(format, args...))
}

func emitLabel(out *strings.Builder, name string) {
	fmt.Fprintf(out, "%s:\n", name)
}
