package codegen

import (
	"strings"

	"sinc/internal/ast"
	"sinc/internal/symbols"
	"sinc/internal/types"
)

// compileDefinition lowers a function definition, grounded on
// Compiler::define in original_source/compile/Functions.cpp: register
// (or complete) the function's symbol, push each formal parameter into
// the function's own scope at level 1 with a monotonically increasing
// stack offset, lower the body, and append an rts.
func (g *Generator) compileDefinition(out *strings.Builder, st *state, d ast.Definition) error {
	if st.scopeName != symbols.GlobalScope || st.scopeLevel != 0 {
		return newError(NonGlobalDefinition, d.LineNumber, "function definitions must be in the global scope")
	}

	if g.Symbols.IsInSymbolTable(d.Name, symbols.GlobalScope) {
		existing, err := g.Symbols.Lookup(d.Name, symbols.GlobalScope)
		if err == nil && existing.Kind == symbols.FunctionDefinition {
			if existing.Defined {
				return newError(DuplicateDefinition, d.LineNumber, "function '%s' is already defined", d.Name)
			}
			existing.Defined = true
		}
	} else {
		sym := symbols.Symbol{
			Kind:             symbols.FunctionDefinition,
			Name:             d.Name,
			Type:             d.ReturnType,
			ScopeName:        symbols.GlobalScope,
			ScopeLevel:       0,
			Defined:          true,
			FormalParameters: d.Params,
		}
		if err := g.Symbols.Insert(sym, d.LineNumber); err != nil {
			return err
		}
	}

	emitLabel(out, d.Name)

	bodyState := &state{
		scopeName:  d.Name,
		scopeLevel: 1,
		returnType: d.ReturnType,
		inFunction: true,
	}

	mustBeDefault := false
	for _, param := range d.Params {
		if param.HasDefault() {
			mustBeDefault = true
		} else if mustBeDefault {
			return newError(MissingDefault, d.LineNumber, "default parameters must be declared last in '%s'", d.Name)
		}
		if param.Type.Primary == types.Struct {
			return newError(StructArgsUnsupported, d.LineNumber, "struct parameters are not supported")
		}

		sym := symbols.Symbol{
			Kind:        symbols.Variable,
			Name:        param.Name,
			Type:        param.Type,
			ScopeName:   d.Name,
			ScopeLevel:  1,
			Defined:     true, // the call site guarantees every parameter is supplied (defaults fill gaps)
			Allocated:   true,
			StackOffset: bodyState.stackOffset,
		}
		if err := g.Symbols.Insert(sym, d.LineNumber); err != nil {
			return err
		}

		words := param.Type.StackWords()
		if words == 0 {
			words = 1
		}
		bodyState.stackOffset += words
	}
	bodyState.frameBase = bodyState.stackOffset

	if len(d.Body.Statements) == 0 {
		return newError(EmptyFunctionBody, d.LineNumber, "'return' statement expected in '%s'", d.Name)
	}
	if err := g.compileBlock(out, bodyState, d.Body); err != nil {
		return err
	}

	g.Symbols.RemoveScope(d.Name, 1)
	emitf(out, "rts")
	return nil
}

// compileCall lowers a function call, grounded on Compiler::call: push
// actual arguments left-to-right (falling back to formal defaults for
// missing trailing arguments), jsr to the function label, then restore
// the caller's tracked stack_offset according to the return type.
func (g *Generator) compileCall(st *state, name string, args []ast.Expr, line int) (string, types.Type, error) {
	var out strings.Builder

	if !g.Symbols.IsInSymbolTable(name, symbols.GlobalScope) {
		return "", types.Type{}, newError(UnknownSymbol, line, "cannot locate function '%s'", name)
	}
	funcSym, err := g.Symbols.Lookup(name, symbols.GlobalScope)
	if err != nil || funcSym.Kind != symbols.FunctionDefinition {
		return "", types.Type{}, newError(UnknownSymbol, line, "'%s' is not a function", name)
	}

	formals := funcSym.FormalParameters
	if len(args) > len(formals) {
		return "", types.Type{}, newError(WrongArity, line, "too many arguments in call to '%s': expected %d, got %d", name, len(formals), len(args))
	}

	callState := &state{scopeName: st.scopeName, scopeLevel: st.scopeLevel, stackOffset: st.stackOffset, frameBase: st.frameBase, returnType: st.returnType, inFunction: st.inFunction}
	frameBaseBeforeCall := callState.stackOffset

	for i, formal := range formals {
		var argExpr ast.Expr
		if i < len(args) {
			argExpr = args[i]
		} else if formal.HasDefault() {
			argExpr = formal.Default
		} else {
			return "", types.Type{}, newError(MissingDefault, line, "not enough arguments in call to '%s'; missing '%s'", name, formal.Name)
		}

		argType, err := g.evalExpr(&out, callState, argExpr, line)
		if err != nil {
			return "", types.Type{}, err
		}
		if !formal.Type.Compatible(argType) {
			return "", types.Type{}, newError(TypeMismatch, line, "argument %d of call to '%s' has the wrong type", i+1, name)
		}
		if formal.Type.Primary == types.Struct {
			return "", types.Type{}, newError(StructArgsUnsupported, line, "struct arguments are not supported")
		}

		emitf(&out, "pha")
		if formal.Type.Primary == types.String {
			emitf(&out, "phb")
			callState.stackOffset++
		}
		callState.stackOffset++
	}

	emitf(&out, "jsr %s", name)

	switch funcSym.Type.Primary {
	case types.Array:
		elemWords := 1
		if funcSym.Type.Subtype == types.String {
			elemWords = 2
		}
		st.stackOffset = frameBaseBeforeCall - funcSym.Type.ArrayLength*elemWords
	default:
		st.stackOffset = frameBaseBeforeCall
	}

	return out.String(), funcSym.Type, nil
}

// compileReturn lowers a return statement, grounded on
// Compiler::return_value: check the expression's type against the
// enclosing function's declared return type, evaluate it into A/B,
// unwind the data stack back to the function's frame base, then rts.
func (g *Generator) compileReturn(out *strings.Builder, st *state, r ast.Return) error {
	if !st.inFunction {
		return newError(UnreachableReturn, r.LineNumber, "'return' outside of a function")
	}

	if r.Expr == nil {
		if st.returnType.Primary != types.Void && st.returnType.Primary != types.None {
			return newError(TypeMismatch, r.LineNumber, "function must return a value of type %s", st.returnType.Primary)
		}
		g.unwindTo(out, st, st.frameBase)
		emitf(out, "rts")
		return nil
	}

	returnType, err := g.evalExpr(out, st, r.Expr, r.LineNumber)
	if err != nil {
		return err
	}
	if !returnType.Compatible(st.returnType) {
		return newError(TypeMismatch, r.LineNumber, "return expression does not match function's declared return type")
	}

	emitf(out, "tax")
	emitf(out, "tby")
	g.unwindTo(out, st, st.frameBase)
	emitf(out, "tyb")
	emitf(out, "txa")
	emitf(out, "rts")
	return nil
}

// unwindTo emits the sequence that resets the data stack pointer back
// to targetOffset words above the frame's base address, matching
// Compiler::move_sp_to_target_address.
func (g *Generator) unwindTo(out *strings.Builder, st *state, targetOffset int) {
	delta := st.stackOffset - targetOffset
	if delta <= 0 {
		return
	}
	for i := 0; i < delta; i++ {
		emitf(out, "incsp")
	}
	st.stackOffset = targetOffset
}
