package codegen

import (
	"strings"

	"sinc/internal/ast"
	"sinc/internal/isa"
	"sinc/internal/symbols"
	"sinc/internal/types"
)

func (g *Generator) compileAllocation(out *strings.Builder, st *state, a ast.Allocation) error {
	if g.Symbols.ExistsInScope(a.Name, st.scopeName, st.scopeLevel) {
		return newError(DuplicateDefinition, a.LineNumber, "'%s' is already declared in this scope", a.Name)
	}

	words := a.Type.StackWords()
	if words == 0 {
		words = 1
	}

	hasInit := a.HasInitializer()
	if a.Quality.Has(types.QualConst) && !hasInit {
		return newError(MissingDefault, a.LineNumber, "const '%s' requires an initializer", a.Name)
	}

	if hasInit {
		if lv, ok := a.Initializer.(ast.LValue); ok && lv.Name == a.Name {
			return newError(ReferencedBeforeAssign, a.LineNumber, "'%s' is referenced before it is assigned", a.Name)
		}
		initType, err := g.evalExpr(out, st, a.Initializer, a.LineNumber)
		if err != nil {
			return err
		}
		if !a.Type.Compatible(initType) {
			return newError(TypeMismatch, a.LineNumber, "cannot initialize '%s' with an incompatible type", a.Name)
		}
		emitf(out, "pha")
		if a.Type.Primary == types.String {
			emitf(out, "phb")
		}
	} else {
		emitf(out, "incsp")
		if words > 1 {
			for i := 1; i < words; i++ {
				emitf(out, "incsp")
			}
		}
	}

	sym := symbols.Symbol{
		Kind:        symbols.Variable,
		Name:        a.Name,
		Type:        a.Type,
		ScopeName:   st.scopeName,
		ScopeLevel:  st.scopeLevel,
		Defined:     hasInit,
		Allocated:   true,
		StackOffset: st.stackOffset,
	}
	if err := g.Symbols.Insert(sym, a.LineNumber); err != nil {
		return err
	}
	st.stackOffset += words

	return nil
}

func (g *Generator) compileAssignment(out *strings.Builder, st *state, a ast.Assignment) error {
	lv, ok := a.Lvalue.(ast.LValue)
	if !ok {
		if idx, ok := a.Lvalue.(ast.Indexed); ok {
			return g.compileIndexedAssignment(out, st, idx, a)
		}
		return newError(UnknownSymbol, a.LineNumber, "assignment target must be a variable")
	}
	sym, err := g.Symbols.Lookup(lv.Name, st.scopeName)
	if err != nil {
		return newError(UnknownSymbol, a.LineNumber, "'%s' is not declared", lv.Name)
	}
	if sym.Type.Qualities.Has(types.QualConst) && sym.Defined {
		return newError(ConstMutation, a.LineNumber, "cannot assign to const '%s'", lv.Name)
	}

	rvType, err := g.evalExpr(out, st, a.Rvalue, a.LineNumber)
	if err != nil {
		return err
	}
	if !sym.Type.CompatibleForWrite(rvType) {
		return newError(TypeMismatch, a.LineNumber, "cannot assign incompatible type to '%s'", lv.Name)
	}

	offset := st.stackOffset - sym.StackOffset
	emitf(out, "tspa")
	if offset != 0 {
		emitf(out, "addca #%d", offset)
	}
	emitf(out, "tax")
	emitf(out, "storea $00,x")
	if sym.Type.Primary == types.String {
		emitf(out, "storeb $01,x")
	}

	sym.Defined = true
	return nil
}

func (g *Generator) compileIndexedAssignment(out *strings.Builder, st *state, idx ast.Indexed, a ast.Assignment) error {
	baseLV, ok := idx.Base.(ast.LValue)
	if !ok {
		return newError(UnknownSymbol, a.LineNumber, "array index base must be a variable")
	}
	sym, err := g.Symbols.Lookup(baseLV.Name, st.scopeName)
	if err != nil {
		return newError(UnknownSymbol, a.LineNumber, "'%s' is not declared", baseLV.Name)
	}
	if sym.Type.Primary != types.Array {
		return newError(TypeMismatch, a.LineNumber, "'%s' is not an array", baseLV.Name)
	}

	rvType, err := g.evalExpr(out, st, a.Rvalue, a.LineNumber)
	if err != nil {
		return err
	}
	elemType := types.Type{Primary: sym.Type.Subtype}
	if !elemType.CompatibleForWrite(rvType) {
		return newError(TypeMismatch, a.LineNumber, "element type mismatch assigning to '%s'", baseLV.Name)
	}
	emitf(out, "pha")
	st.stackOffset++

	if _, err := g.evalExpr(out, st, idx.Index, a.LineNumber); err != nil {
		return err
	}
	emitf(out, "tab") // index -> B
	offset := st.stackOffset - sym.StackOffset
	emitf(out, "tspa")
	if offset != 0 {
		emitf(out, "addca #%d", offset)
	}
	emitf(out, "addca b") // A = (base address) + (index)
	emitf(out, "tax")     // effective address -> X

	emitf(out, "plb")
	st.stackOffset--
	emitf(out, "tba")
	emitf(out, "storea $00,x")
	return nil
}

func (g *Generator) compileIfThenElse(out *strings.Builder, st *state, s ast.IfThenElse) error {
	if _, err := g.evalExpr(out, st, s.Cond, s.LineNumber); err != nil {
		return err
	}
	elseLabel := g.nextLabel("Lelse")
	endLabel := g.nextLabel("Lendif")

	emitf(out, "cmpa #0")
	emitf(out, "breq %s", elseLabel)

	thenState := &state{scopeName: st.scopeName, scopeLevel: st.scopeLevel + 1, stackOffset: st.stackOffset, frameBase: st.frameBase, returnType: st.returnType, inFunction: st.inFunction}
	if err := g.compileBlock(out, thenState, s.Then); err != nil {
		return err
	}
	g.Symbols.RemoveScope(st.scopeName, st.scopeLevel+1)

	if s.Else != nil {
		emitf(out, "jmp %s", endLabel)
	}
	emitLabel(out, elseLabel)
	if s.Else != nil {
		elseState := &state{scopeName: st.scopeName, scopeLevel: st.scopeLevel + 1, stackOffset: st.stackOffset, frameBase: st.frameBase, returnType: st.returnType, inFunction: st.inFunction}
		if err := g.compileBlock(out, elseState, *s.Else); err != nil {
			return err
		}
		g.Symbols.RemoveScope(st.scopeName, st.scopeLevel+1)
		emitLabel(out, endLabel)
	}

	return nil
}

func (g *Generator) compileWhileLoop(out *strings.Builder, st *state, s ast.WhileLoop) error {
	topLabel := g.nextLabel("Lwhile")
	exitLabel := g.nextLabel("Lwhileend")

	emitLabel(out, topLabel)
	if _, err := g.evalExpr(out, st, s.Cond, s.LineNumber); err != nil {
		return err
	}
	emitf(out, "cmpa #0")
	emitf(out, "breq %s", exitLabel)

	bodyState := &state{scopeName: st.scopeName, scopeLevel: st.scopeLevel + 1, stackOffset: st.stackOffset, frameBase: st.frameBase, returnType: st.returnType, inFunction: st.inFunction}
	if err := g.compileBlock(out, bodyState, s.Body); err != nil {
		return err
	}
	g.Symbols.RemoveScope(st.scopeName, st.scopeLevel+1)

	emitf(out, "jmp %s", topLabel)
	emitLabel(out, exitLabel)
	return nil
}

func (g *Generator) compileFreeMemory(out *strings.Builder, st *state, s ast.FreeMemory) error {
	if _, err := g.evalExpr(out, st, s.Lvalue, s.LineNumber); err != nil {
		return err
	}
	emitf(out, "tab")
	emitf(out, "loada #%d", isa.SyscallFree)
	emitf(out, "syscall")
	return nil
}
