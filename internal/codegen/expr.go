package codegen

import (
	"strings"

	"sinc/internal/ast"
	"sinc/internal/types"
)

// evalExpr lowers expr so its value lands in A (and, for strings, its
// length in B and address in A per spec.md §4.1's "Expression
// evaluation"), returning the static type of the result.
func (g *Generator) evalExpr(out *strings.Builder, st *state, expr ast.Expr, line int) (types.Type, error) {
	switch e := expr.(type) {
	case ast.IntLiteral:
		emitf(out, "loada #%d", e.Value)
		return types.Type{Primary: types.Int}, nil
	case ast.FloatLiteral:
		emitf(out, "loada #%d", int64(e.Value))
		return types.Type{Primary: types.Float}, nil
	case ast.BoolLiteral:
		v := 0
		if e.Value {
			v = 1
		}
		emitf(out, "loada #%d", v)
		return types.Type{Primary: types.Bool}, nil
	case ast.StringLiteral:
		emitf(out, "loada #%s", stringLabel(e.Value))
		emitf(out, "loadb #%d", len(e.Value))
		return types.Type{Primary: types.String}, nil
	case ast.LValue:
		return g.evalLValue(out, st, e.Name, line)
	case ast.Indexed:
		return g.evalIndexed(out, st, e, line)
	case ast.Unary:
		return g.evalUnary(out, st, e, line)
	case ast.Binary:
		return g.evalBinary(out, st, e, line)
	case ast.AddressOf:
		return g.evalAddressOf(out, st, e, line)
	case ast.Dereferenced:
		return g.evalDereferenced(out, st, e, line)
	case ast.SizeOf:
		emitf(out, "loada #%d", e.Type.StackWords()*2)
		return types.Type{Primary: types.Int}, nil
	case ast.CallExpr:
		asmText, resultType, err := g.compileCall(st, e.Name, e.Args, line)
		if err != nil {
			return types.Type{}, err
		}
		out.WriteString(asmText)
		return resultType, nil
	case ast.Empty:
		return types.Type{Primary: types.None}, nil
	default:
		return types.Type{}, newError(UnknownSymbol, line, "unsupported expression type %T", expr)
	}
}

// stringLabel is the generated data label for a string literal. The
// assembler resolves it against a @db entry the driver emits once per
// distinct literal; codegen only needs a stable, referenceable name.
func stringLabel(value string) string {
	var b strings.Builder
	b.WriteString("__str_")
	for _, r := range value {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

func (g *Generator) evalLValue(out *strings.Builder, st *state, name string, line int) (types.Type, error) {
	sym, err := g.Symbols.Lookup(name, st.scopeName)
	if err != nil {
		return types.Type{}, newError(UnknownSymbol, line, "'%s' is not declared", name)
	}
	offset := st.stackOffset - sym.StackOffset
	emitf(out, "tspa")
	if offset != 0 {
		emitf(out, "addca #%d", offset)
	}
	emitf(out, "tax")
	emitf(out, "loada $00,x")
	if sym.Type.Primary == types.String {
		emitf(out, "loadb $01,x")
	}
	return sym.Type, nil
}

func (g *Generator) evalIndexed(out *strings.Builder, st *state, e ast.Indexed, line int) (types.Type, error) {
	baseLV, ok := e.Base.(ast.LValue)
	if !ok {
		return types.Type{}, newError(UnknownSymbol, line, "array index base must be a variable")
	}
	sym, err := g.Symbols.Lookup(baseLV.Name, st.scopeName)
	if err != nil {
		return types.Type{}, newError(UnknownSymbol, line, "'%s' is not declared", baseLV.Name)
	}
	if sym.Type.Primary != types.Array {
		return types.Type{}, newError(TypeMismatch, line, "'%s' is not an array", baseLV.Name)
	}
	if _, err := g.evalExpr(out, st, e.Index, line); err != nil {
		return types.Type{}, err
	}
	emitf(out, "tab") // index -> B
	offset := st.stackOffset - sym.StackOffset
	emitf(out, "tspa")
	if offset != 0 {
		emitf(out, "addca #%d", offset)
	}
	emitf(out, "addca b") // A = (base address) + (index)
	emitf(out, "tax")
	emitf(out, "loada $00,x")
	elemType := types.Type{Primary: sym.Type.Subtype}
	return elemType, nil
}

func (g *Generator) evalUnary(out *strings.Builder, st *state, e ast.Unary, line int) (types.Type, error) {
	argType, err := g.evalExpr(out, st, e.Arg, line)
	if err != nil {
		return types.Type{}, err
	}
	switch e.Op {
	case ast.UnaryNeg:
		// subca computes B-A (see evalBinary); B must hold 0 and A the
		// operand, so leave the evaluated value in A and zero B.
		emitf(out, "loadb #0")
		emitf(out, "subca b")
	case ast.UnaryNot:
		trueLabel := g.nextLabel("Lnot")
		endLabel := g.nextLabel("Lnotend")
		emitf(out, "cmpa #0")
		emitf(out, "breq %s", trueLabel)
		emitf(out, "loada #0")
		emitf(out, "jmp %s", endLabel)
		emitLabel(out, trueLabel)
		emitf(out, "loada #1")
		emitLabel(out, endLabel)
	}
	return argType, nil
}

// evalBinary follows spec.md §4.1's "Expression evaluation" literally:
// evaluate lhs into A, push; evaluate rhs into A; pop into B; emit the
// ALU opcode on A,B. By this point B holds lhs, A holds rhs, so the ALU
// opcodes are defined (see internal/vm) to compute B <op> A for
// non-commutative operators, keeping operand order correct without a
// second swap.
func (g *Generator) evalBinary(out *strings.Builder, st *state, e ast.Binary, line int) (types.Type, error) {
	if e.Op.IsShortCircuit() {
		return g.evalShortCircuit(out, st, e, line)
	}

	lhsType, err := g.evalExpr(out, st, e.Lhs, line)
	if err != nil {
		return types.Type{}, err
	}
	emitf(out, "pha")
	st.stackOffset++
	rhsType, err := g.evalExpr(out, st, e.Rhs, line)
	if err != nil {
		return types.Type{}, err
	}
	if !lhsType.Compatible(rhsType) {
		return types.Type{}, newError(TypeMismatch, line, "operand types do not match")
	}
	emitf(out, "plb")
	st.stackOffset--

	mnemonic, resultType, err := binaryOpcode(e.Op, lhsType)
	if err != nil {
		return types.Type{}, newError(TypeMismatch, line, "%s", err)
	}
	emitf(out, "%s b", mnemonic)
	if isComparison(e.Op) {
		g.materializeComparison(out, e.Op)
	}
	return resultType, nil
}

// materializeComparison turns the STATUS flags CMPA left after cmpa b
// into a 0/1 result in A, since expression evaluation always leaves its
// result as a value, not as flags (spec.md §4.1: "results land in A").
//
// evalBinary's push/pop sequence leaves A holding Rhs and B holding Lhs
// by the time "cmpa b" runs, so executeComparison sees reg=Rhs,
// operand=Lhs: Carry ends up set iff Rhs>Lhs, i.e. iff Lhs<Rhs. BRGT
// (branches on Carry set) therefore corresponds to source-level "<",
// and BRLT (Carry clear) to ">=" — the reverse of their mnemonics, a
// consequence of the A/B swap rather than a naming choice. Carry is
// also clear on equality, so ">" rules out equality with BREQ first.
func (g *Generator) materializeComparison(out *strings.Builder, op ast.BinaryOp) {
	trueLabel := g.nextLabel("Lcmp")
	endLabel := g.nextLabel("Lcmpend")
	switch op {
	case ast.BinEq:
		emitf(out, "breq %s", trueLabel)
	case ast.BinNeq:
		emitf(out, "brne %s", trueLabel)
	case ast.BinGt:
		falseLabel := g.nextLabel("Lcmpfalse")
		emitf(out, "breq %s", falseLabel)
		emitf(out, "brlt %s", trueLabel)
		emitLabel(out, falseLabel)
	case ast.BinLt:
		emitf(out, "brgt %s", trueLabel)
	case ast.BinGe:
		emitf(out, "brlt %s", trueLabel)
		emitf(out, "breq %s", trueLabel)
	case ast.BinLe:
		emitf(out, "brgt %s", trueLabel)
		emitf(out, "breq %s", trueLabel)
	}
	emitf(out, "loada #0")
	emitf(out, "jmp %s", endLabel)
	emitLabel(out, trueLabel)
	emitf(out, "loada #1")
	emitLabel(out, endLabel)
}

func isComparison(op ast.BinaryOp) bool {
	switch op {
	case ast.BinEq, ast.BinNeq, ast.BinLt, ast.BinGt, ast.BinLe, ast.BinGe:
		return true
	default:
		return false
	}
}

func (g *Generator) evalShortCircuit(out *strings.Builder, st *state, e ast.Binary, line int) (types.Type, error) {
	skipLabel := g.nextLabel("Lsc")
	if _, err := g.evalExpr(out, st, e.Lhs, line); err != nil {
		return types.Type{}, err
	}
	emitf(out, "cmpa #0")
	if e.Op == ast.BinLogicalAnd {
		emitf(out, "breq %s", skipLabel)
	} else {
		emitf(out, "brne %s", skipLabel)
	}
	if _, err := g.evalExpr(out, st, e.Rhs, line); err != nil {
		return types.Type{}, err
	}
	emitLabel(out, skipLabel)
	return types.Type{Primary: types.Bool}, nil
}

func binaryOpcode(op ast.BinaryOp, operand types.Type) (string, types.Type, error) {
	boolResult := types.Type{Primary: types.Bool}
	switch op {
	case ast.BinAdd:
		return "addca", operand, nil
	case ast.BinSub:
		return "subca", operand, nil
	case ast.BinMul:
		if operand.Qualities.Has(types.QualUnsigned) {
			return "multua", operand, nil
		}
		return "multa", operand, nil
	case ast.BinDiv:
		if operand.Qualities.Has(types.QualUnsigned) {
			return "divua", operand, nil
		}
		return "diva", operand, nil
	case ast.BinAnd:
		return "anda", operand, nil
	case ast.BinOr:
		return "ora", operand, nil
	case ast.BinXor:
		return "xora", operand, nil
	case ast.BinEq:
		return "cmpa", boolResult, nil
	case ast.BinNeq:
		return "cmpa", boolResult, nil
	case ast.BinLt:
		return "cmpa", boolResult, nil
	case ast.BinGt:
		return "cmpa", boolResult, nil
	case ast.BinLe:
		return "cmpa", boolResult, nil
	case ast.BinGe:
		return "cmpa", boolResult, nil
	default:
		return "", types.Type{}, errUnsupportedOperator
	}
}

var errUnsupportedOperator = &opError{"unsupported binary operator"}

type opError struct{ msg string }

func (e *opError) Error() string { return e.msg }

func (g *Generator) evalAddressOf(out *strings.Builder, st *state, e ast.AddressOf, line int) (types.Type, error) {
	lv, ok := e.Lvalue.(ast.LValue)
	if !ok {
		return types.Type{}, newError(UnknownSymbol, line, "address-of target must be a variable")
	}
	sym, err := g.Symbols.Lookup(lv.Name, st.scopeName)
	if err != nil {
		return types.Type{}, newError(UnknownSymbol, line, "'%s' is not declared", lv.Name)
	}
	offset := st.stackOffset - sym.StackOffset
	emitf(out, "tspa")
	if offset != 0 {
		emitf(out, "addca #%d", offset)
	}
	return types.Type{Primary: types.Ptr, Subtype: sym.Type.Primary}, nil
}

func (g *Generator) evalDereferenced(out *strings.Builder, st *state, e ast.Dereferenced, line int) (types.Type, error) {
	ptrType, err := g.evalExpr(out, st, e.Ptr, line)
	if err != nil {
		return types.Type{}, err
	}
	if ptrType.Primary != types.Ptr {
		return types.Type{}, newError(TypeMismatch, line, "cannot dereference a non-pointer")
	}
	emitf(out, "tax")
	emitf(out, "loada $00,x")
	return types.Type{Primary: ptrType.Subtype}, nil
}
