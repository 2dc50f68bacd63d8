package codegen

import (
	"strings"
	"testing"

	"sinc/internal/assemble"
	"sinc/internal/ast"
	"sinc/internal/isa"
	"sinc/internal/link"
	"sinc/internal/objfile"
	"sinc/internal/symbols"
	"sinc/internal/types"
	"sinc/internal/vm"
)

// compileAndRun lowers block to sinasm, wraps it under a "main:" label
// followed by a halt (block itself never emits one; only compileDefinition
// terminates with rts), and drives the result through assemble, link, and
// vm the way internal/examples' fixtures do — so a bug in the emitted
// operand order or branch selection surfaces as a wrong register value,
// not just as a substring match against the generated assembly text.
func compileAndRun(t *testing.T, block ast.Block) *vm.VM {
	t.Helper()

	table := symbols.NewTable()
	gen := NewGenerator(table)
	body, err := gen.CompileGlobalBlock(block)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	src := "main:\n" + body + "\thalt\n"
	file, err := assemble.Assemble(src, isa.WordSize)
	if err != nil {
		t.Fatalf("assemble: %v\n%s", err, src)
	}
	result, err := link.Link([]objfile.File{file}, isa.PrgBottom)
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	m := vm.New(result.Image, result.Base, result.Entry)
	if err := m.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	return m
}

func comparisonAllocation(op ast.BinaryOp, lhs, rhs int64) ast.Block {
	return ast.Block{Statements: []ast.Stmt{
		ast.Allocation{
			LineNumber: 1,
			Name:       "r",
			Type:       types.Type{Primary: types.Bool},
			Initializer: ast.Binary{
				Op:  op,
				Lhs: ast.IntLiteral{Value: lhs},
				Rhs: ast.IntLiteral{Value: rhs},
			},
		},
	}}
}

func TestCompileOrderingComparisonsRunCorrectly(t *testing.T) {
	cases := []struct {
		name     string
		op       ast.BinaryOp
		lhs, rhs int64
		want     uint16
	}{
		{"2<5 is true", ast.BinLt, 2, 5, 1},
		{"5<2 is false", ast.BinLt, 5, 2, 0},
		{"2>5 is false", ast.BinGt, 2, 5, 0},
		{"5>2 is true", ast.BinGt, 5, 2, 1},
		{"2<=2 is true", ast.BinLe, 2, 2, 1},
		{"3<=2 is false", ast.BinLe, 3, 2, 0},
		{"2>=2 is true", ast.BinGe, 2, 2, 1},
		{"2>=3 is false", ast.BinGe, 2, 3, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			m := compileAndRun(t, comparisonAllocation(c.op, c.lhs, c.rhs))
			if m.A != c.want {
				t.Fatalf("A = %d, want %d", m.A, c.want)
			}
		})
	}
}

func TestCompileAllocationWithInitializer(t *testing.T) {
	table := symbols.NewTable()
	gen := NewGenerator(table)

	block := ast.Block{Statements: []ast.Stmt{
		ast.Allocation{LineNumber: 1, Name: "x", Type: types.Type{Primary: types.Int}, Initializer: ast.IntLiteral{Value: 5}},
	}}

	out, err := gen.CompileGlobalBlock(block)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "loada #5") {
		t.Fatalf("expected initializer load in output, got:\n%s", out)
	}
	if !strings.Contains(out, "pha") {
		t.Fatalf("expected push after initializer, got:\n%s", out)
	}

	sym, err := table.Lookup("x", symbols.GlobalScope)
	if err != nil {
		t.Fatalf("expected 'x' to be registered: %v", err)
	}
	if !sym.Defined {
		t.Fatalf("expected 'x' to be marked defined")
	}
}

func TestCompileAllocationDuplicateFails(t *testing.T) {
	table := symbols.NewTable()
	gen := NewGenerator(table)
	block := ast.Block{Statements: []ast.Stmt{
		ast.Allocation{LineNumber: 1, Name: "x", Type: types.Type{Primary: types.Int}, Initializer: ast.IntLiteral{Value: 1}},
		ast.Allocation{LineNumber: 2, Name: "x", Type: types.Type{Primary: types.Int}, Initializer: ast.IntLiteral{Value: 2}},
	}}
	if _, err := gen.CompileGlobalBlock(block); err == nil {
		t.Fatalf("expected duplicate allocation to fail")
	}
}

func TestCompileDefinitionRequiresGlobalScope(t *testing.T) {
	table := symbols.NewTable()
	gen := NewGenerator(table)
	inner := ast.Definition{
		LineNumber: 3,
		Name:       "nested",
		ReturnType: types.Type{Primary: types.Void},
		Body:       ast.Block{Statements: []ast.Stmt{ast.Return{LineNumber: 4}}},
	}
	block := ast.Block{Statements: []ast.Stmt{
		ast.IfThenElse{
			LineNumber: 1,
			Cond:       ast.BoolLiteral{Value: true},
			Then:       ast.Block{Statements: []ast.Stmt{inner}},
		},
	}}
	_, err := gen.CompileGlobalBlock(block)
	if err == nil {
		t.Fatalf("expected non-global definition to fail")
	}
	codegenErr, ok := err.(*Error)
	if !ok || codegenErr.Kind != NonGlobalDefinition {
		t.Fatalf("expected NonGlobalDefinition error, got %v", err)
	}
}

func TestCompileFactorialLikeDefinitionAndCall(t *testing.T) {
	table := symbols.NewTable()
	gen := NewGenerator(table)

	factorial := ast.Definition{
		LineNumber: 1,
		Name:       "factorial",
		ReturnType: types.Type{Primary: types.Int},
		Params: []ast.Param{
			{Name: "n", Type: types.Type{Primary: types.Int}},
		},
		Body: ast.Block{Statements: []ast.Stmt{
			ast.IfThenElse{
				LineNumber: 2,
				Cond: ast.Binary{
					Op:  ast.BinLe,
					Lhs: ast.LValue{Name: "n"},
					Rhs: ast.IntLiteral{Value: 1},
				},
				Then: ast.Block{Statements: []ast.Stmt{
					ast.Return{LineNumber: 3, Expr: ast.IntLiteral{Value: 1}},
				}},
			},
			ast.Return{
				LineNumber: 4,
				Expr: ast.Binary{
					Op:  ast.BinMul,
					Lhs: ast.LValue{Name: "n"},
					Rhs: ast.CallExpr{Name: "factorial", Args: []ast.Expr{
						ast.Binary{Op: ast.BinSub, Lhs: ast.LValue{Name: "n"}, Rhs: ast.IntLiteral{Value: 1}},
					}},
				},
			},
		}},
	}

	call := ast.Call{LineNumber: 10, Name: "factorial", Args: []ast.Expr{ast.IntLiteral{Value: 5}}}

	block := ast.Block{Statements: []ast.Stmt{factorial, call}}

	out, err := gen.CompileGlobalBlock(block)
	if err != nil {
		t.Fatalf("unexpected error compiling factorial: %v", err)
	}
	if !strings.Contains(out, "factorial:") {
		t.Fatalf("expected function label, got:\n%s", out)
	}
	if !strings.Contains(out, "jsr factorial") {
		t.Fatalf("expected recursive/outer call to emit jsr, got:\n%s", out)
	}
	if !strings.Contains(out, "rts") {
		t.Fatalf("expected rts at end of function, got:\n%s", out)
	}
}

func TestCompileCallWrongArity(t *testing.T) {
	table := symbols.NewTable()
	gen := NewGenerator(table)
	def := ast.Definition{
		LineNumber: 1,
		Name:       "f",
		ReturnType: types.Type{Primary: types.Void},
		Body:       ast.Block{Statements: []ast.Stmt{ast.Return{LineNumber: 2}}},
	}
	call := ast.Call{LineNumber: 3, Name: "f", Args: []ast.Expr{ast.IntLiteral{Value: 1}}}
	block := ast.Block{Statements: []ast.Stmt{def, call}}
	_, err := gen.CompileGlobalBlock(block)
	if err == nil {
		t.Fatalf("expected wrong-arity call to fail")
	}
	codegenErr, ok := err.(*Error)
	if !ok || codegenErr.Kind != WrongArity {
		t.Fatalf("expected WrongArity error, got %v", err)
	}
}

func TestCompileUnaryNegationZeroesB(t *testing.T) {
	table := symbols.NewTable()
	gen := NewGenerator(table)
	block := ast.Block{Statements: []ast.Stmt{
		ast.Allocation{LineNumber: 1, Name: "x", Type: types.Type{Primary: types.Int},
			Initializer: ast.Unary{Op: ast.UnaryNeg, Arg: ast.IntLiteral{Value: 7}}},
	}}

	out, err := gen.CompileGlobalBlock(block)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// subca computes B-A (see evalBinary's doc comment), so negation
	// must zero B and leave the operand in A, not the other way around.
	if !strings.Contains(out, "loadb #0") {
		t.Fatalf("expected loadb #0 before subca in negation, got:\n%s", out)
	}
	if strings.Contains(out, "tab\n\tloada #0") {
		t.Fatalf("negation should not swap the operand into B via tab, got:\n%s", out)
	}
	if !strings.Contains(out, "subca b") {
		t.Fatalf("expected subca b in negation, got:\n%s", out)
	}
}

func TestCompileConstMutationRejected(t *testing.T) {
	table := symbols.NewTable()
	gen := NewGenerator(table)
	block := ast.Block{Statements: []ast.Stmt{
		ast.Allocation{LineNumber: 1, Name: "c", Type: types.Type{Primary: types.Int, Qualities: types.Qualities(types.QualConst)}, Initializer: ast.IntLiteral{Value: 1}},
		ast.Assignment{LineNumber: 2, Lvalue: ast.LValue{Name: "c"}, Rvalue: ast.IntLiteral{Value: 2}},
	}}
	_, err := gen.CompileGlobalBlock(block)
	if err == nil {
		t.Fatalf("expected const mutation to fail")
	}
	codegenErr, ok := err.(*Error)
	if !ok || codegenErr.Kind != ConstMutation {
		t.Fatalf("expected ConstMutation error, got %v", err)
	}
}
