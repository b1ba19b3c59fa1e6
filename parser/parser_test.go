package parser

import (
	"testing"

	"github.com/nitrassic/nitrassic/ast"
	"github.com/nitrassic/nitrassic/lexer"
)

func parseProgram(t *testing.T, input string) *ast.Program {
	t.Helper()
	p := New(lexer.New(input))
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parser errors for %q: %v", input, errs)
	}
	return prog
}

func TestParseVarDecl(t *testing.T) {
	prog := parseProgram(t, "var x = 1, y = 2;")
	if len(prog.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Statements))
	}
	decl, ok := prog.Statements[0].(*ast.VarDecl)
	if !ok {
		t.Fatalf("expected *ast.VarDecl, got %T", prog.Statements[0])
	}
	if decl.Kind != ast.DeclVar || len(decl.Declarators) != 2 {
		t.Fatalf("unexpected decl shape: %+v", decl)
	}
	if decl.Declarators[0].Name != "x" || decl.Declarators[1].Name != "y" {
		t.Fatalf("unexpected declarator names: %+v", decl.Declarators)
	}
}

func TestParseLetConst(t *testing.T) {
	prog := parseProgram(t, "let a = 1; const b = 2;")
	if prog.Statements[0].(*ast.VarDecl).Kind != ast.DeclLet {
		t.Fatalf("expected let")
	}
	if prog.Statements[1].(*ast.VarDecl).Kind != ast.DeclConst {
		t.Fatalf("expected const")
	}
}

func TestParseBinaryPrecedence(t *testing.T) {
	prog := parseProgram(t, "1 + 2 * 3;")
	stmt := prog.Statements[0].(*ast.ExpressionStatement)
	op, ok := stmt.Expr.(*ast.Operator)
	if !ok || op.Op != ast.OpAdd {
		t.Fatalf("expected top-level +, got %#v", stmt.Expr)
	}
	right, ok := op.Operands[1].(*ast.Operator)
	if !ok || right.Op != ast.OpMul {
		t.Fatalf("expected right operand to be *, got %#v", op.Operands[1])
	}
}

func TestParseIfElse(t *testing.T) {
	prog := parseProgram(t, "if (x) { y; } else { z; }")
	stmt := prog.Statements[0].(*ast.If)
	if stmt.Then == nil || stmt.Else == nil {
		t.Fatalf("expected both branches, got %+v", stmt)
	}
}

func TestParseForLoop(t *testing.T) {
	prog := parseProgram(t, "for (var i = 0; i < 10; i++) { x; }")
	stmt, ok := prog.Statements[0].(*ast.For)
	if !ok {
		t.Fatalf("expected *ast.For, got %T", prog.Statements[0])
	}
	if stmt.Init == nil || stmt.Cond == nil || stmt.Update == nil {
		t.Fatalf("expected all three clauses populated: %+v", stmt)
	}
}

func TestParseForIn(t *testing.T) {
	prog := parseProgram(t, "for (var k in obj) { x; }")
	stmt, ok := prog.Statements[0].(*ast.ForIn)
	if !ok {
		t.Fatalf("expected *ast.ForIn, got %T", prog.Statements[0])
	}
	if stmt.Of || stmt.Name != "k" {
		t.Fatalf("unexpected for-in shape: %+v", stmt)
	}
}

func TestParseForOf(t *testing.T) {
	prog := parseProgram(t, "for (var v of list) { x; }")
	stmt, ok := prog.Statements[0].(*ast.ForIn)
	if !ok || !stmt.Of {
		t.Fatalf("expected for-of, got %+v", stmt)
	}
}

func TestParseFunctionDecl(t *testing.T) {
	prog := parseProgram(t, "function add(a, b) { return a + b; }")
	decl, ok := prog.Statements[0].(*ast.FunctionDecl)
	if !ok {
		t.Fatalf("expected *ast.FunctionDecl, got %T", prog.Statements[0])
	}
	if decl.Fn.Name != "add" || len(decl.Fn.Params) != 2 {
		t.Fatalf("unexpected function shape: %+v", decl.Fn)
	}
}

func TestParseArrowFunction(t *testing.T) {
	prog := parseProgram(t, "var f = (a, b) => a + b;")
	decl := prog.Statements[0].(*ast.VarDecl)
	fn, ok := decl.Declarators[0].Init.(*ast.FunctionRef)
	if !ok || !fn.IsArrow {
		t.Fatalf("expected arrow function, got %#v", decl.Declarators[0].Init)
	}
	if len(fn.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(fn.Params))
	}
}

func TestParseTernaryAndAssignment(t *testing.T) {
	prog := parseProgram(t, "x = a ? 1 : 2;")
	stmt := prog.Statements[0].(*ast.ExpressionStatement)
	assign, ok := stmt.Expr.(*ast.Operator)
	if !ok || assign.Op != ast.OpAssign {
		t.Fatalf("expected assignment, got %#v", stmt.Expr)
	}
	cond, ok := assign.Operands[1].(*ast.Operator)
	if !ok || cond.Op != ast.OpConditional {
		t.Fatalf("expected conditional, got %#v", assign.Operands[1])
	}
}

func TestParseCompoundAssignment(t *testing.T) {
	prog := parseProgram(t, "x += 1;")
	stmt := prog.Statements[0].(*ast.ExpressionStatement)
	op, ok := stmt.Expr.(*ast.Operator)
	if !ok || op.Op != ast.OpCompoundAssign || op.CompoundOp != ast.OpAdd {
		t.Fatalf("unexpected compound assignment: %#v", stmt.Expr)
	}
}

func TestParseMemberAndCall(t *testing.T) {
	prog := parseProgram(t, "obj.method(1, 2)[0];")
	stmt := prog.Statements[0].(*ast.ExpressionStatement)
	idx, ok := stmt.Expr.(*ast.Member)
	if !ok || !idx.Computed {
		t.Fatalf("expected computed member at top, got %#v", stmt.Expr)
	}
	call, ok := idx.Object.(*ast.Call)
	if !ok || len(call.Args) != 2 {
		t.Fatalf("expected call with 2 args, got %#v", idx.Object)
	}
	member, ok := call.Callee.(*ast.Member)
	if !ok || member.Name != "method" {
		t.Fatalf("expected dot-member callee, got %#v", call.Callee)
	}
}

func TestParseNewExpression(t *testing.T) {
	prog := parseProgram(t, "new Foo(1);")
	stmt := prog.Statements[0].(*ast.ExpressionStatement)
	n, ok := stmt.Expr.(*ast.New)
	if !ok || len(n.Args) != 1 {
		t.Fatalf("expected new expression with 1 arg, got %#v", stmt.Expr)
	}
}

func TestParseArrayAndObjectLiterals(t *testing.T) {
	prog := parseProgram(t, "var x = [1, 2, 3]; var y = {a: 1, b: 2};")
	arr := prog.Statements[0].(*ast.VarDecl).Declarators[0].Init.(*ast.Literal)
	if arr.Token != ast.LitArray || len(arr.Elements) != 3 {
		t.Fatalf("unexpected array literal: %+v", arr)
	}
	obj := prog.Statements[1].(*ast.VarDecl).Declarators[0].Init.(*ast.Literal)
	if obj.Token != ast.LitObject || len(obj.Properties) != 2 {
		t.Fatalf("unexpected object literal: %+v", obj)
	}
}

func TestParseSwitchStatement(t *testing.T) {
	prog := parseProgram(t, "switch (x) { case 1: y; break; default: z; }")
	stmt, ok := prog.Statements[0].(*ast.Switch)
	if !ok || len(stmt.Cases) != 2 {
		t.Fatalf("expected switch with 2 cases, got %#v", prog.Statements[0])
	}
	if stmt.Cases[0].Test == nil || stmt.Cases[1].Test != nil {
		t.Fatalf("unexpected case test shape: %+v", stmt.Cases)
	}
}

func TestParseTryCatchFinally(t *testing.T) {
	prog := parseProgram(t, "try { a; } catch (e) { b; } finally { c; }")
	stmt, ok := prog.Statements[0].(*ast.Try)
	if !ok || !stmt.HasCatch || stmt.CatchParam != "e" || stmt.FinallyBlock == nil {
		t.Fatalf("unexpected try shape: %#v", prog.Statements[0])
	}
}

func TestParseLabeledBreakContinue(t *testing.T) {
	prog := parseProgram(t, "outer: while (x) { break outer; }")
	labeled, ok := prog.Statements[0].(*ast.Labeled)
	if !ok || labeled.Label != "outer" {
		t.Fatalf("expected labeled statement, got %#v", prog.Statements[0])
	}
}

func TestAutomaticSemicolonInsertion(t *testing.T) {
	prog := parseProgram(t, "var a = 1\nvar b = 2\n")
	if len(prog.Statements) != 2 {
		t.Fatalf("expected ASI to split into 2 statements, got %d", len(prog.Statements))
	}
}

func TestParseRegexLiteral(t *testing.T) {
	prog := parseProgram(t, "var r = /abc/g;")
	lit := prog.Statements[0].(*ast.VarDecl).Declarators[0].Init.(*ast.Literal)
	if lit.Token != ast.LitRegex {
		t.Fatalf("expected regex literal, got %+v", lit)
	}
}
