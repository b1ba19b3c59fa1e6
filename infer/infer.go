// Package infer implements the static type inferencer (C6): a structural
// induction over the resolved tree (§4.6 "get_result_type") that assigns
// every ast.Expression a types.Type via its ResultType/SetResultType
// methods, and widens a binding's observed type to types.Any the first
// time it sees two different concrete assignments to the same variable
// (§4.5 "collapse warning").
//
// Grounded on the teacher's expression-type analysis
// (internal/semantic/analyze_expr_operators.go, analyze_expressions.go),
// which walks DWScript's already-typed declarations to check operator
// compatibility; generalized here to the inverse problem — deriving a
// type for an untyped source language by induction, since Nitrassic's
// source has no declared types to check against.
package infer

import (
	"fmt"

	"github.com/nitrassic/nitrassic/ast"
	"github.com/nitrassic/nitrassic/resolver"
	"github.com/nitrassic/nitrassic/runtime/scope"
	"github.com/nitrassic/nitrassic/types"
)

// Warning is a non-fatal inference diagnostic, currently only the
// collapse warning (§4.5): a global whose observed type changed from one
// concrete type to another, forcing it to widen to "any".
type Warning struct {
	Message string
	Name    string
}

func (w Warning) String() string { return w.Message }

// Inferrer walks a resolved program assigning result types.
type Inferrer struct {
	res      *resolver.Resolution
	warnings []Warning
}

// Infer runs the inferencer over prog using the bindings resolution res
// produced, returning any collapse warnings observed.
func Infer(prog *ast.Program, res *resolver.Resolution) []Warning {
	inf := &Inferrer{res: res}
	for _, stmt := range prog.Statements {
		inf.statement(stmt)
	}
	return inf.warnings
}

func (inf *Inferrer) statement(s ast.Statement) {
	switch s := s.(type) {
	case *ast.Block:
		for _, st := range s.Statements {
			inf.statement(st)
		}
	case *ast.VarDecl:
		for i := range s.Declarators {
			d := &s.Declarators[i]
			if d.Init == nil {
				continue
			}
			t := inf.expr(d.Init)
			inf.observeAssignment(d.Name, t)
		}
	case *ast.FunctionDecl:
		inf.function(s.Fn)
	case *ast.ExpressionStatement:
		inf.expr(s.Expr)
	case *ast.If:
		inf.expr(s.Cond)
		inf.statement(s.Then)
		if s.Else != nil {
			inf.statement(s.Else)
		}
	case *ast.While:
		inf.expr(s.Cond)
		inf.statement(s.Body)
	case *ast.DoWhile:
		inf.statement(s.Body)
		inf.expr(s.Cond)
	case *ast.For:
		if s.Init != nil {
			inf.statement(s.Init)
		}
		if s.Cond != nil {
			inf.expr(s.Cond)
		}
		if s.Update != nil {
			inf.expr(s.Update)
		}
		inf.statement(s.Body)
	case *ast.ForIn:
		inf.expr(s.Object)
		inf.statement(s.Body)
	case *ast.Return:
		if s.Value != nil {
			inf.expr(s.Value)
		}
	case *ast.Throw:
		inf.expr(s.Value)
	case *ast.Try:
		inf.statement(s.Block)
		if s.HasCatch {
			inf.statement(s.CatchBlock)
		}
		if s.FinallyBlock != nil {
			inf.statement(s.FinallyBlock)
		}
	case *ast.With:
		inf.expr(s.Object)
		inf.statement(s.Body)
	case *ast.Switch:
		inf.expr(s.Discriminant)
		for _, c := range s.Cases {
			if c.Test != nil {
				inf.expr(c.Test)
			}
			for _, st := range c.Statements {
				inf.statement(st)
			}
		}
	case *ast.Labeled:
		inf.statement(s.Body)
	case *ast.Break, *ast.Continue, *ast.Debugger:
		// no expressions to type
	}
}

// observeAssignment records that name was assigned a value of type t.
// Only the global scope is consulted: the collapse warning is explicitly
// a global-variable concern (§4.5 "When a global variable's observed
// type changes..."); locals re-type freely on each call frame.
func (inf *Inferrer) observeAssignment(name string, t types.Type) {
	b, ok := inf.res.Global.Local(name)
	if !ok {
		return
	}
	inf.observeBinding(b, t)
}

func (inf *Inferrer) observeBinding(b *scope.Binding, t types.Type) {
	if b.Collapsed {
		return
	}
	if g, ok := inf.res.Global.Local(b.Name); !ok || g != b {
		return
	}
	if b.Type.Kind == types.KindUndefined && !b.Initialized {
		b.Type = t
		b.Initialized = true
		return
	}
	if !b.Type.Equal(t) {
		b.Type = types.Any
		b.Collapsed = true
		inf.warnings = append(inf.warnings, Warning{
			Name:    b.Name,
			Message: fmt.Sprintf("variable %q changed type; widened to any", b.Name),
		})
	}
}

func (inf *Inferrer) function(fn *ast.FunctionRef) {
	fn.SetResultType(types.Function)
	for _, st := range fn.Body.Statements {
		inf.statement(st)
	}
}

// expr infers and records the result type of e, returning it.
func (inf *Inferrer) expr(e ast.Expression) types.Type {
	if e == nil {
		return types.Undefined
	}
	t := inf.infer(e)
	e.SetResultType(t)
	return t
}

func (inf *Inferrer) infer(e ast.Expression) types.Type {
	switch e := e.(type) {
	case *ast.Literal:
		return inf.literal(e)
	case *ast.Name:
		if b, ok := inf.res.Refs[e]; ok {
			return b.Type
		}
		return types.Undefined
	case *ast.Member:
		inf.expr(e.Object)
		if e.Computed {
			inf.expr(e.Property)
		}
		// A resolved property's declared type requires the object's
		// shape to be statically known (§4.6 "member access"); without a
		// prototype registry wired in here, member access degrades to
		// "any" — the engine narrows this further once shapes are baked.
		return types.Any
	case *ast.FunctionRef:
		inf.function(e)
		return types.Function
	case *ast.Operator:
		return inf.operator(e)
	case *ast.Call:
		inf.expr(e.Callee)
		for _, a := range e.Args {
			inf.expr(a)
		}
		// Callee's return type is only known once the callee resolves to
		// a concrete, single-overload method group (§4.6 "Call"); absent
		// that static knowledge here, the call's type is "any".
		return types.Any
	case *ast.New:
		inf.expr(e.Callee)
		for _, a := range e.Args {
			inf.expr(a)
		}
		return types.Any
	default:
		return types.Any
	}
}

func (inf *Inferrer) literal(l *ast.Literal) types.Type {
	switch l.Token {
	case ast.LitNumber:
		return types.Float64
	case ast.LitString:
		return types.String
	case ast.LitBool:
		return types.Bool
	case ast.LitNull:
		return types.Null
	case ast.LitUndefined:
		return types.Undefined
	case ast.LitRegex:
		return types.Any
	case ast.LitObject:
		for i := range l.Properties {
			p := &l.Properties[i]
			if p.Computed {
				inf.expr(p.KeyExpr)
			}
			inf.expr(p.Value)
		}
		return types.Any
	case ast.LitArray:
		for _, el := range l.Elements {
			if el != nil {
				inf.expr(el)
			}
		}
		return types.Any
	default:
		return types.Any
	}
}

func (inf *Inferrer) operator(o *ast.Operator) types.Type {
	for _, operand := range o.Operands {
		inf.expr(operand)
	}
	switch o.Op {
	case ast.OpAdd:
		return inf.addType(o.Operands[0].ResultType(), o.Operands[1].ResultType())
	case ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod, ast.OpNeg, ast.OpPos:
		return types.Float64
	case ast.OpShl, ast.OpShr, ast.OpBitAnd, ast.OpBitOr, ast.OpBitXor, ast.OpBitNot:
		return types.Int32
	case ast.OpUShr:
		return types.Float64
	case ast.OpNot, ast.OpEq, ast.OpNotEq, ast.OpStrictEq, ast.OpStrictNotEq,
		ast.OpLess, ast.OpGreater, ast.OpLessEq, ast.OpGreaterEq,
		ast.OpIn, ast.OpInstanceof:
		return types.Bool
	case ast.OpTypeof:
		return types.String
	case ast.OpVoid:
		return types.Undefined
	case ast.OpDelete:
		return types.Bool
	case ast.OpPreIncr, ast.OpPreDecr, ast.OpPostIncr, ast.OpPostDecr:
		t := o.Operands[0].ResultType()
		if types.IsInteger(t.Kind) {
			return t
		}
		return types.Float64
	case ast.OpAnd, ast.OpOr:
		return inf.logicalType(o.Operands[0].ResultType(), o.Operands[1].ResultType())
	case ast.OpAssign:
		t := o.Operands[1].ResultType()
		if n, ok := o.Operands[0].(*ast.Name); ok {
			if b, ok := inf.res.Refs[n]; ok {
				inf.observeBinding(b, t)
			}
		}
		return t
	case ast.OpCompoundAssign:
		var t types.Type
		switch o.CompoundOp {
		case ast.OpAdd:
			t = inf.addType(o.Operands[0].ResultType(), o.Operands[1].ResultType())
		default:
			t = types.Float64
		}
		if n, ok := o.Operands[0].(*ast.Name); ok {
			if b, ok := inf.res.Refs[n]; ok {
				inf.observeBinding(b, t)
			}
		}
		return t
	case ast.OpConditional:
		return inf.logicalType(o.Operands[1].ResultType(), o.Operands[2].ResultType())
	case ast.OpComma:
		if len(o.Operands) == 0 {
			return types.Undefined
		}
		return o.Operands[len(o.Operands)-1].ResultType()
	default:
		return types.Any
	}
}

// addType implements §4.1/§4.6's `a + b` rules: rope if either side is
// stringy, most-accurate integer if both integer, double if both
// numeric, otherwise "object"/"any" (the runtime's type_utilities.add
// re-derives the concrete result at execution time; see package emit).
func (inf *Inferrer) addType(a, b types.Type) types.Type {
	if types.IsStringy(a.Kind) || types.IsStringy(b.Kind) {
		return types.Rope
	}
	if k, ok := types.MostAccurateInteger(a.Kind, b.Kind); ok {
		return types.Of(k)
	}
	if types.IsNumeric(a.Kind) && types.IsNumeric(b.Kind) {
		return types.Float64
	}
	if a.Kind == types.KindObject || b.Kind == types.KindObject {
		return types.ObjectOf(nil)
	}
	return types.Any
}

// logicalType implements §4.6's rule shared by `&&`/`||`/ternary: if both
// branches agree, that type; if both numeric, double; else "any".
func (inf *Inferrer) logicalType(a, b types.Type) types.Type {
	if a.Equal(b) {
		return a
	}
	if types.IsNumeric(a.Kind) && types.IsNumeric(b.Kind) {
		return types.Float64
	}
	return types.Any
}
