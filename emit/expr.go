// Reference protocol (§4.7): Name and Member are the only two expression
// shapes that can appear on the left of an assignment, as the operand of
// `delete`, or as an increment/decrement target. ast stays agnostic of
// this (see ast.go's doc comment on Expression); this file is where the
// type-switch over *ast.Name / *ast.Member actually lives.
package emit

import (
	"strconv"
	"strings"

	"github.com/nitrassic/nitrassic/ast"
	"github.com/nitrassic/nitrassic/types"
)

// parseNumericLiteral converts a number literal's source text (as the
// lexer captured it — decimal, hex/octal/binary prefixed, or with a
// fractional/exponent part) into the float64 every numeric constant is
// stored as (§3 numbers are IEEE-754 double precision).
func parseNumericLiteral(raw string) float64 {
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "0x") || strings.HasPrefix(lower, "0o") || strings.HasPrefix(lower, "0b") {
		if n, err := strconv.ParseInt(raw, 0, 64); err == nil {
			return float64(n)
		}
		if n, err := strconv.ParseUint(raw, 0, 64); err == nil {
			return float64(n)
		}
	}
	n, _ := strconv.ParseFloat(raw, 64)
	return n
}

// expr compiles e, leaving exactly one value on the stack.
func (e *Emitter) expr(ex ast.Expression) {
	line := ex.Pos().Line
	switch node := ex.(type) {
	case *ast.Literal:
		e.literal(node)
	case *ast.Name:
		b := e.res.Refs[node]
		if b == nil {
			e.emit(line, OpLoadUndefined, 0, 0, "")
			return
		}
		e.emitLoadBinding(line, b)
	case *ast.Member:
		e.compileGet(node)
	case *ast.FunctionRef:
		proto := e.compileFunction(node)
		e.emitMakeClosure(line, proto)
	case *ast.Operator:
		e.operator(node)
	case *ast.Call:
		e.call(node)
	case *ast.New:
		e.newExpr(node)
	default:
		e.emit(line, OpLoadUndefined, 0, 0, "")
	}
}

func (e *Emitter) literal(l *ast.Literal) {
	line := l.Pos().Line
	switch l.Token {
	case ast.LitNumber:
		e.emit(line, OpLoadConst, e.constIndex(parseNumericLiteral(l.Raw)), 0, "")
	case ast.LitString:
		e.emit(line, OpLoadConst, e.constIndex(l.Raw), 0, "")
	case ast.LitBool:
		if l.Raw == "true" {
			e.emit(line, OpLoadTrue, 0, 0, "")
		} else {
			e.emit(line, OpLoadFalse, 0, 0, "")
		}
	case ast.LitNull:
		e.emit(line, OpLoadNull, 0, 0, "")
	case ast.LitUndefined:
		e.emit(line, OpLoadUndefined, 0, 0, "")
	case ast.LitRegex:
		e.regexes = append(e.regexes, l.Raw)
		e.emit(line, OpLoadRegex, len(e.regexes)-1, 0, "")
	case ast.LitObject:
		e.emit(line, OpNewObject, 0, 0, "")
		for i := range l.Properties {
			p := &l.Properties[i]
			switch p.Kind {
			case ast.PropGetter, ast.PropSetter:
				e.emit(line, OpDup, 0, 0, "")
				if p.Computed {
					e.expr(p.KeyExpr)
				} else {
					e.emit(line, OpLoadConst, e.constIndex(p.Key), 0, "")
				}
				e.expr(p.Value)
				e.emit(line, OpDefineAccessor, int(p.Kind), 0, "")
				e.emit(line, OpPop, 0, 0, "")
			default:
				e.emit(line, OpDup, 0, 0, "")
				if p.Computed {
					e.expr(p.KeyExpr)
				} else {
					e.emit(line, OpLoadConst, e.constIndex(p.Key), 0, "")
				}
				e.expr(p.Value)
				e.emit(line, OpDefineDataProp, 0, 0, "")
				e.emit(line, OpPop, 0, 0, "")
			}
		}
	case ast.LitArray:
		e.emit(line, OpNewArray, 0, 0, "")
		for _, el := range l.Elements {
			e.emit(line, OpDup, 0, 0, "")
			if el == nil {
				e.emit(line, OpLoadUndefined, 0, 0, "")
			} else {
				e.expr(el)
			}
			e.emit(line, OpArrayAppend, 0, 0, "")
			e.emit(line, OpPop, 0, 0, "")
		}
	}
}

// compileGet leaves target's current value on the stack.
func (e *Emitter) compileGet(target ast.Expression) {
	line := target.Pos().Line
	switch t := target.(type) {
	case *ast.Name:
		b := e.res.Refs[t]
		if b == nil {
			e.emit(line, OpLoadUndefined, 0, 0, "")
			return
		}
		e.emitLoadBinding(line, b)
	case *ast.Member:
		e.expr(t.Object)
		if t.Computed {
			e.expr(t.Property)
			e.emit(line, OpGetIndex, 0, 0, "")
		} else {
			e.emit(line, OpGetProp, 0, 0, t.Name)
		}
	default:
		e.expr(target)
	}
}

// compileSet emits pushValue() then stores the resulting top-of-stack
// value into target, leaving that same value as the expression's result
// (§3 "assignment ... is itself an expression").
func (e *Emitter) compileSet(target ast.Expression, line int, pushValue func()) {
	switch t := target.(type) {
	case *ast.Name:
		b := e.res.Refs[t]
		pushValue()
		if b != nil {
			e.emitStoreBinding(line, b)
		}
	case *ast.Member:
		e.expr(t.Object)
		if t.Computed {
			e.expr(t.Property)
			pushValue()
			e.emit(line, OpSetIndex, 0, 0, "")
		} else {
			pushValue()
			e.emit(line, OpSetProp, 0, 0, t.Name)
		}
	}
}

// compileDelete implements `delete target` (§3).
func (e *Emitter) compileDelete(target ast.Expression, line int) {
	switch t := target.(type) {
	case *ast.Member:
		e.expr(t.Object)
		if t.Computed {
			e.expr(t.Property)
			e.emit(line, OpDeleteIndex, 0, 0, "")
		} else {
			e.emit(line, OpDeleteProp, 0, 0, t.Name)
		}
	default:
		// Deleting a plain name (or anything else) is a no-op that
		// reports success (ECMAScript: deleting an unqualified
		// identifier is always disallowed in strict mode and a no-op
		// returning true otherwise; Nitrassic always runs in the
		// strict-ish mode described by §4.5 engine flags, but emitting a
		// hard error here would reject legitimate `delete (a, b)`-style
		// comma expressions, so this stays permissive).
		e.expr(target)
		e.emit(line, OpPop, 0, 0, "")
		e.emit(line, OpLoadTrue, 0, 0, "")
	}
}

func (e *Emitter) call(c *ast.Call) {
	line := c.Pos().Line
	if m, ok := c.Callee.(*ast.Member); ok {
		e.expr(m.Object)
		e.emit(line, OpDup, 0, 0, "")
		if m.Computed {
			e.expr(m.Property)
			e.emit(line, OpGetIndex, 0, 0, "")
		} else {
			e.emit(line, OpGetProp, 0, 0, m.Name)
		}
	} else {
		e.emit(line, OpLoadUndefined, 0, 0, "")
		e.expr(c.Callee)
	}
	for _, a := range c.Args {
		e.expr(a)
	}
	e.emit(line, OpCall, len(c.Args), 0, "")
}

func (e *Emitter) newExpr(n *ast.New) {
	line := n.Pos().Line
	e.expr(n.Callee)
	for _, a := range n.Args {
		e.expr(a)
	}
	e.emit(line, OpNewCall, len(n.Args), 0, "")
}

func (e *Emitter) operator(o *ast.Operator) {
	line := o.Pos().Line
	switch o.Op {
	case ast.OpAssign:
		e.compileSet(o.Operands[0], line, func() { e.expr(o.Operands[1]) })
	case ast.OpCompoundAssign:
		e.compoundAssign(o)
	case ast.OpPreIncr, ast.OpPreDecr, ast.OpPostIncr, ast.OpPostDecr:
		e.incDec(o)
	case ast.OpConditional:
		e.expr(o.Operands[0])
		jElse := e.emit(line, OpJumpIfFalse, 0, 0, "")
		e.expr(o.Operands[1])
		jEnd := e.emit(line, OpJump, 0, 0, "")
		e.patchJumpsTo([]int{jElse}, e.currentPC())
		e.expr(o.Operands[2])
		e.patchJumpsTo([]int{jEnd}, e.currentPC())
	case ast.OpAnd:
		e.expr(o.Operands[0])
		e.emit(line, OpDup, 0, 0, "")
		j := e.emit(line, OpJumpIfFalseNoPop, 0, 0, "")
		e.emit(line, OpPop, 0, 0, "")
		e.expr(o.Operands[1])
		e.patchJumpsTo([]int{j}, e.currentPC())
	case ast.OpOr:
		e.expr(o.Operands[0])
		e.emit(line, OpDup, 0, 0, "")
		j := e.emit(line, OpJumpIfTrueNoPop, 0, 0, "")
		e.emit(line, OpPop, 0, 0, "")
		e.expr(o.Operands[1])
		e.patchJumpsTo([]int{j}, e.currentPC())
	case ast.OpComma:
		for i, operand := range o.Operands {
			e.expr(operand)
			if i != len(o.Operands)-1 {
				e.emit(line, OpPop, 0, 0, "")
			}
		}
	case ast.OpTypeof:
		e.expr(o.Operands[0])
		e.emit(line, OpTypeof, 0, 0, "")
	case ast.OpVoid:
		e.expr(o.Operands[0])
		e.emit(line, OpPop, 0, 0, "")
		e.emit(line, OpLoadUndefined, 0, 0, "")
	case ast.OpDelete:
		e.compileDelete(o.Operands[0], line)
	case ast.OpNot:
		e.expr(o.Operands[0])
		e.emit(line, OpNot, 0, 0, "")
	case ast.OpNeg:
		e.expr(o.Operands[0])
		if types.IsInteger(o.Operands[0].ResultType().Kind) {
			e.emit(line, OpNegInt, 0, 0, "")
		} else {
			e.emit(line, OpNegFloat, 0, 0, "")
		}
	case ast.OpPos:
		e.expr(o.Operands[0])
		e.emit(line, OpPosDynamic, 0, 0, "")
	case ast.OpBitNot:
		e.expr(o.Operands[0])
		e.emit(line, OpBitNot, 0, 0, "")
	case ast.OpIn:
		e.expr(o.Operands[0])
		e.expr(o.Operands[1])
		e.emit(line, OpIn, 0, 0, "")
	case ast.OpInstanceof:
		e.expr(o.Operands[0])
		e.expr(o.Operands[1])
		e.emit(line, OpInstanceof, 0, 0, "")
	default:
		e.expr(o.Operands[0])
		e.expr(o.Operands[1])
		e.applyBinaryOp(o.Op, o.ResultType(), o.Operands[0].ResultType(), o.Operands[1].ResultType(), line)
	}
}

// applyBinaryOp emits the instruction for a two-operand arithmetic,
// bitwise, or comparison operator with both operands already on the
// stack, choosing a monomorphized opcode when the inferencer (C6) pinned
// a concrete type and falling back to the dynamic variant otherwise
// (§4.6 "(d) unknown: emit type_utilities.add"/compare).
func (e *Emitter) applyBinaryOp(op ast.OperatorKind, result, left, right types.Type, line int) {
	switch op {
	case ast.OpAdd:
		switch {
		case result.Kind == types.KindRope:
			e.emit(line, OpAddRope, 0, 0, "")
		case types.IsInteger(result.Kind):
			e.emit(line, OpAddInt, 0, 0, "")
		case result.Kind == types.KindFloat64:
			e.emit(line, OpAddFloat, 0, 0, "")
		default:
			e.emit(line, OpAddDynamic, 0, 0, "")
		}
	case ast.OpSub:
		e.emit(line, OpSubFloat, 0, 0, "")
	case ast.OpMul:
		e.emit(line, OpMulFloat, 0, 0, "")
	case ast.OpDiv:
		e.emit(line, OpDivFloat, 0, 0, "")
	case ast.OpMod:
		e.emit(line, OpModFloat, 0, 0, "")
	case ast.OpShl:
		e.emit(line, OpShl, 0, 0, "")
	case ast.OpShr:
		e.emit(line, OpShr, 0, 0, "")
	case ast.OpUShr:
		e.emit(line, OpUShr, 0, 0, "")
	case ast.OpBitAnd:
		e.emit(line, OpBitAnd, 0, 0, "")
	case ast.OpBitOr:
		e.emit(line, OpBitOr, 0, 0, "")
	case ast.OpBitXor:
		e.emit(line, OpBitXor, 0, 0, "")
	case ast.OpEq:
		e.emit(line, OpLooseEq, 0, 0, "")
	case ast.OpNotEq:
		e.emit(line, OpLooseNotEq, 0, 0, "")
	case ast.OpStrictEq:
		e.emit(line, OpStrictEq, 0, 0, "")
	case ast.OpStrictNotEq:
		e.emit(line, OpStrictNotEq, 0, 0, "")
	case ast.OpLess, ast.OpGreater, ast.OpLessEq, ast.OpGreaterEq:
		e.emitRelational(op, left, right, line)
	}
}

func (e *Emitter) emitRelational(op ast.OperatorKind, left, right types.Type, line int) {
	bothNum := types.IsNumeric(left.Kind) && types.IsNumeric(right.Kind)
	bothStr := types.IsStringy(left.Kind) && types.IsStringy(right.Kind)
	switch {
	case bothNum:
		switch op {
		case ast.OpLess:
			e.emit(line, OpLessNum, 0, 0, "")
		case ast.OpGreater:
			e.emit(line, OpGreaterNum, 0, 0, "")
		case ast.OpLessEq:
			e.emit(line, OpLessEqNum, 0, 0, "")
		case ast.OpGreaterEq:
			e.emit(line, OpGreaterEqNum, 0, 0, "")
		}
	case bothStr:
		switch op {
		case ast.OpLess:
			e.emit(line, OpLessStr, 0, 0, "")
		case ast.OpGreater:
			e.emit(line, OpGreaterStr, 0, 0, "")
		case ast.OpLessEq:
			e.emit(line, OpLessEqStr, 0, 0, "")
		case ast.OpGreaterEq:
			e.emit(line, OpGreaterEqStr, 0, 0, "")
		}
	default:
		switch op {
		case ast.OpLess:
			e.emit(line, OpLessDynamic, 0, 0, "")
		case ast.OpGreater:
			e.emit(line, OpGreaterDynamic, 0, 0, "")
		case ast.OpLessEq:
			e.emit(line, OpLessEqDynamic, 0, 0, "")
		case ast.OpGreaterEq:
			e.emit(line, OpGreaterEqDynamic, 0, 0, "")
		}
	}
}

// compoundAssign and incDec stage the object/key/current/new values of a
// read-modify-write target through scratch locals (see newScratch)
// instead of juggling stack order, trading a few extra local slots for
// codegen that is easy to get right without a compiler to check it.
func (e *Emitter) compoundAssign(o *ast.Operator) {
	target, rhs := o.Operands[0], o.Operands[1]
	line := o.Pos().Line
	if name, ok := target.(*ast.Name); ok {
		b := e.res.Refs[name]
		e.emitLoadBinding(line, b)
		e.expr(rhs)
		e.applyBinaryOp(o.CompoundOp, o.ResultType(), target.ResultType(), rhs.ResultType(), line)
		if b != nil {
			e.emitStoreBinding(line, b)
		}
		return
	}
	m := target.(*ast.Member)
	e.memberRMW(m, line, false, func() {
		e.expr(rhs)
		e.applyBinaryOp(o.CompoundOp, o.ResultType(), m.ResultType(), rhs.ResultType(), line)
	})
}

func (e *Emitter) incDec(o *ast.Operator) {
	line := o.Pos().Line
	isIncr := o.Op == ast.OpPreIncr || o.Op == ast.OpPostIncr
	isPost := o.Op == ast.OpPostIncr || o.Op == ast.OpPostDecr
	target := o.Operands[0]
	step := func() {
		if isIncr {
			e.emit(line, OpIncr, 1, 0, "")
		} else {
			e.emit(line, OpIncr, -1, 0, "")
		}
	}
	if name, ok := target.(*ast.Name); ok {
		b := e.res.Refs[name]
		e.emitLoadBinding(line, b)
		if isPost {
			oldSlot := e.newScratch()
			e.emit(line, OpDeclareLocal, oldSlot, 0, "")
			e.emit(line, OpPop, 0, 0, "")
			e.emit(line, OpLoadLocal, oldSlot, 0, "")
			step()
			if b != nil {
				e.emitStoreBinding(line, b)
			}
			e.emit(line, OpPop, 0, 0, "")
			e.emit(line, OpLoadLocal, oldSlot, 0, "")
		} else {
			step()
			if b != nil {
				e.emitStoreBinding(line, b)
			}
		}
		return
	}
	m := target.(*ast.Member)
	e.memberRMW(m, line, isPost, step)
}

// memberRMW reads m's current value, calls computeNew (which must leave
// exactly one new value on the stack given nothing extra pushed), writes
// it back, and leaves either the new value (wantOld=false) or the value
// observed before the write (wantOld=true) as the expression's result.
func (e *Emitter) memberRMW(m *ast.Member, line int, wantOld bool, computeNew func()) {
	objSlot := e.newScratch()
	var keySlot int
	e.expr(m.Object)
	e.emit(line, OpDeclareLocal, objSlot, 0, "")
	e.emit(line, OpPop, 0, 0, "")
	if m.Computed {
		keySlot = e.newScratch()
		e.expr(m.Property)
		e.emit(line, OpDeclareLocal, keySlot, 0, "")
		e.emit(line, OpPop, 0, 0, "")
	}

	e.emit(line, OpLoadLocal, objSlot, 0, "")
	if m.Computed {
		e.emit(line, OpLoadLocal, keySlot, 0, "")
		e.emit(line, OpGetIndex, 0, 0, "")
	} else {
		e.emit(line, OpGetProp, 0, 0, m.Name)
	}
	curSlot := e.newScratch()
	e.emit(line, OpDeclareLocal, curSlot, 0, "")
	e.emit(line, OpPop, 0, 0, "")

	e.emit(line, OpLoadLocal, curSlot, 0, "")
	computeNew()
	newSlot := e.newScratch()
	e.emit(line, OpDeclareLocal, newSlot, 0, "")
	e.emit(line, OpPop, 0, 0, "")

	e.emit(line, OpLoadLocal, objSlot, 0, "")
	if m.Computed {
		e.emit(line, OpLoadLocal, keySlot, 0, "")
	}
	e.emit(line, OpLoadLocal, newSlot, 0, "")
	if m.Computed {
		e.emit(line, OpSetIndex, 0, 0, "")
	} else {
		e.emit(line, OpSetProp, 0, 0, m.Name)
	}
	e.emit(line, OpPop, 0, 0, "")

	if wantOld {
		e.emit(line, OpLoadLocal, curSlot, 0, "")
	} else {
		e.emit(line, OpLoadLocal, newSlot, 0, "")
	}
}
