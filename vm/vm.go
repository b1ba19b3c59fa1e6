// Package vm is the host-VM stand-in for the emitter's abstract
// instruction stream (spec.md §4.7's "host VM's instruction encoder" is
// specified only by contract; this package is the concrete encoder+
// executor SPEC_FULL.md §D assigns to C7 alongside package emit).
//
// Grounded on the teacher's bytecode.VM (internal/bytecode/vm.go): a
// stack machine with a call-frame stack, upvalues captured as heap Cells,
// and a big opcode switch in the run loop. Nitrassic generalizes the
// frame's exception handling (the teacher's source has no try/catch) with
// a per-frame handler stack plus a pending-rethrow register for finally
// (§4.7 "exception throw/try/catch").
package vm

import (
	"fmt"

	"github.com/nitrassic/nitrassic/diag"
	"github.com/nitrassic/nitrassic/emit"
	"github.com/nitrassic/nitrassic/runtime/proto"
	"github.com/nitrassic/nitrassic/runtime/scope"
	"github.com/nitrassic/nitrassic/types"
	"github.com/nitrassic/nitrassic/value"
)

// Cell is a heap-allocated box for a captured local (§5 "closure
// capture"): every closure formed over the same declaration site shares
// the same Cell, so a write from one observes in every other.
type Cell struct {
	V value.Value
}

// Closure is a callable script function value: a compiled FunctionProto
// plus the upvalue Cells it captured at the point it was created (§4.7
// "Function expression").
type Closure struct {
	Proto    *emit.FunctionProto
	Upvalues []*Cell

	// InstanceProto is lazily created the first time this closure's
	// `.prototype` is read or it is used as a constructor (`new F()`); it
	// backs both `new`'s instance delegate and `instanceof`'s chain walk
	// (§4.7 "new"/"instanceof"). It is a plain mutable Instance rather
	// than a baked Prototype so `F.prototype.method = ...` can keep
	// adding to it after the function is declared.
	InstanceProto *proto.Instance
}

func (c *Closure) FunctionName() string { return c.Proto.Name }

func (c *Closure) ensureInstanceProto(objectProto *proto.Prototype) *proto.Instance {
	if c.InstanceProto == nil {
		c.InstanceProto = proto.NewInstance(c.Proto.Name+".prototype", objectProto)
	}
	return c.InstanceProto
}

// NativeFunc wraps a host-implemented global/builtin function (console.log,
// Object.keys, Array.prototype.push, ...) as a script-visible callable
// (§4.3 Binder's "engine"/"thisObj" synthesis happens inside Call/Construct
// directly in Go instead of through reflection, since these are the
// engine's own primordial bindings rather than reflected host methods).
type NativeFunc struct {
	Name      string
	Call      func(m *VM, this value.Value, args []value.Value) (value.Value, error)
	Construct func(m *VM, args []value.Value) (value.Value, error)
	Proto     *proto.Prototype // optional: static members (e.g. Object.keys) read by getProperty
}

func (n *NativeFunc) FunctionName() string { return n.Name }

// frame is one call-stack activation record.
type frame struct {
	closure  *Closure
	chunk    *emit.Chunk
	locals   []value.Value
	cells    []*Cell // non-nil at index i when locals[i] is captured
	stack    []value.Value
	handlers []int
	pendingSet   bool
	pendingValue value.Value
	ip int

	forState []*enumState // stack of active for-in/for-of enumerators

	fnName string
}

func (f *frame) push(v value.Value) { f.stack = append(f.stack, v) }
func (f *frame) pop() value.Value {
	n := len(f.stack) - 1
	v := f.stack[n]
	f.stack = f.stack[:n]
	return v
}
func (f *frame) peek() value.Value { return f.stack[len(f.stack)-1] }

// ThrownError carries a script-level thrown value.Value as a Go error so
// it can propagate through ordinary Go returns from exec (§4.7, §7): an
// uncaught throw unwinds every Go stack frame exactly like a host
// exception, which is what it becomes once it reaches Engine.Execute.
type ThrownError struct {
	Value value.Value
}

func (e *ThrownError) Error() string { return fmt.Sprintf("uncaught exception: %s", value.ToString(e.Value)) }

// VM executes compiled FunctionProtos against a shared global scope and
// prototype registry. One VM instance corresponds to one engine (§5
// "Concurrency & Resource Model": single-threaded, one engine per thread).
type VM struct {
	Global   *scope.Scope
	Registry *proto.Registry

	ObjectProto *proto.Prototype
	ArrayProto  *proto.Prototype
	StringProto *proto.Prototype
	RegexProto  *proto.Prototype
	ErrorProtos map[diag.Name]*proto.Prototype

	Path string // current ScriptSource path, for diagnostics (§4.9)

	regexSource []string
	regexCache  map[int]*Regex

	callStack []diag.StackFrame
	depth     int
}

const maxCallDepth = 2000

// New creates a VM sharing global and registry with the rest of the
// engine (§4.8 "Engine owns ... the registry of compiled method bodies").
func New(global *scope.Scope, registry *proto.Registry) *VM {
	return &VM{
		Global:      global,
		Registry:    registry,
		ErrorProtos: make(map[diag.Name]*proto.Prototype),
		regexCache:  make(map[int]*Regex),
	}
}

// SetRegexSources installs the regex literal source texts a compiled
// program collected (emit.Compile's second return value), indexed by the
// OpLoadRegex operand (§4.7 "Regex literal, shared per source position").
func (m *VM) SetRegexSources(sources []string) { m.regexSource = sources }

// RunProgram executes proto as the top-level program body with no
// arguments and `this` bound to undefined (§4.8 "execute()").
func (m *VM) RunProgram(p *emit.FunctionProto) (value.Value, error) {
	cl := &Closure{Proto: p}
	return m.Call(cl, value.Undefined(), nil)
}

// Call invokes callee (a *Closure or *NativeFunc value.Callable) with the
// given receiver and arguments, implementing the "canonical signature
// (this_obj, args) -> any" gateway every compiled procedure shares
// (§4.7).
func (m *VM) Call(callee value.Callable, this value.Value, args []value.Value) (value.Value, error) {
	switch c := callee.(type) {
	case *Closure:
		return m.callClosure(c, this, args)
	case *NativeFunc:
		if c.Call == nil {
			return value.Undefined(), m.typeError(fmt.Sprintf("%s is not callable", c.Name))
		}
		m.callStack = append(m.callStack, diag.StackFrame{Location: diag.Location{Path: m.Path, Function: c.Name}})
		v, err := c.Call(m, this, args)
		m.callStack = m.callStack[:len(m.callStack)-1]
		return v, err
	default:
		return value.Undefined(), m.typeError("value is not a function")
	}
}

// CallValue is Call's dynamic-dispatch entry point for a value popped off
// the stack (OpCall's callee operand): it type-checks that v is
// KindFunction before dispatching.
func (m *VM) CallValue(v value.Value, this value.Value, args []value.Value) (value.Value, error) {
	if v.Kind != types.KindFunction {
		return value.Undefined(), m.typeError(fmt.Sprintf("%s is not a function", value.ToString(v)))
	}
	return m.Call(v.AsCallable(), this, args)
}

func (m *VM) callClosure(c *Closure, this value.Value, args []value.Value) (value.Value, error) {
	m.depth++
	if m.depth > maxCallDepth {
		m.depth--
		return value.Undefined(), m.rangeError("Maximum call stack size exceeded")
	}
	defer func() { m.depth-- }()

	p := c.Proto
	fr := &frame{
		closure: c,
		chunk:   p.Body,
		locals:  make([]value.Value, p.NumLocals),
		cells:   make([]*Cell, p.NumLocals),
		fnName:  p.Name,
	}
	for i := range fr.locals {
		fr.locals[i] = value.Undefined()
	}

	m.callStack = append(m.callStack, diag.StackFrame{Location: diag.Location{Path: m.Path, Function: nameOr(p.Name)}})
	defer func() { m.callStack = m.callStack[:len(m.callStack)-1] }()

	return m.run(fr, this, args)
}

func nameOr(n string) string {
	if n == "" || n == "<script>" {
		return "<anonymous>"
	}
	return n
}

// StackTrace snapshots the current call stack, innermost (most recent
// call) first and the gateway frame last, for attaching to a newly thrown
// error (§4.9).
func (m *VM) StackTrace() diag.StackTrace {
	st := make(diag.StackTrace, len(m.callStack))
	for i, f := range m.callStack {
		st[len(m.callStack)-1-i] = f
	}
	st = append(st, diag.StackFrame{Location: diag.Location{Path: m.Path, Function: diag.GatewayFrame}})
	return st
}

// run executes fr's chunk to completion, returning its return value or a
// propagated error (*ThrownError for a script throw, or a Go error for a
// host-level failure such as a bind error).
func (m *VM) run(fr *frame, this value.Value, args []value.Value) (value.Value, error) {
	code := fr.chunk.Code
	for {
		if fr.ip >= len(code) {
			return value.Undefined(), nil
		}
		instr := code[fr.ip]
		fr.ip++

		switch instr.Op {
		case emit.OpLoadConst:
			fr.push(constToValue(fr.chunk.Constants[instr.A]))
		case emit.OpLoadUndefined:
			fr.push(value.Undefined())
		case emit.OpLoadNull:
			fr.push(value.Null())
		case emit.OpLoadTrue:
			fr.push(value.Bool(true))
		case emit.OpLoadFalse:
			fr.push(value.Bool(false))

		case emit.OpLoadArg:
			if instr.A < len(args) {
				fr.push(args[instr.A])
			} else {
				fr.push(value.Undefined())
			}

		case emit.OpDeclareLocal:
			v := fr.pop()
			if instr.B != 0 {
				fr.cells[instr.A] = &Cell{V: v}
			} else {
				fr.locals[instr.A] = v
			}

		case emit.OpLoadLocal:
			if instr.B != 0 && fr.cells[instr.A] != nil {
				fr.push(fr.cells[instr.A].V)
			} else {
				fr.push(fr.locals[instr.A])
			}
		case emit.OpStoreLocal:
			v := fr.peek()
			if instr.B != 0 {
				if fr.cells[instr.A] == nil {
					fr.cells[instr.A] = &Cell{}
				}
				fr.cells[instr.A].V = v
			} else {
				fr.locals[instr.A] = v
			}

		case emit.OpLoadUpvalue:
			fr.push(fr.closure.Upvalues[instr.A].V)
		case emit.OpStoreUpvalue:
			fr.closure.Upvalues[instr.A].V = fr.peek()

		case emit.OpLoadLocalRef, emit.OpLoadUpvalueRef:
			// Only ever executed as trailing operands of OpMakeClosure/
			// OpMakeArrow, handled there; the main loop never dispatches
			// here because those opcodes consume their own operands
			// directly from the instruction stream.
			return value.Undefined(), fmt.Errorf("vm: stray %s outside MAKE_CLOSURE", instr.Op)

		case emit.OpLoadGlobal:
			if b, _, ok := m.Global.Resolve(instr.Str); ok {
				fr.push(b.Value)
			} else {
				return value.Undefined(), m.referenceError(fmt.Sprintf("%s is not defined", instr.Str))
			}
		case emit.OpStoreGlobal:
			v := fr.peek()
			if b, _, ok := m.Global.Resolve(instr.Str); ok {
				if b.Const {
					return value.Undefined(), m.typeError(fmt.Sprintf("Assignment to constant variable %q", instr.Str))
				}
				b.Value = v
			} else {
				m.Global.Declare(instr.Str, false).Value = v
			}

		case emit.OpPop:
			fr.pop()
		case emit.OpDup:
			fr.push(fr.peek())
		case emit.OpDupIf:
			if instr.A != 0 {
				fr.push(fr.peek())
			}

		case emit.OpAddDynamic, emit.OpAddRope, emit.OpAddInt, emit.OpAddFloat,
			emit.OpSubFloat, emit.OpMulFloat, emit.OpDivFloat, emit.OpModFloat,
			emit.OpSubInt, emit.OpMulInt, emit.OpDivInt, emit.OpModInt,
			emit.OpBitAnd, emit.OpBitOr, emit.OpBitXor, emit.OpShl, emit.OpShr, emit.OpUShr,
			emit.OpLooseEq, emit.OpLooseNotEq, emit.OpStrictEq, emit.OpStrictNotEq,
			emit.OpLessDynamic, emit.OpGreaterDynamic, emit.OpLessEqDynamic, emit.OpGreaterEqDynamic,
			emit.OpLessNum, emit.OpGreaterNum, emit.OpLessEqNum, emit.OpGreaterEqNum,
			emit.OpLessStr, emit.OpGreaterStr, emit.OpLessEqStr, emit.OpGreaterEqStr:
			b := fr.pop()
			a := fr.pop()
			res, err := m.binaryOp(instr.Op, a, b)
			if err != nil {
				if !m.raiseInto(fr, err) {
					return value.Undefined(), err
				}
				continue
			}
			fr.push(res)

		case emit.OpNegFloat:
			fr.push(value.Float64(-value.ToNumber(fr.pop())))
		case emit.OpNegInt:
			a := fr.pop()
			fr.push(value.Int(a.Kind, -int64(value.ToInteger(a))))
		case emit.OpPosDynamic:
			fr.push(value.Float64(value.ToNumber(fr.pop())))
		case emit.OpBitNot:
			fr.push(value.Int(types.KindInt32, int64(^value.ToInt32(fr.pop()))))
		case emit.OpNot:
			fr.push(value.Bool(!value.ToBoolean(fr.pop())))
		case emit.OpToBoolean:
			fr.push(value.Bool(value.ToBoolean(fr.pop())))
		case emit.OpTypeof:
			fr.push(value.Str(fr.pop().TypeOf()))

		case emit.OpIncr, emit.OpDecr:
			a := fr.pop()
			delta := float64(1)
			if instr.A < 0 {
				delta = -1
			}
			if instr.Op == emit.OpDecr {
				delta = -delta
			}
			if types.IsInteger(a.Kind) {
				fr.push(value.Int(a.Kind, int64(value.ToInteger(a))+int64(delta)))
			} else {
				fr.push(value.Float64(value.ToNumber(a) + delta))
			}

		case emit.OpJump:
			fr.ip = instr.A
		case emit.OpJumpIfTrue:
			if value.ToBoolean(fr.pop()) {
				fr.ip = instr.A
			}
		case emit.OpJumpIfFalse:
			if !value.ToBoolean(fr.pop()) {
				fr.ip = instr.A
			}
		case emit.OpJumpIfTrueNoPop:
			if value.ToBoolean(fr.peek()) {
				fr.ip = instr.A
			}
		case emit.OpJumpIfFalseNoPop:
			if !value.ToBoolean(fr.peek()) {
				fr.ip = instr.A
			}
		case emit.OpLoop:
			fr.ip = instr.A

		case emit.OpCall:
			argc := instr.A
			callArgs := make([]value.Value, argc)
			copy(callArgs, fr.stack[len(fr.stack)-argc:])
			fr.stack = fr.stack[:len(fr.stack)-argc]
			calleeV := fr.pop()
			thisV := fr.pop()
			res, err := m.CallValue(calleeV, thisV, callArgs)
			if err != nil {
				if !m.raiseInto(fr, err) {
					return value.Undefined(), err
				}
				continue
			}
			fr.push(res)

		case emit.OpNewCall:
			argc := instr.A
			callArgs := make([]value.Value, argc)
			copy(callArgs, fr.stack[len(fr.stack)-argc:])
			fr.stack = fr.stack[:len(fr.stack)-argc]
			calleeV := fr.pop()
			res, err := m.construct(calleeV, callArgs)
			if err != nil {
				if !m.raiseInto(fr, err) {
					return value.Undefined(), err
				}
				continue
			}
			fr.push(res)

		case emit.OpReturn:
			return fr.pop(), nil

		case emit.OpMakeClosure, emit.OpMakeArrow:
			p := fr.chunk.Constants[instr.A].(*emit.FunctionProto)
			ups := make([]*Cell, instr.B)
			for i := 0; i < instr.B; i++ {
				opInstr := code[fr.ip]
				fr.ip++
				switch opInstr.Op {
				case emit.OpLoadLocalRef:
					if fr.cells[opInstr.A] == nil {
						fr.cells[opInstr.A] = &Cell{V: fr.locals[opInstr.A]}
					}
					ups[i] = fr.cells[opInstr.A]
				case emit.OpLoadUpvalueRef:
					ups[i] = fr.closure.Upvalues[opInstr.A]
				}
			}
			cl := &Closure{Proto: p, Upvalues: ups}
			fr.push(value.Func(cl))

		case emit.OpPushHandler:
			fr.handlers = append(fr.handlers, instr.A)
		case emit.OpPopHandler:
			fr.handlers = fr.handlers[:len(fr.handlers)-1]
		case emit.OpThrow:
			v := fr.pop()
			if !m.raise(fr, v) {
				return value.Undefined(), &ThrownError{Value: v}
			}
		case emit.OpEnterFinally:
			if instr.A != 0 {
				fr.pendingValue = fr.pop()
				fr.pendingSet = true
			} else {
				fr.pendingSet = false
			}
		case emit.OpLeaveFinally:
			// marker only; no runtime effect.
		case emit.OpEndFinally:
			if fr.pendingSet {
				v := fr.pendingValue
				fr.pendingSet = false
				if !m.raise(fr, v) {
					return value.Undefined(), &ThrownError{Value: v}
				}
			}

		case emit.OpNewObject:
			fr.push(value.Obj(proto.NewInstance("Object", m.ObjectProto)))
		case emit.OpNewArray:
			fr.push(value.Obj(NewArray(nil, m.ArrayProto)))
		case emit.OpGetProp:
			obj := fr.pop()
			v, err := m.getProperty(obj, instr.Str)
			if err != nil {
				if !m.raiseInto(fr, err) {
					return value.Undefined(), err
				}
				continue
			}
			fr.push(v)
		case emit.OpSetProp:
			v := fr.pop()
			obj := fr.pop()
			if err := m.setProperty(obj, instr.Str, v); err != nil {
				if !m.raiseInto(fr, err) {
					return value.Undefined(), err
				}
				continue
			}
			fr.push(v)
		case emit.OpGetIndex:
			key := fr.pop()
			obj := fr.pop()
			v, err := m.getProperty(obj, value.ToString(key))
			if err != nil {
				if !m.raiseInto(fr, err) {
					return value.Undefined(), err
				}
				continue
			}
			fr.push(v)
		case emit.OpSetIndex:
			v := fr.pop()
			key := fr.pop()
			obj := fr.pop()
			if err := m.setProperty(obj, value.ToString(key), v); err != nil {
				if !m.raiseInto(fr, err) {
					return value.Undefined(), err
				}
				continue
			}
			fr.push(v)
		case emit.OpDeleteProp:
			obj := fr.pop()
			fr.push(value.Bool(m.deleteProperty(obj, instr.Str)))
		case emit.OpDeleteIndex:
			key := fr.pop()
			obj := fr.pop()
			fr.push(value.Bool(m.deleteProperty(obj, value.ToString(key))))

		case emit.OpDefineDataProp:
			v := fr.pop()
			key := fr.pop()
			obj := fr.peek()
			_ = m.setProperty(obj, value.ToString(key), v)
		case emit.OpDefineAccessor:
			getterOrSetter := fr.pop()
			key := fr.pop()
			obj := fr.peek()
			m.defineAccessor(obj, value.ToString(key), getterOrSetter, instr.A)
		case emit.OpArrayAppend:
			v := fr.pop()
			obj := fr.peek()
			if arr, ok := obj.AsObject().(*Array); ok {
				arr.Elems = append(arr.Elems, v)
			}

		case emit.OpIn:
			rhs := fr.pop()
			lhs := fr.pop()
			ok, err := m.hasProperty(rhs, value.ToString(lhs))
			if err != nil {
				if !m.raiseInto(fr, err) {
					return value.Undefined(), err
				}
				continue
			}
			fr.push(value.Bool(ok))
		case emit.OpInstanceof:
			rhs := fr.pop()
			lhs := fr.pop()
			res, err := m.instanceOf(lhs, rhs)
			if err != nil {
				if !m.raiseInto(fr, err) {
					return value.Undefined(), err
				}
				continue
			}
			fr.push(value.Bool(res))

		case emit.OpForInInit:
			obj := fr.pop()
			fr.forState = append(fr.forState, newForInState(obj))
			fr.push(value.Undefined()) // placeholder slot matched by OpPop below the loop
		case emit.OpForInNext, emit.OpForOfNext:
			st := fr.forState[len(fr.forState)-1]
			k, v, ok, err := st.next(m)
			if err != nil {
				if !m.raiseInto(fr, err) {
					return value.Undefined(), err
				}
				continue
			}
			if !ok {
				fr.forState = fr.forState[:len(fr.forState)-1]
				fr.ip = instr.A
				continue
			}
			if instr.Op == emit.OpForInNext {
				fr.push(k)
			} else {
				fr.push(v)
			}
		case emit.OpForOfInit:
			obj := fr.pop()
			st, err := newForOfState(m, obj)
			if err != nil {
				if !m.raiseInto(fr, err) {
					return value.Undefined(), err
				}
				continue
			}
			fr.forState = append(fr.forState, st)
			fr.push(value.Undefined())

		case emit.OpLoadRegex:
			fr.push(value.Obj(m.regex(instr.A)))

		case emit.OpHalt:
			return value.Undefined(), nil

		default:
			return value.Undefined(), fmt.Errorf("vm: unimplemented opcode %s", instr.Op)
		}
	}
}

// raise searches fr's own handler stack for v, jumping fr.ip there and
// leaving v on top of the stack if found (§4.7 exception model).
func (m *VM) raise(fr *frame, v value.Value) bool {
	if len(fr.handlers) == 0 {
		return false
	}
	target := fr.handlers[len(fr.handlers)-1]
	fr.handlers = fr.handlers[:len(fr.handlers)-1]
	fr.ip = target
	fr.push(v)
	return true
}

// raiseInto converts a Go error produced mid-instruction (a dynamic
// TypeError, a bind failure, a deliberate *ThrownError from a nested
// call) into a search of fr's handler stack, so it behaves exactly like
// an OpThrow executed at this point.
func (m *VM) raiseInto(fr *frame, err error) bool {
	v := m.errorToValue(err)
	return m.raise(fr, v)
}

func (m *VM) errorToValue(err error) value.Value {
	if te, ok := err.(*ThrownError); ok {
		return te.Value
	}
	if se, ok := err.(*diag.ScriptError); ok {
		return value.Obj(m.NewErrorInstance(se.ScriptName, se.Message))
	}
	return value.Obj(m.NewErrorInstance(diag.Error, err.Error()))
}

func constToValue(c any) value.Value {
	switch v := c.(type) {
	case float64:
		return value.Float64(v)
	case string:
		return value.Str(v)
	case value.Value:
		return v
	default:
		return value.Undefined()
	}
}

func (m *VM) typeError(msg string) *diag.ScriptError {
	return diag.NewScriptError(diag.TypeError, msg, diag.Location{Path: m.Path})
}
func (m *VM) referenceError(msg string) *diag.ScriptError {
	return diag.NewScriptError(diag.ReferenceError, msg, diag.Location{Path: m.Path})
}
func (m *VM) rangeError(msg string) *diag.ScriptError {
	return diag.NewScriptError(diag.RangeError, msg, diag.Location{Path: m.Path})
}
