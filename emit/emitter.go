package emit

import (
	"fmt"

	"github.com/nitrassic/nitrassic/ast"
	"github.com/nitrassic/nitrassic/resolver"
	"github.com/nitrassic/nitrassic/runtime/scope"
)

// Error is an emitter-time diagnostic: a construct the resolver/inferencer
// let through but that package emit cannot lower, such as a `break` or
// `continue` with no enclosing loop or matching label (see breakStmt and
// continueStmt). Errors are accumulated the way the teacher's Compiler
// does instead of panicking mid-emit.
type Error struct {
	Message string
}

func (e Error) Error() string { return e.Message }

// breakTarget is one entry of the enclosing loop/labeled-statement stack,
// tracking the forward jump patch lists `break`/`continue` append to
// until the instruction they should land on is known (§4.4 "break/continue
// with labels").
type breakTarget struct {
	label           string
	isLoop          bool
	breakPatches    []int
	continuePatches []int
}

// funcState is the per-compiled-function compilation record, mirroring
// the teacher's Compiler struct (internal/bytecode/compiler.go): a flat
// locals table plus an upvalue list built lazily via resolveUpvalue, one
// funcState per nested function literal/declaration being emitted.
type funcState struct {
	enclosing *funcState
	chunk     *Chunk
	fn        *ast.FunctionRef // nil for the top-level program

	locals    map[*scope.Binding]int
	numLocals int

	upvalues   []UpvalueDef
	upvalIndex map[*scope.Binding]int

	loops []breakTarget
}

// Emitter lowers a resolved, inferred ast.Program to an instruction
// stream. One Emitter compiles one program; nested function literals are
// compiled by pushing/popping funcState frames, exactly as the teacher's
// Compiler nests a new instance per function (compiler_core.go).
type Emitter struct {
	res    *resolver.Resolution
	global *scope.Scope
	fs     *funcState
	errors []Error
	regexes []string // LitRegex text as written ("/pattern/flags"), indexed by OpLoadRegex's A operand
}

// Compile lowers prog to a callable FunctionProto representing the
// top-level program body. Top-level var/function/let/const bindings are
// never given local slots: §3 describes the global scope as "a
// distinguished object-backed scope", so every top-level binding is
// emitted as a named global access instead (§4.2).
func Compile(prog *ast.Program, res *resolver.Resolution) (*FunctionProto, []string, []Error) {
	e := &Emitter{res: res, global: res.Global}
	e.fs = &funcState{chunk: NewChunk("<script>"), locals: map[*scope.Binding]int{}, upvalIndex: map[*scope.Binding]int{}}
	e.block(prog.Statements, true)
	e.fs.chunk.emit(0, OpLoadUndefined, 0, 0, "")
	e.fs.chunk.emit(0, OpReturn, 0, 0, "")
	proto := &FunctionProto{Name: "<script>", Body: e.fs.chunk, NumLocals: e.fs.numLocals}
	return proto, e.regexes, e.errors
}

func (e *Emitter) errorf(format string, args ...any) {
	e.errors = append(e.errors, Error{Message: fmt.Sprintf(format, args...)})
}

func (e *Emitter) chunk() *Chunk { return e.fs.chunk }

func (e *Emitter) emit(line int, op OpCode, a, b int, str string) int {
	return e.fs.chunk.emit(line, op, a, b, str)
}

func (e *Emitter) constIndex(v any) int { return e.fs.chunk.addConst(v) }

// --- variable resolution --------------------------------------------------

// varKind distinguishes how a resolved Binding is reached from the
// currently-compiling function.
type varKind int

const (
	varGlobal varKind = iota
	varLocal
	varUpvalue
)

// resolveVariable locates b relative to fs, adding upvalue chain entries
// as needed — a direct port of the closure-upvalue algorithm from the
// teacher's compiler_core.go (resolveUpvalue/addUpvalue), keyed on the
// Binding pointer the resolver already computed rather than re-deriving
// it from names.
func (e *Emitter) resolveVariable(fs *funcState, b *scope.Binding) (varKind, int) {
	if gb, ok := e.global.Local(b.Name); ok && gb == b {
		return varGlobal, 0
	}
	if idx, ok := fs.locals[b]; ok {
		return varLocal, idx
	}
	if fs.enclosing == nil {
		// Not found anywhere in the function chain and not global: treat
		// as global by name (defensive fallback; should not occur for a
		// resolver-produced tree since every non-global Binding is
		// collected into some enclosing funcState's locals).
		return varGlobal, 0
	}
	if idx, ok := fs.upvalIndex[b]; ok {
		return varUpvalue, idx
	}
	kind, idx := e.resolveVariable(fs.enclosing, b)
	switch kind {
	case varLocal:
		return varUpvalue, e.addUpvalue(fs, b, UpvalueDef{Name: b.Name, IsLocal: true, Index: idx})
	case varUpvalue:
		return varUpvalue, e.addUpvalue(fs, b, UpvalueDef{Name: b.Name, IsLocal: false, Index: idx})
	default:
		return varGlobal, 0
	}
}

func (e *Emitter) addUpvalue(fs *funcState, b *scope.Binding, def UpvalueDef) int {
	fs.upvalues = append(fs.upvalues, def)
	idx := len(fs.upvalues) - 1
	fs.upvalIndex[b] = idx
	return idx
}

// declareLocal allocates a fresh slot for b in the current funcState. It
// is an error to call this twice for the same Binding (collectLocals
// already de-duplicates by pointer).
func (e *Emitter) declareLocal(b *scope.Binding) int {
	idx := e.fs.numLocals
	e.fs.numLocals++
	e.fs.locals[b] = idx
	return idx
}

// emitLoadBinding pushes b's current value.
func (e *Emitter) emitLoadBinding(line int, b *scope.Binding) {
	kind, idx := e.resolveVariable(e.fs, b)
	switch kind {
	case varGlobal:
		e.emit(line, OpLoadGlobal, 0, 0, b.Name)
	case varLocal:
		cell := 0
		if b.Captured {
			cell = 1
		}
		e.emit(line, OpLoadLocal, idx, cell, "")
	case varUpvalue:
		e.emit(line, OpLoadUpvalue, idx, 0, "")
	}
}

// emitStoreBinding stores (without popping — assignment is an expression,
// §3) the value on top of the stack into b.
func (e *Emitter) emitStoreBinding(line int, b *scope.Binding) {
	kind, idx := e.resolveVariable(e.fs, b)
	switch kind {
	case varGlobal:
		e.emit(line, OpStoreGlobal, 0, 0, b.Name)
	case varLocal:
		cell := 0
		if b.Captured {
			cell = 1
		}
		e.emit(line, OpStoreLocal, idx, cell, "")
	case varUpvalue:
		e.emit(line, OpStoreUpvalue, idx, 0, "")
	}
}

// --- functions -------------------------------------------------------------

// compileFunction lowers fn to a FunctionProto in a fresh funcState nested
// under the current one, then restores the current funcState — the same
// push/pop-a-Compiler shape the teacher's compileFunction uses.
func (e *Emitter) compileFunction(fn *ast.FunctionRef) *FunctionProto {
	outer := e.fs
	fs := &funcState{enclosing: outer, chunk: NewChunk(fn.Name), fn: fn,
		locals: map[*scope.Binding]int{}, upvalIndex: map[*scope.Binding]int{}}
	e.fs = fs

	bindings := collectLocals(e.res, fn.Params, fn.Body.Statements)
	for _, b := range bindings {
		e.declareLocal(b)
	}
	// Materialize a Cell up front for every captured local (including
	// captured parameters) so a closure created anywhere in the body sees
	// the same storage a later reassignment writes through (§5 "closure
	// capture" — var's function-scoped single binding is what makes the
	// documented `for (var i...) r.push(()=>i)` example return the final
	// shared value for every closure).
	for _, b := range bindings {
		if b.Captured {
			e.emit(fn.Pos().Line, OpLoadUndefined, 0, 0, "")
			e.emit(fn.Pos().Line, OpDeclareLocal, e.fs.locals[b], 1, "")
		}
	}
	for i := range fn.Params {
		p := &fn.Params[i]
		b := e.res.Decls[p]
		if b == nil {
			continue
		}
		line := fn.Pos().Line
		e.emit(line, OpLoadArg, i, 0, "")
		if p.Default != nil {
			// Stack: [argVal]. Test whether the caller actually supplied
			// this argument (argVal === undefined means it wasn't) and, if
			// not, discard it and evaluate the default expression instead
			// (§4.5 "Param.Default").
			e.emit(line, OpDup, 0, 0, "")
			e.emit(line, OpLoadUndefined, 0, 0, "")
			e.emit(line, OpStrictEq, 0, 0, "")
			jNotMissing := e.emit(line, OpJumpIfFalse, 0, 0, "")
			e.emit(line, OpPop, 0, 0, "")
			e.compileDefaultExpr(p.Default)
			jDone := e.emit(line, OpJump, 0, 0, "")
			e.patchJumpsTo([]int{jNotMissing}, e.currentPC())
			e.patchJumpsTo([]int{jDone}, e.currentPC())
		}
		cell := 0
		if b.Captured {
			cell = 1
		}
		e.emit(line, OpStoreLocal, e.fs.locals[b], cell, "")
		e.emit(line, OpPop, 0, 0, "")
	}

	e.block(fn.Body.Statements, false)
	e.emit(fn.Pos().Line, OpLoadUndefined, 0, 0, "")
	e.emit(fn.Pos().Line, OpReturn, 0, 0, "")

	proto := &FunctionProto{
		Name: fn.Name, IsArrow: fn.IsArrow, Body: fs.chunk,
		NumLocals: fs.numLocals, Upvalues: fs.upvalues, Line: fn.Pos().Line,
	}
	for _, p := range fn.Params {
		proto.Params = append(proto.Params, ParamDef{Name: p.Name, Rest: p.Rest})
	}
	e.fs = outer
	return proto
}

// emitMakeClosure pushes a closure value for proto, capturing its
// upvalues out of the currently-compiling function's locals/upvalues.
func (e *Emitter) emitMakeClosure(line int, proto *FunctionProto) {
	ci := e.constIndex(proto)
	op := OpMakeClosure
	if proto.IsArrow {
		op = OpMakeArrow
	}
	e.emit(line, op, ci, len(proto.Upvalues), "")
	for _, uv := range proto.Upvalues {
		if uv.IsLocal {
			e.emit(line, OpLoadLocalRef, uv.Index, 0, "")
		} else {
			e.emit(line, OpLoadUpvalueRef, uv.Index, 0, "")
		}
	}
}

// --- break/continue bookkeeping --------------------------------------------

func (e *Emitter) pushLoop(label string) *breakTarget {
	e.fs.loops = append(e.fs.loops, breakTarget{label: label, isLoop: true})
	return &e.fs.loops[len(e.fs.loops)-1]
}

func (e *Emitter) popLoop() breakTarget {
	bt := e.fs.loops[len(e.fs.loops)-1]
	e.fs.loops = e.fs.loops[:len(e.fs.loops)-1]
	return bt
}

func (e *Emitter) patchJumpsTo(idxs []int, target int) {
	for _, idx := range idxs {
		e.fs.chunk.Code[idx].A = target
	}
}

func (e *Emitter) currentPC() int { return len(e.fs.chunk.Code) }

// newScratch allocates a plain (never cell-boxed, never resolver-visible)
// local slot for the emitter's own bookkeeping — staging an object
// reference and computed key across a read-modify-write member update
// (§4.7 compound assignment / increment) without fighting stack-machine
// operand ordering.
func (e *Emitter) newScratch() int {
	idx := e.fs.numLocals
	e.fs.numLocals++
	return idx
}

func (e *Emitter) compileDefaultExpr(expr ast.Expression) { e.expr(expr) }
