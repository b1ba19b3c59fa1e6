package emit

import "github.com/nitrassic/nitrassic/ast"

// block compiles a statement list. topLevelTail marks the outermost
// program's statement list so the very last statement's value, if it is
// an expression statement, is left on the stack as the program's
// completion value instead of being popped (§4.7 "root expression /
// return-value elision").
func (e *Emitter) block(stmts []ast.Statement, topLevelTail bool) {
	for _, s := range stmts {
		if fd, ok := s.(*ast.FunctionDecl); ok {
			e.hoistFunctionDecl(fd)
		}
	}
	for i, s := range stmts {
		keepValue := topLevelTail && i == len(stmts)-1
		e.statement(s, keepValue)
	}
}

func (e *Emitter) hoistFunctionDecl(fd *ast.FunctionDecl) {
	proto := e.compileFunction(fd.Fn)
	line := fd.Pos().Line
	e.emitMakeClosure(line, proto)
	b := e.res.Decls[fd.Fn]
	if b == nil {
		e.emit(line, OpPop, 0, 0, "")
		return
	}
	e.emitStoreBinding(line, b)
	e.emit(line, OpPop, 0, 0, "")
}

// statement compiles one statement. keepValue is only honored for
// ExpressionStatement, and only when it is the final statement of the
// top-level program.
func (e *Emitter) statement(s ast.Statement, keepValue bool) {
	line := s.Pos().Line
	switch st := s.(type) {
	case nil:
	case *ast.VarDecl:
		e.varDecl(st)
	case *ast.FunctionDecl:
		// Already materialized by block's hoisting pass.
	case *ast.ExpressionStatement:
		e.expr(st.Expr)
		if !keepValue {
			e.emit(line, OpPop, 0, 0, "")
		}
	case *ast.Block:
		e.block(st.Statements, false)
	case *ast.If:
		e.ifStmt(st)
	case *ast.While:
		e.whileStmt(st, "")
	case *ast.DoWhile:
		e.doWhileStmt(st, "")
	case *ast.For:
		e.forStmt(st, "")
	case *ast.ForIn:
		e.forInStmt(st, "")
	case *ast.Break:
		e.breakStmt(st)
	case *ast.Continue:
		e.continueStmt(st)
	case *ast.Return:
		if st.Value != nil {
			e.expr(st.Value)
		} else {
			e.emit(line, OpLoadUndefined, 0, 0, "")
		}
		e.emit(line, OpReturn, 0, 0, "")
	case *ast.Throw:
		e.expr(st.Value)
		e.emit(line, OpThrow, 0, 0, "")
	case *ast.Try:
		e.tryStmt(st)
	case *ast.With:
		// §4.4 "with": resolved at the object-backed scope level by the
		// resolver; the emitter evaluates the object for side effects and
		// compiles the body unchanged — property lookups inside `with`
		// that the resolver could not statically bind already degraded to
		// dynamic global/member access during resolution.
		e.expr(st.Object)
		e.emit(line, OpPop, 0, 0, "")
		e.statement(st.Body, false)
	case *ast.Switch:
		e.switchStmt(st)
	case *ast.Labeled:
		e.labeledStmt(st)
	case *ast.Debugger:
		// no-op: Nitrassic has no attached debugger (§C9 carries script
		// diagnostics, not a debugger protocol).
	}
}

func (e *Emitter) varDecl(st *ast.VarDecl) {
	line := st.Pos().Line
	for i := range st.Declarators {
		d := &st.Declarators[i]
		b := e.res.Decls[d]
		if b == nil {
			continue
		}
		if d.Init != nil {
			e.expr(d.Init)
		} else if st.Kind == ast.DeclVar {
			// A bare `var x;` re-declaration must not clobber an already
			// initialized binding; skip emitting a store entirely.
			continue
		} else {
			e.emit(line, OpLoadUndefined, 0, 0, "")
		}
		e.emitStoreBinding(line, b)
		e.emit(line, OpPop, 0, 0, "")
	}
}

func (e *Emitter) ifStmt(st *ast.If) {
	line := st.Pos().Line
	e.expr(st.Cond)
	jElse := e.emit(line, OpJumpIfFalse, 0, 0, "")
	e.statement(st.Then, false)
	if st.Else != nil {
		jEnd := e.emit(line, OpJump, 0, 0, "")
		e.patchJumpsTo([]int{jElse}, e.currentPC())
		e.statement(st.Else, false)
		e.patchJumpsTo([]int{jEnd}, e.currentPC())
	} else {
		e.patchJumpsTo([]int{jElse}, e.currentPC())
	}
}

func (e *Emitter) whileStmt(st *ast.While, label string) {
	line := st.Pos().Line
	bt := e.pushLoop(label)
	condPC := e.currentPC()
	e.expr(st.Cond)
	jEnd := e.emit(line, OpJumpIfFalse, 0, 0, "")
	e.statement(st.Body, false)
	e.emit(line, OpLoop, condPC, 0, "")
	e.patchJumpsTo([]int{jEnd}, e.currentPC())
	finished := e.popLoop()
	e.patchJumpsTo(finished.continuePatches, condPC)
	_ = bt
	e.patchJumpsTo(finished.breakPatches, e.currentPC())
}

func (e *Emitter) doWhileStmt(st *ast.DoWhile, label string) {
	line := st.Pos().Line
	e.pushLoop(label)
	bodyPC := e.currentPC()
	e.statement(st.Body, false)
	condPC := e.currentPC()
	e.expr(st.Cond)
	e.emit(line, OpJumpIfTrue, bodyPC, 0, "")
	finished := e.popLoop()
	e.patchJumpsTo(finished.continuePatches, condPC)
	e.patchJumpsTo(finished.breakPatches, e.currentPC())
}

func (e *Emitter) forStmt(st *ast.For, label string) {
	line := st.Pos().Line
	if st.Init != nil {
		e.statement(st.Init, false)
	}
	e.pushLoop(label)
	condPC := e.currentPC()
	var jEnd int
	hasCond := st.Cond != nil
	if hasCond {
		e.expr(st.Cond)
		jEnd = e.emit(line, OpJumpIfFalse, 0, 0, "")
	}
	e.statement(st.Body, false)
	updatePC := e.currentPC()
	if st.Update != nil {
		e.expr(st.Update)
		e.emit(line, OpPop, 0, 0, "")
	}
	e.emit(line, OpLoop, condPC, 0, "")
	endPC := e.currentPC()
	if hasCond {
		e.patchJumpsTo([]int{jEnd}, endPC)
	}
	finished := e.popLoop()
	e.patchJumpsTo(finished.continuePatches, updatePC)
	e.patchJumpsTo(finished.breakPatches, endPC)
}

// forInStmt lowers both for-in and for-of: the runtime iteration protocol
// itself (enumerating the object's own enumerable keys in sorted order, or
// walking an array's elements or a string's characters) lives in package
// vm's OpForInNext/OpForOfNext handling; the emitter just brackets the
// loop body between a setup and a next-check, mirroring the teacher's
// approach of keeping iteration mechanics out of the compiler.
func (e *Emitter) forInStmt(st *ast.ForIn, label string) {
	line := st.Pos().Line
	e.expr(st.Object)
	initOp, nextOp := OpForInInit, OpForInNext
	if st.Of {
		initOp, nextOp = OpForOfInit, OpForOfNext
	}
	e.emit(line, initOp, 0, 0, "")
	e.pushLoop(label)
	condPC := e.currentPC()
	jEnd := e.emit(line, nextOp, 0, 0, "")
	b := e.res.Decls[st]
	if b != nil {
		e.emitStoreBinding(line, b)
	}
	e.emit(line, OpPop, 0, 0, "")
	e.statement(st.Body, false)
	e.emit(line, OpLoop, condPC, 0, "")
	endPC := e.currentPC()
	e.patchJumpsTo([]int{jEnd}, endPC)
	e.emit(line, OpPop, 0, 0, "") // discard the iterator/enumerator state
	finished := e.popLoop()
	e.patchJumpsTo(finished.continuePatches, condPC)
	e.patchJumpsTo(finished.breakPatches, endPC)
}

func (e *Emitter) breakStmt(st *ast.Break) {
	idx := e.emit(st.Pos().Line, OpJump, 0, 0, "")
	for i := len(e.fs.loops) - 1; i >= 0; i-- {
		bt := &e.fs.loops[i]
		if st.Label == "" || bt.label == st.Label {
			bt.breakPatches = append(bt.breakPatches, idx)
			return
		}
	}
	e.errorf("break outside of a loop or labeled statement")
}

func (e *Emitter) continueStmt(st *ast.Continue) {
	idx := e.emit(st.Pos().Line, OpJump, 0, 0, "")
	for i := len(e.fs.loops) - 1; i >= 0; i-- {
		bt := &e.fs.loops[i]
		if !bt.isLoop {
			continue
		}
		if st.Label == "" || bt.label == st.Label {
			bt.continuePatches = append(bt.continuePatches, idx)
			return
		}
	}
	e.errorf("continue outside of a loop")
}

// tryStmt lowers try/catch/finally (§4.4, §4.7 "exception throw/try/catch").
// The normal-completion path always jumps past the catch-handling code;
// the exception-landing code (reached via the handler the VM popped) is
// where the thrown value sits on top of the stack. When a finally block
// is present and there is also a catch, the catch body is itself wrapped
// in a second handler so a throw from inside catch still runs finally
// before propagating further (via the pending-rethrow register OpEnterFinally/
// OpEndFinally implement).
func (e *Emitter) tryStmt(st *ast.Try) {
	line := st.Pos().Line
	hasFinally := st.FinallyBlock != nil

	hPush := e.emit(line, OpPushHandler, 0, 0, "")
	e.statement(st.Block, false)
	e.emit(line, OpPopHandler, 0, 0, "")
	jNormalSkip := e.emit(line, OpJump, 0, 0, "")

	e.patchJumpsTo([]int{hPush}, e.currentPC())

	switch {
	case st.HasCatch:
		catchProtected := hasFinally
		var hPushCatch int
		if catchProtected {
			hPushCatch = e.emit(line, OpPushHandler, 0, 0, "")
		}
		b := e.res.Decls[st]
		if b != nil {
			e.emitStoreBinding(line, b)
		}
		e.emit(line, OpPop, 0, 0, "")
		e.statement(st.CatchBlock, false)
		if catchProtected {
			e.emit(line, OpPopHandler, 0, 0, "")
			e.emit(line, OpEnterFinally, 0, 0, "")
			jAfterCatch := e.emit(line, OpJump, 0, 0, "")
			e.patchJumpsTo([]int{hPushCatch}, e.currentPC())
			e.emit(line, OpEnterFinally, 1, 0, "")
			e.patchJumpsTo([]int{jAfterCatch}, e.currentPC())
		}
	case hasFinally:
		// No catch: the exception keeps propagating after finally runs.
		e.emit(line, OpEnterFinally, 1, 0, "")
	default:
		// Neither catch nor finally is not valid surface syntax; stay
		// defensive and let the exception keep propagating unmodified.
		e.emit(line, OpThrow, 0, 0, "")
	}

	e.patchJumpsTo([]int{jNormalSkip}, e.currentPC())

	if hasFinally {
		e.emit(line, OpLeaveFinally, 0, 0, "")
		e.statement(st.FinallyBlock, false)
		e.emit(line, OpEndFinally, 0, 0, "")
	}
}

func (e *Emitter) switchStmt(st *ast.Switch) {
	line := st.Pos().Line
	e.expr(st.Discriminant)
	bt := e.pushLoop("")
	bt.isLoop = false
	var caseJumps []int
	defaultIdx := -1
	for _, c := range st.Cases {
		if c.Test == nil {
			defaultIdx = len(caseJumps)
			caseJumps = append(caseJumps, -1)
			continue
		}
		e.emit(line, OpDup, 0, 0, "")
		e.expr(c.Test)
		e.emit(line, OpStrictEq, 0, 0, "")
		j := e.emit(line, OpJumpIfTrueNoPop, 0, 0, "")
		e.emit(line, OpPop, 0, 0, "")
		caseJumps = append(caseJumps, j)
	}
	e.emit(line, OpPop, 0, 0, "")
	jToDefaultOrEnd := e.emit(line, OpJump, 0, 0, "")
	var bodyStarts []int
	ci := 0
	for _, c := range st.Cases {
		if c.Test != nil {
			e.patchJumpsTo([]int{caseJumps[ci]}, e.currentPC())
			e.emit(line, OpPop, 0, 0, "")
		}
		bodyStarts = append(bodyStarts, e.currentPC())
		for _, inner := range c.Statements {
			e.statement(inner, false)
		}
		ci++
	}
	endPC := e.currentPC()
	if defaultIdx >= 0 && defaultIdx < len(bodyStarts) {
		e.patchJumpsTo([]int{jToDefaultOrEnd}, bodyStarts[defaultIdx])
	} else {
		e.patchJumpsTo([]int{jToDefaultOrEnd}, endPC)
	}
	finished := e.popLoop()
	e.patchJumpsTo(finished.breakPatches, endPC)
}

func (e *Emitter) labeledStmt(st *ast.Labeled) {
	switch body := st.Body.(type) {
	case *ast.While:
		e.whileStmt(body, st.Label)
	case *ast.DoWhile:
		e.doWhileStmt(body, st.Label)
	case *ast.For:
		e.forStmt(body, st.Label)
	case *ast.ForIn:
		e.forInStmt(body, st.Label)
	default:
		// A label on a non-loop statement only gives `break label;` a
		// target (§4.4); continue cannot reach it.
		bt := e.pushLoop(st.Label)
		bt.isLoop = false
		e.statement(st.Body, false)
		finished := e.popLoop()
		e.patchJumpsTo(finished.breakPatches, e.currentPC())
	}
}
