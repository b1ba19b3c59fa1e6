// Package resolver implements the two-phase scope and variable resolution
// pass (C5): a hoisting phase that walks each function/program body
// registering `var`/`function` declarations in the enclosing function
// scope and `let`/`const` in their block scope, followed by a reference
// phase that walks every Name use and records which Binding it refers to.
//
// Modeled on the teacher's Environment (store + outer, §[[runtime/scope]])
// generalized to ECMAScript's hoisting and closure rules, which the
// teacher's own resolution (internal/semantic/symbol_table.go) does not
// need since its source language has no hoisting.
package resolver

import (
	"fmt"

	"github.com/nitrassic/nitrassic/ast"
	"github.com/nitrassic/nitrassic/lexer"
	"github.com/nitrassic/nitrassic/runtime/scope"
)

// Error is a single resolution diagnostic (undeclared reference, illegal
// redeclaration). Assignment to a const global is not reported here; the
// VM rejects it at run time.
type Error struct {
	Message string
	Pos     lexer.Position
}

func (e Error) Error() string { return fmt.Sprintf("%s: %s", e.Pos, e.Message) }

// Resolution is the result of resolving a program: the binding each Name
// node refers to, and the free-variable closure list for each function.
type Resolution struct {
	// Refs maps a *ast.Name node to the Binding it resolves to.
	Refs map[*ast.Name]*scope.Binding
	// Closures maps a *ast.FunctionRef to the names of outer-scope
	// bindings its body references (§5 "closure capture").
	Closures map[*ast.FunctionRef][]string
	// Decls maps a declaration site to the Binding it introduced, so the
	// emitter (C7) can assign that exact Binding a local slot (or heap
	// cell, if Captured) without re-running scope resolution itself. Keys
	// are one of: *ast.VarDeclarator element pointer (&decl.Declarators[i]),
	// *ast.Param element pointer (&fn.Params[i]), *ast.FunctionRef (a
	// function declaration's own name binding), *ast.ForIn (its loop
	// variable), or *ast.Try (its catch parameter).
	Decls  map[any]*scope.Binding
	Errors []Error
	Global *scope.Scope
}

// Resolver walks the AST maintaining a scope stack.
type Resolver struct {
	res     *Resolution
	cur     *scope.Scope
	fnStack []*ast.FunctionRef
}

// Resolve runs both phases over prog and returns the Resolution, using a
// fresh, empty global scope.
func Resolve(prog *ast.Program) *Resolution {
	return ResolveWithGlobal(prog, scope.New())
}

// ResolveWithGlobal runs both phases over prog against a caller-supplied
// global scope instead of a fresh one. package engine uses this to keep
// one persistent global scope across a process's lifetime (§5 "the first
// engine's choices ... bind all later engines", generalized here to "a
// script sees globals an embedder pre-declared via Engine.SetGlobal
// before Compile ran") rather than discarding the global bindings every
// compile.
func ResolveWithGlobal(prog *ast.Program, global *scope.Scope) *Resolution {
	r := &Resolver{
		res: &Resolution{
			Refs:     make(map[*ast.Name]*scope.Binding),
			Closures: make(map[*ast.FunctionRef][]string),
			Decls:    make(map[any]*scope.Binding),
			Global:   global,
		},
		cur: global,
	}
	r.hoistBlock(prog.Statements)
	for _, s := range prog.Statements {
		r.resolveStatement(s)
	}
	return r.res
}

func (r *Resolver) errorf(pos lexer.Position, format string, args ...any) {
	r.res.Errors = append(r.res.Errors, Error{Pos: pos, Message: fmt.Sprintf(format, args...)})
}

// hoistBlock registers every `var` (to the enclosing function scope) and
// `function` declaration, and every `let`/`const` (to the current block
// scope), found directly or within nested non-function statements of
// stmts — the ECMAScript hoisting pass (§5).
func (r *Resolver) hoistBlock(stmts []ast.Statement) {
	for _, s := range stmts {
		r.hoistStatement(s)
	}
}

func (r *Resolver) hoistStatement(s ast.Statement) {
	switch st := s.(type) {
	case *ast.VarDecl:
		target := r.cur
		if st.Kind == ast.DeclVar {
			target = r.cur.FunctionScope()
		}
		for i := range st.Declarators {
			d := &st.Declarators[i]
			if _, ok := target.Local(d.Name); ok && st.Kind != ast.DeclVar {
				r.errorf(st.Pos(), "identifier %q has already been declared", d.Name)
				continue
			}
			r.res.Decls[d] = target.Declare(d.Name, st.Kind == ast.DeclConst)
		}
	case *ast.FunctionDecl:
		r.res.Decls[st.Fn] = r.cur.Declare(st.Fn.Name, false)
	case *ast.Block:
		// var-hoisting still reaches inside nested blocks (function scope);
		// let/const stay block-local so only recurse for var/function finds
		// via a temporary scope when this call is itself inside hoistBlock
		// at block level — the caller already pushed the right scope for
		// let/const when this Block's own resolveStatement runs.
		r.hoistNestedVarsOnly(st.Statements)
	case *ast.If:
		r.hoistNestedVarsOnly([]ast.Statement{st.Then})
		if st.Else != nil {
			r.hoistNestedVarsOnly([]ast.Statement{st.Else})
		}
	case *ast.While:
		r.hoistNestedVarsOnly([]ast.Statement{st.Body})
	case *ast.DoWhile:
		r.hoistNestedVarsOnly([]ast.Statement{st.Body})
	case *ast.For:
		if st.Init != nil {
			r.hoistNestedVarsOnly([]ast.Statement{st.Init})
		}
		r.hoistNestedVarsOnly([]ast.Statement{st.Body})
	case *ast.ForIn:
		if st.HasDecl && st.DeclKind == ast.DeclVar {
			r.cur.FunctionScope().Declare(st.Name, false)
		}
		r.hoistNestedVarsOnly([]ast.Statement{st.Body})
	case *ast.Try:
		r.hoistNestedVarsOnly(st.Block.Statements)
		if st.CatchBlock != nil {
			r.hoistNestedVarsOnly(st.CatchBlock.Statements)
		}
		if st.FinallyBlock != nil {
			r.hoistNestedVarsOnly(st.FinallyBlock.Statements)
		}
	case *ast.With:
		r.hoistNestedVarsOnly([]ast.Statement{st.Body})
	case *ast.Switch:
		for _, c := range st.Cases {
			r.hoistNestedVarsOnly(c.Statements)
		}
	case *ast.Labeled:
		r.hoistStatement(st.Body)
	}
}

// hoistNestedVarsOnly recurses into nested statements hoisting only `var`
// and function declarations to the current function scope; it does not
// hoist let/const (those are the responsibility of each block's own
// resolveStatement call, run when control actually enters that block).
func (r *Resolver) hoistNestedVarsOnly(stmts []ast.Statement) {
	for _, s := range stmts {
		switch st := s.(type) {
		case *ast.VarDecl:
			if st.Kind == ast.DeclVar {
				target := r.cur.FunctionScope()
				for i := range st.Declarators {
					d := &st.Declarators[i]
					r.res.Decls[d] = target.Declare(d.Name, false)
				}
			}
		case *ast.FunctionDecl:
			r.res.Decls[st.Fn] = r.cur.FunctionScope().Declare(st.Fn.Name, false)
		case *ast.Block:
			r.hoistNestedVarsOnly(st.Statements)
		case *ast.If:
			r.hoistNestedVarsOnly([]ast.Statement{st.Then})
			if st.Else != nil {
				r.hoistNestedVarsOnly([]ast.Statement{st.Else})
			}
		case *ast.While:
			r.hoistNestedVarsOnly([]ast.Statement{st.Body})
		case *ast.DoWhile:
			r.hoistNestedVarsOnly([]ast.Statement{st.Body})
		case *ast.For:
			if st.Init != nil {
				r.hoistNestedVarsOnly([]ast.Statement{st.Init})
			}
			r.hoistNestedVarsOnly([]ast.Statement{st.Body})
		case *ast.ForIn:
			if st.HasDecl && st.DeclKind == ast.DeclVar {
				r.res.Decls[st] = r.cur.FunctionScope().Declare(st.Name, false)
			}
			r.hoistNestedVarsOnly([]ast.Statement{st.Body})
		case *ast.Try:
			r.hoistNestedVarsOnly(st.Block.Statements)
			if st.CatchBlock != nil {
				r.hoistNestedVarsOnly(st.CatchBlock.Statements)
			}
			if st.FinallyBlock != nil {
				r.hoistNestedVarsOnly(st.FinallyBlock.Statements)
			}
		case *ast.With:
			r.hoistNestedVarsOnly([]ast.Statement{st.Body})
		case *ast.Switch:
			for _, c := range st.Cases {
				r.hoistNestedVarsOnly(c.Statements)
			}
		case *ast.Labeled:
			r.hoistNestedVarsOnly([]ast.Statement{st.Body})
		}
	}
}

func (r *Resolver) resolveStatement(s ast.Statement) {
	switch st := s.(type) {
	case nil:
		return
	case *ast.VarDecl:
		for i := range st.Declarators {
			d := &st.Declarators[i]
			if d.Init != nil {
				r.resolveExpression(d.Init)
			}
			if b, _, ok := r.cur.Resolve(d.Name); ok {
				b.Initialized = true
			}
		}
	case *ast.FunctionDecl:
		r.resolveFunction(st.Fn)
	case *ast.ExpressionStatement:
		r.resolveExpression(st.Expr)
	case *ast.Block:
		r.pushBlock(func() {
			r.hoistBlock(st.Statements)
			for _, inner := range st.Statements {
				r.resolveStatement(inner)
			}
		})
	case *ast.If:
		r.resolveExpression(st.Cond)
		r.resolveStatement(st.Then)
		r.resolveStatement(st.Else)
	case *ast.While:
		r.resolveExpression(st.Cond)
		r.resolveStatement(st.Body)
	case *ast.DoWhile:
		r.resolveStatement(st.Body)
		r.resolveExpression(st.Cond)
	case *ast.For:
		r.pushBlock(func() {
			if st.Init != nil {
				r.hoistBlock([]ast.Statement{st.Init})
				r.resolveStatement(st.Init)
			}
			if st.Cond != nil {
				r.resolveExpression(st.Cond)
			}
			if st.Update != nil {
				r.resolveExpression(st.Update)
			}
			r.resolveStatement(st.Body)
		})
	case *ast.ForIn:
		r.pushBlock(func() {
			if st.HasDecl && st.DeclKind != ast.DeclVar {
				r.res.Decls[st] = r.cur.Declare(st.Name, st.DeclKind == ast.DeclConst)
			}
			r.resolveExpression(st.Object)
			r.resolveStatement(st.Body)
		})
	case *ast.Break, *ast.Continue, *ast.Debugger:
		// no sub-expressions to resolve
	case *ast.Return:
		if st.Value != nil {
			r.resolveExpression(st.Value)
		}
	case *ast.Throw:
		r.resolveExpression(st.Value)
	case *ast.Try:
		r.resolveStatement(st.Block)
		if st.HasCatch {
			r.pushBlock(func() {
				if st.CatchParam != "" {
					r.res.Decls[st] = r.cur.Declare(st.CatchParam, false)
				}
				r.hoistBlock(st.CatchBlock.Statements)
				for _, inner := range st.CatchBlock.Statements {
					r.resolveStatement(inner)
				}
			})
		}
		if st.FinallyBlock != nil {
			r.resolveStatement(st.FinallyBlock)
		}
	case *ast.With:
		r.resolveExpression(st.Object)
		r.resolveStatement(st.Body)
	case *ast.Switch:
		r.resolveExpression(st.Discriminant)
		r.pushBlock(func() {
			for _, c := range st.Cases {
				r.hoistBlock(c.Statements)
			}
			for _, c := range st.Cases {
				if c.Test != nil {
					r.resolveExpression(c.Test)
				}
				for _, inner := range c.Statements {
					r.resolveStatement(inner)
				}
			}
		})
	case *ast.Labeled:
		r.resolveStatement(st.Body)
	}
}

func (r *Resolver) pushBlock(body func()) {
	outer := r.cur
	r.cur = scope.NewEnclosed(outer, scope.KindBlock)
	body()
	r.cur = outer
}

func (r *Resolver) resolveFunction(fn *ast.FunctionRef) {
	outer := r.cur
	fnScope := scope.NewEnclosed(outer, scope.KindFunction)
	for i := range fn.Params {
		p := &fn.Params[i]
		r.res.Decls[p] = fnScope.Declare(p.Name, false)
	}
	r.cur = fnScope
	r.fnStack = append(r.fnStack, fn)
	r.hoistBlock(fn.Body.Statements)
	for _, s := range fn.Body.Statements {
		r.resolveStatement(s)
	}
	r.fnStack = r.fnStack[:len(r.fnStack)-1]
	r.cur = outer
}

func (r *Resolver) resolveExpression(e ast.Expression) {
	switch ex := e.(type) {
	case nil:
		return
	case *ast.Name:
		b, foundIn, ok := r.cur.Resolve(ex.Value)
		if !ok {
			r.errorf(ex.Pos(), "%q is not defined", ex.Value)
			return
		}
		r.res.Refs[ex] = b
		r.recordCapture(foundIn, ex.Value, b)
	case *ast.Literal:
		for _, el := range ex.Elements {
			r.resolveExpression(el)
		}
		for _, p := range ex.Properties {
			if p.Computed {
				r.resolveExpression(p.KeyExpr)
			}
			r.resolveExpression(p.Value)
		}
	case *ast.Member:
		r.resolveExpression(ex.Object)
		if ex.Computed {
			r.resolveExpression(ex.Property)
		}
	case *ast.FunctionRef:
		r.resolveFunction(ex)
	case *ast.Operator:
		for _, o := range ex.Operands {
			r.resolveExpression(o)
		}
	case *ast.Call:
		r.resolveExpression(ex.Callee)
		for _, a := range ex.Args {
			r.resolveExpression(a)
		}
	case *ast.New:
		r.resolveExpression(ex.Callee)
		for _, a := range ex.Args {
			r.resolveExpression(a)
		}
	}
}

// recordCapture notes, for the innermost enclosing function whose scope
// sits strictly between the current scope and declaredIn, that name is a
// free variable it closes over (§5 "closure capture"). Nothing is
// recorded when the binding is declared within the function itself (a
// local, not a capture) or at global scope (globals need no hoisted
// closure record — they are always reachable).
func (r *Resolver) recordCapture(declaredIn *scope.Scope, name string, b *scope.Binding) {
	if len(r.fnStack) == 0 || declaredIn.Kind() == scope.KindGlobal {
		return
	}
	for cur := r.cur; cur != nil && cur != declaredIn; cur = cur.Outer() {
		if cur.Kind() != scope.KindFunction {
			continue
		}
		fn := r.fnStack[len(r.fnStack)-1]
		if !containsString(r.res.Closures[fn], name) {
			r.res.Closures[fn] = append(r.res.Closures[fn], name)
		}
		b.Captured = true
		return
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
