package emit

import (
	"github.com/nitrassic/nitrassic/ast"
	"github.com/nitrassic/nitrassic/resolver"
	"github.com/nitrassic/nitrassic/runtime/scope"
)

// collectLocals walks a function body (or, with params == nil, the
// top-level program) gathering every Binding the resolver (C5) attached
// to a declaration site within it — in declaration order, params first —
// without descending into nested function bodies, which get their own
// flat local table when they are themselves compiled. Shadowing in
// nested blocks is handled for free: the resolver hands out a distinct
// *scope.Binding pointer per declaration site, so two `let x` in sibling
// blocks never collide even though they share a slot-allocation pass.
func collectLocals(res *resolver.Resolution, params []ast.Param, body []ast.Statement) []*scope.Binding {
	var order []*scope.Binding
	seen := make(map[*scope.Binding]bool)
	add := func(b *scope.Binding) {
		if b == nil || seen[b] {
			return
		}
		seen[b] = true
		order = append(order, b)
	}
	for i := range params {
		add(res.Decls[&params[i]])
	}
	var walkStmts func([]ast.Statement)
	walkStmt := func(s ast.Statement) {
		switch st := s.(type) {
		case nil:
		case *ast.VarDecl:
			for i := range st.Declarators {
				add(res.Decls[&st.Declarators[i]])
			}
		case *ast.FunctionDecl:
			add(res.Decls[st.Fn])
		case *ast.Block:
			walkStmts(st.Statements)
		case *ast.If:
			walkStmt(st.Then)
			walkStmt(st.Else)
		case *ast.While:
			walkStmt(st.Body)
		case *ast.DoWhile:
			walkStmt(st.Body)
		case *ast.For:
			walkStmt(st.Init)
			walkStmt(st.Body)
		case *ast.ForIn:
			add(res.Decls[st])
			walkStmt(st.Body)
		case *ast.Try:
			walkStmts(st.Block.Statements)
			if st.CatchBlock != nil {
				add(res.Decls[st])
				walkStmts(st.CatchBlock.Statements)
			}
			if st.FinallyBlock != nil {
				walkStmts(st.FinallyBlock.Statements)
			}
		case *ast.With:
			walkStmt(st.Body)
		case *ast.Switch:
			for _, c := range st.Cases {
				walkStmts(c.Statements)
			}
		case *ast.Labeled:
			walkStmt(st.Body)
		}
	}
	walkStmts = func(stmts []ast.Statement) {
		for _, s := range stmts {
			walkStmt(s)
		}
	}
	walkStmts(body)
	return order
}
