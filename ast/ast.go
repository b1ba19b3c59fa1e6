// Package ast defines the expression/statement tree (§3 "Expression tree")
// that the parser (C4) produces and the resolver/inferencer/emitter
// (C5-C7) walk.
package ast

import (
	"bytes"

	"github.com/nitrassic/nitrassic/lexer"
	"github.com/nitrassic/nitrassic/types"
)

// Node is the base interface every AST node satisfies.
type Node interface {
	TokenLiteral() string
	String() string
	Pos() lexer.Position
}

// Expression is a Node that produces a value. Reference expressions
// (Name, Member) additionally implement the Reference protocol defined in
// package emit (§4.7); ast itself stays free of emitter concerns.
type Expression interface {
	Node
	expressionNode()
	// ResultType returns the type the inferencer (C6) assigned to this
	// expression; Type{} (zero value, Kind==KindAny) until resolved.
	ResultType() types.Type
	SetResultType(types.Type)
}

// Statement is a Node that has only side effects.
type Statement interface {
	Node
	statementNode()
}

// BaseExpr factors the position/result-type bookkeeping every Expression
// implementation shares. It is exported so sibling packages (parser) can
// populate P directly in a struct literal instead of going through a
// constructor for every node kind.
type BaseExpr struct {
	RT types.Type
	P  lexer.Position
}

func (b *BaseExpr) Pos() lexer.Position        { return b.P }
func (b *BaseExpr) ResultType() types.Type     { return b.RT }
func (b *BaseExpr) SetResultType(t types.Type) { b.RT = t }
func (*BaseExpr) expressionNode()              {}

// BaseStmt factors the position bookkeeping every Statement shares.
type BaseStmt struct {
	P lexer.Position
}

func (b *BaseStmt) Pos() lexer.Position { return b.P }
func (*BaseStmt) statementNode()        {}

// Program is the root node: a sequence of top-level statements.
type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) Pos() lexer.Position {
	if len(p.Statements) > 0 {
		return p.Statements[0].Pos()
	}
	return lexer.Position{Line: 1, Column: 1}
}

func (p *Program) String() string {
	var out bytes.Buffer
	for _, s := range p.Statements {
		out.WriteString(s.String())
		out.WriteString("\n")
	}
	return out.String()
}
