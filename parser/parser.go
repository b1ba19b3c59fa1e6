// Package parser implements a precedence-climbing (Pratt) parser over the
// token stream from package lexer, producing the expression/statement tree
// in package ast (§4.4).
package parser

import (
	"fmt"

	"github.com/nitrassic/nitrassic/ast"
	"github.com/nitrassic/nitrassic/lexer"
)

// Precedence levels, lowest to highest (§4.4 "operator table").
const (
	_ int = iota
	LOWEST
	COMMA
	ASSIGN
	CONDITIONAL
	LOGICAL_OR
	LOGICAL_AND
	BITWISE_OR
	BITWISE_XOR
	BITWISE_AND
	EQUALS
	RELATIONAL
	SHIFT
	SUM
	PRODUCT
	PREFIX
	POSTFIX
	CALL
	MEMBER
)

var precedences = map[lexer.TokenType]int{
	lexer.COMMA:           COMMA,
	lexer.ASSIGN:          ASSIGN,
	lexer.PLUS_ASSIGN:     ASSIGN,
	lexer.MINUS_ASSIGN:    ASSIGN,
	lexer.ASTERISK_ASSIGN: ASSIGN,
	lexer.SLASH_ASSIGN:    ASSIGN,
	lexer.PERCENT_ASSIGN:  ASSIGN,
	lexer.AND_ASSIGN:      ASSIGN,
	lexer.OR_ASSIGN:       ASSIGN,
	lexer.XOR_ASSIGN:      ASSIGN,
	lexer.SHL_ASSIGN:      ASSIGN,
	lexer.SHR_ASSIGN:      ASSIGN,
	lexer.USHR_ASSIGN:     ASSIGN,
	lexer.QUESTION:        CONDITIONAL,
	lexer.OR_OR:           LOGICAL_OR,
	lexer.AND_AND:         LOGICAL_AND,
	lexer.PIPE:            BITWISE_OR,
	lexer.CARET:           BITWISE_XOR,
	lexer.AMP:             BITWISE_AND,
	lexer.EQ:              EQUALS,
	lexer.NOT_EQ:          EQUALS,
	lexer.STRICT_EQ:       EQUALS,
	lexer.STRICT_NOT_EQ:   EQUALS,
	lexer.IN:              RELATIONAL,
	lexer.INSTANCEOF:      RELATIONAL,
	lexer.LESS:            RELATIONAL,
	lexer.GREATER:         RELATIONAL,
	lexer.LESS_EQ:         RELATIONAL,
	lexer.GREATER_EQ:      RELATIONAL,
	lexer.SHL:             SHIFT,
	lexer.SHR:             SHIFT,
	lexer.USHR:            SHIFT,
	lexer.PLUS:            SUM,
	lexer.MINUS:           SUM,
	lexer.ASTERISK:        PRODUCT,
	lexer.SLASH:           PRODUCT,
	lexer.PERCENT:         PRODUCT,
	lexer.INCR:            POSTFIX,
	lexer.DECR:            POSTFIX,
	lexer.LPAREN:          CALL,
	lexer.LBRACK:          MEMBER,
	lexer.DOT:             MEMBER,
}

type prefixParseFn func() ast.Expression
type infixParseFn func(ast.Expression) ast.Expression

// ParseError is a single (line, column, message) parse diagnostic (§4.4:
// "Parse errors carry a (line, column, message) triple"); the parser does
// not attempt recovery past the statement boundary.
type ParseError struct {
	Message string
	Pos     lexer.Position
}

func (e ParseError) Error() string { return fmt.Sprintf("%s: %s", e.Pos, e.Message) }

// Parser turns a token stream into an *ast.Program.
type Parser struct {
	l    *lexer.Lexer
	cur  lexer.Token
	peek lexer.Token

	strictMode bool

	errors []ParseError

	prefixFns map[lexer.TokenType]prefixParseFn
	infixFns  map[lexer.TokenType]infixParseFn
}

// New creates a Parser over l.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.prefixFns = make(map[lexer.TokenType]prefixParseFn)
	p.infixFns = make(map[lexer.TokenType]infixParseFn)
	p.registerExpressionParsers()

	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) Errors() []ParseError { return p.errors }

func (p *Parser) nextToken() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) curIs(t lexer.TokenType) bool  { return p.cur.Type == t }
func (p *Parser) peekIs(t lexer.TokenType) bool { return p.peek.Type == t }

func (p *Parser) expectPeek(t lexer.TokenType) bool {
	if p.peekIs(t) {
		p.nextToken()
		return true
	}
	p.errorf(p.peek.Pos, "expected %s, got %s", t, p.peek.Type)
	return false
}

func (p *Parser) errorf(pos lexer.Position, format string, args ...any) {
	p.errors = append(p.errors, ParseError{Pos: pos, Message: fmt.Sprintf(format, args...)})
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peek.Type]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.cur.Type]; ok {
		return pr
	}
	return LOWEST
}

// ParseProgram parses the whole token stream into a *ast.Program.
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{}
	if p.curIs(lexer.STRING) && p.cur.Literal == "use strict" {
		p.strictMode = true
	}
	for !p.curIs(lexer.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		}
		p.nextToken()
	}
	return prog
}

// consumeSemicolon implements automatic semicolon insertion (§4.4): a
// statement terminator is required unless (1) the next token appeared
// after a line terminator, (2) the next token is '}', or (3) we are at EOF.
func (p *Parser) consumeSemicolon() {
	if p.peekIs(lexer.SEMICOLON) {
		p.nextToken()
		return
	}
	if p.peek.NewlineBefore || p.peekIs(lexer.RBRACE) || p.peekIs(lexer.EOF) {
		return
	}
	p.errorf(p.peek.Pos, "missing semicolon before %s", p.peek.Type)
}
