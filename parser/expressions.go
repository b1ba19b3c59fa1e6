package parser

import (
	"github.com/nitrassic/nitrassic/ast"
	"github.com/nitrassic/nitrassic/lexer"
)

func (p *Parser) registerExpressionParsers() {
	p.prefixFns[lexer.IDENT] = p.parseIdent
	p.prefixFns[lexer.THIS] = p.parseIdent
	p.prefixFns[lexer.NUMBER] = p.parseNumberLiteral
	p.prefixFns[lexer.STRING] = p.parseStringLiteral
	p.prefixFns[lexer.TRUE] = p.parseBoolLiteral
	p.prefixFns[lexer.FALSE] = p.parseBoolLiteral
	p.prefixFns[lexer.NULL] = p.parseNullLiteral
	p.prefixFns[lexer.UNDEFINED] = p.parseUndefinedLiteral
	p.prefixFns[lexer.REGEX] = p.parseRegexLiteral
	p.prefixFns[lexer.LPAREN] = p.parseParenOrArrow
	p.prefixFns[lexer.LBRACK] = p.parseArrayLiteral
	p.prefixFns[lexer.LBRACE] = p.parseObjectLiteral
	p.prefixFns[lexer.FUNCTION] = p.parseFunctionExpr
	p.prefixFns[lexer.NEW] = p.parseNewExpr
	p.prefixFns[lexer.BANG] = p.parsePrefixOperator
	p.prefixFns[lexer.MINUS] = p.parsePrefixOperator
	p.prefixFns[lexer.PLUS] = p.parsePrefixOperator
	p.prefixFns[lexer.TILDE] = p.parsePrefixOperator
	p.prefixFns[lexer.TYPEOF] = p.parsePrefixOperator
	p.prefixFns[lexer.VOID] = p.parsePrefixOperator
	p.prefixFns[lexer.DELETE] = p.parsePrefixOperator
	p.prefixFns[lexer.INCR] = p.parsePrefixIncrDecr
	p.prefixFns[lexer.DECR] = p.parsePrefixIncrDecr

	p.infixFns[lexer.PLUS] = p.parseBinaryOperator
	p.infixFns[lexer.MINUS] = p.parseBinaryOperator
	p.infixFns[lexer.ASTERISK] = p.parseBinaryOperator
	p.infixFns[lexer.SLASH] = p.parseBinaryOperator
	p.infixFns[lexer.PERCENT] = p.parseBinaryOperator
	p.infixFns[lexer.SHL] = p.parseBinaryOperator
	p.infixFns[lexer.SHR] = p.parseBinaryOperator
	p.infixFns[lexer.USHR] = p.parseBinaryOperator
	p.infixFns[lexer.AMP] = p.parseBinaryOperator
	p.infixFns[lexer.PIPE] = p.parseBinaryOperator
	p.infixFns[lexer.CARET] = p.parseBinaryOperator
	p.infixFns[lexer.EQ] = p.parseBinaryOperator
	p.infixFns[lexer.NOT_EQ] = p.parseBinaryOperator
	p.infixFns[lexer.STRICT_EQ] = p.parseBinaryOperator
	p.infixFns[lexer.STRICT_NOT_EQ] = p.parseBinaryOperator
	p.infixFns[lexer.LESS] = p.parseBinaryOperator
	p.infixFns[lexer.GREATER] = p.parseBinaryOperator
	p.infixFns[lexer.LESS_EQ] = p.parseBinaryOperator
	p.infixFns[lexer.GREATER_EQ] = p.parseBinaryOperator
	p.infixFns[lexer.AND_AND] = p.parseBinaryOperator
	p.infixFns[lexer.OR_OR] = p.parseBinaryOperator
	p.infixFns[lexer.IN] = p.parseBinaryOperator
	p.infixFns[lexer.INSTANCEOF] = p.parseBinaryOperator
	p.infixFns[lexer.COMMA] = p.parseCommaOperator

	p.infixFns[lexer.ASSIGN] = p.parseAssignment
	p.infixFns[lexer.PLUS_ASSIGN] = p.parseCompoundAssignment
	p.infixFns[lexer.MINUS_ASSIGN] = p.parseCompoundAssignment
	p.infixFns[lexer.ASTERISK_ASSIGN] = p.parseCompoundAssignment
	p.infixFns[lexer.SLASH_ASSIGN] = p.parseCompoundAssignment
	p.infixFns[lexer.PERCENT_ASSIGN] = p.parseCompoundAssignment
	p.infixFns[lexer.AND_ASSIGN] = p.parseCompoundAssignment
	p.infixFns[lexer.OR_ASSIGN] = p.parseCompoundAssignment
	p.infixFns[lexer.XOR_ASSIGN] = p.parseCompoundAssignment
	p.infixFns[lexer.SHL_ASSIGN] = p.parseCompoundAssignment
	p.infixFns[lexer.SHR_ASSIGN] = p.parseCompoundAssignment
	p.infixFns[lexer.USHR_ASSIGN] = p.parseCompoundAssignment

	p.infixFns[lexer.QUESTION] = p.parseConditional
	p.infixFns[lexer.LPAREN] = p.parseCallExpr
	p.infixFns[lexer.DOT] = p.parseDotMember
	p.infixFns[lexer.LBRACK] = p.parseIndexMember
	p.infixFns[lexer.INCR] = p.parsePostfixIncrDecr
	p.infixFns[lexer.DECR] = p.parsePostfixIncrDecr
}

var compoundBaseOp = map[lexer.TokenType]ast.OperatorKind{
	lexer.PLUS_ASSIGN:     ast.OpAdd,
	lexer.MINUS_ASSIGN:    ast.OpSub,
	lexer.ASTERISK_ASSIGN: ast.OpMul,
	lexer.SLASH_ASSIGN:    ast.OpDiv,
	lexer.PERCENT_ASSIGN:  ast.OpMod,
	lexer.AND_ASSIGN:      ast.OpBitAnd,
	lexer.OR_ASSIGN:       ast.OpBitOr,
	lexer.XOR_ASSIGN:      ast.OpBitXor,
	lexer.SHL_ASSIGN:      ast.OpShl,
	lexer.SHR_ASSIGN:      ast.OpShr,
	lexer.USHR_ASSIGN:     ast.OpUShr,
}

var binaryOp = map[lexer.TokenType]ast.OperatorKind{
	lexer.PLUS: ast.OpAdd, lexer.MINUS: ast.OpSub, lexer.ASTERISK: ast.OpMul,
	lexer.SLASH: ast.OpDiv, lexer.PERCENT: ast.OpMod,
	lexer.SHL: ast.OpShl, lexer.SHR: ast.OpShr, lexer.USHR: ast.OpUShr,
	lexer.AMP: ast.OpBitAnd, lexer.PIPE: ast.OpBitOr, lexer.CARET: ast.OpBitXor,
	lexer.EQ: ast.OpEq, lexer.NOT_EQ: ast.OpNotEq,
	lexer.STRICT_EQ: ast.OpStrictEq, lexer.STRICT_NOT_EQ: ast.OpStrictNotEq,
	lexer.LESS: ast.OpLess, lexer.GREATER: ast.OpGreater,
	lexer.LESS_EQ: ast.OpLessEq, lexer.GREATER_EQ: ast.OpGreaterEq,
	lexer.AND_AND: ast.OpAnd, lexer.OR_OR: ast.OpOr,
	lexer.IN: ast.OpIn, lexer.INSTANCEOF: ast.OpInstanceof,
}

var prefixOp = map[lexer.TokenType]ast.OperatorKind{
	lexer.BANG: ast.OpNot, lexer.MINUS: ast.OpNeg, lexer.PLUS: ast.OpPos,
	lexer.TILDE: ast.OpBitNot, lexer.TYPEOF: ast.OpTypeof,
	lexer.VOID: ast.OpVoid, lexer.DELETE: ast.OpDelete,
}

// parseExpression is the Pratt-parser core: parse a prefix expression, then
// keep absorbing infix/postfix operators while the next token binds tighter
// than precedence (§4.4 "precedence-climbing").
func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixFns[p.cur.Type]
	if prefix == nil {
		p.errorf(p.cur.Pos, "unexpected token %s in expression", p.cur.Type)
		return nil
	}
	left := prefix()

	for !p.peekIs(lexer.SEMICOLON) && precedence < p.peekPrecedence() {
		infix := p.infixFns[p.peek.Type]
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(left)
	}
	return left
}

func (p *Parser) parseIdent() ast.Expression {
	return ast.NewName(p.cur)
}

func (p *Parser) parseNumberLiteral() ast.Expression {
	return ast.NewLiteral(p.cur, ast.LitNumber)
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return ast.NewLiteral(p.cur, ast.LitString)
}

func (p *Parser) parseBoolLiteral() ast.Expression {
	return ast.NewLiteral(p.cur, ast.LitBool)
}

func (p *Parser) parseNullLiteral() ast.Expression {
	return ast.NewLiteral(p.cur, ast.LitNull)
}

func (p *Parser) parseUndefinedLiteral() ast.Expression {
	return ast.NewLiteral(p.cur, ast.LitUndefined)
}

func (p *Parser) parseRegexLiteral() ast.Expression {
	return ast.NewLiteral(p.cur, ast.LitRegex)
}

// parseParenOrArrow disambiguates `(expr)` from an arrow-function parameter
// list: it parses the contents as an ordinary expression and, if `=>`
// follows the closing `)`, lets exprToParams reinterpret a bare identifier
// or comma-separated identifier list as parameters; anything else stays a
// parenthesized expression (§4.4 "parenthesized expressions").
func (p *Parser) parseParenOrArrow() ast.Expression {
	pos := p.cur.Pos
	p.nextToken() // consume '('
	if p.curIs(lexer.RPAREN) {
		// `() => ...`
		if p.peekIs(lexer.ARROW) {
			p.nextToken()
			return p.parseArrowBody(pos, nil)
		}
		p.errorf(pos, "unexpected empty parentheses")
		return nil
	}
	expr := p.parseExpression(LOWEST)
	if !p.expectPeek(lexer.RPAREN) {
		return expr
	}
	if p.peekIs(lexer.ARROW) {
		params, ok := exprToParams(expr)
		if ok {
			p.nextToken()
			return p.parseArrowBody(pos, params)
		}
	}
	return expr
}

func exprToParams(expr ast.Expression) ([]ast.Param, bool) {
	switch e := expr.(type) {
	case *ast.Name:
		return []ast.Param{{Name: e.Value}}, true
	case *ast.Operator:
		if e.Op != ast.OpComma {
			return nil, false
		}
		var params []ast.Param
		for _, operand := range e.Operands {
			n, ok := operand.(*ast.Name)
			if !ok {
				return nil, false
			}
			params = append(params, ast.Param{Name: n.Value})
		}
		return params, true
	}
	return nil, false
}

func (p *Parser) parseArrowBody(pos lexer.Position, params []ast.Param) ast.Expression {
	fn := &ast.FunctionRef{BaseExpr: ast.BaseExpr{P: pos}, IsArrow: true, Params: params}
	p.nextToken()
	if p.curIs(lexer.LBRACE) {
		fn.Body = p.parseBlock()
		return fn
	}
	exprPos := p.cur.Pos
	retVal := p.parseExpression(ASSIGN)
	fn.Body = &ast.Block{
		BaseStmt:   ast.BaseStmt{P: exprPos},
		Statements: []ast.Statement{&ast.Return{BaseStmt: ast.BaseStmt{P: exprPos}, Value: retVal}},
	}
	return fn
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	lit := &ast.Literal{BaseExpr: ast.BaseExpr{P: p.cur.Pos}, Token: ast.LitArray}
	for !p.peekIs(lexer.RBRACK) {
		p.nextToken()
		if p.curIs(lexer.COMMA) {
			lit.Elements = append(lit.Elements, nil)
			continue
		}
		lit.Elements = append(lit.Elements, p.parseExpression(ASSIGN))
		if p.peekIs(lexer.COMMA) {
			p.nextToken()
		} else {
			break
		}
	}
	p.expectPeek(lexer.RBRACK)
	return lit
}

func (p *Parser) parseObjectLiteral() ast.Expression {
	lit := &ast.Literal{BaseExpr: ast.BaseExpr{P: p.cur.Pos}, Token: ast.LitObject}
	for !p.peekIs(lexer.RBRACE) {
		p.nextToken()
		prop := ast.ObjectProperty{Kind: ast.PropData}
		if p.curIs(lexer.LBRACK) {
			p.nextToken()
			prop.KeyExpr = p.parseExpression(ASSIGN)
			p.expectPeek(lexer.RBRACK)
			prop.Computed = true
		} else {
			prop.Key = p.cur.Literal
			if (p.cur.Literal == "get" || p.cur.Literal == "set") && !p.peekIs(lexer.COLON) && !p.peekIs(lexer.COMMA) && !p.peekIs(lexer.RBRACE) {
				if p.cur.Literal == "get" {
					prop.Kind = ast.PropGetter
				} else {
					prop.Kind = ast.PropSetter
				}
				p.nextToken()
				prop.Key = p.cur.Literal
			}
		}
		p.expectPeek(lexer.COLON)
		p.nextToken()
		prop.Value = p.parseExpression(ASSIGN)
		lit.Properties = append(lit.Properties, prop)
		if p.peekIs(lexer.COMMA) {
			p.nextToken()
		} else {
			break
		}
	}
	p.expectPeek(lexer.RBRACE)
	return lit
}

func (p *Parser) parseFunctionExpr() ast.Expression {
	pos := p.cur.Pos
	return p.parseFunctionLiteral(pos, false)
}

// parseFunctionLiteral parses the shared shape of function declarations and
// function expressions: an optional name, a parameter list, and a block
// body (§4.7 "function reference").
func (p *Parser) parseFunctionLiteral(pos lexer.Position, requireName bool) *ast.FunctionRef {
	fn := &ast.FunctionRef{BaseExpr: ast.BaseExpr{P: pos}}
	if p.peekIs(lexer.IDENT) {
		p.nextToken()
		fn.Name = p.cur.Literal
	} else if requireName {
		p.errorf(p.peek.Pos, "expected function name, got %s", p.peek.Type)
	}
	if !p.expectPeek(lexer.LPAREN) {
		return fn
	}
	fn.Params = p.parseParamList()
	if !p.expectPeek(lexer.LBRACE) {
		return fn
	}
	fn.Body = p.parseBlock()
	return fn
}

func (p *Parser) parseParamList() []ast.Param {
	var params []ast.Param
	if p.peekIs(lexer.RPAREN) {
		p.nextToken()
		return params
	}
	p.nextToken()
	for {
		param := ast.Param{}
		if p.curIs(lexer.ELLIPSIS) {
			param.Rest = true
			p.nextToken()
		}
		param.Name = p.cur.Literal
		if p.peekIs(lexer.ASSIGN) {
			p.nextToken()
			p.nextToken()
			param.Default = p.parseExpression(ASSIGN)
		}
		params = append(params, param)
		if p.peekIs(lexer.COMMA) {
			p.nextToken()
			p.nextToken()
			continue
		}
		break
	}
	p.expectPeek(lexer.RPAREN)
	return params
}

func (p *Parser) parseNewExpr() ast.Expression {
	pos := p.cur.Pos
	p.nextToken()
	callee := p.parseExpression(MEMBER)
	n := &ast.New{BaseExpr: ast.BaseExpr{P: pos}, Callee: callee}
	if p.peekIs(lexer.LPAREN) {
		p.nextToken()
		n.Args = p.parseExpressionList(lexer.RPAREN)
	}
	return n
}

func (p *Parser) parsePrefixOperator() ast.Expression {
	pos := p.cur.Pos
	op := prefixOp[p.cur.Type]
	p.nextToken()
	operand := p.parseExpression(PREFIX)
	return ast.NewOperator(pos, op, operand)
}

func (p *Parser) parsePrefixIncrDecr() ast.Expression {
	pos := p.cur.Pos
	op := ast.OpPreIncr
	if p.cur.Type == lexer.DECR {
		op = ast.OpPreDecr
	}
	p.nextToken()
	operand := p.parseExpression(PREFIX)
	return ast.NewOperator(pos, op, operand)
}

func (p *Parser) parsePostfixIncrDecr(left ast.Expression) ast.Expression {
	op := ast.OpPostIncr
	if p.cur.Type == lexer.DECR {
		op = ast.OpPostDecr
	}
	return ast.NewOperator(p.cur.Pos, op, left)
}

func (p *Parser) parseBinaryOperator(left ast.Expression) ast.Expression {
	pos := p.cur.Pos
	op := binaryOp[p.cur.Type]
	precedence := p.curPrecedence()
	p.nextToken()
	right := p.parseExpression(precedence)
	return ast.NewOperator(pos, op, left, right)
}

func (p *Parser) parseCommaOperator(left ast.Expression) ast.Expression {
	pos := p.cur.Pos
	p.nextToken()
	right := p.parseExpression(COMMA)
	if op, ok := left.(*ast.Operator); ok && op.Op == ast.OpComma {
		op.Operands = append(op.Operands, right)
		return op
	}
	return ast.NewOperator(pos, ast.OpComma, left, right)
}

func (p *Parser) parseAssignment(left ast.Expression) ast.Expression {
	pos := p.cur.Pos
	p.nextToken()
	right := p.parseExpression(ASSIGN - 1)
	return ast.NewOperator(pos, ast.OpAssign, left, right)
}

func (p *Parser) parseCompoundAssignment(left ast.Expression) ast.Expression {
	pos := p.cur.Pos
	base := compoundBaseOp[p.cur.Type]
	p.nextToken()
	right := p.parseExpression(ASSIGN - 1)
	op := ast.NewOperator(pos, ast.OpCompoundAssign, left, right)
	op.CompoundOp = base
	return op
}

func (p *Parser) parseConditional(cond ast.Expression) ast.Expression {
	pos := p.cur.Pos
	p.nextToken()
	then := p.parseExpression(ASSIGN)
	if !p.expectPeek(lexer.COLON) {
		return ast.NewOperator(pos, ast.OpConditional, cond, then)
	}
	p.nextToken()
	alt := p.parseExpression(ASSIGN)
	return ast.NewOperator(pos, ast.OpConditional, cond, then, alt)
}

func (p *Parser) parseCallExpr(callee ast.Expression) ast.Expression {
	pos := p.cur.Pos
	args := p.parseExpressionList(lexer.RPAREN)
	return &ast.Call{BaseExpr: ast.BaseExpr{P: pos}, Callee: callee, Args: args}
}

func (p *Parser) parseExpressionList(end lexer.TokenType) []ast.Expression {
	var list []ast.Expression
	if p.peekIs(end) {
		p.nextToken()
		return list
	}
	p.nextToken()
	list = append(list, p.parseExpression(ASSIGN))
	for p.peekIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		list = append(list, p.parseExpression(ASSIGN))
	}
	p.expectPeek(end)
	return list
}

func (p *Parser) parseDotMember(object ast.Expression) ast.Expression {
	pos := p.cur.Pos
	if !p.expectPeek(lexer.IDENT) {
		return object
	}
	return &ast.Member{BaseExpr: ast.BaseExpr{P: pos}, Object: object, Name: p.cur.Literal}
}

func (p *Parser) parseIndexMember(object ast.Expression) ast.Expression {
	pos := p.cur.Pos
	p.nextToken()
	index := p.parseExpression(LOWEST)
	if !p.expectPeek(lexer.RBRACK) {
		return object
	}
	return &ast.Member{BaseExpr: ast.BaseExpr{P: pos}, Object: object, Property: index, Computed: true}
}
