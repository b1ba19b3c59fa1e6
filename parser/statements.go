package parser

import (
	"github.com/nitrassic/nitrassic/ast"
	"github.com/nitrassic/nitrassic/lexer"
)

func (p *Parser) parseStatement() ast.Statement {
	switch p.cur.Type {
	case lexer.VAR, lexer.LET, lexer.CONST:
		return p.parseVarDecl()
	case lexer.FUNCTION:
		return p.parseFunctionDecl()
	case lexer.LBRACE:
		return p.parseBlock()
	case lexer.IF:
		return p.parseIf()
	case lexer.WHILE:
		return p.parseWhile()
	case lexer.DO:
		return p.parseDoWhile()
	case lexer.FOR:
		return p.parseFor()
	case lexer.BREAK:
		return p.parseBreak()
	case lexer.CONTINUE:
		return p.parseContinue()
	case lexer.RETURN:
		return p.parseReturn()
	case lexer.THROW:
		return p.parseThrow()
	case lexer.TRY:
		return p.parseTry()
	case lexer.WITH:
		return p.parseWith()
	case lexer.SWITCH:
		return p.parseSwitch()
	case lexer.DEBUGGER:
		stmt := &ast.Debugger{BaseStmt: ast.BaseStmt{P: p.cur.Pos}}
		p.consumeSemicolon()
		return stmt
	case lexer.SEMICOLON:
		return nil
	case lexer.IDENT:
		if p.peekIs(lexer.COLON) {
			return p.parseLabeled()
		}
		return p.parseExpressionStatement()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseBlock() *ast.Block {
	block := &ast.Block{BaseStmt: ast.BaseStmt{P: p.cur.Pos}}
	p.nextToken() // consume '{'
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		if stmt := p.parseStatement(); stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.nextToken()
	}
	return block
}

func (p *Parser) parseVarDecl() *ast.VarDecl {
	kind := ast.DeclVar
	switch p.cur.Type {
	case lexer.LET:
		kind = ast.DeclLet
	case lexer.CONST:
		kind = ast.DeclConst
	}
	decl := &ast.VarDecl{BaseStmt: ast.BaseStmt{P: p.cur.Pos}, Kind: kind}
	for {
		if !p.expectPeek(lexer.IDENT) {
			return decl
		}
		d := ast.VarDeclarator{Name: p.cur.Literal}
		if p.peekIs(lexer.ASSIGN) {
			p.nextToken() // consume '='
			p.nextToken() // move to init expression
			d.Init = p.parseExpression(ASSIGN)
		}
		decl.Declarators = append(decl.Declarators, d)
		if p.peekIs(lexer.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	p.consumeSemicolon()
	return decl
}

func (p *Parser) parseFunctionDecl() *ast.FunctionDecl {
	pos := p.cur.Pos
	fn := p.parseFunctionLiteral(pos, true)
	return &ast.FunctionDecl{BaseStmt: ast.BaseStmt{P: pos}, Fn: fn}
}

func (p *Parser) parseExpressionStatement() *ast.ExpressionStatement {
	pos := p.cur.Pos
	expr := p.parseExpression(LOWEST)
	stmt := &ast.ExpressionStatement{BaseStmt: ast.BaseStmt{P: pos}, Expr: expr}
	p.consumeSemicolon()
	return stmt
}

func (p *Parser) parseIf() *ast.If {
	stmt := &ast.If{BaseStmt: ast.BaseStmt{P: p.cur.Pos}}
	if !p.expectPeek(lexer.LPAREN) {
		return stmt
	}
	p.nextToken()
	stmt.Cond = p.parseExpression(LOWEST)
	if !p.expectPeek(lexer.RPAREN) {
		return stmt
	}
	p.nextToken()
	stmt.Then = p.parseStatement()
	if p.peekIs(lexer.ELSE) {
		p.nextToken()
		p.nextToken()
		stmt.Else = p.parseStatement()
	}
	return stmt
}

func (p *Parser) parseWhile() *ast.While {
	stmt := &ast.While{BaseStmt: ast.BaseStmt{P: p.cur.Pos}}
	if !p.expectPeek(lexer.LPAREN) {
		return stmt
	}
	p.nextToken()
	stmt.Cond = p.parseExpression(LOWEST)
	if !p.expectPeek(lexer.RPAREN) {
		return stmt
	}
	p.nextToken()
	stmt.Body = p.parseStatement()
	return stmt
}

func (p *Parser) parseDoWhile() *ast.DoWhile {
	stmt := &ast.DoWhile{BaseStmt: ast.BaseStmt{P: p.cur.Pos}}
	p.nextToken()
	stmt.Body = p.parseStatement()
	if !p.expectPeek(lexer.WHILE) {
		return stmt
	}
	if !p.expectPeek(lexer.LPAREN) {
		return stmt
	}
	p.nextToken()
	stmt.Cond = p.parseExpression(LOWEST)
	if !p.expectPeek(lexer.RPAREN) {
		return stmt
	}
	p.consumeSemicolon()
	return stmt
}

// parseFor handles both the C-style `for(init;cond;update)` and
// `for(decl in/of obj)` forms, disambiguating after parsing the init clause
// (§4.4 "for/for-in").
func (p *Parser) parseFor() ast.Statement {
	pos := p.cur.Pos
	if !p.expectPeek(lexer.LPAREN) {
		return &ast.For{BaseStmt: ast.BaseStmt{P: pos}}
	}
	p.nextToken()

	declKind := ast.DeclVar
	hasDecl := false
	switch p.cur.Type {
	case lexer.VAR, lexer.LET, lexer.CONST:
		if p.cur.Type == lexer.LET {
			declKind = ast.DeclLet
		} else if p.cur.Type == lexer.CONST {
			declKind = ast.DeclConst
		}
		hasDecl = true
		p.nextToken()
	}

	if hasDecl && p.curIs(lexer.IDENT) && (p.peekIs(lexer.IN) || p.peekIs(lexer.OF)) {
		name := p.cur.Literal
		of := p.peekIs(lexer.OF)
		p.nextToken() // consume in/of
		p.nextToken() // move to object expr
		obj := p.parseExpression(LOWEST)
		if !p.expectPeek(lexer.RPAREN) {
			return &ast.ForIn{BaseStmt: ast.BaseStmt{P: pos}}
		}
		p.nextToken()
		body := p.parseStatement()
		return &ast.ForIn{BaseStmt: ast.BaseStmt{P: pos}, DeclKind: declKind, HasDecl: true, Name: name, Object: obj, Of: of, Body: body}
	}

	stmt := &ast.For{BaseStmt: ast.BaseStmt{P: pos}}
	if hasDecl {
		decl := &ast.VarDecl{BaseStmt: ast.BaseStmt{P: pos}, Kind: declKind}
		for {
			d := ast.VarDeclarator{Name: p.cur.Literal}
			if p.peekIs(lexer.ASSIGN) {
				p.nextToken()
				p.nextToken()
				d.Init = p.parseExpression(ASSIGN)
			}
			decl.Declarators = append(decl.Declarators, d)
			if p.peekIs(lexer.COMMA) {
				p.nextToken()
				p.nextToken()
				continue
			}
			break
		}
		stmt.Init = decl
	} else if !p.curIs(lexer.SEMICOLON) {
		exprPos := p.cur.Pos
		expr := p.parseExpression(LOWEST)
		stmt.Init = &ast.ExpressionStatement{BaseStmt: ast.BaseStmt{P: exprPos}, Expr: expr}
	}
	if !p.expectPeek(lexer.SEMICOLON) {
		return stmt
	}
	if !p.peekIs(lexer.SEMICOLON) {
		p.nextToken()
		stmt.Cond = p.parseExpression(LOWEST)
	}
	if !p.expectPeek(lexer.SEMICOLON) {
		return stmt
	}
	if !p.peekIs(lexer.RPAREN) {
		p.nextToken()
		stmt.Update = p.parseExpression(LOWEST)
	}
	if !p.expectPeek(lexer.RPAREN) {
		return stmt
	}
	p.nextToken()
	stmt.Body = p.parseStatement()
	return stmt
}

func (p *Parser) parseBreak() *ast.Break {
	stmt := &ast.Break{BaseStmt: ast.BaseStmt{P: p.cur.Pos}}
	if p.peekIs(lexer.IDENT) && !p.peek.NewlineBefore {
		p.nextToken()
		stmt.Label = p.cur.Literal
	}
	p.consumeSemicolon()
	return stmt
}

func (p *Parser) parseContinue() *ast.Continue {
	stmt := &ast.Continue{BaseStmt: ast.BaseStmt{P: p.cur.Pos}}
	if p.peekIs(lexer.IDENT) && !p.peek.NewlineBefore {
		p.nextToken()
		stmt.Label = p.cur.Literal
	}
	p.consumeSemicolon()
	return stmt
}

func (p *Parser) parseReturn() *ast.Return {
	stmt := &ast.Return{BaseStmt: ast.BaseStmt{P: p.cur.Pos}}
	if !p.peekIs(lexer.SEMICOLON) && !p.peekIs(lexer.RBRACE) && !p.peekIs(lexer.EOF) && !p.peek.NewlineBefore {
		p.nextToken()
		stmt.Value = p.parseExpression(LOWEST)
	}
	p.consumeSemicolon()
	return stmt
}

func (p *Parser) parseThrow() *ast.Throw {
	stmt := &ast.Throw{BaseStmt: ast.BaseStmt{P: p.cur.Pos}}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	p.consumeSemicolon()
	return stmt
}

func (p *Parser) parseTry() *ast.Try {
	stmt := &ast.Try{BaseStmt: ast.BaseStmt{P: p.cur.Pos}}
	if !p.expectPeek(lexer.LBRACE) {
		return stmt
	}
	stmt.Block = p.parseBlock()
	if p.peekIs(lexer.CATCH) {
		p.nextToken()
		stmt.HasCatch = true
		if p.peekIs(lexer.LPAREN) {
			p.nextToken()
			if p.expectPeek(lexer.IDENT) {
				stmt.CatchParam = p.cur.Literal
			}
			p.expectPeek(lexer.RPAREN)
		}
		if p.expectPeek(lexer.LBRACE) {
			stmt.CatchBlock = p.parseBlock()
		}
	}
	if p.peekIs(lexer.FINALLY) {
		p.nextToken()
		if p.expectPeek(lexer.LBRACE) {
			stmt.FinallyBlock = p.parseBlock()
		}
	}
	return stmt
}

func (p *Parser) parseWith() *ast.With {
	stmt := &ast.With{BaseStmt: ast.BaseStmt{P: p.cur.Pos}}
	if !p.expectPeek(lexer.LPAREN) {
		return stmt
	}
	p.nextToken()
	stmt.Object = p.parseExpression(LOWEST)
	if !p.expectPeek(lexer.RPAREN) {
		return stmt
	}
	p.nextToken()
	stmt.Body = p.parseStatement()
	return stmt
}

func (p *Parser) parseSwitch() *ast.Switch {
	stmt := &ast.Switch{BaseStmt: ast.BaseStmt{P: p.cur.Pos}}
	if !p.expectPeek(lexer.LPAREN) {
		return stmt
	}
	p.nextToken()
	stmt.Discriminant = p.parseExpression(LOWEST)
	if !p.expectPeek(lexer.RPAREN) {
		return stmt
	}
	if !p.expectPeek(lexer.LBRACE) {
		return stmt
	}
	p.nextToken()
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		c := ast.SwitchCase{}
		if p.curIs(lexer.CASE) {
			p.nextToken()
			c.Test = p.parseExpression(LOWEST)
			p.expectPeek(lexer.COLON)
		} else if p.curIs(lexer.DEFAULT) {
			p.expectPeek(lexer.COLON)
		}
		p.nextToken()
		for !p.curIs(lexer.CASE) && !p.curIs(lexer.DEFAULT) && !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
			if st := p.parseStatement(); st != nil {
				c.Statements = append(c.Statements, st)
			}
			p.nextToken()
		}
		stmt.Cases = append(stmt.Cases, c)
	}
	return stmt
}

func (p *Parser) parseLabeled() *ast.Labeled {
	stmt := &ast.Labeled{BaseStmt: ast.BaseStmt{P: p.cur.Pos}, Label: p.cur.Literal}
	p.nextToken() // consume ':'
	p.nextToken()
	stmt.Body = p.parseStatement()
	return stmt
}
