package parser

import (
	"fmt"

	"github.com/funvibe/hetu/internal/ast"
	"github.com/funvibe/hetu/internal/config"
	"github.com/funvibe/hetu/internal/diagnostics"
	"github.com/funvibe/hetu/internal/pipeline"
	"github.com/funvibe/hetu/internal/token"
)

func (p *Parser) parseStatement(style pipeline.ParseStyle) ast.Statement {
	switch style {
	case pipeline.StyleLibrary:
		return p.parseLibraryStatement()
	case pipeline.StyleFunction:
		return p.parseFunctionStatement()
	case pipeline.StyleClass:
		return p.parseClassMember(false)
	}
	return nil
}

// parseLibraryStatement handles the statements legal at the top level of a
// library unit: imports and declarations only.
func (p *Parser) parseLibraryStatement() ast.Statement {
	switch p.curToken.Type {
	case token.IMPORT:
		return p.parseImportStatement()
	case token.VAR, token.LET, token.DEF:
		return p.parseVarDeclStatement()
	case token.CLASS:
		return p.parseClassDeclStatement(false)
	case token.FUN:
		return p.parseFuncDeclStatement(ast.FuncKindNormal, false, false, "")
	case token.PROC:
		return p.parseFuncDeclStatement(ast.FuncKindProcedure, false, false, "")
	case token.EXTERNAL:
		return p.parseExternalDeclaration()
	default:
		p.errorf(diagnostics.ErrP005, p.curToken,
			"unexpected '%s': only declarations are allowed at the top level of a library", p.curToken.Lexeme)
		return nil
	}
}

// parseFunctionStatement handles statements inside function bodies: every
// library statement except class declarations, plus control flow and
// expression statements.
func (p *Parser) parseFunctionStatement() ast.Statement {
	switch p.curToken.Type {
	case token.IMPORT:
		return p.parseImportStatement()
	case token.VAR, token.LET, token.DEF:
		return p.parseVarDeclStatement()
	case token.FUN:
		return p.parseFuncDeclStatement(ast.FuncKindNormal, false, false, "")
	case token.PROC:
		return p.parseFuncDeclStatement(ast.FuncKindProcedure, false, false, "")
	case token.EXTERNAL:
		return p.parseExternalDeclaration()
	case token.CLASS:
		p.errorf(diagnostics.ErrP005, p.curToken, "class declarations are not allowed inside function bodies")
		return nil
	case token.IF:
		return p.parseIfStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.FOR:
		return p.parseForInStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.BREAK:
		return &ast.BreakStatement{Token: p.curToken}
	case token.CONTINUE:
		return &ast.ContinueStatement{Token: p.curToken}
	case token.LBRACE:
		return p.parseBlockStatement()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseExternalDeclaration() ast.Statement {
	p.nextToken() // consume 'external'
	switch p.curToken.Type {
	case token.CLASS:
		return p.parseClassDeclStatement(true)
	case token.FUN:
		return p.parseFuncDeclStatement(ast.FuncKindNormal, true, false, "")
	case token.PROC:
		return p.parseFuncDeclStatement(ast.FuncKindProcedure, true, false, "")
	default:
		p.errorf(diagnostics.ErrP002, p.curToken,
			"expected 'class', 'fun' or 'proc' after 'external', got '%s'", p.curToken.Lexeme)
		return nil
	}
}

func (p *Parser) parseImportStatement() ast.Statement {
	stmt := &ast.ImportStatement{Token: p.curToken}
	if !p.expectPeek(token.STRING) {
		return nil
	}
	stmt.Path, _ = p.curToken.Literal.(string)
	if p.peekTokenIs(token.AS) {
		p.nextToken() // as
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		stmt.Alias = p.curToken.Lexeme
	}
	return stmt
}

func (p *Parser) parseVarDeclStatement() *ast.VarDeclStatement {
	stmt := &ast.VarDeclStatement{Token: p.curToken}
	keyword := p.curToken.Type

	switch keyword {
	case token.VAR:
		stmt.IsMutable = true
	case token.LET:
		stmt.IsMutable = true
		stmt.TypeInferred = true
	case token.DEF:
		stmt.IsMutable = false
		stmt.TypeInferred = true
	}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}

	if p.peekTokenIs(token.COLON) {
		p.nextToken() // :
		p.nextToken()
		stmt.DeclType = p.parseTypeID()
		if stmt.DeclType == nil {
			return nil
		}
	}

	if p.peekTokenIs(token.ASSIGN) {
		p.nextToken() // =
		p.nextToken()
		stmt.Initializer = p.parseExpression(LOWEST)
		if stmt.Initializer == nil {
			return nil
		}
	} else if stmt.TypeInferred {
		p.errorf(diagnostics.ErrP001, p.peekToken,
			"'%s' declaration requires an initializer", stmt.Token.Lexeme)
		return nil
	}
	return stmt
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	stmt := &ast.ExpressionStatement{Token: p.curToken}
	stmt.Expression = p.parseExpression(LOWEST)
	if stmt.Expression == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	block := &ast.BlockStatement{Token: p.curToken}
	p.nextToken()

	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) && !p.fatal {
		if p.curTokenIs(token.SEMICOLON) {
			p.nextToken()
			continue
		}
		stmt := p.parseFunctionStatement()
		if p.fatal {
			return nil
		}
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.nextToken()
	}
	if !p.curTokenIs(token.RBRACE) {
		p.errorf(diagnostics.ErrP001, p.curToken, "expected '}' to close block")
		return nil
	}
	return block
}

func (p *Parser) parseReturnStatement() ast.Statement {
	stmt := &ast.ReturnStatement{Token: p.curToken}
	if p.peekTokenIs(token.SEMICOLON) || p.peekTokenIs(token.RBRACE) || p.peekTokenIs(token.EOF) {
		return stmt
	}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseIfStatement() ast.Statement {
	stmt := &ast.IfStatement{Token: p.curToken}
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if stmt.Condition == nil {
		return nil
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	p.nextToken()
	stmt.Consequence = p.parseFunctionStatement()
	if stmt.Consequence == nil {
		return nil
	}
	if p.peekTokenIs(token.ELSE) {
		p.nextToken() // else
		p.nextToken()
		stmt.Alternative = p.parseFunctionStatement()
		if stmt.Alternative == nil {
			return nil
		}
	}
	return stmt
}

func (p *Parser) parseWhileStatement() ast.Statement {
	stmt := &ast.WhileStatement{Token: p.curToken}
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if stmt.Condition == nil {
		return nil
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	p.nextToken()
	stmt.Body = p.parseFunctionStatement()
	if stmt.Body == nil {
		return nil
	}
	return stmt
}

// parseForInStatement desugars `for (var x in target) body` into a block:
//
//	var __i<n> = 0
//	var x
//	while (__i<n> < target.length) {
//	  x = target[__i<n>]
//	  __i<n> = __i<n> + 1
//	  <body>
//	}
//
// The iteration target appears twice; the subscript site uses a clone so the
// two use-sites resolve independently.
func (p *Parser) parseForInStatement() ast.Statement {
	forToken := p.curToken
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	if !p.peekTokenIs(token.VAR) && !p.peekTokenIs(token.LET) && !p.peekTokenIs(token.DEF) {
		p.errorf(diagnostics.ErrP001, p.peekToken, "expected loop variable declaration in for-in")
		return nil
	}
	p.nextToken() // var/let/def
	declToken := p.curToken
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	loopVarName := p.curToken.Lexeme
	loopVarToken := p.curToken

	if !p.expectPeek(token.IN) {
		return nil
	}
	p.nextToken()
	target := p.parseExpression(LOWEST)
	if target == nil {
		return nil
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	p.nextToken()
	body := p.parseFunctionStatement()
	if body == nil {
		return nil
	}

	indexName := fmt.Sprintf("%s%d", config.LoopIndexPrefix, p.forInCount)
	p.forInCount++

	zeroIndex := p.ctx.Constants.Add(float64(0))
	oneIndex := p.ctx.Constants.Add(float64(1))

	indexDecl := &ast.VarDeclStatement{
		Token:       forToken,
		Name:        &ast.Identifier{Token: forToken, Value: indexName},
		IsMutable:   true,
		Initializer: &ast.ConstExpression{Token: forToken, Index: zeroIndex},
	}
	loopVarDecl := &ast.VarDeclStatement{
		Token:     declToken,
		Name:      &ast.Identifier{Token: loopVarToken, Value: loopVarName},
		IsMutable: true,
	}

	condition := &ast.InfixExpression{
		Token:    forToken,
		Left:     &ast.Identifier{Token: forToken, Value: indexName},
		Operator: token.LT,
		Right:    &ast.MemberExpression{Token: forToken, Object: target, Member: "length"},
	}
	assignLoopVar := &ast.ExpressionStatement{
		Token: loopVarToken,
		Expression: &ast.AssignExpression{
			Token:    loopVarToken,
			Name:     &ast.Identifier{Token: loopVarToken, Value: loopVarName},
			Operator: token.ASSIGN,
			Value: &ast.IndexExpression{
				Token:      forToken,
				Collection: target.Clone(),
				Key:        &ast.Identifier{Token: forToken, Value: indexName},
			},
		},
	}
	increment := &ast.ExpressionStatement{
		Token: forToken,
		Expression: &ast.AssignExpression{
			Token:    forToken,
			Name:     &ast.Identifier{Token: forToken, Value: indexName},
			Operator: token.ASSIGN,
			Value: &ast.InfixExpression{
				Token:    forToken,
				Left:     &ast.Identifier{Token: forToken, Value: indexName},
				Operator: token.PLUS,
				Right:    &ast.ConstExpression{Token: forToken, Index: oneIndex},
			},
		},
	}

	loopBody := &ast.BlockStatement{
		Token:      forToken,
		Statements: []ast.Statement{assignLoopVar, increment, body},
	}
	loop := &ast.WhileStatement{Token: forToken, Condition: condition, Body: loopBody}

	return &ast.BlockStatement{
		Token:      forToken,
		Statements: []ast.Statement{indexDecl, loopVarDecl, loop},
	}
}
