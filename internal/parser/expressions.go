package parser

import (
	"github.com/funvibe/hetu/internal/ast"
	"github.com/funvibe/hetu/internal/diagnostics"
	"github.com/funvibe/hetu/internal/token"
)

func (p *Parser) parseExpression(precedence int) ast.Expression {
	p.depth++
	defer func() { p.depth-- }()

	if p.depth > MaxRecursionDepth {
		p.errorf(diagnostics.ErrP002, p.curToken, "expression too complex: recursion depth limit exceeded")
		return nil
	}

	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.errorf(diagnostics.ErrP002, p.curToken, "unexpected token '%s'", p.curToken.Lexeme)
		return nil
	}
	leftExp := prefix()
	if leftExp == nil {
		return nil
	}

	for precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}
		p.nextToken()
		nextExp := infix(leftExp)
		if nextExp == nil {
			return nil
		}
		leftExp = nextExp
	}

	return leftExp
}

func (p *Parser) parseIdentifier() ast.Expression {
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
}

// parseConstLiteral interns the literal payload in the constant pool and
// emits a ConstExpression referencing it by index.
func (p *Parser) parseConstLiteral() ast.Expression {
	return &ast.ConstExpression{
		Token: p.curToken,
		Index: p.ctx.Constants.Add(p.curToken.Literal),
	}
}

func (p *Parser) parseNullLiteral() ast.Expression {
	return &ast.NullLiteral{Token: p.curToken}
}

func (p *Parser) parseThisExpression() ast.Expression {
	return &ast.ThisExpression{Token: p.curToken}
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	expression := &ast.PrefixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Lexeme,
	}
	p.nextToken()
	expression.Right = p.parseExpression(PREFIX)
	if expression.Right == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expression := &ast.InfixExpression{
		Token:    p.curToken,
		Left:     left,
		Operator: p.curToken.Lexeme,
	}
	precedence := p.curPrecedence()
	p.nextToken()
	expression.Right = p.parseExpression(precedence)
	if expression.Right == nil {
		return nil
	}
	return expression
}

// parseAssignExpression parses right-associative assignment and rewrites the
// target: a plain symbol stays an assignment, a member-get becomes a
// member-set and a sub-get becomes a sub-set. Anything else is an invalid
// l-value.
func (p *Parser) parseAssignExpression(left ast.Expression) ast.Expression {
	opToken := p.curToken
	p.nextToken()
	value := p.parseExpression(ASSIGNMENT - 1)
	if value == nil {
		return nil
	}

	switch target := left.(type) {
	case *ast.Identifier:
		return &ast.AssignExpression{
			Token:    target.Token,
			Name:     target,
			Operator: opToken.Lexeme,
			Value:    value,
		}
	case *ast.MemberExpression:
		return &ast.MemberAssignExpression{
			Token:  target.Token,
			Object: target.Object,
			Member: target.Member,
			Value:  value,
		}
	case *ast.IndexExpression:
		return &ast.IndexAssignExpression{
			Token:      target.Token,
			Collection: target.Collection,
			Key:        target.Key,
			Value:      value,
		}
	default:
		p.errorf(diagnostics.ErrP003, opToken, "invalid assignment target")
		return nil
	}
}

func (p *Parser) parseGroupExpression() ast.Expression {
	group := &ast.GroupExpression{Token: p.curToken}
	p.nextToken()
	group.Inner = p.parseExpression(LOWEST)
	if group.Inner == nil {
		return nil
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return group
}

func (p *Parser) parseListLiteral() ast.Expression {
	list := &ast.ListLiteral{Token: p.curToken}
	if p.peekTokenIs(token.RBRACKET) {
		p.nextToken()
		return list
	}
	for {
		p.nextToken()
		el := p.parseExpression(LOWEST)
		if el == nil {
			return nil
		}
		list.Elements = append(list.Elements, el)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			if p.peekTokenIs(token.RBRACKET) {
				break
			}
			continue
		}
		break
	}
	if !p.expectPeek(token.RBRACKET) {
		return nil
	}
	return list
}

func (p *Parser) parseMapLiteral() ast.Expression {
	m := &ast.MapLiteral{Token: p.curToken}
	if p.peekTokenIs(token.RBRACE) {
		p.nextToken()
		return m
	}
	for {
		p.nextToken()
		key := p.parseExpression(LOWEST)
		if key == nil {
			return nil
		}
		if !p.expectPeek(token.COLON) {
			return nil
		}
		p.nextToken()
		value := p.parseExpression(LOWEST)
		if value == nil {
			return nil
		}
		m.Keys = append(m.Keys, key)
		m.Values = append(m.Values, value)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			if p.peekTokenIs(token.RBRACE) {
				break
			}
			continue
		}
		break
	}
	if !p.expectPeek(token.RBRACE) {
		return nil
	}
	return m
}

func (p *Parser) parseMemberExpression(left ast.Expression) ast.Expression {
	dotToken := p.curToken
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	return &ast.MemberExpression{
		Token:  dotToken,
		Object: left,
		Member: p.curToken.Lexeme,
	}
}

func (p *Parser) parseIndexExpression(left ast.Expression) ast.Expression {
	exp := &ast.IndexExpression{Token: p.curToken, Collection: left}
	p.nextToken()
	exp.Key = p.parseExpression(LOWEST)
	if exp.Key == nil {
		return nil
	}
	if !p.expectPeek(token.RBRACKET) {
		return nil
	}
	return exp
}

func (p *Parser) parseCallExpression(callee ast.Expression) ast.Expression {
	call := &ast.CallExpression{Token: p.curToken, Callee: callee}
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return call
	}
	for {
		p.nextToken()
		arg := p.parseCallArgument()
		if arg == nil {
			return nil
		}
		call.Args = append(call.Args, arg)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return call
}

// parseCallArgument parses one call argument; `identifier : expr` is a named
// argument.
func (p *Parser) parseCallArgument() ast.Expression {
	if p.curTokenIs(token.IDENT) && p.peekTokenIs(token.COLON) {
		nameToken := p.curToken
		p.nextToken() // :
		p.nextToken()
		value := p.parseExpression(LOWEST)
		if value == nil {
			return nil
		}
		return &ast.NamedArgument{Token: nameToken, Name: nameToken.Lexeme, Value: value}
	}
	return p.parseExpression(LOWEST)
}
