package parser

import (
	"github.com/funvibe/hetu/internal/ast"
	"github.com/funvibe/hetu/internal/config"
	"github.com/funvibe/hetu/internal/diagnostics"
	"github.com/funvibe/hetu/internal/token"
)

func (p *Parser) parseFuncDeclStatement(kind ast.FuncKind, isExtern, isStatic bool, className string) *ast.FuncDeclStatement {
	stmt := &ast.FuncDeclStatement{
		Token:     p.curToken,
		Kind:      kind,
		IsExtern:  isExtern,
		IsStatic:  isStatic,
		ClassName: className,
	}

	if kind == ast.FuncKindConstructor {
		stmt.Name = config.ConstructorName
	} else {
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		stmt.Name = p.curToken.Lexeme
	}

	if p.peekTokenIs(token.LT) {
		stmt.TypeParams = p.parseTypeParams()
		if stmt.TypeParams == nil {
			return nil
		}
	}

	if p.peekTokenIs(token.LPAREN) {
		p.nextToken()
		params, arity, ok := p.parseParameters()
		if !ok {
			return nil
		}
		stmt.Params = params
		stmt.Arity = arity
	}

	switch kind {
	case ast.FuncKindGetter:
		if len(stmt.Params) != 0 {
			p.errorf(diagnostics.ErrP002, stmt.Token, "getter '%s' must not declare parameters", stmt.Name)
			return nil
		}
	case ast.FuncKindSetter:
		if len(stmt.Params) != 1 || stmt.Params[0].IsOptionalParam ||
			stmt.Params[0].IsNamedParam || stmt.Params[0].IsVariadicParam {
			p.errorf(diagnostics.ErrP004, stmt.Token, "setter '%s' must declare exactly one parameter", stmt.Name)
			return nil
		}
	}

	// Return type annotation: legal on functions and getters; procedures are
	// implicitly void and constructors return the new instance.
	if p.peekTokenIs(token.COLON) {
		switch kind {
		case ast.FuncKindProcedure:
			p.errorf(diagnostics.ErrP002, p.peekToken, "procedure '%s' cannot declare a return type", stmt.Name)
			return nil
		case ast.FuncKindConstructor:
			p.errorf(diagnostics.ErrP002, p.peekToken, "constructor cannot declare a return type")
			return nil
		case ast.FuncKindSetter:
			p.errorf(diagnostics.ErrP002, p.peekToken, "setter '%s' cannot declare a return type", stmt.Name)
			return nil
		}
		p.nextToken() // :
		p.nextToken()
		stmt.ReturnType = p.parseTypeID()
		if stmt.ReturnType == nil {
			return nil
		}
	}

	if isExtern {
		return stmt
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	stmt.Body = p.parseBlockStatement()
	if stmt.Body == nil {
		return nil
	}
	return stmt
}

// parseParameters parses a parenthesized parameter list: positional
// parameters, then optional positionals in [ ], then named parameters in
// { }. A trailing '...' marks a variadic list. curToken is '(' on entry and
// ')' on exit.
func (p *Parser) parseParameters() ([]*ast.VarDeclStatement, int, bool) {
	var params []*ast.VarDeclStatement
	arity := 0
	variadic := false

	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return params, arity, true
	}

	for {
		p.nextToken()
		switch p.curToken.Type {
		case token.ELLIPSIS:
			if !p.expectPeek(token.IDENT) {
				return nil, 0, false
			}
			param := p.parseOneParameter()
			if param == nil {
				return nil, 0, false
			}
			param.IsVariadicParam = true
			params = append(params, param)
			variadic = true
		case token.LBRACKET:
			if !p.parseParameterGroup(&params, token.RBRACKET) {
				return nil, 0, false
			}
		case token.LBRACE:
			if !p.parseParameterGroup(&params, token.RBRACE) {
				return nil, 0, false
			}
		case token.IDENT:
			param := p.parseOneParameter()
			if param == nil {
				return nil, 0, false
			}
			params = append(params, param)
			arity++
		default:
			p.errorf(diagnostics.ErrP002, p.curToken, "unexpected '%s' in parameter list", p.curToken.Lexeme)
			return nil, 0, false
		}

		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}

	if !p.expectPeek(token.RPAREN) {
		return nil, 0, false
	}
	if variadic {
		arity = ast.VariadicArity
	}
	return params, arity, true
}

// parseParameterGroup parses the bracketed optional-positional group or the
// braced named group. curToken is the opening delimiter on entry.
func (p *Parser) parseParameterGroup(params *[]*ast.VarDeclStatement, closer token.TokenType) bool {
	named := closer == token.RBRACE
	for {
		if !p.expectPeek(token.IDENT) {
			return false
		}
		param := p.parseOneParameter()
		if param == nil {
			return false
		}
		if named {
			param.IsNamedParam = true
		} else {
			param.IsOptionalParam = true
		}
		*params = append(*params, param)

		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	return p.expectPeek(closer)
}

// parseOneParameter parses `name [: Type] [= default]`. curToken is the name
// token on entry.
func (p *Parser) parseOneParameter() *ast.VarDeclStatement {
	param := &ast.VarDeclStatement{
		Token:     p.curToken,
		Name:      &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme},
		IsMutable: true,
	}
	if p.peekTokenIs(token.COLON) {
		p.nextToken() // :
		p.nextToken()
		param.DeclType = p.parseTypeID()
		if param.DeclType == nil {
			return nil
		}
	}
	if p.peekTokenIs(token.ASSIGN) {
		p.nextToken() // =
		p.nextToken()
		param.Initializer = p.parseExpression(LOWEST)
		if param.Initializer == nil {
			return nil
		}
	}
	return param
}
