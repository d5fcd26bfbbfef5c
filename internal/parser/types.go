package parser

import (
	"github.com/funvibe/hetu/internal/ast"
	"github.com/funvibe/hetu/internal/config"
	"github.com/funvibe/hetu/internal/diagnostics"
	"github.com/funvibe/hetu/internal/token"
)

// parseTypeID parses a nominal type annotation `Name<T1, T2, ...>`. Type
// arguments are parsed recursively and preserved, not checked. curToken is
// the type name on entry and the last token of the annotation on exit.
func (p *Parser) parseTypeID() *ast.TypeID {
	// `fun` doubles as the function type name in annotations.
	if p.curTokenIs(token.FUN) {
		return &ast.TypeID{Token: p.curToken, Name: config.FunctionTypeName}
	}
	if !p.curTokenIs(token.IDENT) {
		p.errorf(diagnostics.ErrP001, p.curToken, "expected type name, got '%s'", p.curToken.Lexeme)
		return nil
	}
	t := &ast.TypeID{Token: p.curToken, Name: p.curToken.Lexeme}

	if !p.peekTokenIs(token.LT) {
		return t
	}
	p.nextToken() // <
	for {
		p.nextToken()
		arg := p.parseTypeID()
		if arg == nil {
			return nil
		}
		t.Args = append(t.Args, arg)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	if !p.expectPeek(token.GT) {
		return nil
	}
	return t
}

// parseTypeParams parses a declaration-site type parameter list `<T, U>`.
// peekToken is '<' on entry; curToken is '>' on exit.
func (p *Parser) parseTypeParams() []string {
	p.nextToken() // <
	var params []string
	for {
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		params = append(params, p.curToken.Lexeme)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	if !p.expectPeek(token.GT) {
		return nil
	}
	return params
}
