package parser

import (
	"github.com/funvibe/hetu/internal/ast"
	"github.com/funvibe/hetu/internal/diagnostics"
	"github.com/funvibe/hetu/internal/token"
)

func (p *Parser) parseClassDeclStatement(isExtern bool) *ast.ClassDeclStatement {
	stmt := &ast.ClassDeclStatement{Token: p.curToken, IsExtern: isExtern}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = p.curToken.Lexeme

	if p.peekTokenIs(token.LT) {
		stmt.TypeParams = p.parseTypeParams()
		if stmt.TypeParams == nil {
			return nil
		}
	}

	if p.peekTokenIs(token.EXTENDS) {
		p.nextToken() // extends
		p.nextToken()
		stmt.SuperClass = p.parseTypeID()
		if stmt.SuperClass == nil {
			return nil
		}
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	p.nextToken()

	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) && !p.fatal {
		if p.curTokenIs(token.SEMICOLON) {
			p.nextToken()
			continue
		}
		member := p.parseClassMember(isExtern)
		if p.fatal {
			return nil
		}
		switch m := member.(type) {
		case *ast.VarDeclStatement:
			stmt.Variables = append(stmt.Variables, m)
		case *ast.FuncDeclStatement:
			m.ClassName = stmt.Name
			if m.Kind == ast.FuncKindNormal {
				m.Kind = ast.FuncKindMethod
			}
			stmt.Methods = append(stmt.Methods, m)
		}
		p.nextToken()
	}
	if !p.curTokenIs(token.RBRACE) {
		p.errorf(diagnostics.ErrP001, p.curToken, "expected '}' to close class body")
		return nil
	}
	return stmt
}

// parseClassMember parses one declaration inside a class body. When
// classIsExtern is set, every member is implicitly external and bodiless.
func (p *Parser) parseClassMember(classIsExtern bool) ast.Statement {
	isStatic := false
	isExtern := classIsExtern

	for {
		if p.curTokenIs(token.STATIC) {
			isStatic = true
			p.nextToken()
			continue
		}
		if p.curTokenIs(token.EXTERNAL) {
			isExtern = true
			p.nextToken()
			continue
		}
		break
	}

	switch p.curToken.Type {
	case token.VAR, token.LET, token.DEF:
		decl := p.parseVarDeclStatement()
		if decl == nil {
			return nil
		}
		decl.IsStatic = isStatic
		decl.IsExtern = isExtern
		return decl
	case token.CONSTRUCT:
		return p.parseFuncDeclStatement(ast.FuncKindConstructor, isExtern, false, "")
	case token.GET:
		return p.parseFuncDeclStatement(ast.FuncKindGetter, isExtern, isStatic, "")
	case token.SET:
		return p.parseFuncDeclStatement(ast.FuncKindSetter, isExtern, isStatic, "")
	case token.FUN:
		return p.parseFuncDeclStatement(ast.FuncKindNormal, isExtern, isStatic, "")
	case token.PROC:
		return p.parseFuncDeclStatement(ast.FuncKindProcedure, isExtern, isStatic, "")
	default:
		p.errorf(diagnostics.ErrP002, p.curToken,
			"unexpected '%s' in class body", p.curToken.Lexeme)
		return nil
	}
}
