package ast

import (
	"github.com/funvibe/hetu/internal/token"
)

// ImportStatement represents an import declaration.
// import 'path/to/file.ht' [as alias]
type ImportStatement struct {
	Token token.Token // the 'import' token
	Path  string
	Alias string // optional namespace alias
}

func (is *ImportStatement) statementNode()       {}
func (is *ImportStatement) TokenLiteral() string { return is.Token.Lexeme }
func (is *ImportStatement) GetToken() token.Token {
	if is == nil {
		return token.Token{}
	}
	return is.Token
}

// VarDeclStatement declares a variable, a class field or a parameter.
type VarDeclStatement struct {
	Token       token.Token // the 'var'/'let'/'def' token, or the name token for parameters
	Name        *Identifier
	DeclType    *TypeID
	Initializer Expression

	IsStatic     bool
	IsMutable    bool
	TypeInferred bool
	IsExtern     bool

	// Parameter-only flags.
	IsOptionalParam bool
	IsNamedParam    bool
	IsVariadicParam bool
}

func (vd *VarDeclStatement) statementNode()       {}
func (vd *VarDeclStatement) TokenLiteral() string { return vd.Token.Lexeme }
func (vd *VarDeclStatement) GetToken() token.Token {
	if vd == nil {
		return token.Token{}
	}
	return vd.Token
}

// ExpressionStatement wraps an expression used in statement position.
type ExpressionStatement struct {
	Token      token.Token
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Lexeme }
func (es *ExpressionStatement) GetToken() token.Token {
	if es == nil {
		return token.Token{}
	}
	return es.Token
}

// BlockStatement is a braced sequence of statements.
type BlockStatement struct {
	Token      token.Token // the '{' token
	Statements []Statement
}

func (bs *BlockStatement) statementNode()       {}
func (bs *BlockStatement) TokenLiteral() string { return bs.Token.Lexeme }
func (bs *BlockStatement) GetToken() token.Token {
	if bs == nil {
		return token.Token{}
	}
	return bs.Token
}

// ReturnStatement hands a value up the call stack. Value is nil for bare return.
type ReturnStatement struct {
	Token token.Token // the 'return' token
	Value Expression
}

func (rs *ReturnStatement) statementNode()       {}
func (rs *ReturnStatement) TokenLiteral() string { return rs.Token.Lexeme }
func (rs *ReturnStatement) GetToken() token.Token {
	if rs == nil {
		return token.Token{}
	}
	return rs.Token
}

// IfStatement with optional else branch.
type IfStatement struct {
	Token       token.Token // the 'if' token
	Condition   Expression
	Consequence Statement
	Alternative Statement // may be nil
}

func (is *IfStatement) statementNode()       {}
func (is *IfStatement) TokenLiteral() string { return is.Token.Lexeme }
func (is *IfStatement) GetToken() token.Token {
	if is == nil {
		return token.Token{}
	}
	return is.Token
}

// WhileStatement loops while the condition holds.
type WhileStatement struct {
	Token     token.Token // the 'while' token
	Condition Expression
	Body      Statement
}

func (ws *WhileStatement) statementNode()       {}
func (ws *WhileStatement) TokenLiteral() string { return ws.Token.Lexeme }
func (ws *WhileStatement) GetToken() token.Token {
	if ws == nil {
		return token.Token{}
	}
	return ws.Token
}

type BreakStatement struct {
	Token token.Token
}

func (bs *BreakStatement) statementNode()       {}
func (bs *BreakStatement) TokenLiteral() string { return bs.Token.Lexeme }
func (bs *BreakStatement) GetToken() token.Token {
	if bs == nil {
		return token.Token{}
	}
	return bs.Token
}

type ContinueStatement struct {
	Token token.Token
}

func (cs *ContinueStatement) statementNode()       {}
func (cs *ContinueStatement) TokenLiteral() string { return cs.Token.Lexeme }
func (cs *ContinueStatement) GetToken() token.Token {
	if cs == nil {
		return token.Token{}
	}
	return cs.Token
}

// VariadicArity marks a function that binds all positional arguments as-is.
const VariadicArity = -1

// FuncDeclStatement declares a function, procedure, constructor, getter,
// setter or method.
type FuncDeclStatement struct {
	Token      token.Token // the 'fun'/'proc'/'construct'/'get'/'set' token
	Kind       FuncKind
	Name       string
	ReturnType *TypeID
	Params     []*VarDeclStatement
	TypeParams []string
	Body       *BlockStatement // nil for external declarations

	// Arity is the declared minimum positional argument count;
	// VariadicArity denotes a variadic parameter list.
	Arity int

	IsStatic  bool
	IsExtern  bool
	ClassName string // owning class name, empty for free functions
}

func (fd *FuncDeclStatement) statementNode()       {}
func (fd *FuncDeclStatement) TokenLiteral() string { return fd.Token.Lexeme }
func (fd *FuncDeclStatement) GetToken() token.Token {
	if fd == nil {
		return token.Token{}
	}
	return fd.Token
}

// ClassDeclStatement declares a class with static and instance members.
type ClassDeclStatement struct {
	Token      token.Token // the 'class' token
	Name       string
	SuperClass *TypeID // nil defaults to Object
	TypeParams []string
	Variables  []*VarDeclStatement
	Methods    []*FuncDeclStatement
	IsExtern   bool
}

func (cd *ClassDeclStatement) statementNode()       {}
func (cd *ClassDeclStatement) TokenLiteral() string { return cd.Token.Lexeme }
func (cd *ClassDeclStatement) GetToken() token.Token {
	if cd == nil {
		return token.Token{}
	}
	return cd.Token
}
