package ast

import (
	"github.com/funvibe/hetu/internal/token"
)

// TokenProvider is an interface for any AST node that can provide its primary token.
// This is useful for error reporting.
type TokenProvider interface {
	GetToken() token.Token
}

// Node is the base interface for all AST nodes.
type Node interface {
	TokenLiteral() string
}

// Statement is a Node that represents a statement.
type Statement interface {
	Node
	statementNode()
	GetToken() token.Token
}

// Expression is a Node that represents an expression.
//
// Expressions support deep cloning; a clone carries the same tokens but has a
// fresh node identity, so the resolver records its scope distances
// independently of the original.
type Expression interface {
	Node
	expressionNode()
	GetToken() token.Token
	Clone() Expression
}

// Program is the root node of every AST our parser produces.
type Program struct {
	File       string // Source file path
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

// ConstTable is an append-only pool of deduplicated literal payloads.
// ConstExpression nodes reference entries by index.
type ConstTable struct {
	values []interface{}
	index  map[interface{}]int
}

func NewConstTable() *ConstTable {
	return &ConstTable{index: make(map[interface{}]int)}
}

// Add interns a literal payload and returns its pool index. Payloads compare
// by value, so equal literals share one slot.
func (t *ConstTable) Add(value interface{}) int {
	if i, ok := t.index[value]; ok {
		return i
	}
	i := len(t.values)
	t.values = append(t.values, value)
	t.index[value] = i
	return i
}

// Get returns the literal payload at the given pool index.
func (t *ConstTable) Get(index int) interface{} {
	if index < 0 || index >= len(t.values) {
		return nil
	}
	return t.values[index]
}

func (t *ConstTable) Len() int {
	return len(t.values)
}
