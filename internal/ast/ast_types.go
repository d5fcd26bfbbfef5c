package ast

import (
	"strings"

	"github.com/funvibe/hetu/internal/token"
)

// FuncKind distinguishes the function declaration forms.
type FuncKind int

const (
	FuncKindNormal FuncKind = iota
	FuncKindProcedure
	FuncKindConstructor
	FuncKindGetter
	FuncKindSetter
	FuncKindMethod
)

func (k FuncKind) String() string {
	switch k {
	case FuncKindNormal:
		return "fun"
	case FuncKindProcedure:
		return "proc"
	case FuncKindConstructor:
		return "construct"
	case FuncKindGetter:
		return "get"
	case FuncKindSetter:
		return "set"
	case FuncKindMethod:
		return "method"
	}
	return "fun"
}

// TypeID is a nominal type annotation with optional type arguments.
// Comparison is by name only; arguments are preserved but not checked.
type TypeID struct {
	Token token.Token
	Name  string
	Args  []*TypeID
}

func (t *TypeID) GetToken() token.Token {
	if t == nil {
		return token.Token{}
	}
	return t.Token
}

func (t *TypeID) String() string {
	if t == nil {
		return ""
	}
	if len(t.Args) == 0 {
		return t.Name
	}
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	return t.Name + "<" + strings.Join(parts, ", ") + ">"
}
