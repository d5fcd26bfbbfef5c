package diagnostics

import (
	"fmt"

	"github.com/funvibe/hetu/internal/token"
)

type ErrorCode string

const (
	// Lexer
	ErrL001 ErrorCode = "L001" // unexpected character
	ErrL002 ErrorCode = "L002" // unterminated string

	// Parser
	ErrP001 ErrorCode = "P001" // expected token mismatch
	ErrP002 ErrorCode = "P002" // unexpected token
	ErrP003 ErrorCode = "P003" // invalid assignment target
	ErrP004 ErrorCode = "P004" // invalid setter arity
	ErrP005 ErrorCode = "P005" // statement not allowed in this context

	// Resolver
	ErrR001 ErrorCode = "R001" // already declared in this scope
	ErrR002 ErrorCode = "R002" // already defined in this scope
	ErrR003 ErrorCode = "R003" // variable used in its own initializer
	ErrR004 ErrorCode = "R004" // return outside of function
	ErrR005 ErrorCode = "R005" // value return inside constructor or procedure
	ErrR006 ErrorCode = "R006" // this outside of class
	ErrR007 ErrorCode = "R007" // class extends itself
)

// DiagnosticError is a positioned compile-stage error (lex, parse or resolve).
type DiagnosticError struct {
	Code    ErrorCode
	File    string
	Line    int
	Column  int
	Message string
}

func NewError(code ErrorCode, tok token.Token, message string) *DiagnosticError {
	return &DiagnosticError{
		Code:    code,
		Line:    tok.Line,
		Column:  tok.Column,
		Message: message,
	}
}

func (d *DiagnosticError) Error() string {
	if d.File != "" {
		return fmt.Sprintf("%s:%d:%d: [%s] %s", d.File, d.Line, d.Column, d.Code, d.Message)
	}
	return fmt.Sprintf("%d:%d: [%s] %s", d.Line, d.Column, d.Code, d.Message)
}
