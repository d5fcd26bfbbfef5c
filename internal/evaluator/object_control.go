package evaluator

import (
	"fmt"
	"strings"
)

// Error is a runtime evaluation error. It threads through evaluation as an
// ordinary object and crosses to the host as a Go error at the embed
// boundary.
type Error struct {
	Message    string
	File       string
	Line       int
	Column     int
	StackTrace []StackFrame
}

// StackFrame for error stack traces
type StackFrame struct {
	Name   string
	File   string
	Line   int
	Column int
}

func (e *Error) Type() ObjectType { return ERROR_OBJ }
func (e *Error) Inspect() string {
	var result string
	if e.Line > 0 {
		result = fmt.Sprintf("ERROR at %d:%d: %s", e.Line, e.Column, e.Message)
	} else {
		result = "ERROR: " + e.Message
	}
	if len(e.StackTrace) > 0 {
		var b strings.Builder
		b.WriteString(result)
		b.WriteString("\nStack trace:")
		for i := len(e.StackTrace) - 1; i >= 0; i-- {
			frame := e.StackTrace[i]
			fmt.Fprintf(&b, "\n  at %s (%s:%d)", frame.Name, frame.File, frame.Line)
		}
		return b.String()
	}
	return result
}

// Error makes *Error usable as a Go error at the embedding boundary.
func (e *Error) Error() string { return e.Inspect() }

// ReturnSignal is the nonlocal exit for return statements. It unwinds
// intermediate blocks and is caught by the innermost call frame; it must
// never escape to the host.
type ReturnSignal struct {
	Value Object
}

func (r *ReturnSignal) Type() ObjectType { return RETURN_SIGNAL_OBJ }
func (r *ReturnSignal) Inspect() string  { return "return" }

// BreakSignal is the nonlocal exit for break statements, caught by the
// innermost loop.
type BreakSignal struct{}

func (b *BreakSignal) Type() ObjectType { return BREAK_SIGNAL_OBJ }
func (b *BreakSignal) Inspect() string  { return "break" }

// ContinueSignal is the nonlocal exit for continue statements, caught by the
// innermost loop.
type ContinueSignal struct{}

func (c *ContinueSignal) Type() ObjectType { return CONTINUE_SIGNAL_OBJ }
func (c *ContinueSignal) Inspect() string  { return "continue" }
