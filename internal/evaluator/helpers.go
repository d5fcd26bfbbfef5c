package evaluator

import (
	"fmt"
)

func newError(format string, a ...interface{}) *Error {
	return &Error{Message: fmt.Sprintf(format, a...)}
}

func isError(obj Object) bool {
	if obj == nil {
		return false
	}
	return obj.Type() == ERROR_OBJ
}

// isSignal reports whether obj is one of the three nonlocal-exit forms.
func isSignal(obj Object) bool {
	if obj == nil {
		return false
	}
	switch obj.Type() {
	case RETURN_SIGNAL_OBJ, BREAK_SIGNAL_OBJ, CONTINUE_SIGNAL_OBJ:
		return true
	}
	return false
}

// objectsEqual implements ==: deep value equality on primitives, identity on
// everything else.
func objectsEqual(a, b Object) bool {
	switch av := a.(type) {
	case *Null:
		_, ok := b.(*Null)
		return ok
	case *Number:
		bv, ok := b.(*Number)
		return ok && av.Value == bv.Value
	case *Boolean:
		bv, ok := b.(*Boolean)
		return ok && av.Value == bv.Value
	case *String:
		bv, ok := b.(*String)
		return ok && av.Value == bv.Value
	}
	return a == b
}

// PushCall adds a call frame to the stack
func (i *Interpreter) PushCall(name string, file string, line, column int) {
	i.callStack = append(i.callStack, StackFrame{Name: name, File: file, Line: line, Column: column})
}

// PopCall removes the top call frame
func (i *Interpreter) PopCall() {
	if len(i.callStack) > 0 {
		i.callStack = i.callStack[:len(i.callStack)-1]
	}
}

// newErrorWithStack creates an error carrying the current call stack.
func (i *Interpreter) newErrorWithStack(format string, a ...interface{}) *Error {
	err := &Error{Message: fmt.Sprintf(format, a...)}
	if len(i.callStack) > 0 {
		err.StackTrace = make([]StackFrame, len(i.callStack))
		copy(err.StackTrace, i.callStack)
	}
	return err
}
