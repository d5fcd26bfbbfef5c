// Package ext is the host-facing surface of the extern bridge: the types a
// host uses to register native functions and external namespaces with an
// interpreter.
package ext

import (
	"fmt"

	"github.com/funvibe/hetu/internal/evaluator"
)

// Object types aliases
type Object = evaluator.Object
type Null = evaluator.Null
type Boolean = evaluator.Boolean
type Number = evaluator.Number
type String = evaluator.String
type List = evaluator.List
type Map = evaluator.Map
type Instance = evaluator.Instance
type HostObject = evaluator.HostObject
type Error = evaluator.Error

// Function is the native callback signature: receiver (nil for unbound
// calls), positional arguments and named arguments.
type Function = evaluator.NativeFunction

// ExternalNamespace backs an external class with four host operations; see
// the evaluator for the dispatch rules.
type ExternalNamespace = evaluator.ExternalNamespace

// Re-export constants
var (
	NULL  = evaluator.NULL
	TRUE  = evaluator.TRUE
	FALSE = evaluator.FALSE
)

func NewError(format string, args ...interface{}) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

func NewNumber(v float64) *Number { return &Number{Value: v} }
func NewString(v string) *String  { return &String{Value: v} }

func NewBoolean(v bool) Object {
	if v {
		return TRUE
	}
	return FALSE
}

// NewHandle wraps an opaque host value, typically an external instance
// handle returned from a constructor entry.
func NewHandle(v interface{}) *HostObject { return &HostObject{Value: v} }

// NewNativeFunction wraps a native callback as a callable script value, as
// returned from ExternalNamespace fetch operations.
func NewNativeFunction(fn Function) Object {
	return &evaluator.Function{Native: fn}
}

// ToHetu converts a plain Go value to a script object.
func ToHetu(val interface{}) Object {
	if val == nil {
		return NULL
	}
	switch v := val.(type) {
	case Object:
		return v
	case int:
		return &Number{Value: float64(v)}
	case int64:
		return &Number{Value: float64(v)}
	case float64:
		return &Number{Value: v}
	case bool:
		return NewBoolean(v)
	case string:
		return &String{Value: v}
	case error:
		return NewError("%s", v.Error())
	case []interface{}:
		elements := make([]Object, len(v))
		for i, el := range v {
			elements[i] = ToHetu(el)
		}
		return &List{Elements: elements}
	}
	return &HostObject{Value: val}
}
