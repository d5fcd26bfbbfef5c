package evaluator

import (
	"strconv"

	"github.com/funvibe/hetu/internal/config"
)

type ObjectType string

const (
	NULL_OBJ      = "NULL"
	BOOLEAN_OBJ   = "BOOLEAN"
	NUMBER_OBJ    = "NUMBER"
	STRING_OBJ    = "STRING"
	LIST_OBJ      = "LIST"
	MAP_OBJ       = "MAP"
	FUNCTION_OBJ  = "FUNCTION"
	CLASS_OBJ     = "CLASS"
	INSTANCE_OBJ  = "INSTANCE"
	NAMESPACE_OBJ = "NAMESPACE"
	HOST_OBJ      = "HOST"
	ERROR_OBJ     = "ERROR"

	RETURN_SIGNAL_OBJ   = "RETURN_SIGNAL"
	BREAK_SIGNAL_OBJ    = "BREAK_SIGNAL"
	CONTINUE_SIGNAL_OBJ = "CONTINUE_SIGNAL"
)

type Object interface {
	Type() ObjectType
	Inspect() string
}

type Null struct{}

func (n *Null) Type() ObjectType { return NULL_OBJ }
func (n *Null) Inspect() string  { return "null" }

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string {
	if b.Value {
		return "true"
	}
	return "false"
}

// Number is the single numeric type. Whole values print without a decimal
// point.
type Number struct {
	Value float64
}

func (n *Number) Type() ObjectType { return NUMBER_OBJ }
func (n *Number) Inspect() string {
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}

type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return s.Value }

// HostObject wraps an opaque host value, such as the handle of an external
// instance.
type HostObject struct {
	Value interface{}
}

func (h *HostObject) Type() ObjectType { return HOST_OBJ }
func (h *HostObject) Inspect() string  { return "<host object>" }

var (
	NULL  = &Null{}
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

func nativeBoolToBooleanObject(v bool) *Boolean {
	if v {
		return TRUE
	}
	return FALSE
}

// runtimeTypeName reports the name used by typeof and the is operator.
func runtimeTypeName(obj Object) string {
	switch o := obj.(type) {
	case *Null:
		return config.NullTypeName
	case *Number:
		return config.NumberTypeName
	case *Boolean:
		return config.BooleanTypeName
	case *String:
		return config.StringTypeName
	case *List:
		return config.ListTypeName
	case *Map:
		return config.MapTypeName
	case *Function:
		return config.FunctionTypeName
	case *Class:
		return config.ClassTypeName
	case *NamespaceValue:
		return config.NamespaceTypeName
	case *Instance:
		if o.Wrapped != nil {
			return runtimeTypeName(o.Wrapped)
		}
		return o.Class.Name
	case *HostObject:
		return config.ObjectTypeName
	}
	return config.AnyTypeName
}
