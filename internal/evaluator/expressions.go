package evaluator

import (
	"math"

	"github.com/funvibe/hetu/internal/ast"
	"github.com/funvibe/hetu/internal/config"
	"github.com/funvibe/hetu/internal/token"
)

// evalIdentifier reads a symbol: with a recorded scope distance the lookup
// starts that many enclosures outward; without one it walks the runtime
// namespace chain to the root. Getter functions found by name are invoked, so
// an unprefixed getter reference yields its value.
func (i *Interpreter) evalIdentifier(node *ast.Identifier, ns *Namespace) Object {
	var value Object
	var ok bool
	if d, resolved := i.distances[ast.Expression(node)]; resolved {
		value, ok = ns.GetAt(d, node.Value)
	} else {
		value, ok = ns.Get(node.Value)
	}
	if !ok {
		return newError("undefined identifier '%s'", node.Value)
	}
	if fn, isFn := value.(*Function); isFn && fn.Kind() == ast.FuncKindGetter {
		return i.callFunction(fn, nil, nil)
	}
	return value
}

func (i *Interpreter) evalThisExpression(node *ast.ThisExpression, ns *Namespace) Object {
	var value Object
	var ok bool
	if d, resolved := i.distances[ast.Expression(node)]; resolved {
		value, ok = ns.GetAt(d, config.ThisName)
	} else {
		value, ok = ns.Get(config.ThisName)
	}
	if !ok {
		return newError("'this' is not bound in this context")
	}
	return value
}

func (i *Interpreter) evalAssignExpression(node *ast.AssignExpression, ns *Namespace) Object {
	value := i.Eval(node.Value, ns)
	if isError(value) || isSignal(value) {
		return value
	}

	var found bool
	var err *Error
	if d, resolved := i.distances[ast.Expression(node)]; resolved {
		found, err = ns.AssignAt(d, node.Name.Value, value)
	} else {
		found, err = ns.Assign(node.Name.Value, value)
	}
	if err != nil {
		return err
	}
	if !found {
		return newError("cannot assign to undefined identifier '%s'", node.Name.Value)
	}
	return value
}

func (i *Interpreter) evalListLiteral(node *ast.ListLiteral, ns *Namespace) Object {
	elements := make([]Object, 0, len(node.Elements))
	for _, el := range node.Elements {
		v := i.Eval(el, ns)
		if isError(v) || isSignal(v) {
			return v
		}
		elements = append(elements, v)
	}
	return &List{Elements: elements}
}

func (i *Interpreter) evalMapLiteral(node *ast.MapLiteral, ns *Namespace) Object {
	m := &Map{}
	for idx := range node.Keys {
		key := i.Eval(node.Keys[idx], ns)
		if isError(key) || isSignal(key) {
			return key
		}
		value := i.Eval(node.Values[idx], ns)
		if isError(value) || isSignal(value) {
			return value
		}
		m.Set(key, value)
	}
	return m
}

func (i *Interpreter) evalPrefixExpression(node *ast.PrefixExpression, ns *Namespace) Object {
	right := i.Eval(node.Right, ns)
	if isError(right) || isSignal(right) {
		return right
	}
	switch node.Operator {
	case token.MINUS:
		if n, ok := right.(*Number); ok {
			return &Number{Value: -n.Value}
		}
	case token.BANG:
		if b, ok := right.(*Boolean); ok {
			return nativeBoolToBooleanObject(!b.Value)
		}
	}
	return newError("undefined operator '%s' for %s", node.Operator, runtimeTypeName(right))
}

func (i *Interpreter) evalInfixExpression(node *ast.InfixExpression, ns *Namespace) Object {
	// Logical operators short-circuit on the left.
	if node.Operator == token.AND || node.Operator == token.OR {
		left := i.Eval(node.Left, ns)
		if isError(left) || isSignal(left) {
			return left
		}
		lb, ok := left.(*Boolean)
		if !ok {
			return newError("undefined operator '%s' for %s", node.Operator, runtimeTypeName(left))
		}
		if node.Operator == token.AND && !lb.Value {
			return FALSE
		}
		if node.Operator == token.OR && lb.Value {
			return TRUE
		}
		right := i.Eval(node.Right, ns)
		if isError(right) || isSignal(right) {
			return right
		}
		rb, ok := right.(*Boolean)
		if !ok {
			return newError("undefined operator '%s' for %s", node.Operator, runtimeTypeName(right))
		}
		return nativeBoolToBooleanObject(rb.Value)
	}

	left := i.Eval(node.Left, ns)
	if isError(left) || isSignal(left) {
		return left
	}
	right := i.Eval(node.Right, ns)
	if isError(right) || isSignal(right) {
		return right
	}

	switch node.Operator {
	case token.EQ:
		return nativeBoolToBooleanObject(objectsEqual(left, right))
	case token.NOT_EQ:
		return nativeBoolToBooleanObject(!objectsEqual(left, right))
	case "is":
		cls, ok := right.(*Class)
		if !ok {
			return newError("right operand of 'is' is not a class")
		}
		return nativeBoolToBooleanObject(runtimeTypeName(left) == cls.Name)
	}

	if ls, ok := left.(*String); ok {
		if rs, ok := right.(*String); ok && node.Operator == token.PLUS {
			return &String{Value: ls.Value + rs.Value}
		}
		return newError("undefined operator '%s' for %s and %s",
			node.Operator, runtimeTypeName(left), runtimeTypeName(right))
	}

	ln, lok := left.(*Number)
	rn, rok := right.(*Number)
	if !lok || !rok {
		return newError("undefined operator '%s' for %s and %s",
			node.Operator, runtimeTypeName(left), runtimeTypeName(right))
	}

	switch node.Operator {
	case token.PLUS:
		return &Number{Value: ln.Value + rn.Value}
	case token.MINUS:
		return &Number{Value: ln.Value - rn.Value}
	case token.ASTERISK:
		return &Number{Value: ln.Value * rn.Value}
	case token.SLASH:
		if rn.Value == 0 {
			return newError("division by zero")
		}
		return &Number{Value: ln.Value / rn.Value}
	case token.PERCENT:
		if rn.Value == 0 {
			return newError("division by zero")
		}
		return &Number{Value: math.Mod(ln.Value, rn.Value)}
	case token.LT:
		return nativeBoolToBooleanObject(ln.Value < rn.Value)
	case token.GT:
		return nativeBoolToBooleanObject(ln.Value > rn.Value)
	case token.LTE:
		return nativeBoolToBooleanObject(ln.Value <= rn.Value)
	case token.GTE:
		return nativeBoolToBooleanObject(ln.Value >= rn.Value)
	}
	return newError("undefined operator '%s'", node.Operator)
}

// subscriptTarget unwraps a literal wrapper to its underlying collection.
func subscriptTarget(obj Object) Object {
	if inst, ok := obj.(*Instance); ok && inst.Wrapped != nil {
		return inst.Wrapped
	}
	return obj
}

func (i *Interpreter) evalIndexExpression(node *ast.IndexExpression, ns *Namespace) Object {
	coll := i.Eval(node.Collection, ns)
	if isError(coll) || isSignal(coll) {
		return coll
	}
	key := i.Eval(node.Key, ns)
	if isError(key) || isSignal(key) {
		return key
	}

	switch target := subscriptTarget(coll).(type) {
	case *List:
		idx, ok := listIndex(key, len(target.Elements))
		if !ok {
			return newError("list index out of range")
		}
		return target.Elements[idx]
	case *Map:
		if v, ok := target.Get(key); ok {
			return v
		}
		return NULL
	}
	return newError("cannot subscript %s", runtimeTypeName(coll))
}

func (i *Interpreter) evalIndexAssignExpression(node *ast.IndexAssignExpression, ns *Namespace) Object {
	coll := i.Eval(node.Collection, ns)
	if isError(coll) || isSignal(coll) {
		return coll
	}
	key := i.Eval(node.Key, ns)
	if isError(key) || isSignal(key) {
		return key
	}
	value := i.Eval(node.Value, ns)
	if isError(value) || isSignal(value) {
		return value
	}

	switch target := subscriptTarget(coll).(type) {
	case *List:
		idx, ok := listIndex(key, len(target.Elements))
		if !ok {
			return newError("list index out of range")
		}
		target.Elements[idx] = value
		return value
	case *Map:
		target.Set(key, value)
		return value
	}
	return newError("cannot subscript %s", runtimeTypeName(coll))
}

// listIndex validates an integer subscript against a list length.
func listIndex(key Object, length int) (int, bool) {
	n, ok := key.(*Number)
	if !ok {
		return 0, false
	}
	idx := int(n.Value)
	if float64(idx) != n.Value || idx < 0 || idx >= length {
		return 0, false
	}
	return idx, true
}

func (i *Interpreter) evalMemberExpression(node *ast.MemberExpression, ns *Namespace) Object {
	obj := i.Eval(node.Object, ns)
	if isError(obj) || isSignal(obj) {
		return obj
	}
	return i.fetchMember(obj, node.Member)
}

func (i *Interpreter) evalMemberAssignExpression(node *ast.MemberAssignExpression, ns *Namespace) Object {
	obj := i.Eval(node.Object, ns)
	if isError(obj) || isSignal(obj) {
		return obj
	}
	value := i.Eval(node.Value, ns)
	if isError(value) || isSignal(value) {
		return value
	}
	if result := i.assignMember(obj, node.Member, value); isError(result) {
		return result
	}
	return value
}

// fetchMember dispatches a member read. Primitive receivers are first given a
// wrapper instance of their built-in class.
func (i *Interpreter) fetchMember(obj Object, name string) Object {
	switch receiver := obj.(type) {
	case *Instance:
		return i.fetchInstanceMember(receiver, name)
	case *Class:
		return i.fetchClassMember(receiver, name)
	case *NamespaceValue:
		if v, ok := receiver.NS.GetLocal(name); ok {
			if fn, isFn := v.(*Function); isFn && fn.Kind() == ast.FuncKindGetter {
				return i.callFunction(fn, nil, nil)
			}
			return v
		}
		return newError("undefined member '%s' in namespace '%s'", name, receiver.Name)
	case *Number, *Boolean, *String, *List, *Map:
		wrapper := i.wrapPrimitive(obj)
		if isError(wrapper) {
			return wrapper
		}
		return i.fetchInstanceMember(wrapper.(*Instance), name)
	}
	return newError("cannot access member '%s' on %s", name, runtimeTypeName(obj))
}

func (i *Interpreter) assignMember(obj Object, name string, value Object) Object {
	switch receiver := obj.(type) {
	case *Instance:
		return i.assignInstanceMember(receiver, name, value)
	case *Class:
		return i.assignClassMember(receiver, name, value)
	case *NamespaceValue:
		found, err := receiver.NS.AssignLocal(name, value)
		if err != nil {
			return err
		}
		if !found {
			return newError("undefined member '%s' in namespace '%s'", name, receiver.Name)
		}
		return NULL
	}
	return newError("cannot assign member '%s' on %s", name, runtimeTypeName(obj))
}

// fetchInstanceMember reads an instance member: first the instance's own
// namespace (fields, bound methods and getters), then the class chain for
// statics. External instances route through the host namespace object.
func (i *Interpreter) fetchInstanceMember(inst *Instance, name string) Object {
	if inst.Class != nil && inst.Class.ExternNS != nil {
		v, err := inst.Class.ExternNS.InstanceFetch(inst.Handle, name)
		if err != nil {
			return newError("%v", err)
		}
		return v
	}

	if v, ok := inst.NS.GetLocal(name); ok {
		if fn, isFn := v.(*Function); isFn && fn.Kind() == ast.FuncKindGetter {
			return i.callFunction(fn, nil, nil)
		}
		return v
	}
	if getter, ok := inst.NS.GetLocal(config.GetterPrefix + name); ok {
		if fn, isFn := getter.(*Function); isFn {
			return i.callFunction(fn, nil, nil)
		}
	}
	if inst.Class != nil {
		if fn, ok := inst.Class.getInstanceMethod(name); ok {
			bound := fn.bind(inst)
			if bound.Kind() == ast.FuncKindGetter {
				return i.callFunction(bound, nil, nil)
			}
			return bound
		}
		if fn, ok := inst.Class.getInstanceMethod(config.GetterPrefix + name); ok {
			return i.callFunction(fn.bind(inst), nil, nil)
		}
		if v, ok := inst.Class.getLocalMember(name); ok {
			if fn, isFn := v.(*Function); isFn && fn.Kind() == ast.FuncKindGetter {
				return i.callFunction(fn, nil, nil)
			}
			return v
		}
		if getter, ok := inst.Class.getLocalMember(config.GetterPrefix + name); ok {
			if fn, isFn := getter.(*Function); isFn {
				return i.callFunction(fn, nil, nil)
			}
		}
		return newError("undefined member '%s' on instance of %s", name, inst.Class.Name)
	}
	return newError("undefined member '%s'", name)
}

func (i *Interpreter) assignInstanceMember(inst *Instance, name string, value Object) Object {
	if inst.Class != nil && inst.Class.ExternNS != nil {
		if err := inst.Class.ExternNS.InstanceAssign(inst.Handle, name, value); err != nil {
			return newError("%v", err)
		}
		return NULL
	}

	// A getter registered under its user-facing name must not swallow the
	// write; the matching setter handles it below.
	throughAccessor := false
	if v, ok := inst.NS.GetLocal(name); ok {
		if fn, isFn := v.(*Function); isFn && fn.Kind() == ast.FuncKindGetter {
			throughAccessor = true
		}
	}
	if !throughAccessor {
		if found, err := inst.NS.AssignLocal(name, value); err != nil {
			return err
		} else if found {
			return NULL
		}
	}
	if setter, ok := inst.NS.GetLocal(config.SetterPrefix + name); ok {
		if fn, isFn := setter.(*Function); isFn {
			return i.callFunction(fn, []Object{value}, nil)
		}
	}
	if inst.Class != nil {
		if fn, ok := inst.Class.getInstanceMethod(config.SetterPrefix + name); ok {
			return i.callFunction(fn.bind(inst), []Object{value}, nil)
		}
		for cls := inst.Class; cls != nil; cls = cls.Super {
			if found, err := cls.NS.AssignLocal(name, value); err != nil {
				return err
			} else if found {
				return NULL
			}
			if setter, ok := cls.NS.GetLocal(config.SetterPrefix + name); ok {
				if fn, isFn := setter.(*Function); isFn {
					return i.callFunction(fn, []Object{value}, nil)
				}
			}
		}
		return newError("undefined member '%s' on instance of %s", name, inst.Class.Name)
	}
	return newError("undefined member '%s'", name)
}

// fetchClassMember reads a static member, walking the superclass chain.
// Static getters are invoked.
func (i *Interpreter) fetchClassMember(cls *Class, name string) Object {
	if cls.ExternNS != nil {
		v, err := cls.ExternNS.Fetch(name)
		if err != nil {
			return newError("%v", err)
		}
		return v
	}
	if v, ok := cls.getLocalMember(name); ok {
		if fn, isFn := v.(*Function); isFn && fn.Kind() == ast.FuncKindGetter {
			return i.callFunction(fn, nil, nil)
		}
		return v
	}
	if getter, ok := cls.getLocalMember(config.GetterPrefix + name); ok {
		if fn, isFn := getter.(*Function); isFn {
			return i.callFunction(fn, nil, nil)
		}
	}
	return newError("undefined member '%s' on class %s", name, cls.Name)
}

func (i *Interpreter) assignClassMember(cls *Class, name string, value Object) Object {
	if cls.ExternNS != nil {
		if err := cls.ExternNS.Assign(name, value); err != nil {
			return newError("%v", err)
		}
		return NULL
	}
	for c := cls; c != nil; c = c.Super {
		throughAccessor := false
		if v, ok := c.NS.GetLocal(name); ok {
			if fn, isFn := v.(*Function); isFn && fn.Kind() == ast.FuncKindGetter {
				throughAccessor = true
			}
		}
		if !throughAccessor {
			if found, err := c.NS.AssignLocal(name, value); err != nil {
				return err
			} else if found {
				return NULL
			}
		}
		if setter, ok := c.NS.GetLocal(config.SetterPrefix + name); ok {
			if fn, isFn := setter.(*Function); isFn {
				return i.callFunction(fn, []Object{value}, nil)
			}
		}
	}
	return newError("undefined member '%s' on class %s", name, cls.Name)
}

// evalCallExpression evaluates the callee and the arguments left to right,
// then dispatches: functions are called, classes construct instances.
func (i *Interpreter) evalCallExpression(node *ast.CallExpression, ns *Namespace) Object {
	callee := i.Eval(node.Callee, ns)
	if isError(callee) || isSignal(callee) {
		return callee
	}

	var positional []Object
	var named map[string]Object
	for _, arg := range node.Args {
		if namedArg, ok := arg.(*ast.NamedArgument); ok {
			v := i.Eval(namedArg.Value, ns)
			if isError(v) || isSignal(v) {
				return v
			}
			if named == nil {
				named = make(map[string]Object)
			}
			named[namedArg.Name] = v
			continue
		}
		v := i.Eval(arg, ns)
		if isError(v) || isSignal(v) {
			return v
		}
		positional = append(positional, v)
	}

	switch target := callee.(type) {
	case *Function:
		tok := node.GetToken()
		i.PushCall(target.Inspect(), "", tok.Line, tok.Column)
		result := i.callFunction(target, positional, named)
		i.PopCall()
		return result
	case *Class:
		return i.construct(target, positional, named)
	}
	return i.newErrorWithStack("%s is not callable", runtimeTypeName(callee))
}
