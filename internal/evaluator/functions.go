package evaluator

import (
	"github.com/funvibe/hetu/internal/ast"
	"github.com/funvibe/hetu/internal/config"
)

// newFunctionValue builds the function value for a declaration: it captures
// the declaration context, and for external declarations binds the
// host-callable table entry of the qualified name '<Class>.<member>' (or the
// bare name for free functions).
func (i *Interpreter) newFunctionValue(decl *ast.FuncDeclStatement, ctx *Namespace) (*Function, *Error) {
	fn := &Function{Decl: decl, Context: ctx}
	if decl.IsExtern {
		qualified := decl.Name
		if decl.ClassName != "" {
			qualified = decl.ClassName + "." + decl.Name
		}
		native, ok := i.externFuncs[qualified]
		if !ok {
			return nil, newError("external function '%s' is not registered", qualified)
		}
		fn.Native = native
	}
	return fn, nil
}

// callFunction creates an activation namespace enclosed by the function's
// captured declaration context, binds the parameters, and executes the body.
// Body statements run directly in the activation, so a parameter reference in
// the body resolves at distance zero. External functions dispatch to their
// native callback instead.
func (i *Interpreter) callFunction(fn *Function, positional []Object, named map[string]Object) Object {
	if fn.Native != nil {
		if fn.Decl != nil && fn.Decl.Arity > 0 && len(positional) < fn.Decl.Arity {
			return i.newErrorWithStack("too few arguments for '%s': expected %d, got %d",
				fn.Decl.Name, fn.Decl.Arity, len(positional))
		}
		var receiver Object
		if fn.Recv != nil {
			receiver = fn.Recv
		}
		return fn.Native(receiver, positional, named)
	}
	if fn.Decl == nil || fn.Decl.Body == nil {
		return i.newErrorWithStack("function has no body")
	}

	activation := NewEnclosedNamespace(fn.Decl.Name, fn.Context)
	if err := i.bindParameters(fn.Decl, activation, positional, named); err != nil {
		return err
	}

	for _, stmt := range fn.Decl.Body.Statements {
		result := i.Eval(stmt, activation)
		if isError(result) {
			return result
		}
		switch sig := result.(type) {
		case *ReturnSignal:
			if fn.Kind() == ast.FuncKindConstructor {
				// The constructor's return value is the instance itself.
				return NULL
			}
			return sig.Value
		case *BreakSignal:
			return newError("'break' outside of a loop")
		case *ContinueSignal:
			return newError("'continue' outside of a loop")
		}
	}
	return NULL
}

// bindParameters implements the four-step argument binding: required
// positionals from the front of the list, optional positionals from the
// remainder (falling back to defaults evaluated in the activation scope),
// named parameters from the named-argument map, and a variadic parameter
// taking the remaining positional arguments as a list.
func (i *Interpreter) bindParameters(decl *ast.FuncDeclStatement, activation *Namespace, positional []Object, named map[string]Object) *Error {
	var unknownNamed map[string]bool
	if len(named) > 0 {
		unknownNamed = make(map[string]bool, len(named))
		for name := range named {
			unknownNamed[name] = true
		}
	}

	posIdx := 0
	for _, param := range decl.Params {
		switch {
		case param.IsVariadicParam:
			rest := make([]Object, len(positional)-posIdx)
			copy(rest, positional[posIdx:])
			posIdx = len(positional)
			activation.Define(param.Name.Value, &List{Elements: rest}, true, true)

		case param.IsNamedParam:
			if v, ok := named[param.Name.Value]; ok {
				delete(unknownNamed, param.Name.Value)
				activation.Define(param.Name.Value, v, true, true)
				continue
			}
			v, err := i.evalParamDefault(param, activation)
			if err != nil {
				return err
			}
			activation.Define(param.Name.Value, v, true, true)

		case param.IsOptionalParam:
			if posIdx < len(positional) {
				activation.Define(param.Name.Value, positional[posIdx], true, true)
				posIdx++
				continue
			}
			v, err := i.evalParamDefault(param, activation)
			if err != nil {
				return err
			}
			activation.Define(param.Name.Value, v, true, true)

		default:
			if posIdx >= len(positional) {
				return i.newErrorWithStack("too few arguments for '%s': expected %d, got %d",
					decl.Name, decl.Arity, len(positional))
			}
			activation.Define(param.Name.Value, positional[posIdx], true, true)
			posIdx++
		}
	}

	if posIdx < len(positional) {
		return i.newErrorWithStack("too many arguments for '%s': expected %d, got %d",
			decl.Name, len(decl.Params), len(positional))
	}
	for name := range unknownNamed {
		return i.newErrorWithStack("unknown named argument '%s' for '%s'", name, decl.Name)
	}
	return nil
}

func (i *Interpreter) evalParamDefault(param *ast.VarDeclStatement, activation *Namespace) (Object, *Error) {
	if param.Initializer == nil {
		return NULL, nil
	}
	v := i.Eval(param.Initializer, activation)
	if err, ok := v.(*Error); ok {
		return nil, err
	}
	return v, nil
}

// newInstance allocates an instance namespace enclosed by the class and
// installs this plus bound copies of every instance method, superclass
// methods first so overrides win.
func (i *Interpreter) newInstance(cls *Class) *Instance {
	inst := &Instance{Class: cls, NS: NewEnclosedNamespace(cls.Name, cls.NS)}
	inst.NS.Define(config.ThisName, inst, false, true)

	var chain []*Class
	for c := cls; c != nil; c = c.Super {
		chain = append(chain, c)
	}
	for idx := len(chain) - 1; idx >= 0; idx-- {
		c := chain[idx]
		if c.Decl == nil {
			continue
		}
		for _, m := range c.Decl.Methods {
			if m.IsStatic {
				continue
			}
			if fn, ok := c.Methods[internalName(m)]; ok {
				bound := fn.bind(inst)
				inst.NS.Define(internalName(m), bound, false, true)
				if m.Kind == ast.FuncKindGetter {
					inst.NS.Define(m.Name, bound, false, true)
				}
			}
		}
	}
	return inst
}

// construct calls a class value: allocate the instance, evaluate every
// instance-variable initializer in declaration order with this bound, then
// run the constructor. The constructor's return value is the instance itself.
func (i *Interpreter) construct(cls *Class, positional []Object, named map[string]Object) Object {
	if cls.ExternNS != nil {
		return i.constructExternal(cls, positional, named)
	}
	if cls.IsExtern {
		return i.newErrorWithStack("external class '%s' has no bound namespace to construct from", cls.Name)
	}

	inst := i.newInstance(cls)

	for _, decl := range cls.InstanceVars {
		if decl.Initializer == nil {
			inst.NS.Define(decl.Name.Value, NULL, decl.IsMutable, false)
			continue
		}
		value := i.Eval(decl.Initializer, inst.NS)
		if isError(value) {
			return value
		}
		inst.NS.Define(decl.Name.Value, value, decl.IsMutable, true)
	}

	if ctor, ok := inst.NS.GetLocal(config.ConstructorName); ok {
		if fn, isFn := ctor.(*Function); isFn {
			if result := i.callFunction(fn, positional, named); isError(result) {
				return result
			}
		}
	} else if len(positional) > 0 || len(named) > 0 {
		return i.newErrorWithStack("class '%s' has no constructor taking arguments", cls.Name)
	}
	return inst
}

// constructExternal constructs an instance of a host-namespace-backed class:
// the namespace's constructor entry is fetched and called, and its return
// value becomes the instance's opaque handle.
func (i *Interpreter) constructExternal(cls *Class, positional []Object, named map[string]Object) Object {
	ctorObj, err := cls.ExternNS.Fetch(config.ConstructorName)
	if err != nil {
		return i.newErrorWithStack("cannot construct '%s': %v", cls.Name, err)
	}
	ctor, ok := ctorObj.(*Function)
	if !ok || ctor.Native == nil {
		return i.newErrorWithStack("external class '%s' has no callable constructor", cls.Name)
	}
	result := ctor.Native(nil, positional, named)
	if isError(result) {
		return result
	}

	inst := &Instance{Class: cls, NS: NewEnclosedNamespace(cls.Name, cls.NS)}
	if host, ok := result.(*HostObject); ok {
		inst.Handle = host.Value
	} else {
		inst.Handle = result
	}
	return inst
}

// wrapPrimitive gives a bare primitive a transient instance shell of its
// built-in class, carrying the underlying value. Mutating a wrapped list
// mutates the underlying list.
func (i *Interpreter) wrapPrimitive(obj Object) Object {
	className := runtimeTypeName(obj)
	v, ok := i.globals.Get(className)
	if !ok {
		return newError("built-in class '%s' is not loaded", className)
	}
	cls, ok := v.(*Class)
	if !ok {
		return newError("'%s' is not a class", className)
	}
	inst := i.newInstance(cls)
	inst.Wrapped = obj
	return inst
}

// installExternClassMembers binds each member of an external class that has
// no bound namespace to the host-callable function table entry
// '<Class>.<member>', the way built-in classes register their method tables.
// Static members enter the class namespace; instance members are recorded as
// templates only, the same split applied to script classes.
func (i *Interpreter) installExternClassMembers(cls *Class, stmt *ast.ClassDeclStatement) Object {
	for _, v := range stmt.Variables {
		if !v.IsStatic {
			cls.InstanceVars = append(cls.InstanceVars, v)
		}
	}
	for _, m := range stmt.Methods {
		fn, errObj := i.newFunctionValue(m, cls.NS)
		if errObj != nil {
			return errObj
		}
		if m.IsStatic {
			cls.NS.Define(internalName(m), fn, false, true)
			if m.Kind == ast.FuncKindGetter {
				cls.NS.Define(m.Name, fn, false, true)
			}
			continue
		}
		cls.Methods[internalName(m)] = fn
	}
	return NULL
}
