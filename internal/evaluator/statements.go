package evaluator

import (
	"github.com/funvibe/hetu/internal/ast"
	"github.com/funvibe/hetu/internal/config"
	"github.com/funvibe/hetu/internal/pipeline"
)

func (i *Interpreter) evalProgram(program *ast.Program, ns *Namespace) Object {
	var result Object = NULL
	for _, stmt := range program.Statements {
		result = i.Eval(stmt, ns)
		if isError(result) {
			return result
		}
		if isSignal(result) {
			// Flow signals must never escape to the host.
			return newError("unexpected '%s' outside of its context", result.Inspect())
		}
	}
	return result
}

func (i *Interpreter) evalBlockStatement(block *ast.BlockStatement, ns *Namespace) Object {
	inner := NewEnclosedNamespace("", ns)
	var result Object = NULL
	for _, stmt := range block.Statements {
		result = i.Eval(stmt, inner)
		if isError(result) || isSignal(result) {
			return result
		}
	}
	return result
}

func (i *Interpreter) evalVarDeclStatement(stmt *ast.VarDeclStatement, ns *Namespace) Object {
	if stmt.Initializer == nil {
		ns.Define(stmt.Name.Value, NULL, stmt.IsMutable, false)
		return NULL
	}
	value := i.Eval(stmt.Initializer, ns)
	if isError(value) || isSignal(value) {
		return value
	}
	ns.Define(stmt.Name.Value, value, stmt.IsMutable, true)
	return NULL
}

// evalFuncDeclStatement installs a function value capturing the current
// namespace as its declaration context. External declarations bind to the
// host-callable table entry of the same qualified name instead of a body.
func (i *Interpreter) evalFuncDeclStatement(stmt *ast.FuncDeclStatement, ns *Namespace) Object {
	fn, errObj := i.newFunctionValue(stmt, ns)
	if errObj != nil {
		return errObj
	}
	ns.Define(internalName(stmt), fn, false, true)
	// Getters are also reachable under their user-facing name, so unprefixed
	// references from sibling bodies read as the computed value.
	if stmt.Kind == ast.FuncKindGetter {
		ns.Define(stmt.Name, fn, false, true)
	}
	return NULL
}

func (i *Interpreter) evalReturnStatement(stmt *ast.ReturnStatement, ns *Namespace) Object {
	if stmt.Value == nil {
		return &ReturnSignal{Value: NULL}
	}
	value := i.Eval(stmt.Value, ns)
	if isError(value) || isSignal(value) {
		return value
	}
	return &ReturnSignal{Value: value}
}

func (i *Interpreter) evalIfStatement(stmt *ast.IfStatement, ns *Namespace) Object {
	cond := i.Eval(stmt.Condition, ns)
	if isError(cond) || isSignal(cond) {
		return cond
	}
	boolean, ok := cond.(*Boolean)
	if !ok {
		return newError("condition is not a boolean (got %s)", runtimeTypeName(cond))
	}
	if boolean.Value {
		return i.Eval(stmt.Consequence, ns)
	}
	if stmt.Alternative != nil {
		return i.Eval(stmt.Alternative, ns)
	}
	return NULL
}

func (i *Interpreter) evalWhileStatement(stmt *ast.WhileStatement, ns *Namespace) Object {
	for {
		cond := i.Eval(stmt.Condition, ns)
		if isError(cond) || isSignal(cond) {
			return cond
		}
		boolean, ok := cond.(*Boolean)
		if !ok {
			return newError("condition is not a boolean (got %s)", runtimeTypeName(cond))
		}
		if !boolean.Value {
			return NULL
		}
		result := i.Eval(stmt.Body, ns)
		if isError(result) {
			return result
		}
		switch result.(type) {
		case *BreakSignal:
			return NULL
		case *ContinueSignal:
			continue
		case *ReturnSignal:
			return result
		}
	}
}

// evalImportStatement resolves the path against the working directory,
// skipping files already evaluated by this interpreter. With an alias the
// file evaluates into its own library namespace; without one it evaluates
// into the root namespace.
func (i *Interpreter) evalImportStatement(stmt *ast.ImportStatement, ns *Namespace) Object {
	fullPath := i.loader.Resolve(stmt.Path)
	if target, ok := i.evaluatedFiles[fullPath]; ok {
		if stmt.Alias != "" && target != i.globals {
			ns.Define(stmt.Alias, &NamespaceValue{Name: stmt.Alias, NS: target}, false, true)
		}
		return NULL
	}

	source, _, err := i.loader.Load(stmt.Path)
	if err != nil {
		return newError("cannot import '%s': %v", stmt.Path, err)
	}

	target := i.globals
	if stmt.Alias != "" {
		target = NewEnclosedNamespace(stmt.Alias, i.globals)
		ns.Define(stmt.Alias, &NamespaceValue{Name: stmt.Alias, NS: target}, false, true)
	}
	i.evaluatedFiles[fullPath] = target

	if _, err := i.EvalSource(source, fullPath, pipeline.StyleLibrary, target); err != nil {
		if evalErr, ok := err.(*Error); ok {
			return evalErr
		}
		return newError("import '%s' failed: %v", stmt.Path, err)
	}
	return NULL
}

// evalClassDeclStatement runs the class declaration sequence: declare the
// class name, resolve the superclass, copy its field declarations, execute
// static initializers, install static methods, record field declarations and
// install instance method templates. The class value is mutable during this
// sequence only.
func (i *Interpreter) evalClassDeclStatement(stmt *ast.ClassDeclStatement, ns *Namespace) Object {
	cls := &Class{
		Name:     stmt.Name,
		Decl:     stmt,
		IsExtern: stmt.IsExtern,
		Methods:  make(map[string]*Function),
	}
	ns.Define(stmt.Name, cls, false, true)

	// Superclass defaults to Object when declared and available.
	if stmt.SuperClass != nil {
		v, ok := ns.Get(stmt.SuperClass.Name)
		if !ok {
			return newError("undefined superclass '%s'", stmt.SuperClass.Name)
		}
		super, ok := v.(*Class)
		if !ok {
			return newError("'%s' is not a class", stmt.SuperClass.Name)
		}
		cls.Super = super
	} else if stmt.Name != config.ObjectTypeName {
		if v, ok := i.globals.Get(config.ObjectTypeName); ok {
			if super, ok := v.(*Class); ok {
				cls.Super = super
			}
		}
	}

	outer := ns
	if cls.Super != nil {
		outer = cls.Super.NS
	}
	cls.NS = NewEnclosedNamespace(stmt.Name, outer)

	if cls.Super != nil {
		cls.InstanceVars = append(cls.InstanceVars, cls.Super.InstanceVars...)
	}

	if stmt.IsExtern {
		if extNS, ok := i.externNamespaces[stmt.Name]; ok {
			cls.ExternNS = extNS
			return NULL
		}
		// No bound namespace: members bind individually to the
		// host-callable function table, the way built-in classes do.
		return i.installExternClassMembers(cls, stmt)
	}

	// Static variable initializers execute in the class namespace.
	for _, v := range stmt.Variables {
		if !v.IsStatic {
			cls.InstanceVars = append(cls.InstanceVars, v)
			continue
		}
		if result := i.evalVarDeclStatement(v, cls.NS); isError(result) {
			return result
		}
	}

	// Static methods enter the class namespace; instance methods are recorded
	// as templates only, bound into each instance at construction. The two
	// member spaces stay disjoint.
	for _, m := range stmt.Methods {
		if m.IsStatic {
			if result := i.evalFuncDeclStatement(m, cls.NS); isError(result) {
				return result
			}
			continue
		}
		fn, errObj := i.newFunctionValue(m, cls.NS)
		if errObj != nil {
			return errObj
		}
		cls.Methods[internalName(m)] = fn
	}
	return NULL
}
