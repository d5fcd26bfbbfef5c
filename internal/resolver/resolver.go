package resolver

import (
	"fmt"

	"github.com/funvibe/hetu/internal/ast"
	"github.com/funvibe/hetu/internal/config"
	"github.com/funvibe/hetu/internal/diagnostics"
	"github.com/funvibe/hetu/internal/pipeline"
)

// Resolver walks the AST after parsing and before evaluation, computing the
// lexical distance of every symbol use-site that refers to a block-scoped
// declaration. Names it cannot find in any enclosing block scope are left for
// the evaluator's global lookup.
//
// The block stack mirrors the evaluator's namespace nesting exactly: one
// scope per block, one per function activation (parameters and body
// statements share it), one per class body and one per instance.
type Resolver struct {
	ctx       *pipeline.PipelineContext
	scopes    []map[string]bool // name -> defined?
	distances map[ast.Expression]int

	funcKinds []ast.FuncKind // stack of enclosing function kinds
	inClass   bool
}

func New(ctx *pipeline.PipelineContext) *Resolver {
	return &Resolver{
		ctx:       ctx,
		distances: make(map[ast.Expression]int),
	}
}

// Resolve analyzes the program and returns the distance map keyed by
// expression node identity.
func (r *Resolver) Resolve(program *ast.Program) map[ast.Expression]int {
	// Top-level declarations live in the target namespace, not in a block
	// scope, so no scope is pushed here; use-sites that stay unresolved fall
	// back to the runtime namespace chain.
	for _, stmt := range program.Statements {
		r.resolveStatement(stmt)
	}
	return r.distances
}

func (r *Resolver) errorf(code diagnostics.ErrorCode, node ast.TokenProvider, format string, args ...interface{}) {
	err := diagnostics.NewError(code, node.GetToken(), fmt.Sprintf(format, args...))
	err.File = r.ctx.FilePath
	r.ctx.Errors = append(r.ctx.Errors, err)
}

func (r *Resolver) beginScope() {
	r.scopes = append(r.scopes, make(map[string]bool))
}

func (r *Resolver) endScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

// declare marks a name as existing but not yet initialized in the innermost
// scope. Declaring twice in the same block is an error.
func (r *Resolver) declare(name string, node ast.TokenProvider) {
	if len(r.scopes) == 0 {
		return
	}
	scope := r.scopes[len(r.scopes)-1]
	if _, ok := scope[name]; ok {
		r.errorf(diagnostics.ErrR001, node, "'%s' is already declared in this scope", name)
		return
	}
	scope[name] = false
}

func (r *Resolver) define(name string) {
	if len(r.scopes) == 0 {
		return
	}
	r.scopes[len(r.scopes)-1][name] = true
}

// resolveLocal records the lexical distance for a use-site: the number of
// enclosing scopes between the use-site and the declaring scope, innermost
// being zero. Returns false when the name is in no block scope.
func (r *Resolver) resolveLocal(expr ast.Expression, name string) bool {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name]; ok {
			r.distances[expr] = len(r.scopes) - 1 - i
			return true
		}
	}
	return false
}

func (r *Resolver) currentFuncKind() (ast.FuncKind, bool) {
	if len(r.funcKinds) == 0 {
		return 0, false
	}
	return r.funcKinds[len(r.funcKinds)-1], true
}

func (r *Resolver) resolveStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.ImportStatement:
		// Paths resolve at evaluation time.
	case *ast.VarDeclStatement:
		r.resolveVarDecl(s)
	case *ast.FuncDeclStatement:
		r.declare(s.Name, s)
		r.define(s.Name)
		r.resolveFunctionBody(s)
	case *ast.ClassDeclStatement:
		r.declare(s.Name, s)
		r.define(s.Name)
		r.resolveClass(s)
	case *ast.ExpressionStatement:
		r.resolveExpression(s.Expression)
	case *ast.BlockStatement:
		r.beginScope()
		r.resolveBlock(s.Statements)
		r.endScope()
	case *ast.ReturnStatement:
		kind, inFunc := r.currentFuncKind()
		if !inFunc {
			r.errorf(diagnostics.ErrR004, s, "return outside of a function")
			return
		}
		if s.Value != nil {
			switch kind {
			case ast.FuncKindConstructor:
				r.errorf(diagnostics.ErrR005, s, "constructor cannot return a value")
			case ast.FuncKindProcedure:
				r.errorf(diagnostics.ErrR005, s, "procedure cannot return a value")
			}
			r.resolveExpression(s.Value)
		}
	case *ast.IfStatement:
		r.resolveExpression(s.Condition)
		r.resolveStatement(s.Consequence)
		if s.Alternative != nil {
			r.resolveStatement(s.Alternative)
		}
	case *ast.WhileStatement:
		r.resolveExpression(s.Condition)
		r.resolveStatement(s.Body)
	case *ast.BreakStatement, *ast.ContinueStatement:
		// Caught by the innermost loop at evaluation time.
	}
}

// resolveBlock resolves a statement sequence inside an already-pushed scope.
// Function and class declarations are visible from the start of the sequence
// and their bodies are resolved after the sequence completes, so siblings can
// reference each other regardless of order.
func (r *Resolver) resolveBlock(stmts []ast.Statement) {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.FuncDeclStatement:
			r.declare(s.Name, s)
			r.define(s.Name)
		case *ast.ClassDeclStatement:
			r.declare(s.Name, s)
			r.define(s.Name)
		}
	}

	var deferred []func()
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.FuncDeclStatement:
			fn := s
			deferred = append(deferred, func() { r.resolveFunctionBody(fn) })
		case *ast.ClassDeclStatement:
			cd := s
			deferred = append(deferred, func() { r.resolveClass(cd) })
		default:
			r.resolveStatement(stmt)
		}
	}
	for _, resolve := range deferred {
		resolve()
	}
}

// resolveVarDecl resolves the initializer with the declared name visible but
// not yet defined, so a reference to the variable inside its own initializer
// is caught.
func (r *Resolver) resolveVarDecl(s *ast.VarDeclStatement) {
	r.declare(s.Name.Value, s)
	if s.Initializer != nil {
		r.resolveExpression(s.Initializer)
	}
	r.define(s.Name.Value)
}

// resolveFunctionBody pushes one scope holding the parameters; body
// statements share it, so a parameter reference in the body resolves at
// distance zero.
func (r *Resolver) resolveFunctionBody(fn *ast.FuncDeclStatement) {
	if fn.Body == nil {
		return // external declaration, no body to resolve
	}
	r.funcKinds = append(r.funcKinds, fn.Kind)
	r.beginScope()
	for _, param := range fn.Params {
		r.declare(param.Name.Value, param)
		if param.Initializer != nil {
			r.resolveExpression(param.Initializer)
		}
		r.define(param.Name.Value)
	}
	r.resolveBlock(fn.Body.Statements)
	r.endScope()
	r.funcKinds = r.funcKinds[:len(r.funcKinds)-1]
}

// resolveClass mirrors the evaluator's class processing: a class scope
// holding super and the static members, then an instance scope holding this
// and the instance members. Method internal names are declared before any
// body is resolved; getters and setters additionally declare their
// user-facing name so unprefixed references work from sibling bodies.
func (r *Resolver) resolveClass(cd *ast.ClassDeclStatement) {
	if cd.SuperClass != nil && cd.SuperClass.Name == cd.Name {
		r.errorf(diagnostics.ErrR007, cd, "class '%s' cannot extend itself", cd.Name)
		return
	}

	r.beginScope() // class scope: super + statics
	if cd.SuperClass != nil {
		r.declare(config.SuperName, cd)
		r.define(config.SuperName)
	}

	for _, v := range cd.Variables {
		if v.IsStatic {
			r.resolveVarDecl(v)
		}
	}
	for _, m := range cd.Methods {
		if m.IsStatic {
			r.declareMethodNames(m)
		}
	}
	for _, m := range cd.Methods {
		if m.IsStatic {
			r.resolveFunctionBody(m)
		}
	}

	r.beginScope() // instance scope: this + instance members
	r.declare(config.ThisName, cd)
	r.define(config.ThisName)

	wasInClass := r.inClass
	r.inClass = true

	for _, v := range cd.Variables {
		if !v.IsStatic {
			r.resolveVarDecl(v)
		}
	}
	for _, m := range cd.Methods {
		if !m.IsStatic {
			r.declareMethodNames(m)
		}
	}
	for _, m := range cd.Methods {
		if !m.IsStatic {
			r.resolveFunctionBody(m)
		}
	}

	r.inClass = wasInClass
	r.endScope()
	r.endScope()
}

func (r *Resolver) declareMethodNames(m *ast.FuncDeclStatement) {
	switch m.Kind {
	case ast.FuncKindGetter:
		r.declare(config.GetterPrefix+m.Name, m)
		r.define(config.GetterPrefix + m.Name)
		r.declare(m.Name, m)
		r.define(m.Name)
	case ast.FuncKindSetter:
		r.declare(config.SetterPrefix+m.Name, m)
		r.define(config.SetterPrefix + m.Name)
	default:
		r.declare(m.Name, m)
		r.define(m.Name)
	}
}

func (r *Resolver) resolveExpression(expr ast.Expression) {
	switch e := expr.(type) {
	case *ast.NullLiteral, *ast.ConstExpression:
		// Literals carry no names.
	case *ast.Identifier:
		if len(r.scopes) > 0 {
			scope := r.scopes[len(r.scopes)-1]
			if defined, ok := scope[e.Value]; ok && !defined {
				r.errorf(diagnostics.ErrR003, e, "cannot read '%s' in its own initializer", e.Value)
				return
			}
		}
		r.resolveLocal(e, e.Value)
	case *ast.ThisExpression:
		if !r.resolveLocal(e, config.ThisName) {
			r.errorf(diagnostics.ErrR006, e, "'this' outside of a class instance context")
		}
	case *ast.AssignExpression:
		r.resolveExpression(e.Value)
		r.resolveLocal(e, e.Name.Value)
	case *ast.GroupExpression:
		r.resolveExpression(e.Inner)
	case *ast.ListLiteral:
		for _, el := range e.Elements {
			r.resolveExpression(el)
		}
	case *ast.MapLiteral:
		for i := range e.Keys {
			r.resolveExpression(e.Keys[i])
			r.resolveExpression(e.Values[i])
		}
	case *ast.PrefixExpression:
		r.resolveExpression(e.Right)
	case *ast.InfixExpression:
		r.resolveExpression(e.Left)
		r.resolveExpression(e.Right)
	case *ast.IndexExpression:
		r.resolveExpression(e.Collection)
		r.resolveExpression(e.Key)
	case *ast.IndexAssignExpression:
		r.resolveExpression(e.Collection)
		r.resolveExpression(e.Key)
		r.resolveExpression(e.Value)
	case *ast.MemberExpression:
		r.resolveExpression(e.Object)
	case *ast.MemberAssignExpression:
		r.resolveExpression(e.Object)
		r.resolveExpression(e.Value)
	case *ast.NamedArgument:
		r.resolveExpression(e.Value)
	case *ast.CallExpression:
		r.resolveExpression(e.Callee)
		for _, arg := range e.Args {
			r.resolveExpression(arg)
		}
	}
}
