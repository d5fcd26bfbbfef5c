package evaluator

import (
	"fmt"
	"io"
	"os"

	"github.com/funvibe/hetu/internal/ast"
	"github.com/funvibe/hetu/internal/config"
	"github.com/funvibe/hetu/internal/lexer"
	"github.com/funvibe/hetu/internal/modules"
	"github.com/funvibe/hetu/internal/parser"
	"github.com/funvibe/hetu/internal/pipeline"
	"github.com/funvibe/hetu/internal/resolver"
)

// ExternalNamespace is the host-side object backing an external class: four
// operations covering static and per-instance member access. Handles are the
// opaque values returned by the namespace's constructor entry.
type ExternalNamespace interface {
	Fetch(name string) (Object, error)
	Assign(name string, value Object) error
	InstanceFetch(handle interface{}, name string) (Object, error)
	InstanceAssign(handle interface{}, name string, value Object) error
}

// maxEvalDepth bounds Eval nesting to keep the Go stack safe against runaway
// recursion in user programs.
const maxEvalDepth = 10000

// Interpreter is one self-contained evaluation instance: globals, literal
// pool, distance map and the evaluated-files set all belong to it, and its
// AST nodes are never shared with another instance.
type Interpreter struct {
	Out        io.Writer
	Debug      bool
	WorkingDir string

	globals   *Namespace
	constants *ast.ConstTable
	// constCache memoizes the object for each literal pool slot, so
	// evaluating the same Const node twice yields the identical value.
	constCache map[int]Object
	distances  map[ast.Expression]int

	loader         *modules.Loader
	evaluatedFiles map[string]*Namespace

	// externFuncs is the host-callable function table: qualified name ->
	// native callback, surfaced to scripts through external declarations.
	externFuncs map[string]NativeFunction
	// externNamespaces holds host-provided namespace objects for external
	// classes, keyed by class name.
	externNamespaces map[string]ExternalNamespace

	callStack []StackFrame
	evalDepth int
}

func New() *Interpreter {
	i := &Interpreter{
		Out:              os.Stdout,
		globals:          NewNamespace(config.GlobalNamespaceName),
		constants:        ast.NewConstTable(),
		constCache:       make(map[int]Object),
		distances:        make(map[ast.Expression]int),
		evaluatedFiles:   make(map[string]*Namespace),
		externFuncs:      make(map[string]NativeFunction),
		externNamespaces: make(map[string]ExternalNamespace),
	}
	i.loader = modules.NewLoader("", nil)
	return i
}

func (i *Interpreter) Globals() *Namespace     { return i.globals }
func (i *Interpreter) Constants() *ast.ConstTable { return i.constants }

// SetLoader replaces the module loader used for import resolution.
func (i *Interpreter) SetLoader(l *modules.Loader) {
	i.loader = l
	i.WorkingDir = l.WorkingDir
}

// RegisterExternalFunction installs one native callback in the host-callable
// function table under its qualified name.
func (i *Interpreter) RegisterExternalFunction(name string, fn NativeFunction) {
	i.externFuncs[name] = fn
	i.globals.Define(config.ExternalPrefix+name, &Function{Native: fn}, false, true)
}

// BindExternalNamespace registers a host-provided namespace object for an
// external class of the given name.
func (i *Interpreter) BindExternalNamespace(name string, ns ExternalNamespace) {
	i.externNamespaces[name] = ns
}

// DefineGlobal declares a name in the root namespace.
func (i *Interpreter) DefineGlobal(name string, value Object, mutable bool) {
	i.globals.Define(name, value, mutable, true)
}

// NamespaceFor returns the named library namespace, creating it (enclosed by
// globals) on first use.
func (i *Interpreter) NamespaceFor(name string) *Namespace {
	if v, ok := i.globals.GetLocal(name); ok {
		if nv, ok := v.(*NamespaceValue); ok {
			return nv.NS
		}
	}
	ns := NewEnclosedNamespace(name, i.globals)
	i.globals.Define(name, &NamespaceValue{Name: name, NS: ns}, false, true)
	return ns
}

func (i *Interpreter) mergeDistances(distances map[ast.Expression]int) {
	for node, d := range distances {
		i.distances[node] = d
	}
}

// EvalSource lexes, parses, resolves and evaluates one unit of source text
// into the target namespace (globals when ns is nil). It returns the last
// statement's value.
func (i *Interpreter) EvalSource(source, fileName string, style pipeline.ParseStyle, ns *Namespace) (Object, error) {
	ctx := pipeline.NewPipelineContext(source)
	ctx.FilePath = fileName
	ctx.Style = style
	ctx.Constants = i.constants

	p := pipeline.New(
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
		&resolver.ResolverProcessor{},
	)
	ctx = p.Run(ctx)

	if len(ctx.Errors) > 0 {
		return nil, ctx.Errors[0]
	}
	i.mergeDistances(ctx.Distances)

	if ns == nil {
		ns = i.globals
	}
	result := i.evalProgram(ctx.AstRoot, ns)
	if err, ok := result.(*Error); ok {
		if err.File == "" {
			err.File = fileName
		}
		return nil, err
	}
	return result, nil
}

// EvalFile resolves the path against the working directory, then evaluates
// the file as a library. Files already evaluated by this interpreter are
// skipped and their namespace reused.
func (i *Interpreter) EvalFile(path, libName string, ns *Namespace) (Object, error) {
	source, fullPath, err := i.loader.Load(path)
	if err != nil {
		return nil, err
	}
	if _, ok := i.evaluatedFiles[fullPath]; ok {
		return NULL, nil
	}
	if ns == nil {
		if libName != "" {
			ns = i.NamespaceFor(libName)
		} else {
			ns = i.globals
		}
	}
	i.evaluatedFiles[fullPath] = ns
	return i.EvalSource(source, fullPath, pipeline.StyleLibrary, ns)
}

// Invoke calls a script function by name, optionally qualified by a class
// name for static methods. Script errors are caught and reported as Go
// errors; flow signals never surface here.
func (i *Interpreter) Invoke(funcName, className string, args []Object) (Object, error) {
	var callee Object
	if className != "" {
		v, ok := i.globals.Get(className)
		if !ok {
			return nil, fmt.Errorf("undefined class '%s'", className)
		}
		cls, ok := v.(*Class)
		if !ok {
			return nil, fmt.Errorf("'%s' is not a class", className)
		}
		member := i.fetchClassMember(cls, funcName)
		if isError(member) {
			return nil, member.(*Error)
		}
		callee = member
	} else {
		v, ok := i.globals.Get(funcName)
		if !ok {
			return nil, fmt.Errorf("undefined function '%s'", funcName)
		}
		callee = v
	}

	fn, ok := callee.(*Function)
	if !ok {
		return nil, fmt.Errorf("'%s' is not callable", funcName)
	}
	result := i.callFunction(fn, args, nil)
	if err, ok := result.(*Error); ok {
		return nil, err
	}
	return result, nil
}

// Eval dispatches one AST node. Statement evaluation yields the statement's
// value, an *Error, or one of the nonlocal-exit signals.
func (i *Interpreter) Eval(node ast.Node, ns *Namespace) Object {
	i.evalDepth++
	if i.evalDepth > maxEvalDepth {
		i.evalDepth--
		return newError("maximum recursion depth exceeded")
	}
	defer func() { i.evalDepth-- }()

	obj := i.evalCore(node, ns)
	if err, ok := obj.(*Error); ok {
		if err.Line == 0 && node != nil {
			if provider, ok := node.(ast.TokenProvider); ok {
				tok := provider.GetToken()
				err.Line = tok.Line
				err.Column = tok.Column
			}
		}
	}
	return obj
}

func (i *Interpreter) evalCore(node ast.Node, ns *Namespace) Object {
	switch node := node.(type) {
	// Statements
	case *ast.Program:
		return i.evalProgram(node, ns)
	case *ast.ImportStatement:
		return i.evalImportStatement(node, ns)
	case *ast.VarDeclStatement:
		return i.evalVarDeclStatement(node, ns)
	case *ast.FuncDeclStatement:
		return i.evalFuncDeclStatement(node, ns)
	case *ast.ClassDeclStatement:
		return i.evalClassDeclStatement(node, ns)
	case *ast.ExpressionStatement:
		return i.Eval(node.Expression, ns)
	case *ast.BlockStatement:
		return i.evalBlockStatement(node, ns)
	case *ast.ReturnStatement:
		return i.evalReturnStatement(node, ns)
	case *ast.IfStatement:
		return i.evalIfStatement(node, ns)
	case *ast.WhileStatement:
		return i.evalWhileStatement(node, ns)
	case *ast.BreakStatement:
		return &BreakSignal{}
	case *ast.ContinueStatement:
		return &ContinueSignal{}

	// Expressions
	case *ast.NullLiteral:
		return NULL
	case *ast.ConstExpression:
		return i.evalConstExpression(node)
	case *ast.GroupExpression:
		return i.Eval(node.Inner, ns)
	case *ast.ListLiteral:
		return i.evalListLiteral(node, ns)
	case *ast.MapLiteral:
		return i.evalMapLiteral(node, ns)
	case *ast.Identifier:
		return i.evalIdentifier(node, ns)
	case *ast.ThisExpression:
		return i.evalThisExpression(node, ns)
	case *ast.AssignExpression:
		return i.evalAssignExpression(node, ns)
	case *ast.PrefixExpression:
		return i.evalPrefixExpression(node, ns)
	case *ast.InfixExpression:
		return i.evalInfixExpression(node, ns)
	case *ast.IndexExpression:
		return i.evalIndexExpression(node, ns)
	case *ast.IndexAssignExpression:
		return i.evalIndexAssignExpression(node, ns)
	case *ast.MemberExpression:
		return i.evalMemberExpression(node, ns)
	case *ast.MemberAssignExpression:
		return i.evalMemberAssignExpression(node, ns)
	case *ast.CallExpression:
		return i.evalCallExpression(node, ns)
	case *ast.NamedArgument:
		return i.Eval(node.Value, ns)
	}
	return newError("unhandled syntax node %T", node)
}

// evalConstExpression reads the literal pool; the object for each slot is
// memoized so a Const node evaluates to the identical value every time.
func (i *Interpreter) evalConstExpression(node *ast.ConstExpression) Object {
	if obj, ok := i.constCache[node.Index]; ok {
		return obj
	}
	var obj Object
	switch v := i.constants.Get(node.Index).(type) {
	case float64:
		obj = &Number{Value: v}
	case string:
		obj = &String{Value: v}
	case bool:
		obj = nativeBoolToBooleanObject(v)
	default:
		return newError("invalid literal pool index %d", node.Index)
	}
	i.constCache[node.Index] = obj
	return obj
}
