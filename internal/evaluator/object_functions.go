package evaluator

import (
	"strings"

	"github.com/funvibe/hetu/internal/ast"
	"github.com/funvibe/hetu/internal/config"
)

// NativeFunction is the host-side callable bound to an external declaration.
// The receiver is the instance for bound methods and nil otherwise.
type NativeFunction func(receiver Object, args []Object, named map[string]Object) Object

// Function wraps a declaration plus the namespace in effect when the
// declaration was evaluated; that captured context is what gives closures
// their lexical scope. External functions additionally carry a native
// callback and execute it instead of a body.
type Function struct {
	Decl    *ast.FuncDeclStatement
	Context *Namespace // captured declaration context, or the receiver for bound methods
	Native  NativeFunction
	Recv    *Instance // receiver for bound methods, nil otherwise
}

func (f *Function) Type() ObjectType { return FUNCTION_OBJ }
func (f *Function) Inspect() string {
	if f.Decl == nil {
		return "function"
	}
	params := make([]string, len(f.Decl.Params))
	for i, p := range f.Decl.Params {
		params[i] = p.Name.Value
	}
	return "function " + f.Decl.Name + "(" + strings.Join(params, ", ") + ")"
}

// Kind reports the declaration form; natives without a declaration count as
// normal functions.
func (f *Function) Kind() ast.FuncKind {
	if f.Decl == nil {
		return ast.FuncKindNormal
	}
	return f.Decl.Kind
}

// bind returns a copy of the function whose activations enclose the receiver
// instance's namespace.
func (f *Function) bind(receiver *Instance) *Function {
	return &Function{
		Decl:    f.Decl,
		Context: receiver.NS,
		Native:  f.Native,
		Recv:    receiver,
	}
}

// internalName is the name a function declaration registers under: getters
// and setters use their reserved prefixes.
func internalName(decl *ast.FuncDeclStatement) string {
	switch decl.Kind {
	case ast.FuncKindGetter:
		return config.GetterPrefix + decl.Name
	case ast.FuncKindSetter:
		return config.SetterPrefix + decl.Name
	}
	return decl.Name
}

// NamespaceValue surfaces a namespace (an imported library) as a value.
type NamespaceValue struct {
	Name string
	NS   *Namespace
}

func (nv *NamespaceValue) Type() ObjectType { return NAMESPACE_OBJ }
func (nv *NamespaceValue) Inspect() string  { return "namespace " + nv.Name }
