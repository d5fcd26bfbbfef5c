package evaluator

import (
	"github.com/funvibe/hetu/internal/ast"
)

// Class is a namespace whose entries are static members and methods, plus the
// ordered list of instance-variable declarations inherited from its optional
// superclass. The class namespace encloses the superclass namespace when one
// exists, so inherited statics resolve through the ordinary chain walk.
//
// Instance methods never enter the class namespace: their templates live in
// Methods, keyed by internal name, and are bound into each instance at
// construction. Keeping the two member spaces disjoint means a static and an
// instance method may share a name without clobbering each other, and
// instance methods are not reachable through the class value.
type Class struct {
	Name  string
	Decl  *ast.ClassDeclStatement
	Super *Class
	NS    *Namespace

	// Methods holds the instance-method templates, keyed by internal name.
	Methods map[string]*Function

	// InstanceVars holds the not-yet-initialized field declarations,
	// superclass fields first, in declaration order.
	InstanceVars []*ast.VarDeclStatement

	IsExtern bool
	ExternNS ExternalNamespace // set for host-namespace-backed external classes
}

func (c *Class) Type() ObjectType { return CLASS_OBJ }
func (c *Class) Inspect() string  { return "class " + c.Name }

// getLocalMember looks a name up in this class's own namespace or any
// superclass namespace, without touching enclosing lexical scopes. Only
// static members live there.
func (c *Class) getLocalMember(name string) (Object, bool) {
	for cls := c; cls != nil; cls = cls.Super {
		if v, ok := cls.NS.GetLocal(name); ok {
			return v, true
		}
	}
	return nil, false
}

// getInstanceMethod looks an instance-method template up by internal name,
// walking the superclass chain.
func (c *Class) getInstanceMethod(name string) (*Function, bool) {
	for cls := c; cls != nil; cls = cls.Super {
		if fn, ok := cls.Methods[name]; ok {
			return fn, true
		}
	}
	return nil, false
}

// Instance is a namespace enclosed by its class. Methods are installed bound
// at construction; fields are populated by the construction sequence.
// Wrapper instances for literal primitives carry the underlying value in
// Wrapped; external instances carry the host-returned handle.
type Instance struct {
	Class   *Class
	NS      *Namespace
	Wrapped Object      // underlying primitive for literal wrappers
	Handle  interface{} // host handle for external instances
}

func (i *Instance) Type() ObjectType { return INSTANCE_OBJ }
func (i *Instance) Inspect() string {
	if i.Wrapped != nil {
		return i.Wrapped.Inspect()
	}
	return "instance of " + i.Class.Name
}
