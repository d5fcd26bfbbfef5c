package hetu

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/funvibe/hetu/pkg/ext"
)

func newTestInterpreter(t *testing.T) (*Interpreter, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	interp, err := New(&Options{Out: buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return interp, buf
}

func runLibrary(t *testing.T, interp *Interpreter, source string) {
	t.Helper()
	style := StyleLibrary
	if _, err := interp.Eval(source, &EvalOptions{Style: &style, Invoke: "main"}); err != nil {
		t.Fatalf("eval failed: %v", err)
	}
}

// Scenario: arithmetic and variables.
func TestArithmeticAndVariables(t *testing.T) {
	interp, buf := newTestInterpreter(t)
	runLibrary(t, interp, "var year = 2020 proc main { print(year + 21) }")
	if buf.String() != "2041\n" {
		t.Fatalf("expected 2041, got %q", buf.String())
	}
}

// Scenario: class and method.
func TestClassAndMethod(t *testing.T) {
	interp, buf := newTestInterpreter(t)
	runLibrary(t, interp, `class C {
		var x
		construct(v: num) { this.x = v }
		fun twice: num { return x * 2 }
	}
	proc main { var c = C(7) print(c.twice()) }`)
	if buf.String() != "14\n" {
		t.Fatalf("expected 14, got %q", buf.String())
	}
}

// Scenario: closures capture their declaration context.
func TestClosure(t *testing.T) {
	interp, buf := newTestInterpreter(t)
	runLibrary(t, interp, `fun make(): fun {
		var n = 0
		fun step: num { n = n + 1 return n }
		return step
	}
	proc main { var s = make() print(s()) print(s()) print(s()) }`)
	if buf.String() != "1\n2\n3\n" {
		t.Fatalf("expected 1 2 3, got %q", buf.String())
	}
}

// Scenario: for-in over a list literal.
func TestForInOverList(t *testing.T) {
	interp, buf := newTestInterpreter(t)
	runLibrary(t, interp, `proc main {
		var xs = [10, 20, 30]
		var sum = 0
		for (var x in xs) { sum = sum + x }
		print(sum)
	}`)
	if buf.String() != "60\n" {
		t.Fatalf("expected 60, got %q", buf.String())
	}
}

// Scenario: method overriding through inheritance.
func TestInheritance(t *testing.T) {
	interp, buf := newTestInterpreter(t)
	runLibrary(t, interp, `class A { fun hi { print('A') } }
	class B extends A { fun hi { print('B') } }
	proc main { var b = B() b.hi() }`)
	if buf.String() != "B\n" {
		t.Fatalf("expected B, got %q", buf.String())
	}
}

// person backs the external Person class in the external-namespace scenario.
type person struct {
	name string
}

type personNamespace struct {
	out *bytes.Buffer
}

func (p *personNamespace) Fetch(name string) (ext.Object, error) {
	if name != "__construct__" {
		return nil, fmt.Errorf("undefined member '%s' on Person", name)
	}
	var ctor ext.Function = func(receiver ext.Object, args []ext.Object, named map[string]ext.Object) ext.Object {
		return ext.NewHandle(&person{name: "default name"})
	}
	return ext.NewNativeFunction(ctor), nil
}

func (p *personNamespace) Assign(name string, value ext.Object) error {
	return fmt.Errorf("cannot assign '%s' on Person", name)
}

func (p *personNamespace) InstanceFetch(handle interface{}, name string) (ext.Object, error) {
	target, ok := handle.(*person)
	if !ok {
		return nil, fmt.Errorf("invalid Person handle")
	}
	switch name {
	case "name":
		return ext.NewString(target.name), nil
	case "greeting":
		var fn ext.Function = func(receiver ext.Object, args []ext.Object, named map[string]ext.Object) ext.Object {
			fmt.Fprintf(p.out, "Hi! I'm %s\n", target.name)
			return ext.NULL
		}
		return ext.NewNativeFunction(fn), nil
	}
	return nil, fmt.Errorf("undefined member '%s' on Person instance", name)
}

func (p *personNamespace) InstanceAssign(handle interface{}, name string, value ext.Object) error {
	target, ok := handle.(*person)
	if !ok {
		return fmt.Errorf("invalid Person handle")
	}
	if name != "name" {
		return fmt.Errorf("undefined member '%s' on Person instance", name)
	}
	s, ok := value.(*ext.String)
	if !ok {
		return fmt.Errorf("Person.name must be a String")
	}
	target.name = s.Value
	return nil
}

// Scenario: external class binding through the four-operation protocol.
func TestExternalClassBinding(t *testing.T) {
	interp, buf := newTestInterpreter(t)
	if err := interp.BindExternalNamespace("Person", &personNamespace{out: buf}); err != nil {
		t.Fatalf("bind failed: %v", err)
	}
	runLibrary(t, interp, `external class Person { var name fun greeting }
	proc main {
		var p = Person()
		print(p.name)
		p.name = 'Alice'
		p.greeting()
	}`)
	if buf.String() != "default name\nHi! I'm Alice\n" {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestLoadExternalFunctions(t *testing.T) {
	interp, buf := newTestInterpreter(t)
	err := interp.LoadExternalFunctions(map[string]ext.Function{
		"now": func(receiver ext.Object, args []ext.Object, named map[string]ext.Object) ext.Object {
			return ext.NewNumber(1234)
		},
	})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	runLibrary(t, interp, "external fun now: num proc main { print(now()) }")
	if buf.String() != "1234\n" {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestUnregisteredExternalFails(t *testing.T) {
	interp, _ := newTestInterpreter(t)
	style := StyleLibrary
	_, err := interp.Eval("external fun missing", &EvalOptions{Style: &style})
	if err == nil || !strings.Contains(err.Error(), "not registered") {
		t.Fatalf("expected unregistered-external error, got %v", err)
	}
}

func TestDefineAndInvokeWithArgs(t *testing.T) {
	interp, _ := newTestInterpreter(t)
	if err := interp.Define("factor", 3, nil); err != nil {
		t.Fatalf("define failed: %v", err)
	}
	style := StyleLibrary
	if _, err := interp.Eval("fun scale(v: num): num { return v * factor }", &EvalOptions{Style: &style}); err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	result, err := interp.Invoke("scale", &InvokeOptions{Args: []interface{}{7}})
	if err != nil {
		t.Fatalf("invoke failed: %v", err)
	}
	if result != float64(21) {
		t.Fatalf("expected 21, got %v", result)
	}
}

func TestInvokeStaticMethod(t *testing.T) {
	interp, _ := newTestInterpreter(t)
	style := StyleLibrary
	src := "class M { static fun double(v: num): num { return v * 2 } }"
	if _, err := interp.Eval(src, &EvalOptions{Style: &style}); err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	result, err := interp.Invoke("double", &InvokeOptions{ClassName: "M", Args: []interface{}{5}})
	if err != nil {
		t.Fatalf("invoke failed: %v", err)
	}
	if result != float64(10) {
		t.Fatalf("expected 10, got %v", result)
	}
}

func TestEvalReturnsLastValue(t *testing.T) {
	interp, _ := newTestInterpreter(t)
	result, err := interp.Eval("var a = 40 a + 2", nil)
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if result != float64(42) {
		t.Fatalf("expected 42, got %v", result)
	}
}

func TestMarshallerRoundTrip(t *testing.T) {
	interp, _ := newTestInterpreter(t)
	if err := interp.Define("xs", []interface{}{1, 2, 3}, nil); err != nil {
		t.Fatalf("define failed: %v", err)
	}
	result, err := interp.Eval("xs.length", nil)
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if result != float64(3) {
		t.Fatalf("expected 3, got %v", result)
	}

	listResult, err := interp.Eval("[1, 'two', true, null]", nil)
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	list, ok := listResult.([]interface{})
	if !ok || len(list) != 4 {
		t.Fatalf("expected a 4-element slice, got %#v", listResult)
	}
	if list[0] != float64(1) || list[1] != "two" || list[2] != true || list[3] != nil {
		t.Fatalf("unexpected list contents: %#v", list)
	}
}

// Reusing one interpreter for programs with disjoint names must behave like a
// fresh one.
func TestInterpreterReuse(t *testing.T) {
	interp, buf := newTestInterpreter(t)
	runLibrary(t, interp, "var a1 = 1 proc main { print(a1) }")
	style := StyleLibrary
	if _, err := interp.Eval("var b1 = 2 proc run2 { print(b1) }", &EvalOptions{Style: &style}); err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if _, err := interp.Invoke("run2", nil); err != nil {
		t.Fatalf("invoke failed: %v", err)
	}
	if buf.String() != "1\n2\n" {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestScriptErrorPropagatesFromEval(t *testing.T) {
	interp, _ := newTestInterpreter(t)
	_, err := interp.Eval("'a' + 1", nil)
	if err == nil || !strings.Contains(err.Error(), "undefined operator") {
		t.Fatalf("expected operator error, got %v", err)
	}
}
