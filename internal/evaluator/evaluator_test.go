package evaluator

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/funvibe/hetu/internal/modules"
	"github.com/funvibe/hetu/internal/pipeline"
)

func newTestInterpreter(t *testing.T) (*Interpreter, *bytes.Buffer) {
	t.Helper()
	i := New()
	buf := &bytes.Buffer{}
	i.Out = buf
	if err := LoadCoreLibrary(i); err != nil {
		t.Fatalf("core library failed to load: %v", err)
	}
	return i, buf
}

// runMain evaluates a library source and invokes main, returning the captured
// output.
func runMain(t *testing.T, source string) string {
	t.Helper()
	i, buf := newTestInterpreter(t)
	if _, err := i.EvalSource(source, "<test>", pipeline.StyleLibrary, nil); err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if _, err := i.Invoke("main", "", nil); err != nil {
		t.Fatalf("invoke failed: %v", err)
	}
	return buf.String()
}

func evalExpr(t *testing.T, i *Interpreter, source string) Object {
	t.Helper()
	result, err := i.EvalSource(source, "<test>", pipeline.StyleFunction, nil)
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	return result
}

func evalError(t *testing.T, source string) string {
	t.Helper()
	i, _ := newTestInterpreter(t)
	_, err := i.EvalSource(source, "<test>", pipeline.StyleFunction, nil)
	if err == nil {
		t.Fatalf("expected error for %q", source)
	}
	return err.Error()
}

func expectNumber(t *testing.T, obj Object, want float64) {
	t.Helper()
	n, ok := obj.(*Number)
	if !ok {
		t.Fatalf("expected number, got %T (%s)", obj, obj.Inspect())
	}
	if n.Value != want {
		t.Fatalf("expected %v, got %v", want, n.Value)
	}
}

func TestArithmetic(t *testing.T) {
	i, _ := newTestInterpreter(t)
	tests := []struct {
		source string
		want   float64
	}{
		{"1 + 2 * 3", 7},
		{"(1 + 2) * 3", 9},
		{"10 / 4", 2.5},
		{"10 % 3", 1},
		{"-5 + 3", -2},
	}
	for _, tt := range tests {
		expectNumber(t, evalExpr(t, i, tt.source), tt.want)
	}
}

func TestComparisonAndLogic(t *testing.T) {
	i, _ := newTestInterpreter(t)
	tests := []struct {
		source string
		want   bool
	}{
		{"1 < 2", true},
		{"2 <= 2", true},
		{"3 > 4", false},
		{"1 == 1", true},
		{"1 != 1", false},
		{"'a' == 'a'", true},
		{"true && false", false},
		{"true || false", true},
		{"!false", true},
	}
	for _, tt := range tests {
		b, ok := evalExpr(t, i, tt.source).(*Boolean)
		if !ok {
			t.Fatalf("%q: expected boolean", tt.source)
		}
		if b.Value != tt.want {
			t.Fatalf("%q: expected %v", tt.source, tt.want)
		}
	}
}

func TestShortCircuit(t *testing.T) {
	i, _ := newTestInterpreter(t)
	// The right side would fail if evaluated.
	b := evalExpr(t, i, "false && undefinedName").(*Boolean)
	if b.Value {
		t.Fatal("expected false")
	}
	b = evalExpr(t, i, "true || undefinedName").(*Boolean)
	if !b.Value {
		t.Fatal("expected true")
	}
}

func TestStringConcat(t *testing.T) {
	i, _ := newTestInterpreter(t)
	s, ok := evalExpr(t, i, "'foo' + 'bar'").(*String)
	if !ok || s.Value != "foobar" {
		t.Fatalf("expected foobar, got %v", s)
	}
}

func TestMixedAdditionFails(t *testing.T) {
	msg := evalError(t, "'a' + 1")
	if !strings.Contains(msg, "undefined operator") {
		t.Fatalf("expected undefined operator error, got %s", msg)
	}
	msg = evalError(t, "1 + 'a'")
	if !strings.Contains(msg, "undefined operator") {
		t.Fatalf("expected undefined operator error, got %s", msg)
	}
}

func TestUndefinedIdentifier(t *testing.T) {
	msg := evalError(t, "nope")
	if !strings.Contains(msg, "undefined identifier 'nope'") {
		t.Fatalf("unexpected message: %s", msg)
	}
}

func TestImmutableWrite(t *testing.T) {
	msg := evalError(t, "def a = 1 a = 2")
	if !strings.Contains(msg, "immutable") {
		t.Fatalf("expected immutable-write error, got %s", msg)
	}
}

func TestConditionMustBeBoolean(t *testing.T) {
	msg := evalError(t, "if (1) { }")
	if !strings.Contains(msg, "condition is not a boolean") {
		t.Fatalf("unexpected message: %s", msg)
	}
}

func TestNotCallable(t *testing.T) {
	msg := evalError(t, "var a = 1 a()")
	if !strings.Contains(msg, "not callable") {
		t.Fatalf("unexpected message: %s", msg)
	}
}

func TestIsOperator(t *testing.T) {
	i, _ := newTestInterpreter(t)
	if b := evalExpr(t, i, "5 is num").(*Boolean); !b.Value {
		t.Fatal("5 is num must hold")
	}
	if b := evalExpr(t, i, "'x' is num").(*Boolean); b.Value {
		t.Fatal("'x' is num must not hold")
	}
	msg := evalError(t, "5 is 6")
	if !strings.Contains(msg, "not a class") {
		t.Fatalf("unexpected message: %s", msg)
	}
}

func TestListAndMapSubscripts(t *testing.T) {
	i, _ := newTestInterpreter(t)
	expectNumber(t, evalExpr(t, i, "var xs = [10, 20, 30] xs[1]"), 20)
	expectNumber(t, evalExpr(t, i, "var ys = [1] ys[0] = 5 ys[0]"), 5)
	expectNumber(t, evalExpr(t, i, "var m = {'a': 1} m['a']"), 1)
	expectNumber(t, evalExpr(t, i, "var m2 = {} m2['k'] = 9 m2['k']"), 9)

	msg := evalError(t, "var xs = [1] xs[5]")
	if !strings.Contains(msg, "out of range") {
		t.Fatalf("unexpected message: %s", msg)
	}
	msg = evalError(t, "var n = 1 n[0]")
	if !strings.Contains(msg, "cannot subscript") {
		t.Fatalf("unexpected message: %s", msg)
	}
}

func TestWrapperMembers(t *testing.T) {
	i, _ := newTestInterpreter(t)
	expectNumber(t, evalExpr(t, i, "'hello'.length"), 5)
	expectNumber(t, evalExpr(t, i, "[1, 2, 3].length"), 3)
	expectNumber(t, evalExpr(t, i, "var mm = {'a': 1} mm.length"), 1)
	s := evalExpr(t, i, "(42).toString()").(*String)
	if s.Value != "42" {
		t.Fatalf("expected '42', got %s", s.Value)
	}
	s = evalExpr(t, i, "'a,b,c'.split(',')[1]").(*String)
	if s.Value != "b" {
		t.Fatalf("expected 'b', got %s", s.Value)
	}
}

func TestWrapperMutatesUnderlyingList(t *testing.T) {
	i, _ := newTestInterpreter(t)
	expectNumber(t, evalExpr(t, i, "var xs = [] xs.add(1, 2) xs.length"), 2)
}

func TestNumParse(t *testing.T) {
	i, _ := newTestInterpreter(t)
	expectNumber(t, evalExpr(t, i, "num.parse('3.5')"), 3.5)
}

func TestWhileWithBreakAndContinue(t *testing.T) {
	out := runMain(t, `proc main {
		var i = 0
		var sum = 0
		while (true) {
			i = i + 1
			if (i > 10) { break }
			if (i % 2 == 0) { continue }
			sum = sum + i
		}
		print(sum)
	}`)
	if out != "25\n" {
		t.Fatalf("expected 25, got %q", out)
	}
}

func TestOptionalAndNamedParameters(t *testing.T) {
	i, _ := newTestInterpreter(t)
	source := `fun f(a, [b = 5], {c = 10}): num { return a + b + c }`
	if _, err := i.EvalSource(source, "<test>", pipeline.StyleLibrary, nil); err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	expectNumber(t, evalExpr(t, i, "f(1)"), 16)
	expectNumber(t, evalExpr(t, i, "f(1, 2)"), 13)
	expectNumber(t, evalExpr(t, i, "f(1, 2, c: 3)"), 6)

	if _, err := i.EvalSource("f()", "<test>", pipeline.StyleFunction, nil); err == nil ||
		!strings.Contains(err.Error(), "too few arguments") {
		t.Fatalf("expected arity error, got %v", err)
	}
	if _, err := i.EvalSource("f(1, d: 2)", "<test>", pipeline.StyleFunction, nil); err == nil ||
		!strings.Contains(err.Error(), "unknown named argument") {
		t.Fatalf("expected unknown named argument error, got %v", err)
	}
}

func TestVariadicParameters(t *testing.T) {
	i, _ := newTestInterpreter(t)
	source := `fun count(... xs): num { return xs.length }`
	if _, err := i.EvalSource(source, "<test>", pipeline.StyleLibrary, nil); err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	expectNumber(t, evalExpr(t, i, "count(1, 2, 3)"), 3)
	expectNumber(t, evalExpr(t, i, "count()"), 0)
}

func TestGetterSetterAndStatics(t *testing.T) {
	out := runMain(t, `class Counter {
		static var count = 0
		var n = 0
		get value: num { return n }
		set value(v) { this.n = v }
		static fun bump: num { count = count + 1 return count }
	}
	proc main {
		var c = Counter()
		print(c.value)
		c.value = 42
		print(c.n)
		print(Counter.bump())
		print(Counter.bump())
		print(Counter.count)
	}`)
	if out != "0\n42\n1\n2\n2\n" {
		t.Fatalf("unexpected output: %q", out)
	}
}

// Static and instance member spaces are disjoint: a shared name must not
// clobber either method.
func TestStaticAndInstanceMethodShareName(t *testing.T) {
	out := runMain(t, `class C {
		static fun tag: String { return 'static' }
		fun tag: String { return 'instance' }
	}
	proc main {
		var c = C()
		print(c.tag())
		print(C.tag())
	}`)
	if out != "instance\nstatic\n" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestInstanceMethodNotVisibleOnClass(t *testing.T) {
	i, _ := newTestInterpreter(t)
	src := `class D { fun hello: String { return 'hi' } }`
	if _, err := i.EvalSource(src, "<test>", pipeline.StyleLibrary, nil); err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	_, err := i.EvalSource("D.hello()", "<test>", pipeline.StyleFunction, nil)
	if err == nil || !strings.Contains(err.Error(), "undefined member 'hello' on class D") {
		t.Fatalf("expected undefined class member error, got %v", err)
	}
}

func TestExternInstanceMethodNotVisibleOnClass(t *testing.T) {
	// Built-in wrapper classes follow the same split: String's instance
	// surface is not reachable through the class value.
	i, _ := newTestInterpreter(t)
	_, err := i.EvalSource("String.toString()", "<test>", pipeline.StyleFunction, nil)
	if err == nil || !strings.Contains(err.Error(), "undefined member 'toString' on class String") {
		t.Fatalf("expected undefined class member error, got %v", err)
	}
}

func TestInstanceVarsInheritedFromSuperclass(t *testing.T) {
	out := runMain(t, `class A { var x = 1 }
	class B extends A { var y = 2 }
	proc main { var b = B() print(b.x + b.y) print(b is B) }`)
	if out != "3\ntrue\n" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestImportWithAlias(t *testing.T) {
	i, buf := newTestInterpreter(t)
	files := map[string]string{
		"/proj/util.ht": "fun seven: num { return 7 }",
		"/proj/app.ht":  "import 'util' as util proc main { print(util.seven()) }",
	}
	i.SetLoader(modules.NewLoader("/proj", func(path string) (string, error) {
		if content, ok := files[path]; ok {
			return content, nil
		}
		return "", fmt.Errorf("no such file: %s", path)
	}))
	if _, err := i.EvalFile("app.ht", "", nil); err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if _, err := i.Invoke("main", "", nil); err != nil {
		t.Fatalf("invoke failed: %v", err)
	}
	if buf.String() != "7\n" {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestImportEvaluatedOnce(t *testing.T) {
	i, buf := newTestInterpreter(t)
	reads := 0
	files := map[string]string{
		"/proj/shared.ht": "proc announce { print('loaded') }",
		"/proj/a.ht":      "import 'shared'",
		"/proj/b.ht":      "import 'shared' import 'a'",
	}
	i.SetLoader(modules.NewLoader("/proj", func(path string) (string, error) {
		if content, ok := files[path]; ok {
			if path == "/proj/shared.ht" {
				reads++
			}
			return content, nil
		}
		return "", fmt.Errorf("no such file: %s", path)
	}))
	if _, err := i.EvalFile("b.ht", "", nil); err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if reads != 1 {
		t.Fatalf("expected shared.ht to be read once, got %d", reads)
	}
	_ = buf
}

func TestYamlModule(t *testing.T) {
	out := runMain(t, `proc main {
		var doc = Yaml.parse('name: hetu
count: 3
tags:
  - a
  - b
')
		print(doc['name'])
		print(doc['count'] + 1)
		print(doc['tags'].length)
	}`)
	if out != "hetu\n4\n2\n" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestYamlStringifyRoundTrip(t *testing.T) {
	i, _ := newTestInterpreter(t)
	s := evalExpr(t, i, "Yaml.stringify({'a': 1})").(*String)
	if !strings.Contains(s.Value, "a: 1") {
		t.Fatalf("unexpected yaml: %q", s.Value)
	}
}

func TestTermModule(t *testing.T) {
	// Test processes have no TTY, so colors pass through unchanged.
	out := runMain(t, `proc main { print(term.red('x')) print(term.isTTY()) }`)
	if out != "x\nfalse\n" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestDatabaseModule(t *testing.T) {
	out := runMain(t, `proc main {
		var db = Database()
		db.exec('create table t (a integer, b text)')
		db.exec("insert into t values (1, 'one')")
		db.exec("insert into t values (2, 'two')")
		var rows = db.query('select a, b from t order by a')
		print(rows.length)
		print(rows[0]['a'])
		print(rows[1]['b'])
		db.close()
	}`)
	if out != "2\n1\ntwo\n" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestDatabaseClosedHandle(t *testing.T) {
	i, _ := newTestInterpreter(t)
	src := `proc main { var db = Database() db.close() db.exec('select 1') }`
	if _, err := i.EvalSource(src, "<test>", pipeline.StyleLibrary, nil); err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if _, err := i.Invoke("main", "", nil); err == nil ||
		!strings.Contains(err.Error(), "closed") {
		t.Fatalf("expected closed-database error, got %v", err)
	}
}

func TestConstPoolDeterminism(t *testing.T) {
	i, _ := newTestInterpreter(t)
	first := evalExpr(t, i, "42")
	second := evalExpr(t, i, "42")
	if first != second {
		t.Fatal("equal literals must evaluate to the identical pooled value")
	}
}

func TestSignalsNeverEscape(t *testing.T) {
	msg := evalError(t, "break")
	if !strings.Contains(msg, "break") {
		t.Fatalf("unexpected message: %s", msg)
	}
}

func TestUninitializedVariableReadsAsNull(t *testing.T) {
	i, _ := newTestInterpreter(t)
	result := evalExpr(t, i, "var a a")
	if result != NULL {
		t.Fatalf("expected null, got %s", result.Inspect())
	}
}
