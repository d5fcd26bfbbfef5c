package resolver

import (
	"testing"

	"github.com/funvibe/hetu/internal/ast"
	"github.com/funvibe/hetu/internal/diagnostics"
	"github.com/funvibe/hetu/internal/lexer"
	"github.com/funvibe/hetu/internal/parser"
	"github.com/funvibe/hetu/internal/pipeline"
)

func resolveSource(t *testing.T, source string, style pipeline.ParseStyle) (*ast.Program, map[ast.Expression]int, []*diagnostics.DiagnosticError) {
	t.Helper()
	ctx := pipeline.NewPipelineContext(source)
	ctx.Style = style
	ctx.Tokens = lexer.New(source).Tokenize()
	program := parser.New(ctx.Tokens, ctx).ParseProgram(style)
	if len(ctx.Errors) > 0 {
		t.Fatalf("unexpected parse errors: %v", ctx.Errors[0])
	}
	distances := New(ctx).Resolve(program)
	return program, distances, ctx.Errors
}

func firstErrorCode(errors []*diagnostics.DiagnosticError) diagnostics.ErrorCode {
	if len(errors) == 0 {
		return ""
	}
	return errors[0].Code
}

// findIdentifier walks the recorded distances for a use-site with the given
// name.
func findIdentifier(distances map[ast.Expression]int, name string) (int, bool) {
	for expr, d := range distances {
		if ident, ok := expr.(*ast.Identifier); ok && ident.Value == name {
			return d, true
		}
	}
	return 0, false
}

func TestParameterResolvesAtDistanceZero(t *testing.T) {
	_, distances, errors := resolveSource(t,
		"fun f(p: num): num { return p }", pipeline.StyleLibrary)
	if len(errors) > 0 {
		t.Fatalf("unexpected errors: %v", errors[0])
	}
	d, ok := findIdentifier(distances, "p")
	if !ok {
		t.Fatal("parameter use-site not resolved")
	}
	if d != 0 {
		t.Fatalf("expected distance 0, got %d", d)
	}
}

func TestParameterInNestedBlockResolvesAtDistanceOne(t *testing.T) {
	_, distances, errors := resolveSource(t,
		"fun f(p: num): num { if (true) { return p } return 0 }", pipeline.StyleLibrary)
	if len(errors) > 0 {
		t.Fatalf("unexpected errors: %v", errors[0])
	}
	d, ok := findIdentifier(distances, "p")
	if !ok {
		t.Fatal("parameter use-site not resolved")
	}
	if d != 1 {
		t.Fatalf("expected distance 1, got %d", d)
	}
}

func TestClosureDistance(t *testing.T) {
	_, distances, errors := resolveSource(t,
		"fun make { var n = 0 fun step: num { n = n + 1 return n } }", pipeline.StyleLibrary)
	if len(errors) > 0 {
		t.Fatalf("unexpected errors: %v", errors[0])
	}
	d, ok := findIdentifier(distances, "n")
	if !ok {
		t.Fatal("closure use-site not resolved")
	}
	if d != 1 {
		t.Fatalf("expected distance 1 for captured variable, got %d", d)
	}
}

func TestTopLevelNamesStayGlobal(t *testing.T) {
	_, distances, _ := resolveSource(t,
		"var year = 2020 proc main { print(year) }", pipeline.StyleLibrary)
	if _, ok := findIdentifier(distances, "year"); ok {
		t.Fatal("top-level name must be left for global lookup")
	}
	if _, ok := findIdentifier(distances, "print"); ok {
		t.Fatal("built-in name must be left for global lookup")
	}
}

func TestSiblingFunctionsForwardReference(t *testing.T) {
	_, distances, errors := resolveSource(t,
		"fun outer { fun a: num { return b() } fun b: num { return 1 } }", pipeline.StyleLibrary)
	if len(errors) > 0 {
		t.Fatalf("unexpected errors: %v", errors[0])
	}
	d, ok := findIdentifier(distances, "b")
	if !ok {
		t.Fatal("forward reference to sibling not resolved")
	}
	if d != 1 {
		t.Fatalf("expected distance 1, got %d", d)
	}
}

func TestUseInOwnInitializer(t *testing.T) {
	_, _, errors := resolveSource(t,
		"proc main { var a = a }", pipeline.StyleLibrary)
	if firstErrorCode(errors) != diagnostics.ErrR003 {
		t.Fatalf("expected R003, got %v", errors)
	}
}

func TestDuplicateDeclaration(t *testing.T) {
	_, _, errors := resolveSource(t,
		"proc main { var a = 1 var a = 2 }", pipeline.StyleLibrary)
	if firstErrorCode(errors) != diagnostics.ErrR001 {
		t.Fatalf("expected R001, got %v", errors)
	}
}

func TestReturnOutsideFunction(t *testing.T) {
	_, _, errors := resolveSource(t, "return 1", pipeline.StyleFunction)
	if firstErrorCode(errors) != diagnostics.ErrR004 {
		t.Fatalf("expected R004, got %v", errors)
	}
}

func TestReturnValueInConstructor(t *testing.T) {
	_, _, errors := resolveSource(t,
		"class C { construct { return 1 } }", pipeline.StyleLibrary)
	if firstErrorCode(errors) != diagnostics.ErrR005 {
		t.Fatalf("expected R005, got %v", errors)
	}
}

func TestReturnValueInProcedure(t *testing.T) {
	_, _, errors := resolveSource(t,
		"proc main { return 1 }", pipeline.StyleLibrary)
	if firstErrorCode(errors) != diagnostics.ErrR005 {
		t.Fatalf("expected R005, got %v", errors)
	}
}

func TestBareReturnInProcedure(t *testing.T) {
	_, _, errors := resolveSource(t,
		"proc main { return }", pipeline.StyleLibrary)
	if len(errors) > 0 {
		t.Fatalf("bare return in procedure must resolve, got %v", errors[0])
	}
}

func TestThisOutsideClass(t *testing.T) {
	_, _, errors := resolveSource(t,
		"fun f { return this }", pipeline.StyleLibrary)
	if firstErrorCode(errors) != diagnostics.ErrR006 {
		t.Fatalf("expected R006, got %v", errors)
	}
}

func TestThisInStaticMethod(t *testing.T) {
	_, _, errors := resolveSource(t,
		"class C { static fun f { return this } }", pipeline.StyleLibrary)
	if firstErrorCode(errors) != diagnostics.ErrR006 {
		t.Fatalf("expected R006, got %v", errors)
	}
}

func TestExtendsSelf(t *testing.T) {
	_, _, errors := resolveSource(t,
		"class C extends C {}", pipeline.StyleLibrary)
	if firstErrorCode(errors) != diagnostics.ErrR007 {
		t.Fatalf("expected R007, got %v", errors)
	}
}

func TestInstanceMemberDistances(t *testing.T) {
	source := `class C {
		static var count = 0
		var x = 1
		fun read: num { return x }
		static fun readCount: num { return count }
	}`
	_, distances, errors := resolveSource(t, source, pipeline.StyleLibrary)
	if len(errors) > 0 {
		t.Fatalf("unexpected errors: %v", errors[0])
	}
	dx, ok := findIdentifier(distances, "x")
	if !ok || dx != 1 {
		t.Fatalf("expected instance field at distance 1, got %d (found=%v)", dx, ok)
	}
	dc, ok := findIdentifier(distances, "count")
	if !ok || dc != 1 {
		t.Fatalf("expected static field at distance 1 from static body, got %d (found=%v)", dc, ok)
	}
}

func TestThisDistanceInMethod(t *testing.T) {
	source := `class C { var x construct(v: num) { this.x = v } }`
	program, distances, errors := resolveSource(t, source, pipeline.StyleLibrary)
	if len(errors) > 0 {
		t.Fatalf("unexpected errors: %v", errors[0])
	}
	_ = program
	found := false
	for expr, d := range distances {
		if _, ok := expr.(*ast.ThisExpression); ok {
			found = true
			if d != 1 {
				t.Fatalf("expected this at distance 1, got %d", d)
			}
		}
	}
	if !found {
		t.Fatal("this use-site not resolved")
	}
}
