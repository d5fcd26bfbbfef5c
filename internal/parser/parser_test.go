package parser

import (
	"testing"

	"github.com/funvibe/hetu/internal/ast"
	"github.com/funvibe/hetu/internal/diagnostics"
	"github.com/funvibe/hetu/internal/lexer"
	"github.com/funvibe/hetu/internal/pipeline"
)

func parseSource(t *testing.T, source string, style pipeline.ParseStyle) (*ast.Program, *pipeline.PipelineContext) {
	t.Helper()
	ctx := pipeline.NewPipelineContext(source)
	ctx.Style = style
	ctx.Tokens = lexer.New(source).Tokenize()
	program := New(ctx.Tokens, ctx).ParseProgram(style)
	return program, ctx
}

func parseOK(t *testing.T, source string, style pipeline.ParseStyle) *ast.Program {
	t.Helper()
	program, ctx := parseSource(t, source, style)
	if len(ctx.Errors) > 0 {
		t.Fatalf("unexpected parse errors: %v", ctx.Errors[0])
	}
	return program
}

func TestVarDeclarations(t *testing.T) {
	program := parseOK(t, "var a: num = 1 let b = 2 def c = 3", pipeline.StyleLibrary)
	if len(program.Statements) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(program.Statements))
	}

	a := program.Statements[0].(*ast.VarDeclStatement)
	if a.Name.Value != "a" || !a.IsMutable || a.TypeInferred || a.DeclType.Name != "num" {
		t.Fatalf("unexpected var decl: %+v", a)
	}
	b := program.Statements[1].(*ast.VarDeclStatement)
	if !b.IsMutable || !b.TypeInferred {
		t.Fatalf("let must be mutable and type-inferred: %+v", b)
	}
	c := program.Statements[2].(*ast.VarDeclStatement)
	if c.IsMutable || !c.TypeInferred {
		t.Fatalf("def must be immutable and type-inferred: %+v", c)
	}
}

func TestOperatorPrecedence(t *testing.T) {
	program := parseOK(t, "var x = 1 + 2 * 3", pipeline.StyleLibrary)
	decl := program.Statements[0].(*ast.VarDeclStatement)
	add := decl.Initializer.(*ast.InfixExpression)
	if add.Operator != "+" {
		t.Fatalf("expected + at the top, got %s", add.Operator)
	}
	mul, ok := add.Right.(*ast.InfixExpression)
	if !ok || mul.Operator != "*" {
		t.Fatalf("expected * to bind tighter, got %T", add.Right)
	}
}

func TestAssignmentRewriting(t *testing.T) {
	program := parseOK(t, "a = 1 a.b = 2 a[0] = 3", pipeline.StyleFunction)
	if _, ok := program.Statements[0].(*ast.ExpressionStatement).Expression.(*ast.AssignExpression); !ok {
		t.Fatalf("expected AssignExpression")
	}
	if _, ok := program.Statements[1].(*ast.ExpressionStatement).Expression.(*ast.MemberAssignExpression); !ok {
		t.Fatalf("expected MemberAssignExpression")
	}
	if _, ok := program.Statements[2].(*ast.ExpressionStatement).Expression.(*ast.IndexAssignExpression); !ok {
		t.Fatalf("expected IndexAssignExpression")
	}
}

func TestAssignmentIsRightAssociative(t *testing.T) {
	program := parseOK(t, "a = b = 1", pipeline.StyleFunction)
	outer := program.Statements[0].(*ast.ExpressionStatement).Expression.(*ast.AssignExpression)
	if _, ok := outer.Value.(*ast.AssignExpression); !ok {
		t.Fatalf("expected nested assignment on the right, got %T", outer.Value)
	}
}

func TestInvalidLValue(t *testing.T) {
	_, ctx := parseSource(t, "1 + 2 = 3", pipeline.StyleFunction)
	if len(ctx.Errors) == 0 {
		t.Fatal("expected invalid l-value error")
	}
	if ctx.Errors[0].Code != diagnostics.ErrP003 {
		t.Fatalf("expected P003, got %s", ctx.Errors[0].Code)
	}
}

func TestNamedArguments(t *testing.T) {
	program := parseOK(t, "f(1, mode: 2)", pipeline.StyleFunction)
	call := program.Statements[0].(*ast.ExpressionStatement).Expression.(*ast.CallExpression)
	if len(call.Args) != 2 {
		t.Fatalf("expected 2 arguments, got %d", len(call.Args))
	}
	named, ok := call.Args[1].(*ast.NamedArgument)
	if !ok || named.Name != "mode" {
		t.Fatalf("expected named argument 'mode', got %T", call.Args[1])
	}
}

func TestParameterGroups(t *testing.T) {
	program := parseOK(t, "fun f(a, b, [c = 1], {d = 2}) {}", pipeline.StyleLibrary)
	fn := program.Statements[0].(*ast.FuncDeclStatement)
	if fn.Arity != 2 {
		t.Fatalf("expected arity 2, got %d", fn.Arity)
	}
	if len(fn.Params) != 4 {
		t.Fatalf("expected 4 params, got %d", len(fn.Params))
	}
	if !fn.Params[2].IsOptionalParam || fn.Params[2].Initializer == nil {
		t.Fatalf("expected optional param with default: %+v", fn.Params[2])
	}
	if !fn.Params[3].IsNamedParam {
		t.Fatalf("expected named param: %+v", fn.Params[3])
	}
}

func TestVariadicParameters(t *testing.T) {
	program := parseOK(t, "fun f(... rest) {}", pipeline.StyleLibrary)
	fn := program.Statements[0].(*ast.FuncDeclStatement)
	if fn.Arity != ast.VariadicArity {
		t.Fatalf("expected variadic arity, got %d", fn.Arity)
	}
	if !fn.Params[0].IsVariadicParam {
		t.Fatalf("expected variadic param")
	}
}

func TestSetterArity(t *testing.T) {
	_, ctx := parseSource(t, "class C { set x(a, b) {} }", pipeline.StyleLibrary)
	if len(ctx.Errors) == 0 || ctx.Errors[0].Code != diagnostics.ErrP004 {
		t.Fatalf("expected P004 setter arity error, got %v", ctx.Errors)
	}
}

func TestClassBody(t *testing.T) {
	source := `class C extends Base {
		static var count = 0
		var x
		construct(v: num) { this.x = v }
		get twice: num { return x * 2 }
		set twice(v) { this.x = v }
		static fun make: C { return C(0) }
	}`
	program := parseOK(t, source, pipeline.StyleLibrary)
	cls := program.Statements[0].(*ast.ClassDeclStatement)
	if cls.SuperClass == nil || cls.SuperClass.Name != "Base" {
		t.Fatalf("expected superclass Base")
	}
	if len(cls.Variables) != 2 {
		t.Fatalf("expected 2 variables, got %d", len(cls.Variables))
	}
	if !cls.Variables[0].IsStatic || cls.Variables[1].IsStatic {
		t.Fatalf("static flags wrong")
	}
	if len(cls.Methods) != 4 {
		t.Fatalf("expected 4 methods, got %d", len(cls.Methods))
	}
	kinds := []ast.FuncKind{
		ast.FuncKindConstructor, ast.FuncKindGetter, ast.FuncKindSetter, ast.FuncKindMethod,
	}
	for i, kind := range kinds {
		if cls.Methods[i].Kind != kind {
			t.Fatalf("method %d: expected kind %v, got %v", i, kind, cls.Methods[i].Kind)
		}
		if cls.Methods[i].ClassName != "C" {
			t.Fatalf("method %d: expected owning class C", i)
		}
	}
	if !cls.Methods[3].IsStatic {
		t.Fatalf("expected static method")
	}
}

func TestClassNotAllowedInFunctionBody(t *testing.T) {
	_, ctx := parseSource(t, "class C {}", pipeline.StyleFunction)
	if len(ctx.Errors) == 0 || ctx.Errors[0].Code != diagnostics.ErrP005 {
		t.Fatalf("expected P005, got %v", ctx.Errors)
	}
}

func TestExpressionNotAllowedInLibrary(t *testing.T) {
	_, ctx := parseSource(t, "1 + 2", pipeline.StyleLibrary)
	if len(ctx.Errors) == 0 || ctx.Errors[0].Code != diagnostics.ErrP005 {
		t.Fatalf("expected P005, got %v", ctx.Errors)
	}
}

func TestForInLowering(t *testing.T) {
	program := parseOK(t, "for (var x in xs) { total = total + x }", pipeline.StyleFunction)
	block, ok := program.Statements[0].(*ast.BlockStatement)
	if !ok {
		t.Fatalf("expected for-in to lower to a block, got %T", program.Statements[0])
	}
	if len(block.Statements) != 3 {
		t.Fatalf("expected index decl, loop var decl and while, got %d statements", len(block.Statements))
	}

	indexDecl := block.Statements[0].(*ast.VarDeclStatement)
	if indexDecl.Name.Value != "__i0" {
		t.Fatalf("expected synthetic __i0, got %s", indexDecl.Name.Value)
	}
	loopVar := block.Statements[1].(*ast.VarDeclStatement)
	if loopVar.Name.Value != "x" {
		t.Fatalf("expected loop var x, got %s", loopVar.Name.Value)
	}

	loop := block.Statements[2].(*ast.WhileStatement)
	cond := loop.Condition.(*ast.InfixExpression)
	lengthAccess := cond.Right.(*ast.MemberExpression)
	if lengthAccess.Member != "length" {
		t.Fatalf("expected length access in condition")
	}

	body := loop.Body.(*ast.BlockStatement)
	assign := body.Statements[0].(*ast.ExpressionStatement).Expression.(*ast.AssignExpression)
	subscript := assign.Value.(*ast.IndexExpression)
	// The subscript site must use a clone with its own identity.
	if subscript.Collection == lengthAccess.Object {
		t.Fatal("iteration target must be cloned for the subscript site")
	}
}

func TestImportStatement(t *testing.T) {
	program := parseOK(t, "import 'lib/helpers.ht' as helpers", pipeline.StyleLibrary)
	imp := program.Statements[0].(*ast.ImportStatement)
	if imp.Path != "lib/helpers.ht" || imp.Alias != "helpers" {
		t.Fatalf("unexpected import: %+v", imp)
	}
}

func TestTypeAnnotations(t *testing.T) {
	program := parseOK(t, "var m: Map<String, List<num>>", pipeline.StyleLibrary)
	decl := program.Statements[0].(*ast.VarDeclStatement)
	if decl.DeclType.String() != "Map<String, List<num>>" {
		t.Fatalf("unexpected type: %s", decl.DeclType.String())
	}
}

func TestExternalDeclarations(t *testing.T) {
	program := parseOK(t, "external fun now external class Person { var name fun greeting }", pipeline.StyleLibrary)
	fn := program.Statements[0].(*ast.FuncDeclStatement)
	if !fn.IsExtern || fn.Body != nil {
		t.Fatalf("expected bodiless external function")
	}
	cls := program.Statements[1].(*ast.ClassDeclStatement)
	if !cls.IsExtern || len(cls.Variables) != 1 || len(cls.Methods) != 1 {
		t.Fatalf("unexpected external class: %+v", cls)
	}
	if !cls.Methods[0].IsExtern || cls.Methods[0].Body != nil {
		t.Fatalf("external class members must be bodiless")
	}
}

func TestMapAndListLiterals(t *testing.T) {
	program := parseOK(t, "var x = [1, 2, 3] var y = {'a': 1, 'b': 2}", pipeline.StyleLibrary)
	list := program.Statements[0].(*ast.VarDeclStatement).Initializer.(*ast.ListLiteral)
	if len(list.Elements) != 3 {
		t.Fatalf("expected 3 list elements")
	}
	m := program.Statements[1].(*ast.VarDeclStatement).Initializer.(*ast.MapLiteral)
	if len(m.Keys) != 2 || len(m.Values) != 2 {
		t.Fatalf("expected 2 map pairs")
	}
}

func TestLiteralInterning(t *testing.T) {
	_, ctx := parseSource(t, "var a = 42 var b = 42 var c = 'x'", pipeline.StyleLibrary)
	if len(ctx.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", ctx.Errors)
	}
	// 42 is interned once, 'x' separately.
	if ctx.Constants.Len() != 2 {
		t.Fatalf("expected 2 pooled literals, got %d", ctx.Constants.Len())
	}
}
