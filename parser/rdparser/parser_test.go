// Copyright © 2018 The ELPS authors

package rdparser

import (
	"fmt"
	"strings"
	"testing"

	"github.com/luthersystems/subcheck/ast"
	"github.com/luthersystems/subcheck/parser/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) *ast.File {
	t.Helper()
	f, err := ParseSource("test.java", []byte(src))
	require.NoError(t, err)
	return f
}

// parseBody parses stmts as the body of a method and returns it.
func parseBody(t *testing.T, stmts string) (*ast.File, *ast.Block) {
	t.Helper()
	f := parse(t, "class T { void m() {\n"+stmts+"\n} }")
	require.Len(t, f.Types, 1)
	require.Len(t, f.Types[0].Members, 1)
	m, ok := f.Types[0].Members[0].(*ast.MethodDecl)
	require.True(t, ok)
	require.NotNil(t, m.Body)
	return f, m.Body
}

func assignments(f *ast.File) []string {
	var out []string
	ast.Inspect(f, func(n ast.Node) bool {
		if a, ok := n.(*ast.AssignExpr); ok {
			out = append(out, f.Text(a))
		}
		return true
	})
	return out
}

func TestParseFile(t *testing.T) {
	src := `package com.example.app;

import java.util.List;
import static java.util.Collections.*;

@SuppressWarnings("unchecked")
public final class Account<T extends Comparable<T>> extends Base implements Runnable {
    @Subtyping("Raw") private String a, b = "x";
    protected static final int LIMIT = 10;

    public Account(@Subtyping("Clean") String owner) {
        super(owner);
        this.a = owner;
    }

    abstract void run();

    <R> List<R> map(java.util.function.Function<T, R> fn) throws Exception { return null; }

    static { LIMIT2 = 1; }

    class Inner {
        int depth;
    }
}
`
	f := parse(t, src)
	assert.Equal(t, "com.example.app", f.Package)
	assert.Equal(t, []string{"java.util.List", "static java.util.Collections.*"}, f.Imports)
	require.Len(t, f.Types, 1)

	c := f.Types[0]
	assert.Equal(t, "Account", c.Name)
	assert.Equal(t, ast.KindClass, c.Kind)
	assert.True(t, c.Has("public"))
	assert.True(t, c.Has("final"))
	require.Len(t, c.Annotations, 1)
	assert.Equal(t, "SuppressWarnings", c.Annotations[0].Name)
	require.Len(t, c.Members, 7)

	field := c.Members[0].(*ast.FieldDecl)
	assert.Equal(t, "String", field.Type.Name)
	require.Len(t, field.Vars, 2)
	assert.Equal(t, "a", field.Vars[0].Name)
	assert.Nil(t, field.Vars[0].Init)
	assert.Equal(t, "b", field.Vars[1].Name)
	assert.Equal(t, `b = "x"`, f.Text(field.Vars[1]))
	require.Len(t, field.Annotations, 1)
	assert.Equal(t, 8, field.Pos().Line)

	ctor := c.Members[2].(*ast.MethodDecl)
	assert.True(t, ctor.Constructor)
	assert.Nil(t, ctor.Result)
	require.Len(t, ctor.Params, 1)
	assert.Equal(t, "owner", ctor.Params[0].Name)
	require.Len(t, ctor.Params[0].Annotations, 1)
	assert.Equal(t, []string{"this.a = owner", "LIMIT2 = 1"}, assignments(f))

	abstract := c.Members[3].(*ast.MethodDecl)
	assert.Equal(t, "run", abstract.Name)
	assert.Nil(t, abstract.Body)

	generic := c.Members[4].(*ast.MethodDecl)
	assert.Equal(t, "map", generic.Name)
	assert.Equal(t, "List<R>", generic.Result.Name)
	assert.Equal(t, "java.util.function.Function<T, R>", generic.Params[0].Type.Name)

	init := c.Members[5].(*ast.InitializerBlock)
	assert.True(t, init.Static)

	inner := c.Members[6].(*ast.ClassDecl)
	assert.Equal(t, "Inner", inner.Name)
}

func TestAnnotations(t *testing.T) {
	f := parse(t, `class T {
    @Subtyping("A") int a;
    @Subtyping(value = "B") int b;
    @Subtyping(value = "C", strict = true) int c;
    @Deprecated int d;
    @com.acme.Subtyping({"E", "F"}) int e;
    @Outer(@Inner(1)) int g;
}`)
	var anns []*ast.Annotation
	for _, m := range f.Types[0].Members {
		field := m.(*ast.FieldDecl)
		require.Len(t, field.Annotations, 1)
		anns = append(anns, field.Annotations[0])
	}

	require.Len(t, anns[0].Args, 1)
	assert.Equal(t, "value", anns[0].Args[0].Name)
	assert.True(t, anns[0].Args[0].Implicit)
	assert.Equal(t, "A", anns[0].Args[0].Value.(*ast.Literal).Value)

	require.Len(t, anns[1].Args, 1)
	assert.False(t, anns[1].Args[0].Implicit)
	assert.Equal(t, "B", anns[1].Args[0].Value.(*ast.Literal).Value)

	require.Len(t, anns[2].Args, 2)
	assert.Equal(t, "strict", anns[2].Args[1].Name)

	assert.Empty(t, anns[3].Args)

	assert.Equal(t, "com.acme.Subtyping", anns[4].Name)
	assert.Equal(t, "Subtyping", anns[4].SimpleName())
	init, ok := anns[4].Args[0].Value.(*ast.ArrayInit)
	require.True(t, ok)
	assert.Len(t, init.Elems, 2)

	_, ok = anns[5].Args[0].Value.(*ast.Annotation)
	assert.True(t, ok)
}

func TestTypeDecls(t *testing.T) {
	f := parse(t, `
interface Shape { double area(); default int sides() { return 0; } }
enum Color { RED, GREEN("g") { void f() {} }, BLUE; private int x; Color() {} Color(String s) { label = s; } }
record Point(int x, @Subtyping("Y") int y) { Point { assert x >= 0; } }
@interface Tag { String value() default ""; }
sealed interface Animal permits Dog {}
`)
	require.Len(t, f.Types, 5)
	assert.Equal(t, ast.KindInterface, f.Types[0].Kind)
	assert.Len(t, f.Types[0].Members, 2)

	enum := f.Types[1]
	assert.Equal(t, ast.KindEnum, enum.Kind)
	require.Len(t, enum.Members, 6)
	green := enum.Members[1].(*ast.EnumConstant)
	assert.Equal(t, "GREEN", green.Name)
	assert.Len(t, green.Args, 1)
	assert.Len(t, green.Body, 1)
	assert.True(t, enum.Members[4].(*ast.MethodDecl).Constructor)

	rec := f.Types[2]
	assert.Equal(t, ast.KindRecord, rec.Kind)
	require.Len(t, rec.Components, 2)
	assert.Len(t, rec.Components[1].Annotations, 1)
	compact := rec.Members[0].(*ast.MethodDecl)
	assert.True(t, compact.Constructor)
	assert.Empty(t, compact.Params)

	ann := f.Types[3]
	assert.Equal(t, ast.KindAnnotation, ann.Kind)
	assert.NotNil(t, ann.Members[0].(*ast.MethodDecl).Default)

	assert.True(t, f.Types[4].Has("sealed"))
}

func TestStatements(t *testing.T) {
	f, body := parseBody(t, `
int i = 0, j;
final @Subtyping("A") String s = "x";
List<Map<String, List<String>>> xs = new ArrayList<>();
int[] arr = {1, 2};
i += 2;
j >>= 1;
x.y[i] = z;
for (int k = 0, n = 2; k < n; k++, i--) { j = k; }
for (String e : xs) e = s;
for (;;) break;
outer: while (i > 0) { i--; continue outer; }
do { i++; } while (i < 10);
try (Reader r = open(); w) { r.read(); } catch (IOException | RuntimeException ex) { ex = null; } finally { done = true; }
switch (i) { case 1, 2: j = 1; break; default: j = 2; }
switch (i) { case 1 -> j = 3; default -> { j = 4; } }
int v = switch (i) { case 1 -> 10; default -> { int w = 5; yield w; } };
synchronized (this) { i = 1; }
if (o instanceof String str && !str.isEmpty()) i = 2; else { i = 3; }
Runnable r2 = () -> { i = 5; };
Function<String, Integer> f2 = str -> str.length();
BiFunction<Integer, Integer, Integer> f3 = (a, b) -> a + b;
Supplier<List<String>> f4 = ArrayList::new;
Class<?> c = String[].class;
Object o2 = new Object() { int hidden = 1; };
String tb = """
    hello
    """;
assert i > 0 : "positive";
throw new IllegalStateException();
`)
	assert.IsType(t, &ast.LocalVarDecl{}, body.Stmts[0])
	assert.Len(t, body.Stmts[0].(*ast.LocalVarDecl).Vars, 2)
	decl := body.Stmts[2].(*ast.LocalVarDecl)
	assert.Equal(t, "List<Map<String, List<String>>>", decl.Type.Name)
	assert.IsType(t, &ast.ForStmt{}, body.Stmts[7])
	assert.IsType(t, &ast.ForEachStmt{}, body.Stmts[8])
	assert.IsType(t, &ast.LabeledStmt{}, body.Stmts[10])
	try := body.Stmts[12].(*ast.TryStmt)
	assert.Len(t, try.Resources, 2)
	require.Len(t, try.Catches, 1)
	assert.Equal(t, "IOException | RuntimeException", try.Catches[0].Param.Type.Name)
	assert.NotNil(t, try.Finally)

	sw := body.Stmts[13].(*ast.SwitchStmt)
	require.Len(t, sw.Cases, 2)
	assert.Len(t, sw.Cases[0].Exprs, 2)
	assert.Len(t, sw.Cases[0].Body, 2)
	assert.True(t, sw.Cases[1].Default)

	arrow := body.Stmts[14].(*ast.SwitchStmt)
	assert.True(t, arrow.Cases[0].Arrow)

	assert.Equal(t, []string{
		"i += 2",
		"j >>= 1",
		"x.y[i] = z",
		"j = k",
		"e = s",
		"ex = null",
		"done = true",
		"j = 1",
		"j = 2",
		"j = 3",
		"j = 4",
		"i = 1",
		"i = 2",
		"i = 3",
		"i = 5",
	}, assignments(f))
}

func TestLocalDeclDetection(t *testing.T) {
	tests := []struct {
		stmt string
		decl bool
	}{
		{`a = b;`, false},
		{`A b;`, true},
		{`a.B c = d;`, true},
		{`List<String> xs;`, true},
		{`var x = 1;`, true},
		{`i++;`, false},
		{`foo(a, b);`, false},
		{`a.b.c();`, false},
		{`int[] arr;`, true},
		{`a[0] = 1;`, false},
		{`Map.Entry<K, V>[] es = null;`, true},
		{`x = a < b;`, false},
	}
	for i, test := range tests {
		_, body := parseBody(t, test.stmt)
		require.Len(t, body.Stmts, 1, "test %d", i)
		_, isDecl := body.Stmts[0].(*ast.LocalVarDecl)
		assert.Equal(t, test.decl, isDecl, "test %d: %s", i, test.stmt)
	}
}

func TestExpressions(t *testing.T) {
	tests := []struct {
		expr string
		typ  ast.Expr
	}{
		{`(a) - b`, &ast.BinaryExpr{}},
		{`(String) o`, &ast.CastExpr{}},
		{`(int) -x`, &ast.CastExpr{}},
		{`(List<String>) (Object) o`, &ast.CastExpr{}},
		{`(x) -> x`, &ast.LambdaExpr{}},
		{`(a)`, &ast.ParenExpr{}},
		{`a ? b : c`, &ast.CondExpr{}},
		{`a >> 2`, &ast.BinaryExpr{}},
		{`a.<String>of()`, &ast.CallExpr{}},
		{`new int[3][]`, &ast.NewExpr{}},
		{`String::valueOf`, &ast.MethodRef{}},
		{`int.class`, &ast.ClassLit{}},
		{`this`, &ast.ThisExpr{}},
		{`Outer.this.x`, &ast.FieldAccess{}},
		{`o instanceof Foo f`, &ast.InstanceOfExpr{}},
		{`-a * b`, &ast.BinaryExpr{}},
	}
	for i, test := range tests {
		_, body := parseBody(t, "Object r = "+test.expr+";")
		decl := body.Stmts[0].(*ast.LocalVarDecl)
		assert.IsType(t, test.typ, decl.Vars[0].Init, "test %d: %s", i, test.expr)
	}
}

func TestPrecedence(t *testing.T) {
	_, body := parseBody(t, "x = a + b * c == d && e || f;")
	x := body.Stmts[0].(*ast.ExprStmt).X.(*ast.AssignExpr)
	or := x.Value.(*ast.BinaryExpr)
	assert.Equal(t, "||", or.Op)
	and := or.X.(*ast.BinaryExpr)
	assert.Equal(t, "&&", and.Op)
	eq := and.X.(*ast.BinaryExpr)
	assert.Equal(t, "==", eq.Op)
	plus := eq.X.(*ast.BinaryExpr)
	assert.Equal(t, "+", plus.Op)
	assert.Equal(t, "*", plus.Y.(*ast.BinaryExpr).Op)

	_, body = parseBody(t, "a = b = c;")
	outer := body.Stmts[0].(*ast.ExprStmt).X.(*ast.AssignExpr)
	assert.IsType(t, &ast.Name{}, outer.Target)
	assert.IsType(t, &ast.AssignExpr{}, outer.Value)
}

func TestLiterals(t *testing.T) {
	tests := []struct {
		lit   string
		value string
	}{
		{`"plain"`, "plain"},
		{`"a\tbA"`, "a\tbA"},
		{`"q\"\\"`, `q"\`},
		{`"\101\0"`, "A\x00"},
		{`'\n'`, "\n"},
		{"\"\"\"\n    hello\n      world\n    \"\"\"", "hello\n  world\n"},
		{`0x1F`, "0x1F"},
		{`null`, "null"},
	}
	for i, test := range tests {
		_, body := parseBody(t, "Object r = "+test.lit+";")
		lit, ok := body.Stmts[0].(*ast.LocalVarDecl).Vars[0].Init.(*ast.Literal)
		require.True(t, ok, "test %d", i)
		assert.Equal(t, test.value, lit.Value, "test %d", i)
	}
}

func TestComments(t *testing.T) {
	f := parse(t, `// leading
class A { /* inner */ int x; // nolint
}`)
	require.Len(t, f.Comments, 3)
	assert.Equal(t, "// nolint", f.Comments[2].Text)
	assert.Equal(t, 2, f.Comments[2].Source.Line)
}

func TestErrors(t *testing.T) {
	tests := []struct {
		source string
		errmsg string
	}{
		{`class A { void m() { x = ; } }`, `test0:1:26: expected expression, found ";"`},
		{`int x;`, `test1:1:1: expected class, interface, enum or record declaration, found "int"`},
		{`class A { void m() { try { } } }`, `test2:1:22: try without catch, finally or resources`},
		{"class A {\n  int x\n}", `test3:3:1: expected ";", found "}"`},
	}
	for i, test := range tests {
		name := fmt.Sprintf("test%d", i)
		_, err := ParseFile(name, strings.NewReader(test.source))
		if !assert.Error(t, err, "test %d", i) {
			continue
		}
		var locErr *token.LocationError
		assert.ErrorAs(t, err, &locErr)
		assert.Equal(t, test.errmsg, err.Error())
	}

	_, err := ParseSource("open", []byte("class A {"))
	assert.ErrorContains(t, err, "unterminated class body")

	_, err = ParseSource("lexer", []byte(`class A { String s = "abc; }`))
	assert.ErrorContains(t, err, "unterminated")
}
