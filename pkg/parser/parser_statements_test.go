package parser

import (
	"math"
	"testing"

	"javelin/interpreter-go/pkg/ast"
	"javelin/interpreter-go/pkg/types"
)

func sysout(method string, args ...ast.Expression) ast.Statement {
	return ast.Stmt(ast.Invoke(ast.Member(ast.ID("System"), "out"), method, args...))
}

func TestParseStatements(t *testing.T) {
	cases := []struct {
		name   string
		source string
		want   []ast.Statement
	}{
		{
			name:   "declaration with precedence",
			source: "int x = 1 + 2 * 3;",
			want: []ast.Statement{
				ast.Var(ast.Prim(types.Int), "x", ast.Bin("+", ast.Int(1), ast.Bin("*", ast.Int(2), ast.Int(3)))),
			},
		},
		{
			name:   "final long minimum",
			source: "final long y = -9223372036854775808L;",
			want: []ast.Statement{
				ast.FinalVar(ast.Prim(types.Long), "y", ast.Long(math.MinInt64)),
			},
		},
		{
			name:   "declarators with c-style dimensions",
			source: "int a, b[] = {1, 2};",
			want: []ast.Statement{
				ast.NewVariableDeclaration(false, ast.Prim(types.Int), []*ast.VariableDeclarator{
					ast.NewVariableDeclarator("a", 0, nil),
					ast.NewVariableDeclarator("b", 1, ast.ArrInit(ast.Int(1), ast.Int(2))),
				}),
			},
		},
		{
			name:   "comments are skipped",
			source: "// leading\nint x = 1; /* trailing */",
			want: []ast.Statement{
				ast.Var(ast.Prim(types.Int), "x", ast.Int(1)),
			},
		},
		{
			name:   "for loop",
			source: "for (int i = 0; i < 3; i++) { sum += i; }",
			want: []ast.Statement{
				ast.For(
					[]ast.Statement{ast.Var(ast.Prim(types.Int), "i", ast.Int(0))},
					ast.Bin("<", ast.ID("i"), ast.Int(3)),
					[]ast.Expression{ast.PostInc(ast.ID("i"))},
					ast.Blk(ast.Stmt(ast.AssignOp("+=", ast.ID("sum"), ast.ID("i")))),
				),
			},
		},
		{
			name:   "for loop with expression init and empty condition",
			source: "for (i = 0, j = 1; ; --j) ;",
			want: []ast.Statement{
				ast.For(
					[]ast.Statement{
						ast.Stmt(ast.Assign(ast.ID("i"), ast.Int(0))),
						ast.Stmt(ast.Assign(ast.ID("j"), ast.Int(1))),
					},
					nil,
					[]ast.Expression{ast.PreDec(ast.ID("j"))},
					ast.NewEmptyStatement(),
				),
			},
		},
		{
			name:   "enhanced for over final variable",
			source: "for (final String s : names) System.out.print(s);",
			want: []ast.Statement{
				ast.NewForEachStatement(true, ast.Ty("String"), "s", ast.ID("names"), sysout("print", ast.ID("s"))),
			},
		},
		{
			name:   "labeled loop",
			source: "outer: while (true) { continue outer; }",
			want: []ast.Statement{
				ast.Labeled("outer", ast.While(ast.Bool(true), ast.Blk(ast.Continue("outer")))),
			},
		},
		{
			name:   "do while with break",
			source: "do { n--; break; } while (n > 0);",
			want: []ast.Statement{
				ast.Do(ast.Blk(ast.Stmt(ast.PostDec(ast.ID("n"))), ast.Break("")), ast.Bin(">", ast.ID("n"), ast.Int(0))),
			},
		},
		{
			name:   "if else chain",
			source: "if (a) x = 1; else if (b) x = 2; else { x = 3; }",
			want: []ast.Statement{
				ast.If(ast.ID("a"),
					ast.Stmt(ast.Assign(ast.ID("x"), ast.Int(1))),
					ast.If(ast.ID("b"),
						ast.Stmt(ast.Assign(ast.ID("x"), ast.Int(2))),
						ast.Blk(ast.Stmt(ast.Assign(ast.ID("x"), ast.Int(3)))),
					),
				),
			},
		},
		{
			name:   "switch with labels and default",
			source: `switch (k) { case 1, 2: s = "a"; case 3: break; default: s = "d"; }`,
			want: []ast.Statement{
				ast.Switch(ast.ID("k"),
					ast.NewSwitchCase([]ast.Expression{ast.Int(1), ast.Int(2)}, false, []ast.Statement{
						ast.Stmt(ast.Assign(ast.ID("s"), ast.Str("a"))),
					}),
					ast.Case(ast.Int(3), ast.Break("")),
					ast.Default(ast.Stmt(ast.Assign(ast.ID("s"), ast.Str("d")))),
				),
			},
		},
		{
			name:   "try with multi-catch and finally",
			source: "try { f(); } catch (IllegalStateException | ArithmeticException e) { g(e); } finally { h(); }",
			want: []ast.Statement{
				ast.Try(
					ast.Blk(ast.Stmt(ast.Call("f"))),
					[]*ast.CatchClause{
						ast.NewCatchClause(
							[]ast.TypeExpression{ast.Ty("IllegalStateException"), ast.Ty("ArithmeticException")},
							"e",
							ast.Blk(ast.Stmt(ast.Call("g", ast.ID("e")))),
						),
					},
					ast.Blk(ast.Stmt(ast.Call("h"))),
				),
			},
		},
		{
			name:   "qualified catch type",
			source: "try { } catch (java.lang.RuntimeException e) { }",
			want: []ast.Statement{
				ast.Try(ast.Blk(), []*ast.CatchClause{ast.Catch(ast.Ty("java.lang.RuntimeException"), "e", ast.Blk())}, nil),
			},
		},
		{
			name:   "throw and synchronized",
			source: `synchronized (lock) { n++; throw new RuntimeException("x"); }`,
			want: []ast.Statement{
				ast.Sync(ast.ID("lock"), ast.Blk(
					ast.Stmt(ast.PostInc(ast.ID("n"))),
					ast.Throw(ast.New(ast.Ty("RuntimeException"), ast.Str("x"))),
				)),
			},
		},
		{
			name:   "println with escapes",
			source: `System.out.println("a\tb");`,
			want: []ast.Statement{
				sysout("println", ast.Str("a\tb")),
			},
		},
		{
			name:   "method declaration",
			source: "int fib(int n) { if (n < 2) return n; return fib(n - 1) + fib(n - 2); }",
			want: []ast.Statement{
				ast.Method(ast.Prim(types.Int), "fib", []*ast.Parameter{ast.Param(ast.Prim(types.Int), "n")}, ast.Blk(
					ast.If(ast.Bin("<", ast.ID("n"), ast.Int(2)), ast.Return(ast.ID("n")), nil),
					ast.Return(ast.Bin("+",
						ast.Call("fib", ast.Bin("-", ast.ID("n"), ast.Int(1))),
						ast.Call("fib", ast.Bin("-", ast.ID("n"), ast.Int(2))),
					)),
				)),
			},
		},
		{
			name:   "void method with final array parameter",
			source: "void fill(final int[] xs, long v) { return; }",
			want: []ast.Statement{
				ast.Method(ast.Prim(types.Void), "fill", []*ast.Parameter{
					ast.NewParameter(true, ast.ArrT(ast.Prim(types.Int)), "xs"),
					ast.Param(ast.Prim(types.Long), "v"),
				}, ast.Blk(ast.Return(nil))),
			},
		},
		{
			name:   "empty statements inside a block are dropped",
			source: "{ ; }",
			want: []ast.Statement{
				ast.Blk(),
			},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			script := mustParse(t, tc.source)
			assertNodesEqual(t, tc.want, script.Statements)
		})
	}
}

func TestParseScriptAnnotatesSpans(t *testing.T) {
	script := mustParse(t, "int x = 1;\nx += 2;\n")
	if len(script.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(script.Statements))
	}
	checkSpan(t, "declaration", script.Statements[0].Span(), 1, 1, 1, 11)
	stmt, ok := script.Statements[1].(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("expected expression statement, got %T", script.Statements[1])
	}
	checkSpan(t, "statement", stmt.Span(), 2, 1, 2, 8)
	checkSpan(t, "assignment", stmt.Expression.Span(), 2, 1, 2, 7)
	assign, ok := stmt.Expression.(*ast.AssignmentExpression)
	if !ok {
		t.Fatalf("expected assignment, got %T", stmt.Expression)
	}
	checkSpan(t, "value", assign.Value.Span(), 2, 6, 2, 7)
}

func TestParseSyntaxErrorReportsLocation(t *testing.T) {
	err := expectParseError(t, "int a = 1;\nint x = ;\n", "syntax error")
	if err.Span.Start.Line != 2 {
		t.Fatalf("expected error on line 2, got %d (%v)", err.Span.Start.Line, err)
	}
}

func TestParseRejectsUnsupportedConstructs(t *testing.T) {
	cases := []struct {
		source   string
		fragment string
	}{
		{"class A { }", "type declaration is not supported"},
		{"Runnable r = () -> { };", "lambda expression is not supported"},
		{"Object o = this;", "this is not supported"},
		{"import java.util.List;", "import declaration is not supported"},
		{"Object o = String.class;", "class literal is not supported"},
		{"java.util.List<String> xs = null;", "generic type is not supported"},
		{"int x = 2147483648;", "integer number too large"},
		{"int[] a = new int[2]{1, 2};", ""},
	}
	for _, tc := range cases {
		expectParseError(t, tc.source, tc.fragment)
	}
}

func TestIncompleteInput(t *testing.T) {
	p := newTestParser(t)
	for _, source := range []string{"int fib(int n) {\n  return n;", "{ int x = 1;", "if (ok) {"} {
		_, err := p.ParseScript([]byte(source))
		if err == nil || !IsIncomplete(err) {
			t.Fatalf("ParseScript(%q): expected incomplete input, got %v", source, err)
		}
	}
	_, err := p.ParseScript([]byte("int x = ;\nint y = 2;\n"))
	if err == nil || IsIncomplete(err) {
		t.Fatalf("expected a complete syntax error, got %v", err)
	}
}
