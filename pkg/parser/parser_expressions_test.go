package parser

import (
	"math"
	"testing"

	"javelin/interpreter-go/pkg/ast"
	"javelin/interpreter-go/pkg/types"
)

func TestParseExpression(t *testing.T) {
	cases := []struct {
		source string
		want   ast.Expression
	}{
		{"1 + 2", ast.Bin("+", ast.Int(1), ast.Int(2))},
		{"(1 + 2) * 3", ast.Bin("*", ast.Bin("+", ast.Int(1), ast.Int(2)), ast.Int(3))},
		{"a && !b || c", ast.Bin("||", ast.Bin("&&", ast.ID("a"), ast.Un("!", ast.ID("b"))), ast.ID("c"))},
		{"-x + ~y", ast.Bin("+", ast.Un("-", ast.ID("x")), ast.Un("~", ast.ID("y")))},
		{"-2147483648", ast.Int(math.MinInt32)},
		{"-(1)", ast.Un("-", ast.Int(1))},
		{"x >>>= 3", ast.AssignOp(">>>=", ast.ID("x"), ast.Int(3))},
		{"a = b = 0", ast.Assign(ast.ID("a"), ast.Assign(ast.ID("b"), ast.Int(0)))},
		{"++i", ast.PreInc(ast.ID("i"))},
		{"xs[i]--", ast.PostDec(ast.Index(ast.ID("xs"), ast.ID("i")))},
		{"ok ? 1 : 2.5f", ast.Cond(ast.ID("ok"), ast.Int(1), ast.Flt(2.5))},
		{"(long) n", ast.Cast(ast.Prim(types.Long), ast.ID("n"))},
		{"(String[]) o", ast.Cast(ast.ArrT(ast.Ty("String")), ast.ID("o"))},
		{"o instanceof Integer", ast.InstOf(ast.ID("o"), ast.Ty("Integer"))},
		{"grid[1][2]", ast.Index(ast.Index(ast.ID("grid"), ast.Int(1)), ast.Int(2))},
		{"xs.length", ast.Member(ast.ID("xs"), "length")},
		{"s.charAt(0)", ast.Invoke(ast.ID("s"), "charAt", ast.Int(0))},
		{"Math.max(1L, 2)", ast.Invoke(ast.ID("Math"), "max", ast.Long(1), ast.Int(2))},
		{"new Object()", ast.New(ast.Ty("Object"))},
		{"new java.lang.Integer(7)", ast.New(ast.Ty("java.lang.Integer"), ast.Int(7))},
		{"new int[2][]", ast.NewArrayAllocation(ast.Prim(types.Int), []ast.Expression{ast.Int(2)}, 1, nil)},
		{"new long[n][m]", ast.NewArr(ast.Prim(types.Long), ast.ID("n"), ast.ID("m"))},
		{"new int[]{1, 2}", ast.NewArrInit(ast.Prim(types.Int), 1, ast.ArrInit(ast.Int(1), ast.Int(2)))},
		{"new String[][]{{\"a\"}, {}}", ast.NewArrInit(ast.Ty("String"), 2, ast.ArrInit(ast.ArrInit(ast.Str("a")), ast.ArrInit()))},
		{"'\\n'", ast.Chr('\n')},
		{"'\\u0041'", ast.Chr('A')},
		{"\"\\u00e9t\\u00e9\"", ast.Str("été")},
		{"\"😀\"", ast.Str("😀")},
		{"null", ast.Null()},
		{"true", ast.Bool(true)},
		{"0x7FFF_FFFF", ast.Int(math.MaxInt32)},
		{"1e3", ast.Dbl(1000)},
		{"0x1p4", ast.Dbl(16)},
	}

	p := newTestParser(t)
	for _, tc := range cases {
		got, err := p.ParseExpression([]byte(tc.source))
		if err != nil {
			t.Fatalf("ParseExpression(%q): %v", tc.source, err)
		}
		assertNodesEqual(t, tc.want, got)
	}
}

func TestParseExpressionRejectsStatements(t *testing.T) {
	p := newTestParser(t)
	if _, err := p.ParseExpression([]byte("int x = 1")); err == nil {
		t.Fatalf("expected error for a declaration")
	}
}

func TestParseMethodCallWithoutArgumentsHasNoArgs(t *testing.T) {
	p := newTestParser(t)
	expr, err := p.ParseExpression([]byte("f()"))
	if err != nil {
		t.Fatalf("ParseExpression: %v", err)
	}
	call, ok := expr.(*ast.MethodCall)
	if !ok {
		t.Fatalf("expected method call, got %T", expr)
	}
	if call.Receiver != nil || call.Name != "f" || len(call.Args) != 0 {
		t.Fatalf("unexpected call %#v", call)
	}
}
