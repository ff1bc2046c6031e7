package typechecker

import (
	"testing"

	"javelin/interpreter-go/pkg/ast"
	"javelin/interpreter-go/pkg/resolver"
	"javelin/interpreter-go/pkg/runtime"
	"javelin/interpreter-go/pkg/types"
)

func newChecker() (*Checker, *Context) {
	return New(resolver.NewLibrary()), NewContext()
}

func mustCheck(t *testing.T, c *Checker, ctx *Context, expr ast.Expression) (ast.Expression, types.Type) {
	t.Helper()
	checked, typ, err := c.CheckExpression(ctx, expr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return checked, typ
}

func mustDeclare(t *testing.T, c *Checker, ctx *Context, stmts ...ast.Statement) {
	t.Helper()
	for _, stmt := range stmts {
		if err := c.CheckStatement(ctx, stmt); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
}

func expectKind(t *testing.T, err error, want ErrorKind) *Error {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	terr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T (%v)", err, err)
	}
	if terr.Kind != want {
		t.Fatalf("expected %s error, got %s: %v", want, terr.Kind, err)
	}
	return terr
}

func TestIntegerAdditionFoldsToInt(t *testing.T) {
	c, ctx := newChecker()
	expr, typ := mustCheck(t, c, ctx, ast.Bin("+", ast.Int(1), ast.Int(2)))
	if !types.Identical(typ, types.IntType) {
		t.Fatalf("expected int, got %s", typ.Name())
	}
	if expr.Info().Constant != (runtime.IntValue{Val: 3}) {
		t.Fatalf("expected folded 3, got %#v", expr.Info().Constant)
	}
}

func TestStringConcatenationTakesStringType(t *testing.T) {
	c, ctx := newChecker()
	expr, typ := mustCheck(t, c, ctx, ast.Bin("+", ast.Str("x"), ast.Int(1)))
	if !types.IsString(typ) {
		t.Fatalf("expected String, got %s", typ.Name())
	}
	if expr.Info().Constant != (runtime.StringValue{Val: "x1"}) {
		t.Fatalf("expected folded \"x1\", got %#v", expr.Info().Constant)
	}
	bin := expr.(*ast.BinaryExpression)
	if !types.IsString(bin.OperandType) {
		t.Fatalf("expected String operand type, got %v", bin.OperandType)
	}
}

func TestNumericPromotionTable(t *testing.T) {
	c, ctx := newChecker()
	mustDeclare(t, c, ctx,
		ast.Var(ast.Prim(types.Byte), "b", ast.Int(1)),
		ast.Var(ast.Prim(types.Char), "ch", ast.Chr('a')),
		ast.Var(ast.Prim(types.Long), "l", ast.Long(2)),
		ast.Var(ast.Prim(types.Float), "f", ast.Flt(1.5)),
	)
	cases := []struct {
		expr ast.Expression
		want types.Type
	}{
		{ast.Bin("*", ast.ID("b"), ast.ID("b")), types.IntType},
		{ast.Bin("+", ast.ID("ch"), ast.ID("b")), types.IntType},
		{ast.Bin("-", ast.ID("l"), ast.ID("b")), types.LongType},
		{ast.Bin("/", ast.ID("l"), ast.ID("f")), types.FloatType},
		{ast.Bin("%", ast.ID("f"), ast.Dbl(2)), types.DoubleType},
		{ast.Bin("<<", ast.ID("b"), ast.ID("l")), types.IntType},
		{ast.Bin(">>>", ast.ID("l"), ast.ID("b")), types.LongType},
		{ast.Bin("&", ast.ID("ch"), ast.ID("l")), types.LongType},
		{ast.Bin("<", ast.ID("b"), ast.ID("f")), types.BooleanType},
		{ast.Un("-", ast.ID("ch")), types.IntType},
		{ast.Un("~", ast.ID("l")), types.LongType},
	}
	for _, tc := range cases {
		_, typ := mustCheck(t, c, ctx, tc.expr)
		if !types.Identical(typ, tc.want) {
			t.Fatalf("%s: expected %s, got %s", tc.expr.NodeType(), tc.want.Name(), typ.Name())
		}
	}
}

func TestArithmeticRejectsBooleanAndNull(t *testing.T) {
	c, ctx := newChecker()
	_, _, err := c.CheckExpression(ctx, ast.Bin("+", ast.Bool(true), ast.Int(1)))
	expectKind(t, err, TypeMismatch)
	_, _, err = c.CheckExpression(ctx, ast.Bin("*", ast.Null(), ast.Int(1)))
	expectKind(t, err, TypeMismatch)
	_, _, err = c.CheckExpression(ctx, ast.Bin("<<", ast.Dbl(1), ast.Int(1)))
	terr := expectKind(t, err, TypeMismatch)
	if terr.Variant != VariantShift {
		t.Fatalf("expected shift variant, got %q", terr.Variant)
	}
}

func TestUnboxInsertedOnceForBoxedOperands(t *testing.T) {
	c, ctx := newChecker()
	mustDeclare(t, c, ctx, ast.Var(ast.Ty("Integer"), "boxed", ast.Int(4)))

	decl := ast.Var(ast.Prim(types.Int), "x", ast.ID("boxed"))
	mustDeclare(t, c, ctx, decl)
	unbox, ok := decl.Declarators[0].Init.(*ast.UnboxExpression)
	if !ok {
		t.Fatalf("expected unbox wrapper, got %T", decl.Declarators[0].Init)
	}
	if _, nested := unbox.Operand.(*ast.UnboxExpression); nested {
		t.Fatalf("expected a single unbox wrapper")
	}
	if !types.Identical(unbox.Info().Type, types.IntType) {
		t.Fatalf("expected wrapper typed int, got %s", unbox.Info().Type.Name())
	}

	plain := ast.Var(ast.Prim(types.Int), "y", ast.ID("x"))
	mustDeclare(t, c, ctx, plain)
	if _, wrapped := plain.Declarators[0].Init.(*ast.UnboxExpression); wrapped {
		t.Fatalf("primitive operand must not be unboxed")
	}

	again, err := c.unbox(unbox)
	if err != nil || again != ast.Expression(unbox) {
		t.Fatalf("expected unbox of a primitive to be a no-op, got %T (%v)", again, err)
	}
}

func TestBoxInsertedForPrimitiveToReference(t *testing.T) {
	c, ctx := newChecker()
	decl := ast.Var(ast.Ty("Object"), "o", ast.Int(7))
	mustDeclare(t, c, ctx, decl)
	box, ok := decl.Declarators[0].Init.(*ast.BoxExpression)
	if !ok {
		t.Fatalf("expected box wrapper, got %T", decl.Declarators[0].Init)
	}
	if box.Info().Type.Name() != "java.lang.Integer" {
		t.Fatalf("expected Integer box, got %s", box.Info().Type.Name())
	}

	err := c.CheckStatement(ctx, ast.Var(ast.Ty("Long"), "l", ast.Int(7)))
	expectKind(t, err, IncompatibleTypes)
}

func TestConstantNarrowingOnAssignment(t *testing.T) {
	c, ctx := newChecker()
	mustDeclare(t, c, ctx, ast.Var(ast.Prim(types.Byte), "ok", ast.Int(100)))
	err := c.CheckStatement(ctx, ast.Var(ast.Prim(types.Byte), "bad", ast.Int(200)))
	terr := expectKind(t, err, TypeMismatch)
	if terr.Variant != VariantAssignment {
		t.Fatalf("expected assignment variant, got %q", terr.Variant)
	}
	mustDeclare(t, c, ctx, ast.Var(ast.Ty("Character"), "boxedChar", ast.Int(65)))
	err = c.CheckStatement(ctx, ast.Var(ast.Prim(types.Int), "fromLong", ast.Long(1)))
	expectKind(t, err, TypeMismatch)
}

func TestNewExpressionReturnsCachedType(t *testing.T) {
	c, ctx := newChecker()
	alloc := ast.New(ast.Ty("StringBuilder"))
	_, first := mustCheck(t, c, ctx, alloc)
	ctor := alloc.Constructor
	alloc.Type = ast.Ty("NoSuchClass")
	_, second := mustCheck(t, c, ctx, alloc)
	if !types.Identical(first, second) || alloc.Constructor != ctor {
		t.Fatalf("expected cached type %s, got %s", first.Name(), second.Name())
	}
}

func TestUnboundNameAndRedefinition(t *testing.T) {
	c, ctx := newChecker()
	_, _, err := c.CheckExpression(ctx, ast.ID("missing"))
	expectKind(t, err, UnboundName)

	mustDeclare(t, c, ctx, ast.Var(ast.Prim(types.Int), "x", ast.Int(1)))
	err = c.CheckStatement(ctx, ast.Var(ast.Prim(types.Int), "x", ast.Int(2)))
	expectKind(t, err, Redefinition)

	mustDeclare(t, c, ctx, ast.Blk(ast.Var(ast.Prim(types.Long), "x", ast.Long(3))))
}

func TestStaticMembersThroughClassNames(t *testing.T) {
	c, ctx := newChecker()
	expr, typ := mustCheck(t, c, ctx, ast.Member(ast.ID("Integer"), "MAX_VALUE"))
	if _, ok := expr.(*ast.StaticFieldAccess); !ok {
		t.Fatalf("expected static field access, got %T", expr)
	}
	if !types.Identical(typ, types.IntType) || expr.Info().Constant != (runtime.IntValue{Val: 2147483647}) {
		t.Fatalf("expected folded Integer.MAX_VALUE, got %#v", expr.Info().Constant)
	}

	call, typ := mustCheck(t, c, ctx, ast.Invoke(ast.ID("Math"), "max", ast.Int(1), ast.Long(2)))
	static, ok := call.(*ast.StaticMethodCall)
	if !ok || !types.Identical(typ, types.LongType) {
		t.Fatalf("expected Math.max(long, long), got %T %s", call, typ.Name())
	}
	if static.ClassName != "java.lang.Math" {
		t.Fatalf("expected qualified class name, got %s", static.ClassName)
	}

	_, typ = mustCheck(t, c, ctx, ast.Invoke(ast.Member(ast.ID("System"), "out"), "println", ast.Chr('x')))
	if !types.IsVoid(typ) {
		t.Fatalf("expected void, got %s", typ.Name())
	}

	_, _, err := c.CheckExpression(ctx, ast.Bin("+", ast.Invoke(ast.Member(ast.ID("System"), "out"), "println"), ast.Int(1)))
	expectKind(t, err, TypeMismatch)
}

func TestMemberLookupFailures(t *testing.T) {
	c, ctx := newChecker()
	_, _, err := c.CheckExpression(ctx, ast.Invoke(ast.Str("s"), "nope"))
	expectKind(t, err, NoSuchMember)
	_, _, err = c.CheckExpression(ctx, ast.Invoke(ast.Member(ast.ID("System"), "out"), "println", ast.Null()))
	expectKind(t, err, AmbiguousMember)
	_, _, err = c.CheckExpression(ctx, ast.Invoke(ast.Int(1), "toString"))
	terr := expectKind(t, err, TypeMismatch)
	if terr.Variant != VariantReceiver {
		t.Fatalf("expected receiver variant, got %q", terr.Variant)
	}
}

func TestAssignmentTargets(t *testing.T) {
	c, ctx := newChecker()
	_, _, err := c.CheckExpression(ctx, ast.Assign(ast.Int(1), ast.Int(2)))
	expectKind(t, err, InvalidAssignmentTarget)

	mustDeclare(t, c, ctx, ast.FinalVar(ast.Prim(types.Int), "k", ast.Int(1)))
	_, _, err = c.CheckExpression(ctx, ast.Assign(ast.ID("k"), ast.Int(2)))
	expectKind(t, err, InvalidAssignmentTarget)

	_, _, err = c.CheckExpression(ctx, ast.Assign(ast.Member(ast.ID("Math"), "PI"), ast.Dbl(3)))
	expectKind(t, err, InvalidAssignmentTarget)

	mustDeclare(t, c, ctx, ast.FinalVar(ast.Prim(types.Int), "blank", nil))
	mustCheck(t, c, ctx, ast.Assign(ast.ID("blank"), ast.Int(5)))
}

func TestCompoundAssignmentNarrowsImplicitly(t *testing.T) {
	c, ctx := newChecker()
	mustDeclare(t, c, ctx,
		ast.Var(ast.Prim(types.Byte), "b", ast.Int(1)),
		ast.Var(ast.Ty("String"), "s", ast.Str("a")),
		ast.Var(ast.Ty("Integer"), "boxed", ast.Int(1)),
	)
	expr, typ := mustCheck(t, c, ctx, ast.AssignOp("+=", ast.ID("b"), ast.Long(300)))
	if !types.Identical(typ, types.ByteType) {
		t.Fatalf("expected byte, got %s", typ.Name())
	}
	if assign := expr.(*ast.AssignmentExpression); !types.Identical(assign.OperandType, types.LongType) {
		t.Fatalf("expected long operand type, got %s", assign.OperandType.Name())
	}
	_, typ = mustCheck(t, c, ctx, ast.AssignOp("+=", ast.ID("s"), ast.Int(1)))
	if !types.IsString(typ) {
		t.Fatalf("expected String, got %s", typ.Name())
	}
	_, typ = mustCheck(t, c, ctx, ast.AssignOp("*=", ast.ID("boxed"), ast.Int(3)))
	if typ.Name() != "java.lang.Integer" {
		t.Fatalf("expected Integer, got %s", typ.Name())
	}
	_, _, err := c.CheckExpression(ctx, ast.AssignOp("-=", ast.ID("s"), ast.Int(1)))
	expectKind(t, err, TypeMismatch)
}

func TestCompoundAssignmentToBoxedTargetKeepsItsPrimitive(t *testing.T) {
	c, ctx := newChecker()
	mustDeclare(t, c, ctx,
		ast.Var(ast.Ty("Integer"), "bi", ast.Int(5)),
		ast.Var(ast.Ty("Long"), "bl", ast.Long(5)),
		ast.Var(ast.Ty("Byte"), "bb", ast.Int(5)),
	)
	rejected := []*ast.AssignmentExpression{
		ast.AssignOp("+=", ast.ID("bi"), ast.Long(1)),
		ast.AssignOp("*=", ast.ID("bi"), ast.Dbl(2)),
		ast.AssignOp("+=", ast.ID("bb"), ast.Int(1)),
		ast.AssignOp("<<=", ast.ID("bb"), ast.Int(1)),
	}
	for _, expr := range rejected {
		_, _, err := c.CheckExpression(ctx, expr)
		expectKind(t, err, IncompatibleTypes)
	}
	mustCheck(t, c, ctx, ast.AssignOp("+=", ast.ID("bl"), ast.Int(1)))
	mustCheck(t, c, ctx, ast.AssignOp(">>=", ast.ID("bl"), ast.Long(1)))
	mustCheck(t, c, ctx, ast.AssignOp("-=", ast.ID("bi"), ast.Chr('a')))
}
