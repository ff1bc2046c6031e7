package interpreter

import (
	"bytes"
	"errors"
	"testing"

	"javelin/interpreter-go/pkg/ast"
	"javelin/interpreter-go/pkg/resolver"
	"javelin/interpreter-go/pkg/runtime"
	"javelin/interpreter-go/pkg/typechecker"
	"javelin/interpreter-go/pkg/types"
)

// harness checks and then evaluates statements against persistent contexts.
type harness struct {
	t        *testing.T
	lib      *resolver.Library
	checker  *typechecker.Checker
	checkCtx *typechecker.Context
	interp   *Interpreter
	ctx      *Context
	out      *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	return newHarnessWithConfig(t, Config{})
}

func newHarnessWithConfig(t *testing.T, cfg Config) *harness {
	t.Helper()
	lib := resolver.NewLibrary()
	out := &bytes.Buffer{}
	cfg.Stdout = out
	cfg.Monitors = lib.Monitors
	return &harness{
		t:        t,
		lib:      lib,
		checker:  typechecker.New(lib),
		checkCtx: typechecker.NewContext(),
		interp:   New(lib, cfg),
		ctx:      NewContext(),
		out:      out,
	}
}

// exec runs each statement and returns the last statement's result.
func (h *harness) exec(stmts ...ast.Statement) (runtime.Value, error) {
	h.t.Helper()
	var (
		result runtime.Value
		err    error
	)
	for _, stmt := range stmts {
		if cerr := h.checker.CheckStatement(h.checkCtx, stmt); cerr != nil {
			h.t.Fatalf("unexpected check error: %v", cerr)
		}
		if result, err = h.interp.ExecuteStatement(h.ctx, stmt); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (h *harness) mustExec(stmts ...ast.Statement) runtime.Value {
	h.t.Helper()
	result, err := h.exec(stmts...)
	if err != nil {
		h.t.Fatalf("unexpected error: %v", err)
	}
	return result
}

func (h *harness) eval(expr ast.Expression) (runtime.Value, error) {
	h.t.Helper()
	checked, _, err := h.checker.CheckExpression(h.checkCtx, expr)
	if err != nil {
		h.t.Fatalf("unexpected check error: %v", err)
	}
	return h.interp.Evaluate(h.ctx, checked)
}

func (h *harness) mustEval(expr ast.Expression) runtime.Value {
	h.t.Helper()
	value, err := h.eval(expr)
	if err != nil {
		h.t.Fatalf("unexpected error: %v", err)
	}
	return value
}

func expectThrown(t *testing.T, err error, className string) *runtime.Thrown {
	t.Helper()
	thrown, ok := AsThrown(err)
	if !ok {
		t.Fatalf("expected %s to be thrown, got %v", className, err)
	}
	if thrown.ClassName() != className {
		t.Fatalf("expected %s, got %s", className, thrown.ClassName())
	}
	return thrown
}

func expectRuntimeError(t *testing.T, err error, kind RuntimeErrorKind) *RuntimeError {
	t.Helper()
	var rerr *RuntimeError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected %s runtime error, got %v", kind, err)
	}
	if rerr.Kind != kind {
		t.Fatalf("expected %s, got %s: %v", kind, rerr.Kind, err)
	}
	return rerr
}

func TestIntegerAddition(t *testing.T) {
	h := newHarness(t)
	if got := h.mustEval(ast.Bin("+", ast.Int(1), ast.Int(2))); got != (runtime.IntValue{Val: 3}) {
		t.Fatalf("expected 3, got %#v", got)
	}
	h.mustExec(ast.Var(ast.Prim(types.Int), "a", ast.Int(1)))
	if got := h.mustEval(ast.Bin("+", ast.ID("a"), ast.Int(2))); got != (runtime.IntValue{Val: 3}) {
		t.Fatalf("expected 3, got %#v", got)
	}
}

func TestStringConcatenation(t *testing.T) {
	h := newHarness(t)
	if got := h.mustEval(ast.Bin("+", ast.Str("x"), ast.Int(1))); got != (runtime.StringValue{Val: "x1"}) {
		t.Fatalf("expected x1, got %#v", got)
	}
	h.mustExec(
		ast.Var(ast.Ty("String"), "s", ast.Null()),
		ast.Var(ast.Prim(types.Double), "d", ast.Int(1)),
		ast.Var(ast.Prim(types.Char), "c", ast.Chr('c')),
		ast.Var(ast.Ty("Integer"), "boxed", ast.Int(7)),
	)
	got := h.mustEval(ast.Bin("+", ast.Bin("+", ast.Bin("+", ast.Bin("+", ast.Str("n="), ast.ID("s")), ast.ID("d")), ast.ID("c")), ast.ID("boxed")))
	if got != (runtime.StringValue{Val: "n=null1.0c7"}) {
		t.Fatalf("unexpected concatenation %#v", got)
	}
	got = h.mustEval(ast.Bin("+", ast.Bin("+", ast.Int(1), ast.Int(2)), ast.Str("!")))
	if got != (runtime.StringValue{Val: "3!"}) {
		t.Fatalf("expected 3!, got %#v", got)
	}
}

func TestFoldedConstantsAgreeWithEvaluation(t *testing.T) {
	operands := []struct {
		left, right func() ast.Expression
		leftType    types.PrimitiveKind
		rightType   types.PrimitiveKind
	}{
		{func() ast.Expression { return ast.Int(17) }, func() ast.Expression { return ast.Int(5) }, types.Int, types.Int},
		{func() ast.Expression { return ast.Int(-17) }, func() ast.Expression { return ast.Int(5) }, types.Int, types.Int},
		{func() ast.Expression { return ast.Long(1 << 40) }, func() ast.Expression { return ast.Int(3) }, types.Long, types.Int},
		{func() ast.Expression { return ast.Dbl(7.5) }, func() ast.Expression { return ast.Int(2) }, types.Double, types.Int},
		{func() ast.Expression { return ast.Flt(1.25) }, func() ast.Expression { return ast.Long(3) }, types.Float, types.Long},
		{func() ast.Expression { return ast.Chr('z') }, func() ast.Expression { return ast.Int(2) }, types.Char, types.Int},
	}
	ops := []string{"+", "-", "*", "/", "%", "<", ">=", "=="}
	for _, operand := range operands {
		for _, op := range ops {
			h := newHarness(t)
			folded := h.mustEval(ast.Bin(op, operand.left(), operand.right()))
			h.mustExec(
				ast.Var(ast.Prim(operand.leftType), "l", operand.left()),
				ast.Var(ast.Prim(operand.rightType), "r", operand.right()),
			)
			evaluated := h.mustEval(ast.Bin(op, ast.ID("l"), ast.ID("r")))
			if folded != evaluated {
				t.Fatalf("%s: folded %#v, evaluated %#v", op, folded, evaluated)
			}
		}
	}
}

func TestPrimitiveArithmeticSemantics(t *testing.T) {
	h := newHarness(t)
	h.mustExec(
		ast.Var(ast.Prim(types.Int), "max", ast.Member(ast.ID("Integer"), "MAX_VALUE")),
		ast.Var(ast.Prim(types.Byte), "b", ast.Int(10)),
		ast.Var(ast.Prim(types.Int), "neg", ast.Int(-16)),
	)
	if got := h.mustEval(ast.Bin("+", ast.ID("max"), ast.Int(1))); got != (runtime.IntValue{Val: -2147483648}) {
		t.Fatalf("expected wrap-around, got %#v", got)
	}
	if got := h.mustEval(ast.AssignOp("+=", ast.ID("b"), ast.Int(300))); got != (runtime.ByteValue{Val: 54}) {
		t.Fatalf("expected (byte)310 == 54, got %#v", got)
	}
	if got := h.mustEval(ast.Bin(">>>", ast.ID("neg"), ast.Int(28))); got != (runtime.IntValue{Val: 15}) {
		t.Fatalf("expected 15, got %#v", got)
	}
	if got := h.mustEval(ast.Bin("<<", ast.ID("neg"), ast.Long(33))); got != (runtime.IntValue{Val: -32}) {
		t.Fatalf("expected shift count masked to 1, got %#v", got)
	}
	if got := h.mustEval(ast.Cast(ast.Prim(types.Int), ast.Dbl(1e20))); got != (runtime.IntValue{Val: 2147483647}) {
		t.Fatalf("expected saturation, got %#v", got)
	}
}

func TestDivisionByZeroIsCatchable(t *testing.T) {
	h := newHarness(t)
	h.mustExec(
		ast.Var(ast.Prim(types.Int), "zero", ast.Int(0)),
		ast.Var(ast.Ty("String"), "msg", ast.Null()),
	)
	_, err := h.exec(ast.Stmt(ast.Bin("/", ast.Int(1), ast.ID("zero"))))
	expectThrown(t, err, runtime.ArithmeticException)

	h.mustExec(ast.Try(
		ast.Blk(ast.Stmt(ast.Bin("%", ast.Int(1), ast.ID("zero")))),
		[]*ast.CatchClause{ast.Catch(ast.Ty("ArithmeticException"), "e", ast.Blk(
			ast.Stmt(ast.Assign(ast.ID("msg"), ast.Invoke(ast.ID("e"), "getMessage"))),
		))},
		nil,
	))
	if got := h.mustEval(ast.ID("msg")); got != (runtime.StringValue{Val: "/ by zero"}) {
		t.Fatalf("expected / by zero, got %#v", got)
	}
	if got := h.mustEval(ast.Bin("/", ast.Dbl(1), ast.Dbl(0))); got.(runtime.DoubleValue).Val <= 0 {
		t.Fatalf("expected +Infinity, got %#v", got)
	}
}

func TestUncaughtExceptionRunsFinallyOnce(t *testing.T) {
	h := newHarness(t)
	h.mustExec(ast.Var(ast.Prim(types.Int), "count", ast.Int(0)))
	_, err := h.exec(ast.Try(
		ast.Blk(ast.Throw(ast.New(ast.Ty("IllegalStateException"), ast.Str("boom")))),
		[]*ast.CatchClause{ast.Catch(ast.Ty("NullPointerException"), "e", ast.Blk(
			ast.Stmt(ast.AssignOp("+=", ast.ID("count"), ast.Int(100))),
		))},
		ast.Blk(ast.Stmt(ast.PostInc(ast.ID("count")))),
	))
	thrown := expectThrown(t, err, "java.lang.IllegalStateException")
	if msg, _ := runtime.ExceptionMessage(thrown.Value); msg != "boom" {
		t.Fatalf("expected boom, got %q", msg)
	}
	if got := h.mustEval(ast.ID("count")); got != (runtime.IntValue{Val: 1}) {
		t.Fatalf("expected finally to run once, count %#v", got)
	}
	if h.ctx.Depth() != 1 {
		t.Fatalf("expected scopes released, depth %d", h.ctx.Depth())
	}
}

func TestBlankFinalReadBeforeAssignment(t *testing.T) {
	h := newHarness(t)
	h.mustExec(ast.FinalVar(ast.Prim(types.Int), "x", nil))
	_, err := h.eval(ast.ID("x"))
	rerr := expectRuntimeError(t, err, UninitializedVariable)
	if rerr.Fatal() {
		t.Fatalf("uninitialized read must not be fatal")
	}
	h.mustExec(ast.Stmt(ast.Assign(ast.ID("x"), ast.Int(5))))
	if got := h.mustEval(ast.Bin("*", ast.ID("x"), ast.Int(2))); got != (runtime.IntValue{Val: 10}) {
		t.Fatalf("expected 10, got %#v", got)
	}
	stmt := ast.Stmt(ast.Assign(ast.ID("x"), ast.Int(6)))
	err = h.checker.CheckStatement(h.checkCtx, stmt)
	if kind, _ := typechecker.KindOf(err); kind != typechecker.InvalidAssignmentTarget {
		t.Fatalf("expected second assignment to be rejected, got %v", err)
	}
}

func TestShortCircuitSkipsRightOperand(t *testing.T) {
	h := newHarness(t)
	h.mustExec(ast.Var(ast.Prim(types.Int), "zero", ast.Int(0)))
	risky := ast.Bin("==", ast.Bin("/", ast.Int(1), ast.ID("zero")), ast.Int(0))
	if got := h.mustEval(ast.Bin("&&", ast.Bin("!=", ast.ID("zero"), ast.Int(0)), risky)); got != (runtime.BoolValue{Val: false}) {
		t.Fatalf("expected false, got %#v", got)
	}
	risky = ast.Bin("==", ast.Bin("/", ast.Int(1), ast.ID("zero")), ast.Int(0))
	if got := h.mustEval(ast.Bin("||", ast.Bin("==", ast.ID("zero"), ast.Int(0)), risky)); got != (runtime.BoolValue{Val: true}) {
		t.Fatalf("expected true, got %#v", got)
	}
}

func TestBoxingSemantics(t *testing.T) {
	h := newHarness(t)
	h.mustExec(
		ast.Var(ast.Ty("Integer"), "a", ast.Int(127)),
		ast.Var(ast.Ty("Integer"), "b", ast.Int(127)),
		ast.Var(ast.Ty("Integer"), "missing", ast.Null()),
	)
	if got := h.mustEval(ast.Bin("==", ast.ID("a"), ast.ID("b"))); got != (runtime.BoolValue{Val: false}) {
		t.Fatalf("expected distinct boxes, got %#v", got)
	}
	if got := h.mustEval(ast.Invoke(ast.ID("a"), "equals", ast.ID("b"))); got != (runtime.BoolValue{Val: true}) {
		t.Fatalf("expected equal boxes, got %#v", got)
	}
	if got := h.mustEval(ast.Bin("==", ast.ID("a"), ast.Int(127))); got != (runtime.BoolValue{Val: true}) {
		t.Fatalf("expected unboxed comparison, got %#v", got)
	}
	roundTrip := h.mustEval(ast.Cast(ast.Ty("Integer"), ast.Cast(ast.Prim(types.Int), ast.ID("a"))))
	if !h.mustEval(ast.Invoke(ast.ID("a"), "equals", ast.Cast(ast.Ty("Integer"), ast.Invoke(ast.ID("a"), "intValue")))).(runtime.BoolValue).Val {
		t.Fatalf("expected box(unbox(a)) to equal a")
	}
	if roundTrip == h.mustEval(ast.ID("a")) {
		t.Fatalf("expected a fresh box")
	}

	if got := h.mustEval(ast.PostInc(ast.ID("a"))); got.(*runtime.ObjectValue).Native != (runtime.IntValue{Val: 127}) {
		t.Fatalf("expected old value 127, got %#v", got)
	}
	if got := h.mustEval(ast.Bin("+", ast.ID("a"), ast.Int(0))); got != (runtime.IntValue{Val: 128}) {
		t.Fatalf("expected 128, got %#v", got)
	}
	if got := h.mustEval(ast.AssignOp("*=", ast.ID("a"), ast.Int(2))); got.(*runtime.ObjectValue).Native != (runtime.IntValue{Val: 256}) {
		t.Fatalf("expected boxed 256, got %#v", got)
	}

	_, err := h.exec(ast.Var(ast.Prim(types.Int), "n", ast.ID("missing")))
	expectThrown(t, err, runtime.NullPointerException)
	_, err = h.eval(ast.PreInc(ast.ID("missing")))
	expectThrown(t, err, runtime.NullPointerException)
}

func TestCompoundAssignmentEvaluatesTargetOnce(t *testing.T) {
	h := newHarness(t)
	h.mustExec(
		ast.Var(ast.ArrT(ast.Prim(types.Int)), "xs", ast.ArrInit(ast.Int(1), ast.Int(2), ast.Int(3))),
		ast.Var(ast.Prim(types.Int), "k", ast.Int(0)),
		ast.Stmt(ast.AssignOp("+=", ast.Index(ast.ID("xs"), ast.PostInc(ast.ID("k"))), ast.Int(10))),
	)
	if got := h.mustEval(ast.Index(ast.ID("xs"), ast.Int(0))); got != (runtime.IntValue{Val: 11}) {
		t.Fatalf("expected 11, got %#v", got)
	}
	if got := h.mustEval(ast.ID("k")); got != (runtime.IntValue{Val: 1}) {
		t.Fatalf("expected index evaluated once, k %#v", got)
	}
	h.mustExec(ast.Var(ast.Ty("String"), "s", ast.Str("a")))
	h.mustExec(ast.Stmt(ast.AssignOp("+=", ast.ID("s"), ast.Int(1))))
	if got := h.mustEval(ast.ID("s")); got != (runtime.StringValue{Val: "a1"}) {
		t.Fatalf("expected a1, got %#v", got)
	}
}

func TestArrayFaults(t *testing.T) {
	h := newHarness(t)
	h.mustExec(
		ast.Var(ast.ArrT(ast.Prim(types.Int)), "xs", ast.NewArr(ast.Prim(types.Int), ast.Int(3))),
		ast.Var(ast.ArrT(ast.Prim(types.Int)), "none", ast.Null()),
		ast.Var(ast.Prim(types.Int), "n", ast.Int(-1)),
		ast.Var(ast.ArrT(ast.Ty("Object")), "objs", ast.NewArr(ast.Ty("String"), ast.Int(1))),
	)
	if got := h.mustEval(ast.Index(ast.ID("xs"), ast.Int(2))); got != (runtime.IntValue{Val: 0}) {
		t.Fatalf("expected zeroed element, got %#v", got)
	}
	_, err := h.eval(ast.Index(ast.ID("xs"), ast.Int(3)))
	thrown := expectThrown(t, err, runtime.ArrayIndexOutOfBoundsException)
	if msg, _ := runtime.ExceptionMessage(thrown.Value); msg != "Index 3 out of bounds for length 3" {
		t.Fatalf("unexpected message %q", msg)
	}
	_, err = h.eval(ast.Member(ast.ID("none"), "length"))
	expectThrown(t, err, runtime.NullPointerException)
	_, err = h.eval(ast.NewArr(ast.Prim(types.Int), ast.ID("n")))
	expectThrown(t, err, runtime.NegativeArraySizeException)
	_, err = h.eval(ast.Assign(ast.Index(ast.ID("objs"), ast.Int(0)), ast.New(ast.Ty("Object"))))
	expectThrown(t, err, runtime.ArrayStoreException)

	grid := h.mustEval(ast.NewArr(ast.Prim(types.Long), ast.Int(2), ast.Int(3))).(*runtime.ArrayValue)
	inner := grid.Elements[1].(*runtime.ArrayValue)
	if len(grid.Elements) != 2 || len(inner.Elements) != 3 || inner.Elements[0] != (runtime.LongValue{}) {
		t.Fatalf("unexpected grid %#v", grid)
	}
}

func TestCastsAndInstanceOf(t *testing.T) {
	h := newHarness(t)
	h.mustExec(
		ast.Var(ast.Ty("Object"), "o", ast.Str("text")),
		ast.Var(ast.Ty("Object"), "nothing", ast.Null()),
	)
	if got := h.mustEval(ast.InstOf(ast.ID("o"), ast.Ty("String"))); got != (runtime.BoolValue{Val: true}) {
		t.Fatalf("expected instanceof String, got %#v", got)
	}
	if got := h.mustEval(ast.InstOf(ast.ID("nothing"), ast.Ty("Object"))); got != (runtime.BoolValue{Val: false}) {
		t.Fatalf("expected null instanceof to be false, got %#v", got)
	}
	_, err := h.eval(ast.Cast(ast.Ty("Integer"), ast.ID("o")))
	expectThrown(t, err, runtime.ClassCastException)
	if got := h.mustEval(ast.Cast(ast.Ty("Integer"), ast.ID("nothing"))); !runtime.IsNull(got) {
		t.Fatalf("expected null to cast, got %#v", got)
	}
	_, err = h.exec(ast.Var(ast.Ty("String"), "s", ast.ID("o")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestConditionalBoxesMixedBranches(t *testing.T) {
	h := newHarness(t)
	h.mustExec(
		ast.Var(ast.Prim(types.Boolean), "flag", ast.Bool(true)),
		ast.Var(ast.Ty("Object"), "o", ast.Cond(ast.ID("flag"), ast.Int(1), ast.Str("s"))),
	)
	if got := h.mustEval(ast.InstOf(ast.ID("o"), ast.Ty("Integer"))); got != (runtime.BoolValue{Val: true}) {
		t.Fatalf("expected boxed Integer, got %#v", got)
	}
	h.mustExec(ast.Var(ast.Prim(types.Byte), "b", ast.Int(3)))
	if got := h.mustEval(ast.Cond(ast.ID("flag"), ast.ID("b"), ast.Int(5))); got != (runtime.ByteValue{Val: 3}) {
		t.Fatalf("expected byte 3, got %#v", got)
	}
	if got := h.mustEval(ast.Cond(ast.Un("!", ast.ID("flag")), ast.ID("b"), ast.Long(5))); got != (runtime.LongValue{Val: 5}) {
		t.Fatalf("expected long 5, got %#v", got)
	}
}

func TestPrintStreamOutput(t *testing.T) {
	h := newHarness(t)
	out := ast.Member(ast.ID("System"), "out")
	h.mustExec(
		ast.Stmt(ast.Invoke(out, "println", ast.Bin("+", ast.Str("hi "), ast.Flt(1.5)))),
		ast.Stmt(ast.Invoke(out, "print", ast.Chr('x'))),
		ast.Stmt(ast.Invoke(out, "println", ast.Long(3))),
		ast.Var(ast.Prim(types.Short), "s", ast.Int(4)),
		ast.Stmt(ast.Invoke(out, "println", ast.ID("s"))),
		ast.Stmt(ast.Invoke(out, "println", ast.Bin("/", ast.Int(7), ast.Dbl(2)))),
	)
	if got := h.out.String(); got != "hi 1.5\nx3\n4\n3.5\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestSynchronizedReleasesMonitor(t *testing.T) {
	h := newHarness(t)
	h.mustExec(
		ast.Var(ast.Ty("Object"), "lock", ast.New(ast.Ty("Object"))),
		ast.Var(ast.Ty("Object"), "none", ast.Null()),
		ast.Var(ast.Prim(types.Int), "zero", ast.Int(0)),
	)
	lock, _ := h.ctx.Get("lock")
	_, err := h.exec(ast.Sync(ast.ID("lock"), ast.Blk(
		ast.Sync(ast.ID("lock"), ast.Blk()),
		ast.Stmt(ast.Bin("/", ast.Int(1), ast.ID("zero"))),
	)))
	expectThrown(t, err, runtime.ArithmeticException)
	if h.lib.Monitors.Held(lock) {
		t.Fatalf("expected monitor released after exception")
	}
	_, err = h.exec(ast.Sync(ast.ID("none"), ast.Blk()))
	expectThrown(t, err, runtime.NullPointerException)
}
