package resolver

import (
	"bytes"
	"errors"
	"testing"

	"javelin/interpreter-go/pkg/runtime"
	"javelin/interpreter-go/pkg/types"
)

func TestLookupMethodPrefersWideningOverBoxing(t *testing.T) {
	lib := NewLibrary()
	printStream := types.ClassType{ClassName: "java.io.PrintStream"}
	cases := []struct {
		arg  types.Type
		want types.Type
	}{
		{types.ByteType, types.IntType},
		{types.CharType, types.CharType},
		{types.LongType, types.LongType},
		{types.FloatType, types.FloatType},
		{types.StringType, types.StringType},
		{types.ClassType{ClassName: "java.lang.Integer"}, types.ObjectType},
		{types.ArrayType{Element: types.CharType}, types.ArrayType{Element: types.CharType}},
		{types.ArrayType{Element: types.IntType}, types.ObjectType},
	}
	for _, tc := range cases {
		method, err := lib.LookupMethod(printStream, "println", []types.Type{tc.arg})
		if err != nil {
			t.Fatalf("println(%s): unexpected error: %v", tc.arg.Name(), err)
		}
		if !types.Identical(method.Params[0], tc.want) {
			t.Fatalf("println(%s): expected parameter %s, got %s", tc.arg.Name(), tc.want.Name(), method.Params[0].Name())
		}
	}
}

func TestLookupMethodAmbiguousAndMissing(t *testing.T) {
	lib := NewLibrary()
	printStream := types.ClassType{ClassName: "java.io.PrintStream"}
	_, err := lib.LookupMethod(printStream, "println", []types.Type{types.Null})
	if !errors.Is(err, ErrAmbiguous) {
		t.Fatalf("expected ambiguous println(null), got %v", err)
	}
	_, err = lib.LookupMethod(types.StringType, "frobnicate", []types.Type{})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLookupMethodUsesBoxingPhase(t *testing.T) {
	lib := NewLibrary()
	integer := types.ClassType{ClassName: "java.lang.Integer"}
	method, err := lib.LookupMethod(integer, "compareTo", []types.Type{types.IntType})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !types.Identical(method.Params[0], integer) {
		t.Fatalf("expected compareTo(Integer), got %s", method.Signature())
	}
}

func TestIsAssignable(t *testing.T) {
	lib := NewLibrary()
	integer := types.ClassType{ClassName: "java.lang.Integer"}
	cases := []struct {
		from, to types.Type
		want     bool
	}{
		{integer, types.NumberType, true},
		{types.NumberType, integer, false},
		{types.Null, types.StringType, true},
		{types.ArrayType{Element: types.IntType}, types.ObjectType, true},
		{types.ArrayType{Element: types.IntType}, types.ArrayType{Element: types.LongType}, false},
		{types.ArrayType{Element: integer}, types.ArrayType{Element: types.NumberType}, true},
		{types.IntType, types.LongType, true},
		{types.LongType, types.IntType, false},
		{types.IntType, integer, false},
		{types.ClassType{ClassName: "java.lang.ArithmeticException"}, types.ThrowableType, true},
	}
	for _, tc := range cases {
		if got := lib.IsAssignable(tc.from, tc.to); got != tc.want {
			t.Fatalf("IsAssignable(%s, %s): expected %v, got %v", tc.from.Name(), tc.to.Name(), tc.want, got)
		}
	}
}

func TestInvokeDispatchesOnDynamicClass(t *testing.T) {
	lib := NewLibrary()
	ctx := &runtime.NativeCallContext{}
	toString, err := lib.LookupMethod(types.ObjectType, "toString", []types.Type{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctor, err := lib.LookupConstructor(types.ClassType{ClassName: "java.lang.Integer"}, []types.Type{types.IntType})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	boxed, err := lib.Construct(ctx, ctor, []runtime.Value{runtime.IntValue{Val: 42}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := lib.Invoke(ctx, toString, boxed, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != (runtime.StringValue{Val: "42"}) {
		t.Fatalf("expected \"42\", got %#v", got)
	}
	_, err = lib.Invoke(ctx, toString, runtime.NullValue{}, nil)
	var fault *runtime.Fault
	if !errors.As(err, &fault) || fault.ClassName != runtime.NullPointerException {
		t.Fatalf("expected NullPointerException fault, got %v", err)
	}
}

func TestBoxingCreatesFreshReferencesThatAreEqual(t *testing.T) {
	lib := NewLibrary()
	ctx := &runtime.NativeCallContext{}
	integer := types.ClassType{ClassName: "java.lang.Integer"}
	ctor, _ := lib.LookupConstructor(integer, []types.Type{types.IntType})
	a, _ := lib.Construct(ctx, ctor, []runtime.Value{runtime.IntValue{Val: 7}})
	b, _ := lib.Construct(ctx, ctor, []runtime.Value{runtime.IntValue{Val: 7}})
	if runtime.SameReference(a, b) {
		t.Fatalf("expected distinct references")
	}
	same, err := lib.Equals(ctx, a, b)
	if err != nil || !same {
		t.Fatalf("expected boxed values to be equal, got %v (%v)", same, err)
	}
	unbox, _ := lib.LookupMethod(integer, UnboxMethodName(types.Int), []types.Type{})
	scalar, err := lib.Invoke(ctx, unbox, a, nil)
	if err != nil || scalar != (runtime.IntValue{Val: 7}) {
		t.Fatalf("expected unboxed 7, got %#v (%v)", scalar, err)
	}
}

func TestPrintStreamWritesToContextStdout(t *testing.T) {
	lib := NewLibrary()
	var out bytes.Buffer
	ctx := &runtime.NativeCallContext{Stdout: &out}
	field, err := lib.LookupField(types.ClassType{ClassName: "java.lang.System"}, "out")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	println, err := lib.LookupMethod(field.Type, "println", []types.Type{types.DoubleType})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := lib.Invoke(ctx, println, field.Value, []runtime.Value{runtime.DoubleValue{Val: 2}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "2.0\n" {
		t.Fatalf("expected \"2.0\\n\", got %q", out.String())
	}
}

func TestDeclareDataAndExceptionClasses(t *testing.T) {
	lib := NewLibrary()
	ctx := &runtime.NativeCallContext{}
	point, err := lib.DeclareClass(ClassSpec{
		Name:   "geo.Point",
		Fields: []FieldSpec{{Name: "x", Type: types.IntType}, {Name: "y", Type: types.IntType}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved, ok := lib.ResolveClass("Point"); !ok || resolved != point {
		t.Fatalf("expected simple name lookup to find geo.Point")
	}
	ctor, err := lib.LookupConstructor(point.Type(), []types.Type{types.IntType, types.ShortType})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p, err := lib.Construct(ctx, ctor, []runtime.Value{runtime.IntValue{Val: 1}, runtime.IntValue{Val: 2}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text, err := lib.Stringify(ctx, p)
	if err != nil || text != "Point[x=1, y=2]" {
		t.Fatalf("expected Point[x=1, y=2], got %q (%v)", text, err)
	}

	if _, err := lib.DeclareClass(ClassSpec{Name: "geo.OutOfRange", Extends: "IllegalArgumentException"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !lib.IsAssignable(types.ClassType{ClassName: "geo.OutOfRange"}, types.ClassType{ClassName: "java.lang.RuntimeException"}) {
		t.Fatalf("expected declared exception to extend RuntimeException")
	}
	if _, err := lib.DeclareClass(ClassSpec{Name: "geo.Point"}); err == nil {
		t.Fatalf("expected duplicate class error")
	}
}

func TestParseTypeName(t *testing.T) {
	lib := NewLibrary()
	got, err := lib.ParseTypeName("String[][]")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := types.ArrayType{Element: types.ArrayType{Element: types.StringType}}
	if !types.Identical(got, want) {
		t.Fatalf("expected %s, got %s", want.Name(), got.Name())
	}
	if _, err := lib.ParseTypeName("Nope"); err == nil {
		t.Fatalf("expected unknown class error")
	}
}
