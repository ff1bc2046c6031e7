package resolver

import (
	"javelin/interpreter-go/pkg/runtime"
	"javelin/interpreter-go/pkg/types"
)

var builtinThrowables = []struct {
	name  string
	super string
}{
	{"java.lang.Exception", "java.lang.Throwable"},
	{"java.lang.Error", "java.lang.Throwable"},
	{"java.lang.RuntimeException", "java.lang.Exception"},
	{"java.lang.ArithmeticException", "java.lang.RuntimeException"},
	{"java.lang.NullPointerException", "java.lang.RuntimeException"},
	{"java.lang.ClassCastException", "java.lang.RuntimeException"},
	{"java.lang.IndexOutOfBoundsException", "java.lang.RuntimeException"},
	{"java.lang.ArrayIndexOutOfBoundsException", "java.lang.IndexOutOfBoundsException"},
	{"java.lang.StringIndexOutOfBoundsException", "java.lang.IndexOutOfBoundsException"},
	{"java.lang.NegativeArraySizeException", "java.lang.RuntimeException"},
	{"java.lang.ArrayStoreException", "java.lang.RuntimeException"},
	{"java.lang.IllegalArgumentException", "java.lang.RuntimeException"},
	{"java.lang.NumberFormatException", "java.lang.IllegalArgumentException"},
	{"java.lang.IllegalStateException", "java.lang.RuntimeException"},
	{"java.lang.UnsupportedOperationException", "java.lang.RuntimeException"},
	{"java.lang.StackOverflowError", "java.lang.Error"},
}

// installThrowableConstructors gives an exception class the (), (String)
// and (String, Throwable) constructors.
func installThrowableConstructors(c *runtime.Class) {
	ctor(c, params(), nil)
	ctor(c, params(types.StringType), func(_ *runtime.NativeCallContext, recv runtime.Value, args []runtime.Value) (runtime.Value, error) {
		recv.(*runtime.ObjectValue).Fields["message"] = args[0]
		return nil, nil
	})
	ctor(c, params(types.StringType, types.ThrowableType), func(_ *runtime.NativeCallContext, recv runtime.Value, args []runtime.Value) (runtime.Value, error) {
		obj := recv.(*runtime.ObjectValue)
		obj.Fields["message"] = args[0]
		obj.Fields["cause"] = args[1]
		return nil, nil
	})
}

func (l *Library) installThrowables() {
	throwable := l.newClass("java.lang.Throwable", l.mustClass("java.lang.Object"))
	throwable.AddField(&runtime.Field{Name: "message", Type: types.StringType})
	throwable.AddField(&runtime.Field{Name: "cause", Type: types.ThrowableType})
	installThrowableConstructors(throwable)
	instance(throwable, "getMessage", types.StringType, params(), func(_ *runtime.NativeCallContext, recv runtime.Value, _ []runtime.Value) (runtime.Value, error) {
		return recv.(*runtime.ObjectValue).Fields["message"], nil
	})
	instance(throwable, "getCause", types.ThrowableType, params(), func(_ *runtime.NativeCallContext, recv runtime.Value, _ []runtime.Value) (runtime.Value, error) {
		return recv.(*runtime.ObjectValue).Fields["cause"], nil
	})
	instance(throwable, "toString", types.StringType, params(), func(_ *runtime.NativeCallContext, recv runtime.Value, _ []runtime.Value) (runtime.Value, error) {
		obj := recv.(*runtime.ObjectValue)
		if msg, ok := runtime.ExceptionMessage(obj); ok {
			return str(obj.Class.Name + ": " + msg), nil
		}
		return str(obj.Class.Name), nil
	})

	for _, spec := range builtinThrowables {
		c := l.newClass(spec.name, l.mustClass(spec.super))
		installThrowableConstructors(c)
	}
}
