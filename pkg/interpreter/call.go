package interpreter

import (
	"fmt"

	"javelin/interpreter-go/pkg/ast"
	"javelin/interpreter-go/pkg/resolver"
	"javelin/interpreter-go/pkg/runtime"
	"javelin/interpreter-go/pkg/types"
)

func (i *Interpreter) evaluateMethodCall(ctx *Context, call *ast.MethodCall) (runtime.Value, error) {
	if call.Script != nil {
		args, err := i.evaluateArguments(ctx, call.Args, call.Script.ParamTypes)
		if err != nil {
			return nil, err
		}
		return i.callScript(call.Script, args)
	}
	if call.Method == nil {
		return nil, &RuntimeError{Kind: Internal, Message: fmt.Sprintf("unresolved method %s", call.Name)}
	}
	receiver, err := i.evaluate(ctx, call.Receiver)
	if err != nil {
		return nil, err
	}
	args, err := i.evaluateArguments(ctx, call.Args, call.Method.Params)
	if err != nil {
		return nil, err
	}
	return i.invoke(call.Method, receiver, args)
}

// evaluateArguments evaluates left to right and widens primitive arguments
// to their parameter's kind.
func (i *Interpreter) evaluateArguments(ctx *Context, args []ast.Expression, params []types.Type) ([]runtime.Value, error) {
	values := make([]runtime.Value, len(args))
	for idx, arg := range args {
		value, err := i.evaluate(ctx, arg)
		if err != nil {
			return nil, err
		}
		if idx < len(params) {
			if p, ok := params[idx].(types.PrimitiveType); ok {
				value = runtime.Convert(value, p.Kind)
			}
		}
		values[idx] = value
	}
	return values, nil
}

func (i *Interpreter) enterCall(name string) error {
	if i.depth >= i.maxDepth {
		i.logger.Warn("call depth exceeded", "method", name, "limit", i.maxDepth)
		return &RuntimeError{Kind: StackOverflow, Message: fmt.Sprintf("stack overflow calling %s (depth %d)", name, i.depth)}
	}
	i.depth++
	return nil
}

func (i *Interpreter) leaveCall() {
	i.depth--
}

func (i *Interpreter) invoke(method *runtime.Method, receiver runtime.Value, args []runtime.Value) (runtime.Value, error) {
	if err := i.enterCall(method.Signature()); err != nil {
		return nil, err
	}
	defer i.leaveCall()
	result, err := i.resolver.Invoke(i.native, method, receiver, args)
	if err != nil {
		return nil, i.raise(err)
	}
	if result == nil {
		return runtime.VoidValue{}, nil
	}
	return result, nil
}

func (i *Interpreter) construct(ctor *runtime.Constructor, args []runtime.Value) (runtime.Value, error) {
	if err := i.enterCall(ctor.Signature()); err != nil {
		return nil, err
	}
	defer i.leaveCall()
	result, err := i.resolver.Construct(i.native, ctor, args)
	if err != nil {
		return nil, i.raise(err)
	}
	return result, nil
}

// callScript runs a script method in a fresh scope chain holding only its
// parameters.
func (i *Interpreter) callScript(decl *ast.MethodDeclaration, args []runtime.Value) (runtime.Value, error) {
	if err := i.enterCall(decl.Name); err != nil {
		return nil, err
	}
	defer i.leaveCall()
	frame := NewContext()
	for idx, param := range decl.Params {
		if err := frame.Define(param.Name, args[idx], param.Final); err != nil {
			return nil, scopeFailure(err)
		}
	}
	result, err := i.execBlock(frame, decl.Body)
	if err != nil {
		return nil, err
	}
	switch result.kind {
	case normalCompletion:
		return runtime.VoidValue{}, nil
	case returnCompletion:
		if result.value == nil {
			return runtime.VoidValue{}, nil
		}
		return result.value, nil
	default:
		return nil, &RuntimeError{Kind: UnhandledSignal, Message: fmt.Sprintf("%s escaped method %s", result, decl.Name)}
	}
}

// CallMethod invokes a checked script method by declaration, converting
// arguments to the parameter types.
func (i *Interpreter) CallMethod(decl *ast.MethodDeclaration, args ...runtime.Value) (runtime.Value, error) {
	if len(args) != len(decl.ParamTypes) {
		return nil, &RuntimeError{Kind: Internal, Message: fmt.Sprintf("%s expects %d arguments, got %d", decl.Name, len(decl.ParamTypes), len(args))}
	}
	converted := make([]runtime.Value, len(args))
	for idx, arg := range args {
		value, err := i.coerce(arg, decl.ParamTypes[idx])
		if err != nil {
			return nil, err
		}
		converted[idx] = value
	}
	return i.callScript(decl, converted)
}

// boxValue wraps a primitive in a fresh instance of boxed.
func (i *Interpreter) boxValue(value runtime.Value, boxed types.Type) (runtime.Value, error) {
	kind, ok := runtime.PrimitiveKindOf(value)
	if !ok {
		return value, nil
	}
	ctor, err := i.resolver.LookupConstructor(boxed, []types.Type{types.Primitive(kind)})
	if err != nil {
		return nil, &RuntimeError{Kind: Internal, Message: "box", Err: err}
	}
	return i.construct(ctor, []runtime.Value{value})
}

// unboxValue extracts the primitive of a boxed reference; null raises
// NullPointerException.
func (i *Interpreter) unboxValue(value runtime.Value) (runtime.Value, error) {
	if runtime.IsPrimitive(value) {
		return value, nil
	}
	if runtime.IsNull(value) {
		return nil, i.throwf(runtime.NullPointerException, "Cannot unbox because value is null")
	}
	prim, ok := types.Unbox(runtime.TypeOf(value))
	if !ok {
		return nil, &RuntimeError{Kind: Internal, Message: fmt.Sprintf("cannot unbox %s", runtime.TypeOf(value).Name())}
	}
	method, err := i.resolver.LookupMethod(runtime.TypeOf(value), resolver.UnboxMethodName(prim.Kind), []types.Type{})
	if err != nil {
		return nil, &RuntimeError{Kind: Internal, Message: "unbox", Err: err}
	}
	return i.invoke(method, value, nil)
}
