package interpreter

import (
	"fmt"

	"javelin/interpreter-go/pkg/ast"
	"javelin/interpreter-go/pkg/runtime"
	"javelin/interpreter-go/pkg/types"
)

// evaluate computes an expression. Folded constants are returned as they
// were computed at check time.
func (i *Interpreter) evaluate(ctx *Context, expr ast.Expression) (runtime.Value, error) {
	if expr == nil {
		return nil, &RuntimeError{Kind: Internal, Message: "missing expression"}
	}
	if constant := expr.Info().Constant; constant != nil {
		return constant, nil
	}
	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		if e.Kind == types.Long {
			return runtime.LongValue{Val: e.Value}, nil
		}
		return runtime.IntValue{Val: int32(e.Value)}, nil
	case *ast.FloatingLiteral:
		if e.Kind == types.Float {
			return runtime.FloatValue{Val: float32(e.Value)}, nil
		}
		return runtime.DoubleValue{Val: e.Value}, nil
	case *ast.CharLiteral:
		return runtime.CharValue{Val: e.Value}, nil
	case *ast.BooleanLiteral:
		return runtime.BoolValue{Val: e.Value}, nil
	case *ast.StringLiteral:
		return runtime.StringValue{Val: e.Value}, nil
	case *ast.NullLiteral:
		return runtime.NullValue{}, nil
	case *ast.Identifier:
		value, err := ctx.Get(e.Name)
		if err != nil {
			return nil, scopeFailure(err)
		}
		return value, nil
	case *ast.FieldAccess:
		object, err := i.evaluate(ctx, e.Object)
		if err != nil {
			return nil, err
		}
		obj, err := i.dereference(object, e.Name)
		if err != nil {
			return nil, err
		}
		return fieldValue(obj, e.Name, e.Info().Type), nil
	case *ast.StaticFieldAccess:
		if e.Field == nil {
			return nil, &RuntimeError{Kind: Internal, Message: fmt.Sprintf("unresolved static field %s.%s", e.ClassName, e.Name)}
		}
		if e.Field.Value == nil {
			return runtime.ZeroValue(e.Field.Type), nil
		}
		return e.Field.Value, nil
	case *ast.ArrayLength:
		value, err := i.evaluate(ctx, e.Array)
		if err != nil {
			return nil, err
		}
		array, err := i.arrayOf(value, "read the array length")
		if err != nil {
			return nil, err
		}
		return runtime.IntValue{Val: int32(len(array.Elements))}, nil
	case *ast.MethodCall:
		return i.evaluateMethodCall(ctx, e)
	case *ast.StaticMethodCall:
		args, err := i.evaluateArguments(ctx, e.Args, e.Method.Params)
		if err != nil {
			return nil, err
		}
		return i.invoke(e.Method, nil, args)
	case *ast.UnaryExpression:
		return i.evaluateUnary(ctx, e)
	case *ast.IncDecExpression:
		return i.evaluateIncDec(ctx, e)
	case *ast.BinaryExpression:
		return i.evaluateBinary(ctx, e)
	case *ast.AssignmentExpression:
		return i.evaluateAssignment(ctx, e)
	case *ast.ConditionalExpression:
		cond, err := i.evaluateCondition(ctx, e.Condition)
		if err != nil {
			return nil, err
		}
		if cond {
			return i.evaluate(ctx, e.Then)
		}
		return i.evaluate(ctx, e.Else)
	case *ast.CastExpression:
		return i.evaluateCast(ctx, e)
	case *ast.InstanceOfExpression:
		value, err := i.evaluate(ctx, e.Operand)
		if err != nil {
			return nil, err
		}
		if runtime.IsNull(value) {
			return runtime.BoolValue{Val: false}, nil
		}
		return runtime.BoolValue{Val: i.resolver.IsAssignable(runtime.TypeOf(value), e.Tested)}, nil
	case *ast.NewExpression:
		args, err := i.evaluateArguments(ctx, e.Args, e.Constructor.Params)
		if err != nil {
			return nil, err
		}
		return i.construct(e.Constructor, args)
	case *ast.ArrayAllocation:
		return i.evaluateArrayAllocation(ctx, e)
	case *ast.ArrayInitializer:
		return i.evaluateArrayInitializer(ctx, e, e.Info().Type)
	case *ast.ArrayAccess:
		lv, err := i.prepare(ctx, e)
		if err != nil {
			return nil, err
		}
		return i.load(ctx, lv)
	case *ast.BoxExpression:
		value, err := i.evaluate(ctx, e.Operand)
		if err != nil {
			return nil, err
		}
		return i.construct(e.Constructor, []runtime.Value{value})
	case *ast.UnboxExpression:
		value, err := i.evaluate(ctx, e.Operand)
		if err != nil {
			return nil, err
		}
		return i.invoke(e.Method, value, nil)
	default:
		return nil, &RuntimeError{Kind: Internal, Message: fmt.Sprintf("unsupported expression type: %s", expr.NodeType())}
	}
}

// dereference checks that value is an object whose member is about to be used.
func (i *Interpreter) dereference(value runtime.Value, member string) (*runtime.ObjectValue, error) {
	switch v := value.(type) {
	case *runtime.ObjectValue:
		return v, nil
	case runtime.NullValue:
		return nil, i.throwf(runtime.NullPointerException, "Cannot read field \"%s\" because value is null", member)
	}
	return nil, &RuntimeError{Kind: Internal, Message: fmt.Sprintf("field %s on %s", member, value.Kind())}
}

func fieldValue(obj *runtime.ObjectValue, name string, t types.Type) runtime.Value {
	if value, ok := obj.Fields[name]; ok && value != nil {
		return value
	}
	return runtime.ZeroValue(t)
}

func (i *Interpreter) arrayOf(value runtime.Value, action string) (*runtime.ArrayValue, error) {
	switch v := value.(type) {
	case *runtime.ArrayValue:
		return v, nil
	case runtime.NullValue:
		return nil, i.throwf(runtime.NullPointerException, "Cannot %s because the array is null", action)
	}
	return nil, &RuntimeError{Kind: Internal, Message: fmt.Sprintf("array operation on %s", value.Kind())}
}

func (i *Interpreter) evaluateArrayAllocation(ctx *Context, alloc *ast.ArrayAllocation) (runtime.Value, error) {
	t := alloc.Info().Type
	if alloc.Initializer != nil {
		return i.evaluateArrayInitializer(ctx, alloc.Initializer, t)
	}
	dims := make([]int, len(alloc.Dimensions))
	for idx, dim := range alloc.Dimensions {
		value, err := i.evaluate(ctx, dim)
		if err != nil {
			return nil, err
		}
		n, _ := runtime.AsInt64(value)
		dims[idx] = int(n)
	}
	for _, n := range dims {
		if n < 0 {
			return nil, i.throwf(runtime.NegativeArraySizeException, "%d", n)
		}
	}
	return allocateArray(t, dims), nil
}

// allocateArray builds the nested arrays of new T[d1][d2]...; dimensions
// beyond dims stay null.
func allocateArray(t types.Type, dims []int) *runtime.ArrayValue {
	elem, _ := types.Element(t)
	array := runtime.NewArray(elem, dims[0])
	if len(dims) > 1 {
		for idx := range array.Elements {
			array.Elements[idx] = allocateArray(elem, dims[1:])
		}
	}
	return array
}

func (i *Interpreter) evaluateArrayInitializer(ctx *Context, init *ast.ArrayInitializer, t types.Type) (runtime.Value, error) {
	elem, ok := types.Element(t)
	if !ok {
		return nil, &RuntimeError{Kind: Internal, Message: "array initializer without an array type"}
	}
	array := &runtime.ArrayValue{Element: elem, Elements: make([]runtime.Value, len(init.Elements))}
	for idx, element := range init.Elements {
		var (
			value runtime.Value
			err   error
		)
		if nested, ok := element.(*ast.ArrayInitializer); ok {
			value, err = i.evaluateArrayInitializer(ctx, nested, elem)
		} else {
			value, err = i.evaluate(ctx, element)
		}
		if err != nil {
			return nil, err
		}
		array.Elements[idx] = value
	}
	return array, nil
}

func (i *Interpreter) evaluateCast(ctx *Context, cast *ast.CastExpression) (runtime.Value, error) {
	value, err := i.evaluate(ctx, cast.Operand)
	if err != nil {
		return nil, err
	}
	to := cast.Info().Type
	if p, ok := to.(types.PrimitiveType); ok {
		return runtime.Convert(value, p.Kind), nil
	}
	if runtime.IsNull(value) {
		return value, nil
	}
	from := runtime.TypeOf(value)
	if !i.resolver.IsAssignable(from, to) {
		return nil, i.throwf(runtime.ClassCastException, "class %s cannot be cast to class %s", from.Name(), to.Name())
	}
	return value, nil
}
