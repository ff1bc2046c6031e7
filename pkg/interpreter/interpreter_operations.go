package interpreter

import (
	"fmt"

	"javelin/interpreter-go/pkg/ast"
	"javelin/interpreter-go/pkg/runtime"
	"javelin/interpreter-go/pkg/types"
)

func primitiveKind(t types.Type) (types.PrimitiveKind, error) {
	p, ok := t.(types.PrimitiveType)
	if !ok {
		return 0, &RuntimeError{Kind: Internal, Message: fmt.Sprintf("expected a primitive operand type, found %v", t)}
	}
	return p.Kind, nil
}

func (i *Interpreter) evaluateUnary(ctx *Context, expr *ast.UnaryExpression) (runtime.Value, error) {
	operand, err := i.evaluate(ctx, expr.Operand)
	if err != nil {
		return nil, err
	}
	kind, err := primitiveKind(expr.Info().Type)
	if err != nil {
		return nil, err
	}
	result, err := runtime.Unary(expr.Operator, kind, operand)
	if err != nil {
		return nil, &RuntimeError{Kind: Internal, Message: "unary", Err: err}
	}
	return result, nil
}

func (i *Interpreter) evaluateBinary(ctx *Context, expr *ast.BinaryExpression) (runtime.Value, error) {
	left, err := i.evaluate(ctx, expr.Left)
	if err != nil {
		return nil, err
	}
	switch expr.Operator {
	case "&&":
		if !runtime.AsBool(left) {
			return runtime.BoolValue{Val: false}, nil
		}
		return i.evaluate(ctx, expr.Right)
	case "||":
		if runtime.AsBool(left) {
			return runtime.BoolValue{Val: true}, nil
		}
		return i.evaluate(ctx, expr.Right)
	}
	right, err := i.evaluate(ctx, expr.Right)
	if err != nil {
		return nil, err
	}
	return i.applyBinary(expr.Operator, expr.OperandType, left, right)
}

// applyBinary applies a non-short-circuit operator in the checked operand type.
func (i *Interpreter) applyBinary(op string, operandType types.Type, left, right runtime.Value) (runtime.Value, error) {
	if types.IsString(operandType) && op == "+" {
		l, err := i.Stringify(left)
		if err != nil {
			return nil, err
		}
		r, err := i.Stringify(right)
		if err != nil {
			return nil, err
		}
		return runtime.StringValue{Val: l + r}, nil
	}
	if op == "==" || op == "!=" {
		if _, ok := operandType.(types.PrimitiveType); !ok {
			same := runtime.SameReference(left, right)
			return runtime.BoolValue{Val: same == (op == "==")}, nil
		}
	}
	kind, err := primitiveKind(operandType)
	if err != nil {
		return nil, err
	}
	var result runtime.Value
	switch op {
	case "==", "!=", "<", ">", "<=", ">=":
		var b bool
		b, err = runtime.Compare(op, kind, left, right)
		result = runtime.BoolValue{Val: b}
	case "<<", ">>", ">>>":
		result, err = runtime.Shift(op, kind, left, right)
	default:
		result, err = runtime.Binary(op, kind, left, right)
	}
	if err != nil {
		return nil, i.raise(err)
	}
	return result, nil
}

func (i *Interpreter) evaluateAssignment(ctx *Context, expr *ast.AssignmentExpression) (runtime.Value, error) {
	lv, err := i.prepare(ctx, expr.Target)
	if err != nil {
		return nil, err
	}
	op := expr.BinaryOperator()
	if op == "" {
		value, err := i.evaluate(ctx, expr.Value)
		if err != nil {
			return nil, err
		}
		if err := i.store(ctx, lv, value); err != nil {
			return nil, err
		}
		return value, nil
	}

	current, err := i.load(ctx, lv)
	if err != nil {
		return nil, err
	}
	targetType := expr.Info().Type
	if !types.IsString(targetType) {
		if current, err = i.unboxValue(current); err != nil {
			return nil, err
		}
	}
	value, err := i.evaluate(ctx, expr.Value)
	if err != nil {
		return nil, err
	}
	result, err := i.applyBinary(op, expr.OperandType, current, value)
	if err != nil {
		return nil, err
	}
	if result, err = i.narrowTo(result, targetType); err != nil {
		return nil, err
	}
	if err := i.store(ctx, lv, result); err != nil {
		return nil, err
	}
	return result, nil
}

// narrowTo casts a compound result back to the target's type, boxing again
// when the target is a boxed reference.
func (i *Interpreter) narrowTo(value runtime.Value, target types.Type) (runtime.Value, error) {
	if p, ok := target.(types.PrimitiveType); ok {
		return runtime.Convert(value, p.Kind), nil
	}
	if prim, ok := types.Unbox(target); ok {
		return i.boxValue(runtime.Convert(value, prim.Kind), target)
	}
	return value, nil
}

func (i *Interpreter) evaluateIncDec(ctx *Context, expr *ast.IncDecExpression) (runtime.Value, error) {
	lv, err := i.prepare(ctx, expr.Operand)
	if err != nil {
		return nil, err
	}
	old, err := i.load(ctx, lv)
	if err != nil {
		return nil, err
	}
	current, err := i.unboxValue(old)
	if err != nil {
		return nil, err
	}
	kind, ok := runtime.PrimitiveKindOf(current)
	if !ok {
		return nil, &RuntimeError{Kind: Internal, Message: fmt.Sprintf("%s on %s", expr.Operator, current.Kind())}
	}
	op := "+"
	if expr.Operator == "--" {
		op = "-"
	}
	sum, err := runtime.Binary(op, types.BinaryPromotion(kind, types.Int), current, runtime.IntValue{Val: 1})
	if err != nil {
		return nil, i.raise(err)
	}
	updated, err := i.narrowTo(sum, expr.Info().Type)
	if err != nil {
		return nil, err
	}
	if err := i.store(ctx, lv, updated); err != nil {
		return nil, err
	}
	if expr.Prefix {
		return updated, nil
	}
	return old, nil
}
