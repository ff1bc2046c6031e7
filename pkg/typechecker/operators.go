package typechecker

import (
	"javelin/interpreter-go/pkg/ast"
	"javelin/interpreter-go/pkg/runtime"
	"javelin/interpreter-go/pkg/types"
)

func primitiveKind(t types.Type) (types.PrimitiveKind, bool) {
	p, ok := t.(types.PrimitiveType)
	if !ok {
		return 0, false
	}
	return p.Kind, true
}

// unboxedOperand checks expr and unboxes it if it is a boxed reference.
func (c *Checker) unboxedOperand(ctx *Context, expr ast.Expression) (ast.Expression, types.Type, error) {
	checked, _, err := c.checkValue(ctx, expr)
	if err != nil {
		return nil, nil, err
	}
	if checked, err = c.unbox(checked); err != nil {
		return nil, nil, err
	}
	return checked, checked.Info().Type, nil
}

func (c *Checker) checkUnaryExpression(ctx *Context, expr *ast.UnaryExpression) (ast.Expression, types.Type, error) {
	operand, t, err := c.unboxedOperand(ctx, expr.Operand)
	if err != nil {
		return nil, nil, err
	}
	expr.Operand = operand
	kind, ok := primitiveKind(t)
	var result types.PrimitiveKind
	switch expr.Operator {
	case "+", "-":
		if !ok || !types.IsNumeric(t) {
			return nil, nil, mismatch(VariantOperand, expr, "bad operand type %s for unary operator '%s'", typeName(t), expr.Operator)
		}
		result = types.UnaryPromotion(kind)
	case "~":
		if !ok || !types.IsIntegral(t) {
			return nil, nil, mismatch(VariantBitwise, expr, "bad operand type %s for unary operator '~'", typeName(t))
		}
		result = types.UnaryPromotion(kind)
	case "!":
		if !types.IsBoolean(t) {
			return nil, nil, mismatch(VariantOperand, expr, "bad operand type %s for unary operator '!'", typeName(t))
		}
		result = types.Boolean
	default:
		return nil, nil, mismatch(VariantOperand, expr, "unsupported unary operator %q", expr.Operator)
	}
	if constant := operand.Info().Constant; constant != nil {
		if folded, err := runtime.Unary(expr.Operator, result, constant); err == nil {
			expr.Info().Constant = folded
		}
	}
	return typed(expr, types.Primitive(result))
}

// checkTarget types the left side of an assignment and rejects anything
// that is not a writable variable.
func (c *Checker) checkTarget(ctx *Context, target ast.Expression) (ast.Expression, types.Type, error) {
	checked, t, err := c.checkValue(ctx, target)
	if err != nil {
		return nil, nil, err
	}
	info := checked.Info()
	if info.Target == ast.NotAssignable {
		return nil, nil, newError(InvalidAssignmentTarget, target, "unexpected type: required variable, found value")
	}
	return checked, t, nil
}

func (c *Checker) checkIncDecExpression(ctx *Context, expr *ast.IncDecExpression) (ast.Expression, types.Type, error) {
	operand, t, err := c.checkTarget(ctx, expr.Operand)
	if err != nil {
		return nil, nil, err
	}
	if err := c.checkFinalTarget(ctx, operand, true); err != nil {
		return nil, nil, err
	}
	numeric := t
	if prim, ok := types.Unbox(t); ok {
		numeric = prim
	}
	if !types.IsNumeric(numeric) {
		return nil, nil, mismatch(VariantOperand, expr, "bad operand type %s for unary operator '%s'", typeName(t), expr.Operator)
	}
	expr.Operand = operand
	return typed(expr, t)
}

// binaryOperandType computes the type both operands of op convert to, and
// the result type, for primitive or String operand types.
func (c *Checker) binaryOperandType(node ast.Node, op string, left, right types.Type) (operand, result types.Type, err error) {
	if op == "+" && (types.IsString(left) || types.IsString(right)) {
		if types.IsVoid(left) || types.IsVoid(right) {
			return nil, nil, mismatch(VariantOperand, node, "'void' type not allowed here")
		}
		return types.StringType, types.StringType, nil
	}
	lk, lok := primitiveKind(left)
	rk, rok := primitiveKind(right)
	bad := func(variant Variant) error {
		return mismatch(variant, node, "bad operand types for binary operator '%s': %s and %s", op, typeName(left), typeName(right))
	}
	switch op {
	case "+", "-", "*", "/", "%":
		if !lok || !rok || !types.IsNumeric(left) || !types.IsNumeric(right) {
			return nil, nil, bad(VariantOperand)
		}
		promoted := types.Primitive(types.BinaryPromotion(lk, rk))
		return promoted, promoted, nil
	case "<<", ">>", ">>>":
		if !lok || !rok || !types.IsIntegral(left) || !types.IsIntegral(right) {
			return nil, nil, bad(VariantShift)
		}
		promoted := types.Primitive(types.UnaryPromotion(lk))
		return promoted, promoted, nil
	case "<", ">", "<=", ">=":
		if !lok || !rok || !types.IsNumeric(left) || !types.IsNumeric(right) {
			return nil, nil, bad(VariantRelational)
		}
		return types.Primitive(types.BinaryPromotion(lk, rk)), types.BooleanType, nil
	case "&", "|", "^":
		if types.IsBoolean(left) && types.IsBoolean(right) {
			return types.BooleanType, types.BooleanType, nil
		}
		if !lok || !rok || !types.IsIntegral(left) || !types.IsIntegral(right) {
			return nil, nil, bad(VariantBitwise)
		}
		promoted := types.Primitive(types.BinaryPromotion(lk, rk))
		return promoted, promoted, nil
	case "&&", "||":
		if !types.IsBoolean(left) || !types.IsBoolean(right) {
			return nil, nil, bad(VariantOperand)
		}
		return types.BooleanType, types.BooleanType, nil
	}
	return nil, nil, mismatch(VariantOperand, node, "unsupported binary operator %q", op)
}

func (c *Checker) checkBinaryExpression(ctx *Context, expr *ast.BinaryExpression) (ast.Expression, types.Type, error) {
	if expr.Operator == "==" || expr.Operator == "!=" {
		return c.checkEquality(ctx, expr)
	}
	left, leftType, err := c.checkValue(ctx, expr.Left)
	if err != nil {
		return nil, nil, err
	}
	right, rightType, err := c.checkValue(ctx, expr.Right)
	if err != nil {
		return nil, nil, err
	}
	concat := expr.Operator == "+" && (types.IsString(leftType) || types.IsString(rightType))
	if !concat {
		if left, err = c.unbox(left); err != nil {
			return nil, nil, err
		}
		if right, err = c.unbox(right); err != nil {
			return nil, nil, err
		}
		leftType, rightType = left.Info().Type, right.Info().Type
	}
	expr.Left, expr.Right = left, right
	operandType, resultType, err := c.binaryOperandType(expr, expr.Operator, leftType, rightType)
	if err != nil {
		return nil, nil, err
	}
	expr.OperandType = operandType
	expr.Info().Constant = foldBinary(expr.Operator, operandType, left.Info().Constant, right.Info().Constant)
	return typed(expr, resultType)
}

// checkEquality applies the == and != rules: a boxed side is unboxed only
// when the other side is primitive, then both sides must be primitive or both
// reference, and related references must be assignable one way or the other.
func (c *Checker) checkEquality(ctx *Context, expr *ast.BinaryExpression) (ast.Expression, types.Type, error) {
	left, leftType, err := c.checkValue(ctx, expr.Left)
	if err != nil {
		return nil, nil, err
	}
	right, rightType, err := c.checkValue(ctx, expr.Right)
	if err != nil {
		return nil, nil, err
	}
	if types.IsPrimitive(rightType) && types.IsBoxed(leftType) {
		if left, err = c.unbox(left); err != nil {
			return nil, nil, err
		}
		leftType = left.Info().Type
	}
	if types.IsPrimitive(leftType) && types.IsBoxed(rightType) {
		if right, err = c.unbox(right); err != nil {
			return nil, nil, err
		}
		rightType = right.Info().Type
	}
	expr.Left, expr.Right = left, right
	incomparable := func() error {
		return newError(IncompatibleTypes, expr, "incomparable types: %s and %s", typeName(leftType), typeName(rightType))
	}
	lk, lprim := primitiveKind(leftType)
	rk, rprim := primitiveKind(rightType)
	switch {
	case lprim && rprim:
		var operand types.PrimitiveKind
		switch {
		case lk == types.Boolean && rk == types.Boolean:
			operand = types.Boolean
		case lk == types.Boolean || rk == types.Boolean:
			return nil, nil, incomparable()
		default:
			operand = types.BinaryPromotion(lk, rk)
		}
		expr.OperandType = types.Primitive(operand)
		if l, r := left.Info().Constant, right.Info().Constant; l != nil && r != nil {
			if result, err := runtime.Compare(expr.Operator, operand, l, r); err == nil {
				expr.Info().Constant = runtime.BoolValue{Val: result}
			}
		}
	case lprim || rprim:
		return nil, nil, incomparable()
	default:
		if !c.resolver.IsAssignable(leftType, rightType) && !c.resolver.IsAssignable(rightType, leftType) {
			return nil, nil, incomparable()
		}
		expr.OperandType = types.ObjectType
	}
	return typed(expr, types.BooleanType)
}

// foldBinary computes a constant result when both operands are constants.
// Operations that would fault at run time are left unfolded.
func foldBinary(op string, operandType types.Type, left, right runtime.Value) runtime.Value {
	if left == nil || right == nil {
		return nil
	}
	if types.IsString(operandType) {
		l, lok := constantText(left)
		r, rok := constantText(right)
		if !lok || !rok {
			return nil
		}
		return runtime.StringValue{Val: l + r}
	}
	kind, ok := primitiveKind(operandType)
	if !ok {
		return nil
	}
	switch op {
	case "&&":
		return runtime.BoolValue{Val: runtime.AsBool(left) && runtime.AsBool(right)}
	case "||":
		return runtime.BoolValue{Val: runtime.AsBool(left) || runtime.AsBool(right)}
	case "<", ">", "<=", ">=":
		result, err := runtime.Compare(op, kind, left, right)
		if err != nil {
			return nil
		}
		return runtime.BoolValue{Val: result}
	case "<<", ">>", ">>>":
		result, err := runtime.Shift(op, kind, left, right)
		if err != nil {
			return nil
		}
		return result
	}
	result, err := runtime.Binary(op, kind, left, right)
	if err != nil {
		return nil
	}
	return result
}

func constantText(v runtime.Value) (string, bool) {
	if s, ok := v.(runtime.StringValue); ok {
		return s.Val, true
	}
	return runtime.FormatPrimitive(v)
}

func (c *Checker) checkAssignmentExpression(ctx *Context, expr *ast.AssignmentExpression) (ast.Expression, types.Type, error) {
	target, targetType, err := c.checkTarget(ctx, expr.Target)
	if err != nil {
		return nil, nil, err
	}
	expr.Target = target
	if _, isInit := expr.Value.(*ast.ArrayInitializer); isInit {
		return nil, nil, mismatch(VariantAssignment, expr.Value, "illegal start of expression: array initializer outside a declaration")
	}
	value, valueType, err := c.checkValue(ctx, expr.Value)
	if err != nil {
		return nil, nil, err
	}

	op := expr.BinaryOperator()
	if op == "" {
		converted, err := c.checkAssignment(targetType, value)
		if err != nil {
			return nil, nil, err
		}
		expr.Value = converted
		if err := c.checkFinalTarget(ctx, target, false); err != nil {
			return nil, nil, err
		}
		return typed(expr, targetType)
	}
	if err := c.checkFinalTarget(ctx, target, true); err != nil {
		return nil, nil, err
	}

	// Compound forms compute in the promoted type and narrow back to the
	// target's type, boxing again if the target is boxed.
	if types.IsString(targetType) {
		if op != "+" {
			return nil, nil, mismatch(VariantOperand, expr, "bad operand types for binary operator '%s': %s and %s", op, typeName(targetType), typeName(valueType))
		}
		expr.Value = value
		expr.OperandType = types.StringType
		return typed(expr, targetType)
	}
	left := unboxedFamily(targetType)
	if value, err = c.unbox(value); err != nil {
		return nil, nil, err
	}
	valueType = value.Info().Type
	if !types.IsPrimitive(left) || types.IsString(valueType) {
		return nil, nil, newError(IncompatibleTypes, expr, "incompatible types: %s cannot be converted to %s", typeName(valueType), typeName(targetType))
	}
	operandType, resultType, err := c.binaryOperandType(expr, op, left, valueType)
	if err != nil {
		return nil, nil, err
	}
	// Narrowing back to a primitive is implicit, but a boxed target only
	// accepts its own primitive.
	if types.IsBoxed(targetType) && !types.Identical(resultType, left) {
		return nil, nil, newError(IncompatibleTypes, expr, "incompatible types: %s cannot be converted to %s", typeName(resultType), typeName(targetType))
	}
	expr.Value = value
	expr.OperandType = operandType
	return typed(expr, targetType)
}

func (c *Checker) checkConditionalExpression(ctx *Context, expr *ast.ConditionalExpression) (ast.Expression, types.Type, error) {
	cond, err := c.checkCondition(ctx, expr.Condition)
	if err != nil {
		return nil, nil, err
	}
	then, _, err := c.checkValue(ctx, expr.Then)
	if err != nil {
		return nil, nil, err
	}
	otherwise, _, err := c.checkValue(ctx, expr.Else)
	if err != nil {
		return nil, nil, err
	}
	expr.Condition = cond
	result, err := c.conditionalType(&then, &otherwise)
	if err != nil {
		return nil, nil, err
	}
	expr.Then, expr.Else = then, otherwise
	if cv := cond.Info().Constant; cv != nil {
		chosen := otherwise
		if runtime.AsBool(cv) {
			chosen = then
		}
		if then.Info().Constant != nil && otherwise.Info().Constant != nil {
			expr.Info().Constant = foldConversion(chosen.Info().Constant, result)
		}
	}
	return typed(expr, result)
}

// conditionalType computes the type of b ? x : y and rewrites the branches
// with the conversions that type implies.
func (c *Checker) conditionalType(then, otherwise *ast.Expression) (types.Type, error) {
	tt, et := (*then).Info().Type, (*otherwise).Info().Type
	convert := func(to types.Type) (types.Type, error) {
		for _, branch := range []*ast.Expression{then, otherwise} {
			converted, err := c.conditionalBranch(*branch, to)
			if err != nil {
				return nil, err
			}
			*branch = converted
		}
		return to, nil
	}

	if types.Identical(tt, et) {
		return tt, nil
	}
	if types.IsNull(tt) || types.IsNull(et) {
		other := tt
		if types.IsNull(tt) {
			other = et
		}
		if boxed, ok := types.Box(other); ok {
			return convert(boxed)
		}
		return other, nil
	}

	// Unbox a boxed side facing a primitive of the same family.
	thenFamily, elseFamily := unboxedFamily(tt), unboxedFamily(et)
	tBool, eBool := types.IsBoolean(thenFamily), types.IsBoolean(elseFamily)
	tNum, eNum := types.IsNumeric(thenFamily), types.IsNumeric(elseFamily)
	mixedPrimitive := types.IsPrimitive(tt) || types.IsPrimitive(et)

	switch {
	case mixedPrimitive && tBool && eBool:
		return convert(types.BooleanType)
	case mixedPrimitive && (tBool && eNum || tNum && eBool):
		// Lenient: a boolean paired with a number boxes both sides to Object.
		return convert(types.ObjectType)
	case mixedPrimitive && tNum && eNum:
		return convert(types.Primitive(c.numericConditional(*then, *otherwise, thenFamily, elseFamily)))
	case types.IsPrimitive(tt) || types.IsPrimitive(et):
		// A primitive against an unrelated reference: box, then treat as references.
		boxedT, boxedE := tt, et
		if b, ok := types.Box(tt); ok {
			boxedT = b
		}
		if b, ok := types.Box(et); ok {
			boxedE = b
		}
		return convert(c.commonReference(boxedT, boxedE))
	}
	return convert(c.commonReference(tt, et))
}

func unboxedFamily(t types.Type) types.Type {
	if prim, ok := types.Unbox(t); ok {
		return prim
	}
	return t
}

// numericConditional implements the numeric table of ?: for two numeric
// operand types (after unboxing).
func (c *Checker) numericConditional(then, otherwise ast.Expression, tt, et types.Type) types.PrimitiveKind {
	tk, _ := primitiveKind(tt)
	ek, _ := primitiveKind(et)
	if tk == ek {
		return tk
	}
	if (tk == types.Byte && ek == types.Short) || (tk == types.Short && ek == types.Byte) {
		return types.Short
	}
	small := func(k types.PrimitiveKind) bool {
		return k == types.Byte || k == types.Short || k == types.Char
	}
	if small(tk) && ek == types.Int && narrowableConstant(otherwise, tk) {
		return tk
	}
	if small(ek) && tk == types.Int && narrowableConstant(then, ek) {
		return ek
	}
	return types.BinaryPromotion(tk, ek)
}

// commonReference is the more general of two related references, or Object.
func (c *Checker) commonReference(a, b types.Type) types.Type {
	switch {
	case c.resolver.IsAssignable(a, b):
		return b
	case c.resolver.IsAssignable(b, a):
		return a
	}
	return types.ObjectType
}

// conditionalBranch converts one ?: branch to the expression's type.
func (c *Checker) conditionalBranch(branch ast.Expression, to types.Type) (ast.Expression, error) {
	from := branch.Info().Type
	if types.Identical(from, to) {
		return branch, nil
	}
	if types.IsPrimitive(to) {
		unboxed, err := c.unbox(branch)
		if err != nil {
			return nil, err
		}
		return implicitCast(unboxed, to), nil
	}
	if types.IsPrimitive(from) {
		return c.box(branch)
	}
	return branch, nil
}
